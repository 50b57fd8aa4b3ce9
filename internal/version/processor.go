// Package version 根据网关上报的版本决定连接器配置是否需要升级或降级，
// 并把具体的结构转换委托给各协议的 Converter。
package version

import (
	cn "github.com/linjuya-lu/device_gateway_go/internal/connector"
)

// Direction 一次处理对配置做了什么
type Direction string

const (
	Unchanged Direction = "unchanged"
	Upgrade   Direction = "upgrade"
	Downgrade Direction = "downgrade"
)

// Converter 单个协议在两代配置结构之间的转换。
// 返回的新记录 configVersion 必须等于 gatewayVersion。
type Converter interface {
	Upgrade(c cn.Connector, gatewayVersion string) cn.Connector
	Downgrade(c cn.Connector, gatewayVersion string) cn.Connector
}

// Processor 对一条连接器记录按网关版本做一次处理
type Processor struct {
	gatewayVersionIn string
	gatewayVersion   int
	configVersion    int
	connector        cn.Connector
	converter        Converter
}

// NewProcessor 构造时即解析网关版本与配置版本
func NewProcessor(gatewayVersion string, c cn.Connector, conv Converter) *Processor {
	return &Processor{
		gatewayVersionIn: gatewayVersion,
		gatewayVersion:   cn.ParseVersion(gatewayVersion),
		configVersion:    cn.ParseVersion(c.ConfigVersion),
		connector:        c,
		converter:        conv,
	}
}

// Direction 返回 ProcessedByVersion 将要走的分支
func (p *Processor) Direction() Direction {
	if !p.isVersionUpdateNeeded() {
		return Unchanged
	}
	if p.isVersionUpgradeNeeded() {
		return Upgrade
	}
	return Downgrade
}

// ProcessedByVersion 版本一致或网关版本未知时原样返回，否则升级或降级
func (p *Processor) ProcessedByVersion() cn.Connector {
	switch p.Direction() {
	case Upgrade:
		return p.converter.Upgrade(p.connector, p.gatewayVersionIn)
	case Downgrade:
		return p.converter.Downgrade(p.connector, p.gatewayVersionIn)
	default:
		return p.connector
	}
}

func (p *Processor) isVersionUpdateNeeded() bool {
	if p.gatewayVersion == 0 {
		return false
	}
	return p.configVersion != p.gatewayVersion
}

// 只有网关恰好是当前版本时才升级，其余不一致一律降级
func (p *Processor) isVersionUpgradeNeeded() bool {
	return p.gatewayVersionIn == cn.VersionCurrent &&
		(p.configVersion == 0 || p.configVersion < p.gatewayVersion)
}

// ConverterFor 按连接器类型选择转换器，没有版本差异的协议返回 false
func ConverterFor(t cn.Type) (Converter, bool) {
	switch t {
	case cn.TypeMQTT:
		return MQTTConverter{}, true
	case cn.TypeModbus:
		return ModbusConverter{}, true
	case cn.TypeOPCUA:
		return OPCConverter{}, true
	default:
		return nil, false
	}
}

// Process 按网关版本处理一条连接器记录。
// 不支持的协议类型原样返回，Direction 为 Unchanged。
func Process(gatewayVersion string, c cn.Connector) (cn.Connector, Direction) {
	conv, ok := ConverterFor(c.Type)
	if !ok {
		return c, Unchanged
	}
	p := NewProcessor(gatewayVersion, c, conv)
	d := p.Direction()
	return p.ProcessedByVersion(), d
}

// withConfig 复制记录的其余字段，替换配置内容与版本
func withConfig(c cn.Connector, config cn.Object, gatewayVersion string) cn.Connector {
	out := c.Clone()
	out.ConfigurationJSON = config
	out.ConfigVersion = gatewayVersion
	return out
}

// configOf 返回配置内容的深拷贝，nil 时为空对象
func configOf(c cn.Connector) cn.Object {
	if c.ConfigurationJSON == nil {
		return cn.Object{}
	}
	return cn.DeepCopy(c.ConfigurationJSON).(cn.Object)
}

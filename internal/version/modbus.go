package version

import (
	cn "github.com/linjuya-lu/device_gateway_go/internal/connector"
	"github.com/linjuya-lu/device_gateway_go/internal/mapping"
)

// ModbusConverter Modbus 连接器
type ModbusConverter struct{}

// NewModbusProcessor 便于直接处理 Modbus 记录
func NewModbusProcessor(gatewayVersion string, c cn.Connector) *Processor {
	return NewProcessor(gatewayVersion, c, ModbusConverter{})
}

// Upgrade 新配置只保留 master 与 slave
func (ModbusConverter) Upgrade(c cn.Connector, gatewayVersion string) cn.Connector {
	config := configOf(c)
	return withConfig(c, cn.Object{
		"master": modbusMaster(config, mapping.MapMasterToUpgradedVersion),
		"slave":  modbusSlave(config, mapping.MapSlaveToUpgradedVersion),
	}, gatewayVersion)
}

// Downgrade 保留其余顶层字段，只替换 master 与 slave
func (ModbusConverter) Downgrade(c cn.Connector, gatewayVersion string) cn.Connector {
	config := configOf(c)
	config["slave"] = modbusSlave(config, mapping.MapSlaveToDowngradedVersion)
	config["master"] = modbusMaster(config, mapping.MapMasterToDowngradedVersion)
	return withConfig(c, config, gatewayVersion)
}

func modbusMaster(config cn.Object, fn func(cn.Object) cn.Object) cn.Object {
	master, _ := cn.AsObject(config["master"])
	if !cn.Has(master, "slaves") {
		return cn.Object{"slaves": []any{}}
	}
	return fn(master)
}

func modbusSlave(config cn.Object, fn func(cn.Object) cn.Object) cn.Object {
	slave, ok := cn.AsObject(config["slave"])
	if !ok {
		return cn.Object{}
	}
	return fn(slave)
}

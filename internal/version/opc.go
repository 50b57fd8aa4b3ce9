package version

import (
	cn "github.com/linjuya-lu/device_gateway_go/internal/connector"
	"github.com/linjuya-lu/device_gateway_go/internal/mapping"
)

// OPCConverter OPC-UA 连接器
type OPCConverter struct{}

// NewOPCProcessor 便于直接处理 OPC-UA 记录
func NewOPCProcessor(gatewayVersion string, c cn.Connector) *Processor {
	return NewProcessor(gatewayVersion, c, OPCConverter{})
}

// Upgrade server 内嵌的 mapping 提到顶层
func (OPCConverter) Upgrade(c cn.Connector, gatewayVersion string) cn.Connector {
	config := configOf(c)
	server, ok := cn.AsObject(config["server"])

	upgraded := cn.Object{"server": cn.Object{}, "mapping": []any{}}
	if ok {
		upgraded["server"] = mapping.MapServerToUpgradedVersion(server)
		if m := mapping.MapOPCMappingToUpgradedVersion(server["mapping"]); m != nil {
			upgraded["mapping"] = m
		}
	}
	return withConfig(c, upgraded, gatewayVersion)
}

// Downgrade 顶层 mapping 收回 server.mapping
func (OPCConverter) Downgrade(c cn.Connector, gatewayVersion string) cn.Connector {
	config := configOf(c)
	return withConfig(c, cn.Object{
		"server": mapping.MapServerToDowngradedVersion(config),
	}, gatewayVersion)
}

package version

import (
	cn "github.com/linjuya-lu/device_gateway_go/internal/connector"
	"github.com/linjuya-lu/device_gateway_go/internal/mapping"
)

// MQTTConverter MQTT 连接器
type MQTTConverter struct{}

// NewMQTTProcessor 便于直接处理 MQTT 记录
func NewMQTTProcessor(gatewayVersion string, c cn.Connector) *Processor {
	return NewProcessor(gatewayVersion, c, MQTTConverter{})
}

// Upgrade 五个请求列表合并进 requestsMapping，mapping 换成新转换器结构
func (MQTTConverter) Upgrade(c cn.Connector, gatewayVersion string) cn.Connector {
	config := configOf(c)

	legacy := make(map[mapping.RequestType]any, len(mapping.RequestTypes))
	for _, key := range mapping.RequestTypes {
		if v, ok := config[string(key)]; ok {
			legacy[key] = v
		}
		delete(config, string(key))
	}
	config["requestsMapping"] = mapping.MapRequestsToUpgradedVersion(legacy)

	if converted := mapping.MapMappingToUpgradedVersion(config["mapping"]); converted != nil {
		config["mapping"] = converted
	} else {
		delete(config, "mapping")
	}

	cleanUpMQTTConfig(config)
	return withConfig(c, config, gatewayVersion)
}

// Downgrade requestsMapping 拆回五个请求列表，mapping 还原为 legacy 转换器结构
func (MQTTConverter) Downgrade(c cn.Connector, gatewayVersion string) cn.Connector {
	config := configOf(c)
	requestsMapping, _ := cn.AsObject(config["requestsMapping"])
	converters := config["mapping"]
	cn.DeleteKeys(config, "requestsMapping", "mapping")

	for key, list := range mapping.MapRequestsToDowngradedVersion(requestsMapping) {
		config[string(key)] = list
	}
	if converted := mapping.MapMappingToDowngradedVersion(converters); converted != nil {
		config["mapping"] = converted
	}
	return withConfig(c, config, gatewayVersion)
}

// cleanUpMQTTConfig 空的 requestsMapping 与 mapping 不写出
func cleanUpMQTTConfig(config cn.Object) {
	if rm, ok := cn.AsObject(config["requestsMapping"]); ok && len(rm) == 0 {
		delete(config, "requestsMapping")
	}
	if m, ok := cn.AsArray(config["mapping"]); ok && len(m) == 0 {
		delete(config, "mapping")
	}
}

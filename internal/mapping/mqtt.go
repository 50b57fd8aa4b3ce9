package mapping

import (
	cn "github.com/linjuya-lu/device_gateway_go/internal/connector"
)

// RequestType MQTT 请求类型，取值即 legacy 结构中的字段名
type RequestType string

const (
	ConnectRequest    RequestType = "connectRequests"
	DisconnectRequest RequestType = "disconnectRequests"
	AttributeRequest  RequestType = "attributeRequests"
	AttributeUpdate   RequestType = "attributeUpdates"
	ServerSideRPC     RequestType = "serverSideRpc"
)

// RequestTypes 固定顺序
var RequestTypes = []RequestType{
	ConnectRequest,
	DisconnectRequest,
	AttributeRequest,
	AttributeUpdate,
	ServerSideRPC,
}

// Tag 返回请求类型的枚举名，例如 CONNECT_REQUEST
func (t RequestType) Tag() string {
	switch t {
	case ConnectRequest:
		return "CONNECT_REQUEST"
	case DisconnectRequest:
		return "DISCONNECT_REQUEST"
	case AttributeRequest:
		return "ATTRIBUTE_REQUEST"
	case AttributeUpdate:
		return "ATTRIBUTE_UPDATE"
	case ServerSideRPC:
		return "SERVER_SIDE_RPC"
	default:
		return ""
	}
}

// ConverterType 数据转换器类型
type ConverterType string

const (
	ConverterJSON   ConverterType = "json"
	ConverterBytes  ConverterType = "bytes"
	ConverterCustom ConverterType = "custom"
)

// RPCType 服务端 RPC 是否需要应答
type RPCType string

const (
	RPCWithResponse    RPCType = "twoWay"
	RPCWithoutResponse RPCType = "oneWay"
)

const (
	DefaultDeviceProfile    = "default"
	DefaultResponseTopicQoS = 1
	DefaultSubscriptionQoS  = 1
)

// 升级后不再存在的 legacy 字段
var mqttLegacyOnlyFields = []string{
	"attributeNameJsonExpression",
	"deviceNameExpression",
	"deviceNameJsonExpression",
	"deviceNameTopicExpression",
	"deviceNameExpressionSource",
	"deviceTypeExpression",
	"deviceTypeJsonExpression",
	"deviceTypeTopicExpression",
	"deviceTypeExpressionSource",
	"extension-config",
}

// 降级时要去掉的 3.5.2 字段
var mqttNewOnlyFields = []string{
	"attributeNameExpressionSource",
	"responseTopicQoS",
	"extensionConfig",
}

// MapRequestsToUpgradedVersion 把 legacy 的五个请求列表合并成 requestsMapping。
// 只收录 requests 中存在且为数组的类型。
func MapRequestsToUpgradedVersion(requests map[RequestType]any) cn.Object {
	out := cn.Object{}
	for _, key := range RequestTypes {
		list, ok := cn.AsArray(requests[key])
		if !ok {
			continue
		}
		mapped := make([]any, 0, len(list))
		for _, item := range list {
			entry, ok := cn.AsObject(item)
			if !ok {
				mapped = append(mapped, cn.DeepCopy(item))
				continue
			}
			upgraded := mapRequestToUpgradedVersion(entry, key)
			cleanUpLegacyFields(upgraded)
			mapped = append(mapped, upgraded)
		}
		out[string(key)] = mapped
	}
	return out
}

func mapRequestToUpgradedVersion(value cn.Object, key RequestType) cn.Object {
	out := cn.DeepCopy(value).(cn.Object)

	if key == AttributeRequest {
		attrName := cn.FirstString(value, "attributeNameExpression", "attributeNameJsonExpression")
		if attrName != "" {
			out["attributeNameExpression"] = attrName
			out["attributeNameExpressionSource"] = string(SourceOf(attrName))
		} else {
			out["attributeNameExpression"] = nil
			out["attributeNameExpressionSource"] = nil
		}
	}

	if _, ok := cn.AsObject(value["deviceInfo"]); !ok {
		out["deviceInfo"] = upgradedDeviceInfo(value, false)
	}

	if key == ServerSideRPC {
		if !cn.Has(value, "responseTopicQoS") {
			out["responseTopicQoS"] = DefaultResponseTopicQoS
		}
		if cn.String(value, "responseTopicExpression") != "" {
			out["type"] = string(RPCWithResponse)
		} else {
			out["type"] = string(RPCWithoutResponse)
		}
	}
	return out
}

// upgradedDeviceInfo 从 legacy 的三组表达式字段推出 deviceInfo。
// 请求条目在缺少设备名时返回 nil；转换器总会得到 deviceInfo，因为设备类型有默认值。
func upgradedDeviceInfo(value cn.Object, withoutName bool) any {
	name := cn.FirstString(value, "deviceNameExpression", "deviceNameJsonExpression", "deviceNameTopicExpression")
	if name == "" && !withoutName {
		return nil
	}
	profile := cn.FirstString(value, "deviceTypeExpression", "deviceTypeJsonExpression", "deviceTypeTopicExpression")
	if profile == "" {
		profile = DefaultDeviceProfile
	}

	info := cn.Object{
		"deviceProfileExpression":       profile,
		"deviceProfileExpressionSource": sourceOrExplicit(value, "deviceTypeExpressionSource", profile),
	}
	if name != "" {
		info["deviceNameExpression"] = name
		info["deviceNameExpressionSource"] = sourceOrExplicit(value, "deviceNameExpressionSource", name)
	}
	return info
}

func sourceOrExplicit(value cn.Object, key, expr string) string {
	if s := cn.String(value, key); s != "" {
		return s
	}
	return string(SourceOf(expr))
}

// MapRequestsToDowngradedVersion 把 requestsMapping 拆回五个 legacy 请求列表
func MapRequestsToDowngradedVersion(requestsMapping cn.Object) map[RequestType]any {
	out := map[RequestType]any{}
	for _, key := range RequestTypes {
		list, ok := cn.AsArray(requestsMapping[string(key)])
		if !ok {
			continue
		}
		mapped := make([]any, 0, len(list))
		for _, item := range list {
			entry, ok := cn.AsObject(item)
			if !ok {
				mapped = append(mapped, cn.DeepCopy(item))
				continue
			}
			downgraded := mapRequestToDowngradedVersion(entry, key)
			cleanUpNewFields(downgraded)
			mapped = append(mapped, downgraded)
		}
		out[key] = mapped
	}
	return out
}

func mapRequestToDowngradedVersion(value cn.Object, key RequestType) cn.Object {
	out := cn.DeepCopy(value).(cn.Object)
	if key == ServerSideRPC {
		delete(out, "type")
	}

	attrName := cn.String(value, "attributeNameExpression")
	delete(out, "attributeNameExpression")
	if attrName != "" {
		out["attributeNameJsonExpression"] = attrName
	} else {
		out["attributeNameJsonExpression"] = nil
	}

	delete(out, "deviceInfo")
	info, _ := cn.AsObject(value["deviceInfo"])
	writeLegacyExpression(out, info, "deviceNameExpression", "deviceNameExpressionSource",
		"deviceNameJsonExpression", "deviceNameTopicExpression")
	// 请求条目的默认 profile 不写回；转换器的会写回（见 downgradedConverter）
	if cn.String(info, "deviceProfileExpression") != DefaultDeviceProfile {
		writeLegacyExpression(out, info, "deviceProfileExpression", "deviceProfileExpressionSource",
			"deviceTypeJsonExpression", "deviceTypeTopicExpression")
	}
	return out
}

// writeLegacyExpression 来源为 topic 时写入主题字段，否则写入 JSON 字段，另一个置 null
func writeLegacyExpression(out, info cn.Object, exprKey, sourceKey, jsonKey, topicKey string) {
	var expr any
	if s := cn.String(info, exprKey); s != "" {
		expr = s
	}
	if SourceType(cn.String(info, sourceKey)) == SourceTopic {
		out[topicKey] = expr
		out[jsonKey] = nil
	} else {
		out[jsonKey] = expr
		out[topicKey] = nil
	}
}

// MapMappingToUpgradedVersion 转换 mapping 中每个主题的转换器定义。
// mapping 不是数组时返回 nil。
func MapMappingToUpgradedVersion(mapping any) []any {
	list, ok := cn.AsArray(mapping)
	if !ok {
		return nil
	}
	out := make([]any, 0, len(list))
	for _, item := range list {
		entry, ok := cn.AsObject(item)
		if !ok {
			out = append(out, cn.DeepCopy(item))
			continue
		}
		next := cn.DeepCopy(entry).(cn.Object)
		converter, _ := cn.AsObject(entry["converter"])
		next["converter"] = upgradedConverter(converter)
		if !cn.Has(entry, "subscriptionQos") {
			next["subscriptionQos"] = DefaultSubscriptionQoS
		}
		out = append(out, next)
	}
	return out
}

func upgradedConverter(converter cn.Object) cn.Object {
	out := cn.DeepCopy(converter).(cn.Object)
	if out == nil {
		out = cn.Object{}
	}
	if _, ok := cn.AsObject(converter["deviceInfo"]); !ok {
		info := upgradedDeviceInfo(converter, true).(cn.Object)
		if ConverterType(cn.String(converter, "type")) == ConverterBytes {
			bytesSources(converter, info)
		}
		out["deviceInfo"] = info
	}
	switch {
	case cn.Has(converter, "extensionConfig"):
	case cn.Has(converter, "extension-config"):
		out["extensionConfig"] = cn.DeepCopy(converter["extension-config"])
	default:
		out["extensionConfig"] = nil
	}
	cleanUpLegacyFields(out)
	return out
}

// bytesSources 字节转换器的表达式是负载切片，未显式给出来源时按 message 处理；
// 默认 profile 仍是 constant
func bytesSources(converter, info cn.Object) {
	if !cn.Has(converter, "deviceNameExpressionSource") && cn.Has(info, "deviceNameExpression") {
		info["deviceNameExpressionSource"] = string(SourceMessage)
	}
	if !cn.Has(converter, "deviceTypeExpressionSource") && info["deviceProfileExpression"] != DefaultDeviceProfile {
		info["deviceProfileExpressionSource"] = string(SourceMessage)
	}
}

// MapMappingToDowngradedVersion 把转换器定义还原为 legacy 结构。
// mapping 不是数组时返回 nil。
func MapMappingToDowngradedVersion(mapping any) []any {
	list, ok := cn.AsArray(mapping)
	if !ok {
		return nil
	}
	out := make([]any, 0, len(list))
	for _, item := range list {
		entry, ok := cn.AsObject(item)
		if !ok {
			out = append(out, cn.DeepCopy(item))
			continue
		}
		next := cn.DeepCopy(entry).(cn.Object)
		converter, _ := cn.AsObject(entry["converter"])
		next["converter"] = downgradedConverter(converter)
		out = append(out, next)
	}
	return out
}

func downgradedConverter(converter cn.Object) cn.Object {
	out := cn.DeepCopy(converter).(cn.Object)
	if out == nil {
		out = cn.Object{}
	}
	delete(out, "deviceInfo")
	info, _ := cn.AsObject(converter["deviceInfo"])

	if ConverterType(cn.String(converter, "type")) == ConverterBytes {
		out["deviceNameExpression"] = nullable(cn.String(info, "deviceNameExpression"))
		out["deviceTypeExpression"] = nullable(cn.String(info, "deviceProfileExpression"))
		out["extension-config"] = cn.DeepCopy(converter["extensionConfig"])
	} else {
		writeLegacyExpression(out, info, "deviceNameExpression", "deviceNameExpressionSource",
			"deviceNameJsonExpression", "deviceNameTopicExpression")
		// 与请求条目不同，转换器即使是默认 profile 也写回 deviceType*Expression
		writeLegacyExpression(out, info, "deviceProfileExpression", "deviceProfileExpressionSource",
			"deviceTypeJsonExpression", "deviceTypeTopicExpression")
		if cn.Has(converter, "extensionConfig") {
			out["extension-config"] = cn.DeepCopy(converter["extensionConfig"])
		}
	}
	cleanUpNewFields(out)
	return out
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func cleanUpLegacyFields(o cn.Object) {
	cn.DeleteKeys(o, mqttLegacyOnlyFields...)
	cn.DeleteNulls(o)
}

func cleanUpNewFields(o cn.Object) {
	cn.DeleteKeys(o, mqttNewOnlyFields...)
	cn.DeleteNulls(o)
}

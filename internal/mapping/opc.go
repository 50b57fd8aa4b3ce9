package mapping

import (
	"math"

	cn "github.com/linjuya-lu/device_gateway_go/internal/connector"
)

const DefaultPollPeriodInMillis = 5000

// MapServerToUpgradedVersion 去掉 server 内嵌的 mapping，把 disableSubscriptions 反转为 enableSubscriptions
func MapServerToUpgradedVersion(server cn.Object) cn.Object {
	out := cn.DeepCopy(server).(cn.Object)
	disabled, _ := cn.Bool(server, "disableSubscriptions")
	cn.DeleteKeys(out, "mapping", "disableSubscriptions")
	if !cn.Has(server, "pollPeriodInMillis") {
		out["pollPeriodInMillis"] = DefaultPollPeriodInMillis
	}
	out["enableSubscriptions"] = !disabled
	return out
}

// MapServerToDowngradedVersion 把顶层 mapping 收回 server.mapping
func MapServerToDowngradedVersion(config cn.Object) cn.Object {
	server, _ := cn.AsObject(config["server"])
	out := cn.DeepCopy(server).(cn.Object)
	enabled, _ := cn.Bool(server, "enableSubscriptions")
	delete(out, "enableSubscriptions")
	if mapping := MapOPCMappingToDowngradedVersion(config["mapping"]); mapping != nil {
		out["mapping"] = mapping
	} else {
		out["mapping"] = []any{}
	}
	out["disableSubscriptions"] = !enabled
	return out
}

// MapOPCMappingToUpgradedVersion 转换设备映射列表，mapping 不是数组时返回 nil
func MapOPCMappingToUpgradedVersion(mapping any) []any {
	list, ok := cn.AsArray(mapping)
	if !ok {
		return nil
	}
	out := make([]any, 0, len(list))
	for _, item := range list {
		legacy, ok := cn.AsObject(item)
		if !ok {
			out = append(out, cn.DeepCopy(item))
			continue
		}
		out = append(out, upgradedOPCDevice(legacy))
	}
	return out
}

func upgradedOPCDevice(legacy cn.Object) cn.Object {
	out := cn.DeepCopy(legacy).(cn.Object)
	cn.DeleteKeys(out, "deviceNamePattern", "deviceTypePattern")

	name := cn.String(legacy, "deviceNamePattern")
	profile := cn.String(legacy, "deviceTypePattern")
	if profile == "" {
		profile = DefaultDeviceProfile
	}
	out["deviceNodeSource"] = string(OPCNodeSourceOf(cn.String(legacy, "deviceNodePattern")))
	out["deviceInfo"] = cn.Object{
		"deviceNameExpression":          name,
		"deviceNameExpressionSource":    string(OPCSourceOf(name)),
		"deviceProfileExpression":       profile,
		"deviceProfileExpressionSource": string(OPCSourceOf(profile)),
	}
	mapEach(out, "attributes", func(o cn.Object) { toTypedValue(o, "key", "path") })
	mapEach(out, "timeseries", func(o cn.Object) { toTypedValue(o, "key", "path") })
	mapEach(out, "attributes_updates", func(o cn.Object) {
		toTypedValue(o, "attributeOnThingsBoard", "attributeOnDevice")
	})
	mapEach(out, "rpc_methods", func(o cn.Object) {
		args, ok := cn.AsArray(o["arguments"])
		if !ok {
			return
		}
		typed := make([]any, 0, len(args))
		for _, arg := range args {
			typed = append(typed, cn.Object{"value": arg, "type": argumentType(arg)})
		}
		o["arguments"] = typed
	})
	return out
}

// toTypedValue keyField/valueField 改名为 key/value，并按 value 推断 type
func toTypedValue(o cn.Object, keyField, valueField string) {
	renameKey(o, keyField, "key")
	if v, ok := o[valueField]; ok {
		delete(o, valueField)
		o["value"] = v
		s, _ := v.(string)
		o["type"] = string(OPCSourceOf(s))
	}
}

// fromTypedValue 是 toTypedValue 的逆过程
func fromTypedValue(o cn.Object, keyField, valueField string) {
	renameKey(o, "key", keyField)
	if v, ok := o["value"]; ok {
		cn.DeleteKeys(o, "value", "type")
		o[valueField] = v
	}
}

func renameKey(o cn.Object, from, to string) {
	if v, ok := o[from]; ok {
		delete(o, from)
		o[to] = v
	}
}

// MapOPCMappingToDowngradedVersion 还原为 legacy 设备映射，mapping 不是数组时返回 nil
func MapOPCMappingToDowngradedVersion(mapping any) []any {
	list, ok := cn.AsArray(mapping)
	if !ok {
		return nil
	}
	out := make([]any, 0, len(list))
	for _, item := range list {
		current, ok := cn.AsObject(item)
		if !ok {
			out = append(out, cn.DeepCopy(item))
			continue
		}
		out = append(out, downgradedOPCDevice(current))
	}
	return out
}

// 默认 profile 不写回 deviceTypePattern，与请求映射的降级一致
func downgradedOPCDevice(current cn.Object) cn.Object {
	out := cn.DeepCopy(current).(cn.Object)
	cn.DeleteKeys(out, "deviceInfo", "deviceNodeSource")

	if info, ok := cn.AsObject(current["deviceInfo"]); ok {
		if cn.Has(info, "deviceNameExpression") {
			out["deviceNamePattern"] = cn.DeepCopy(info["deviceNameExpression"])
		}
		if profile := cn.String(info, "deviceProfileExpression"); profile != "" && profile != DefaultDeviceProfile {
			out["deviceTypePattern"] = profile
		}
	}
	mapEach(out, "attributes", func(o cn.Object) { fromTypedValue(o, "key", "path") })
	mapEach(out, "timeseries", func(o cn.Object) { fromTypedValue(o, "key", "path") })
	mapEach(out, "attributes_updates", func(o cn.Object) {
		fromTypedValue(o, "attributeOnThingsBoard", "attributeOnDevice")
	})
	mapEach(out, "rpc_methods", func(o cn.Object) {
		args, ok := cn.AsArray(o["arguments"])
		if !ok {
			return
		}
		raw := make([]any, 0, len(args))
		for _, arg := range args {
			if typed, ok := cn.AsObject(arg); ok && cn.Has(typed, "value") {
				raw = append(raw, typed["value"])
				continue
			}
			raw = append(raw, arg)
		}
		o["arguments"] = raw
	})
	return out
}

// mapEach 在 entry[key] 是数组时原地改写其中的每个对象，其余元素与缺失的键保持不变。
// entry 必须已是深拷贝。
func mapEach(entry cn.Object, key string, fn func(cn.Object)) {
	list, ok := cn.AsArray(entry[key])
	if !ok {
		return
	}
	for _, item := range list {
		if o, ok := cn.AsObject(item); ok {
			fn(o)
		}
	}
}

func argumentType(arg any) string {
	switch t := arg.(type) {
	case bool:
		return "boolean"
	case float64:
		if t == math.Trunc(t) && !math.IsInf(t, 0) {
			return "integer"
		}
		return "float"
	case int, int64:
		return "integer"
	default:
		return "string"
	}
}

package mapping

import (
	cn "github.com/linjuya-lu/device_gateway_go/internal/connector"
)

// MapMasterToUpgradedVersion 为 master.slaves 中每个从站补齐 deviceType
func MapMasterToUpgradedVersion(master cn.Object) cn.Object {
	slaves, _ := cn.AsArray(master["slaves"])
	out := make([]any, 0, len(slaves))
	for _, item := range slaves {
		slave, ok := cn.AsObject(item)
		if !ok {
			out = append(out, cn.DeepCopy(item))
			continue
		}
		next := cn.DeepCopy(slave).(cn.Object)
		if !cn.Has(slave, "deviceType") {
			next["deviceType"] = DefaultDeviceProfile
		}
		out = append(out, next)
	}
	return cn.Object{"slaves": out}
}

// MapMasterToDowngradedVersion legacy 的从站列表与当前结构一致，只做复制
func MapMasterToDowngradedVersion(master cn.Object) cn.Object {
	slaves, _ := cn.AsArray(master["slaves"])
	out := make([]any, 0, len(slaves))
	for _, item := range slaves {
		out = append(out, cn.DeepCopy(item))
	}
	return cn.Object{"slaves": out}
}

// MapSlaveToUpgradedVersion legacy 的 values.<寄存器类型> 为单元素数组，升级后取出该元素
func MapSlaveToUpgradedVersion(slave cn.Object) cn.Object {
	out := cn.DeepCopy(slave).(cn.Object)
	values, ok := cn.AsObject(slave["values"])
	if !ok {
		return out
	}
	next := cn.Object{}
	for register, v := range values {
		list, isList := cn.AsArray(v)
		switch {
		case !isList:
			next[register] = cn.DeepCopy(v)
		case len(list) > 0:
			next[register] = cn.DeepCopy(list[0])
		}
	}
	out["values"] = next
	return out
}

// MapSlaveToDowngradedVersion 把每个寄存器类型的值重新包成数组
func MapSlaveToDowngradedVersion(slave cn.Object) cn.Object {
	out := cn.DeepCopy(slave).(cn.Object)
	values, ok := cn.AsObject(slave["values"])
	if !ok {
		return out
	}
	next := cn.Object{}
	for register, v := range values {
		if list, isList := cn.AsArray(v); isList {
			next[register] = cn.DeepCopy(list)
			continue
		}
		next[register] = []any{cn.DeepCopy(v)}
	}
	out["values"] = next
	return out
}

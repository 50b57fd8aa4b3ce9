package connector

// Object 一个已解码的 JSON 对象
type Object = map[string]any

// DeepCopy 复制 encoding/json 解码得到的值树
func DeepCopy(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = DeepCopy(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = DeepCopy(val)
		}
		return out
	default:
		return v
	}
}

// AsObject 把任意值视为 JSON 对象，不是对象时 ok 为 false
func AsObject(v any) (Object, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

// AsArray 把任意值视为 JSON 数组，不是数组时 ok 为 false
func AsArray(v any) ([]any, bool) {
	a, ok := v.([]any)
	return a, ok
}

// String 读取字符串字段，缺失、null 或非字符串时返回 ""
func String(o Object, key string) string {
	s, _ := o[key].(string)
	return s
}

// FirstString 按顺序返回第一个非空字符串字段
func FirstString(o Object, keys ...string) string {
	for _, k := range keys {
		if s := String(o, k); s != "" {
			return s
		}
	}
	return ""
}

// Bool 读取布尔字段
func Bool(o Object, key string) (bool, bool) {
	b, ok := o[key].(bool)
	return b, ok
}

// Has 字段存在且不为 null
func Has(o Object, key string) bool {
	v, ok := o[key]
	return ok && v != nil
}

// ShallowCopy 复制对象的第一层
func ShallowCopy(o Object) Object {
	out := make(Object, len(o))
	for k, v := range o {
		out[k] = v
	}
	return out
}

// DeleteKeys 删除给定键
func DeleteKeys(o Object, keys ...string) {
	for _, k := range keys {
		delete(o, k)
	}
}

// DeleteNulls 删除值严格为 null 的顶层属性
func DeleteNulls(o Object) {
	for k, v := range o {
		if v == nil {
			delete(o, k)
		}
	}
}

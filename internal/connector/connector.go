// Package connector 定义网关连接器配置记录及其 JSON 形态
package connector

import (
	"encoding/json"
	"fmt"
)

// Type 连接器协议类型
type Type string

const (
	TypeMQTT    Type = "mqtt"
	TypeModbus  Type = "modbus"
	TypeGRPC    Type = "grpc"
	TypeOPCUA   Type = "opcua"
	TypeBLE     Type = "ble"
	TypeRequest Type = "request"
	TypeCAN     Type = "can"
	TypeBACnet  Type = "bacnet"
	TypeODBC    Type = "odbc"
	TypeREST    Type = "rest"
	TypeSNMP    Type = "snmp"
	TypeFTP     Type = "ftp"
	TypeSocket  Type = "socket"
	TypeXMPP    Type = "xmpp"
	TypeOCPP    Type = "ocpp"
	TypeCustom  Type = "custom"
)

// 记录中由本包直接管理的键
const (
	keyName              = "name"
	keyType              = "type"
	keyConfigVersion     = "configVersion"
	keyConfigurationJSON = "configurationJson"
)

// Connector 网关上的一条连接器配置记录。
// Extra 保存记录中其余的键（logLevel、configuration、ts 等），原样透传。
type Connector struct {
	Name              string
	Type              Type
	ConfigVersion     string
	ConfigurationJSON Object
	Extra             Object
}

// FromMap 从已解码的 JSON 对象构造 Connector
func FromMap(m map[string]any) Connector {
	c := Connector{Extra: Object{}}
	for k, v := range m {
		switch k {
		case keyName:
			c.Name, _ = v.(string)
		case keyType:
			s, _ := v.(string)
			c.Type = Type(s)
		case keyConfigVersion:
			c.ConfigVersion = versionString(v)
		case keyConfigurationJSON:
			c.ConfigurationJSON, _ = v.(map[string]any)
		default:
			c.Extra[k] = DeepCopy(v)
		}
	}
	if c.ConfigurationJSON != nil {
		c.ConfigurationJSON = DeepCopy(c.ConfigurationJSON).(map[string]any)
	}
	return c
}

// Map 返回记录的 JSON 对象形态，结果与 c 不共享任何可变状态
func (c Connector) Map() map[string]any {
	m := make(map[string]any, len(c.Extra)+4)
	for k, v := range c.Extra {
		m[k] = DeepCopy(v)
	}
	m[keyName] = c.Name
	m[keyType] = string(c.Type)
	if c.ConfigVersion != "" {
		m[keyConfigVersion] = c.ConfigVersion
	}
	if c.ConfigurationJSON != nil {
		m[keyConfigurationJSON] = DeepCopy(c.ConfigurationJSON)
	} else {
		m[keyConfigurationJSON] = map[string]any{}
	}
	return m
}

// Clone 深拷贝
func (c Connector) Clone() Connector {
	return FromMap(c.Map())
}

// MarshalJSON 实现 json.Marshaler
func (c Connector) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Map())
}

// UnmarshalJSON 实现 json.Unmarshaler
func (c *Connector) UnmarshalJSON(data []byte) error {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("decode connector: %w", err)
	}
	if m == nil {
		return fmt.Errorf("decode connector: not a JSON object")
	}
	*c = FromMap(m)
	return nil
}

// Parse 解析一条 JSON 编码的连接器记录
func Parse(data []byte) (Connector, error) {
	var c Connector
	if err := json.Unmarshal(data, &c); err != nil {
		return Connector{}, err
	}
	return c, nil
}

// versionString 兼容以数字形式保存的 configVersion
func versionString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return fmt.Sprintf("%g", t)
	default:
		return ""
	}
}

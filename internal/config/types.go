package config

// GatewayInfo 本服务代理的网关
type GatewayInfo struct {
	Name    string `yaml:"Name"`    // EdgeX 设备名，同时是 Store 中的网关名
	Version string `yaml:"Version"` // 网关上报 Version 之前使用的版本，可为空
}

// MQTTConfig 连接 ThingsBoard（或本地 Broker）的参数
type MQTTConfig struct {
	Broker            string `yaml:"Broker"`            // tcp://host:port
	ClientID          string `yaml:"ClientID"`          // 客户端标识
	Username          string `yaml:"Username"`          // ThingsBoard 下为网关设备的 access token
	Password          string `yaml:"Password"`          // 可选
	KeepAliveSec      int    `yaml:"KeepAliveSec"`      // 心跳间隔（秒）
	ConnectTimeoutSec int    `yaml:"ConnectTimeoutSec"` // 连接超时（秒）
	RetryIntervalSec  int    `yaml:"RetryIntervalSec"`  // 自动重连间隔（秒）
	Qos               byte   `yaml:"Qos"`               // 发布/订阅默认 QoS
}

// Topics 属性同步用到的主题
type Topics struct {
	Attributes        string `yaml:"Attributes"`        // 共享属性更新
	AttributeRequest  string `yaml:"AttributeRequest"`  // 属性请求主题前缀，后接请求 ID
	AttributeResponse string `yaml:"AttributeResponse"` // 属性应答订阅（通配）
	Publish           string `yaml:"Publish"`           // 转换后的连接器写回的主题
	Events            string `yaml:"Events"`            // EdgeX 格式的转换事件，为空则不发
}

// GatewayConfig 汇总了 Gateway、MQTT、Topics 等
type GatewayConfig struct {
	Gateway             GatewayInfo `yaml:"Gateway"`
	MQTT                MQTTConfig  `yaml:"MQTT"`
	Topics              Topics      `yaml:"Topics"`
	VersionKey          string      `yaml:"VersionKey"`          // 网关上报版本的客户端属性名
	ActiveConnectorsKey string      `yaml:"ActiveConnectorsKey"` // 列出已启用连接器的共享属性名
	MetricsAddr         string      `yaml:"MetricsAddr"`         // Prometheus 监听地址，为空则不启动
}

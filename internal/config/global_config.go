package config

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v2"
)

// 默认值对应 ThingsBoard 设备 MQTT API
const (
	DefaultGatewayName         = "gateway"
	DefaultBroker              = "tcp://localhost:1883"
	DefaultClientID            = "gateway-config-sync"
	DefaultKeepAliveSec        = 60
	DefaultConnectTimeoutSec   = 10
	DefaultRetryIntervalSec    = 5
	DefaultAttributesTopic     = "v1/devices/me/attributes"
	DefaultAttributeRequest    = "v1/devices/me/attributes/request/"
	DefaultAttributeResponse   = "v1/devices/me/attributes/response/+"
	DefaultVersionKey          = "Version"
	DefaultActiveConnectorsKey = "active_connectors"
)

var (
	// GatewayCfg 全局持有反序列化后的配置
	GatewayCfg *GatewayConfig
	once       sync.Once
)

// LoadConfig 从指定 YAML 文件加载配置，只初始化一次
func LoadConfig(path string) error {
	var err error
	once.Do(func() {
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			err = fmt.Errorf("read config %s: %w", path, readErr)
			return
		}
		cfg, parseErr := Parse(data)
		if parseErr != nil {
			err = fmt.Errorf("parse config %s: %w", path, parseErr)
			return
		}
		GatewayCfg = cfg
	})
	return err
}

// Parse 解析带 GatewayConfig 段的 YAML，并补齐默认值
func Parse(data []byte) (*GatewayConfig, error) {
	doc := struct {
		GatewayConfig GatewayConfig `yaml:"GatewayConfig"`
	}{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	cfg := &doc.GatewayConfig
	applyDefaults(cfg)
	return cfg, nil
}

func applyDefaults(cfg *GatewayConfig) {
	setDefault(&cfg.Gateway.Name, DefaultGatewayName)

	setDefault(&cfg.MQTT.Broker, DefaultBroker)
	setDefault(&cfg.MQTT.ClientID, DefaultClientID)
	if cfg.MQTT.KeepAliveSec <= 0 {
		cfg.MQTT.KeepAliveSec = DefaultKeepAliveSec
	}
	if cfg.MQTT.ConnectTimeoutSec <= 0 {
		cfg.MQTT.ConnectTimeoutSec = DefaultConnectTimeoutSec
	}
	if cfg.MQTT.RetryIntervalSec <= 0 {
		cfg.MQTT.RetryIntervalSec = DefaultRetryIntervalSec
	}

	setDefault(&cfg.Topics.Attributes, DefaultAttributesTopic)
	setDefault(&cfg.Topics.AttributeRequest, DefaultAttributeRequest)
	setDefault(&cfg.Topics.AttributeResponse, DefaultAttributeResponse)
	setDefault(&cfg.Topics.Publish, DefaultAttributesTopic)

	setDefault(&cfg.VersionKey, DefaultVersionKey)
	setDefault(&cfg.ActiveConnectorsKey, DefaultActiveConnectorsKey)
}

func setDefault(field *string, value string) {
	if *field == "" {
		*field = value
	}
}

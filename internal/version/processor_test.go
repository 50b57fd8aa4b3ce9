package version

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cn "github.com/linjuya-lu/device_gateway_go/internal/connector"
)

func parseConnector(t *testing.T, s string) cn.Connector {
	t.Helper()
	c, err := cn.Parse([]byte(s))
	require.NoError(t, err)
	return c
}

func configJSON(t *testing.T, c cn.Connector) string {
	t.Helper()
	b, err := json.Marshal(c.ConfigurationJSON)
	require.NoError(t, err)
	return string(b)
}

// recordingConverter 记录被调用的分支
type recordingConverter struct {
	called Direction
}

func (r *recordingConverter) Upgrade(c cn.Connector, gatewayVersion string) cn.Connector {
	r.called = Upgrade
	c.ConfigVersion = gatewayVersion
	return c
}

func (r *recordingConverter) Downgrade(c cn.Connector, gatewayVersion string) cn.Connector {
	r.called = Downgrade
	c.ConfigVersion = gatewayVersion
	return c
}

func TestProcessorDirection(t *testing.T) {
	tests := []struct {
		name          string
		gateway       string
		configVersion string
		want          Direction
	}{
		{"equal versions", "3.5.2", "3.5.2", Unchanged},
		{"equal integers", "3.1.1", "3.11", Unchanged},
		{"gateway version empty", "", "legacy", Unchanged},
		{"gateway version legacy", "legacy", "3.5.2", Unchanged},
		{"legacy config on current gateway", "3.5.2", "legacy", Upgrade},
		{"missing config version on current gateway", "3.5.2", "", Upgrade},
		{"older config on current gateway", "3.5.2", "3.4.6", Upgrade},
		{"current config on older gateway", "3.4.6", "3.5.2", Downgrade},
		{"legacy config on intermediate gateway", "3.5.1", "legacy", Downgrade},
		{"newer config on current gateway", "3.5.2", "3.6.0", Downgrade},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conv := &recordingConverter{}
			c := cn.Connector{Name: "c", Type: cn.TypeMQTT, ConfigVersion: tt.configVersion}
			p := NewProcessor(tt.gateway, c, conv)

			assert.Equal(t, tt.want, p.Direction())
			got := p.ProcessedByVersion()

			if tt.want == Unchanged {
				assert.Empty(t, conv.called)
				assert.Equal(t, tt.configVersion, got.ConfigVersion)
				return
			}
			assert.Equal(t, tt.want, conv.called)
			assert.Equal(t, tt.gateway, got.ConfigVersion)
		})
	}
}

func TestProcessUnsupportedType(t *testing.T) {
	c := parseConnector(t, `{"name": "ble", "type": "ble", "configVersion": "legacy", "configurationJson": {"devices": []}}`)

	got, d := Process(cn.VersionCurrent, c)

	assert.Equal(t, Unchanged, d)
	assert.Equal(t, c, got)
}

func TestConverterFor(t *testing.T) {
	for _, typ := range []cn.Type{cn.TypeMQTT, cn.TypeModbus, cn.TypeOPCUA} {
		_, ok := ConverterFor(typ)
		assert.True(t, ok, typ)
	}
	_, ok := ConverterFor(cn.TypeSocket)
	assert.False(t, ok)
}

func TestProcessKeepsRecordFields(t *testing.T) {
	c := parseConnector(t, `{
		"name": "MQTT Broker", "type": "mqtt", "logLevel": "INFO", "configuration": "mqtt.json",
		"enableRemoteLogging": false,
		"configurationJson": {"broker": {"host": "127.0.0.1", "port": 1883}}
	}`)

	got, d := Process(cn.VersionCurrent, c)

	assert.Equal(t, Upgrade, d)
	assert.Equal(t, cn.VersionCurrent, got.ConfigVersion)
	assert.Equal(t, "MQTT Broker", got.Name)
	assert.Equal(t, "INFO", got.Extra["logLevel"])
	assert.Equal(t, "mqtt.json", got.Extra["configuration"])
	assert.Equal(t, false, got.Extra["enableRemoteLogging"])
	assert.JSONEq(t, `{"broker": {"host": "127.0.0.1", "port": 1883}}`, configJSON(t, got))
	// 输入记录不变
	assert.Empty(t, c.ConfigVersion)
}

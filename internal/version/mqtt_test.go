package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cn "github.com/linjuya-lu/device_gateway_go/internal/connector"
)

const currentMQTTConnector = `{
	"name": "MQTT Broker Connector",
	"type": "mqtt",
	"configVersion": "3.5.2",
	"configurationJson": {
		"broker": {"name": "Default Local Broker", "host": "127.0.0.1", "port": 1883, "version": 5},
		"mapping": [{
			"topicFilter": "sensor/data",
			"subscriptionQos": 1,
			"converter": {
				"type": "json",
				"deviceInfo": {
					"deviceNameExpression": "${serialNumber}", "deviceNameExpressionSource": "message",
					"deviceProfileExpression": "${sensorType}", "deviceProfileExpressionSource": "message"},
				"timeout": 60000,
				"timeseries": [{"type": "double", "key": "temperature", "value": "${temp}"}]
			}
		}],
		"requestsMapping": {
			"connectRequests": [{"topicFilter": "sensor/connect", "deviceInfo": {
				"deviceNameExpression": "${serialNumber}", "deviceNameExpressionSource": "message",
				"deviceProfileExpression": "default", "deviceProfileExpressionSource": "constant"}}],
			"attributeRequests": [{
				"retain": false, "topicFilter": "v1/devices/me/attributes/request",
				"deviceInfo": {
					"deviceNameExpression": "${serialNumber}", "deviceNameExpressionSource": "message",
					"deviceProfileExpression": "default", "deviceProfileExpressionSource": "constant"},
				"attributeNameExpression": "${versionAttribute}", "attributeNameExpressionSource": "message",
				"topicExpression": "devices/${deviceName}/attrs", "valueExpression": "${attributeKey}"}],
			"attributeUpdates": [{"retain": true, "deviceNameFilter": ".*", "attributeFilter": "firmwareVersion",
				"topicExpression": "sensor/${deviceName}/${attributeKey}", "valueExpression": "{\"${attributeKey}\":\"${attributeValue}\"}"}],
			"serverSideRpc": [{"type": "twoWay", "deviceNameFilter": ".*", "methodFilter": "echo",
				"requestTopicExpression": "sensor/${deviceName}/request/${methodName}/${requestId}",
				"responseTopicExpression": "sensor/${deviceName}/response/${methodName}/${requestId}",
				"responseTopicQoS": 1, "responseTimeout": 10000, "valueExpression": "${params}"}]
		}
	}
}`

func TestMQTTUpgradeScenario(t *testing.T) {
	c := parseConnector(t, `{
		"name": "mqtt", "type": "mqtt", "configVersion": "legacy",
		"configurationJson": {
			"connectRequests": [{"topicFilter": "a/b", "deviceNameJsonExpression": "${id}"}],
			"mapping": []
		}
	}`)

	got := NewMQTTProcessor("3.5.2", c).ProcessedByVersion()

	assert.Equal(t, "3.5.2", got.ConfigVersion)
	rm, ok := cn.AsObject(got.ConfigurationJSON["requestsMapping"])
	require.True(t, ok)
	first := rm["connectRequests"].([]any)[0].(cn.Object)
	info := first["deviceInfo"].(cn.Object)
	assert.Equal(t, "message", info["deviceNameExpressionSource"])
	assert.NotContains(t, got.ConfigurationJSON, "connectRequests")
	assert.NotContains(t, got.ConfigurationJSON, "mapping")
}

func TestMQTTUpgradeOmitsEmptyContainers(t *testing.T) {
	c := parseConnector(t, `{
		"name": "mqtt", "type": "mqtt", "configVersion": "legacy",
		"configurationJson": {"broker": {"host": "localhost"}, "mapping": []}
	}`)

	got := NewMQTTProcessor("3.5.2", c).ProcessedByVersion()

	assert.JSONEq(t, `{"broker": {"host": "localhost"}}`, configJSON(t, got))
}

func TestMQTTUpgradeStripsLegacyKeys(t *testing.T) {
	c := parseConnector(t, `{
		"name": "mqtt", "type": "mqtt",
		"configurationJson": {
			"connectRequests": [], "disconnectRequests": [{"topicFilter": "sensor/disconnect", "deviceNameTopicExpression": "sensor/(.*)"}],
			"attributeRequests": [], "attributeUpdates": [], "serverSideRpc": []
		}
	}`)

	got := NewMQTTProcessor("3.5.2", c).ProcessedByVersion()

	for _, key := range []string{"connectRequests", "disconnectRequests", "attributeRequests", "attributeUpdates", "serverSideRpc"} {
		assert.NotContains(t, got.ConfigurationJSON, key)
	}
	assert.JSONEq(t, `{"requestsMapping": {
		"connectRequests": [], "attributeRequests": [], "attributeUpdates": [], "serverSideRpc": [],
		"disconnectRequests": [{"topicFilter": "sensor/disconnect", "deviceInfo": {
			"deviceNameExpression": "sensor/(.*)", "deviceNameExpressionSource": "topic",
			"deviceProfileExpression": "default", "deviceProfileExpressionSource": "constant"}}]
	}}`, configJSON(t, got))
}

func TestMQTTDowngrade(t *testing.T) {
	c := parseConnector(t, currentMQTTConnector)

	got := NewMQTTProcessor("3.4.6", c).ProcessedByVersion()

	assert.Equal(t, "3.4.6", got.ConfigVersion)
	assert.NotContains(t, got.ConfigurationJSON, "requestsMapping")
	assert.JSONEq(t, `[{"topicFilter": "sensor/connect", "deviceNameJsonExpression": "${serialNumber}"}]`,
		encodeValue(t, got.ConfigurationJSON["connectRequests"]))
	assert.JSONEq(t, `[{"deviceNameFilter": ".*", "methodFilter": "echo",
		"requestTopicExpression": "sensor/${deviceName}/request/${methodName}/${requestId}",
		"responseTopicExpression": "sensor/${deviceName}/response/${methodName}/${requestId}",
		"responseTimeout": 10000, "valueExpression": "${params}"}]`,
		encodeValue(t, got.ConfigurationJSON["serverSideRpc"]))
	assert.JSONEq(t, `[{"topicFilter": "sensor/data", "subscriptionQos": 1, "converter": {
		"type": "json", "deviceNameJsonExpression": "${serialNumber}", "deviceTypeJsonExpression": "${sensorType}",
		"timeout": 60000, "timeseries": [{"type": "double", "key": "temperature", "value": "${temp}"}]}}]`,
		encodeValue(t, got.ConfigurationJSON["mapping"]))
	assert.NotContains(t, got.ConfigurationJSON, "disconnectRequests")
}

func TestMQTTRoundTrip(t *testing.T) {
	original := parseConnector(t, currentMQTTConnector)

	legacy := NewMQTTProcessor("3.4.6", original).ProcessedByVersion()
	restored := NewMQTTProcessor("3.5.2", legacy).ProcessedByVersion()

	assert.Equal(t, "3.5.2", restored.ConfigVersion)
	assert.JSONEq(t, encodeValue(t, original.ConfigurationJSON["requestsMapping"]),
		encodeValue(t, restored.ConfigurationJSON["requestsMapping"]))
	assert.JSONEq(t, encodeValue(t, original.ConfigurationJSON["mapping"]),
		encodeValue(t, restored.ConfigurationJSON["mapping"]))
	assert.JSONEq(t, configJSON(t, original), configJSON(t, restored))
}

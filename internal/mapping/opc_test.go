package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cn "github.com/linjuya-lu/device_gateway_go/internal/connector"
)

const legacyOPCMapping = `[{
	"deviceNodePattern": "Root\\.Objects\\.Device1",
	"deviceNamePattern": "Device ${Root\\.Objects\\.Device1\\.serialNumber}",
	"deviceTypePattern": "thermostat",
	"attributes": [{"key": "temperature °C", "path": "${ns=2;i=5}"}],
	"timeseries": [
		{"key": "humidity", "path": "${Root\\.Objects\\.Device1\\.TemperatureAndHumiditySensor\\.Humidity}"},
		{"key": "batteryLevel", "path": "${Battery\\.batteryLevel}"}
	],
	"rpc_methods": [{"method": "multiply", "arguments": [2, 4.5, true, "x"]}],
	"attributes_updates": [{"attributeOnThingsBoard": "deviceName", "attributeOnDevice": "Root\\.Objects\\.Device1\\.serialNumber"}]
}]`

func TestOPCSourceOf(t *testing.T) {
	assert.Equal(t, OPCSourceIdentifier, OPCSourceOf("${ns=2;i=5}"))
	assert.Equal(t, OPCSourcePath, OPCSourceOf(`Root\.Objects\.Device1`))
	assert.Equal(t, OPCSourcePath, OPCSourceOf("Root/Objects"))
	assert.Equal(t, OPCSourceConstant, OPCSourceOf("thermostat"))

	assert.Equal(t, OPCSourceIdentifier, OPCNodeSourceOf("ns=2;s=Device1"))
	assert.Equal(t, OPCSourcePath, OPCNodeSourceOf(`Root\.Objects\.Device1`))
}

func TestMapServerToUpgradedVersion(t *testing.T) {
	server := object(t, `{
		"name": "OPC-UA Demo Server", "url": "localhost:4840/freeopcua/server/",
		"timeoutInMillis": 5000, "scanPeriodInMillis": 5000, "disableSubscriptions": true,
		"mapping": [{"deviceNodePattern": "Root"}]
	}`)

	got := MapServerToUpgradedVersion(server)

	assert.Equal(t, false, got["enableSubscriptions"])
	assert.Equal(t, DefaultPollPeriodInMillis, got["pollPeriodInMillis"])
	assert.NotContains(t, got, "mapping")
	assert.NotContains(t, got, "disableSubscriptions")
	assert.Contains(t, server, "mapping")

	assert.Equal(t, true, MapServerToUpgradedVersion(cn.Object{})["enableSubscriptions"])
}

func TestMapOPCMappingToUpgradedVersion(t *testing.T) {
	got := MapOPCMappingToUpgradedVersion(decode(t, legacyOPCMapping))
	require.Len(t, got, 1)

	assert.JSONEq(t, `{
		"deviceNodePattern": "Root\\.Objects\\.Device1",
		"deviceNodeSource": "path",
		"deviceInfo": {
			"deviceNameExpression": "Device ${Root\\.Objects\\.Device1\\.serialNumber}",
			"deviceNameExpressionSource": "identifier",
			"deviceProfileExpression": "thermostat",
			"deviceProfileExpressionSource": "constant"
		},
		"attributes": [{"key": "temperature °C", "type": "identifier", "value": "${ns=2;i=5}"}],
		"timeseries": [
			{"key": "humidity", "type": "identifier", "value": "${Root\\.Objects\\.Device1\\.TemperatureAndHumiditySensor\\.Humidity}"},
			{"key": "batteryLevel", "type": "identifier", "value": "${Battery\\.batteryLevel}"}
		],
		"rpc_methods": [{"method": "multiply", "arguments": [
			{"value": 2, "type": "integer"},
			{"value": 4.5, "type": "float"},
			{"value": true, "type": "boolean"},
			{"value": "x", "type": "string"}
		]}],
		"attributes_updates": [{"key": "deviceName", "type": "path", "value": "Root\\.Objects\\.Device1\\.serialNumber"}]
	}`, encode(t, got[0]))
}

func TestMapOPCMappingDefaults(t *testing.T) {
	got := MapOPCMappingToUpgradedVersion(decode(t, `[{"deviceNodePattern": "ns=3;i=1", "deviceNamePattern": "Dev"}]`))
	require.Len(t, got, 1)
	assert.JSONEq(t, `{
		"deviceNodePattern": "ns=3;i=1",
		"deviceNodeSource": "identifier",
		"deviceInfo": {
			"deviceNameExpression": "Dev", "deviceNameExpressionSource": "constant",
			"deviceProfileExpression": "default", "deviceProfileExpressionSource": "constant"
		}
	}`, encode(t, got[0]))
}

func TestOPCMappingRoundTrip(t *testing.T) {
	upgraded := MapOPCMappingToUpgradedVersion(decode(t, legacyOPCMapping))
	downgraded := MapOPCMappingToDowngradedVersion(decode(t, encode(t, upgraded)))
	assert.JSONEq(t, legacyOPCMapping, encode(t, downgraded))
}

func TestOPCMappingRoundTripSparse(t *testing.T) {
	legacy := `[{
		"deviceNodePattern": "Root\\.Objects\\.Device1",
		"deviceNamePattern": "Device 1",
		"timeseries": [{"key": "humidity", "path": "${Humidity}"}],
		"rpc_methods": [{"method": "reset"}]
	}]`

	upgraded := MapOPCMappingToUpgradedVersion(decode(t, legacy))
	downgraded := MapOPCMappingToDowngradedVersion(decode(t, encode(t, upgraded)))

	assert.JSONEq(t, legacy, encode(t, downgraded))
}

func TestOPCMappingKeepsUnknownKeys(t *testing.T) {
	legacy := `[{
		"deviceNodePattern": "ns=2;s=Device1",
		"deviceNamePattern": "Dev",
		"deviceTypePattern": "thermostat",
		"attributes": [{"key": "k", "path": "${p}", "extra": true}, "raw"],
		"rpc_methods": [{"method": "m", "arguments": [1], "timeout": 500}],
		"attributes_updates": [{"attributeOnThingsBoard": "a", "attributeOnDevice": "Root/a", "retain": false}]
	}]`

	upgraded := MapOPCMappingToUpgradedVersion(decode(t, legacy))
	require.Len(t, upgraded, 1)
	entry := upgraded[0].(cn.Object)
	assert.JSONEq(t, `[{"key": "k", "type": "identifier", "value": "${p}", "extra": true}, "raw"]`,
		encode(t, entry["attributes"]))
	assert.JSONEq(t, `[{"method": "m", "arguments": [{"value": 1, "type": "integer"}], "timeout": 500}]`,
		encode(t, entry["rpc_methods"]))

	downgraded := MapOPCMappingToDowngradedVersion(decode(t, encode(t, upgraded)))
	assert.JSONEq(t, legacy, encode(t, downgraded))
}

func TestMapServerToDowngradedVersion(t *testing.T) {
	config := object(t, `{
		"server": {"name": "srv", "url": "localhost:4840", "enableSubscriptions": true, "pollPeriodInMillis": 5000},
		"mapping": [{
			"deviceNodePattern": "Root", "deviceNodeSource": "path",
			"deviceInfo": {"deviceNameExpression": "Dev", "deviceProfileExpression": "default"},
			"attributes": [], "timeseries": [], "rpc_methods": [], "attributes_updates": []
		}]
	}`)

	got := MapServerToDowngradedVersion(config)

	assert.JSONEq(t, `{
		"name": "srv", "url": "localhost:4840", "pollPeriodInMillis": 5000, "disableSubscriptions": false,
		"mapping": [{
			"deviceNodePattern": "Root", "deviceNamePattern": "Dev",
			"attributes": [], "timeseries": [], "rpc_methods": [], "attributes_updates": []
		}]
	}`, encode(t, got))

	empty := MapServerToDowngradedVersion(cn.Object{})
	assert.JSONEq(t, `{"mapping": [], "disableSubscriptions": true}`, encode(t, empty))
}

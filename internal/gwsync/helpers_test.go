package gwsync

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	cn "github.com/linjuya-lu/device_gateway_go/internal/connector"
	"github.com/linjuya-lu/device_gateway_go/internal/metrics"
)

func mustConnector(t *testing.T, raw string) cn.Connector {
	t.Helper()
	c, err := cn.Parse([]byte(raw))
	require.NoError(t, err)
	return c
}

func metricsConversions(mc *metrics.Collector, typ, dir string) prometheus.Collector {
	return mc.Conversions().WithLabelValues(typ, dir)
}

func metricsSyncErrors(mc *metrics.Collector, stage string) prometheus.Collector {
	return mc.SyncErrors().WithLabelValues(stage)
}

// Package metrics 连接器配置转换的 Prometheus 指标
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector 持有独立的 Registry，避免和 SDK 的全局注册冲突
type Collector struct {
	registry    *prometheus.Registry
	conversions *prometheus.CounterVec
	syncErrors  *prometheus.CounterVec
	connectors  *prometheus.GaugeVec
}

func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		conversions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gateway_connector_conversions_total",
			Help: "Connector configurations processed, by connector type and direction.",
		}, []string{"type", "direction"}),
		syncErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gateway_config_sync_errors_total",
			Help: "Failures while syncing gateway attributes, by stage.",
		}, []string{"stage"}),
		connectors: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "gateway_connectors",
			Help: "Connector configurations currently held per gateway.",
		}, []string{"gateway"}),
	}
	c.registry.MustRegister(c.conversions, c.syncErrors, c.connectors)
	return c
}

// ObserveConversion 记录一次连接器处理
func (c *Collector) ObserveConversion(connectorType, direction string) {
	if c == nil {
		return
	}
	c.conversions.WithLabelValues(connectorType, direction).Inc()
}

// ObserveSyncError 记录同步过程中某一阶段的失败
func (c *Collector) ObserveSyncError(stage string) {
	if c == nil {
		return
	}
	c.syncErrors.WithLabelValues(stage).Inc()
}

// SetConnectors 更新网关当前的连接器数量
func (c *Collector) SetConnectors(gateway string, n int) {
	if c == nil {
		return
	}
	c.connectors.WithLabelValues(gateway).Set(float64(n))
}

// Handler 暴露 /metrics
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Conversions 供测试读取计数
func (c *Collector) Conversions() *prometheus.CounterVec { return c.conversions }

// SyncErrors 供测试读取计数
func (c *Collector) SyncErrors() *prometheus.CounterVec { return c.syncErrors }

// Package gwsync 通过 ThingsBoard 设备属性 API 跟踪网关版本和连接器配置，
// 版本不一致时把转换后的配置写回网关。
package gwsync

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/edgexfoundry/go-mod-core-contracts/v4/clients/logger"
	"github.com/tidwall/gjson"

	"github.com/linjuya-lu/device_gateway_go/internal/config"
	cn "github.com/linjuya-lu/device_gateway_go/internal/connector"
	"github.com/linjuya-lu/device_gateway_go/internal/metrics"
	"github.com/linjuya-lu/device_gateway_go/internal/mqtt"
	"github.com/linjuya-lu/device_gateway_go/internal/store"
	"github.com/linjuya-lu/device_gateway_go/internal/version"
)

// deletedKey 共享属性里列出已删除连接器的键
const deletedKey = "deleted"

// Transport 同步所需的最小 MQTT 能力，*mqtt.Client 满足
type Transport interface {
	Publish(topic string, payload []byte) error
	Subscribe(topic string, handler func(topic string, payload []byte)) error
}

// Syncer 处理一个网关的属性同步
type Syncer struct {
	cfg     *config.GatewayConfig
	tr      Transport
	store   *store.Store
	metrics *metrics.Collector
	lc      logger.LoggingClient
	reqID   atomic.Int64
}

// NewSyncer metrics 可以为 nil
func NewSyncer(cfg *config.GatewayConfig, tr Transport, st *store.Store, mc *metrics.Collector, lc logger.LoggingClient) *Syncer {
	return &Syncer{cfg: cfg, tr: tr, store: st, metrics: mc, lc: lc}
}

// Start 订阅属性更新与应答，然后请求网关版本和已启用连接器列表
func (s *Syncer) Start() error {
	if err := s.tr.Subscribe(s.cfg.Topics.Attributes, s.HandleMessage); err != nil {
		return fmt.Errorf("subscribe %s: %w", s.cfg.Topics.Attributes, err)
	}
	if err := s.tr.Subscribe(s.cfg.Topics.AttributeResponse, s.HandleMessage); err != nil {
		return fmt.Errorf("subscribe %s: %w", s.cfg.Topics.AttributeResponse, err)
	}
	return s.RequestAttributes([]string{s.cfg.VersionKey}, []string{s.cfg.ActiveConnectorsKey})
}

// RequestAttributes 向 <AttributeRequest><id> 发一次属性请求
func (s *Syncer) RequestAttributes(clientKeys, sharedKeys []string) error {
	req := map[string]string{}
	if len(clientKeys) > 0 {
		req["clientKeys"] = strings.Join(clientKeys, ",")
	}
	if len(sharedKeys) > 0 {
		req["sharedKeys"] = strings.Join(sharedKeys, ",")
	}
	if len(req) == 0 {
		return nil
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return err
	}
	id := s.reqID.Add(1)
	topic := s.cfg.Topics.AttributeRequest + strconv.FormatInt(id, 10)
	if err := s.tr.Publish(topic, payload); err != nil {
		s.metrics.ObserveSyncError("request")
		return fmt.Errorf("publish attribute request %d: %w", id, err)
	}
	s.lc.Debugf("attribute request %d: %s", id, payload)
	return nil
}

// HandleMessage 是订阅回调：属性应答含 client/shared 两段，属性更新是扁平对象
func (s *Syncer) HandleMessage(topic string, payload []byte) {
	if !gjson.ValidBytes(payload) {
		s.metrics.ObserveSyncError("decode")
		s.lc.Warnf("invalid JSON on %s", topic)
		return
	}
	msg := gjson.ParseBytes(payload)
	if !msg.IsObject() {
		s.metrics.ObserveSyncError("decode")
		s.lc.Warnf("unexpected payload on %s: %s", topic, msg.Type)
		return
	}

	if s.isResponse(topic) {
		for _, section := range []string{"client", "shared"} {
			if part := msg.Get(section); part.IsObject() {
				s.handleAttributes(part)
			}
		}
		return
	}
	s.handleAttributes(msg)
}

func (s *Syncer) isResponse(topic string) bool {
	prefix := strings.TrimSuffix(s.cfg.Topics.AttributeResponse, "+")
	return prefix != s.cfg.Topics.AttributeResponse && strings.HasPrefix(topic, prefix)
}

// 版本先处理，保证同一条消息里的连接器按新版本转换
func (s *Syncer) handleAttributes(attrs gjson.Result) {
	if v := attrs.Get(gjson.Escape(s.cfg.VersionKey)); v.Exists() {
		s.handleVersion(v.String())
	}

	attrs.ForEach(func(key, value gjson.Result) bool {
		switch name := key.String(); name {
		case s.cfg.VersionKey:
		case s.cfg.ActiveConnectorsKey:
			s.handleActiveConnectors(value)
		case deletedKey:
			s.handleDeleted(value)
		default:
			if c, ok := connectorFrom(name, value); ok {
				s.handleConnector(c)
			}
		}
		return true
	})
}

func (s *Syncer) gatewayName() string {
	return s.cfg.Gateway.Name
}

// GatewayVersion 网关上报的版本，没有上报时用配置里的版本
func (s *Syncer) GatewayVersion() string {
	if v, ok := s.store.GatewayVersion(s.gatewayName()); ok {
		return v
	}
	return s.cfg.Gateway.Version
}

func (s *Syncer) handleVersion(v string) {
	if v == "" {
		return
	}
	prev := s.GatewayVersion()
	s.store.SetGatewayVersion(s.gatewayName(), v)
	if prev == v {
		return
	}
	s.lc.Infof("gateway %s version %q -> %q", s.gatewayName(), prev, v)
	for _, c := range s.store.Connectors(s.gatewayName()) {
		s.process(c)
	}
}

// active_connectors 可能是数组，也可能是数组的 JSON 字符串
func (s *Syncer) handleActiveConnectors(value gjson.Result) {
	if value.Type == gjson.String && gjson.Valid(value.Str) {
		value = gjson.Parse(value.Str)
	}
	if !value.IsArray() {
		s.lc.Warnf("%s is not a list: %s", s.cfg.ActiveConnectorsKey, value.Raw)
		return
	}
	var missing []string
	for _, n := range value.Array() {
		name := n.String()
		if name != "" && !s.store.HasConnector(s.gatewayName(), name) {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return
	}
	if err := s.RequestAttributes(nil, missing); err != nil {
		s.lc.Errorf("request connectors %v: %v", missing, err)
	}
}

func (s *Syncer) handleDeleted(value gjson.Result) {
	if !value.IsArray() {
		return
	}
	for _, n := range value.Array() {
		s.store.DeleteConnector(s.gatewayName(), n.String())
		s.lc.Infof("connector %s removed from gateway %s", n.String(), s.gatewayName())
	}
	s.metrics.SetConnectors(s.gatewayName(), len(s.store.Connectors(s.gatewayName())))
}

// connectorFrom 属性值是带 type 的对象（或其 JSON 字符串）时视为连接器记录，
// 记录里没有 name 时用属性名
func connectorFrom(key string, value gjson.Result) (cn.Connector, bool) {
	if value.Type == gjson.String && gjson.Valid(value.Str) {
		value = gjson.Parse(value.Str)
	}
	if !value.IsObject() || value.Get("type").Type != gjson.String {
		return cn.Connector{}, false
	}
	c, err := cn.Parse([]byte(value.Raw))
	if err != nil {
		return cn.Connector{}, false
	}
	if c.Name == "" {
		c.Name = key
	}
	return c, true
}

func (s *Syncer) handleConnector(c cn.Connector) {
	if err := s.store.PutConnector(s.gatewayName(), c); err != nil {
		s.metrics.ObserveSyncError("store")
		s.lc.Errorf("store connector: %v", err)
		return
	}
	s.metrics.SetConnectors(s.gatewayName(), len(s.store.Connectors(s.gatewayName())))
	s.process(c)
}

// process 按网关版本处理一条连接器，有变化时保存并写回
func (s *Syncer) process(c cn.Connector) {
	gwVersion := s.GatewayVersion()
	out, dir := version.Process(gwVersion, c)
	s.metrics.ObserveConversion(string(c.Type), string(dir))
	if dir == version.Unchanged {
		return
	}
	s.lc.Infof("connector %s (%s) %s: %q -> %q", c.Name, c.Type, dir, c.ConfigVersion, out.ConfigVersion)

	if err := s.store.PutConnector(s.gatewayName(), out); err != nil {
		s.metrics.ObserveSyncError("store")
		s.lc.Errorf("store connector %s: %v", c.Name, err)
		return
	}
	if err := s.publish(out); err != nil {
		s.metrics.ObserveSyncError("publish")
		s.lc.Errorf("publish connector %s: %v", c.Name, err)
		return
	}
	s.publishEvent(c, out, dir)
}

func (s *Syncer) publish(c cn.Connector) error {
	payload, err := json.Marshal(map[string]cn.Connector{c.Name: c})
	if err != nil {
		return err
	}
	return s.tr.Publish(s.cfg.Topics.Publish, payload)
}

func (s *Syncer) publishEvent(in, out cn.Connector, dir version.Direction) {
	if s.cfg.Topics.Events == "" {
		return
	}
	payload, err := mqtt.EncodeConversionEvent(mqtt.ConversionEvent{
		Gateway:     s.gatewayName(),
		Connector:   out.Name,
		Type:        string(out.Type),
		Direction:   string(dir),
		FromVersion: in.ConfigVersion,
		ToVersion:   out.ConfigVersion,
	})
	if err != nil {
		s.lc.Errorf("encode conversion event: %v", err)
		return
	}
	if err := s.tr.Publish(s.cfg.Topics.Events, payload); err != nil {
		s.metrics.ObserveSyncError("event")
		s.lc.Warnf("publish conversion event: %v", err)
	}
}

// Package store 内存中保存每个网关上报的版本和它的连接器配置
package store

import (
	"sort"
	"sync"

	"github.com/edgexfoundry/go-mod-core-contracts/v4/errors"

	cn "github.com/linjuya-lu/device_gateway_go/internal/connector"
)

type gateway struct {
	version    string
	connectors map[string]cn.Connector
}

// Store GatewayName → (Version, ConnectorName → Connector)
type Store struct {
	mu       sync.RWMutex
	gateways map[string]*gateway
}

// NewStore 返回一个空的 Store
func NewStore() *Store {
	return &Store{
		gateways: make(map[string]*gateway),
	}
}

func (s *Store) ensure(name string) *gateway {
	if s.gateways == nil {
		s.gateways = make(map[string]*gateway)
	}
	gw, ok := s.gateways[name]
	if !ok {
		gw = &gateway{connectors: make(map[string]cn.Connector)}
		s.gateways[name] = gw
	}
	return gw
}

// SetGatewayVersion 记录网关上报的版本
func (s *Store) SetGatewayVersion(gatewayName, version string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensure(gatewayName).version = version
}

// GatewayVersion 返回网关上报的版本，未上报时 ok 为 false
func (s *Store) GatewayVersion(gatewayName string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	gw, ok := s.gateways[gatewayName]
	if !ok || gw.version == "" {
		return "", false
	}
	return gw.version, true
}

// PutConnector 新增或替换一条连接器配置，保存的是副本
func (s *Store) PutConnector(gatewayName string, c cn.Connector) error {
	if c.Name == "" {
		return errors.NewCommonEdgeX(errors.KindContractInvalid, "connector name is empty", nil)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensure(gatewayName).connectors[c.Name] = c.Clone()
	return nil
}

// GetConnector 返回连接器配置的副本
func (s *Store) GetConnector(gatewayName, connectorName string) (cn.Connector, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	gw, ok := s.gateways[gatewayName]
	if !ok {
		return cn.Connector{}, errors.NewCommonEdgeX(
			errors.KindEntityDoesNotExist,
			"gateway not found: "+gatewayName,
			nil,
		)
	}
	c, ok := gw.connectors[connectorName]
	if !ok {
		return cn.Connector{}, errors.NewCommonEdgeX(
			errors.KindEntityDoesNotExist,
			"connector not found: "+connectorName,
			nil,
		)
	}
	return c.Clone(), nil
}

// HasConnector 是否已保存该连接器
func (s *Store) HasConnector(gatewayName, connectorName string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	gw, ok := s.gateways[gatewayName]
	if !ok {
		return false
	}
	_, ok = gw.connectors[connectorName]
	return ok
}

// Connectors 按名称排序返回网关下全部连接器的副本
func (s *Store) Connectors(gatewayName string) []cn.Connector {
	s.mu.RLock()
	defer s.mu.RUnlock()
	gw, ok := s.gateways[gatewayName]
	if !ok {
		return nil
	}
	out := make([]cn.Connector, 0, len(gw.connectors))
	for _, c := range gw.connectors {
		out = append(out, c.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// DeleteConnector 删除一条连接器配置
func (s *Store) DeleteConnector(gatewayName, connectorName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gw, ok := s.gateways[gatewayName]; ok {
		delete(gw.connectors, connectorName)
	}
}

// DeleteGateway 删除整个网关及其连接器
func (s *Store) DeleteGateway(gatewayName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.gateways, gatewayName)
}

// Close 释放底层存储
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gateways = nil
}

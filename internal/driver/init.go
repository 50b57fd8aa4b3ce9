package driver

import (
	"fmt"

	"github.com/edgexfoundry/go-mod-core-contracts/v4/clients/logger"

	"github.com/linjuya-lu/device_gateway_go/internal/config"
	"github.com/linjuya-lu/device_gateway_go/internal/gwsync"
	"github.com/linjuya-lu/device_gateway_go/internal/metrics"
	"github.com/linjuya-lu/device_gateway_go/internal/store"
)

// InitializeConfigSync 负责：
//  1. 预置配置文件里声明的网关版本
//  2. 订阅属性更新与属性应答
//  3. 请求网关版本和已启用的连接器列表
func InitializeConfigSync(cfg *config.GatewayConfig, tr gwsync.Transport, st *store.Store, mc *metrics.Collector, lc logger.LoggingClient) (*gwsync.Syncer, error) {
	if cfg.Gateway.Version != "" {
		st.SetGatewayVersion(cfg.Gateway.Name, cfg.Gateway.Version)
	}

	s := gwsync.NewSyncer(cfg, tr, st, mc, lc)
	if err := s.Start(); err != nil {
		return nil, fmt.Errorf("start attribute sync: %w", err)
	}
	return s, nil
}

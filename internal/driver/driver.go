// -*- Mode: Go; indent-tabs-mode: t -*-
//
// Copyright (C) 2019-2023 IOTech Ltd
//
// SPDX-License-Identifier: Apache-2.0

// Package driver provides an implementation of a ProtocolDriver interface.
//
// 每个 EdgeX 设备对应一个网关，设备名即网关名；每个设备资源对应一个连接器，
// 资源名即连接器名。读取返回按网关版本处理后的连接器，写入替换保存的记录。
package driver

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/edgexfoundry/device-sdk-go/v4/pkg/interfaces"
	dsModels "github.com/edgexfoundry/device-sdk-go/v4/pkg/models"
	"github.com/edgexfoundry/go-mod-core-contracts/v4/clients/logger"
	"github.com/edgexfoundry/go-mod-core-contracts/v4/models"

	"github.com/linjuya-lu/device_gateway_go/internal/config"
	"github.com/linjuya-lu/device_gateway_go/internal/gwsync"
	"github.com/linjuya-lu/device_gateway_go/internal/metrics"
	"github.com/linjuya-lu/device_gateway_go/internal/mqtt"
	"github.com/linjuya-lu/device_gateway_go/internal/store"
)

const (
	configPath = "./res/configuration.yaml"

	// protocols 里携带网关版本的段与键
	protocolGateway = "Gateway"
	protocolVersion = "Version"
)

type GatewayConfigDriver struct {
	lc         logger.LoggingClient
	locker     sync.Mutex
	sdk        interfaces.DeviceServiceSDK
	cfg        *config.GatewayConfig
	store      *store.Store
	metrics    *metrics.Collector
	mqttClient *mqtt.Client
	syncer     *gwsync.Syncer
	metricsSrv *http.Server

	connectors *resourceConnector
	version    *resourceVersion
}

var once sync.Once
var driver *GatewayConfigDriver

func NewGatewayConfigDriver() interfaces.ProtocolDriver {
	once.Do(func() {
		driver = new(GatewayConfigDriver)
	})
	return driver
}

func (d *GatewayConfigDriver) Initialize(sdk interfaces.DeviceServiceSDK) error {
	d.sdk = sdk
	d.lc = sdk.LoggingClient()

	// —— 1. 加载配置 —— //
	if err := config.LoadConfig(configPath); err != nil {
		return fmt.Errorf("加载配置失败: %w", err)
	}
	d.setup(config.GatewayCfg)

	// —— 2. 初始化 MQTT 客户端 —— //
	client, err := mqtt.NewClient(mqtt.OptionsFromConfig(d.cfg.MQTT))
	if err != nil {
		return fmt.Errorf("初始化 MQTT 客户端失败: %w", err)
	}
	d.mqttClient = client

	// —— 3. 启动网关属性同步 —— //
	syncer, err := InitializeConfigSync(d.cfg, client, d.store, d.metrics, d.lc)
	if err != nil {
		return fmt.Errorf("初始化网关配置同步失败: %w", err)
	}
	d.syncer = syncer
	return nil
}

// setup 创建与 SDK 无关的部件
func (d *GatewayConfigDriver) setup(cfg *config.GatewayConfig) {
	d.cfg = cfg
	d.store = store.NewStore()
	d.metrics = metrics.NewCollector()
	d.connectors = newResourceConnector(d.store, d.metrics)
	d.version = newResourceVersion(d.store)
}

func (d *GatewayConfigDriver) Start() error {
	if d.cfg.MetricsAddr != "" {
		d.metricsSrv = &http.Server{
			Addr:              d.cfg.MetricsAddr,
			Handler:           d.metrics.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := d.metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				d.lc.Errorf("metrics server: %v", err)
			}
		}()
		d.lc.Infof("metrics 监听 %s", d.cfg.MetricsAddr)
	}
	d.lc.Infof("网关配置同步已启动: %s", d.cfg.Gateway.Name)
	return nil
}

// gatewayVersion 优先取 protocols 中的 Gateway.Version，其次是同步到的版本
func (d *GatewayConfigDriver) gatewayVersion(deviceName string, protocols map[string]models.ProtocolProperties) string {
	if props, ok := protocols[protocolGateway]; ok {
		if v, ok := props[protocolVersion].(string); ok && v != "" {
			return v
		}
	}
	if v, ok := d.store.GatewayVersion(deviceName); ok {
		return v
	}
	if deviceName == d.cfg.Gateway.Name {
		return d.cfg.Gateway.Version
	}
	return ""
}

func (d *GatewayConfigDriver) HandleReadCommands(deviceName string, protocols map[string]models.ProtocolProperties, reqs []dsModels.CommandRequest) (res []*dsModels.CommandValue, err error) {
	d.locker.Lock()
	defer d.locker.Unlock()

	res = make([]*dsModels.CommandValue, len(reqs))
	gwVersion := d.gatewayVersion(deviceName, protocols)

	for i, req := range reqs {
		var cv *dsModels.CommandValue
		if req.DeviceResourceName == ResourceGatewayVersion {
			cv, err = d.version.value(gwVersion)
		} else {
			cv, err = d.connectors.value(deviceName, req.DeviceResourceName, gwVersion)
		}
		if err != nil {
			return nil, fmt.Errorf("读取 %s.%s 失败: %w", deviceName, req.DeviceResourceName, err)
		}
		res[i] = cv
		d.lc.Debugf("读取值: %s.%s", deviceName, req.DeviceResourceName)
	}

	return res, nil
}

func (d *GatewayConfigDriver) HandleWriteCommands(deviceName string, protocols map[string]models.ProtocolProperties, reqs []dsModels.CommandRequest,
	params []*dsModels.CommandValue) error {
	d.locker.Lock()
	defer d.locker.Unlock()

	if len(reqs) != len(params) {
		return fmt.Errorf("写请求数 %d 与参数数 %d 不一致", len(reqs), len(params))
	}
	for i, req := range reqs {
		var err error
		if req.DeviceResourceName == ResourceGatewayVersion {
			err = d.version.write(params[i], deviceName)
		} else {
			err = d.connectors.write(params[i], deviceName, req.DeviceResourceName)
		}
		if err != nil {
			return err
		}
		d.lc.Infof("写入值: %s.%s", deviceName, req.DeviceResourceName)
	}
	return nil
}

func (d *GatewayConfigDriver) Stop(force bool) error {
	d.lc.Info("GatewayConfigDriver.Stop: driver is stopping...")

	if d.metricsSrv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := d.metricsSrv.Shutdown(ctx); err != nil && !force {
			d.lc.Warnf("metrics server shutdown: %v", err)
		}
	}
	if d.mqttClient != nil {
		d.mqttClient.Disconnect(250)
	}
	if d.store != nil {
		d.store.Close()
	}
	return nil
}

func (d *GatewayConfigDriver) AddDevice(deviceName string, protocols map[string]models.ProtocolProperties, adminState models.AdminState) error {
	d.lc.Debugf("a new Device is added: %s", deviceName)
	return d.recordProtocolVersion(deviceName, protocols)
}

func (d *GatewayConfigDriver) UpdateDevice(deviceName string, protocols map[string]models.ProtocolProperties, adminState models.AdminState) error {
	d.lc.Debugf("Device %s is updated", deviceName)
	return d.recordProtocolVersion(deviceName, protocols)
}

// recordProtocolVersion 设备配置里声明了网关版本时记入 Store
func (d *GatewayConfigDriver) recordProtocolVersion(deviceName string, protocols map[string]models.ProtocolProperties) error {
	if props, ok := protocols[protocolGateway]; ok {
		if v, ok := props[protocolVersion].(string); ok && v != "" {
			d.store.SetGatewayVersion(deviceName, v)
		}
	}
	return nil
}

func (d *GatewayConfigDriver) RemoveDevice(deviceName string, protocols map[string]models.ProtocolProperties) error {
	d.lc.Debugf("Device %s is removed", deviceName)
	d.store.DeleteGateway(deviceName)
	return nil
}

func (d *GatewayConfigDriver) Discover() error {
	return fmt.Errorf("driver's Discover function isn't implemented")
}

func (d *GatewayConfigDriver) ValidateDevice(device models.Device) error {
	d.lc.Debug("Driver's ValidateDevice function isn't implemented")
	return nil
}

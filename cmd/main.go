// -*- Mode: Go; indent-tabs-mode: t -*-
//
// Copyright (C) 2018-2022 IOTech Ltd
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/edgexfoundry/device-sdk-go/v4/pkg/startup"

	"github.com/linjuya-lu/device_gateway_go/internal/driver"
)

const (
	serviceName string = "device-gateway-config"
)

// Version 构建时通过 -ldflags "-X main.Version=..." 注入
var Version = "0.0.0"

func main() {
	d := driver.NewGatewayConfigDriver()
	startup.Bootstrap(serviceName, Version, d)
}

package main

import (
	"encoding/json"
	"fmt"
	"sort"

	cn "github.com/linjuya-lu/device_gateway_go/internal/connector"
	"github.com/linjuya-lu/device_gateway_go/internal/version"
)

// Result 单条记录的处理结果
type Result struct {
	Name      string
	Type      cn.Type
	Direction version.Direction
}

// Convert 按网关版本处理输入里的连接器，输出保持输入的形状
func Convert(in []byte, gatewayVersion string) ([]byte, []Result, error) {
	var doc cn.Object
	if err := json.Unmarshal(in, &doc); err != nil {
		return nil, nil, fmt.Errorf("decode input: %w", err)
	}
	if doc == nil {
		return nil, nil, fmt.Errorf("input is not a JSON object")
	}

	if isConnector(doc) {
		out, dir := version.Process(gatewayVersion, cn.FromMap(doc))
		b, err := json.MarshalIndent(out, "", "  ")
		return b, []Result{{Name: out.Name, Type: out.Type, Direction: dir}}, err
	}

	names := make([]string, 0, len(doc))
	for name := range doc {
		names = append(names, name)
	}
	sort.Strings(names)

	var results []Result
	for _, name := range names {
		rec, ok := cn.AsObject(doc[name])
		if !ok || !isConnector(rec) {
			continue
		}
		c := cn.FromMap(rec)
		if c.Name == "" {
			c.Name = name
		}
		out, dir := version.Process(gatewayVersion, c)
		doc[name] = out.Map()
		results = append(results, Result{Name: out.Name, Type: out.Type, Direction: dir})
	}
	b, err := json.MarshalIndent(doc, "", "  ")
	return b, results, err
}

func isConnector(o cn.Object) bool {
	_, ok := o["type"].(string)
	return ok
}

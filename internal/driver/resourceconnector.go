package driver

import (
	"encoding/json"
	"fmt"

	"github.com/edgexfoundry/device-sdk-go/v4/pkg/models"
	"github.com/edgexfoundry/go-mod-core-contracts/v4/common"

	cn "github.com/linjuya-lu/device_gateway_go/internal/connector"
	"github.com/linjuya-lu/device_gateway_go/internal/metrics"
	"github.com/linjuya-lu/device_gateway_go/internal/store"
	"github.com/linjuya-lu/device_gateway_go/internal/version"
)

// resourceConnector 负责读写 Object 类型的连接器资源
type resourceConnector struct {
	store   *store.Store
	metrics *metrics.Collector
}

func newResourceConnector(st *store.Store, mc *metrics.Collector) *resourceConnector {
	return &resourceConnector{store: st, metrics: mc}
}

// value 取出保存的连接器，按网关版本处理后封装成 CommandValue。
// 保存的记录不变，读取不会写回。
func (rc *resourceConnector) value(deviceName, deviceResourceName, gatewayVersion string) (*models.CommandValue, error) {
	c, err := rc.store.GetConnector(deviceName, deviceResourceName)
	if err != nil {
		return nil, err
	}

	out, dir := version.Process(gatewayVersion, c)
	rc.metrics.ObserveConversion(string(c.Type), string(dir))

	cv, err := models.NewCommandValue(deviceResourceName, common.ValueTypeObject, out.Map())
	if err != nil {
		return nil, fmt.Errorf("creating CommandValue: %w", err)
	}
	return cv, nil
}

// write 用下发的对象替换保存的连接器，记录里没有 name 时用资源名
func (rc *resourceConnector) write(param *models.CommandValue, deviceName, deviceResourceName string) error {
	v, err := param.ObjectValue()
	if err != nil {
		return fmt.Errorf("invalid object write for %s: %w", deviceResourceName, err)
	}

	c, err := connectorOf(v)
	if err != nil {
		return fmt.Errorf("invalid connector for %s: %w", deviceResourceName, err)
	}
	if c.Name == "" {
		c.Name = deviceResourceName
	}
	if err := rc.store.PutConnector(deviceName, c); err != nil {
		return fmt.Errorf("store update failed: %w", err)
	}
	rc.metrics.SetConnectors(deviceName, len(rc.store.Connectors(deviceName)))
	return nil
}

// connectorOf 对象值可能是解码后的 map，也可能是 JSON 文本
func connectorOf(v any) (cn.Connector, error) {
	switch t := v.(type) {
	case map[string]any:
		return cn.FromMap(t), nil
	case string:
		return cn.Parse([]byte(t))
	case []byte:
		return cn.Parse(t)
	default:
		raw, err := json.Marshal(t)
		if err != nil {
			return cn.Connector{}, err
		}
		return cn.Parse(raw)
	}
}

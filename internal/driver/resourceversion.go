package driver

import (
	"fmt"

	"github.com/edgexfoundry/device-sdk-go/v4/pkg/models"
	"github.com/edgexfoundry/go-mod-core-contracts/v4/common"

	"github.com/linjuya-lu/device_gateway_go/internal/store"
)

// ResourceGatewayVersion 保留的资源名，读写网关版本
const ResourceGatewayVersion = "GatewayVersion"

// resourceVersion 负责读写 String 类型的网关版本
type resourceVersion struct {
	store *store.Store
}

func newResourceVersion(st *store.Store) *resourceVersion {
	return &resourceVersion{store: st}
}

func (rv *resourceVersion) value(gatewayVersion string) (*models.CommandValue, error) {
	cv, err := models.NewCommandValue(ResourceGatewayVersion, common.ValueTypeString, gatewayVersion)
	if err != nil {
		return nil, fmt.Errorf("creating CommandValue: %w", err)
	}
	return cv, nil
}

func (rv *resourceVersion) write(param *models.CommandValue, deviceName string) error {
	v, err := param.StringValue()
	if err != nil {
		return fmt.Errorf("invalid string write for %s: %w", ResourceGatewayVersion, err)
	}
	rv.store.SetGatewayVersion(deviceName, v)
	return nil
}

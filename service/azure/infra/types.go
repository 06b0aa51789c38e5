package azureinfra

import (
	"context"
	"log/slog"

	azureapi "github.com/yuanzhangdck/azure-glass/service/azure/api"
)

// ResourceGroupName is the fixed resource group every panel-managed
// resource lives in.
const ResourceGroupName = "AzurePanel-RG"

type service struct {
	subscriptionID string
	api            azureapi.AzureAPI
	logger         *slog.Logger
}

// Bundle is the shared-infrastructure output for one region. It is
// recomputed on every call, never persisted; names are deterministic
// functions of the region so re-ensuring converges.
type Bundle struct {
	ResourceGroup string
	SubnetID      string
	Region        string
}

// InfraService guarantees the shared networking prerequisites for a
// region exist: resource group, security group, virtual network and
// subnet. Idempotent; partial creation is completed by the next call.
type InfraService interface {
	Ensure(ctx context.Context, region string, enableIPv6 bool) (Bundle, error)
}

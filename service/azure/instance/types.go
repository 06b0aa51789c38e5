package azureinstance

import (
	"context"
	"log/slog"

	"github.com/yuanzhangdck/azure-glass/model"
	azureapi "github.com/yuanzhangdck/azure-glass/service/azure/api"
	azureinfra "github.com/yuanzhangdck/azure-glass/service/azure/infra"
)

type service struct {
	api    azureapi.AzureAPI
	infra  azureinfra.InfraService
	logger *slog.Logger
	nowMs  func() int64
}

// InstanceService provisions and manages virtual machines. Create,
// Start, Stop and Delete are fire-and-forget: they return an
// Acceptance once Azure takes the request, and List is the only
// completion signal. ChangeIPv4/ChangeIPv6 are awaited so the caller
// gets the new address back.
type InstanceService interface {
	Create(ctx context.Context, req model.CreateInstanceRequest) (model.Acceptance, error)
	List(ctx context.Context) ([]model.Instance, error)
	Start(ctx context.Context, resourceGroup, name string) (model.Acceptance, error)
	Stop(ctx context.Context, resourceGroup, name string) (model.Acceptance, error)
	Delete(ctx context.Context, resourceGroup, name string) (model.Acceptance, error)
	ChangeIPv4(ctx context.Context, resourceGroup, name string) (string, error)
	ChangeIPv6(ctx context.Context, resourceGroup, name string) (string, error)
	ListSKUs(ctx context.Context, size string) ([]model.SKUInfo, error)
}

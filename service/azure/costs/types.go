package azurecosts

import (
	"context"

	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/costmanagement/armcostmanagement"

	"github.com/yuanzhangdck/azure-glass/model"
)

type service struct {
	subscriptionID string
	client         *armcostmanagement.QueryClient
}

// CostService reports subscription spend from Azure Cost Management.
type CostService interface {
	// CurrentMonthCosts returns month-to-date spend broken down by
	// service name.
	CurrentMonthCosts(ctx context.Context) (model.CostSummary, error)
}

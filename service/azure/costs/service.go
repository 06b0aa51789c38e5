package azurecosts

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/costmanagement/armcostmanagement"

	"github.com/yuanzhangdck/azure-glass/model"
)

// NewService creates a new CostService for one subscription.
func NewService(subscriptionID string, credential azcore.TokenCredential, options *arm.ClientOptions) (CostService, error) {
	client, err := armcostmanagement.NewQueryClient(credential, options)
	if err != nil {
		return nil, fmt.Errorf("failed to create cost management client: %w", err)
	}

	return &service{
		subscriptionID: subscriptionID,
		client:         client,
	}, nil
}

// CurrentMonthCosts implements azurecosts.CostService.
func (s *service) CurrentMonthCosts(ctx context.Context) (model.CostSummary, error) {
	now := time.Now()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	scope := fmt.Sprintf("/subscriptions/%s", s.subscriptionID)

	queryDefinition := armcostmanagement.QueryDefinition{
		Type:      to.Ptr(armcostmanagement.ExportTypeActualCost),
		Timeframe: to.Ptr(armcostmanagement.TimeframeTypeCustom),
		TimePeriod: &armcostmanagement.QueryTimePeriod{
			From: to.Ptr(start),
			To:   to.Ptr(now),
		},
		Dataset: &armcostmanagement.QueryDataset{
			Granularity: to.Ptr(armcostmanagement.GranularityTypeDaily),
			Aggregation: map[string]*armcostmanagement.QueryAggregation{
				"totalCost": {
					Name:     to.Ptr("Cost"),
					Function: to.Ptr(armcostmanagement.FunctionTypeSum),
				},
			},
			Grouping: []*armcostmanagement.QueryGrouping{
				{
					Type: to.Ptr(armcostmanagement.QueryColumnTypeDimension),
					Name: to.Ptr("ServiceName"),
				},
			},
		},
	}

	resp, err := s.client.Usage(ctx, scope, queryDefinition, nil)
	if err != nil {
		return model.CostSummary{}, fmt.Errorf("failed to query costs: %w", err)
	}

	// Rows come back as [cost, serviceName, ...] per day; fold the
	// daily granularity into one amount per service.
	byService := map[string]float64{}
	if resp.Properties != nil {
		for _, row := range resp.Properties.Rows {
			if len(row) < 2 {
				continue
			}
			cost, ok := row[0].(float64)
			if !ok {
				continue
			}
			name, ok := row[1].(string)
			if !ok {
				continue
			}
			if cost > 0 {
				byService[name] += cost
			}
		}
	}

	summary := model.CostSummary{
		Start:    start.Format("2006-01-02"),
		End:      now.Format("2006-01-02"),
		Services: []model.ServiceCost{},
		Currency: "USD",
	}
	for name, amount := range byService {
		summary.Services = append(summary.Services, model.ServiceCost{
			Name:   name,
			Amount: amount,
			Unit:   "USD",
		})
		summary.Total += amount
	}
	sort.Slice(summary.Services, func(i, j int) bool {
		return summary.Services[i].Amount > summary.Services[j].Amount
	})

	return summary, nil
}

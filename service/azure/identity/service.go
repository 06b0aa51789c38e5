package azureidentity

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armsubscriptions"

	"github.com/yuanzhangdck/azure-glass/model"
)

// NewService creates a new IdentityService for one subscription.
func NewService(subscriptionID string, credential azcore.TokenCredential, options *arm.ClientOptions) (IdentityService, error) {
	client, err := armsubscriptions.NewClient(credential, options)
	if err != nil {
		return nil, fmt.Errorf("failed to create subscriptions client: %w", err)
	}

	return &service{
		subscriptionID: subscriptionID,
		client:         client,
	}, nil
}

// GetSubscriptionInfo implements azureidentity.IdentityService.
func (s *service) GetSubscriptionInfo(ctx context.Context) (model.SubscriptionInfo, error) {
	resp, err := s.client.Get(ctx, s.subscriptionID, nil)
	if err != nil {
		return model.SubscriptionInfo{}, &model.CredentialError{Reason: "failed to get subscription info", Err: err}
	}

	info := model.SubscriptionInfo{SubscriptionID: s.subscriptionID}
	if resp.DisplayName != nil {
		info.DisplayName = *resp.DisplayName
	} else {
		info.DisplayName = s.subscriptionID
	}
	if resp.State != nil {
		info.State = string(*resp.State)
	}
	if resp.TenantID != nil {
		info.TenantID = *resp.TenantID
	}
	return info, nil
}

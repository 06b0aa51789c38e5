package azureidentity

import (
	"context"

	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armsubscriptions"

	"github.com/yuanzhangdck/azure-glass/model"
)

type service struct {
	subscriptionID string
	client         *armsubscriptions.Client
}

// IdentityService resolves the subscription behind an account's
// credentials.
type IdentityService interface {
	GetSubscriptionInfo(ctx context.Context) (model.SubscriptionInfo, error)
}

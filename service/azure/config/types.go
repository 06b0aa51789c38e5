package azureconfig

import (
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
)

type service struct {
	subscriptionID string
	credential     *azidentity.DefaultAzureCredential
}

// ConfigService supplies ambient Azure credentials for headless
// sidecars that run outside the panel's stored-account flow.
type ConfigService interface {
	GetCredential() *azidentity.DefaultAzureCredential
	GetSubscriptionID() string
}

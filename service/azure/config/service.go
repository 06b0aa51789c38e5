package azureconfig

import (
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
)

func NewService(subscriptionID string) (*service, error) {
	// DefaultAzureCredential resolves environment variables
	// (AZURE_CLIENT_ID, AZURE_TENANT_ID, AZURE_CLIENT_SECRET),
	// managed identity, and az login, in that order.
	credential, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure credential: %w", err)
	}

	return &service{
		subscriptionID: subscriptionID,
		credential:     credential,
	}, nil
}

func (s *service) GetCredential() *azidentity.DefaultAzureCredential {
	return s.credential
}

func (s *service) GetSubscriptionID() string {
	return s.subscriptionID
}

package azureopenai

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/cognitiveservices/armcognitiveservices"

	"github.com/yuanzhangdck/azure-glass/model"
	azureapi "github.com/yuanzhangdck/azure-glass/service/azure/api"
)

type service struct {
	subscriptionID string
	accounts       *armcognitiveservices.AccountsClient
	deployments    *armcognitiveservices.DeploymentsClient
	usages         *armcognitiveservices.UsagesClient
	api            azureapi.AzureAPI
	logger         *slog.Logger

	// beginCreate is swapped out in tests; the default goes through
	// the SDK poller.
	beginCreate func(ctx context.Context, resourceGroup, name string, account armcognitiveservices.Account) (createPoller, error)
	pollRetries int
	pollDelay   time.Duration
}

// createPoller is the slice of the SDK account-create poller the
// bounded-polling loop needs.
type createPoller interface {
	Done() bool
	Poll(ctx context.Context) (*http.Response, error)
	Result(ctx context.Context) (armcognitiveservices.AccountsClientCreateResponse, error)
}

// OpenAIService manages Azure OpenAI (Cognitive Services) accounts,
// their model deployments, and regional quota usage.
type OpenAIService interface {
	ListAccounts(ctx context.Context) ([]model.OpenAIAccount, error)
	// CreateAccount polls the provisioning a bounded number of times,
	// then gives up and reports the account as still in progress; the
	// provider-side operation is never cancelled.
	CreateAccount(ctx context.Context, name, location string) (model.OpenAIAccount, error)
	DeleteAccount(ctx context.Context, resourceGroup, name string) error

	ListDeployments(ctx context.Context, resourceGroup, account string) ([]model.OpenAIDeployment, error)
	CreateDeployment(ctx context.Context, resourceGroup, account, name, modelName, modelVersion string, capacity int32) (model.OpenAIDeployment, error)
	DeleteDeployment(ctx context.Context, resourceGroup, account, name string) error

	ListQuotas(ctx context.Context, location string) ([]model.OpenAIQuota, error)
}

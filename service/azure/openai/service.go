package azureopenai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/cognitiveservices/armcognitiveservices"

	"github.com/yuanzhangdck/azure-glass/model"
	azureapi "github.com/yuanzhangdck/azure-glass/service/azure/api"
	azureinfra "github.com/yuanzhangdck/azure-glass/service/azure/infra"
)

const (
	accountKind = "OpenAI"
	accountSKU  = "S0"

	deploymentSKU   = "Standard"
	modelFormatOpen = "OpenAI"

	provisioningInProgress = "InProgress"

	defaultPollRetries = 20
	defaultPollDelay   = 3 * time.Second
)

// NewService creates a new OpenAIService scoped to one subscription.
func NewService(subscriptionID string, credential azcore.TokenCredential, options *arm.ClientOptions, api azureapi.AzureAPI, logger *slog.Logger) (OpenAIService, error) {
	accounts, err := armcognitiveservices.NewAccountsClient(subscriptionID, credential, options)
	if err != nil {
		return nil, fmt.Errorf("failed to create accounts client: %w", err)
	}
	deployments, err := armcognitiveservices.NewDeploymentsClient(subscriptionID, credential, options)
	if err != nil {
		return nil, fmt.Errorf("failed to create deployments client: %w", err)
	}
	usages, err := armcognitiveservices.NewUsagesClient(subscriptionID, credential, options)
	if err != nil {
		return nil, fmt.Errorf("failed to create usages client: %w", err)
	}

	s := &service{
		subscriptionID: subscriptionID,
		accounts:       accounts,
		deployments:    deployments,
		usages:         usages,
		api:            api,
		logger:         logger,
		pollRetries:    defaultPollRetries,
		pollDelay:      defaultPollDelay,
	}
	s.beginCreate = func(ctx context.Context, resourceGroup, name string, account armcognitiveservices.Account) (createPoller, error) {
		return s.accounts.BeginCreate(ctx, resourceGroup, name, account, nil)
	}
	return s, nil
}

// ListAccounts implements azureopenai.OpenAIService.
func (s *service) ListAccounts(ctx context.Context) ([]model.OpenAIAccount, error) {
	accounts := []model.OpenAIAccount{}
	pager := s.accounts.NewListPager(nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list accounts: %w", err)
		}
		for _, acct := range page.Value {
			if acct.Kind == nil || *acct.Kind != accountKind {
				continue
			}
			accounts = append(accounts, toAccount(acct))
		}
	}
	return accounts, nil
}

// CreateAccount implements azureopenai.OpenAIService.
func (s *service) CreateAccount(ctx context.Context, name, location string) (model.OpenAIAccount, error) {
	if name == "" {
		return model.OpenAIAccount{}, &model.ValidationError{Message: "account name is required"}
	}
	if location == "" {
		return model.OpenAIAccount{}, &model.ValidationError{Message: "location is required"}
	}

	if err := s.api.EnsureResourceGroup(ctx, azureinfra.ResourceGroupName, location); err != nil {
		return model.OpenAIAccount{}, &model.InfrastructureError{Step: "resource group", Err: err}
	}

	params := armcognitiveservices.Account{
		Kind:     to.Ptr(accountKind),
		Location: to.Ptr(location),
		SKU:      &armcognitiveservices.SKU{Name: to.Ptr(accountSKU)},
		Properties: &armcognitiveservices.AccountProperties{
			CustomSubDomainName: to.Ptr(name),
		},
	}
	poller, err := s.beginCreate(ctx, azureinfra.ResourceGroupName, name, params)
	if err != nil {
		return model.OpenAIAccount{}, fmt.Errorf("failed to create account %s: %w", name, err)
	}

	// A fresh OpenAI account can take minutes to provision. Poll a
	// bounded number of times and hand back an in-progress account
	// rather than blocking the request indefinitely.
	for i := 0; i < s.pollRetries && !poller.Done(); i++ {
		select {
		case <-ctx.Done():
			return model.OpenAIAccount{}, ctx.Err()
		case <-time.After(s.pollDelay):
		}
		if _, err := poller.Poll(ctx); err != nil {
			return model.OpenAIAccount{}, fmt.Errorf("failed to poll account %s: %w", name, err)
		}
	}
	if !poller.Done() {
		s.logger.Info("account provisioning still in progress", "account", name, "location", location)
		return model.OpenAIAccount{
			Name:              name,
			Location:          location,
			Kind:              accountKind,
			ProvisioningState: provisioningInProgress,
			ResourceGroup:     azureinfra.ResourceGroupName,
		}, nil
	}

	res, err := poller.Result(ctx)
	if err != nil {
		return model.OpenAIAccount{}, fmt.Errorf("failed to create account %s: %w", name, err)
	}
	return toAccount(&res.Account), nil
}

// DeleteAccount implements azureopenai.OpenAIService.
func (s *service) DeleteAccount(ctx context.Context, resourceGroup, name string) error {
	if _, err := s.accounts.BeginDelete(ctx, resourceGroup, name, nil); err != nil {
		return fmt.Errorf("failed to delete account %s: %w", name, err)
	}
	return nil
}

// ListDeployments implements azureopenai.OpenAIService.
func (s *service) ListDeployments(ctx context.Context, resourceGroup, account string) ([]model.OpenAIDeployment, error) {
	deployments := []model.OpenAIDeployment{}
	pager := s.deployments.NewListPager(resourceGroup, account, nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list deployments for %s: %w", account, err)
		}
		for _, dep := range page.Value {
			deployments = append(deployments, toDeployment(dep))
		}
	}
	return deployments, nil
}

// CreateDeployment implements azureopenai.OpenAIService.
func (s *service) CreateDeployment(ctx context.Context, resourceGroup, account, name, modelName, modelVersion string, capacity int32) (model.OpenAIDeployment, error) {
	if name == "" || modelName == "" {
		return model.OpenAIDeployment{}, &model.ValidationError{Message: "deployment name and model are required"}
	}
	if capacity <= 0 {
		capacity = 1
	}

	params := armcognitiveservices.Deployment{
		SKU: &armcognitiveservices.SKU{
			Name:     to.Ptr(deploymentSKU),
			Capacity: to.Ptr(capacity),
		},
		Properties: &armcognitiveservices.DeploymentProperties{
			Model: &armcognitiveservices.DeploymentModel{
				Format:  to.Ptr(modelFormatOpen),
				Name:    to.Ptr(modelName),
				Version: versionPtr(modelVersion),
			},
		},
	}
	poller, err := s.deployments.BeginCreateOrUpdate(ctx, resourceGroup, account, name, params, nil)
	if err != nil {
		return model.OpenAIDeployment{}, fmt.Errorf("failed to create deployment %s: %w", name, err)
	}
	res, err := poller.PollUntilDone(ctx, nil)
	if err != nil {
		return model.OpenAIDeployment{}, fmt.Errorf("failed to create deployment %s: %w", name, err)
	}
	return toDeployment(&res.Deployment), nil
}

// DeleteDeployment implements azureopenai.OpenAIService.
func (s *service) DeleteDeployment(ctx context.Context, resourceGroup, account, name string) error {
	if _, err := s.deployments.BeginDelete(ctx, resourceGroup, account, name, nil); err != nil {
		return fmt.Errorf("failed to delete deployment %s: %w", name, err)
	}
	return nil
}

// ListQuotas implements azureopenai.OpenAIService.
func (s *service) ListQuotas(ctx context.Context, location string) ([]model.OpenAIQuota, error) {
	if location == "" {
		return nil, &model.ValidationError{Message: "location is required"}
	}
	quotas := []model.OpenAIQuota{}
	pager := s.usages.NewListPager(location, nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list quotas in %s: %w", location, err)
		}
		for _, usage := range page.Value {
			quota := model.OpenAIQuota{}
			if usage.Name != nil && usage.Name.Value != nil {
				quota.Name = *usage.Name.Value
			}
			if usage.CurrentValue != nil {
				quota.CurrentValue = *usage.CurrentValue
			}
			if usage.Limit != nil {
				quota.Limit = *usage.Limit
			}
			if usage.Unit != nil {
				quota.Unit = string(*usage.Unit)
			}
			quotas = append(quotas, quota)
		}
	}
	return quotas, nil
}

func toAccount(acct *armcognitiveservices.Account) model.OpenAIAccount {
	out := model.OpenAIAccount{}
	if acct.Name != nil {
		out.Name = *acct.Name
	}
	if acct.Location != nil {
		out.Location = *acct.Location
	}
	if acct.Kind != nil {
		out.Kind = *acct.Kind
	}
	if acct.ID != nil {
		out.ResourceGroup = resourceGroupFromID(*acct.ID)
	}
	if acct.Properties != nil {
		if acct.Properties.Endpoint != nil {
			out.Endpoint = *acct.Properties.Endpoint
		}
		if acct.Properties.ProvisioningState != nil {
			out.ProvisioningState = string(*acct.Properties.ProvisioningState)
		}
	}
	return out
}

func toDeployment(dep *armcognitiveservices.Deployment) model.OpenAIDeployment {
	out := model.OpenAIDeployment{}
	if dep.Name != nil {
		out.Name = *dep.Name
	}
	if dep.SKU != nil {
		if dep.SKU.Name != nil {
			out.SKU = *dep.SKU.Name
		}
		if dep.SKU.Capacity != nil {
			out.Capacity = *dep.SKU.Capacity
		}
	}
	if dep.Properties != nil {
		if dep.Properties.Model != nil {
			if dep.Properties.Model.Name != nil {
				out.Model = *dep.Properties.Model.Name
			}
			if dep.Properties.Model.Version != nil {
				out.ModelVersion = *dep.Properties.Model.Version
			}
		}
		if dep.Properties.ProvisioningState != nil {
			out.ProvisioningState = string(*dep.Properties.ProvisioningState)
		}
	}
	return out
}

func resourceGroupFromID(id string) string {
	parts := strings.Split(id, "/")
	for i, part := range parts {
		if strings.EqualFold(part, "resourceGroups") && i+1 < len(parts) {
			return parts[i+1]
		}
	}
	return ""
}

func versionPtr(version string) *string {
	if version == "" {
		return nil
	}
	return to.Ptr(version)
}

package clientcache

import (
	"log/slog"
	"net/http"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"

	"github.com/yuanzhangdck/azure-glass/model"
	azureapi "github.com/yuanzhangdck/azure-glass/service/azure/api"
	azurecosts "github.com/yuanzhangdck/azure-glass/service/azure/costs"
	azureidentity "github.com/yuanzhangdck/azure-glass/service/azure/identity"
	azureinfra "github.com/yuanzhangdck/azure-glass/service/azure/infra"
	azureinstance "github.com/yuanzhangdck/azure-glass/service/azure/instance"
	azureopenai "github.com/yuanzhangdck/azure-glass/service/azure/openai"
	"github.com/yuanzhangdck/azure-glass/service/proxybind"
)

// buildFunc constructs a ClientSet for an account using the given
// proxy-bound HTTP client. Swapped out in tests.
type buildFunc func(account model.Account, httpClient *http.Client, logger *slog.Logger) (*ClientSet, error)

type Option func(*service)

// WithBuilder overrides ClientSet construction (tests only).
func WithBuilder(b func(model.Account, *http.Client, *slog.Logger) (*ClientSet, error)) Option {
	return func(s *service) { s.build = b }
}

var defaultLogger = slog.Default

func NewService(proxy proxybind.ProxyService, opts ...Option) *service {
	s := &service{
		sets:  make(map[string]*ClientSet),
		proxy: proxy,
		build: buildClientSet,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Resolve implements clientcache.CacheService. A cached set whose
// fingerprint no longer matches the account's socks5 value is evicted
// and rebuilt before returning.
func (s *service) Resolve(account model.Account) (*ClientSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if set, ok := s.sets[account.ID]; ok && set.ProxyFingerprint == account.Socks5 {
		return set, nil
	}
	delete(s.sets, account.ID)

	if err := account.Credentials.Validate(); err != nil {
		return nil, &model.CredentialError{Reason: "incomplete credentials", Err: err}
	}

	httpClient, err := s.proxy.Client(account.Socks5)
	if err != nil {
		return nil, &model.CredentialError{Reason: "proxy binding failed", Err: err}
	}

	set, err := s.build(account, httpClient, defaultLogger())
	if err != nil {
		return nil, err
	}
	s.sets[account.ID] = set
	return set, nil
}

// Invalidate implements clientcache.CacheService.
func (s *service) Invalidate(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sets, id)
}

func buildClientSet(account model.Account, httpClient *http.Client, logger *slog.Logger) (*ClientSet, error) {
	creds := account.Credentials

	credential, err := azidentity.NewClientSecretCredential(
		creds.TenantID, creds.ClientID, creds.ClientSecret,
		&azidentity.ClientSecretCredentialOptions{
			ClientOptions: azcore.ClientOptions{Transport: httpClient},
		})
	if err != nil {
		return nil, &model.CredentialError{Reason: "failed to build credential", Err: err}
	}

	// Same transport for every resource client, so both the token
	// exchange and the management calls ride the account's tunnel.
	options := &arm.ClientOptions{
		ClientOptions: azcore.ClientOptions{Transport: httpClient},
	}

	api, err := azureapi.NewService(creds.SubscriptionID, credential, options)
	if err != nil {
		return nil, &model.CredentialError{Reason: "failed to build resource clients", Err: err}
	}

	identity, err := azureidentity.NewService(creds.SubscriptionID, credential, options)
	if err != nil {
		return nil, &model.CredentialError{Reason: "failed to build subscription client", Err: err}
	}

	openai, err := azureopenai.NewService(creds.SubscriptionID, credential, options, api, logger)
	if err != nil {
		return nil, &model.CredentialError{Reason: "failed to build cognitive services client", Err: err}
	}

	costs, err := azurecosts.NewService(creds.SubscriptionID, credential, options)
	if err != nil {
		return nil, &model.CredentialError{Reason: "failed to build cost client", Err: err}
	}

	infra := azureinfra.NewService(creds.SubscriptionID, api, logger)
	instances := azureinstance.NewService(api, infra, logger)

	return &ClientSet{
		AccountID:        account.ID,
		SubscriptionID:   creds.SubscriptionID,
		ProxyFingerprint: account.Socks5,
		API:              api,
		Infra:            infra,
		Instances:        instances,
		Identity:         identity,
		OpenAI:           openai,
		Costs:            costs,
	}, nil
}

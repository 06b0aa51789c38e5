package clientcache

import (
	"sync"

	"github.com/yuanzhangdck/azure-glass/model"
	azureapi "github.com/yuanzhangdck/azure-glass/service/azure/api"
	azurecosts "github.com/yuanzhangdck/azure-glass/service/azure/costs"
	azureidentity "github.com/yuanzhangdck/azure-glass/service/azure/identity"
	azureinfra "github.com/yuanzhangdck/azure-glass/service/azure/infra"
	azureinstance "github.com/yuanzhangdck/azure-glass/service/azure/instance"
	azureopenai "github.com/yuanzhangdck/azure-glass/service/azure/openai"
	"github.com/yuanzhangdck/azure-glass/service/proxybind"
)

// ClientSet is the per-account set of provider services, all sharing
// one credential handle and one proxy binding. It is valid only while
// ProxyFingerprint matches the owning account's current socks5 value.
type ClientSet struct {
	AccountID        string
	SubscriptionID   string
	ProxyFingerprint string

	API       azureapi.AzureAPI
	Infra     azureinfra.InfraService
	Instances azureinstance.InstanceService
	Identity  azureidentity.IdentityService
	OpenAI    azureopenai.OpenAIService
	Costs     azurecosts.CostService
}

type service struct {
	mu    sync.Mutex
	sets  map[string]*ClientSet
	proxy proxybind.ProxyService
	build buildFunc
}

// CacheService caches ClientSets by account id. Resolve rebuilds the
// set when the account's proxy URL no longer matches the cached
// fingerprint; Invalidate evicts after credential/proxy edits and
// account deletion.
type CacheService interface {
	Resolve(account model.Account) (*ClientSet, error)
	Invalidate(id string)
}

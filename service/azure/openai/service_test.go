package azureopenai

import (
	"context"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/cognitiveservices/armcognitiveservices"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yuanzhangdck/azure-glass/model"
	"github.com/yuanzhangdck/azure-glass/service/azure/api/fakes"
	azureinfra "github.com/yuanzhangdck/azure-glass/service/azure/infra"
)

// fakePoller completes after a fixed number of polls.
type fakePoller struct {
	pollsLeft int
	polls     int
	result    armcognitiveservices.Account
}

func (p *fakePoller) Done() bool {
	return p.pollsLeft <= 0
}

func (p *fakePoller) Poll(_ context.Context) (*http.Response, error) {
	p.polls++
	p.pollsLeft--
	return nil, nil
}

func (p *fakePoller) Result(_ context.Context) (armcognitiveservices.AccountsClientCreateResponse, error) {
	return armcognitiveservices.AccountsClientCreateResponse{Account: p.result}, nil
}

func newTestService(fake *fakes.Fake, poller *fakePoller) *service {
	s := &service{
		subscriptionID: "sub-1",
		api:            fake,
		logger:         slog.New(slog.DiscardHandler),
		pollRetries:    3,
		pollDelay:      time.Microsecond,
	}
	s.beginCreate = func(_ context.Context, _, _ string, _ armcognitiveservices.Account) (createPoller, error) {
		return poller, nil
	}
	return s
}

func TestCreateAccount_ReturnsProvisionedAccount(t *testing.T) {
	t.Parallel()

	poller := &fakePoller{
		pollsLeft: 2,
		result: armcognitiveservices.Account{
			ID:       to.Ptr("/subscriptions/sub-1/resourceGroups/AzurePanel-RG/providers/Microsoft.CognitiveServices/accounts/ai-east"),
			Name:     to.Ptr("ai-east"),
			Kind:     to.Ptr("OpenAI"),
			Location: to.Ptr("eastus"),
			Properties: &armcognitiveservices.AccountProperties{
				Endpoint:          to.Ptr("https://ai-east.openai.azure.com/"),
				ProvisioningState: to.Ptr(armcognitiveservices.ProvisioningStateSucceeded),
			},
		},
	}
	fake := fakes.New()
	s := newTestService(fake, poller)

	acct, err := s.CreateAccount(context.Background(), "ai-east", "eastus")
	require.NoError(t, err)

	assert.Equal(t, "ai-east", acct.Name)
	assert.Equal(t, "Succeeded", acct.ProvisioningState)
	assert.Equal(t, "https://ai-east.openai.azure.com/", acct.Endpoint)
	assert.Equal(t, azureinfra.ResourceGroupName, acct.ResourceGroup)
	assert.Equal(t, 2, poller.polls)
	assert.Equal(t, 1, fake.CallCount("EnsureResourceGroup"))
}

func TestCreateAccount_GivesUpAfterBoundedPolling(t *testing.T) {
	t.Parallel()

	// Never completes within the retry budget.
	poller := &fakePoller{pollsLeft: 100}
	s := newTestService(fakes.New(), poller)

	acct, err := s.CreateAccount(context.Background(), "ai-slow", "westus")
	require.NoError(t, err)

	assert.Equal(t, "InProgress", acct.ProvisioningState)
	assert.Equal(t, "ai-slow", acct.Name)
	assert.Equal(t, "westus", acct.Location)
	assert.Equal(t, 3, poller.polls)
}

func TestCreateAccount_RequiresNameAndLocation(t *testing.T) {
	t.Parallel()

	s := newTestService(fakes.New(), &fakePoller{})

	_, err := s.CreateAccount(context.Background(), "", "eastus")
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)

	_, err = s.CreateAccount(context.Background(), "ai-east", "")
	require.ErrorAs(t, err, &verr)
}

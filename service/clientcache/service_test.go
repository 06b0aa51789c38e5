package clientcache

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yuanzhangdck/azure-glass/model"
)

type fakeProxy struct {
	clients []string
	err     error
}

func (p *fakeProxy) Client(socks5URL string) (*http.Client, error) {
	if p.err != nil {
		return nil, p.err
	}
	p.clients = append(p.clients, socks5URL)
	return &http.Client{}, nil
}

func (p *fakeProxy) SelfTest(_ context.Context, _ string) (string, error) {
	return "", nil
}

func testAccount(id, socks5 string) model.Account {
	return model.Account{
		ID:     id,
		Name:   "acct-" + id,
		Socks5: socks5,
		Credentials: model.Credentials{
			TenantID:       "tenant-1",
			ClientID:       "client-1",
			ClientSecret:   "secret-1",
			SubscriptionID: "sub-" + id,
		},
	}
}

// countingBuilder returns distinct ClientSets and counts builds.
func countingBuilder(builds *int) func(model.Account, *http.Client, *slog.Logger) (*ClientSet, error) {
	return func(account model.Account, _ *http.Client, _ *slog.Logger) (*ClientSet, error) {
		*builds++
		return &ClientSet{
			AccountID:        account.ID,
			SubscriptionID:   account.Credentials.SubscriptionID,
			ProxyFingerprint: account.Socks5,
		}, nil
	}
}

func TestResolve_ReusesCachedSet(t *testing.T) {
	t.Parallel()

	builds := 0
	s := NewService(&fakeProxy{}, WithBuilder(countingBuilder(&builds)))
	account := testAccount("a1", "")

	first, err := s.Resolve(account)
	require.NoError(t, err)
	second, err := s.Resolve(account)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, builds)
}

func TestResolve_RebuildsWhenProxyChanges(t *testing.T) {
	t.Parallel()

	builds := 0
	proxy := &fakeProxy{}
	s := NewService(proxy, WithBuilder(countingBuilder(&builds)))

	account := testAccount("a1", "")
	first, err := s.Resolve(account)
	require.NoError(t, err)

	// Attach a proxy: the cached set's fingerprint no longer matches.
	account.Socks5 = "socks5://127.0.0.1:1080"
	second, err := s.Resolve(account)
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.Equal(t, "socks5://127.0.0.1:1080", second.ProxyFingerprint)

	// Detach it again: another rebuild, back to a direct client.
	account.Socks5 = ""
	third, err := s.Resolve(account)
	require.NoError(t, err)
	assert.NotSame(t, second, third)
	assert.Empty(t, third.ProxyFingerprint)

	assert.Equal(t, 3, builds)
	assert.Equal(t, []string{"", "socks5://127.0.0.1:1080", ""}, proxy.clients)
}

func TestResolve_KeepsAccountsIsolated(t *testing.T) {
	t.Parallel()

	builds := 0
	s := NewService(&fakeProxy{}, WithBuilder(countingBuilder(&builds)))

	a, err := s.Resolve(testAccount("a1", ""))
	require.NoError(t, err)
	b, err := s.Resolve(testAccount("a2", ""))
	require.NoError(t, err)

	assert.NotSame(t, a, b)
	assert.Equal(t, "sub-a1", a.SubscriptionID)
	assert.Equal(t, "sub-a2", b.SubscriptionID)
	assert.Equal(t, 2, builds)
}

func TestResolve_RejectsIncompleteCredentials(t *testing.T) {
	t.Parallel()

	builds := 0
	s := NewService(&fakeProxy{}, WithBuilder(countingBuilder(&builds)))

	account := testAccount("a1", "")
	account.Credentials.ClientSecret = ""

	_, err := s.Resolve(account)
	var cerr *model.CredentialError
	require.ErrorAs(t, err, &cerr)
	assert.Zero(t, builds)
}

func TestResolve_WrapsProxyFailure(t *testing.T) {
	t.Parallel()

	builds := 0
	proxy := &fakeProxy{err: errors.New("bad proxy url")}
	s := NewService(proxy, WithBuilder(countingBuilder(&builds)))

	_, err := s.Resolve(testAccount("a1", "socks5://nope"))
	var cerr *model.CredentialError
	require.ErrorAs(t, err, &cerr)
	assert.Zero(t, builds)
}

func TestInvalidate_ForcesRebuild(t *testing.T) {
	t.Parallel()

	builds := 0
	s := NewService(&fakeProxy{}, WithBuilder(countingBuilder(&builds)))
	account := testAccount("a1", "")

	first, err := s.Resolve(account)
	require.NoError(t, err)

	s.Invalidate(account.ID)

	second, err := s.Resolve(account)
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.Equal(t, 2, builds)
}

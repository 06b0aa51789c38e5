package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yuanzhangdck/azure-glass/model"
)

func validCreds() model.Credentials {
	return model.Credentials{
		TenantID:       "tenant-1",
		ClientID:       "client-1",
		ClientSecret:   "secret-1",
		SubscriptionID: "sub-1",
	}
}

func newStore(t *testing.T) *service {
	t.Helper()
	s, err := NewService(t.TempDir())
	require.NoError(t, err)
	return s
}

func TestCreate_PersistsAndSurvivesReload(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s, err := NewService(dir)
	require.NoError(t, err)

	account, err := s.Create("prod", "main tenant", validCreds(), "socks5://127.0.0.1:1080")
	require.NoError(t, err)
	assert.NotEmpty(t, account.ID)
	assert.False(t, account.CreatedAt.IsZero())

	// A fresh store over the same directory sees the account.
	reloaded, err := NewService(dir)
	require.NoError(t, err)
	got, err := reloaded.Get(account.ID)
	require.NoError(t, err)
	assert.Equal(t, "prod", got.Name)
	assert.Equal(t, "socks5://127.0.0.1:1080", got.Socks5)
	assert.Equal(t, validCreds(), got.Credentials)
}

func TestCreate_RejectsIncompleteCredentials(t *testing.T) {
	t.Parallel()

	s := newStore(t)

	creds := validCreds()
	creds.ClientSecret = ""
	_, err := s.Create("prod", "", creds, "")

	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Message, "clientSecret")
}

func TestCreate_AssignsDistinctIDs(t *testing.T) {
	t.Parallel()

	s := newStore(t)

	a, err := s.Create("one", "", validCreds(), "")
	require.NoError(t, err)
	b, err := s.Create("two", "", validCreds(), "")
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
}

func TestList_OmitsCredentials(t *testing.T) {
	t.Parallel()

	s := newStore(t)
	_, err := s.Create("prod", "", validCreds(), "")
	require.NoError(t, err)

	summaries, err := s.List()
	require.NoError(t, err)
	require.Len(t, summaries, 1)

	data, err := json.Marshal(summaries[0])
	require.NoError(t, err)
	assert.NotContains(t, string(data), "secret-1")
	assert.NotContains(t, string(data), "clientSecret")
}

func TestUpdate_MergesOnlyProvidedFields(t *testing.T) {
	t.Parallel()

	s := newStore(t)
	account, err := s.Create("prod", "old remark", validCreds(), "socks5://127.0.0.1:1080")
	require.NoError(t, err)

	name := "staging"
	got, err := s.Update(account.ID, AccountPatch{Name: &name})
	require.NoError(t, err)

	assert.Equal(t, "staging", got.Name)
	assert.Equal(t, "old remark", got.Remark)
	assert.Equal(t, "socks5://127.0.0.1:1080", got.Socks5)
	assert.Equal(t, validCreds(), got.Credentials)
}

func TestUpdate_ClearsProxyWithEmptyString(t *testing.T) {
	t.Parallel()

	s := newStore(t)
	account, err := s.Create("prod", "", validCreds(), "socks5://127.0.0.1:1080")
	require.NoError(t, err)

	empty := ""
	got, err := s.Update(account.ID, AccountPatch{Socks5: &empty})
	require.NoError(t, err)
	assert.Empty(t, got.Socks5)
}

func TestUpdate_RejectsIncompleteReplacementCredentials(t *testing.T) {
	t.Parallel()

	s := newStore(t)
	account, err := s.Create("prod", "", validCreds(), "")
	require.NoError(t, err)

	bad := validCreds()
	bad.TenantID = ""
	_, err = s.Update(account.ID, AccountPatch{Credentials: &bad})

	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)

	// Stored credentials remain intact.
	got, err := s.Get(account.ID)
	require.NoError(t, err)
	assert.Equal(t, validCreds(), got.Credentials)
}

func TestUpdate_UnknownID(t *testing.T) {
	t.Parallel()

	s := newStore(t)
	name := "x"
	_, err := s.Update("missing", AccountPatch{Name: &name})

	var nferr *model.NotFoundError
	require.ErrorAs(t, err, &nferr)
}

func TestDelete_RemovesAccount(t *testing.T) {
	t.Parallel()

	s := newStore(t)
	account, err := s.Create("prod", "", validCreds(), "")
	require.NoError(t, err)
	other, err := s.Create("staging", "", validCreds(), "")
	require.NoError(t, err)

	require.NoError(t, s.Delete(account.ID))

	_, err = s.Get(account.ID)
	var nferr *model.NotFoundError
	require.ErrorAs(t, err, &nferr)

	_, err = s.Get(other.ID)
	assert.NoError(t, err)

	assert.ErrorAs(t, s.Delete(account.ID), &nferr)
}

func TestPassword_DefaultsAndInitializesConfig(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s, err := NewService(dir)
	require.NoError(t, err)

	pw, err := s.Password()
	require.NoError(t, err)
	assert.Equal(t, "password", pw)

	// First read materializes config.json.
	_, err = os.Stat(filepath.Join(dir, "config.json"))
	assert.NoError(t, err)
}

func TestSetPassword_EnforcesMinimumLength(t *testing.T) {
	t.Parallel()

	s := newStore(t)

	var verr *model.ValidationError
	require.ErrorAs(t, s.SetPassword("abcd"), &verr)

	require.NoError(t, s.SetPassword("abcde"))
	pw, err := s.Password()
	require.NoError(t, err)
	assert.Equal(t, "abcde", pw)
}

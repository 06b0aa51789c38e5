package model

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"
)

// Credentials is an Azure service principal key, the same shape the
// portal hands out when creating an app registration.
type Credentials struct {
	TenantID       string `json:"tenantId"`
	ClientID       string `json:"clientId"`
	ClientSecret   string `json:"clientSecret"`
	SubscriptionID string `json:"subscriptionId"`
}

// Validate checks that all four required fields are present.
func (c Credentials) Validate() error {
	var missing []string
	if c.TenantID == "" {
		missing = append(missing, "tenantId")
	}
	if c.ClientID == "" {
		missing = append(missing, "clientId")
	}
	if c.ClientSecret == "" {
		missing = append(missing, "clientSecret")
	}
	if c.SubscriptionID == "" {
		missing = append(missing, "subscriptionId")
	}
	if len(missing) > 0 {
		return &ValidationError{Message: fmt.Sprintf("missing fields: %s", strings.Join(missing, ", "))}
	}
	return nil
}

// Account is a stored credential bundle plus its proxy configuration.
type Account struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Remark      string      `json:"remark,omitempty"`
	Credentials Credentials `json:"credentials"`
	Socks5      string      `json:"socks5,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// AccountSummary is the listing projection of an Account. It never
// carries the credential bundle.
type AccountSummary struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Remark         string    `json:"remark,omitempty"`
	Socks5         string    `json:"socks5,omitempty"`
	SubscriptionID string    `json:"subscriptionId"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Summary returns the secret-free projection of the account.
func (a Account) Summary() AccountSummary {
	return AccountSummary{
		ID:             a.ID,
		Name:           a.Name,
		Remark:         a.Remark,
		Socks5:         a.Socks5,
		SubscriptionID: a.Credentials.SubscriptionID,
		CreatedAt:      a.CreatedAt,
	}
}

var idCounter atomic.Uint64

// NewAccountID derives an opaque account id from the creation time.
// The counter suffix keeps ids unique when two accounts are created
// within the same millisecond.
func NewAccountID(now time.Time) string {
	return fmt.Sprintf("%d-%d", now.UnixMilli(), idCounter.Add(1))
}

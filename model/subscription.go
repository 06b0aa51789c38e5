package model

// SubscriptionInfo describes the subscription an account's credentials
// resolve to.
type SubscriptionInfo struct {
	SubscriptionID string `json:"subscriptionId"`
	DisplayName    string `json:"displayName"`
	State          string `json:"state,omitempty"`
	TenantID       string `json:"tenantId,omitempty"`
}

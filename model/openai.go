package model

// OpenAIAccount is a Cognitive Services account of kind OpenAI.
type OpenAIAccount struct {
	Name              string `json:"name"`
	Location          string `json:"location"`
	Kind              string `json:"kind"`
	Endpoint          string `json:"endpoint,omitempty"`
	ProvisioningState string `json:"provisioningState"`
	ResourceGroup     string `json:"resourceGroup"`
}

// OpenAIDeployment is a model deployment under an OpenAI account.
type OpenAIDeployment struct {
	Name              string `json:"name"`
	Model             string `json:"model"`
	ModelVersion      string `json:"modelVersion,omitempty"`
	SKU               string `json:"sku,omitempty"`
	Capacity          int32  `json:"capacity,omitempty"`
	ProvisioningState string `json:"provisioningState"`
}

// OpenAIQuota is a regional usage/limit pair for a Cognitive Services
// quota dimension.
type OpenAIQuota struct {
	Name         string  `json:"name"`
	CurrentValue float64 `json:"currentValue"`
	Limit        float64 `json:"limit"`
	Unit         string  `json:"unit,omitempty"`
}

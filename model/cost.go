package model

// ServiceCost is the month-to-date spend of a single Azure service.
type ServiceCost struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	Unit   string  `json:"unit"`
}

// CostSummary is the month-to-date cost breakdown for a subscription.
type CostSummary struct {
	Start    string        `json:"start"`
	End      string        `json:"end"`
	Services []ServiceCost `json:"services"`
	Total    float64       `json:"total"`
	Currency string        `json:"currency"`
}

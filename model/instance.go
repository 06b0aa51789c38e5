package model

// IPUnresolved is reported for an instance whose network interface or
// public address lookup failed during listing. The listing itself is
// the completion signal for fire-and-forget operations, so a partial
// row is more useful than an aborted list.
const IPUnresolved = "unresolved"

// IPNone is reported when an instance has no address of that family.
const IPNone = "None"

// Instance is a virtual machine as surfaced to the panel.
type Instance struct {
	Name              string `json:"name"`
	Location          string `json:"location"`
	Size              string `json:"size"`
	ProvisioningState string `json:"provisioningState"`
	PublicIP          string `json:"publicIp"`
	PublicIPv6        string `json:"publicIpV6"`
	ResourceGroup     string `json:"resourceGroup"`
}

// CreateInstanceRequest carries everything needed to provision a VM.
type CreateInstanceRequest struct {
	Name     string          `json:"name"`
	Location string          `json:"location"`
	Size     string          `json:"size,omitempty"`
	Image    *ImageReference `json:"image,omitempty"`
	Username string          `json:"username,omitempty"`
	Password string          `json:"password"`
	Spot     bool            `json:"spot,omitempty"`
	IPv6     bool            `json:"ipv6,omitempty"`
}

// ImageReference identifies a marketplace OS image.
type ImageReference struct {
	Publisher string `json:"publisher"`
	Offer     string `json:"offer"`
	SKU       string `json:"sku"`
	Version   string `json:"version"`
}

// SKUInfo describes regional availability of a VM size.
type SKUInfo struct {
	Name                string   `json:"name"`
	Tier                string   `json:"tier"`
	Locations           []string `json:"locations"`
	RestrictedLocations []string `json:"restrictedLocations"`
}

// ResourceGroup is a resource group as surfaced to the panel.
type ResourceGroup struct {
	Name     string            `json:"name"`
	Location string            `json:"location"`
	Tags     map[string]string `json:"tags,omitempty"`
}

// Acceptance is the result of a fire-and-forget provider operation.
// The request was accepted by Azure; whether it ultimately succeeds is
// only observable by polling the instance list.
type Acceptance struct {
	Operation string `json:"operation"`
	Accepted  bool   `json:"accepted"`
}

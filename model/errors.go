package model

import "fmt"

// ValidationError reports a malformed or incomplete request body.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NotFoundError reports an unknown account or deployment id.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("%s %q not found", e.Kind, e.ID) }

// CredentialError reports an unusable or unset credential bundle. The
// HTTP boundary maps it to 503 so the panel shows "not ready" instead
// of crashing.
type CredentialError struct {
	Reason string
	Err    error
}

func (e *CredentialError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("credentials unusable: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("credentials unusable: %s", e.Reason)
}

func (e *CredentialError) Unwrap() error { return e.Err }

// InfrastructureError wraps a failure in the shared-infrastructure
// ensure chain. Partial creation is fine; the next ensure call for the
// same region completes it.
type InfrastructureError struct {
	Step string
	Err  error
}

func (e *InfrastructureError) Error() string {
	return fmt.Sprintf("infra failed at %s: %v", e.Step, e.Err)
}

func (e *InfrastructureError) Unwrap() error { return e.Err }

// ConfigNotFoundError reports a missing IP configuration for the
// requested address family during IP rotation. For IPv6 it means the
// instance was never created with dual-stack support.
type ConfigNotFoundError struct {
	Family string
}

func (e *ConfigNotFoundError) Error() string {
	return fmt.Sprintf("no %s config found", e.Family)
}

// ProviderError passes an Azure API rejection through verbatim for
// operator visibility.
type ProviderError struct {
	Err error
}

func (e *ProviderError) Error() string { return e.Err.Error() }

func (e *ProviderError) Unwrap() error { return e.Err }

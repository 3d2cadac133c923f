package providers

import (
	"errors"
	"fmt"

	"postforge/internal/catalog"
)

var (
	// ErrNoConfiguration is returned when credential resolution found no
	// applicable provider config. Not retried.
	ErrNoConfiguration = errors.New("no AI provider configuration found")

	// ErrNoModelConfigured is returned when neither the caller nor the
	// config names a model for the requested call kind.
	ErrNoModelConfigured = errors.New("no model configured for call kind")

	// ErrUnsupportedProvider is returned when the config names a provider
	// outside the adapter table.
	ErrUnsupportedProvider = errors.New("unsupported provider")

	// ErrCapabilityUnsupported is returned when a provider does not offer
	// the requested call kind at all.
	ErrCapabilityUnsupported = errors.New("call kind not supported by provider")
)

// CallError wraps any transport or wire failure from an adapter. Raw SDK and
// HTTP errors never cross the dispatcher boundary unwrapped.
type CallError struct {
	Provider catalog.Provider
	Kind     CallKind
	Err      error
}

func (e *CallError) Error() string {
	return fmt.Sprintf("%s %s call failed: %v", e.Provider, e.Kind, e.Err)
}

func (e *CallError) Unwrap() error {
	return e.Err
}

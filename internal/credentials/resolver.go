package credentials

import (
	"context"
	"errors"
	"fmt"

	"postforge/internal/models"
	"postforge/internal/storage"
)

// ConfigSource is the read-only lookup the resolver needs. Implemented by
// storage.ProviderConfigRepository. providerName may be empty to match any
// provider; absence is signalled with storage.ErrConfigNotFound.
type ConfigSource interface {
	GetDefault(ctx context.Context, userID int64, providerName string) (*models.ProviderConfig, error)
}

// Resolver finds the provider configuration applicable to a user: the user's
// own default first, then the admin fallback identity's default. Read-only
// and safe for concurrent use.
type Resolver struct {
	source      ConfigSource
	adminUserID int64
}

// NewResolver creates a resolver. adminUserID names the fallback identity
// whose default configs serve users that have none of their own.
func NewResolver(source ConfigSource, adminUserID int64) *Resolver {
	return &Resolver{source: source, adminUserID: adminUserID}
}

// Resolve returns the applicable config, or (nil, nil) when neither the user
// nor the admin identity has one. Callers must treat the absent case as a
// hard no-configuration error; there is nothing to retry.
func (r *Resolver) Resolve(ctx context.Context, userID int64, providerName string) (*models.ProviderConfig, error) {
	config, err := r.source.GetDefault(ctx, userID, providerName)
	if err == nil {
		return config, nil
	}
	if !errors.Is(err, storage.ErrConfigNotFound) {
		return nil, fmt.Errorf("resolve user config: %w", err)
	}

	config, err = r.source.GetDefault(ctx, r.adminUserID, providerName)
	if err == nil {
		return config, nil
	}
	if !errors.Is(err, storage.ErrConfigNotFound) {
		return nil, fmt.Errorf("resolve admin fallback config: %w", err)
	}

	return nil, nil
}

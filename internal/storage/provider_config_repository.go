package storage

import (
	"context"
	"database/sql"
	"fmt"

	"postforge/internal/models"
)

// ProviderConfigRepository handles provider configuration database operations.
// API keys are encrypted before they hit the database and decrypted on read,
// so every ProviderConfig returned here carries the plaintext key.
type ProviderConfigRepository struct {
	db  *DB
	enc *Encryption
}

// NewProviderConfigRepository creates a new provider configuration repository
func NewProviderConfigRepository(db *DB, enc *Encryption) *ProviderConfigRepository {
	return &ProviderConfigRepository{db: db, enc: enc}
}

const providerConfigColumns = `
	id, user_id, provider_name, api_key,
	default_model_text, default_model_speech_to_text, default_model_vision_to_text,
	is_default, created_at, updated_at
`

// GetByID retrieves a configuration by ID, scoped to its owner.
func (r *ProviderConfigRepository) GetByID(ctx context.Context, userID, id int64) (*models.ProviderConfig, error) {
	var config models.ProviderConfig
	query := fmt.Sprintf(`
		SELECT %s
		FROM ai_provider_configs
		WHERE id = $1 AND user_id = $2
	`, providerConfigColumns)

	err := r.db.conn.GetContext(ctx, &config, query, id, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrConfigNotFound
		}
		return nil, fmt.Errorf("failed to get provider config: %w", err)
	}

	if err := r.decrypt(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// ListByUser returns all configurations belonging to a user
func (r *ProviderConfigRepository) ListByUser(ctx context.Context, userID int64) ([]*models.ProviderConfig, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM ai_provider_configs
		WHERE user_id = $1
		ORDER BY provider_name, id
	`, providerConfigColumns)

	var configs []*models.ProviderConfig
	err := r.db.conn.SelectContext(ctx, &configs, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list provider configs: %w", err)
	}

	for _, config := range configs {
		if err := r.decrypt(config); err != nil {
			return nil, err
		}
	}

	return configs, nil
}

// GetDefault returns the user's default configuration. providerName narrows
// the lookup to one provider; empty matches any provider. Results are served
// from the config cache when fresh. Returns ErrConfigNotFound when the user
// has no matching default.
func (r *ProviderConfigRepository) GetDefault(ctx context.Context, userID int64, providerName string) (*models.ProviderConfig, error) {
	cacheKey := fmt.Sprintf("default:%d:%s", userID, providerName)
	if cached, found := r.db.configCache.Get(cacheKey); found {
		if config, ok := cached.(*models.ProviderConfig); ok {
			return config, nil
		}
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM ai_provider_configs
		WHERE user_id = $1 AND is_default = TRUE
	`, providerConfigColumns)
	args := []interface{}{userID}

	if providerName != "" {
		query += " AND provider_name = $2"
		args = append(args, providerName)
	}
	query += " ORDER BY updated_at DESC LIMIT 1"

	var config models.ProviderConfig
	err := r.db.conn.GetContext(ctx, &config, query, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrConfigNotFound
		}
		return nil, fmt.Errorf("failed to get default provider config: %w", err)
	}

	if err := r.decrypt(&config); err != nil {
		return nil, err
	}

	r.db.configCache.Set(cacheKey, &config)
	return &config, nil
}

// Create creates a new configuration. When IsDefault is set, every other
// default flag the user holds is cleared first: a user has at most one
// default across all providers.
func (r *ProviderConfigRepository) Create(ctx context.Context, config *models.ProviderConfig) error {
	encrypted, err := r.enc.EncryptString(config.APIKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt API key: %w", err)
	}

	tx, err := r.db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if config.IsDefault {
		if _, err := tx.ExecContext(ctx,
			"UPDATE ai_provider_configs SET is_default = FALSE WHERE user_id = $1", config.UserID,
		); err != nil {
			return fmt.Errorf("failed to clear default flags: %w", err)
		}
	}

	query := `
		INSERT INTO ai_provider_configs (user_id, provider_name, api_key,
		                                 default_model_text, default_model_speech_to_text,
		                                 default_model_vision_to_text, is_default)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	err = tx.QueryRowxContext(
		ctx, query,
		config.UserID, config.ProviderName, encrypted,
		config.DefaultModelText, config.DefaultModelSpeechToText,
		config.DefaultModelVisionToText, config.IsDefault,
	).Scan(&config.ID, &config.CreatedAt, &config.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create provider config: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.invalidateCache()
	return nil
}

// Update updates an existing configuration, scoped to its owner. An empty
// APIKey keeps the stored key unchanged.
func (r *ProviderConfigRepository) Update(ctx context.Context, config *models.ProviderConfig) error {
	tx, err := r.db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if config.IsDefault {
		if _, err := tx.ExecContext(ctx,
			"UPDATE ai_provider_configs SET is_default = FALSE WHERE user_id = $1 AND id != $2",
			config.UserID, config.ID,
		); err != nil {
			return fmt.Errorf("failed to clear default flags: %w", err)
		}
	}

	if config.APIKey != "" {
		encrypted, err := r.enc.EncryptString(config.APIKey)
		if err != nil {
			return fmt.Errorf("failed to encrypt API key: %w", err)
		}

		err = tx.QueryRowxContext(ctx, `
			UPDATE ai_provider_configs
			SET provider_name = $3, api_key = $4,
			    default_model_text = $5, default_model_speech_to_text = $6,
			    default_model_vision_to_text = $7, is_default = $8,
			    updated_at = NOW()
			WHERE id = $1 AND user_id = $2
			RETURNING updated_at
		`,
			config.ID, config.UserID, config.ProviderName, encrypted,
			config.DefaultModelText, config.DefaultModelSpeechToText,
			config.DefaultModelVisionToText, config.IsDefault,
		).Scan(&config.UpdatedAt)
		if err != nil {
			if err == sql.ErrNoRows {
				return ErrConfigNotFound
			}
			return fmt.Errorf("failed to update provider config: %w", err)
		}
	} else {
		err = tx.QueryRowxContext(ctx, `
			UPDATE ai_provider_configs
			SET provider_name = $3,
			    default_model_text = $4, default_model_speech_to_text = $5,
			    default_model_vision_to_text = $6, is_default = $7,
			    updated_at = NOW()
			WHERE id = $1 AND user_id = $2
			RETURNING updated_at
		`,
			config.ID, config.UserID, config.ProviderName,
			config.DefaultModelText, config.DefaultModelSpeechToText,
			config.DefaultModelVisionToText, config.IsDefault,
		).Scan(&config.UpdatedAt)
		if err != nil {
			if err == sql.ErrNoRows {
				return ErrConfigNotFound
			}
			return fmt.Errorf("failed to update provider config: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.invalidateCache()
	return nil
}

// SetDefault marks one configuration as the user's default and clears the
// flag on all others, in one transaction.
func (r *ProviderConfigRepository) SetDefault(ctx context.Context, userID, id int64) error {
	tx, err := r.db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"UPDATE ai_provider_configs SET is_default = FALSE WHERE user_id = $1", userID,
	); err != nil {
		return fmt.Errorf("failed to clear default flags: %w", err)
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE ai_provider_configs
		SET is_default = TRUE, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
	`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to set default provider config: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrConfigNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.invalidateCache()
	return nil
}

// Delete deletes a configuration, scoped to its owner
func (r *ProviderConfigRepository) Delete(ctx context.Context, userID, id int64) error {
	result, err := r.db.conn.ExecContext(ctx,
		"DELETE FROM ai_provider_configs WHERE id = $1 AND user_id = $2", id, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete provider config: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrConfigNotFound
	}

	r.invalidateCache()
	return nil
}

func (r *ProviderConfigRepository) decrypt(config *models.ProviderConfig) error {
	plaintext, err := r.enc.DecryptString(config.APIKey)
	if err != nil {
		return fmt.Errorf("failed to decrypt API key for config %d: %w", config.ID, err)
	}
	config.APIKey = plaintext
	return nil
}

// invalidateCache drops all cached default lookups. Config writes are rare
// compared to reads, so clearing the whole cache keeps invalidation simple
// without stale-default windows.
func (r *ProviderConfigRepository) invalidateCache() {
	r.db.configCache.Clear()
}

package storage

import (
	"context"
	"database/sql"
	"fmt"

	"postforge/internal/models"
)

// CharacterRepository handles character profile database operations
type CharacterRepository struct {
	db *DB
}

// NewCharacterRepository creates a new character repository
func NewCharacterRepository(db *DB) *CharacterRepository {
	return &CharacterRepository{db: db}
}

const characterColumns = `
	id, user_id, name, description, tone, target_audience, content_style,
	preferred_platforms, keywords, dialogue_style,
	visual_wardrobe, visual_props, visual_background,
	created_at, updated_at
`

// GetByID retrieves a character profile by ID, scoped to its owner.
func (r *CharacterRepository) GetByID(ctx context.Context, userID, id int64) (*models.CharacterProfile, error) {
	var character models.CharacterProfile
	query := fmt.Sprintf(`
		SELECT %s
		FROM characters
		WHERE id = $1 AND user_id = $2
	`, characterColumns)

	err := r.db.conn.GetContext(ctx, &character, query, id, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCharacterNotFound
		}
		return nil, fmt.Errorf("failed to get character: %w", err)
	}

	return &character, nil
}

// ListByUser returns all character profiles belonging to a user
func (r *CharacterRepository) ListByUser(ctx context.Context, userID int64) ([]*models.CharacterProfile, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM characters
		WHERE user_id = $1
		ORDER BY name
	`, characterColumns)

	var characters []*models.CharacterProfile
	err := r.db.conn.SelectContext(ctx, &characters, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list characters: %w", err)
	}

	return characters, nil
}

// Create creates a new character profile
func (r *CharacterRepository) Create(ctx context.Context, character *models.CharacterProfile) error {
	query := `
		INSERT INTO characters (user_id, name, description, tone, target_audience,
		                        content_style, preferred_platforms, keywords,
		                        dialogue_style, visual_wardrobe, visual_props,
		                        visual_background)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at
	`

	err := r.db.conn.QueryRowxContext(
		ctx, query,
		character.UserID, character.Name, character.Description, character.Tone,
		character.TargetAudience, character.ContentStyle, character.PreferredPlatforms,
		character.Keywords, character.DialogueStyle, character.VisualWardrobe,
		character.VisualProps, character.VisualBackground,
	).Scan(&character.ID, &character.CreatedAt, &character.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create character: %w", err)
	}

	return nil
}

// Update updates an existing character profile, scoped to its owner
func (r *CharacterRepository) Update(ctx context.Context, character *models.CharacterProfile) error {
	query := `
		UPDATE characters
		SET name = $3, description = $4, tone = $5, target_audience = $6,
		    content_style = $7, preferred_platforms = $8, keywords = $9,
		    dialogue_style = $10, visual_wardrobe = $11, visual_props = $12,
		    visual_background = $13, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING updated_at
	`

	err := r.db.conn.QueryRowxContext(
		ctx, query,
		character.ID, character.UserID, character.Name, character.Description,
		character.Tone, character.TargetAudience, character.ContentStyle,
		character.PreferredPlatforms, character.Keywords, character.DialogueStyle,
		character.VisualWardrobe, character.VisualProps, character.VisualBackground,
	).Scan(&character.UpdatedAt)

	if err != nil {
		if err == sql.ErrNoRows {
			return ErrCharacterNotFound
		}
		return fmt.Errorf("failed to update character: %w", err)
	}

	return nil
}

// Delete deletes a character profile, scoped to its owner
func (r *CharacterRepository) Delete(ctx context.Context, userID, id int64) error {
	result, err := r.db.conn.ExecContext(ctx,
		"DELETE FROM characters WHERE id = $1 AND user_id = $2", id, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete character: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrCharacterNotFound
	}

	return nil
}

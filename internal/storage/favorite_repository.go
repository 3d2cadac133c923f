package storage

import (
	"context"
	"fmt"

	"postforge/internal/models"
)

// FavoriteRepository handles favorite content database operations
type FavoriteRepository struct {
	db *DB
}

// NewFavoriteRepository creates a new favorite repository
func NewFavoriteRepository(db *DB) *FavoriteRepository {
	return &FavoriteRepository{db: db}
}

// ListByUser returns a user's favorites, most recently saved first
func (r *FavoriteRepository) ListByUser(ctx context.Context, userID int64) ([]*models.FavoriteContent, error) {
	query := `
		SELECT id, user_id, content_id, saved_date
		FROM favorite_content
		WHERE user_id = $1
		ORDER BY saved_date DESC
	`

	var favorites []*models.FavoriteContent
	err := r.db.conn.SelectContext(ctx, &favorites, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}

	return favorites, nil
}

// Create saves a favorite
func (r *FavoriteRepository) Create(ctx context.Context, favorite *models.FavoriteContent) error {
	query := `
		INSERT INTO favorite_content (user_id, content_id)
		VALUES ($1, $2)
		RETURNING id, saved_date
	`

	err := r.db.conn.QueryRowxContext(
		ctx, query, favorite.UserID, favorite.ContentID,
	).Scan(&favorite.ID, &favorite.SavedDate)

	if err != nil {
		return fmt.Errorf("failed to create favorite: %w", err)
	}

	return nil
}

// Delete removes a favorite, scoped to its owner
func (r *FavoriteRepository) Delete(ctx context.Context, userID, id int64) error {
	result, err := r.db.conn.ExecContext(ctx,
		"DELETE FROM favorite_content WHERE id = $1 AND user_id = $2", id, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete favorite: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrFavoriteNotFound
	}

	return nil
}

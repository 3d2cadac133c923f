package storage

import (
	"context"
	"database/sql"
	"fmt"

	"postforge/internal/models"
)

// TrendRepository handles trend database operations. Trends are written by
// the ingestion pipeline and read by content generation, so reads outnumber
// writes heavily; hot lookups go through the trend cache.
type TrendRepository struct {
	db *DB
}

// NewTrendRepository creates a new trend repository
func NewTrendRepository(db *DB) *TrendRepository {
	return &TrendRepository{db: db}
}

const trendColumns = `
	id, keyword, platform, engagement_score, volume, growth_rate,
	sentiment, category, hashtags, created_at, updated_at
`

// GetByID retrieves a trend by ID
func (r *TrendRepository) GetByID(ctx context.Context, id int64) (*models.Trend, error) {
	cacheKey := fmt.Sprintf("trend:%d", id)
	if cached, found := r.db.trendCache.Get(cacheKey); found {
		if trend, ok := cached.(*models.Trend); ok {
			return trend, nil
		}
	}

	var trend models.Trend
	query := fmt.Sprintf("SELECT %s FROM trends WHERE id = $1", trendColumns)

	err := r.db.conn.GetContext(ctx, &trend, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrTrendNotFound
		}
		return nil, fmt.Errorf("failed to get trend: %w", err)
	}

	r.db.trendCache.Set(cacheKey, &trend)
	return &trend, nil
}

// TrendListFilters contains filter parameters for listing trends
type TrendListFilters struct {
	Platform string
	Category string
	Limit    int
}

// List returns trends ordered by engagement score, highest first
func (r *TrendRepository) List(ctx context.Context, filters TrendListFilters) ([]*models.Trend, error) {
	query := fmt.Sprintf("SELECT %s FROM trends", trendColumns)
	var args []interface{}
	argCount := 1

	var whereClauses []string
	if filters.Platform != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("platform = $%d", argCount))
		args = append(args, filters.Platform)
		argCount++
	}
	if filters.Category != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("category = $%d", argCount))
		args = append(args, filters.Category)
		argCount++
	}

	if len(whereClauses) > 0 {
		query += " WHERE " + whereClauses[0]
		for i := 1; i < len(whereClauses); i++ {
			query += " AND " + whereClauses[i]
		}
	}

	query += " ORDER BY engagement_score DESC"

	if filters.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argCount)
		args = append(args, filters.Limit)
	}

	var trends []*models.Trend
	err := r.db.conn.SelectContext(ctx, &trends, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list trends: %w", err)
	}

	return trends, nil
}

// Upsert inserts a trend or, when the (keyword, platform) pair already
// exists, refreshes its engagement metrics in place.
func (r *TrendRepository) Upsert(ctx context.Context, trend *models.Trend) error {
	query := fmt.Sprintf(`
		INSERT INTO trends (keyword, platform, engagement_score, volume,
		                    growth_rate, sentiment, category, hashtags)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (keyword, platform) DO UPDATE
		SET engagement_score = EXCLUDED.engagement_score,
		    volume = EXCLUDED.volume,
		    growth_rate = EXCLUDED.growth_rate,
		    sentiment = EXCLUDED.sentiment,
		    category = EXCLUDED.category,
		    hashtags = EXCLUDED.hashtags,
		    updated_at = NOW()
		RETURNING %s
	`, trendColumns)

	err := r.db.conn.QueryRowxContext(
		ctx, query,
		trend.Keyword, trend.Platform, trend.EngagementScore, trend.Volume,
		trend.GrowthRate, trend.Sentiment, trend.Category, trend.Hashtags,
	).StructScan(trend)

	if err != nil {
		return fmt.Errorf("failed to upsert trend: %w", err)
	}

	r.db.trendCache.Delete(fmt.Sprintf("trend:%d", trend.ID))
	return nil
}

// Delete deletes a trend
func (r *TrendRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.conn.ExecContext(ctx, "DELETE FROM trends WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete trend: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrTrendNotFound
	}

	r.db.trendCache.Delete(fmt.Sprintf("trend:%d", id))
	return nil
}

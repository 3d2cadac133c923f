package storage

import (
	"context"
	"fmt"
	"time"

	"postforge/internal/models"
)

// AnalyticsRepository handles analytics event database operations. Events
// arrive through the analytics queue worker, usually in batches.
type AnalyticsRepository struct {
	db *DB
}

// NewAnalyticsRepository creates a new analytics repository
func NewAnalyticsRepository(db *DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

// Create inserts a single analytics event
func (r *AnalyticsRepository) Create(ctx context.Context, event *models.AnalyticsEvent) error {
	query := `
		INSERT INTO analytics_events (id, user_id, metric_name, value, timestamp)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.conn.ExecContext(
		ctx, query,
		event.ID, event.UserID, event.MetricName, event.Value, event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to create analytics event: %w", err)
	}

	return nil
}

// CreateBatch inserts analytics events in a single transaction
func (r *AnalyticsRepository) CreateBatch(ctx context.Context, events []*models.AnalyticsEvent) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := r.db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, `
		INSERT INTO analytics_events (id, user_id, metric_name, value, timestamp)
		VALUES ($1, $2, $3, $4, $5)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, event := range events {
		if _, err := stmt.ExecContext(ctx,
			event.ID, event.UserID, event.MetricName, event.Value, event.Timestamp,
		); err != nil {
			return fmt.Errorf("failed to insert analytics event: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ListByUser returns a user's events for a metric within a time window.
// metric may be empty to match all metrics.
func (r *AnalyticsRepository) ListByUser(ctx context.Context, userID int64, metric string, since time.Time) ([]*models.AnalyticsEvent, error) {
	query := `
		SELECT id, user_id, metric_name, value, timestamp
		FROM analytics_events
		WHERE user_id = $1 AND timestamp >= $2
	`
	args := []interface{}{userID, since}

	if metric != "" {
		query += " AND metric_name = $3"
		args = append(args, metric)
	}
	query += " ORDER BY timestamp DESC"

	var events []*models.AnalyticsEvent
	err := r.db.conn.SelectContext(ctx, &events, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list analytics events: %w", err)
	}

	return events, nil
}

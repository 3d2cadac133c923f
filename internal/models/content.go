package models

import (
	"time"

	"github.com/google/uuid"
)

// GeneratedContent is the result of a single generation call. It is produced
// fresh per request and never persisted by the core; callers decide whether
// to save it. When Error is non-empty the content fields are blank.
type GeneratedContent struct {
	Content      string   `json:"content"`
	Hashtags     []string `json:"hashtags"`
	CallToAction string   `json:"call_to_action"`
	PlatformNote string   `json:"platform_notes"`
	ContentType  string   `json:"content_type"`
	Platform     string   `json:"platform"`
	Error        string   `json:"error,omitempty"`
}

// Failed reports whether the generation call errored instead of producing
// content.
func (g *GeneratedContent) Failed() bool {
	return g.Error != ""
}

// FavoriteContent marks a piece of generated content a user wants to keep.
type FavoriteContent struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	ContentID string    `db:"content_id" json:"content_id"`
	SavedDate time.Time `db:"saved_date" json:"saved_date"`
}

// AnalyticsEvent is a per-user metric sample recorded asynchronously through
// the analytics queue.
type AnalyticsEvent struct {
	ID         uuid.UUID `db:"id" json:"id"`
	UserID     int64     `db:"user_id" json:"user_id"`
	MetricName string    `db:"metric_name" json:"metric_name"`
	Value      string    `db:"value" json:"value"`
	Timestamp  time.Time `db:"timestamp" json:"timestamp"`
}

// NewAnalyticsEvent stamps a metric sample with an ID and the current time.
func NewAnalyticsEvent(userID int64, metric, value string) *AnalyticsEvent {
	return &AnalyticsEvent{
		ID:         uuid.New(),
		UserID:     userID,
		MetricName: metric,
		Value:      value,
		Timestamp:  time.Now().UTC(),
	}
}

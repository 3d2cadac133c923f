package models

import "time"

// Sentiment labels attached to trends by the ingestion pipeline.
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

// Trend is a scored topic produced by the external ingestion collaborator.
// The core treats it as read-only input; ingestion may refresh engagement
// metrics in place when the same (keyword, platform) pair recurs.
type Trend struct {
	ID              int64     `db:"id" json:"id"`
	Keyword         string    `db:"keyword" json:"keyword"`
	Platform        string    `db:"platform" json:"platform"`
	EngagementScore float64   `db:"engagement_score" json:"engagement_score"`
	Volume          int64     `db:"volume" json:"volume"`
	GrowthRate      float64   `db:"growth_rate" json:"growth_rate"`
	Sentiment       string    `db:"sentiment" json:"sentiment"`
	Category        string    `db:"category" json:"category"`
	Hashtags        string    `db:"hashtags" json:"-"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// HashtagList returns the related hashtags, empty on malformed storage.
func (t *Trend) HashtagList() []string {
	return DecodeStringList(t.Hashtags)
}

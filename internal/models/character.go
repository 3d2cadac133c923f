package models

import "time"

// CharacterProfile is a persona template used to steer generated content.
// PreferredPlatforms and Keywords are TEXT columns holding JSON arrays; read
// them through their List accessors, which tolerate malformed payloads.
type CharacterProfile struct {
	ID                 int64     `db:"id" json:"id"`
	UserID             int64     `db:"user_id" json:"user_id"`
	Name               string    `db:"name" json:"name"`
	Description        string    `db:"description" json:"description"`
	Tone               string    `db:"tone" json:"tone"`
	TargetAudience     string    `db:"target_audience" json:"target_audience"`
	ContentStyle       string    `db:"content_style" json:"content_style"`
	PreferredPlatforms string    `db:"preferred_platforms" json:"-"`
	Keywords           string    `db:"keywords" json:"-"`
	DialogueStyle      string    `db:"dialogue_style" json:"dialogue_style"`
	VisualWardrobe     string    `db:"visual_wardrobe" json:"visual_wardrobe"`
	VisualProps        string    `db:"visual_props" json:"visual_props"`
	VisualBackground   string    `db:"visual_background" json:"visual_background"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at"`
}

// PlatformList returns the preferred platforms, empty on malformed storage.
func (c *CharacterProfile) PlatformList() []string {
	return DecodeStringList(c.PreferredPlatforms)
}

// KeywordList returns the persona keywords, empty on malformed storage.
func (c *CharacterProfile) KeywordList() []string {
	return DecodeStringList(c.Keywords)
}

package models

import (
	"time"
)

// ProviderConfig is a user-owned credential record for one AI provider.
// The api_key column is stored AES-GCM encrypted; APIKey here is the
// decrypted plaintext and must only cross the trust boundary masked.
type ProviderConfig struct {
	ID                       int64     `db:"id" json:"id"`
	UserID                   int64     `db:"user_id" json:"user_id"`
	ProviderName             string    `db:"provider_name" json:"provider_name"`
	APIKey                   string    `db:"api_key" json:"-"`
	DefaultModelText         string    `db:"default_model_text" json:"default_model_text"`
	DefaultModelSpeechToText string    `db:"default_model_speech_to_text" json:"default_model_speech_to_text"`
	DefaultModelVisionToText string    `db:"default_model_vision_to_text" json:"default_model_vision_to_text"`
	IsDefault                bool      `db:"is_default" json:"is_default"`
	CreatedAt                time.Time `db:"created_at" json:"created_at"`
	UpdatedAt                time.Time `db:"updated_at" json:"updated_at"`
}

// MaskedAPIKey returns the key in presentation form: a fixed marker plus the
// last four characters. Keys too short to mask safely collapse to the marker.
func (c *ProviderConfig) MaskedAPIKey() string {
	if len(c.APIKey) > 4 {
		return "***" + c.APIKey[len(c.APIKey)-4:]
	}
	return "***"
}

// MaskedView is the JSON shape returned to API callers. It never carries the
// plaintext key.
type MaskedView struct {
	ID                       int64     `json:"id"`
	UserID                   int64     `json:"user_id"`
	ProviderName             string    `json:"provider_name"`
	APIKey                   string    `json:"api_key"`
	DefaultModelText         string    `json:"default_model_text"`
	DefaultModelSpeechToText string    `json:"default_model_speech_to_text"`
	DefaultModelVisionToText string    `json:"default_model_vision_to_text"`
	IsDefault                bool      `json:"is_default"`
	CreatedAt                time.Time `json:"created_at"`
	UpdatedAt                time.Time `json:"updated_at"`
}

// Masked converts the config to its presentation form.
func (c *ProviderConfig) Masked() MaskedView {
	return MaskedView{
		ID:                       c.ID,
		UserID:                   c.UserID,
		ProviderName:             c.ProviderName,
		APIKey:                   c.MaskedAPIKey(),
		DefaultModelText:         c.DefaultModelText,
		DefaultModelSpeechToText: c.DefaultModelSpeechToText,
		DefaultModelVisionToText: c.DefaultModelVisionToText,
		IsDefault:                c.IsDefault,
		CreatedAt:                c.CreatedAt,
		UpdatedAt:                c.UpdatedAt,
	}
}

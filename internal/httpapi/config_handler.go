package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"postforge/internal/catalog"
	"postforge/internal/middleware"
	"postforge/internal/models"
	"postforge/internal/providers"
	"postforge/internal/storage"
	"postforge/internal/utils"
)

// ConfigHandler manages per-user provider configurations and exposes the
// model catalog.
type ConfigHandler struct {
	configs    *storage.ProviderConfigRepository
	catalog    *catalog.Catalog
	dispatcher *providers.Dispatcher
}

// NewConfigHandler creates a new config handler
func NewConfigHandler(configs *storage.ProviderConfigRepository, cat *catalog.Catalog, dispatcher *providers.Dispatcher) *ConfigHandler {
	return &ConfigHandler{configs: configs, catalog: cat, dispatcher: dispatcher}
}

// ConfigRequest represents the request to create or update a configuration.
// APIKey may be empty on update to keep the stored key.
type ConfigRequest struct {
	ProviderName             string `json:"provider_name"`
	APIKey                   string `json:"api_key"`
	DefaultModelText         string `json:"default_model_text"`
	DefaultModelSpeechToText string `json:"default_model_speech_to_text"`
	DefaultModelVisionToText string `json:"default_model_vision_to_text"`
	IsDefault                bool   `json:"is_default"`
}

// ListProviders handles GET /api/providers
func (h *ConfigHandler) ListProviders(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"providers": h.catalog.ProviderStatus(),
	})
}

// ListModels handles GET /api/providers/{name}/models
func (h *ConfigHandler) ListModels(w http.ResponseWriter, r *http.Request) {
	name := strings.ToLower(r.PathValue("name"))
	models := h.catalog.ModelsFor(catalog.Provider(name))
	if len(models) == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "Unknown provider")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"provider": name,
		"models":   models,
	})
}

// List handles GET /api/configs
func (h *ConfigHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	configs, err := h.configs.ListByUser(r.Context(), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error listing configurations")
		return
	}

	views := make([]models.MaskedView, 0, len(configs))
	for _, config := range configs {
		views = append(views, config.Masked())
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"configs": views})
}

// Get handles GET /api/configs/{id}
func (h *ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid configuration ID")
		return
	}

	config, err := h.configs.GetByID(r.Context(), userID, id)
	if err != nil {
		if errors.Is(err, storage.ErrConfigNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Configuration not found")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Error loading configuration")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, config.Masked())
}

// Create handles POST /api/configs
func (h *ConfigHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	var req ConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	providerName := strings.ToLower(strings.TrimSpace(req.ProviderName))
	if providerName == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "provider_name is required")
		return
	}
	if req.APIKey == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "api_key is required")
		return
	}
	if len(h.catalog.ModelsFor(catalog.Provider(providerName))) == 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "Unknown provider: "+providerName)
		return
	}

	config := &models.ProviderConfig{
		UserID:                   userID,
		ProviderName:             providerName,
		APIKey:                   req.APIKey,
		DefaultModelText:         req.DefaultModelText,
		DefaultModelSpeechToText: req.DefaultModelSpeechToText,
		DefaultModelVisionToText: req.DefaultModelVisionToText,
		IsDefault:                req.IsDefault,
	}
	if err := h.configs.Create(r.Context(), config); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error creating configuration")
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, config.Masked())
}

// Update handles PUT /api/configs/{id}
func (h *ConfigHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid configuration ID")
		return
	}

	var req ConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	existing, err := h.configs.GetByID(r.Context(), userID, id)
	if err != nil {
		if errors.Is(err, storage.ErrConfigNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Configuration not found")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Error loading configuration")
		return
	}

	if req.ProviderName != "" {
		existing.ProviderName = strings.ToLower(strings.TrimSpace(req.ProviderName))
	}
	existing.DefaultModelText = req.DefaultModelText
	existing.DefaultModelSpeechToText = req.DefaultModelSpeechToText
	existing.DefaultModelVisionToText = req.DefaultModelVisionToText
	existing.IsDefault = req.IsDefault
	existing.APIKey = req.APIKey // empty keeps the stored key

	if err := h.configs.Update(r.Context(), existing); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error updating configuration")
		return
	}

	// Reload so the masked response shows the stored key's suffix
	updated, err := h.configs.GetByID(r.Context(), userID, id)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error loading configuration")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, updated.Masked())
}

// Delete handles DELETE /api/configs/{id}
func (h *ConfigHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid configuration ID")
		return
	}

	if err := h.configs.Delete(r.Context(), userID, id); err != nil {
		if errors.Is(err, storage.ErrConfigNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Configuration not found")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Error deleting configuration")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// SetDefault handles POST /api/configs/{id}/set-default
func (h *ConfigHandler) SetDefault(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid configuration ID")
		return
	}

	if err := h.configs.SetDefault(r.Context(), userID, id); err != nil {
		if errors.Is(err, storage.ErrConfigNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Configuration not found")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Error setting default configuration")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "default set"})
}

// Test handles POST /api/configs/{id}/test. Issues a minimal completion
// through the stored credential to verify it works end to end.
func (h *ConfigHandler) Test(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid configuration ID")
		return
	}

	config, err := h.configs.GetByID(r.Context(), userID, id)
	if err != nil {
		if errors.Is(err, storage.ErrConfigNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Configuration not found")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Error loading configuration")
		return
	}

	if err := h.dispatcher.TestConfiguration(r.Context(), config); err != nil {
		utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

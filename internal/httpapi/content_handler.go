package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"postforge/internal/generator"
	"postforge/internal/middleware"
	"postforge/internal/models"
	"postforge/internal/storage"
	"postforge/internal/utils"
)

const maxVariations = 10

// ContentHandler drives the generation endpoints.
type ContentHandler struct {
	generator  *generator.Generator
	trends     *storage.TrendRepository
	characters *storage.CharacterRepository
	analytics  *storage.AnalyticsQueueWorker
}

// NewContentHandler creates a new content handler
func NewContentHandler(gen *generator.Generator, trends *storage.TrendRepository, characters *storage.CharacterRepository, analytics *storage.AnalyticsQueueWorker) *ContentHandler {
	return &ContentHandler{generator: gen, trends: trends, characters: characters, analytics: analytics}
}

// GenerateRequest represents a content generation request
type GenerateRequest struct {
	TrendID      int64  `json:"trend_id"`
	CharacterID  int64  `json:"character_id"`
	ContentType  string `json:"content_type"`
	Platform     string `json:"platform"`
	Provider     string `json:"provider"`
	Model        string `json:"model"`
	ExtraContext string `json:"extra_context"`
	Count        int    `json:"count"`
}

// load resolves the trend and character named by the request, enforcing
// character ownership.
func (h *ContentHandler) load(w http.ResponseWriter, r *http.Request, req *GenerateRequest) (*models.Trend, *models.CharacterProfile, bool) {
	userID, _ := middleware.GetUserID(r.Context())

	trend, err := h.trends.GetByID(r.Context(), req.TrendID)
	if err != nil {
		if errors.Is(err, storage.ErrTrendNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Trend not found")
			return nil, nil, false
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Error loading trend")
		return nil, nil, false
	}

	character, err := h.characters.GetByID(r.Context(), userID, req.CharacterID)
	if err != nil {
		if errors.Is(err, storage.ErrCharacterNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Character not found")
			return nil, nil, false
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Error loading character")
		return nil, nil, false
	}

	return trend, character, true
}

func (h *ContentHandler) record(r *http.Request, metric string, value int) {
	userID, _ := middleware.GetUserID(r.Context())
	event := models.NewAnalyticsEvent(userID, metric, strconv.Itoa(value))
	// Best effort; generation responses never wait on analytics.
	_ = h.analytics.Enqueue(r.Context(), event)
}

// Generate handles POST /api/content/generate
func (h *ContentHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	trend, character, ok := h.load(w, r, &req)
	if !ok {
		return
	}

	userID, _ := middleware.GetUserID(r.Context())
	content := h.generator.Generate(r.Context(), generator.Request{
		UserID:       userID,
		Trend:        trend,
		Character:    character,
		ContentType:  req.ContentType,
		Platform:     req.Platform,
		Provider:     req.Provider,
		Model:        req.Model,
		ExtraContext: req.ExtraContext,
	})

	h.record(r, "content_generated", 1)
	utils.RespondWithJSON(w, http.StatusOK, content)
}

// Variations handles POST /api/content/variations
func (h *ContentHandler) Variations(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	count := req.Count
	if count <= 0 {
		count = 3
	}
	if count > maxVariations {
		count = maxVariations
	}

	trend, character, ok := h.load(w, r, &req)
	if !ok {
		return
	}

	userID, _ := middleware.GetUserID(r.Context())
	variations := h.generator.GenerateVariations(r.Context(), generator.Request{
		UserID:      userID,
		Trend:       trend,
		Character:   character,
		ContentType: req.ContentType,
		Platform:    req.Platform,
		Provider:    req.Provider,
		Model:       req.Model,
	}, count)

	h.record(r, "variations_generated", count)
	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"variations": variations})
}

// Hashtags handles POST /api/content/hashtags
func (h *ContentHandler) Hashtags(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	trend, character, ok := h.load(w, r, &req)
	if !ok {
		return
	}

	userID, _ := middleware.GetUserID(r.Context())
	hashtags := h.generator.GenerateHashtags(r.Context(), generator.Request{
		UserID:    userID,
		Trend:     trend,
		Character: character,
		Provider:  req.Provider,
		Model:     req.Model,
	}, req.Count)

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"hashtags": hashtags})
}

// OptimizeRequest represents a platform optimization request
type OptimizeRequest struct {
	Content  string `json:"content"`
	Platform string `json:"platform"`
}

// Optimize handles POST /api/content/optimize
func (h *ContentHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	var req OptimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if req.Platform == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "platform is required")
		return
	}

	optimized := generator.OptimizeForPlatform(req.Content, req.Platform)
	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"content":  optimized,
		"platform": req.Platform,
	})
}

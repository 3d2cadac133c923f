package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"postforge/internal/models"
	"postforge/internal/storage"
	"postforge/internal/utils"
)

// TrendHandler exposes the trend store. Writes come from the ingestion
// collaborator; reads feed content generation.
type TrendHandler struct {
	trends *storage.TrendRepository
}

// NewTrendHandler creates a new trend handler
func NewTrendHandler(trends *storage.TrendRepository) *TrendHandler {
	return &TrendHandler{trends: trends}
}

// TrendRequest represents an ingestion upsert
type TrendRequest struct {
	Keyword         string   `json:"keyword"`
	Platform        string   `json:"platform"`
	EngagementScore float64  `json:"engagement_score"`
	Volume          int64    `json:"volume"`
	GrowthRate      float64  `json:"growth_rate"`
	Sentiment       string   `json:"sentiment"`
	Category        string   `json:"category"`
	Hashtags        []string `json:"hashtags"`
}

// TrendView is the JSON shape returned to callers, with the hashtag column
// decoded.
type TrendView struct {
	*models.Trend
	Hashtags []string `json:"hashtags"`
}

func trendView(t *models.Trend) TrendView {
	return TrendView{Trend: t, Hashtags: t.HashtagList()}
}

// List handles GET /api/trends
func (h *TrendHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	trends, err := h.trends.List(r.Context(), storage.TrendListFilters{
		Platform: r.URL.Query().Get("platform"),
		Category: r.URL.Query().Get("category"),
		Limit:    limit,
	})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error listing trends")
		return
	}

	views := make([]TrendView, 0, len(trends))
	for _, t := range trends {
		views = append(views, trendView(t))
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"trends": views})
}

// Get handles GET /api/trends/{id}
func (h *TrendHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid trend ID")
		return
	}

	trend, err := h.trends.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrTrendNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Trend not found")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Error loading trend")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, trendView(trend))
}

// Upsert handles POST /api/trends. Repeated (keyword, platform) pairs
// refresh engagement metrics in place.
func (h *TrendHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	var req TrendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if req.Keyword == "" || req.Platform == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "keyword and platform are required")
		return
	}

	trend := &models.Trend{
		Keyword:         req.Keyword,
		Platform:        req.Platform,
		EngagementScore: req.EngagementScore,
		Volume:          req.Volume,
		GrowthRate:      req.GrowthRate,
		Sentiment:       req.Sentiment,
		Category:        req.Category,
		Hashtags:        models.EncodeStringList(req.Hashtags),
	}
	if err := h.trends.Upsert(r.Context(), trend); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error saving trend")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, trendView(trend))
}

// Delete handles DELETE /api/trends/{id}
func (h *TrendHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid trend ID")
		return
	}

	if err := h.trends.Delete(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrTrendNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Trend not found")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Error deleting trend")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

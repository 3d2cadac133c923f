package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"postforge/internal/middleware"
	"postforge/internal/models"
	"postforge/internal/storage"
	"postforge/internal/utils"
)

// AnalyticsHandler reads metric samples and accepts new ones. Writes go
// through the analytics queue; only reads touch the repository directly.
type AnalyticsHandler struct {
	analytics *storage.AnalyticsRepository
	worker    *storage.AnalyticsQueueWorker
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(analytics *storage.AnalyticsRepository, worker *storage.AnalyticsQueueWorker) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics, worker: worker}
}

// RecordRequest represents a metric sample submission
type RecordRequest struct {
	MetricName string `json:"metric_name"`
	Value      string `json:"value"`
}

// List handles GET /api/analytics. Accepts metric and days query params.
func (h *AnalyticsHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	days := 30
	if raw := r.URL.Query().Get("days"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			days = parsed
		}
	}
	since := time.Now().UTC().AddDate(0, 0, -days)

	events, err := h.analytics.ListByUser(r.Context(), userID, r.URL.Query().Get("metric"), since)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error listing analytics events")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"events": events})
}

// Record handles POST /api/analytics
func (h *AnalyticsHandler) Record(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	var req RecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if req.MetricName == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "metric_name is required")
		return
	}

	event := models.NewAnalyticsEvent(userID, req.MetricName, req.Value)
	if err := h.worker.Enqueue(r.Context(), event); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error queueing analytics event")
		return
	}

	utils.RespondWithJSON(w, http.StatusAccepted, event)
}

package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"postforge/internal/middleware"
	"postforge/internal/models"
	"postforge/internal/storage"
	"postforge/internal/utils"
)

// FavoriteHandler manages saved content references.
type FavoriteHandler struct {
	favorites *storage.FavoriteRepository
}

// NewFavoriteHandler creates a new favorite handler
func NewFavoriteHandler(favorites *storage.FavoriteRepository) *FavoriteHandler {
	return &FavoriteHandler{favorites: favorites}
}

// FavoriteRequest represents the request to save a favorite
type FavoriteRequest struct {
	ContentID string `json:"content_id"`
}

// List handles GET /api/favorites
func (h *FavoriteHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	favorites, err := h.favorites.ListByUser(r.Context(), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error listing favorites")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"favorites": favorites})
}

// Create handles POST /api/favorites
func (h *FavoriteHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	var req FavoriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if req.ContentID == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "content_id is required")
		return
	}

	favorite := &models.FavoriteContent{
		UserID:    userID,
		ContentID: req.ContentID,
	}
	if err := h.favorites.Create(r.Context(), favorite); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error saving favorite")
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, favorite)
}

// Delete handles DELETE /api/favorites/{id}
func (h *FavoriteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid favorite ID")
		return
	}

	if err := h.favorites.Delete(r.Context(), userID, id); err != nil {
		if errors.Is(err, storage.ErrFavoriteNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Favorite not found")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Error deleting favorite")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

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

// CharacterHandler manages character profile CRUD.
type CharacterHandler struct {
	characters *storage.CharacterRepository
}

// NewCharacterHandler creates a new character handler
func NewCharacterHandler(characters *storage.CharacterRepository) *CharacterHandler {
	return &CharacterHandler{characters: characters}
}

// CharacterRequest represents the request to create or update a character
type CharacterRequest struct {
	Name               string   `json:"name"`
	Description        string   `json:"description"`
	Tone               string   `json:"tone"`
	TargetAudience     string   `json:"target_audience"`
	ContentStyle       string   `json:"content_style"`
	PreferredPlatforms []string `json:"preferred_platforms"`
	Keywords           []string `json:"keywords"`
	DialogueStyle      string   `json:"dialogue_style"`
	VisualWardrobe     string   `json:"visual_wardrobe"`
	VisualProps        string   `json:"visual_props"`
	VisualBackground   string   `json:"visual_background"`
}

// CharacterView is the JSON shape returned to callers, with list columns
// decoded.
type CharacterView struct {
	*models.CharacterProfile
	PreferredPlatforms []string `json:"preferred_platforms"`
	Keywords           []string `json:"keywords"`
}

func characterView(c *models.CharacterProfile) CharacterView {
	return CharacterView{
		CharacterProfile:   c,
		PreferredPlatforms: c.PlatformList(),
		Keywords:           c.KeywordList(),
	}
}

// List handles GET /api/characters
func (h *CharacterHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	characters, err := h.characters.ListByUser(r.Context(), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error listing characters")
		return
	}

	views := make([]CharacterView, 0, len(characters))
	for _, c := range characters {
		views = append(views, characterView(c))
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"characters": views})
}

// Get handles GET /api/characters/{id}
func (h *CharacterHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid character ID")
		return
	}

	character, err := h.characters.GetByID(r.Context(), userID, id)
	if err != nil {
		if errors.Is(err, storage.ErrCharacterNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Character not found")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Error loading character")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, characterView(character))
}

// Create handles POST /api/characters
func (h *CharacterHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	var req CharacterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if req.Name == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "name is required")
		return
	}

	character := &models.CharacterProfile{
		UserID:             userID,
		Name:               req.Name,
		Description:        req.Description,
		Tone:               req.Tone,
		TargetAudience:     req.TargetAudience,
		ContentStyle:       req.ContentStyle,
		PreferredPlatforms: models.EncodeStringList(req.PreferredPlatforms),
		Keywords:           models.EncodeStringList(req.Keywords),
		DialogueStyle:      req.DialogueStyle,
		VisualWardrobe:     req.VisualWardrobe,
		VisualProps:        req.VisualProps,
		VisualBackground:   req.VisualBackground,
	}
	if err := h.characters.Create(r.Context(), character); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error creating character")
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, characterView(character))
}

// Update handles PUT /api/characters/{id}
func (h *CharacterHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid character ID")
		return
	}

	var req CharacterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	character := &models.CharacterProfile{
		ID:                 id,
		UserID:             userID,
		Name:               req.Name,
		Description:        req.Description,
		Tone:               req.Tone,
		TargetAudience:     req.TargetAudience,
		ContentStyle:       req.ContentStyle,
		PreferredPlatforms: models.EncodeStringList(req.PreferredPlatforms),
		Keywords:           models.EncodeStringList(req.Keywords),
		DialogueStyle:      req.DialogueStyle,
		VisualWardrobe:     req.VisualWardrobe,
		VisualProps:        req.VisualProps,
		VisualBackground:   req.VisualBackground,
	}
	if err := h.characters.Update(r.Context(), character); err != nil {
		if errors.Is(err, storage.ErrCharacterNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Character not found")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Error updating character")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, characterView(character))
}

// Delete handles DELETE /api/characters/{id}
func (h *CharacterHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid character ID")
		return
	}

	if err := h.characters.Delete(r.Context(), userID, id); err != nil {
		if errors.Is(err, storage.ErrCharacterNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Character not found")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Error deleting character")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

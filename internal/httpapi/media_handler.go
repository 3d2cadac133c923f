package httpapi

import (
	"errors"
	"io"
	"net/http"

	"postforge/internal/credentials"
	"postforge/internal/middleware"
	"postforge/internal/providers"
	"postforge/internal/utils"
)

// maxUploadBytes caps media uploads at 25 MB, matching the strictest
// provider limit for audio files.
const maxUploadBytes = 25 << 20

// MediaHandler exposes speech-to-text and vision-to-text over the user's
// resolved provider configuration.
type MediaHandler struct {
	resolver   *credentials.Resolver
	dispatcher *providers.Dispatcher
}

// NewMediaHandler creates a new media handler
func NewMediaHandler(resolver *credentials.Resolver, dispatcher *providers.Dispatcher) *MediaHandler {
	return &MediaHandler{resolver: resolver, dispatcher: dispatcher}
}

// Transcribe handles POST /api/media/transcribe. Expects a multipart form
// with an "audio" file part.
func (h *MediaHandler) Transcribe(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("audio")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "audio file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Error reading audio file")
		return
	}

	config, err := h.resolver.Resolve(r.Context(), userID, r.FormValue("provider"))
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error resolving provider configuration")
		return
	}

	result, err := h.dispatcher.Transcribe(r.Context(), config, providers.AudioRequest{
		Model:    r.FormValue("model"),
		Filename: header.Filename,
		Data:     data,
	})
	if err != nil {
		respondWithProviderError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, result)
}

// Describe handles POST /api/media/describe. Expects a multipart form with
// an "image" file part and an optional "prompt" field.
func (h *MediaHandler) Describe(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, _, err := r.FormFile("image")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "image file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Error reading image file")
		return
	}

	config, err := h.resolver.Resolve(r.Context(), userID, r.FormValue("provider"))
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error resolving provider configuration")
		return
	}

	result, err := h.dispatcher.DescribeImage(r.Context(), config, providers.VisionRequest{
		Model:  r.FormValue("model"),
		Prompt: r.FormValue("prompt"),
		Image:  data,
	})
	if err != nil {
		respondWithProviderError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, result)
}

// respondWithProviderError maps dispatch failures to HTTP statuses. Caller
// mistakes (no config, no model, unknown provider, unsupported capability)
// are 4xx; upstream call failures surface as 502 without the raw transport
// error details.
func respondWithProviderError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, providers.ErrNoConfiguration):
		utils.RespondWithError(w, http.StatusBadRequest, "No AI provider configuration found")
	case errors.Is(err, providers.ErrNoModelConfigured):
		utils.RespondWithError(w, http.StatusBadRequest, "No model configured for this operation")
	case errors.Is(err, providers.ErrUnsupportedProvider):
		utils.RespondWithError(w, http.StatusBadRequest, "Unsupported provider")
	case errors.Is(err, providers.ErrCapabilityUnsupported):
		utils.RespondWithError(w, http.StatusBadRequest, "Provider does not support this operation")
	default:
		utils.RespondWithError(w, http.StatusBadGateway, "Provider call failed")
	}
}

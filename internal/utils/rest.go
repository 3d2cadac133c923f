package utils

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the single error envelope every endpoint returns, so
// clients only ever parse one failure shape.
type ErrorResponse struct {
	Error string `json:"error"`
}

// RespondWithJSON writes payload as a JSON response. The payload is
// marshaled before any headers are committed, so a marshal failure still
// produces a clean 500 instead of a half-written body.
func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	body = append(body, '\n')
	_, err = w.Write(body)
	return err
}

// RespondWithError sends message wrapped in the error envelope.
func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, ErrorResponse{Error: message})
}

package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRespondWithJSON(t *testing.T) {
	w := httptest.NewRecorder()

	payload := map[string]interface{}{
		"content":  "Eco-friendly fits for the weekend.",
		"hashtags": []string{"#sustainablefashion", "#ecostyle"},
		"platform": "instagram",
	}

	if err := RespondWithJSON(w, http.StatusOK, payload); err != nil {
		t.Fatalf("RespondWithJSON returned error: %v", err)
	}

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected application/json, got %q", ct)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("Response is not valid JSON: %v", err)
	}
	if decoded["platform"] != "instagram" {
		t.Errorf("Expected platform echoed back, got %v", decoded["platform"])
	}
	if !strings.HasSuffix(w.Body.String(), "\n") {
		t.Error("Expected newline-terminated body")
	}
}

func TestRespondWithJSONStatusCodes(t *testing.T) {
	for _, code := range []int{http.StatusCreated, http.StatusAccepted, http.StatusBadGateway} {
		w := httptest.NewRecorder()
		if err := RespondWithJSON(w, code, map[string]string{"status": "ok"}); err != nil {
			t.Fatalf("RespondWithJSON(%d) returned error: %v", code, err)
		}
		if w.Code != code {
			t.Errorf("Expected status %d, got %d", code, w.Code)
		}
	}
}

func TestRespondWithJSONUnmarshalablePayload(t *testing.T) {
	w := httptest.NewRecorder()

	// Channels have no JSON representation; the helper must fail before
	// committing a success status.
	err := RespondWithJSON(w, http.StatusOK, make(chan int))
	if err == nil {
		t.Fatal("Expected marshal error")
	}
	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500 on marshal failure, got %d", w.Code)
	}
}

func TestRespondWithError(t *testing.T) {
	tests := []struct {
		name    string
		code    int
		message string
	}{
		{"missing field", http.StatusBadRequest, "provider_name is required"},
		{"bad token", http.StatusUnauthorized, "Invalid or expired token"},
		{"missing config", http.StatusNotFound, "Configuration not found"},
		{"provider down", http.StatusBadGateway, "Provider request failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			RespondWithError(w, tt.code, tt.message)

			if w.Code != tt.code {
				t.Errorf("Expected status %d, got %d", tt.code, w.Code)
			}

			var resp ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("Failed to decode error envelope: %v", err)
			}
			if resp.Error != tt.message {
				t.Errorf("Expected message %q, got %q", tt.message, resp.Error)
			}
		})
	}
}

func TestErrorEnvelopeShape(t *testing.T) {
	w := httptest.NewRecorder()
	RespondWithError(w, http.StatusBadRequest, "audio file is required")

	// Clients rely on exactly one field named "error".
	var raw map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &raw); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(raw) != 1 {
		t.Errorf("Expected a single-field envelope, got %v", raw)
	}
	if _, ok := raw["error"]; !ok {
		t.Error("Expected an \"error\" field")
	}
}

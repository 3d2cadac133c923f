package auth

import (
	"testing"
	"time"

	"postforge/internal/config"
)

func getTestConfig() *config.Config {
	return &config.Config{
		JWTSecret: []byte("test-secret-key-for-testing"),
	}
}

func TestGenerateJWT(t *testing.T) {
	cfg := getTestConfig()

	token, exp, err := GenerateJWT(42, "alice", cfg)
	if err != nil {
		t.Fatalf("GenerateJWT() error = %v", err)
	}

	if token == "" {
		t.Error("GenerateJWT() returned empty token")
	}

	if exp <= time.Now().Unix() {
		t.Error("GenerateJWT() expiration time is in the past")
	}
}

func TestDecodeJWT(t *testing.T) {
	cfg := getTestConfig()

	token, _, err := GenerateJWT(42, "alice", cfg)
	if err != nil {
		t.Fatalf("GenerateJWT() error = %v", err)
	}

	t.Run("valid token", func(t *testing.T) {
		userID, err := DecodeJWT(token, cfg)
		if err != nil {
			t.Fatalf("DecodeJWT() error = %v", err)
		}
		if userID != 42 {
			t.Errorf("DecodeJWT() userID = %d, want 42", userID)
		}
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := DecodeJWT("not-a-token", cfg)
		if err == nil {
			t.Error("DecodeJWT() error = nil for garbage token, want error")
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := &config.Config{JWTSecret: []byte("different-secret")}
		_, err := DecodeJWT(token, other)
		if err == nil {
			t.Error("DecodeJWT() error = nil for wrong secret, want error")
		}
	})
}

func TestValidateJWT(t *testing.T) {
	cfg := getTestConfig()

	token, _, err := GenerateJWT(7, "bob", cfg)
	if err != nil {
		t.Fatalf("GenerateJWT() error = %v", err)
	}

	parsed, err := ValidateJWT(token, cfg)
	if err != nil {
		t.Fatalf("ValidateJWT() error = %v", err)
	}
	if !parsed.Valid {
		t.Error("ValidateJWT() token not valid")
	}
}

package auth

import (
	"strings"
	"testing"
)

func TestHashPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
	}{
		{
			name:     "simple password",
			password: "password123",
		},
		{
			name:     "complex password",
			password: "P@ssw0rd!@#$%^&*()",
		},
		{
			name:     "long password",
			password: "this-is-a-very-long-password-with-many-characters-1234567890",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := HashPassword(tt.password)
			if err != nil {
				t.Fatalf("HashPassword() error = %v", err)
			}

			if !strings.HasPrefix(hash, "$2a$") {
				t.Errorf("HashPassword() hash format invalid: %s", hash)
			}

			if !CheckPassword(hash, tt.password) {
				t.Error("CheckPassword() = false for correct password, want true")
			}

			if CheckPassword(hash, tt.password+"x") {
				t.Error("CheckPassword() = true for wrong password, want false")
			}
		})
	}
}

func TestCheckPasswordInvalidHash(t *testing.T) {
	if CheckPassword("not-a-bcrypt-hash", "password") {
		t.Error("CheckPassword() = true for malformed hash, want false")
	}
}

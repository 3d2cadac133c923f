package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"postforge/internal/config"
	"postforge/internal/models"
	"postforge/internal/storage"
	"postforge/internal/utils"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterHandler creates a user account and returns a token for it
func RegisterHandler(users *storage.UserRepository, cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		req.Username = strings.TrimSpace(req.Username)
		req.Email = strings.TrimSpace(req.Email)
		if req.Username == "" || req.Email == "" || req.Password == "" {
			utils.RespondWithError(w, http.StatusBadRequest, "username, email and password are required")
			return
		}

		hash, err := HashPassword(req.Password)
		if err != nil {
			utils.RespondWithError(w, http.StatusInternalServerError, "Error hashing password")
			return
		}

		user := &models.User{
			Username:     req.Username,
			Email:        req.Email,
			PasswordHash: hash,
		}
		if err := users.Create(r.Context(), user); err != nil {
			if errors.Is(err, storage.ErrUserExists) {
				utils.RespondWithError(w, http.StatusConflict, "Username or email already taken")
				return
			}
			utils.RespondWithError(w, http.StatusInternalServerError, "Error creating user")
			return
		}

		token, exp, err := GenerateJWT(user.ID, user.Username, cfg)
		if err != nil {
			utils.RespondWithError(w, http.StatusInternalServerError, "Error generating token")
			return
		}

		utils.RespondWithJSON(w, http.StatusCreated, map[string]interface{}{
			"token": token,
			"exp":   exp,
			"user":  user,
		})
	}
}

// LoginHandler exchanges credentials for a JWT
func LoginHandler(users *storage.UserRepository, cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		user, err := users.GetByUsername(r.Context(), req.Username)
		if err != nil {
			if errors.Is(err, storage.ErrUserNotFound) {
				utils.RespondWithError(w, http.StatusUnauthorized, "Invalid credentials")
				return
			}
			utils.RespondWithError(w, http.StatusInternalServerError, "Error looking up user")
			return
		}

		if !CheckPassword(user.PasswordHash, req.Password) {
			utils.RespondWithError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}

		token, exp, err := GenerateJWT(user.ID, user.Username, cfg)
		if err != nil {
			utils.RespondWithError(w, http.StatusInternalServerError, "Error generating token")
			return
		}

		utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
			"token": token,
			"exp":   exp,
			"user":  user,
		})
	}
}

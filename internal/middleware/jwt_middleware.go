package middleware

import (
	"context"
	"net/http"
	"strings"

	"postforge/internal/auth"
	"postforge/internal/config"
	"postforge/internal/utils"
)

// ContextKey is the type used for request context values set by middleware
type ContextKey string

// UserIDKey stores the authenticated user's ID in the request context
const UserIDKey ContextKey = "userID"

// JWTMiddleware validates bearer tokens and stores the user ID in the
// request context
func JWTMiddleware(cfg *config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := r.Header.Get("Authorization")
			if tokenString == "" {
				utils.RespondWithError(w, http.StatusUnauthorized, "Missing authentication token")
				return
			}

			// Remove "Bearer " prefix if present
			tokenString = strings.TrimPrefix(tokenString, "Bearer ")

			userID, err := auth.DecodeJWT(tokenString, cfg)
			if err != nil {
				utils.RespondWithError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserID retrieves the authenticated user's ID from the request context
func GetUserID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(UserIDKey).(int64)
	return id, ok
}

package auth

import (
	"errors"
	"time"

	"postforge/internal/config"

	"github.com/golang-jwt/jwt/v4"
)

// tokenLifetime bounds how long an issued token stays valid.
const tokenLifetime = 24 * time.Hour

// GenerateJWT creates a token with the user ID embedded
func GenerateJWT(userID int64, username string, cfg *config.Config) (string, int64, error) {
	expirationTime := time.Now().Add(tokenLifetime).Unix()
	claims := jwt.MapClaims{
		"sub":      userID,         // Subject: user ID
		"username": username,       // Convenience for logging
		"exp":      expirationTime, // Expiration timestamp
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedToken, err := token.SignedString(cfg.JWTSecret)
	if err != nil {
		return "", 0, err
	}
	return signedToken, expirationTime, nil
}

// ValidateJWT verifies the provided JWT
func ValidateJWT(tokenString string, cfg *config.Config) (*jwt.Token, error) {
	return jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return cfg.JWTSecret, nil
	})
}

// DecodeJWT extracts the user ID from the provided JWT
func DecodeJWT(tokenString string, cfg *config.Config) (int64, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return cfg.JWTSecret, nil
	})
	if err != nil {
		return 0, err
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		// JSON numbers decode as float64
		sub, ok := claims["sub"].(float64)
		if !ok {
			return 0, errors.New("invalid subject claim")
		}
		return int64(sub), nil
	}
	return 0, errors.New("invalid token")
}

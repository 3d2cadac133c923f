package storage

import "errors"

var (
	// ErrConfigNotFound is returned when a provider configuration is not found
	ErrConfigNotFound = errors.New("provider configuration not found")

	// ErrCharacterNotFound is returned when a character profile is not found
	ErrCharacterNotFound = errors.New("character profile not found")

	// ErrTrendNotFound is returned when a trend is not found
	ErrTrendNotFound = errors.New("trend not found")

	// ErrFavoriteNotFound is returned when a favorite is not found
	ErrFavoriteNotFound = errors.New("favorite not found")

	// ErrUserNotFound is returned when a user is not found
	ErrUserNotFound = errors.New("user not found")

	// ErrUserExists is returned when a username or email is already taken
	ErrUserExists = errors.New("user already exists")
)

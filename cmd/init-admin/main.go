package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"postforge/internal/auth"
	"postforge/internal/config"
	"postforge/internal/models"
	"postforge/internal/storage"
)

// init-admin seeds the fallback admin identity: the user whose default
// provider configuration serves every user that has none of their own.

func main() {
	fmt.Println("PostForge - Admin Bootstrap")

	// Load configuration (primarily for database connection)
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Get bootstrap credentials from environment
	username := os.Getenv("ADMIN_BOOTSTRAP_USERNAME")
	email := os.Getenv("ADMIN_BOOTSTRAP_EMAIL")
	password := os.Getenv("ADMIN_BOOTSTRAP_PASSWORD")

	if username == "" || email == "" || password == "" {
		fmt.Fprintf(os.Stderr, "ERROR: ADMIN_BOOTSTRAP_USERNAME, ADMIN_BOOTSTRAP_EMAIL and ADMIN_BOOTSTRAP_PASSWORD must be set\n")
		os.Exit(1)
	}

	if !isValidEmail(email) {
		fmt.Fprintf(os.Stderr, "ERROR: Invalid email format: %s\n", email)
		os.Exit(1)
	}

	if len(password) < 8 {
		fmt.Fprintf(os.Stderr, "ERROR: Password must be at least 8 characters long\n")
		os.Exit(1)
	}

	// Connect to database
	fmt.Println("Connecting to database...")
	dbCfg := storage.DefaultDBConfig()
	dbCfg.URL = cfg.Database.URL
	db, err := storage.NewDB(dbCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	fmt.Println("Database connection established")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	users := storage.NewUserRepository(db)

	// Check if the admin user already exists
	existing, err := users.GetByUsername(ctx, username)
	if err != nil && err != storage.ErrUserNotFound {
		fmt.Fprintf(os.Stderr, "ERROR: Failed to check for existing user: %v\n", err)
		os.Exit(1)
	}

	admin := existing
	if admin == nil {
		passwordHash, err := auth.HashPassword(password)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: Failed to hash password: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Creating admin user: %s\n", username)
		admin = &models.User{
			Username:     username,
			Email:        email,
			PasswordHash: passwordHash,
		}
		if err := users.Create(ctx, admin); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: Failed to create admin user: %v\n", err)
			os.Exit(1)
		}
	} else {
		fmt.Printf("INFO: Admin user %s already exists (ID %d)\n", username, admin.ID)
	}

	if admin.ID != cfg.AdminUserID {
		fmt.Printf("WARNING: admin user has ID %d but ADMIN_USER_ID is %d; set ADMIN_USER_ID=%d\n",
			admin.ID, cfg.AdminUserID, admin.ID)
	}

	// Optionally seed the fallback provider configuration
	providerName := strings.ToLower(os.Getenv("ADMIN_PROVIDER_NAME"))
	providerKey := os.Getenv("ADMIN_PROVIDER_API_KEY")
	if providerName != "" && providerKey != "" {
		encryption, err := storage.NewEncryptionFromBase64(cfg.EncryptionKey)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: Failed to initialize encryption: %v\n", err)
			os.Exit(1)
		}

		configs := storage.NewProviderConfigRepository(db, encryption)
		fmt.Printf("Creating fallback %s configuration for user %d\n", providerName, admin.ID)
		err = configs.Create(ctx, &models.ProviderConfig{
			UserID:                   admin.ID,
			ProviderName:             providerName,
			APIKey:                   providerKey,
			DefaultModelText:         os.Getenv("ADMIN_PROVIDER_MODEL_TEXT"),
			DefaultModelSpeechToText: os.Getenv("ADMIN_PROVIDER_MODEL_SPEECH"),
			DefaultModelVisionToText: os.Getenv("ADMIN_PROVIDER_MODEL_VISION"),
			IsDefault:                true,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: Failed to create fallback config: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Println("SUCCESS: Bootstrap complete")
	fmt.Printf("Username: %s\n", admin.Username)
	fmt.Printf("ID: %d\n", admin.ID)
	fmt.Println("\nFor security, remove the ADMIN_BOOTSTRAP_* variables from your environment.")
}

// isValidEmail performs a basic email validation
func isValidEmail(email string) bool {
	// Very basic check - just ensure it has @ and a domain
	if len(email) < 3 {
		return false
	}

	atCount := 0
	atIndex := -1
	for i, c := range email {
		if c == '@' {
			atCount++
			atIndex = i
		}
	}

	// Must have exactly one @ and it can't be at start or end
	if atCount != 1 || atIndex == 0 || atIndex == len(email)-1 {
		return false
	}

	return true
}

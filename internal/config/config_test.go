package config

import (
	"testing"
	"time"
)

func TestLoadRequiresDatabaseAndEncryptionKey(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("ENCRYPTION_KEY", "")

	if _, err := Load(); err == nil {
		t.Fatal("Expected error when DATABASE_URL is missing")
	}

	t.Setenv("DATABASE_URL", "postgres://postgres@localhost:5432/postforge?sslmode=disable")
	if _, err := Load(); err == nil {
		t.Fatal("Expected error when ENCRYPTION_KEY is missing")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://postgres@localhost:5432/postforge?sslmode=disable")
	t.Setenv("ENCRYPTION_KEY", "dGVzdC1rZXk=")
	t.Setenv("HTTP_PORT", "")
	t.Setenv("REDIS_ADDRESS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.HTTPPort != "8080" {
		t.Errorf("Expected default port 8080, got %s", cfg.HTTPPort)
	}
	if cfg.AdminUserID != 1 {
		t.Errorf("Expected default admin user 1, got %d", cfg.AdminUserID)
	}
	if cfg.Redis.Address != "" {
		t.Error("Expected empty Redis address by default")
	}
	if cfg.Database.MaxOpenConns != 25 {
		t.Errorf("Expected default pool size 25, got %d", cfg.Database.MaxOpenConns)
	}
	if cfg.Provider.RequestTimeout != 60*time.Second {
		t.Errorf("Expected default provider timeout 60s, got %v", cfg.Provider.RequestTimeout)
	}
	if cfg.RequestLogger.MaxSize != 10_485_760 {
		t.Errorf("Expected default log size cap 10MB, got %d", cfg.RequestLogger.MaxSize)
	}
}

func TestLoadOverridesAndBadValues(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://postgres@db:5432/postforge")
	t.Setenv("ENCRYPTION_KEY", "dGVzdC1rZXk=")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("ADMIN_USER_ID", "7")
	t.Setenv("REDIS_ADDRESS", "redis:6379")
	t.Setenv("CACHE_TREND_TTL", "30m")
	t.Setenv("DB_MAX_OPEN_CONNS", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.HTTPPort != "9090" {
		t.Errorf("Expected port override, got %s", cfg.HTTPPort)
	}
	if cfg.AdminUserID != 7 {
		t.Errorf("Expected admin user 7, got %d", cfg.AdminUserID)
	}
	if cfg.Redis.Address != "redis:6379" {
		t.Errorf("Expected Redis address override, got %s", cfg.Redis.Address)
	}
	if cfg.Cache.TrendCacheTTL != 30*time.Minute {
		t.Errorf("Expected 30m trend TTL, got %v", cfg.Cache.TrendCacheTTL)
	}
	// Unparsable values fall back instead of failing startup.
	if cfg.Database.MaxOpenConns != 25 {
		t.Errorf("Expected fallback pool size for bad value, got %d", cfg.Database.MaxOpenConns)
	}
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds configuration for the content generation backend.
type Config struct {
	HTTPPort      string
	JWTSecret     []byte
	EncryptionKey string
	AdminUserID   int64
	Database      DatabaseConfig
	Cache         CacheConfig
	Redis         RedisConfig
	Provider      ProviderConfig
	RequestLogger RequestLoggerConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// CacheConfig holds cache settings
type CacheConfig struct {
	ConfigCacheSize int
	ConfigCacheTTL  time.Duration
	TrendCacheSize  int
	TrendCacheTTL   time.Duration
}

// RedisConfig selects the analytics queue backend. An empty Address
// keeps the queue in process memory.
type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

// ProviderConfig holds AI provider dispatch settings
type ProviderConfig struct {
	RequestTimeout time.Duration // Default timeout for provider requests
	AzureEndpoint  string        // Azure OpenAI resource URL, only needed for the azure provider
}

type RequestLoggerConfig struct {
	FilePathTemplate string
	MaxSize          int64
	MaxFiles         int
	BufferSize       int
	FlushInterval    time.Duration
}

// The env* helpers fall back to the default on unset or unparsable
// values; a typo in an optional variable should not take the server
// down.

func envStr(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func envInt(key string, fallback int) int {
	val, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return val
}

func envInt64(key string, fallback int64) int64 {
	val, err := strconv.ParseInt(os.Getenv(key), 10, 64)
	if err != nil {
		return fallback
	}
	return val
}

func envDur(key string, fallback time.Duration) time.Duration {
	val, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return val
}

// Load reads configuration from environment variables. DATABASE_URL and
// ENCRYPTION_KEY have no sane defaults and are required.
func Load() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	encryptionKey := os.Getenv("ENCRYPTION_KEY")
	if encryptionKey == "" {
		return nil, fmt.Errorf("ENCRYPTION_KEY is required")
	}

	cfg := &Config{
		HTTPPort:      envStr("HTTP_PORT", "8080"),
		JWTSecret:     []byte(envStr("JWT_SECRET", "supersecretkey")),
		EncryptionKey: encryptionKey,
		// AdminUserID names the fallback identity whose default provider
		// configs serve users without their own.
		AdminUserID: envInt64("ADMIN_USER_ID", 1),
		Database: DatabaseConfig{
			URL:             dbURL,
			MaxOpenConns:    envInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDur("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			ConnMaxIdleTime: envDur("DB_CONN_MAX_IDLE_TIME", 1*time.Minute),
		},
		Cache: CacheConfig{
			ConfigCacheSize: envInt("CACHE_CONFIG_SIZE", 1000),
			ConfigCacheTTL:  envDur("CACHE_CONFIG_TTL", 5*time.Minute),
			TrendCacheSize:  envInt("CACHE_TREND_SIZE", 500),
			TrendCacheTTL:   envDur("CACHE_TREND_TTL", 15*time.Minute),
		},
		Redis: RedisConfig{
			Address:  envStr("REDIS_ADDRESS", ""),
			Password: envStr("REDIS_PASSWORD", ""),
			DB:       envInt("REDIS_DB", 0),
		},
		Provider: ProviderConfig{
			RequestTimeout: envDur("PROVIDER_REQUEST_TIMEOUT", 60*time.Second),
			AzureEndpoint:  envStr("AZURE_OPENAI_ENDPOINT", ""),
		},
		RequestLogger: RequestLoggerConfig{
			FilePathTemplate: envStr("REQUEST_LOGGER_FILE_PATH_TEMPLATE", "/var/log/postforge/requests-%s.jsonl"),
			MaxSize:          envInt64("REQUEST_LOGGER_MAX_SIZE", 10_485_760), // 10 MB per file
			MaxFiles:         envInt("REQUEST_LOGGER_MAX_FILES", 5),
			BufferSize:       envInt("REQUEST_LOGGER_BUFFER_SIZE", 100),
			FlushInterval:    envDur("REQUEST_LOGGER_FLUSH_INTERVAL", 60*time.Second),
		},
	}

	return cfg, nil
}

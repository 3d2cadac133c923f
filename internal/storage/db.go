package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver
)

// DB bundles the connection pool with the in-process caches that sit in
// front of it. Repositories share one DB so the config and trend caches
// see all traffic.
type DB struct {
	conn *sqlx.DB

	configCache *LRUCache
	trendCache  *LRUCache
}

// DBConfig holds pool and cache sizing for NewDB.
type DBConfig struct {
	URL string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration

	ConfigCacheSize int
	ConfigCacheTTL  time.Duration
	TrendCacheSize  int
	TrendCacheTTL   time.Duration
}

// DefaultDBConfig returns the settings used when no environment
// overrides are present.
func DefaultDBConfig() DBConfig {
	return DBConfig{
		URL: "postgres://postgres@localhost:5432/postforge?sslmode=disable",

		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
		ConnMaxIdleTime: 1 * time.Minute,

		ConfigCacheSize: 1000,
		ConfigCacheTTL:  5 * time.Minute,
		TrendCacheSize:  500,
		TrendCacheTTL:   15 * time.Minute,
	}
}

// NewDB connects to Postgres and sets up the connection pool and caches.
func NewDB(cfg DBConfig) (*DB, error) {
	conn, err := sqlx.Connect("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	conn.SetMaxOpenConns(cfg.MaxOpenConns)
	conn.SetMaxIdleConns(cfg.MaxIdleConns)
	conn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	conn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return &DB{
		conn:        conn,
		configCache: NewLRUCache(cfg.ConfigCacheSize, cfg.ConfigCacheTTL),
		trendCache:  NewLRUCache(cfg.TrendCacheSize, cfg.TrendCacheTTL),
	}, nil
}

// Close clears the caches and closes the pool.
func (db *DB) Close() error {
	db.configCache.Clear()
	db.trendCache.Clear()
	return db.conn.Close()
}

// Health verifies the database is reachable and answering queries. The
// /health endpoint reports 503 when this fails.
func (db *DB) Health(ctx context.Context) error {
	if err := db.conn.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	var result int
	if err := db.conn.GetContext(ctx, &result, "SELECT 1"); err != nil {
		return fmt.Errorf("health check query failed: %w", err)
	}

	return nil
}

// DBStats is the pool and cache snapshot served by the stats endpoint.
type DBStats struct {
	MaxOpenConnections int           `json:"max_open_connections"`
	OpenConnections    int           `json:"open_connections"`
	InUse              int           `json:"in_use"`
	Idle               int           `json:"idle"`
	WaitCount          int64         `json:"wait_count"`
	WaitDuration       time.Duration `json:"wait_duration"`
	MaxIdleClosed      int64         `json:"max_idle_closed"`
	MaxLifetimeClosed  int64         `json:"max_lifetime_closed"`

	ConfigCacheStats CacheStats `json:"config_cache"`
	TrendCacheStats  CacheStats `json:"trend_cache"`
}

func (db *DB) GetStats() DBStats {
	stats := db.conn.Stats()

	return DBStats{
		MaxOpenConnections: stats.MaxOpenConnections,
		OpenConnections:    stats.OpenConnections,
		InUse:              stats.InUse,
		Idle:               stats.Idle,
		WaitCount:          stats.WaitCount,
		WaitDuration:       stats.WaitDuration,
		MaxIdleClosed:      stats.MaxIdleClosed,
		MaxLifetimeClosed:  stats.MaxLifetimeClosed,

		ConfigCacheStats: db.configCache.GetStats(),
		TrendCacheStats:  db.trendCache.GetStats(),
	}
}

// CleanupExpiredCacheEntries sweeps both caches. Runs on a one minute
// ticker started by the router.
func (db *DB) CleanupExpiredCacheEntries() (configRemoved, trendRemoved int) {
	configRemoved = db.configCache.CleanupExpired()
	trendRemoved = db.trendCache.CleanupExpired()
	return
}

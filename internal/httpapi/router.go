package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"postforge/internal/auth"
	"postforge/internal/catalog"
	"postforge/internal/config"
	"postforge/internal/credentials"
	"postforge/internal/generator"
	"postforge/internal/logging"
	"postforge/internal/middleware"
	"postforge/internal/providers"
	"postforge/internal/queue"
	"postforge/internal/storage"
	"postforge/internal/utils"
)

// Dependencies aggregates all services the HTTP layer needs.
type Dependencies struct {
	DB              *storage.DB
	Users           *storage.UserRepository
	Configs         *storage.ProviderConfigRepository
	Characters      *storage.CharacterRepository
	Trends          *storage.TrendRepository
	Favorites       *storage.FavoriteRepository
	Analytics       *storage.AnalyticsRepository
	Catalog         *catalog.Catalog
	Dispatcher      *providers.Dispatcher
	Resolver        *credentials.Resolver
	Generator       *generator.Generator
	RequestLogger   *logging.RequestLogger
	AnalyticsWorker *storage.AnalyticsQueueWorker
}

// NewRouter creates an HTTP router with all dependencies wired up
func NewRouter(cfg *config.Config) (*http.ServeMux, *Dependencies, error) {
	// Initialize database
	db, err := storage.NewDB(storage.DBConfig{
		URL:             cfg.Database.URL,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
		ConfigCacheSize: cfg.Cache.ConfigCacheSize,
		ConfigCacheTTL:  cfg.Cache.ConfigCacheTTL,
		TrendCacheSize:  cfg.Cache.TrendCacheSize,
		TrendCacheTTL:   cfg.Cache.TrendCacheTTL,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Evict expired cache entries so TTLs hold even without read traffic
	go func() {
		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			db.CleanupExpiredCacheEntries()
		}
	}()

	// Initialize encryption for provider API keys
	encryption, err := storage.NewEncryptionFromBase64(cfg.EncryptionKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize encryption: %w", err)
	}

	// Initialize repositories
	configRepo := storage.NewProviderConfigRepository(db, encryption)
	userRepo := storage.NewUserRepository(db)
	characterRepo := storage.NewCharacterRepository(db)
	trendRepo := storage.NewTrendRepository(db)
	favoriteRepo := storage.NewFavoriteRepository(db)
	analyticsRepo := storage.NewAnalyticsRepository(db)

	// Initialize request logger
	requestLogger, err := logging.NewLogger(
		cfg.RequestLogger.FilePathTemplate,
		cfg.RequestLogger.MaxSize,
		cfg.RequestLogger.MaxFiles,
		cfg.RequestLogger.BufferSize,
		cfg.RequestLogger.FlushInterval,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize request logger: %w", err)
	}

	// Create analytics queue, backed by Redis when configured
	var analyticsQueue queue.Queue
	var analyticsDLQ queue.DeadLetterQueue
	analyticsQueueCfg := queue.DefaultConfig("analytics")

	if cfg.Redis.Address != "" {
		analyticsQueueCfg.RedisAddr = cfg.Redis.Address
		analyticsQueueCfg.RedisPassword = cfg.Redis.Password
		analyticsQueueCfg.RedisDB = cfg.Redis.DB
		analyticsQueue, err = queue.NewRedisQueue(analyticsQueueCfg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create analytics queue: %w", err)
		}
		analyticsDLQ, err = queue.NewRedisDeadLetterQueue(analyticsQueueCfg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create analytics DLQ: %w", err)
		}
	} else {
		analyticsQueue = queue.NewMemoryQueue(analyticsQueueCfg)
		analyticsDLQ = queue.NewMemoryDeadLetterQueue()
	}

	analyticsWorker := storage.NewAnalyticsQueueWorker(analyticsQueue, analyticsDLQ, db, analyticsQueueCfg)
	analyticsWorker.Start(context.Background())

	// Core generation services
	dispatcher := providers.NewDispatcher(providers.Config{
		RequestTimeout: cfg.Provider.RequestTimeout,
		AzureEndpoint:  cfg.Provider.AzureEndpoint,
	})
	resolver := credentials.NewResolver(configRepo, cfg.AdminUserID)
	gen := generator.New(resolver, dispatcher)

	deps := &Dependencies{
		DB:              db,
		Users:           userRepo,
		Configs:         configRepo,
		Characters:      characterRepo,
		Trends:          trendRepo,
		Favorites:       favoriteRepo,
		Analytics:       analyticsRepo,
		Catalog:         catalog.New(),
		Dispatcher:      dispatcher,
		Resolver:        resolver,
		Generator:       gen,
		RequestLogger:   requestLogger,
		AnalyticsWorker: analyticsWorker,
	}

	mux := http.NewServeMux()
	registerRoutes(mux, deps, cfg)

	return mux, deps, nil
}

func registerRoutes(mux *http.ServeMux, deps *Dependencies, cfg *config.Config) {
	// Health check endpoint - public
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		if err := deps.DB.Health(r.Context()); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Authentication endpoints - public
	mux.Handle("POST /api/auth/register", auth.RegisterHandler(deps.Users, cfg))
	mux.Handle("POST /api/auth/login", auth.LoginHandler(deps.Users, cfg))

	// Everything below requires a valid user token
	protected := middleware.JWTMiddleware(cfg)
	logged := func(h http.Handler) http.Handler {
		return protected(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, _ := middleware.GetUserID(r.Context())
			deps.RequestLogger.LogRequest(r, userID)
			h.ServeHTTP(w, r)
		}))
	}

	// Provider catalog
	configHandler := NewConfigHandler(deps.Configs, deps.Catalog, deps.Dispatcher)
	mux.Handle("GET /api/providers", logged(http.HandlerFunc(configHandler.ListProviders)))
	mux.Handle("GET /api/providers/{name}/models", logged(http.HandlerFunc(configHandler.ListModels)))

	// Provider configuration management
	mux.Handle("GET /api/configs", logged(http.HandlerFunc(configHandler.List)))
	mux.Handle("POST /api/configs", logged(http.HandlerFunc(configHandler.Create)))
	mux.Handle("GET /api/configs/{id}", logged(http.HandlerFunc(configHandler.Get)))
	mux.Handle("PUT /api/configs/{id}", logged(http.HandlerFunc(configHandler.Update)))
	mux.Handle("DELETE /api/configs/{id}", logged(http.HandlerFunc(configHandler.Delete)))
	mux.Handle("POST /api/configs/{id}/set-default", logged(http.HandlerFunc(configHandler.SetDefault)))
	mux.Handle("POST /api/configs/{id}/test", logged(http.HandlerFunc(configHandler.Test)))

	// Content generation
	contentHandler := NewContentHandler(deps.Generator, deps.Trends, deps.Characters, deps.AnalyticsWorker)
	mux.Handle("POST /api/content/generate", logged(http.HandlerFunc(contentHandler.Generate)))
	mux.Handle("POST /api/content/variations", logged(http.HandlerFunc(contentHandler.Variations)))
	mux.Handle("POST /api/content/hashtags", logged(http.HandlerFunc(contentHandler.Hashtags)))
	mux.Handle("POST /api/content/optimize", logged(http.HandlerFunc(contentHandler.Optimize)))

	// Media understanding
	mediaHandler := NewMediaHandler(deps.Resolver, deps.Dispatcher)
	mux.Handle("POST /api/media/transcribe", logged(http.HandlerFunc(mediaHandler.Transcribe)))
	mux.Handle("POST /api/media/describe", logged(http.HandlerFunc(mediaHandler.Describe)))

	// Character profiles
	characterHandler := NewCharacterHandler(deps.Characters)
	mux.Handle("GET /api/characters", logged(http.HandlerFunc(characterHandler.List)))
	mux.Handle("POST /api/characters", logged(http.HandlerFunc(characterHandler.Create)))
	mux.Handle("GET /api/characters/{id}", logged(http.HandlerFunc(characterHandler.Get)))
	mux.Handle("PUT /api/characters/{id}", logged(http.HandlerFunc(characterHandler.Update)))
	mux.Handle("DELETE /api/characters/{id}", logged(http.HandlerFunc(characterHandler.Delete)))

	// Trends
	trendHandler := NewTrendHandler(deps.Trends)
	mux.Handle("GET /api/trends", logged(http.HandlerFunc(trendHandler.List)))
	mux.Handle("POST /api/trends", logged(http.HandlerFunc(trendHandler.Upsert)))
	mux.Handle("GET /api/trends/{id}", logged(http.HandlerFunc(trendHandler.Get)))
	mux.Handle("DELETE /api/trends/{id}", logged(http.HandlerFunc(trendHandler.Delete)))

	// Favorites
	favoriteHandler := NewFavoriteHandler(deps.Favorites)
	mux.Handle("GET /api/favorites", logged(http.HandlerFunc(favoriteHandler.List)))
	mux.Handle("POST /api/favorites", logged(http.HandlerFunc(favoriteHandler.Create)))
	mux.Handle("DELETE /api/favorites/{id}", logged(http.HandlerFunc(favoriteHandler.Delete)))

	// Analytics
	analyticsHandler := NewAnalyticsHandler(deps.Analytics, deps.AnalyticsWorker)
	mux.Handle("GET /api/analytics", logged(http.HandlerFunc(analyticsHandler.List)))
	mux.Handle("POST /api/analytics", logged(http.HandlerFunc(analyticsHandler.Record)))

	// Operational stats: connection pool, cache hit rates, queue depth
	mux.Handle("GET /api/stats", logged(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		queueLength, _ := deps.AnalyticsWorker.GetQueueLength(r.Context())
		utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
			"database":               deps.DB.GetStats(),
			"analytics_queue_length": queueLength,
		})
	})))
}

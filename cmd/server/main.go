package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"postforge/internal/config"
	"postforge/internal/httpapi"
	"postforge/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Errorf("failed to load config: %v", err)
		os.Exit(1)
	}

	mux, deps, err := httpapi.NewRouter(cfg)
	if err != nil {
		logging.Errorf("failed to build router: %v", err)
		os.Exit(1)
	}

	addr := ":" + cfg.HTTPPort
	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logging.Infof("postforge listening on %s", addr)
		serverErr <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logging.Infof("received %s, shutting down", sig)
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			logging.Errorf("server error: %v", err)
			os.Exit(1)
		}
	}

	// Stop accepting requests first, then drain the pipeline behind them:
	// flush queued analytics events into the database, flush the audit
	// log, and only then drop the database connection.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logging.Errorf("forced shutdown: %v", err)
	}

	if deps.AnalyticsWorker != nil {
		deps.AnalyticsWorker.Stop()
	}
	if deps.RequestLogger != nil {
		deps.RequestLogger.Shutdown()
	}
	if deps.DB != nil {
		if err := deps.DB.Close(); err != nil {
			logging.Errorf("closing database: %v", err)
		}
	}

	logging.Infof("server exited")
}

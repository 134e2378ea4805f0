// Package app initializes and holds long-lived application services, acting
// as a small dependency injection container.
package app

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/mhrabal/facrcrawl/internal/logging"
	"github.com/mhrabal/facrcrawl/internal/store"
)

// App holds the shared, long-lived services: the logger and the open game
// database. Initialized once at startup by the root command and passed to
// the subcommands that need it.
type App struct {
	logger *zap.Logger
	store  *store.GameStore
}

// GetLogger returns the shared zap logger instance.
func (a *App) GetLogger() *zap.Logger {
	return a.logger
}

// GetStore exposes the open game database.
func (a *App) GetStore() *store.GameStore {
	return a.store
}

// NewApp creates and initializes the App from the application's
// configuration. It fails fast if the database cannot be opened.
func NewApp() (*App, error) {
	l := logging.L
	dbPath := viper.GetString("database.path")
	l.Info("Opening game database", zap.String("path", dbPath))

	gameStore, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open game database: %w", err)
	}

	if viper.GetBool("metrics.enabled") {
		addr := viper.GetString("metrics.addr")
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		srv := &http.Server{Addr: addr, Handler: mux}
		go func() {
			l.Info("Starting metrics server", zap.String("addr", addr))
			if err := srv.ListenAndServe(); err != nil {
				l.Error("Metrics server failed", zap.Error(err))
			}
		}()
	}

	return &App{logger: l, store: gameStore}, nil
}

// Close gracefully shuts down the App's services.
func (a *App) Close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warn("Error closing game database", zap.Error(err))
	}
	// Best effort: flushing can fail on closed stderr during shutdown.
	_ = a.logger.Sync()
}

// Package config is responsible for initializing the application's configuration.
// It uses the Viper library to read settings from a config file, environment
// variables, and command-line flags, providing a unified configuration system.
package config

import (
	"strings"

	"github.com/mhrabal/facrcrawl/internal/logging"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// InitConfig initializes the application's configuration using Viper.
// It sets up default values, defines configuration search paths, and enables
// reading from environment variables. Designed to be called once at startup.
func InitConfig() {
	viper.SetConfigName("config")
	viper.AddConfigPath(".")                // Current working directory
	viper.AddConfigPath("/etc/facrcrawl/")  // System-wide configuration
	viper.AddConfigPath("$HOME/.facrcrawl") // User-specific configuration

	viper.SetDefault("crawler.base_url", "https://www.fotbal.cz")
	viper.SetDefault("crawler.user_agent", "facrcrawl/1.0 (+https://github.com/mhrabal/facrcrawl)")
	viper.SetDefault("crawler.concurrency", 4)
	viper.SetDefault("crawler.request_timeout", "15s")
	viper.SetDefault("crawler.min_delay", "1s")
	viper.SetDefault("crawler.max_attempts", 3)

	viper.SetDefault("database.path", "games_database.db")

	viper.SetDefault("metrics.enabled", false)
	viper.SetDefault("metrics.addr", ":9090")

	viper.SetDefault("log.development", false)

	// e.g. FACRCRAWL_CRAWLER_CONCURRENCY=8
	viper.SetEnvPrefix("FACRCRAWL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Not fatal: defaults and environment variables still apply.
			logging.L.Debug("Config file not found; using defaults and environment variables.")
		} else {
			logging.L.Error("Error reading config file", zap.Error(err))
		}
	} else {
		logging.L.Info("Using config file", zap.String("path", viper.ConfigFileUsed()))
	}
}

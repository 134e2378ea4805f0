// Package cmd defines and implements the CLI commands for the facrcrawl
// executable.
package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/mhrabal/facrcrawl/internal/app"
	"github.com/mhrabal/facrcrawl/internal/logging"
	"github.com/mhrabal/facrcrawl/pkg/config"
)

var cfgFile string

// appKeyType is the key for storing the App in the context.
type appKeyType string

const appKey appKeyType = "app"

// newApp is the application factory. It's a variable so tests can replace
// it with a mock factory.
var newApp = func() (*app.App, error) {
	return app.NewApp()
}

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "facrcrawl",
		Short: "Crawls FAČR match pages into a local SQLite database.",
		Long: `facrcrawl fetches match detail pages from the Czech football
federation's website, extracts teams, scores, and scorers, and persists them
into a local SQLite database. Re-running a crawl is idempotent. The stored
schema supports ad-hoc goal and standings queries per competition.`,

		// Runs AFTER config is loaded but BEFORE the subcommand's RunE:
		// the right place to build and inject the application services.
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := newApp()
			if err != nil {
				return fmt.Errorf("initialize application services: %w", err)
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey, appInstance))
			return nil
		},

		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if appInstance, ok := cmd.Context().Value(appKey).(*app.App); ok && appInstance != nil {
				appInstance.Close()
			}
		},
	}

	cobra.OnInitialize(config.InitConfig)

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.facrcrawl/config.yaml)")

	cmd.AddCommand(newCrawlCmd())
	cmd.AddCommand(newScorersCmd())
	cmd.AddCommand(newStandingsCmd())

	return cmd
}

func resolveApp(ctx context.Context) (*app.App, error) {
	appInstance, ok := ctx.Value(appKey).(*app.App)
	if !ok || appInstance == nil {
		return nil, errors.New("application services not initialized")
	}
	return appInstance, nil
}

// Execute is the main entry point.
func Execute() {
	logging.InitLogger(viper.GetBool("log.development"))

	if err := newRootCmd().Execute(); err != nil {
		logging.L.Fatal("Command execution failed", zap.Error(err))
	}
}

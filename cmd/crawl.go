package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/mhrabal/facrcrawl/internal/fetcher"
	"github.com/mhrabal/facrcrawl/internal/linkstore"
	"github.com/mhrabal/facrcrawl/internal/pipeline"
)

// newCrawlCmd creates and configures the 'crawl' subcommand, which runs the
// full fetch-parse-commit pipeline over a seed file of match references.
func newCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Crawls the matches listed in a seed file",
		Long: `Reads match-page references from a seed file (one listing line per
match, grep noise tolerated), fetches each detail page, and commits the
extracted match, teams, players, and goal events to the database. Individual
match failures are counted and summarized without failing the run.`,
		RunE: runCrawlCommand,
	}

	cmd.Flags().String("games-url", "", "path to the seed file of match references (required)")
	_ = cmd.MarkFlagRequired("games-url")

	return cmd
}

func runCrawlCommand(cmd *cobra.Command, _ []string) error {
	appInstance, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}
	logger := appInstance.GetLogger()

	cfg, err := pipeline.LoadConfig(viper.GetViper())
	if err != nil {
		return fmt.Errorf("load crawler config: %w", err)
	}

	gamesURL, _ := cmd.Flags().GetString("games-url")
	refs, err := linkstore.Load(gamesURL, cfg.BaseURL)
	if err != nil {
		return fmt.Errorf("load match references: %w", err)
	}

	pageFetcher, err := fetcher.NewCollyFetcher(
		cfg.FetcherConfig(),
		fetcher.NewExponentialRetryPolicy(cfg.MaxAttempts),
		logger,
	)
	if err != nil {
		return fmt.Errorf("init fetcher: %w", err)
	}

	summary := pipeline.New(pageFetcher, appInstance.GetStore(), cfg.Concurrency, logger).
		Run(cmd.Context(), refs)

	logger.Info("Run summary",
		zap.String("run_id", summary.RunID),
		zap.Int("references", summary.Total),
		zap.Int("committed", summary.Committed),
		zap.Int("warned", summary.Warned),
		zap.Int("fetch_failed", summary.FetchFailed),
		zap.Int("parse_failed", summary.ParseFailed),
		zap.Int("commit_failed", summary.CommitFailed),
	)
	fmt.Fprintf(cmd.OutOrStdout(), "committed %d/%d matches (%d warned, %d failed)\n",
		summary.Committed, summary.Total, summary.Warned, summary.Failed())
	return nil
}

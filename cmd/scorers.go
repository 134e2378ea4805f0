package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// newScorersCmd creates the 'scorers' subcommand, a read-only aggregate over
// the crawled data.
func newScorersCmd() *cobra.Command {
	var (
		competition string
		teamID      string
		limit       int
	)

	cmd := &cobra.Command{
		Use:   "scorers",
		Short: "Lists top scorers for a competition",
		Long: `Aggregates goal events per player across every crawled match whose
federation game number starts with the given competition code, optionally
restricted to one team.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}

			scorers, err := appInstance.GetStore().TopScorers(cmd.Context(), competition, teamID, limit)
			if err != nil {
				return fmt.Errorf("query top scorers: %w", err)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', 0)
			fmt.Fprintln(w, "PLAYER\tTEAM\tGOALS\tGAMES")
			for _, sc := range scorers {
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\n", sc.PlayerName, sc.TeamName, sc.TotalGoals, sc.TotalGames)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&competition, "competition", "", "competition code prefix, e.g. 2024622G1B (required)")
	cmd.Flags().StringVar(&teamID, "team", "", "restrict to one team ID, e.g. fk_a")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum rows to print (0 = all)")
	_ = cmd.MarkFlagRequired("competition")

	return cmd
}

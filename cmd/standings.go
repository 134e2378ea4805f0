package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// newStandingsCmd creates the 'standings' subcommand: a 3/1/0 points table
// computed from crawled final scores.
func newStandingsCmd() *cobra.Command {
	var competition string

	cmd := &cobra.Command{
		Use:   "standings",
		Short: "Prints the points table for a competition",
		RunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}

			standings, err := appInstance.GetStore().Standings(cmd.Context(), competition)
			if err != nil {
				return fmt.Errorf("query standings: %w", err)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', 0)
			fmt.Fprintln(w, "TEAM\tPLAYED\tPOINTS")
			for _, ts := range standings {
				fmt.Fprintf(w, "%s\t%d\t%d\n", ts.TeamName, ts.Played, ts.Points)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&competition, "competition", "", "competition code prefix, e.g. 2024622G1B (required)")
	_ = cmd.MarkFlagRequired("competition")

	return cmd
}

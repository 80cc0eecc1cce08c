package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"qcm-challenge/internal/app"
	"qcm-challenge/internal/config"
)

// NewLeaderboardCmd prints the stored results.
func NewLeaderboardCmd(configPath *string) *cobra.Command {
	var byPole bool
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Print the leaderboard from the configured store",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			backend, err := openBackend(ctx, cfg)
			if err != nil {
				return err
			}
			defer backend.Close()

			participants := app.NewParticipantLog(backend.kv)
			out := cmd.OutOrStdout()

			if byPole {
				groups, err := participants.GroupedByPole(ctx)
				if err != nil {
					return err
				}
				for _, g := range groups {
					fmt.Fprintf(out, "%s (%d)\n", g.Pole, len(g.Participants))
					for i, r := range g.Participants {
						fmt.Fprintln(out, formatRecord(i+1, r))
					}
				}
				return nil
			}

			records, err := participants.SortedByScoreDesc(ctx)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Fprintln(out, "no participants yet")
				return nil
			}
			for i, r := range records {
				fmt.Fprintln(out, formatRecord(i+1, r))
			}
			stats := app.Summarize(records)
			fmt.Fprintf(out, "\n%d participants, average %d%%, highest score %d\n",
				stats.Total, stats.AveragePercent, stats.HighestScore)
			return nil
		},
	}
	cmd.Flags().BoolVar(&byPole, "by-pole", false, "group results by pole")
	return cmd
}

package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/okian/pitchmap/internal/sampledata"
)

func newSampleDataCommand(out io.Writer) *cobra.Command {
	cfg := sampledata.DefaultConfig()
	cmd := &cobra.Command{
		Use:   "sample-data",
		Short: "Write a synthetic open-data tree for offline runs",
		Long: "Writes matches/{competition}/{season}.json and events/{match}.json under --dir.\n" +
			"Point provider_base_url at file://<absolute dir> to run pitchmap against it.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			stats, err := sampledata.Generate(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Wrote %d matches (%d for %s), %d events, %d for %s, under %s\n",
				stats.Matches, stats.TeamMatches, cfg.Team, stats.Events, stats.PlayerEvents, cfg.Player, cfg.Dir)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfg.Dir, "dir", cfg.Dir, "output directory")
	f.IntVar(&cfg.CompetitionID, "competition-id", cfg.CompetitionID, "competition id to file matches under")
	f.IntVar(&cfg.SeasonID, "season-id", cfg.SeasonID, "season id to file matches under")
	f.StringVar(&cfg.Team, "team", cfg.Team, "team playing every generated match")
	f.StringVar(&cfg.Player, "player", cfg.Player, "player the team's events are partly attributed to")
	f.IntVar(&cfg.Matches, "matches", cfg.Matches, "number of team matches")
	f.IntVar(&cfg.EventsPerMatch, "events", cfg.EventsPerMatch, "events per match")
	f.Int64Var(&cfg.Seed, "seed", cfg.Seed, "random seed")
	return cmd
}

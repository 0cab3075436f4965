// Package cli wires configuration, logging and the pipeline behind the
// pitchmap command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/pitchmap/internal/adapters/render"
	"github.com/okian/pitchmap/internal/adapters/statsbomb"
	"github.com/okian/pitchmap/internal/app"
	"github.com/okian/pitchmap/internal/config"
	"github.com/okian/pitchmap/pkg/logger"
	"github.com/okian/pitchmap/pkg/metrics"
)

// Runner executes one pipeline run.
type Runner interface {
	Run(ctx context.Context, req app.Request) (*app.Report, error)
}

// Factory builds a Runner for a loaded configuration.
type Factory func(cfg *config.Config, m *metrics.Manager) Runner

// DefaultFactory builds the StatsBomb client, the gonum renderer and the
// service from cfg.
func DefaultFactory(cfg *config.Config, m *metrics.Manager) Runner {
	source := statsbomb.New(
		statsbomb.WithBaseURL(cfg.ProviderBaseURL),
		statsbomb.WithTimeout(time.Duration(cfg.RequestTimeoutMS)*time.Millisecond),
		statsbomb.WithRequestsPerSecond(cfg.RequestsPerSecond),
		statsbomb.WithMetrics(m),
	)
	renderer := render.New(
		render.WithDPI(cfg.DPI),
		render.WithBins(cfg.BinsX, cfg.BinsY),
		render.WithKDE(render.KDEOptions{
			Levels: cfg.KDELevels,
			Thresh: cfg.KDEThresh,
			GridX:  cfg.KDEGridX,
			GridY:  cfg.KDEGridY,
		}),
	)
	return app.New(
		app.WithSource(source),
		app.WithRenderer(renderer),
		app.WithCategories(app.Categories{Defensive: cfg.DefensiveTypes, OnBall: cfg.OnBallTypes}),
		app.WithDataSourceLabel(cfg.DataSourceLabel),
		app.WithMetrics(m),
	)
}

type rootOptions struct {
	out     io.Writer
	factory Factory
	metrics *metrics.Manager
}

// Option applies a configuration option to the root command.
type Option func(*rootOptions)

// WithOutput sets where the final listing is printed.
func WithOutput(w io.Writer) Option {
	return func(o *rootOptions) {
		if w != nil {
			o.out = w
		}
	}
}

// WithFactory replaces the pipeline constructor.
func WithFactory(f Factory) Option {
	return func(o *rootOptions) {
		if f != nil {
			o.factory = f
		}
	}
}

// WithMetrics sets the metrics manager handed to the factory.
func WithMetrics(m *metrics.Manager) Option {
	return func(o *rootOptions) {
		if m != nil {
			o.metrics = m
		}
	}
}

type flagValues struct {
	configPath    string
	team          string
	player        string
	competitionID int
	seasonID      int
	outDir        string
	binsX         int
	binsY         int
}

// NewRootCommand returns the pitchmap command with its sample-data
// subcommand.
func NewRootCommand(opts ...Option) *cobra.Command {
	o := &rootOptions{out: os.Stdout, factory: DefaultFactory}
	for _, opt := range opts {
		opt(o)
	}
	if o.metrics == nil {
		o.metrics = metrics.Default()
	}

	defaults := config.New()
	var fv flagValues
	cmd := &cobra.Command{
		Use:           "pitchmap",
		Short:         "Render a player's action heatmaps from StatsBomb open data",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRoot(cmd, o, fv)
		},
	}

	f := cmd.Flags()
	f.StringVar(&fv.configPath, "config", "", "YAML configuration file")
	f.StringVar(&fv.team, "team", "", "team name, exact provider spelling")
	f.StringVar(&fv.player, "player", "", "player name, exact provider spelling")
	f.IntVar(&fv.competitionID, "competition-id", defaults.CompetitionID, "provider competition id")
	f.IntVar(&fv.seasonID, "season-id", defaults.SeasonID, "provider season id")
	f.StringVar(&fv.outDir, "out-dir", defaults.OutDir, "directory figures are written to")
	f.IntVar(&fv.binsX, "bins-x", defaults.BinsX, "count heatmap bins along the pitch length")
	f.IntVar(&fv.binsY, "bins-y", defaults.BinsY, "count heatmap bins along the pitch width")
	_ = cmd.MarkFlagRequired("team")
	_ = cmd.MarkFlagRequired("player")

	cmd.AddCommand(newSampleDataCommand(o.out))
	return cmd
}

func runRoot(cmd *cobra.Command, o *rootOptions, fv flagValues) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(ctx, fv.configPath)
	if err != nil {
		return err
	}
	applyFlags(cmd, cfg, fv)
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	report, err := o.factory(cfg, o.metrics).Run(ctx, app.Request{
		Team:          fv.team,
		Player:        fv.player,
		CompetitionID: cfg.CompetitionID,
		SeasonID:      cfg.SeasonID,
		OutDir:        cfg.OutDir,
	})
	if cfg.MetricsFile != "" {
		if werr := o.metrics.WriteTextfile(cfg.MetricsFile); werr != nil {
			log.Warn(ctx, "failed to write metrics file", logger.String("path", cfg.MetricsFile), logger.Error(werr))
		}
	}
	if err != nil {
		return err
	}

	printReport(o.out, report)
	return nil
}

// applyFlags overrides cfg with the flags the user actually set.
func applyFlags(cmd *cobra.Command, cfg *config.Config, fv flagValues) {
	f := cmd.Flags()
	if f.Changed("competition-id") {
		cfg.CompetitionID = fv.competitionID
	}
	if f.Changed("season-id") {
		cfg.SeasonID = fv.seasonID
	}
	if f.Changed("out-dir") {
		cfg.OutDir = fv.outDir
	}
	if f.Changed("bins-x") {
		cfg.BinsX = fv.binsX
	}
	if f.Changed("bins-y") {
		cfg.BinsY = fv.binsY
	}
}

func printReport(w io.Writer, r *app.Report) {
	fmt.Fprintln(w, "Finished. Saved figures:")
	for _, f := range r.Figures {
		fmt.Fprintf(w, "  %s: %s\n", f.ID, f.Path)
	}
	for _, id := range r.Skipped {
		fmt.Fprintf(w, "  %s: skipped (no events in this half)\n", id)
	}
	fmt.Fprintf(w, "Mapped events: %d/%d (%.1f%%), dropped %d\n",
		r.Counts.Mapped, r.Counts.PlayerEvents, r.MappedPercent, r.Counts.Dropped)
}

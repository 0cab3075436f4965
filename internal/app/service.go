// Package app runs the heatmap pipeline: fetch a team's events, keep one
// player's located actions and render the figure set.
package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okian/pitchmap/internal/adapters/render"
	"github.com/okian/pitchmap/internal/adapters/statsbomb"
	"github.com/okian/pitchmap/internal/domain/model"
	"github.com/okian/pitchmap/internal/domain/preprocess"
	"github.com/okian/pitchmap/pkg/logger"
	"github.com/okian/pitchmap/pkg/metrics"
)

const (
	defaultDataSource = "StatsBomb open data"
	topTypesLogged    = 10
)

// EventSource provides a team's matches and their events.
type EventSource interface {
	FetchTeamEvents(ctx context.Context, team string, competitionID, seasonID int) ([]model.Match, []model.Event, error)
}

// FigureRenderer draws and saves one figure, returning its path.
type FigureRenderer interface {
	Render(ctx context.Context, fig render.Figure, dir string) (string, error)
}

// Categories are the event type labels each map family is drawn from.
type Categories struct {
	Defensive []string
	OnBall    []string
}

// DefaultCategories returns the defensive and on-ball sets.
func DefaultCategories() Categories {
	return Categories{
		Defensive: []string{"Pressure", "Ball Recovery", "Interception", "Block", "Clearance"},
		OnBall:    []string{"Pass", "Carry", "Ball Receipt*", "Dribble", "Shot"},
	}
}

// Request selects whose actions are mapped and where figures go.
type Request struct {
	Team          string
	Player        string
	CompetitionID int
	SeasonID      int
	OutDir        string
}

func (r Request) validate() error {
	var missing []string
	if strings.TrimSpace(r.Team) == "" {
		missing = append(missing, "team")
	}
	if strings.TrimSpace(r.Player) == "" {
		missing = append(missing, "player")
	}
	if strings.TrimSpace(r.OutDir) == "" {
		missing = append(missing, "out dir")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidRequest, strings.Join(missing, ", "))
	}
	return nil
}

// Service runs the pipeline. It holds no state between runs.
type Service struct {
	source     EventSource
	renderer   FigureRenderer
	categories Categories
	dataSource string
	logger     logger.Logger
	metrics    *metrics.Manager
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithSource sets the event source.
func WithSource(src EventSource) Option {
	return func(s *Service) {
		if src != nil {
			s.source = src
		}
	}
}

// WithRenderer sets the figure renderer.
func WithRenderer(r FigureRenderer) Option {
	return func(s *Service) {
		if r != nil {
			s.renderer = r
		}
	}
}

// WithCategories replaces the event type sets. Empty sets are ignored.
func WithCategories(c Categories) Option {
	return func(s *Service) {
		if len(c.Defensive) > 0 {
			s.categories.Defensive = c.Defensive
		}
		if len(c.OnBall) > 0 {
			s.categories.OnBall = c.OnBall
		}
	}
}

// WithDataSourceLabel sets the data credit printed in subtitles.
func WithDataSourceLabel(label string) Option {
	return func(s *Service) {
		if label != "" {
			s.dataSource = label
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics sets the metrics manager.
func WithMetrics(m *metrics.Manager) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// New constructs a Service. Without WithSource and WithRenderer it uses the
// StatsBomb client and the gonum renderer with their defaults.
func New(opts ...Option) *Service {
	s := &Service{
		categories: DefaultCategories(),
		dataSource: defaultDataSource,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Named("app")
	}
	if s.metrics == nil {
		s.metrics = metrics.Default()
	}
	if s.source == nil {
		s.source = statsbomb.New(statsbomb.WithMetrics(s.metrics))
	}
	if s.renderer == nil {
		s.renderer = render.New()
	}
	return s
}

// Run executes one pass of the pipeline. Figures D1 and D2 are skipped when
// their half has no located defensive actions; any other failure aborts the
// run.
func (s *Service) Run(ctx context.Context, req Request) (*Report, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	report := &Report{RunID: uuid.NewString()}
	log := s.logger.With(logger.String("run_id", report.RunID))

	log.Info(ctx, "fetching data",
		logger.String("team", req.Team),
		logger.Int("competition_id", req.CompetitionID),
		logger.Int("season_id", req.SeasonID))
	matches, events, err := s.source.FetchTeamEvents(ctx, req.Team, req.CompetitionID, req.SeasonID)
	if err != nil {
		return nil, fmt.Errorf("fetch team events: %w", err)
	}
	report.Counts.Matches = len(matches)
	report.Counts.Events = len(events)

	log.Info(ctx, "filtering player", logger.String("player", req.Player))
	own := preprocess.FilterPlayer(events, req.Player)
	points, dropped := preprocess.ExtractCoordinates(own)
	report.Dropped = dropped
	report.Counts.PlayerEvents = len(own)
	report.Counts.Mapped = len(points)
	report.Counts.Dropped = len(dropped)
	report.MappedPercent = preprocess.MappedPercent(len(points), len(own))

	s.metrics.UpdatePlayerEvents(len(own))
	s.metrics.UpdatePointsMapped(len(points))
	s.metrics.UpdateMappedPercent(report.MappedPercent)
	for _, d := range dropped {
		s.metrics.RecordRowDropped(string(d.Reason))
	}

	log.Info(ctx, "player events",
		logger.Int("events", len(own)),
		logger.Int("mapped", len(points)),
		logger.Int("dropped", len(dropped)))
	for _, tc := range preprocess.TopEventTypes(own, topTypesLogged) {
		log.Debug(ctx, "event type", logger.String("type", tc.Type), logger.Int("count", tc.Count))
	}

	def := preprocess.FilterEventTypes(points, s.categories.Defensive)
	onBall := preprocess.FilterEventTypes(points, s.categories.OnBall)
	half1, half2 := preprocess.SplitByHalf(def)
	report.Counts.Defensive = len(def)
	report.Counts.OnBall = len(onBall)
	report.Counts.Half1 = len(half1)
	report.Counts.Half2 = len(half2)
	for subset, n := range map[string]int{"defensive": len(def), "onball": len(onBall), "half1": len(half1), "half2": len(half2)} {
		s.metrics.UpdateCategoryPoints(subset, n)
	}

	log.Info(ctx, "generating maps", logger.String("out_dir", req.OutDir))
	h := s.buildHeaders(req, matches)
	for _, fig := range h.figures(s.categories, def, onBall, half1, half2) {
		if fig.skip {
			log.Info(ctx, "figure skipped, no events in this half", logger.String("figure", fig.ID))
			s.metrics.RecordFigureSkipped(fig.ID)
			report.Skipped = append(report.Skipped, fig.ID)
			continue
		}

		start := time.Now()
		path, err := s.renderer.Render(ctx, fig.Figure, req.OutDir)
		if err != nil {
			return nil, err
		}
		s.metrics.RecordFigureSaved(fig.ID, float64(time.Since(start).Milliseconds()))
		log.Info(ctx, "figure saved", logger.String("figure", fig.ID), logger.String("path", path))
		report.Figures = append(report.Figures, FigureResult{ID: fig.ID, Path: path})
	}

	return report, nil
}

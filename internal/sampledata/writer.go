package sampledata

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/okian/pitchmap/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0o750
	filePermission      = 0o640
)

// Generate writes the synthetic tree under cfg.Dir.
func Generate(ctx context.Context, cfg Config) (*Stats, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	log := logger.Named("sampledata")
	stats := &Stats{}
	start := time.Now()
	g := newGenerator(cfg)

	matches := g.matches()
	matchesPath := filepath.Join(cfg.Dir, "matches", strconv.Itoa(cfg.CompetitionID), strconv.Itoa(cfg.SeasonID)+".json")
	if err := writeJSON(matchesPath, matches); err != nil {
		return nil, err
	}
	stats.Matches = len(matches)

	for _, m := range matches {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("generate events: %w", err)
		}
		events := g.events(m, stats)
		path := filepath.Join(cfg.Dir, "events", strconv.FormatInt(m.MatchID, 10)+".json")
		if err := writeJSON(path, events); err != nil {
			return nil, err
		}
		log.Debug(ctx, "match written", logger.Any("match_id", m.MatchID), logger.Int("events", len(events)))
	}

	stats.Duration = time.Since(start)
	log.Info(ctx, "sample data written",
		logger.String("dir", cfg.Dir),
		logger.Int("matches", stats.Matches),
		logger.Int("events", stats.Events),
		logger.Int("player_events", stats.PlayerEvents),
		logger.String("took", stats.Duration.String()))
	return stats, nil
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), directoryPermission); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, filePermission); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Package config defines the pitchmap configuration and its loading hooks.
//
// Conventions:
// - New() returns a Config with defaults; Load layers file and env on top.
// - Category lists live here so the pipeline never reads globals.
// - External errors are wrapped with this package's sentinel errors.
package config

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// CompetitionID and SeasonID select the provider's competition/season.
	CompetitionID int `koanf:"competition_id"`
	SeasonID      int `koanf:"season_id"`

	// OutDir is where figures are written.
	OutDir string `koanf:"out_dir"`

	// BinsX and BinsY set the count heatmap resolution along pitch length and width.
	BinsX int `koanf:"bins_x"`
	BinsY int `koanf:"bins_y"`

	// DPI of the rasterized figures.
	DPI int `koanf:"dpi"`

	// KDELevels and KDEThresh shape the filled density contours.
	KDELevels int     `koanf:"kde_levels"`
	KDEThresh float64 `koanf:"kde_thresh"`

	// KDEGridX and KDEGridY set the density evaluation grid.
	KDEGridX int `koanf:"kde_grid_x"`
	KDEGridY int `koanf:"kde_grid_y"`

	// ProviderBaseURL is the root of the open-data tree.
	ProviderBaseURL string `koanf:"provider_base_url"`

	// RequestTimeoutMS bounds each provider request.
	RequestTimeoutMS int `koanf:"request_timeout_ms"`

	// RequestsPerSecond paces provider requests; <= 0 disables pacing.
	RequestsPerSecond float64 `koanf:"requests_per_second"`

	// MetricsFile, when set, receives the run metrics in Prometheus text format.
	MetricsFile string `koanf:"metrics_file"`

	// DefensiveTypes and OnBallTypes are the event type labels of each category.
	DefensiveTypes []string `koanf:"defensive_types"`
	OnBallTypes    []string `koanf:"onball_types"`

	// DataSourceLabel is printed in every figure subtitle.
	DataSourceLabel string `koanf:"data_source_label"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		CompetitionID:     2,
		SeasonID:          27,
		OutDir:            "output/kante_maps",
		BinsX:             25,
		BinsY:             18,
		DPI:               300,
		KDELevels:         60,
		KDEThresh:         0,
		KDEGridX:          120,
		KDEGridY:          80,
		ProviderBaseURL:   "https://raw.githubusercontent.com/statsbomb/open-data/master/data",
		RequestTimeoutMS:  30_000,
		RequestsPerSecond: 4,
		DefensiveTypes:    []string{"Pressure", "Ball Recovery", "Interception", "Block", "Clearance"},
		OnBallTypes:       []string{"Pass", "Carry", "Ball Receipt*", "Dribble", "Shot"},
		DataSourceLabel:   "StatsBomb open data",
	}
}

// defaults flattens New() into koanf keys.
func defaults() map[string]interface{} {
	c := New()
	return map[string]interface{}{
		"log_level":           c.LogLevel,
		"competition_id":      c.CompetitionID,
		"season_id":           c.SeasonID,
		"out_dir":             c.OutDir,
		"bins_x":              c.BinsX,
		"bins_y":              c.BinsY,
		"dpi":                 c.DPI,
		"kde_levels":          c.KDELevels,
		"kde_thresh":          c.KDEThresh,
		"kde_grid_x":          c.KDEGridX,
		"kde_grid_y":          c.KDEGridY,
		"provider_base_url":   c.ProviderBaseURL,
		"request_timeout_ms":  c.RequestTimeoutMS,
		"requests_per_second": c.RequestsPerSecond,
		"metrics_file":        c.MetricsFile,
		"defensive_types":     c.DefensiveTypes,
		"onball_types":        c.OnBallTypes,
		"data_source_label":   c.DataSourceLabel,
	}
}

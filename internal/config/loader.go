package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix  = "PITCHMAP_"
	envConfig  = "PITCHMAP_CONFIG"
	dotEnvFile = ".env"
)

// mapProvider feeds a prebuilt map into koanf.
type mapProvider map[string]interface{}

func (m mapProvider) ReadBytes() ([]byte, error) {
	return nil, errors.New("mapProvider does not support ReadBytes")
}

func (m mapProvider) Read() (map[string]interface{}, error) { return m, nil }

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) from path, or PITCHMAP_CONFIG when path is empty
//  3. .env in the working directory, if present (never overrides the real env)
//  4. env (prefix PITCHMAP_); list keys take comma-separated values
//
// Load does not validate. Callers apply their own overrides and then call
// Validate.
func Load(_ context.Context, path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(mapProvider(defaults()), nil); err != nil {
		return nil, fmt.Errorf("%w: defaults: %v", ErrLoadConfig, err)
	}

	if path == "" {
		path = os.Getenv(envConfig)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrLoadConfig, path, err)
		}
	}

	if _, err := os.Stat(dotEnvFile); err == nil {
		if err := godotenv.Load(dotEnvFile); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrLoadConfig, dotEnvFile, err)
		}
	}

	// PITCHMAP_BINS_X -> bins_x. Underscores are preserved to match koanf tags.
	envProvider := env.ProviderWithValue(envPrefix, ".", envValue)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %v", ErrLoadConfig, err)
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	return &cfg, nil
}

// listKeys are split on commas when set through the environment.
var listKeys = map[string]bool{
	"defensive_types": true,
	"onball_types":    true,
}

func envValue(key, value string) (string, interface{}) {
	key = strings.TrimPrefix(strings.ToLower(key), strings.ToLower(envPrefix))
	if !listKeys[key] {
		return key, value
	}
	items := make([]string, 0, strings.Count(value, ",")+1)
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return key, items
}

// Validate checks the values the pipeline cannot run without.
func (c *Config) Validate() error {
	var problems []string
	if c.BinsX <= 0 || c.BinsY <= 0 {
		problems = append(problems, "bins_x and bins_y must be positive")
	}
	if c.DPI <= 0 {
		problems = append(problems, "dpi must be positive")
	}
	if c.KDELevels < 2 {
		problems = append(problems, "kde_levels must be at least 2")
	}
	if c.KDEThresh < 0 || c.KDEThresh >= 1 {
		problems = append(problems, "kde_thresh must be in [0, 1)")
	}
	if c.KDEGridX <= 1 || c.KDEGridY <= 1 {
		problems = append(problems, "kde_grid_x and kde_grid_y must be greater than 1")
	}
	if strings.TrimSpace(c.OutDir) == "" {
		problems = append(problems, "out_dir must not be empty")
	}
	if strings.TrimSpace(c.ProviderBaseURL) == "" {
		problems = append(problems, "provider_base_url must not be empty")
	}
	if c.RequestTimeoutMS <= 0 {
		problems = append(problems, "request_timeout_ms must be positive")
	}
	if len(c.DefensiveTypes) == 0 || len(c.OnBallTypes) == 0 {
		problems = append(problems, "defensive_types and onball_types must not be empty")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

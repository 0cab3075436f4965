package config

import (
	"errors"
)

var (
	// ErrInvalidConfig is returned by Validate when a value the heatmap
	// pipeline depends on (bins, KDE levels, output dir, event types) is unusable.
	ErrInvalidConfig = errors.New("invalid pitchmap config")
	// ErrLoadConfig wraps failures reading defaults, the YAML file, .env or
	// PITCHMAP_* variables.
	ErrLoadConfig = errors.New("load pitchmap config")
)

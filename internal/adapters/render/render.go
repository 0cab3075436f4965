// Package render draws pitch figures with gonum/plot and writes them as PNG.
package render

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/plot/vg/vgimg"

	"github.com/okian/pitchmap/internal/domain/model"
	"github.com/okian/pitchmap/internal/domain/spatial"
	"github.com/okian/pitchmap/pkg/logger"
)

// Renderer defaults.
const (
	DefaultDPI   = 300
	DefaultWidth = 11.0 // inches

	defaultBinsX     = 25
	defaultBinsY     = 18
	defaultKDELevels = 60
	defaultKDEGridX  = 120
	defaultKDEGridY  = 80
)

// ErrUnknownKind is returned for a figure whose kind has no drawing routine.
var ErrUnknownKind = errors.New("unknown figure kind")

// Kind selects how a figure aggregates its points.
type Kind int

const (
	KindCount Kind = iota
	KindDensity
	KindPoints
)

func (k Kind) String() string {
	switch k {
	case KindCount:
		return "count"
	case KindDensity:
		return "density"
	case KindPoints:
		return "points"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Figure describes one output image.
type Figure struct {
	ID         string
	FileName   string
	Kind       Kind
	Title      string
	Subtitle   string
	Caption    string
	ColorLabel string
	Points     []model.Point

	// Width in inches; zero uses the renderer default.
	Width float64
}

// KDEOptions tune density figures.
type KDEOptions struct {
	Levels int
	Thresh float64
	GridX  int
	GridY  int
}

// Renderer turns figure descriptions into images.
type Renderer struct {
	dpi    int
	width  float64
	binsX  int
	binsY  int
	kde    KDEOptions
	logger logger.Logger
}

// Option applies a configuration option to the Renderer.
type Option func(*Renderer)

// WithDPI sets the output resolution.
func WithDPI(dpi int) Option {
	return func(r *Renderer) {
		if dpi > 0 {
			r.dpi = dpi
		}
	}
}

// WithWidth sets the default figure width in inches.
func WithWidth(inches float64) Option {
	return func(r *Renderer) {
		if inches > 0 {
			r.width = inches
		}
	}
}

// WithBins sets the count grid resolution.
func WithBins(nx, ny int) Option {
	return func(r *Renderer) {
		r.binsX, r.binsY = nx, ny
	}
}

// WithKDE sets the density estimate parameters.
func WithKDE(o KDEOptions) Option {
	return func(r *Renderer) {
		r.kde = o
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.logger = l
		}
	}
}

// New creates a Renderer.
func New(opts ...Option) *Renderer {
	r := &Renderer{
		dpi:   DefaultDPI,
		width: DefaultWidth,
		binsX: defaultBinsX,
		binsY: defaultBinsY,
		kde: KDEOptions{
			Levels: defaultKDELevels,
			GridX:  defaultKDEGridX,
			GridY:  defaultKDEGridY,
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = logger.Named("render")
	}
	return r
}

// Canvas is a composed figure ready to be saved.
type Canvas struct {
	img *vgimg.Canvas
}

// Render aggregates the figure's points, draws it and saves it under dir.
func (r *Renderer) Render(ctx context.Context, fig Figure, dir string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var (
		c   *Canvas
		err error
	)
	switch fig.Kind {
	case KindCount:
		var grid *spatial.Grid
		grid, err = spatial.BinCounts(fig.Points, spatial.PitchBounds(), r.binsX, r.binsY)
		if err == nil {
			c, err = r.CountHeatmap(fig, grid)
		}
	case KindDensity:
		var d *spatial.Density
		d, err = spatial.KDE(fig.Points, spatial.PitchBounds(), r.kde.GridX, r.kde.GridY)
		if err == nil {
			c, err = r.DensityHeatmap(fig, d)
		}
	case KindPoints:
		c, err = r.Scatter(fig, fig.Points)
	default:
		err = fmt.Errorf("%w: %s", ErrUnknownKind, fig.Kind)
	}
	if err != nil {
		return "", fmt.Errorf("render figure %s: %w", fig.ID, err)
	}

	path, err := Save(c, dir, fig.FileName)
	if err != nil {
		return "", fmt.Errorf("save figure %s: %w", fig.ID, err)
	}
	r.logger.Debug(ctx, "figure written",
		logger.String("figure", fig.ID),
		logger.String("kind", fig.Kind.String()),
		logger.Int("points", len(fig.Points)),
		logger.String("path", path))
	return path, nil
}

// Save writes c as PNG to dir/name, creating dir if needed.
func Save(c *Canvas, dir, name string) (path string, err error) {
	if c == nil || c.img == nil {
		return "", errors.New("nothing to save")
	}
	if name == "" {
		return "", errors.New("empty file name")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	path = filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()

	if _, err := (vgimg.PngCanvas{Canvas: c.img}).WriteTo(f); err != nil {
		return "", fmt.Errorf("encode %s: %w", path, err)
	}
	return path, nil
}

package render

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/okian/pitchmap/internal/domain/model"
	"github.com/okian/pitchmap/internal/domain/spatial"
)

const (
	paletteSize = 256
	pointRadius = vg.Length(3)

	axisLabelX = "Field Width (0-120)"
	axisLabelY = "Field Length (0-80)"
)

// Quarter-alpha dots, so stacked actions read darker.
var pointColor = color.NRGBA{R: 8, G: 81, B: 156, A: 64}

// CountHeatmap draws grid over the pitch with a colour bar calibrated in
// counts.
func (r *Renderer) CountHeatmap(fig Figure, grid *spatial.Grid) (*Canvas, error) {
	if grid == nil {
		return nil, fmt.Errorf("%w: nil grid", spatial.ErrInvalidBins)
	}
	hi := grid.Max()
	if !(hi > 0) {
		hi = 1
	}

	cm := blues()
	cm.SetMin(0)
	cm.SetMax(hi)

	hm := plotter.NewHeatMap(grid, cm.Palette(paletteSize))
	hm.Min, hm.Max = 0, hi

	p := newPitchPlot(false)
	p.Add(hm, newPitch())
	frame(p)

	return r.compose(fig, p, colorBar(cm, fig.ColorLabel, nil), false), nil
}

// DensityHeatmap draws the estimate as filled iso-proportion bands. The
// colour bar reads 0-100% of the estimate's range.
func (r *Renderer) DensityHeatmap(fig Figure, d *spatial.Density) (*Canvas, error) {
	if d == nil {
		return nil, spatial.ErrTooFewPoints
	}
	levels, err := d.Levels(r.kde.Levels, r.kde.Thresh)
	if err != nil {
		return nil, err
	}
	lo, hi := levels[0], levels[len(levels)-1]
	if !(hi > lo) {
		return nil, fmt.Errorf("%w: flat density", spatial.ErrDegenerate)
	}

	cm := blues()
	cm.SetMin(lo)
	cm.SetMax(hi)

	hm := plotter.NewHeatMap(d.Quantize(levels), cm.Palette(paletteSize))
	hm.Min, hm.Max = lo, hi

	p := newPitchPlot(true)
	p.X.Label.Text = axisLabelX
	p.Y.Label.Text = axisLabelY
	p.Add(hm, newPitch())
	frame(p)

	return r.compose(fig, p, colorBar(cm, fig.ColorLabel, intensityTicks{lo: lo, hi: hi}), true), nil
}

// Scatter draws each point as a translucent dot.
func (r *Renderer) Scatter(fig Figure, points []model.Point) (*Canvas, error) {
	p := newPitchPlot(false)
	if len(points) > 0 {
		xys := make(plotter.XYs, len(points))
		for i, pt := range points {
			xys[i].X, xys[i].Y = pt.X, pt.Y
		}
		s, err := plotter.NewScatter(xys)
		if err != nil {
			return nil, fmt.Errorf("scatter: %w", err)
		}
		s.GlyphStyle = draw.GlyphStyle{
			Color:  pointColor,
			Radius: pointRadius,
			Shape:  draw.CircleGlyph{},
		}
		p.Add(s)
	}
	p.Add(newPitch())
	frame(p)

	return r.compose(fig, p, nil, false), nil
}

func colorBar(cm palette.ColorMap, label string, ticks plot.Ticker) *plot.Plot {
	p := plot.New()
	p.HideX()
	p.Add(&plotter.ColorBar{ColorMap: cm, Vertical: true, Colors: paletteSize})
	p.Y.Label.Text = label
	p.Y.Label.TextStyle.Font.Size = labelSize
	if ticks != nil {
		p.Y.Tick.Marker = ticks
	}
	return p
}

// intensityTicks labels the bar in percent of [lo, hi].
type intensityTicks struct {
	lo, hi float64
}

func (t intensityTicks) Ticks(_, _ float64) []plot.Tick {
	steps := []float64{0, 0.25, 0.5, 0.75, 1}
	ticks := make([]plot.Tick, 0, len(steps))
	for _, s := range steps {
		v := t.lo + s*(t.hi-t.lo)
		ticks = append(ticks, plot.Tick{Value: v, Label: spatial.RelativeIntensity(v, t.lo, t.hi)})
	}
	return ticks
}

package render

import (
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/okian/pitchmap/internal/domain/model"
)

// StatsBomb pitch markings, in yards.
const (
	penaltyAreaDepth = 18.0
	penaltyAreaLow   = 18.0
	penaltyAreaHigh  = 62.0
	sixYardDepth     = 6.0
	sixYardLow       = 30.0
	sixYardHigh      = 50.0
	penaltySpot      = 12.0
	circleRadius     = 10.0
	goalLow          = 36.0
	goalHigh         = 44.0
	spotRadius       = 0.6
	circleSegments   = 96
)

// pitch draws the markings of a StatsBomb pitch. Add it after the data
// layers so lines stay on top.
type pitch struct {
	line draw.LineStyle
	goal draw.LineStyle
}

var (
	_ plot.Plotter    = pitch{}
	_ plot.DataRanger = pitch{}
)

func newPitch() pitch {
	grey := color.NRGBA{R: 128, G: 128, B: 128, A: 255}
	return pitch{
		line: draw.LineStyle{Color: grey, Width: vg.Points(1)},
		goal: draw.LineStyle{Color: grey, Width: vg.Points(3)},
	}
}

func (p pitch) DataRange() (xmin, xmax, ymin, ymax float64) {
	return 0, model.PitchLength, 0, model.PitchWidth
}

func (p pitch) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	pt := func(x, y float64) vg.Point { return vg.Point{X: trX(x), Y: trY(y)} }
	rect := func(x0, y0, x1, y1 float64) []vg.Point {
		return []vg.Point{pt(x0, y0), pt(x1, y0), pt(x1, y1), pt(x0, y1), pt(x0, y0)}
	}
	arc := func(cx, cy, r, from, to float64) []vg.Point {
		pts := make([]vg.Point, 0, circleSegments+1)
		for i := 0; i <= circleSegments; i++ {
			a := from + (to-from)*float64(i)/circleSegments
			pts = append(pts, pt(cx+r*math.Cos(a), cy+r*math.Sin(a)))
		}
		return pts
	}

	L, W := model.PitchLength, model.PitchWidth
	midX, midY := L/2, W/2
	arcHalf := math.Acos((penaltyAreaDepth - penaltySpot) / circleRadius)

	c.StrokeLines(p.line,
		rect(0, 0, L, W),
		[]vg.Point{pt(midX, 0), pt(midX, W)},
		arc(midX, midY, circleRadius, 0, 2*math.Pi),
		rect(0, penaltyAreaLow, penaltyAreaDepth, penaltyAreaHigh),
		rect(L-penaltyAreaDepth, penaltyAreaLow, L, penaltyAreaHigh),
		rect(0, sixYardLow, sixYardDepth, sixYardHigh),
		rect(L-sixYardDepth, sixYardLow, L, sixYardHigh),
		arc(penaltySpot, midY, circleRadius, -arcHalf, arcHalf),
		arc(L-penaltySpot, midY, circleRadius, math.Pi-arcHalf, math.Pi+arcHalf),
	)
	c.StrokeLines(p.goal,
		[]vg.Point{pt(0, goalLow), pt(0, goalHigh)},
		[]vg.Point{pt(L, goalLow), pt(L, goalHigh)},
	)
	for _, spot := range [][2]float64{{midX, midY}, {penaltySpot, midY}, {L - penaltySpot, midY}} {
		c.FillPolygon(p.line.Color, arc(spot[0], spot[1], spotRadius, 0, 2*math.Pi))
	}
}

// newPitchPlot returns a plot framed on the pitch with the provider's
// top-left origin.
func newPitchPlot(showAxes bool) *plot.Plot {
	p := plot.New()
	p.BackgroundColor = color.White
	p.X.Min, p.X.Max = 0, model.PitchLength
	p.Y.Min, p.Y.Max = 0, model.PitchWidth
	p.X.Padding, p.Y.Padding = 0, 0
	p.Y.Scale = plot.InvertedScale{Normalizer: plot.LinearScale{}}
	if !showAxes {
		p.HideAxes()
	}
	return p
}

// frame pins the axes back to the pitch after data layers widened them.
func frame(p *plot.Plot) {
	p.X.Min, p.X.Max = 0, model.PitchLength
	p.Y.Min, p.Y.Max = 0, model.PitchWidth
}

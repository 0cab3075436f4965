package spatial

import (
	"fmt"
	"math"
	"sort"

	"github.com/okian/pitchmap/internal/domain/model"
	"gonum.org/v1/gonum/stat"
)

const minKDEPoints = 2

// Density is a kernel density estimate evaluated at cell centres.
type Density struct {
	*Grid

	// BandwidthX and BandwidthY are the kernel standard deviations.
	BandwidthX float64
	BandwidthY float64

	// N is the number of points behind the estimate.
	N int
}

// KDE estimates a 2D density with a product Gaussian kernel. Bandwidths
// follow Scott's rule, sigma * n^(-1/6) per axis.
func KDE(points []model.Point, b Bounds, gridX, gridY int) (*Density, error) {
	if len(points) < minKDEPoints {
		return nil, fmt.Errorf("%w: got %d, need at least %d", ErrTooFewPoints, len(points), minKDEPoints)
	}
	if gridX <= 0 || gridY <= 0 {
		return nil, fmt.Errorf("%w: got %dx%d", ErrInvalidBins, gridX, gridY)
	}
	if err := b.validate(); err != nil {
		return nil, err
	}

	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i], ys[i] = p.X, p.Y
	}
	sx, sy := stat.StdDev(xs, nil), stat.StdDev(ys, nil)
	if !(sx > 0) || !(sy > 0) {
		return nil, fmt.Errorf("%w: std dev x=%g y=%g", ErrDegenerate, sx, sy)
	}

	n := float64(len(points))
	factor := math.Pow(n, -1.0/6.0)
	hx, hy := sx*factor, sy*factor

	g := newGrid(b, gridX, gridY)
	norm := 1 / (2 * math.Pi * hx * hy * n)

	// Separable kernel: k(x, y) = kx(x) * ky(y).
	kx := make([]float64, gridX)
	ky := make([]float64, gridY)
	for i := range points {
		for c := 0; c < gridX; c++ {
			d := (g.X(c) - xs[i]) / hx
			kx[c] = math.Exp(-0.5 * d * d)
		}
		for r := 0; r < gridY; r++ {
			d := (g.Y(r) - ys[i]) / hy
			ky[r] = math.Exp(-0.5 * d * d)
		}
		for r := 0; r < gridY; r++ {
			row := g.cells[r*gridX : (r+1)*gridX]
			for c := range row {
				row[c] += kx[c] * ky[r]
			}
		}
	}
	for i := range g.cells {
		g.cells[i] *= norm
	}

	return &Density{Grid: g, BandwidthX: hx, BandwidthY: hy, N: len(points)}, nil
}

// Levels returns n ascending iso-proportion levels. Level k is the density
// above which a share thresh + k*(1-thresh)/(n-1) of the mass lies outside,
// so thresh = 0 puts the lowest level at the surface minimum. Duplicate
// levels collapse, so the result may be shorter than n.
func (d *Density) Levels(n int, thresh float64) ([]float64, error) {
	if n <= 0 || thresh < 0 || thresh >= 1 {
		return nil, fmt.Errorf("%w: n=%d thresh=%g", ErrInvalidLevels, n, thresh)
	}

	sorted := append([]float64(nil), d.cells...)
	sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))
	total := 0.0
	for _, v := range sorted {
		total += v
	}
	if !(total > 0) {
		return nil, fmt.Errorf("%w: empty density surface", ErrDegenerate)
	}
	cum := make([]float64, len(sorted))
	acc := 0.0
	for i, v := range sorted {
		acc += v
		cum[i] = acc / total
	}

	levels := make([]float64, 0, n)
	for k := 0; k < n; k++ {
		q := thresh
		if n > 1 {
			q = thresh + float64(k)*(1-thresh)/float64(n-1)
		}
		idx := len(sorted) - 1
		if q > 0 {
			idx = min(sort.SearchFloat64s(cum, 1-q), len(sorted)-1)
		}
		level := sorted[idx]
		if len(levels) == 0 || level > levels[len(levels)-1] {
			levels = append(levels, level)
		}
	}
	return levels, nil
}

// Quantize returns the filled-contour surface: every cell takes the value
// of the highest level not above it. Cells below the lowest level are NaN.
func (d *Density) Quantize(levels []float64) *Grid {
	g := newGrid(d.bounds, d.nx, d.ny)
	for i, v := range d.cells {
		idx := sort.SearchFloat64s(levels, v)
		switch {
		case idx < len(levels) && levels[idx] == v:
			g.cells[i] = v
		case idx == 0:
			g.cells[i] = math.NaN()
		default:
			g.cells[i] = levels[idx-1]
		}
	}
	return g
}

// RelativeIntensity formats v on a 0-100% scale between lo and hi. A flat
// range falls back to scientific notation of the raw value.
func RelativeIntensity(v, lo, hi float64) string {
	if hi > lo {
		return fmt.Sprintf("%.0f%%", (v-lo)/(hi-lo)*100)
	}
	return fmt.Sprintf("%.1e", v)
}

// Package spatial aggregates pitch points into grids: equal-width count bins
// and a Gaussian kernel density surface with iso-proportion levels.
package spatial

import (
	"fmt"
	"math"

	"github.com/okian/pitchmap/internal/domain/model"
)

// Bounds is an axis-aligned rectangle in pitch coordinates.
type Bounds struct {
	MinX, MaxX float64
	MinY, MaxY float64
}

// PitchBounds covers the whole provider pitch.
func PitchBounds() Bounds {
	return Bounds{MinX: 0, MaxX: model.PitchLength, MinY: 0, MaxY: model.PitchWidth}
}

func (b Bounds) validate() error {
	if !(b.MaxX > b.MinX) || !(b.MaxY > b.MinY) {
		return fmt.Errorf("%w: %+v", ErrInvalidBounds, b)
	}
	return nil
}

// Grid is a row-major nx by ny grid of cell values. It satisfies
// gonum.org/v1/plot/plotter.GridXYZ with X/Y at cell centres.
type Grid struct {
	bounds Bounds
	nx, ny int
	cells  []float64
}

func newGrid(b Bounds, nx, ny int) *Grid {
	return &Grid{bounds: b, nx: nx, ny: ny, cells: make([]float64, nx*ny)}
}

// Dims returns the number of columns and rows.
func (g *Grid) Dims() (c, r int) { return g.nx, g.ny }

// Z returns the value of cell (c, r).
func (g *Grid) Z(c, r int) float64 { return g.cells[r*g.nx+c] }

// X returns the centre of column c.
func (g *Grid) X(c int) float64 { return g.bounds.MinX + (float64(c)+0.5)*g.CellWidth() }

// Y returns the centre of row r.
func (g *Grid) Y(r int) float64 { return g.bounds.MinY + (float64(r)+0.5)*g.CellHeight() }

// CellWidth is the extent of one column.
func (g *Grid) CellWidth() float64 { return (g.bounds.MaxX - g.bounds.MinX) / float64(g.nx) }

// CellHeight is the extent of one row.
func (g *Grid) CellHeight() float64 { return (g.bounds.MaxY - g.bounds.MinY) / float64(g.ny) }

// Bounds returns the covered rectangle.
func (g *Grid) Bounds() Bounds { return g.bounds }

// Total sums every finite cell.
func (g *Grid) Total() float64 {
	var sum float64
	for _, v := range g.cells {
		if !math.IsNaN(v) {
			sum += v
		}
	}
	return sum
}

// Min returns the smallest finite cell value, or NaN for an all-NaN grid.
func (g *Grid) Min() float64 {
	lo := math.NaN()
	for _, v := range g.cells {
		if !math.IsNaN(v) && (math.IsNaN(lo) || v < lo) {
			lo = v
		}
	}
	return lo
}

// Max returns the largest finite cell value, or NaN for an all-NaN grid.
func (g *Grid) Max() float64 {
	hi := math.NaN()
	for _, v := range g.cells {
		if !math.IsNaN(v) && (math.IsNaN(hi) || v > hi) {
			hi = v
		}
	}
	return hi
}

// cell maps a coordinate to its column and row. Coordinates on the max edge
// belong to the last cell; coordinates outside are clamped to the edge cells.
func (g *Grid) cell(x, y float64) (c, r int) {
	c = int(math.Floor((x - g.bounds.MinX) / g.CellWidth()))
	r = int(math.Floor((y - g.bounds.MinY) / g.CellHeight()))
	return clamp(c, 0, g.nx-1), clamp(r, 0, g.ny-1)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// BinCounts counts points per cell over nx by ny equal-width bins. Every
// point lands in exactly one cell, so Total equals len(points).
func BinCounts(points []model.Point, b Bounds, nx, ny int) (*Grid, error) {
	if nx <= 0 || ny <= 0 {
		return nil, fmt.Errorf("%w: got %dx%d", ErrInvalidBins, nx, ny)
	}
	if err := b.validate(); err != nil {
		return nil, err
	}
	g := newGrid(b, nx, ny)
	for _, p := range points {
		c, r := g.cell(p.X, p.Y)
		g.cells[r*nx+c]++
	}
	return g, nil
}

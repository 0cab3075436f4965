package render

import (
	"errors"
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/brewer"
)

var errNaNColor = errors.New("render: NaN has no colour")

// blues returns the ColorBrewer "Blues" ramp, light for low values.
func blues() *sequential {
	p, err := brewer.GetPalette(brewer.TypeSequential, "Blues", 9)
	if err != nil {
		panic(fmt.Sprintf("render: brewer Blues: %v", err))
	}
	controls := make([]color.NRGBA, 0, len(p.Colors()))
	for _, c := range p.Colors() {
		controls = append(controls, color.NRGBAModel.Convert(c).(color.NRGBA))
	}
	return newSequential(controls...)
}

// sequential is a palette.ColorMap interpolating linearly in RGB between
// evenly spaced control colours. Values outside [min, max] are clamped.
type sequential struct {
	controls []color.NRGBA
	min, max float64
	alpha    float64
}

var _ palette.ColorMap = (*sequential)(nil)

func newSequential(controls ...color.NRGBA) *sequential {
	return &sequential{controls: controls, min: 0, max: 1, alpha: 1}
}

func (s *sequential) At(v float64) (color.Color, error) {
	if math.IsNaN(v) {
		return nil, errNaNColor
	}
	t := 0.0
	if s.max > s.min {
		t = (v - s.min) / (s.max - s.min)
	}
	t = math.Max(0, math.Min(1, t))

	span := float64(len(s.controls) - 1)
	i := int(math.Floor(t * span))
	if i >= len(s.controls)-1 {
		i = len(s.controls) - 2
	}
	f := t*span - float64(i)
	a, b := s.controls[i], s.controls[i+1]
	lerp := func(x, y uint8) uint8 { return uint8(math.Round(float64(x) + f*(float64(y)-float64(x)))) }
	return color.NRGBA{
		R: lerp(a.R, b.R),
		G: lerp(a.G, b.G),
		B: lerp(a.B, b.B),
		A: uint8(math.Round(255 * s.alpha)),
	}, nil
}

func (s *sequential) Max() float64       { return s.max }
func (s *sequential) SetMax(v float64)   { s.max = v }
func (s *sequential) Min() float64       { return s.min }
func (s *sequential) SetMin(v float64)   { s.min = v }
func (s *sequential) Alpha() float64     { return s.alpha }
func (s *sequential) SetAlpha(a float64) { s.alpha = math.Max(0, math.Min(1, a)) }

// Palette samples n evenly spaced colours across the ramp.
func (s *sequential) Palette(n int) palette.Palette {
	if n < 2 {
		n = 2
	}
	sampler := &sequential{controls: s.controls, min: 0, max: 1, alpha: s.alpha}
	colors := make([]color.Color, n)
	for i := range colors {
		colors[i], _ = sampler.At(float64(i) / float64(n-1))
	}
	return colorList(colors)
}

type colorList []color.Color

func (l colorList) Colors() []color.Color { return l }

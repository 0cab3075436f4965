package render

import (
	"image/color"
	"strings"

	xfont "golang.org/x/image/font"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/okian/pitchmap/internal/domain/model"
)

// Layout, in points unless noted.
const (
	figurePad     = vg.Length(10)
	blockGap      = vg.Length(8)
	colorBarWidth = vg.Length(72)
	colorBarGap   = vg.Length(6)
	axisAllowance = vg.Length(40)
	lineSpacing   = 1.25

	titleSize    = 16
	subtitleSize = 10
	captionSize  = 9
	labelSize    = 10
)

var textColor = color.NRGBA{R: 34, G: 34, B: 34, A: 255}

func textStyle(size vg.Length, bold bool) text.Style {
	fnt := font.From(plot.DefaultFont, size)
	if bold {
		fnt.Weight = xfont.WeightBold
	}
	return text.Style{
		Color:   textColor,
		Font:    fnt,
		XAlign:  text.XLeft,
		YAlign:  text.YTop,
		Handler: plot.DefaultTextHandler,
	}
}

func lineHeight(sty text.Style) vg.Length {
	return sty.Font.Size * lineSpacing
}

// wrap breaks s into lines no wider than limit. Words longer than limit get a
// line of their own.
func wrap(sty text.Style, s string, limit vg.Length) []string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return nil
	}
	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		candidate := line + " " + w
		if sty.Width(candidate) > limit {
			lines = append(lines, line)
			line = w
			continue
		}
		line = candidate
	}
	return append(lines, line)
}

func blockHeight(sty text.Style, lines []string) vg.Length {
	return vg.Length(len(lines)) * lineHeight(sty)
}

// drawLines writes lines top-down starting at y and returns the y below them.
func drawLines(c draw.Canvas, sty text.Style, lines []string, x, y vg.Length) vg.Length {
	for _, l := range lines {
		c.FillText(sty, vg.Point{X: x, Y: y}, l)
		y -= lineHeight(sty)
	}
	return y
}

// compose lays out header, pitch, optional colour bar and caption on a
// canvas sized to fit them. The pitch keeps the field's aspect ratio.
func (r *Renderer) compose(fig Figure, field, bar *plot.Plot, showAxes bool) *Canvas {
	widthIn := fig.Width
	if widthIn <= 0 {
		widthIn = r.width
	}
	width := vg.Length(widthIn) * vg.Inch
	inner := width - 2*figurePad

	titleSty := textStyle(titleSize, true)
	subSty := textStyle(subtitleSize, false)
	capSty := textStyle(captionSize, false)

	titleLines := wrap(titleSty, fig.Title, inner)
	subLines := wrap(subSty, fig.Subtitle, inner)
	capLines := wrap(capSty, fig.Caption, inner)

	headerH := blockHeight(titleSty, titleLines) + blockHeight(subSty, subLines) + blockGap
	captionH := blockHeight(capSty, capLines)
	if captionH > 0 {
		captionH += blockGap
	}

	barW := vg.Length(0)
	if bar != nil {
		barW = colorBarWidth + colorBarGap
	}
	plotW := inner - barW
	axes := vg.Length(0)
	if showAxes {
		axes = axisAllowance
	}
	plotH := (plotW-axes)*model.PitchWidth/model.PitchLength + axes
	height := 2*figurePad + headerH + plotH + captionH

	img := vgimg.NewWith(
		vgimg.UseWH(width, height),
		vgimg.UseDPI(r.dpi),
		vgimg.UseBackgroundColor(color.White),
	)
	dc := draw.New(img)

	left := dc.Min.X + figurePad
	y := dc.Max.Y - figurePad
	y = drawLines(dc, titleSty, titleLines, left, y)
	y = drawLines(dc, subSty, subLines, left, y)
	y -= blockGap

	top := y - dc.Max.Y
	bottom := figurePad + captionH
	field.Draw(draw.Crop(dc, figurePad, -(figurePad + barW), bottom, top))
	if bar != nil {
		bar.Draw(draw.Crop(dc, figurePad+plotW+colorBarGap, -figurePad, bottom, top))
	}

	drawLines(dc, capSty, capLines, left, dc.Min.Y+figurePad+blockHeight(capSty, capLines))
	return &Canvas{img: img}
}

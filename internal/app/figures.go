package app

import (
	"fmt"
	"strings"

	"github.com/okian/pitchmap/internal/adapters/render"
	"github.com/okian/pitchmap/internal/domain/model"
)

// Figure identifiers in generation order.
const (
	FigureA  = "A"
	FigureB  = "B"
	FigureC  = "C"
	FigureD1 = "D1"
	FigureD2 = "D2"
	FigureE  = "E"
)

// FileNames maps each figure to its fixed output file name.
var FileNames = map[string]string{
	FigureA:  "A_defensive_count_heatmap.png",
	FigureB:  "B_onball_count_heatmap.png",
	FigureC:  "C_defensive_kde_density.png",
	FigureD1: "D1_defensive_half1_count.png",
	FigureD2: "D2_defensive_half2_count.png",
	FigureE:  "E_defensive_raw_points.png",
}

const (
	captionBase = "Note: A heatmap shows WHERE actions are concentrated. " +
		"Counts are not distance covered, and KDE density is smoothed (not exact counts)."

	densityWidth = 12.0
)

type plannedFigure struct {
	render.Figure
	skip bool
}

type headers struct {
	subtitleBase string
}

// buildHeaders builds the subtitle prefix from the fetched matches so the
// competition and season names come from the provider.
func (s *Service) buildHeaders(req Request, matches []model.Match) headers {
	competition := fmt.Sprintf("Competition %d", req.CompetitionID)
	season := fmt.Sprintf("Season %d", req.SeasonID)
	for _, m := range matches {
		if m.CompetitionName != "" {
			competition = m.CompetitionName
		}
		if m.SeasonName != "" {
			season = m.SeasonName
		}
		if m.CompetitionName != "" && m.SeasonName != "" {
			break
		}
	}
	return headers{
		subtitleBase: fmt.Sprintf("%s | %s %s | Data: %s", req.Team, competition, season, s.dataSource),
	}
}

func (h headers) subtitle(types []string) string {
	return h.subtitleBase + " | Events: " + strings.Join(types, ", ")
}

func caption(extra string) string {
	return captionBase + " " + extra
}

func (h headers) figures(c Categories, def, onBall, half1, half2 []model.Point) []plannedFigure {
	defSub := h.subtitle(c.Defensive)
	countLabel := "Defensive actions per zone (count)"

	return []plannedFigure{
		{Figure: render.Figure{
			ID: FigureA, FileName: FileNames[FigureA], Kind: render.KindCount,
			Title:      "Figure A - Defensive actions (count heatmap)",
			Subtitle:   defSub,
			Caption:    caption("Metric here is COUNT per zone."),
			ColorLabel: countLabel,
			Points:     def,
		}},
		{Figure: render.Figure{
			ID: FigureB, FileName: FileNames[FigureB], Kind: render.KindCount,
			Title:      "Figure B - On-ball involvement (count heatmap)",
			Subtitle:   h.subtitle(c.OnBall),
			Caption:    caption("Metric here is COUNT per zone."),
			ColorLabel: "On-ball actions per zone (count)",
			Points:     onBall,
		}},
		{Figure: render.Figure{
			ID: FigureC, FileName: FileNames[FigureC], Kind: render.KindDensity,
			Title:      "Figure C - Defensive action density (KDE heatmap)",
			Subtitle:   defSub,
			Caption:    caption("Metric: KDE smoothing reveals concentration zones. Darker areas = higher density."),
			ColorLabel: "Relative intensity (0% low, 100% high)",
			Points:     def,
			Width:      densityWidth,
		}},
		{Figure: render.Figure{
			ID: FigureD1, FileName: FileNames[FigureD1], Kind: render.KindCount,
			Title:      "Figure D1 - Defensive actions (1st half)",
			Subtitle:   defSub,
			Caption:    caption("This figure shows only FIRST HALF events."),
			ColorLabel: countLabel,
			Points:     half1,
		}, skip: len(half1) == 0},
		{Figure: render.Figure{
			ID: FigureD2, FileName: FileNames[FigureD2], Kind: render.KindCount,
			Title:      "Figure D2 - Defensive actions (2nd half)",
			Subtitle:   defSub,
			Caption:    caption("This figure shows only SECOND HALF events."),
			ColorLabel: countLabel,
			Points:     half2,
		}, skip: len(half2) == 0},
		{Figure: render.Figure{
			ID: FigureE, FileName: FileNames[FigureE], Kind: render.KindPoints,
			Title:    "Figure E - Defensive actions (raw points)",
			Subtitle: defSub,
			Caption:  caption("Each dot is a single event; no smoothing."),
			Points:   def,
		}},
	}
}

package sampledata

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/google/uuid"

	"github.com/okian/pitchmap/internal/domain/model"
)

// Share of events attributed to the target player, and of events logged
// without a usable location.
const (
	playerShare      = 0.12
	noLocationShare  = 0.02
	shortLocationCut = 0.5
	firstMatchID     = 3_754_000
	otherMatchOffset = 999
)

var opponents = []string{
	"Sunderland", "West Ham United", "Tottenham Hotspur", "Aston Villa",
	"Bournemouth", "Stoke City", "Norwich City", "Everton",
}

var otherPlayers = []string{
	"Jamie Vardy", "Riyad Mahrez", "Danny Drinkwater", "Wes Morgan", "Kasper Schmeichel",
}

// zone is a 2D normal cluster where an action type tends to happen.
type zone struct {
	x, y, sx, sy float64
}

var actionZones = []struct {
	typ  string
	zone zone
}{
	{"Pressure", zone{55, 40, 16, 18}},
	{"Ball Recovery", zone{45, 40, 14, 16}},
	{"Interception", zone{38, 40, 12, 18}},
	{"Block", zone{25, 40, 8, 10}},
	{"Clearance", zone{14, 40, 6, 12}},
	{"Pass", zone{60, 40, 20, 20}},
	{"Carry", zone{62, 40, 18, 20}},
	{"Ball Receipt*", zone{62, 40, 20, 20}},
	{"Dribble", zone{75, 40, 14, 18}},
	{"Shot", zone{104, 40, 7, 9}},
	{"Foul Committed", zone{50, 40, 20, 20}},
}

type generator struct {
	cfg Config
	rnd *rand.Rand
}

func newGenerator(cfg Config) *generator {
	seed := uint64(cfg.Seed)
	return &generator{cfg: cfg, rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (g *generator) matches() []matchRow {
	rows := make([]matchRow, 0, g.cfg.Matches+1)
	for i := 0; i < g.cfg.Matches; i++ {
		home, away := g.cfg.Team, opponents[i%len(opponents)]
		if i%2 == 1 {
			home, away = away, home
		}
		rows = append(rows, g.match(int64(firstMatchID+i), i, home, away))
	}
	// A fixture without the team, which the fetcher must skip.
	rows = append(rows, g.match(firstMatchID+otherMatchOffset, g.cfg.Matches, opponents[0], opponents[1]))
	return rows
}

func (g *generator) match(id int64, round int, home, away string) matchRow {
	var m matchRow
	m.MatchID = id
	m.MatchDate = fmt.Sprintf("2015-%02d-%02d", 8+round/4%5, 1+7*(round%4))
	m.Competition.ID, m.Competition.Name = g.cfg.CompetitionID, "Premier League"
	m.Season.ID, m.Season.Name = g.cfg.SeasonID, "2015/2016"
	m.HomeTeam.Name, m.AwayTeam.Name = home, away
	return m
}

// events generates one match's stream in time order. Only team matches
// feature the player and count towards stats.
func (g *generator) events(m matchRow, stats *Stats) []eventRow {
	team := m.HomeTeam.Name
	if team != g.cfg.Team && m.AwayTeam.Name != g.cfg.Team {
		stats = &Stats{}
	} else {
		team = g.cfg.Team
		stats.TeamMatches++
	}

	n := g.cfg.EventsPerMatch
	rows := make([]eventRow, 0, n)
	for i := 0; i < n; i++ {
		clock := 95 * 60 * i / n
		period := 1
		if clock >= 47*60 {
			period = 2
		}
		action := actionZones[g.rnd.IntN(len(actionZones))]

		row := eventRow{
			ID:     uuid.New().String(),
			Period: period,
			Minute: clock / 60,
			Second: clock % 60,
			Type:   named{Name: action.typ},
			Team:   named{Name: team},
		}
		who := otherPlayers[g.rnd.IntN(len(otherPlayers))]
		isPlayer := team == g.cfg.Team && g.rnd.Float64() < playerShare
		if isPlayer {
			who = g.cfg.Player
			stats.PlayerEvents++
		}
		row.Player = &named{Name: who}

		if g.rnd.Float64() < noLocationShare {
			if isPlayer {
				stats.WithoutLocation++
			}
			if g.rnd.Float64() < shortLocationCut {
				row.Location = []any{round1(g.rnd.Float64() * model.PitchLength)}
			}
		} else {
			x, y := g.sample(action.zone)
			row.Location = []any{x, y}
		}
		rows = append(rows, row)
	}
	stats.Events += n
	return rows
}

// sample draws a location from z, clipped to the pitch.
func (g *generator) sample(z zone) (x, y float64) {
	x = clip(z.x+g.rnd.NormFloat64()*z.sx, 0, model.PitchLength)
	y = clip(z.y+g.rnd.NormFloat64()*z.sy, 0, model.PitchWidth)
	return round1(x), round1(y)
}

func clip(v, lo, hi float64) float64 { return math.Max(lo, math.Min(hi, v)) }

func round1(v float64) float64 { return math.Round(v*10) / 10 }

// Package sampledata writes a synthetic copy of the open-data tree
// (matches/{competition}/{season}.json and events/{match}.json) for offline
// runs and demos.
package sampledata

import (
	"errors"
	"time"
)

// ErrInvalidConfig is returned for an unusable generator configuration.
var ErrInvalidConfig = errors.New("invalid sample data config")

// Config holds the generator settings.
type Config struct {
	Dir            string // root of the generated tree
	CompetitionID  int
	SeasonID       int
	Team           string
	Player         string
	Matches        int   // matches the team plays
	EventsPerMatch int   // events per match, all players
	Seed           int64 // same seed, same tree
}

// DefaultConfig mirrors the default pipeline request.
func DefaultConfig() Config {
	return Config{
		Dir:            "sample-data",
		CompetitionID:  2,
		SeasonID:       27,
		Team:           "Leicester City",
		Player:         "N'Golo Kanté",
		Matches:        6,
		EventsPerMatch: 1200,
		Seed:           1,
	}
}

func (c Config) validate() error {
	switch {
	case c.Dir == "":
		return errors.Join(ErrInvalidConfig, errors.New("dir is empty"))
	case c.Team == "" || c.Player == "":
		return errors.Join(ErrInvalidConfig, errors.New("team and player are required"))
	case c.Matches <= 0 || c.EventsPerMatch <= 0:
		return errors.Join(ErrInvalidConfig, errors.New("matches and events per match must be > 0"))
	}
	return nil
}

// Stats summarises a generated tree. Event counts cover the team's
// matches only.
type Stats struct {
	Matches         int // including the fixture the team does not play
	TeamMatches     int
	Events          int
	PlayerEvents    int
	WithoutLocation int // player events with a missing or short location
	Duration        time.Duration
}

type matchRow struct {
	MatchID     int64  `json:"match_id"`
	MatchDate   string `json:"match_date"`
	Competition struct {
		ID   int    `json:"competition_id"`
		Name string `json:"competition_name"`
	} `json:"competition"`
	Season struct {
		ID   int    `json:"season_id"`
		Name string `json:"season_name"`
	} `json:"season"`
	HomeTeam struct {
		Name string `json:"home_team_name"`
	} `json:"home_team"`
	AwayTeam struct {
		Name string `json:"away_team_name"`
	} `json:"away_team"`
}

type named struct {
	Name string `json:"name"`
}

type eventRow struct {
	ID       string `json:"id"`
	Period   int    `json:"period"`
	Minute   int    `json:"minute"`
	Second   int    `json:"second"`
	Type     named  `json:"type"`
	Team     named  `json:"team"`
	Player   *named `json:"player,omitempty"`
	Location []any  `json:"location,omitempty"`
}

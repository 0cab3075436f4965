package statsbomb

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/okian/pitchmap/internal/domain/model"
)

type matchPayload struct {
	MatchID     int64  `json:"match_id"`
	MatchDate   string `json:"match_date"`
	Competition struct {
		CompetitionID   int    `json:"competition_id"`
		CompetitionName string `json:"competition_name"`
	} `json:"competition"`
	Season struct {
		SeasonID   int    `json:"season_id"`
		SeasonName string `json:"season_name"`
	} `json:"season"`
	HomeTeam struct {
		Name string `json:"home_team_name"`
	} `json:"home_team"`
	AwayTeam struct {
		Name string `json:"away_team_name"`
	} `json:"away_team"`
}

func decodeMatches(body []byte) ([]model.Match, error) {
	var raw []matchPayload
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: matches: %v", ErrDecode, err)
	}
	out := make([]model.Match, 0, len(raw))
	for _, m := range raw {
		out = append(out, model.Match{
			MatchID:         m.MatchID,
			HomeTeam:        m.HomeTeam.Name,
			AwayTeam:        m.AwayTeam.Name,
			CompetitionID:   m.Competition.CompetitionID,
			SeasonID:        m.Season.SeasonID,
			CompetitionName: m.Competition.CompetitionName,
			SeasonName:      m.Season.SeasonName,
			MatchDate:       m.MatchDate,
		})
	}
	return out, nil
}

// decodeEvents walks the event array without a typed unmarshal: events carry
// dozens of type-specific fields and only a handful are needed. Location is
// kept raw so coercion stays with the preprocessor.
func decodeEvents(matchID int64, body []byte) ([]model.Event, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: events: invalid JSON", ErrDecode)
	}
	root := gjson.ParseBytes(body)
	if !root.IsArray() {
		return nil, fmt.Errorf("%w: events: expected array, got %s", ErrDecode, root.Type)
	}

	out := make([]model.Event, 0, 4096)
	root.ForEach(func(_, v gjson.Result) bool {
		e := model.Event{
			ID:      v.Get("id").String(),
			MatchID: matchID,
			Player:  v.Get("player.name").String(),
			Team:    v.Get("team.name").String(),
			Type:    v.Get("type.name").String(),
			Minute:  int(v.Get("minute").Int()),
			Second:  int(v.Get("second").Int()),
		}
		if p := v.Get("period"); p.Type == gjson.Number {
			e.Period = model.IntPtr(int(p.Int()))
		}
		if loc := v.Get("location"); loc.Exists() {
			e.Location = json.RawMessage(loc.Raw)
		}
		out = append(out, e)
		return true
	})
	return out, nil
}

// Package model contains domain models passed between layers.
package model

import "encoding/json"

// Pitch bounds in the provider's coordinate convention.
const (
	PitchLength = 120.0
	PitchWidth  = 80.0
)

// Match identifies a single match. Immutable once fetched.
type Match struct {
	MatchID         int64
	HomeTeam        string
	AwayTeam        string
	CompetitionID   int
	SeasonID        int
	CompetitionName string
	SeasonName      string
	MatchDate       string
}

// Involves reports whether team played either side.
func (m Match) Involves(team string) bool {
	return m.HomeTeam == team || m.AwayTeam == team
}

// Event is one logged action during a match.
type Event struct {
	ID      string
	MatchID int64
	Player  string // empty when the action has no player
	Team    string
	Type    string // category label, e.g. "Pass", "Pressure"
	Minute  int
	Second  int

	// Period is the match period; nil when the provider omitted it.
	Period *int

	// Location is the provider's raw location value, unparsed.
	Location json.RawMessage
}

// HasPeriod reports whether the event carries a period attribute.
func (e Event) HasPeriod() bool { return e.Period != nil }

// Point is an event with its extracted pitch coordinates.
type Point struct {
	Event
	X float64
	Y float64
}

// DropReason explains why an event was kept off the maps.
type DropReason string

const (
	DropMissing    DropReason = "missing"
	DropNotArray   DropReason = "not_array"
	DropTooShort   DropReason = "too_short"
	DropNonNumeric DropReason = "non_numeric"
)

// Dropped records an event excluded during coordinate extraction.
type Dropped struct {
	EventID string
	Type    string
	Reason  DropReason
}

// IntPtr is a small helper for building events with a period.
func IntPtr(v int) *int { return &v }

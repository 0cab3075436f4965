// Package preprocess turns a raw event sequence into the point subsets that
// get mapped: player filter, coordinate extraction, category filter and half
// split. Every function returns a new slice and leaves its input untouched.
package preprocess

import (
	"bytes"
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/okian/pitchmap/internal/domain/model"
	"github.com/tidwall/gjson"
)

// Match periods of the two regular halves.
const (
	FirstHalf  = 1
	SecondHalf = 2
)

// FilterPlayer keeps events whose player equals name exactly.
func FilterPlayer(events []model.Event, name string) []model.Event {
	out := make([]model.Event, 0, len(events)/8)
	for _, e := range events {
		if e.Player == name {
			out = append(out, e)
		}
	}
	return out
}

// ExtractCoordinates keeps events whose location is an array of at least two
// values whose first two coerce to finite numbers. Every other event is
// reported in dropped, in input order.
func ExtractCoordinates(events []model.Event) (points []model.Point, dropped []model.Dropped) {
	points = make([]model.Point, 0, len(events))
	for _, e := range events {
		x, y, reason := parseLocation(e.Location)
		if reason != "" {
			dropped = append(dropped, model.Dropped{EventID: e.ID, Type: e.Type, Reason: reason})
			continue
		}
		points = append(points, model.Point{Event: e, X: x, Y: y})
	}
	return points, dropped
}

func parseLocation(raw json.RawMessage) (x, y float64, reason model.DropReason) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return 0, 0, model.DropMissing
	}
	if !gjson.ValidBytes(trimmed) {
		return 0, 0, model.DropNotArray
	}
	loc := gjson.ParseBytes(trimmed)
	if !loc.IsArray() {
		return 0, 0, model.DropNotArray
	}
	values := loc.Array()
	if len(values) < 2 {
		return 0, 0, model.DropTooShort
	}
	x, okX := toNumber(values[0])
	y, okY := toNumber(values[1])
	if !okX || !okY {
		return 0, 0, model.DropNonNumeric
	}
	return x, y, ""
}

// toNumber coerces JSON numbers and numeric strings.
func toNumber(v gjson.Result) (float64, bool) {
	var f float64
	switch v.Type {
	case gjson.Number:
		f = v.Float()
	case gjson.String:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// FilterEventTypes keeps points whose type is one of types. Matching is exact.
func FilterEventTypes(points []model.Point, types []string) []model.Point {
	allowed := make(map[string]struct{}, len(types))
	for _, t := range types {
		allowed[t] = struct{}{}
	}
	out := make([]model.Point, 0, len(points))
	for _, p := range points {
		if _, ok := allowed[p.Type]; ok {
			out = append(out, p)
		}
	}
	return out
}

// SplitByHalf partitions points by period. Points without a period, or with
// a period other than the two halves (extra time, shootouts), land in neither.
func SplitByHalf(points []model.Point) (half1, half2 []model.Point) {
	half1 = make([]model.Point, 0, len(points)/2)
	half2 = make([]model.Point, 0, len(points)/2)
	for _, p := range points {
		if !p.HasPeriod() {
			continue
		}
		switch *p.Period {
		case FirstHalf:
			half1 = append(half1, p)
		case SecondHalf:
			half2 = append(half2, p)
		}
	}
	return half1, half2
}

// TypeCount is an event type label and its frequency.
type TypeCount struct {
	Type  string
	Count int
}

// TopEventTypes returns the n most frequent type labels, most frequent first.
// Ties are ordered by label. n <= 0 returns every type.
func TopEventTypes(events []model.Event, n int) []TypeCount {
	counts := make(map[string]int)
	for _, e := range events {
		counts[e.Type]++
	}
	out := make([]TypeCount, 0, len(counts))
	for t, c := range counts {
		out = append(out, TypeCount{Type: t, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Type < out[j].Type
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// MappedPercent is the share of events that produced a point.
func MappedPercent(points, events int) float64 {
	if events == 0 {
		return 0
	}
	return float64(points) / float64(events) * 100
}

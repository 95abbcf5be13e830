package engine

import (
	"fmt"
	"sort"

	"github.com/okian/rake/internal/domain/table"
)

// Agg selects the per-group aggregation applied to the metric column.
type Agg int

// Supported aggregations.
const (
	AggSum Agg = iota
	AggMean
)

// Entry is one leaderboard row.
type Entry struct {
	Rank     int     `json:"rank"`
	PlayerID string  `json:"player_id"`
	Score    float64 `json:"score"`
}

// Leaderboard groups t by playerCol, aggregates metricCol, sorts descending
// by score and truncates to topN. Ordering is stable: ties keep the order in
// which group keys first appeared.
//
// Both columns are required. An unresolved metric column fails with
// ErrMissingColumn so callers can tell "metric unavailable" apart from an
// empty table, which yields an empty (non-error) result.
func Leaderboard(t *table.Table, playerCol, metricCol string, topN int, agg Agg) ([]Entry, error) {
	if playerCol == "" {
		return nil, fmt.Errorf("%w: player column unresolved", ErrMissingColumn)
	}
	if metricCol == "" {
		return nil, fmt.Errorf("%w: metric column unresolved", ErrMissingColumn)
	}
	pc, ok := t.Column(playerCol)
	if !ok {
		return nil, fmt.Errorf("%w: %q not in table %q", ErrMissingColumn, playerCol, t.Name())
	}
	mc, ok := t.Column(metricCol)
	if !ok {
		return nil, fmt.Errorf("%w: %q not in table %q", ErrMissingColumn, metricCol, t.Name())
	}
	if mc.Kind() != table.KindInt && mc.Kind() != table.KindFloat {
		return nil, fmt.Errorf("%w: %q is not numeric (kind %s)", ErrMissingColumn, metricCol, mc.Kind())
	}

	g := groupBy(pc)
	entries := make([]Entry, 0, len(g.keys))
	for _, key := range g.keys {
		sum, count := 0.0, 0
		for _, ri := range g.rows[key] {
			if v, ok := mc.Float(ri); ok {
				sum += v
				count++
			}
		}
		score := sum
		if agg == AggMean {
			if count > 0 {
				score = sum / float64(count)
			} else {
				score = 0
			}
		}
		entries = append(entries, Entry{PlayerID: key, Score: score})
	}

	sort.SliceStable(entries, func(a, b int) bool { return entries[a].Score > entries[b].Score })
	if topN > 0 && len(entries) > topN {
		entries = entries[:topN]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

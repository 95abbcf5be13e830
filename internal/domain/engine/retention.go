package engine

import (
	"sort"
	"time"

	"github.com/okian/rake/internal/domain/table"
)

// RetentionCell is one populated cell of the sparse cohort retention matrix:
// the number of distinct players from the cohort of FirstDate that were
// active Day days after their first activity.
type RetentionCell struct {
	FirstDate time.Time `json:"first_date"`
	Day       int       `json:"day"`
	Players   int       `json:"players"`
}

// RetentionMatrix is a sparse (first_date, days_since_first) -> distinct
// player count mapping. Missing cells are zero and not stored.
type RetentionMatrix struct {
	cells map[time.Time]map[int]int
}

// At returns the count at (firstDate, day); absent cells read as 0.
func (m *RetentionMatrix) At(firstDate time.Time, day int) int {
	return m.cells[dateOf(firstDate)][day]
}

// Cells returns populated cells sorted by cohort date, then day offset.
func (m *RetentionMatrix) Cells() []RetentionCell {
	out := make([]RetentionCell, 0, len(m.cells))
	for d, days := range m.cells {
		for day, n := range days {
			out = append(out, RetentionCell{FirstDate: d, Day: day, Players: n})
		}
	}
	sort.Slice(out, func(a, b int) bool {
		if !out[a].FirstDate.Equal(out[b].FirstDate) {
			return out[a].FirstDate.Before(out[b].FirstDate)
		}
		return out[a].Day < out[b].Day
	})
	return out
}

// CohortRetention computes first-activity cohorts: per player the minimum
// activity date, then for every event the whole-day offset from that first
// date, then distinct players per (first_date, days_since_first). Offsets
// are always >= 0, and the count at (d, 0) equals the number of distinct
// players whose first activity date is d.
func CohortRetention(t *table.Table, tsCol, playerCol string) (*RetentionMatrix, error) {
	tc, pc, err := timeAndGroupCols(t, tsCol, playerCol)
	if err != nil {
		return nil, err
	}

	// First pass: per-player minimum date.
	first := make(map[string]time.Time)
	for i := 0; i < t.NumRows(); i++ {
		ts, ok := tc.Time(i)
		if !ok || pc.IsNull(i) {
			continue
		}
		d := dateOf(ts)
		player := pc.String(i)
		if f, seen := first[player]; !seen || d.Before(f) {
			first[player] = d
		}
	}

	// Second pass: distinct players per (first_date, day offset).
	distinct := make(map[time.Time]map[int]map[string]struct{})
	for i := 0; i < t.NumRows(); i++ {
		ts, ok := tc.Time(i)
		if !ok || pc.IsNull(i) {
			continue
		}
		player := pc.String(i)
		f := first[player]
		day := int(dateOf(ts).Sub(f).Hours() / 24)
		if distinct[f] == nil {
			distinct[f] = make(map[int]map[string]struct{})
		}
		if distinct[f][day] == nil {
			distinct[f][day] = make(map[string]struct{})
		}
		distinct[f][day][player] = struct{}{}
	}

	cells := make(map[time.Time]map[int]int, len(distinct))
	for d, days := range distinct {
		cells[d] = make(map[int]int, len(days))
		for day, players := range days {
			cells[d][day] = len(players)
		}
	}
	return &RetentionMatrix{cells: cells}, nil
}

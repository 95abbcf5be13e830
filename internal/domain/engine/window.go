package engine

import (
	"time"

	"github.com/okian/rake/internal/domain/table"
)

// WindowedFilter returns the rows whose timestamp falls inside the trailing
// window [max(ts)-days, max(ts)], bounds inclusive.
//
// The timestamp column is optional: when tsCol is empty, absent or not a
// usable time column, the table is returned unfiltered. That asymmetry is
// deliberate: a missing window narrows nothing rather than failing the view.
// Filtering an already-filtered table with the same window is a fixed point.
func WindowedFilter(t *table.Table, tsCol string, days int) *table.Table {
	if tsCol == "" || days <= 0 {
		return t
	}
	col, ok := t.Column(tsCol)
	if !ok || col.Kind() != table.KindTime {
		return t
	}

	var end time.Time
	found := false
	for i := 0; i < t.NumRows(); i++ {
		if ts, ok := col.Time(i); ok {
			if !found || ts.After(end) {
				end = ts
				found = true
			}
		}
	}
	if !found {
		return t
	}

	start := end.Add(-time.Duration(days) * 24 * time.Hour)
	rows := make([]int, 0, t.NumRows())
	for i := 0; i < t.NumRows(); i++ {
		ts, ok := col.Time(i)
		if !ok {
			continue
		}
		if !ts.Before(start) && !ts.After(end) {
			rows = append(rows, i)
		}
	}
	return t.Select(rows)
}

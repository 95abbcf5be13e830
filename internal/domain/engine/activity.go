package engine

import (
	"fmt"
	"sort"
	"time"

	"github.com/okian/rake/internal/domain/table"
)

// DailyCount is one point of a per-date series.
type DailyCount struct {
	Date  time.Time `json:"date"`
	Count int       `json:"count"`
}

// DailyActiveCount counts distinct players per calendar date. Timestamps are
// truncated to their date naively, with no timezone conversion. The result
// holds one row per date present in the data, ascending; dates with zero
// activity are omitted, not filled.
func DailyActiveCount(t *table.Table, tsCol, playerCol string) ([]DailyCount, error) {
	tc, pc, err := timeAndGroupCols(t, tsCol, playerCol)
	if err != nil {
		return nil, err
	}

	perDate := make(map[time.Time]map[string]struct{})
	for i := 0; i < t.NumRows(); i++ {
		ts, ok := tc.Time(i)
		if !ok || pc.IsNull(i) {
			continue
		}
		d := dateOf(ts)
		if perDate[d] == nil {
			perDate[d] = make(map[string]struct{})
		}
		perDate[d][pc.String(i)] = struct{}{}
	}
	return sortedCounts(perDate), nil
}

// DailyEventCount counts rows per calendar date, the series behind the
// "bets per day" overview trend. Same date semantics as DailyActiveCount.
func DailyEventCount(t *table.Table, tsCol string) ([]DailyCount, error) {
	if tsCol == "" {
		return nil, fmt.Errorf("%w: timestamp column unresolved", ErrMissingColumn)
	}
	tc, ok := t.Column(tsCol)
	if !ok || tc.Kind() != table.KindTime {
		return nil, fmt.Errorf("%w: %q is not a timestamp column", ErrMissingColumn, tsCol)
	}

	perDate := make(map[time.Time]int)
	for i := 0; i < t.NumRows(); i++ {
		if ts, ok := tc.Time(i); ok {
			perDate[dateOf(ts)]++
		}
	}
	out := make([]DailyCount, 0, len(perDate))
	for d, n := range perDate {
		out = append(out, DailyCount{Date: d, Count: n})
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Date.Before(out[b].Date) })
	return out, nil
}

func timeAndGroupCols(t *table.Table, tsCol, groupCol string) (*table.Column, *table.Column, error) {
	if tsCol == "" {
		return nil, nil, fmt.Errorf("%w: timestamp column unresolved", ErrMissingColumn)
	}
	if groupCol == "" {
		return nil, nil, fmt.Errorf("%w: group column unresolved", ErrMissingColumn)
	}
	tc, ok := t.Column(tsCol)
	if !ok || tc.Kind() != table.KindTime {
		return nil, nil, fmt.Errorf("%w: %q is not a timestamp column", ErrMissingColumn, tsCol)
	}
	gc, ok := t.Column(groupCol)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q not in table %q", ErrMissingColumn, groupCol, t.Name())
	}
	return tc, gc, nil
}

func sortedCounts(perDate map[time.Time]map[string]struct{}) []DailyCount {
	out := make([]DailyCount, 0, len(perDate))
	for d, players := range perDate {
		out = append(out, DailyCount{Date: d, Count: len(players)})
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Date.Before(out[b].Date) })
	return out
}

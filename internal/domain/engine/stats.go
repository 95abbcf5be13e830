// Package engine implements the pure aggregation operations behind every
// dashboard view: windowed filtering, leaderboards, activity counts, cohort
// retention, quantile outliers and RFM segmentation.
//
// Operations take a table plus already-resolved column names; the caller is
// responsible for running the schema resolver first and handling unresolved
// roles per each operation's required/optional policy.
package engine

import (
	"math"
	"sort"
	"time"

	"github.com/okian/rake/internal/domain/table"
)

// quantile computes the q-quantile of values using linear interpolation
// between closest ranks. values need not be sorted.
func quantile(values []float64, q float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)
	if n == 1 {
		return sorted[0]
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[n-1]
	}
	pos := q * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// grouping collects row indices per group key, remembering the order in
// which keys first appeared. Null cells are skipped.
type grouping struct {
	keys []string
	rows map[string][]int
}

func groupBy(col *table.Column) *grouping {
	g := &grouping{rows: make(map[string][]int)}
	for i := 0; i < col.Len(); i++ {
		if col.IsNull(i) {
			continue
		}
		key := col.String(i)
		if _, seen := g.rows[key]; !seen {
			g.keys = append(g.keys, key)
		}
		g.rows[key] = append(g.rows[key], i)
	}
	return g
}

// dateOf truncates a timestamp to its calendar date, keeping the value's own
// location (naive truncation, no timezone conversion).
func dateOf(ts time.Time) time.Time {
	y, m, d := ts.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, ts.Location())
}

// distinctCount returns the number of distinct values in vs.
func distinctCount(vs []float64) int {
	seen := make(map[float64]struct{}, len(vs))
	for _, v := range vs {
		seen[v] = struct{}{}
	}
	return len(seen)
}

// quartileThresholds returns the 25/50/75 percent cut points of values.
func quartileThresholds(values []float64) (q1, q2, q3 float64) {
	return quantile(values, 0.25), quantile(values, 0.5), quantile(values, 0.75)
}

// quartileBin assigns v to a bucket 1..4 given ascending cut points.
func quartileBin(v, q1, q2, q3 float64) int {
	switch {
	case v <= q1:
		return 1
	case v <= q2:
		return 2
	case v <= q3:
		return 3
	default:
		return 4
	}
}

// rankFirst assigns ranks 1..n to values, breaking ties by first-occurrence
// order (the "first" rank method).
func rankFirst(values []float64) []float64 {
	idx := make([]int, len(values))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return values[idx[a]] < values[idx[b]] })
	ranks := make([]float64, len(values))
	for pos, i := range idx {
		ranks[i] = float64(pos + 1)
	}
	return ranks
}

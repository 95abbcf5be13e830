package engine

import (
	"fmt"

	"github.com/okian/rake/internal/domain/table"
)

// OutlierBy selects the per-group statistic thresholded by QuantileOutliers.
type OutlierBy int

// Per-group statistics.
const (
	// ByFrequency thresholds on the per-group row count.
	ByFrequency OutlierBy = iota
	// ByMean thresholds on the per-group mean of the metric column.
	ByMean
)

// Outlier is a group whose statistic exceeded the quantile threshold.
type Outlier struct {
	GroupID   string  `json:"group_id"`
	Value     float64 `json:"value"`
	Threshold float64 `json:"threshold"`
}

// QuantileOutliers flags groups whose per-group statistic exceeds the given
// quantile of the distribution of that statistic across all groups. The
// quantile is taken over the aggregated per-group values, never over raw
// rows; this two-stage shape is what makes a "99th percentile bettor" mean
// "a bettor whose count is extreme", not "a bet that is extreme".
//
// metricCol is only required for ByMean. Groups are returned in
// first-appearance order. An empty table yields an empty, non-error result.
func QuantileOutliers(t *table.Table, groupCol, metricCol string, by OutlierBy, q float64) ([]Outlier, error) {
	if groupCol == "" {
		return nil, fmt.Errorf("%w: group column unresolved", ErrMissingColumn)
	}
	if q <= 0 || q >= 1 {
		return nil, fmt.Errorf("threshold quantile %v out of range (0,1)", q)
	}
	gc, ok := t.Column(groupCol)
	if !ok {
		return nil, fmt.Errorf("%w: %q not in table %q", ErrMissingColumn, groupCol, t.Name())
	}

	var mc *table.Column
	if by == ByMean {
		if metricCol == "" {
			return nil, fmt.Errorf("%w: metric column unresolved", ErrMissingColumn)
		}
		mc, ok = t.Column(metricCol)
		if !ok {
			return nil, fmt.Errorf("%w: %q not in table %q", ErrMissingColumn, metricCol, t.Name())
		}
		if mc.Kind() != table.KindInt && mc.Kind() != table.KindFloat {
			return nil, fmt.Errorf("%w: %q is not numeric (kind %s)", ErrMissingColumn, metricCol, mc.Kind())
		}
	}

	g := groupBy(gc)
	if len(g.keys) == 0 {
		return nil, nil
	}

	stats := make([]float64, len(g.keys))
	for ki, key := range g.keys {
		rows := g.rows[key]
		switch by {
		case ByFrequency:
			stats[ki] = float64(len(rows))
		case ByMean:
			sum, count := 0.0, 0
			for _, ri := range rows {
				if v, ok := mc.Float(ri); ok {
					sum += v
					count++
				}
			}
			if count > 0 {
				stats[ki] = sum / float64(count)
			}
		}
	}

	threshold := quantile(stats, q)
	var out []Outlier
	for ki, key := range g.keys {
		if stats[ki] > threshold {
			out = append(out, Outlier{GroupID: key, Value: stats[ki], Threshold: threshold})
		}
	}
	return out, nil
}

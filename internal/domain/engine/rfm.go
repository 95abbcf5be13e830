package engine

import (
	"fmt"
	"time"

	"github.com/okian/rake/internal/domain/table"
)

// RFMRecord is the recency/frequency/monetary profile of one player,
// relative to a snapshot date derived from the data itself.
type RFMRecord struct {
	PlayerID  string  `json:"player_id"`
	Recency   int     `json:"recency_days"`
	Frequency int     `json:"frequency"`
	Monetary  float64 `json:"monetary"`
	RScore    int     `json:"r_score"`
	FScore    int     `json:"f_score"`
	MScore    int     `json:"m_score"`
	Composite int     `json:"rfm_score"`
}

// RFM segments players by recency, frequency and monetary value. The
// snapshot date is max(timestamp) + 1 day. Recency is quartile-binned with
// inverted labels (most recent players score 4); frequency and monetary are
// rank-transformed first, ties broken by first occurrence, then binned 1..4.
// Composite = r*100 + f*10 + m, so every score lands in {111..444} with each
// digit in 1..4.
//
// All three columns are required. Fewer than 4 distinct values in any
// dimension makes quartile binning undefined and fails with
// ErrInsufficientData; a table with no usable rows fails with ErrEmptyInput.
func RFM(t *table.Table, playerCol, amountCol, tsCol string) ([]RFMRecord, error) {
	tc, pc, err := timeAndGroupCols(t, tsCol, playerCol)
	if err != nil {
		return nil, err
	}
	if amountCol == "" {
		return nil, fmt.Errorf("%w: amount column unresolved", ErrMissingColumn)
	}
	ac, ok := t.Column(amountCol)
	if !ok {
		return nil, fmt.Errorf("%w: %q not in table %q", ErrMissingColumn, amountCol, t.Name())
	}
	if ac.Kind() != table.KindInt && ac.Kind() != table.KindFloat {
		return nil, fmt.Errorf("%w: %q is not numeric (kind %s)", ErrMissingColumn, amountCol, ac.Kind())
	}

	// Per-player last-seen, event count and amount sum, keyed in
	// first-appearance order.
	g := groupBy(pc)
	type profile struct {
		last     time.Time
		count    int
		monetary float64
	}
	var snapshotBase time.Time
	usable := false
	profiles := make(map[string]*profile, len(g.keys))
	keys := make([]string, 0, len(g.keys))
	for _, key := range g.keys {
		p := &profile{}
		for _, ri := range g.rows[key] {
			ts, ok := tc.Time(ri)
			if !ok {
				continue
			}
			if p.count == 0 || ts.After(p.last) {
				p.last = ts
			}
			p.count++
			if v, ok := ac.Float(ri); ok {
				p.monetary += v
			}
			if !usable || ts.After(snapshotBase) {
				snapshotBase = ts
				usable = true
			}
		}
		if p.count > 0 {
			profiles[key] = p
			keys = append(keys, key)
		}
	}
	if !usable {
		return nil, fmt.Errorf("%w: no rows with a valid timestamp in table %q", ErrEmptyInput, t.Name())
	}

	snapshot := snapshotBase.Add(24 * time.Hour)

	recency := make([]float64, len(keys))
	frequency := make([]float64, len(keys))
	monetary := make([]float64, len(keys))
	for i, key := range keys {
		p := profiles[key]
		recency[i] = float64(int(snapshot.Sub(p.last).Hours() / 24))
		frequency[i] = float64(p.count)
		monetary[i] = p.monetary
	}

	// Quartile binning needs at least 4 distinct values per dimension.
	for name, vs := range map[string][]float64{"recency": recency, "frequency": frequency, "monetary": monetary} {
		if distinctCount(vs) < 4 {
			return nil, fmt.Errorf("%w: %s has fewer than 4 distinct values", ErrInsufficientData, name)
		}
	}

	rq1, rq2, rq3 := quartileThresholds(recency)
	fRanks := rankFirst(frequency)
	fq1, fq2, fq3 := quartileThresholds(fRanks)
	mRanks := rankFirst(monetary)
	mq1, mq2, mq3 := quartileThresholds(mRanks)

	out := make([]RFMRecord, len(keys))
	for i, key := range keys {
		// Lowest recency bucket gets the highest score.
		r := 5 - quartileBin(recency[i], rq1, rq2, rq3)
		f := quartileBin(fRanks[i], fq1, fq2, fq3)
		m := quartileBin(mRanks[i], mq1, mq2, mq3)
		out[i] = RFMRecord{
			PlayerID:  key,
			Recency:   int(recency[i]),
			Frequency: int(frequency[i]),
			Monetary:  monetary[i],
			RScore:    r,
			FScore:    f,
			MScore:    m,
			Composite: r*100 + f*10 + m,
		}
	}
	return out, nil
}

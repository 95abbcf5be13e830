package engine

import (
	"fmt"
	"sort"

	"github.com/okian/rake/internal/domain/table"
)

// ExperimentGroup summarizes one experiment arm: how many distinct players
// it touched and how many events they produced.
type ExperimentGroup struct {
	ExperimentID  string `json:"experiment_id"`
	UniquePlayers int    `json:"unique_players"`
	TotalEvents   int    `json:"total_events"`
}

// ExperimentSummary groups events per (experiment, player) and rolls them up
// per experiment. Both columns are required; results are sorted by
// experiment id for stable output.
func ExperimentSummary(t *table.Table, expCol, playerCol string) ([]ExperimentGroup, error) {
	if expCol == "" {
		return nil, fmt.Errorf("%w: experiment column unresolved", ErrMissingColumn)
	}
	if playerCol == "" {
		return nil, fmt.Errorf("%w: player column unresolved", ErrMissingColumn)
	}
	ec, ok := t.Column(expCol)
	if !ok {
		return nil, fmt.Errorf("%w: %q not in table %q", ErrMissingColumn, expCol, t.Name())
	}
	pc, ok := t.Column(playerCol)
	if !ok {
		return nil, fmt.Errorf("%w: %q not in table %q", ErrMissingColumn, playerCol, t.Name())
	}

	type arm struct {
		players map[string]struct{}
		events  int
	}
	arms := make(map[string]*arm)
	for i := 0; i < t.NumRows(); i++ {
		if ec.IsNull(i) || pc.IsNull(i) {
			continue
		}
		id := ec.String(i)
		a := arms[id]
		if a == nil {
			a = &arm{players: make(map[string]struct{})}
			arms[id] = a
		}
		a.players[pc.String(i)] = struct{}{}
		a.events++
	}

	out := make([]ExperimentGroup, 0, len(arms))
	for id, a := range arms {
		out = append(out, ExperimentGroup{ExperimentID: id, UniquePlayers: len(a.players), TotalEvents: a.events})
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ExperimentID < out[b].ExperimentID })
	return out, nil
}

// Package schema resolves semantic column roles from table schemas.
//
// Resolution is heuristic: it inspects column names only, never values, and
// the first column containing a role keyword wins. The policy is fragile by
// nature, so it hides behind the Resolver interface; callers can later swap
// in an explicit user-provided mapping without touching the engine.
package schema

import (
	"strings"

	"github.com/okian/rake/internal/domain/table"
)

// Role is the semantic meaning assigned to a column.
type Role string

// Roles the resolver knows about.
const (
	RolePlayerID     Role = "player_id"
	RoleAmount       Role = "amount"
	RoleTimestamp    Role = "timestamp"
	RoleProfit       Role = "profit"
	RoleExperimentID Role = "experiment_id"
)

// keywords lists the case-insensitive substrings that identify each role,
// in priority order.
var keywords = map[Role][]string{
	RolePlayerID:     {"player", "user"},
	RoleAmount:       {"amount", "wager", "stake", "bet"},
	RoleTimestamp:    {"date", "time"},
	RoleProfit:       {"profit", "win", "pnl"},
	RoleExperimentID: {"experiment", "exp_id"},
}

// Resolver picks the column that fills a semantic role in a table.
type Resolver interface {
	// Resolve returns the matching column name, or ok=false when no column
	// fills the role. Pure function of the table's schema.
	Resolve(t *table.Table, role Role) (string, bool)
}

// KeywordResolver resolves roles by first case-insensitive substring match:
// columns are scanned in declared order and the first name containing any of
// the role's keywords wins. No value inspection, no disambiguation beyond
// scan order.
type KeywordResolver struct{}

// NewKeywordResolver creates the default heuristic resolver.
func NewKeywordResolver() *KeywordResolver {
	return &KeywordResolver{}
}

// Resolve implements Resolver.
func (r *KeywordResolver) Resolve(t *table.Table, role Role) (string, bool) {
	kws, ok := keywords[role]
	if !ok {
		return "", false
	}
	for _, name := range t.Columns() {
		lower := strings.ToLower(name)
		for _, kw := range kws {
			if strings.Contains(lower, kw) {
				return name, true
			}
		}
	}
	return "", false
}

// MappingResolver resolves roles from an explicit column mapping and falls
// back to a secondary resolver for unmapped roles. Used when a dataset's
// schema is known up front and the substring heuristic would misfire.
type MappingResolver struct {
	mapping  map[Role]string
	fallback Resolver
}

// NewMappingResolver creates a resolver backed by an explicit role mapping.
// fallback may be nil, in which case unmapped roles stay unresolved.
func NewMappingResolver(mapping map[Role]string, fallback Resolver) *MappingResolver {
	m := make(map[Role]string, len(mapping))
	for role, col := range mapping {
		m[role] = col
	}
	return &MappingResolver{mapping: m, fallback: fallback}
}

// Resolve implements Resolver. A mapped column is only returned when the
// table actually has it.
func (r *MappingResolver) Resolve(t *table.Table, role Role) (string, bool) {
	if col, ok := r.mapping[role]; ok {
		if _, exists := t.Column(col); exists {
			return col, true
		}
		return "", false
	}
	if r.fallback != nil {
		return r.fallback.Resolve(t, role)
	}
	return "", false
}

// Package table defines the in-memory tabular model shared by the loader,
// the schema resolver and the aggregation engine.
//
// A Table is an ordered collection of equal-length named columns. Tables are
// immutable once built; derived tables are produced by row selection, never
// by mutating the input.
package table

import (
	"strconv"
	"time"
)

// Kind is the resolved semantic type of a column.
type Kind int

// Column kinds. Unresolved marks columns whose values mixed numeric/text and
// could not be coerced to a single type at load time.
const (
	KindString Kind = iota
	KindInt
	KindFloat
	KindTime
	KindUnresolved
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindTime:
		return "time"
	case KindUnresolved:
		return "unresolved"
	default:
		return "unknown"
	}
}

// Column holds a single named column. The canonical text of every cell is
// always retained; typed views are populated according to Kind.
type Column struct {
	name   string
	kind   Kind
	text   []string
	floats []float64
	times  []time.Time
	nulls  []bool
}

// Name returns the column name as declared in the source file.
func (c *Column) Name() string { return c.name }

// Kind returns the coerced column kind.
func (c *Column) Kind() Kind { return c.kind }

// Len returns the number of cells.
func (c *Column) Len() int { return len(c.text) }

// IsNull reports whether cell i was empty in the source.
func (c *Column) IsNull(i int) bool { return c.nulls[i] }

// String returns the canonical textual value of cell i ("" for null cells).
func (c *Column) String(i int) string { return c.text[i] }

// Float returns the numeric value of cell i. ok is false for null cells and
// for columns that are not Int or Float.
func (c *Column) Float(i int) (float64, bool) {
	if c.nulls[i] || (c.kind != KindInt && c.kind != KindFloat) {
		return 0, false
	}
	return c.floats[i], true
}

// Time returns the timestamp value of cell i. ok is false for null cells and
// for non-Time columns.
func (c *Column) Time(i int) (time.Time, bool) {
	if c.nulls[i] || c.kind != KindTime {
		return time.Time{}, false
	}
	return c.times[i], true
}

// Table is an immutable, ordered set of equal-length columns.
type Table struct {
	name string
	cols []*Column
	idx  map[string]int
	rows int
}

// Name returns the logical table name.
func (t *Table) Name() string { return t.name }

// NumRows returns the row count. All columns share this length.
func (t *Table) NumRows() int { return t.rows }

// IsEmpty reports whether the table has zero rows.
func (t *Table) IsEmpty() bool { return t.rows == 0 }

// Columns returns column names in declared order.
func (t *Table) Columns() []string {
	names := make([]string, len(t.cols))
	for i, c := range t.cols {
		names[i] = c.name
	}
	return names
}

// Column returns the named column, or ok=false when absent.
func (t *Table) Column(name string) (*Column, bool) {
	i, ok := t.idx[name]
	if !ok {
		return nil, false
	}
	return t.cols[i], true
}

// Select produces a derived table containing the given rows, in order.
// Column kinds are preserved; no re-coercion happens.
func (t *Table) Select(rows []int) *Table {
	cols := make([]*Column, len(t.cols))
	for ci, c := range t.cols {
		nc := &Column{
			name:  c.name,
			kind:  c.kind,
			text:  make([]string, len(rows)),
			nulls: make([]bool, len(rows)),
		}
		if c.floats != nil {
			nc.floats = make([]float64, len(rows))
		}
		if c.times != nil {
			nc.times = make([]time.Time, len(rows))
		}
		for ni, ri := range rows {
			nc.text[ni] = c.text[ri]
			nc.nulls[ni] = c.nulls[ri]
			if nc.floats != nil {
				nc.floats[ni] = c.floats[ri]
			}
			if nc.times != nil {
				nc.times[ni] = c.times[ri]
			}
		}
		cols[ci] = nc
	}
	return assemble(t.name, cols, len(rows))
}

func assemble(name string, cols []*Column, rows int) *Table {
	idx := make(map[string]int, len(cols))
	for i, c := range cols {
		if _, dup := idx[c.name]; !dup {
			idx[c.name] = i
		}
	}
	return &Table{name: name, cols: cols, idx: idx, rows: rows}
}

// Builder accumulates raw string rows and coerces column types on Build.
type Builder struct {
	name    string
	columns []string
	cells   [][]string // per column
}

// NewBuilder creates a builder for a table with the given column names.
func NewBuilder(name string, columns []string) *Builder {
	cells := make([][]string, len(columns))
	return &Builder{name: name, columns: columns, cells: cells}
}

// AppendRow adds one raw row. Short rows are padded with empty cells and long
// rows truncated, so a single malformed record cannot poison the whole load.
func (b *Builder) AppendRow(values []string) {
	for i := range b.columns {
		v := ""
		if i < len(values) {
			v = values[i]
		}
		b.cells[i] = append(b.cells[i], v)
	}
}

// Build coerces every column to its best single type and returns the
// immutable table. Coercion order: int, float, timestamp; columns mixing
// numeric and non-numeric text are tagged Unresolved rather than deferring
// type errors into aggregation logic.
func (b *Builder) Build() (*Table, error) {
	if len(b.columns) == 0 {
		return nil, ErrNoColumns
	}
	rows := 0
	if len(b.cells) > 0 {
		rows = len(b.cells[0])
	}
	cols := make([]*Column, len(b.columns))
	for i, name := range b.columns {
		cols[i] = coerce(name, b.cells[i])
	}
	return assemble(b.name, cols, rows), nil
}

// timeLayouts are tried in order when coercing timestamp columns. All parse
// naively; no timezone conversion is applied beyond what the value carries.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006 15:04",
	"01/02/2006",
}

func parseTime(s string) (time.Time, bool) {
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

func coerce(name string, raw []string) *Column {
	c := &Column{
		name:  name,
		text:  make([]string, len(raw)),
		nulls: make([]bool, len(raw)),
	}

	nonNull := 0
	intOK, floatOK, timeOK := 0, 0, 0
	floats := make([]float64, len(raw))
	times := make([]time.Time, len(raw))
	parsedFloat := make([]bool, len(raw))
	parsedTime := make([]bool, len(raw))

	for i, v := range raw {
		v = trim(v)
		c.text[i] = v
		if v == "" {
			c.nulls[i] = true
			continue
		}
		nonNull++
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			intOK++
			floats[i] = float64(n)
			parsedFloat[i] = true
			continue
		}
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			floatOK++
			floats[i] = f
			parsedFloat[i] = true
			continue
		}
		if ts, ok := parseTime(v); ok {
			timeOK++
			times[i] = ts
			parsedTime[i] = true
		}
	}

	switch {
	case nonNull == 0:
		c.kind = KindString
	case intOK == nonNull:
		c.kind = KindInt
		c.floats = floats
	case intOK+floatOK == nonNull:
		c.kind = KindFloat
		c.floats = floats
	case timeOK == nonNull:
		c.kind = KindTime
		c.times = times
	case intOK+floatOK+timeOK == 0:
		c.kind = KindString
	default:
		// Mixed numeric/text or partial timestamps: unresolvable.
		c.kind = KindUnresolved
	}
	return c
}

func trim(s string) string {
	start, end := 0, len(s)
	for start < end && (s[start] == ' ' || s[start] == '\t' || s[start] == '\r' || s[start] == '\n') {
		start++
	}
	for end > start && (s[end-1] == ' ' || s[end-1] == '\t' || s[end-1] == '\r' || s[end-1] == '\n') {
		end--
	}
	return s[start:end]
}

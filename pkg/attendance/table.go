package attendance

import (
	"fmt"
	"sort"
	"time"
)

// Table is the accumulated wide table: one row per person, one column per
// capture timestamp. Rows and columns only ever grow.
type Table struct {
	people  []string
	rows    map[string]int
	columns []time.Time
	cols    map[time.Time]int
	// cells[row][col]
	cells [][]State
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{
		rows: make(map[string]int),
		cols: make(map[time.Time]int),
	}
}

// BuildTable assembles a table from already laid out parts, as read back from
// storage. cells must be len(people) × len(columns).
func BuildTable(people []string, columns []time.Time, cells [][]State) (*Table, error) {
	t := NewTable()

	for _, ts := range columns {
		ts = WallClock(ts)
		if _, dup := t.cols[ts]; dup {
			return nil, fmt.Errorf("duplicate column %s", FormatTimestamp(ts))
		}
		t.cols[ts] = len(t.columns)
		t.columns = append(t.columns, ts)
	}

	if len(cells) != len(people) {
		return nil, fmt.Errorf("have %d cell rows for %d people", len(cells), len(people))
	}
	for i, p := range people {
		if p == "" {
			return nil, fmt.Errorf("row %d has an empty person key", i)
		}
		if _, dup := t.rows[p]; dup {
			return nil, fmt.Errorf("duplicate row %s", p)
		}
		if len(cells[i]) != len(columns) {
			return nil, fmt.Errorf("row %s has %d cells, want %d", p, len(cells[i]), len(columns))
		}
		t.rows[p] = len(t.people)
		t.people = append(t.people, p)
		t.cells = append(t.cells, append([]State(nil), cells[i]...))
	}

	return t, nil
}

// Empty reports whether nothing was recorded yet.
func (t *Table) Empty() bool {
	return t == nil || len(t.columns) == 0
}

// People returns the row keys in join order.
func (t *Table) People() []string {
	if t == nil {
		return nil
	}
	return append([]string(nil), t.people...)
}

// Columns returns the column timestamps in insertion order.
func (t *Table) Columns() []time.Time {
	if t == nil {
		return nil
	}
	return append([]time.Time(nil), t.columns...)
}

// NumRows returns the number of people.
func (t *Table) NumRows() int {
	if t == nil {
		return 0
	}
	return len(t.people)
}

// NumColumns returns the number of recorded timestamps.
func (t *Table) NumColumns() int {
	if t == nil {
		return 0
	}
	return len(t.columns)
}

// Cell returns the state of person at ts, StateAbsent when either is unknown.
func (t *Table) Cell(person string, ts time.Time) State {
	if t == nil {
		return StateAbsent
	}
	r, ok := t.rows[person]
	if !ok {
		return StateAbsent
	}
	c, ok := t.cols[WallClock(ts)]
	if !ok {
		return StateAbsent
	}
	return t.cells[r][c]
}

// Row returns a copy of a person's cells in column order.
func (t *Table) Row(person string) ([]State, bool) {
	if t == nil {
		return nil, false
	}
	r, ok := t.rows[person]
	if !ok {
		return nil, false
	}
	return append([]State(nil), t.cells[r]...), true
}

// HasColumn reports whether ts was already recorded.
func (t *Table) HasColumn(ts time.Time) bool {
	if t == nil {
		return false
	}
	_, ok := t.cols[WallClock(ts)]
	return ok
}

func (t *Table) clone() *Table {
	out := NewTable()
	out.people = append(out.people, t.people...)
	out.columns = append(out.columns, t.columns...)
	for p, i := range t.rows {
		out.rows[p] = i
	}
	for ts, i := range t.cols {
		out.cols[ts] = i
	}
	out.cells = make([][]State, len(t.cells), len(t.cells)+1)
	for i, row := range t.cells {
		// one spare slot for the column Merge appends
		out.cells[i] = make([]State, len(row), len(row)+1)
		copy(out.cells[i], row)
	}
	return out
}

// Merge full-outer-joins snap into acc on person key and returns the result.
// Existing rows keep their order and gain one column; persons seen for the
// first time are appended in key order with every earlier column absent.
// acc is not modified.
func Merge(acc *Table, snap Snapshot) (*Table, error) {
	if len(snap.States) == 0 {
		return nil, fmt.Errorf("%w: no persons", ErrMalformedSnapshot)
	}
	if snap.Timestamp.IsZero() {
		return nil, fmt.Errorf("%w: zero timestamp", ErrMalformedSnapshot)
	}
	ts := WallClock(snap.Timestamp)
	if acc.HasColumn(ts) {
		return nil, fmt.Errorf("%w: column %s already recorded", ErrMalformedSnapshot, FormatTimestamp(ts))
	}
	for p, s := range snap.States {
		if p == "" || !s.Present() {
			return nil, fmt.Errorf("%w: invalid observation for %q", ErrMalformedSnapshot, p)
		}
	}

	var out *Table
	if acc.Empty() {
		out = NewTable()
	} else {
		out = acc.clone()
	}

	col := len(out.columns)
	out.cols[ts] = col
	out.columns = append(out.columns, ts)

	for i, p := range out.people {
		out.cells[i] = append(out.cells[i], snap.States[p])
	}

	newcomers := make([]string, 0)
	for p := range snap.States {
		if _, ok := out.rows[p]; !ok {
			newcomers = append(newcomers, p)
		}
	}
	sort.Strings(newcomers)

	for _, p := range newcomers {
		row := make([]State, col+1)
		row[col] = snap.States[p]
		out.rows[p] = len(out.people)
		out.people = append(out.people, p)
		out.cells = append(out.cells, row)
	}

	return out, nil
}

// Transpose returns the timestamp × person view of the table: one slice per
// column, indexed like People().
func (t *Table) Transpose() [][]State {
	if t == nil {
		return nil
	}
	out := make([][]State, len(t.columns))
	for c := range t.columns {
		column := make([]State, len(t.people))
		for r := range t.people {
			column[r] = t.cells[r][c]
		}
		out[c] = column
	}
	return out
}

// Package dataset holds the tabular input of the detector: a feature table with named
// columns and the binary label vector that goes with it.
package dataset

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Label values carried by a Labels vector.
const (
	Normal = 0
	Attack = 1
)

// Table is a row-major table of raw string cells with a fixed, named column set.
// Categorical cells are used verbatim; numeric cells are parsed on demand with ParseNumber.
type Table struct {
	columns []string
	index   map[string]int
	rows    [][]string
}

// NewTable creates an empty table with the given column names.
func NewTable(columns ...string) (*Table, error) {
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		if _, dup := index[c]; dup {
			return nil, shapeErrorf("new table", "duplicate column %q", c)
		}
		index[c] = i
	}
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Table{columns: cols, index: index}, nil
}

// MustTable is NewTable for statically known column sets.
func MustTable(columns ...string) *Table {
	t, err := NewTable(columns...)
	if err != nil {
		panic(err)
	}
	return t
}

// Append adds one row. The row must have exactly one cell per column.
func (t *Table) Append(cells ...string) error {
	if len(cells) != len(t.columns) {
		return shapeErrorf("append", "row has %d cells, table has %d columns", len(cells), len(t.columns))
	}
	row := make([]string, len(cells))
	copy(row, cells)
	t.rows = append(t.rows, row)
	return nil
}

// Columns returns a copy of the column names in table order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Width returns the number of columns.
func (t *Table) Width() int { return len(t.columns) }

// Index returns the position of the named column.
func (t *Table) Index(name string) (int, bool) {
	i, ok := t.index[name]
	return i, ok
}

// Has reports whether the table has the named column.
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Cell returns the raw cell at row i, column j.
func (t *Table) Cell(i, j int) string { return t.rows[i][j] }

// Row returns the raw cells of row i. The slice must not be modified.
func (t *Table) Row(i int) []string { return t.rows[i] }

// Number parses the cell at row i, column j as a number.
func (t *Table) Number(i, j int) (float64, error) {
	v, err := ParseNumber(t.rows[i][j])
	if err != nil {
		return 0, shapeErrorf("parse", "row %d column %q: %q is not numeric", i, t.columns[j], t.rows[i][j])
	}
	return v, nil
}

// Select returns a new table restricted to the named columns, in the given order.
func (t *Table) Select(columns ...string) (*Table, error) {
	idx := make([]int, len(columns))
	for k, c := range columns {
		j, ok := t.index[c]
		if !ok {
			return nil, shapeErrorf("select", "no column %q", c)
		}
		idx[k] = j
	}
	out, err := NewTable(columns...)
	if err != nil {
		return nil, err
	}
	out.rows = make([][]string, len(t.rows))
	for i, row := range t.rows {
		r := make([]string, len(idx))
		for k, j := range idx {
			r[k] = row[j]
		}
		out.rows[i] = r
	}
	return out, nil
}

// Drop returns a new table without the named columns. Unknown names are ignored.
func (t *Table) Drop(columns ...string) *Table {
	drop := make(map[string]bool, len(columns))
	for _, c := range columns {
		drop[c] = true
	}
	var keep []string
	for _, c := range t.columns {
		if !drop[c] {
			keep = append(keep, c)
		}
	}
	out, _ := t.Select(keep...)
	return out
}

// Rows returns a new table holding the given rows in the given order. Rows are shared.
func (t *Table) Rows(indices []int) *Table {
	out := &Table{columns: t.columns, index: t.index, rows: make([][]string, len(indices))}
	for k, i := range indices {
		out.rows[k] = t.rows[i]
	}
	return out
}

// ParseNumber parses a decimal float, falling back to integer literals with a base prefix
// so hexadecimal port numbers such as "0x1bb" are accepted. NaN and infinities are rejected.
func ParseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("%q is not a finite number", s)
		}
		return v, nil
	}
	v, err := strconv.ParseInt(s, 0, 64)
	if err != nil {
		return 0, err
	}
	return float64(v), nil
}

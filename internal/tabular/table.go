// Package tabular holds a small column-named table of string cells, the
// shape OD pair inputs and travel results take on disk.
package tabular

import (
	"errors"
	"fmt"
	"strconv"
)

var ErrUnknownColumn = errors.New("unknown column")

type Table struct {
	Columns []string
	Rows    [][]string
}

// New builds a table and checks that every row matches the header width.
func New(columns []string, rows [][]string) (*Table, error) {
	seen := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		if _, ok := seen[c]; ok {
			return nil, fmt.Errorf("new table: duplicate column %q", c)
		}
		seen[c] = struct{}{}
	}

	for i, r := range rows {
		if len(r) != len(columns) {
			return nil, fmt.Errorf("new table: row %d has %d cells, want %d", i+1, len(r), len(columns))
		}
	}

	return &Table{Columns: columns, Rows: rows}, nil
}

func (t *Table) Len() int { return len(t.Rows) }

// ColumnIndex returns the position of name, or ErrUnknownColumn.
func (t *Table) ColumnIndex(name string) (int, error) {
	for i, c := range t.Columns {
		if c == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w %q", ErrUnknownColumn, name)
}

// Float parses the cell at row i of column name.
func (t *Table) Float(i int, name string) (float64, error) {
	idx, err := t.ColumnIndex(name)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(t.Rows[i][idx], 64)
	if err != nil {
		return 0, fmt.Errorf("row %d column %q: %w", i+1, name, err)
	}
	return v, nil
}

// Select returns a new table restricted to the named columns, in that order.
func (t *Table) Select(names ...string) (*Table, error) {
	idx := make([]int, len(names))
	for k, n := range names {
		i, err := t.ColumnIndex(n)
		if err != nil {
			return nil, fmt.Errorf("select: %w", err)
		}
		idx[k] = i
	}

	rows := make([][]string, len(t.Rows))
	for r, row := range t.Rows {
		out := make([]string, len(idx))
		for k, i := range idx {
			out[k] = row[i]
		}
		rows[r] = out
	}

	return &Table{Columns: append([]string(nil), names...), Rows: rows}, nil
}

// WithColumns returns a copy with extra columns appended. values[i] holds the
// new cells for row i. Existing columns of the same name are replaced.
func (t *Table) WithColumns(names []string, values [][]string) (*Table, error) {
	if len(values) != len(t.Rows) {
		return nil, fmt.Errorf("with columns: got %d value rows, table has %d", len(values), len(t.Rows))
	}

	replace := make(map[int]int, len(names))
	cols := append([]string(nil), t.Columns...)
	for k, n := range names {
		if i, err := t.ColumnIndex(n); err == nil {
			replace[k] = i
			continue
		}
		replace[k] = len(cols)
		cols = append(cols, n)
	}

	rows := make([][]string, len(t.Rows))
	for r, row := range t.Rows {
		if len(values[r]) != len(names) {
			return nil, fmt.Errorf("with columns: row %d has %d values, want %d", r+1, len(values[r]), len(names))
		}
		out := make([]string, len(cols))
		copy(out, row)
		for k, i := range replace {
			out[i] = values[r][k]
		}
		rows[r] = out
	}

	return &Table{Columns: cols, Rows: rows}, nil
}

// FormatFloat renders v with the given decimals; a negative count means the
// shortest exact representation. nil renders as an empty cell.
func FormatFloat(v *float64, decimals int) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', decimals, 64)
}

// Package dataset implements the in-memory table that flows between pipeline
// stages.
//
// A Dataset is an ordered list of uniquely named columns whose value slices
// all have the same length. Datasets have no mutating methods: every
// operation that changes shape or names returns a new Dataset, so a value
// handed to a stage can never be altered behind the caller's back. Column
// value slices may be shared between datasets for that reason.
package dataset

import (
	"fmt"
	"slices"
)

// Column is a named, ordered sequence of scalar values.
type Column struct {
	Name   string
	Values []any
}

// Dataset is an immutable, column-oriented table.
type Dataset struct {
	cols  []Column
	index map[string]int
	rows  int
}

// Empty returns a dataset with no columns and no rows.
func Empty() *Dataset {
	return &Dataset{index: map[string]int{}}
}

// FromColumns builds a Dataset from columns. Names must be unique and every
// column must have the same number of values.
func FromColumns(cols []Column) (*Dataset, error) {
	d := &Dataset{
		cols:  make([]Column, len(cols)),
		index: make(map[string]int, len(cols)),
	}
	for i, c := range cols {
		if _, dup := d.index[c.Name]; dup {
			return nil, fmt.Errorf("dataset: duplicate column %q", c.Name)
		}
		if i == 0 {
			d.rows = len(c.Values)
		} else if len(c.Values) != d.rows {
			return nil, fmt.Errorf("dataset: column %q has %d values, want %d", c.Name, len(c.Values), d.rows)
		}
		d.index[c.Name] = i
		d.cols[i] = c
	}
	return d, nil
}

// FromRows builds a Dataset from a header and row-major values. Every row
// must have exactly len(names) values.
func FromRows(names []string, rows [][]any) (*Dataset, error) {
	cols := make([]Column, len(names))
	for j, n := range names {
		cols[j] = Column{Name: n, Values: make([]any, len(rows))}
	}
	for i, r := range rows {
		if len(r) != len(names) {
			return nil, fmt.Errorf("dataset: row %d has %d values, want %d", i, len(r), len(names))
		}
		for j, v := range r {
			cols[j].Values[i] = v
		}
	}
	return FromColumns(cols)
}

// MustFromRows is FromRows for tests and literals; it panics on error.
func MustFromRows(names []string, rows [][]any) *Dataset {
	d, err := FromRows(names, rows)
	if err != nil {
		panic(err)
	}
	return d
}

// NumRows returns the number of rows.
func (d *Dataset) NumRows() int { return d.rows }

// NumCols returns the number of columns.
func (d *Dataset) NumCols() int { return len(d.cols) }

// Columns returns the column names in order. The slice is a copy.
func (d *Dataset) Columns() []string {
	out := make([]string, len(d.cols))
	for i, c := range d.cols {
		out[i] = c.Name
	}
	return out
}

// Has reports whether the dataset has a column called name.
func (d *Dataset) Has(name string) bool {
	_, ok := d.index[name]
	return ok
}

// Column returns the named column. The returned Values slice must be treated
// as read-only.
func (d *Dataset) Column(name string) (Column, bool) {
	i, ok := d.index[name]
	if !ok {
		return Column{}, false
	}
	return d.cols[i], true
}

// ColumnAt returns the column at position i.
func (d *Dataset) ColumnAt(i int) Column { return d.cols[i] }

// Value returns the value at row i in the named column.
func (d *Dataset) Value(i int, name string) (any, bool) {
	j, ok := d.index[name]
	if !ok || i < 0 || i >= d.rows {
		return nil, false
	}
	return d.cols[j].Values[i], true
}

// Row returns a fresh slice with the values of row i in column order.
func (d *Dataset) Row(i int) []any {
	out := make([]any, len(d.cols))
	for j, c := range d.cols {
		out[j] = c.Values[i]
	}
	return out
}

// Rename returns a new dataset whose column names are names (same length and
// order as Columns). Values are shared with d.
func (d *Dataset) Rename(names []string) (*Dataset, error) {
	if len(names) != len(d.cols) {
		return nil, fmt.Errorf("dataset: rename got %d names for %d columns", len(names), len(d.cols))
	}
	cols := make([]Column, len(d.cols))
	for i, c := range d.cols {
		cols[i] = Column{Name: names[i], Values: c.Values}
	}
	return FromColumns(cols)
}

// Select returns a new dataset containing only the named columns, in the
// given order. Unknown names are an error.
func (d *Dataset) Select(names []string) (*Dataset, error) {
	cols := make([]Column, 0, len(names))
	for _, n := range names {
		c, ok := d.Column(n)
		if !ok {
			return nil, fmt.Errorf("dataset: no column %q", n)
		}
		cols = append(cols, c)
	}
	out, err := FromColumns(cols)
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		out.rows = d.rows
	}
	return out, nil
}

// MapValues returns a new dataset where every value of the listed columns
// (all columns when names is empty) has been passed through fn.
func (d *Dataset) MapValues(names []string, fn func(any) any) *Dataset {
	cols := make([]Column, len(d.cols))
	for i, c := range d.cols {
		if len(names) > 0 && !slices.Contains(names, c.Name) {
			cols[i] = c
			continue
		}
		vals := make([]any, len(c.Values))
		for k, v := range c.Values {
			vals[k] = fn(v)
		}
		cols[i] = Column{Name: c.Name, Values: vals}
	}
	out, _ := FromColumns(cols) // names and lengths are unchanged
	return out
}

// Equal reports whether two datasets have identical column names, order and
// formatted values.
func Equal(a, b *Dataset) bool {
	if a.NumRows() != b.NumRows() || !slices.Equal(a.Columns(), b.Columns()) {
		return false
	}
	for j := range a.cols {
		for i := 0; i < a.rows; i++ {
			if FormatValue(a.cols[j].Values[i]) != FormatValue(b.cols[j].Values[i]) {
				return false
			}
		}
	}
	return true
}

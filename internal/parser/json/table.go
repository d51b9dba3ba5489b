package json

import "tabetl/internal/dataset"

// field is one key/value pair of a flattened object, in document order.
type field struct {
	name  string
	value any
}

// row keeps the fields of one output row in the order they were first seen.
// Setting an existing name overwrites its value in place.
type row []field

func (r *row) set(name string, v any) {
	for i := range *r {
		if (*r)[i].name == name {
			(*r)[i].value = v
			return
		}
	}
	*r = append(*r, field{name: name, value: v})
}

// table accumulates rows whose columns are the union of all row keys in
// first-seen order. Cells a row does not have are nil.
type table struct {
	names []string
	index map[string]int
	rows  [][]any
}

func newTable() *table { return &table{index: map[string]int{}} }

func (t *table) column(name string) int {
	j, ok := t.index[name]
	if !ok {
		j = len(t.names)
		t.index[name] = j
		t.names = append(t.names, name)
	}
	return j
}

func (t *table) add(r row) {
	vals := make([]any, len(t.names), len(t.names)+len(r))
	for _, f := range r {
		j := t.column(f.name)
		if j >= len(vals) {
			vals = append(vals, make([]any, j+1-len(vals))...)
		}
		vals[j] = f.value
	}
	t.rows = append(t.rows, vals)
}

func (t *table) dataset() (*dataset.Dataset, error) {
	for i, r := range t.rows {
		if len(r) < len(t.names) {
			t.rows[i] = append(r, make([]any, len(t.names)-len(r))...)
		}
	}
	return dataset.FromRows(t.names, t.rows)
}

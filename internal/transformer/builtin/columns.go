package builtin

import (
	"slices"

	"tabetl/internal/config"
	"tabetl/internal/dataset"
	"tabetl/internal/transformer"
)

// Drop removes the listed columns. Absent names are ignored.
type Drop struct{ Columns []string }

func newDrop(o config.Options) (transformer.Transformer, error) {
	cols, err := columnsOption(o, true)
	if err != nil {
		return nil, err
	}
	return Drop{Columns: cols}, nil
}

func (Drop) Name() string { return "drop_columns" }

func (d Drop) Apply(in *dataset.Dataset) (*dataset.Dataset, error) {
	keep := make([]string, 0, in.NumCols())
	for _, n := range in.Columns() {
		if !slices.Contains(d.Columns, n) {
			keep = append(keep, n)
		}
	}
	if len(keep) == in.NumCols() {
		return in, nil
	}
	return in.Select(keep)
}

// Select keeps only the listed columns, in the listed order. Every listed
// column must exist.
type Select struct{ Columns []string }

func newSelect(o config.Options) (transformer.Transformer, error) {
	cols, err := columnsOption(o, true)
	if err != nil {
		return nil, err
	}
	return Select{Columns: cols}, nil
}

func (Select) Name() string { return "select_columns" }

func (s Select) Apply(in *dataset.Dataset) (*dataset.Dataset, error) {
	return in.Select(s.Columns)
}

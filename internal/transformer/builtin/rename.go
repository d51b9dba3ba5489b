package builtin

import (
	"fmt"

	"tabetl/internal/config"
	"tabetl/internal/dataset"
	"tabetl/internal/transformer"
)

// Rename maps old column names to new ones. All renames happen at once, so
// {a: b, b: a} swaps two columns. Names not present in the dataset are
// ignored.
type Rename struct {
	Mapping map[string]string
}

func newRename(o config.Options) (transformer.Transformer, error) {
	m, err := o.StringMap()
	if err != nil {
		return nil, err
	}
	return Rename{Mapping: m}, nil
}

// Name implements transformer.Transformer.
func (Rename) Name() string { return "rename_columns" }

// Apply implements transformer.Transformer.
func (r Rename) Apply(in *dataset.Dataset) (*dataset.Dataset, error) {
	names := in.Columns()
	changed := false
	for i, n := range names {
		if to, ok := r.Mapping[n]; ok && to != n {
			names[i] = to
			changed = true
		}
	}
	if !changed {
		return in, nil
	}
	out, err := in.Rename(names)
	if err != nil {
		return nil, fmt.Errorf("rename produces duplicate columns: %w", err)
	}
	return out, nil
}

// Package builtin contains the transformation kinds available to
// configuration. Importing it (usually for side effects) registers them with
// package transformer.
package builtin

import (
	"fmt"

	"tabetl/internal/config"
	"tabetl/internal/transformer"
)

func init() {
	transformer.Register("rename_columns", newRename)
	transformer.Register("drop_columns", newDrop)
	transformer.Register("select_columns", newSelect)
	transformer.Register("normalize_text", newNormalize)
	transformer.Register("coerce", newCoerce)
}

// columnsOption reads the "columns" list. required rejects a missing or
// empty list.
func columnsOption(o config.Options, required bool) ([]string, error) {
	cols := o.StringSlice("columns")
	if _, present := o["columns"]; present && cols == nil {
		return nil, fmt.Errorf(`"columns" must be a list of column names`)
	}
	if required && len(cols) == 0 {
		return nil, fmt.Errorf(`"columns" must list at least one column`)
	}
	return cols, nil
}

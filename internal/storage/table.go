package storage

import (
	"errors"

	"tabetl/internal/dataset"
	"tabetl/internal/ddl"
)

// TableRows returns ds as the table definition and row values a table sink
// writes. Every column is nullable TEXT; missing values become NULL.
func TableRows(table string, ds *dataset.Dataset) (ddl.TableDef, [][]any, error) {
	if table == "" {
		return ddl.TableDef{}, nil, errors.New("table must not be empty")
	}
	if ds.NumCols() == 0 {
		return ddl.TableDef{}, nil, errors.New("dataset has no columns")
	}
	def := ddl.TextTable(table, ds.Columns())
	rows := make([][]any, ds.NumRows())
	for i := range rows {
		vals := ds.Row(i)
		row := make([]any, len(vals))
		for j, v := range vals {
			if v != nil {
				row[j] = dataset.FormatValue(v)
			}
		}
		rows[i] = row
	}
	return def, rows, nil
}

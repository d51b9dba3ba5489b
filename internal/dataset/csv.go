package dataset

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
)

// WriteCSV serializes d as comma-separated values: one header row followed
// by one row per record, "\n" line endings, no synthetic index column.
// Output is a pure function of d, so equal datasets produce equal bytes.
func WriteCSV(w io.Writer, d *Dataset) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(d.Columns()); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	rec := make([]string, d.NumCols())
	for i := 0; i < d.NumRows(); i++ {
		for j := range d.cols {
			rec[j] = FormatValue(d.cols[j].Values[i])
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write csv row %d: %w", i, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// EncodeCSV returns the WriteCSV serialization of d as a byte slice.
func EncodeCSV(d *Dataset) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, d); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

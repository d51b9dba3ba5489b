// Package csv parses delimited text with a header row into a Dataset. It is
// the fallback reader for raw_data paths ending in .csv.
package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"tabetl/internal/dataset"
	"tabetl/internal/parser"
)

// Options configures the CSV parser. All fields are optional.
type Options struct {
	// Comma specifies the field delimiter. When zero, ',' is used.
	Comma rune

	// TrimSpace trims leading/trailing spaces from each field value.
	TrimSpace bool

	// HeaderMap maps source header names to canonical names. Applied after
	// blank and duplicate headers have been named.
	HeaderMap map[string]string
}

// Parser parses CSV input according to Options. It is safe to reuse across
// inputs.
type Parser struct{ opt Options }

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser { return &Parser{opt: opt} }

var _ parser.Parser = (*Parser)(nil)

// Parse reads the header row and every data row from r. Empty fields become
// nil, short rows are padded with nil, and a row wider than the header is an
// error carrying its line number.
func (p *Parser) Parse(r io.Reader) (*dataset.Dataset, error) {
	cr := csv.NewReader(r)
	if p.opt.Comma != 0 {
		cr.Comma = p.opt.Comma
	}
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	h, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read csv header: empty input")
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	headers := parser.Headers(h)
	for i, name := range headers {
		if m, ok := p.opt.HeaderMap[name]; ok {
			headers[i] = m
		}
	}

	var rows [][]any
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		if len(rec) > len(headers) {
			return nil, fmt.Errorf("read csv: line %d: expected %d fields, got %d", line, len(headers), len(rec))
		}
		row := make([]any, len(headers))
		for i, val := range rec {
			if p.opt.TrimSpace {
				val = strings.TrimSpace(val)
			}
			row[i] = emptyToNil(val)
		}
		rows = append(rows, row)
	}

	return dataset.FromRows(headers, rows)
}

// emptyToNil converts an empty string to nil; all other values are returned as-is.
func emptyToNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}

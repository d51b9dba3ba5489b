// Package xlsx reads the first worksheet of a spreadsheet workbook into a
// Dataset. Row 1 is the header; every following row is a record.
package xlsx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"tabetl/internal/dataset"
	"tabetl/internal/parser"
)

// ErrEmptySheet is returned when the first worksheet has no header row.
var ErrEmptySheet = errors.New("xlsx: first sheet is empty")

// Parser reads workbooks. The zero value is ready to use.
type Parser struct {
	// Sheet selects a worksheet by name; empty means the first sheet.
	Sheet string
}

var _ parser.Parser = (*Parser)(nil)

// Parse decodes the workbook in r.
//
// Cell values are typed: numbers become json.Number, booleans bool, cells
// with a date number format time.Time, and everything else string. Empty
// cells are nil and rows shorter than the header are padded with nil.
func (p *Parser) Parse(r io.Reader) (*dataset.Dataset, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("xlsx: open workbook: %w", err)
	}
	defer f.Close()

	sheet := p.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, ErrEmptySheet
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("xlsx: read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptySheet
	}

	width := len(rows[0])
	for _, r := range rows[1:] {
		width = max(width, len(r))
	}
	header := make([]string, width)
	copy(header, rows[0])
	names := parser.Headers(header)

	c := &cellReader{f: f, sheet: sheet, styles: map[int]bool{}}
	out := make([][]any, 0, len(rows)-1)
	for i, raw := range rows[1:] {
		row := make([]any, width)
		for j, v := range raw {
			if v == "" {
				continue
			}
			if row[j], err = c.value(j+1, i+2, v); err != nil {
				return nil, err
			}
		}
		out = append(out, row)
	}
	return dataset.FromRows(names, out)
}

// cellReader types raw cell text using the cell's type and style. Date
// detection results are cached per style id.
type cellReader struct {
	f      *excelize.File
	sheet  string
	styles map[int]bool
}

func (c *cellReader) value(col, row int, raw string) (any, error) {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return nil, err
	}
	typ, err := c.f.GetCellType(c.sheet, cell)
	if err != nil {
		return nil, fmt.Errorf("xlsx: cell %s: %w", cell, err)
	}

	switch typ {
	case excelize.CellTypeBool:
		return raw == "1" || strings.EqualFold(raw, "true"), nil
	case excelize.CellTypeUnset, excelize.CellTypeNumber:
		num, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return raw, nil
		}
		isDate, err := c.dateStyled(cell)
		if err != nil {
			return nil, err
		}
		if isDate {
			t, err := excelize.ExcelDateToTime(num, false)
			if err != nil {
				return nil, fmt.Errorf("xlsx: cell %s: %w", cell, err)
			}
			return t, nil
		}
		return json.Number(raw), nil
	default:
		return raw, nil
	}
}

func (c *cellReader) dateStyled(cell string) (bool, error) {
	id, err := c.f.GetCellStyle(c.sheet, cell)
	if err != nil {
		return false, fmt.Errorf("xlsx: style of %s: %w", cell, err)
	}
	if d, ok := c.styles[id]; ok {
		return d, nil
	}
	st, err := c.f.GetStyle(id)
	if err != nil {
		return false, fmt.Errorf("xlsx: style %d: %w", id, err)
	}
	d := isDateFormat(st.NumFmt, st.CustomNumFmt)
	c.styles[id] = d
	return d, nil
}

// isDateFormat recognizes the built-in date and time number formats and
// custom format codes that contain date tokens outside quoted literals.
func isDateFormat(id int, custom *string) bool {
	if custom != nil && *custom != "" {
		return hasDateToken(*custom)
	}
	switch {
	case id >= 14 && id <= 22, id >= 45 && id <= 47:
		return true
	}
	return false
}

func hasDateToken(code string) bool {
	quoted := false
	for i := 0; i < len(code); i++ {
		switch ch := code[i]; {
		case ch == '"':
			quoted = !quoted
		case quoted:
		case ch == '\\':
			i++
		case ch == '[':
			// Skip locale and color sections like [$-409] or [Red].
			if j := strings.IndexByte(code[i:], ']'); j > 0 {
				i += j
			}
		case strings.IndexByte("yYdDhHsS", ch) >= 0:
			return true
		case ch == 'm' || ch == 'M':
			return true
		}
	}
	return false
}

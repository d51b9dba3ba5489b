// Package parser holds what the format-specific parsers share: the Parser
// contract and spreadsheet-style header naming.
package parser

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"tabetl/internal/dataset"
)

// Parser turns one encoded input into a Dataset.
type Parser interface {
	Parse(r io.Reader) (*dataset.Dataset, error)
}

// utf8BOM is stripped from the first header cell if present.
const utf8BOM = "\uFEFF"

// Headers names columns the way spreadsheet readers do: blank cells become
// "Unnamed: N" (N is the zero-based position) and repeated names get ".1",
// ".2", ... suffixes in order of appearance. The first cell loses a UTF-8 BOM;
// every other cell is kept as written, surrounding whitespace included.
func Headers(raw []string) []string {
	out := make([]string, len(raw))
	used := make(map[string]bool, len(raw))
	dups := make(map[string]int)
	for i, h := range raw {
		if i == 0 {
			h = strings.TrimPrefix(h, utf8BOM)
		}
		if h == "" {
			h = fmt.Sprintf("Unnamed: %d", i)
		}
		name := h
		for used[name] {
			dups[h]++
			name = h + "." + strconv.Itoa(dups[h])
		}
		used[name] = true
		out[i] = name
	}
	return out
}

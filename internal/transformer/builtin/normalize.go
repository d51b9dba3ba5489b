package builtin

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"tabetl/internal/config"
	"tabetl/internal/dataset"
	"tabetl/internal/transformer"
)

const nbspace = "\u00a0"

// Normalize cleans string values: NO-BREAK SPACE (and its common mojibake
// "Â ") becomes a plain space, edges are trimmed, and the result is
// NFC-normalized. With StripAccents combining marks are removed, so "café"
// becomes "cafe". StripTags removes markup such as "<b>" and
// CollapseWhitespace folds inner runs of whitespace into one space; both run
// before the other rules. Non-string values are untouched.
type Normalize struct {
	// Columns limits normalization to these columns; empty means all.
	Columns            []string
	StripAccents       bool
	StripTags          bool
	CollapseWhitespace bool
}

func newNormalize(o config.Options) (transformer.Transformer, error) {
	cols, err := columnsOption(o, false)
	if err != nil {
		return nil, err
	}
	return Normalize{
		Columns:            cols,
		StripAccents:       o.Bool("strip_accents", false),
		StripTags:          o.Bool("strip_tags", false),
		CollapseWhitespace: o.Bool("collapse_whitespace", false),
	}, nil
}

func (Normalize) Name() string { return "normalize_text" }

func (n Normalize) Apply(in *dataset.Dataset) (*dataset.Dataset, error) {
	for _, c := range n.Columns {
		if !in.Has(c) {
			return nil, errNoColumn(c)
		}
	}
	var t transform.Transformer = norm.NFC
	if n.StripAccents {
		t = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	}
	return in.MapValues(n.Columns, func(v any) any {
		s, ok := v.(string)
		if !ok {
			return v
		}
		if n.StripTags {
			s = stripTags(s)
		}
		if n.CollapseWhitespace {
			s = collapseSpace(s)
		}
		return NormalizeString(t, s)
	}), nil
}

// NormalizeString applies the Normalize rules to s using t for the Unicode
// step.
func NormalizeString(t transform.Transformer, s string) string {
	if strings.Contains(s, "Â"+nbspace) {
		s = strings.ReplaceAll(s, "Â"+nbspace, " ")
	}
	if strings.Contains(s, nbspace) {
		s = strings.ReplaceAll(s, nbspace, " ")
	}
	if HasEdgeSpace(s) {
		s = strings.TrimSpace(s)
	}
	if out, _, err := transform.String(t, s); err == nil {
		s = out
	}
	return s
}

// HasEdgeSpace reports whether s starts or ends with ASCII whitespace.
func HasEdgeSpace(s string) bool {
	if s == "" {
		return false
	}
	isSpace := func(b byte) bool { return b == ' ' || b == '\t' || b == '\n' || b == '\r' }
	return isSpace(s[0]) || isSpace(s[len(s)-1])
}

package builtin

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"tabetl/internal/config"
	"tabetl/internal/dataset"
	"tabetl/internal/transformer"
)

// DefaultDateLayout is used by Coerce when no layout is configured.
const DefaultDateLayout = "2006-01-02"

// Coerce converts textual cells to typed values. Types maps a column to one
// of int, float, bool, date or string. A value that does not parse is left
// as it was; nil stays nil.
type Coerce struct {
	Types  map[string]string
	Layout string
}

func newCoerce(o config.Options) (transformer.Transformer, error) {
	raw, ok := o["types"].(map[string]any)
	if !ok || len(raw) == 0 {
		return nil, fmt.Errorf(`"types" must map column names to int, float, bool, date or string`)
	}
	types := make(map[string]string, len(raw))
	for col, v := range raw {
		typ := strings.ToLower(fmt.Sprint(v))
		switch typ {
		case "int", "float", "bool", "date", "string":
		default:
			return nil, fmt.Errorf("column %q: unsupported type %q", col, v)
		}
		types[col] = typ
	}
	return Coerce{Types: types, Layout: o.String("layout", DefaultDateLayout)}, nil
}

func (Coerce) Name() string { return "coerce" }

func (c Coerce) Apply(in *dataset.Dataset) (*dataset.Dataset, error) {
	cols := make([]string, 0, len(c.Types))
	for col := range c.Types {
		if !in.Has(col) {
			return nil, errNoColumn(col)
		}
		cols = append(cols, col)
	}
	sort.Strings(cols)

	out := in
	layout := c.Layout
	if layout == "" {
		layout = DefaultDateLayout
	}
	for _, col := range cols {
		typ := c.Types[col]
		out = out.MapValues([]string{col}, func(v any) any { return coerceValue(v, typ, layout) })
	}
	return out, nil
}

func coerceValue(v any, typ, layout string) any {
	var s string
	switch x := v.(type) {
	case string:
		s = strings.TrimSpace(x)
	case json.Number:
		s = x.String()
	default:
		if typ == "string" && v != nil {
			return dataset.FormatValue(v)
		}
		return v
	}
	switch typ {
	case "int":
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i
		}
	case "float":
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	case "bool":
		if b, err := strconv.ParseBool(s); err == nil {
			return b
		}
	case "date":
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	case "string":
		return s
	}
	return v
}

func errNoColumn(name string) error {
	return fmt.Errorf("no column %q", name)
}

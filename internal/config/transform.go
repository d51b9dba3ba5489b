package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Transform defines a single transformation step. The sequence of steps forms
// the transformation chain executed by the pipeline.
type Transform struct {
	// Kind selects the transform implementation (e.g. "rename_columns").
	Kind string `yaml:"kind"`

	// Options is a free-form map interpreted by the selected transform.
	Options Options `yaml:"options"`
}

// Transformations is the ordered transformation list.
//
// Three YAML shapes are accepted:
//
//	# mapping, applied in document order
//	transformations:
//	  rename_columns: { a: b }
//
//	# shorthand sequence
//	transformations:
//	  - rename_columns: { a: b }
//	  - drop_columns: [c, d]
//
//	# explicit sequence
//	transformations:
//	  - kind: rename_columns
//	    options: { a: b }
type Transformations []Transform

// UnmarshalYAML implements yaml.Unmarshaler.
func (ts *Transformations) UnmarshalYAML(n *yaml.Node) error {
	var out []Transform
	switch n.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			t, err := shorthand(n.Content[i], n.Content[i+1])
			if err != nil {
				return err
			}
			out = append(out, t)
		}
	case yaml.SequenceNode:
		for _, item := range n.Content {
			if item.Kind != yaml.MappingNode {
				return fmt.Errorf("line %d: transformation must be a mapping", item.Line)
			}
			if hasKey(item, "kind") {
				var t Transform
				if err := item.Decode(&t); err != nil {
					return err
				}
				if t.Options == nil {
					t.Options = Options{}
				}
				out = append(out, t)
				continue
			}
			if len(item.Content) != 2 {
				return fmt.Errorf("line %d: shorthand transformation must have exactly one key", item.Line)
			}
			t, err := shorthand(item.Content[0], item.Content[1])
			if err != nil {
				return err
			}
			out = append(out, t)
		}
	case yaml.ScalarNode:
		if n.Tag != "!!null" {
			return fmt.Errorf("line %d: transformations must be a mapping or a sequence", n.Line)
		}
	default:
		return fmt.Errorf("line %d: transformations must be a mapping or a sequence", n.Line)
	}
	*ts = out
	return nil
}

// shorthand decodes "kind: value". A mapping value becomes the options; a
// sequence value becomes options["columns"].
func shorthand(k, v *yaml.Node) (Transform, error) {
	t := Transform{Kind: k.Value, Options: Options{}}
	switch v.Kind {
	case yaml.MappingNode:
		if err := v.Decode(&t.Options); err != nil {
			return Transform{}, fmt.Errorf("line %d: %s options: %w", v.Line, t.Kind, err)
		}
	case yaml.SequenceNode:
		var cols []any
		if err := v.Decode(&cols); err != nil {
			return Transform{}, fmt.Errorf("line %d: %s options: %w", v.Line, t.Kind, err)
		}
		t.Options["columns"] = cols
	case yaml.ScalarNode:
		if v.Tag != "!!null" {
			return Transform{}, fmt.Errorf("line %d: %s: options must be a mapping or a list", v.Line, t.Kind)
		}
	}
	return t, nil
}

func hasKey(m *yaml.Node, key string) bool {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return true
		}
	}
	return false
}

// Options is a small helper to fetch typed values from decoded YAML maps.
// It performs only minimal type coercion and returns the provided default
// when a key is absent or of an unexpected type.
type Options map[string]any

// String returns the string value for key or def if key is missing or not a string.
func (o Options) String(key, def string) string {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// Bool returns the bool value for key or def if key is missing or not a bool.
func (o Options) Bool(key string, def bool) bool {
	if v, ok := o[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// Int returns the int value for key or def.
func (o Options) Int(key string, def int) int {
	if v, ok := o[key]; ok {
		switch n := v.(type) {
		case int:
			return n
		case float64:
			return int(n)
		}
	}
	return def
}

// StringSlice returns a []string for key when the value is a list. Scalar
// elements are rendered with fmt so that numeric column names survive YAML's
// typing. Returns nil when the key is missing or not a list.
func (o Options) StringSlice(key string) []string {
	v, ok := o[key]
	if !ok {
		return nil
	}
	switch vv := v.(type) {
	case []any:
		out := make([]string, 0, len(vv))
		for _, x := range vv {
			if x == nil {
				continue
			}
			out = append(out, fmt.Sprint(x))
		}
		return out
	case []string:
		return vv
	}
	return nil
}

// StringMap interprets the whole options bag as a string→string mapping.
// Non-string scalar keys and values are rendered with fmt; nested values are
// an error.
func (o Options) StringMap() (map[string]string, error) {
	out := make(map[string]string, len(o))
	for k, v := range o {
		switch v.(type) {
		case nil, map[string]any, []any:
			return nil, fmt.Errorf("value for %q must be a scalar, got %T", k, v)
		}
		out[k] = fmt.Sprint(v)
	}
	return out, nil
}

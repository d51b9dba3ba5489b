// Package json turns JSON API responses into Datasets.
//
// Two shapes are supported:
//
//   - Flat: the response is an array of objects (or a single object) and each
//     object becomes one row keyed by its top-level fields.
//   - Records: each top-level object carries an array of item records at a
//     record path plus sibling metadata; every item becomes a row and the
//     metadata is repeated onto it. Nested item fields are flattened into
//     dotted column names (e.g. "rating.rate").
//
// Objects are walked with jsonparser so that columns keep the key order of
// the document, which encoding/json maps would lose.
package json

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/buger/jsonparser"

	"tabetl/internal/config"
	"tabetl/internal/dataset"
	"tabetl/internal/parser"
)

// DefaultSep joins nested key names when flattening.
const DefaultSep = "."

// ErrMalformed is wrapped by every error caused by input that is not valid
// JSON.
var ErrMalformed = errors.New("malformed JSON")

// FlatParser parses flat API responses.
type FlatParser struct {
	// Flatten expands nested objects into dotted columns instead of keeping
	// them as raw JSON values.
	Flatten bool
	Sep     string
}

// RecordParser parses responses that nest item records under a path.
type RecordParser struct {
	// RecordPath is the key path leading to the array of item records. Each
	// intermediate level may be an object or an array of objects.
	RecordPath []string

	// Meta lists fields copied from the enclosing top-level object onto every
	// row. Dotted entries address nested fields ("user.name").
	Meta []string

	MetaPrefix   string
	RecordPrefix string

	// IgnoreMissingMeta fills absent meta fields with nil instead of failing.
	IgnoreMissingMeta bool

	Sep string
}

var (
	_ parser.Parser = (*FlatParser)(nil)
	_ parser.Parser = (*RecordParser)(nil)
)

// FromFlatConfig builds a FlatParser from the products API section.
func FromFlatConfig(c config.FlatRecords) *FlatParser {
	return &FlatParser{Flatten: c.Flatten}
}

// FromRecordConfig builds a RecordParser from the carts API section.
func FromRecordConfig(c config.RecordPath) *RecordParser {
	return &RecordParser{
		RecordPath:        c.RecordPath,
		Meta:              c.Meta,
		MetaPrefix:        c.MetaPrefix,
		RecordPrefix:      c.RecordPrefix,
		IgnoreMissingMeta: strings.EqualFold(c.MetaErrors, "ignore"),
	}
}

// Parse implements parser.Parser.
func (p *FlatParser) Parse(r io.Reader) (*dataset.Dataset, error) {
	data, err := readValid(r)
	if err != nil {
		return nil, err
	}
	t := newTable()
	err = eachObject(data, func(obj []byte) error {
		var rw row
		if err := p.fields(obj, "", &rw); err != nil {
			return err
		}
		t.add(rw)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return t.dataset()
}

func (p *FlatParser) fields(obj []byte, prefix string, rw *row) error {
	sep := p.Sep
	if sep == "" {
		sep = DefaultSep
	}
	return jsonparser.ObjectEach(obj, func(k, v []byte, vt jsonparser.ValueType, _ int) error {
		name, err := jsonparser.ParseString(k)
		if err != nil {
			return fmt.Errorf("%w: key %q: %v", ErrMalformed, k, err)
		}
		name = prefix + name
		if p.Flatten && vt == jsonparser.Object {
			return p.fields(v, name+sep, rw)
		}
		val, err := scalar(v, vt)
		if err != nil {
			return err
		}
		rw.set(name, val)
		return nil
	})
}

// Parse implements parser.Parser.
func (p *RecordParser) Parse(r io.Reader) (*dataset.Dataset, error) {
	if len(p.RecordPath) == 0 {
		return nil, errors.New("json: record path is empty")
	}
	data, err := readValid(r)
	if err != nil {
		return nil, err
	}
	sep := p.Sep
	if sep == "" {
		sep = DefaultSep
	}

	records := newTable()
	var metas [][]any
	err = eachObject(data, func(root []byte) error {
		meta, err := p.meta(root)
		if err != nil {
			return err
		}
		return p.walk(root, p.RecordPath, func(rec []byte, vt jsonparser.ValueType) error {
			if vt != jsonparser.Object {
				return fmt.Errorf("json: record under %q is %s, not an object", strings.Join(p.RecordPath, sep), vt)
			}
			var rw row
			if err := flatten(rec, p.RecordPrefix, sep, &rw); err != nil {
				return err
			}
			records.add(rw)
			metas = append(metas, meta)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	for _, m := range p.Meta {
		name := p.MetaPrefix + m
		if _, clash := records.index[name]; clash {
			return nil, fmt.Errorf("json: meta field %q conflicts with a record column; set a meta or record prefix", name)
		}
	}
	at := make([]int, len(p.Meta))
	for k, m := range p.Meta {
		at[k] = records.column(p.MetaPrefix + m)
	}
	for i := range records.rows {
		r := records.rows[i]
		if len(r) < len(records.names) {
			r = append(r, make([]any, len(records.names)-len(r))...)
		}
		for k, j := range at {
			r[j] = metas[i][k]
		}
		records.rows[i] = r
	}
	return records.dataset()
}

// meta resolves the configured meta fields on a top-level object.
func (p *RecordParser) meta(root []byte) ([]any, error) {
	out := make([]any, len(p.Meta))
	for i, m := range p.Meta {
		v, vt, _, err := jsonparser.Get(root, strings.Split(m, DefaultSep)...)
		if errors.Is(err, jsonparser.KeyPathNotFoundError) {
			if p.IgnoreMissingMeta {
				continue
			}
			return nil, fmt.Errorf("json: meta field %q not found; set meta_errors: ignore to allow it", m)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: meta field %q: %v", ErrMalformed, m, err)
		}
		if out[i], err = scalar(v, vt); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// walk follows path from obj and calls fn for every element at its end. A
// level holding a single object instead of an array is treated as a one
// element array.
func (p *RecordParser) walk(obj []byte, path []string, fn func([]byte, jsonparser.ValueType) error) error {
	v, vt, _, err := jsonparser.Get(obj, path[0])
	if errors.Is(err, jsonparser.KeyPathNotFoundError) {
		return fmt.Errorf("json: record path key %q not found", path[0])
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	visit := func(elem []byte, et jsonparser.ValueType) error {
		if len(path) == 1 {
			return fn(elem, et)
		}
		if et != jsonparser.Object {
			return fmt.Errorf("json: record path level %q holds %s, not an object", path[0], et)
		}
		return p.walk(elem, path[1:], fn)
	}

	switch vt {
	case jsonparser.Array:
		return eachElement(v, visit)
	case jsonparser.Object:
		return visit(v, vt)
	default:
		return fmt.Errorf("json: record path key %q holds %s, not an array", path[0], vt)
	}
}

// flatten writes obj's leaves into rw with dotted names.
func flatten(obj []byte, prefix, sep string, rw *row) error {
	return jsonparser.ObjectEach(obj, func(k, v []byte, vt jsonparser.ValueType, _ int) error {
		name, err := jsonparser.ParseString(k)
		if err != nil {
			return fmt.Errorf("%w: key %q: %v", ErrMalformed, k, err)
		}
		name = prefix + name
		if vt == jsonparser.Object {
			return flatten(v, name+sep, sep, rw)
		}
		val, err := scalar(v, vt)
		if err != nil {
			return err
		}
		rw.set(name, val)
		return nil
	})
}

// eachObject calls fn for the root object or for every object of a root
// array. Any other root shape is an error.
func eachObject(data []byte, fn func([]byte) error) error {
	_, vt, _, err := jsonparser.Get(data)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	switch vt {
	case jsonparser.Object:
		return fn(data)
	case jsonparser.Array:
		i := 0
		return eachElement(data, func(elem []byte, et jsonparser.ValueType) error {
			defer func() { i++ }()
			if et != jsonparser.Object {
				return fmt.Errorf("json: element %d is %s, not an object", i, et)
			}
			return fn(elem)
		})
	default:
		return fmt.Errorf("json: top-level value is %s, want an object or an array of objects", vt)
	}
}

// eachElement iterates an array, stopping at the first error fn returns.
func eachElement(arr []byte, fn func([]byte, jsonparser.ValueType) error) error {
	var ferr error
	_, err := jsonparser.ArrayEach(arr, func(v []byte, vt jsonparser.ValueType, _ int, err error) {
		if ferr != nil {
			return
		}
		if err != nil {
			ferr = fmt.Errorf("%w: %v", ErrMalformed, err)
			return
		}
		ferr = fn(v, vt)
	})
	if ferr != nil {
		return ferr
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}

// scalar converts one JSON value into a dataset cell. Arrays and objects are
// kept as compact raw JSON.
func scalar(v []byte, vt jsonparser.ValueType) (any, error) {
	switch vt {
	case jsonparser.Null:
		return nil, nil
	case jsonparser.String:
		s, err := jsonparser.ParseString(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		return s, nil
	case jsonparser.Number:
		return json.Number(string(v)), nil
	case jsonparser.Boolean:
		b, err := jsonparser.ParseBoolean(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		return b, nil
	case jsonparser.Array, jsonparser.Object:
		var buf bytes.Buffer
		if err := json.Compact(&buf, v); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		return json.RawMessage(buf.String()), nil
	default:
		return nil, fmt.Errorf("%w: unexpected value %q", ErrMalformed, v)
	}
}

func readValid(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("json: read: %w", err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("json: %w", ErrMalformed)
	}
	return data, nil
}

// Package merge inner-joins two datasets on a key column pair.
package merge

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"tabetl/internal/config"
	"tabetl/internal/dataset"
	"tabetl/internal/etlerr"
)

// Keys names the join columns on each side.
type Keys struct {
	Left, Right string
}

func (k Keys) String() string { return k.Left + "=" + k.Right }

// Options controls how the result columns are named.
type Options struct {
	// LeftSuffix and RightSuffix are appended to column names present on
	// both sides.
	LeftSuffix  string
	RightSuffix string
	// KeepRightKey keeps the right key column in the result.
	KeepRightKey bool
}

// FromConfig splits the merge config section into Keys and Options.
func FromConfig(c config.Merge) (Keys, Options) {
	return Keys{Left: c.LeftKey, Right: c.RightKey}, Options{
		LeftSuffix:   c.LeftSuffix,
		RightSuffix:  c.RightSuffix,
		KeepRightKey: c.KeepRightKey,
	}
}

// Merge returns the rows of left and right whose key values are equal.
//
// Result columns are the left columns followed by the right columns. Names
// present on both sides get the configured suffixes, except a key shared by
// name, which appears once. The right key is dropped unless KeepRightKey is
// set. Finally every "." in a column name is replaced by "_".
//
// Rows follow left order; a left row matching several right rows expands
// into one row per match in right order. Missing keys never match.
func Merge(left, right *dataset.Dataset, keys Keys, opt Options) (*dataset.Dataset, error) {
	fail := func(err error) (*dataset.Dataset, error) {
		return nil, &etlerr.MergeError{Keys: keys.String(), Err: err}
	}

	if !left.Has(keys.Left) {
		return fail(fmt.Errorf("left dataset has no column %q", keys.Left))
	}
	if !right.Has(keys.Right) {
		return fail(fmt.Errorf("right dataset has no column %q", keys.Right))
	}

	sharedKey := keys.Left == keys.Right
	overlap := map[string]bool{}
	for _, n := range left.Columns() {
		if right.Has(n) && !(sharedKey && n == keys.Left) {
			overlap[n] = true
		}
	}
	if len(overlap) > 0 && opt.LeftSuffix == opt.RightSuffix {
		return fail(fmt.Errorf("columns %s overlap but suffixes are equal (%q)", names(overlap), opt.LeftSuffix))
	}

	type src struct {
		right bool
		col   dataset.Column
	}
	var (
		out     []string
		sources []src
	)
	for i := 0; i < left.NumCols(); i++ {
		c := left.ColumnAt(i)
		name := c.Name
		if overlap[name] {
			name += opt.LeftSuffix
		}
		out = append(out, name)
		sources = append(sources, src{col: c})
	}
	for i := 0; i < right.NumCols(); i++ {
		c := right.ColumnAt(i)
		if c.Name == keys.Right && (sharedKey || !opt.KeepRightKey) {
			continue
		}
		name := c.Name
		if overlap[name] {
			name += opt.RightSuffix
		}
		out = append(out, name)
		sources = append(sources, src{right: true, col: c})
	}

	seen := make(map[string]string, len(out))
	for i, n := range out {
		norm := strings.ReplaceAll(n, ".", "_")
		if prev, dup := seen[norm]; dup {
			if prev == n {
				return fail(fmt.Errorf("column %q appears twice after suffixing", n))
			}
			return fail(fmt.Errorf("columns %q and %q both normalize to %q", prev, n, norm))
		}
		seen[norm] = n
		out[i] = norm
	}

	leftRows, rightRows := join(left, right, keys)

	cols := make([]dataset.Column, len(out))
	for j, s := range sources {
		idx := leftRows
		if s.right {
			idx = rightRows
		}
		vals := make([]any, len(idx))
		for r, k := range idx {
			vals[r] = s.col.Values[k]
		}
		cols[j] = dataset.Column{Name: out[j], Values: vals}
	}
	ds, err := dataset.FromColumns(cols)
	if err != nil {
		return fail(err)
	}
	return ds, nil
}

// join returns parallel row indexes into left and right for every matching
// pair, in left order then right order.
func join(left, right *dataset.Dataset, keys Keys) (li, ri []int) {
	rk, _ := right.Column(keys.Right)
	byKey := make(map[string][]int, len(rk.Values))
	for i, v := range rk.Values {
		if k, ok := dataset.KeyOf(v); ok {
			byKey[k] = append(byKey[k], i)
		}
	}
	lk, _ := left.Column(keys.Left)
	for i, v := range lk.Values {
		k, ok := dataset.KeyOf(v)
		if !ok {
			continue
		}
		for _, j := range byKey[k] {
			li = append(li, i)
			ri = append(ri, j)
		}
	}
	return li, ri
}

func names(set map[string]bool) string {
	quoted := make([]string, 0, len(set))
	for _, n := range slices.Sorted(maps.Keys(set)) {
		quoted = append(quoted, strconv.Quote(n))
	}
	return strings.Join(quoted, ", ")
}

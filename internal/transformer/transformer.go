// Package transformer applies an ordered list of declarative transformations
// to a Dataset. Transformation kinds are registered by name (see package
// builtin) and built from config.Transform specs.
package transformer

import (
	"fmt"
	"sort"
	"sync"

	"tabetl/internal/config"
	"tabetl/internal/dataset"
	"tabetl/internal/etlerr"
)

// Transformer turns one dataset into another. Implementations must not
// mutate their input and must preserve row count and row order.
type Transformer interface {
	Name() string
	Apply(*dataset.Dataset) (*dataset.Dataset, error)
}

// Chain is an ordered list of transformers.
type Chain []Transformer

// Apply runs every transformer in order. The first failure stops the chain
// and is returned as an *etlerr.TransformationError naming the kind.
func (c Chain) Apply(in *dataset.Dataset) (*dataset.Dataset, error) {
	out := in
	for _, t := range c {
		next, err := t.Apply(out)
		if err != nil {
			return nil, &etlerr.TransformationError{Kind: t.Name(), Err: err}
		}
		if next.NumRows() != out.NumRows() {
			return nil, &etlerr.TransformationError{
				Kind: t.Name(),
				Err:  fmt.Errorf("row count changed from %d to %d", out.NumRows(), next.NumRows()),
			}
		}
		out = next
	}
	return out, nil
}

// Factory builds a Transformer from its options.
type Factory func(opts config.Options) (Transformer, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register makes a transformation kind available to Build. It panics when
// kind is registered twice.
func Register(kind string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	if _, dup := factories[kind]; dup {
		panic("transformer: Register called twice for " + kind)
	}
	factories[kind] = f
}

// Kinds lists registered kinds in sorted order.
func Kinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Build resolves every spec before any is applied, so an unknown kind or bad
// options anywhere in the list fail the whole list up front.
func Build(specs []config.Transform) (Chain, error) {
	mu.RLock()
	defer mu.RUnlock()

	chain := make(Chain, 0, len(specs))
	for _, s := range specs {
		f, ok := factories[s.Kind]
		if !ok {
			return nil, &etlerr.TransformationError{Kind: s.Kind, Err: etlerr.ErrUnknownKind}
		}
		t, err := f(s.Options)
		if err != nil {
			return nil, &etlerr.TransformationError{Kind: s.Kind, Err: err}
		}
		chain = append(chain, t)
	}
	return chain, nil
}

// Transform builds specs and applies them to ds.
func Transform(ds *dataset.Dataset, specs []config.Transform) (*dataset.Dataset, error) {
	chain, err := Build(specs)
	if err != nil {
		return nil, err
	}
	return chain.Apply(ds)
}

// Package storage writes datasets to sinks.
//
// Backends register a Factory for their kind in init (see package all for
// the blank-import wiring), and callers stay backend-agnostic through Load:
//
//	import _ "tabetl/internal/storage/all"
//
//	err := storage.Load(ctx, ds, storage.Descriptor{Kind: "file", Path: "out.csv"})
//
// Every backend fully replaces the destination; nothing is ever appended.
package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"tabetl/internal/dataset"
	"tabetl/internal/etlerr"
)

// Sink writes one dataset to one destination.
type Sink interface {
	Write(ctx context.Context, ds *dataset.Dataset) error
	Close() error
}

// Factory opens a Sink for d.
type Factory func(ctx context.Context, d Descriptor) (Sink, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register makes a sink kind available to New. Registering a kind twice
// replaces the earlier factory, which lets tests substitute fakes.
func Register(kind string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[kind] = f
}

// Kinds lists the registered sink kinds in sorted order.
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

// ErrUnknownKind is returned by New for kinds nobody registered.
var ErrUnknownKind = errors.New("unknown sink kind")

// New opens the sink described by d.
func New(ctx context.Context, d Descriptor) (Sink, error) {
	mu.RLock()
	f, ok := factories[d.Kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w %q (registered: %v)", ErrUnknownKind, d.Kind, Kinds())
	}
	return f(ctx, d)
}

// Load opens the sink for d, writes ds and closes the sink. Every failure is
// returned as an *etlerr.LoadError naming d without secrets.
func Load(ctx context.Context, ds *dataset.Dataset, d Descriptor) (err error) {
	fail := func(e error) error { return &etlerr.LoadError{Sink: d.String(), Err: e} }

	if ds == nil {
		return fail(errors.New("nil dataset"))
	}
	s, err := New(ctx, d)
	if err != nil {
		return fail(err)
	}
	defer func() {
		if cerr := s.Close(); cerr != nil && err == nil {
			err = fail(fmt.Errorf("close: %w", cerr))
		}
	}()
	if err := s.Write(ctx, ds); err != nil {
		return fail(err)
	}
	return nil
}

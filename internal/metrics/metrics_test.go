package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend is a simple in-memory Backend implementation for tests.
type fakeBackend struct {
	mu sync.Mutex

	counters   []counterCall
	histograms []histCall
	flushCount int
}

type counterCall struct {
	name   string
	delta  float64
	labels Labels
}

type histCall struct {
	name   string
	value  float64
	labels Labels
}

func (f *fakeBackend) IncCounter(name string, delta float64, labels Labels) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counters = append(f.counters, counterCall{name, delta, labels})
}

func (f *fakeBackend) ObserveHistogram(name string, value float64, labels Labels) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.histograms = append(f.histograms, histCall{name, value, labels})
}

func (f *fakeBackend) Flush() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flushCount++
	return nil
}

func install(t *testing.T) *fakeBackend {
	t.Helper()
	orig := current()
	t.Cleanup(func() { SetBackend(orig) })
	fb := &fakeBackend{}
	SetBackend(fb)
	return fb
}

func TestRecordStage_SuccessAndFailure(t *testing.T) {
	fb := install(t)

	RecordStage("transport", "extract", nil, 2*time.Second)
	RecordStage("carts", "load", errors.New("boom"), 1500*time.Millisecond)

	require.Len(t, fb.counters, 2)
	require.Len(t, fb.histograms, 2)

	assert.Equal(t, counterCall{StageTotal, 1, Labels{"job": "transport", "stage": "extract", "status": "success"}}, fb.counters[0])
	assert.Equal(t, StageDurationSeconds, fb.histograms[0].name)
	assert.InDelta(t, 2.0, fb.histograms[0].value, 0.001)

	assert.Equal(t, "failure", fb.counters[1].labels["status"])
	assert.Equal(t, "load", fb.counters[1].labels["stage"])
	assert.InDelta(t, 1.5, fb.histograms[1].value, 0.001)
}

func TestRecordRows(t *testing.T) {
	fb := install(t)

	RecordRows("carts", "extracted", 3)
	RecordRows("carts", "merged", 0)
	RecordRows("carts", "loaded", 5)

	require.Len(t, fb.counters, 2)
	assert.Equal(t, counterCall{RowsTotal, 3, Labels{"job": "carts", "kind": "extracted"}}, fb.counters[0])
	assert.Equal(t, counterCall{RowsTotal, 5, Labels{"job": "carts", "kind": "loaded"}}, fb.counters[1])
}

func TestSetBackendAndFlush(t *testing.T) {
	fb := install(t)

	require.NoError(t, Flush())
	assert.Equal(t, 1, fb.flushCount)

	SetBackend(nil)
	assert.Same(t, fb, current().(*fakeBackend), "SetBackend(nil) must keep the backend")
}

// Package pipeline sequences the extract, merge, transform and load stages
// for the two pipeline variants. Each stage records a tagged Outcome; the
// first failure halts the run and nothing downstream executes.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"tabetl/internal/config"
	"tabetl/internal/dataset"
	"tabetl/internal/datasource/httpds"
	"tabetl/internal/etlerr"
	"tabetl/internal/extract"
	"tabetl/internal/logging"
	"tabetl/internal/merge"
	"tabetl/internal/metrics"
	"tabetl/internal/storage"
	"tabetl/internal/transformer"

	_ "tabetl/internal/transformer/builtin"
)

// Runner executes pipeline runs against one configuration.
type Runner struct {
	cfg    *config.Config
	job    string
	log    *slog.Logger
	clock  clockwork.Clock
	client *httpds.Client
	newID  func() string
}

// Option customizes a Runner.
type Option func(*Runner)

// WithLogger sets the base logger. Run attributes are added to it.
func WithLogger(l *slog.Logger) Option { return func(r *Runner) { r.log = l } }

// WithClock sets the clock used to time stages.
func WithClock(c clockwork.Clock) Option { return func(r *Runner) { r.clock = c } }

// WithHTTPClient replaces the API client built from the http section.
func WithHTTPClient(c *httpds.Client) Option { return func(r *Runner) { r.client = c } }

// WithRunID fixes the run identifier instead of generating one per run.
func WithRunID(id string) Option { return func(r *Runner) { r.newID = func() string { return id } } }

// New returns a Runner for cfg. job names the pipeline variant in logs and
// metrics.
func New(cfg *config.Config, job string, opts ...Option) *Runner {
	r := &Runner{
		cfg:   cfg,
		job:   job,
		log:   slog.Default(),
		clock: clockwork.NewRealClock(),
		newID: func() string { return uuid.NewString() },
	}
	for _, o := range opts {
		o(r)
	}
	if r.client == nil {
		r.client = extract.NewHTTPClient(cfg.HTTP)
	}
	return r
}

// RunTransport reads the configured spreadsheet, applies the configured
// transformations and writes the result to paths.output_data and any extra
// sinks.
func (r *Runner) RunTransport(ctx context.Context) *Report {
	ctx, rep := r.begin(ctx)
	start := r.clock.Now()
	defer r.finish(ctx, rep, start)

	ds, ok := r.extract(ctx, rep, extract.Spreadsheet(r.cfg.Paths.RawData))
	if !ok {
		return rep
	}
	ds, ok = r.transform(ctx, rep, ds)
	if !ok {
		return rep
	}
	r.load(ctx, rep, ds, append([]storage.Descriptor{storage.File(r.cfg.Paths.OutputData)}, r.extraSinks()...))
	return rep
}

// RunCarts fetches carts, then products, joins them, applies the configured
// transformations and uploads the result to the aws section's bucket and any
// extra sinks. A failed carts fetch means products is never requested.
func (r *Runner) RunCarts(ctx context.Context) *Report {
	ctx, rep := r.begin(ctx)
	start := r.clock.Now()
	defer r.finish(ctx, rep, start)

	headers := extract.Headers(r.cfg.HTTP.Headers)
	carts, ok := r.extract(ctx, rep, extract.RecordAPI(r.client, r.cfg.API.CartsURL, r.cfg.API.Carts, headers))
	if !ok {
		return rep
	}
	products, ok := r.extract(ctx, rep, extract.FlatAPI(r.client, r.cfg.API.ProductsURL, r.cfg.API.Products, headers))
	if !ok {
		return rep
	}

	keys, opt := merge.FromConfig(r.cfg.Merge)
	var merged *dataset.Dataset
	err := r.stage(ctx, rep, etlerr.StageMerge, keys.String(), func(context.Context) (int, error) {
		var err error
		merged, err = merge.Merge(carts, products, keys, opt)
		return rowsOf(merged), err
	})
	if err != nil {
		return rep
	}

	ds, ok := r.transform(ctx, rep, merged)
	if !ok {
		return rep
	}
	r.load(ctx, rep, ds, append([]storage.Descriptor{storage.S3FromConfig(r.cfg.AWS)}, r.extraSinks()...))
	return rep
}

func (r *Runner) begin(ctx context.Context) (context.Context, *Report) {
	rep := &Report{RunID: r.newID(), Job: r.job}
	log := r.log.With("run_id", rep.RunID, "job", r.job)
	log.Info("run started")
	return logging.WithContext(ctx, log), rep
}

func (r *Runner) finish(ctx context.Context, rep *Report, start time.Time) {
	log := logging.FromContext(ctx)
	elapsed := r.clock.Since(start)
	if err := rep.Err(); err != nil {
		log.Error("run failed", "stage", etlerr.StageOf(err), "elapsed", elapsed)
		return
	}
	log.Info("run completed", "stages", len(rep.Outcomes), "elapsed", elapsed)
}

func (r *Runner) extract(ctx context.Context, rep *Report, src extract.Source) (*dataset.Dataset, bool) {
	var ds *dataset.Dataset
	err := r.stage(ctx, rep, etlerr.StageExtract, src.String(), func(ctx context.Context) (int, error) {
		var err error
		ds, err = extract.Extract(ctx, src)
		return rowsOf(ds), err
	})
	return ds, err == nil
}

func (r *Runner) transform(ctx context.Context, rep *Report, in *dataset.Dataset) (*dataset.Dataset, bool) {
	specs := r.cfg.Transformations
	var out *dataset.Dataset
	err := r.stage(ctx, rep, etlerr.StageTransform, fmt.Sprintf("%d transformation(s)", len(specs)), func(context.Context) (int, error) {
		var err error
		out, err = transformer.Transform(in, specs)
		return rowsOf(out), err
	})
	return out, err == nil
}

func (r *Runner) load(ctx context.Context, rep *Report, ds *dataset.Dataset, sinks []storage.Descriptor) {
	for _, d := range sinks {
		err := r.stage(ctx, rep, etlerr.StageLoad, d.String(), func(ctx context.Context) (int, error) {
			return ds.NumRows(), storage.Load(ctx, ds, d)
		})
		if err != nil {
			return
		}
	}
}

func (r *Runner) extraSinks() []storage.Descriptor {
	out := make([]storage.Descriptor, 0, len(r.cfg.Sinks))
	for _, s := range r.cfg.Sinks {
		out = append(out, storage.FromConfig(s))
	}
	return out
}

// result is the measured return of one stage function.
type result struct {
	rows    int
	err     error
	elapsed time.Duration
}

// timed runs fn unless ctx is already done and measures it.
func (r *Runner) timed(ctx context.Context, fn func(context.Context) (int, error)) result {
	start := r.clock.Now()
	res := result{err: ctx.Err()}
	if res.err == nil {
		res.rows, res.err = fn(ctx)
	}
	res.elapsed = r.clock.Since(start)
	if res.err != nil {
		res.rows = 0
	}
	return res
}

// stage runs fn, records its Outcome in rep and logs it.
func (r *Runner) stage(ctx context.Context, rep *Report, stage etlerr.Stage, target string, fn func(context.Context) (int, error)) error {
	return r.record(ctx, rep, stage, target, r.timed(ctx, fn))
}

// record appends the Outcome of res to rep and logs it once: at info on
// success, at error with the cause on failure. It returns the stage error.
func (r *Runner) record(ctx context.Context, rep *Report, stage etlerr.Stage, target string, res result) error {
	rep.Outcomes = append(rep.Outcomes, Outcome{Stage: stage, Target: target, Rows: res.rows, Duration: res.elapsed, Err: res.err})
	metrics.RecordStage(r.job, string(stage), res.err, res.elapsed)

	log := logging.FromContext(ctx)
	attrs := []any{"stage", string(stage), targetKey(stage), target, "elapsed", res.elapsed}
	if res.err != nil {
		log.Error("stage failed", append(attrs, "error", res.err)...)
		return res.err
	}
	metrics.RecordRows(r.job, rowKind(stage), res.rows)
	log.Info("stage completed", append(attrs, "rows", res.rows)...)
	return nil
}

func targetKey(s etlerr.Stage) string {
	switch s {
	case etlerr.StageExtract:
		return "source"
	case etlerr.StageLoad:
		return "sink"
	case etlerr.StageMerge:
		return "keys"
	default:
		return "target"
	}
}

func rowKind(s etlerr.Stage) string {
	switch s {
	case etlerr.StageExtract:
		return "extracted"
	case etlerr.StageTransform:
		return "transformed"
	case etlerr.StageMerge:
		return "merged"
	default:
		return "loaded"
	}
}

func rowsOf(ds *dataset.Dataset) int {
	if ds == nil {
		return 0
	}
	return ds.NumRows()
}

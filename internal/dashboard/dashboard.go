// Package dashboard owns the application state and runs the render pipeline:
// filter, feed, metrics, charts, then an asynchronous anomaly request.
package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kiranshivaraju/logpulse/internal/anomaly"
	"github.com/kiranshivaraju/logpulse/internal/charts"
	"github.com/kiranshivaraju/logpulse/internal/dataset"
	"github.com/kiranshivaraju/logpulse/internal/feed"
	"github.com/kiranshivaraju/logpulse/internal/filter"
	"github.com/kiranshivaraju/logpulse/internal/generator"
	"github.com/kiranshivaraju/logpulse/internal/logstore"
	"github.com/kiranshivaraju/logpulse/internal/metrics"
	"github.com/kiranshivaraju/logpulse/pkg/models"
)

// ErrNotReady is returned for interactions that arrive while the dataset is
// still loading.
var ErrNotReady = errors.New("dashboard is still loading")

// State is the orchestrator lifecycle. Loading moves to Ready exactly once.
type State int32

const (
	StateLoading State = iota
	StateReady
)

func (s State) String() string {
	if s == StateReady {
		return "ready"
	}
	return "loading"
}

// Display is the rendering surface the pipeline draws on.
type Display interface {
	charts.Renderer
	SetFeed(rows []feed.Row)
	SetMetrics(m metrics.Display)
	SetAnalysis(report *models.AnalysisReport)
	// Publish marks the end of a render.
	Publish()
}

// Config tunes the pipeline.
type Config struct {
	Location     *time.Location
	FeedLimit    int
	NumericHours bool

	// Window is how many of the most recent filtered entries are analyzed.
	Window         int
	AnomalyTimeout time.Duration
	// DiscardStale drops anomaly responses older than the last one applied.
	// When false, whichever response resolves last wins.
	DiscardStale bool

	// GeneratorInterval is the tick period; zero disables generation.
	GeneratorInterval time.Duration
}

// Dashboard is the orchestrator. Pipeline runs are serialized; anomaly
// requests run on their own goroutines and never block a pipeline run.
type Dashboard struct {
	cfg      Config
	loader   dataset.Loader
	analyzer anomaly.Analyzer
	display  Display
	gen      *generator.Generator

	state atomic.Int32

	mu       sync.Mutex
	store    *logstore.Store
	criteria filter.Criteria
	runCtx   context.Context
	stopped  bool

	issued    atomic.Uint64
	appliedMu sync.Mutex
	applied   uint64

	inflight sync.WaitGroup
}

// New creates a Dashboard in the Loading state. gen may be nil, in which case
// no entries are generated.
func New(cfg Config, loader dataset.Loader, analyzer anomaly.Analyzer, display Display, gen *generator.Generator) *Dashboard {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.FeedLimit <= 0 {
		cfg.FeedLimit = feed.DefaultLimit
	}
	if cfg.Window <= 0 {
		cfg.Window = 50
	}
	return &Dashboard{
		cfg:      cfg,
		loader:   loader,
		analyzer: analyzer,
		display:  display,
		gen:      gen,
		store:    logstore.New(nil),
	}
}

// Run loads the dataset, renders once and then drives the generator until ctx
// is cancelled. A load failure is logged and the dashboard becomes Ready with
// an empty store. Run waits for in-flight anomaly requests before returning.
func (d *Dashboard) Run(ctx context.Context) error {
	entries, err := d.loader.Load(ctx)
	if err != nil {
		slog.Error("failed to load dataset", "source", d.loader.Describe(), "error", err)
		entries = nil
	} else {
		slog.Info("dataset loaded", "source", d.loader.Describe(), "count", len(entries))
	}

	d.mu.Lock()
	d.store = logstore.New(entries)
	d.runCtx = ctx
	d.state.Store(int32(StateReady))
	d.refreshLocked()
	d.mu.Unlock()

	if d.gen != nil && d.cfg.GeneratorInterval > 0 {
		d.gen.Run(ctx, d.cfg.GeneratorInterval, d.Ingest)
	} else {
		<-ctx.Done()
	}

	d.mu.Lock()
	d.stopped = true
	d.mu.Unlock()
	d.inflight.Wait()
	return nil
}

// State reports the lifecycle state.
func (d *Dashboard) State() State {
	return State(d.state.Load())
}

// SetCriteria replaces the filter criteria and re-runs the pipeline.
func (d *Dashboard) SetCriteria(c filter.Criteria) error {
	if d.State() != StateReady {
		return ErrNotReady
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.criteria = c.Normalize()
	d.refreshLocked()
	return nil
}

// Criteria returns the criteria the current view was built with.
func (d *Dashboard) Criteria() filter.Criteria {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.criteria
}

// Ingest appends e and re-runs the pipeline with unchanged criteria. It is the
// generator's emit callback.
func (d *Dashboard) Ingest(e models.LogEntry) {
	if d.State() != StateReady {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.store.Append(e)
	d.refreshLocked()
}

// Len returns the size of the full log collection.
func (d *Dashboard) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.store.Len()
}

// Filtered returns a copy of the last limit entries of the filtered view, in
// arrival order. A non-positive limit returns the whole view.
func (d *Dashboard) Filtered(limit int) []models.LogEntry {
	d.mu.Lock()
	defer d.mu.Unlock()
	view := d.store.Filtered()
	if limit <= 0 {
		limit = len(view)
	}
	return logstore.Tail(view, limit)
}

// refreshLocked runs one pipeline pass. d.mu must be held.
func (d *Dashboard) refreshLocked() {
	view := filter.Apply(d.store.Entries(), d.criteria)
	d.store.SetFiltered(view)

	d.display.SetFeed(feed.Project(view, d.cfg.FeedLimit, d.cfg.Location))
	d.display.SetMetrics(metrics.Format(metrics.Compute(view)))
	charts.Draw(d.display, charts.Build(view, charts.Options{
		Location:     d.cfg.Location,
		NumericHours: d.cfg.NumericHours,
	}))
	d.display.Publish()

	d.requestAnalysis(logstore.Tail(view, d.cfg.Window))
}

// requestAnalysis must be called with d.mu held.
func (d *Dashboard) requestAnalysis(window []models.LogEntry) {
	if d.stopped {
		return
	}
	seq := d.issued.Add(1)
	parent := d.runCtx

	d.inflight.Add(1)
	go func() {
		defer d.inflight.Done()

		ctx, cancel := d.requestContext(parent)
		defer cancel()

		report, err := d.analyzer.Analyze(ctx, window)
		if err != nil {
			if parent.Err() != nil {
				return
			}
			slog.Error("anomaly analysis failed", "seq", seq, "error", err)
			return
		}
		d.applyAnalysis(seq, report)
	}()
}

func (d *Dashboard) requestContext(parent context.Context) (context.Context, context.CancelFunc) {
	if d.cfg.AnomalyTimeout > 0 {
		return context.WithTimeout(parent, d.cfg.AnomalyTimeout)
	}
	return context.WithCancel(parent)
}

func (d *Dashboard) applyAnalysis(seq uint64, report *models.AnalysisReport) {
	d.appliedMu.Lock()
	defer d.appliedMu.Unlock()

	if d.cfg.DiscardStale && seq <= d.applied {
		slog.Debug("discarding stale anomaly response", "seq", seq, "applied", d.applied)
		return
	}
	if seq > d.applied {
		d.applied = seq
	}

	d.display.SetAnalysis(report)
	d.display.Publish()
}

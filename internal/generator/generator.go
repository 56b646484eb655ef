// Package generator produces synthetic log entries, either on a fixed
// interval for the live dashboard or in bulk for a static dataset.
package generator

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/kiranshivaraju/logpulse/pkg/models"
)

// Modes of message selection.
const (
	ModeFixed   = "fixed"
	ModeCatalog = "catalog"
)

// DefaultInterval is how often the live generator fires.
const DefaultInterval = 5 * time.Second

// Template is the level and message every fixed-mode entry carries.
type Template struct {
	Level   string
	Message string
}

// DefaultTemplate is the fixed-mode entry shape.
var DefaultTemplate = Template{Level: models.LevelInfo, Message: "GET /api/data 200 0.045s"}

// Generator builds synthetic entries. It is not safe for concurrent use.
type Generator struct {
	mode     string
	template Template
	sources  []string
	rng      *rand.Rand
	now      func() time.Time
	loc      *time.Location
}

// Option configures a Generator.
type Option func(*Generator)

// WithMode selects ModeFixed or ModeCatalog.
func WithMode(mode string) Option {
	return func(g *Generator) { g.mode = mode }
}

// WithTemplate overrides the fixed-mode template.
func WithTemplate(t Template) Option {
	return func(g *Generator) { g.template = t }
}

// WithRand sets the random source, for reproducible output.
func WithRand(r *rand.Rand) Option {
	return func(g *Generator) { g.rng = r }
}

// WithClock sets the time source used for live entries.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// WithLocation sets the timezone timestamps are written in.
func WithLocation(loc *time.Location) Option {
	return func(g *Generator) { g.loc = loc }
}

// New returns a Generator in fixed mode with the default template.
func New(opts ...Option) (*Generator, error) {
	g := &Generator{
		mode:     ModeFixed,
		template: DefaultTemplate,
		sources:  Sources,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		now:      time.Now,
		loc:      time.Local,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.mode != ModeFixed && g.mode != ModeCatalog {
		return nil, fmt.Errorf("unknown generator mode %q: must be one of fixed, catalog", g.mode)
	}
	return g, nil
}

// Next builds an entry stamped with the current time.
func (g *Generator) Next() models.LogEntry {
	return g.At(g.now())
}

// At builds an entry stamped with ts.
func (g *Generator) At(ts time.Time) models.LogEntry {
	source := g.sources[g.rng.Intn(len(g.sources))]
	level, msg := g.template.Level, g.template.Message
	if g.mode == ModeCatalog {
		level = Levels[g.rng.Intn(len(Levels))]
		msgs := Catalog[source]
		msg = msgs[g.rng.Intn(len(msgs))]
	}
	return models.LogEntry{
		Timestamp: models.FormatTimestamp(ts, g.loc),
		Source:    source,
		Level:     level,
		Message:   msg,
	}
}

// Run calls emit with a fresh entry every interval until ctx is done.
func (g *Generator) Run(ctx context.Context, interval time.Duration, emit func(models.LogEntry)) {
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			emit(g.Next())
		}
	}
}

// Dataset builds count catalog-style entries starting at start, each
// 1 to 5 seconds after the previous one.
func (g *Generator) Dataset(count int, start time.Time) []models.LogEntry {
	out := make([]models.LogEntry, 0, count)
	ts := start
	for i := 0; i < count; i++ {
		source := g.sources[g.rng.Intn(len(g.sources))]
		msgs := Catalog[source]
		out = append(out, models.LogEntry{
			Timestamp: models.FormatTimestamp(ts, g.loc),
			Source:    source,
			Level:     Levels[g.rng.Intn(len(Levels))],
			Message:   msgs[g.rng.Intn(len(msgs))],
		})
		ts = ts.Add(time.Duration(1+g.rng.Intn(5)) * time.Second)
	}
	return out
}

// Package board holds the rendered dashboard: the four metric cards, the log
// feed, the anomaly list and both chart series. It is the concrete display the
// orchestrator draws on, and it publishes a snapshot to subscribers each time
// a render completes.
package board

import (
	"strconv"
	"sync"
	"time"

	"github.com/kiranshivaraju/logpulse/internal/charts"
	"github.com/kiranshivaraju/logpulse/internal/feed"
	"github.com/kiranshivaraju/logpulse/internal/metrics"
	"github.com/kiranshivaraju/logpulse/pkg/models"
)

// AnomalyClass is the CSS class every anomaly row is rendered with.
const AnomalyClass = "anomaly-item anomaly-item--warning"

// AnomalyRow is one rendered entry of the anomaly list.
type AnomalyRow struct {
	Source  string   `json:"source"`
	Level   string   `json:"level"`
	Message string   `json:"message"`
	Reason  string   `json:"reason"`
	Score   *float64 `json:"score,omitempty"`
	Class   string   `json:"class"`
}

// Snapshot is an immutable copy of the board at one version.
type Snapshot struct {
	Version           uint64                `json:"version"`
	UpdatedAt         time.Time             `json:"updated_at"`
	Metrics           metrics.Display       `json:"metrics"`
	Feed              []feed.Row            `json:"feed"`
	Anomalies         []AnomalyRow          `json:"anomalies"`
	Clusters          []models.ErrorCluster `json:"clusters,omitempty"`
	Sentiment         *models.Sentiment     `json:"sentiment,omitempty"`
	LogVolume         charts.Series         `json:"log_volume"`
	ErrorDistribution charts.Series         `json:"error_distribution"`
}

// Board is safe for concurrent use. Each setter replaces the element it
// names and bumps the version; Publish hands the current state to
// subscribers.
type Board struct {
	mu      sync.Mutex
	now     func() time.Time
	current Snapshot
	subs    map[*Subscription]struct{}
}

// New returns an empty board. Metric cards start at the values an empty
// dataset renders.
func New() *Board {
	return &Board{
		now: time.Now,
		current: Snapshot{
			Metrics:   metrics.Format(metrics.Compute(nil)),
			Feed:      []feed.Row{},
			Anomalies: []AnomalyRow{},
			LogVolume: charts.Series{Labels: []string{}, Counts: []int{}},
			ErrorDistribution: charts.Series{
				Labels: []string{},
				Counts: []int{},
			},
		},
		subs: make(map[*Subscription]struct{}),
	}
}

// SetFeed replaces the log feed.
func (b *Board) SetFeed(rows []feed.Row) {
	b.update(func(s *Snapshot) {
		s.Feed = append([]feed.Row{}, rows...)
	})
}

// SetMetrics replaces all four metric cards.
func (b *Board) SetMetrics(m metrics.Display) {
	b.update(func(s *Snapshot) {
		s.Metrics = m
	})
}

// SetAnalysis replaces the anomaly list with the report's anomalies and sets
// the active anomalies card to their count.
func (b *Board) SetAnalysis(report *models.AnalysisReport) {
	rows := make([]AnomalyRow, 0, len(report.Anomalies))
	for _, a := range report.Anomalies {
		rows = append(rows, AnomalyRow{
			Source:  a.Log.Source,
			Level:   a.Log.Level,
			Message: a.Log.Message,
			Reason:  a.Reason,
			Score:   a.AnomalyScore,
			Class:   AnomalyClass,
		})
	}

	b.update(func(s *Snapshot) {
		s.Anomalies = rows
		s.Clusters = append([]models.ErrorCluster(nil), report.Clusters...)
		s.Sentiment = report.Sentiment
		s.Metrics.ActiveAnomalies = strconv.Itoa(len(rows))
	})
}

// SetLineSeries implements charts.Renderer for the hourly volume chart.
func (b *Board) SetLineSeries(labels []string, counts []int) {
	b.update(func(s *Snapshot) {
		s.LogVolume = copySeries(labels, counts)
	})
}

// SetPieSeries implements charts.Renderer for the error distribution chart.
func (b *Board) SetPieSeries(labels []string, counts []int) {
	b.update(func(s *Snapshot) {
		s.ErrorDistribution = copySeries(labels, counts)
	})
}

// Snapshot returns the current state.
func (b *Board) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}

// Publish sends the current state to every subscriber.
func (b *Board) Publish() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for sub := range b.subs {
		sub.offer(b.current)
	}
}

func (b *Board) update(fn func(*Snapshot)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fn(&b.current)
	b.current.Version++
	b.current.UpdatedAt = b.now()
}

func copySeries(labels []string, counts []int) charts.Series {
	return charts.Series{
		Labels: append([]string{}, labels...),
		Counts: append([]int{}, counts...),
	}
}

var _ charts.Renderer = (*Board)(nil)

package mock

import (
	"context"
	"sync"

	"github.com/kiranshivaraju/logpulse/internal/anomaly"
	"github.com/kiranshivaraju/logpulse/pkg/models"
)

// Analyzer satisfies anomaly.Analyzer for testing and records every window
// it receives.
type Analyzer struct {
	AnalyzeFunc func(ctx context.Context, logs []models.LogEntry) (*models.AnalysisReport, error)

	mu    sync.Mutex
	calls [][]models.LogEntry
}

func (m *Analyzer) Analyze(ctx context.Context, logs []models.LogEntry) (*models.AnalysisReport, error) {
	m.mu.Lock()
	m.calls = append(m.calls, append([]models.LogEntry(nil), logs...))
	m.mu.Unlock()

	if m.AnalyzeFunc != nil {
		return m.AnalyzeFunc(ctx, logs)
	}
	return &models.AnalysisReport{Anomalies: []models.AnomalyResult{}}, nil
}

// Calls returns the windows passed to Analyze so far.
func (m *Analyzer) Calls() [][]models.LogEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]models.LogEntry(nil), m.calls...)
}

// NewAnalyzer returns an Analyzer that flags every ERROR entry of the window.
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		AnalyzeFunc: func(_ context.Context, logs []models.LogEntry) (*models.AnalysisReport, error) {
			report := &models.AnalysisReport{Anomalies: []models.AnomalyResult{}}
			for _, l := range logs {
				if l.Level == models.LevelError {
					report.Anomalies = append(report.Anomalies, models.AnomalyResult{Log: l, Reason: "Error level log"})
				}
			}
			return report, nil
		},
	}
}

// NewFailingAnalyzer returns an Analyzer that always returns err.
func NewFailingAnalyzer(err error) *Analyzer {
	return &Analyzer{
		AnalyzeFunc: func(_ context.Context, _ []models.LogEntry) (*models.AnalysisReport, error) {
			return nil, err
		},
	}
}

// NewBlockingAnalyzer returns an Analyzer that waits for release (or context
// cancellation) before answering with report.
func NewBlockingAnalyzer(release <-chan struct{}, report *models.AnalysisReport) *Analyzer {
	return &Analyzer{
		AnalyzeFunc: func(ctx context.Context, _ []models.LogEntry) (*models.AnalysisReport, error) {
			select {
			case <-release:
				return report, nil
			case <-ctx.Done():
				return nil, anomaly.ErrServiceTimeout
			}
		},
	}
}

// Compile-time check that Analyzer implements anomaly.Analyzer.
var _ anomaly.Analyzer = (*Analyzer)(nil)

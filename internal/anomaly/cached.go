package anomaly

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/kiranshivaraju/logpulse/internal/cache"
	"github.com/kiranshivaraju/logpulse/pkg/models"
)

// CachedAnalyzer answers repeated identical windows from the cache instead of
// asking the analysis service again. Cache failures fall through to the
// wrapped Analyzer.
type CachedAnalyzer struct {
	next  Analyzer
	cache cache.Cache
	ttl   time.Duration
}

// NewCachedAnalyzer wraps next with a response cache holding reports for ttl.
func NewCachedAnalyzer(next Analyzer, c cache.Cache, ttl time.Duration) *CachedAnalyzer {
	return &CachedAnalyzer{next: next, cache: c, ttl: ttl}
}

func (a *CachedAnalyzer) Analyze(ctx context.Context, logs []models.LogEntry) (*models.AnalysisReport, error) {
	key, err := windowKey(logs)
	if err != nil {
		return a.next.Analyze(ctx, logs)
	}

	var cached models.AnalysisReport
	found, err := cache.GetJSON(ctx, a.cache, key, &cached)
	if err != nil {
		slog.Warn("anomaly cache read failed", "error", err)
	}
	if found {
		return &cached, nil
	}

	report, err := a.next.Analyze(ctx, logs)
	if err != nil {
		return nil, err
	}
	if err := cache.SetJSON(ctx, a.cache, key, report, a.ttl); err != nil {
		slog.Warn("anomaly cache write failed", "error", err)
	}
	return report, nil
}

// windowKey is the cache key of a log window: a SHA-256 over its JSON form.
func windowKey(logs []models.LogEntry) (string, error) {
	data, err := json.Marshal(logs)
	if err != nil {
		return "", err
	}
	return cache.AnomalyWindowKey(fmt.Sprintf("%x", sha256.Sum256(data))), nil
}

var _ Analyzer = (*CachedAnalyzer)(nil)

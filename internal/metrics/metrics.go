// Package metrics reduces the filtered view into the dashboard's four
// scalar metrics.
package metrics

import (
	"fmt"
	"math"
	"regexp"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/kiranshivaraju/logpulse/pkg/models"
)

const (
	minHealthPct = 50
	maxHealthPct = 100
)

// reResponseTime matches the first decimal-seconds token, e.g. "0.045s".
var reResponseTime = regexp.MustCompile(`(\d+\.\d+)s`)

// Snapshot is the set of metrics derived from one filtered view.
type Snapshot struct {
	TotalLogs         int     `json:"total_logs"`
	ErrorCount        int     `json:"error_count"`
	SystemHealthPct   float64 `json:"system_health_pct"`
	AvgResponseTimeMs float64 `json:"avg_response_time_ms"`
}

// Compute derives a Snapshot from view. An empty view yields zero counts,
// 100% health and a zero average.
func Compute(view []models.LogEntry) Snapshot {
	var (
		errors  int
		rtSum   float64
		rtCount int
	)
	for _, e := range view {
		if e.Level == models.LevelError {
			errors++
		}
		if ms, ok := ResponseTimeMs(e.Message); ok {
			rtSum += ms
			rtCount++
		}
	}

	total := len(view)
	denom := total
	if denom == 0 {
		denom = 1
	}
	health := 100 - float64(errors)/float64(denom)*100
	health = math.Max(minHealthPct, math.Min(maxHealthPct, health))

	var avg float64
	if rtCount > 0 {
		avg = rtSum / float64(rtCount)
	}

	return Snapshot{
		TotalLogs:         total,
		ErrorCount:        errors,
		SystemHealthPct:   health,
		AvgResponseTimeMs: avg,
	}
}

// ResponseTimeMs extracts the first "<digits>.<digits>s" token of msg in
// milliseconds.
func ResponseTimeMs(msg string) (float64, bool) {
	m := reResponseTime.FindStringSubmatch(msg)
	if m == nil {
		return 0, false
	}
	secs, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return secs * 1000, true
}

// HealthPct is the health percentage rounded for display.
func (s Snapshot) HealthPct() int { return round(s.SystemHealthPct) }

// AvgResponseMs is the average response time rounded for display.
func (s Snapshot) AvgResponseMs() int { return round(s.AvgResponseTimeMs) }

// Display holds the formatted text of the four metric cards.
type Display struct {
	TotalLogs       string `json:"total_logs"`
	ActiveAnomalies string `json:"active_anomalies"`
	SystemHealth    string `json:"system_health"`
	AvgResponseTime string `json:"avg_response_time"`
}

var printer = message.NewPrinter(language.English)

// Format renders s the way the metric cards show it: "1,234", "3", "67%", "45ms".
// The anomaly card is seeded with the error count.
func Format(s Snapshot) Display {
	return Display{
		TotalLogs:       printer.Sprintf("%d", s.TotalLogs),
		ActiveAnomalies: strconv.Itoa(s.ErrorCount),
		SystemHealth:    fmt.Sprintf("%d%%", s.HealthPct()),
		AvgResponseTime: fmt.Sprintf("%dms", s.AvgResponseMs()),
	}
}

// round rounds half up, matching the dashboard's display rounding.
func round(v float64) int {
	return int(math.Floor(v + 0.5))
}

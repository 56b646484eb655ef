// Package feed projects the tail of the filtered view into display rows.
package feed

import (
	"strings"
	"time"

	"github.com/kiranshivaraju/logpulse/internal/logstore"
	"github.com/kiranshivaraju/logpulse/pkg/models"
)

// DefaultLimit is how many entries the feed shows.
const DefaultLimit = 50

// Row is one rendered feed line.
type Row struct {
	Time       string `json:"time"`
	Level      string `json:"level"`
	LevelClass string `json:"level_class"`
	Source     string `json:"source"`
	Message    string `json:"message"`
}

// Project returns up to limit of the most recently appended entries of view,
// most recent first. A non-positive limit means DefaultLimit.
func Project(view []models.LogEntry, limit int, loc *time.Location) []Row {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if loc == nil {
		loc = time.Local
	}

	tail := logstore.Tail(view, limit)
	rows := make([]Row, 0, len(tail))
	for i := len(tail) - 1; i >= 0; i-- {
		rows = append(rows, NewRow(tail[i], loc))
	}
	return rows
}

// NewRow renders a single entry. The time column is the local time of day,
// or the raw timestamp when it cannot be parsed.
func NewRow(e models.LogEntry, loc *time.Location) Row {
	clock := e.Timestamp
	if ts, err := e.Time(loc); err == nil {
		clock = ts.Format("15:04:05")
	}
	return Row{
		Time:       clock,
		Level:      e.Level,
		LevelClass: "log-level--" + strings.ToLower(e.Level),
		Source:     e.Source,
		Message:    e.Message,
	}
}

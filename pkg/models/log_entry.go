// Package models contains shared data models used across the LogPulse codebase.
package models

// Log levels known to the dashboard. Entries may carry other levels; they are
// passed through untouched.
const (
	LevelInfo     = "INFO"
	LevelWarn     = "WARN"
	LevelError    = "ERROR"
	LevelCritical = "CRITICAL"
)

// LogEntry is one immutable record of a system event.
// Timestamp keeps the dataset's textual form (second precision, e.g.
// "2025-08-10 00:00:05"); parsing happens where an hour or time-of-day is needed.
type LogEntry struct {
	Timestamp string `json:"timestamp"`
	Source    string `json:"source"`
	Level     string `json:"level"`
	Message   string `json:"message"`
}

// Dataset is the wire shape of the static dataset resource.
type Dataset struct {
	Logs []LogEntry `json:"logs"`
}

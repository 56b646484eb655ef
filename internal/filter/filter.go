// Package filter derives the filtered view of the log store from the
// dashboard's search, level and source controls.
package filter

import (
	"strings"

	"github.com/kiranshivaraju/logpulse/pkg/models"
)

// Criteria is the current value of the three filter controls.
type Criteria struct {
	Search string `json:"search"`
	Level  string `json:"level"`
	Source string `json:"source"`
}

// Normalize trims all fields and lower-cases the search text, the same way
// the controls' values are read before filtering.
func (c Criteria) Normalize() Criteria {
	return Criteria{
		Search: strings.ToLower(strings.TrimSpace(c.Search)),
		Level:  strings.TrimSpace(c.Level),
		Source: strings.TrimSpace(c.Source),
	}
}

// IsEmpty reports whether no control restricts the view.
func (c Criteria) IsEmpty() bool {
	n := c.Normalize()
	return n.Search == "" && n.Level == "" && n.Source == ""
}

// Match reports whether e satisfies all three predicates. c must be normalized.
func (c Criteria) Match(e models.LogEntry) bool {
	if c.Search != "" &&
		!strings.Contains(strings.ToLower(e.Message), c.Search) &&
		!strings.Contains(strings.ToLower(e.Source), c.Search) {
		return false
	}
	if c.Level != "" && e.Level != c.Level {
		return false
	}
	if c.Source != "" && e.Source != c.Source {
		return false
	}
	return true
}

// Apply returns every entry of entries matching c, in the original order.
// The result never aliases entries.
func Apply(entries []models.LogEntry, c Criteria) []models.LogEntry {
	c = c.Normalize()
	out := make([]models.LogEntry, 0, len(entries))
	for _, e := range entries {
		if c.Match(e) {
			out = append(out, e)
		}
	}
	return out
}

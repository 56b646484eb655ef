// Package logstore holds the session's log collection and its filtered view.
package logstore

import "github.com/kiranshivaraju/logpulse/pkg/models"

// Store is an append-only, insertion-ordered collection of log entries plus
// the currently filtered subset. It is not safe for concurrent use; the
// dashboard orchestrator serialises access.
type Store struct {
	entries  []models.LogEntry
	filtered []models.LogEntry
}

// New returns a Store seeded with entries. The filtered view starts as a copy
// of the full collection.
func New(entries []models.LogEntry) *Store {
	s := &Store{entries: append([]models.LogEntry(nil), entries...)}
	s.filtered = s.All()
	return s
}

// Append adds an entry to the end of the collection. The filtered view is not
// touched until the next SetFiltered.
func (s *Store) Append(e models.LogEntry) {
	s.entries = append(s.entries, e)
}

// Len returns the number of entries in the full collection.
func (s *Store) Len() int { return len(s.entries) }

// All returns a copy of the full collection in arrival order.
func (s *Store) All() []models.LogEntry {
	return append([]models.LogEntry(nil), s.entries...)
}

// Entries exposes the backing slice for read-only scans.
func (s *Store) Entries() []models.LogEntry { return s.entries }

// SetFiltered replaces the filtered view wholesale.
func (s *Store) SetFiltered(view []models.LogEntry) {
	s.filtered = view
}

// Filtered returns the current filtered view. Callers must not modify it.
func (s *Store) Filtered() []models.LogEntry { return s.filtered }

// Tail returns the last n entries of the filtered view in arrival order.
func (s *Store) Tail(n int) []models.LogEntry {
	return Tail(s.filtered, n)
}

// Tail returns the last n entries of view, or all of them when fewer exist.
func Tail(view []models.LogEntry, n int) []models.LogEntry {
	if n <= 0 {
		return []models.LogEntry{}
	}
	if len(view) <= n {
		return append([]models.LogEntry(nil), view...)
	}
	return append([]models.LogEntry(nil), view[len(view)-n:]...)
}

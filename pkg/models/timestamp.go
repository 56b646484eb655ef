package models

import (
	"fmt"
	"time"
)

// TimestampLayout is the dataset's timestamp format.
const TimestampLayout = "2006-01-02 15:04:05"

// zoneless layouts are interpreted in the caller's location; the rest carry
// their own offset.
var (
	zonelessLayouts = []string{TimestampLayout, "2006-01-02T15:04:05", "2006-01-02T15:04:05.999999999"}
	zonedLayouts    = []string{time.RFC3339Nano, "2006-01-02 15:04:05Z07:00"}
)

// FormatTimestamp renders t in the dataset's format within loc.
func FormatTimestamp(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(TimestampLayout)
}

// ParseTimestamp parses a dataset timestamp. Zoneless values are taken to be
// in loc; values with an offset are converted to loc.
func ParseTimestamp(s string, loc *time.Location) (time.Time, error) {
	for _, layout := range zonelessLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.In(loc), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

// Time parses e.Timestamp in loc.
func (e LogEntry) Time(loc *time.Location) (time.Time, error) {
	return ParseTimestamp(e.Timestamp, loc)
}

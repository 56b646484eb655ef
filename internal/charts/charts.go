// Package charts tallies the filtered view into the two distributions the
// dashboard plots: log volume per hour and errors per message key.
package charts

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/kiranshivaraju/logpulse/pkg/models"
)

// Series is one label/count distribution, labels and counts index-aligned.
type Series struct {
	Labels []string `json:"labels"`
	Counts []int    `json:"counts"`
}

// Data holds both distributions built from one filtered view.
type Data struct {
	LogVolume         Series `json:"log_volume"`
	ErrorDistribution Series `json:"error_distribution"`
}

// Renderer is the charting surface. Implementations replace the previously
// drawn series.
type Renderer interface {
	SetLineSeries(labels []string, counts []int)
	SetPieSeries(labels []string, counts []int)
}

// Options controls how distributions are built.
type Options struct {
	// Location is the timezone used for hour-of-day bucketing. Nil means time.Local.
	Location *time.Location
	// NumericHours sorts hour labels as numbers ("2" before "10") instead of
	// as strings ("10" before "2").
	NumericHours bool
}

// Build tallies view into hourly volume and error-key distributions.
// Entries with unparseable timestamps are left out of the hourly volume.
func Build(view []models.LogEntry, opts Options) Data {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}

	hours := make(map[int]int)
	errCounts := make(map[string]int)
	var errKeys []string

	for _, e := range view {
		if ts, err := e.Time(loc); err == nil {
			hours[ts.Hour()]++
		}
		if e.Level == models.LevelError {
			key := ErrorKey(e.Message)
			if _, seen := errCounts[key]; !seen {
				errKeys = append(errKeys, key)
			}
			errCounts[key]++
		}
	}

	return Data{
		LogVolume:         hourSeries(hours, opts.NumericHours),
		ErrorDistribution: keyedSeries(errKeys, errCounts),
	}
}

// Draw pushes both distributions to r.
func Draw(r Renderer, d Data) {
	r.SetLineSeries(d.LogVolume.Labels, d.LogVolume.Counts)
	r.SetPieSeries(d.ErrorDistribution.Labels, d.ErrorDistribution.Counts)
}

// ErrorKey is the text before the first space of msg.
func ErrorKey(msg string) string {
	key, _, _ := strings.Cut(msg, " ")
	return key
}

func hourSeries(hours map[int]int, numeric bool) Series {
	hs := make([]int, 0, len(hours))
	for h := range hours {
		hs = append(hs, h)
	}

	labels := make([]string, len(hs))
	if numeric {
		sort.Ints(hs)
		for i, h := range hs {
			labels[i] = strconv.Itoa(h)
		}
	} else {
		for i, h := range hs {
			labels[i] = strconv.Itoa(h)
		}
		sort.Strings(labels)
	}

	counts := make([]int, len(labels))
	for i, l := range labels {
		h, _ := strconv.Atoi(l)
		counts[i] = hours[h]
	}
	return Series{Labels: labels, Counts: counts}
}

func keyedSeries(keys []string, counts map[string]int) Series {
	s := Series{Labels: make([]string, len(keys)), Counts: make([]int, len(keys))}
	for i, k := range keys {
		s.Labels[i] = k
		s.Counts[i] = counts[k]
	}
	return s
}

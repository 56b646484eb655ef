// Package dataset loads the dashboard's initial log collection from a JSON
// file, an HTTP resource or the log_entries table.
package dataset

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/kiranshivaraju/logpulse/internal/store"
	"github.com/kiranshivaraju/logpulse/pkg/models"
)

// ErrLoadFailure wraps every failure to fetch or parse the dataset.
var ErrLoadFailure = errors.New("dataset load failure")

// Loader fetches the full dataset once.
type Loader interface {
	Load(ctx context.Context) ([]models.LogEntry, error)
	// Describe names the source for logging.
	Describe() string
}

// FileLoader reads a `{"logs": [...]}` document from disk.
type FileLoader struct {
	path string
}

func NewFileLoader(path string) *FileLoader {
	return &FileLoader{path: path}
}

func (l *FileLoader) Load(_ context.Context) ([]models.LogEntry, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadFailure, err)
	}
	defer f.Close()
	return decode(f)
}

func (l *FileLoader) Describe() string { return "file:" + l.path }

// HTTPLoader fetches a `{"logs": [...]}` document with a GET request.
type HTTPLoader struct {
	url    string
	client *http.Client
}

func NewHTTPLoader(url string, timeout time.Duration) *HTTPLoader {
	return &HTTPLoader{url: url, client: &http.Client{Timeout: timeout}}
}

func (l *HTTPLoader) Load(ctx context.Context) ([]models.LogEntry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: building request: %v", ErrLoadFailure, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrLoadFailure, resp.StatusCode)
	}
	return decode(resp.Body)
}

func (l *HTTPLoader) Describe() string { return l.url }

// StoreLoader reads every row of the log_entries table.
type StoreLoader struct {
	store store.Store
}

func NewStoreLoader(s store.Store) *StoreLoader {
	return &StoreLoader{store: s}
}

func (l *StoreLoader) Load(ctx context.Context) ([]models.LogEntry, error) {
	entries, err := l.store.ListLogEntries(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadFailure, err)
	}
	return entries, nil
}

func (l *StoreLoader) Describe() string { return "postgres:log_entries" }

// IsURL reports whether source names an HTTP resource rather than a file.
func IsURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// decode parses a dataset document. A document without a logs key is an
// empty dataset, not an error.
func decode(r io.Reader) ([]models.LogEntry, error) {
	var ds models.Dataset
	if err := json.NewDecoder(r).Decode(&ds); err != nil {
		return nil, fmt.Errorf("%w: decoding dataset: %v", ErrLoadFailure, err)
	}
	if ds.Logs == nil {
		return []models.LogEntry{}, nil
	}
	return ds.Logs, nil
}

var (
	_ Loader = (*FileLoader)(nil)
	_ Loader = (*HTTPLoader)(nil)
	_ Loader = (*StoreLoader)(nil)
)

package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kiranshivaraju/logpulse/internal/api/handler"
	"github.com/kiranshivaraju/logpulse/internal/board"
	"github.com/kiranshivaraju/logpulse/internal/dashboard"
	"github.com/kiranshivaraju/logpulse/internal/filter"
	"github.com/kiranshivaraju/logpulse/internal/metrics"
	"github.com/kiranshivaraju/logpulse/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- fake dashboard ---

type fakeDashboard struct {
	state    dashboard.State
	logs     []models.LogEntry
	criteria filter.Criteria
	setErr   error
}

func (f *fakeDashboard) State() dashboard.State    { return f.state }
func (f *fakeDashboard) Len() int                  { return len(f.logs) }
func (f *fakeDashboard) Criteria() filter.Criteria { return f.criteria }
func (f *fakeDashboard) Filtered(_ int) []models.LogEntry {
	return append([]models.LogEntry(nil), f.logs...)
}
func (f *fakeDashboard) SetCriteria(c filter.Criteria) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.criteria = c.Normalize()
	return nil
}

var _ handler.Dashboard = (*fakeDashboard)(nil)

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

func nLogs(n int) []models.LogEntry {
	out := make([]models.LogEntry, n)
	for i := range out {
		out[i] = models.LogEntry{
			Timestamp: fmt.Sprintf("2025-08-10 00:00:%02d", i%60),
			Source:    "nginx",
			Level:     "INFO",
			Message:   fmt.Sprintf("GET /api/%d 200 0.010s", i),
		}
	}
	return out
}

// --- helpers ---

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	env := struct {
		Data any `json:"data"`
	}{Data: v}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var env struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	return env.Error.Code
}

// ========================================
// Dashboard
// ========================================

func TestDashboardHandler(t *testing.T) {
	b := board.New()
	b.SetMetrics(metrics.Display{TotalLogs: "3", ActiveAnomalies: "1", SystemHealth: "67%", AvgResponseTime: "45ms"})

	rec := httptest.NewRecorder()
	handler.NewDashboardHandler(b)(rec, httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil))

	var snap board.Snapshot
	decodeData(t, rec, &snap)
	assert.Equal(t, "67%", snap.Metrics.SystemHealth)
	assert.Equal(t, uint64(1), snap.Version)
}

// ========================================
// Logs
// ========================================

func TestLogsHandler_DefaultLimit(t *testing.T) {
	d := &fakeDashboard{logs: nLogs(80)}

	rec := httptest.NewRecorder()
	handler.NewLogsHandler(d)(rec, httptest.NewRequest(http.MethodGet, "/api/v1/logs", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var env struct {
		Data []models.LogEntry `json:"data"`
		Meta struct {
			Limit   int  `json:"limit"`
			Total   int  `json:"total"`
			HasNext bool `json:"has_next"`
		} `json:"meta"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))

	assert.Len(t, env.Data, 50)
	assert.Equal(t, "GET /api/30 200 0.010s", env.Data[0].Message)
	assert.Equal(t, "GET /api/79 200 0.010s", env.Data[49].Message)
	assert.Equal(t, 50, env.Meta.Limit)
	assert.Equal(t, 80, env.Meta.Total)
	assert.True(t, env.Meta.HasNext)
}

func TestLogsHandler_CustomLimit(t *testing.T) {
	d := &fakeDashboard{logs: nLogs(5)}

	rec := httptest.NewRecorder()
	handler.NewLogsHandler(d)(rec, httptest.NewRequest(http.MethodGet, "/api/v1/logs?limit=10", nil))

	var logs []models.LogEntry
	decodeData(t, rec, &logs)
	assert.Len(t, logs, 5)
}

func TestLogsHandler_InvalidLimit(t *testing.T) {
	for _, raw := range []string{"0", "-3", "abc"} {
		t.Run(raw, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.NewLogsHandler(&fakeDashboard{})(rec, httptest.NewRequest(http.MethodGet, "/api/v1/logs?limit="+raw, nil))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "INVALID_REQUEST", errorCode(t, rec))
		})
	}
}

// ========================================
// Filter
// ========================================

func TestGetFilterHandler(t *testing.T) {
	d := &fakeDashboard{criteria: filter.Criteria{Search: "mysql", Level: "ERROR"}}

	rec := httptest.NewRecorder()
	handler.NewGetFilterHandler(d)(rec, httptest.NewRequest(http.MethodGet, "/api/v1/filter", nil))

	var got filter.Criteria
	decodeData(t, rec, &got)
	assert.Equal(t, filter.Criteria{Search: "mysql", Level: "ERROR"}, got)
}

func TestSetFilterHandler_NormalizesCriteria(t *testing.T) {
	d := &fakeDashboard{state: dashboard.StateReady}
	body := bytes.NewBufferString(`{"search":"  Timeout ","level":"WARN ","source":" k8s"}`)

	rec := httptest.NewRecorder()
	handler.NewSetFilterHandler(d)(rec, httptest.NewRequest(http.MethodPut, "/api/v1/filter", body))

	var got filter.Criteria
	decodeData(t, rec, &got)
	assert.Equal(t, filter.Criteria{Search: "timeout", Level: "WARN", Source: "k8s"}, got)
}

func TestSetFilterHandler_InvalidBody(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"search":`},
		{"unknown field", `{"service":"api"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.NewSetFilterHandler(&fakeDashboard{})(rec,
				httptest.NewRequest(http.MethodPut, "/api/v1/filter", bytes.NewBufferString(tt.body)))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "INVALID_REQUEST", errorCode(t, rec))
		})
	}
}

func TestSetFilterHandler_Errors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"loading", dashboard.ErrNotReady, http.StatusServiceUnavailable, "DASHBOARD_LOADING"},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &fakeDashboard{setErr: tt.err}
			rec := httptest.NewRecorder()
			handler.NewSetFilterHandler(d)(rec,
				httptest.NewRequest(http.MethodPut, "/api/v1/filter", bytes.NewBufferString(`{"level":"ERROR"}`)))

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, errorCode(t, rec))
		})
	}
}

// ========================================
// Health
// ========================================

func TestHealthHandler_OK(t *testing.T) {
	d := &fakeDashboard{state: dashboard.StateReady, logs: nLogs(3)}

	rec := httptest.NewRecorder()
	handler.NewHealthHandler(d, fakePinger{}, nil, func() int { return 2 })(rec,
		httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	var body map[string]any
	decodeData(t, rec, &body)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "ready", body["state"])
	assert.Equal(t, float64(3), body["logs"])
	assert.Equal(t, float64(2), body["stream_clients"])

	services := body["services"].(map[string]any)
	assert.Equal(t, "ok", services["cache"])
	assert.Equal(t, "disabled", services["database"])
}

func TestHealthHandler_Loading(t *testing.T) {
	rec := httptest.NewRecorder()
	handler.NewHealthHandler(&fakeDashboard{}, nil, nil, nil)(rec,
		httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	var body map[string]any
	decodeData(t, rec, &body)
	assert.Equal(t, "loading", body["state"])
	_, hasClients := body["stream_clients"]
	assert.False(t, hasClients)
}

func TestHealthHandler_Degraded(t *testing.T) {
	d := &fakeDashboard{state: dashboard.StateReady}

	rec := httptest.NewRecorder()
	handler.NewHealthHandler(d, fakePinger{err: errors.New("redis down")}, fakePinger{}, nil)(rec,
		httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "DEGRADED", errorCode(t, rec))
}

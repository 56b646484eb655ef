package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/kiranshivaraju/logpulse/internal/anomaly/mock"
	"github.com/kiranshivaraju/logpulse/internal/api"
	"github.com/kiranshivaraju/logpulse/internal/api/handler"
	mw "github.com/kiranshivaraju/logpulse/internal/api/middleware"
	"github.com/kiranshivaraju/logpulse/internal/board"
	"github.com/kiranshivaraju/logpulse/internal/cache"
	"github.com/kiranshivaraju/logpulse/internal/dashboard"
	"github.com/kiranshivaraju/logpulse/internal/stream"
	"github.com/kiranshivaraju/logpulse/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- stub cache ---

type stubCache struct {
	counters map[string]int64
}

func (c *stubCache) Set(_ context.Context, _ string, _ []byte, _ time.Duration) error { return nil }
func (c *stubCache) Get(_ context.Context, _ string) ([]byte, bool, error)            { return nil, false, nil }
func (c *stubCache) Delete(_ context.Context, _ string) error                         { return nil }
func (c *stubCache) Ping(_ context.Context) error                                     { return nil }
func (c *stubCache) IncrWithExpiry(_ context.Context, key string, _ time.Duration) (int64, error) {
	c.counters[key]++
	return c.counters[key], nil
}

var _ cache.Cache = (*stubCache)(nil)

type staticLoader []models.LogEntry

func (l staticLoader) Load(context.Context) ([]models.LogEntry, error) { return l, nil }
func (l staticLoader) Describe() string                                { return "static" }

var testLogs = staticLoader{
	{Timestamp: "2025-08-10 09:00:00", Source: "nginx", Level: "INFO", Message: "GET /api/users 200 0.045s"},
	{Timestamp: "2025-08-10 09:00:02", Source: "mysql", Level: "ERROR", Message: "Deadlock found when trying to get lock"},
	{Timestamp: "2025-08-10 09:00:05", Source: "app", Level: "WARN", Message: "Slow mysql query detected"},
}

// --- test harness ---

type testServer struct {
	server *httptest.Server
	dash   *dashboard.Dashboard
	board  *board.Board
}

func newTestServer(t *testing.T, rateLimit int) *testServer {
	t.Helper()

	b := board.New()
	d := dashboard.New(dashboard.Config{Location: time.UTC, Window: 50, AnomalyTimeout: time.Second, DiscardStale: true},
		testLogs, mock.NewAnalyzer(), b, nil)
	hub := stream.NewHub(b, d, []string{"*"})

	ctx, cancel := context.WithCancel(context.Background())
	runDone := make(chan struct{})
	go func() {
		defer close(runDone)
		d.Run(ctx)
	}()
	go hub.Run(ctx)
	require.Eventually(t, func() bool { return d.State() == dashboard.StateReady }, time.Second, 5*time.Millisecond)

	router := api.NewRouter(api.Dependencies{
		RateLimit:        mw.NewRateLimit(&stubCache{counters: map[string]int64{}}, rateLimit),
		CORSOrigins:      []string{"http://dashboard.test"},
		HealthHandler:    handler.NewHealthHandler(d, nil, nil, hub.ClientCount),
		DashboardHandler: handler.NewDashboardHandler(b),
		LogsHandler:      handler.NewLogsHandler(d),
		GetFilterHandler: handler.NewGetFilterHandler(d),
		SetFilterHandler: handler.NewSetFilterHandler(d),
		StreamHandler:    hub.ServeWS,
	})
	srv := httptest.NewServer(router)
	t.Cleanup(func() {
		srv.Close()
		cancel()
		<-runDone
	})

	return &testServer{server: srv, dash: d, board: b}
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, ts.server.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func parseBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

// --- router tests ---

func TestRouter_Health(t *testing.T) {
	ts := newTestServer(t, 60)

	resp := ts.do(t, "GET", "/api/v1/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(mw.RequestIDHeader))

	data := parseBody(t, resp)["data"].(map[string]any)
	assert.Equal(t, "ready", data["state"])
	assert.Equal(t, float64(3), data["logs"])
}

func TestRouter_Dashboard(t *testing.T) {
	ts := newTestServer(t, 60)

	resp := ts.do(t, "GET", "/api/v1/dashboard", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data := parseBody(t, resp)["data"].(map[string]any)
	m := data["metrics"].(map[string]any)
	assert.Equal(t, "3", m["total_logs"])
	assert.Equal(t, "67%", m["system_health"])
	assert.Len(t, data["feed"], 3)
}

func TestRouter_FilterRoundTrip(t *testing.T) {
	ts := newTestServer(t, 60)

	resp := ts.do(t, "PUT", "/api/v1/filter", map[string]string{"search": "MySQL"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "60", resp.Header.Get("X-RateLimit-Limit"))

	resp = ts.do(t, "GET", "/api/v1/filter", nil)
	data := parseBody(t, resp)["data"].(map[string]any)
	assert.Equal(t, "mysql", data["search"])

	resp = ts.do(t, "GET", "/api/v1/logs", nil)
	logs := parseBody(t, resp)["data"].([]any)
	require.Len(t, logs, 2)
	assert.Equal(t, "mysql", logs[0].(map[string]any)["source"])
	assert.Equal(t, "app", logs[1].(map[string]any)["source"])

	assert.Equal(t, "2", ts.board.Snapshot().Metrics.TotalLogs)
}

func TestRouter_SetFilterRateLimited(t *testing.T) {
	ts := newTestServer(t, 2)

	for i := 0; i < 2; i++ {
		resp := ts.do(t, "PUT", "/api/v1/filter", map[string]string{"level": "ERROR"})
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp := ts.do(t, "PUT", "/api/v1/filter", map[string]string{"level": "ERROR"})
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	errObj := parseBody(t, resp)["error"].(map[string]any)
	assert.Equal(t, "RATE_LIMIT_EXCEEDED", errObj["code"])

	// Reads are not limited.
	assert.Equal(t, http.StatusOK, ts.do(t, "GET", "/api/v1/logs", nil).StatusCode)
}

func TestRouter_CORSPreflight(t *testing.T) {
	ts := newTestServer(t, 60)

	req, err := http.NewRequest("OPTIONS", ts.server.URL+"/api/v1/filter", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://dashboard.test")
	req.Header.Set("Access-Control-Request-Method", "PUT")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "http://dashboard.test", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestRouter_WebSocketThroughMiddleware(t *testing.T) {
	ts := newTestServer(t, 60)

	url := "ws" + strings.TrimPrefix(ts.server.URL, "http") + "/api/v1/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg struct {
		Type string         `json:"type"`
		Data board.Snapshot `json:"data"`
	}
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, stream.TypeBoard, msg.Type)
	assert.Equal(t, "3", msg.Data.Metrics.TotalLogs)

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "filter", "data": map[string]string{"level": "ERROR"}}))
	require.Eventually(t, func() bool { return ts.dash.Criteria().Level == "ERROR" }, time.Second, 5*time.Millisecond)
}

func TestRouter_NotImplemented(t *testing.T) {
	router := api.NewRouter(api.Dependencies{})

	req := httptest.NewRequest("GET", "/api/v1/dashboard", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotImplemented, w.Code)
}

func TestRouter_NotFound(t *testing.T) {
	router := api.NewRouter(api.Dependencies{})

	req := httptest.NewRequest("GET", "/api/v1/nonexistent", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

// Package anomaly sends a window of log entries to the external analysis
// service and decodes the anomalies it reports.
package anomaly

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/logpulse/pkg/models"
)

// DefaultURL is the analysis endpoint the dashboard talks to out of the box.
const DefaultURL = "http://localhost:5000/api/analyze"

// Analyzer is the analysis boundary. Implementations must be safe for
// concurrent use.
type Analyzer interface {
	Analyze(ctx context.Context, logs []models.LogEntry) (*models.AnalysisReport, error)
}

// HTTPClient implements Analyzer against the service's JSON API.
type HTTPClient struct {
	url    string
	client *http.Client
}

// NewHTTPClient creates a client posting to url. A zero timeout means the
// request is bounded only by its context.
func NewHTTPClient(url string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

type analyzeRequest struct {
	Logs []models.LogEntry `json:"logs"`
}

type analyzeResponse struct {
	Anomalies *[]models.AnomalyResult `json:"anomalies"`
	Clusters  []models.ErrorCluster   `json:"clusters"`
	Sentiment *models.Sentiment       `json:"sentiment"`
}

func (c *HTTPClient) Analyze(ctx context.Context, logs []models.LogEntry) (*models.AnalysisReport, error) {
	if logs == nil {
		logs = []models.LogEntry{}
	}
	body, err := json.Marshal(analyzeRequest{Logs: logs})
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, classifyError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", ErrServiceError, resp.StatusCode)
	}

	var decoded analyzeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if decoded.Anomalies == nil {
		return nil, fmt.Errorf("%w: missing anomalies", ErrInvalidResponse)
	}

	return &models.AnalysisReport{
		Anomalies: *decoded.Anomalies,
		Clusters:  decoded.Clusters,
		Sentiment: decoded.Sentiment,
	}, nil
}

// classifyError maps transport-level errors to sentinel errors.
func classifyError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ErrServiceTimeout, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrServiceTimeout, err)
	}

	return fmt.Errorf("%w: %v", ErrServiceUnreachable, err)
}

// Compile-time check that HTTPClient implements Analyzer.
var _ Analyzer = (*HTTPClient)(nil)

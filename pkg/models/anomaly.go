package models

// AnomalyResult is a log entry flagged by the analysis service, with the reason.
type AnomalyResult struct {
	Log          LogEntry `json:"log"`
	Reason       string   `json:"reason"`
	AnomalyScore *float64 `json:"anomaly_score,omitempty"`
}

// ErrorCluster groups similar WARN/ERROR messages as reported by the analysis service.
type ErrorCluster struct {
	Count         int      `json:"count"`
	SampleMessage string   `json:"sample_message"`
	Sources       []string `json:"sources"`
}

// Sentiment is the analysis service's tone estimate over recent error messages.
type Sentiment struct {
	Sentiment string  `json:"sentiment"`
	Score     float64 `json:"score"`
}

// AnalysisReport is a decoded response of the analysis service.
// Only Anomalies is required; Clusters and Sentiment are optional extras.
type AnalysisReport struct {
	Anomalies []AnomalyResult `json:"anomalies"`
	Clusters  []ErrorCluster  `json:"clusters,omitempty"`
	Sentiment *Sentiment      `json:"sentiment,omitempty"`
}

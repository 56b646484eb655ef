package anomaly

import "errors"

// Sentinel errors for analysis failures.
var (
	ErrServiceUnreachable = errors.New("anomaly service unreachable")
	ErrServiceTimeout     = errors.New("anomaly service timeout")
	ErrServiceError       = errors.New("anomaly service error")
	ErrInvalidResponse    = errors.New("anomaly service returned invalid response")
)

package cache

import "fmt"

func AnomalyWindowKey(windowHash string) string {
	return fmt.Sprintf("anomaly:window:%s", windowHash)
}

func RateLimitKey(clientKey string) string {
	return fmt.Sprintf("ratelimit:%s", clientKey)
}

package handler

import (
	"context"
	"net/http"

	"github.com/kiranshivaraju/logpulse/internal/api/response"
)

// Pinger is a dependency whose connectivity is reported by the health check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewHealthHandler returns an http.HandlerFunc for GET /api/v1/health. Nil
// pingers are reported as disabled. clients may be nil.
func NewHealthHandler(d Dashboard, cache, db Pinger, clients func() int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		services := map[string]string{
			"cache":    check(r.Context(), cache),
			"database": check(r.Context(), db),
		}

		if services["cache"] == "degraded" || services["database"] == "degraded" {
			response.Error(w, http.StatusServiceUnavailable, "DEGRADED",
				"One or more services degraded", services)
			return
		}

		body := map[string]any{
			"status":   "ok",
			"state":    d.State().String(),
			"logs":     d.Len(),
			"services": services,
		}
		if clients != nil {
			body["stream_clients"] = clients()
		}
		response.JSON(w, body)
	}
}

func check(ctx context.Context, p Pinger) string {
	if p == nil {
		return "disabled"
	}
	if err := p.Ping(ctx); err != nil {
		return "degraded"
	}
	return "ok"
}

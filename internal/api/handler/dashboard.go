package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/kiranshivaraju/logpulse/internal/api/response"
	"github.com/kiranshivaraju/logpulse/internal/board"
	"github.com/kiranshivaraju/logpulse/internal/dashboard"
	"github.com/kiranshivaraju/logpulse/internal/filter"
	"github.com/kiranshivaraju/logpulse/pkg/models"
)

const (
	defaultLogsLimit = 50
	maxLogsLimit     = 1000
)

// Dashboard is the orchestrator surface the handlers depend on.
type Dashboard interface {
	State() dashboard.State
	Len() int
	Criteria() filter.Criteria
	SetCriteria(c filter.Criteria) error
	Filtered(limit int) []models.LogEntry
}

// SnapshotSource returns the rendered board.
type SnapshotSource interface {
	Snapshot() board.Snapshot
}

// NewDashboardHandler returns an http.HandlerFunc for GET /api/v1/dashboard.
func NewDashboardHandler(src SnapshotSource) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		response.JSON(w, src.Snapshot())
	}
}

// NewLogsHandler returns an http.HandlerFunc for GET /api/v1/logs. It serves
// the most recent entries of the filtered view, oldest first.
func NewLogsHandler(d Dashboard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := defaultLogsLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
					"limit must be a positive integer", nil)
				return
			}
			limit = n
		}
		if limit > maxLogsLimit {
			limit = maxLogsLimit
		}

		view := d.Filtered(0)
		total := len(view)
		if total > limit {
			view = view[total-limit:]
		}

		response.Collection(w, view, response.PaginationMeta{
			Page:    1,
			Limit:   limit,
			Total:   total,
			HasNext: total > limit,
		})
	}
}

// NewGetFilterHandler returns an http.HandlerFunc for GET /api/v1/filter.
func NewGetFilterHandler(d Dashboard) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		response.JSON(w, d.Criteria())
	}
}

// NewSetFilterHandler returns an http.HandlerFunc for PUT /api/v1/filter.
// The body replaces all three criteria; omitted fields clear them.
func NewSetFilterHandler(d Dashboard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req filter.Criteria
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}

		if err := d.SetCriteria(req); err != nil {
			switch {
			case errors.Is(err, dashboard.ErrNotReady):
				response.Error(w, http.StatusServiceUnavailable, "DASHBOARD_LOADING",
					"The dataset is still loading", nil)
			default:
				response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
					"An unexpected error occurred", nil)
			}
			return
		}

		response.JSON(w, d.Criteria())
	}
}

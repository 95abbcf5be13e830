// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strconv"

	service "github.com/okian/rake/internal/app"
)

// LeaderboardDependencies defines the interface for leaderboard queries.
type LeaderboardDependencies interface {
	Leaderboard(ctx context.Context, params service.LeaderboardParams) (*service.LeaderboardResult, error)
}

// LeaderboardHandler handles leaderboard requests.
type LeaderboardHandler struct {
	deps    LeaderboardDependencies
	maxTopN int
}

// NewLeaderboardHandler creates a new leaderboard handler.
func NewLeaderboardHandler(deps LeaderboardDependencies, maxTopN int) *LeaderboardHandler {
	return &LeaderboardHandler{
		deps:    deps,
		maxTopN: maxTopN,
	}
}

// HandleGetLeaderboard handles GET /leaderboard?window=D&limit=N&metric=M requests.
func (h *LeaderboardHandler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_leaderboard"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	params := service.LeaderboardParams{Metric: r.URL.Query().Get("metric")}

	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		if n > h.maxTopN {
			writeError(w, http.StatusBadRequest, "limit_exceeded", NewKind(op, ErrBadRequest))
			return
		}
		params.TopN = n
	}
	if s := r.URL.Query().Get("window"); s != "" {
		d, err := strconv.Atoi(s)
		if err != nil || d < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		params.WindowDays = d
	}

	result, err := h.deps.Leaderboard(r.Context(), params)
	if err != nil {
		writeViewError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

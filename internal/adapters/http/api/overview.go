// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	service "github.com/okian/rake/internal/app"
)

// OverviewDependencies defines the interface for the overview view.
type OverviewDependencies interface {
	Overview(ctx context.Context) (*service.OverviewResult, error)
}

// OverviewHandler handles overview requests.
type OverviewHandler struct {
	deps OverviewDependencies
}

// NewOverviewHandler creates a new overview handler.
func NewOverviewHandler(deps OverviewDependencies) *OverviewHandler {
	return &OverviewHandler{deps: deps}
}

// HandleGetOverview handles GET /overview requests.
func (h *OverviewHandler) HandleGetOverview(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_overview"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	result, err := h.deps.Overview(r.Context())
	if err != nil {
		writeViewError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

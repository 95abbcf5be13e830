// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	service "github.com/okian/rake/internal/app"
)

// RetentionDependencies defines the interface for the retention view.
type RetentionDependencies interface {
	Retention(ctx context.Context) (*service.RetentionResult, error)
}

// RetentionHandler handles retention requests.
type RetentionHandler struct {
	deps RetentionDependencies
}

// NewRetentionHandler creates a new retention handler.
func NewRetentionHandler(deps RetentionDependencies) *RetentionHandler {
	return &RetentionHandler{deps: deps}
}

// HandleGetRetention handles GET /retention requests.
func (h *RetentionHandler) HandleGetRetention(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_retention"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	result, err := h.deps.Retention(r.Context())
	if err != nil {
		writeViewError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

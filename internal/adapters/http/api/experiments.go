// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/okian/rake/internal/domain/engine"
)

// ExperimentsDependencies defines the interface for the experiments view.
type ExperimentsDependencies interface {
	Experiments(ctx context.Context) ([]engine.ExperimentGroup, error)
}

// ExperimentsHandler handles experiment summary requests.
type ExperimentsHandler struct {
	deps ExperimentsDependencies
}

// NewExperimentsHandler creates a new experiments handler.
func NewExperimentsHandler(deps ExperimentsDependencies) *ExperimentsHandler {
	return &ExperimentsHandler{deps: deps}
}

// HandleGetExperiments handles GET /experiments requests.
func (h *ExperimentsHandler) HandleGetExperiments(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_experiments"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	groups, err := h.deps.Experiments(r.Context())
	if err != nil {
		writeViewError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

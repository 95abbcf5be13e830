// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
)

// TablesDependencies defines the interface for dataset listing.
type TablesDependencies interface {
	Files(ctx context.Context) ([]string, error)
}

// TablesHandler handles dataset file listing requests.
type TablesHandler struct {
	deps TablesDependencies
}

// NewTablesHandler creates a new tables handler.
func NewTablesHandler(deps TablesDependencies) *TablesHandler {
	return &TablesHandler{deps: deps}
}

type tablesResponse struct {
	Files []string `json:"files"`
}

// HandleGetTables handles GET /tables requests.
func (h *TablesHandler) HandleGetTables(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_tables"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	files, err := h.deps.Files(r.Context())
	if err != nil {
		writeViewError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, tablesResponse{Files: files})
}

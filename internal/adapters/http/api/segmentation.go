// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/okian/rake/internal/domain/engine"
)

// SegmentationDependencies defines the interface for the segmentation view.
type SegmentationDependencies interface {
	Segmentation(ctx context.Context) ([]engine.RFMRecord, error)
}

// SegmentationHandler handles RFM segmentation requests.
type SegmentationHandler struct {
	deps SegmentationDependencies
}

// NewSegmentationHandler creates a new segmentation handler.
func NewSegmentationHandler(deps SegmentationDependencies) *SegmentationHandler {
	return &SegmentationHandler{deps: deps}
}

// HandleGetSegmentation handles GET /segmentation requests.
func (h *SegmentationHandler) HandleGetSegmentation(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_segmentation"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	records, err := h.deps.Segmentation(r.Context())
	if err != nil {
		writeViewError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

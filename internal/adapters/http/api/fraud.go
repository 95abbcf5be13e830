// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strconv"

	service "github.com/okian/rake/internal/app"
)

// FraudDependencies defines the interface for the fraud view.
type FraudDependencies interface {
	Fraud(ctx context.Context, params service.FraudParams) (*service.FraudResult, error)
}

// FraudHandler handles fraud heuristic requests.
type FraudHandler struct {
	deps FraudDependencies
}

// NewFraudHandler creates a new fraud handler.
func NewFraudHandler(deps FraudDependencies) *FraudHandler {
	return &FraudHandler{deps: deps}
}

// HandleGetFraud handles GET /fraud?freq_q=F&stake_q=S requests.
func (h *FraudHandler) HandleGetFraud(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_fraud"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	var params service.FraudParams
	if s := r.URL.Query().Get("freq_q"); s != "" {
		q, err := strconv.ParseFloat(s, 64)
		if err != nil || q <= 0 || q >= 1 {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		params.FrequencyQuantile = q
	}
	if s := r.URL.Query().Get("stake_q"); s != "" {
		q, err := strconv.ParseFloat(s, 64)
		if err != nil || q <= 0 || q >= 1 {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		params.StakeQuantile = q
	}

	result, err := h.deps.Fraud(r.Context(), params)
	if err != nil {
		writeViewError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

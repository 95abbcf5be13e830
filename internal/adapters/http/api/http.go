// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/rake/internal/adapters/dataset"
	service "github.com/okian/rake/internal/app"
	"github.com/okian/rake/internal/domain/engine"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Overview(ctx context.Context) (*service.OverviewResult, error)
	Leaderboard(ctx context.Context, params service.LeaderboardParams) (*service.LeaderboardResult, error)
	Retention(ctx context.Context) (*service.RetentionResult, error)
	Fraud(ctx context.Context, params service.FraudParams) (*service.FraudResult, error)
	Segmentation(ctx context.Context) ([]engine.RFMRecord, error)
	Experiments(ctx context.Context) ([]engine.ExperimentGroup, error)
	Files(ctx context.Context) ([]string, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler       *HealthHandler
	statsHandler        *StatsHandler
	tablesHandler       *TablesHandler
	overviewHandler     *OverviewHandler
	leaderboardHandler  *LeaderboardHandler
	retentionHandler    *RetentionHandler
	fraudHandler        *FraudHandler
	segmentationHandler *SegmentationHandler
	experimentsHandler  *ExperimentsHandler
	dashboardHandler    *dashboardHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxTopN int) *Server {
	return &Server{
		healthHandler:       NewHealthHandler(),
		statsHandler:        NewStatsHandler(statsProvider),
		tablesHandler:       NewTablesHandler(deps),
		overviewHandler:     NewOverviewHandler(deps),
		leaderboardHandler:  NewLeaderboardHandler(deps, maxTopN),
		retentionHandler:    NewRetentionHandler(deps),
		fraudHandler:        NewFraudHandler(deps),
		segmentationHandler: NewSegmentationHandler(deps),
		experimentsHandler:  NewExperimentsHandler(deps),
		dashboardHandler:    newdashboardHandler(),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/dashboard", s.dashboardHandler.HandleDashboard)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/tables", MetricsMiddleware(s.tablesHandler.HandleGetTables, "tables"))
	mux.HandleFunc("/overview", MetricsMiddleware(s.overviewHandler.HandleGetOverview, "overview"))
	mux.HandleFunc("/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	mux.HandleFunc("/retention", MetricsMiddleware(s.retentionHandler.HandleGetRetention, "retention"))
	mux.HandleFunc("/fraud", MetricsMiddleware(s.fraudHandler.HandleGetFraud, "fraud"))
	mux.HandleFunc("/segmentation", MetricsMiddleware(s.segmentationHandler.HandleGetSegmentation, "segmentation"))
	mux.HandleFunc("/experiments", MetricsMiddleware(s.experimentsHandler.HandleGetExperiments, "experiments"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeViewError translates service-layer errors into HTTP responses:
// bad parameters map to 400, a missing dataset file to 404, data that the
// view cannot be computed from to 422, and anything else to 500. The 422
// body carries the reason verbatim so the client can show what is missing.
func writeViewError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidParams):
		writeError(w, http.StatusBadRequest, "bad_request", Wrap(op, err))
	case errors.Is(err, dataset.ErrFileNotFound):
		writeError(w, http.StatusNotFound, "file_not_found", Wrap(op, err))
	case errors.Is(err, engine.ErrMissingColumn):
		writeError(w, http.StatusUnprocessableEntity, "missing_column", Wrap(op, err))
	case errors.Is(err, engine.ErrInsufficientData):
		writeError(w, http.StatusUnprocessableEntity, "insufficient_data", Wrap(op, err))
	case errors.Is(err, engine.ErrEmptyInput), errors.Is(err, dataset.ErrEmptyFile):
		writeError(w, http.StatusUnprocessableEntity, "empty_input", Wrap(op, err))
	case errors.Is(err, dataset.ErrUnsupportedFormat):
		writeError(w, http.StatusUnprocessableEntity, "unsupported_format", Wrap(op, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
	}
}

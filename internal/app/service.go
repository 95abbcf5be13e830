// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/okian/rake/internal/adapters/dataset"
	"github.com/okian/rake/internal/domain/engine"
	"github.com/okian/rake/internal/domain/schema"
	"github.com/okian/rake/internal/domain/table"
	"github.com/okian/rake/pkg/logger"
	"github.com/okian/rake/pkg/metrics"
)

// Service implements the API dependencies for the analytics views. It wires
// the dataset store, the table cache, the schema resolver and the aggregation
// engine, and resolves column roles on every invocation so a changed file is
// re-resolved as soon as the cache expires.
type Service struct {
	mu sync.RWMutex

	// Collaborators
	store    dataset.Store
	resolver schema.Resolver
	acquirer dataset.Acquirer
	cache    *dataset.Cache

	// Configuration
	dataDir           string
	datasetRef        string
	cacheTTL          time.Duration
	cacheMaxEntries   int
	clock             dataset.Clock
	maxTopN           int
	defaultTopN       int
	defaultWindowDays int
	frequencyQuantile float64
	stakeQuantile     float64
	tables            map[string]string

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithStore injects a table store, bypassing the default
// filesystem-store-plus-cache construction. Used by tests.
func WithStore(store dataset.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithResolver replaces the default keyword resolver.
func WithResolver(r schema.Resolver) Option {
	return func(s *Service) {
		if r != nil {
			s.resolver = r
		}
	}
}

// WithAcquirer sets the collaborator that populates the dataset directory
// from an external dataset reference before the store is built.
func WithAcquirer(a dataset.Acquirer, ref string) Option {
	return func(s *Service) {
		s.acquirer = a
		s.datasetRef = ref
	}
}

// WithDataDir sets the dataset directory scanned by the default store.
func WithDataDir(dir string) Option {
	return func(s *Service) {
		if dir != "" {
			s.dataDir = dir
		}
	}
}

// WithCacheTTL sets how long loaded tables stay cached.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

// WithCacheMaxEntries bounds the table cache.
func WithCacheMaxEntries(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.cacheMaxEntries = n
		}
	}
}

// WithClock injects the cache time source. Used by tests.
func WithClock(clock dataset.Clock) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithTopN sets the default and maximum leaderboard sizes.
func WithTopN(def, max int) Option {
	return func(s *Service) {
		if def > 0 && max >= def {
			s.defaultTopN = def
			s.maxTopN = max
		}
	}
}

// WithWindowDays sets the default analysis window.
func WithWindowDays(days int) Option {
	return func(s *Service) {
		if days > 0 {
			s.defaultWindowDays = days
		}
	}
}

// WithQuantiles sets the default fraud thresholds.
func WithQuantiles(frequency, stake float64) Option {
	return func(s *Service) {
		if frequency > 0 && frequency < 1 {
			s.frequencyQuantile = frequency
		}
		if stake > 0 && stake < 1 {
			s.stakeQuantile = stake
		}
	}
}

// WithTables maps logical table names to dataset file names.
func WithTables(tables map[string]string) Option {
	return func(s *Service) {
		if len(tables) > 0 {
			s.tables = tables
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		resolver:          schema.NewKeywordResolver(),
		dataDir:           "data",
		cacheTTL:          time.Hour,
		cacheMaxEntries:   16,
		clock:             time.Now,
		maxTopN:           100,
		defaultTopN:       20,
		defaultWindowDays: 7,
		frequencyQuantile: 0.99,
		stakeQuantile:     0.995,
		tables: map[string]string{
			"players":      "players.csv",
			"transactions": "transactions.csv",
			"bets":         "bets.csv",
			"sessions":     "sessions.csv",
		},
		logger: nil, // Will be replaced when service starts
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	// Initialize logger if not already set
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting analytics service...")

	if s.acquirer != nil {
		dir, err := s.acquirer.Acquire(ctx, s.datasetRef, false)
		if err != nil {
			return fmt.Errorf("acquire dataset %q: %w", s.datasetRef, err)
		}
		s.dataDir = dir
		s.logger.Info(ctx, "dataset acquired",
			logger.String("ref", s.datasetRef),
			logger.String("dir", dir),
		)
	}

	if s.store == nil {
		s.cache = dataset.NewCache(
			dataset.NewFSStore(s.dataDir),
			dataset.WithTTL(s.cacheTTL),
			dataset.WithMaxEntries(s.cacheMaxEntries),
			dataset.WithClock(s.clock),
		)
		s.store = s.cache
	}

	s.started = true
	s.logger.Info(ctx, "analytics service started",
		logger.String("dataDir", s.dataDir),
		logger.Duration("cacheTTL", s.cacheTTL),
		logger.Int("tables", len(s.tables)),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping analytics service...")

	if s.cache != nil {
		s.cache.Purge()
	}

	s.started = false
	s.logger.Info(context.Background(), "analytics service stopped")
}

// Overview returns the landing view: row counts per configured table, the
// daily bet-count series, and the top wager leaderboard. Tables that fail to
// load are reported with a count of -1 rather than failing the whole view.
func (s *Service) Overview(ctx context.Context) (view *OverviewResult, err error) {
	defer s.observe("overview", time.Now(), &err)
	if err = s.ready(); err != nil {
		return nil, err
	}

	view = &OverviewResult{TableRows: make(map[string]int, len(s.tables))}
	for logical := range s.tables {
		t, loadErr := s.loadTable(ctx, logical)
		if loadErr != nil {
			s.logger.Warn(ctx, "overview table unavailable",
				logger.String("table", logical),
				logger.Error(loadErr),
			)
			view.TableRows[logical] = -1
			continue
		}
		view.TableRows[logical] = t.NumRows()
	}

	bets, loadErr := s.loadTable(ctx, "bets")
	if loadErr != nil {
		// The headline series is best-effort; row counts alone are still
		// a valid overview.
		return view, nil
	}

	if tsCol, ok := s.resolver.Resolve(bets, schema.RoleTimestamp); ok {
		if series, serErr := engine.DailyEventCount(bets, tsCol); serErr == nil {
			view.DailyBets = series
		}
	} else {
		metrics.RecordResolverMiss("bets", string(schema.RoleTimestamp))
	}

	playerCol, pOK := s.resolver.Resolve(bets, schema.RolePlayerID)
	amountCol, aOK := s.resolver.Resolve(bets, schema.RoleAmount)
	if pOK && aOK {
		if top, lbErr := engine.Leaderboard(bets, playerCol, amountCol, s.defaultTopN, engine.AggSum); lbErr == nil {
			view.TopWagers = top
		}
	}
	return view, nil
}

// Leaderboard ranks players over a trailing window of the bets table.
func (s *Service) Leaderboard(ctx context.Context, params LeaderboardParams) (view *LeaderboardResult, err error) {
	defer s.observe("leaderboard", time.Now(), &err)
	if err = s.ready(); err != nil {
		return nil, err
	}

	if params.WindowDays == 0 {
		params.WindowDays = s.defaultWindowDays
	}
	if params.TopN == 0 {
		params.TopN = s.defaultTopN
	}
	if params.Metric == "" {
		params.Metric = MetricTotalWager
	}
	if params.WindowDays < 0 {
		return nil, fmt.Errorf("%w: window days must be positive, got %d", ErrInvalidParams, params.WindowDays)
	}
	if params.TopN < 0 || params.TopN > s.maxTopN {
		return nil, fmt.Errorf("%w: top n must be in [1, %d], got %d", ErrInvalidParams, s.maxTopN, params.TopN)
	}

	var metricRole schema.Role
	switch params.Metric {
	case MetricTotalWager:
		metricRole = schema.RoleAmount
	case MetricNetProfit:
		metricRole = schema.RoleProfit
	default:
		return nil, fmt.Errorf("%w: unknown metric %q", ErrInvalidParams, params.Metric)
	}

	bets, err := s.loadTable(ctx, "bets")
	if err != nil {
		return nil, err
	}

	playerCol, err := s.require(bets, schema.RolePlayerID)
	if err != nil {
		return nil, err
	}
	metricCol, err := s.require(bets, metricRole)
	if err != nil {
		return nil, err
	}

	// The timestamp is optional here: without one the leaderboard simply
	// covers all of history instead of the requested window.
	windowed := bets
	if tsCol, ok := s.resolver.Resolve(bets, schema.RoleTimestamp); ok {
		windowed = engine.WindowedFilter(bets, tsCol, params.WindowDays)
	} else {
		metrics.RecordResolverMiss(bets.Name(), string(schema.RoleTimestamp))
	}

	entries, err := engine.Leaderboard(windowed, playerCol, metricCol, params.TopN, engine.AggSum)
	if err != nil {
		return nil, err
	}
	return &LeaderboardResult{
		Metric:     params.Metric,
		WindowDays: params.WindowDays,
		Entries:    entries,
	}, nil
}

// Retention returns the DAU series and the cohort retention matrix computed
// from the sessions table.
func (s *Service) Retention(ctx context.Context) (view *RetentionResult, err error) {
	defer s.observe("retention", time.Now(), &err)
	if err = s.ready(); err != nil {
		return nil, err
	}

	sessions, err := s.loadTable(ctx, "sessions")
	if err != nil {
		return nil, err
	}
	tsCol, err := s.require(sessions, schema.RoleTimestamp)
	if err != nil {
		return nil, err
	}
	playerCol, err := s.require(sessions, schema.RolePlayerID)
	if err != nil {
		return nil, err
	}

	dau, err := engine.DailyActiveCount(sessions, tsCol, playerCol)
	if err != nil {
		return nil, err
	}
	matrix, err := engine.CohortRetention(sessions, tsCol, playerCol)
	if err != nil {
		return nil, err
	}
	return &RetentionResult{DAU: dau, Cohorts: matrix.Cells()}, nil
}

// Fraud flags players with outlier bet frequency or outlier mean stake,
// both as two-stage quantile thresholds over the bets table.
func (s *Service) Fraud(ctx context.Context, params FraudParams) (view *FraudResult, err error) {
	defer s.observe("fraud", time.Now(), &err)
	if err = s.ready(); err != nil {
		return nil, err
	}

	if params.FrequencyQuantile == 0 {
		params.FrequencyQuantile = s.frequencyQuantile
	}
	if params.StakeQuantile == 0 {
		params.StakeQuantile = s.stakeQuantile
	}
	if params.FrequencyQuantile <= 0 || params.FrequencyQuantile >= 1 {
		return nil, fmt.Errorf("%w: frequency quantile must be in (0, 1), got %v", ErrInvalidParams, params.FrequencyQuantile)
	}
	if params.StakeQuantile <= 0 || params.StakeQuantile >= 1 {
		return nil, fmt.Errorf("%w: stake quantile must be in (0, 1), got %v", ErrInvalidParams, params.StakeQuantile)
	}

	bets, err := s.loadTable(ctx, "bets")
	if err != nil {
		return nil, err
	}
	playerCol, err := s.require(bets, schema.RolePlayerID)
	if err != nil {
		return nil, err
	}
	amountCol, err := s.require(bets, schema.RoleAmount)
	if err != nil {
		return nil, err
	}

	highFreq, err := engine.QuantileOutliers(bets, playerCol, "", engine.ByFrequency, params.FrequencyQuantile)
	if err != nil {
		return nil, err
	}
	extremeStakes, err := engine.QuantileOutliers(bets, playerCol, amountCol, engine.ByMean, params.StakeQuantile)
	if err != nil {
		return nil, err
	}
	return &FraudResult{HighFrequency: highFreq, ExtremeStakes: extremeStakes}, nil
}

// Segmentation returns the RFM profile of every player in the transactions
// table.
func (s *Service) Segmentation(ctx context.Context) (records []engine.RFMRecord, err error) {
	defer s.observe("segmentation", time.Now(), &err)
	if err = s.ready(); err != nil {
		return nil, err
	}

	tx, err := s.loadTable(ctx, "transactions")
	if err != nil {
		return nil, err
	}
	playerCol, err := s.require(tx, schema.RolePlayerID)
	if err != nil {
		return nil, err
	}
	amountCol, err := s.require(tx, schema.RoleAmount)
	if err != nil {
		return nil, err
	}
	tsCol, err := s.require(tx, schema.RoleTimestamp)
	if err != nil {
		return nil, err
	}

	return engine.RFM(tx, playerCol, amountCol, tsCol)
}

// Experiments summarizes experiment arms found in the transactions table.
func (s *Service) Experiments(ctx context.Context) (groups []engine.ExperimentGroup, err error) {
	defer s.observe("experiments", time.Now(), &err)
	if err = s.ready(); err != nil {
		return nil, err
	}

	tx, err := s.loadTable(ctx, "transactions")
	if err != nil {
		return nil, err
	}
	expCol, err := s.require(tx, schema.RoleExperimentID)
	if err != nil {
		return nil, err
	}
	playerCol, err := s.require(tx, schema.RolePlayerID)
	if err != nil {
		return nil, err
	}

	return engine.ExperimentSummary(tx, expCol, playerCol)
}

// Files lists the dataset files the store can see.
func (s *Service) Files(ctx context.Context) ([]string, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.store.Files(ctx)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":           s.started,
		"dataDir":           s.dataDir,
		"cacheTTLSeconds":   int(s.cacheTTL.Seconds()),
		"defaultTopN":       s.defaultTopN,
		"defaultWindowDays": s.defaultWindowDays,
		"tables":            s.tables,
	}
	if s.cache != nil {
		stats["cachedTables"] = s.cache.Len()
	}
	return stats
}

// ready guards view methods against use before Start.
func (s *Service) ready() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}
	return nil
}

// loadTable maps a logical table name through configuration and loads it.
func (s *Service) loadTable(ctx context.Context, logical string) (*table.Table, error) {
	name, ok := s.tables[logical]
	if !ok {
		name = logical
	}
	return s.store.Load(ctx, name)
}

// require resolves a mandatory role and converts a miss into ErrMissingColumn
// carrying the columns that were actually available.
func (s *Service) require(t *table.Table, role schema.Role) (string, error) {
	col, ok := s.resolver.Resolve(t, role)
	if !ok {
		metrics.RecordResolverMiss(t.Name(), string(role))
		return "", fmt.Errorf("%w: no column for role %q in table %q (columns: %s)",
			engine.ErrMissingColumn, role, t.Name(), strings.Join(t.Columns(), ", "))
	}
	return col, nil
}

// observe records per-view metrics; meant to be deferred.
func (s *Service) observe(view string, start time.Time, err *error) {
	metrics.RecordViewQuery(view)
	metrics.RecordViewQueryLatency(view, float64(time.Since(start).Milliseconds()))
	if err != nil && *err != nil {
		metrics.RecordViewError(view, errorType(*err))
	}
}

// errorType classifies an error for the view error metric label.
func errorType(err error) string {
	switch {
	case errors.Is(err, ErrInvalidParams):
		return "invalid_params"
	case errors.Is(err, ErrNotStarted):
		return "not_started"
	case errors.Is(err, engine.ErrMissingColumn):
		return "missing_column"
	case errors.Is(err, engine.ErrInsufficientData):
		return "insufficient_data"
	case errors.Is(err, engine.ErrEmptyInput):
		return "empty_input"
	case errors.Is(err, dataset.ErrFileNotFound):
		return "file_not_found"
	case errors.Is(err, dataset.ErrUnsupportedFormat):
		return "unsupported_format"
	case errors.Is(err, dataset.ErrEmptyFile):
		return "empty_file"
	default:
		return "internal"
	}
}

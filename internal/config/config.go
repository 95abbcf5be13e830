// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) initializer to build a Config with defaults.
// - Load(ctx) layers YAML file and environment variables on top of defaults.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"context"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DataDir is the root directory scanned for dataset files.
	DataDir string `koanf:"data_dir"`

	// CacheTTLSeconds sets how long a loaded table stays cached.
	CacheTTLSeconds int `koanf:"cache_ttl_seconds"`

	// CacheMaxEntries bounds the number of cached table snapshots.
	CacheMaxEntries int `koanf:"cache_max_entries"`

	// MaxTopN caps leaderboard and outlier result sizes requested per query.
	MaxTopN int `koanf:"max_top_n"`

	// DefaultTopN is the leaderboard size when the request omits one.
	DefaultTopN int `koanf:"default_top_n"`

	// DefaultWindowDays is the analysis window when the request omits one.
	DefaultWindowDays int `koanf:"default_window_days"`

	// FrequencyQuantile is the bet-frequency threshold for fraud flagging.
	FrequencyQuantile float64 `koanf:"frequency_quantile"`

	// StakeQuantile is the mean-stake threshold for fraud flagging.
	StakeQuantile float64 `koanf:"stake_quantile"`

	// Tables maps logical table names to dataset file names.
	Tables map[string]string `koanf:"tables"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention; it is reserved for future use (e.g., loading
// from remote sources) and is currently unused.
func New(_ context.Context) *Config {
	c := &Config{
		LogLevel:          "info",
		Addr:              ":9080",
		DataDir:           "data",
		CacheTTLSeconds:   3600,
		CacheMaxEntries:   16,
		MaxTopN:           100,
		DefaultTopN:       20,
		DefaultWindowDays: 7,
		FrequencyQuantile: 0.99,
		StakeQuantile:     0.995,
		Tables: map[string]string{
			"players":      "players.csv",
			"transactions": "transactions.csv",
			"bets":         "bets.csv",
			"sessions":     "sessions.csv",
		},
	}
	return c
}

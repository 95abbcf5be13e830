package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New(ctx))
//  2. file (YAML) if RAKE_CONFIG is set
//  3. env (prefix RAKE_)
func Load(ctx context.Context) (*Config, error) {
	// Start with defaults
	base := New(ctx)

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("RAKE_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: RAKE_ADDR, RAKE_DATA_DIR, ...
	// Map env keys like RAKE_DATA_DIR -> data_dir (flat keys)
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("RAKE_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "rake_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if c.DataDir == "" {
		return fmt.Errorf("%w: data_dir must not be empty", ErrInvalidConfig)
	}
	if c.CacheTTLSeconds <= 0 {
		return fmt.Errorf("%w: cache_ttl_seconds must be positive", ErrInvalidConfig)
	}
	if c.MaxTopN <= 0 || c.DefaultTopN <= 0 || c.DefaultTopN > c.MaxTopN {
		return fmt.Errorf("%w: default_top_n must be in [1, max_top_n]", ErrInvalidConfig)
	}
	if c.DefaultWindowDays <= 0 {
		return fmt.Errorf("%w: default_window_days must be positive", ErrInvalidConfig)
	}
	if c.FrequencyQuantile <= 0 || c.FrequencyQuantile >= 1 {
		return fmt.Errorf("%w: frequency_quantile must be in (0, 1)", ErrInvalidConfig)
	}
	if c.StakeQuantile <= 0 || c.StakeQuantile >= 1 {
		return fmt.Errorf("%w: stake_quantile must be in (0, 1)", ErrInvalidConfig)
	}
	return nil
}

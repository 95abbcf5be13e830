// Package datagen writes a synthetic casino dataset so the service can run
// without acquiring a real one. Player behavior is skewed by archetype so the
// downstream views (leaderboards, fraud quantiles, RFM quartiles) have
// something meaningful to find.
package datagen

import (
	"time"
)

// Default generation parameters.
const (
	DefaultPlayers = 500
	DefaultDays    = 60
)

// Config controls dataset generation.
type Config struct {
	// OutDir is the directory the CSV files are written into.
	OutDir string

	// Players is the number of distinct players.
	Players int

	// Days is the length of the activity window ending at End.
	Days int

	// End anchors the activity window; zero means "now".
	End time.Time
}

// withDefaults fills unset fields.
func (c Config) withDefaults() Config {
	if c.OutDir == "" {
		c.OutDir = "data"
	}
	if c.Players <= 0 {
		c.Players = DefaultPlayers
	}
	if c.Days <= 0 {
		c.Days = DefaultDays
	}
	if c.End.IsZero() {
		c.End = time.Now().UTC()
	}
	return c
}

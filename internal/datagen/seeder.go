package datagen

import (
	"context"
	"os"
)

// Seeder populates a dataset directory with synthetic data. It satisfies the
// dataset acquisition contract: Acquire is idempotent, ref names the target
// directory, and force regenerates even when files already exist.
type Seeder struct {
	players int
	days    int
}

// NewSeeder creates a Seeder with the given generation volume; zero values
// fall back to the package defaults.
func NewSeeder(players, days int) *Seeder {
	return &Seeder{players: players, days: days}
}

// Acquire implements dataset.Acquirer. When ref already holds files and
// force is false, the directory is returned untouched.
func (s *Seeder) Acquire(ctx context.Context, ref string, force bool) (string, error) {
	if !force {
		entries, err := os.ReadDir(ref)
		if err == nil && len(entries) > 0 {
			return ref, nil
		}
	}
	if err := Generate(ctx, Config{OutDir: ref, Players: s.players, Days: s.days}); err != nil {
		return "", err
	}
	return ref, nil
}

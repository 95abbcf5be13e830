// Package dataset locates and parses dataset files into in-memory tables.
package dataset

import (
	"context"

	"github.com/okian/rake/internal/domain/table"
)

// Store provides read access to dataset tables by logical name.
type Store interface {
	// Load locates the file for a logical table name and parses it.
	// Returns a *NotFoundError (wrapping ErrFileNotFound) when no file
	// matches; the error carries the list of available files.
	Load(ctx context.Context, name string) (*table.Table, error)

	// Files lists the dataset files relative to the dataset directory.
	Files(ctx context.Context) ([]string, error)
}

// Acquirer populates a dataset directory from a dataset reference string.
// Population must be idempotent: an already-populated directory is reused
// unless force is set. Implementations live outside the core (download
// tooling, the synthetic generator); the core only consumes this interface.
type Acquirer interface {
	Acquire(ctx context.Context, ref string, force bool) (string, error)
}

package engine

import "errors"

// Sentinel kinds for aggregation errors. A typed "cannot compute" result is
// always distinguishable from a computed empty result.
var (
	// ErrMissingColumn means a required semantic role was not resolved or the
	// resolved column is unusable for the operation.
	ErrMissingColumn = errors.New("required column missing")

	// ErrInsufficientData means the table has fewer data points than the
	// operation's minimum (e.g. quartile binning below 4 distinct values).
	ErrInsufficientData = errors.New("insufficient data")

	// ErrEmptyInput means the table is present but has no usable rows.
	ErrEmptyInput = errors.New("empty input")
)

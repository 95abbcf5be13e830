package service

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	// ErrInvalidParams marks a view request with out-of-range parameters.
	ErrInvalidParams = errors.New("invalid parameters")

	// ErrNotStarted marks a view request made before Start.
	ErrNotStarted = errors.New("service not started")
)

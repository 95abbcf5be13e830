package table

import "errors"

// Sentinel kinds for table construction errors.
var (
	ErrNoColumns = errors.New("table has no columns")
)

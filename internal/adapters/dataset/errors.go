package dataset

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel kinds for dataset errors.
var (
	ErrFileNotFound      = errors.New("table file not found")
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrEmptyFile         = errors.New("file has no header row")
)

// NotFoundError reports a table lookup miss together with what the dataset
// directory actually contains, so the failure renders as an informative
// message rather than a bare "no such file".
type NotFoundError struct {
	Name      string
	Dir       string
	Available []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("table %q not found in %s. Available files: [%s]",
		e.Name, e.Dir, strings.Join(e.Available, ", "))
}

// Unwrap allows errors.Is(err, ErrFileNotFound).
func (e *NotFoundError) Unwrap() error { return ErrFileNotFound }

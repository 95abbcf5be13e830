package dataset

import (
	"context"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/okian/rake/internal/domain/table"
	"github.com/okian/rake/pkg/metrics"
)

// FSStore loads tables from a dataset directory on the local filesystem.
type FSStore struct {
	dir       string
	delimiter rune // 0 = auto-detect
}

// NewFSStore creates a store rooted at the given dataset directory.
func NewFSStore(dir string, opts ...Option) *FSStore {
	s := &FSStore{dir: dir}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load implements Store. File discovery tries, in order: exact relative
// path, recursive exact filename match, recursive case-insensitive substring
// match on the filename. Parsing dispatches on the file extension and all
// values flow through the table builder's type coercion.
func (s *FSStore) Load(ctx context.Context, name string) (*table.Table, error) {
	start := time.Now()
	path, err := s.locate(ctx, name)
	if err != nil {
		metrics.RecordTableLoadError(name)
		return nil, err
	}

	var t *table.Table
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		t, err = s.readCSV(path, name)
	case ".parquet":
		t, err = readParquet(ctx, path, name)
	default:
		err = &unsupportedError{path: path}
	}
	if err != nil {
		metrics.RecordTableLoadError(name)
		return nil, err
	}

	metrics.RecordTableLoad(name)
	metrics.RecordTableLoadLatency(float64(time.Since(start).Milliseconds()))
	metrics.UpdateTableRows(name, t.NumRows())
	return t, nil
}

// Files implements Store: all regular files under the dataset directory,
// as sorted paths relative to it.
func (s *FSStore) Files(_ context.Context) ([]string, error) {
	files := []string{}
	err := filepath.WalkDir(s.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			rel, relErr := filepath.Rel(s.dir, path)
			if relErr != nil {
				return relErr
			}
			files = append(files, rel)
		}
		return nil
	})
	if err != nil {
		// A missing dataset directory reads as "no files yet".
		return []string{}, nil //nolint:nilerr // absence is not a failure for listing
	}
	sort.Strings(files)
	return files, nil
}

func (s *FSStore) locate(ctx context.Context, name string) (string, error) {
	// Exact relative path.
	direct := filepath.Join(s.dir, name)
	if isRegular(direct) {
		return direct, nil
	}

	files, _ := s.Files(ctx)

	// Recursive exact filename match.
	for _, rel := range files {
		if filepath.Base(rel) == name {
			return filepath.Join(s.dir, rel), nil
		}
	}

	// Recursive case-insensitive substring match on the filename.
	lower := strings.ToLower(name)
	for _, rel := range files {
		if strings.Contains(strings.ToLower(filepath.Base(rel)), lower) {
			return filepath.Join(s.dir, rel), nil
		}
	}

	return "", &NotFoundError{Name: name, Dir: s.dir, Available: files}
}

type unsupportedError struct {
	path string
}

func (e *unsupportedError) Error() string {
	return "unsupported file format: " + filepath.Ext(e.path) + " (" + e.path + ")"
}

func (e *unsupportedError) Unwrap() error { return ErrUnsupportedFormat }

package dataset

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/okian/rake/internal/domain/table"
)

// detectDelimiter picks the delimiter among comma, semicolon and tab that
// splits the header line into the most fields.
func detectDelimiter(header string) rune {
	best, bestCount := ',', strings.Count(header, ",")
	if n := strings.Count(header, ";"); n > bestCount {
		best, bestCount = ';', n
	}
	if n := strings.Count(header, "\t"); n > bestCount {
		best = '\t'
	}
	return best
}

func (s *FSStore) readCSV(path, name string) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	br := bufio.NewReader(f)
	delim := s.delimiter
	if delim == 0 {
		header, peekErr := br.Peek(4096)
		if peekErr != nil && peekErr != io.EOF {
			return nil, fmt.Errorf("read %s: %w", path, peekErr)
		}
		line, _, _ := strings.Cut(string(header), "\n")
		delim = detectDelimiter(line)
	}

	r := csv.NewReader(br)
	r.Comma = delim
	r.FieldsPerRecord = -1 // tolerate ragged rows; the builder pads/truncates
	r.LazyQuotes = true

	columns, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %s", ErrEmptyFile, path)
		}
		return nil, fmt.Errorf("read header of %s: %w", path, err)
	}

	b := table.NewBuilder(name, columns)
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		b.AppendRow(record)
	}
	return b.Build()
}

func isRegular(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

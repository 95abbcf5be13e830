package dataset

// Option applies a configuration option to the FSStore.
type Option func(*FSStore)

// WithDelimiter forces the CSV field delimiter. When unset, the delimiter
// is auto-detected among comma, semicolon and tab per file.
func WithDelimiter(d rune) Option {
	return func(s *FSStore) {
		if d != 0 {
			s.delimiter = d
		}
	}
}

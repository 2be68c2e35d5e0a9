package genome

import "fmt"

// VariantParser is the interface for parsers that read variants.
// Both the VCF and flat-file parsers implement this interface.
type VariantParser interface {
	// Next reads the next variant.
	// Returns nil, nil when there are no more variants.
	Next() (*Variant, error)

	// Close closes the parser and releases the underlying file handle.
	Close() error

	// LineNumber returns the current line number being processed.
	LineNumber() int

	// Skipped returns the number of malformed lines skipped so far.
	Skipped() int
}

// ParseError represents a structural parse failure with line context.
// Per-line data errors are skipped and counted instead.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at line %d: %s", e.Line, e.Message)
}

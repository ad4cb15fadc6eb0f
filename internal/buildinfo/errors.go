package buildinfo

import (
	"errors"
	"fmt"
)

// ErrMissingCounter is wrapped by a ParseError when a header carries
// counters but not the minor build number.
var ErrMissingCounter = errors.New("counter not defined")

// ParseError reports a malformed definition in the metadata header.
type ParseError struct {
	// Line is the 1-based line number of the offending definition
	Line int
	// Key is the macro name being parsed
	Key string
	// Value is the raw value found
	Value string
	// Underlying error
	Err error
}

func (e *ParseError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("%s: %v", e.Key, e.Err)
	}
	return fmt.Sprintf("invalid value %q for %s on line %d: %v", e.Value, e.Key, e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

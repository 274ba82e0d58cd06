package manifest

import (
	"fmt"
)

// ParseError reports a declaration that matched a known tag but lacks a
// required field. Retrying cannot fix it.
type ParseError struct {
	// Kind names the declaration, e.g. "stream", "AUDIO", "subtitle segment".
	Kind string
	// Line is the 1-based line of the declaration, or 0 when not applicable.
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("manifest: line %d: %s", e.Line, e.Msg)
	}
	return "manifest: " + e.Msg
}

// ValueParseError indicates a malformed WIDTHxHEIGHT token.
type ValueParseError struct {
	Value string
	Err   error
}

func (e *ValueParseError) Error() string {
	return fmt.Sprintf("invalid resolution %q: %v", e.Value, e.Err)
}

func (e *ValueParseError) Unwrap() error {
	return e.Err
}

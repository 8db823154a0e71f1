package ingest

import (
	"errors"
	"fmt"
)

// ParseError indicates the uploaded CSV is structurally unusable:
// missing or duplicate columns, or no parseable rows at all. It is
// fatal and raised before any network call.
type ParseError struct {
	Field string // logical column involved, when one is
	Msg   string
}

func (e *ParseError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("portfolio parse error: %s (column %q)", e.Msg, e.Field)
	}
	return fmt.Sprintf("portfolio parse error: %s", e.Msg)
}

// ValidationError indicates a parsed holding violates an invariant the
// pipeline depends on. Like ParseError it is fatal and pre-network.
type ValidationError struct {
	Ticker string
	Msg    string
}

func (e *ValidationError) Error() string {
	if e.Ticker != "" {
		return fmt.Sprintf("portfolio validation error: %s: %s", e.Ticker, e.Msg)
	}
	return fmt.Sprintf("portfolio validation error: %s", e.Msg)
}

// IsParseError reports whether err is (or wraps) a ParseError
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// IsValidationError reports whether err is (or wraps) a ValidationError
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrFormat         = errors.New("format error")
	ErrArtifactAccess = errors.New("artifact access failure")
	ErrSourceNotFound = errors.New("source document not found")
	ErrTemporary      = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}

// FormatError reports a row that matched the row grammar but has a token
// that cannot be normalized. Field names the column; empty means date.
type FormatError struct {
	Page   int
	Line   int
	Permit string
	Field  string
	Token  string
	Err    error
}

func (e *FormatError) Error() string {
	if e == nil {
		return "format error"
	}
	loc := ""
	if e.Page > 0 || e.Line > 0 {
		loc = fmt.Sprintf(" at page %d line %d", e.Page, e.Line)
	}
	field := e.Field
	if field == "" {
		field = "date"
	}
	if e.Err == nil {
		return fmt.Sprintf("format error%s: permit %s: bad %s %q", loc, e.Permit, field, e.Token)
	}
	return fmt.Sprintf("format error%s: permit %s: bad %s %q: %v", loc, e.Permit, field, e.Token, e.Err)
}

func (e *FormatError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrFormat}
	}
	return []error{ErrFormat, e.Err}
}

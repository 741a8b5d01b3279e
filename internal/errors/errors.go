// internal/errors/errors.go
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ScanError      ErrorType = "ScanError"
	ParseError     ErrorType = "ParseError"
	TypeError      ErrorType = "TypeError"
	ReferenceError ErrorType = "ReferenceError"
)

// Sentinels matched by errors.Is against an *Error of the corresponding type.
var (
	ErrScan      = stderrors.New("scan error")
	ErrParse     = stderrors.New("parse error")
	ErrType      = stderrors.New("type error")
	ErrReference = stderrors.New("reference error")
)

// SourceLocation represents a location in source code
type SourceLocation struct {
	File string
	Line int
}

// Error is a scan, parse or runtime failure tied to a source line.
type Error struct {
	Type     ErrorType
	Message  string
	Location SourceLocation
	Source   string // The source line where error occurred
}

// Error implements the error interface
func (e *Error) Error() string {
	var sb strings.Builder

	switch {
	case e.Location.File != "" && e.Location.Line > 0:
		sb.WriteString(fmt.Sprintf("%s:%d: ", e.Location.File, e.Location.Line))
	case e.Location.Line > 0:
		sb.WriteString(fmt.Sprintf("line %d: ", e.Location.Line))
	}
	sb.WriteString(fmt.Sprintf("%s: %s", e.Type, e.Message))

	if e.Source != "" {
		prefix := fmt.Sprintf("  %d | ", e.Location.Line)
		sb.WriteString("\n")
		sb.WriteString(prefix)
		sb.WriteString(e.Source)
	}

	return sb.String()
}

// Unwrap returns the sentinel for the error type.
func (e *Error) Unwrap() error {
	switch e.Type {
	case ScanError:
		return ErrScan
	case ParseError:
		return ErrParse
	case TypeError:
		return ErrType
	case ReferenceError:
		return ErrReference
	}
	return nil
}

// Line returns the 1-based line of the error, or 0 when unknown.
func (e *Error) Line() int {
	return e.Location.Line
}

// NewScanError creates a new scan error
func NewScanError(line int, format string, args ...any) *Error {
	return newError(ScanError, line, format, args...)
}

// NewParseError creates a new parse error
func NewParseError(line int, format string, args ...any) *Error {
	return newError(ParseError, line, format, args...)
}

// NewTypeError creates a new runtime type error
func NewTypeError(line int, format string, args ...any) *Error {
	return newError(TypeError, line, format, args...)
}

// NewReferenceError creates an undefined-variable error
func NewReferenceError(line int, format string, args ...any) *Error {
	return newError(ReferenceError, line, format, args...)
}

func newError(t ErrorType, line int, format string, args ...any) *Error {
	return &Error{
		Type:     t,
		Message:  fmt.Sprintf(format, args...),
		Location: SourceLocation{Line: line},
	}
}

// WithFile records the file the error came from
func (e *Error) WithFile(file string) *Error {
	e.Location.File = file
	return e
}

// WithSource adds source code context to the error
func (e *Error) WithSource(source string) *Error {
	e.Source = source
	return e
}

// AttachSource fills in the offending source line from the full program text.
func (e *Error) AttachSource(program string) *Error {
	if e.Location.Line <= 0 {
		return e
	}
	lines := strings.Split(program, "\n")
	if e.Location.Line <= len(lines) {
		e.Source = strings.TrimRight(lines[e.Location.Line-1], "\r")
	}
	return e
}

// As reports whether err is (or wraps) an *Error and returns it.
func As(err error) (*Error, bool) {
	var e *Error
	if stderrors.As(err, &e) {
		return e, true
	}
	return nil, false
}

package diag

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"ember/internal/errors"
)

// Severity dictates how a diagnostic is treated.
type Severity string

const (
	Error   Severity = "error"
	Warning Severity = "warning"
)

// Diagnostic is one record on the diagnostic channel.
type Diagnostic struct {
	Severity Severity `json:"severity"`
	Kind     string   `json:"kind"` // ScanError, ParseError, TypeError, or a lint rule name
	File     string   `json:"file,omitempty"`
	Line     int      `json:"line"`
	Message  string   `json:"message"`
}

// Location renders "file:line", "file", "line N", or "" when unknown.
func (d Diagnostic) Location() string {
	switch {
	case d.File != "" && d.Line > 0:
		return fmt.Sprintf("%s:%d", d.File, d.Line)
	case d.File != "":
		return d.File
	case d.Line > 0:
		return fmt.Sprintf("line %d", d.Line)
	}
	return ""
}

func (d Diagnostic) String() string {
	if loc := d.Location(); loc != "" {
		return fmt.Sprintf("%s: %s: %s: %s", loc, d.Severity, d.Kind, d.Message)
	}
	return fmt.Sprintf("%s: %s: %s", d.Severity, d.Kind, d.Message)
}

// FromError converts a scan, parse or runtime error into an error diagnostic.
// Errors of other types keep their text and have no line.
func FromError(err error) Diagnostic {
	if e, ok := errors.As(err); ok {
		return Diagnostic{
			Severity: Error,
			Kind:     string(e.Type),
			File:     e.Location.File,
			Line:     e.Location.Line,
			Message:  e.Message,
		}
	}
	return Diagnostic{Severity: Error, Kind: "Error", Message: err.Error()}
}

// ColorMode selects whether sinks colorize output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

func (m ColorMode) Valid() bool {
	switch m {
	case ColorAuto, ColorAlways, ColorNever, "":
		return true
	}
	return false
}

// Enabled resolves the mode for a particular writer. Auto colorizes only
// terminals.
func (m ColorMode) Enabled(w io.Writer) bool {
	switch m {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

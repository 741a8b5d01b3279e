package diag

import (
	"bytes"
	"io"
	"sync"

	"github.com/golang/glog"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[93m"
	colorCyan   = "\033[36m"
)

// Sink facilitates pluggable diagnostics messages.
type Sink interface {
	// Report issues a diagnostic.
	Report(d Diagnostic)
	// Errors fetches the number of errors issued.
	Errors() int
	// Warnings fetches the number of warnings issued.
	Warnings() int
	// Diagnostics returns everything reported so far, in order.
	Diagnostics() []Diagnostic
}

// Collector keeps diagnostics in memory.
type Collector struct {
	mu    sync.Mutex
	diags []Diagnostic
}

func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) Report(d Diagnostic) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.diags = append(c.diags, d)
}

func (c *Collector) Errors() int   { return c.count(Error) }
func (c *Collector) Warnings() int { return c.count(Warning) }

func (c *Collector) Diagnostics() []Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Diagnostic(nil), c.diags...)
}

// Reset drops everything collected so far.
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.diags = nil
}

func (c *Collector) count(sev Severity) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, d := range c.diags {
		if d.Severity == sev {
			n++
		}
	}
	return n
}

// WriterSink prints each diagnostic as one line and remembers it.
type WriterSink struct {
	Collector
	w      io.Writer
	colors bool
}

func NewWriterSink(w io.Writer, mode ColorMode) *WriterSink {
	return &WriterSink{w: w, colors: mode.Enabled(w)}
}

func (s *WriterSink) Report(d Diagnostic) {
	msg := s.Stringify(d)
	if glog.V(3) {
		glog.V(3).Infof("diag: %s", msg[:len(msg)-1])
	}
	io.WriteString(s.w, msg)
	s.Collector.Report(d)
}

// Stringify renders d the way Report prints it, newline included.
func (s *WriterSink) Stringify(d Diagnostic) string {
	if !s.colors {
		return d.String() + "\n"
	}

	var buffer bytes.Buffer
	if loc := d.Location(); loc != "" {
		buffer.WriteString(colorCyan)
		buffer.WriteString(loc)
		buffer.WriteString(colorReset)
		buffer.WriteString(": ")
	}
	switch d.Severity {
	case Error:
		buffer.WriteString(colorRed)
	case Warning:
		buffer.WriteString(colorYellow)
	}
	buffer.WriteString(string(d.Severity))
	buffer.WriteString(colorReset)
	buffer.WriteString(": ")
	buffer.WriteString(d.Kind)
	buffer.WriteString(": ")
	buffer.WriteString(d.Message)
	buffer.WriteRune('\n')
	return buffer.String()
}

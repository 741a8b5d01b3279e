// internal/scripttest/reporters.go
package scripttest

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize/english"
	"github.com/pkg/errors"

	"ember/internal/diag"
)

const (
	colorReset = "\033[0m"
	colorGreen = "\033[32m"
	colorRed   = "\033[31m"
)

// Reporter receives results in path order, then the summary.
type Reporter interface {
	CaseDone(result Result)
	Summary(stats Stats)
}

// NewReporter picks a reporter by format name: "text" or "json".
func NewReporter(format string, w io.Writer, color diag.ColorMode, verbose bool) (Reporter, error) {
	switch format {
	case "", "text":
		return NewTextReporter(w, color, verbose), nil
	case "json":
		return NewJSONReporter(w), nil
	}
	return nil, errors.Errorf("unknown report format %q", format)
}

// TextReporter outputs human-readable test results
type TextReporter struct {
	w       io.Writer
	colors  bool
	verbose bool
}

func NewTextReporter(w io.Writer, color diag.ColorMode, verbose bool) *TextReporter {
	return &TextReporter{w: w, colors: color.Enabled(w), verbose: verbose}
}

func (r *TextReporter) paint(color, s string) string {
	if !r.colors {
		return s
	}
	return color + s + colorReset
}

func (r *TextReporter) CaseDone(result Result) {
	if result.Passed {
		if r.verbose {
			fmt.Fprintf(r.w, "%s %s (%v)\n", r.paint(colorGreen, "ok  "), result.Name, round(result.Duration))
		}
		return
	}

	fmt.Fprintf(r.w, "%s %s (%v)\n", r.paint(colorRed, "FAIL"), result.Name, round(result.Duration))
	for _, line := range strings.Split(result.Message, "\n") {
		fmt.Fprintf(r.w, "    %s\n", line)
	}
	if result.Diff != "" {
		for _, line := range strings.SplitAfter(result.Diff, "\n") {
			if line != "" {
				fmt.Fprintf(r.w, "    %s", line)
			}
		}
	}
}

func (r *TextReporter) Summary(stats Stats) {
	status := r.paint(colorGreen, "PASS")
	if stats.Failed > 0 {
		status = r.paint(colorRed, "FAIL")
	}
	fmt.Fprintf(r.w, "%s %s, %d passed, %d failed in %v\n",
		status, english.Plural(stats.Total, "script", ""), stats.Passed, stats.Failed, round(stats.TotalTime))
}

func round(d time.Duration) time.Duration {
	return d.Round(time.Microsecond)
}

// JSONReporter writes one document with every result once the run ends.
type JSONReporter struct {
	w       io.Writer
	results []Result
}

type JSONSummary struct {
	Results []Result `json:"results"`
	Stats
}

func NewJSONReporter(w io.Writer) *JSONReporter {
	return &JSONReporter{w: w, results: make([]Result, 0)}
}

func (r *JSONReporter) CaseDone(result Result) {
	r.results = append(r.results, result)
}

func (r *JSONReporter) Summary(stats Stats) {
	output, err := json.MarshalIndent(JSONSummary{Results: r.results, Stats: stats}, "", "  ")
	if err != nil {
		fmt.Fprintf(r.w, "error generating JSON output: %v\n", err)
		return
	}
	fmt.Fprintln(r.w, string(output))
}

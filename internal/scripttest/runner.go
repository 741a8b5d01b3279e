// internal/scripttest/runner.go
package scripttest

import (
	"bytes"
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/golang/glog"
	"golang.org/x/sync/errgroup"

	"ember/internal/diag"
	"ember/internal/driver"
)

// Result is the outcome of one case.
type Result struct {
	Name     string        `json:"name"`
	File     string        `json:"file"`
	Passed   bool          `json:"passed"`
	Duration time.Duration `json:"duration"`
	Output   string        `json:"output,omitempty"`
	// Diff is a line diff of expected against actual output.
	Diff    string `json:"diff,omitempty"`
	Message string `json:"message,omitempty"`
}

// Stats tracks overall results.
type Stats struct {
	Total     int           `json:"total"`
	Passed    int           `json:"passed"`
	Failed    int           `json:"failed"`
	TotalTime time.Duration `json:"total_time"`
}

type Options struct {
	Dir string
	// Parallel limits concurrently running cases. Defaults to NumCPU.
	Parallel int
	// Filter keeps only cases whose name contains it.
	Filter          string
	StrictVariables bool
}

func (o *Options) normalize() {
	if o.Dir == "" {
		o.Dir = "."
	}
	if o.Parallel <= 0 {
		o.Parallel = runtime.NumCPU()
	}
}

// Runner discovers, runs and reports script cases.
type Runner struct {
	opts     Options
	reporter Reporter
}

func NewRunner(opts Options, reporter Reporter) *Runner {
	opts.normalize()
	return &Runner{opts: opts, reporter: reporter}
}

// Run executes every case under Options.Dir. Results are reported in
// path order once all cases have finished.
func (r *Runner) Run(ctx context.Context) (Stats, error) {
	start := time.Now()

	files, err := Discover(r.opts.Dir)
	if err != nil {
		return Stats{}, err
	}
	cases, err := LoadCases(r.opts.Dir, files)
	if err != nil {
		return Stats{}, err
	}
	if r.opts.Filter != "" {
		kept := cases[:0]
		for _, c := range cases {
			if strings.Contains(c.Name, r.opts.Filter) {
				kept = append(kept, c)
			}
		}
		cases = kept
	}
	glog.V(3).Infof("running %d scripts from %s with parallelism %d", len(cases), r.opts.Dir, r.opts.Parallel)

	results, err := RunCases(ctx, cases, r.opts.Parallel, r.opts.StrictVariables)
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{Total: len(results)}
	for _, res := range results {
		if res.Passed {
			stats.Passed++
		} else {
			stats.Failed++
		}
		r.reporter.CaseDone(res)
	}
	stats.TotalTime = time.Since(start)
	r.reporter.Summary(stats)
	return stats, nil
}

// RunCases runs cases with at most parallel in flight. Results keep the
// order of cases.
func RunCases(ctx context.Context, cases []*Case, parallel int, strict bool) ([]Result, error) {
	results := make([]Result, len(cases))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(parallel, 1))
	for i, c := range cases {
		i, c := i, c
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = RunCase(c, strict)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// RunCase evaluates c in a fresh session and checks its expectations.
func RunCase(c *Case, strict bool) Result {
	start := time.Now()

	var out bytes.Buffer
	sink := diag.NewCollector()
	session := driver.NewSession(driver.Options{
		File:            c.Name,
		Out:             &out,
		Sink:            sink,
		StrictVariables: strict,
	})
	err := session.Exec(c.Source)

	res := Result{
		Name:     c.Name,
		File:     c.File,
		Duration: time.Since(start),
		Output:   out.String(),
	}

	var problems []string
	if want := c.ExpectedOutput(); want != res.Output {
		res.Diff = Diff(want, res.Output)
		problems = append(problems, "output mismatch")
	}

	switch {
	case c.ExpectError == "" && err != nil:
		problems = append(problems, "unexpected error: "+diagnosticText(sink))
	case c.ExpectError != "" && err == nil:
		problems = append(problems, fmt.Sprintf("expected error containing %q, script succeeded", c.ExpectError))
	case c.ExpectError != "" && !strings.Contains(diagnosticText(sink), c.ExpectError):
		problems = append(problems, fmt.Sprintf("expected error containing %q, got %s", c.ExpectError, diagnosticText(sink)))
	}

	res.Passed = len(problems) == 0
	res.Message = strings.Join(problems, "\n")
	glog.V(5).Infof("%s: passed=%v in %v", c.Name, res.Passed, res.Duration)
	return res
}

func diagnosticText(sink diag.Sink) string {
	var lines []string
	for _, d := range sink.Diagnostics() {
		lines = append(lines, d.String())
	}
	return strings.Join(lines, "\n")
}

package scripttest

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ember/internal/diag"
)

func TestParseCase(t *testing.T) {
	c := ParseCase("t.em", `print 1; // expect: 1
// a note
print "  padded"; //expect:   padded
// expect error: undefined
`)
	assert.Equal(t, []string{"1", "  padded"}, c.Expect)
	assert.Equal(t, "undefined", c.ExpectError)
	assert.Equal(t, "1\n  padded\n", c.ExpectedOutput())
}

func TestParseCaseWithoutExpectations(t *testing.T) {
	c := ParseCase("t.em", "x = 1;")
	assert.Empty(t, c.Expect)
	assert.Equal(t, "", c.ExpectedOutput())
}

func TestDiscover(t *testing.T) {
	files, err := Discover("testdata")
	require.NoError(t, err)

	var names []string
	for _, f := range files {
		rel, err := filepath.Rel("testdata", f)
		require.NoError(t, err)
		names = append(names, filepath.ToSlash(rel))
	}
	assert.Equal(t, []string{
		"fail/unexpected_error.em",
		"fail/wrong_output.em",
		"pass/arithmetic.em",
		"pass/conditionals.em",
		"pass/strings.em",
		"pass/type_error.em",
	}, names)
}

func TestDiscoverMissingDir(t *testing.T) {
	_, err := Discover(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestPassingScripts(t *testing.T) {
	files, err := Discover("testdata/pass")
	require.NoError(t, err)
	cases, err := LoadCases("testdata/pass", files)
	require.NoError(t, err)

	results, err := RunCases(context.Background(), cases, 2, false)
	require.NoError(t, err)
	require.Len(t, results, 4)
	for _, res := range results {
		assert.True(t, res.Passed, "%s: %s\n%s", res.Name, res.Message, res.Diff)
	}
}

func TestWrongOutput(t *testing.T) {
	c := ParseCase("wrong.em", "print 1;\nprint 2; // expect: 1\n// expect: 3\n")
	res := RunCase(c, false)

	assert.False(t, res.Passed)
	assert.Equal(t, "output mismatch", res.Message)
	assert.Equal(t, "--- expected\n+++ actual\n 1\n-3\n+2\n", res.Diff)
}

func TestUnexpectedError(t *testing.T) {
	res := RunCase(ParseCase("bad.em", "print 1 +;"), false)
	assert.False(t, res.Passed)
	assert.Contains(t, res.Message, "unexpected error: bad.em:1: error: ParseError: expected expression, found ';'")
}

func TestExpectedErrorMissing(t *testing.T) {
	res := RunCase(ParseCase("ok.em", "print 1; // expect: 1\n// expect error: boom\n"), false)
	assert.False(t, res.Passed)
	assert.Equal(t, `expected error containing "boom", script succeeded`, res.Message)
}

func TestExpectedErrorMismatch(t *testing.T) {
	res := RunCase(ParseCase("e.em", "print -\"a\";\n// expect error: must be a bool\n"), false)
	assert.False(t, res.Passed)
	assert.Contains(t, res.Message, `expected error containing "must be a bool", got`)
}

func TestStrictVariables(t *testing.T) {
	c := ParseCase("strict.em", "print y;\n// expect error: undefined variable 'y'\n")
	assert.True(t, RunCase(c, true).Passed)
	assert.False(t, RunCase(c, false).Passed)
}

func TestRunnerText(t *testing.T) {
	var out bytes.Buffer
	runner := NewRunner(Options{Dir: "testdata", Parallel: 3}, NewTextReporter(&out, diag.ColorNever, false))

	stats, err := runner.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 6, stats.Total)
	assert.Equal(t, 4, stats.Passed)
	assert.Equal(t, 2, stats.Failed)

	text := out.String()
	assert.Contains(t, text, "FAIL fail/unexpected_error.em")
	assert.Contains(t, text, "FAIL fail/wrong_output.em")
	assert.Contains(t, text, "    -3\n")
	assert.NotContains(t, text, "pass/arithmetic.em")
	assert.Contains(t, text, "FAIL 6 scripts, 4 passed, 2 failed in ")
}

func TestRunnerVerboseFilter(t *testing.T) {
	var out bytes.Buffer
	runner := NewRunner(Options{Dir: "testdata", Filter: "arith"}, NewTextReporter(&out, diag.ColorNever, true))

	stats, err := runner.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Stats{Total: 1, Passed: 1, TotalTime: stats.TotalTime}, stats)
	assert.Contains(t, out.String(), "ok   pass/arithmetic.em")
	assert.Contains(t, out.String(), "PASS 1 script, 1 passed, 0 failed")
}

func TestRunnerJSON(t *testing.T) {
	var out bytes.Buffer
	reporter, err := NewReporter("json", &out, diag.ColorNever, false)
	require.NoError(t, err)

	_, err = NewRunner(Options{Dir: "testdata/fail"}, reporter).Run(context.Background())
	require.NoError(t, err)

	var summary JSONSummary
	require.NoError(t, json.Unmarshal(out.Bytes(), &summary))
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 2, summary.Failed)
	require.Len(t, summary.Results, 2)
	assert.Equal(t, "unexpected_error.em", summary.Results[0].Name)
	assert.NotEmpty(t, summary.Results[1].Diff)
}

func TestUnknownFormat(t *testing.T) {
	_, err := NewReporter("junit", &bytes.Buffer{}, diag.ColorNever, false)
	assert.EqualError(t, err, `unknown report format "junit"`)
}

func TestRunCasesCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := RunCases(ctx, []*Case{ParseCase("a.em", "print 1;")}, 1, false)
	assert.ErrorIs(t, err, context.Canceled)
}

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `session:
  driver: sqlite
  dsn: sessions.db
test:
  parallel: 2
`

type result struct {
	stdout string
	stderr string
	err    error
}

// workspace creates a directory with an ember.yml and the given files.
func workspace(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	files["ember.yml"] = testConfig
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func execute(t *testing.T, dir, stdin string, args ...string) result {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newEmberCmd(strings.NewReader(stdin), &stdout, &stderr)
	cmd.SetArgs(append([]string{"--config", filepath.Join(dir, "ember.yml"), "--color", "never"}, args...))
	err := cmd.Execute()
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func TestRun(t *testing.T) {
	dir := workspace(t, map[string]string{"prog.em": "x = 20;\nprint x + 22;\n"})
	res := execute(t, dir, "", "run", filepath.Join(dir, "prog.em"))
	require.NoError(t, res.err)
	assert.Equal(t, "42\n", res.stdout)
	assert.Empty(t, res.stderr)
}

func TestRunStdin(t *testing.T) {
	dir := workspace(t, map[string]string{})
	res := execute(t, dir, `print "from stdin";`, "run")
	require.NoError(t, res.err)
	assert.Equal(t, "from stdin\n", res.stdout)
}

func TestRunReportsErrors(t *testing.T) {
	dir := workspace(t, map[string]string{})

	res := execute(t, dir, "print 1;\nprint -true;\n", "run")
	assert.Equal(t, errReported, res.err)
	assert.Equal(t, "1\n", res.stdout)
	assert.Equal(t, "<stdin>:2: error: TypeError: operand of '-' must be a number, got bool\n", res.stderr)

	res = execute(t, dir, "print ;", "run")
	assert.Equal(t, errReported, res.err)
	assert.Empty(t, res.stdout)
	assert.Contains(t, res.stderr, "ParseError: expected expression, found ';'")
}

func TestRunStrict(t *testing.T) {
	dir := workspace(t, map[string]string{})
	res := execute(t, dir, "print y;", "run", "--strict")
	assert.Equal(t, errReported, res.err)
	assert.Contains(t, res.stderr, "ReferenceError: undefined variable 'y'")
}

func TestRunMissingFile(t *testing.T) {
	dir := workspace(t, map[string]string{})
	res := execute(t, dir, "", "run", filepath.Join(dir, "nope.em"))
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "nope.em")
}

func TestRunSession(t *testing.T) {
	dir := workspace(t, map[string]string{})

	res := execute(t, dir, "counter = 1;", "run", "--session", "work")
	require.NoError(t, res.err)

	res = execute(t, dir, "counter = counter + 1; print counter;", "run", "--session", "work")
	require.NoError(t, res.err)
	assert.Equal(t, "2\n", res.stdout)

	res = execute(t, dir, "", "sessions", "ls")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "NAME")
	assert.Contains(t, res.stdout, "work")

	res = execute(t, dir, "", "sessions", "rm", "work")
	require.NoError(t, res.err)
	assert.Equal(t, "deleted work\n", res.stdout)

	res = execute(t, dir, "", "sessions", "ls")
	require.NoError(t, res.err)
	assert.Equal(t, "no saved sessions\n", res.stdout)

	res = execute(t, dir, "", "sessions", "rm", "work")
	require.Error(t, res.err)
}

func TestCheck(t *testing.T) {
	dir := workspace(t, map[string]string{})
	res := execute(t, dir, "x = 1;\nprint x;\n", "check")
	require.NoError(t, res.err)
	assert.Equal(t, "<stdin>: ok, 8 tokens, 2 statements\n", res.stdout)

	res = execute(t, dir, "x = 1 @;", "check")
	assert.Equal(t, errReported, res.err)
	assert.Contains(t, res.stderr, "ScanError: unexpected character '@'")
}

func TestFmt(t *testing.T) {
	dir := workspace(t, map[string]string{"prog.em": "x=1;if(x){print x;}"})
	path := filepath.Join(dir, "prog.em")
	want := "x = 1;\n\nif (x) {\n    print x;\n}\n"

	res := execute(t, dir, "", "fmt", path)
	require.NoError(t, res.err)
	assert.Equal(t, want, res.stdout)

	res = execute(t, dir, "", "fmt", "-l", path)
	require.NoError(t, res.err)
	assert.Equal(t, path+"\n", res.stdout)

	res = execute(t, dir, "", "fmt", "-w", path)
	require.NoError(t, res.err)
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, want, string(got))

	res = execute(t, dir, "", "fmt", "-l", path)
	require.NoError(t, res.err)
	assert.Empty(t, res.stdout)
}

func TestFmtRejectsBrokenSource(t *testing.T) {
	dir := workspace(t, map[string]string{})
	res := execute(t, dir, "x = ;", "fmt")
	assert.Equal(t, errReported, res.err)
	assert.Contains(t, res.stderr, "<stdin>:1: error: ParseError")

	res = execute(t, dir, "", "fmt", "-w")
	assert.EqualError(t, res.err, "-w and -l need file arguments")
}

func TestAST(t *testing.T) {
	dir := workspace(t, map[string]string{})
	res := execute(t, dir, "x = 1 + 2 * 3;", "ast", "--sexpr")
	require.NoError(t, res.err)
	assert.Equal(t, "(expr (= x (+ 1 (* 2 3))))\n", res.stdout)

	res = execute(t, dir, "print x;", "ast")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "parser.PrintStmt")
	assert.Contains(t, res.stdout, `Name:"x"`)
}

func TestLint(t *testing.T) {
	dir := workspace(t, map[string]string{})
	res := execute(t, dir, "print y;", "lint")
	assert.Equal(t, errReported, res.err)
	assert.Equal(t, "<stdin>:1: warning: undefined-variable: 'y' is read but never assigned; it evaluates to nil\n", res.stderr)

	res = execute(t, dir, "x = 1; print x;", "lint")
	require.NoError(t, res.err)
	assert.Empty(t, res.stderr)
}

func TestREPL(t *testing.T) {
	dir := workspace(t, map[string]string{})
	res := execute(t, dir, "x = 5;\n:save snap\n:reset\n:load snap\nprint x;\n", "repl")
	require.NoError(t, res.err)
	assert.Equal(t, "saved 1 variables as snap\nvariables cleared\nloaded 1 variables from snap\n5\n", res.stdout)
}

func TestTest(t *testing.T) {
	dir := workspace(t, map[string]string{
		"scripts/ok.em":  "print 1 + 1; // expect: 2\n",
		"scripts/bad.em": "print 1; // expect: 2\n",
	})

	res := execute(t, dir, "", "test", filepath.Join(dir, "scripts"), "--run", "ok")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "PASS 1 script, 1 passed, 0 failed")

	res = execute(t, dir, "", "test", filepath.Join(dir, "scripts"))
	assert.Equal(t, errReported, res.err)
	assert.Contains(t, res.stdout, "FAIL bad.em")
	assert.Contains(t, res.stdout, "FAIL 2 scripts, 1 passed, 1 failed")
}

func TestVersion(t *testing.T) {
	dir := workspace(t, map[string]string{})
	res := execute(t, dir, "", "version")
	require.NoError(t, res.err)
	assert.Equal(t, "ember "+version+"\n", res.stdout)
}

func TestConfigErrors(t *testing.T) {
	dir := workspace(t, map[string]string{})
	res := execute(t, dir, "", "--color", "purple", "version")
	assert.EqualError(t, res.err, `--color must be auto, always or never, got "purple"`)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "ember.yml"), []byte("requires: 99.0.0\n"), 0o644))
	res = execute(t, dir, "", "version")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "requires ember 99.0.0 or newer")
}

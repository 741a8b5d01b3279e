package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ember/internal/diag"
)

func writeConfig(t *testing.T, dir, contents string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
requires: v0.1.0
strict_variables: true
color: never
session:
  driver: postgres
  dsn: postgres://localhost/ember?sslmode=disable
serve:
  addr: ":9000"
  allowed_origins: ["https://example.com"]
  max_message_bytes: 1024
test:
  dir: scripts
  parallel: 2
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, cfg.Path)
	assert.Equal(t, "v0.1.0", cfg.Requires)
	assert.True(t, cfg.StrictVariables)
	assert.Equal(t, diag.ColorNever, cfg.Color)
	assert.Equal(t, SessionConfig{Driver: "postgres", DSN: "postgres://localhost/ember?sslmode=disable"}, cfg.Session)
	assert.Equal(t, ServeConfig{Addr: ":9000", AllowedOrigins: []string{"https://example.com"}, MaxMessageBytes: 1024}, cfg.Serve)
	assert.Equal(t, TestConfig{Dir: filepath.Join(dir, "scripts"), Parallel: 2, Format: "json"}, cfg.Test)
}

func TestLoadKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(writeConfig(t, dir, "strict_variables: false\n"))
	require.NoError(t, err)

	def := Default()
	assert.Equal(t, def.Color, cfg.Color)
	assert.Equal(t, def.Serve, cfg.Serve)
	assert.Equal(t, "sqlite", cfg.Session.Driver)
	assert.Equal(t, filepath.Join(dir, ".ember", "sessions.db"), cfg.Session.DSN)
	assert.Equal(t, dir, cfg.Test.Dir)
}

func TestLoadEmptyFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, t.TempDir(), ""))
	require.NoError(t, err)
	assert.Equal(t, diag.ColorAuto, cfg.Color)
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	_, err := Load(writeConfig(t, t.TempDir(), "colour: always\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "colour")
}

func TestValidation(t *testing.T) {
	_, err := Load(writeConfig(t, t.TempDir(), `
requires: soon
color: rainbow
session:
  driver: oracle
  dsn: x
serve:
  max_message_bytes: 0
  allowed_origins: [""]
test:
  parallel: -1
  format: xml
`))
	require.Error(t, err)
	verr, ok := err.(*ValidationError)
	require.True(t, ok, "got %T", err)
	assert.Equal(t, []string{
		`requires "soon" is not a semantic version`,
		`color must be auto, always or never, got "rainbow"`,
		`session.driver "oracle" is not supported`,
		"serve.max_message_bytes must be positive",
		"serve.allowed_origins[0] must be a non-empty string",
		"test.parallel must not be negative",
		`test.format must be text or json, got "xml"`,
	}, verr.Issues)
	assert.Contains(t, verr.Error(), "config validation failed:\n- ")
}

func TestFind(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	path, err := Find(nested)
	require.NoError(t, err)
	if path != "" {
		// A config above the temp dir would shadow the test.
		t.Skipf("found unrelated %s", path)
	}

	want := writeConfig(t, root, "color: always\n")
	path, err = Find(nested)
	require.NoError(t, err)
	assert.Equal(t, want, path)

	cfg, err := Discover(nested)
	require.NoError(t, err)
	assert.Equal(t, diag.ColorAlways, cfg.Color)
}

func TestCheckRequires(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.CheckRequires("0.1.0"))

	cfg.Requires = "0.2.0"
	assert.NoError(t, cfg.CheckRequires("v0.2.0"))
	assert.NoError(t, cfg.CheckRequires("0.10.0"))
	err := cfg.CheckRequires("0.1.9")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires ember 0.2.0 or newer")
}

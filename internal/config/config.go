// Package config loads the optional ember.yml project file.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"ember/internal/diag"
)

// FileName is the project file looked up by Find.
const FileName = "ember.yml"

// Session backends understood by the session store.
var sessionDrivers = map[string]bool{
	"sqlite":     true,
	"sqlite3":    true,
	"postgres":   true,
	"postgresql": true,
	"mysql":      true,
	"sqlserver":  true,
	"mssql":      true,
}

type Config struct {
	// Path of the file this was loaded from; empty for defaults.
	Path string `yaml:"-"`

	// Requires is the minimum ember version, e.g. "v0.1.0".
	Requires        string         `yaml:"requires"`
	StrictVariables bool           `yaml:"strict_variables"`
	Color           diag.ColorMode `yaml:"color"`
	Session         SessionConfig  `yaml:"session"`
	Serve           ServeConfig    `yaml:"serve"`
	Test            TestConfig     `yaml:"test"`
}

type SessionConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

type ServeConfig struct {
	Addr            string   `yaml:"addr"`
	AllowedOrigins  []string `yaml:"allowed_origins"`
	MaxMessageBytes int64    `yaml:"max_message_bytes"`
}

type TestConfig struct {
	Dir      string `yaml:"dir"`
	Parallel int    `yaml:"parallel"`
	Format   string `yaml:"format"`
}

// Default returns the configuration used when no ember.yml exists.
func Default() *Config {
	return &Config{
		Color: diag.ColorAuto,
		Session: SessionConfig{
			Driver: "sqlite",
			DSN:    filepath.Join(".ember", "sessions.db"),
		},
		Serve: ServeConfig{
			Addr:            "127.0.0.1:7420",
			MaxMessageBytes: 64 << 10,
		},
		Test: TestConfig{
			Dir:      ".",
			Parallel: runtime.NumCPU(),
			Format:   "text",
		},
	}
}

// ValidationError aggregates configuration validation failures.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "config: invalid configuration"
	}
	var b strings.Builder
	b.WriteString("config validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

// Find walks upward from dir looking for ember.yml. It returns "" when
// there is none.
func Find(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", errors.Wrapf(err, "config: resolve %s", dir)
	}
	for {
		candidate := filepath.Join(abs, FileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return "", nil
		}
		abs = parent
	}
}

// Discover loads the nearest ember.yml above dir, or the defaults.
func Discover(dir string) (*Config, error) {
	path, err := Find(dir)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

// Load parses and validates the file at path. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config: empty path")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrapf(err, "config: resolve %s", path)
	}
	file, err := os.Open(absPath)
	if err != nil {
		return nil, errors.Wrapf(err, "config: open %s", absPath)
	}
	defer file.Close()

	cfg := Default()
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && err != io.EOF {
		return nil, errors.Wrapf(err, "config: parse %s", absPath)
	}
	cfg.Path = absPath
	cfg.resolvePaths()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolvePaths makes file paths relative to the config file's directory.
func (c *Config) resolvePaths() {
	base := filepath.Dir(c.Path)
	if c.Test.Dir != "" && !filepath.IsAbs(c.Test.Dir) {
		c.Test.Dir = filepath.Join(base, c.Test.Dir)
	}
	if isSQLite(c.Session.Driver) && c.Session.DSN != "" && !strings.HasPrefix(c.Session.DSN, "file:") &&
		c.Session.DSN != ":memory:" && !filepath.IsAbs(c.Session.DSN) {
		c.Session.DSN = filepath.Join(base, c.Session.DSN)
	}
}

func (c *Config) Validate() error {
	var errs ValidationError
	if c.Requires != "" && !semver.IsValid(canonical(c.Requires)) {
		errs.Issues = append(errs.Issues, fmt.Sprintf("requires %q is not a semantic version", c.Requires))
	}
	if !c.Color.Valid() {
		errs.Issues = append(errs.Issues, fmt.Sprintf("color must be auto, always or never, got %q", c.Color))
	}
	if c.Session.Driver != "" && !sessionDrivers[strings.ToLower(c.Session.Driver)] {
		errs.Issues = append(errs.Issues, fmt.Sprintf("session.driver %q is not supported", c.Session.Driver))
	}
	if c.Session.Driver != "" && c.Session.DSN == "" {
		errs.Issues = append(errs.Issues, "session.dsn must be provided when session.driver is set")
	}
	if c.Serve.MaxMessageBytes <= 0 {
		errs.Issues = append(errs.Issues, "serve.max_message_bytes must be positive")
	}
	for i, origin := range c.Serve.AllowedOrigins {
		if strings.TrimSpace(origin) == "" {
			errs.Issues = append(errs.Issues, fmt.Sprintf("serve.allowed_origins[%d] must be a non-empty string", i))
		}
	}
	if c.Test.Parallel < 0 {
		errs.Issues = append(errs.Issues, "test.parallel must not be negative")
	}
	switch c.Test.Format {
	case "", "text", "json":
	default:
		errs.Issues = append(errs.Issues, fmt.Sprintf("test.format must be text or json, got %q", c.Test.Format))
	}
	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}

// CheckRequires fails when the running version is older than Requires.
func (c *Config) CheckRequires(version string) error {
	if c.Requires == "" {
		return nil
	}
	if semver.Compare(canonical(version), canonical(c.Requires)) < 0 {
		return errors.Errorf("%s requires ember %s or newer, this is %s", c.source(), c.Requires, version)
	}
	return nil
}

func (c *Config) source() string {
	if c.Path == "" {
		return "configuration"
	}
	return c.Path
}

func canonical(v string) string {
	if !strings.HasPrefix(v, "v") {
		return "v" + v
	}
	return v
}

func isSQLite(driver string) bool {
	switch strings.ToLower(driver) {
	case "", "sqlite", "sqlite3":
		return true
	}
	return false
}

// cmd/ember/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"ember/internal/config"
	"ember/internal/diag"
	"ember/internal/session"
)

const version = "0.1.0"

// errReported means the failure was already printed as diagnostics.
var errReported = errors.New("errors reported")

func main() {
	cmd := newEmberCmd(os.Stdin, os.Stdout, os.Stderr)
	if err := cmd.Execute(); err != nil {
		if err != errReported {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		glog.Flush()
		os.Exit(1)
	}
	glog.Flush()
}

// cli carries the streams and settings shared by every command.
type cli struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	configPath  string
	color       string
	verbose     int
	logToStderr bool

	cfg *config.Config
}

func newEmberCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	c := &cli{stdin: stdin, stdout: stdout, stderr: stderr}

	cmd := &cobra.Command{
		Use:           "ember",
		Short:         "Ember runs, checks and formats Ember programs",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			initLogging(c.logToStderr, c.verbose)
			return c.loadConfig()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			glog.Flush()
		},
	}
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	cmd.PersistentFlags().StringVar(&c.configPath, "config", "", "Path to ember.yml (default: nearest one above the working directory)")
	cmd.PersistentFlags().StringVar(&c.color, "color", "", "Colorize diagnostics: auto, always or never")
	cmd.PersistentFlags().BoolVar(&c.logToStderr, "logtostderr", true, "Log to stderr instead of to files")
	cmd.PersistentFlags().IntVarP(
		&c.verbose, "verbose", "v", 0, "Enable verbose logging (e.g., v=3); anything >3 is very verbose")

	cmd.AddCommand(newRunCmd(c))
	cmd.AddCommand(newCheckCmd(c))
	cmd.AddCommand(newFmtCmd(c))
	cmd.AddCommand(newASTCmd(c))
	cmd.AddCommand(newLintCmd(c))
	cmd.AddCommand(newREPLCmd(c))
	cmd.AddCommand(newServeCmd(c))
	cmd.AddCommand(newTestCmd(c))
	cmd.AddCommand(newSessionsCmd(c))
	cmd.AddCommand(newVersionCmd(c))

	return cmd
}

// initLogging points glog's own flags at our settings. glog only reads
// flag.CommandLine, so it is marked parsed and poked directly.
func initLogging(logToStderr bool, verbose int) {
	if !flag.Parsed() {
		flag.CommandLine.Parse(nil)
	}
	if logToStderr {
		flag.Lookup("logtostderr").Value.Set("true")
	}
	if verbose > 0 {
		flag.Lookup("v").Value.Set(strconv.Itoa(verbose))
	}
}

func (c *cli) loadConfig() error {
	var err error
	if c.configPath != "" {
		c.cfg, err = config.Load(c.configPath)
	} else {
		c.cfg, err = config.Discover(".")
	}
	if err != nil {
		return err
	}
	if c.color != "" {
		mode := diag.ColorMode(c.color)
		if !mode.Valid() {
			return errors.Errorf("--color must be auto, always or never, got %q", c.color)
		}
		c.cfg.Color = mode
	}
	if c.cfg.Path != "" {
		glog.V(3).Infof("loaded configuration from %s", c.cfg.Path)
	}
	return c.cfg.CheckRequires(version)
}

// sink prints diagnostics to stderr.
func (c *cli) sink() *diag.WriterSink {
	return diag.NewWriterSink(c.stderr, c.cfg.Color)
}

// readSource reads the file named by args, or stdin when there is none or
// it is "-".
func (c *cli) readSource(args []string) (source string, name string, err error) {
	if len(args) == 0 || args[0] == "-" {
		b, err := io.ReadAll(c.stdin)
		if err != nil {
			return "", "", errors.Wrap(err, "read stdin")
		}
		return string(b), "<stdin>", nil
	}
	b, err := os.ReadFile(args[0])
	if err != nil {
		return "", "", errors.Wrapf(err, "read %s", args[0])
	}
	return string(b), args[0], nil
}

func (c *cli) openSessions(ctx context.Context) (*session.Store, error) {
	return session.Open(ctx, c.cfg.Session.Driver, c.cfg.Session.DSN)
}

func (c *cli) printf(format string, args ...any) {
	fmt.Fprintf(c.stdout, format, args...)
}

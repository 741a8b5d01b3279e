// cmd/ember/run.go
package main

import (
	"github.com/dustin/go-humanize"
	"github.com/kr/pretty"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"ember/internal/driver"
	"ember/internal/interpreter"
	"ember/internal/lint"
	"ember/internal/parser"
	"ember/internal/session"
)

func newRunCmd(c *cli) *cobra.Command {
	var sessionName string
	var strict bool
	cmd := &cobra.Command{
		Use:   "run [file]",
		Short: "Run a program",
		Long: "Run a program read from a file, or from stdin when no file is given.\n" +
			"\n" +
			"With --session, variables saved under that name are restored before the run\n" +
			"and the resulting variables are saved back afterwards.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, name, err := c.readSource(args)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			store := interpreter.NewStore()
			var snapshots *session.Store
			if sessionName != "" {
				if snapshots, err = c.openSessions(ctx); err != nil {
					return err
				}
				defer snapshots.Close()

				vars, err := snapshots.Load(ctx, sessionName)
				if err != nil && !errors.Is(err, session.ErrNotFound) {
					return err
				}
				store.Restore(vars)
			}

			runErr := driver.NewSession(driver.Options{
				File:            name,
				Out:             c.stdout,
				Sink:            c.sink(),
				Store:           store,
				StrictVariables: strict || c.cfg.StrictVariables,
			}).Exec(source)

			if snapshots != nil {
				if err := snapshots.Save(ctx, sessionName, store.Snapshot()); err != nil {
					return err
				}
			}
			if runErr != nil {
				return errReported
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&sessionName, "session", "", "Restore and save variables under this name")
	cmd.Flags().BoolVar(&strict, "strict", false, "Treat reads of undefined variables as errors")
	return cmd
}

func newCheckCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "check [file]",
		Short: "Scan and parse a program without running it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, name, err := c.readSource(args)
			if err != nil {
				return err
			}
			stats, err := driver.NewSession(driver.Options{File: name, Sink: c.sink()}).Check(source)
			if err != nil {
				return errReported
			}
			c.printf("%s: ok, %s tokens, %s statements\n",
				name, humanize.Comma(int64(stats.Tokens)), humanize.Comma(int64(stats.Statements)))
			return nil
		},
	}
}

func newASTCmd(c *cli) *cobra.Command {
	var sexpr bool
	cmd := &cobra.Command{
		Use:   "ast [file]",
		Short: "Print the parsed syntax tree",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, name, err := c.readSource(args)
			if err != nil {
				return err
			}
			stmts, err := driver.NewSession(driver.Options{File: name, Sink: c.sink()}).Parse(source)
			if err != nil {
				return errReported
			}
			if sexpr {
				c.printf("%s", parser.Dump(stmts))
				return nil
			}
			pretty.Fprintf(c.stdout, "%# v\n", stmts)
			return nil
		},
	}
	cmd.Flags().BoolVar(&sexpr, "sexpr", false, "Print one s-expression per statement")
	return cmd
}

func newLintCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "lint [file]",
		Short: "Report suspicious constructs in a program",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, name, err := c.readSource(args)
			if err != nil {
				return err
			}
			sink := c.sink()
			stmts, err := driver.NewSession(driver.Options{File: name, Sink: sink}).Parse(source)
			if err != nil {
				return errReported
			}
			for _, d := range lint.Check(stmts, name) {
				sink.Report(d)
			}
			if sink.Warnings() > 0 {
				return errReported
			}
			return nil
		},
	}
}

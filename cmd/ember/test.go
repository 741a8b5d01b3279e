// cmd/ember/test.go
package main

import (
	"github.com/spf13/cobra"

	"ember/internal/scripttest"
)

func newTestCmd(c *cli) *cobra.Command {
	var parallel int
	var format string
	var filter string
	var verbose bool
	cmd := &cobra.Command{
		Use:   "test [dir]",
		Short: "Run script tests",
		Long: "Run every .em file under a directory and check it against the expectations\n" +
			"in its comments:\n" +
			"\n" +
			"    print 1 + 2; // expect: 3\n" +
			"    // expect error: undefined variable\n",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := c.cfg.Test.Dir
			if len(args) > 0 {
				dir = args[0]
			}
			if !cmd.Flags().Changed("parallel") {
				parallel = c.cfg.Test.Parallel
			}
			if format == "" {
				format = c.cfg.Test.Format
			}

			reporter, err := scripttest.NewReporter(format, c.stdout, c.cfg.Color, verbose)
			if err != nil {
				return err
			}
			stats, err := scripttest.NewRunner(scripttest.Options{
				Dir:             dir,
				Parallel:        parallel,
				Filter:          filter,
				StrictVariables: c.cfg.StrictVariables,
			}, reporter).Run(cmd.Context())
			if err != nil {
				return err
			}
			if stats.Failed > 0 {
				return errReported
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&parallel, "parallel", "p", 0, "Scripts to run at once (default from ember.yml, else CPU count)")
	cmd.Flags().StringVar(&format, "format", "", "Report format: text or json")
	cmd.Flags().StringVar(&filter, "run", "", "Only run scripts whose path contains this text")
	cmd.Flags().BoolVar(&verbose, "verbose-results", false, "Also list passing scripts")
	return cmd
}

// cmd/ember/fmt.go
package main

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"ember/internal/diag"
	"ember/internal/formatter"
)

func newFmtCmd(c *cli) *cobra.Command {
	var write bool
	var list bool
	cmd := &cobra.Command{
		Use:   "fmt [file...]",
		Short: "Rewrite programs in canonical form",
		Long: "Rewrite programs in canonical form: four-space indentation, single spaces\n" +
			"around operators, and a blank line around top-level if statements.\n" +
			"\n" +
			"Without -w the formatted program is printed. Comments are kept.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				if write || list {
					return errors.New("-w and -l need file arguments")
				}
				args = []string{"-"}
			}

			sink := c.sink()
			for _, arg := range args {
				source, name, err := c.readSource([]string{arg})
				if err != nil {
					return err
				}
				formatted, err := formatter.Source(source)
				if err != nil {
					d := diag.FromError(err)
					d.File = name
					sink.Report(d)
					continue
				}

				switch {
				case list:
					if formatted != source {
						c.printf("%s\n", name)
					}
				case write:
					if formatted == source {
						continue
					}
					info, err := os.Stat(name)
					if err != nil {
						return errors.Wrapf(err, "stat %s", name)
					}
					if err := os.WriteFile(name, []byte(formatted), info.Mode().Perm()); err != nil {
						return errors.Wrapf(err, "write %s", name)
					}
				default:
					c.printf("%s", formatted)
				}
			}
			if sink.Errors() > 0 {
				return errReported
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&write, "write", "w", false, "Write the result back to each file")
	cmd.Flags().BoolVarP(&list, "list", "l", false, "List files whose formatting differs")
	return cmd
}

// cmd/ember/sessions.go
package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newSessionsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Manage saved variable sessions",
	}
	cmd.AddCommand(newSessionsLsCmd(c))
	cmd.AddCommand(newSessionsRmCmd(c))
	return cmd
}

func newSessionsLsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "List saved sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.openSessions(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			list, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(list) == 0 {
				c.printf("no saved sessions\n")
				return nil
			}
			w := tabwriter.NewWriter(c.stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "NAME\tVARIABLES\tUPDATED\n")
			for _, s := range list {
				fmt.Fprintf(w, "%s\t%d\t%s\n", s.Name, s.Bindings, humanize.Time(s.UpdatedAt))
			}
			return w.Flush()
		},
	}
}

func newSessionsRmCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "rm name...",
		Short: "Delete saved sessions",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.openSessions(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			for _, name := range args {
				if err := store.Delete(cmd.Context(), name); err != nil {
					return err
				}
				c.printf("deleted %s\n", name)
			}
			return nil
		},
	}
}

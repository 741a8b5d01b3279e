// cmd/ember/repl.go
package main

import (
	"context"
	"os"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"ember/internal/repl"
	"ember/internal/session"
	"ember/internal/value"
)

func newREPLCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Evaluate statements interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snapshots := &lazySnapshots{open: c.openSessions}
			defer snapshots.Close()

			return repl.Start(cmd.Context(), c.stdin, c.stdout, repl.Options{
				Prompt:          isTerminal(c.stdin),
				Snapshots:       snapshots,
				Color:           c.cfg.Color,
				StrictVariables: c.cfg.StrictVariables,
			})
		},
	}
}

func isTerminal(r any) bool {
	f, ok := r.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

// lazySnapshots opens the session store on the first :save or :load, so a
// REPL that never uses them never touches the database.
type lazySnapshots struct {
	open func(ctx context.Context) (*session.Store, error)

	once  sync.Once
	store *session.Store
	err   error
}

func (l *lazySnapshots) get(ctx context.Context) (*session.Store, error) {
	l.once.Do(func() {
		l.store, l.err = l.open(ctx)
	})
	return l.store, l.err
}

func (l *lazySnapshots) Save(ctx context.Context, name string, vars map[string]value.Value) error {
	store, err := l.get(ctx)
	if err != nil {
		return err
	}
	return store.Save(ctx, name, vars)
}

func (l *lazySnapshots) Load(ctx context.Context, name string) (map[string]value.Value, error) {
	store, err := l.get(ctx)
	if err != nil {
		return nil, err
	}
	return store.Load(ctx, name)
}

func (l *lazySnapshots) Close() error {
	if l.store == nil {
		return nil
	}
	return l.store.Close()
}

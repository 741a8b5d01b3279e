// internal/repl/repl.go
package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"ember/internal/diag"
	"ember/internal/driver"
	"ember/internal/lexer"
	"ember/internal/value"
)

const (
	PROMPT       = ">>> "
	CONTINUATION = "... "
)

const help = `Statements end with ';'. Blocks may span several lines.
  :vars          list variables
  :reset         forget all variables
  :save [name]   save variables (a name is generated when omitted)
  :load name     replace variables with a saved set
  :help          show this help
  exit           leave
`

// Snapshots persists variable sets for :save and :load.
type Snapshots interface {
	Save(ctx context.Context, name string, vars map[string]value.Value) error
	Load(ctx context.Context, name string) (map[string]value.Value, error)
}

type Options struct {
	// Prompt prints the banner and prompts. Off for piped input.
	Prompt bool
	// Snapshots backs :save and :load. They report an error when nil.
	Snapshots       Snapshots
	Color           diag.ColorMode
	StrictVariables bool
}

// Start reads statements from in until EOF or exit, evaluating each complete
// chunk against one session.
func Start(ctx context.Context, in io.Reader, out io.Writer, opts Options) error {
	r := &repl{
		ctx:  ctx,
		out:  out,
		opts: opts,
		session: driver.NewSession(driver.Options{
			File:            "<repl>",
			Out:             out,
			Sink:            diag.NewWriterSink(out, opts.Color),
			StrictVariables: opts.StrictVariables,
		}),
	}
	return r.loop(in)
}

type repl struct {
	ctx     context.Context
	out     io.Writer
	opts    Options
	session *driver.Session
}

func (r *repl) loop(in io.Reader) error {
	if r.opts.Prompt {
		fmt.Fprintln(r.out, "Ember REPL | type ':help' for commands, 'exit' to quit")
	}
	scanner := bufio.NewScanner(in)

	var pending strings.Builder
	for {
		if r.opts.Prompt {
			if pending.Len() == 0 {
				fmt.Fprint(r.out, PROMPT)
			} else {
				fmt.Fprint(r.out, CONTINUATION)
			}
		}
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()

		if pending.Len() == 0 {
			trimmed := strings.TrimSpace(line)
			if trimmed == "exit" || trimmed == ":quit" {
				return nil
			}
			if strings.HasPrefix(trimmed, ":") {
				r.command(trimmed)
				continue
			}
		}

		pending.WriteString(line)
		pending.WriteString("\n")
		if openBlocks(pending.String()) > 0 {
			continue
		}
		src := pending.String()
		pending.Reset()
		if strings.TrimSpace(src) == "" {
			continue
		}
		// Errors were already reported through the sink.
		_ = r.session.Exec(src)

		if err := r.ctx.Err(); err != nil {
			return err
		}
	}
	if pending.Len() > 0 {
		_ = r.session.Exec(pending.String())
	}
	return scanner.Err()
}

// openBlocks counts braces not yet closed in src.
func openBlocks(src string) int {
	tokens, _ := lexer.Scan(src)
	depth := 0
	for _, tok := range tokens {
		switch tok.Type {
		case lexer.TokenLeftBrace:
			depth++
		case lexer.TokenRightBrace:
			depth--
		}
	}
	return depth
}

func (r *repl) command(line string) {
	fields := strings.Fields(line)
	switch fields[0] {
	case ":help":
		io.WriteString(r.out, help)

	case ":vars":
		store := r.session.Store()
		for _, name := range store.Names() {
			v, _ := store.Get(name)
			fmt.Fprintf(r.out, "%s = %s\n", name, value.Inspect(v))
		}

	case ":reset":
		r.session.Store().Reset()
		fmt.Fprintln(r.out, "variables cleared")

	case ":save":
		if r.opts.Snapshots == nil {
			fmt.Fprintln(r.out, "error: no session store configured")
			return
		}
		name := "repl-" + uuid.NewString()[:8]
		if len(fields) > 1 {
			name = fields[1]
		}
		vars := r.session.Store().Snapshot()
		if err := r.opts.Snapshots.Save(r.ctx, name, vars); err != nil {
			fmt.Fprintf(r.out, "error: %v\n", err)
			return
		}
		fmt.Fprintf(r.out, "saved %d variables as %s\n", len(vars), name)

	case ":load":
		if r.opts.Snapshots == nil {
			fmt.Fprintln(r.out, "error: no session store configured")
			return
		}
		if len(fields) < 2 {
			fmt.Fprintln(r.out, "usage: :load name")
			return
		}
		vars, err := r.opts.Snapshots.Load(r.ctx, fields[1])
		if err != nil {
			fmt.Fprintf(r.out, "error: %v\n", err)
			return
		}
		r.session.Store().Restore(vars)
		fmt.Fprintf(r.out, "loaded %d variables from %s\n", len(vars), fields[1])

	default:
		fmt.Fprintf(r.out, "unknown command %s (try :help)\n", fields[0])
	}
}

// Package driver runs source text through the scanner, parser and
// interpreter and routes every failure to a diagnostic sink.
package driver

import (
	"io"
	"time"

	"github.com/golang/glog"

	"ember/internal/diag"
	"ember/internal/errors"
	"ember/internal/interpreter"
	"ember/internal/lexer"
	"ember/internal/parser"
)

type Options struct {
	// File names the source in diagnostics. May be empty.
	File string
	// Out receives print output. Discarded when nil.
	Out io.Writer
	// Sink receives diagnostics. A Collector is used when nil.
	Sink diag.Sink
	// Store to evaluate against. A fresh one is created when nil.
	Store           *interpreter.Store
	StrictVariables bool
}

func (o *Options) normalize() {
	if o.Out == nil {
		o.Out = io.Discard
	}
	if o.Sink == nil {
		o.Sink = diag.NewCollector()
	}
	if o.Store == nil {
		o.Store = interpreter.NewStore()
	}
}

// Session evaluates successive programs against one Variable Store.
type Session struct {
	opts   Options
	interp *interpreter.Interpreter
}

// Stats describes a successfully parsed program.
type Stats struct {
	Tokens     int
	Statements int
}

func NewSession(opts Options) *Session {
	opts.normalize()
	return &Session{
		opts: opts,
		interp: interpreter.New(opts.Out, interpreter.Options{
			Store:           opts.Store,
			StrictVariables: opts.StrictVariables,
		}),
	}
}

func (s *Session) Store() *interpreter.Store {
	return s.opts.Store
}

func (s *Session) Sink() diag.Sink {
	return s.opts.Sink
}

// Parse scans and parses source without executing it.
//
// Scan errors are all reported, and the best-effort token stream is still
// parsed so that a resulting parse error is reported too. When parsing
// succeeds despite scan errors, the first scan error is returned.
func (s *Session) Parse(source string) ([]parser.Stmt, error) {
	stmts, _, err := s.parse(source)
	return stmts, err
}

// Check parses source and reports its size.
func (s *Session) Check(source string) (Stats, error) {
	stmts, tokens, err := s.parse(source)
	if err != nil {
		return Stats{}, err
	}
	return Stats{Tokens: tokens, Statements: len(stmts)}, nil
}

func (s *Session) parse(source string) ([]parser.Stmt, int, error) {
	start := time.Now()
	scanner := lexer.NewScanner(source)
	tokens := scanner.ScanTokens()
	for _, e := range scanner.Errors() {
		s.report(e, source)
	}
	glog.V(3).Infof("scanned %d tokens (%d errors) in %v", len(tokens), len(scanner.Errors()), time.Since(start))

	start = time.Now()
	stmts, err := parser.NewParserWithSource(tokens, source, s.opts.File).Parse()
	if err != nil {
		s.report(err, source)
		return nil, len(tokens), err
	}
	glog.V(3).Infof("parsed %d statements in %v", len(stmts), time.Since(start))

	if scanner.HadError() {
		return nil, len(tokens), scanner.Errors()[0]
	}
	return stmts, len(tokens), nil
}

// Exec parses and runs source. A runtime error stops the run; output
// already written and assignments already made are kept.
func (s *Session) Exec(source string) error {
	stmts, err := s.Parse(source)
	if err != nil {
		return err
	}

	start := time.Now()
	if err := s.interp.Run(stmts); err != nil {
		s.report(err, source)
		return err
	}
	glog.V(3).Infof("executed %d statements in %v", len(stmts), time.Since(start))
	return nil
}

func (s *Session) report(err error, source string) {
	if e, ok := errors.As(err); ok {
		if e.Location.File == "" && s.opts.File != "" {
			e.WithFile(s.opts.File)
		}
		if e.Source == "" {
			e.AttachSource(source)
		}
	}
	s.opts.Sink.Report(diag.FromError(err))
}

// Run evaluates source once in a fresh session.
func Run(source string, out io.Writer) error {
	return NewSession(Options{Out: out}).Exec(source)
}

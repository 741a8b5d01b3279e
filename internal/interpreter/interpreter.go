package interpreter

import (
	"fmt"
	"io"

	"github.com/golang/glog"
	pkgerrors "github.com/pkg/errors"

	"ember/internal/errors"
	"ember/internal/parser"
	"ember/internal/value"
)

// Options configure an Interpreter. The zero value is usable.
type Options struct {
	// Store to evaluate against. A fresh one is created when nil.
	Store *Store
	// StrictVariables makes reading an unassigned variable a ReferenceError
	// instead of yielding nil.
	StrictVariables bool
}

func (o *Options) normalize() {
	if o.Store == nil {
		o.Store = NewStore()
	}
}

// Interpreter walks statement trees against a single Store, writing one
// line to out per executed print statement.
type Interpreter struct {
	out    io.Writer
	store  *Store
	strict bool
}

func New(out io.Writer, opts Options) *Interpreter {
	opts.normalize()
	if out == nil {
		out = io.Discard
	}
	return &Interpreter{
		out:    out,
		store:  opts.Store,
		strict: opts.StrictVariables,
	}
}

func (in *Interpreter) Store() *Store {
	return in.store
}

// Run executes statements in order and stops at the first runtime error.
// Output already written and assignments already made are kept.
func (in *Interpreter) Run(stmts []parser.Stmt) error {
	for _, stmt := range stmts {
		if err := in.Execute(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (in *Interpreter) Execute(stmt parser.Stmt) error {
	if glog.V(5) {
		glog.Infof("exec %s", stmt)
	}

	switch s := stmt.(type) {
	case *parser.ExpressionStmt:
		_, err := in.Evaluate(s.Expr)
		return err

	case *parser.PrintStmt:
		v, err := in.Evaluate(s.Expr)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(in.out, value.Format(v)); err != nil {
			return pkgerrors.Wrapf(err, "writing output of line %d", s.Line)
		}
		return nil

	case *parser.IfStmt:
		cond, err := in.Evaluate(s.Condition)
		if err != nil {
			return err
		}
		if value.Truthy(cond) {
			return in.Execute(s.Then)
		}
		if s.Else != nil {
			return in.Execute(s.Else)
		}
		return nil

	case *parser.Block:
		return in.Run(s.Statements)
	}
	return fmt.Errorf("unknown statement type %T", stmt)
}

// Evaluate computes the value of expr. Only assignments change the Store.
func (in *Interpreter) Evaluate(expr parser.Expr) (value.Value, error) {
	switch e := expr.(type) {
	case *parser.Literal:
		if e.Value == nil {
			return value.Nil{}, nil
		}
		return e.Value, nil

	case *parser.Grouping:
		return in.Evaluate(e.Inner)

	case *parser.Variable:
		if v, ok := in.store.Get(e.Name); ok {
			return v, nil
		}
		if in.strict {
			return nil, errors.NewReferenceError(e.Line, "undefined variable '%s'", e.Name)
		}
		return value.Nil{}, nil

	case *parser.Assign:
		v, err := in.Evaluate(e.Value)
		if err != nil {
			return nil, err
		}
		in.store.Set(e.Name, v)
		return v, nil

	case *parser.Unary:
		operand, err := in.Evaluate(e.Operand)
		if err != nil {
			return nil, err
		}
		return unary(e, operand)

	case *parser.Binary:
		left, err := in.Evaluate(e.Left)
		if err != nil {
			return nil, err
		}
		right, err := in.Evaluate(e.Right)
		if err != nil {
			return nil, err
		}
		return binary(e, left, right)

	case *parser.Logical:
		// Both sides are always evaluated; there is no short-circuit.
		left, err := in.Evaluate(e.Left)
		if err != nil {
			return nil, err
		}
		right, err := in.Evaluate(e.Right)
		if err != nil {
			return nil, err
		}
		if e.Op == parser.OpAnd {
			return value.Bool(value.Truthy(left) && value.Truthy(right)), nil
		}
		return value.Bool(value.Truthy(left) || value.Truthy(right)), nil
	}
	return nil, fmt.Errorf("unknown expression type %T", expr)
}

func unary(e *parser.Unary, operand value.Value) (value.Value, error) {
	switch e.Op {
	case parser.OpNot:
		b, ok := operand.(value.Bool)
		if !ok {
			return nil, errors.NewTypeError(e.Line, "operand of '!' must be a bool, got %s", value.KindOf(operand))
		}
		return !b, nil
	case parser.OpNegate, parser.OpPlus:
		n, ok := operand.(value.Number)
		if !ok {
			return nil, errors.NewTypeError(e.Line, "operand of '%s' must be a number, got %s", e.Op, value.KindOf(operand))
		}
		if e.Op == parser.OpNegate {
			return -n, nil
		}
		return n, nil
	}
	return nil, errors.NewTypeError(e.Line, "unknown unary operator '%s'", e.Op)
}

func binary(e *parser.Binary, left, right value.Value) (value.Value, error) {
	switch e.Op {
	case parser.OpEqual:
		return value.Bool(value.Equal(left, right)), nil
	case parser.OpNotEqual:
		return value.Bool(!value.Equal(left, right)), nil
	case parser.OpAdd:
		if l, ok := left.(value.String); ok {
			if r, ok := right.(value.String); ok {
				return l + r, nil
			}
		}
		l, r, ok := numbers(left, right)
		if !ok {
			return nil, errors.NewTypeError(e.Line,
				"operands of '+' must be two numbers or two strings, got %s and %s",
				value.KindOf(left), value.KindOf(right))
		}
		return l + r, nil
	}

	l, r, ok := numbers(left, right)
	if !ok {
		return nil, errors.NewTypeError(e.Line, "operands of '%s' must be numbers, got %s and %s",
			e.Op, value.KindOf(left), value.KindOf(right))
	}
	switch e.Op {
	case parser.OpSubtract:
		return l - r, nil
	case parser.OpMultiply:
		return l * r, nil
	case parser.OpDivide:
		return l / r, nil
	case parser.OpLess:
		return value.Bool(l < r), nil
	case parser.OpGreater:
		return value.Bool(l > r), nil
	case parser.OpLessEqual:
		return value.Bool(l <= r), nil
	case parser.OpGreaterEqual:
		return value.Bool(l >= r), nil
	}
	return nil, errors.NewTypeError(e.Line, "unknown binary operator '%s'", e.Op)
}

func numbers(left, right value.Value) (value.Number, value.Number, bool) {
	l, lok := left.(value.Number)
	r, rok := right.(value.Number)
	return l, r, lok && rok
}

// internal/parser/ast.go
package parser

import (
	"strconv"
	"strings"

	"ember/internal/value"
)

// Expr is a node of the expression tree. The set of node types is closed;
// consumers switch on the concrete type.
type Expr interface {
	String() string
	exprNode()
}

type UnaryOp string

const (
	OpNot    UnaryOp = "!"
	OpNegate UnaryOp = "-"
	OpPlus   UnaryOp = "+"
)

type BinaryOp string

const (
	OpAdd          BinaryOp = "+"
	OpSubtract     BinaryOp = "-"
	OpMultiply     BinaryOp = "*"
	OpDivide       BinaryOp = "/"
	OpLess         BinaryOp = "<"
	OpGreater      BinaryOp = ">"
	OpLessEqual    BinaryOp = "<="
	OpGreaterEqual BinaryOp = ">="
	OpEqual        BinaryOp = "=="
	OpNotEqual     BinaryOp = "!="
)

type LogicalOp string

const (
	OpAnd LogicalOp = "and"
	OpOr  LogicalOp = "or"
)

// Literal expression: 1, "a", true, nil
type Literal struct {
	Value value.Value
	Line  int
}

// Variable expression: x
type Variable struct {
	Name string
	Line int
}

// Assignment expression: x = 42
type Assign struct {
	Name  string
	Value Expr
	Line  int
}

// Unary expression: !x, -x, +x
type Unary struct {
	Op      UnaryOp
	Operand Expr
	Line    int
}

// Binary expression: a + b
type Binary struct {
	Left  Expr
	Op    BinaryOp
	Right Expr
	Line  int
}

// Logical expression: a and b
type Logical struct {
	Left  Expr
	Op    LogicalOp
	Right Expr
	Line  int
}

// Grouping expression: (a)
type Grouping struct {
	Inner Expr
}

func (*Literal) exprNode()  {}
func (*Variable) exprNode() {}
func (*Assign) exprNode()   {}
func (*Unary) exprNode()    {}
func (*Binary) exprNode()   {}
func (*Logical) exprNode()  {}
func (*Grouping) exprNode() {}

// String methods print a parenthesised prefix form. Line numbers are not
// part of it, so two trees print the same iff they have the same shape.

func (l *Literal) String() string {
	if s, ok := l.Value.(value.String); ok {
		return strconv.Quote(string(s))
	}
	return value.Format(l.Value)
}

func (v *Variable) String() string { return v.Name }

func (a *Assign) String() string { return sexpr("=", a.Name, a.Value.String()) }

func (u *Unary) String() string { return sexpr(string(u.Op), u.Operand.String()) }

func (b *Binary) String() string {
	return sexpr(string(b.Op), b.Left.String(), b.Right.String())
}

func (l *Logical) String() string {
	return sexpr(string(l.Op), l.Left.String(), l.Right.String())
}

func (g *Grouping) String() string { return sexpr("group", g.Inner.String()) }

func sexpr(head string, parts ...string) string {
	var sb strings.Builder
	sb.WriteString("(")
	sb.WriteString(head)
	for _, p := range parts {
		sb.WriteString(" ")
		sb.WriteString(p)
	}
	sb.WriteString(")")
	return sb.String()
}

// internal/parser/stmt.go
package parser

import "strings"

// Stmt represents a statement.
type Stmt interface {
	String() string
	stmtNode()
}

// ExpressionStmt wraps a raw expression as a statement.
type ExpressionStmt struct {
	Expr Expr
	Line int
}

// PrintStmt wraps an expression to print.
type PrintStmt struct {
	Expr Expr
	Line int
}

// IfStmt: if (cond) { ... } else { ... }. Else is nil when absent.
type IfStmt struct {
	Condition Expr
	Then      Stmt
	Else      Stmt
	Line      int
}

// Block is a braced statement list. The grammar only produces it as an
// if/else body.
type Block struct {
	Statements []Stmt
	End        int // line of the closing brace
}

func (*ExpressionStmt) stmtNode() {}
func (*PrintStmt) stmtNode()      {}
func (*IfStmt) stmtNode()         {}
func (*Block) stmtNode()          {}

func (e *ExpressionStmt) String() string { return sexpr("expr", e.Expr.String()) }

func (p *PrintStmt) String() string { return sexpr("print", p.Expr.String()) }

func (i *IfStmt) String() string {
	if i.Else == nil {
		return sexpr("if", i.Condition.String(), i.Then.String())
	}
	return sexpr("if", i.Condition.String(), i.Then.String(), i.Else.String())
}

func (b *Block) String() string {
	parts := make([]string, len(b.Statements))
	for i, s := range b.Statements {
		parts[i] = s.String()
	}
	return sexpr("block", parts...)
}

// Dump prints a program one statement per line.
func Dump(stmts []Stmt) string {
	var sb strings.Builder
	for _, s := range stmts {
		sb.WriteString(s.String())
		sb.WriteString("\n")
	}
	return sb.String()
}

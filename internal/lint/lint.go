// Package lint reports suspicious but valid programs.
package lint

import (
	"fmt"
	"sort"

	"ember/internal/diag"
	"ember/internal/parser"
	"ember/internal/value"
)

// Rule names, used as the diagnostic Kind.
const (
	RuleUndefinedVariable  = "undefined-variable"
	RuleUnusedAssignment   = "unused-assignment"
	RuleConstantCondition  = "constant-condition"
	RuleEagerLogicalAssign = "eager-logical-assign"
)

type use struct {
	first int // line of first occurrence
	count int
}

// Check inspects a parsed program. Findings are warnings ordered by line.
func Check(stmts []parser.Stmt, file string) []diag.Diagnostic {
	reads := map[string]*use{}
	writes := map[string]*use{}
	var findings []diag.Diagnostic

	warn := func(rule string, line int, format string, args ...any) {
		findings = append(findings, diag.Diagnostic{
			Severity: diag.Warning,
			Kind:     rule,
			File:     file,
			Line:     line,
			Message:  fmt.Sprintf(format, args...),
		})
	}
	record := func(m map[string]*use, name string, line int) {
		if u, ok := m[name]; ok {
			u.count++
			return
		}
		m[name] = &use{first: line, count: 1}
	}

	parser.Walk(stmts, func(node any) bool {
		switch n := node.(type) {
		case *parser.Variable:
			record(reads, n.Name, n.Line)
		case *parser.Assign:
			record(writes, n.Name, n.Line)
		case *parser.IfStmt:
			if lit, ok := unwrap(n.Condition).(*parser.Literal); ok {
				warn(RuleConstantCondition, n.Line, "condition is always %t", value.Truthy(lit.Value))
			}
		case *parser.Logical:
			parser.Walk(n.Right, func(inner any) bool {
				if a, ok := inner.(*parser.Assign); ok {
					warn(RuleEagerLogicalAssign, a.Line,
						"assignment to '%s' on the right of '%s' runs even when the left side decides the result", a.Name, n.Op)
				}
				return true
			})
		}
		return true
	})

	for name, r := range reads {
		if _, ok := writes[name]; !ok {
			warn(RuleUndefinedVariable, r.first, "'%s' is read but never assigned; it evaluates to nil", name)
		}
	}
	for name, w := range writes {
		if _, ok := reads[name]; !ok {
			warn(RuleUnusedAssignment, w.first, "'%s' is assigned but never read", name)
		}
	}

	sort.SliceStable(findings, func(i, j int) bool {
		if findings[i].Line != findings[j].Line {
			return findings[i].Line < findings[j].Line
		}
		if findings[i].Kind != findings[j].Kind {
			return findings[i].Kind < findings[j].Kind
		}
		return findings[i].Message < findings[j].Message
	})
	return findings
}

func unwrap(e parser.Expr) parser.Expr {
	for {
		g, ok := e.(*parser.Grouping)
		if !ok {
			return e
		}
		e = g.Inner
	}
}

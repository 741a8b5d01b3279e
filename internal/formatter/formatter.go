package formatter

import (
	"math"
	"strings"

	"ember/internal/lexer"
	"ember/internal/parser"
	"ember/internal/value"
)

type Formatter struct {
	indent    int
	indentStr string
	output    strings.Builder
	lineBreak string
	comments  []lexer.Comment
}

func NewFormatter() *Formatter {
	return &Formatter{
		indent:    0,
		indentStr: "    ", // 4 spaces
		lineBreak: "\n",
	}
}

// WithComments interleaves the given line comments with the statements they
// precede. Comments on the same line as a statement stay on that line.
func (f *Formatter) WithComments(comments []lexer.Comment) *Formatter {
	f.comments = append([]lexer.Comment(nil), comments...)
	return f
}

// Source formats a whole program, keeping its comments. Source that does not
// scan or parse cleanly is returned unchanged along with the error.
func Source(src string) (string, error) {
	scanner := lexer.NewScanner(src)
	tokens := scanner.ScanTokens()
	stmts, err := parser.NewParserWithSource(tokens, src, "").Parse()
	if err != nil {
		return src, err
	}
	if scanner.HadError() {
		return src, scanner.Errors()[0]
	}
	return NewFormatter().WithComments(scanner.Comments()).Format(stmts), nil
}

func (f *Formatter) Format(stmts []parser.Stmt) string {
	f.output.Reset()
	f.indent = 0

	for i, stmt := range stmts {
		if i > 0 && f.needsBlankLine(stmts[i-1], stmt) {
			f.output.WriteString(f.lineBreak)
		}
		f.formatStmt(stmt)
	}
	f.flushComments(-1)

	return f.output.String()
}

// needsBlankLine sets if statements apart from their neighbours.
func (f *Formatter) needsBlankLine(prev, next parser.Stmt) bool {
	_, prevIsIf := prev.(*parser.IfStmt)
	_, nextIsIf := next.(*parser.IfStmt)
	return prevIsIf || nextIsIf
}

func (f *Formatter) writeIndent() {
	for i := 0; i < f.indent; i++ {
		f.output.WriteString(f.indentStr)
	}
}

// flushComments writes every pending comment that starts before line.
// A negative line flushes them all.
func (f *Formatter) flushComments(line int) {
	for len(f.comments) > 0 && (line < 0 || f.comments[0].Line < line) {
		f.writeIndent()
		f.output.WriteString(f.comments[0].Text)
		f.output.WriteString(f.lineBreak)
		f.comments = f.comments[1:]
	}
}

// endLine finishes a line, appending a comment that sat on the same source line.
func (f *Formatter) endLine(line int) {
	if len(f.comments) > 0 && f.comments[0].Line == line {
		f.output.WriteString(" ")
		f.output.WriteString(f.comments[0].Text)
		f.comments = f.comments[1:]
	}
	f.output.WriteString(f.lineBreak)
}

func (f *Formatter) formatStmt(stmt parser.Stmt) {
	if stmt == nil {
		return
	}

	switch s := stmt.(type) {
	case *parser.PrintStmt:
		f.flushComments(s.Line)
		f.writeIndent()
		f.output.WriteString("print ")
		f.formatExpr(s.Expr)
		f.output.WriteString(";")
		f.endLine(s.Line)

	case *parser.ExpressionStmt:
		f.flushComments(s.Line)
		f.writeIndent()
		f.formatExpr(s.Expr)
		f.output.WriteString(";")
		f.endLine(s.Line)

	case *parser.IfStmt:
		f.flushComments(s.Line)
		f.writeIndent()
		f.output.WriteString("if (")
		f.formatExpr(s.Condition)
		f.output.WriteString(") ")
		end := f.formatBlock(s.Then, s.Line)
		if s.Else != nil {
			f.output.WriteString(" else ")
			end = f.formatBlock(s.Else, 0)
		}
		f.endLine(end)

	case *parser.Block:
		f.writeIndent()
		f.endLine(f.formatBlock(s, 0))
	}
}

// formatBlock writes "{ ... }" without the trailing line break and returns
// the line of the closing brace, or 0 when unknown. header is the line of
// the statement that opened the block, for trailing comments.
func (f *Formatter) formatBlock(stmt parser.Stmt, header int) int {
	f.output.WriteString("{")
	f.endLine(header)
	f.indent++
	end := 0
	if block, ok := stmt.(*parser.Block); ok {
		for _, inner := range block.Statements {
			f.formatStmt(inner)
		}
		end = block.End
		// Comments after the last statement belong inside the braces.
		if end > 0 {
			f.flushComments(end)
		}
	} else {
		f.formatStmt(stmt)
	}
	f.indent--
	f.writeIndent()
	f.output.WriteString("}")
	return end
}

func (f *Formatter) formatExpr(expr parser.Expr) {
	if expr == nil {
		return
	}

	switch e := expr.(type) {
	case *parser.Literal:
		f.formatLiteral(e.Value)

	case *parser.Variable:
		f.output.WriteString(e.Name)

	case *parser.Assign:
		f.output.WriteString(e.Name)
		f.output.WriteString(" = ")
		f.formatExpr(e.Value)

	case *parser.Unary:
		f.output.WriteString(string(e.Op))
		f.formatExpr(e.Operand)

	case *parser.Binary:
		f.formatExpr(e.Left)
		f.output.WriteString(" ")
		f.output.WriteString(string(e.Op))
		f.output.WriteString(" ")
		f.formatExpr(e.Right)

	case *parser.Logical:
		f.formatExpr(e.Left)
		f.output.WriteString(" ")
		f.output.WriteString(string(e.Op))
		f.output.WriteString(" ")
		f.formatExpr(e.Right)

	case *parser.Grouping:
		f.output.WriteString("(")
		f.formatExpr(e.Inner)
		f.output.WriteString(")")
	}
}

// formatLiteral writes strings verbatim between quotes; the language has no
// escape sequences.
func (f *Formatter) formatLiteral(v value.Value) {
	if s, ok := v.(value.String); ok {
		f.output.WriteString(`"`)
		f.output.WriteString(string(s))
		f.output.WriteString(`"`)
		return
	}
	// An overflowing literal parsed to +Inf; write one that overflows again.
	if n, ok := v.(value.Number); ok && math.IsInf(float64(n), 1) {
		f.output.WriteString("1" + strings.Repeat("0", 309))
		return
	}
	f.output.WriteString(value.Format(v))
}

// internal/parser/parser.go
package parser

import (
	"strconv"
	"strings"

	"github.com/golang/glog"

	"ember/internal/errors"
	"ember/internal/lexer"
	"ember/internal/value"
)

// printWord introduces a print statement. It is not reserved: `print = 1;`
// assigns to a variable named print.
const printWord = "print"

var equalityOps = map[lexer.TokenType]BinaryOp{
	lexer.TokenEquals:    OpEqual,
	lexer.TokenNotEquals: OpNotEqual,
}

var comparisonOps = map[lexer.TokenType]BinaryOp{
	lexer.TokenLessThan:           OpLess,
	lexer.TokenGreaterThan:        OpGreater,
	lexer.TokenLessThanOrEqual:    OpLessEqual,
	lexer.TokenGreaterThanOrEqual: OpGreaterEqual,
}

var termOps = map[lexer.TokenType]BinaryOp{
	lexer.TokenPlus:  OpAdd,
	lexer.TokenMinus: OpSubtract,
}

var factorOps = map[lexer.TokenType]BinaryOp{
	lexer.TokenMultiply: OpMultiply,
	lexer.TokenDivide:   OpDivide,
}

var unaryOps = map[lexer.TokenType]UnaryOp{
	lexer.TokenNot:   OpNot,
	lexer.TokenMinus: OpNegate,
	lexer.TokenPlus:  OpPlus,
}

// Parser is a recursive-descent parser. It stops at the first error.
type Parser struct {
	tokens      []lexer.Token
	current     int
	file        string
	sourceLines []string // Source lines for error reporting
}

func NewParser(tokens []lexer.Token) *Parser {
	return &Parser{tokens: ensureEOF(tokens)}
}

func NewParserWithSource(tokens []lexer.Token, source string, file string) *Parser {
	return &Parser{
		tokens:      ensureEOF(tokens),
		file:        file,
		sourceLines: strings.Split(source, "\n"),
	}
}

// ParseSource scans and parses source. A parse error takes precedence;
// otherwise the first scan error, if any, is returned with the statements.
func ParseSource(source string) ([]Stmt, error) {
	tokens, scanErrs := lexer.Scan(source)
	stmts, err := NewParserWithSource(tokens, source, "").Parse()
	if err != nil {
		return nil, err
	}
	if len(scanErrs) > 0 {
		return stmts, scanErrs[0].AttachSource(source)
	}
	return stmts, nil
}

// Parse consumes every token up to EOF. The returned error is an
// *errors.Error of type ParseError.
func (p *Parser) Parse() ([]Stmt, error) {
	var stmts []Stmt
	for !p.isAtEnd() {
		stmt, err := p.statement()
		if err != nil {
			glog.V(3).Infof("parse failed after %d statements: %v", len(stmts), err)
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}

func (p *Parser) statement() (Stmt, error) {
	if p.match(lexer.TokenIf) {
		return p.ifStatement()
	}
	if p.isPrint() {
		return p.printStatement()
	}
	return p.expressionStatement()
}

func (p *Parser) isPrint() bool {
	tok := p.peek()
	return tok.Type == lexer.TokenIdentifier && tok.Lexeme == printWord && !p.checkNext(lexer.TokenAssign)
}

func (p *Parser) printStatement() (Stmt, error) {
	line := p.advance().Line
	expr, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(lexer.TokenSemicolon, "expected ';' after value"); err != nil {
		return nil, err
	}
	return &PrintStmt{Expr: expr, Line: line}, nil
}

func (p *Parser) expressionStatement() (Stmt, error) {
	line := p.peek().Line
	expr, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(lexer.TokenSemicolon, "expected ';' after expression"); err != nil {
		return nil, err
	}
	return &ExpressionStmt{Expr: expr, Line: line}, nil
}

func (p *Parser) ifStatement() (Stmt, error) {
	line := p.previous().Line
	if _, err := p.consume(lexer.TokenLeftParen, "expected '(' after 'if'"); err != nil {
		return nil, err
	}
	condition, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(lexer.TokenRightParen, "expected ')' after if condition"); err != nil {
		return nil, err
	}
	thenBranch, err := p.block("if")
	if err != nil {
		return nil, err
	}

	stmt := &IfStmt{Condition: condition, Then: thenBranch, Line: line}
	if p.match(lexer.TokenElse) {
		elseBranch, err := p.block("else")
		if err != nil {
			return nil, err
		}
		stmt.Else = elseBranch
	}
	return stmt, nil
}

func (p *Parser) block(after string) (*Block, error) {
	if _, err := p.consume(lexer.TokenLeftBrace, "expected '{' after '"+after+"'"); err != nil {
		return nil, err
	}
	block := &Block{}
	for !p.check(lexer.TokenRightBrace) && !p.isAtEnd() {
		stmt, err := p.statement()
		if err != nil {
			return nil, err
		}
		block.Statements = append(block.Statements, stmt)
	}
	closing, err := p.consume(lexer.TokenRightBrace, "expected '}' after block")
	if err != nil {
		return nil, err
	}
	block.End = closing.Line
	return block, nil
}

func (p *Parser) expression() (Expr, error) {
	return p.assignment()
}

// assignment is right-associative: a = b = c is a = (b = c).
func (p *Parser) assignment() (Expr, error) {
	expr, err := p.logicOr()
	if err != nil {
		return nil, err
	}
	if !p.match(lexer.TokenAssign) {
		return expr, nil
	}

	equals := p.previous()
	target, ok := expr.(*Variable)
	if !ok {
		return nil, p.errorAt(equals, "invalid assignment target '%s'", expr)
	}
	rhs, err := p.assignment()
	if err != nil {
		return nil, err
	}
	return &Assign{Name: target.Name, Value: rhs, Line: target.Line}, nil
}

func (p *Parser) logicOr() (Expr, error) {
	return p.logical(lexer.TokenOr, OpOr, p.logicAnd)
}

func (p *Parser) logicAnd() (Expr, error) {
	return p.logical(lexer.TokenAnd, OpAnd, p.equality)
}

func (p *Parser) logical(t lexer.TokenType, op LogicalOp, operand func() (Expr, error)) (Expr, error) {
	left, err := operand()
	if err != nil {
		return nil, err
	}
	for p.match(t) {
		line := p.previous().Line
		right, err := operand()
		if err != nil {
			return nil, err
		}
		left = &Logical{Left: left, Op: op, Right: right, Line: line}
	}
	return left, nil
}

func (p *Parser) equality() (Expr, error) {
	return p.binary(equalityOps, p.comparison)
}

func (p *Parser) comparison() (Expr, error) {
	return p.binary(comparisonOps, p.term)
}

func (p *Parser) term() (Expr, error) {
	return p.binary(termOps, p.factor)
}

func (p *Parser) factor() (Expr, error) {
	return p.binary(factorOps, p.unary)
}

// binary parses one left-associative precedence level.
func (p *Parser) binary(ops map[lexer.TokenType]BinaryOp, operand func() (Expr, error)) (Expr, error) {
	left, err := operand()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := ops[p.peek().Type]
		if !ok {
			return left, nil
		}
		line := p.advance().Line
		right, err := operand()
		if err != nil {
			return nil, err
		}
		left = &Binary{Left: left, Op: op, Right: right, Line: line}
	}
}

func (p *Parser) unary() (Expr, error) {
	if op, ok := unaryOps[p.peek().Type]; ok {
		line := p.advance().Line
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &Unary{Op: op, Operand: operand, Line: line}, nil
	}
	return p.primary()
}

func (p *Parser) primary() (Expr, error) {
	tok := p.peek()
	switch tok.Type {
	case lexer.TokenTrue:
		p.advance()
		return &Literal{Value: value.Bool(true), Line: tok.Line}, nil
	case lexer.TokenFalse:
		p.advance()
		return &Literal{Value: value.Bool(false), Line: tok.Line}, nil
	case lexer.TokenNil:
		p.advance()
		return &Literal{Value: value.Nil{}, Line: tok.Line}, nil
	case lexer.TokenNumber, lexer.TokenFloat:
		p.advance()
		n, err := strconv.ParseFloat(tok.Lexeme, 64)
		// Out-of-range literals read as +Inf.
		if numErr, ok := err.(*strconv.NumError); ok && numErr.Err == strconv.ErrRange {
			err = nil
		}
		if err != nil {
			return nil, p.errorAt(tok, "invalid number literal '%s'", tok.Lexeme)
		}
		return &Literal{Value: value.Number(n), Line: tok.Line}, nil
	case lexer.TokenString:
		p.advance()
		s, _ := tok.Literal.(string)
		return &Literal{Value: value.String(s), Line: tok.Line}, nil
	case lexer.TokenIdentifier:
		p.advance()
		return &Variable{Name: tok.Lexeme, Line: tok.Line}, nil
	case lexer.TokenLeftParen:
		p.advance()
		inner, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(lexer.TokenRightParen, "expected ')' after expression"); err != nil {
			return nil, err
		}
		return &Grouping{Inner: inner}, nil
	}
	return nil, p.errorAt(tok, "expected expression, found %s", describe(tok))
}

// --- Utility methods ---

func (p *Parser) match(t lexer.TokenType) bool {
	if p.check(t) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) consume(t lexer.TokenType, msg string) (lexer.Token, error) {
	if p.check(t) {
		return p.advance(), nil
	}
	tok := p.peek()
	return tok, p.errorAt(tok, "%s, found %s", msg, describe(tok))
}

func (p *Parser) errorAt(tok lexer.Token, format string, args ...any) *errors.Error {
	err := errors.NewParseError(tok.Line, format, args...)
	if p.file != "" {
		err = err.WithFile(p.file)
	}
	if p.sourceLines != nil && tok.Line > 0 && tok.Line <= len(p.sourceLines) {
		err = err.WithSource(strings.TrimRight(p.sourceLines[tok.Line-1], "\r"))
	}
	return err
}

func (p *Parser) check(t lexer.TokenType) bool {
	if p.isAtEnd() {
		return false
	}
	return p.peek().Type == t
}

func (p *Parser) checkNext(t lexer.TokenType) bool {
	if p.current+1 >= len(p.tokens) {
		return false
	}
	return p.tokens[p.current+1].Type == t
}

func (p *Parser) advance() lexer.Token {
	if !p.isAtEnd() {
		p.current++
	}
	return p.previous()
}

func (p *Parser) previous() lexer.Token {
	return p.tokens[p.current-1]
}

func (p *Parser) peek() lexer.Token {
	return p.tokens[p.current]
}

func (p *Parser) isAtEnd() bool {
	return p.peek().Type == lexer.TokenEOF
}

func describe(tok lexer.Token) string {
	if tok.Type == lexer.TokenEOF {
		return "end of input"
	}
	return "'" + tok.Lexeme + "'"
}

// ensureEOF lets callers hand in token slices built without a Scanner.
func ensureEOF(tokens []lexer.Token) []lexer.Token {
	if n := len(tokens); n > 0 && tokens[n-1].Type == lexer.TokenEOF {
		return tokens
	}
	line := 1
	if n := len(tokens); n > 0 {
		line = tokens[n-1].Line
	}
	return append(tokens[:len(tokens):len(tokens)], lexer.Token{Type: lexer.TokenEOF, Line: line})
}

package lexer

import (
	"strings"
	"unicode/utf8"

	"ember/internal/errors"
)

// Scanner turns source text into tokens in a single left-to-right pass.
// It never fails: bad input is recorded as a ScanError and skipped.
type Scanner struct {
	source   string
	tokens   []Token
	errs     []*errors.Error
	comments []Comment
	start    int
	current  int
	line     int
}

func NewScanner(source string) *Scanner {
	return &Scanner{
		source: source,
		line:   1,
	}
}

// Scan is shorthand for NewScanner(source).ScanTokens() plus its errors.
func Scan(source string) ([]Token, []*errors.Error) {
	s := NewScanner(source)
	tokens := s.ScanTokens()
	return tokens, s.Errors()
}

// ScanTokens returns the token stream, always terminated by a single EOF.
func (s *Scanner) ScanTokens() []Token {
	for !s.isAtEnd() {
		s.start = s.current
		s.scanToken()
	}
	s.tokens = append(s.tokens, Token{Type: TokenEOF, Line: s.line})
	return s.tokens
}

// Errors returns the scan errors reported so far, in source order.
func (s *Scanner) Errors() []*errors.Error {
	return s.errs
}

// Comments returns the line comments skipped so far, in source order.
func (s *Scanner) Comments() []Comment {
	return s.comments
}

func (s *Scanner) HadError() bool {
	return len(s.errs) > 0
}

func (s *Scanner) scanToken() {
	c := s.advance()
	switch c {
	case '(':
		s.addToken(TokenLeftParen)
	case ')':
		s.addToken(TokenRightParen)
	case '{':
		s.addToken(TokenLeftBrace)
	case '}':
		s.addToken(TokenRightBrace)
	case ',':
		s.addToken(TokenComma)
	case '.':
		s.addToken(TokenDot)
	case ';':
		s.addToken(TokenSemicolon)
	case '+':
		s.addToken(TokenPlus)
	case '-':
		s.addToken(TokenMinus)
	case '*':
		s.addToken(TokenMultiply)
	case '|':
		s.addToken(TokenBitwiseOr)
	case '&':
		s.addToken(TokenBitwiseAnd)
	case '!':
		if s.match('=') {
			s.addToken(TokenNotEquals)
		} else {
			s.addToken(TokenNot)
		}
	case '=':
		if s.match('=') {
			s.addToken(TokenEquals)
		} else {
			s.addToken(TokenAssign)
		}
	case '<':
		if s.match('=') {
			s.addToken(TokenLessThanOrEqual)
		} else {
			s.addToken(TokenLessThan)
		}
	case '>':
		if s.match('=') {
			s.addToken(TokenGreaterThanOrEqual)
		} else {
			s.addToken(TokenGreaterThan)
		}
	case '/':
		if s.match('/') {
			// Line comment runs to the newline, which is left for the main loop.
			for s.peek() != '\n' && !s.isAtEnd() {
				s.advance()
			}
			s.comments = append(s.comments, Comment{
				Line: s.line,
				Text: strings.TrimRight(s.source[s.start:s.current], " \t\r"),
			})
		} else {
			s.addToken(TokenDivide)
		}
	case '"':
		s.string()
	case '\n':
		s.line++
	case ' ', '\r', '\t':
		// Ignore whitespace
	default:
		switch {
		case isDigit(c):
			s.number()
		case isAlpha(c):
			s.identifier()
		case c >= utf8.RuneSelf:
			// Report a multi-byte character once, not per byte.
			r, size := utf8.DecodeRuneInString(s.source[s.start:])
			s.current = s.start + size
			s.errorf("unexpected character '%c'", r)
		default:
			s.errorf("unexpected character '%c'", c)
		}
	}
}

func (s *Scanner) identifier() {
	for isAlpha(s.peek()) {
		s.advance()
	}
	text := s.source[s.start:s.current]
	if t, ok := keywords[text]; ok {
		s.addToken(t)
		return
	}
	s.addLiteral(TokenIdentifier, text)
}

func (s *Scanner) number() {
	for isDigit(s.peek()) {
		s.advance()
	}

	if s.peek() == '.' && isDigit(s.peekNext()) {
		s.advance() // the '.'
		for isDigit(s.peek()) {
			s.advance()
		}
		s.addToken(TokenFloat)
		return
	}
	s.addToken(TokenNumber)
}

func (s *Scanner) string() {
	startLine := s.line
	for s.peek() != '"' && !s.isAtEnd() {
		if s.peek() == '\n' {
			s.line++
		}
		s.advance()
	}
	if s.isAtEnd() {
		s.errs = append(s.errs, errors.NewScanError(startLine, "unterminated string"))
		return
	}
	s.advance() // closing quote

	s.tokens = append(s.tokens, Token{
		Type:    TokenString,
		Lexeme:  s.source[s.start:s.current],
		Literal: s.source[s.start+1 : s.current-1],
		Line:    startLine,
	})
}

func (s *Scanner) addToken(t TokenType) {
	s.tokens = append(s.tokens, Token{Type: t, Lexeme: s.source[s.start:s.current], Line: s.line})
}

func (s *Scanner) addLiteral(t TokenType, literal any) {
	s.tokens = append(s.tokens, Token{Type: t, Lexeme: s.source[s.start:s.current], Literal: literal, Line: s.line})
}

func (s *Scanner) errorf(format string, args ...any) {
	s.errs = append(s.errs, errors.NewScanError(s.line, format, args...))
}

func (s *Scanner) match(expected byte) bool {
	if s.isAtEnd() || s.source[s.current] != expected {
		return false
	}
	s.current++
	return true
}

func (s *Scanner) advance() byte {
	s.current++
	return s.source[s.current-1]
}

func (s *Scanner) peek() byte {
	if s.isAtEnd() {
		return '\000'
	}
	return s.source[s.current]
}

func (s *Scanner) peekNext() byte {
	if s.current+1 >= len(s.source) {
		return '\000'
	}
	return s.source[s.current+1]
}

func (s *Scanner) isAtEnd() bool {
	return s.current >= len(s.source)
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

package lexer

import "fmt"

type TokenType string

const (
	// Punctuation
	TokenLeftBrace  TokenType = "LEFT_BRACE"
	TokenRightBrace TokenType = "RIGHT_BRACE"
	TokenLeftParen  TokenType = "LEFT_PAREN"
	TokenRightParen TokenType = "RIGHT_PAREN"
	TokenComma      TokenType = "COMMA"
	TokenDot        TokenType = "DOT"
	TokenSemicolon  TokenType = "SEMICOLON"

	// Operators
	TokenAssign             TokenType = "ASSIGN"
	TokenLessThan           TokenType = "LESS_THAN"
	TokenGreaterThan        TokenType = "GREATER_THAN"
	TokenLessThanOrEqual    TokenType = "LESS_THAN_OR_EQUAL"
	TokenGreaterThanOrEqual TokenType = "GREATER_THAN_OR_EQUAL"
	TokenNot                TokenType = "NOT"
	TokenEquals             TokenType = "EQUALS"
	TokenNotEquals          TokenType = "NOT_EQUALS"
	TokenMinus              TokenType = "MINUS"
	TokenMultiply           TokenType = "MULTIPLY"
	TokenDivide             TokenType = "DIVIDE"
	TokenPlus               TokenType = "PLUS"
	TokenBitwiseOr          TokenType = "BITWISE_OR"
	TokenBitwiseAnd         TokenType = "BITWISE_AND"

	// Keywords
	TokenIf     TokenType = "IF"
	TokenElse   TokenType = "ELSE"
	TokenPass   TokenType = "PASS"
	TokenReturn TokenType = "RETURN"
	TokenOr     TokenType = "OR"
	TokenAnd    TokenType = "AND"
	TokenTrue   TokenType = "TRUE"
	TokenFalse  TokenType = "FALSE"
	TokenNil    TokenType = "NIL"

	// Literals
	TokenString     TokenType = "STRING"
	TokenNumber     TokenType = "NUMBER"
	TokenFloat      TokenType = "FLOAT"
	TokenIdentifier TokenType = "IDENTIFIER"

	TokenEOF TokenType = "EOF"
)

// keywords is matched against whole alphabetic runs, case-sensitively.
var keywords = map[string]TokenType{
	"nil":    TokenNil,
	"and":    TokenAnd,
	"or":     TokenOr,
	"if":     TokenIf,
	"else":   TokenElse,
	"true":   TokenTrue,
	"false":  TokenFalse,
	"pass":   TokenPass,
	"return": TokenReturn,
}

// Keyword returns the token type for a reserved word.
func Keyword(word string) (TokenType, bool) {
	t, ok := keywords[word]
	return t, ok
}

// Token is produced once by the Scanner and never mutated.
//
// Literal holds the unquoted contents of a STRING and the text of an
// IDENTIFIER. Numeric tokens carry no literal: the parser converts the lexeme.
type Token struct {
	Type    TokenType
	Lexeme  string
	Literal any
	Line    int
}

func (t Token) String() string {
	if t.Literal != nil {
		return fmt.Sprintf("[%s] '%s' %v (line %d)", t.Type, t.Lexeme, t.Literal, t.Line)
	}
	return fmt.Sprintf("[%s] '%s' (line %d)", t.Type, t.Lexeme, t.Line)
}

// Comment is a `//` line comment. Text includes the slashes.
type Comment struct {
	Line int
	Text string
}

// IsNumeric reports whether the token is an integral or floating literal.
func (t Token) IsNumeric() bool {
	return t.Type == TokenNumber || t.Type == TokenFloat
}

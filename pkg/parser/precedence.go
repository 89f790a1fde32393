package parser

import "github.com/thomasrohde/tammr/pkg/lexer"

// Precedence orders binding strength, lowest first.
type Precedence int

const (
	_ Precedence = iota
	Lowest
	Equals      // == != and the legacy =
	LessGreater // < >
	Sum         // + -
	Product     // * /
	Prefix      // -x !x
	Call        // f(x)
	Index       // a[i]
	Dot         // a.b
)

var precedences = map[lexer.TokenType]Precedence{
	lexer.TokEqEq:     Equals,
	lexer.TokBangEq:   Equals,
	lexer.TokAssign:   Equals,
	lexer.TokLt:       LessGreater,
	lexer.TokGt:       LessGreater,
	lexer.TokPlus:     Sum,
	lexer.TokMinus:    Sum,
	lexer.TokStar:     Product,
	lexer.TokSlash:    Product,
	lexer.TokLParen:   Call,
	lexer.TokLBracket: Index,
	lexer.TokDot:      Dot,
}

func precedenceOf(t lexer.TokenType) Precedence {
	if p, ok := precedences[t]; ok {
		return p
	}
	return Lowest
}

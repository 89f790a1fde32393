// Package lexer implements the tammr language tokenizer.
package lexer

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/thomasrohde/tammr/pkg/ast"
	"github.com/thomasrohde/tammr/pkg/diagnostics"
)

// TokenType identifies the type of a lexer token.
type TokenType int

const (
	// Keywords
	TokLet TokenType = iota
	TokFunction
	TokReturn
	TokIf
	TokElse
	TokTrue
	TokFalse
	TokNull

	// Primitive kind annotations
	TokKindStr
	TokKindNumber
	TokKindBool
	TokKindArr
	TokKindKv

	// Words the language reserves but does not implement
	TokReserved

	// Literals
	TokInt
	TokString

	// Identifiers
	TokIdent

	// Punctuation
	TokSemicolon // ;
	TokComma     // ,
	TokColon     // :
	TokDot       // .
	TokLParen    // (
	TokRParen    // )
	TokLBrace    // {
	TokRBrace    // }
	TokLBracket  // [
	TokRBracket  // ]

	// Operators
	TokAssign // =
	TokEqEq   // ==
	TokBang   // !
	TokBangEq // !=
	TokLt     // <
	TokGt     // >
	TokPlus   // +
	TokMinus  // -
	TokStar   // *
	TokSlash  // /

	// Special
	TokEOF
)

var tokenNames = [...]string{
	TokLet:        "Let",
	TokFunction:   "Function",
	TokReturn:     "Return",
	TokIf:         "If",
	TokElse:       "Else",
	TokTrue:       "True",
	TokFalse:      "False",
	TokNull:       "Null",
	TokKindStr:    "KindStr",
	TokKindNumber: "KindNumber",
	TokKindBool:   "KindBool",
	TokKindArr:    "KindArr",
	TokKindKv:     "KindKv",
	TokReserved:   "Reserved",
	TokInt:        "Number",
	TokString:     "String",
	TokIdent:      "Ident",
	TokSemicolon:  "Semicolon",
	TokComma:      "Comma",
	TokColon:      "Colon",
	TokDot:        "Dot",
	TokLParen:     "LParen",
	TokRParen:     "RParen",
	TokLBrace:     "LBrace",
	TokRBrace:     "RBrace",
	TokLBracket:   "LBracket",
	TokRBracket:   "RBracket",
	TokAssign:     "Assign",
	TokEqEq:       "Eq",
	TokBang:       "Bang",
	TokBangEq:     "NotEq",
	TokLt:         "Lt",
	TokGt:         "Gt",
	TokPlus:       "Plus",
	TokMinus:      "Minus",
	TokStar:       "Asterisk",
	TokSlash:      "Slash",
	TokEOF:        "EOF",
}

func (t TokenType) String() string {
	if t >= 0 && int(t) < len(tokenNames) {
		return tokenNames[t]
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// IsKeyword reports whether t is a keyword, kind annotation or reserved word.
func (t TokenType) IsKeyword() bool {
	return t >= TokLet && t <= TokReserved
}

// IsKind reports whether t is a primitive kind annotation.
func (t TokenType) IsKind() bool {
	return t >= TokKindStr && t <= TokKindKv
}

// Token represents a single lexer token.
type Token struct {
	Type  TokenType
	Value string
	Span  ast.Span
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q) %d:%d", t.Type, t.Value, t.Span.StartLine, t.Span.StartCol)
}

var keywords = map[string]TokenType{
	"let":      TokLet,
	"fn":       TokFunction,
	"function": TokFunction,
	"return":   TokReturn,
	"if":       TokIf,
	"else":     TokElse,
	"true":     TokTrue,
	"false":    TokFalse,
	"null":     TokNull,
	"str":      TokKindStr,
	"number":   TokKindNumber,
	"bool":     TokKindBool,
	"arr":      TokKindArr,
	"kv":       TokKindKv,
}

var reserved = map[string]bool{
	"do": true, "end": true, "loop": true, "exit": true,
	"try": true, "catch": true, "throw": true,
	"and": true, "or": true, "not": true, "is": true,
	"import": true, "as": true, "foreach": true, "from": true, "to": true,
}

// IsReserved reports whether word is reserved for future use.
func IsReserved(word string) bool {
	return reserved[word]
}

type scanner struct {
	source   string
	filename string
	pos      int
	line     int
	col      int
}

func newScanner(source, filename string) *scanner {
	return &scanner{
		source:   source,
		filename: filename,
		pos:      0,
		line:     1,
		col:      1,
	}
}

func (s *scanner) atEnd() bool {
	return s.pos >= len(s.source)
}

func (s *scanner) peek() byte {
	if s.atEnd() {
		return 0
	}
	return s.source[s.pos]
}

func (s *scanner) peekAt(offset int) byte {
	p := s.pos + offset
	if p >= len(s.source) {
		return 0
	}
	return s.source[p]
}

func (s *scanner) peekRune() (rune, int) {
	if s.atEnd() {
		return 0, 0
	}
	return utf8.DecodeRuneInString(s.source[s.pos:])
}

// advance consumes one rune and returns it. Columns count runes.
func (s *scanner) advance() rune {
	r, size := s.peekRune()
	if size == 0 {
		return 0
	}
	s.pos += size
	if r == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
	return r
}

func (s *scanner) span(startLine, startCol, startPos int) ast.Span {
	return ast.Span{
		File:      s.filename,
		StartLine: startLine,
		StartCol:  startCol,
		EndLine:   s.line,
		EndCol:    s.col,
		Offset:    startPos,
	}
}

func (s *scanner) skipWhitespaceAndComments() error {
	for !s.atEnd() {
		ch := s.peek()
		switch {
		case ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n':
			s.advance()
		case ch == '/' && s.peekAt(1) == '/':
			for !s.atEnd() && s.peek() != '\n' {
				s.advance()
			}
		case ch == '/' && s.peekAt(1) == '*':
			startLine, startCol, startPos := s.line, s.col, s.pos
			s.advance()
			s.advance()
			closed := false
			for !s.atEnd() {
				if s.peek() == '*' && s.peekAt(1) == '/' {
					s.advance()
					s.advance()
					closed = true
					break
				}
				s.advance()
			}
			if !closed {
				return s.lexError(startLine, startCol, startPos, "unterminated block comment")
			}
		default:
			return nil
		}
	}
	return nil
}

func isLetter(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

// Tokenize converts source into tokens. The result always ends with exactly
// one TokEOF token. Errors are *LexError values.
func Tokenize(source, filename string) ([]Token, error) {
	s := newScanner(source, filename)
	var tokens []Token
	for {
		tok, err := s.nextToken()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Type == TokEOF {
			return tokens, nil
		}
	}
}

func (s *scanner) scanString() (Token, error) {
	startLine, startCol, startPos := s.line, s.col, s.pos
	quote := s.advance() // opening quote decides the closing one

	var buf strings.Builder
	for !s.atEnd() {
		r, size := s.peekRune()
		if r == utf8.RuneError && size == 1 {
			return Token{}, s.lexError(s.line, s.col, s.pos, "invalid UTF-8 character in string")
		}
		if r == quote {
			s.advance()
			return Token{
				Type:  TokString,
				Value: buf.String(),
				Span:  s.span(startLine, startCol, startPos),
			}, nil
		}
		if r != '\\' {
			buf.WriteRune(s.advance())
			continue
		}
		escLine, escCol, escPos := s.line, s.col, s.pos
		s.advance() // consume backslash
		if s.atEnd() {
			break
		}
		esc := s.advance()
		switch esc {
		case 'n':
			buf.WriteByte('\n')
		case 't':
			buf.WriteByte('\t')
		case 'r':
			buf.WriteByte('\r')
		case '\\':
			buf.WriteByte('\\')
		case '"':
			buf.WriteByte('"')
		case '\'':
			buf.WriteByte('\'')
		default:
			return Token{}, s.lexError(escLine, escCol, escPos, fmt.Sprintf("invalid escape character: \\%c", esc))
		}
	}
	return Token{}, s.lexError(startLine, startCol, startPos, "unterminated string literal")
}

func (s *scanner) scanNumber() Token {
	startLine, startCol, startPos := s.line, s.col, s.pos
	for !s.atEnd() && isDigit(s.peek()) {
		s.advance()
	}
	return Token{
		Type:  TokInt,
		Value: s.source[startPos:s.pos],
		Span:  s.span(startLine, startCol, startPos),
	}
}

func (s *scanner) scanIdentOrKeyword() Token {
	startLine, startCol, startPos := s.line, s.col, s.pos

	for !s.atEnd() {
		r, _ := s.peekRune()
		if !isLetter(r) && !unicode.IsDigit(r) {
			break
		}
		s.advance()
	}

	text := s.source[startPos:s.pos]
	tokType := TokIdent
	if kw, ok := keywords[text]; ok {
		tokType = kw
	} else if reserved[text] {
		tokType = TokReserved
	}

	return Token{
		Type:  tokType,
		Value: text,
		Span:  s.span(startLine, startCol, startPos),
	}
}

func (s *scanner) lexError(line, col, pos int, msg string) error {
	diag := diagnostics.MakeDiag(
		diagnostics.ELex,
		msg,
		&ast.Span{File: s.filename, StartLine: line, StartCol: col, EndLine: line, EndCol: col + 1, Offset: pos},
		"",
	)
	return &LexError{Diag: diag}
}

// LexError wraps a diagnostic for lex errors.
type LexError struct {
	Diag diagnostics.Diagnostic
}

func (e *LexError) Error() string {
	if e.Diag.Span == nil {
		return e.Diag.Message
	}
	return fmt.Sprintf("%d:%d: %s", e.Diag.Span.StartLine, e.Diag.Span.StartCol, e.Diag.Message)
}

var singleChar = map[byte]TokenType{
	';': TokSemicolon,
	',': TokComma,
	':': TokColon,
	'.': TokDot,
	'(': TokLParen,
	')': TokRParen,
	'{': TokLBrace,
	'}': TokRBrace,
	'[': TokLBracket,
	']': TokRBracket,
	'<': TokLt,
	'>': TokGt,
	'+': TokPlus,
	'-': TokMinus,
	'*': TokStar,
	'/': TokSlash,
}

func (s *scanner) nextToken() (Token, error) {
	if err := s.skipWhitespaceAndComments(); err != nil {
		return Token{}, err
	}

	if s.atEnd() {
		return Token{
			Type:  TokEOF,
			Value: "",
			Span:  s.span(s.line, s.col, s.pos),
		}, nil
	}

	ch := s.peek()
	startLine, startCol, startPos := s.line, s.col, s.pos

	if typ, ok := singleChar[ch]; ok {
		s.advance()
		return Token{Type: typ, Value: string(ch), Span: s.span(startLine, startCol, startPos)}, nil
	}

	switch ch {
	case '=':
		s.advance()
		if s.peek() == '=' {
			s.advance()
			return Token{Type: TokEqEq, Value: "==", Span: s.span(startLine, startCol, startPos)}, nil
		}
		return Token{Type: TokAssign, Value: "=", Span: s.span(startLine, startCol, startPos)}, nil
	case '!':
		s.advance()
		if s.peek() == '=' {
			s.advance()
			return Token{Type: TokBangEq, Value: "!=", Span: s.span(startLine, startCol, startPos)}, nil
		}
		return Token{Type: TokBang, Value: "!", Span: s.span(startLine, startCol, startPos)}, nil
	case '"', '\'':
		return s.scanString()
	}

	if isDigit(ch) {
		return s.scanNumber(), nil
	}

	r, size := s.peekRune()
	if r == utf8.RuneError && size == 1 {
		return Token{}, s.lexError(startLine, startCol, startPos, fmt.Sprintf("invalid UTF-8 byte 0x%02x", ch))
	}
	if isLetter(r) {
		return s.scanIdentOrKeyword(), nil
	}

	return Token{}, s.lexError(startLine, startCol, startPos, fmt.Sprintf("unexpected character '%c'", r))
}

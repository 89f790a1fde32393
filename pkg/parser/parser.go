// Package parser implements the tammr language parser.
package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/thomasrohde/tammr/pkg/ast"
	"github.com/thomasrohde/tammr/pkg/diagnostics"
	"github.com/thomasrohde/tammr/pkg/lexer"
)

type (
	prefixParseFn func() ast.Expr
	infixParseFn  func(left ast.Expr) ast.Expr
)

// parser is a Pratt parser over a token slice. Parse functions start with
// the first token of their construct as the current token and leave the
// last token of the construct current.
type parser struct {
	tokens    []lexer.Token
	pos       int
	diags     []diagnostics.Diagnostic
	prefixFns map[lexer.TokenType]prefixParseFn
	infixFns  map[lexer.TokenType]infixParseFn
}

// Parse tokenizes source and parses it into an AST. When any diagnostic is
// reported the program is nil.
func Parse(source, filename string) (*ast.Program, []diagnostics.Diagnostic) {
	tokens, err := lexer.Tokenize(source, filename)
	if err != nil {
		var le *lexer.LexError
		if errors.As(err, &le) {
			return nil, []diagnostics.Diagnostic{le.Diag}
		}
		return nil, []diagnostics.Diagnostic{diagnostics.MakeDiag(diagnostics.ELex, err.Error(), nil, "")}
	}
	return ParseTokens(tokens)
}

// ParseTokens parses an already tokenized source. A missing trailing EOF
// token is tolerated.
func ParseTokens(tokens []lexer.Token) (*ast.Program, []diagnostics.Diagnostic) {
	if len(tokens) == 0 || tokens[len(tokens)-1].Type != lexer.TokEOF {
		var span ast.Span
		if len(tokens) > 0 {
			span = tokens[len(tokens)-1].Span
		}
		tokens = append(tokens, lexer.Token{Type: lexer.TokEOF, Span: span})
	}

	p := newParser(tokens)
	prog := p.parseProgram()
	if len(p.diags) > 0 {
		return nil, p.diags
	}
	return prog, nil
}

// Incomplete reports whether every diagnostic was caused by the input ending
// early, so that more input could still make it parse.
func Incomplete(diags []diagnostics.Diagnostic) bool {
	if len(diags) == 0 {
		return false
	}
	for _, d := range diags {
		if !strings.HasSuffix(d.Message, "end of input") && !strings.HasPrefix(d.Message, "unterminated") {
			return false
		}
	}
	return true
}

func newParser(tokens []lexer.Token) *parser {
	p := &parser{tokens: tokens}

	p.prefixFns = map[lexer.TokenType]prefixParseFn{
		lexer.TokIdent:    p.parseIdentifier,
		lexer.TokInt:      p.parseIntLiteral,
		lexer.TokString:   p.parseStrLiteral,
		lexer.TokTrue:     p.parseBoolLiteral,
		lexer.TokFalse:    p.parseBoolLiteral,
		lexer.TokNull:     p.parseNullLiteral,
		lexer.TokBang:     p.parsePrefixExpr,
		lexer.TokMinus:    p.parsePrefixExpr,
		lexer.TokLParen:   p.parseGroupedExpr,
		lexer.TokLBracket: p.parseArrayLiteral,
		lexer.TokLBrace:   p.parseHashLiteral,
		lexer.TokIf:       p.parseIfExpr,
		lexer.TokFunction: p.parseFunctionLiteral,
	}

	p.infixFns = map[lexer.TokenType]infixParseFn{
		lexer.TokPlus:     p.parseInfixExpr,
		lexer.TokMinus:    p.parseInfixExpr,
		lexer.TokStar:     p.parseInfixExpr,
		lexer.TokSlash:    p.parseInfixExpr,
		lexer.TokEqEq:     p.parseInfixExpr,
		lexer.TokBangEq:   p.parseInfixExpr,
		lexer.TokAssign:   p.parseInfixExpr,
		lexer.TokLt:       p.parseInfixExpr,
		lexer.TokGt:       p.parseInfixExpr,
		lexer.TokLParen:   p.parseCallExpr,
		lexer.TokLBracket: p.parseIndexExpr,
		lexer.TokDot:      p.parseDotExpr,
	}
	return p
}

func (p *parser) cur() lexer.Token {
	if p.pos >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1] // EOF
	}
	return p.tokens[p.pos]
}

func (p *parser) peek() lexer.Token {
	if p.pos+1 >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1] // EOF
	}
	return p.tokens[p.pos+1]
}

func (p *parser) next() {
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
}

func (p *parser) curIs(t lexer.TokenType) bool  { return p.cur().Type == t }
func (p *parser) peekIs(t lexer.TokenType) bool { return p.peek().Type == t }

func (p *parser) peekPrecedence() Precedence { return precedenceOf(p.peek().Type) }
func (p *parser) curPrecedence() Precedence  { return precedenceOf(p.cur().Type) }

// expectPeek advances when the next token has type t and reports an error otherwise.
func (p *parser) expectPeek(t lexer.TokenType) bool {
	if p.peekIs(t) {
		p.next()
		return true
	}
	tok := p.peek()
	if tok.Type == lexer.TokReserved {
		p.addErrorCode(diagnostics.EReserved,
			fmt.Sprintf("'%s' is a reserved keyword", tok.Value), &tok.Span)
		return false
	}
	p.addError(fmt.Sprintf("expected %s, got %s", tokenName(t), describe(tok)), &tok.Span)
	return false
}

func (p *parser) addError(msg string, span *ast.Span) {
	p.addErrorCode(diagnostics.EParse, msg, span)
}

func (p *parser) addErrorCode(code, msg string, span *ast.Span) {
	p.diags = append(p.diags, diagnostics.MakeDiag(code, msg, span, ""))
}

// spanFrom builds a span from start to the end of the current token.
func (p *parser) spanFrom(start ast.Span) ast.Span {
	end := p.cur().Span
	return ast.Span{
		File:      start.File,
		StartLine: start.StartLine,
		StartCol:  start.StartCol,
		EndLine:   end.EndLine,
		EndCol:    end.EndCol,
		Offset:    start.Offset,
	}
}

// synchronize skips to the next statement boundary after an error.
func (p *parser) synchronize() {
	for !p.curIs(lexer.TokSemicolon) && !p.curIs(lexer.TokEOF) {
		switch p.peek().Type {
		case lexer.TokLet, lexer.TokReturn, lexer.TokRBrace, lexer.TokEOF:
			return
		}
		p.next()
	}
}

func tokenName(t lexer.TokenType) string {
	switch t {
	case lexer.TokLBrace:
		return "'{'"
	case lexer.TokRBrace:
		return "'}'"
	case lexer.TokLBracket:
		return "'['"
	case lexer.TokRBracket:
		return "']'"
	case lexer.TokLParen:
		return "'('"
	case lexer.TokRParen:
		return "')'"
	case lexer.TokColon:
		return "':'"
	case lexer.TokComma:
		return "','"
	case lexer.TokAssign:
		return "'='"
	case lexer.TokIdent:
		return "identifier"
	case lexer.TokString:
		return "string"
	case lexer.TokInt:
		return "integer"
	case lexer.TokEOF:
		return "end of input"
	default:
		return t.String()
	}
}

func describe(tok lexer.Token) string {
	if tok.Type == lexer.TokEOF {
		return "end of input"
	}
	if tok.Type == lexer.TokString {
		return ast.Quote(tok.Value)
	}
	return "'" + tok.Value + "'"
}

// --- Program and statements ---

func (p *parser) parseProgram() *ast.Program {
	start := p.cur().Span
	prog := &ast.Program{}

	for !p.curIs(lexer.TokEOF) {
		if stmt := p.parseStatement(); stmt != nil {
			prog.Statements = append(prog.Statements, stmt)
		} else {
			p.synchronize()
		}
		p.next()
	}

	prog.Span = p.spanFrom(start)
	return prog
}

func (p *parser) parseStatement() ast.Stmt {
	switch p.cur().Type {
	case lexer.TokLet:
		return p.parseLetStmt()
	case lexer.TokReturn:
		return p.parseReturnStmt()
	case lexer.TokIdent:
		if p.peekIs(lexer.TokAssign) {
			return p.parseAssignStmt()
		}
	}
	return p.parseExprStmt()
}

func (p *parser) parseLetStmt() ast.Stmt {
	start := p.cur().Span
	stmt := &ast.LetStmt{}

	if p.peek().Type.IsKind() {
		p.next()
		stmt.ValueKind = p.cur().Value
	}

	if !p.expectPeek(lexer.TokIdent) {
		return nil
	}
	stmt.Name = &ast.Identifier{Span: p.cur().Span, Value: p.cur().Value}

	if !p.expectPeek(lexer.TokAssign) {
		return nil
	}
	p.next()

	stmt.Value = p.parseExpression(Lowest)
	if stmt.Value == nil {
		return nil
	}
	if p.peekIs(lexer.TokSemicolon) {
		p.next()
	}
	stmt.Span = p.spanFrom(start)
	return stmt
}

func (p *parser) parseAssignStmt() ast.Stmt {
	start := p.cur().Span
	stmt := &ast.AssignStmt{Name: &ast.Identifier{Span: start, Value: p.cur().Value}}
	p.next() // '='
	p.next()

	stmt.Value = p.parseExpression(Lowest)
	if stmt.Value == nil {
		return nil
	}
	if p.peekIs(lexer.TokSemicolon) {
		p.next()
	}
	stmt.Span = p.spanFrom(start)
	return stmt
}

func (p *parser) parseReturnStmt() ast.Stmt {
	start := p.cur().Span
	stmt := &ast.ReturnStmt{}

	switch p.peek().Type {
	case lexer.TokSemicolon:
		p.next()
	case lexer.TokRBrace, lexer.TokEOF:
	default:
		p.next()
		stmt.Value = p.parseExpression(Lowest)
		if stmt.Value == nil {
			return nil
		}
		if p.peekIs(lexer.TokSemicolon) {
			p.next()
		}
	}
	stmt.Span = p.spanFrom(start)
	return stmt
}

func (p *parser) parseExprStmt() ast.Stmt {
	start := p.cur().Span
	expr := p.parseExpression(Lowest)
	if expr == nil {
		return nil
	}
	if p.peekIs(lexer.TokSemicolon) {
		p.next()
	}
	return &ast.ExprStmt{Span: p.spanFrom(start), Expr: expr}
}

// parseBlock parses `{ stmt* }` with '{' current.
func (p *parser) parseBlock() *ast.Block {
	start := p.cur().Span
	block := &ast.Block{}
	p.next()

	for !p.curIs(lexer.TokRBrace) {
		if p.curIs(lexer.TokEOF) {
			tok := p.cur()
			p.addError("unterminated block: expected '}', got end of input", &tok.Span)
			return nil
		}
		if stmt := p.parseStatement(); stmt != nil {
			block.Statements = append(block.Statements, stmt)
		} else {
			p.synchronize()
		}
		p.next()
	}

	block.Span = p.spanFrom(start)
	return block
}

// --- Expressions ---

func (p *parser) parseExpression(prec Precedence) ast.Expr {
	prefix := p.prefixFns[p.cur().Type]
	if prefix == nil {
		p.noPrefixError(p.cur())
		return nil
	}
	left := prefix()
	if left == nil {
		return nil
	}

	for !p.peekIs(lexer.TokSemicolon) && prec < p.peekPrecedence() {
		infix := p.infixFns[p.peek().Type]
		if infix == nil {
			return left
		}
		p.next()
		left = infix(left)
		if left == nil {
			return nil
		}
	}
	return left
}

func (p *parser) noPrefixError(tok lexer.Token) {
	switch tok.Type {
	case lexer.TokReserved:
		p.addErrorCode(diagnostics.EReserved,
			fmt.Sprintf("'%s' is a reserved keyword", tok.Value), &tok.Span)
	case lexer.TokEOF:
		p.addError("unexpected end of input", &tok.Span)
	default:
		p.addError(fmt.Sprintf("unexpected token %s", describe(tok)), &tok.Span)
	}
}

func (p *parser) parseIdentifier() ast.Expr {
	tok := p.cur()
	return &ast.Identifier{Span: tok.Span, Value: tok.Value}
}

func (p *parser) parseIntLiteral() ast.Expr {
	tok := p.cur()
	v, err := strconv.ParseInt(tok.Value, 10, 64)
	if err != nil {
		p.addError(fmt.Sprintf("integer literal out of range: %s", tok.Value), &tok.Span)
		return nil
	}
	return &ast.IntLiteral{Span: tok.Span, Text: tok.Value, Value: v}
}

func (p *parser) parseStrLiteral() ast.Expr {
	tok := p.cur()
	return &ast.StrLiteral{Span: tok.Span, Value: tok.Value}
}

func (p *parser) parseBoolLiteral() ast.Expr {
	tok := p.cur()
	return &ast.BoolLiteral{Span: tok.Span, Value: tok.Type == lexer.TokTrue}
}

func (p *parser) parseNullLiteral() ast.Expr {
	return &ast.NullLiteral{Span: p.cur().Span}
}

func (p *parser) parsePrefixExpr() ast.Expr {
	start := p.cur().Span
	op := p.cur().Value
	p.next()

	right := p.parseExpression(Prefix)
	if right == nil {
		return nil
	}
	return &ast.PrefixExpr{Span: p.spanFrom(start), Operator: op, Right: right}
}

func (p *parser) parseInfixExpr(left ast.Expr) ast.Expr {
	op := p.cur().Value
	if p.curIs(lexer.TokAssign) {
		op = "=="
	}
	prec := p.curPrecedence()
	p.next()

	right := p.parseExpression(prec)
	if right == nil {
		return nil
	}
	return &ast.InfixExpr{Span: p.spanFrom(left.NodeSpan()), Left: left, Operator: op, Right: right}
}

func (p *parser) parseGroupedExpr() ast.Expr {
	p.next()
	expr := p.parseExpression(Lowest)
	if expr == nil {
		return nil
	}
	if !p.expectPeek(lexer.TokRParen) {
		return nil
	}
	return expr
}

func (p *parser) parseArrayLiteral() ast.Expr {
	start := p.cur().Span
	elems, ok := p.parseExpressionList(lexer.TokRBracket)
	if !ok {
		return nil
	}
	return &ast.ArrayLiteral{Span: p.spanFrom(start), Elements: elems}
}

// parseExpressionList parses comma separated expressions up to end, with the
// opening delimiter current. A trailing comma is allowed.
func (p *parser) parseExpressionList(end lexer.TokenType) ([]ast.Expr, bool) {
	var list []ast.Expr
	if p.peekIs(end) {
		p.next()
		return list, true
	}

	p.next()
	expr := p.parseExpression(Lowest)
	if expr == nil {
		return nil, false
	}
	list = append(list, expr)

	for p.peekIs(lexer.TokComma) {
		p.next()
		if p.peekIs(end) {
			break
		}
		p.next()
		expr := p.parseExpression(Lowest)
		if expr == nil {
			return nil, false
		}
		list = append(list, expr)
	}

	if !p.expectPeek(end) {
		return nil, false
	}
	return list, true
}

func (p *parser) parseHashLiteral() ast.Expr {
	start := p.cur().Span
	hash := &ast.HashLiteral{}

	for !p.peekIs(lexer.TokRBrace) {
		p.next()
		key := p.parseExpression(Lowest)
		if key == nil {
			return nil
		}
		if !p.expectPeek(lexer.TokColon) {
			return nil
		}
		p.next()
		value := p.parseExpression(Lowest)
		if value == nil {
			return nil
		}
		hash.Pairs = append(hash.Pairs, ast.HashPair{Key: key, Value: value})

		if !p.peekIs(lexer.TokRBrace) && !p.expectPeek(lexer.TokComma) {
			return nil
		}
	}
	p.next() // '}'

	hash.Span = p.spanFrom(start)
	return hash
}

func (p *parser) parseIfExpr() ast.Expr {
	start := p.cur().Span
	p.next()

	cond := p.parseExpression(Lowest)
	if cond == nil {
		return nil
	}
	if !p.expectPeek(lexer.TokLBrace) {
		return nil
	}
	consequence := p.parseBlock()
	if consequence == nil {
		return nil
	}
	expr := &ast.IfExpr{Condition: cond, Consequence: consequence}

	if p.peekIs(lexer.TokElse) {
		p.next()
		if p.peekIs(lexer.TokIf) {
			p.next()
			elseStart := p.cur().Span
			nested := p.parseIfExpr()
			if nested == nil {
				return nil
			}
			span := p.spanFrom(elseStart)
			expr.Alternative = &ast.Block{
				Span:       span,
				Statements: []ast.Stmt{&ast.ExprStmt{Span: span, Expr: nested}},
			}
		} else {
			if !p.expectPeek(lexer.TokLBrace) {
				return nil
			}
			expr.Alternative = p.parseBlock()
			if expr.Alternative == nil {
				return nil
			}
		}
	}

	expr.Span = p.spanFrom(start)
	return expr
}

func (p *parser) parseFunctionLiteral() ast.Expr {
	start := p.cur().Span
	if !p.expectPeek(lexer.TokLParen) {
		return nil
	}
	params, ok := p.parseParams()
	if !ok {
		return nil
	}
	if !p.expectPeek(lexer.TokLBrace) {
		return nil
	}
	body := p.parseBlock()
	if body == nil {
		return nil
	}
	return &ast.FunctionLiteral{Span: p.spanFrom(start), Params: params, Body: body}
}

// parseParams parses `(a, b)` with '(' current.
func (p *parser) parseParams() ([]*ast.Identifier, bool) {
	var params []*ast.Identifier
	for !p.peekIs(lexer.TokRParen) {
		if !p.expectPeek(lexer.TokIdent) {
			return nil, false
		}
		params = append(params, &ast.Identifier{Span: p.cur().Span, Value: p.cur().Value})
		if !p.peekIs(lexer.TokRParen) && !p.expectPeek(lexer.TokComma) {
			return nil, false
		}
	}
	p.next() // ')'
	return params, true
}

func (p *parser) parseCallExpr(callee ast.Expr) ast.Expr {
	args, ok := p.parseExpressionList(lexer.TokRParen)
	if !ok {
		return nil
	}
	return &ast.CallExpr{Span: p.spanFrom(callee.NodeSpan()), Callee: callee, Args: args}
}

func (p *parser) parseIndexExpr(left ast.Expr) ast.Expr {
	p.next()
	index := p.parseExpression(Lowest)
	if index == nil {
		return nil
	}
	if !p.expectPeek(lexer.TokRBracket) {
		return nil
	}
	return &ast.IndexExpr{Span: p.spanFrom(left.NodeSpan()), Left: left, Index: index}
}

func (p *parser) parseDotExpr(left ast.Expr) ast.Expr {
	p.next()
	right := p.parseExpression(Dot)
	if right == nil {
		return nil
	}
	return &ast.DotExpr{Span: p.spanFrom(left.NodeSpan()), Left: left, Right: right}
}

// Package formatter implements the tammr source code formatter.
package formatter

import (
	"strconv"
	"strings"

	"github.com/thomasrohde/tammr/pkg/ast"
)

const (
	indent    = "  "
	lineWidth = 72
)

// Binding strength of infix operators (higher = tighter binding).
var precedence = map[string]int{
	"==": 1, "!=": 1,
	"<": 2, ">": 2,
	"+": 3, "-": 3,
	"*": 4, "/": 4,
}

func needsParens(child ast.Expr, parentOp string, isRight bool) bool {
	switch c := child.(type) {
	case *ast.InfixExpr:
		childPrec := precedence[c.Operator]
		parentPrec := precedence[parentOp]
		if childPrec < parentPrec {
			return true
		}
		// Operators are left-associative; same precedence on the right keeps its grouping.
		return childPrec == parentPrec && isRight
	case *ast.IfExpr:
		return true
	}
	return false
}

// Format pretty-prints a tammr AST back to source code.
func Format(program *ast.Program) string {
	if len(program.Statements) == 0 {
		return ""
	}
	return formatStmts(program.Statements, 0) + "\n"
}

// HasComments reports whether source contains a // or /* comment outside of
// string literals. Comments are not kept in the AST, so formatting drops them.
func HasComments(source string) bool {
	var quote byte
	for i := 0; i < len(source); i++ {
		ch := source[i]
		switch {
		case quote != 0:
			if ch == '\\' {
				i++
			} else if ch == quote {
				quote = 0
			}
		case ch == '"' || ch == '\'':
			quote = ch
		case ch == '/' && i+1 < len(source) && (source[i+1] == '/' || source[i+1] == '*'):
			return true
		}
	}
	return false
}

// formatStmts renders statements one per line. A statement that ends in a
// block has no semicolon unless the next line would otherwise continue it.
func formatStmts(stmts []ast.Stmt, depth int) string {
	prefix := strings.Repeat(indent, depth)
	lines := make([]string, len(stmts))
	for i, s := range stmts {
		lines[i] = formatStmt(s, depth)
	}
	out := make([]string, len(stmts))
	for i, s := range stmts {
		line := lines[i]
		if !endsWithBlock(s) || (i+1 < len(lines) && continuesExpr(lines[i+1])) {
			line += ";"
		}
		out[i] = prefix + line
	}
	return strings.Join(out, "\n")
}

func formatStmt(s ast.Stmt, depth int) string {
	switch stmt := s.(type) {
	case *ast.LetStmt:
		out := "let "
		if stmt.ValueKind != "" {
			out += stmt.ValueKind + " "
		}
		return out + stmt.Name.Value + " = " + formatExpr(stmt.Value, depth)
	case *ast.AssignStmt:
		return stmt.Name.Value + " = " + formatExpr(stmt.Value, depth)
	case *ast.ReturnStmt:
		if stmt.Value == nil {
			return "return"
		}
		return "return " + formatExpr(stmt.Value, depth)
	case *ast.ExprStmt:
		return formatExpr(stmt.Expr, depth)
	}
	return ""
}

func endsWithBlock(s ast.Stmt) bool {
	es, ok := s.(*ast.ExprStmt)
	if !ok {
		return false
	}
	_, isIf := es.Expr.(*ast.IfExpr)
	return isIf
}

// continuesExpr reports whether a line starting with line's first token would
// be parsed as continuing the expression on the line before it.
func continuesExpr(line string) bool {
	line = strings.TrimLeft(line, " ")
	return line != "" && strings.ContainsRune("-([.=", rune(line[0]))
}

func formatBlock(block *ast.Block, depth int) string {
	if block == nil || len(block.Statements) == 0 {
		return "{}"
	}
	return "{\n" + formatStmts(block.Statements, depth+1) + "\n" + strings.Repeat(indent, depth) + "}"
}

func formatExpr(e ast.Expr, depth int) string {
	switch expr := e.(type) {
	case *ast.IntLiteral:
		return strconv.FormatInt(expr.Value, 10)
	case *ast.BoolLiteral:
		if expr.Value {
			return "true"
		}
		return "false"
	case *ast.StrLiteral:
		return ast.Quote(expr.Value)
	case *ast.NullLiteral:
		return "null"
	case *ast.Identifier:
		return expr.Value
	case *ast.ArrayLiteral:
		return formatList(expr.Elements, depth)
	case *ast.HashLiteral:
		return formatHash(expr, depth)
	case *ast.PrefixExpr:
		operand := formatExpr(expr.Right, depth)
		switch expr.Right.(type) {
		case *ast.InfixExpr, *ast.IfExpr:
			operand = "(" + operand + ")"
		}
		return expr.Operator + operand
	case *ast.InfixExpr:
		left := formatExpr(expr.Left, depth)
		right := formatExpr(expr.Right, depth)
		if needsParens(expr.Left, expr.Operator, false) {
			left = "(" + left + ")"
		}
		if needsParens(expr.Right, expr.Operator, true) {
			right = "(" + right + ")"
		}
		return left + " " + expr.Operator + " " + right
	case *ast.IfExpr:
		out := "if " + formatExpr(expr.Condition, depth) + " " + formatBlock(expr.Consequence, depth)
		if expr.Alternative == nil {
			return out
		}
		if elseIf := elseIfExpr(expr.Alternative); elseIf != nil {
			return out + " else " + formatExpr(elseIf, depth)
		}
		return out + " else " + formatBlock(expr.Alternative, depth)
	case *ast.FunctionLiteral:
		names := make([]string, len(expr.Params))
		for i, p := range expr.Params {
			names[i] = p.Value
		}
		return "fn(" + strings.Join(names, ", ") + ") " + formatBlock(expr.Body, depth)
	case *ast.CallExpr:
		args := make([]string, len(expr.Args))
		for i, a := range expr.Args {
			args[i] = formatExpr(a, depth)
		}
		return formatOperand(expr.Callee, depth) + "(" + strings.Join(args, ", ") + ")"
	case *ast.IndexExpr:
		return formatOperand(expr.Left, depth) + "[" + formatExpr(expr.Index, depth) + "]"
	case *ast.DotExpr:
		return formatOperand(expr.Left, depth) + "." + formatDotRight(expr.Right, depth)
	}
	return ""
}

// formatOperand renders the operand of a call, index or dot, grouping
// expressions that bind more loosely.
func formatOperand(e ast.Expr, depth int) string {
	s := formatExpr(e, depth)
	switch e.(type) {
	case *ast.InfixExpr, *ast.PrefixExpr, *ast.IfExpr:
		return "(" + s + ")"
	}
	return s
}

// formatDotRight renders the right side of a dot. Postfix forms are grouped
// so that `o.(f(1))` does not re-parse as a call of `o.f`.
func formatDotRight(e ast.Expr, depth int) string {
	switch e.(type) {
	case *ast.CallExpr, *ast.IndexExpr, *ast.DotExpr:
		return "(" + formatExpr(e, depth) + ")"
	}
	return formatOperand(e, depth)
}

// elseIfExpr returns the nested if of an `else if` chain.
func elseIfExpr(alt *ast.Block) *ast.IfExpr {
	if len(alt.Statements) != 1 {
		return nil
	}
	es, ok := alt.Statements[0].(*ast.ExprStmt)
	if !ok {
		return nil
	}
	ifExpr, _ := es.Expr.(*ast.IfExpr)
	return ifExpr
}

func formatHash(hash *ast.HashLiteral, depth int) string {
	if len(hash.Pairs) == 0 {
		return "{}"
	}

	// Try inline first
	inlineParts := make([]string, len(hash.Pairs))
	for i, p := range hash.Pairs {
		inlineParts[i] = formatExpr(p.Key, depth+1) + ": " + formatExpr(p.Value, depth+1)
	}
	inline := "{" + strings.Join(inlineParts, ", ") + "}"
	if len(inline) <= lineWidth && !strings.Contains(inline, "\n") {
		return inline
	}

	// Multi-line
	inner := strings.Repeat(indent, depth+1)
	outer := strings.Repeat(indent, depth)
	parts := make([]string, len(hash.Pairs))
	for i, p := range inlineParts {
		parts[i] = inner + p
	}
	return "{\n" + strings.Join(parts, ",\n") + ",\n" + outer + "}"
}

func formatList(elems []ast.Expr, depth int) string {
	if len(elems) == 0 {
		return "[]"
	}

	inlineParts := make([]string, len(elems))
	for i, e := range elems {
		inlineParts[i] = formatExpr(e, depth+1)
	}
	inline := "[" + strings.Join(inlineParts, ", ") + "]"
	if len(inline) <= lineWidth && !strings.Contains(inline, "\n") {
		return inline
	}

	inner := strings.Repeat(indent, depth+1)
	outer := strings.Repeat(indent, depth)
	parts := make([]string, len(elems))
	for i, p := range inlineParts {
		parts[i] = inner + p
	}
	return "[\n" + strings.Join(parts, ",\n") + ",\n" + outer + "]"
}

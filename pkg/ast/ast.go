// Package ast defines the tammr language AST node types.
package ast

import "strings"

// Span represents a source location range.
type Span struct {
	File      string `json:"file"`
	StartLine int    `json:"startLine"`
	StartCol  int    `json:"startCol"`
	EndLine   int    `json:"endLine"`
	EndCol    int    `json:"endCol"`
	Offset    int    `json:"offset"`
}

// Node is the interface implemented by all AST nodes.
// String returns the canonical source form of the node; re-parsing it
// yields a node with the same String.
type Node interface {
	Kind() string
	NodeSpan() Span
	String() string
}

// --- Expr is the interface for all expression nodes ---

type Expr interface {
	Node
	exprNode() // sealed marker
}

// --- Stmt is the interface for all statement nodes ---

type Stmt interface {
	Node
	stmtNode() // sealed marker
}

// --- Literal Expressions ---

type IntLiteral struct {
	Span  Span
	Text  string
	Value int64
}

func (n *IntLiteral) Kind() string   { return "IntLiteral" }
func (n *IntLiteral) NodeSpan() Span { return n.Span }
func (n *IntLiteral) exprNode()      {}
func (n *IntLiteral) String() string { return n.Text }

type BoolLiteral struct {
	Span  Span
	Value bool
}

func (n *BoolLiteral) Kind() string   { return "BoolLiteral" }
func (n *BoolLiteral) NodeSpan() Span { return n.Span }
func (n *BoolLiteral) exprNode()      {}
func (n *BoolLiteral) String() string {
	if n.Value {
		return "true"
	}
	return "false"
}

type StrLiteral struct {
	Span  Span
	Value string
}

func (n *StrLiteral) Kind() string   { return "StrLiteral" }
func (n *StrLiteral) NodeSpan() Span { return n.Span }
func (n *StrLiteral) exprNode()      {}
func (n *StrLiteral) String() string { return Quote(n.Value) }

type NullLiteral struct {
	Span Span
}

func (n *NullLiteral) Kind() string   { return "NullLiteral" }
func (n *NullLiteral) NodeSpan() Span { return n.Span }
func (n *NullLiteral) exprNode()      {}
func (n *NullLiteral) String() string { return "null" }

// --- Identifiers ---

type Identifier struct {
	Span  Span
	Value string
}

func (n *Identifier) Kind() string   { return "Identifier" }
func (n *Identifier) NodeSpan() Span { return n.Span }
func (n *Identifier) exprNode()      {}
func (n *Identifier) String() string { return n.Value }

// --- Collections ---

type ArrayLiteral struct {
	Span     Span
	Elements []Expr
}

func (n *ArrayLiteral) Kind() string   { return "ArrayLiteral" }
func (n *ArrayLiteral) NodeSpan() Span { return n.Span }
func (n *ArrayLiteral) exprNode()      {}
func (n *ArrayLiteral) String() string { return "[" + joinExprs(n.Elements) + "]" }

// HashPair is a single key: value entry of a hash literal.
type HashPair struct {
	Key   Expr
	Value Expr
}

// HashLiteral keeps its pairs in source order.
type HashLiteral struct {
	Span  Span
	Pairs []HashPair
}

func (n *HashLiteral) Kind() string   { return "HashLiteral" }
func (n *HashLiteral) NodeSpan() Span { return n.Span }
func (n *HashLiteral) exprNode()      {}
func (n *HashLiteral) String() string {
	parts := make([]string, len(n.Pairs))
	for i, p := range n.Pairs {
		parts[i] = p.Key.String() + ": " + p.Value.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// --- Operators ---

type PrefixExpr struct {
	Span     Span
	Operator string
	Right    Expr
}

func (n *PrefixExpr) Kind() string   { return "PrefixExpr" }
func (n *PrefixExpr) NodeSpan() Span { return n.Span }
func (n *PrefixExpr) exprNode()      {}
func (n *PrefixExpr) String() string { return "(" + n.Operator + n.Right.String() + ")" }

type InfixExpr struct {
	Span     Span
	Left     Expr
	Operator string
	Right    Expr
}

func (n *InfixExpr) Kind() string   { return "InfixExpr" }
func (n *InfixExpr) NodeSpan() Span { return n.Span }
func (n *InfixExpr) exprNode()      {}
func (n *InfixExpr) String() string {
	return "(" + n.Left.String() + " " + n.Operator + " " + n.Right.String() + ")"
}

// --- Control flow ---

// IfExpr is an if/else expression. An `else if` chain is stored as an
// Alternative block holding a single expression statement with the nested IfExpr.
type IfExpr struct {
	Span        Span
	Condition   Expr
	Consequence *Block
	Alternative *Block
}

func (n *IfExpr) Kind() string   { return "IfExpr" }
func (n *IfExpr) NodeSpan() Span { return n.Span }
func (n *IfExpr) exprNode()      {}
func (n *IfExpr) String() string {
	out := "if " + n.Condition.String() + " " + n.Consequence.String()
	if n.Alternative != nil {
		out += " else " + n.Alternative.String()
	}
	return out
}

// --- Functions ---

type FunctionLiteral struct {
	Span   Span
	Params []*Identifier
	Body   *Block
}

func (n *FunctionLiteral) Kind() string   { return "FunctionLiteral" }
func (n *FunctionLiteral) NodeSpan() Span { return n.Span }
func (n *FunctionLiteral) exprNode()      {}
func (n *FunctionLiteral) String() string {
	return "fn(" + n.ParamList() + ") " + n.Body.String()
}

// ParamList returns the comma separated parameter names.
func (n *FunctionLiteral) ParamList() string {
	names := make([]string, len(n.Params))
	for i, p := range n.Params {
		names[i] = p.Value
	}
	return strings.Join(names, ", ")
}

type CallExpr struct {
	Span   Span
	Callee Expr
	Args   []Expr
}

func (n *CallExpr) Kind() string   { return "CallExpr" }
func (n *CallExpr) NodeSpan() Span { return n.Span }
func (n *CallExpr) exprNode()      {}
func (n *CallExpr) String() string {
	return n.Callee.String() + "(" + joinExprs(n.Args) + ")"
}

// --- Access ---

type IndexExpr struct {
	Span  Span
	Left  Expr
	Index Expr
}

func (n *IndexExpr) Kind() string   { return "IndexExpr" }
func (n *IndexExpr) NodeSpan() Span { return n.Span }
func (n *IndexExpr) exprNode()      {}
func (n *IndexExpr) String() string {
	return "(" + n.Left.String() + "[" + n.Index.String() + "])"
}

// DotExpr is `left.right`. The parser does not interpret Right; the
// evaluator treats it as a property name or key depending on Left.
type DotExpr struct {
	Span  Span
	Left  Expr
	Right Expr
}

func (n *DotExpr) Kind() string   { return "DotExpr" }
func (n *DotExpr) NodeSpan() Span { return n.Span }
func (n *DotExpr) exprNode()      {}
func (n *DotExpr) String() string {
	right := n.Right.String()
	// Index and dot forms already print their own parentheses.
	if _, ok := n.Right.(*CallExpr); ok {
		right = "(" + right + ")"
	}
	return "(" + n.Left.String() + "." + right + ")"
}

// --- Statements ---

// LetStmt binds Name in the current scope. ValueKind holds the optional
// declared primitive kind (str, number, bool, arr, kv) and is informational.
type LetStmt struct {
	Span      Span
	Name      *Identifier
	ValueKind string
	Value     Expr
}

func (n *LetStmt) Kind() string   { return "LetStmt" }
func (n *LetStmt) NodeSpan() Span { return n.Span }
func (n *LetStmt) stmtNode()      {}
func (n *LetStmt) String() string {
	out := "let "
	if n.ValueKind != "" {
		out += n.ValueKind + " "
	}
	return out + n.Name.Value + " = " + n.Value.String() + ";"
}

// AssignStmt rebinds an existing name where it was declared.
type AssignStmt struct {
	Span  Span
	Name  *Identifier
	Value Expr
}

func (n *AssignStmt) Kind() string   { return "AssignStmt" }
func (n *AssignStmt) NodeSpan() Span { return n.Span }
func (n *AssignStmt) stmtNode()      {}
func (n *AssignStmt) String() string { return n.Name.Value + " = " + n.Value.String() + ";" }

// ReturnStmt returns Value from the enclosing function. A nil Value returns null.
type ReturnStmt struct {
	Span  Span
	Value Expr
}

func (n *ReturnStmt) Kind() string   { return "ReturnStmt" }
func (n *ReturnStmt) NodeSpan() Span { return n.Span }
func (n *ReturnStmt) stmtNode()      {}
func (n *ReturnStmt) String() string {
	if n.Value == nil {
		return "return;"
	}
	return "return " + n.Value.String() + ";"
}

type ExprStmt struct {
	Span Span
	Expr Expr
}

func (n *ExprStmt) Kind() string   { return "ExprStmt" }
func (n *ExprStmt) NodeSpan() Span { return n.Span }
func (n *ExprStmt) stmtNode()      {}
func (n *ExprStmt) String() string { return n.Expr.String() + ";" }

// --- Blocks ---

type Block struct {
	Span       Span
	Statements []Stmt
}

func (n *Block) Kind() string   { return "Block" }
func (n *Block) NodeSpan() Span { return n.Span }
func (n *Block) String() string {
	if len(n.Statements) == 0 {
		return "{ }"
	}
	return "{ " + joinStmts(n.Statements) + " }"
}

// --- Program ---

type Program struct {
	Span       Span
	Statements []Stmt
}

func (n *Program) Kind() string   { return "Program" }
func (n *Program) NodeSpan() Span { return n.Span }
func (n *Program) String() string { return joinStmts(n.Statements) }

// Quote renders s as a double-quoted string literal that the lexer reads back
// to the same value.
func Quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

func joinExprs(exprs []Expr) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}

func joinStmts(stmts []Stmt) string {
	parts := make([]string, len(stmts))
	for i, s := range stmts {
		parts[i] = s.String()
	}
	return strings.Join(parts, " ")
}

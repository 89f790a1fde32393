package parser_test

import (
	"strings"
	"testing"

	"github.com/thomasrohde/tammr/pkg/ast"
	"github.com/thomasrohde/tammr/pkg/diagnostics"
	"github.com/thomasrohde/tammr/pkg/lexer"
	"github.com/thomasrohde/tammr/pkg/parser"
)

// helper: parse source and assert no diagnostics
func mustParse(t *testing.T, source string) *ast.Program {
	t.Helper()
	prog, diags := parser.Parse(source, "test.tmr")
	if len(diags) > 0 {
		t.Fatalf("unexpected diagnostics for %q: %v", source, diags)
	}
	if prog == nil {
		t.Fatal("expected non-nil program")
	}
	return prog
}

// helper: parse source and assert diagnostics are returned
func mustFail(t *testing.T, source string) []diagnostics.Diagnostic {
	t.Helper()
	prog, diags := parser.Parse(source, "test.tmr")
	if len(diags) == 0 {
		t.Fatalf("expected parse of %q to fail, got %s", source, prog)
	}
	if prog != nil {
		t.Fatal("expected nil program when diagnostics are reported")
	}
	return diags
}

// helper: extract the single statement from a program, assert it is an ExprStmt, return its Expr
func singleExpr(t *testing.T, source string) ast.Expr {
	t.Helper()
	prog := mustParse(t, source)
	if len(prog.Statements) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(prog.Statements))
	}
	stmt, ok := prog.Statements[0].(*ast.ExprStmt)
	if !ok {
		t.Fatalf("expected *ast.ExprStmt, got %T", prog.Statements[0])
	}
	return stmt.Expr
}

func TestLetStatements(t *testing.T) {
	tests := []struct {
		src, name, kind, value string
	}{
		{"let x = 5;", "x", "", "5"},
		{"let y = true;", "y", "", "true"},
		{"let foobar = y", "foobar", "", "y"},
		{`let str s = "a";`, "s", "str", `"a"`},
		{"let number n = 1 + 2;", "n", "number", "(1 + 2)"},
		{"let bool b = !false;", "b", "bool", "(!false)"},
		{"let arr a = [1];", "a", "arr", "[1]"},
		{`let kv person = {"name": "Joe"};`, "person", "kv", `{"name": "Joe"}`},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			prog := mustParse(t, tt.src)
			if len(prog.Statements) != 1 {
				t.Fatalf("expected 1 statement, got %d", len(prog.Statements))
			}
			let, ok := prog.Statements[0].(*ast.LetStmt)
			if !ok {
				t.Fatalf("expected *ast.LetStmt, got %T", prog.Statements[0])
			}
			if let.Name.Value != tt.name {
				t.Errorf("name: got %q, want %q", let.Name.Value, tt.name)
			}
			if let.ValueKind != tt.kind {
				t.Errorf("kind: got %q, want %q", let.ValueKind, tt.kind)
			}
			if let.Value.String() != tt.value {
				t.Errorf("value: got %q, want %q", let.Value.String(), tt.value)
			}
		})
	}
}

func TestReturnStatements(t *testing.T) {
	prog := mustParse(t, "return 5; return x + 1; return;")
	if len(prog.Statements) != 3 {
		t.Fatalf("expected 3 statements, got %d", len(prog.Statements))
	}
	for i, want := range []string{"return 5;", "return (x + 1);", "return;"} {
		if got := prog.Statements[i].String(); got != want {
			t.Errorf("statement %d: got %q, want %q", i, got, want)
		}
	}
	ret := prog.Statements[2].(*ast.ReturnStmt)
	if ret.Value != nil {
		t.Errorf("bare return should have nil value")
	}
}

func TestReturnBeforeBrace(t *testing.T) {
	expr := singleExpr(t, "fn() { return }")
	fn := expr.(*ast.FunctionLiteral)
	if len(fn.Body.Statements) != 1 {
		t.Fatalf("expected 1 body statement, got %d", len(fn.Body.Statements))
	}
	if fn.Body.Statements[0].(*ast.ReturnStmt).Value != nil {
		t.Error("expected bare return")
	}
}

func TestAssignStatement(t *testing.T) {
	prog := mustParse(t, "let x = 1; x = x + 1;")
	assign, ok := prog.Statements[1].(*ast.AssignStmt)
	if !ok {
		t.Fatalf("expected *ast.AssignStmt, got %T", prog.Statements[1])
	}
	if assign.Name.Value != "x" || assign.Value.String() != "(x + 1)" {
		t.Errorf("got %s", assign)
	}
}

func TestOperatorPrecedence(t *testing.T) {
	tests := []struct {
		input, expected string
	}{
		{"(5 + 5) * 2;", "((5 + 5) * 2)"},
		{"5 + 5 * 2;", "(5 + (5 * 2))"},
		{"-a * b", "((-a) * b)"},
		{"!-a", "(!(-a))"},
		{"a + b + c", "((a + b) + c)"},
		{"a + b - c", "((a + b) - c)"},
		{"a * b * c", "((a * b) * c)"},
		{"a * b / c", "((a * b) / c)"},
		{"a + b / c", "(a + (b / c))"},
		{"a + b * c + d / e - f", "(((a + (b * c)) + (d / e)) - f)"},
		{"5 > 4 == 3 < 4", "((5 > 4) == (3 < 4))"},
		{"5 < 4 != 3 > 4", "((5 < 4) != (3 > 4))"},
		{"3 + 4 * 5 == 3 * 1 + 4 * 5", "((3 + (4 * 5)) == ((3 * 1) + (4 * 5)))"},
		{"true == !false", "(true == (!false))"},
		{"1 + (2 + 3) + 4", "((1 + (2 + 3)) + 4)"},
		{"-(5 + 5)", "(-(5 + 5))"},
		{"a + add(b * c) + d", "((a + add((b * c))) + d)"},
		{"add(a, b, 1, 2 * 3, 4 + 5, add(6, 7 * 8))", "add(a, b, 1, (2 * 3), (4 + 5), add(6, (7 * 8)))"},
		{"a * [1, 2, 3, 4][b * c] * d", "((a * ([1, 2, 3, 4][(b * c)])) * d)"},
		{"add(a * b[2], b[1], 2 * [1, 2][1])", "add((a * (b[2])), (b[1]), (2 * ([1, 2][1])))"},
		{"p.name", "(p.name)"},
		{"a.b.c", "((a.b).c)"},
		{"-p.age", "(-(p.age))"},
		{"p.items[0]", "((p.items)[0])"},
		{"s.length + 1", "((s.length) + 1)"},
		{"h.f(1)", "(h.f)(1)"},
		{"(a = b)", "(a == b)"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			expr := singleExpr(t, tt.input)
			if got := expr.String(); got != tt.expected {
				t.Errorf("got %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestLiterals(t *testing.T) {
	tests := []struct {
		input, kind, str string
	}{
		{"5", "IntLiteral", "5"},
		{"true", "BoolLiteral", "true"},
		{"false", "BoolLiteral", "false"},
		{`"hello world"`, "StrLiteral", `"hello world"`},
		{`'single'`, "StrLiteral", `"single"`},
		{"null", "NullLiteral", "null"},
		{"foobar", "Identifier", "foobar"},
		{"[]", "ArrayLiteral", "[]"},
		{"[1, 2 * 2, 3 + 3]", "ArrayLiteral", "[1, (2 * 2), (3 + 3)]"},
		{"[1, 2,]", "ArrayLiteral", "[1, 2]"},
		{"{}", "HashLiteral", "{}"},
		{`{"one": 1, "two": 2}`, "HashLiteral", `{"one": 1, "two": 2}`},
		{`{"one": 0 + 1, "two": 10 - 8,}`, "HashLiteral", `{"one": (0 + 1), "two": (10 - 8)}`},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			expr := singleExpr(t, tt.input)
			if expr.Kind() != tt.kind {
				t.Errorf("kind: got %s, want %s", expr.Kind(), tt.kind)
			}
			if expr.String() != tt.str {
				t.Errorf("string: got %q, want %q", expr.String(), tt.str)
			}
		})
	}
}

func TestHashKeepsOrder(t *testing.T) {
	hash := singleExpr(t, `{"b": 1, "a": 2, "c": 3}`).(*ast.HashLiteral)
	var keys []string
	for _, p := range hash.Pairs {
		keys = append(keys, p.Key.(*ast.StrLiteral).Value)
	}
	if strings.Join(keys, ",") != "b,a,c" {
		t.Errorf("got key order %v", keys)
	}
}

func TestIntegerLiteralValue(t *testing.T) {
	lit := singleExpr(t, "9223372036854775807").(*ast.IntLiteral)
	if lit.Value != 9223372036854775807 {
		t.Errorf("got %d", lit.Value)
	}
}

func TestIfExpression(t *testing.T) {
	tests := []struct {
		input, expected string
		hasElse         bool
	}{
		{"if x < y { x }", "if (x < y) { x; }", false},
		{"if (x < y) { x }", "if (x < y) { x; }", false},
		{"if (x < y) { x } else { y }", "if (x < y) { x; } else { y; }", true},
		{"if x { } else { }", "if x { } else { }", true},
		{"if a { 1 } else if b { 2 } else { 3 }", "if a { 1; } else { if b { 2; } else { 3; }; }", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			ifExpr, ok := singleExpr(t, tt.input).(*ast.IfExpr)
			if !ok {
				t.Fatalf("expected *ast.IfExpr")
			}
			if (ifExpr.Alternative != nil) != tt.hasElse {
				t.Errorf("alternative presence: got %v, want %v", ifExpr.Alternative != nil, tt.hasElse)
			}
			if got := ifExpr.String(); got != tt.expected {
				t.Errorf("got %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestFunctionLiteral(t *testing.T) {
	tests := []struct {
		input  string
		params []string
		str    string
	}{
		{"fn() {}", nil, "fn() { }"},
		{"fn(x) { x; }", []string{"x"}, "fn(x) { x; }"},
		{"fn(x, y, z) { x + y }", []string{"x", "y", "z"}, "fn(x, y, z) { (x + y); }"},
		{"function(a, b,) { return a; }", []string{"a", "b"}, "fn(a, b) { return a; }"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			fn, ok := singleExpr(t, tt.input).(*ast.FunctionLiteral)
			if !ok {
				t.Fatal("expected *ast.FunctionLiteral")
			}
			if len(fn.Params) != len(tt.params) {
				t.Fatalf("got %d params, want %d", len(fn.Params), len(tt.params))
			}
			for i, p := range tt.params {
				if fn.Params[i].Value != p {
					t.Errorf("param %d: got %q, want %q", i, fn.Params[i].Value, p)
				}
			}
			if fn.String() != tt.str {
				t.Errorf("got %q, want %q", fn.String(), tt.str)
			}
		})
	}
}

func TestCallExpression(t *testing.T) {
	call, ok := singleExpr(t, "add(1, 2 * 3, 4 + 5,);").(*ast.CallExpr)
	if !ok {
		t.Fatal("expected *ast.CallExpr")
	}
	if call.Callee.String() != "add" || len(call.Args) != 3 {
		t.Fatalf("got %s", call)
	}
	immediate := singleExpr(t, "fn(x) { x; }(5)")
	if immediate.String() != "fn(x) { x; }(5)" {
		t.Errorf("got %q", immediate.String())
	}
}

func TestSemicolonsOptional(t *testing.T) {
	prog := mustParse(t, "let a = 1\nlet b = 2\na")
	if len(prog.Statements) != 3 {
		t.Fatalf("expected 3 statements, got %d", len(prog.Statements))
	}
}

func TestSpans(t *testing.T) {
	prog := mustParse(t, "let x = 1;\nadd(x, 2)")
	call := prog.Statements[1].(*ast.ExprStmt).Expr.(*ast.CallExpr)
	sp := call.NodeSpan()
	if sp.StartLine != 2 || sp.StartCol != 1 || sp.Offset != 11 {
		t.Errorf("got start %d:%d@%d", sp.StartLine, sp.StartCol, sp.Offset)
	}
	if sp.EndLine != 2 || sp.EndCol != 10 {
		t.Errorf("got end %d:%d", sp.EndLine, sp.EndCol)
	}
	if sp.File != "test.tmr" {
		t.Errorf("got file %q", sp.File)
	}
}

func TestRoundTripFixpoint(t *testing.T) {
	sources := []string{
		"let add = fn(x, y) { x + y; }; add(5 + 5, add(5, 5));",
		`let kv person = {"name": "Joe", "age": 30}; person.name`,
		"[1, 2, 3][-1]",
		"if (10 > 1) { if (10 > 1) { return 10; } return 1; }",
		"let f = fn(a) { if a { 1 } else if !a { 2 } else { 3 } }; f(true)",
		`let s = 'tab\there "q"'; s.length == 9`,
		"x = -(1 - 2) * 3 / 4;",
		"fn(x) { x; }(5)",
		"let counter = fn() { let c = 0; fn() { c = c + 1; c } }; counter()()",
		"null; return;",
		"h.f(1)",
		"o.(f(1));",
		"o.(a[0]);",
		"o.(a.b);",
		"o.a[0].b(2)",
	}
	for _, src := range sources {
		t.Run(src, func(t *testing.T) {
			first := mustParse(t, src).String()
			second := mustParse(t, first).String()
			if first != second {
				t.Errorf("not a fixpoint:\n first: %s\nsecond: %s", first, second)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"let = 5;", "expected identifier"},
		{"let x 5;", "expected '='"},
		{"let x = ;", "unexpected token ';'"},
		{"(1 + 2", "expected ')'"},
		{"[1, 2", "expected ']'"},
		{`{"a" 1}`, "expected ':'"},
		{`{"a": 1 "b": 2}`, "expected ','"},
		{"fn(x y) {}", "expected ','"},
		{"fn(1) {}", "expected identifier"},
		{"if x { 1", "unterminated block"},
		{"fn() { 1", "unterminated block"},
		{"if x 1", "expected '{'"},
		{"99999999999999999999", "integer literal out of range"},
		{"1 +", "unexpected end of input"},
		{"}", "unexpected token '}'"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			diags := mustFail(t, tt.input)
			found := false
			for _, d := range diags {
				if strings.Contains(d.Message, tt.want) {
					found = true
				}
				if d.Span == nil {
					t.Errorf("diagnostic without span: %v", d)
				}
			}
			if !found {
				t.Errorf("no diagnostic contains %q: %v", tt.want, diags)
			}
		})
	}
}

func TestReservedKeywords(t *testing.T) {
	for _, src := range []string{"let import = 1;", "foreach", "let x = do;"} {
		t.Run(src, func(t *testing.T) {
			diags := mustFail(t, src)
			if diags[0].Code != diagnostics.EReserved {
				t.Errorf("got code %s, want %s (%v)", diags[0].Code, diagnostics.EReserved, diags)
			}
		})
	}
}

func TestErrorsAccumulate(t *testing.T) {
	src := `let = 1;
let y = 2;
let z 3;
let ok = 4;
(1 + ;`
	diags := mustFail(t, src)
	if len(diags) < 3 {
		t.Fatalf("expected at least 3 diagnostics, got %d: %v", len(diags), diags)
	}
	lines := map[int]bool{}
	for _, d := range diags {
		if d.Code != diagnostics.EParse {
			t.Errorf("got code %s", d.Code)
		}
		lines[d.Span.StartLine] = true
	}
	for _, l := range []int{1, 3, 5} {
		if !lines[l] {
			t.Errorf("expected a diagnostic on line %d, got %v", l, diags)
		}
	}
	if lines[2] || lines[4] {
		t.Errorf("valid lines should not report errors: %v", diags)
	}
}

func TestErrorsInsideBlockRecover(t *testing.T) {
	src := `let f = fn() {
  let = 1;
  let ok = 2;
};
let g = ;`
	diags := mustFail(t, src)
	if len(diags) != 2 {
		t.Fatalf("expected 2 diagnostics, got %d: %v", len(diags), diags)
	}
	if diags[0].Span.StartLine != 2 || diags[1].Span.StartLine != 5 {
		t.Errorf("unexpected lines: %v", diags)
	}
}

func TestLexErrorBecomesDiagnostic(t *testing.T) {
	diags := mustFail(t, `let s = "open`)
	if len(diags) != 1 || diags[0].Code != diagnostics.ELex {
		t.Fatalf("expected one E_LEX diagnostic, got %v", diags)
	}
}

func TestParseTokensWithoutEOF(t *testing.T) {
	tokens, err := lexer.Tokenize("1 + 2", "t.tmr")
	if err != nil {
		t.Fatal(err)
	}
	prog, diags := parser.ParseTokens(tokens[:len(tokens)-1])
	if len(diags) > 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if prog.String() != "(1 + 2);" {
		t.Errorf("got %q", prog.String())
	}
	if _, diags := parser.ParseTokens(nil); len(diags) > 0 {
		t.Errorf("empty token list should parse to an empty program: %v", diags)
	}
}

func TestIncomplete(t *testing.T) {
	tests := []struct {
		src  string
		want bool
	}{
		{"let f = fn(x) {", true},
		{"let x = ", true},
		{"add(1,", true},
		{`let s = "open`, true},
		{"/* still", true},
		{"if (x) { 1 } else {", true},
		{"let = 5;", false},
		{"let x = 1; )", false},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			diags := mustFail(t, tt.src)
			if got := parser.Incomplete(diags); got != tt.want {
				t.Errorf("Incomplete = %v, want %v (diags: %v)", got, tt.want, diags)
			}
		})
	}
	if parser.Incomplete(nil) {
		t.Error("no diagnostics is not incomplete")
	}
}

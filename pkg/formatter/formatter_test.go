package formatter_test

import (
	"testing"

	"github.com/thomasrohde/tammr/pkg/diagnostics"
	"github.com/thomasrohde/tammr/pkg/formatter"
	"github.com/thomasrohde/tammr/pkg/parser"
)

func format(t *testing.T, src string) string {
	t.Helper()
	prog, diags := parser.Parse(src, "test.tmr")
	if len(diags) > 0 {
		t.Fatalf("parse errors: %s", diagnostics.FormatDiagnostics(diags, true))
	}
	return formatter.Format(prog)
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"let", "let   x=5", "let x = 5;\n"},
		{"let kind", "let number x = 1 + 2;", "let number x = 1 + 2;\n"},
		{"assign", "x = x+1", "x = x + 1;\n"},
		{"bare return", "return;", "return;\n"},
		{"strings", `let s = 'say "hi"\n';`, "let s = \"say \\\"hi\\\"\\n\";\n"},
		{"precedence kept", "(1 + 2) * 3", "(1 + 2) * 3;\n"},
		{"redundant parens dropped", "(1 * 2) + 3", "1 * 2 + 3;\n"},
		{"left assoc", "1 - (2 - 3)", "1 - (2 - 3);\n"},
		{"prefix", "-(1 + 2)", "-(1 + 2);\n"},
		{"legacy equality", "a = b == c", "a = b == c;\n"},
		{"call and index", "f(1,2)[0].name", "f(1, 2)[0].name;\n"},
		{"grouped dot call", "o.(f(1))", "o.(f(1));\n"},
		{"grouped dot index", "o.(a[0])", "o.(a[0]);\n"},
		{"grouped dot chain", "o.(a.b)", "o.(a.b);\n"},
		{"grouped callee", "(a + b)(1)", "(a + b)(1);\n"},
		{"hash and array", `{"a":[1,2],"b":null}`, "{\"a\": [1, 2], \"b\": null};\n"},
		{"empty", "", ""},
		{
			"function",
			"let add = fn(a, b) { return a + b; };",
			"let add = fn(a, b) {\n  return a + b;\n};\n",
		},
		{
			"empty body",
			"let f = function() {};",
			"let f = fn() {};\n",
		},
		{
			"if else",
			"if (x > 1) { 1 } else { 2 }",
			"if x > 1 {\n  1;\n} else {\n  2;\n}\n",
		},
		{
			"else if",
			"if a { 1 } else if b { 2 } else { 3 }",
			"if a {\n  1;\n} else if b {\n  2;\n} else {\n  3;\n}\n",
		},
		{
			"if keeps semicolon before continuation",
			"if a { 1 }; -1;",
			"if a {\n  1;\n};\n-1;\n",
		},
		{
			"nested",
			"let f = fn(x) { if x { return fn(y) { y }; } };",
			"let f = fn(x) {\n  if x {\n    return fn(y) {\n      y;\n    };\n  }\n};\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := format(t, tt.src); got != tt.want {
				t.Errorf("got:\n%s\nwant:\n%s", got, tt.want)
			}
		})
	}
}

func TestFormatLongCollections(t *testing.T) {
	src := `let h = {"first_key": "aaaaaaaaaaaa", "second_key": "bbbbbbbbbbbb", "third_key": "cccccccccccc"};`
	want := "let h = {\n  \"first_key\": \"aaaaaaaaaaaa\",\n  \"second_key\": \"bbbbbbbbbbbb\",\n  \"third_key\": \"cccccccccccc\",\n};\n"
	if got := format(t, src); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

// Formatting must not change meaning: the output parses to the same tree.
func TestFormatRoundTrip(t *testing.T) {
	sources := []string{
		"let add = fn(a, b) { a + b }; add(1, 2 * 3);",
		"let x = [1, 2, 3][-1]; x = x - -1;",
		`let person = {"name": "Joe", "greet": fn() { "hi" }}; person.greet(); person.name;`,
		"if (a < b) { if c { 1 } } else if d { 2 } else { 3 }; [1];",
		"let f = fn() { return; }; f();",
		`"abc".length; !true == false; (fn(x) { x })(1);`,
		"1 * (2 + 3) / (4 - 5) - 6;",
		`let big = ["aaaaaaaaaaaaaaaaaaaa", "bbbbbbbbbbbbbbbbbbbb", "cccccccccccccccccccc", fn(x) { x }];`,
		"o.(f(1)); o.(a[0]); o.(a.b); o.f(1); o.a[0];",
	}
	for _, src := range sources {
		t.Run(src, func(t *testing.T) {
			first, diags := parser.Parse(src, "a.tmr")
			if len(diags) > 0 {
				t.Fatalf("parse errors: %s", diagnostics.FormatDiagnostics(diags, true))
			}
			out := formatter.Format(first)
			second, diags := parser.Parse(out, "b.tmr")
			if len(diags) > 0 {
				t.Fatalf("formatted source does not parse:\n%s\n%s", out, diagnostics.FormatDiagnostics(diags, true))
			}
			if first.String() != second.String() {
				t.Errorf("tree changed:\n%s\n%s", first.String(), second.String())
			}
			if again := formatter.Format(second); again != out {
				t.Errorf("format is not idempotent:\n%s\n%s", out, again)
			}
		})
	}
}

func TestHasComments(t *testing.T) {
	tests := []struct {
		src  string
		want bool
	}{
		{"let x = 1; // one", true},
		{"/* block */ let x = 1;", true},
		{`let url = "http://example.com";`, false},
		{`let s = 'a // b';`, false},
		{`let s = "a \" // b";`, false},
		{"let x = 4 / 2;", false},
	}
	for _, tt := range tests {
		if got := formatter.HasComments(tt.src); got != tt.want {
			t.Errorf("HasComments(%q) = %v, want %v", tt.src, got, tt.want)
		}
	}
}

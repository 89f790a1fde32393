package lexer

import (
	"testing"
)

// FuzzTokenize feeds random inputs to the lexer to catch panics.
// The lexer should never panic; invalid input returns a *LexError.
func FuzzTokenize(f *testing.F) {
	seeds := []string{
		// Keywords
		`let fn function return if else true false null`,
		`str number bool arr kv`,
		`do end loop exit try catch throw and or not is import as foreach from to`,
		// Literals
		`42 0 007`,
		`"hello" 'single' "with\nescape" "quote\"" 'it\'s'`,
		// Operators and delimiters
		`; + - * / . = == ! != < > ( ) { } [ ] , :`,
		// Comments
		`// line comment`,
		`/* block */ x`,
		`/* unterminated`,
		// Programs
		`let add = fn(x, y) { x + y; }; add(1, 2);`,
		`let kv person = {"name": "Joe"}; person.name`,
		// Edge cases
		``,
		`   `,
		"\t\n\r",
		`"unterminated`,
		`'`,
		`@#$^&`,
		"\x00",
		"\xff\xfe",
		`"\q"`,
		`héllo 世界`,
	}

	for _, s := range seeds {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, input string) {
		var tokens []Token
		var err error
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Fatalf("Tokenize panicked on input %q: %v", input, r)
				}
			}()
			tokens, err = Tokenize(input, "fuzz.tmr")
		}()
		if err != nil {
			return
		}
		if len(tokens) == 0 || tokens[len(tokens)-1].Type != TokEOF {
			t.Fatalf("token stream for %q does not end with EOF", input)
		}
		last := -1
		for _, tok := range tokens {
			if tok.Span.Offset < last {
				t.Fatalf("offsets not monotonic for %q", input)
			}
			last = tok.Span.Offset
		}
	})
}

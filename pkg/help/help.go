// Package help holds the tammr quick reference and help topics.
package help

import (
	"fmt"
	"strings"

	"github.com/thomasrohde/tammr/pkg/stdlib"
)

// Version is the language version shown in the quick reference.
const Version = "v0.3"

// TopicList is the display order of help topics.
var TopicList = []string{"syntax", "types", "builtins", "strings", "flow", "errors", "repl", "examples"}

// QUICKREF is printed by `tammr help` with no topic.
var QUICKREF = `tammr ` + Version + ` quick reference

  let x = 5;                 bind (optionally: let number x = 5;)
  x = x + 1;                 reassign an existing binding
  let f = fn(a, b) { a + b }; f(1, 2);
  if (x > 1) { "big" } else { "small" }
  [1, 2, 3][-1]              arrays, negative indices
  {"name": "Joe"}.name       hashes, dot access
  "hello".length             string properties

Topics (tammr help <topic>):
  syntax    statements, expressions and precedence
  types     Integer, Boolean, String, Array, Hash, Function, Null
  builtins  len, first, push, pop, print, println, fprintln
  strings   string properties
  flow      if/else, return, closures, recursion
  errors    runtime errors and diagnostic codes
  repl      the interactive prompt and command-line flags
  examples  complete programs
`

// Topics maps topic names to their text.
var Topics = map[string]string{
	"syntax": `SYNTAX
  Statements end with an optional ';'.
    let name = expr;           let str|number|bool|arr|kv name = expr;
    name = expr;               reassign where name was declared
    return expr;  return;
    expr;
  Comments: // line   /* block */
  Literals: 42  true false  null  "text" 'text'  [a, b]  {"k": v}
  Functions: fn(a, b) { ... }  (function is an alias for fn)
  Precedence, loosest first:
    == !=   <  >   + -   * /   -x !x   f(x)   a[i]   a.b
  Trailing commas are allowed in arrays, hashes, parameters and arguments.
  Reserved words (cannot be used as names): do end loop exit try catch
  throw and or not is import as foreach from to; using one is a parse
  error E_RESERVED.`,

	"types": `TYPES
  Integer   64-bit signed, wraps on overflow, '/' truncates toward zero
  Boolean   true, false
  String    UTF-8; '+' concatenates; s[i] indexes characters
  Array     [1, "two", [3]]; a[i] with negative i counting from the end
  Hash      {"key": value}; keys are strings, insertion order is kept
  Function  closures over the scope they were created in
  Null      null; also the value of missing keys and out-of-range indices
  Conditions must be Boolean; there is no truthiness.`,

	"builtins": `BUILTINS
  len(s | a)       byte length of a string, element count of an array
  first(a | s)     first element or character, null when empty
  push(a, v)       new array with v appended
  pop(a)           new array without the last element
  print(...)       write values separated by spaces
  println(...)     print plus a newline
  fprintln(f, ...) replace each {} in f with the next value; }} is a literal }`,

	"strings": `STRING PROPERTIES
  Accessed with a dot and no call parentheses: "abc".length
  length chars bytes is_empty is_numeric is_alpha is_alphanumeric is_ascii
  is_capitalized is_lowercase is_uppercase is_titlecase is_whitespace
  is_punctuation
  length counts bytes like len; len(s.chars) counts characters.
  The is_* checks (except is_capitalized, is_titlecase) are true for "".
  "abc".length()  is an error: method calls are not supported.`,

	"flow": `CONTROL FLOW
  if cond { ... } else if other { ... } else { ... }
    An if is an expression; without a taken branch its value is null.
  return leaves the enclosing function; at top level it ends the program.
  A function without return yields its last expression, or null.
  Closures:
    let counter = fn() { let n = 0; fn() { n = n + 1; n } };
  Recursion depth is limited (max_call_depth, default 10000).`,

	"errors": `ERRORS
  Lexical and parse errors stop the program before it runs.
  Runtime errors inside a function stop that function.
  Runtime errors at top level are printed and the next statement runs.
  Codes:
    E_LEX E_PARSE E_RESERVED E_DUP_PARAM       static
    E_TYPE E_UNBOUND E_ARITY E_NOT_CALLABLE    runtime
    E_INDEX E_PROPERTY E_DIV_ZERO E_DEPTH E_BUILTIN
    E_IO E_CONFIG                              tool
  Exit codes: 0 ok, 1 usage or I/O, 2 static errors, 3 runtime errors.`,

	"repl": `REPL AND FLAGS
  tammr                    start the interactive prompt
  tammr file.tmr           run a file (- reads the program from stdin)
  tammr --check file.tmr   report static errors only
  tammr --fmt file.tmr     print formatted source (--write rewrites the file)
  tammr --tokens file.tmr  print the token stream
  --pretty=false           print diagnostics as JSON
  --config path            configuration file (default .tammr.yaml, ~/.tammr/config.yaml)
  --log-level debug        log function calls to stderr
  In the REPL, bindings persist between lines; an unfinished line (an open
  brace or a dangling operator) continues on the next. Type exit or press
  Ctrl-D to quit; Ctrl-C discards the current line.`,

	"examples": `EXAMPLES
  let fib = fn(n) { if (n < 2) { return n; } fib(n - 1) + fib(n - 2) };
  println(fib(15));

  let people = [{"name": "Ada"}, {"name": "Joe"}];
  fprintln("{} and {}", people[0].name, people[-1].name);

  let newAdder = fn(x) { fn(y) { x + y } };
  let addTwo = newAdder(2);
  addTwo(40);`,
}

// MatchTopic resolves an exact topic name or an unambiguous prefix.
func MatchTopic(query string) (string, string, error) {
	if content, ok := Topics[query]; ok {
		return query, content, nil
	}
	var matches []string
	if query != "" {
		for _, name := range TopicList {
			if strings.HasPrefix(name, query) {
				matches = append(matches, name)
			}
		}
	}
	switch len(matches) {
	case 0:
		return "", "", fmt.Errorf("unknown help topic %q (available: %s)", query, strings.Join(TopicList, ", "))
	case 1:
		return matches[0], Topics[matches[0]], nil
	}
	return "", "", fmt.Errorf("ambiguous help topic %q (matches: %s)", query, strings.Join(matches, ", "))
}

// StdlibIndex lists every builtin and string property.
func StdlibIndex() string {
	reg := stdlib.Default()
	fns := reg.Names()
	props := reg.PropertyNames()

	var b strings.Builder
	b.WriteString("Builtins:\n")
	for _, name := range fns {
		fmt.Fprintf(&b, "  %s\n", name)
	}
	b.WriteString("String properties:\n")
	for _, name := range props {
		fmt.Fprintf(&b, "  .%s\n", name)
	}
	fmt.Fprintf(&b, "Total: %d functions, %d properties\n", len(fns), len(props))
	return b.String()
}

// Package runtime provides the top-level tammr runtime orchestrator.
package runtime

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/thomasrohde/tammr/pkg/ast"
	"github.com/thomasrohde/tammr/pkg/diagnostics"
	"github.com/thomasrohde/tammr/pkg/evaluator"
	"github.com/thomasrohde/tammr/pkg/formatter"
	"github.com/thomasrohde/tammr/pkg/lexer"
	"github.com/thomasrohde/tammr/pkg/parser"
	"github.com/thomasrohde/tammr/pkg/stdlib"
	"github.com/thomasrohde/tammr/pkg/validator"
)

// Result holds the outcome of a program execution.
type Result struct {
	// Value is the value of the last statement that produced one, or Empty.
	Value evaluator.Object
	// Errors are the top-level runtime errors in the order they were raised.
	Errors []*evaluator.Error
}

// Runtime wires together all tammr components for program execution.
// A Runtime holds no per-program state and may be reused.
type Runtime struct {
	stdlib   *stdlib.Registry
	logger   *slog.Logger
	maxDepth int
	report   func(err *evaluator.Error)
}

// Option is a functional option for configuring the Runtime.
type Option func(*Runtime)

// WithStdlib sets the builtin registry.
func WithStdlib(r *stdlib.Registry) Option {
	return func(rt *Runtime) {
		rt.stdlib = r
	}
}

// WithOutput sends the output of print builtins to w.
func WithOutput(w io.Writer) Option {
	return func(rt *Runtime) {
		rt.stdlib = stdlib.New(w)
	}
}

// WithLogger sets the logger for evaluation debug events.
func WithLogger(l *slog.Logger) Option {
	return func(rt *Runtime) {
		rt.logger = l
	}
}

// WithMaxDepth bounds nested function calls.
func WithMaxDepth(n int) Option {
	return func(rt *Runtime) {
		rt.maxDepth = n
	}
}

// WithReporter sets a callback invoked as each top-level runtime error is
// raised, before execution continues with the next statement.
func WithReporter(fn func(err *evaluator.Error)) Option {
	return func(rt *Runtime) {
		rt.report = fn
	}
}

// New creates a new Runtime with the given options.
// By default the process-wide builtin table is used and logging is off.
func New(opts ...Option) *Runtime {
	rt := &Runtime{
		maxDepth: evaluator.DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(rt)
	}
	if rt.stdlib == nil {
		rt.stdlib = stdlib.Default()
	}
	return rt
}

// Run parses, validates, and executes a tammr program in a fresh environment.
// Top-level runtime errors do not stop execution; when any occurred the
// returned error is a *RuntimeError and the Result is still populated.
func (rt *Runtime) Run(source, filename string) (*Result, error) {
	program, err := rt.compile(source, filename)
	if err != nil {
		return nil, err
	}
	return rt.exec(program, evaluator.NewEnv())
}

// Check parses and validates a tammr program without executing it.
func (rt *Runtime) Check(source, filename string) []diagnostics.Diagnostic {
	program, diags := parser.Parse(source, filename)
	if len(diags) > 0 {
		return diags
	}
	return validator.Validate(program)
}

// Format parses and formats a tammr program.
func (rt *Runtime) Format(source, filename string) (string, error) {
	program, diags := parser.Parse(source, filename)
	if len(diags) > 0 {
		return "", &DiagnosticError{Diagnostics: diags}
	}
	return formatter.Format(program), nil
}

// Tokens returns the token stream of source, ending with EOF.
func (rt *Runtime) Tokens(source, filename string) ([]lexer.Token, error) {
	tokens, err := lexer.Tokenize(source, filename)
	if err != nil {
		var lexErr *lexer.LexError
		if errors.As(err, &lexErr) {
			return nil, &DiagnosticError{Diagnostics: []diagnostics.Diagnostic{lexErr.Diag}}
		}
		return nil, err
	}
	return tokens, nil
}

func (rt *Runtime) compile(source, filename string) (*ast.Program, error) {
	program, diags := parser.Parse(source, filename)
	if len(diags) > 0 {
		return nil, &DiagnosticError{Diagnostics: diags}
	}
	if vDiags := validator.Validate(program); len(vDiags) > 0 {
		return nil, &DiagnosticError{Diagnostics: vDiags}
	}
	return program, nil
}

func (rt *Runtime) exec(program *ast.Program, env *evaluator.Env) (*Result, error) {
	res := &Result{}
	opts := rt.buildOptions(func(e *evaluator.Error) {
		res.Errors = append(res.Errors, e)
		if rt.report != nil {
			rt.report(e)
		}
	})
	res.Value = evaluator.EvalProgram(program, env, opts)
	if len(res.Errors) > 0 {
		return res, &RuntimeError{Errors: res.Errors}
	}
	return res, nil
}

// buildOptions constructs evaluator options from the runtime's configuration.
func (rt *Runtime) buildOptions(report func(*evaluator.Error)) evaluator.Options {
	return evaluator.Options{
		Builtins:   rt.stdlib.All(),
		Properties: rt.stdlib.Properties(),
		Report:     report,
		Logger:     rt.logger,
		MaxDepth:   rt.maxDepth,
	}
}

// DiagnosticError wraps lex, parse or validation diagnostics as an error.
type DiagnosticError struct {
	Diagnostics []diagnostics.Diagnostic
}

func (e *DiagnosticError) Error() string {
	msgs := make([]string, len(e.Diagnostics))
	for i, d := range e.Diagnostics {
		msgs[i] = fmt.Sprintf("%s: %s", d.Code, d.Message)
	}
	return strings.Join(msgs, "; ")
}

// RuntimeError collects the top-level runtime errors of one execution.
type RuntimeError struct {
	Errors []*evaluator.Error
}

func (e *RuntimeError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		msgs[i] = err.Message
	}
	return strings.Join(msgs, "; ")
}

// Diagnostics converts the collected errors to diagnostics.
func (e *RuntimeError) Diagnostics() []diagnostics.Diagnostic {
	out := make([]diagnostics.Diagnostic, len(e.Errors))
	for i, err := range e.Errors {
		out[i] = err.Diagnostic()
	}
	return out
}

package evaluator

import (
	"context"
	"io"
	"log/slog"

	"github.com/thomasrohde/tammr/pkg/ast"
	"github.com/thomasrohde/tammr/pkg/diagnostics"
)

// PropertyFn computes a string property such as "abc".length.
type PropertyFn func(s string) Object

// Options configures evaluation.
type Options struct {
	// Builtins are consulted when an identifier is not bound in the environment.
	Builtins map[string]*Builtin
	// Properties is the table behind dot access on strings.
	Properties map[string]PropertyFn
	// Report receives errors raised by top-level statements; evaluation then
	// continues with the next statement.
	Report func(err *Error)
	// Logger receives debug events. Nil disables logging.
	Logger *slog.Logger
	// MaxDepth bounds nested user function calls. Zero means DefaultMaxDepth.
	MaxDepth int
}

type evaluator struct {
	opts   Options
	log    *slog.Logger
	budget callBudget
}

func newEvaluator(opts Options) *evaluator {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &evaluator{opts: opts, log: log, budget: newCallBudget(opts.MaxDepth)}
}

// EvalProgram runs the statements of program in env. A top-level return ends
// the program with its value. A top-level error is reported and the next
// statement runs; the error stays the result unless a later statement
// produces a value.
func EvalProgram(program *ast.Program, env *Env, opts Options) Object {
	return newEvaluator(opts).evalProgram(program, env)
}

// Eval evaluates a single node in env.
func Eval(node ast.Node, env *Env, opts Options) Object {
	ev := newEvaluator(opts)
	if prog, ok := node.(*ast.Program); ok {
		return ev.evalProgram(prog, env)
	}
	return ev.eval(node, env)
}

func (ev *evaluator) evalProgram(program *ast.Program, env *Env) Object {
	var result Object = EmptyValue
	for _, stmt := range program.Statements {
		switch obj := ev.eval(stmt, env).(type) {
		case *ReturnValue:
			return obj.Value
		case *Error:
			ev.log.Debug("top-level error", "code", obj.Code, "message", obj.Message)
			if ev.opts.Report != nil {
				ev.opts.Report(obj)
			}
			result = obj
		case *Empty:
		default:
			result = obj
		}
	}
	return result
}

// evalBlock runs statements in order and stops at the first return or error.
func (ev *evaluator) evalBlock(block *ast.Block, env *Env) Object {
	var result Object = EmptyValue
	for _, stmt := range block.Statements {
		obj := ev.eval(stmt, env)
		switch obj.(type) {
		case *ReturnValue, *Error:
			return obj
		case *Empty:
		default:
			result = obj
		}
	}
	return result
}

func (ev *evaluator) eval(node ast.Node, env *Env) Object {
	switch node := node.(type) {
	// Statements
	case *ast.ExprStmt:
		return ev.eval(node.Expr, env)
	case *ast.LetStmt:
		return ev.evalLet(node, env)
	case *ast.AssignStmt:
		return ev.evalAssign(node, env)
	case *ast.ReturnStmt:
		return ev.evalReturn(node, env)
	case *ast.Block:
		return ev.evalBlock(node, env.Child())

	// Literals
	case *ast.IntLiteral:
		return &Integer{Value: node.Value}
	case *ast.BoolLiteral:
		return NativeBool(node.Value)
	case *ast.StrLiteral:
		return &String{Value: node.Value}
	case *ast.NullLiteral:
		return NullValue
	case *ast.ArrayLiteral:
		elems, err := ev.evalExpressions(node.Elements, env)
		if err != nil {
			return err
		}
		return &Array{Elements: elems}
	case *ast.HashLiteral:
		return ev.evalHashLiteral(node, env)
	case *ast.FunctionLiteral:
		return &Function{Params: node.Params, Body: node.Body, Env: env}

	// Expressions
	case *ast.Identifier:
		return ev.evalIdentifier(node, env)
	case *ast.PrefixExpr:
		return ev.evalPrefix(node, env)
	case *ast.InfixExpr:
		return ev.evalInfix(node, env)
	case *ast.IfExpr:
		return ev.evalIf(node, env)
	case *ast.CallExpr:
		return ev.evalCall(node, env)
	case *ast.IndexExpr:
		return ev.evalIndex(node, env)
	case *ast.DotExpr:
		left := ev.eval(node.Left, env)
		if IsError(left) {
			return left
		}
		return ev.evalDot(left, node)
	}
	return spanError(node, diagnostics.EType, "Unsupported node: %s", node.Kind())
}

// spanError builds an Error positioned at node.
func spanError(node ast.Node, code, format string, args ...any) *Error {
	e := NewError(code, format, args...)
	span := node.NodeSpan()
	e.Span = &span
	return e
}

// withSpan positions err at node unless it already has a position.
func withSpan(err *Error, node ast.Node) *Error {
	if err.Span != nil {
		return err
	}
	span := node.NodeSpan()
	return &Error{Code: err.Code, Message: err.Message, Span: &span}
}

// --- Statements ---

func (ev *evaluator) evalLet(node *ast.LetStmt, env *Env) Object {
	val := ev.eval(node.Value, env)
	if IsError(val) {
		return val
	}
	if fn, ok := val.(*Function); ok && fn.Name == "" {
		fn.Name = node.Name.Value
	}
	env.Set(node.Name.Value, val)
	return EmptyValue
}

func (ev *evaluator) evalAssign(node *ast.AssignStmt, env *Env) Object {
	val := ev.eval(node.Value, env)
	if IsError(val) {
		return val
	}
	if _, ok := env.Assign(node.Name.Value, val); !ok {
		return spanError(node, diagnostics.EUnbound, "Cannot assign to undeclared identifier: %s", node.Name.Value)
	}
	return EmptyValue
}

func (ev *evaluator) evalReturn(node *ast.ReturnStmt, env *Env) Object {
	if node.Value == nil {
		return &ReturnValue{Value: NullValue}
	}
	val := ev.eval(node.Value, env)
	if IsError(val) {
		return val
	}
	return &ReturnValue{Value: val}
}

// --- Expressions ---

// evalExpressions evaluates exprs left to right, stopping at the first error.
func (ev *evaluator) evalExpressions(exprs []ast.Expr, env *Env) ([]Object, *Error) {
	out := make([]Object, 0, len(exprs))
	for _, e := range exprs {
		val := ev.eval(e, env)
		if err, ok := val.(*Error); ok {
			return nil, err
		}
		out = append(out, val)
	}
	return out, nil
}

func (ev *evaluator) evalHashLiteral(node *ast.HashLiteral, env *Env) Object {
	pairs := make([]HashPair, 0, len(node.Pairs))
	for _, p := range node.Pairs {
		key := ev.eval(p.Key, env)
		if IsError(key) {
			return key
		}
		s, ok := key.(*String)
		if !ok {
			return spanError(p.Key, diagnostics.EType, "Hash keys must be strings, got %s", key.Type())
		}
		val := ev.eval(p.Value, env)
		if IsError(val) {
			return val
		}
		pairs = append(pairs, HashPair{Key: s.Value, Value: val})
	}
	return NewHash(pairs)
}

func (ev *evaluator) evalIdentifier(node *ast.Identifier, env *Env) Object {
	if val, ok := env.Get(node.Value); ok {
		return val
	}
	if b, ok := ev.opts.Builtins[node.Value]; ok {
		return b
	}
	return spanError(node, diagnostics.EUnbound, "Identifier not found: %s", node.Value)
}

func (ev *evaluator) evalPrefix(node *ast.PrefixExpr, env *Env) Object {
	right := ev.eval(node.Right, env)
	if IsError(right) {
		return right
	}
	switch node.Operator {
	case "!":
		if b, ok := right.(*Boolean); ok {
			return NativeBool(!b.Value)
		}
	case "-":
		if i, ok := right.(*Integer); ok {
			return &Integer{Value: -i.Value}
		}
	}
	return spanError(node, diagnostics.EType, "Invalid operator: %s%s", node.Operator, right.Type())
}

func (ev *evaluator) evalInfix(node *ast.InfixExpr, env *Env) Object {
	left := ev.eval(node.Left, env)
	if IsError(left) {
		return left
	}
	right := ev.eval(node.Right, env)
	if IsError(right) {
		return right
	}

	switch l := left.(type) {
	case *Integer:
		if r, ok := right.(*Integer); ok {
			return evalIntegerInfix(node, l.Value, r.Value)
		}
	case *Boolean:
		if r, ok := right.(*Boolean); ok {
			switch node.Operator {
			case "==":
				return NativeBool(l.Value == r.Value)
			case "!=":
				return NativeBool(l.Value != r.Value)
			}
		}
	case *String:
		if r, ok := right.(*String); ok {
			switch node.Operator {
			case "+":
				return &String{Value: l.Value + r.Value}
			case "==":
				return NativeBool(l.Value == r.Value)
			case "!=":
				return NativeBool(l.Value != r.Value)
			}
		}
	}
	return spanError(node, diagnostics.EType, "Invalid operator: %s %s %s", left.Type(), node.Operator, right.Type())
}

// evalIntegerInfix uses two's complement wrap-around and truncating division.
func evalIntegerInfix(node *ast.InfixExpr, l, r int64) Object {
	switch node.Operator {
	case "+":
		return &Integer{Value: l + r}
	case "-":
		return &Integer{Value: l - r}
	case "*":
		return &Integer{Value: l * r}
	case "/":
		if r == 0 {
			return spanError(node, diagnostics.EDivZero, "Division by zero")
		}
		return &Integer{Value: l / r}
	case "<":
		return NativeBool(l < r)
	case ">":
		return NativeBool(l > r)
	case "==":
		return NativeBool(l == r)
	case "!=":
		return NativeBool(l != r)
	}
	return spanError(node, diagnostics.EType, "Invalid operator: Integer %s Integer", node.Operator)
}

func (ev *evaluator) evalIf(node *ast.IfExpr, env *Env) Object {
	cond := ev.eval(node.Condition, env)
	if IsError(cond) {
		return cond
	}
	b, ok := cond.(*Boolean)
	if !ok {
		return spanError(node.Condition, diagnostics.EType, "If condition must be a Boolean, got %s", cond.Type())
	}
	if b.Value {
		return ev.evalBlock(node.Consequence, env.Child())
	}
	if node.Alternative != nil {
		return ev.evalBlock(node.Alternative, env.Child())
	}
	return NullValue
}

func (ev *evaluator) evalCall(node *ast.CallExpr, env *Env) Object {
	var callee Object
	if dot, ok := node.Callee.(*ast.DotExpr); ok {
		left := ev.eval(dot.Left, env)
		if IsError(left) {
			return left
		}
		if _, isStr := left.(*String); isStr {
			return spanError(node, diagnostics.EProperty, "Method calls are not supported: %s", dotKey(dot.Right))
		}
		callee = ev.evalDot(left, dot)
	} else {
		callee = ev.eval(node.Callee, env)
	}
	if IsError(callee) {
		return callee
	}

	args, err := ev.evalExpressions(node.Args, env)
	if err != nil {
		return err
	}
	return ev.apply(node, callee, args)
}

func (ev *evaluator) apply(node *ast.CallExpr, callee Object, args []Object) Object {
	switch fn := callee.(type) {
	case *Function:
		if len(args) != len(fn.Params) {
			return spanError(node, diagnostics.EArity,
				"Wrong number of arguments. Expected %d, got %d", len(fn.Params), len(args))
		}
		if err := ev.budget.enter(); err != nil {
			return withSpan(err, node)
		}
		defer ev.budget.leave()

		callEnv := NewEnclosedEnv(fn.Env)
		for i, p := range fn.Params {
			callEnv.Set(p.Value, args[i])
		}
		if ev.log.Enabled(context.Background(), slog.LevelDebug) {
			ev.log.Debug("call", "fn", fn.Name, "args", len(args),
				"depth", ev.budget.depth, "env_depth", callEnv.Depth())
		}

		result := ev.evalBlock(fn.Body, callEnv)
		switch r := result.(type) {
		case *ReturnValue:
			return r.Value
		case *Empty:
			return NullValue
		}
		return result

	case *Builtin:
		result := fn.Fn(args...)
		if err, ok := result.(*Error); ok {
			return withSpan(err, node)
		}
		return result
	}
	return spanError(node, diagnostics.ENotCallable, "Not a function: %s", callee.Type())
}

func (ev *evaluator) evalIndex(node *ast.IndexExpr, env *Env) Object {
	left := ev.eval(node.Left, env)
	if IsError(left) {
		return left
	}
	index := ev.eval(node.Index, env)
	if IsError(index) {
		return index
	}

	switch l := left.(type) {
	case *Array:
		if i, ok := index.(*Integer); ok {
			pos, ok := normalizeIndex(i.Value, len(l.Elements))
			if !ok {
				return NullValue
			}
			return l.Elements[pos]
		}
	case *String:
		if i, ok := index.(*Integer); ok {
			runes := []rune(l.Value)
			pos, ok := normalizeIndex(i.Value, len(runes))
			if !ok {
				return NullValue
			}
			return &String{Value: string(runes[pos])}
		}
	case *Hash:
		if k, ok := index.(*String); ok {
			if val, found := l.Get(k.Value); found {
				return val
			}
			return NullValue
		}
	}
	return spanError(node, diagnostics.EIndex, "Index operator not supported: %s[%s]", left.Type(), index.Type())
}

// normalizeIndex maps negative indices from the end and reports whether the
// result is within [0, n).
func normalizeIndex(i int64, n int) (int, bool) {
	if i < 0 {
		i += int64(n)
	}
	if i < 0 || i >= int64(n) {
		return 0, false
	}
	return int(i), true
}

// evalDot resolves left.right once left has been evaluated. The right side is
// never evaluated: it names a hash key or a string property.
func (ev *evaluator) evalDot(left Object, node *ast.DotExpr) Object {
	switch l := left.(type) {
	case *Hash:
		if val, ok := l.Get(dotKey(node.Right)); ok {
			return val
		}
		return NullValue
	case *String:
		name := dotKey(node.Right)
		if _, isIdent := node.Right.(*ast.Identifier); isIdent {
			if prop, ok := ev.opts.Properties[name]; ok {
				return prop(l.Value)
			}
		}
		return spanError(node.Right, diagnostics.EProperty, "No property named %s", name)
	}
	return spanError(node, diagnostics.EType, "Dot operator not supported: %s", left.Type())
}

func dotKey(right ast.Expr) string {
	switch r := right.(type) {
	case *ast.Identifier:
		return r.Value
	case *ast.StrLiteral:
		return r.Value
	}
	return right.String()
}

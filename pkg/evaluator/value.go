// Package evaluator implements the tammr runtime object model and tree-walking evaluator.
package evaluator

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/thomasrohde/tammr/pkg/ast"
	"github.com/thomasrohde/tammr/pkg/diagnostics"
)

// ObjectType names the runtime type of an Object.
type ObjectType string

const (
	IntegerObj  ObjectType = "Integer"
	BooleanObj  ObjectType = "Boolean"
	StringObj   ObjectType = "String"
	ArrayObj    ObjectType = "Array"
	HashObj     ObjectType = "Hash"
	FunctionObj ObjectType = "Function"
	BuiltinObj  ObjectType = "Builtin"
	ReturnObj   ObjectType = "Return"
	ErrorObj    ObjectType = "Error"
	NullObj     ObjectType = "Null"
	EmptyObj    ObjectType = "Empty"
)

// Object is the interface for all runtime values.
type Object interface {
	Type() ObjectType
	Inspect() string
}

// Integer is a 64-bit signed integer.
type Integer struct {
	Value int64
}

func (i *Integer) Type() ObjectType { return IntegerObj }
func (i *Integer) Inspect() string  { return strconv.FormatInt(i.Value, 10) }

// Boolean is true or false. Use True and False rather than allocating.
type Boolean struct {
	Value bool
}

func (b *Boolean) Type() ObjectType { return BooleanObj }
func (b *Boolean) Inspect() string  { return strconv.FormatBool(b.Value) }

// String is an immutable UTF-8 string.
type String struct {
	Value string
}

func (s *String) Type() ObjectType { return StringObj }
func (s *String) Inspect() string  { return s.Value }

// Array is an ordered list. Arrays are never mutated after construction.
type Array struct {
	Elements []Object
}

func (a *Array) Type() ObjectType { return ArrayObj }
func (a *Array) Inspect() string {
	parts := make([]string, len(a.Elements))
	for i, e := range a.Elements {
		parts[i] = inspectNested(e)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// HashPair is a single entry of a Hash.
type HashPair struct {
	Key   string
	Value Object
}

// Hash is a string-keyed map that keeps insertion order.
type Hash struct {
	Pairs []HashPair
}

func (h *Hash) Type() ObjectType { return HashObj }
func (h *Hash) Inspect() string {
	parts := make([]string, len(h.Pairs))
	for i, p := range h.Pairs {
		parts[i] = ast.Quote(p.Key) + ": " + inspectNested(p.Value)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Get returns the value of the first pair with the given key.
func (h *Hash) Get(key string) (Object, bool) {
	for _, p := range h.Pairs {
		if p.Key == key {
			return p.Value, true
		}
	}
	return nil, false
}

// NewHash builds a Hash from pairs in order. A repeated key overwrites the
// earlier value and keeps the earlier position.
func NewHash(pairs []HashPair) *Hash {
	h := &Hash{Pairs: make([]HashPair, 0, len(pairs))}
	for _, p := range pairs {
		replaced := false
		for i := range h.Pairs {
			if h.Pairs[i].Key == p.Key {
				h.Pairs[i].Value = p.Value
				replaced = true
				break
			}
		}
		if !replaced {
			h.Pairs = append(h.Pairs, p)
		}
	}
	return h
}

// Function is a closure: parameters, body and the environment it was defined in.
type Function struct {
	Name   string // first name the function was bound to, for logs
	Params []*ast.Identifier
	Body   *ast.Block
	Env    *Env
}

func (f *Function) Type() ObjectType { return FunctionObj }
func (f *Function) Inspect() string {
	names := make([]string, len(f.Params))
	for i, p := range f.Params {
		names[i] = p.Value
	}
	return "fn(" + strings.Join(names, ", ") + ") " + f.Body.String()
}

// BuiltinFunction is the signature of native functions. Implementations
// never panic; misuse is reported by returning an *Error.
type BuiltinFunction func(args ...Object) Object

// Builtin wraps a native function.
type Builtin struct {
	Name string
	Fn   BuiltinFunction
}

func (b *Builtin) Type() ObjectType { return BuiltinObj }
func (b *Builtin) Inspect() string  { return "builtin function" }

// ReturnValue carries a returned value up to the enclosing call.
type ReturnValue struct {
	Value Object
}

func (r *ReturnValue) Type() ObjectType { return ReturnObj }
func (r *ReturnValue) Inspect() string  { return r.Value.Inspect() }

// Error is a runtime error value. It also satisfies the error interface.
type Error struct {
	Code    string
	Message string
	Span    *ast.Span
}

func (e *Error) Type() ObjectType { return ErrorObj }
func (e *Error) Inspect() string  { return "Error: " + e.Message }
func (e *Error) Error() string    { return e.Message }

// Diagnostic converts the error to a diagnostic.
func (e *Error) Diagnostic() diagnostics.Diagnostic {
	return diagnostics.MakeDiag(e.Code, e.Message, e.Span, "")
}

// NewError creates an Error with a formatted message.
func NewError(code string, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Null is the absent value.
type Null struct{}

func (n *Null) Type() ObjectType { return NullObj }
func (n *Null) Inspect() string  { return "null" }

// Empty is produced by statements that have no value, such as let.
type Empty struct{}

func (e *Empty) Type() ObjectType { return EmptyObj }
func (e *Empty) Inspect() string  { return "" }

var (
	True       = &Boolean{Value: true}
	False      = &Boolean{Value: false}
	NullValue  = &Null{}
	EmptyValue = &Empty{}
)

// NativeBool returns the shared Boolean for b.
func NativeBool(b bool) *Boolean {
	if b {
		return True
	}
	return False
}

// IsError reports whether obj is an *Error.
func IsError(obj Object) bool {
	_, ok := obj.(*Error)
	return ok
}

// Equal reports structural equality. Functions and builtins compare by identity.
func Equal(a, b Object) bool {
	switch a := a.(type) {
	case *Integer:
		b, ok := b.(*Integer)
		return ok && a.Value == b.Value
	case *Boolean:
		b, ok := b.(*Boolean)
		return ok && a.Value == b.Value
	case *String:
		b, ok := b.(*String)
		return ok && a.Value == b.Value
	case *Null:
		_, ok := b.(*Null)
		return ok
	case *Empty:
		_, ok := b.(*Empty)
		return ok
	case *Array:
		b, ok := b.(*Array)
		if !ok || len(a.Elements) != len(b.Elements) {
			return false
		}
		for i := range a.Elements {
			if !Equal(a.Elements[i], b.Elements[i]) {
				return false
			}
		}
		return true
	case *Hash:
		b, ok := b.(*Hash)
		if !ok || len(a.Pairs) != len(b.Pairs) {
			return false
		}
		for i := range a.Pairs {
			if a.Pairs[i].Key != b.Pairs[i].Key || !Equal(a.Pairs[i].Value, b.Pairs[i].Value) {
				return false
			}
		}
		return true
	case *Error:
		b, ok := b.(*Error)
		return ok && a.Code == b.Code && a.Message == b.Message
	default:
		return a == b
	}
}

// inspectNested renders values inside containers; strings are quoted there.
func inspectNested(o Object) string {
	if s, ok := o.(*String); ok {
		return ast.Quote(s.Value)
	}
	return o.Inspect()
}

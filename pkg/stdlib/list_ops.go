package stdlib

import (
	"unicode/utf8"

	"github.com/thomasrohde/tammr/pkg/evaluator"
)

// len(String | Array) → Integer
// Strings report their length in bytes.
func builtinLen(args ...evaluator.Object) evaluator.Object {
	if len(args) != 1 {
		return arityError(len(args), 1)
	}
	switch arg := args[0].(type) {
	case *evaluator.String:
		return &evaluator.Integer{Value: int64(len(arg.Value))}
	case *evaluator.Array:
		return &evaluator.Integer{Value: int64(len(arg.Elements))}
	}
	return typeError("Argument to `len` not supported, got %s", args[0].Type())
}

// first(Array | String) → element, single-char String, or Null when empty
func builtinFirst(args ...evaluator.Object) evaluator.Object {
	if len(args) != 1 {
		return arityError(len(args), 1)
	}
	switch arg := args[0].(type) {
	case *evaluator.Array:
		if len(arg.Elements) == 0 {
			return evaluator.NullValue
		}
		return arg.Elements[0]
	case *evaluator.String:
		if arg.Value == "" {
			return evaluator.NullValue
		}
		r, _ := utf8.DecodeRuneInString(arg.Value)
		return &evaluator.String{Value: string(r)}
	}
	return typeError("Argument to `first` must be ARRAY, got %s", args[0].Type())
}

// push(Array, value) → new Array with value appended
func builtinPush(args ...evaluator.Object) evaluator.Object {
	if len(args) != 2 {
		return arityError(len(args), 2)
	}
	arr, ok := args[0].(*evaluator.Array)
	if !ok {
		return typeError("Argument to `push` must be ARRAY, got %s", args[0].Type())
	}
	elems := make([]evaluator.Object, len(arr.Elements), len(arr.Elements)+1)
	copy(elems, arr.Elements)
	return &evaluator.Array{Elements: append(elems, args[1])}
}

// pop(Array) → new Array without the last element
func builtinPop(args ...evaluator.Object) evaluator.Object {
	if len(args) != 1 {
		return arityError(len(args), 1)
	}
	arr, ok := args[0].(*evaluator.Array)
	if !ok {
		return typeError("Argument to `pop` must be ARRAY, got %s", args[0].Type())
	}
	if len(arr.Elements) == 0 {
		return &evaluator.Array{}
	}
	elems := make([]evaluator.Object, len(arr.Elements)-1)
	copy(elems, arr.Elements)
	return &evaluator.Array{Elements: elems}
}

package stdlib

import (
	"fmt"
	"io"
	"strings"

	"github.com/thomasrohde/tammr/pkg/diagnostics"
	"github.com/thomasrohde/tammr/pkg/evaluator"
)

// RegisterDefaults adds all builtins and string properties. Output builtins
// write to out.
func RegisterDefaults(r *Registry, out io.Writer) {
	// Collections
	r.Register("len", builtinLen)
	r.Register("first", builtinFirst)
	r.Register("push", builtinPush)
	r.Register("pop", builtinPop)

	// Output
	r.Register("print", printer(out, false))
	r.Register("println", printer(out, true))
	r.Register("fprintln", fprintln(out))

	// String properties
	r.RegisterProperty("length", propLength)
	r.RegisterProperty("chars", propChars)
	r.RegisterProperty("bytes", propBytes)
	r.RegisterProperty("is_empty", propIsEmpty)
	r.RegisterProperty("is_numeric", propIsNumeric)
	r.RegisterProperty("is_alpha", propIsAlpha)
	r.RegisterProperty("is_alphanumeric", propIsAlphanumeric)
	r.RegisterProperty("is_ascii", propIsASCII)
	r.RegisterProperty("is_capitalized", propIsCapitalized)
	r.RegisterProperty("is_lowercase", propIsLowercase)
	r.RegisterProperty("is_uppercase", propIsUppercase)
	r.RegisterProperty("is_titlecase", propIsTitlecase)
	r.RegisterProperty("is_whitespace", propIsWhitespace)
	r.RegisterProperty("is_punctuation", propIsPunctuation)
}

func arityError(got, want int) *evaluator.Error {
	return evaluator.NewError(diagnostics.EArity, "Wrong number of arguments. Got %d, expected %d", got, want)
}

func typeError(format string, args ...any) *evaluator.Error {
	return evaluator.NewError(diagnostics.EBuiltin, format, args...)
}

// print(args...) / println(args...) → Empty
func printer(out io.Writer, newline bool) evaluator.BuiltinFunction {
	return func(args ...evaluator.Object) evaluator.Object {
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = a.Inspect()
		}
		line := strings.Join(parts, " ")
		if newline {
			line += "\n"
		}
		if _, err := io.WriteString(out, line); err != nil {
			return evaluator.NewError(diagnostics.EIO, "write failed: %s", err)
		}
		return evaluator.EmptyValue
	}
}

// fprintln(format, args...) → Empty
// Each {} in format takes the next argument; }} writes a literal }.
func fprintln(out io.Writer) evaluator.BuiltinFunction {
	return func(args ...evaluator.Object) evaluator.Object {
		if len(args) == 0 {
			return typeError("fprintln requires at least one argument (format string)")
		}
		format, ok := args[0].(*evaluator.String)
		if !ok {
			return typeError("First argument to fprintln must be a String, got %s", args[0].Type())
		}
		line, err := formatArgs(format.Value, args[1:])
		if err != nil {
			return err
		}
		if _, werr := fmt.Fprintln(out, line); werr != nil {
			return evaluator.NewError(diagnostics.EIO, "write failed: %s", werr)
		}
		return evaluator.EmptyValue
	}
}

func formatArgs(format string, args []evaluator.Object) (string, *evaluator.Error) {
	var b strings.Builder
	next := 0
	runes := []rune(format)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]
		switch {
		case ch == '{' && i+1 < len(runes) && runes[i+1] == '}':
			if next >= len(args) {
				return "", typeError("Not enough arguments provided for format string")
			}
			b.WriteString(args[next].Inspect())
			next++
			i++
		case ch == '}':
			if i+1 < len(runes) && runes[i+1] == '}' {
				b.WriteByte('}')
				i++
				continue
			}
			return "", typeError("Invalid format string: unmatched '}'")
		default:
			b.WriteRune(ch)
		}
	}
	if next < len(args) {
		return "", typeError("Too many arguments provided for format string")
	}
	return b.String(), nil
}

package stdlib

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/thomasrohde/tammr/pkg/evaluator"
)

// s.length → Integer (bytes of the UTF-8 encoding, same as len)
func propLength(s string) evaluator.Object {
	return &evaluator.Integer{Value: int64(len(s))}
}

// s.chars → Array of one-character Strings
func propChars(s string) evaluator.Object {
	elems := make([]evaluator.Object, 0, len(s))
	for _, r := range s {
		elems = append(elems, &evaluator.String{Value: string(r)})
	}
	return &evaluator.Array{Elements: elems}
}

// s.bytes → Array of Integers holding the UTF-8 encoding
func propBytes(s string) evaluator.Object {
	elems := make([]evaluator.Object, len(s))
	for i := 0; i < len(s); i++ {
		elems[i] = &evaluator.Integer{Value: int64(s[i])}
	}
	return &evaluator.Array{Elements: elems}
}

func propIsEmpty(s string) evaluator.Object {
	return evaluator.NativeBool(s == "")
}

func propIsNumeric(s string) evaluator.Object {
	return evaluator.NativeBool(allRunes(s, func(r rune) bool {
		return unicode.IsNumber(r) || unicode.IsSpace(r)
	}))
}

func propIsAlpha(s string) evaluator.Object {
	return evaluator.NativeBool(allRunes(s, func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsSpace(r)
	}))
}

func propIsAlphanumeric(s string) evaluator.Object {
	return evaluator.NativeBool(allRunes(s, func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsSpace(r)
	}))
}

func propIsASCII(s string) evaluator.Object {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return evaluator.False
		}
	}
	return evaluator.True
}

func propIsCapitalized(s string) evaluator.Object {
	r, size := utf8.DecodeRuneInString(s)
	return evaluator.NativeBool(size > 0 && unicode.IsUpper(r))
}

func propIsLowercase(s string) evaluator.Object {
	return evaluator.NativeBool(allRunes(s, func(r rune) bool {
		return unicode.IsLower(r) || unicode.IsSpace(r)
	}))
}

func propIsUppercase(s string) evaluator.Object {
	return evaluator.NativeBool(allRunes(s, func(r rune) bool {
		return unicode.IsUpper(r) || unicode.IsSpace(r)
	}))
}

// s.is_titlecase → every whitespace-separated word starts with an uppercase
// letter and has no uppercase letters after it
func propIsTitlecase(s string) evaluator.Object {
	words := strings.Fields(s)
	if len(words) == 0 {
		return evaluator.False
	}
	for _, w := range words {
		first, size := utf8.DecodeRuneInString(w)
		if !unicode.IsUpper(first) {
			return evaluator.False
		}
		if strings.IndexFunc(w[size:], unicode.IsUpper) >= 0 {
			return evaluator.False
		}
	}
	return evaluator.True
}

func propIsWhitespace(s string) evaluator.Object {
	return evaluator.NativeBool(allRunes(s, unicode.IsSpace))
}

func propIsPunctuation(s string) evaluator.Object {
	return evaluator.NativeBool(allRunes(s, func(r rune) bool {
		return isASCIIPunct(r) || unicode.IsSpace(r)
	}))
}

// allRunes reports whether every rune of s satisfies pred. It holds for "".
func allRunes(s string, pred func(rune) bool) bool {
	for _, r := range s {
		if !pred(r) {
			return false
		}
	}
	return true
}

func isASCIIPunct(r rune) bool {
	return r < utf8.RuneSelf && unicode.IsPunct(r) || strings.ContainsRune("$+<=>^`|~", r)
}

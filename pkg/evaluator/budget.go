package evaluator

import "github.com/thomasrohde/tammr/pkg/diagnostics"

// DefaultMaxDepth bounds nested user function calls when Options.MaxDepth is unset.
const DefaultMaxDepth = 10000

// callBudget tracks nested user function calls.
type callBudget struct {
	max   int
	depth int
}

func newCallBudget(max int) callBudget {
	if max <= 0 {
		max = DefaultMaxDepth
	}
	return callBudget{max: max}
}

// enter records a call, returning an error when the limit is reached.
func (b *callBudget) enter() *Error {
	if b.depth >= b.max {
		return NewError(diagnostics.EDepth, "Maximum call depth exceeded (%d)", b.max)
	}
	b.depth++
	return nil
}

func (b *callBudget) leave() {
	b.depth--
}

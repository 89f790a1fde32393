package runtime

import (
	"github.com/thomasrohde/tammr/pkg/evaluator"
)

// Session evaluates successive inputs against one persistent environment,
// so bindings made by one input are visible to the next.
type Session struct {
	rt  *Runtime
	env *evaluator.Env
}

// NewSession starts a session with an empty environment.
func (rt *Runtime) NewSession() *Session {
	return &Session{rt: rt, env: evaluator.NewEnv()}
}

// Eval runs one input. Errors are reported the same way as Run: a
// *DiagnosticError leaves the environment untouched, a *RuntimeError keeps
// the bindings made before and after the failing statements.
func (s *Session) Eval(source, filename string) (evaluator.Object, error) {
	program, err := s.rt.compile(source, filename)
	if err != nil {
		return nil, err
	}
	res, err := s.rt.exec(program, s.env)
	return res.Value, err
}

// Lookup returns the value bound to name in the session.
func (s *Session) Lookup(name string) (evaluator.Object, bool) {
	return s.env.Get(name)
}

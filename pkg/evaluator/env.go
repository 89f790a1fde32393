package evaluator

// Env is a scoped environment for variable bindings.
// It supports parent-chained lookup for lexical scoping. Closures hold a
// pointer to the Env they were defined in; an Env never points back at them.
type Env struct {
	bindings map[string]Object
	parent   *Env
}

// NewEnv creates a root environment.
func NewEnv() *Env {
	return &Env{bindings: make(map[string]Object)}
}

// NewEnclosedEnv creates a new scope whose parent is outer.
func NewEnclosedEnv(outer *Env) *Env {
	return &Env{bindings: make(map[string]Object), parent: outer}
}

// Child creates a new child scope whose parent is this environment.
func (e *Env) Child() *Env {
	return NewEnclosedEnv(e)
}

// Get looks up a variable by name, traversing parent scopes.
func (e *Env) Get(name string) (Object, bool) {
	for env := e; env != nil; env = env.parent {
		if val, ok := env.bindings[name]; ok {
			return val, true
		}
	}
	return nil, false
}

// Set binds a variable in this scope, shadowing any outer binding.
func (e *Env) Set(name string, val Object) Object {
	e.bindings[name] = val
	return val
}

// Assign rebinds name in the nearest scope that already defines it.
// It returns false when no scope in the chain has the name.
func (e *Env) Assign(name string, val Object) (Object, bool) {
	for env := e; env != nil; env = env.parent {
		if _, ok := env.bindings[name]; ok {
			env.bindings[name] = val
			return val, true
		}
	}
	return nil, false
}

// Has checks whether a variable is defined in this scope or any parent.
func (e *Env) Has(name string) bool {
	_, ok := e.Get(name)
	return ok
}

// Depth returns the number of scopes between e and the root (root is 0).
func (e *Env) Depth() int {
	d := 0
	for env := e.parent; env != nil; env = env.parent {
		d++
	}
	return d
}

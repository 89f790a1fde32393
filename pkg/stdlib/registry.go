// Package stdlib provides the tammr builtin function and string property tables.
package stdlib

import (
	"io"
	"os"
	"sort"
	"sync"

	"github.com/thomasrohde/tammr/pkg/evaluator"
)

// Registry holds registered builtins and string properties.
// A registry handed to the evaluator must not be modified afterwards.
type Registry struct {
	fns   map[string]*evaluator.Builtin
	props map[string]evaluator.PropertyFn
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		fns:   make(map[string]*evaluator.Builtin),
		props: make(map[string]evaluator.PropertyFn),
	}
}

// New creates a registry with all defaults, writing output to out.
func New(out io.Writer) *Registry {
	r := NewRegistry()
	RegisterDefaults(r, out)
	return r
}

var (
	defaultOnce sync.Once
	defaultReg  *Registry
)

// Default returns the process-wide registry writing to standard output.
// It is built on first use and shared afterwards.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultReg = New(os.Stdout)
	})
	return defaultReg
}

// Register adds a builtin function to the registry.
func (r *Registry) Register(name string, fn evaluator.BuiltinFunction) {
	r.fns[name] = &evaluator.Builtin{Name: name, Fn: fn}
}

// RegisterProperty adds a string property to the registry.
func (r *Registry) RegisterProperty(name string, fn evaluator.PropertyFn) {
	r.props[name] = fn
}

// Get retrieves a builtin by name.
func (r *Registry) Get(name string) *evaluator.Builtin {
	return r.fns[name]
}

// All returns all registered builtins.
func (r *Registry) All() map[string]*evaluator.Builtin {
	return r.fns
}

// Properties returns all registered string properties.
func (r *Registry) Properties() map[string]evaluator.PropertyFn {
	return r.props
}

// Names returns the builtin names in sorted order.
func (r *Registry) Names() []string {
	return sortedKeys(r.fns)
}

// PropertyNames returns the string property names in sorted order.
func (r *Registry) PropertyNames() []string {
	return sortedKeys(r.props)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

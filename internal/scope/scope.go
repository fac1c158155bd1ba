/*
Package scope implements the GLSLT scope tracker (spec.md §4.2): a
stack of symbol tables pushed on function entry, compound statement
entry, and for-init, used by the resolver for capture analysis and name
resolution.
*/
package scope

import "github.com/glslt-dev/glslt/ast"

// Kind distinguishes what an identifier resolves to.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindLocalVar
	KindParam
	KindFunction
	KindGlobal
)

// Symbol is one entry in a Scope's table.
type Symbol struct {
	Name   string
	Kind   Kind
	Type   ast.Type
	Origin ast.Node
}

// Scope is a single lexical scope: function body, compound statement,
// or for-init clause.
type Scope struct {
	symbols map[string]Symbol
}

func newScope() *Scope {
	return &Scope{symbols: map[string]Symbol{}}
}

// Declare adds sym to the scope, shadowing any outer declaration of the
// same name. It returns false without modifying the scope if sym.Name
// is already declared in this exact scope (a redeclaration within the
// same block), which the caller may choose to reject.
func (s *Scope) Declare(sym Symbol) bool {
	if _, exists := s.symbols[sym.Name]; exists {
		return false
	}
	s.symbols[sym.Name] = sym
	return true
}

func (s *Scope) lookup(name string) (Symbol, bool) {
	sym, ok := s.symbols[name]
	return sym, ok
}

// Tracker is a stack of Scopes, pushed and popped as the resolver walks
// a function body.
type Tracker struct {
	stack []*Scope
}

// New returns a Tracker with no scopes pushed.
func New() *Tracker { return &Tracker{} }

// Push opens a new innermost scope.
func (t *Tracker) Push() {
	t.stack = append(t.stack, newScope())
}

// Pop closes the innermost scope.
func (t *Tracker) Pop() {
	t.stack = t.stack[:len(t.stack)-1]
}

// Declare adds sym to the innermost open scope. Panics if no scope is
// open — callers always Push before entering a function, block or
// for-init.
func (t *Tracker) Declare(sym Symbol) bool {
	if len(t.stack) == 0 {
		panic("scope.Tracker: Declare with no scope pushed")
	}
	return t.stack[len(t.stack)-1].Declare(sym)
}

// Resolve looks up name starting from the innermost scope outward,
// returning the first match and true, or the zero Symbol and false if
// name is not declared in any open scope.
func (t *Tracker) Resolve(name string) (Symbol, bool) {
	for i := len(t.stack) - 1; i >= 0; i-- {
		if sym, ok := t.stack[i].lookup(name); ok {
			return sym, true
		}
	}
	return Symbol{}, false
}

// Depth returns the number of open scopes.
func (t *Tracker) Depth() int { return len(t.stack) }

// IsLocal reports whether name resolves to a local variable or a
// formal parameter somewhere in the open scope stack — i.e. whether a
// reference to it from a nested lambda would be a capture (spec.md
// §4.3).
func (t *Tracker) IsLocal(name string) bool {
	sym, ok := t.Resolve(name)
	return ok && (sym.Kind == KindLocalVar || sym.Kind == KindParam)
}

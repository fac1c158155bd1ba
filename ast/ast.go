/*
Package ast defines the abstract syntax tree handed to the GLSLT core by
an external GLSL parser.

Lexing, parsing and `#include` stitching are explicitly out of scope for
this module (see spec.md §1): some other library is assumed to have
already turned GLSL source text into the tree described here, and some
other library is assumed to turn the tree the core emits back into GLSL
text. This package therefore only needs to carry the subset of GLSL
structure the instantiation engine actually inspects — declarations,
function signatures, and the handful of expression/statement shapes
that matter for template-call detection, placeholder substitution and
capture analysis. Anything the engine never looks inside (struct bodies,
literals, most statement forms) is preserved as opaque
token text rather than modeled node-by-node, so that re-serialization
never has to reconstruct formatting the parser already captured.

Node cloning is always explicit: the package never shares mutable state
between a node and its clone. See CloneExpr, CloneStmt and
CloneFuncDecl in clone.go.
*/
package ast

import "strconv"

// Pos identifies a location in the original GLSL source, for diagnostics.
type Pos struct {
	File   string
	Line   int
	Column int
}

func (p Pos) String() string {
	if p.File == "" {
		return "<unknown>"
	}
	return p.File
}

// Qualifier is a GLSL parameter storage qualifier.
type Qualifier uint8

const (
	QualNone Qualifier = iota
	QualIn
	QualOut
	QualInOut
	QualConst
)

func (q Qualifier) String() string {
	switch q {
	case QualIn:
		return "in"
	case QualOut:
		return "out"
	case QualInOut:
		return "inout"
	case QualConst:
		return "const"
	default:
		return ""
	}
}

// Type is a GLSL type reference. Only the name matters to the core: it
// never type-checks GLSL (spec.md §1 Non-goals), it only needs to compare
// type names for signature compatibility and to recognize a
// function-pointer type used as a parameter type.
type Type struct {
	Name string

	// ArrayLen is non-nil for array types ("float[4]"); nil otherwise.
	// The core treats distinct ArrayLen values as distinct types.
	ArrayLen *int
}

// Equal reports whether two types are the same for signature-matching
// purposes, ignoring qualifiers (spec.md §4.3: "same parameter types
// ignoring qualifiers").
func (t Type) Equal(o Type) bool {
	if t.Name != o.Name {
		return false
	}
	if (t.ArrayLen == nil) != (o.ArrayLen == nil) {
		return false
	}
	if t.ArrayLen != nil && *t.ArrayLen != *o.ArrayLen {
		return false
	}
	return true
}

func (t Type) String() string {
	if t.ArrayLen == nil {
		return t.Name
	}
	return t.Name + "[" + strconv.Itoa(*t.ArrayLen) + "]"
}

// Node is implemented by every AST node.
type Node interface {
	Pos() Pos
}

// Param is a single formal parameter of a function prototype or
// definition.
type Param struct {
	NamePos   Pos
	Name      string
	Type      Type
	Qualifier Qualifier
}

func (p *Param) Pos() Pos { return p.NamePos }

// Unit is a fully parsed GLSL translation unit: an ordered sequence of
// top-level declarations, exactly as described in spec.md §3.
type Unit struct {
	Decls []Decl
}

// Pos returns the zero Pos: a unit has no single source location.
func (u *Unit) Pos() Pos { return Pos{} }

// Decl is implemented by every top-level declaration kind: function
// prototypes, function definitions, global variables, type
// declarations and preprocessor pragmas.
type Decl interface {
	Node
	declNode()
}

package ast

// FuncDecl is either a function-pointer prototype (Body == nil) or a
// function definition (Body != nil). Per spec.md §4.1, which of the two
// a given FuncDecl is classified as — function-pointer type, template,
// or ordinary function — is determined by the classifier, not by this
// node itself.
type FuncDecl struct {
	NamePos Pos
	Name    string
	RetType Type
	Params  []*Param
	Body    *Block // nil for a bare prototype
}

func (f *FuncDecl) Pos() Pos { return f.NamePos }
func (*FuncDecl) declNode()  {}

// IsPrototype reports whether f has no body, i.e. is a bare
// `ret name(params);` declaration.
func (f *FuncDecl) IsPrototype() bool { return f.Body == nil }

// ParamTypeNames returns the ordered parameter type names of f, used to
// compare a function's signature against a function-pointer type.
func (f *FuncDecl) ParamTypeNames() []string {
	names := make([]string, len(f.Params))
	for i, p := range f.Params {
		names[i] = p.Type.Name
	}
	return names
}

// GlobalVarDecl is a top-level (non-local) GLSL variable declaration,
// e.g. `uniform vec3 lightPos;`.
type GlobalVarDecl struct {
	NamePos   Pos
	Name      string
	Type      Type
	Qualifier Qualifier
	Init      Expr // nil if uninitialized
}

func (d *GlobalVarDecl) Pos() Pos { return d.NamePos }
func (*GlobalVarDecl) declNode()  {}

// TypeDecl is a struct or interface-block type declaration. The core
// never inspects field lists (it doesn't type-check GLSL), so the body
// is preserved verbatim as opaque token text for pass-through emission.
type TypeDecl struct {
	NamePos Pos
	Name    string
	Raw     string // verbatim source text of the full declaration
}

func (d *TypeDecl) Pos() Pos { return d.NamePos }
func (*TypeDecl) declNode()  {}

// PragmaDecl is a preprocessor directive carried through verbatim:
// `#version`, `#extension`, global precision qualifiers, or any other
// directive the external preprocessor chose to leave in the merged
// unit. Per spec.md §4.6, the #version, #extension and precision forms
// are always preserved at the head of the output when present (see
// IsPreservedPragma); any other directive is an ordinary declaration.
type PragmaDecl struct {
	TokenPos Pos
	Text     string // verbatim directive text, including leading '#'
}

func (d *PragmaDecl) Pos() Pos { return d.TokenPos }
func (*PragmaDecl) declNode()  {}

// IsPreservedPragma reports whether d is one of the pragma forms
// spec.md §4.6 and §4.7 mandate always keeping at the head of the
// output: #version, #extension, or a global precision qualifier.
func (d *PragmaDecl) IsPreservedPragma() bool {
	t := d.Text
	return hasAnyPrefix(t, "#version", "#extension") || isPrecisionPragma(t)
}

func isPrecisionPragma(text string) bool {
	// `precision highp float;` — a global precision statement, not
	// inside any function body, is serialized by the external
	// preprocessor/parser as its own pragma-like opaque declaration.
	return hasAnyPrefix(trimLeadingSpace(text), "precision ")
}

func hasAnyPrefix(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if len(s) >= len(p) && s[:len(p)] == p {
			return true
		}
	}
	return false
}

func trimLeadingSpace(s string) string {
	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	return s[i:]
}

/*
Package resolve implements the GLSLT template argument resolver
(spec.md §4.3): from a call site, it binds each function-pointer-typed
parameter to either a static (identifier) or lambda (expression)
argument, and desugars placeholders and captures into a name-agnostic
form the instantiator can splice without re-parsing.
*/
package resolve

import (
	"strconv"
	"strings"

	"github.com/glslt-dev/glslt/ast"
	"github.com/glslt-dev/glslt/internal/glslterr"
	"github.com/glslt-dev/glslt/internal/scope"
)

// PointerSig is the signature a static or lambda argument is bound
// against: the function-pointer type's own formal parameter list.
type PointerSig struct {
	Name    string // the function-pointer type's identifier
	RetType ast.Type
	Params  []*ast.Param
}

// ArgKind is one of the leaf or composite shapes an ArgTemplate node can
// take.
type ArgKind uint8

const (
	// ArgPlaceholder is a reference (by position `_n`, or by Pi's
	// parameter name, bare or with a leading '_') to the n-th formal
	// parameter of the pointer type being bound.
	ArgPlaceholder ArgKind = iota
	// ArgCapture is a reference to a local variable or enclosing
	// formal parameter of the calling function.
	ArgCapture
	// ArgFree is an identifier that resolves to neither a placeholder,
	// a capture, a global, a builtin, nor a scope-visible declared
	// function — passed through unchanged so an outer lambda can
	// receive it (spec.md §4.3).
	ArgFree
	// ArgLeaf is any other leaf expression (literal, global reference,
	// builtin reference, declared-function reference): cloned
	// verbatim, unexamined.
	ArgLeaf
	// ArgCall, ArgBinary, ArgDot and ArgIndex are composite shapes:
	// their children are themselves ArgTemplates, recursively resolved
	// by the same rules. This generalizes spec.md §4.3's three
	// top-level argument categories to apply inside arithmetic/field
	// sub-expressions too, so a capture or placeholder nested a level
	// deeper (e.g. `sz + 1.0`) still gets bound correctly instead of
	// silently producing a dangling reference at splice time.
	ArgCall
	ArgBinary
	ArgDot
	ArgIndex
)

// ArgTemplate is a resolved template-argument sub-expression: either a
// leaf (placeholder, capture, free identifier, or opaque literal) or a
// composite node whose children are themselves ArgTemplates.
type ArgTemplate struct {
	Kind ArgKind
	Pos  ast.Pos

	PlaceholderIndex int          // ArgPlaceholder: 0-based index into the pointer type's Params
	Capture          scope.Symbol // ArgCapture
	FreeName         string       // ArgFree
	Leaf             ast.Expr     // ArgLeaf: cloned verbatim at splice time

	Callee   ast.Expr       // ArgCall: the call's callee, kept verbatim (always a function name)
	Args     []*ArgTemplate // ArgCall
	Op       string         // ArgBinary
	Left     *ArgTemplate   // ArgBinary
	Right    *ArgTemplate   // ArgBinary
	X        *ArgTemplate   // ArgDot, ArgIndex
	Field    string         // ArgDot
	Index    *ArgTemplate   // ArgIndex
}

// BindingKind distinguishes a static argument from a lambda argument.
type BindingKind uint8

const (
	BindStatic BindingKind = iota
	BindLambda
)

// Binding is a resolved template argument bound to one pointer
// parameter of a template call (spec.md §3's "Template argument").
type Binding struct {
	Kind BindingKind
	Pos  ast.Pos

	// StaticName is the target ordinary function's name (BindStatic).
	StaticName string

	// LambdaCallee and LambdaArgs describe a lambda `f(a1,...,ak)`
	// (BindLambda). LambdaCallee is kept as the original identifier
	// expression: at splice time its name is used directly, and step 6
	// of the instantiator (spec.md §4.5) is what recognizes a template
	// name here and recursively instantiates it — the resolver itself
	// does not special-case a lambda whose callee happens to be a
	// template (see spec.md §9's open question).
	LambdaCallee ast.Expr
	LambdaArgs   []*ArgTemplate
}

// FuncLookup answers scope- and program-level questions the resolver
// needs but doesn't own: whether a name is a declared ordinary
// function (and if so, its declaration, for signature checking), and
// whether a name is a global variable or GLSL builtin.
type FuncLookup struct {
	// OrdinaryFunc returns the declaration of name if it names a
	// declared ordinary (non-template) function.
	OrdinaryFunc func(name string) (*ast.FuncDecl, bool)

	// IsGlobalOrBuiltin reports whether name is a global variable or a
	// GLSL builtin function/keyword — i.e. a name the resolver should
	// never treat as "free" because it is always resolvable on its
	// own.
	IsGlobalOrBuiltin func(name string) bool
}

// Resolver binds template call arguments against pointer-parameter
// signatures, using a scope tracker for capture detection.
type Resolver struct {
	Scope  *scope.Tracker
	Lookup FuncLookup
}

// New returns a Resolver sharing the given scope tracker and lookup
// callbacks.
func New(tracker *scope.Tracker, lookup FuncLookup) *Resolver {
	return &Resolver{Scope: tracker, Lookup: lookup}
}

// ResolveArg binds actual (the call-site expression passed for pointer
// parameter sig) per spec.md §4.3.
func (r *Resolver) ResolveArg(actual ast.Expr, sig *PointerSig) (*Binding, error) {
	switch a := actual.(type) {
	case *ast.Ident:
		return r.resolveStatic(a, sig)
	case *ast.CallExpr:
		return r.resolveLambda(a, sig)
	default:
		return nil, glslterr.New(glslterr.InvalidTemplateArg,
			"argument at %s for pointer parameter %q must be an identifier or a call expression",
			actual.Pos(), sig.Name)
	}
}

func (r *Resolver) resolveStatic(id *ast.Ident, sig *PointerSig) (*Binding, error) {
	fd, ok := r.Lookup.OrdinaryFunc(id.Name)
	if !ok {
		return nil, glslterr.New(glslterr.TemplateArgMismatch,
			"%q at %s does not name a declared ordinary function", id.Name, id.Pos())
	}
	if !signatureMatches(fd, sig) {
		return nil, glslterr.New(glslterr.TemplateArgMismatch,
			"%q at %s has a signature incompatible with pointer type %q", id.Name, id.Pos(), sig.Name)
	}
	return &Binding{Kind: BindStatic, Pos: id.Pos(), StaticName: id.Name}, nil
}

func signatureMatches(fd *ast.FuncDecl, sig *PointerSig) bool {
	if !fd.RetType.Equal(sig.RetType) {
		return false
	}
	if len(fd.Params) != len(sig.Params) {
		return false
	}
	for i, p := range fd.Params {
		if !p.Type.Equal(sig.Params[i].Type) {
			return false
		}
	}
	return true
}

func (r *Resolver) resolveLambda(call *ast.CallExpr, sig *PointerSig) (*Binding, error) {
	calleeIdent, ok := call.Callee.(*ast.Ident)
	if !ok {
		return nil, glslterr.New(glslterr.InvalidTemplateArg,
			"lambda callee at %s must be a plain identifier", call.Callee.Pos())
	}

	placeholderNames := make(map[string]int, len(sig.Params))
	for i, p := range sig.Params {
		placeholderNames[p.Name] = i
	}

	args := make([]*ArgTemplate, len(call.Args))
	for i, a := range call.Args {
		at, err := r.resolveArgTemplate(a, sig, placeholderNames)
		if err != nil {
			return nil, err
		}
		args[i] = at
	}

	return &Binding{
		Kind:         BindLambda,
		Pos:          call.Pos(),
		LambdaCallee: &ast.Ident{NamePos: calleeIdent.Pos(), Name: calleeIdent.Name},
		LambdaArgs:   args,
	}, nil
}

// resolveArgTemplate classifies e (a lambda sub-argument, or a
// sub-expression of one) per spec.md §4.3's three categories,
// recursing into composite shapes so nested captures/placeholders are
// not missed.
func (r *Resolver) resolveArgTemplate(e ast.Expr, sig *PointerSig, placeholderNames map[string]int) (*ArgTemplate, error) {
	switch x := e.(type) {
	case *ast.Ident:
		return r.resolveIdentArg(x, sig, placeholderNames)

	case *ast.CallExpr:
		args := make([]*ArgTemplate, len(x.Args))
		for i, a := range x.Args {
			at, err := r.resolveArgTemplate(a, sig, placeholderNames)
			if err != nil {
				return nil, err
			}
			args[i] = at
		}
		return &ArgTemplate{Kind: ArgCall, Pos: x.Pos(), Callee: ast.CloneExpr(x.Callee), Args: args}, nil

	case *ast.BinaryExpr:
		left, err := r.resolveArgTemplate(x.Left, sig, placeholderNames)
		if err != nil {
			return nil, err
		}
		right, err := r.resolveArgTemplate(x.Right, sig, placeholderNames)
		if err != nil {
			return nil, err
		}
		return &ArgTemplate{Kind: ArgBinary, Pos: x.Pos(), Op: x.Op, Left: left, Right: right}, nil

	case *ast.DotExpr:
		inner, err := r.resolveArgTemplate(x.X, sig, placeholderNames)
		if err != nil {
			return nil, err
		}
		return &ArgTemplate{Kind: ArgDot, Pos: x.Pos(), X: inner, Field: x.Field}, nil

	case *ast.IndexExpr:
		inner, err := r.resolveArgTemplate(x.X, sig, placeholderNames)
		if err != nil {
			return nil, err
		}
		idx, err := r.resolveArgTemplate(x.Index, sig, placeholderNames)
		if err != nil {
			return nil, err
		}
		return &ArgTemplate{Kind: ArgIndex, Pos: x.Pos(), X: inner, Index: idx}, nil

	case *ast.Opaque:
		return &ArgTemplate{Kind: ArgLeaf, Pos: x.Pos(), Leaf: ast.CloneExpr(x)}, nil

	default:
		return nil, glslterr.New(glslterr.InvalidTemplateArg,
			"unsupported expression shape at %s in lambda argument", e.Pos())
	}
}

func (r *Resolver) resolveIdentArg(id *ast.Ident, sig *PointerSig, placeholderNames map[string]int) (*ArgTemplate, error) {
	if idx, ok := placeholderIndex(id.Name, len(sig.Params)); ok {
		if idx < 0 || idx >= len(sig.Params) {
			return nil, glslterr.New(glslterr.BadPlaceholder,
				"placeholder %q at %s is out of range for pointer type %q (%d parameters)",
				id.Name, id.Pos(), sig.Name, len(sig.Params))
		}
		return &ArgTemplate{Kind: ArgPlaceholder, Pos: id.Pos(), PlaceholderIndex: idx}, nil
	}
	if bad := placeholderLooksNumeric(id.Name); bad {
		return nil, glslterr.New(glslterr.BadPlaceholder,
			"%q at %s looks like a positional placeholder but has a non-integer suffix", id.Name, id.Pos())
	}
	if idx, ok := placeholderNames[id.Name]; ok {
		return &ArgTemplate{Kind: ArgPlaceholder, Pos: id.Pos(), PlaceholderIndex: idx}, nil
	}
	if name, ok := strings.CutPrefix(id.Name, "_"); ok {
		if idx, ok := placeholderNames[name]; ok {
			return &ArgTemplate{Kind: ArgPlaceholder, Pos: id.Pos(), PlaceholderIndex: idx}, nil
		}
	}
	if r.Scope.IsLocal(id.Name) {
		sym, _ := r.Scope.Resolve(id.Name)
		return &ArgTemplate{Kind: ArgCapture, Pos: id.Pos(), Capture: sym}, nil
	}
	if r.Lookup.IsGlobalOrBuiltin(id.Name) {
		return &ArgTemplate{Kind: ArgLeaf, Pos: id.Pos(), Leaf: &ast.Ident{NamePos: id.Pos(), Name: id.Name}}, nil
	}
	if _, ok := r.Lookup.OrdinaryFunc(id.Name); ok {
		return &ArgTemplate{Kind: ArgLeaf, Pos: id.Pos(), Leaf: &ast.Ident{NamePos: id.Pos(), Name: id.Name}}, nil
	}
	// Neither a global, a builtin, nor a scope-visible declared
	// function: pass through unchanged for an outer lambda layer.
	return &ArgTemplate{Kind: ArgFree, Pos: id.Pos(), FreeName: id.Name}, nil
}

// placeholderIndex parses a positional placeholder "_n" into a 0-based
// index. ok is false if name is not of the "_<digits>" shape at all
// (so the caller can fall through to named-placeholder / capture /
// free-identifier handling).
func placeholderIndex(name string, arity int) (index int, ok bool) {
	if !strings.HasPrefix(name, "_") || len(name) < 2 {
		return 0, false
	}
	rest := name[1:]
	if !isAllDigits(rest) {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil {
		return 0, false
	}
	return n - 1, true
}

// placeholderLooksNumeric reports whether name starts with "_" followed
// by a digit but is not a clean "_<digits>" placeholder — e.g. "_1a" —
// which spec.md §7 calls out as a BadPlaceholder ("non-integer numeric
// suffix") rather than silently treating it as an ordinary identifier.
func placeholderLooksNumeric(name string) bool {
	if !strings.HasPrefix(name, "_") || len(name) < 2 {
		return false
	}
	rest := name[1:]
	if rest[0] < '0' || rest[0] > '9' {
		return false
	}
	return !isAllDigits(rest)
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

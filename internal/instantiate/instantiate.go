/*
Package instantiate implements the GLSLT specialization engine
(spec.md §4.5): it walks every ordinary function's body, finds calls to
template functions, resolves and fingerprints their pointer-parameter
arguments, and produces at most one specialization per distinct
fingerprint — splicing static or lambda bindings into the template's
cloned body, appending captured variables as new formal parameters, and
rewriting the original call site to call the new specialization
directly.
*/
package instantiate

import (
	"github.com/glslt-dev/glslt/ast"
	"github.com/glslt-dev/glslt/internal/classify"
	"github.com/glslt-dev/glslt/internal/glslterr"
	"github.com/glslt-dev/glslt/internal/mangle"
	"github.com/glslt-dev/glslt/internal/resolve"
	"github.com/glslt-dev/glslt/internal/scope"
)

// Specialization is one instantiated, fully-spliced copy of a template.
type Specialization struct {
	Name         string
	TemplateName string
	Fingerprint  [16]byte
	Decl         *ast.FuncDecl
	Captures     *mangle.CaptureSet

	// Dependencies names every non-template function, global variable,
	// type, or other specialization this specialization's body
	// references, for internal/depgraph's use-def closure.
	Dependencies map[string]bool
}

// Store is the specialization registry: at most one *Specialization per
// distinct fingerprint (spec.md §4.4's "at most once" guarantee), keyed
// secondarily by mangled name to support the collision-extending naming
// scheme in internal/mangle.
type Store struct {
	byFingerprint map[[16]byte]*Specialization
	byName        map[string][16]byte
	pending       map[[16]byte]bool
	// Order records specializations in first-created order. depgraph.Build
	// uses it to place specializations after every declared node for the
	// emitter's tie-break; tests and introspection use it as a stable
	// listing.
	Order []*Specialization
}

func newStore() *Store {
	return &Store{
		byFingerprint: map[[16]byte]*Specialization{},
		byName:        map[string][16]byte{},
		pending:       map[[16]byte]bool{},
	}
}

func (s *Store) get(fp [16]byte) (*Specialization, bool) {
	spec, ok := s.byFingerprint[fp]
	return spec, ok
}

func (s *Store) existsFn() func(candidate string) (taken bool, sameFingerprint bool) {
	return func(candidate string) (bool, bool) {
		_, ok := s.byName[candidate]
		return ok, false
	}
}

func (s *Store) register(spec *Specialization) {
	s.byFingerprint[spec.Fingerprint] = spec
	s.byName[spec.Name] = spec.Fingerprint
	s.Order = append(s.Order, spec)
}

// walkCtx carries the state threaded through one function body's (or
// one specialization body's) rewrite pass.
type walkCtx struct {
	cls     *classify.Classification
	lookup  resolve.FuncLookup
	tracker *scope.Tracker
	store   *Store
	prefix  string
	deps    map[string]bool
	trace   func(event, name string)
}

func (c *walkCtx) emitTrace(event, name string) {
	if c.trace != nil {
		c.trace(event, name)
	}
}

// Run instantiates every template call reachable from cls's ordinary
// functions, splicing each call site to invoke its specialization
// directly. It returns the populated Store and the rewritten ordinary
// function declarations (in cls.Order's relative order). trace, if
// non-nil, is notified of every Requested/Resolving/Instantiated state
// transition as instantiation proceeds (spec.md §6's verbose mode).
func Run(cls *classify.Classification, prefix string, trace func(event, name string)) ([]*ast.FuncDecl, *Store, error) {
	store := newStore()
	lookup := buildLookup(cls)

	var rewritten []*ast.FuncDecl
	for _, d := range cls.Order {
		fd, ok := d.(*ast.FuncDecl)
		if !ok {
			continue
		}
		canonical, isOrdinary := cls.Ordinary[fd.Name]
		if !isOrdinary || canonical != fd {
			continue
		}

		tracker := scope.New()
		tracker.Push()
		for _, p := range fd.Params {
			tracker.Declare(scope.Symbol{Name: p.Name, Kind: scope.KindParam, Type: p.Type, Origin: p})
		}
		ctx := &walkCtx{cls: cls, lookup: lookup, tracker: tracker, store: store, prefix: prefix, deps: map[string]bool{}, trace: trace}

		body, err := rewriteStmt(fd.Body, ctx)
		tracker.Pop()
		if err != nil {
			return nil, nil, err
		}

		newFd := &ast.FuncDecl{NamePos: fd.NamePos, Name: fd.Name, RetType: fd.RetType, Params: fd.Params, Body: body.(*ast.Block)}
		rewritten = append(rewritten, newFd)
	}
	return rewritten, store, nil
}

// buildLookup wires a resolve.FuncLookup against a Classification:
// ordinary functions resolve by name, and globals/types/a small set of
// GLSL builtins satisfy IsGlobalOrBuiltin.
func buildLookup(cls *classify.Classification) resolve.FuncLookup {
	globals := map[string]bool{}
	for _, d := range cls.Passthrough {
		switch g := d.(type) {
		case *ast.GlobalVarDecl:
			globals[g.Name] = true
		case *ast.TypeDecl:
			globals[g.Name] = true
		}
	}
	return resolve.FuncLookup{
		OrdinaryFunc: func(name string) (*ast.FuncDecl, bool) {
			fd, ok := cls.Ordinary[name]
			return fd, ok
		},
		IsGlobalOrBuiltin: func(name string) bool {
			return globals[name] || builtins[name]
		},
	}
}

// builtins is a closed set of common GLSL builtin functions that may
// appear as static/lambda sub-expressions. It is not exhaustive — the
// engine never type-checks GLSL (spec.md §1 Non-goals) — it only needs
// to keep the resolver from misclassifying a builtin reference as a
// free identifier.
var builtins = map[string]bool{
	"radians": true, "degrees": true, "sin": true, "cos": true, "tan": true,
	"asin": true, "acos": true, "atan": true, "pow": true, "exp": true,
	"log": true, "exp2": true, "log2": true, "sqrt": true, "inversesqrt": true,
	"abs": true, "sign": true, "floor": true, "ceil": true, "fract": true,
	"mod": true, "min": true, "max": true, "clamp": true, "mix": true,
	"step": true, "smoothstep": true, "length": true, "distance": true,
	"dot": true, "cross": true, "normalize": true, "reflect": true,
	"refract": true, "texture": true, "texture2D": true, "textureCube": true,
	"vec2": true, "vec3": true, "vec4": true, "mat2": true, "mat3": true,
	"mat4": true, "int": true, "float": true, "bool": true,
}

// instantiateTemplate resolves, fingerprints, dedups and (if new)
// builds the specialization for one call to tmpl with the given
// call-site actual arguments, evaluated against ctx's current scope.
func instantiateTemplate(tmpl *classify.Template, templateName string, actualArgs []ast.Expr, ctx *walkCtx) (*Specialization, error) {
	ctx.emitTrace("Requested", templateName)
	resolver := resolve.New(ctx.tracker, ctx.lookup)

	bindings := make([]*resolve.Binding, len(tmpl.PointerParams))
	for i, paramIdx := range tmpl.PointerParams {
		ptrType := tmpl.Decl.Params[paramIdx].Type
		fpDecl, ok := ctx.cls.FuncPointerTypes[ptrType.Name]
		if !ok {
			return nil, glslterr.New(glslterr.InvalidTemplateArg,
				"pointer parameter %q of template %q at %s has unrecognized function-pointer type %q",
				tmpl.Decl.Params[paramIdx].Name, templateName, tmpl.Decl.Pos(), ptrType.Name)
		}
		sig := &resolve.PointerSig{Name: ptrType.Name, RetType: fpDecl.RetType, Params: fpDecl.Params}

		if paramIdx >= len(actualArgs) {
			return nil, glslterr.New(glslterr.TemplateArgMismatch,
				"call to template %q is missing an argument for pointer parameter %q",
				templateName, tmpl.Decl.Params[paramIdx].Name)
		}
		binding, err := resolver.ResolveArg(actualArgs[paramIdx], sig)
		if err != nil {
			return nil, err
		}
		bindings[i] = binding
	}

	captures := mangle.BuildCaptureSet(bindings)
	fp := mangle.Fingerprint(templateName, bindings, captures)

	if existing, ok := ctx.store.get(fp); ok {
		// Same fingerprint means the same captures by ordinal and type;
		// this call site passes its own captured variables.
		hit := *existing
		hit.Captures = captures
		return &hit, nil
	}
	if ctx.store.pending[fp] {
		return nil, glslterr.New(glslterr.TemplateCycle,
			"template %q recursively instantiates itself with an equivalent argument set", templateName)
	}
	ctx.store.pending[fp] = true
	ctx.emitTrace("Resolving", templateName)
	defer delete(ctx.store.pending, fp)

	clone := ast.CloneFuncDecl(tmpl.Decl)

	pointerBindings := map[string]*resolve.Binding{}
	for i, paramIdx := range tmpl.PointerParams {
		pointerBindings[clone.Params[paramIdx].Name] = bindings[i]
	}

	splicedBody, err := spliceStmt(clone.Body, pointerBindings)
	if err != nil {
		return nil, err
	}

	newParams := make([]*ast.Param, 0, len(tmpl.ValueParams)+len(captures.Symbols()))
	for _, valueIdx := range tmpl.ValueParams {
		newParams = append(newParams, clone.Params[valueIdx])
	}
	for _, sym := range captures.Symbols() {
		newParams = append(newParams, &ast.Param{Name: sym.Name, Type: sym.Type, Qualifier: ast.QualIn})
	}

	name := mangle.Name(ctx.prefix, templateName, fp, ctx.store.existsFn())

	spec := &Specialization{
		Name:         name,
		TemplateName: templateName,
		Fingerprint:  fp,
		Captures:     captures,
		Dependencies: map[string]bool{},
	}

	nestedTracker := scope.New()
	nestedTracker.Push()
	for _, p := range newParams {
		nestedTracker.Declare(scope.Symbol{Name: p.Name, Kind: scope.KindParam, Type: p.Type})
	}
	nestedCtx := &walkCtx{cls: ctx.cls, lookup: ctx.lookup, tracker: nestedTracker, store: ctx.store, prefix: ctx.prefix, deps: spec.Dependencies, trace: ctx.trace}

	finalBody, err := rewriteStmt(splicedBody.(*ast.Block), nestedCtx)
	nestedTracker.Pop()
	if err != nil {
		return nil, err
	}

	spec.Decl = &ast.FuncDecl{NamePos: clone.NamePos, Name: name, RetType: clone.RetType, Params: newParams, Body: finalBody.(*ast.Block)}

	ctx.store.register(spec)
	ctx.emitTrace("Instantiated", name)
	return spec, nil
}

// callSiteArgs builds the replacement argument list for a call site
// that originally invoked templateName(actualArgs...): the original
// value-parameter arguments, in order, followed by one identifier per
// captured symbol (spec.md §4.5).
func callSiteArgs(tmpl *classify.Template, actualArgs []ast.Expr, captures *mangle.CaptureSet) []ast.Expr {
	args := make([]ast.Expr, 0, len(tmpl.ValueParams)+len(captures.Symbols()))
	for _, valueIdx := range tmpl.ValueParams {
		args = append(args, ast.CloneExpr(actualArgs[valueIdx]))
	}
	for _, sym := range captures.Symbols() {
		args = append(args, &ast.Ident{Name: sym.Name})
	}
	return args
}

package glslt

import (
	"github.com/glslt-dev/glslt/ast"
	"github.com/glslt-dev/glslt/internal/classify"
	"github.com/glslt-dev/glslt/internal/glslterr"
	"github.com/glslt-dev/glslt/internal/instantiate"
)

// DeclKind classifies what Introspect found name to be.
type DeclKind string

const (
	KindFunctionPointerType DeclKind = "function-pointer-type"
	KindTemplate            DeclKind = "template"
	KindOrdinary            DeclKind = "ordinary"
	KindSpecialization      DeclKind = "specialization"
)

// IntrospectResult answers a read-only query about one declaration in
// a unit. Useful for editor tooling and driver diagnostics that want to
// describe a symbol (e.g. "what are this template's pointer
// parameters?", or "what did this mangled name get instantiated
// with?") before, or instead of, committing to a full Transform.
type IntrospectResult struct {
	Name          string
	Kind          DeclKind
	PointerParams []string
	ValueParams   []string
	RetType       string

	// TemplateName and Captures are only populated when Kind is
	// KindSpecialization: the template name resolves to the original
	// template this specialization came from, and Captures lists the
	// captured-variable names appended to its parameter list, in
	// ordinal order (spec.md §4.5).
	TemplateName string
	Captures     []string
}

// Introspect classifies unit and reports what it knows about name: a
// function-pointer type, a template (and, if so, which of its
// parameters are pointer-bound vs. passed through), an ordinary
// function, or — mirroring the teacher's handleViewContext query — the
// resolved signature and capture list of one specific specialization,
// looked up by its mangled name. The last case requires actually
// running instantiation (with the default identifier prefix); the
// first three do not. It returns UnknownRoot if name matches none of
// the above.
func Introspect(unit *ast.Unit, name string) (*IntrospectResult, error) {
	cls, err := classify.Classify(unit)
	if err != nil {
		return nil, err
	}

	if t, ok := cls.Templates[name]; ok {
		res := &IntrospectResult{Name: name, Kind: KindTemplate, RetType: t.Decl.RetType.String()}
		for _, i := range t.PointerParams {
			res.PointerParams = append(res.PointerParams, t.Decl.Params[i].Name)
		}
		for _, i := range t.ValueParams {
			res.ValueParams = append(res.ValueParams, t.Decl.Params[i].Name)
		}
		return res, nil
	}
	if fpd, ok := cls.FuncPointerTypes[name]; ok {
		return &IntrospectResult{Name: name, Kind: KindFunctionPointerType, RetType: fpd.RetType.String()}, nil
	}
	if fd, ok := cls.Ordinary[name]; ok {
		return &IntrospectResult{Name: name, Kind: KindOrdinary, RetType: fd.RetType.String()}, nil
	}

	_, store, err := instantiate.Run(cls, DefaultIdentifierPrefix, nil)
	if err != nil {
		return nil, err
	}
	for _, spec := range store.Order {
		if spec.Name != name {
			continue
		}
		res := &IntrospectResult{
			Name: spec.Name, Kind: KindSpecialization,
			RetType: spec.Decl.RetType.String(), TemplateName: spec.TemplateName,
		}
		for _, sym := range spec.Captures.Symbols() {
			res.Captures = append(res.Captures, sym.Name)
		}
		return res, nil
	}

	return nil, glslterr.New(glslterr.UnknownRoot, "%q is not declared in this unit", name)
}

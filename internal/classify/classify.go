/*
Package classify implements the GLSLT symbol classifier (spec.md §4.1):
it partitions a translation unit's top-level declarations into
function-pointer types, template functions, ordinary functions, and
globals/types/pragmas carried through untouched, while preserving
declaration order for later emission.
*/
package classify

import (
	"github.com/glslt-dev/glslt/ast"
	"github.com/glslt-dev/glslt/internal/glslterr"
)

// Template is a template function (spec.md §3): a function definition
// with at least one formal parameter whose declared type names a
// function-pointer type.
type Template struct {
	Decl *ast.FuncDecl

	// PointerParams are the indices into Decl.Params bound by callers;
	// ValueParams are the remaining indices, passed through unchanged.
	PointerParams []int
	ValueParams   []int
}

// PointerIndex returns the position of param index paramIdx within
// PointerParams, or -1 if paramIdx is not a pointer parameter.
func (t *Template) PointerIndex(paramIdx int) int {
	for i, p := range t.PointerParams {
		if p == paramIdx {
			return i
		}
	}
	return -1
}

// Classification is the output of Classify: four disjoint views over
// the same Unit, plus the original declaration order.
type Classification struct {
	// Order is every declaration in original source order, used by the
	// emitter to break topological-sort ties (spec.md §4.7).
	Order []ast.Decl

	// FuncPointerTypes maps a function-pointer type's name to its
	// (unique, conflict-free) prototype declaration.
	FuncPointerTypes map[string]*ast.FuncDecl

	// Templates maps a template function's original name to its
	// Template record. A name may be overloaded in general GLSL, but
	// GLSLT template names used as call targets are resolved by name
	// only (spec.md doesn't model GLSL overload resolution), so the
	// last definition for a given name wins, matching how the
	// classifier encounters declarations in source order.
	Templates map[string]*Template

	// Ordinary maps an ordinary (non-template) function definition's
	// name to its declaration.
	Ordinary map[string]*ast.FuncDecl

	// Passthrough holds every GlobalVarDecl, TypeDecl and PragmaDecl,
	// in original order.
	Passthrough []ast.Decl
}

// Classify partitions unit's declarations per spec.md §4.1.
func Classify(unit *ast.Unit) (*Classification, error) {
	c := &Classification{
		Order:            append([]ast.Decl(nil), unit.Decls...),
		FuncPointerTypes: map[string]*ast.FuncDecl{},
		Templates:        map[string]*Template{},
		Ordinary:         map[string]*ast.FuncDecl{},
	}

	// Collect every name referenced as a parameter type anywhere in the
	// unit, and every FuncDecl grouped by name (prototypes and
	// definitions alike), in source order.
	referencedAsParamType := map[string]bool{}
	byName := map[string][]*ast.FuncDecl{}
	var funcOrder []string // first-seen order, for deterministic errors

	for _, d := range unit.Decls {
		fd, ok := d.(*ast.FuncDecl)
		if !ok {
			continue
		}
		if _, seen := byName[fd.Name]; !seen {
			funcOrder = append(funcOrder, fd.Name)
		}
		byName[fd.Name] = append(byName[fd.Name], fd)
		for _, p := range fd.Params {
			referencedAsParamType[p.Type.Name] = true
		}
	}

	for _, name := range funcOrder {
		decls := byName[name]
		var prototypes, definitions []*ast.FuncDecl
		for _, fd := range decls {
			if fd.IsPrototype() {
				prototypes = append(prototypes, fd)
			} else {
				definitions = append(definitions, fd)
			}
		}

		if referencedAsParamType[name] && len(prototypes) > 0 {
			// Candidate function-pointer type. Every prototype must
			// agree, and no definition may reuse the same name.
			canonical := prototypes[0]
			for _, other := range prototypes[1:] {
				if !sameSignature(canonical, other) {
					return nil, glslterr.NewMultiSite(glslterr.AmbiguousPointerType,
						[]string{canonical.Pos().String(), other.Pos().String()},
						"prototype %q redeclared with a different signature at %s (first declared at %s)",
						name, other.Pos(), canonical.Pos())
				}
			}
			if len(definitions) > 0 {
				return nil, glslterr.NewMultiSite(glslterr.AmbiguousPointerType,
					[]string{canonical.Pos().String(), definitions[0].Pos().String()},
					"%q is used as a function-pointer type at %s but also defined as a function at %s",
					name, canonical.Pos(), definitions[0].Pos())
			}
			c.FuncPointerTypes[name] = canonical
			continue
		}

		// Not (or no longer) a function-pointer type: any prototypes
		// for this name are simply dropped (spec.md §4.1: "prototypes
		// are useless in GLSL since indirect recursion is disallowed").
		// Definitions are provisionally ordinary; a second pass below
		// reclassifies any that turn out to be templates, since a
		// name's function-pointer-type status can only be known once
		// every name in the unit has been examined once.
		for _, fd := range definitions {
			c.Ordinary[fd.Name] = fd
		}
	}

	for _, name := range funcOrder {
		fd, ok := c.Ordinary[name]
		if !ok {
			continue
		}
		if isTemplateByPointerSet(fd, c.FuncPointerTypes) {
			delete(c.Ordinary, name)
			c.Templates[name] = makeTemplate(fd, c.FuncPointerTypes)
		}
	}

	for _, d := range unit.Decls {
		switch d.(type) {
		case *ast.GlobalVarDecl, *ast.TypeDecl, *ast.PragmaDecl:
			c.Passthrough = append(c.Passthrough, d)
		}
	}

	return c, nil
}

func sameSignature(a, b *ast.FuncDecl) bool {
	if !a.RetType.Equal(b.RetType) {
		return false
	}
	if len(a.Params) != len(b.Params) {
		return false
	}
	for i := range a.Params {
		if !a.Params[i].Type.Equal(b.Params[i].Type) {
			return false
		}
	}
	return true
}

func isTemplateByPointerSet(fd *ast.FuncDecl, pointerTypes map[string]*ast.FuncDecl) bool {
	for _, p := range fd.Params {
		if _, ok := pointerTypes[p.Type.Name]; ok {
			return true
		}
	}
	return false
}

func makeTemplate(fd *ast.FuncDecl, pointerTypes map[string]*ast.FuncDecl) *Template {
	t := &Template{Decl: fd}
	for i, p := range fd.Params {
		if _, ok := pointerTypes[p.Type.Name]; ok {
			t.PointerParams = append(t.PointerParams, i)
		} else {
			t.ValueParams = append(t.ValueParams, i)
		}
	}
	return t
}

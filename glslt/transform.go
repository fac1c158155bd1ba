package glslt

import (
	"strings"

	"github.com/glslt-dev/glslt/ast"
	"github.com/glslt-dev/glslt/internal/classify"
	"github.com/glslt-dev/glslt/internal/depgraph"
	"github.com/glslt-dev/glslt/internal/emit"
	"github.com/glslt-dev/glslt/internal/glslterr"
	"github.com/glslt-dev/glslt/internal/instantiate"
)

// Transform runs the full GLSLT pipeline over unit: classification,
// template-call resolution, fingerprinting, instantiation, optional
// minifying pruning, and final topological emission (spec.md §2's
// data-flow, §4.1-§4.7).
func Transform(unit *ast.Unit, cfg Config) (*ast.Unit, error) {
	cfg, err := normalize(cfg)
	if err != nil {
		return nil, err
	}

	if err := checkReservedIdentifiers(unit, cfg.IdentifierPrefix); err != nil {
		return nil, err
	}

	cls, err := classify.Classify(unit)
	if err != nil {
		return nil, err
	}

	rewritten, store, err := instantiate.Run(cls, cfg.IdentifierPrefix, cfg.Trace)
	if err != nil {
		return nil, err
	}

	graph := depgraph.Build(cls, rewritten, store)

	nodes, err := depgraph.Select(graph, cfg.KeepFns)
	if err != nil {
		return nil, err
	}

	ordered, err := emit.Order(nodes, cfg.Trace)
	if err != nil {
		return nil, err
	}
	protos := emit.ForwardPrototypes(ordered)

	decls := make([]ast.Decl, 0, len(graph.Pragmas)+len(protos)+len(ordered))
	for _, p := range graph.Pragmas {
		decls = append(decls, p)
	}
	for _, p := range protos {
		decls = append(decls, p)
	}
	for _, n := range ordered {
		decls = append(decls, n.Decl)
	}

	return &ast.Unit{Decls: decls}, nil
}

// checkReservedIdentifiers rejects any user-defined symbol — a
// top-level declaration name, a formal parameter, or a local variable —
// that falls in the prefix's reserved namespace (spec.md §6).
func checkReservedIdentifiers(unit *ast.Unit, prefix string) error {
	var offender string
	check := func(name string) bool {
		if strings.HasPrefix(name, prefix) {
			offender = name
			return false
		}
		return true
	}

	for _, d := range unit.Decls {
		ok := true
		switch n := d.(type) {
		case *ast.FuncDecl:
			ok = check(n.Name)
			for _, p := range n.Params {
				if !ok {
					break
				}
				ok = check(p.Name)
			}
			if ok && n.Body != nil {
				ast.Inspect(n.Body, func(node ast.Node) bool {
					if decl, isDecl := node.(*ast.DeclStmt); isDecl {
						for _, name := range decl.Names {
							if !check(name) {
								ok = false
								return false
							}
						}
					}
					return ok
				})
			}
		case *ast.GlobalVarDecl:
			ok = check(n.Name)
		case *ast.TypeDecl:
			ok = check(n.Name)
		}
		if !ok {
			return glslterr.New(glslterr.ReservedIdentifier,
				"%q collides with the reserved prefix %q", offender, prefix)
		}
	}
	return nil
}

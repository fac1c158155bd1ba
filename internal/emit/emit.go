/*
Package emit implements the GLSLT emitter (spec.md §4.7): a stable
topological sort over the pruned dependency graph, ties broken by
original declaration order, with synthesized forward-declaration
prototypes for any call that still points ahead in the final order.
*/
package emit

import (
	"sort"

	"github.com/glslt-dev/glslt/ast"
	"github.com/glslt-dev/glslt/internal/depgraph"
	"github.com/glslt-dev/glslt/internal/glslterr"
)

// state is a node's position in the emission state machine (spec.md
// §4.7): Requested (not yet visited), Resolving (on the current DFS
// path), Instantiated (fully ordered but not yet appended), Emitted
// (appended to the output).
type state uint8

const (
	requested state = iota
	resolving
	instantiated
	emitted
)

// Order computes the stable topological order of nodes: every node
// appears after every other node it depends on, and among nodes with
// no ordering constraint between them, original declaration order
// (spec.md §4.7's tie-break) is preserved. trace, if non-nil, is
// notified with an "Emitted" event as each node takes its final
// position, completing the Requested/Resolving/Instantiated/Emitted
// sequence internal/instantiate begins (spec.md §6's verbose mode).
func Order(nodes []*depgraph.Node, trace func(event, name string)) ([]*depgraph.Node, error) {
	byName := make(map[string]*depgraph.Node, len(nodes))
	for _, n := range nodes {
		byName[n.Name] = n
	}

	sorted := append([]*depgraph.Node(nil), nodes...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].OriginalIndex < sorted[j].OriginalIndex
	})

	states := make(map[string]state, len(nodes))
	var out []*depgraph.Node

	var visit func(n *depgraph.Node) error
	visit = func(n *depgraph.Node) error {
		switch states[n.Name] {
		case emitted, instantiated:
			return nil
		case resolving:
			return glslterr.New(glslterr.TemplateCycle,
				"dependency cycle detected while ordering %q for emission", n.Name)
		}
		states[n.Name] = resolving

		deps := append([]string(nil), n.Depends...)
		sort.SliceStable(deps, func(i, j int) bool {
			di, dj := byName[deps[i]], byName[deps[j]]
			if di == nil || dj == nil {
				return di != nil
			}
			return di.OriginalIndex < dj.OriginalIndex
		})
		for _, dep := range deps {
			depNode, ok := byName[dep]
			if !ok || dep == n.Name {
				continue
			}
			if err := visit(depNode); err != nil {
				return err
			}
		}

		states[n.Name] = instantiated
		out = append(out, n)
		states[n.Name] = emitted
		if trace != nil {
			trace("Emitted", n.Name)
		}
		return nil
	}

	for _, n := range sorted {
		if err := visit(n); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// ForwardPrototypes returns a synthesized bare prototype for every
// function-shaped node in ordered whose first use precedes its own
// position — i.e. a call site earlier in the output references it
// before its definition appears. Spec.md §4.7 requires these because
// GLSL, unlike the topological order the emitter otherwise guarantees,
// does not allow forward calls within a single translation unit.
func ForwardPrototypes(ordered []*depgraph.Node) []*ast.FuncDecl {
	position := make(map[string]int, len(ordered))
	for i, n := range ordered {
		position[n.Name] = i
	}

	needsProto := map[string]bool{}
	var order []string
	for i, n := range ordered {
		for _, dep := range n.Depends {
			depPos, ok := position[dep]
			if !ok {
				continue
			}
			if depPos > i && !needsProto[dep] {
				needsProto[dep] = true
				order = append(order, dep)
			}
		}
	}

	byName := make(map[string]*depgraph.Node, len(ordered))
	for _, n := range ordered {
		byName[n.Name] = n
	}

	var protos []*ast.FuncDecl
	for _, name := range order {
		fd, ok := byName[name].Decl.(*ast.FuncDecl)
		if !ok {
			continue
		}
		protos = append(protos, &ast.FuncDecl{NamePos: fd.NamePos, Name: fd.Name, RetType: fd.RetType, Params: fd.Params})
	}
	return protos
}

/*
Package depgraph implements the GLSLT dependency graph and pruner
(spec.md §4.6): a use-def graph over a transformed translation unit,
with two emission modes — full (every declaration, minus templates
and pointer-type prototypes) and minifying (transitive closure from a
caller-supplied root set).
*/
package depgraph

import (
	"fmt"

	"github.com/glslt-dev/glslt/ast"
	"github.com/glslt-dev/glslt/internal/classify"
	"github.com/glslt-dev/glslt/internal/glslterr"
	"github.com/glslt-dev/glslt/internal/instantiate"
)

// Node is one top-level declaration in the transformed unit: an
// ordinary function, a specialization, or a passthrough global/type.
type Node struct {
	Name    string
	Decl    ast.Decl // the declaration to emit
	Depends []string // names this node's body/initializer references
	// OriginalIndex is this node's position in the original declaration
	// order, used only to break topological-sort ties (spec.md §4.7);
	// specializations that have no original position sort after every
	// declared node, in first-instantiation order.
	OriginalIndex int
}

// Graph is the full use-def graph built from a Classification plus the
// rewritten ordinary functions and specializations instantiate.Run
// produced.
type Graph struct {
	Nodes    map[string]*Node
	Pragmas  []*ast.PragmaDecl // preserved verbatim at the head, per spec.md §4.6
	nodeList []*Node           // insertion order, for full-mode default ordering
}

// Build assembles the dependency graph: one node per ordinary function
// (rewritten), one per specialization, and one per passthrough global,
// type, or ordinary pragma declaration. The always-preserved pragma
// forms (#version, #extension, precision qualifiers) are collected
// separately instead, since they belong at the head of the output
// regardless of reachability.
func Build(cls *classify.Classification, rewritten []*ast.FuncDecl, store *instantiate.Store) *Graph {
	g := &Graph{Nodes: map[string]*Node{}}

	indexOf := map[string]int{}
	pragmaIndex := map[*ast.PragmaDecl]int{}
	for i, d := range cls.Order {
		switch n := d.(type) {
		case *ast.FuncDecl:
			indexOf[n.Name] = i
		case *ast.GlobalVarDecl:
			indexOf[n.Name] = i
		case *ast.TypeDecl:
			indexOf[n.Name] = i
		case *ast.PragmaDecl:
			pragmaIndex[n] = i
		}
	}

	for _, fd := range rewritten {
		g.addNode(&Node{Name: fd.Name, Decl: fd, Depends: collectDepends(fd), OriginalIndex: indexOf[fd.Name]})
	}
	for _, d := range cls.Passthrough {
		switch n := d.(type) {
		case *ast.GlobalVarDecl:
			var deps []string
			if n.Init != nil {
				deps = identsIn(n.Init)
			}
			g.addNode(&Node{Name: n.Name, Decl: n, Depends: deps, OriginalIndex: indexOf[n.Name]})
		case *ast.TypeDecl:
			g.addNode(&Node{Name: n.Name, Decl: n, OriginalIndex: indexOf[n.Name]})
		case *ast.PragmaDecl:
			if n.IsPreservedPragma() {
				g.Pragmas = append(g.Pragmas, n)
				continue
			}
			// Not one of the always-survives forms (#version,
			// #extension, precision): spec.md §3 still lists pragmas as
			// an ordinary member of the declaration sequence, so it gets
			// an ordinary node instead of being dropped — kept in full
			// mode, pruned in minifying mode like any other
			// never-depended-on declaration. The synthetic name (using
			// '#', never valid in a GLSL identifier or a mangled
			// specialization name) only keys the graph; the emitted
			// declaration is n itself, unnamed.
			name := fmt.Sprintf("_glslt_pragma#%d", pragmaIndex[n])
			g.addNode(&Node{Name: name, Decl: n, OriginalIndex: pragmaIndex[n]})
		}
	}
	for i, spec := range store.Order {
		deps := make([]string, 0, len(spec.Dependencies))
		for dep := range spec.Dependencies {
			deps = append(deps, dep)
		}
		g.addNode(&Node{Name: spec.Name, Decl: spec.Decl, Depends: deps, OriginalIndex: len(cls.Order) + i})
	}

	return g
}

func (g *Graph) addNode(n *Node) {
	g.Nodes[n.Name] = n
	g.nodeList = append(g.nodeList, n)
}

// Select returns the nodes to emit. If roots is empty, full mode keeps
// every node (templates and pointer-type prototypes were never turned
// into nodes to begin with). If roots is non-empty, minifying mode
// computes the transitive closure from roots; a root absent from the
// graph is UnknownRoot.
func Select(g *Graph, roots []string) ([]*Node, error) {
	if len(roots) == 0 {
		out := make([]*Node, len(g.nodeList))
		copy(out, g.nodeList)
		return out, nil
	}

	keep := map[string]bool{}
	var stack []string
	for _, r := range roots {
		if _, ok := g.Nodes[r]; !ok {
			return nil, glslterr.New(glslterr.UnknownRoot, "keep_fns root %q does not exist after instantiation", r)
		}
		if !keep[r] {
			keep[r] = true
			stack = append(stack, r)
		}
	}
	for len(stack) > 0 {
		name := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		node := g.Nodes[name]
		for _, dep := range node.Depends {
			if _, ok := g.Nodes[dep]; !ok {
				continue // a built-in or type name, not a graph node
			}
			if !keep[dep] {
				keep[dep] = true
				stack = append(stack, dep)
			}
		}
	}

	out := make([]*Node, 0, len(keep))
	for _, n := range g.nodeList {
		if keep[n.Name] {
			out = append(out, n)
		}
	}
	return out, nil
}

// collectDepends walks fd's body for every referenced name: bare
// identifiers and call callees alike (ast.Inspect visits a CallExpr's
// Callee like any other child), since either shape can name a
// dependency the pruner must keep.
func collectDepends(fd *ast.FuncDecl) []string {
	if fd.Body == nil {
		return nil
	}
	return identNames(fd.Body)
}

func identsIn(e ast.Expr) []string {
	return identNames(e)
}

func identNames(n ast.Node) []string {
	seen := map[string]bool{}
	var names []string
	ast.Inspect(n, func(node ast.Node) bool {
		if id, ok := node.(*ast.Ident); ok && !seen[id.Name] {
			seen[id.Name] = true
			names = append(names, id.Name)
		}
		return true
	})
	return names
}

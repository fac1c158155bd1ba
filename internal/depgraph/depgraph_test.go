package depgraph

import (
	"testing"

	"github.com/glslt-dev/glslt/ast"
	"github.com/glslt-dev/glslt/internal/classify"
	"github.com/glslt-dev/glslt/internal/glslterr"
	"github.com/glslt-dev/glslt/internal/instantiate"
)

func floatT() ast.Type          { return ast.Type{Name: "float"} }
func ident(n string) *ast.Ident { return &ast.Ident{Name: n} }

func buildGraph(t *testing.T) (*classify.Classification, *Graph) {
	t.Helper()
	a := &ast.FuncDecl{Name: "a", RetType: floatT(), Body: &ast.Block{Stmts: []ast.Stmt{
		&ast.ReturnStmt{X: &ast.CallExpr{Callee: ident("b"), Args: nil}},
	}}}
	b := &ast.FuncDecl{Name: "b", RetType: floatT(), Body: &ast.Block{}}
	c := &ast.FuncDecl{Name: "c", RetType: floatT(), Body: &ast.Block{}}
	g := &ast.GlobalVarDecl{Name: "g", Type: floatT()}

	unit := &ast.Unit{Decls: []ast.Decl{a, b, c, g}}
	cls, err := classify.Classify(unit)
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	rewritten := []*ast.FuncDecl{a, b, c}
	graph := Build(cls, rewritten, &instantiate.Store{})
	return cls, graph
}

func TestBuildFullModeKeepsEverything(t *testing.T) {
	_, graph := buildGraph(t)
	nodes, err := Select(graph, nil)
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if len(nodes) != 4 {
		t.Fatalf("full mode should keep all 4 nodes, got %d", len(nodes))
	}
}

func TestSelectMinifyingKeepsOnlyTransitiveClosure(t *testing.T) {
	_, graph := buildGraph(t)
	nodes, err := Select(graph, []string{"a"})
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	names := map[string]bool{}
	for _, n := range nodes {
		names[n.Name] = true
	}
	if !names["a"] || !names["b"] {
		t.Fatalf("expected a and b kept, got %v", names)
	}
	if names["c"] || names["g"] {
		t.Fatalf("expected c and g pruned (unreachable from root a), got %v", names)
	}
}

func TestSelectUnknownRoot(t *testing.T) {
	_, graph := buildGraph(t)
	_, err := Select(graph, []string{"nonexistent"})
	if ge, ok := glslterr.As(err); !ok || ge.Kind != glslterr.UnknownRoot {
		t.Fatalf("Select() error = %v, want UnknownRoot", err)
	}
}

func TestBuildPreservesPragmasSeparately(t *testing.T) {
	version := &ast.PragmaDecl{Text: "#version 330"}
	ordinary := &ast.PragmaDecl{Text: "#nonsense"}
	unit := &ast.Unit{Decls: []ast.Decl{version, ordinary}}
	cls, err := classify.Classify(unit)
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	graph := Build(cls, nil, &instantiate.Store{})
	if len(graph.Pragmas) != 1 || graph.Pragmas[0] != version {
		t.Fatalf("expected only the #version pragma always-preserved, got %v", graph.Pragmas)
	}
}

func TestBuildKeepsOrdinaryPragmaAsNode(t *testing.T) {
	version := &ast.PragmaDecl{Text: "#version 330"}
	ordinary := &ast.PragmaDecl{Text: "#nonsense"}
	unit := &ast.Unit{Decls: []ast.Decl{version, ordinary}}
	cls, err := classify.Classify(unit)
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	graph := Build(cls, nil, &instantiate.Store{})

	var found *Node
	for _, n := range graph.Nodes {
		if pd, ok := n.Decl.(*ast.PragmaDecl); ok && pd == ordinary {
			found = n
		}
	}
	if found == nil {
		t.Fatalf("expected a non-preserved pragma to get an ordinary graph node instead of being discarded")
	}

	nodes, err := Select(graph, nil)
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	keptInFullMode := false
	for _, n := range nodes {
		if n == found {
			keptInFullMode = true
		}
	}
	if !keptInFullMode {
		t.Fatalf("expected the ordinary pragma node kept in full mode, got %v", nodes)
	}
}

func TestSelectMinifyingPrunesUnreferencedOrdinaryPragma(t *testing.T) {
	a := &ast.FuncDecl{Name: "a", RetType: floatT(), Body: &ast.Block{}}
	ordinary := &ast.PragmaDecl{Text: "#nonsense"}
	unit := &ast.Unit{Decls: []ast.Decl{a, ordinary}}
	cls, err := classify.Classify(unit)
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	graph := Build(cls, []*ast.FuncDecl{a}, &instantiate.Store{})

	nodes, err := Select(graph, []string{"a"})
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	for _, n := range nodes {
		if _, ok := n.Decl.(*ast.PragmaDecl); ok {
			t.Fatalf("expected the unreferenced ordinary pragma pruned in minifying mode, got %v", nodes)
		}
	}
}

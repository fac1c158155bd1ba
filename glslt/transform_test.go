package glslt

import (
	"testing"

	"github.com/glslt-dev/glslt/ast"
)

func declNames(decls []ast.Decl) []string {
	names := make([]string, 0, len(decls))
	for _, d := range decls {
		switch n := d.(type) {
		case *ast.FuncDecl:
			names = append(names, n.Name)
		case *ast.GlobalVarDecl:
			names = append(names, n.Name)
		case *ast.TypeDecl:
			names = append(names, n.Name)
		case *ast.PragmaDecl:
			names = append(names, n.Text)
		}
	}
	return names
}

func buildSimpleUnit() *ast.Unit {
	a := &ast.FuncDecl{Name: "a", RetType: gfloat(), Body: &ast.Block{Stmts: []ast.Stmt{
		&ast.ReturnStmt{X: &ast.CallExpr{Callee: gident("b"), Args: nil}},
	}}}
	b := &ast.FuncDecl{Name: "b", RetType: gfloat(), Body: &ast.Block{}}
	c := &ast.FuncDecl{Name: "c", RetType: gfloat(), Body: &ast.Block{}}
	return &ast.Unit{Decls: []ast.Decl{a, b, c}}
}

func TestTransformFullModeKeepsEverything(t *testing.T) {
	out, err := Transform(buildSimpleUnit(), DefaultConfig())
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	if len(out.Decls) != 3 {
		t.Fatalf("expected all 3 declarations kept in full mode, got %v", declNames(out.Decls))
	}
}

func TestTransformMinifyingPrunesUnreachable(t *testing.T) {
	cfg := DefaultConfig()
	cfg.KeepFns = []string{"a"}
	out, err := Transform(buildSimpleUnit(), cfg)
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	names := declNames(out.Decls)
	found := map[string]bool{}
	for _, n := range names {
		found[n] = true
	}
	if !found["a"] || !found["b"] {
		t.Fatalf("expected a and b kept, got %v", names)
	}
	if found["c"] {
		t.Fatalf("expected c pruned (unreachable from root a), got %v", names)
	}
}

func TestTransformUnknownRoot(t *testing.T) {
	cfg := DefaultConfig()
	cfg.KeepFns = []string{"nonexistent"}
	_, err := Transform(buildSimpleUnit(), cfg)
	if err == nil {
		t.Fatalf("expected UnknownRoot error for a keep_fns root absent from the unit")
	}
}

func TestTransformRejectsReservedIdentifier(t *testing.T) {
	bad := &ast.FuncDecl{Name: "_glslt_reserved", RetType: gfloat(), Body: &ast.Block{}}
	unit := &ast.Unit{Decls: []ast.Decl{bad}}
	_, err := Transform(unit, DefaultConfig())
	if err == nil {
		t.Fatalf("expected ReservedIdentifier error for a name in the reserved prefix namespace")
	}
}

func TestTransformIsDeterministic(t *testing.T) {
	unit := buildSimpleUnit()
	out1, err := Transform(unit, DefaultConfig())
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	out2, err := Transform(unit, DefaultConfig())
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}

	n1, n2 := declNames(out1.Decls), declNames(out2.Decls)
	if len(n1) != len(n2) {
		t.Fatalf("non-deterministic output lengths: %v vs %v", n1, n2)
	}
	for i := range n1 {
		if n1[i] != n2[i] {
			t.Fatalf("non-deterministic declaration order at index %d: %v vs %v", i, n1, n2)
		}
	}
}

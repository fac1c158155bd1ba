package glslt

import (
	"strings"
	"testing"

	"golang.org/x/tools/txtar"

	"github.com/glslt-dev/glslt/ast"
)

// readGolden loads one named section of a golden .txtar fixture and
// splits it into its newline-separated assertion directives.
func readGolden(t *testing.T, path, section string) []string {
	t.Helper()
	archive, err := txtar.ParseFile(path)
	if err != nil {
		t.Fatalf("txtar.ParseFile(%q) error = %v", path, err)
	}
	for _, f := range archive.Files {
		if f.Name != section {
			continue
		}
		var lines []string
		for _, l := range strings.Split(string(f.Data), "\n") {
			l = strings.TrimSpace(l)
			if l != "" {
				lines = append(lines, l)
			}
		}
		return lines
	}
	t.Fatalf("golden file %q has no %q section", path, section)
	return nil
}

// specDecls returns the *ast.FuncDecl bodies among decls, keyed by name.
func specDecls(decls []ast.Decl) map[string]*ast.FuncDecl {
	out := map[string]*ast.FuncDecl{}
	for _, d := range decls {
		if fd, ok := d.(*ast.FuncDecl); ok {
			out[fd.Name] = fd
		}
	}
	return out
}

// checkGolden applies each assertion directive from a golden fixture
// against a transformed unit's declarations.
func checkGolden(t *testing.T, decls []ast.Decl, directives []string) {
	t.Helper()
	found := specDecls(decls)

	for _, d := range directives {
		switch {
		case strings.HasPrefix(d, "PREFIX:"):
			want := strings.TrimPrefix(d, "PREFIX:")
			matched := false
			for name := range found {
				if strings.HasPrefix(name, want) {
					matched = true
					break
				}
			}
			if !matched {
				t.Errorf("expected a declaration with prefix %q, got %v", want, declNames(decls))
			}

		case strings.HasPrefix(d, "ABSENT:"):
			want := strings.TrimPrefix(d, "ABSENT:")
			if _, ok := found[want]; ok {
				t.Errorf("expected %q to be absent from output, got %v", want, declNames(decls))
			}

		case strings.HasPrefix(d, "CAPTURE:"):
			want := strings.TrimPrefix(d, "CAPTURE:")
			matched := false
			for _, fd := range found {
				if len(fd.Params) == 0 {
					continue
				}
				if fd.Params[len(fd.Params)-1].Name == want {
					matched = true
					break
				}
			}
			if !matched {
				t.Errorf("expected some specialization's trailing parameter to be named %q", want)
			}

		case strings.HasPrefix(d, "COUNT:"):
			// checked by the caller, which knows which names are
			// pre-existing (non-specialization) declarations.

		default:
			if _, ok := found[d]; !ok {
				t.Errorf("expected declaration %q in output, got %v", d, declNames(decls))
			}
		}
	}
}

// countSpecializations returns how many declarations in decls are not
// among the pre-existing names known before instantiation.
func countSpecializations(decls []ast.Decl, known map[string]bool) int {
	n := 0
	for _, d := range decls {
		fd, ok := d.(*ast.FuncDecl)
		if !ok || fd.Body == nil {
			continue
		}
		if !known[fd.Name] {
			n++
		}
	}
	return n
}

func TestGoldenStaticSpecialization(t *testing.T) {
	proto := &ast.FuncDecl{Name: "fnT", RetType: gfloat(), Params: nil}
	one := &ast.FuncDecl{Name: "fnReturnsOne", RetType: gfloat(), Body: &ast.Block{Stmts: []ast.Stmt{
		&ast.ReturnStmt{X: &ast.Opaque{Text: "1.0"}},
	}}}
	two := &ast.FuncDecl{Name: "fnReturnsTwo", RetType: gfloat(), Body: &ast.Block{Stmts: []ast.Stmt{
		&ast.ReturnStmt{X: &ast.Opaque{Text: "2.0"}},
	}}}
	tmpl := &ast.FuncDecl{
		Name: "fnTemplate", RetType: gfloat(),
		Params: []*ast.Param{{Name: "f", Type: ast.Type{Name: "fnT"}}},
		Body: &ast.Block{Stmts: []ast.Stmt{
			&ast.ReturnStmt{X: &ast.CallExpr{Callee: gident("f")}},
		}},
	}
	main := &ast.FuncDecl{Name: "main_", RetType: gfloat(), Body: &ast.Block{Stmts: []ast.Stmt{
		&ast.ExprStmt{X: &ast.CallExpr{Callee: gident("fnTemplate"), Args: []ast.Expr{gident("fnReturnsOne")}}},
		&ast.ExprStmt{X: &ast.CallExpr{Callee: gident("fnTemplate"), Args: []ast.Expr{gident("fnReturnsTwo")}}},
	}}}
	unit := &ast.Unit{Decls: []ast.Decl{proto, one, two, tmpl, main}}

	out, err := Transform(unit, DefaultConfig())
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}

	directives := readGolden(t, "testdata/golden/static_specialization.txtar", "expected")
	checkGolden(t, out.Decls, directives)

	known := map[string]bool{"fnReturnsOne": true, "fnReturnsTwo": true, "main_": true}
	if n := countSpecializations(out.Decls, known); n != 2 {
		t.Errorf("expected 2 specializations of fnTemplate, got %d (%v)", n, declNames(out.Decls))
	}
}

// buildElongateUnit returns an opElongate template bound to a lambda
// calling sdSphere with a fixed radius, optionally closing over a local
// variable instead of a literal.
func buildElongateUnit(capturing bool) *ast.Unit {
	proto := &ast.FuncDecl{Name: "sdf3d", RetType: gfloat(), Params: []*ast.Param{{Name: "p", Type: ast.Type{Name: "vec3"}}}}
	sphere := &ast.FuncDecl{
		Name: "sdSphere", RetType: gfloat(),
		Params: []*ast.Param{{Name: "p", Type: ast.Type{Name: "vec3"}}, {Name: "r", Type: gfloat()}},
		Body:   &ast.Block{Stmts: []ast.Stmt{&ast.ReturnStmt{X: &ast.Opaque{Text: "length(p) - r"}}}},
	}
	tmpl := &ast.FuncDecl{
		Name: "opElongate", RetType: gfloat(),
		Params: []*ast.Param{{Name: "f", Type: ast.Type{Name: "sdf3d"}}, {Name: "p", Type: ast.Type{Name: "vec3"}}},
		Body: &ast.Block{Stmts: []ast.Stmt{
			&ast.ReturnStmt{X: &ast.CallExpr{Callee: gident("f"), Args: []ast.Expr{gident("p")}}},
		}},
	}

	var mainStmts []ast.Stmt
	var radiusArg ast.Expr = &ast.Opaque{Text: "4.0"}
	if capturing {
		mainStmts = append(mainStmts, &ast.DeclStmt{
			Type: gfloat(), Names: []string{"scale"}, Inits: []ast.Expr{&ast.Opaque{Text: "4.0"}},
		})
		radiusArg = gident("scale")
	}
	mainStmts = append(mainStmts, &ast.ExprStmt{X: &ast.CallExpr{
		Callee: gident("opElongate"),
		Args: []ast.Expr{
			&ast.CallExpr{Callee: gident("sdSphere"), Args: []ast.Expr{gident("_1"), radiusArg}},
			&ast.Opaque{Text: "vec3(1.0)"},
		},
	}})
	main := &ast.FuncDecl{Name: "main_", RetType: gfloat(), Body: &ast.Block{Stmts: mainStmts}}

	return &ast.Unit{Decls: []ast.Decl{proto, sphere, tmpl, main}}
}

func TestGoldenElongateNonCapturingLambda(t *testing.T) {
	unit := buildElongateUnit(false)
	out, err := Transform(unit, DefaultConfig())
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}

	directives := readGolden(t, "testdata/golden/elongate_lambda.txtar", "expected_noncapturing")
	checkGolden(t, out.Decls, directives)

	known := map[string]bool{"sdSphere": true, "main_": true}
	if n := countSpecializations(out.Decls, known); n != 1 {
		t.Errorf("expected exactly 1 specialization, got %d (%v)", n, declNames(out.Decls))
	}
}

func TestGoldenElongateCapturingLambda(t *testing.T) {
	unit := buildElongateUnit(true)
	out, err := Transform(unit, DefaultConfig())
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}

	directives := readGolden(t, "testdata/golden/elongate_lambda.txtar", "expected_capturing")
	checkGolden(t, out.Decls, directives)
}

// buildDedupUnit returns a unit with two call sites binding the same
// template to structurally identical lambdas whose captures have
// different source names but the same type and ordinal position.
func buildDedupUnit() *ast.Unit {
	proto := &ast.FuncDecl{Name: "sdf3d", RetType: gfloat(), Params: []*ast.Param{{Name: "p", Type: ast.Type{Name: "vec3"}}}}
	sphere := &ast.FuncDecl{
		Name: "sdSphere", RetType: gfloat(),
		Params: []*ast.Param{{Name: "p", Type: ast.Type{Name: "vec3"}}, {Name: "r", Type: gfloat()}},
		Body:   &ast.Block{Stmts: []ast.Stmt{&ast.ReturnStmt{X: &ast.Opaque{Text: "length(p) - r"}}}},
	}
	tmpl := &ast.FuncDecl{
		Name: "opElongate", RetType: gfloat(),
		Params: []*ast.Param{{Name: "f", Type: ast.Type{Name: "sdf3d"}}, {Name: "p", Type: ast.Type{Name: "vec3"}}},
		Body: &ast.Block{Stmts: []ast.Stmt{
			&ast.ReturnStmt{X: &ast.CallExpr{Callee: gident("f"), Args: []ast.Expr{gident("p")}}},
		}},
	}

	caller1 := &ast.FuncDecl{Name: "sceneA", RetType: gfloat(), Body: &ast.Block{Stmts: []ast.Stmt{
		&ast.DeclStmt{Type: gfloat(), Names: []string{"sz"}, Inits: []ast.Expr{&ast.Opaque{Text: "1.0"}}},
		&ast.ReturnStmt{X: &ast.CallExpr{
			Callee: gident("opElongate"),
			Args: []ast.Expr{
				&ast.CallExpr{Callee: gident("sdSphere"), Args: []ast.Expr{gident("_1"), gident("sz")}},
				&ast.Opaque{Text: "vec3(1.0)"},
			},
		}},
	}}}
	caller2 := &ast.FuncDecl{Name: "sceneB", RetType: gfloat(), Body: &ast.Block{Stmts: []ast.Stmt{
		&ast.DeclStmt{Type: gfloat(), Names: []string{"radius"}, Inits: []ast.Expr{&ast.Opaque{Text: "2.0"}}},
		&ast.ReturnStmt{X: &ast.CallExpr{
			Callee: gident("opElongate"),
			Args: []ast.Expr{
				&ast.CallExpr{Callee: gident("sdSphere"), Args: []ast.Expr{gident("_1"), gident("radius")}},
				&ast.Opaque{Text: "vec3(1.0)"},
			},
		}},
	}}}

	return &ast.Unit{Decls: []ast.Decl{proto, sphere, tmpl, caller1, caller2}}
}

func TestGoldenDedupByType(t *testing.T) {
	unit := buildDedupUnit()
	out, err := Transform(unit, DefaultConfig())
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}

	readGolden(t, "testdata/golden/dedup_by_type.txtar", "expected")
	known := map[string]bool{"sdSphere": true, "sceneA": true, "sceneB": true}
	if n := countSpecializations(out.Decls, known); n != 1 {
		t.Errorf("expected the two differently-named-capture call sites to dedup to 1 specialization, got %d (%v)",
			n, declNames(out.Decls))
	}
}

// buildPlaceholderEquivalenceUnit binds the same template twice, once
// with a lambda using the positional placeholder _1 and once using the
// pointer type's own parameter name as a named placeholder.
func buildPlaceholderEquivalenceUnit() *ast.Unit {
	proto := &ast.FuncDecl{Name: "sdf3d", RetType: gfloat(), Params: []*ast.Param{{Name: "p", Type: ast.Type{Name: "vec3"}}}}
	sphere := &ast.FuncDecl{
		Name: "sdSphere", RetType: gfloat(),
		Params: []*ast.Param{{Name: "p", Type: ast.Type{Name: "vec3"}}, {Name: "r", Type: gfloat()}},
		Body:   &ast.Block{Stmts: []ast.Stmt{&ast.ReturnStmt{X: &ast.Opaque{Text: "length(p) - r"}}}},
	}
	tmpl := &ast.FuncDecl{
		Name: "opElongate", RetType: gfloat(),
		Params: []*ast.Param{{Name: "f", Type: ast.Type{Name: "sdf3d"}}, {Name: "p", Type: ast.Type{Name: "vec3"}}},
		Body: &ast.Block{Stmts: []ast.Stmt{
			&ast.ReturnStmt{X: &ast.CallExpr{Callee: gident("f"), Args: []ast.Expr{gident("p")}}},
		}},
	}

	caller1 := &ast.FuncDecl{Name: "sceneA", RetType: gfloat(), Body: &ast.Block{Stmts: []ast.Stmt{
		&ast.ReturnStmt{X: &ast.CallExpr{
			Callee: gident("opElongate"),
			Args: []ast.Expr{
				&ast.CallExpr{Callee: gident("sdSphere"), Args: []ast.Expr{gident("_1"), &ast.Opaque{Text: "1.0"}}},
				&ast.Opaque{Text: "vec3(1.0)"},
			},
		}},
	}}}
	caller2 := &ast.FuncDecl{Name: "sceneB", RetType: gfloat(), Body: &ast.Block{Stmts: []ast.Stmt{
		&ast.ReturnStmt{X: &ast.CallExpr{
			Callee: gident("opElongate"),
			Args: []ast.Expr{
				&ast.CallExpr{Callee: gident("sdSphere"), Args: []ast.Expr{gident("_p"), &ast.Opaque{Text: "1.0"}}},
				&ast.Opaque{Text: "vec3(1.0)"},
			},
		}},
	}}}

	return &ast.Unit{Decls: []ast.Decl{proto, sphere, tmpl, caller1, caller2}}
}

func TestGoldenNamedPlaceholderEquivalence(t *testing.T) {
	unit := buildPlaceholderEquivalenceUnit()
	out, err := Transform(unit, DefaultConfig())
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}

	readGolden(t, "testdata/golden/named_placeholder_equivalence.txtar", "expected")
	known := map[string]bool{"sdSphere": true, "sceneA": true, "sceneB": true}
	if n := countSpecializations(out.Decls, known); n != 1 {
		t.Errorf("expected _1 and named placeholder _p to dedup to 1 specialization, got %d (%v)",
			n, declNames(out.Decls))
	}
}

package instantiate

import (
	"github.com/glslt-dev/glslt/ast"
	"github.com/glslt-dev/glslt/internal/resolve"
)

// spliceStmt rewrites a cloned template body, replacing every call
// through one of the template's pointer parameters with the bound
// static or lambda expression (spec.md §4.5 step 3). pointerBindings
// maps a pointer parameter's name to its resolved Binding.
func spliceStmt(s ast.Stmt, pointerBindings map[string]*resolve.Binding) (ast.Stmt, error) {
	switch n := s.(type) {
	case *ast.Block:
		stmts := make([]ast.Stmt, len(n.Stmts))
		for i, st := range n.Stmts {
			r, err := spliceStmt(st, pointerBindings)
			if err != nil {
				return nil, err
			}
			stmts[i] = r
		}
		return &ast.Block{LBracePos: n.LBracePos, Stmts: stmts}, nil

	case *ast.ExprStmt:
		x, err := spliceExpr(n.X, pointerBindings)
		if err != nil {
			return nil, err
		}
		return &ast.ExprStmt{X: x}, nil

	case *ast.DeclStmt:
		inits := make([]ast.Expr, len(n.Inits))
		for i, init := range n.Inits {
			if init == nil {
				continue
			}
			r, err := spliceExpr(init, pointerBindings)
			if err != nil {
				return nil, err
			}
			inits[i] = r
		}
		return &ast.DeclStmt{DeclPos: n.DeclPos, Type: n.Type, Names: n.Names, Inits: inits}, nil

	case *ast.IfStmt:
		cond, err := spliceExpr(n.Cond, pointerBindings)
		if err != nil {
			return nil, err
		}
		then, err := spliceStmt(n.Then, pointerBindings)
		if err != nil {
			return nil, err
		}
		out := &ast.IfStmt{IfPos: n.IfPos, Cond: cond, Then: then}
		if n.Else != nil {
			els, err := spliceStmt(n.Else, pointerBindings)
			if err != nil {
				return nil, err
			}
			out.Else = els
		}
		return out, nil

	case *ast.ForStmt:
		out := &ast.ForStmt{ForPos: n.ForPos}
		if n.Init != nil {
			init, err := spliceStmt(n.Init, pointerBindings)
			if err != nil {
				return nil, err
			}
			out.Init = init
		}
		if n.Cond != nil {
			cond, err := spliceExpr(n.Cond, pointerBindings)
			if err != nil {
				return nil, err
			}
			out.Cond = cond
		}
		if n.Post != nil {
			post, err := spliceStmt(n.Post, pointerBindings)
			if err != nil {
				return nil, err
			}
			out.Post = post
		}
		body, err := spliceStmt(n.Body, pointerBindings)
		if err != nil {
			return nil, err
		}
		out.Body = body
		return out, nil

	case *ast.WhileStmt:
		cond, err := spliceExpr(n.Cond, pointerBindings)
		if err != nil {
			return nil, err
		}
		body, err := spliceStmt(n.Body, pointerBindings)
		if err != nil {
			return nil, err
		}
		return &ast.WhileStmt{WhilePos: n.WhilePos, Cond: cond, Body: body}, nil

	case *ast.ReturnStmt:
		out := &ast.ReturnStmt{ReturnPos: n.ReturnPos}
		if n.X != nil {
			x, err := spliceExpr(n.X, pointerBindings)
			if err != nil {
				return nil, err
			}
			out.X = x
		}
		return out, nil

	case *ast.OpaqueStmt:
		c := *n
		return &c, nil

	default:
		panic("instantiate: unhandled statement type in spliceStmt")
	}
}

// spliceExpr rewrites e, replacing any call whose callee is a pointer
// parameter name with the bound static or lambda argument.
func spliceExpr(e ast.Expr, pointerBindings map[string]*resolve.Binding) (ast.Expr, error) {
	switch x := e.(type) {
	case *ast.Ident:
		c := *x
		return &c, nil

	case *ast.CallExpr:
		if callee, ok := x.Callee.(*ast.Ident); ok {
			if binding, ok := pointerBindings[callee.Name]; ok {
				return spliceCallThroughPointer(x, binding, pointerBindings)
			}
		}
		newCallee, err := spliceExpr(x.Callee, pointerBindings)
		if err != nil {
			return nil, err
		}
		args := make([]ast.Expr, len(x.Args))
		for i, a := range x.Args {
			r, err := spliceExpr(a, pointerBindings)
			if err != nil {
				return nil, err
			}
			args[i] = r
		}
		return &ast.CallExpr{CallPos: x.CallPos, Callee: newCallee, Args: args}, nil

	case *ast.BinaryExpr:
		left, err := spliceExpr(x.Left, pointerBindings)
		if err != nil {
			return nil, err
		}
		right, err := spliceExpr(x.Right, pointerBindings)
		if err != nil {
			return nil, err
		}
		return &ast.BinaryExpr{OpPos: x.OpPos, Op: x.Op, Left: left, Right: right}, nil

	case *ast.DotExpr:
		inner, err := spliceExpr(x.X, pointerBindings)
		if err != nil {
			return nil, err
		}
		return &ast.DotExpr{DotPos: x.DotPos, X: inner, Field: x.Field}, nil

	case *ast.IndexExpr:
		inner, err := spliceExpr(x.X, pointerBindings)
		if err != nil {
			return nil, err
		}
		idx, err := spliceExpr(x.Index, pointerBindings)
		if err != nil {
			return nil, err
		}
		return &ast.IndexExpr{LBracketPos: x.LBracketPos, X: inner, Index: idx}, nil

	case *ast.Opaque:
		c := *x
		return &c, nil

	default:
		panic("instantiate: unhandled expression type in spliceExpr")
	}
}

// spliceCallThroughPointer replaces call — a call through a pointer
// parameter — with the expression its binding describes: the static
// target invoked with call's own (spliced) arguments, or the lambda's
// callee invoked with its argument templates substituted against
// call's actual arguments (spec.md §4.5 step 3, §4.3's desugared
// placeholder/capture/free forms).
func spliceCallThroughPointer(call *ast.CallExpr, binding *resolve.Binding, pointerBindings map[string]*resolve.Binding) (ast.Expr, error) {
	splicedActuals := make([]ast.Expr, len(call.Args))
	for i, a := range call.Args {
		r, err := spliceExpr(a, pointerBindings)
		if err != nil {
			return nil, err
		}
		splicedActuals[i] = r
	}

	switch binding.Kind {
	case resolve.BindStatic:
		return &ast.CallExpr{
			CallPos: call.CallPos,
			Callee:  &ast.Ident{NamePos: binding.Pos, Name: binding.StaticName},
			Args:    splicedActuals,
		}, nil

	case resolve.BindLambda:
		args := make([]ast.Expr, len(binding.LambdaArgs))
		for i, at := range binding.LambdaArgs {
			args[i] = substituteArgTemplate(at, splicedActuals)
		}
		return &ast.CallExpr{
			CallPos: call.CallPos,
			Callee:  ast.CloneExpr(binding.LambdaCallee),
			Args:    args,
		}, nil

	default:
		panic("instantiate: unknown binding kind")
	}
}

// substituteArgTemplate realizes a resolved ArgTemplate into a concrete
// expression at one specific call-through-the-pointer-parameter site:
// placeholders are replaced by that call's actual argument, captures
// become references to the specialization's appended parameter (which
// keeps the captured symbol's original name), and free identifiers and
// leaves pass through unchanged.
func substituteArgTemplate(at *resolve.ArgTemplate, actuals []ast.Expr) ast.Expr {
	switch at.Kind {
	case resolve.ArgPlaceholder:
		return ast.CloneExpr(actuals[at.PlaceholderIndex])
	case resolve.ArgCapture:
		return &ast.Ident{NamePos: at.Pos, Name: at.Capture.Name}
	case resolve.ArgFree:
		return &ast.Ident{NamePos: at.Pos, Name: at.FreeName}
	case resolve.ArgLeaf:
		return ast.CloneExpr(at.Leaf)
	case resolve.ArgCall:
		args := make([]ast.Expr, len(at.Args))
		for i, sub := range at.Args {
			args[i] = substituteArgTemplate(sub, actuals)
		}
		return &ast.CallExpr{CallPos: at.Pos, Callee: ast.CloneExpr(at.Callee), Args: args}
	case resolve.ArgBinary:
		return &ast.BinaryExpr{
			OpPos: at.Pos, Op: at.Op,
			Left:  substituteArgTemplate(at.Left, actuals),
			Right: substituteArgTemplate(at.Right, actuals),
		}
	case resolve.ArgDot:
		return &ast.DotExpr{DotPos: at.Pos, X: substituteArgTemplate(at.X, actuals), Field: at.Field}
	case resolve.ArgIndex:
		return &ast.IndexExpr{
			LBracketPos: at.Pos,
			X:           substituteArgTemplate(at.X, actuals),
			Index:       substituteArgTemplate(at.Index, actuals),
		}
	default:
		panic("instantiate: unknown ArgTemplate kind in substituteArgTemplate")
	}
}

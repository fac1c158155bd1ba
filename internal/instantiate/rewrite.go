package instantiate

import (
	"github.com/glslt-dev/glslt/ast"
	"github.com/glslt-dev/glslt/internal/scope"
)

// rewriteStmt walks s looking for calls to template functions,
// instantiating and splicing each one in turn (spec.md §4.5 step 6:
// this is also how a template call newly exposed by splicing a lambda
// into another template's body gets resolved, since rewriteStmt is the
// same pass used on a freshly-spliced specialization body). It pushes
// and pops ctx.tracker scopes exactly where spec.md §4.2 requires:
// compound statements and for-init clauses.
func rewriteStmt(s ast.Stmt, ctx *walkCtx) (ast.Stmt, error) {
	switch n := s.(type) {
	case *ast.Block:
		ctx.tracker.Push()
		stmts := make([]ast.Stmt, len(n.Stmts))
		for i, st := range n.Stmts {
			r, err := rewriteStmt(st, ctx)
			if err != nil {
				ctx.tracker.Pop()
				return nil, err
			}
			stmts[i] = r
		}
		ctx.tracker.Pop()
		return &ast.Block{LBracePos: n.LBracePos, Stmts: stmts}, nil

	case *ast.ExprStmt:
		x, err := rewriteExpr(n.X, ctx)
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
			r, err := rewriteExpr(init, ctx)
			if err != nil {
				return nil, err
			}
			inits[i] = r
		}
		for _, name := range n.Names {
			ctx.tracker.Declare(scope.Symbol{Name: name, Kind: scope.KindLocalVar, Type: n.Type, Origin: n})
		}
		return &ast.DeclStmt{DeclPos: n.DeclPos, Type: n.Type, Names: n.Names, Inits: inits}, nil

	case *ast.IfStmt:
		cond, err := rewriteExpr(n.Cond, ctx)
		if err != nil {
			return nil, err
		}
		then, err := rewriteStmt(n.Then, ctx)
		if err != nil {
			return nil, err
		}
		out := &ast.IfStmt{IfPos: n.IfPos, Cond: cond, Then: then}
		if n.Else != nil {
			els, err := rewriteStmt(n.Else, ctx)
			if err != nil {
				return nil, err
			}
			out.Else = els
		}
		return out, nil

	case *ast.ForStmt:
		ctx.tracker.Push()
		out := &ast.ForStmt{ForPos: n.ForPos}
		if n.Init != nil {
			init, err := rewriteStmt(n.Init, ctx)
			if err != nil {
				ctx.tracker.Pop()
				return nil, err
			}
			out.Init = init
		}
		if n.Cond != nil {
			cond, err := rewriteExpr(n.Cond, ctx)
			if err != nil {
				ctx.tracker.Pop()
				return nil, err
			}
			out.Cond = cond
		}
		if n.Post != nil {
			post, err := rewriteStmt(n.Post, ctx)
			if err != nil {
				ctx.tracker.Pop()
				return nil, err
			}
			out.Post = post
		}
		body, err := rewriteStmt(n.Body, ctx)
		ctx.tracker.Pop()
		if err != nil {
			return nil, err
		}
		out.Body = body
		return out, nil

	case *ast.WhileStmt:
		cond, err := rewriteExpr(n.Cond, ctx)
		if err != nil {
			return nil, err
		}
		body, err := rewriteStmt(n.Body, ctx)
		if err != nil {
			return nil, err
		}
		return &ast.WhileStmt{WhilePos: n.WhilePos, Cond: cond, Body: body}, nil

	case *ast.ReturnStmt:
		out := &ast.ReturnStmt{ReturnPos: n.ReturnPos}
		if n.X != nil {
			x, err := rewriteExpr(n.X, ctx)
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
		panic("instantiate: unhandled statement type in rewriteStmt")
	}
}

// rewriteExpr walks e. For most expression shapes it recurses into
// children first and then checks whether e itself is a call to a
// template. A call to a template is the exception: its pointer-
// parameter-position arguments are left unrewritten and handed to
// instantiateTemplate verbatim, since they are static/lambda bindings
// interpreted relative to the template's own signature, not ordinary
// nested call expressions (see the *ast.CallExpr case below). Only its
// value-parameter-position arguments get the ordinary recursive
// treatment.
func rewriteExpr(e ast.Expr, ctx *walkCtx) (ast.Expr, error) {
	switch x := e.(type) {
	case *ast.Ident:
		if _, isGlobal := globalName(ctx, x.Name); isGlobal {
			ctx.deps[x.Name] = true
		}
		c := *x
		return &c, nil

	case *ast.CallExpr:
		callee, isIdent := x.Callee.(*ast.Ident)
		if !isIdent {
			newCallee, err := rewriteExpr(x.Callee, ctx)
			if err != nil {
				return nil, err
			}
			args, err := rewriteExprList(x.Args, ctx)
			if err != nil {
				return nil, err
			}
			return &ast.CallExpr{CallPos: x.CallPos, Callee: newCallee, Args: args}, nil
		}

		if tmpl, ok := ctx.cls.Templates[callee.Name]; ok {
			// A pointer-parameter-position argument here is a static
			// binding or a lambda expression meaningful only relative
			// to tmpl's own pointer signature (spec.md §4.3) — it must
			// reach instantiateTemplate/resolver.ResolveArg verbatim,
			// not pre-walked as an ordinary nested call. Otherwise a
			// lambda like sdSphere(_1, 4.0) whose callee happens to
			// itself be a template gets mistaken here for a direct call
			// to that template with the raw placeholder _1 as its
			// actual argument. Recursive instantiation of such a lambda
			// callee still happens, just later: once this call site is
			// spliced into tmpl's body with placeholders replaced by
			// real expressions, the nested rewriteStmt pass over that
			// spliced body sees a genuine call with concrete arguments
			// and instantiates it then (§4.5 step 6).
			isPointerArg := make([]bool, len(x.Args))
			for _, paramIdx := range tmpl.PointerParams {
				if paramIdx >= 0 && paramIdx < len(isPointerArg) {
					isPointerArg[paramIdx] = true
				}
			}
			rawArgs := make([]ast.Expr, len(x.Args))
			for i, a := range x.Args {
				if isPointerArg[i] {
					rawArgs[i] = a
					continue
				}
				r, err := rewriteExpr(a, ctx)
				if err != nil {
					return nil, err
				}
				rawArgs[i] = r
			}

			spec, err := instantiateTemplate(tmpl, callee.Name, rawArgs, ctx)
			if err != nil {
				return nil, err
			}
			ctx.deps[spec.Name] = true
			return &ast.CallExpr{
				CallPos: x.CallPos,
				Callee:  &ast.Ident{NamePos: callee.NamePos, Name: spec.Name},
				Args:    callSiteArgs(tmpl, rawArgs, spec.Captures),
			}, nil
		}

		args, err := rewriteExprList(x.Args, ctx)
		if err != nil {
			return nil, err
		}
		if _, ok := ctx.cls.Ordinary[callee.Name]; ok {
			ctx.deps[callee.Name] = true
		}
		return &ast.CallExpr{CallPos: x.CallPos, Callee: &ast.Ident{NamePos: callee.NamePos, Name: callee.Name}, Args: args}, nil

	case *ast.BinaryExpr:
		left, err := rewriteExpr(x.Left, ctx)
		if err != nil {
			return nil, err
		}
		right, err := rewriteExpr(x.Right, ctx)
		if err != nil {
			return nil, err
		}
		return &ast.BinaryExpr{OpPos: x.OpPos, Op: x.Op, Left: left, Right: right}, nil

	case *ast.DotExpr:
		inner, err := rewriteExpr(x.X, ctx)
		if err != nil {
			return nil, err
		}
		return &ast.DotExpr{DotPos: x.DotPos, X: inner, Field: x.Field}, nil

	case *ast.IndexExpr:
		inner, err := rewriteExpr(x.X, ctx)
		if err != nil {
			return nil, err
		}
		idx, err := rewriteExpr(x.Index, ctx)
		if err != nil {
			return nil, err
		}
		return &ast.IndexExpr{LBracketPos: x.LBracketPos, X: inner, Index: idx}, nil

	case *ast.Opaque:
		c := *x
		return &c, nil

	default:
		panic("instantiate: unhandled expression type in rewriteExpr")
	}
}

// rewriteExprList rewrites each expression in exprs independently,
// short-circuiting on the first error.
func rewriteExprList(exprs []ast.Expr, ctx *walkCtx) ([]ast.Expr, error) {
	out := make([]ast.Expr, len(exprs))
	for i, e := range exprs {
		r, err := rewriteExpr(e, ctx)
		if err != nil {
			return nil, err
		}
		out[i] = r
	}
	return out, nil
}

// globalName reports whether name is a global variable or type known to
// cls, so bare (non-call) references can be recorded as dependencies.
func globalName(ctx *walkCtx, name string) (ast.Decl, bool) {
	for _, d := range ctx.cls.Passthrough {
		switch g := d.(type) {
		case *ast.GlobalVarDecl:
			if g.Name == name {
				return g, true
			}
		case *ast.TypeDecl:
			if g.Name == name {
				return g, true
			}
		}
	}
	return nil, false
}

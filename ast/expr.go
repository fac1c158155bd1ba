package ast

// Expr is implemented by every expression node the core needs to look
// inside. GLSL expression shapes the engine never has to rewrite
// (struct construction, swizzles used only as leaves, etc.) are
// represented by Opaque rather than given dedicated node types — the
// engine only classifies them as "not a call, not a bare identifier"
// for the purposes of spec.md §4.3's argument-shape rules.
type Expr interface {
	Node
	exprNode()
}

// Ident is a bare identifier reference: a variable, a function name, a
// placeholder (`_1`, `_2`, ...), or a named placeholder equal to a
// function-pointer parameter's name, bare or with a leading '_'. Which
// of these it is is a matter
// of scope resolution, not syntax — Ident carries no such distinction
// itself.
type Ident struct {
	NamePos Pos
	Name    string
}

func (i *Ident) Pos() Pos { return i.NamePos }
func (*Ident) exprNode()  {}

// CallExpr is `Callee(Args...)`. When Callee is an Ident naming a
// template function, this is a template call site (spec.md §4.3);
// when Callee is an Ident naming a pointer parameter, this is a call
// through a function pointer to be substituted by the instantiator
// (spec.md §4.5).
type CallExpr struct {
	CallPos Pos
	Callee  Expr
	Args    []Expr
}

func (c *CallExpr) Pos() Pos { return c.CallPos }
func (*CallExpr) exprNode()  {}

// BinaryExpr is `Left Op Right`. Template arguments that are arithmetic
// expressions are rejected with InvalidTemplateArg (spec.md §4.3); this
// node type exists so the resolver can recognize that shape instead of
// treating everything non-Ident/non-Call as opaque.
type BinaryExpr struct {
	OpPos Pos
	Op    string
	Left  Expr
	Right Expr
}

func (b *BinaryExpr) Pos() Pos { return b.OpPos }
func (*BinaryExpr) exprNode()  {}

// DotExpr is `Expr.Field`: struct member access or vector swizzle.
type DotExpr struct {
	DotPos Pos
	X      Expr
	Field  string
}

func (d *DotExpr) Pos() Pos { return d.DotPos }
func (*DotExpr) exprNode()  {}

// IndexExpr is `X[Index]`.
type IndexExpr struct {
	LBracketPos Pos
	X           Expr
	Index       Expr
}

func (e *IndexExpr) Pos() Pos { return e.LBracketPos }
func (*IndexExpr) exprNode()  {}

// Opaque is any expression shape the engine does not need to look
// inside: numeric/boolean literals, struct-construction expressions,
// and anything else. It is never a valid template argument on its own
// (spec.md §4.3 InvalidTemplateArg) except as a pure sub-expression
// nested inside a lambda's arguments, where it is passed through
// unchanged.
type Opaque struct {
	TokenPos Pos
	Text     string // verbatim source text
}

func (o *Opaque) Pos() Pos { return o.TokenPos }
func (*Opaque) exprNode()  {}

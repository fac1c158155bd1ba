package ast

// Stmt is implemented by every statement node. As with Expr, only the
// shapes the engine needs to traverse for scope tracking and call
// rewriting get dedicated types; everything else is Opaque.
type Stmt interface {
	Node
	stmtNode()
}

// Block is `{ Stmts... }`. Entering a Block pushes a new scope
// (spec.md §4.2).
type Block struct {
	LBracePos Pos
	Stmts     []Stmt
}

func (b *Block) Pos() Pos { return b.LBracePos }
func (*Block) stmtNode()  {}

// ExprStmt is a bare expression used as a statement, most commonly a
// call.
type ExprStmt struct {
	X Expr
}

func (s *ExprStmt) Pos() Pos { return s.X.Pos() }
func (*ExprStmt) stmtNode()  {}

// DeclStmt declares one or more local variables in the current scope.
// Every name it introduces is a capture candidate for any lambda that
// references it from a nested scope (spec.md §4.3).
type DeclStmt struct {
	DeclPos Pos
	Type    Type
	Names   []string
	Inits   []Expr // parallel to Names; nil entries mean "uninitialized"
}

func (s *DeclStmt) Pos() Pos { return s.DeclPos }
func (*DeclStmt) stmtNode()  {}

// IfStmt is `if (Cond) Then [else Else]`. Both arms get their own scope
// if they are Blocks; a bare statement arm does not introduce one.
type IfStmt struct {
	IfPos Pos
	Cond  Expr
	Then  Stmt
	Else  Stmt // nil if no else clause
}

func (s *IfStmt) Pos() Pos { return s.IfPos }
func (*IfStmt) stmtNode()  {}

// ForStmt is `for (Init; Cond; Post) Body`. The for-init clause gets
// its own scope per spec.md §4.2, distinct from Body's.
type ForStmt struct {
	ForPos Pos
	Init   Stmt // may be nil or a DeclStmt/ExprStmt
	Cond   Expr
	Post   Stmt
	Body   Stmt
}

func (s *ForStmt) Pos() Pos { return s.ForPos }
func (*ForStmt) stmtNode()  {}

// WhileStmt is `while (Cond) Body`.
type WhileStmt struct {
	WhilePos Pos
	Cond     Expr
	Body     Stmt
}

func (s *WhileStmt) Pos() Pos { return s.WhilePos }
func (*WhileStmt) stmtNode()  {}

// ReturnStmt is `return [X];`.
type ReturnStmt struct {
	ReturnPos Pos
	X         Expr // nil for a bare `return;`
}

func (s *ReturnStmt) Pos() Pos { return s.ReturnPos }
func (*ReturnStmt) stmtNode()  {}

// OpaqueStmt is any statement shape the engine does not need to look
// inside (switch, discard, break/continue, ...), preserved verbatim.
type OpaqueStmt struct {
	TokenPos Pos
	Text     string
}

func (s *OpaqueStmt) Pos() Pos { return s.TokenPos }
func (*OpaqueStmt) stmtNode()  {}

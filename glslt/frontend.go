package glslt

import "github.com/glslt-dev/glslt/ast"

// Frontend is the seam between this module and the external GLSL
// lexer/parser/printer spec.md §1 assumes: "the core consumes a fully-
// parsed translation unit and emits a fully-formed one." Nothing in
// this module implements one — a driver links in a concrete Frontend
// for whatever GLSL parsing library it chooses.
type Frontend interface {
	// Parse turns src (one already #include-stitched translation unit's
	// source text) into the AST Transform operates on.
	Parse(filename string, src []byte) (*ast.Unit, error)

	// Serialize turns a transformed unit back into GLSL source text.
	Serialize(unit *ast.Unit) ([]byte, error)
}

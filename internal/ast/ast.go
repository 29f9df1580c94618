// Package ast defines the kernel syntax tree and the Builder that
// assembles it. There is no text front end: designs are constructed
// through the Builder API, which stamps every node with a NodeID and
// every definition with a FuncID. Render turns a kernel back into
// deterministic pseudo-source with a span per node, which is what
// diagnostics point into.
package ast

// Node is anything the Builder stamped with an identity.
type Node interface {
	Node() NodeID
}

// Expr is an expression node.
type Expr interface {
	Node
	isExpr()
}

// Stmt is a statement node.
type Stmt interface {
	Node
	isStmt()
}

// Pattern is a match-arm pattern. Patterns carry no identity of their
// own; diagnostics about an arm point at its body block.
type Pattern interface {
	isPattern()
}

func (*Lit) isExpr()         {}
func (*Ident) isExpr()       {}
func (*Binary) isExpr()      {}
func (*Unary) isExpr()       {}
func (*If) isExpr()          {}
func (*Match) isExpr()       {}
func (*TupleExpr) isExpr()   {}
func (*ArrayExpr) isExpr()   {}
func (*Repeat) isExpr()      {}
func (*StructExpr) isExpr()  {}
func (*EnumExpr) isExpr()    {}
func (*FieldAccess) isExpr() {}
func (*IndexAccess) isExpr() {}
func (*Call) isExpr()        {}
func (*AsBits) isExpr()      {}
func (*AsSigned) isExpr()    {}

func (*Let) isStmt()      {}
func (*Assign) isStmt()   {}
func (*ExprStmt) isStmt() {}

func (*VariantPat) isPattern() {}
func (*LitPat) isPattern()     {}
func (*WildPat) isPattern()    {}

package ast

import (
	"silica/internal/types"
)

// Block is a statement list with a result expression. The result of a
// kernel body is the kernel's return value; the result of an if or
// match arm is the value of that arm.
type Block struct {
	id     NodeID
	Stmts  []Stmt
	Result Expr
}

// Let binds a name to a value, with an optional Kind ascription.
type Let struct {
	id    NodeID
	Name  string
	Typed bool
	Kind  types.Kind
	Init  Expr
}

// Assign rebinds a name or a sub-field of one. Lhs is an Ident or a
// FieldAccess/IndexAccess chain rooted at an Ident.
type Assign struct {
	id  NodeID
	Lhs Expr
	Rhs Expr
}

// ExprStmt evaluates an expression for its effect on inference only;
// its value is dropped.
type ExprStmt struct {
	id NodeID
	X  Expr
}

func (b *Block) Node() NodeID    { return b.id }
func (s *Let) Node() NodeID      { return s.id }
func (s *Assign) Node() NodeID   { return s.id }
func (s *ExprStmt) Node() NodeID { return s.id }

package ast

import (
	"silica/internal/types"
)

// BinOp enumerates binary operator kinds.
type BinOp uint8

const (
	BinAdd BinOp = iota + 1
	BinSub
	BinMul
	BinAnd
	BinOr
	BinXor
	BinShl
	BinShr
	BinEq
	BinNe
	BinLt
	BinLe
	BinGt
	BinGe
)

// String returns the symbol representation of a binary operator.
func (op BinOp) String() string {
	switch op {
	case BinAdd:
		return "+"
	case BinSub:
		return "-"
	case BinMul:
		return "*"
	case BinAnd:
		return "&"
	case BinOr:
		return "|"
	case BinXor:
		return "^"
	case BinShl:
		return "<<"
	case BinShr:
		return ">>"
	case BinEq:
		return "=="
	case BinNe:
		return "!="
	case BinLt:
		return "<"
	case BinLe:
		return "<="
	case BinGt:
		return ">"
	case BinGe:
		return ">="
	default:
		return "?"
	}
}

// IsCompare reports whether the operator yields a b1 regardless of its
// operand width.
func (op BinOp) IsCompare() bool {
	return op >= BinEq && op <= BinGe
}

// IsShift reports whether the operator takes an independent rhs width.
func (op BinOp) IsShift() bool {
	return op == BinShl || op == BinShr
}

// UnOp enumerates unary operator kinds.
type UnOp uint8

const (
	UnNeg UnOp = iota + 1
	UnNot
	UnAll
	UnAny
	UnXor
)

// String returns the rendered representation of a unary operator.
func (op UnOp) String() string {
	switch op {
	case UnNeg:
		return "-"
	case UnNot:
		return "!"
	case UnAll:
		return ".all()"
	case UnAny:
		return ".any()"
	case UnXor:
		return ".xor()"
	default:
		return "?"
	}
}

// IsReduce reports whether the operator folds its operand to a b1.
func (op UnOp) IsReduce() bool {
	return op == UnAll || op == UnAny || op == UnXor
}

// Lit is an integer literal. A typed literal carries its Kind
// explicitly; a bare literal takes its Kind from context during
// inference.
type Lit struct {
	id    NodeID
	Value int64
	Typed bool
	Kind  types.Kind
}

// Ident names a parameter or a let binding.
type Ident struct {
	id   NodeID
	Name string
}

// Binary applies Op to Lhs and Rhs.
type Binary struct {
	id  NodeID
	Op  BinOp
	Lhs Expr
	Rhs Expr
}

// Unary applies Op to X.
type Unary struct {
	id NodeID
	Op UnOp
	X  Expr
}

// If selects between two blocks on a b1 condition.
type If struct {
	id   NodeID
	Cond Expr
	Then *Block
	Else *Block
}

// Match scrutinizes an enum or bit value and selects the arm whose
// pattern matches its discriminant.
type Match struct {
	id    NodeID
	Scrut Expr
	Arms  []MatchArm
}

// MatchArm pairs a pattern with the block it selects.
type MatchArm struct {
	Pat  Pattern
	Body *Block
}

// VariantPat matches one enum variant, optionally binding its payload.
type VariantPat struct {
	Variant string
	Bind    string
}

// LitPat matches a concrete discriminant or bit value.
type LitPat struct {
	Value int64
}

// WildPat matches anything.
type WildPat struct{}

// TupleExpr constructs a tuple from its items.
type TupleExpr struct {
	id    NodeID
	Items []Expr
}

// ArrayExpr constructs an array from its items. All items share one
// element kind.
type ArrayExpr struct {
	id    NodeID
	Items []Expr
}

// Repeat constructs an array of Len copies of Value.
type Repeat struct {
	id    NodeID
	Value Expr
	Len   int
}

// FieldInit initializes one struct field.
type FieldInit struct {
	Name  string
	Value Expr
}

// StructExpr constructs a struct value of an explicit Kind. Fields not
// listed take their bits from Rest, which must be a value of the same
// Kind; without Rest every field must be listed.
type StructExpr struct {
	id     NodeID
	Kind   types.Kind
	Fields []FieldInit
	Rest   Expr
}

// EnumExpr constructs an enum value of an explicit Kind from a variant
// name and an optional payload.
type EnumExpr struct {
	id      NodeID
	Kind    types.Kind
	Variant string
	Payload Expr
}

// FieldAccess reads a named struct field.
type FieldAccess struct {
	id   NodeID
	Base Expr
	Name string
}

// IndexAccess reads an array element or a tuple position. When Dyn is
// nil the access is static at position Index; otherwise Dyn is a
// hardware value selecting the element, which is only valid on arrays.
type IndexAccess struct {
	id    NodeID
	Base  Expr
	Index int
	Dyn   Expr
}

// IsDynamic reports whether the element is selected by a hardware
// value rather than a static position.
func (e *IndexAccess) IsDynamic() bool { return e.Dyn != nil }

// Call invokes another definition. Exactly one of Kernel and Extern is
// set.
type Call struct {
	id     NodeID
	Kernel *Kernel
	Extern *ExternDecl
	Args   []Expr
}

// Fn returns the identity of the called definition.
func (e *Call) Fn() FuncID {
	if e.Kernel != nil {
		return e.Kernel.Fn
	}
	return e.Extern.Fn
}

// CalleeName returns the name of the called definition.
func (e *Call) CalleeName() string {
	if e.Kernel != nil {
		return e.Kernel.Name
	}
	return e.Extern.Name
}

// AsBits reinterprets X as an unsigned value of the given width.
type AsBits struct {
	id    NodeID
	X     Expr
	Width int
}

// AsSigned reinterprets X as a signed value of the given width.
type AsSigned struct {
	id    NodeID
	X     Expr
	Width int
}

func (e *Lit) Node() NodeID         { return e.id }
func (e *Ident) Node() NodeID       { return e.id }
func (e *Binary) Node() NodeID      { return e.id }
func (e *Unary) Node() NodeID       { return e.id }
func (e *If) Node() NodeID          { return e.id }
func (e *Match) Node() NodeID       { return e.id }
func (e *TupleExpr) Node() NodeID   { return e.id }
func (e *ArrayExpr) Node() NodeID   { return e.id }
func (e *Repeat) Node() NodeID      { return e.id }
func (e *StructExpr) Node() NodeID  { return e.id }
func (e *EnumExpr) Node() NodeID    { return e.id }
func (e *FieldAccess) Node() NodeID { return e.id }
func (e *IndexAccess) Node() NodeID { return e.id }
func (e *Call) Node() NodeID        { return e.id }
func (e *AsBits) Node() NodeID      { return e.id }
func (e *AsSigned) Node() NodeID    { return e.id }

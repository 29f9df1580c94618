package ast

import (
	"encoding/binary"
	"hash/fnv"

	"golang.org/x/text/unicode/norm"

	"silica/internal/types"
)

// Builder is the identity allocation context for one design. Every
// node built through it gets the next NodeID; every definition gets a
// FuncID hashed from its NFC-normalized name and the definition
// sequence number. Two runs building the same design produce the same
// identities; there is no global state.
type Builder struct {
	nextNode NodeID
	nextDef  uint64
}

func NewBuilder() *Builder {
	return &Builder{}
}

func (b *Builder) node() NodeID {
	b.nextNode++
	return b.nextNode
}

func (b *Builder) funcID(name string) FuncID {
	b.nextDef++
	h := fnv.New64a()
	h.Write(norm.NFC.Bytes([]byte(name)))
	var seq [8]byte
	binary.LittleEndian.PutUint64(seq[:], b.nextDef)
	h.Write(seq[:])
	return FuncID(h.Sum64())
}

// Lit builds a bare literal whose Kind is inferred from context.
func (b *Builder) Lit(v int64) *Lit {
	return &Lit{id: b.node(), Value: v}
}

// TypedLit builds a literal with an explicit Kind.
func (b *Builder) TypedLit(v int64, k types.Kind) *Lit {
	return &Lit{id: b.node(), Value: v, Typed: true, Kind: k}
}

func (b *Builder) Ident(name string) *Ident {
	return &Ident{id: b.node(), Name: name}
}

func (b *Builder) Binary(op BinOp, lhs, rhs Expr) *Binary {
	return &Binary{id: b.node(), Op: op, Lhs: lhs, Rhs: rhs}
}

func (b *Builder) Unary(op UnOp, x Expr) *Unary {
	return &Unary{id: b.node(), Op: op, X: x}
}

func (b *Builder) If(cond Expr, then, els *Block) *If {
	return &If{id: b.node(), Cond: cond, Then: then, Else: els}
}

func (b *Builder) Match(scrut Expr, arms ...MatchArm) *Match {
	return &Match{id: b.node(), Scrut: scrut, Arms: arms}
}

func (b *Builder) Tuple(items ...Expr) *TupleExpr {
	return &TupleExpr{id: b.node(), Items: items}
}

func (b *Builder) Array(items ...Expr) *ArrayExpr {
	return &ArrayExpr{id: b.node(), Items: items}
}

func (b *Builder) Repeat(value Expr, n int) *Repeat {
	return &Repeat{id: b.node(), Value: value, Len: n}
}

// Struct builds a struct value listing every field.
func (b *Builder) Struct(kind types.Kind, fields ...FieldInit) *StructExpr {
	return &StructExpr{id: b.node(), Kind: kind, Fields: fields}
}

// StructUpdate builds a struct value that takes unlisted fields from
// rest.
func (b *Builder) StructUpdate(kind types.Kind, rest Expr, fields ...FieldInit) *StructExpr {
	return &StructExpr{id: b.node(), Kind: kind, Fields: fields, Rest: rest}
}

// Enum builds an enum value; payload is nil for empty variants.
func (b *Builder) Enum(kind types.Kind, variant string, payload Expr) *EnumExpr {
	return &EnumExpr{id: b.node(), Kind: kind, Variant: variant, Payload: payload}
}

func (b *Builder) Field(base Expr, name string) *FieldAccess {
	return &FieldAccess{id: b.node(), Base: base, Name: name}
}

// Index builds a static element access.
func (b *Builder) Index(base Expr, i int) *IndexAccess {
	return &IndexAccess{id: b.node(), Base: base, Index: i}
}

// IndexDyn builds a dynamic element access selected by a hardware
// value.
func (b *Builder) IndexDyn(base Expr, idx Expr) *IndexAccess {
	return &IndexAccess{id: b.node(), Base: base, Dyn: idx}
}

// Call builds a call to an in-source kernel.
func (b *Builder) Call(k *Kernel, args ...Expr) *Call {
	return &Call{id: b.node(), Kernel: k, Args: args}
}

// CallExtern builds a call to an opaque primitive.
func (b *Builder) CallExtern(d *ExternDecl, args ...Expr) *Call {
	return &Call{id: b.node(), Extern: d, Args: args}
}

func (b *Builder) AsBits(x Expr, width int) *AsBits {
	return &AsBits{id: b.node(), X: x, Width: width}
}

func (b *Builder) AsSigned(x Expr, width int) *AsSigned {
	return &AsSigned{id: b.node(), X: x, Width: width}
}

func (b *Builder) Block(stmts []Stmt, result Expr) *Block {
	return &Block{id: b.node(), Stmts: stmts, Result: result}
}

// Let binds a name; its Kind is inferred from the initializer.
func (b *Builder) Let(name string, init Expr) *Let {
	return &Let{id: b.node(), Name: name, Init: init}
}

// LetTyped binds a name with an explicit Kind ascription.
func (b *Builder) LetTyped(name string, kind types.Kind, init Expr) *Let {
	return &Let{id: b.node(), Name: name, Typed: true, Kind: kind, Init: init}
}

func (b *Builder) Assign(lhs, rhs Expr) *Assign {
	return &Assign{id: b.node(), Lhs: lhs, Rhs: rhs}
}

func (b *Builder) ExprStmt(x Expr) *ExprStmt {
	return &ExprStmt{id: b.node(), X: x}
}

func (b *Builder) Param(name string, kind types.Kind) Param {
	return Param{id: b.node(), Name: name, Kind: kind}
}

// Kernel builds a function definition and allocates its identity.
func (b *Builder) Kernel(name string, params []Param, ret types.Kind, body *Block) *Kernel {
	return &Kernel{
		id:     b.node(),
		Name:   name,
		Fn:     b.funcID(name),
		Params: params,
		Ret:    ret,
		Body:   body,
	}
}

// Extern declares an opaque primitive with an optional evaluation
// hook.
func (b *Builder) Extern(name string, params []Param, ret types.Kind, body string, eval func([]types.TypedBits) (types.TypedBits, error)) *ExternDecl {
	return &ExternDecl{
		id:     b.node(),
		Name:   name,
		Fn:     b.funcID(name),
		Params: params,
		Ret:    ret,
		Body:   body,
		Eval:   eval,
	}
}

package rif

import (
	"silica/internal/ast"
)

// OpKind enumerates instruction kinds in the register form.
type OpKind uint8

const (
	// OpAssign copies one slot into a register.
	OpAssign OpKind = iota + 1
	// OpBinary applies a binary operator to two slots.
	OpBinary
	// OpUnary applies a unary operator to one slot.
	OpUnary
	// OpSelect picks one of two slots on a one-bit condition.
	OpSelect
	// OpIndex reads the sub-value a path addresses.
	OpIndex
	// OpSplice rewrites the sub-value a path addresses, leaving the rest of
	// the bits intact.
	OpSplice
	// OpTuple packs slots into a tuple value.
	OpTuple
	// OpArray packs slots into an array value.
	OpArray
	// OpStruct packs named fields into a struct value, optionally over the
	// bits of a rest slot.
	OpStruct
	// OpEnum stamps a payload into an enum template literal.
	OpEnum
	// OpRepeat packs one slot repeated a fixed number of times.
	OpRepeat
	// OpCase selects a slot by matching a discriminant against a table.
	OpCase
	// OpExec calls another function.
	OpExec
	// OpAsBits casts a slot to an unsigned vector of a fixed width.
	OpAsBits
	// OpAsSigned casts a slot to a signed vector of a fixed width.
	OpAsSigned
)

func (k OpKind) String() string {
	switch k {
	case OpAssign:
		return "assign"
	case OpBinary:
		return "binary"
	case OpUnary:
		return "unary"
	case OpSelect:
		return "select"
	case OpIndex:
		return "index"
	case OpSplice:
		return "splice"
	case OpTuple:
		return "tuple"
	case OpArray:
		return "array"
	case OpStruct:
		return "struct"
	case OpEnum:
		return "enum"
	case OpRepeat:
		return "repeat"
	case OpCase:
		return "case"
	case OpExec:
		return "exec"
	case OpAsBits:
		return "as_bits"
	case OpAsSigned:
		return "as_signed"
	default:
		return "?"
	}
}

// Op is one instruction. Exactly the payload field belonging to Kind is
// meaningful. Node ties the op back to the expression it lowers for
// diagnostics.
type Op struct {
	Kind OpKind     `msgpack:"kind"`
	Node ast.NodeID `msgpack:"node"`

	Assign AssignOp `msgpack:"assign,omitempty"`
	Binary BinaryOp `msgpack:"binary,omitempty"`
	Unary  UnaryOp  `msgpack:"unary,omitempty"`
	Select SelectOp `msgpack:"select,omitempty"`
	Index  IndexOp  `msgpack:"index,omitempty"`
	Splice SpliceOp `msgpack:"splice,omitempty"`
	Tuple  TupleOp  `msgpack:"tuple,omitempty"`
	Array  ArrayOp  `msgpack:"array,omitempty"`
	Struct StructOp `msgpack:"struct,omitempty"`
	Enum   EnumOp   `msgpack:"enum,omitempty"`
	Repeat RepeatOp `msgpack:"repeat,omitempty"`
	Case   CaseOp   `msgpack:"case,omitempty"`
	Exec   ExecOp   `msgpack:"exec,omitempty"`
	Cast   CastOp   `msgpack:"cast,omitempty"` // OpAsBits, OpAsSigned
}

// AssignOp copies Src into Dst.
type AssignOp struct {
	Dst Slot `msgpack:"dst"`
	Src Slot `msgpack:"src"`
}

// BinaryOp computes Dst = Left op Right.
type BinaryOp struct {
	Op    ast.BinOp `msgpack:"op"`
	Dst   Slot      `msgpack:"dst"`
	Left  Slot      `msgpack:"left"`
	Right Slot      `msgpack:"right"`
}

// UnaryOp computes Dst = op X.
type UnaryOp struct {
	Op  ast.UnOp `msgpack:"op"`
	Dst Slot     `msgpack:"dst"`
	X   Slot     `msgpack:"x"`
}

// SelectOp computes Dst = Cond ? True : False.
type SelectOp struct {
	Dst   Slot `msgpack:"dst"`
	Cond  Slot `msgpack:"cond"`
	True  Slot `msgpack:"true"`
	False Slot `msgpack:"false"`
}

// IndexOp reads Base at Path into Dst. The path may contain dynamic
// elements; they resolve at evaluation time.
type IndexOp struct {
	Dst  Slot `msgpack:"dst"`
	Base Slot `msgpack:"base"`
	Path Path `msgpack:"path"`
}

// SpliceOp writes Value over the range Path addresses within Orig and puts
// the result in Dst.
type SpliceOp struct {
	Dst   Slot `msgpack:"dst"`
	Orig  Slot `msgpack:"orig"`
	Path  Path `msgpack:"path"`
	Value Slot `msgpack:"value"`
}

// TupleOp packs Elems into Dst.
type TupleOp struct {
	Dst   Slot   `msgpack:"dst"`
	Elems []Slot `msgpack:"elems"`
}

// ArrayOp packs Elems into Dst.
type ArrayOp struct {
	Dst   Slot   `msgpack:"dst"`
	Elems []Slot `msgpack:"elems"`
}

// FieldValue initializes one named struct field.
type FieldValue struct {
	Name  string `msgpack:"name"`
	Value Slot   `msgpack:"value"`
}

// StructOp packs Fields into Dst. Fields not listed take their bits from
// Rest; when Rest is empty every field is listed.
type StructOp struct {
	Dst    Slot         `msgpack:"dst"`
	Fields []FieldValue `msgpack:"fields"`
	Rest   Slot         `msgpack:"rest,omitempty"`
}

// EnumOp builds an enum value in Dst from a template literal carrying the
// variant's discriminant, stamping Payload over the variant's payload range
// when the variant has one.
type EnumOp struct {
	Dst      Slot   `msgpack:"dst"`
	Template LitID  `msgpack:"template"`
	Variant  string `msgpack:"variant"`
	Payload  Slot   `msgpack:"payload,omitempty"`
}

// RepeatOp packs Len copies of Value into Dst.
type RepeatOp struct {
	Dst   Slot `msgpack:"dst"`
	Value Slot `msgpack:"value"`
	Len   int  `msgpack:"len"`
}

// CaseArg is one match arm's discriminant pattern: a literal-table entry or
// the wildcard.
type CaseArg struct {
	Wild bool  `msgpack:"wild,omitempty"`
	Lit  LitID `msgpack:"lit,omitempty"`
}

// CaseEntry pairs a discriminant pattern with the slot it selects.
type CaseEntry struct {
	Arg   CaseArg `msgpack:"arg"`
	Value Slot    `msgpack:"value"`
}

// CaseOp matches Discr against Table in order and copies the first matching
// entry's slot into Dst. A wildcard entry, when present, is last.
type CaseOp struct {
	Dst   Slot        `msgpack:"dst"`
	Discr Slot        `msgpack:"discr"`
	Table []CaseEntry `msgpack:"table"`
}

// ExecOp calls the function identified by Fn with Args and puts its return
// value in Dst. The callee is described by the object's external table.
type ExecOp struct {
	Dst  Slot       `msgpack:"dst"`
	Fn   ast.FuncID `msgpack:"fn"`
	Args []Slot     `msgpack:"args"`
}

// CastOp reinterprets X at the given width into Dst. The signedness of the
// result comes from the op kind.
type CastOp struct {
	Dst   Slot `msgpack:"dst"`
	X     Slot `msgpack:"x"`
	Width int  `msgpack:"width"`
}

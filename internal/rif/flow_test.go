package rif

import (
	"testing"

	"silica/internal/ast"
)

func slotsEqual(a, b []Slot) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestDestAndReads(t *testing.T) {
	tests := []struct {
		name  string
		op    Op
		dest  Slot
		reads []Slot
	}{
		{
			"assign",
			Op{Kind: OpAssign, Assign: AssignOp{Dst: Reg(1), Src: Lit(0)}},
			Reg(1), []Slot{Lit(0)},
		},
		{
			"binary",
			Op{Kind: OpBinary, Binary: BinaryOp{Op: ast.BinAdd, Dst: Reg(2), Left: Reg(0), Right: Reg(1)}},
			Reg(2), []Slot{Reg(0), Reg(1)},
		},
		{
			"unary",
			Op{Kind: OpUnary, Unary: UnaryOp{Op: ast.UnNot, Dst: Reg(1), X: Reg(0)}},
			Reg(1), []Slot{Reg(0)},
		},
		{
			"select",
			Op{Kind: OpSelect, Select: SelectOp{Dst: Reg(3), Cond: Reg(0), True: Reg(1), False: Reg(2)}},
			Reg(3), []Slot{Reg(0), Reg(1), Reg(2)},
		},
		{
			"index with dynamic path",
			Op{Kind: OpIndex, Index: IndexOp{Dst: Reg(2), Base: Reg(0), Path: Path{}.Fld("mem").Dyn(Reg(1))}},
			Reg(2), []Slot{Reg(0), Reg(1)},
		},
		{
			"splice",
			Op{Kind: OpSplice, Splice: SpliceOp{Dst: Reg(3), Orig: Reg(0), Path: Path{}.Idx(2).Dyn(Reg(1)), Value: Reg(2)}},
			Reg(3), []Slot{Reg(0), Reg(1), Reg(2)},
		},
		{
			"tuple",
			Op{Kind: OpTuple, Tuple: TupleOp{Dst: Reg(2), Elems: []Slot{Reg(0), Lit(1)}}},
			Reg(2), []Slot{Reg(0), Lit(1)},
		},
		{
			"array",
			Op{Kind: OpArray, Array: ArrayOp{Dst: Reg(1), Elems: []Slot{Reg(0), Reg(0)}}},
			Reg(1), []Slot{Reg(0), Reg(0)},
		},
		{
			"struct with rest",
			Op{Kind: OpStruct, Struct: StructOp{Dst: Reg(2), Fields: []FieldValue{{Name: "acc", Value: Reg(0)}}, Rest: Reg(1)}},
			Reg(2), []Slot{Reg(0), Reg(1)},
		},
		{
			"enum with payload",
			Op{Kind: OpEnum, Enum: EnumOp{Dst: Reg(1), Template: 2, Variant: "Data", Payload: Reg(0)}},
			Reg(1), []Slot{Lit(2), Reg(0)},
		},
		{
			"enum without payload",
			Op{Kind: OpEnum, Enum: EnumOp{Dst: Reg(1), Template: 2, Variant: "Idle"}},
			Reg(1), []Slot{Lit(2)},
		},
		{
			"repeat",
			Op{Kind: OpRepeat, Repeat: RepeatOp{Dst: Reg(1), Value: Reg(0), Len: 4}},
			Reg(1), []Slot{Reg(0)},
		},
		{
			"case",
			Op{Kind: OpCase, Case: CaseOp{Dst: Reg(3), Discr: Reg(0), Table: []CaseEntry{
				{Arg: CaseArg{Lit: 0}, Value: Reg(1)},
				{Arg: CaseArg{Wild: true}, Value: Reg(2)},
			}}},
			Reg(3), []Slot{Reg(0), Lit(0), Reg(1), Reg(2)},
		},
		{
			"exec",
			Op{Kind: OpExec, Exec: ExecOp{Dst: Reg(2), Fn: 7, Args: []Slot{Reg(0), Reg(1)}}},
			Reg(2), []Slot{Reg(0), Reg(1)},
		},
		{
			"as_bits",
			Op{Kind: OpAsBits, Cast: CastOp{Dst: Reg(1), X: Reg(0), Width: 4}},
			Reg(1), []Slot{Reg(0)},
		},
		{
			"as_signed",
			Op{Kind: OpAsSigned, Cast: CastOp{Dst: Reg(1), X: Reg(0), Width: 4}},
			Reg(1), []Slot{Reg(0)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.op.Dest(); got != tt.dest {
				t.Fatalf("Dest = %s, want %s", got, tt.dest)
			}
			if got := tt.op.Reads(); !slotsEqual(got, tt.reads) {
				t.Fatalf("Reads = %v, want %v", got, tt.reads)
			}
		})
	}
}

func TestRewriteReads(t *testing.T) {
	subst := func(s Slot) Slot {
		if s == Reg(1) {
			return Lit(5)
		}
		return s
	}

	op := Op{Kind: OpBinary, Binary: BinaryOp{Op: ast.BinAdd, Dst: Reg(1), Left: Reg(1), Right: Reg(0)}}
	op.RewriteReads(subst)
	if op.Binary.Left != Lit(5) || op.Binary.Right != Reg(0) {
		t.Fatalf("binary reads = %s, %s", op.Binary.Left, op.Binary.Right)
	}
	if op.Binary.Dst != Reg(1) {
		t.Fatalf("RewriteReads touched dest: %s", op.Binary.Dst)
	}

	op = Op{Kind: OpIndex, Index: IndexOp{Dst: Reg(2), Base: Reg(0), Path: Path{}.Fld("mem").Dyn(Reg(1))}}
	op.RewriteReads(subst)
	if got := op.Index.Path.String(); got != ".mem[[l5]]" {
		t.Fatalf("path after rewrite = %s", got)
	}

	op = Op{Kind: OpCase, Case: CaseOp{Dst: Reg(2), Discr: Reg(1), Table: []CaseEntry{
		{Arg: CaseArg{Lit: 3}, Value: Reg(1)},
	}}}
	op.RewriteReads(func(s Slot) Slot {
		if s == Reg(1) {
			return Reg(0)
		}
		return s
	})
	if op.Case.Discr != Reg(0) || op.Case.Table[0].Value != Reg(0) {
		t.Fatalf("case reads = %s, %s", op.Case.Discr, op.Case.Table[0].Value)
	}
	if op.Case.Table[0].Arg.Lit != 3 {
		t.Fatalf("case pattern changed: l%d", op.Case.Table[0].Arg.Lit)
	}
}

func TestRewriteDest(t *testing.T) {
	op := Op{Kind: OpSelect, Select: SelectOp{Dst: Reg(3), Cond: Reg(0), True: Reg(1), False: Reg(2)}}
	op.RewriteDest(func(s Slot) Slot {
		if s == Reg(3) {
			return Reg(7)
		}
		return s
	})
	if op.Select.Dst != Reg(7) {
		t.Fatalf("dest = %s", op.Select.Dst)
	}
	if op.Select.Cond != Reg(0) {
		t.Fatalf("RewriteDest touched reads: %s", op.Select.Cond)
	}
}

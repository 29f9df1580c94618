package passes

import (
	"errors"
	"strings"
	"testing"

	"silica/internal/ast"
	"silica/internal/rif"
	"silica/internal/types"
)

func stateKind() types.Kind {
	return types.MakeStruct("State",
		types.Field{Name: "acc", Kind: types.MakeBits(8)},
		types.Field{Name: "mem", Kind: types.MakeArray(types.MakeBits(4), 4)},
	)
}

func modeKind() types.Kind {
	return types.MakeEnum("Mode",
		[]types.Variant{
			{Name: "Idle", Discr: 0, Payload: types.MakeEmpty()},
			{Name: "Run", Discr: 1, Payload: types.MakeBits(8)},
		},
		types.DiscriminantLayout{Width: 1, Alignment: types.AlignLowBits, Type: types.DiscUnsigned},
	)
}

// wellFormed covers every op kind with consistent kinds and a clean data
// flow, so both check passes must accept it unchanged.
func wellFormed() *rif.Object {
	state := stateKind()
	mode := modeKind()
	return &rif.Object{
		Name:      "well_formed",
		Fn:        0x2a,
		Arguments: []rif.RegID{0, 1, 2, 3},
		Return:    rif.Reg(20),
		Ops: []rif.Op{
			{Kind: rif.OpAssign, Node: 1, Assign: rif.AssignOp{Dst: rif.Reg(4), Src: rif.Reg(2)}},
			{Kind: rif.OpBinary, Node: 2, Binary: rif.BinaryOp{Op: ast.BinAdd, Dst: rif.Reg(5), Left: rif.Reg(2), Right: rif.Lit(0)}},
			{Kind: rif.OpBinary, Node: 3, Binary: rif.BinaryOp{Op: ast.BinEq, Dst: rif.Reg(6), Left: rif.Reg(2), Right: rif.Lit(0)}},
			{Kind: rif.OpBinary, Node: 4, Binary: rif.BinaryOp{Op: ast.BinShl, Dst: rif.Reg(7), Left: rif.Reg(2), Right: rif.Reg(3)}},
			{Kind: rif.OpUnary, Node: 5, Unary: rif.UnaryOp{Op: ast.UnNot, Dst: rif.Reg(8), X: rif.Reg(2)}},
			{Kind: rif.OpUnary, Node: 6, Unary: rif.UnaryOp{Op: ast.UnAny, Dst: rif.Reg(9), X: rif.Reg(2)}},
			{Kind: rif.OpSelect, Node: 7, Select: rif.SelectOp{Dst: rif.Reg(10), Cond: rif.Reg(0), True: rif.Reg(2), False: rif.Reg(4)}},
			{Kind: rif.OpIndex, Node: 8, Index: rif.IndexOp{Dst: rif.Reg(11), Base: rif.Reg(1), Path: rif.Path{}.Fld("acc")}},
			{Kind: rif.OpIndex, Node: 9, Index: rif.IndexOp{Dst: rif.Reg(12), Base: rif.Reg(1), Path: rif.Path{}.Fld("mem").Dyn(rif.Reg(3))}},
			{Kind: rif.OpSplice, Node: 10, Splice: rif.SpliceOp{Dst: rif.Reg(13), Orig: rif.Reg(1), Path: rif.Path{}.Fld("mem").Dyn(rif.Reg(3)), Value: rif.Reg(12)}},
			{Kind: rif.OpTuple, Node: 11, Tuple: rif.TupleOp{Dst: rif.Reg(14), Elems: []rif.Slot{rif.Reg(2), rif.Reg(3)}}},
			{Kind: rif.OpArray, Node: 12, Array: rif.ArrayOp{Dst: rif.Reg(15), Elems: []rif.Slot{rif.Reg(3), rif.Reg(3)}}},
			{Kind: rif.OpStruct, Node: 13, Struct: rif.StructOp{Dst: rif.Reg(16), Fields: []rif.FieldValue{{Name: "acc", Value: rif.Reg(2)}}, Rest: rif.Reg(1)}},
			{Kind: rif.OpEnum, Node: 14, Enum: rif.EnumOp{Dst: rif.Reg(17), Template: 1, Variant: "Run", Payload: rif.Reg(2)}},
			{Kind: rif.OpEnum, Node: 15, Enum: rif.EnumOp{Dst: rif.Reg(18), Template: 1, Variant: "Idle", Payload: rif.Empty()}},
			{Kind: rif.OpRepeat, Node: 16, Repeat: rif.RepeatOp{Dst: rif.Reg(19), Value: rif.Reg(3), Len: 4}},
			{Kind: rif.OpCase, Node: 17, Case: rif.CaseOp{Dst: rif.Reg(20), Discr: rif.Reg(2), Table: []rif.CaseEntry{
				{Arg: rif.CaseArg{Lit: 0}, Value: rif.Reg(4)},
				{Arg: rif.CaseArg{Wild: true}, Value: rif.Reg(2)},
			}}},
			{Kind: rif.OpExec, Node: 18, Exec: rif.ExecOp{Dst: rif.Reg(21), Fn: 0x99, Args: []rif.Slot{rif.Reg(2)}}},
			{Kind: rif.OpAsBits, Node: 19, Cast: rif.CastOp{Dst: rif.Reg(22), X: rif.Reg(2), Width: 4}},
			{Kind: rif.OpAsSigned, Node: 20, Cast: rif.CastOp{Dst: rif.Reg(23), X: rif.Reg(2), Width: 8}},
			{Kind: rif.OpIndex, Node: 21, Index: rif.IndexOp{Dst: rif.Reg(24), Base: rif.Reg(17), Path: rif.Path{}.Disc()}},
			{Kind: rif.OpIndex, Node: 22, Index: rif.IndexOp{Dst: rif.Reg(25), Base: rif.Reg(17), Path: rif.Path{}.Payload("Run")}},
		},
		Kinds: map[rif.RegID]types.Kind{
			0:  types.MakeBits(1),
			1:  state,
			2:  types.MakeBits(8),
			3:  types.MakeBits(4),
			4:  types.MakeBits(8),
			5:  types.MakeBits(8),
			6:  types.MakeBits(1),
			7:  types.MakeBits(8),
			8:  types.MakeBits(8),
			9:  types.MakeBits(1),
			10: types.MakeBits(8),
			11: types.MakeBits(8),
			12: types.MakeBits(4),
			13: state,
			14: types.MakeTuple(types.MakeBits(8), types.MakeBits(4)),
			15: types.MakeArray(types.MakeBits(4), 2),
			16: state,
			17: mode,
			18: mode,
			19: types.MakeArray(types.MakeBits(4), 4),
			20: types.MakeBits(8),
			21: types.MakeBits(8),
			22: types.MakeBits(4),
			23: types.MakeSigned(8),
			24: types.MakeBits(1),
			25: types.MakeBits(8),
		},
		Literals: map[rif.LitID]types.TypedBits{
			0: mustUint(types.MakeBits(8), 1),
			1: types.Zero(modeKind()),
		},
		Externals: map[ast.FuncID]*rif.ExternalFunction{
			0x99: {Name: "clz", Fn: 0x99, Params: []types.Kind{types.MakeBits(8)}, Ret: types.MakeBits(8)},
		},
	}
}

func TestTypeCheckWellFormed(t *testing.T) {
	obj := wellFormed()
	out, err := (TypeCheckPass{}).Run(obj)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out != obj {
		t.Fatal("check pass returned a different object")
	}
}

func TestTypeCheckViolations(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(o *rif.Object)
		want   string
	}{
		{
			"assign kind",
			func(o *rif.Object) { o.Ops[0].Assign.Src = rif.Reg(3) },
			"assign source is b4, want b8",
		},
		{
			"comparison result",
			func(o *rif.Object) { o.Kinds[6] = types.MakeBits(8) },
			"comparison result is b8, want b1",
		},
		{
			"shift amount",
			func(o *rif.Object) { o.Ops[3].Binary.Right = rif.Reg(23) },
			"shift amount is s8, want an unsigned vector",
		},
		{
			"reduction result",
			func(o *rif.Object) { o.Kinds[9] = types.MakeBits(8) },
			"reduction result is b8, want b1",
		},
		{
			"composite operand",
			func(o *rif.Object) { o.Ops[1].Binary.Left = rif.Reg(1) },
			"operand of + is State, want a vector",
		},
		{
			"select condition",
			func(o *rif.Object) { o.Ops[6].Select.Cond = rif.Reg(2) },
			"select condition is b8, want b1",
		},
		{
			"select arm",
			func(o *rif.Object) { o.Ops[6].Select.False = rif.Reg(3) },
			"false arm is b4, want b8",
		},
		{
			"unknown field path",
			func(o *rif.Object) { o.Ops[7].Index.Path = rif.Path{}.Fld("bogus") },
			"no field bogus in State",
		},
		{
			"signed dynamic index",
			func(o *rif.Object) { o.Ops[8].Index.Path = rif.Path{}.Fld("mem").Dyn(rif.Reg(23)) },
			"dynamic index r23 is s8, want an unsigned vector",
		},
		{
			"index result",
			func(o *rif.Object) { o.Kinds[12] = types.MakeBits(8) },
			"index result is b8, want b4",
		},
		{
			"splice value",
			func(o *rif.Object) { o.Ops[9].Splice.Value = rif.Reg(2) },
			"splice value is b8, want b4",
		},
		{
			"splice result",
			func(o *rif.Object) { o.Kinds[13] = types.MakeBits(8) },
			"splice result is b8, want State",
		},
		{
			"tuple arity",
			func(o *rif.Object) { o.Ops[10].Tuple.Elems = append(o.Ops[10].Tuple.Elems, rif.Reg(2)) },
			"tuple packs 3 elements, result kind has 2",
		},
		{
			"array element",
			func(o *rif.Object) { o.Ops[11].Array.Elems[1] = rif.Reg(2) },
			"array element 1 is b8, want b4",
		},
		{
			"unknown struct field",
			func(o *rif.Object) { o.Ops[12].Struct.Fields[0].Name = "bogus" },
			`State has no field "bogus"`,
		},
		{
			"missing struct field",
			func(o *rif.Object) { o.Ops[12].Struct.Rest = rif.Empty() },
			"field mem not packed",
		},
		{
			"unknown variant",
			func(o *rif.Object) { o.Ops[13].Enum.Variant = "Halt" },
			`Mode has no variant "Halt"`,
		},
		{
			"missing payload",
			func(o *rif.Object) { o.Ops[13].Enum.Payload = rif.Empty() },
			"variant Run carries a payload, none packed",
		},
		{
			"payload kind",
			func(o *rif.Object) { o.Ops[13].Enum.Payload = rif.Reg(3) },
			"payload of Run is b4, want b8",
		},
		{
			"repeat length",
			func(o *rif.Object) { o.Ops[15].Repeat.Len = 3 },
			"repeat packs 3 elements, result kind has 4",
		},
		{
			"case pattern kind",
			func(o *rif.Object) { o.Ops[16].Case.Table[0].Arg.Lit = 1 },
			"case pattern 0 is Mode, want b8",
		},
		{
			"wildcard not last",
			func(o *rif.Object) {
				tbl := o.Ops[16].Case.Table
				tbl[0], tbl[1] = tbl[1], tbl[0]
			},
			"wildcard arm 0 is not last",
		},
		{
			"empty case table",
			func(o *rif.Object) { o.Ops[16].Case.Table = nil },
			"empty case table",
		},
		{
			"unknown exec target",
			func(o *rif.Object) { o.Ops[17].Exec.Fn = 0x77 },
			"exec target 77 is not in the external table",
		},
		{
			"exec arity",
			func(o *rif.Object) { o.Ops[17].Exec.Args = nil },
			"wrong number of arguments for clz: want 1, got 0",
		},
		{
			"exec argument kind",
			func(o *rif.Object) { o.Ops[17].Exec.Args[0] = rif.Reg(3) },
			"argument 0 of clz is b4, want b8",
		},
		{
			"cast result",
			func(o *rif.Object) { o.Kinds[22] = types.MakeBits(8) },
			"cast result is b8, want b4",
		},
		{
			"cast width",
			func(o *rif.Object) { o.Ops[18].Cast.Width = 0 },
			"cast width 0 out of range",
		},
		{
			"missing register kind",
			func(o *rif.Object) { delete(o.Kinds, 5) },
			"r5 has no kind",
		},
		{
			"missing argument kind",
			func(o *rif.Object) { delete(o.Kinds, 0) },
			"argument r0 has no kind",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj := wellFormed()
			tt.mutate(obj)
			_, err := (TypeCheckPass{}).Run(obj)
			if err == nil {
				t.Fatal("violation not detected")
			}
			var verr *VerificationError
			if !errors.As(err, &verr) {
				t.Fatalf("error is %T, want *VerificationError", err)
			}
			if verr.Kind != VerifyTypeMismatch {
				t.Fatalf("kind = %s, want %s", verr.Kind, VerifyTypeMismatch)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestTypeCheckReportsEveryViolation(t *testing.T) {
	obj := wellFormed()
	obj.Ops[0].Assign.Src = rif.Reg(3)
	obj.Ops[6].Select.Cond = rif.Reg(2)
	_, err := (TypeCheckPass{}).Run(obj)
	if err == nil {
		t.Fatal("violations not detected")
	}
	msg := err.Error()
	if !strings.Contains(msg, "op 0") || !strings.Contains(msg, "op 6") {
		t.Fatalf("error lost a violation:\n%s", msg)
	}
}

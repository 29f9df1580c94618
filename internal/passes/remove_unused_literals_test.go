package passes

import (
	"testing"

	"silica/internal/ast"
	"silica/internal/rif"
	"silica/internal/types"
)

func TestRemoveUnusedLiterals(t *testing.T) {
	// l0 is an operand, l1 a case pattern, l2 an enum template, l3 the
	// return slot; l4 has no consumer at all.
	obj := &rif.Object{
		Name:      "lits",
		Arguments: []rif.RegID{0, 1},
		Return:    rif.Lit(3),
		Ops: []rif.Op{
			{Kind: rif.OpBinary, Node: 1, Binary: rif.BinaryOp{Op: ast.BinAdd, Dst: rif.Reg(2), Left: rif.Reg(0), Right: rif.Lit(0)}},
			{Kind: rif.OpCase, Node: 2, Case: rif.CaseOp{Dst: rif.Reg(3), Discr: rif.Reg(1), Table: []rif.CaseEntry{
				{Arg: rif.CaseArg{Lit: 1}, Value: rif.Reg(2)},
				{Arg: rif.CaseArg{Wild: true}, Value: rif.Reg(0)},
			}}},
			{Kind: rif.OpEnum, Node: 3, Enum: rif.EnumOp{Dst: rif.Reg(4), Template: 2, Variant: "Idle", Payload: rif.Empty()}},
		},
		Kinds: map[rif.RegID]types.Kind{
			0: types.MakeBits(8),
			1: types.MakeBits(8),
			2: types.MakeBits(8),
			3: types.MakeBits(8),
			4: modeKind(),
		},
		Literals: map[rif.LitID]types.TypedBits{
			0: mustUint(types.MakeBits(8), 1),
			1: mustUint(types.MakeBits(8), 2),
			2: types.Zero(modeKind()),
			3: mustUint(types.MakeBits(8), 3),
			4: mustUint(types.MakeBits(8), 4),
		},
	}
	out, err := (RemoveUnusedLiterals{}).Run(obj)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, id := range []rif.LitID{0, 1, 2, 3} {
		if _, ok := out.Literals[id]; !ok {
			t.Fatalf("l%d dropped while still referenced", id)
		}
	}
	if _, ok := out.Literals[4]; ok {
		t.Fatal("l4 kept with no consumer")
	}
	if len(obj.Literals) != 5 {
		t.Fatal("input mutated")
	}
}

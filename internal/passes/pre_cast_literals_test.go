package passes

import (
	"errors"
	"strings"
	"testing"

	"silica/internal/rif"
	"silica/internal/types"
)

func castObject(kind rif.OpKind, x rif.Slot, width int) *rif.Object {
	target := types.MakeBits(width)
	if kind == rif.OpAsSigned {
		target = types.MakeSigned(width)
	}
	return &rif.Object{
		Name:      "cast",
		Arguments: []rif.RegID{0},
		Return:    rif.Reg(1),
		Ops: []rif.Op{
			{Kind: kind, Node: 1, Cast: rif.CastOp{Dst: rif.Reg(1), X: x, Width: width}},
		},
		Kinds: map[rif.RegID]types.Kind{
			0: types.MakeBits(8),
			1: target,
		},
		Literals: map[rif.LitID]types.TypedBits{
			0: mustUint(types.MakeBits(8), 3),
		},
	}
}

func TestPreCastLiteralsFoldsBits(t *testing.T) {
	out, err := (PreCastLiterals{}).Run(castObject(rif.OpAsBits, rif.Lit(0), 4))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := rif.FormatOp(out, &out.Ops[0]); got != "r1 = l1" {
		t.Fatalf("op = %q, want %q", got, "r1 = l1")
	}
	folded := out.Literals[1]
	if !folded.Kind.Equal(types.MakeBits(4)) {
		t.Fatalf("folded kind = %s, want b4", folded.Kind)
	}
	if v, err := folded.Uint64(); err != nil || v != 3 {
		t.Fatalf("folded value = %d (%v), want 3", v, err)
	}
}

func TestPreCastLiteralsFoldsSigned(t *testing.T) {
	out, err := (PreCastLiterals{}).Run(castObject(rif.OpAsSigned, rif.Lit(0), 8))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := rif.FormatOp(out, &out.Ops[0]); got != "r1 = l1" {
		t.Fatalf("op = %q, want %q", got, "r1 = l1")
	}
	folded := out.Literals[1]
	if !folded.Kind.Equal(types.MakeSigned(8)) {
		t.Fatalf("folded kind = %s, want s8", folded.Kind)
	}
	if v, err := folded.Int64(); err != nil || v != 3 {
		t.Fatalf("folded value = %d (%v), want 3", v, err)
	}
}

func TestPreCastLiteralsValueChange(t *testing.T) {
	_, err := (PreCastLiterals{}).Run(castObject(rif.OpAsBits, rif.Lit(0), 1))
	if err == nil {
		t.Fatal("lossy fold not rejected")
	}
	var perr *PassError
	if !errors.As(err, &perr) {
		t.Fatalf("error is %T, want *PassError", err)
	}
	if perr.Pass != "pre-cast-literals" || perr.Op != 0 {
		t.Fatalf("error context = %q op %d", perr.Pass, perr.Op)
	}
	if !strings.Contains(err.Error(), "drops set bits") {
		t.Fatalf("error %q does not name the lost bits", err)
	}
}

func TestPreCastLiteralsLeavesRegisters(t *testing.T) {
	out, err := (PreCastLiterals{}).Run(castObject(rif.OpAsBits, rif.Reg(0), 4))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.Ops[0].Kind != rif.OpAsBits {
		t.Fatalf("register cast rewritten:\n%s", out)
	}
}

func TestPreCastLiteralsUndefinedLiteral(t *testing.T) {
	out, err := (PreCastLiterals{}).Run(castObject(rif.OpAsBits, rif.Lit(9), 4))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.Ops[0].Kind != rif.OpAsBits {
		t.Fatalf("cast of an undefined literal rewritten:\n%s", out)
	}
}

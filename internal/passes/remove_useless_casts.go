package passes

import (
	"silica/internal/rif"
	"silica/internal/types"
)

// RemoveUselessCasts turns casts to the operand's existing width and
// signedness into plain copies.
type RemoveUselessCasts struct{}

func (RemoveUselessCasts) Name() string { return "remove-useless-casts" }

func (RemoveUselessCasts) Run(obj *rif.Object) (*rif.Object, error) {
	out := obj.Clone()
	for i := range out.Ops {
		op := &out.Ops[i]
		var want types.Kind
		switch op.Kind {
		case rif.OpAsBits:
			want = types.MakeBits(op.Cast.Width)
		case rif.OpAsSigned:
			want = types.MakeSigned(op.Cast.Width)
		default:
			continue
		}
		k, ok := out.Kind(op.Cast.X)
		if !ok || !k.Equal(want) {
			continue
		}
		*op = rif.Op{Kind: rif.OpAssign, Node: op.Node, Assign: rif.AssignOp{Dst: op.Cast.Dst, Src: op.Cast.X}}
	}
	return out, nil
}

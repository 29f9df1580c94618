package passes

import (
	"silica/internal/rif"
	"silica/internal/types"
)

// PreCastLiterals folds casts of literal operands into literals of the
// target width and signedness. A fold that would change the value fails
// the pass.
type PreCastLiterals struct{}

func (PreCastLiterals) Name() string { return "pre-cast-literals" }

func (p PreCastLiterals) Run(obj *rif.Object) (*rif.Object, error) {
	out := obj.Clone()
	for i := range out.Ops {
		op := &out.Ops[i]
		if op.Kind != rif.OpAsBits && op.Kind != rif.OpAsSigned {
			continue
		}
		lit, ok := rif.AsLit(op.Cast.X)
		if !ok {
			continue
		}
		tb, ok := out.Literals[lit]
		if !ok {
			// undefined literal; the flow check reports it
			continue
		}
		var folded types.TypedBits
		var err error
		if op.Kind == rif.OpAsBits {
			folded, err = tb.AsBits(op.Cast.Width)
		} else {
			folded, err = tb.AsSigned(op.Cast.Width)
		}
		if err != nil {
			return nil, &PassError{Pass: p.Name(), Op: i, Node: op.Node, Err: err}
		}
		id := out.AddLiteral(folded)
		*op = rif.Op{Kind: rif.OpAssign, Node: op.Node, Assign: rif.AssignOp{Dst: op.Cast.Dst, Src: rif.Lit(id)}}
	}
	return out, nil
}

package passes

import (
	"silica/internal/rif"
)

// RemoveUnneededMuxes reduces selects with a literal condition to the taken
// arm and selects whose arms agree to a plain copy.
type RemoveUnneededMuxes struct{}

func (RemoveUnneededMuxes) Name() string { return "remove-unneeded-muxes" }

func (RemoveUnneededMuxes) Run(obj *rif.Object) (*rif.Object, error) {
	out := obj.Clone()
	for i := range out.Ops {
		op := &out.Ops[i]
		if op.Kind != rif.OpSelect {
			continue
		}
		sel := op.Select
		if sel.True == sel.False {
			*op = rif.Op{Kind: rif.OpAssign, Node: op.Node, Assign: rif.AssignOp{Dst: sel.Dst, Src: sel.True}}
			continue
		}
		lit, ok := rif.AsLit(sel.Cond)
		if !ok {
			continue
		}
		cond, ok := out.Literals[lit]
		if !ok {
			// undefined literal; the flow check reports it
			continue
		}
		src := sel.False
		if cond.AnySet() {
			src = sel.True
		}
		*op = rif.Op{Kind: rif.OpAssign, Node: op.Node, Assign: rif.AssignOp{Dst: sel.Dst, Src: src}}
	}
	return out, nil
}

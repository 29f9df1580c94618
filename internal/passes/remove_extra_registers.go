package passes

import (
	"slices"

	"silica/internal/rif"
)

// RemoveExtraRegisters propagates register copies to their sources and
// drops ops whose results nothing reads.
type RemoveExtraRegisters struct{}

func (RemoveExtraRegisters) Name() string { return "remove-extra-registers" }

func (RemoveExtraRegisters) Run(obj *rif.Object) (*rif.Object, error) {
	out := obj.Clone()
	propagateCopies(out)
	removeDeadOps(out)
	pruneKinds(out)
	return out, nil
}

// propagateCopies redirects every read of a copied register to the copy's
// source, following chains, and redirects the return slot the same way.
func propagateCopies(o *rif.Object) {
	alias := make(map[rif.RegID]rif.Slot)
	for i := range o.Ops {
		op := &o.Ops[i]
		if op.Kind != rif.OpAssign {
			continue
		}
		if dst, ok := rif.AsReg(op.Assign.Dst); ok {
			alias[dst] = op.Assign.Src
		}
	}
	if len(alias) == 0 {
		return
	}
	resolve := func(s rif.Slot) rif.Slot {
		for i := 0; i < len(alias)+1; i++ {
			reg, ok := rif.AsReg(s)
			if !ok {
				return s
			}
			next, ok := alias[reg]
			if !ok {
				return s
			}
			s = next
		}
		// alias cycle; the flow check reports it
		return s
	}
	for i := range o.Ops {
		o.Ops[i].RewriteReads(resolve)
	}
	o.Return = resolve(o.Return)
}

// removeDeadOps deletes ops whose destination register nothing reads. Ops
// only read registers written earlier, so one backward sweep suffices.
func removeDeadOps(o *rif.Object) {
	live := make(map[rif.RegID]bool)
	if reg, ok := rif.AsReg(o.Return); ok {
		live[reg] = true
	}
	kept := make([]rif.Op, 0, len(o.Ops))
	for i := len(o.Ops) - 1; i >= 0; i-- {
		op := o.Ops[i]
		if reg, ok := rif.AsReg(op.Dest()); ok && !live[reg] {
			continue
		}
		for _, s := range op.Reads() {
			if r, ok := rif.AsReg(s); ok {
				live[r] = true
			}
		}
		kept = append(kept, op)
	}
	slices.Reverse(kept)
	o.Ops = kept
}

// pruneKinds drops kind entries for registers nothing references anymore.
func pruneKinds(o *rif.Object) {
	used := make(map[rif.RegID]bool, len(o.Kinds))
	for _, r := range o.Arguments {
		used[r] = true
	}
	if r, ok := rif.AsReg(o.Return); ok {
		used[r] = true
	}
	for i := range o.Ops {
		if r, ok := rif.AsReg(o.Ops[i].Dest()); ok {
			used[r] = true
		}
		for _, s := range o.Ops[i].Reads() {
			if r, ok := rif.AsReg(s); ok {
				used[r] = true
			}
		}
	}
	for r := range o.Kinds {
		if !used[r] {
			delete(o.Kinds, r)
		}
	}
}

package passes

import (
	"silica/internal/rif"
)

// RemoveUnusedLiterals drops literal-table entries with no remaining
// consumer. Case patterns, enum templates, and dynamic path indices count
// as consumers, as does the return slot.
type RemoveUnusedLiterals struct{}

func (RemoveUnusedLiterals) Name() string { return "remove-unused-literals" }

func (RemoveUnusedLiterals) Run(obj *rif.Object) (*rif.Object, error) {
	out := obj.Clone()
	used := make(map[rif.LitID]bool, len(out.Literals))
	for i := range out.Ops {
		for _, s := range out.Ops[i].Reads() {
			if l, ok := rif.AsLit(s); ok {
				used[l] = true
			}
		}
	}
	if l, ok := rif.AsLit(out.Return); ok {
		used[l] = true
	}
	for id := range out.Literals {
		if !used[id] {
			delete(out.Literals, id)
		}
	}
	return out, nil
}

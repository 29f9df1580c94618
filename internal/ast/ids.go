package ast

// NodeID identifies one node within a design. IDs are assigned by the
// Builder in construction order and are unique across every kernel built
// through the same Builder.
type NodeID uint32

// FuncID identifies a function definition (kernel or extern) across a
// whole design. Derived from the definition name and the Builder's
// definition sequence, so identical names in one design still get
// distinct identities.
type FuncID uint64

const (
	NoNodeID NodeID = 0
	NoFuncID FuncID = 0
)

func (id NodeID) IsValid() bool { return id != NoNodeID }
func (id FuncID) IsValid() bool { return id != NoFuncID }

package ast

import (
	"silica/internal/types"
)

// Param is one kernel parameter.
type Param struct {
	id   NodeID
	Name string
	Kind types.Kind
}

func (p Param) Node() NodeID { return p.id }

// Kernel is one function definition: the unit of compilation.
type Kernel struct {
	id     NodeID
	Name   string
	Fn     FuncID
	Params []Param
	Ret    types.Kind
	Body   *Block
}

func (k *Kernel) Node() NodeID { return k.id }

// ExternDecl declares an opaque primitive: a definition the compiler
// does not see into. Body is pre-rendered text for downstream
// consumers; Eval, when set, lets the evaluator execute calls to it.
type ExternDecl struct {
	id     NodeID
	Name   string
	Fn     FuncID
	Params []Param
	Ret    types.Kind
	Body   string
	Eval   func([]types.TypedBits) (types.TypedBits, error)
}

func (d *ExternDecl) Node() NodeID { return d.id }

// Package rif defines the register intermediate form kernels compile to: a
// flat op list over virtual registers plus the literal, kind, external, and
// symbol tables the passes, the verifier, and the evaluator work against.
package rif

import (
	"silica/internal/ast"
	"silica/internal/source"
	"silica/internal/types"
)

// Symbols maps a compiled object back to the pseudo-source it was rendered
// from. Spans index into Source through the file registered for it.
type Symbols struct {
	File   source.FileID              `msgpack:"file"`
	Source string                     `msgpack:"source"`
	Spans  map[ast.NodeID]source.Span `msgpack:"spans"`
}

// SpanOf returns the span of a node, or the zero span if the node is
// unknown.
func (s Symbols) SpanOf(n ast.NodeID) source.Span {
	return s.Spans[n]
}

// ExternalFunction describes one callee of an object: either another kernel
// whose definition travels with the reference, or an opaque primitive known
// only by its signature. Definitions do not serialize; a loaded artifact
// keeps the signatures.
type ExternalFunction struct {
	Name   string       `msgpack:"name"`
	Fn     ast.FuncID   `msgpack:"fn"`
	Params []types.Kind `msgpack:"params"`
	Ret    types.Kind   `msgpack:"ret"`
	Body   string       `msgpack:"body,omitempty"`

	Kernel *ast.Kernel     `msgpack:"-"`
	Extern *ast.ExternDecl `msgpack:"-"`
}

// InSource reports whether the reference carries a compilable definition.
func (x *ExternalFunction) InSource() bool {
	return x.Kernel != nil
}

// ExternalKernel builds the reference for an in-source callee.
func ExternalKernel(k *ast.Kernel) *ExternalFunction {
	return &ExternalFunction{
		Name:   k.Name,
		Fn:     k.Fn,
		Params: paramKinds(k.Params),
		Ret:    k.Ret,
		Kernel: k,
	}
}

// ExternalStub builds the reference for an opaque primitive.
func ExternalStub(d *ast.ExternDecl) *ExternalFunction {
	return &ExternalFunction{
		Name:   d.Name,
		Fn:     d.Fn,
		Params: paramKinds(d.Params),
		Ret:    d.Ret,
		Body:   d.Body,
		Extern: d,
	}
}

func paramKinds(params []ast.Param) []types.Kind {
	out := make([]types.Kind, len(params))
	for i, p := range params {
		out[i] = p.Kind
	}
	return out
}

// Object is the compiled form of one kernel. Passes treat it functionally:
// each consumes an object and produces a new one via Clone.
type Object struct {
	Name      string                           `msgpack:"name"`
	Fn        ast.FuncID                       `msgpack:"fn"`
	Arguments []RegID                          `msgpack:"arguments"`
	Return    Slot                             `msgpack:"return"`
	Ops       []Op                             `msgpack:"ops"`
	Kinds     map[RegID]types.Kind             `msgpack:"kinds"`
	Literals  map[LitID]types.TypedBits        `msgpack:"literals"`
	Externals map[ast.FuncID]*ExternalFunction `msgpack:"externals"`
	Symbols   Symbols                          `msgpack:"symbols"`
}

// Kind returns the kind of the value a slot references.
func (o *Object) Kind(s Slot) (types.Kind, bool) {
	if reg, ok := AsReg(s); ok {
		k, ok := o.Kinds[reg]
		return k, ok
	}
	if lit, ok := AsLit(s); ok {
		tb, ok := o.Literals[lit]
		return tb.Kind, ok
	}
	return types.MakeEmpty(), true
}

// AddLiteral inserts a value into the literal table under a fresh ID.
func (o *Object) AddLiteral(tb types.TypedBits) LitID {
	next := LitID(0)
	for id := range o.Literals {
		if id >= next {
			next = id + 1
		}
	}
	if o.Literals == nil {
		o.Literals = make(map[LitID]types.TypedBits)
	}
	o.Literals[next] = tb
	return next
}

// Clone returns a deep copy sharing no mutable state with the receiver.
// External references are shared: they are immutable descriptors.
func (o *Object) Clone() *Object {
	out := &Object{
		Name:      o.Name,
		Fn:        o.Fn,
		Arguments: append([]RegID(nil), o.Arguments...),
		Return:    o.Return,
		Ops:       make([]Op, len(o.Ops)),
		Kinds:     make(map[RegID]types.Kind, len(o.Kinds)),
		Literals:  make(map[LitID]types.TypedBits, len(o.Literals)),
		Externals: make(map[ast.FuncID]*ExternalFunction, len(o.Externals)),
		Symbols:   o.Symbols,
	}
	for i := range o.Ops {
		out.Ops[i] = cloneOp(o.Ops[i])
	}
	for id, k := range o.Kinds {
		out.Kinds[id] = k
	}
	for id, tb := range o.Literals {
		out.Literals[id] = tb
	}
	for fn, x := range o.Externals {
		out.Externals[fn] = x
	}
	return out
}

func cloneOp(op Op) Op {
	switch op.Kind {
	case OpIndex:
		op.Index.Path = op.Index.Path.Clone()
	case OpSplice:
		op.Splice.Path = op.Splice.Path.Clone()
	case OpTuple:
		op.Tuple.Elems = append([]Slot(nil), op.Tuple.Elems...)
	case OpArray:
		op.Array.Elems = append([]Slot(nil), op.Array.Elems...)
	case OpStruct:
		op.Struct.Fields = append([]FieldValue(nil), op.Struct.Fields...)
	case OpCase:
		op.Case.Table = append([]CaseEntry(nil), op.Case.Table...)
	case OpExec:
		op.Exec.Args = append([]Slot(nil), op.Exec.Args...)
	}
	return op
}

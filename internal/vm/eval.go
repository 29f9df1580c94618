// Package vm evaluates compiled objects against concrete bit values. It is
// the reference semantics for the register form: the rewrite pipeline must
// leave every object's results unchanged, and the differential tests hold it
// to that.
package vm

import (
	"fmt"

	"fortio.org/safecast"

	"silica/internal/layout"
	"silica/internal/rif"
	"silica/internal/types"
)

// EvalError reports a value the machine cannot compute: a malformed object,
// an argument mismatch, or a callee with no definition and no hook.
type EvalError struct {
	Object string
	Op     int // op index, -1 when not tied to one op
	Msg    string
}

func (e *EvalError) Error() string {
	if e.Op < 0 {
		return fmt.Sprintf("eval %s: %s", e.Object, e.Msg)
	}
	return fmt.Sprintf("eval %s: op %d: %s", e.Object, e.Op, e.Msg)
}

// RunModule evaluates a module's top object.
func RunModule(mod *rif.Module, args []types.TypedBits) (types.TypedBits, error) {
	if mod == nil || mod.TopObject() == nil {
		return types.TypedBits{}, &EvalError{Object: "<module>", Op: -1, Msg: "module has no top object"}
	}
	return Run(mod.TopObject(), mod, args)
}

// Run evaluates one object. Exec ops resolve in-source callees through mod
// and opaque primitives through their Eval hooks; with a nil mod only
// primitives are callable.
func Run(obj *rif.Object, mod *rif.Module, args []types.TypedBits) (types.TypedBits, error) {
	if obj == nil {
		return types.TypedBits{}, &EvalError{Object: "<nil>", Op: -1, Msg: "no object"}
	}
	if len(args) != len(obj.Arguments) {
		return types.TypedBits{}, &EvalError{
			Object: obj.Name, Op: -1,
			Msg: fmt.Sprintf("want %d arguments, got %d", len(obj.Arguments), len(args)),
		}
	}
	m := &machine{
		obj:  obj,
		mod:  mod,
		regs: make(map[rif.RegID]types.TypedBits, len(obj.Kinds)),
	}
	for i, reg := range obj.Arguments {
		want := obj.Kinds[reg]
		if !args[i].Kind.Equal(want) {
			return types.TypedBits{}, &EvalError{
				Object: obj.Name, Op: -1,
				Msg: fmt.Sprintf("argument %d is %s, want %s", i, args[i].Kind, want),
			}
		}
		m.regs[reg] = args[i]
	}
	for i := range obj.Ops {
		if err := m.step(i, &obj.Ops[i]); err != nil {
			return types.TypedBits{}, err
		}
	}
	return m.value(-1, obj.Return)
}

type machine struct {
	obj  *rif.Object
	mod  *rif.Module
	regs map[rif.RegID]types.TypedBits
}

func (m *machine) fail(op int, format string, args ...any) error {
	return &EvalError{Object: m.obj.Name, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// value reads a slot. The empty slot evaluates to the zero-width value.
func (m *machine) value(op int, s rif.Slot) (types.TypedBits, error) {
	if reg, ok := rif.AsReg(s); ok {
		v, ok := m.regs[reg]
		if !ok {
			return types.TypedBits{}, m.fail(op, "read of unwritten register %s", s)
		}
		return v, nil
	}
	if lit, ok := rif.AsLit(s); ok {
		v, ok := m.obj.Literals[lit]
		if !ok {
			return types.TypedBits{}, m.fail(op, "read of undefined literal %s", s)
		}
		return v, nil
	}
	return types.Zero(types.MakeEmpty()), nil
}

func (m *machine) write(op int, dst rif.Slot, v types.TypedBits) error {
	reg, ok := rif.AsReg(dst)
	if !ok {
		return m.fail(op, "destination %s is not a register", dst)
	}
	m.regs[reg] = v
	return nil
}

// dynIndex reads the runtime value of a dynamic path step's register.
func (m *machine) dynIndex(op int) func(layout.Slot) (int, error) {
	return func(s layout.Slot) (int, error) {
		v, err := m.value(op, s)
		if err != nil {
			return 0, err
		}
		u, err := v.Uint64()
		if err != nil {
			return 0, m.fail(op, "dynamic index %s: %v", s, err)
		}
		idx, err := safecast.Conv[int](u)
		if err != nil {
			return 0, m.fail(op, "dynamic index %s: %v", s, err)
		}
		return idx, nil
	}
}

func (m *machine) step(i int, op *rif.Op) error {
	switch op.Kind {
	case rif.OpAssign:
		v, err := m.value(i, op.Assign.Src)
		if err != nil {
			return err
		}
		return m.write(i, op.Assign.Dst, v)

	case rif.OpBinary:
		return m.binary(i, op)

	case rif.OpUnary:
		return m.unary(i, op)

	case rif.OpSelect:
		cond, err := m.value(i, op.Select.Cond)
		if err != nil {
			return err
		}
		picked := op.Select.False
		if cond.AnySet() {
			picked = op.Select.True
		}
		v, err := m.value(i, picked)
		if err != nil {
			return err
		}
		return m.write(i, op.Select.Dst, v)

	case rif.OpIndex:
		base, err := m.value(i, op.Index.Base)
		if err != nil {
			return err
		}
		path, err := op.Index.Path.ResolveDynamic(m.dynIndex(i))
		if err != nil {
			return err
		}
		r, k, err := layout.Resolve(base.Kind, path)
		if err != nil {
			return m.fail(i, "%v", err)
		}
		v, err := base.Extract(r.Start, r.End, k)
		if err != nil {
			return m.fail(i, "%v", err)
		}
		return m.write(i, op.Index.Dst, v)

	case rif.OpSplice:
		orig, err := m.value(i, op.Splice.Orig)
		if err != nil {
			return err
		}
		value, err := m.value(i, op.Splice.Value)
		if err != nil {
			return err
		}
		path, err := op.Splice.Path.ResolveDynamic(m.dynIndex(i))
		if err != nil {
			return err
		}
		r, _, err := layout.Resolve(orig.Kind, path)
		if err != nil {
			return m.fail(i, "%v", err)
		}
		v, err := orig.Splice(r.Start, r.End, value)
		if err != nil {
			return m.fail(i, "%v", err)
		}
		return m.write(i, op.Splice.Dst, v)

	case rif.OpTuple:
		return m.pack(i, op.Tuple.Dst, op.Tuple.Elems)

	case rif.OpArray:
		return m.pack(i, op.Array.Dst, op.Array.Elems)

	case rif.OpStruct:
		return m.packStruct(i, op)

	case rif.OpEnum:
		return m.packEnum(i, op)

	case rif.OpRepeat:
		elems := make([]rif.Slot, op.Repeat.Len)
		for j := range elems {
			elems[j] = op.Repeat.Value
		}
		return m.pack(i, op.Repeat.Dst, elems)

	case rif.OpCase:
		return m.caseOp(i, op)

	case rif.OpExec:
		return m.exec(i, op)

	case rif.OpAsBits:
		x, err := m.value(i, op.Cast.X)
		if err != nil {
			return err
		}
		v, err := x.AsBits(op.Cast.Width)
		if err != nil {
			return m.fail(i, "%v", err)
		}
		return m.write(i, op.Cast.Dst, v)

	case rif.OpAsSigned:
		x, err := m.value(i, op.Cast.X)
		if err != nil {
			return err
		}
		v, err := x.AsSigned(op.Cast.Width)
		if err != nil {
			return m.fail(i, "%v", err)
		}
		return m.write(i, op.Cast.Dst, v)

	default:
		return m.fail(i, "unknown op kind %d", op.Kind)
	}
}

func (m *machine) binary(i int, op *rif.Op) error {
	left, err := m.value(i, op.Binary.Left)
	if err != nil {
		return err
	}
	right, err := m.value(i, op.Binary.Right)
	if err != nil {
		return err
	}
	v, err := applyBinary(op.Binary.Op, left, right)
	if err != nil {
		return m.fail(i, "%v", err)
	}
	return m.write(i, op.Binary.Dst, v)
}

func (m *machine) unary(i int, op *rif.Op) error {
	x, err := m.value(i, op.Unary.X)
	if err != nil {
		return err
	}
	v, err := applyUnary(op.Unary.Op, x)
	if err != nil {
		return m.fail(i, "%v", err)
	}
	return m.write(i, op.Unary.Dst, v)
}

// pack concatenates element values LSB first into the destination's kind.
func (m *machine) pack(i int, dst rif.Slot, elems []rif.Slot) error {
	kind, ok := m.obj.Kind(dst)
	if !ok {
		return m.fail(i, "destination %s has no kind", dst)
	}
	out := types.Zero(kind)
	offset := 0
	for _, s := range elems {
		v, err := m.value(i, s)
		if err != nil {
			return err
		}
		if offset+len(v.Bits) > len(out.Bits) {
			return m.fail(i, "packed elements overflow %s", kind)
		}
		copy(out.Bits[offset:], v.Bits)
		offset += len(v.Bits)
	}
	if offset != len(out.Bits) {
		return m.fail(i, "packed %d bits into %s", offset, kind)
	}
	return m.write(i, dst, out)
}

func (m *machine) packStruct(i int, op *rif.Op) error {
	kind, ok := m.obj.Kind(op.Struct.Dst)
	if !ok {
		return m.fail(i, "destination %s has no kind", op.Struct.Dst)
	}
	out := types.Zero(kind)
	if !op.Struct.Rest.IsEmpty() {
		rest, err := m.value(i, op.Struct.Rest)
		if err != nil {
			return err
		}
		if !rest.Kind.Equal(kind) {
			return m.fail(i, "rest value is %s, want %s", rest.Kind, kind)
		}
		out = types.TypedBits{Bits: append([]bool(nil), rest.Bits...), Kind: kind}
	}
	for _, f := range op.Struct.Fields {
		v, err := m.value(i, f.Value)
		if err != nil {
			return err
		}
		r, _, err := layout.Resolve(kind, rif.Path{}.Fld(f.Name))
		if err != nil {
			return m.fail(i, "%v", err)
		}
		out, err = out.Splice(r.Start, r.End, v)
		if err != nil {
			return m.fail(i, "field %s: %v", f.Name, err)
		}
	}
	return m.write(i, op.Struct.Dst, out)
}

func (m *machine) packEnum(i int, op *rif.Op) error {
	tmpl, ok := m.obj.Literals[op.Enum.Template]
	if !ok {
		return m.fail(i, "enum template %s is not defined", rif.Lit(op.Enum.Template))
	}
	out := types.TypedBits{Bits: append([]bool(nil), tmpl.Bits...), Kind: tmpl.Kind}
	if op.Enum.Payload.IsEmpty() {
		return m.write(i, op.Enum.Dst, out)
	}
	payload, err := m.value(i, op.Enum.Payload)
	if err != nil {
		return err
	}
	r, _, err := layout.Resolve(tmpl.Kind, rif.Path{}.Payload(op.Enum.Variant))
	if err != nil {
		return m.fail(i, "%v", err)
	}
	out, err = out.Splice(r.Start, r.End, payload)
	if err != nil {
		return m.fail(i, "variant %s: %v", op.Enum.Variant, err)
	}
	return m.write(i, op.Enum.Dst, out)
}

func (m *machine) caseOp(i int, op *rif.Op) error {
	discr, err := m.value(i, op.Case.Discr)
	if err != nil {
		return err
	}
	for _, entry := range op.Case.Table {
		if !entry.Arg.Wild {
			pat, ok := m.obj.Literals[entry.Arg.Lit]
			if !ok {
				return m.fail(i, "case pattern %s is not defined", rif.Lit(entry.Arg.Lit))
			}
			if !discr.Equal(pat) {
				continue
			}
		}
		v, err := m.value(i, entry.Value)
		if err != nil {
			return err
		}
		return m.write(i, op.Case.Dst, v)
	}
	return m.fail(i, "no case arm matches %s", discr)
}

func (m *machine) exec(i int, op *rif.Op) error {
	args := make([]types.TypedBits, len(op.Exec.Args))
	for j, s := range op.Exec.Args {
		v, err := m.value(i, s)
		if err != nil {
			return err
		}
		args[j] = v
	}
	if m.mod != nil {
		if callee, ok := m.mod.Objects[op.Exec.Fn]; ok {
			v, err := Run(callee, m.mod, args)
			if err != nil {
				return err
			}
			return m.write(i, op.Exec.Dst, v)
		}
	}
	ext := m.obj.Externals[op.Exec.Fn]
	if ext == nil {
		return m.fail(i, "call of unknown function %x", uint64(op.Exec.Fn))
	}
	if ext.Extern != nil && ext.Extern.Eval != nil {
		v, err := ext.Extern.Eval(args)
		if err != nil {
			return m.fail(i, "primitive %s: %v", ext.Name, err)
		}
		return m.write(i, op.Exec.Dst, v)
	}
	return m.fail(i, "callee %s has no compiled object and no evaluation hook", ext.Name)
}

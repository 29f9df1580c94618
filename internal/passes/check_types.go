package passes

import (
	"errors"
	"fmt"

	"silica/internal/ast"
	"silica/internal/layout"
	"silica/internal/rif"
	"silica/internal/types"
)

// TypeCheckPass verifies that every op's operand and result kinds agree and
// that every path resolves against the kind it navigates, expanding dynamic
// paths to all their concrete forms.
type TypeCheckPass struct{}

func (TypeCheckPass) Name() string { return "check-types" }

func (TypeCheckPass) Run(obj *rif.Object) (*rif.Object, error) {
	c := &typeChecker{o: obj}
	for _, r := range obj.Arguments {
		if _, ok := obj.Kinds[r]; !ok {
			c.errf(-1, ast.NoNodeID, "argument %s has no kind", rif.Reg(r))
		}
	}
	for i := range obj.Ops {
		c.checkOp(i, &obj.Ops[i])
	}
	if err := errors.Join(c.errs...); err != nil {
		return nil, err
	}
	return obj, nil
}

type typeChecker struct {
	o    *rif.Object
	errs []error
}

func (c *typeChecker) errf(op int, node ast.NodeID, format string, args ...any) {
	c.errs = append(c.errs, &VerificationError{
		Kind:   VerifyTypeMismatch,
		Object: c.o.Name,
		Op:     op,
		Node:   node,
		Msg:    fmt.Sprintf(format, args...),
	})
}

func (c *typeChecker) slotKind(op int, node ast.NodeID, s rif.Slot) (types.Kind, bool) {
	k, ok := c.o.Kind(s)
	if !ok {
		c.errf(op, node, "%s has no kind", s)
	}
	return k, ok
}

func (c *typeChecker) want(op int, node ast.NodeID, what string, got, want types.Kind) {
	if !got.Equal(want) {
		c.errf(op, node, "%s is %s, want %s", what, got, want)
	}
}

func bitlike(k types.Kind) bool {
	return k.Tag == types.KindBits || k.Tag == types.KindSigned
}

func (c *typeChecker) checkOp(i int, op *rif.Op) {
	switch op.Kind {
	case rif.OpAssign:
		c.checkAssign(i, op)
	case rif.OpBinary:
		c.checkBinary(i, op)
	case rif.OpUnary:
		c.checkUnary(i, op)
	case rif.OpSelect:
		c.checkSelect(i, op)
	case rif.OpIndex:
		c.checkIndex(i, op)
	case rif.OpSplice:
		c.checkSplice(i, op)
	case rif.OpTuple:
		c.checkTuple(i, op)
	case rif.OpArray:
		c.checkArray(i, op)
	case rif.OpStruct:
		c.checkStruct(i, op)
	case rif.OpEnum:
		c.checkEnum(i, op)
	case rif.OpRepeat:
		c.checkRepeat(i, op)
	case rif.OpCase:
		c.checkCase(i, op)
	case rif.OpExec:
		c.checkExec(i, op)
	case rif.OpAsBits, rif.OpAsSigned:
		c.checkCast(i, op)
	default:
		c.errf(i, op.Node, "unknown op kind %d", uint8(op.Kind))
	}
}

func (c *typeChecker) checkAssign(i int, op *rif.Op) {
	dst, ok1 := c.slotKind(i, op.Node, op.Assign.Dst)
	src, ok2 := c.slotKind(i, op.Node, op.Assign.Src)
	if ok1 && ok2 {
		c.want(i, op.Node, "assign source", src, dst)
	}
}

func (c *typeChecker) checkBinary(i int, op *rif.Op) {
	b := op.Binary
	dst, ok1 := c.slotKind(i, op.Node, b.Dst)
	left, ok2 := c.slotKind(i, op.Node, b.Left)
	right, ok3 := c.slotKind(i, op.Node, b.Right)
	if !ok1 || !ok2 || !ok3 {
		return
	}
	if !bitlike(left) {
		c.errf(i, op.Node, "operand of %s is %s, want a vector", b.Op, left)
		return
	}
	switch {
	case b.Op.IsCompare():
		c.want(i, op.Node, "right operand", right, left)
		c.want(i, op.Node, "comparison result", dst, types.MakeBits(1))
	case b.Op.IsShift():
		if right.Tag != types.KindBits {
			c.errf(i, op.Node, "shift amount is %s, want an unsigned vector", right)
		}
		c.want(i, op.Node, "shift result", dst, left)
	default:
		c.want(i, op.Node, "right operand", right, left)
		c.want(i, op.Node, "result", dst, left)
	}
}

func (c *typeChecker) checkUnary(i int, op *rif.Op) {
	u := op.Unary
	dst, ok1 := c.slotKind(i, op.Node, u.Dst)
	x, ok2 := c.slotKind(i, op.Node, u.X)
	if !ok1 || !ok2 {
		return
	}
	if !bitlike(x) {
		c.errf(i, op.Node, "operand of %s is %s, want a vector", u.Op, x)
		return
	}
	if u.Op.IsReduce() {
		c.want(i, op.Node, "reduction result", dst, types.MakeBits(1))
		return
	}
	c.want(i, op.Node, "result", dst, x)
}

func (c *typeChecker) checkSelect(i int, op *rif.Op) {
	s := op.Select
	dst, ok1 := c.slotKind(i, op.Node, s.Dst)
	cond, ok2 := c.slotKind(i, op.Node, s.Cond)
	t, ok3 := c.slotKind(i, op.Node, s.True)
	f, ok4 := c.slotKind(i, op.Node, s.False)
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return
	}
	c.want(i, op.Node, "select condition", cond, types.MakeBits(1))
	c.want(i, op.Node, "false arm", f, t)
	c.want(i, op.Node, "select result", dst, t)
}

// pathSubKind resolves the kind a path addresses within base, expanding
// dynamic steps and requiring every expansion to resolve. Dynamic index
// slots must be unsigned vectors.
func (c *typeChecker) pathSubKind(i int, node ast.NodeID, base types.Kind, p rif.Path) (types.Kind, bool) {
	for _, s := range p.DynamicSlots() {
		k, ok := c.slotKind(i, node, s)
		if !ok {
			return types.Kind{}, false
		}
		if k.Tag != types.KindBits {
			c.errf(i, node, "dynamic index %s is %s, want an unsigned vector", s, k)
			return types.Kind{}, false
		}
	}
	expansions, err := layout.PathStar(base, p)
	if err != nil {
		c.errf(i, node, "path %s on %s: %v", p, base, err)
		return types.Kind{}, false
	}
	if len(expansions) == 0 {
		c.errf(i, node, "path %s on %s addresses nothing", p, base)
		return types.Kind{}, false
	}
	sub, err := layout.SubKind(base, expansions[0])
	if err != nil {
		c.errf(i, node, "path %s on %s: %v", expansions[0], base, err)
		return types.Kind{}, false
	}
	for _, e := range expansions[1:] {
		if _, _, err := layout.Resolve(base, e); err != nil {
			c.errf(i, node, "path %s on %s: %v", e, base, err)
			return types.Kind{}, false
		}
	}
	return sub, true
}

func (c *typeChecker) checkIndex(i int, op *rif.Op) {
	x := op.Index
	dst, ok1 := c.slotKind(i, op.Node, x.Dst)
	base, ok2 := c.slotKind(i, op.Node, x.Base)
	if !ok1 || !ok2 {
		return
	}
	sub, ok := c.pathSubKind(i, op.Node, base, x.Path)
	if ok {
		c.want(i, op.Node, "index result", dst, sub)
	}
}

func (c *typeChecker) checkSplice(i int, op *rif.Op) {
	s := op.Splice
	dst, ok1 := c.slotKind(i, op.Node, s.Dst)
	orig, ok2 := c.slotKind(i, op.Node, s.Orig)
	value, ok3 := c.slotKind(i, op.Node, s.Value)
	if !ok1 || !ok2 || !ok3 {
		return
	}
	sub, ok := c.pathSubKind(i, op.Node, orig, s.Path)
	if ok {
		c.want(i, op.Node, "splice value", value, sub)
	}
	c.want(i, op.Node, "splice result", dst, orig)
}

func (c *typeChecker) checkTuple(i int, op *rif.Op) {
	x := op.Tuple
	dst, ok := c.slotKind(i, op.Node, x.Dst)
	if !ok {
		return
	}
	if dst.Tag != types.KindTuple {
		c.errf(i, op.Node, "tuple result is %s, want a tuple", dst)
		return
	}
	if len(dst.Elems) != len(x.Elems) {
		c.errf(i, op.Node, "tuple packs %d elements, result kind has %d", len(x.Elems), len(dst.Elems))
		return
	}
	for j, s := range x.Elems {
		if k, ok := c.slotKind(i, op.Node, s); ok {
			c.want(i, op.Node, fmt.Sprintf("tuple element %d", j), k, dst.Elems[j])
		}
	}
}

func (c *typeChecker) checkArray(i int, op *rif.Op) {
	x := op.Array
	dst, ok := c.slotKind(i, op.Node, x.Dst)
	if !ok {
		return
	}
	if dst.Tag != types.KindArray {
		c.errf(i, op.Node, "array result is %s, want an array", dst)
		return
	}
	if dst.Len != len(x.Elems) {
		c.errf(i, op.Node, "array packs %d elements, result kind has %d", len(x.Elems), dst.Len)
		return
	}
	for j, s := range x.Elems {
		if k, ok := c.slotKind(i, op.Node, s); ok {
			c.want(i, op.Node, fmt.Sprintf("array element %d", j), k, *dst.Elem)
		}
	}
}

func (c *typeChecker) checkStruct(i int, op *rif.Op) {
	x := op.Struct
	dst, ok := c.slotKind(i, op.Node, x.Dst)
	if !ok {
		return
	}
	if dst.Tag != types.KindStruct {
		c.errf(i, op.Node, "struct result is %s, want a struct", dst)
		return
	}
	seen := make(map[string]bool, len(x.Fields))
	for _, fv := range x.Fields {
		f, ok := dst.Field(fv.Name)
		if !ok {
			c.errf(i, op.Node, "%s has no field %q", dst, fv.Name)
			continue
		}
		if seen[fv.Name] {
			c.errf(i, op.Node, "field %q packed twice", fv.Name)
		}
		seen[fv.Name] = true
		if k, ok := c.slotKind(i, op.Node, fv.Value); ok {
			c.want(i, op.Node, fmt.Sprintf("field %s", fv.Name), k, f.Kind)
		}
	}
	if !x.Rest.IsEmpty() {
		if k, ok := c.slotKind(i, op.Node, x.Rest); ok {
			c.want(i, op.Node, "struct rest", k, dst)
		}
		return
	}
	for _, f := range dst.Fields {
		if !seen[f.Name] {
			c.errf(i, op.Node, "field %s not packed", f.Name)
		}
	}
}

func (c *typeChecker) checkEnum(i int, op *rif.Op) {
	x := op.Enum
	dst, ok := c.slotKind(i, op.Node, x.Dst)
	if !ok {
		return
	}
	if dst.Tag != types.KindEnum {
		c.errf(i, op.Node, "enum result is %s, want an enum", dst)
		return
	}
	if tpl, ok := c.slotKind(i, op.Node, rif.Lit(x.Template)); ok {
		c.want(i, op.Node, "enum template", tpl, dst)
	}
	v, ok := dst.VariantByName(x.Variant)
	if !ok {
		c.errf(i, op.Node, "%s has no variant %q", dst, x.Variant)
		return
	}
	if x.Payload.IsEmpty() {
		if !v.Payload.IsEmpty() {
			c.errf(i, op.Node, "variant %s carries a payload, none packed", x.Variant)
		}
		return
	}
	if k, ok := c.slotKind(i, op.Node, x.Payload); ok {
		c.want(i, op.Node, fmt.Sprintf("payload of %s", x.Variant), k, v.Payload)
	}
}

func (c *typeChecker) checkRepeat(i int, op *rif.Op) {
	x := op.Repeat
	dst, ok := c.slotKind(i, op.Node, x.Dst)
	if !ok {
		return
	}
	if dst.Tag != types.KindArray {
		c.errf(i, op.Node, "repeat result is %s, want an array", dst)
		return
	}
	if dst.Len != x.Len {
		c.errf(i, op.Node, "repeat packs %d elements, result kind has %d", x.Len, dst.Len)
	}
	if k, ok := c.slotKind(i, op.Node, x.Value); ok {
		c.want(i, op.Node, "repeat value", k, *dst.Elem)
	}
}

func (c *typeChecker) checkCase(i int, op *rif.Op) {
	x := op.Case
	dst, ok1 := c.slotKind(i, op.Node, x.Dst)
	discr, ok2 := c.slotKind(i, op.Node, x.Discr)
	if !ok1 || !ok2 {
		return
	}
	if len(x.Table) == 0 {
		c.errf(i, op.Node, "empty case table")
		return
	}
	for j, e := range x.Table {
		if e.Arg.Wild {
			if j != len(x.Table)-1 {
				c.errf(i, op.Node, "wildcard arm %d is not last", j)
			}
		} else if k, ok := c.slotKind(i, op.Node, rif.Lit(e.Arg.Lit)); ok {
			c.want(i, op.Node, fmt.Sprintf("case pattern %d", j), k, discr)
		}
		if k, ok := c.slotKind(i, op.Node, e.Value); ok {
			c.want(i, op.Node, fmt.Sprintf("case arm %d", j), k, dst)
		}
	}
}

func (c *typeChecker) checkExec(i int, op *rif.Op) {
	x := op.Exec
	ext, ok := c.o.Externals[x.Fn]
	if !ok {
		c.errf(i, op.Node, "exec target %x is not in the external table", uint64(x.Fn))
		return
	}
	if len(x.Args) != len(ext.Params) {
		c.errf(i, op.Node, "wrong number of arguments for %s: want %d, got %d", ext.Name, len(ext.Params), len(x.Args))
		return
	}
	for j, a := range x.Args {
		if k, ok := c.slotKind(i, op.Node, a); ok {
			c.want(i, op.Node, fmt.Sprintf("argument %d of %s", j, ext.Name), k, ext.Params[j])
		}
	}
	if dst, ok := c.slotKind(i, op.Node, x.Dst); ok {
		c.want(i, op.Node, fmt.Sprintf("result of %s", ext.Name), dst, ext.Ret)
	}
}

func (c *typeChecker) checkCast(i int, op *rif.Op) {
	x := op.Cast
	if x.Width <= 0 || x.Width > types.MaxBits {
		c.errf(i, op.Node, "cast width %d out of range", x.Width)
		return
	}
	want := types.MakeBits(x.Width)
	if op.Kind == rif.OpAsSigned {
		want = types.MakeSigned(x.Width)
	}
	if dst, ok := c.slotKind(i, op.Node, x.Dst); ok {
		c.want(i, op.Node, "cast result", dst, want)
	}
	if k, ok := c.slotKind(i, op.Node, x.X); ok && !bitlike(k) {
		c.errf(i, op.Node, "cast operand is %s, want a vector", k)
	}
}

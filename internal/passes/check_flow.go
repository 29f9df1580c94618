package passes

import (
	"errors"
	"fmt"

	"silica/internal/ast"
	"silica/internal/rif"
)

// DataFlowCheckPass verifies register and literal lifetimes: arguments are
// pre-written, every register is written exactly once and before any read,
// every referenced literal exists, and the return slot carries a value.
type DataFlowCheckPass struct{}

func (DataFlowCheckPass) Name() string { return "check-flow" }

func (DataFlowCheckPass) Run(obj *rif.Object) (*rif.Object, error) {
	var errs []error
	violation := func(op int, node ast.NodeID, format string, args ...any) {
		errs = append(errs, &VerificationError{
			Kind:   VerifyFlowViolation,
			Object: obj.Name,
			Op:     op,
			Node:   node,
			Msg:    fmt.Sprintf(format, args...),
		})
	}

	written := make(map[rif.RegID]bool, len(obj.Kinds))
	for _, r := range obj.Arguments {
		if written[r] {
			violation(-1, ast.NoNodeID, "argument %s repeated", rif.Reg(r))
		}
		written[r] = true
	}

	for i := range obj.Ops {
		op := &obj.Ops[i]
		for _, s := range op.Reads() {
			if r, ok := rif.AsReg(s); ok && !written[r] {
				violation(i, op.Node, "%s read before it is written", rif.Reg(r))
			}
			if l, ok := rif.AsLit(s); ok {
				if _, defined := obj.Literals[l]; !defined {
					violation(i, op.Node, "%s is not in the literal table", rif.Lit(l))
				}
			}
		}
		dst := op.Dest()
		r, ok := rif.AsReg(dst)
		if !ok {
			violation(i, op.Node, "op writes %s, want a register", dst)
			continue
		}
		if written[r] {
			violation(i, op.Node, "%s written more than once", rif.Reg(r))
		}
		written[r] = true
	}

	if r, ok := rif.AsReg(obj.Return); ok {
		if !written[r] {
			violation(-1, ast.NoNodeID, "return register %s is never written", rif.Reg(r))
		}
	} else if l, ok := rif.AsLit(obj.Return); ok {
		if _, defined := obj.Literals[l]; !defined {
			violation(-1, ast.NoNodeID, "return literal %s is not in the literal table", rif.Lit(l))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return obj, nil
}

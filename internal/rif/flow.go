package rif

// Dest returns the slot the op writes.
func (op *Op) Dest() Slot {
	switch op.Kind {
	case OpAssign:
		return op.Assign.Dst
	case OpBinary:
		return op.Binary.Dst
	case OpUnary:
		return op.Unary.Dst
	case OpSelect:
		return op.Select.Dst
	case OpIndex:
		return op.Index.Dst
	case OpSplice:
		return op.Splice.Dst
	case OpTuple:
		return op.Tuple.Dst
	case OpArray:
		return op.Array.Dst
	case OpStruct:
		return op.Struct.Dst
	case OpEnum:
		return op.Enum.Dst
	case OpRepeat:
		return op.Repeat.Dst
	case OpCase:
		return op.Case.Dst
	case OpExec:
		return op.Exec.Dst
	case OpAsBits, OpAsSigned:
		return op.Cast.Dst
	default:
		return Empty()
	}
}

// Reads returns every slot the op reads: value operands, dynamic path
// indices, the enum template, and case-table patterns. The order is the
// op's own operand order.
func (op *Op) Reads() []Slot {
	var out []Slot
	switch op.Kind {
	case OpAssign:
		out = append(out, op.Assign.Src)
	case OpBinary:
		out = append(out, op.Binary.Left, op.Binary.Right)
	case OpUnary:
		out = append(out, op.Unary.X)
	case OpSelect:
		out = append(out, op.Select.Cond, op.Select.True, op.Select.False)
	case OpIndex:
		out = append(out, op.Index.Base)
		out = append(out, op.Index.Path.DynamicSlots()...)
	case OpSplice:
		out = append(out, op.Splice.Orig)
		out = append(out, op.Splice.Path.DynamicSlots()...)
		out = append(out, op.Splice.Value)
	case OpTuple:
		out = append(out, op.Tuple.Elems...)
	case OpArray:
		out = append(out, op.Array.Elems...)
	case OpStruct:
		for _, f := range op.Struct.Fields {
			out = append(out, f.Value)
		}
		if !op.Struct.Rest.IsEmpty() {
			out = append(out, op.Struct.Rest)
		}
	case OpEnum:
		out = append(out, Lit(op.Enum.Template))
		if !op.Enum.Payload.IsEmpty() {
			out = append(out, op.Enum.Payload)
		}
	case OpRepeat:
		out = append(out, op.Repeat.Value)
	case OpCase:
		out = append(out, op.Case.Discr)
		for _, e := range op.Case.Table {
			if !e.Arg.Wild {
				out = append(out, Lit(e.Arg.Lit))
			}
			out = append(out, e.Value)
		}
	case OpExec:
		out = append(out, op.Exec.Args...)
	case OpAsBits, OpAsSigned:
		out = append(out, op.Cast.X)
	}
	return out
}

// RewriteReads applies f to every read slot in place. Slots that must stay
// in their reference class keep their old value when f moves them out of it:
// case-table patterns and enum templates remain literals.
func (op *Op) RewriteReads(f func(Slot) Slot) {
	switch op.Kind {
	case OpAssign:
		op.Assign.Src = f(op.Assign.Src)
	case OpBinary:
		op.Binary.Left = f(op.Binary.Left)
		op.Binary.Right = f(op.Binary.Right)
	case OpUnary:
		op.Unary.X = f(op.Unary.X)
	case OpSelect:
		op.Select.Cond = f(op.Select.Cond)
		op.Select.True = f(op.Select.True)
		op.Select.False = f(op.Select.False)
	case OpIndex:
		op.Index.Base = f(op.Index.Base)
		op.Index.Path = op.Index.Path.RemapSlots(f)
	case OpSplice:
		op.Splice.Orig = f(op.Splice.Orig)
		op.Splice.Path = op.Splice.Path.RemapSlots(f)
		op.Splice.Value = f(op.Splice.Value)
	case OpTuple:
		for i := range op.Tuple.Elems {
			op.Tuple.Elems[i] = f(op.Tuple.Elems[i])
		}
	case OpArray:
		for i := range op.Array.Elems {
			op.Array.Elems[i] = f(op.Array.Elems[i])
		}
	case OpStruct:
		for i := range op.Struct.Fields {
			op.Struct.Fields[i].Value = f(op.Struct.Fields[i].Value)
		}
		if !op.Struct.Rest.IsEmpty() {
			op.Struct.Rest = f(op.Struct.Rest)
		}
	case OpEnum:
		if lit, ok := AsLit(f(Lit(op.Enum.Template))); ok {
			op.Enum.Template = lit
		}
		if !op.Enum.Payload.IsEmpty() {
			op.Enum.Payload = f(op.Enum.Payload)
		}
	case OpRepeat:
		op.Repeat.Value = f(op.Repeat.Value)
	case OpCase:
		op.Case.Discr = f(op.Case.Discr)
		for i := range op.Case.Table {
			e := &op.Case.Table[i]
			if !e.Arg.Wild {
				if lit, ok := AsLit(f(Lit(e.Arg.Lit))); ok {
					e.Arg.Lit = lit
				}
			}
			e.Value = f(e.Value)
		}
	case OpExec:
		for i := range op.Exec.Args {
			op.Exec.Args[i] = f(op.Exec.Args[i])
		}
	case OpAsBits, OpAsSigned:
		op.Cast.X = f(op.Cast.X)
	}
}

// RewriteDest applies f to the written slot in place.
func (op *Op) RewriteDest(f func(Slot) Slot) {
	switch op.Kind {
	case OpAssign:
		op.Assign.Dst = f(op.Assign.Dst)
	case OpBinary:
		op.Binary.Dst = f(op.Binary.Dst)
	case OpUnary:
		op.Unary.Dst = f(op.Unary.Dst)
	case OpSelect:
		op.Select.Dst = f(op.Select.Dst)
	case OpIndex:
		op.Index.Dst = f(op.Index.Dst)
	case OpSplice:
		op.Splice.Dst = f(op.Splice.Dst)
	case OpTuple:
		op.Tuple.Dst = f(op.Tuple.Dst)
	case OpArray:
		op.Array.Dst = f(op.Array.Dst)
	case OpStruct:
		op.Struct.Dst = f(op.Struct.Dst)
	case OpEnum:
		op.Enum.Dst = f(op.Enum.Dst)
	case OpRepeat:
		op.Repeat.Dst = f(op.Repeat.Dst)
	case OpCase:
		op.Case.Dst = f(op.Case.Dst)
	case OpExec:
		op.Exec.Dst = f(op.Exec.Dst)
	case OpAsBits, OpAsSigned:
		op.Cast.Dst = f(op.Cast.Dst)
	}
}

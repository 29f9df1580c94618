package rif

import (
	"fmt"
	"io"
	"slices"
	"strings"
)

// DumpModule writes a human-readable representation of a module. Output is
// deterministic: objects by name, registers and literals by ID.
func DumpModule(w io.Writer, m *Module) error {
	if w == nil || m == nil {
		return nil
	}
	top, err := m.FuncName(m.Top)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "design top=%s\n", top)
	fmt.Fprintf(w, "objects=%d\n", len(m.Objects))
	for _, fn := range m.SortedFuncs() {
		if err := DumpObject(w, m.Objects[fn]); err != nil {
			return err
		}
	}
	return nil
}

// DumpObject writes a human-readable representation of one object.
func DumpObject(w io.Writer, o *Object) error {
	if w == nil || o == nil {
		return nil
	}
	fmt.Fprintf(w, "\nfn %s_%x:\n", o.Name, uint64(o.Fn))

	args := make([]string, len(o.Arguments))
	for i, r := range o.Arguments {
		args[i] = Reg(r).String()
	}
	fmt.Fprintf(w, "  args: %s\n", strings.Join(args, ", "))
	fmt.Fprintf(w, "  return: %s\n", o.Return)

	fmt.Fprintf(w, "  regs:\n")
	regs := make([]RegID, 0, len(o.Kinds))
	for id := range o.Kinds {
		regs = append(regs, id)
	}
	slices.Sort(regs)
	for _, id := range regs {
		fmt.Fprintf(w, "    %s: %s\n", Reg(id), o.Kinds[id])
	}

	if len(o.Literals) > 0 {
		fmt.Fprintf(w, "  lits:\n")
		lits := make([]LitID, 0, len(o.Literals))
		for id := range o.Literals {
			lits = append(lits, id)
		}
		slices.Sort(lits)
		for _, id := range lits {
			fmt.Fprintf(w, "    %s: %s\n", Lit(id), o.Literals[id])
		}
	}

	fmt.Fprintf(w, "  ops:\n")
	for i := range o.Ops {
		fmt.Fprintf(w, "    %s\n", FormatOp(o, &o.Ops[i]))
	}
	return nil
}

// FormatOp renders one op on a single line. The object supplies callee
// names; a nil object falls back to raw identities.
func FormatOp(o *Object, op *Op) string {
	if op == nil {
		return "<op?>"
	}
	switch op.Kind {
	case OpAssign:
		return fmt.Sprintf("%s = %s", op.Assign.Dst, op.Assign.Src)
	case OpBinary:
		return fmt.Sprintf("%s = (%s %s %s)", op.Binary.Dst, op.Binary.Left, op.Binary.Op, op.Binary.Right)
	case OpUnary:
		if op.Unary.Op.IsReduce() {
			return fmt.Sprintf("%s = %s%s", op.Unary.Dst, op.Unary.X, op.Unary.Op)
		}
		return fmt.Sprintf("%s = (%s%s)", op.Unary.Dst, op.Unary.Op, op.Unary.X)
	case OpSelect:
		return fmt.Sprintf("%s = select %s ? %s : %s", op.Select.Dst, op.Select.Cond, op.Select.True, op.Select.False)
	case OpIndex:
		return fmt.Sprintf("%s = %s%s", op.Index.Dst, op.Index.Base, op.Index.Path)
	case OpSplice:
		return fmt.Sprintf("%s = splice %s%s <- %s", op.Splice.Dst, op.Splice.Orig, op.Splice.Path, op.Splice.Value)
	case OpTuple:
		return fmt.Sprintf("%s = tuple (%s)", op.Tuple.Dst, joinSlots(op.Tuple.Elems))
	case OpArray:
		return fmt.Sprintf("%s = array [%s]", op.Array.Dst, joinSlots(op.Array.Elems))
	case OpStruct:
		parts := make([]string, 0, len(op.Struct.Fields)+1)
		for _, f := range op.Struct.Fields {
			parts = append(parts, fmt.Sprintf("%s=%s", f.Name, f.Value))
		}
		if !op.Struct.Rest.IsEmpty() {
			parts = append(parts, ".."+op.Struct.Rest.String())
		}
		return fmt.Sprintf("%s = struct {%s}", op.Struct.Dst, strings.Join(parts, ", "))
	case OpEnum:
		if op.Enum.Payload.IsEmpty() {
			return fmt.Sprintf("%s = enum %s #%s", op.Enum.Dst, Lit(op.Enum.Template), op.Enum.Variant)
		}
		return fmt.Sprintf("%s = enum %s #%s(%s)", op.Enum.Dst, Lit(op.Enum.Template), op.Enum.Variant, op.Enum.Payload)
	case OpRepeat:
		return fmt.Sprintf("%s = [%s; %d]", op.Repeat.Dst, op.Repeat.Value, op.Repeat.Len)
	case OpCase:
		arms := make([]string, 0, len(op.Case.Table))
		for _, e := range op.Case.Table {
			if e.Arg.Wild {
				arms = append(arms, fmt.Sprintf("_ -> %s", e.Value))
			} else {
				arms = append(arms, fmt.Sprintf("%s -> %s", Lit(e.Arg.Lit), e.Value))
			}
		}
		return fmt.Sprintf("%s = case %s { %s }", op.Case.Dst, op.Case.Discr, strings.Join(arms, "; "))
	case OpExec:
		name := fmt.Sprintf("fn#%x", uint64(op.Exec.Fn))
		if o != nil {
			if x, ok := o.Externals[op.Exec.Fn]; ok {
				name = x.Name
			}
		}
		return fmt.Sprintf("%s = exec %s(%s)", op.Exec.Dst, name, joinSlots(op.Exec.Args))
	case OpAsBits:
		return fmt.Sprintf("%s = (%s as b%d)", op.Cast.Dst, op.Cast.X, op.Cast.Width)
	case OpAsSigned:
		return fmt.Sprintf("%s = (%s as s%d)", op.Cast.Dst, op.Cast.X, op.Cast.Width)
	default:
		return "<op?>"
	}
}

func joinSlots(slots []Slot) string {
	parts := make([]string, len(slots))
	for i, s := range slots {
		parts[i] = s.String()
	}
	return strings.Join(parts, ", ")
}

// String renders the object through DumpObject.
func (o *Object) String() string {
	var sb strings.Builder
	_ = DumpObject(&sb, o)
	return sb.String()
}

// String renders the module through DumpModule.
func (m *Module) String() string {
	var sb strings.Builder
	_ = DumpModule(&sb, m)
	return sb.String()
}

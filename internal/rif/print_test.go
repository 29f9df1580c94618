package rif

import (
	"strings"
	"testing"

	"silica/internal/ast"
	"silica/internal/types"
)

func TestFormatOp(t *testing.T) {
	tests := []struct {
		name string
		op   Op
		want string
	}{
		{
			"assign",
			Op{Kind: OpAssign, Assign: AssignOp{Dst: Reg(1), Src: Lit(0)}},
			"r1 = l0",
		},
		{
			"binary",
			Op{Kind: OpBinary, Binary: BinaryOp{Op: ast.BinAdd, Dst: Reg(2), Left: Reg(0), Right: Reg(1)}},
			"r2 = (r0 + r1)",
		},
		{
			"unary",
			Op{Kind: OpUnary, Unary: UnaryOp{Op: ast.UnNeg, Dst: Reg(1), X: Reg(0)}},
			"r1 = (-r0)",
		},
		{
			"reduction",
			Op{Kind: OpUnary, Unary: UnaryOp{Op: ast.UnAll, Dst: Reg(1), X: Reg(0)}},
			"r1 = r0.all()",
		},
		{
			"select",
			Op{Kind: OpSelect, Select: SelectOp{Dst: Reg(3), Cond: Reg(0), True: Reg(1), False: Reg(2)}},
			"r3 = select r0 ? r1 : r2",
		},
		{
			"index",
			Op{Kind: OpIndex, Index: IndexOp{Dst: Reg(1), Base: Reg(0), Path: Path{}.Fld("mem").Idx(2)}},
			"r1 = r0.mem[2]",
		},
		{
			"splice",
			Op{Kind: OpSplice, Splice: SpliceOp{Dst: Reg(2), Orig: Reg(0), Path: Path{}.Fld("mem").Dyn(Reg(1)), Value: Lit(0)}},
			"r2 = splice r0.mem[[r1]] <- l0",
		},
		{
			"tuple",
			Op{Kind: OpTuple, Tuple: TupleOp{Dst: Reg(1), Elems: []Slot{Reg(0), Lit(0)}}},
			"r1 = tuple (r0, l0)",
		},
		{
			"array",
			Op{Kind: OpArray, Array: ArrayOp{Dst: Reg(1), Elems: []Slot{Reg(0), Reg(0)}}},
			"r1 = array [r0, r0]",
		},
		{
			"struct",
			Op{Kind: OpStruct, Struct: StructOp{Dst: Reg(2), Fields: []FieldValue{{Name: "acc", Value: Reg(0)}}, Rest: Reg(1)}},
			"r2 = struct {acc=r0, ..r1}",
		},
		{
			"enum with payload",
			Op{Kind: OpEnum, Enum: EnumOp{Dst: Reg(1), Template: 0, Variant: "Data", Payload: Reg(0)}},
			"r1 = enum l0 #Data(r0)",
		},
		{
			"enum without payload",
			Op{Kind: OpEnum, Enum: EnumOp{Dst: Reg(1), Template: 1, Variant: "Idle"}},
			"r1 = enum l1 #Idle",
		},
		{
			"repeat",
			Op{Kind: OpRepeat, Repeat: RepeatOp{Dst: Reg(1), Value: Reg(0), Len: 4}},
			"r1 = [r0; 4]",
		},
		{
			"case",
			Op{Kind: OpCase, Case: CaseOp{Dst: Reg(2), Discr: Reg(0), Table: []CaseEntry{
				{Arg: CaseArg{Lit: 0}, Value: Reg(1)},
				{Arg: CaseArg{Wild: true}, Value: Lit(1)},
			}}},
			"r2 = case r0 { l0 -> r1; _ -> l1 }",
		},
		{
			"exec without object",
			Op{Kind: OpExec, Exec: ExecOp{Dst: Reg(1), Fn: 0x2a, Args: []Slot{Reg(0)}}},
			"r1 = exec fn#2a(r0)",
		},
		{
			"as_bits",
			Op{Kind: OpAsBits, Cast: CastOp{Dst: Reg(1), X: Reg(0), Width: 4}},
			"r1 = (r0 as b4)",
		},
		{
			"as_signed",
			Op{Kind: OpAsSigned, Cast: CastOp{Dst: Reg(1), X: Reg(0), Width: 4}},
			"r1 = (r0 as s4)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatOp(nil, &tt.op); got != tt.want {
				t.Fatalf("FormatOp = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatOpExecName(t *testing.T) {
	o := counterObject()
	o.Externals = map[ast.FuncID]*ExternalFunction{
		0x2a: {Name: "clz", Fn: 0x2a},
	}
	op := Op{Kind: OpExec, Exec: ExecOp{Dst: Reg(1), Fn: 0x2a, Args: []Slot{Reg(0)}}}
	if got := FormatOp(o, &op); got != "r1 = exec clz(r0)" {
		t.Fatalf("FormatOp = %q", got)
	}
}

func TestDumpObject(t *testing.T) {
	o := counterObject()
	want := `
fn counter_2a:
  args: r0, r1
  return: r3
  regs:
    r0: b1
    r1: b8
    r2: b8
    r3: b8
  lits:
    l0: b8(0x01)
  ops:
    r2 = (r1 + l0)
    r3 = select r0 ? r2 : r1
`
	if got := o.String(); got != want {
		t.Fatalf("DumpObject:\n%s\nwant:\n%s", got, want)
	}
	if o.String() != o.String() {
		t.Fatal("dump is not deterministic")
	}
}

func TestDumpModule(t *testing.T) {
	m := NewModule(3)
	m.Objects[3] = &Object{Name: "counter", Fn: 3, Return: Reg(0), Kinds: map[RegID]types.Kind{0: types.MakeBits(8)}}
	m.Objects[7] = &Object{Name: "add", Fn: 7, Return: Reg(0), Kinds: map[RegID]types.Kind{0: types.MakeBits(8)}}

	out := m.String()
	if !strings.HasPrefix(out, "design top=counter_3\nobjects=2\n") {
		t.Fatalf("header:\n%s", out)
	}
	addAt := strings.Index(out, "fn add_7:")
	counterAt := strings.Index(out, "fn counter_3:")
	if addAt < 0 || counterAt < 0 || addAt > counterAt {
		t.Fatalf("objects not sorted by name:\n%s", out)
	}
}

func TestModuleFuncName(t *testing.T) {
	m := NewModule(3)
	m.Objects[3] = &Object{Name: "counter", Fn: 3}

	name, err := m.FuncName(3)
	if err != nil || name != "counter_3" {
		t.Fatalf("FuncName = %q, %v", name, err)
	}
	if _, err := m.FuncName(9); err == nil {
		t.Fatal("FuncName found a missing function")
	}
}

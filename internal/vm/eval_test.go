package vm

import (
	"path/filepath"
	"strings"
	"testing"

	"silica/internal/ast"
	"silica/internal/compiler"
	"silica/internal/rif"
	"silica/internal/source"
	"silica/internal/types"
)

func b8v(t *testing.T, v uint64) types.TypedBits {
	t.Helper()
	tb, err := types.FromUint(types.MakeBits(8), v)
	if err != nil {
		t.Fatalf("FromUint(8, %d): %v", v, err)
	}
	return tb
}

func bitsv(t *testing.T, width int, v uint64) types.TypedBits {
	t.Helper()
	tb, err := types.FromUint(types.MakeBits(width), v)
	if err != nil {
		t.Fatalf("FromUint(%d, %d): %v", width, v, err)
	}
	return tb
}

func arrayv(t *testing.T, elems ...uint64) types.TypedBits {
	t.Helper()
	out := types.Zero(types.MakeArray(types.MakeBits(8), len(elems)))
	for i, e := range elems {
		for bit := 0; bit < 8; bit++ {
			out.Bits[i*8+bit] = e&(1<<bit) != 0
		}
	}
	return out
}

func compileBoth(t *testing.T, top *ast.Kernel) (raw, opt *rif.Module) {
	t.Helper()
	raw, err := compiler.CompileDesign(source.NewFileSet(), top, compiler.Options{NoOptimize: true})
	if err != nil {
		t.Fatalf("CompileDesign(%s, no-optimize): %v", top.Name, err)
	}
	opt, err = compiler.CompileDesign(source.NewFileSet(), top, compiler.Options{})
	if err != nil {
		t.Fatalf("CompileDesign(%s): %v", top.Name, err)
	}
	return raw, opt
}

// evalBoth evaluates the unoptimized and optimized forms and insists they
// agree before returning the value.
func evalBoth(t *testing.T, top *ast.Kernel, args []types.TypedBits) types.TypedBits {
	t.Helper()
	raw, opt := compileBoth(t, top)
	got, err := RunModule(raw, args)
	if err != nil {
		t.Fatalf("RunModule(raw %s): %v", top.Name, err)
	}
	after, err := RunModule(opt, args)
	if err != nil {
		t.Fatalf("RunModule(optimized %s): %v", top.Name, err)
	}
	if !got.Equal(after) {
		t.Fatalf("optimization changed %s: %s before, %s after", top.Name, got, after)
	}
	return got
}

func mixerKernel() *ast.Kernel {
	b := ast.NewBuilder()
	byte8 := types.MakeBits(8)
	return b.Kernel("mixer",
		[]ast.Param{b.Param("x", byte8), b.Param("y", byte8), b.Param("sel", types.MakeBits(1))},
		byte8,
		b.Block(
			[]ast.Stmt{b.Let("s", b.AsBits(b.Binary(ast.BinAdd,
				b.AsSigned(b.Ident("x"), 8), b.AsSigned(b.Ident("y"), 8)), 8))},
			b.If(b.Ident("sel"),
				b.Block(nil, b.Ident("s")),
				b.Block(nil, b.Binary(ast.BinXor, b.Ident("x"), b.Ident("y"))))))
}

func TestRunSelectAndCasts(t *testing.T) {
	k := mixerKernel()
	got := evalBoth(t, k, []types.TypedBits{b8v(t, 3), b8v(t, 5), bitsv(t, 1, 1)})
	if !got.Equal(b8v(t, 8)) {
		t.Fatalf("mixer(3, 5, 1) = %s, want 8", got)
	}
	got = evalBoth(t, k, []types.TypedBits{b8v(t, 3), b8v(t, 5), bitsv(t, 1, 0)})
	if !got.Equal(b8v(t, 6)) {
		t.Fatalf("mixer(3, 5, 0) = %s, want 6", got)
	}
	got = evalBoth(t, k, []types.TypedBits{b8v(t, 0x40), b8v(t, 0x3f), bitsv(t, 1, 1)})
	if !got.Equal(b8v(t, 0x7f)) {
		t.Fatalf("mixer(0x40, 0x3f, 1) = %s, want 0x7f", got)
	}
}

func TestRunDynamicIndex(t *testing.T) {
	b := ast.NewBuilder()
	byte8 := types.MakeBits(8)
	k := b.Kernel("gather",
		[]ast.Param{b.Param("regs", types.MakeArray(byte8, 4)), b.Param("i", types.MakeBits(2))},
		byte8,
		b.Block(nil, b.IndexDyn(b.Ident("regs"), b.Ident("i"))))

	regs := arrayv(t, 10, 20, 30, 40)
	for i, want := range []uint64{10, 20, 30, 40} {
		got := evalBoth(t, k, []types.TypedBits{regs, bitsv(t, 2, uint64(i))})
		if !got.Equal(b8v(t, want)) {
			t.Fatalf("gather(regs, %d) = %s, want %d", i, got, want)
		}
	}
}

func TestRunDynamicSplice(t *testing.T) {
	b := ast.NewBuilder()
	byte8 := types.MakeBits(8)
	bank := types.MakeArray(byte8, 4)
	k := b.Kernel("store",
		[]ast.Param{b.Param("regs", bank), b.Param("i", types.MakeBits(2)), b.Param("v", byte8)},
		bank,
		b.Block(
			[]ast.Stmt{
				b.Let("rs", b.Ident("regs")),
				b.Assign(b.IndexDyn(b.Ident("rs"), b.Ident("i")), b.Ident("v")),
			},
			b.Ident("rs")))

	got := evalBoth(t, k, []types.TypedBits{arrayv(t, 1, 2, 3, 4), bitsv(t, 2, 2), b8v(t, 0xaa)})
	if want := arrayv(t, 1, 2, 0xaa, 4); !got.Equal(want) {
		t.Fatalf("store = %s, want %s", got, want)
	}
}

func TestRunAggregates(t *testing.T) {
	b := ast.NewBuilder()
	byte8 := types.MakeBits(8)
	k := b.Kernel("pack",
		[]ast.Param{b.Param("x", byte8)},
		byte8,
		b.Block(
			[]ast.Stmt{
				b.Let("a", b.Array(b.Ident("x"),
					b.Binary(ast.BinAdd, b.Ident("x"), b.Lit(1)),
					b.Binary(ast.BinAdd, b.Ident("x"), b.Lit(2)))),
				b.Let("z", b.Repeat(b.TypedLit(3, types.MakeBits(4)), 2)),
				b.Let("t", b.Tuple(b.Index(b.Ident("a"), 1), b.Index(b.Ident("z"), 0))),
			},
			b.Binary(ast.BinOr,
				b.Index(b.Ident("t"), 0),
				b.AsBits(b.Index(b.Ident("t"), 1), 8))))

	got := evalBoth(t, k, []types.TypedBits{b8v(t, 0x10)})
	if want := b8v(t, 0x13); !got.Equal(want) {
		t.Fatalf("pack(0x10) = %s, want %s", got, want)
	}
}

func TestRunStructOps(t *testing.T) {
	b := ast.NewBuilder()
	byte8 := types.MakeBits(8)
	pair := types.MakeStruct("Pair",
		types.Field{Name: "lo", Kind: byte8},
		types.Field{Name: "hi", Kind: byte8})
	k := b.Kernel("bump",
		[]ast.Param{b.Param("p", pair)},
		pair,
		b.Block(nil, b.StructUpdate(pair, b.Ident("p"),
			ast.FieldInit{Name: "lo", Value: b.Binary(ast.BinAdd,
				b.Field(b.Ident("p"), "lo"), b.Lit(1))})))

	arg := types.Zero(pair)
	for bit := 0; bit < 8; bit++ {
		arg.Bits[bit] = 0x41&(1<<bit) != 0
		arg.Bits[8+bit] = 0x99&(1<<bit) != 0
	}
	got := evalBoth(t, k, []types.TypedBits{arg})
	want := types.Zero(pair)
	for bit := 0; bit < 8; bit++ {
		want.Bits[bit] = 0x42&(1<<bit) != 0
		want.Bits[8+bit] = 0x99&(1<<bit) != 0
	}
	if !got.Equal(want) {
		t.Fatalf("bump = %s, want %s", got, want)
	}
}

func TestRunCaseWithWildcard(t *testing.T) {
	b := ast.NewBuilder()
	k := b.Kernel("decode",
		[]ast.Param{b.Param("x", types.MakeBits(2))},
		types.MakeBits(8),
		b.Block(nil, b.Match(b.Ident("x"),
			ast.MatchArm{Pat: &ast.LitPat{Value: 0}, Body: b.Block(nil, b.Lit(0x11))},
			ast.MatchArm{Pat: &ast.LitPat{Value: 1}, Body: b.Block(nil, b.Lit(0x22))},
			ast.MatchArm{Pat: &ast.WildPat{}, Body: b.Block(nil, b.Lit(0x33))},
		)))

	for i, want := range []uint64{0x11, 0x22, 0x33, 0x33} {
		got := evalBoth(t, k, []types.TypedBits{bitsv(t, 2, uint64(i))})
		if !got.Equal(b8v(t, want)) {
			t.Fatalf("decode(%d) = %s, want %#x", i, got, want)
		}
	}
}

func TestRunReductions(t *testing.T) {
	b := ast.NewBuilder()
	k := b.Kernel("flags",
		[]ast.Param{b.Param("x", types.MakeBits(8))},
		types.MakeBits(1),
		b.Block(nil, b.Binary(ast.BinXor,
			b.Unary(ast.UnAny, b.Ident("x")),
			b.Unary(ast.UnXor, b.Ident("x")))))

	tests := []struct{ x, want uint64 }{
		{0x00, 0}, // any=0 xor parity=0
		{0x01, 0}, // any=1 xor parity=1
		{0x03, 1}, // any=1 xor parity=0
	}
	for _, tt := range tests {
		got := evalBoth(t, k, []types.TypedBits{b8v(t, tt.x)})
		if !got.Equal(bitsv(t, 1, tt.want)) {
			t.Fatalf("flags(%#x) = %s, want %d", tt.x, got, tt.want)
		}
	}
}

func TestRunExecPrefersModuleObject(t *testing.T) {
	b := ast.NewBuilder()
	byte8 := types.MakeBits(8)
	double := b.Kernel("double",
		[]ast.Param{b.Param("x", byte8)}, byte8,
		b.Block(nil, b.Binary(ast.BinAdd, b.Ident("x"), b.Ident("x"))))
	top := b.Kernel("top",
		[]ast.Param{b.Param("x", byte8)}, byte8,
		b.Block(nil, b.Call(double, b.Binary(ast.BinAdd, b.Ident("x"), b.Lit(1)))))

	got := evalBoth(t, top, []types.TypedBits{b8v(t, 4)})
	if !got.Equal(b8v(t, 10)) {
		t.Fatalf("top(4) = %s, want 10", got)
	}
}

func TestRunExecPrimitiveHook(t *testing.T) {
	b := ast.NewBuilder()
	byte8 := types.MakeBits(8)
	popcnt := b.Extern("popcnt", []ast.Param{b.Param("x", byte8)}, byte8, "",
		func(args []types.TypedBits) (types.TypedBits, error) {
			n := uint64(0)
			for _, set := range args[0].Bits {
				if set {
					n++
				}
			}
			return types.FromUint(types.MakeBits(8), n)
		})
	top := b.Kernel("top",
		[]ast.Param{b.Param("x", byte8)}, byte8,
		b.Block(nil, b.CallExtern(popcnt, b.Ident("x"))))

	got := evalBoth(t, top, []types.TypedBits{b8v(t, 0xb1)})
	if !got.Equal(b8v(t, 4)) {
		t.Fatalf("top(0xb1) = %s, want 4", got)
	}
}

func TestRunLoadedArtifactLosesHooks(t *testing.T) {
	b := ast.NewBuilder()
	byte8 := types.MakeBits(8)
	id := b.Extern("ident", []ast.Param{b.Param("x", byte8)}, byte8, "",
		func(args []types.TypedBits) (types.TypedBits, error) { return args[0], nil })
	top := b.Kernel("top",
		[]ast.Param{b.Param("x", byte8)}, byte8,
		b.Block(nil, b.CallExtern(id, b.Ident("x"))))

	mod, err := compiler.CompileDesign(source.NewFileSet(), top, compiler.Options{})
	if err != nil {
		t.Fatalf("CompileDesign: %v", err)
	}
	path := filepath.Join(t.TempDir(), "top.slm")
	if err := compiler.SaveModule(path, mod); err != nil {
		t.Fatalf("SaveModule: %v", err)
	}
	loaded, err := compiler.LoadModule(path)
	if err != nil {
		t.Fatalf("LoadModule: %v", err)
	}
	_, err = RunModule(loaded, []types.TypedBits{b8v(t, 7)})
	if err == nil {
		t.Fatal("evaluating a hookless primitive succeeded")
	}
	if !strings.Contains(err.Error(), "no compiled object and no evaluation hook") {
		t.Fatalf("error %q does not name the missing hook", err)
	}
}

func TestRunArgumentChecks(t *testing.T) {
	mod, err := compiler.CompileDesign(source.NewFileSet(), mixerKernel(), compiler.Options{})
	if err != nil {
		t.Fatalf("CompileDesign: %v", err)
	}
	if _, err := RunModule(mod, nil); err == nil {
		t.Fatal("missing arguments accepted")
	}
	args := []types.TypedBits{b8v(t, 1), bitsv(t, 4, 2), bitsv(t, 1, 0)}
	_, err = RunModule(mod, args)
	if err == nil {
		t.Fatal("mis-kinded argument accepted")
	}
	if !strings.Contains(err.Error(), "argument 1") {
		t.Fatalf("error %q does not point at argument 1", err)
	}
}

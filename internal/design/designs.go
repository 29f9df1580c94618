package design

import (
	"silica/internal/ast"
	"silica/internal/types"
)

// CmdKind is the alu design's command enum.
func CmdKind() types.Kind {
	return types.MakeEnum("Cmd", []types.Variant{
		{Name: "Add", Discr: 0, Payload: types.MakeEmpty()},
		{Name: "Sub", Discr: 1, Payload: types.MakeEmpty()},
		{Name: "Nand", Discr: 2, Payload: types.MakeEmpty()},
		{Name: "Pass", Discr: 3, Payload: types.MakeEmpty()},
	}, types.DiscriminantLayout{Width: 2, Alignment: types.AlignLowBits, Type: types.DiscUnsigned})
}

// StateKind is the fsm design's state enum.
func StateKind() types.Kind {
	return types.MakeEnum("State", []types.Variant{
		{Name: "Idle", Discr: 0, Payload: types.MakeEmpty()},
		{Name: "Run", Discr: 1, Payload: types.MakeEmpty()},
		{Name: "Done", Discr: 2, Payload: types.MakeEmpty()},
	}, types.DiscriminantLayout{Width: 2, Alignment: types.AlignLowBits, Type: types.DiscUnsigned})
}

// BankKind is the scatter design's register bank.
func BankKind() types.Kind {
	return types.MakeStruct("RegBank",
		types.Field{Name: "file", Kind: types.MakeArray(types.MakeBits(8), 4)},
		types.Field{Name: "count", Kind: types.MakeBits(8)})
}

func buildCounter(b *ast.Builder) *ast.Kernel {
	byte8 := types.MakeBits(8)
	return b.Kernel("counter",
		[]ast.Param{b.Param("state", byte8), b.Param("enable", types.MakeBits(1))},
		byte8,
		b.Block(nil, b.If(b.Ident("enable"),
			b.Block(nil, b.Binary(ast.BinAdd, b.Ident("state"), b.Lit(1))),
			b.Block(nil, b.Ident("state")))))
}

func buildALU(b *ast.Builder) *ast.Kernel {
	byte8 := types.MakeBits(8)
	sum := b.Kernel("sum",
		[]ast.Param{b.Param("x", byte8), b.Param("y", byte8)},
		byte8,
		b.Block(nil, b.Binary(ast.BinAdd, b.Ident("x"), b.Ident("y"))))
	nand := b.Extern("nand8",
		[]ast.Param{b.Param("x", byte8), b.Param("y", byte8)},
		byte8,
		"nand8(x, y) = !(x & y)",
		func(args []types.TypedBits) (types.TypedBits, error) {
			v, err := args[0].And(args[1])
			if err != nil {
				return types.TypedBits{}, err
			}
			return v.Not()
		})
	return b.Kernel("alu",
		[]ast.Param{b.Param("cmd", CmdKind()), b.Param("a", byte8), b.Param("d", byte8)},
		byte8,
		b.Block(nil, b.Match(b.Ident("cmd"),
			ast.MatchArm{Pat: &ast.VariantPat{Variant: "Add"},
				Body: b.Block(nil, b.Call(sum, b.Ident("a"), b.Ident("d")))},
			ast.MatchArm{Pat: &ast.VariantPat{Variant: "Sub"},
				Body: b.Block(nil, b.Binary(ast.BinSub, b.Ident("a"), b.Ident("d")))},
			ast.MatchArm{Pat: &ast.VariantPat{Variant: "Nand"},
				Body: b.Block(nil, b.CallExtern(nand, b.Ident("a"), b.Ident("d")))},
			ast.MatchArm{Pat: &ast.VariantPat{Variant: "Pass"},
				Body: b.Block(nil, b.Ident("a"))},
		)))
}

func buildFSM(b *ast.Builder) *ast.Kernel {
	state := StateKind()
	return b.Kernel("fsm",
		[]ast.Param{b.Param("s", state), b.Param("start", types.MakeBits(1))},
		state,
		b.Block(nil, b.Match(b.Ident("s"),
			ast.MatchArm{Pat: &ast.VariantPat{Variant: "Idle"},
				Body: b.Block(nil, b.If(b.Ident("start"),
					b.Block(nil, b.Enum(state, "Run", nil)),
					b.Block(nil, b.Enum(state, "Idle", nil))))},
			ast.MatchArm{Pat: &ast.VariantPat{Variant: "Run"},
				Body: b.Block(nil, b.Enum(state, "Done", nil))},
			ast.MatchArm{Pat: &ast.VariantPat{Variant: "Done"},
				Body: b.Block(nil, b.Enum(state, "Done", nil))},
		)))
}

func buildScatter(b *ast.Builder) *ast.Kernel {
	bank := BankKind()
	return b.Kernel("scatter",
		[]ast.Param{
			b.Param("bank", bank),
			b.Param("idx", types.MakeBits(2)),
			b.Param("value", types.MakeBits(8)),
		},
		bank,
		b.Block(
			[]ast.Stmt{
				b.Let("rb", b.Ident("bank")),
				b.Assign(
					b.IndexDyn(b.Field(b.Ident("rb"), "file"), b.Ident("idx")),
					b.Ident("value")),
			},
			b.StructUpdate(bank, b.Ident("rb"),
				ast.FieldInit{Name: "count", Value: b.Binary(ast.BinAdd,
					b.Field(b.Ident("rb"), "count"), b.Lit(1))})))
}

func buildChecksum(b *ast.Builder) *ast.Kernel {
	byte8 := types.MakeBits(8)
	return b.Kernel("checksum",
		[]ast.Param{b.Param("a", byte8), b.Param("d", byte8)},
		byte8,
		b.Block(
			[]ast.Stmt{
				b.Let("lanes", b.Array(
					b.Ident("a"),
					b.Ident("d"),
					b.Binary(ast.BinXor, b.Ident("a"), b.Ident("d")))),
				b.Let("seed", b.Repeat(b.TypedLit(0x0f, byte8), 2)),
				b.Let("t", b.Tuple(
					b.Binary(ast.BinAdd, b.Index(b.Ident("lanes"), 0), b.Index(b.Ident("lanes"), 1)),
					b.Binary(ast.BinOr, b.Index(b.Ident("lanes"), 2), b.Index(b.Ident("seed"), 0)))),
				b.Let("lo", b.Binary(ast.BinAnd, b.Index(b.Ident("t"), 0), b.Index(b.Ident("t"), 1))),
				// the mask keeps the sign bit clear, so the round trip
				// through s8 never changes the value
				b.Let("sv", b.AsSigned(b.Binary(ast.BinAnd, b.Ident("lo"), b.Lit(0x7f)), 8)),
			},
			b.If(b.Unary(ast.UnXor, b.Ident("lo")),
				b.Block(nil, b.AsBits(b.Ident("sv"), 8)),
				b.Block(nil, b.Unary(ast.UnNot, b.Ident("lo"))))))
}

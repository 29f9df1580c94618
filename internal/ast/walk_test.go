package ast

import (
	"testing"

	"silica/internal/types"
)

func TestWalkReachesEveryNode(t *testing.T) {
	b := NewBuilder()
	byte8 := types.MakeBits(8)
	one := b.Lit(1)
	sum := b.Binary(BinAdd, b.Ident("x"), one)
	signed := b.AsSigned(sum, 8)
	cast := b.AsBits(signed, 8)
	k := b.Kernel("caster",
		[]Param{b.Param("x", byte8)},
		byte8,
		b.Block(nil, cast))

	seen := map[NodeID]bool{}
	Walk(k, func(n Node) bool {
		seen[n.Node()] = true
		return true
	})

	for name, n := range map[string]Node{
		"outer cast":            cast,
		"inner cast":            signed,
		"sum under both casts":  sum,
		"literal under the sum": one,
	} {
		if !seen[n.Node()] {
			t.Fatalf("%s was not visited", name)
		}
	}
}

func TestWalkPrunes(t *testing.T) {
	b := NewBuilder()
	byte8 := types.MakeBits(8)
	sum := b.Binary(BinAdd, b.Ident("x"), b.Lit(1))
	cast := b.AsBits(sum, 8)
	k := b.Kernel("caster",
		[]Param{b.Param("x", byte8)},
		byte8,
		b.Block(nil, cast))

	seen := map[NodeID]bool{}
	Walk(k, func(n Node) bool {
		seen[n.Node()] = true
		_, isCast := n.(*AsBits)
		return !isCast
	})
	if !seen[cast.Node()] {
		t.Fatal("pruned node itself was not visited")
	}
	if seen[sum.Node()] {
		t.Fatal("subtree under a pruned node was visited")
	}
}

// Package design holds the built-in demo designs: small kernels that cover
// the whole operation surface and double as end-to-end fixtures for the
// compiler and the evaluator.
package design

import (
	"slices"
	"strings"

	"silica/internal/ast"
)

// Design names a buildable demo kernel. Build constructs the design's top
// kernel (and anything it calls) on the given builder.
type Design struct {
	Name    string
	Summary string
	Build   func(b *ast.Builder) *ast.Kernel
}

var registry = []Design{
	{
		Name:    "alu",
		Summary: "command-driven 8-bit ALU with a helper kernel and an opaque primitive",
		Build:   buildALU,
	},
	{
		Name:    "checksum",
		Summary: "lane mixing over arrays, tuples and reductions",
		Build:   buildChecksum,
	},
	{
		Name:    "counter",
		Summary: "8-bit counter with an enable line",
		Build:   buildCounter,
	},
	{
		Name:    "fsm",
		Summary: "three-state machine over an enum state value",
		Build:   buildFSM,
	},
	{
		Name:    "scatter",
		Summary: "register bank write through a dynamic index",
		Build:   buildScatter,
	},
}

// All returns the registered designs sorted by name.
func All() []Design {
	out := slices.Clone(registry)
	slices.SortFunc(out, func(a, b Design) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// Lookup finds a design by name.
func Lookup(name string) (Design, bool) {
	for _, d := range registry {
		if d.Name == name {
			return d, true
		}
	}
	return Design{}, false
}

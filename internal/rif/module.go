package rif

import (
	"fmt"
	"slices"

	"silica/internal/ast"
)

// Module is the closed compilation result: every function reachable from
// the top object, keyed by identity. Objects are not modified once
// inserted.
type Module struct {
	Objects map[ast.FuncID]*Object `msgpack:"objects"`
	Top     ast.FuncID             `msgpack:"top"`
}

// NewModule returns an empty module rooted at top.
func NewModule(top ast.FuncID) *Module {
	return &Module{
		Objects: make(map[ast.FuncID]*Object),
		Top:     top,
	}
}

// TopObject returns the object of the top-level function.
func (m *Module) TopObject() *Object {
	return m.Objects[m.Top]
}

// FuncName returns the qualified name of a function, its plain name
// suffixed with the identity in hex.
func (m *Module) FuncName(fn ast.FuncID) (string, error) {
	obj, ok := m.Objects[fn]
	if !ok {
		return "", fmt.Errorf("function %x not found in module", uint64(fn))
	}
	return fmt.Sprintf("%s_%x", obj.Name, uint64(fn)), nil
}

// SortedFuncs returns the module's function identities ordered by name,
// identity breaking ties. Dumps and artifact writers use it for
// deterministic output.
func (m *Module) SortedFuncs() []ast.FuncID {
	out := make([]ast.FuncID, 0, len(m.Objects))
	for fn := range m.Objects {
		out = append(out, fn)
	}
	slices.SortFunc(out, func(a, b ast.FuncID) int {
		na, nb := m.Objects[a].Name, m.Objects[b].Name
		if na != nb {
			if na < nb {
				return -1
			}
			return 1
		}
		if a != b {
			if a < b {
				return -1
			}
			return 1
		}
		return 0
	})
	return out
}

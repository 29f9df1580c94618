package compiler

import (
	"fmt"
	"strings"

	"silica/internal/ast"
	"silica/internal/source"
)

// Phase names the pipeline stage an error escaped from.
type Phase uint8

const (
	PhaseInfer Phase = iota + 1
	PhaseLower
	PhaseOptimize
	PhaseVerify
)

func (p Phase) String() string {
	switch p {
	case PhaseInfer:
		return "infer"
	case PhaseLower:
		return "lower"
	case PhaseOptimize:
		return "optimize"
	case PhaseVerify:
		return "verify"
	default:
		return "?"
	}
}

// LoweringError reports a body the lowerer cannot translate: an unbound
// name, a non-exhaustive match, an assignment target that is not an
// lvalue. Node points at the offending construct.
type LoweringError struct {
	Node ast.NodeID
	Msg  string
}

func (e *LoweringError) Error() string {
	return "lowering: " + e.Msg
}

// CompileError wraps any failure of one kernel's compilation with the
// phase it escaped from and, when the cause names a node, the span that
// node rendered to.
type CompileError struct {
	Phase  Phase
	Kernel string
	Fn     ast.FuncID
	Node   ast.NodeID
	Span   source.Span
	Err    error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("compile %s: %s: %v", e.Kernel, e.Phase, e.Err)
}

func (e *CompileError) Unwrap() error { return e.Err }

// ElaborationError wraps a kernel failure reached through the call
// closure rather than compiled directly. Chain holds the kernel names
// from the design's top down to the caller of the failing kernel.
type ElaborationError struct {
	Kernel string
	Fn     ast.FuncID
	Chain  []string
	Err    error
}

func (e *ElaborationError) Error() string {
	if len(e.Chain) > 0 {
		return fmt.Sprintf("elaborate %s (via %s): %v", e.Kernel, strings.Join(e.Chain, " -> "), e.Err)
	}
	return fmt.Sprintf("elaborate %s: %v", e.Kernel, e.Err)
}

func (e *ElaborationError) Unwrap() error { return e.Err }

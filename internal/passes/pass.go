// Package passes rewrites and verifies compiled objects. The rewrite passes
// are semantics-preserving and individually idempotent; the two check passes
// gate every object before it enters a module.
package passes

import (
	"fmt"

	"silica/internal/ast"
	"silica/internal/rif"
)

// Pass consumes an object and produces a new one. Inputs are never
// mutated.
type Pass interface {
	Name() string
	Run(*rif.Object) (*rif.Object, error)
}

// Sequence returns one optimization round in its fixed order. Register
// removal runs twice because mux removal exposes dead copies.
func Sequence() []Pass {
	return []Pass{
		RemoveExtraRegisters{},
		RemoveUnneededMuxes{},
		RemoveExtraRegisters{},
		RemoveUnusedLiterals{},
		PreCastLiterals{},
		RemoveUselessCasts{},
	}
}

// Optimize runs the round sequence the given number of times.
func Optimize(obj *rif.Object, rounds int) (*rif.Object, error) {
	for i := 0; i < rounds; i++ {
		for _, p := range Sequence() {
			next, err := p.Run(obj)
			if err != nil {
				return nil, err
			}
			obj = next
		}
	}
	return obj, nil
}

// Verify runs the checking passes that every object must survive before it
// is frozen into a module.
func Verify(obj *rif.Object) error {
	if _, err := (TypeCheckPass{}).Run(obj); err != nil {
		return err
	}
	if _, err := (DataFlowCheckPass{}).Run(obj); err != nil {
		return err
	}
	return nil
}

// PassError reports a defect inside a rewrite pass. Rewrites never fail on
// well-formed input, so one of these means lowering or an earlier pass
// produced a malformed object.
type PassError struct {
	Pass string
	Op   int // op index, -1 when not tied to one op
	Node ast.NodeID
	Err  error
}

func (e *PassError) Error() string {
	if e.Op < 0 {
		return fmt.Sprintf("pass %s: %v", e.Pass, e.Err)
	}
	return fmt.Sprintf("pass %s: op %d: %v", e.Pass, e.Op, e.Err)
}

func (e *PassError) Unwrap() error {
	return e.Err
}

// VerificationKind separates the two invariant families the check passes
// enforce.
type VerificationKind uint8

const (
	// VerifyTypeMismatch is a kind or width inconsistency.
	VerifyTypeMismatch VerificationKind = iota + 1
	// VerifyFlowViolation is a register or literal lifetime violation.
	VerifyFlowViolation
)

func (k VerificationKind) String() string {
	switch k {
	case VerifyTypeMismatch:
		return "type mismatch"
	case VerifyFlowViolation:
		return "flow violation"
	default:
		return "?"
	}
}

// VerificationError is one violation found by a check pass.
type VerificationError struct {
	Kind   VerificationKind
	Object string
	Op     int // op index, -1 for object-level violations
	Node   ast.NodeID
	Msg    string
}

func (e *VerificationError) Error() string {
	if e.Op < 0 {
		return fmt.Sprintf("%s: %s", e.Object, e.Msg)
	}
	return fmt.Sprintf("%s: op %d: %s", e.Object, e.Op, e.Msg)
}

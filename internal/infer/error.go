package infer

import (
	"fmt"

	"silica/internal/ast"
)

// TypeErrKind discriminates inference failures.
type TypeErrKind uint8

const (
	// ErrMismatch is a unification failure between two shapes.
	ErrMismatch TypeErrKind = iota + 1
	// ErrOccursCheck is a variable bound to a type containing itself.
	ErrOccursCheck
	// ErrUnresolved is a type still containing a variable after
	// solving.
	ErrUnresolved
	// ErrBadProjection is a field, index or payload access into a type
	// that cannot supply it.
	ErrBadProjection
	// ErrUnbound is a reference to a name with no binding in scope.
	ErrUnbound
)

func (k TypeErrKind) String() string {
	switch k {
	case ErrMismatch:
		return "type mismatch"
	case ErrOccursCheck:
		return "occurs check"
	case ErrUnresolved:
		return "unresolved type"
	case ErrBadProjection:
		return "bad projection"
	case ErrUnbound:
		return "unbound name"
	default:
		return "unknown"
	}
}

// TypeError is the one error shape inference produces. Node points at
// the construct the failing constraint came from.
type TypeError struct {
	Kind  TypeErrKind
	Node  ast.NodeID
	Left  Ty
	Right Ty
	Name  string
	Msg   string
}

func (e *TypeError) Error() string {
	switch e.Kind {
	case ErrMismatch:
		if e.Msg != "" {
			return fmt.Sprintf("type mismatch: %s", e.Msg)
		}
		return fmt.Sprintf("type mismatch: %s vs %s", e.Left, e.Right)
	case ErrOccursCheck:
		return fmt.Sprintf("occurs check: %s appears within %s", e.Left, e.Right)
	case ErrUnresolved:
		if e.Left != nil {
			return fmt.Sprintf("unresolved type %s", e.Left)
		}
		return "unresolved type"
	case ErrBadProjection:
		if e.Left != nil {
			return fmt.Sprintf("cannot project %s out of %s", e.Name, e.Left)
		}
		return fmt.Sprintf("cannot project %s", e.Name)
	case ErrUnbound:
		return fmt.Sprintf("unbound name %q", e.Name)
	default:
		return "type inference error"
	}
}

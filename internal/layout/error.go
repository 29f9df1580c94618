package layout

import (
	"fmt"
)

// PathErrKind enumerates the ways a path can fail to resolve against a kind.
type PathErrKind uint8

const (
	// ErrOutOfBounds indicates an index beyond the addressed aggregate.
	ErrOutOfBounds PathErrKind = iota + 1
	// ErrFieldNotFound indicates a named field missing from a struct.
	ErrFieldNotFound
	// ErrVariantNotFound indicates an enum variant missing by name or
	// discriminant value.
	ErrVariantNotFound
	// ErrInvalidOperation indicates a navigation step applied to a kind
	// that cannot take it.
	ErrInvalidOperation
	// ErrUnresolvedDynamicIndex indicates a dynamic step reached a
	// resolver that requires concrete paths.
	ErrUnresolvedDynamicIndex
)

func (k PathErrKind) String() string {
	switch k {
	case ErrOutOfBounds:
		return "out of bounds"
	case ErrFieldNotFound:
		return "field not found"
	case ErrVariantNotFound:
		return "variant not found"
	case ErrInvalidOperation:
		return "invalid operation"
	case ErrUnresolvedDynamicIndex:
		return "unresolved dynamic index"
	}
	return "unknown"
}

// PathError reports a failed path resolution with the path and kind context
// it happened in.
type PathError struct {
	Kind    PathErrKind
	Path    string // rendered path being resolved
	Element string // rendered step that failed
	OnKind  string // rendered kind the step was applied to
	Ctx     string // extra detail
}

func (e *PathError) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := e.Kind.String()
	switch e.Kind {
	case ErrOutOfBounds:
		msg = fmt.Sprintf("index %s out of bounds for %s", e.Element, e.OnKind)
	case ErrFieldNotFound:
		msg = fmt.Sprintf("no field %s in %s", e.Element, e.OnKind)
	case ErrVariantNotFound:
		msg = fmt.Sprintf("no variant %s in %s", e.Element, e.OnKind)
	case ErrInvalidOperation:
		msg = fmt.Sprintf("cannot navigate %s into %s", e.Element, e.OnKind)
	case ErrUnresolvedDynamicIndex:
		msg = fmt.Sprintf("dynamic index %s must be expanded before resolution", e.Element)
	}
	if e.Ctx != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Ctx)
	}
	if e.Path != "" {
		msg = fmt.Sprintf("%s at path %s", msg, e.Path)
	}
	return msg
}

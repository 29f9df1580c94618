package diag

import (
	"fmt"
)

type Code uint16

const (
	// Unknown covers errors no phase claimed.
	UnknownCode Code = 0

	// Path and bit-layout engine
	PathInfo           Code = 1000
	PathOutOfBounds    Code = 1001
	PathFieldNotFound  Code = 1002
	PathVariantUnknown Code = 1003
	PathInvalidOp      Code = 1004
	PathUnresolvedDyn  Code = 1005

	// Type inference
	InferInfo          Code = 2000
	InferMismatch      Code = 2001
	InferOccursCheck   Code = 2002
	InferUnresolved    Code = 2003
	InferBadProjection Code = 2004
	InferUnbound       Code = 2005

	// Lowering to register form
	LowerInfo        Code = 3000
	LowerUnsupported Code = 3001

	// Rewrite pipeline
	PassInfo   Code = 4000
	PassDefect Code = 4001

	// Verification gates
	VerifyInfo         Code = 5000
	VerifyTypeMismatch Code = 5001
	VerifyFlowDefect   Code = 5002

	// Design elaboration
	ElabInfo   Code = 6000
	ElabFailed Code = 6001

	// Observability
	ObsInfo    Code = 9000
	ObsTimings Code = 9001
)

var codeDescription = map[Code]string{
	UnknownCode: "unknown error",

	PathInfo:           "path engine note",
	PathOutOfBounds:    "path index out of bounds",
	PathFieldNotFound:  "no such struct field",
	PathVariantUnknown: "no such enum variant",
	PathInvalidOp:      "path element does not apply to this kind",
	PathUnresolvedDyn:  "dynamic path element was not resolved",

	InferInfo:          "type inference note",
	InferMismatch:      "type mismatch",
	InferOccursCheck:   "inferred type refers to itself",
	InferUnresolved:    "type variable was never constrained",
	InferBadProjection: "projection does not apply to this type",
	InferUnbound:       "name is not bound",

	LowerInfo:        "lowering note",
	LowerUnsupported: "construct cannot be lowered",

	PassInfo:   "rewrite pipeline note",
	PassDefect: "rewrite pass produced a malformed object",

	VerifyInfo:         "verification note",
	VerifyTypeMismatch: "operand kinds disagree",
	VerifyFlowDefect:   "register use violates data flow rules",

	ElabInfo:   "elaboration note",
	ElabFailed: "called kernel failed to compile",

	ObsInfo:    "note",
	ObsTimings: "stage timing report",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("PTH%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("INF%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("LOW%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("PAS%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("VER%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("ELB%04d", ic)
	case ic >= 9000 && ic < 10000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}

package compiler

import (
	"errors"
	"strings"

	"silica/internal/diag"
	"silica/internal/infer"
	"silica/internal/layout"
	"silica/internal/passes"
)

// Diagnose converts a compile failure into a renderable diagnostic. The
// second result is false for errors that did not come out of the pipeline,
// such as artifact IO.
func Diagnose(err error) (diag.Diagnostic, bool) {
	var ce *CompileError
	if !errors.As(err, &ce) {
		return diag.Diagnostic{}, false
	}
	d := diag.Diagnostic{
		Severity: diag.SevError,
		Code:     diagnoseCode(ce),
		Message:  ce.Err.Error(),
		Primary:  ce.Span,
	}
	var ee *ElaborationError
	if errors.As(err, &ee) && len(ee.Chain) > 0 {
		d.Notes = append(d.Notes, diag.Note{
			Msg: "reached via " + strings.Join(ee.Chain, " -> "),
		})
	}
	return d, true
}

// diagnoseCode picks the most specific code the cause chain supports,
// falling back to the phase the error escaped from.
func diagnoseCode(ce *CompileError) diag.Code {
	var pe *layout.PathError
	if errors.As(ce.Err, &pe) {
		switch pe.Kind {
		case layout.ErrOutOfBounds:
			return diag.PathOutOfBounds
		case layout.ErrFieldNotFound:
			return diag.PathFieldNotFound
		case layout.ErrVariantNotFound:
			return diag.PathVariantUnknown
		case layout.ErrUnresolvedDynamicIndex:
			return diag.PathUnresolvedDyn
		}
		return diag.PathInvalidOp
	}
	var te *infer.TypeError
	if errors.As(ce.Err, &te) {
		switch te.Kind {
		case infer.ErrMismatch:
			return diag.InferMismatch
		case infer.ErrOccursCheck:
			return diag.InferOccursCheck
		case infer.ErrUnresolved:
			return diag.InferUnresolved
		case infer.ErrBadProjection:
			return diag.InferBadProjection
		case infer.ErrUnbound:
			return diag.InferUnbound
		}
		return diag.InferInfo
	}
	var ve *passes.VerificationError
	if errors.As(ce.Err, &ve) {
		if ve.Kind == passes.VerifyFlowViolation {
			return diag.VerifyFlowDefect
		}
		return diag.VerifyTypeMismatch
	}
	var le *LoweringError
	if errors.As(ce.Err, &le) {
		return diag.LowerUnsupported
	}
	var pse *passes.PassError
	if errors.As(ce.Err, &pse) {
		return diag.PassDefect
	}
	switch ce.Phase {
	case PhaseInfer:
		return diag.InferInfo
	case PhaseLower:
		return diag.LowerInfo
	case PhaseOptimize:
		return diag.PassInfo
	case PhaseVerify:
		return diag.VerifyInfo
	}
	return diag.UnknownCode
}

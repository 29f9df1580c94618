package diag

import (
	"silica/internal/source"
)

// Note attaches secondary context to a diagnostic, such as the call chain a
// failing kernel was reached through.
type Note struct {
	Span source.Span
	Msg  string
}

// Diagnostic is one finding a compiler phase wants the user to see. Spans
// point into the rendered kernel sources registered with the build's FileSet.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	Notes    []Note
}

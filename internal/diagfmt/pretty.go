package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"silica/internal/diag"
	"silica/internal/source"
)

// Pretty renders diagnostics for terminals. It walks bag.Items() in order
// (callers sort first) and prints, per diagnostic:
//
//	<name>:<line>:<col>: <SEV> <CODE>: <message>
//	  <source line>
//	  ^~~~
//
// followed by the notes when ShowNotes is set.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	for _, d := range bag.Items() {
		printDiagnostic(w, d, fs, opts)
	}
}

func sevColor(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return color.New(color.FgRed, color.Bold)
	case diag.SevWarning:
		return color.New(color.FgYellow, color.Bold)
	}
	return color.New(color.FgCyan)
}

func printDiagnostic(w io.Writer, d diag.Diagnostic, fs *source.FileSet, opts PrettyOpts) {
	fmt.Fprintf(w, "%s: %s: %s\n", location(fs, d.Primary), heading(d, opts), d.Message)
	printSourceLine(w, fs, d.Primary, d.Severity, opts)
	if !opts.ShowNotes {
		return
	}
	for _, n := range d.Notes {
		if n.Span.Empty() {
			fmt.Fprintf(w, "  note: %s\n", n.Msg)
			continue
		}
		fmt.Fprintf(w, "  note: %s: %s\n", location(fs, n.Span), n.Msg)
		printSourceLine(w, fs, n.Span, diag.SevInfo, opts)
	}
}

func heading(d diag.Diagnostic, opts PrettyOpts) string {
	text := d.Severity.String() + " " + d.Code.ID()
	if opts.Color {
		return sevColor(d.Severity).Sprint(text)
	}
	return text
}

func location(fs *source.FileSet, span source.Span) string {
	name := "<unknown>"
	if f := fs.Get(span.File); f != nil {
		name = f.Name
	}
	start, _ := fs.Resolve(span)
	return fmt.Sprintf("%s:%d:%d", name, start.Line, start.Col)
}

// printSourceLine shows the first line the span touches with a caret marker
// under the spanned columns.
func printSourceLine(w io.Writer, fs *source.FileSet, span source.Span, sev diag.Severity, opts PrettyOpts) {
	f := fs.Get(span.File)
	if f == nil || span.Empty() {
		return
	}
	start, end := fs.Resolve(span)
	line := f.Line(start.Line)
	if line == "" {
		return
	}

	shown := line
	if opts.Width > 0 {
		shown = runewidth.Truncate(line, int(opts.Width), "…")
	}
	fmt.Fprintf(w, "  %s\n", shown)

	// columns are byte-based within the line; clamp before slicing
	from := int(start.Col) - 1
	if from > len(line) {
		from = len(line)
	}
	to := len(line)
	if end.Line == start.Line {
		if c := int(end.Col) - 1; c < to {
			to = c
		}
	}
	if to < from {
		to = from
	}
	pad := runewidth.StringWidth(line[:from])
	width := runewidth.StringWidth(line[from:to])
	if width < 1 {
		width = 1
	}
	marker := "^" + strings.Repeat("~", width-1)
	if opts.Color {
		marker = sevColor(sev).Sprint(marker)
	}
	fmt.Fprintf(w, "  %s%s\n", strings.Repeat(" ", pad), marker)
}

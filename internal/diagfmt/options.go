// Package diagfmt renders diagnostics for humans and tools. Rendering is
// pure: it reads a sorted Bag and a FileSet and writes, nothing more.
package diagfmt

// PrettyOpts configures pretty-printing of diagnostics.
type PrettyOpts struct {
	Color     bool
	Width     uint8 // maximum source line width, 0 for unlimited
	ShowNotes bool
}

// JSONOpts configures JSON output of diagnostics.
type JSONOpts struct {
	IncludePositions bool // add line/col to every location
	Max              int  // truncate the output, not the Bag
	IncludeNotes     bool
}

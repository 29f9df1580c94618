package source

import (
	"fmt"
	"sync"

	"fortio.org/safecast"
)

// FileID uniquely identifies a source inside a FileSet.
type FileID uint32

// File holds one rendered kernel source. Every source in this compiler is
// virtual: the front end hands us syntax trees, and the pseudo-source text a
// kernel renders to is what diagnostics point into.
type File struct {
	ID      FileID
	Name    string
	Content []byte
	LineIdx []uint32 // byte offsets of every '\n'
}

// LineCol is a 1-based human-readable position.
type LineCol struct {
	Line uint32
	Col  uint32
}

// FileSet maps FileIDs to rendered sources. Safe for concurrent use; the
// driver registers sources from parallel kernel compiles.
type FileSet struct {
	mu    sync.RWMutex
	files []File
	index map[string]FileID
}

func NewFileSet() *FileSet {
	return &FileSet{
		files: make([]File, 0, 8),
		index: make(map[string]FileID),
	}
}

// Add registers a rendered source under name and returns its FileID.
// Adding the same name twice creates a new FileID; the index keeps the
// latest one.
func (fs *FileSet) Add(name string, content []byte) FileID {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	n, err := safecast.Conv[uint32](len(fs.files))
	if err != nil {
		panic(fmt.Errorf("file count overflow: %w", err))
	}
	id := FileID(n)
	fs.files = append(fs.files, File{
		ID:      id,
		Name:    name,
		Content: content,
		LineIdx: buildLineIndex(content),
	})
	fs.index[name] = id
	return id
}

// Get returns the file for id, or nil if id was never issued. Files are
// immutable once added, so the pointer stays valid without the lock.
func (fs *FileSet) Get(id FileID) *File {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	if int(id) >= len(fs.files) {
		return nil
	}
	return &fs.files[id]
}

// Lookup returns the latest FileID registered under name.
func (fs *FileSet) Lookup(name string) (FileID, bool) {
	fs.mu.RLock()
	id, ok := fs.index[name]
	fs.mu.RUnlock()
	return id, ok
}

func (fs *FileSet) Len() int {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return len(fs.files)
}

// Resolve converts a span into start/end line-column positions.
func (fs *FileSet) Resolve(span Span) (start, end LineCol) {
	f := fs.Get(span.File)
	if f == nil {
		return LineCol{Line: 1, Col: 1}, LineCol{Line: 1, Col: 1}
	}
	return toLineCol(f.LineIdx, span.Start), toLineCol(f.LineIdx, span.End)
}

// Line returns the 1-based line lineNum without its trailing newline, or ""
// if the line does not exist.
func (f *File) Line(lineNum uint32) string {
	if f == nil || lineNum == 0 {
		return ""
	}
	lines, err := safecast.Conv[uint32](len(f.LineIdx))
	if err != nil {
		panic(fmt.Errorf("line index overflow: %w", err))
	}
	content, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		panic(fmt.Errorf("content length overflow: %w", err))
	}

	var start uint32
	switch {
	case lineNum == 1:
		start = 0
	case lineNum-2 < lines:
		start = f.LineIdx[lineNum-2] + 1
	default:
		return ""
	}

	end := content
	if lineNum-1 < lines {
		end = f.LineIdx[lineNum-1]
	}
	if start >= content {
		return ""
	}
	if end > content {
		end = content
	}
	return string(f.Content[start:end])
}

func buildLineIndex(content []byte) []uint32 {
	var out []uint32
	for i, b := range content {
		if b == '\n' {
			out = append(out, uint32(i))
		}
	}
	return out
}

func toLineCol(lineIdx []uint32, off uint32) LineCol {
	// binary search for the last newline strictly before off
	lo, hi := 0, len(lineIdx)-1
	last := -1
	for lo <= hi {
		mid := (lo + hi) >> 1
		if lineIdx[mid] < off {
			last = mid
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	if last < 0 {
		return LineCol{Line: 1, Col: off + 1}
	}
	lastIdx, err := safecast.Conv[uint32](last)
	if err != nil {
		panic(fmt.Errorf("line number overflow: %w", err))
	}
	return LineCol{Line: lastIdx + 2, Col: off - lineIdx[last]}
}

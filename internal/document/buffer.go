// Package document models the host editor's buffer as a line-addressable
// text store with range-based replace operations, plus a file-backed
// implementation used by the command line tool.
package document

import (
	"fmt"

	"github.com/EricWay1024/lazy-latex/internal/types"
)

// Buffer is the line-addressable text store the conversion engine edits.
// Line numbers are zero-based. Generation is bumped on every mutation so a
// caller holding a snapshot can detect that the buffer changed underneath it.
type Buffer interface {
	// LineCount returns the number of lines in the buffer.
	LineCount() int
	// Line returns the text of line n without its trailing newline.
	Line(n int) (string, error)
	// SpliceLines replaces the line range [start, end) with repl.
	// start == end inserts before start; empty repl deletes the range.
	SpliceLines(start, end int, repl []string) error
	// Generation returns a counter that increases with every mutation.
	Generation() int64
}

// MemoryBuffer is an in-memory Buffer. It backs tests, the selection
// command, and any host integration that supplies raw text.
type MemoryBuffer struct {
	lines      []string
	generation int64
}

// NewMemoryBuffer creates a buffer holding the given lines.
func NewMemoryBuffer(lines []string) *MemoryBuffer {
	copied := make([]string, len(lines))
	copy(copied, lines)
	return &MemoryBuffer{lines: copied}
}

// LineCount returns the number of lines.
func (b *MemoryBuffer) LineCount() int {
	return len(b.lines)
}

// Line returns the text of line n.
func (b *MemoryBuffer) Line(n int) (string, error) {
	if n < 0 || n >= len(b.lines) {
		return "", types.NewAppErrorWithDetails(types.ErrDocument,
			"line number out of range",
			fmt.Sprintf("line %d, buffer has %d lines", n, len(b.lines)), nil)
	}
	return b.lines[n], nil
}

// SpliceLines replaces the line range [start, end) with repl.
func (b *MemoryBuffer) SpliceLines(start, end int, repl []string) error {
	if start < 0 || end > len(b.lines) || start > end {
		return types.NewAppErrorWithDetails(types.ErrDocument,
			"invalid line range",
			fmt.Sprintf("[%d, %d) against %d lines", start, end, len(b.lines)), nil)
	}

	next := make([]string, 0, len(b.lines)-(end-start)+len(repl))
	next = append(next, b.lines[:start]...)
	next = append(next, repl...)
	next = append(next, b.lines[end:]...)
	b.lines = next
	b.generation++
	return nil
}

// Generation returns the mutation counter.
func (b *MemoryBuffer) Generation() int64 {
	return b.generation
}

// Snapshot returns a copy of all lines.
func (b *MemoryBuffer) Snapshot() []string {
	out := make([]string, len(b.lines))
	copy(out, b.lines)
	return out
}

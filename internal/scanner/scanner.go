// Package scanner finds marker regions inside a single line of text.
//
// A marker region is a balanced pair of equal-length semicolon runs on one
// line: a run of 2 is inline math, 3 is display math, 4 is a free-text
// instruction. Matching is strictly line-local; regions never nest or
// overlap.
package scanner

import (
	"github.com/EricWay1024/lazy-latex/internal/types"
)

// MarkerChar is the delimiter character that forms marker runs.
const MarkerChar = ';'

// runLengthAt measures the maximal run of MarkerChar starting at pos.
func runLengthAt(line string, pos int) int {
	n := 0
	for pos+n < len(line) && line[pos+n] == MarkerChar {
		n++
	}
	return n
}

// findCloser searches forward from `from` for the next run of exactly
// `length` marker characters. Runs of a different length are skipped whole,
// so a longer run never donates a prefix as a closer.
// Returns the start offset of the closing run, or -1.
func findCloser(line string, from, length int) int {
	for i := from; i < len(line); {
		if line[i] != MarkerChar {
			i++
			continue
		}
		n := runLengthAt(line, i)
		if n == length {
			return i
		}
		i += n
	}
	return -1
}

// ScanLine returns the ordered list of marker regions in a line.
//
// The scan walks left to right measuring maximal delimiter runs. A run of
// exactly 2, 3 or 4 characters is a candidate opener; the closer is the next
// run of exactly the same length on the same line. An opener with no
// matching-length closer is left as plain text, never an error. After a
// region closes, scanning resumes just past the closer. Runs of length 1 or
// greater than 4 never open a region.
func ScanLine(line string) []types.MarkerRegion {
	var regions []types.MarkerRegion

	for i := 0; i < len(line); {
		if line[i] != MarkerChar {
			i++
			continue
		}

		n := runLengthAt(line, i)
		kind, ok := types.KindForRun(n)
		if !ok {
			// Length 1 or >4: not an opener. Skip the whole run so a
			// trailing slice of it cannot masquerade as one.
			i += n
			continue
		}

		closerStart := findCloser(line, i+n, n)
		if closerStart < 0 {
			// Unterminated opener: plain text.
			i += n
			continue
		}

		regions = append(regions, types.MarkerRegion{
			Kind:  kind,
			Start: i,
			End:   closerStart + n,
			Inner: line[i+n : closerStart],
		})
		i = closerStart + n
	}

	return regions
}

// HasMarkers reports whether a line contains at least one marker region.
func HasMarkers(line string) bool {
	return len(ScanLine(line)) > 0
}

package convert

import (
	"strings"

	"github.com/EricWay1024/lazy-latex/internal/types"
)

// Delimiters is the resolved output delimiter set for a document.
type Delimiters struct {
	InlineOpen   string
	InlineClose  string
	DisplayOpen  string
	DisplayClose string
}

// ResolveDelimiters picks the delimiter pairs for a document kind.
// LaTeX documents honor the configured styles; Markdown is fixed to
// $...$ and $$...$$.
func ResolveDelimiters(kind types.DocumentKind, inline types.InlineStyle, display types.DisplayStyle) Delimiters {
	if kind == types.DocMarkdown {
		return Delimiters{InlineOpen: "$", InlineClose: "$", DisplayOpen: "$$", DisplayClose: "$$"}
	}

	d := Delimiters{InlineOpen: "$", InlineClose: "$", DisplayOpen: "\\[", DisplayClose: "\\]"}
	if inline == types.InlineParen {
		d.InlineOpen, d.InlineClose = "\\(", "\\)"
	}
	if display == types.DisplayDollar {
		d.DisplayOpen, d.DisplayClose = "$$", "$$"
	}
	return d
}

// absorbable punctuation for display blocks.
const punctuationChars = ".,;:!?"

// BuildReplacements converts one region plus its generated text into
// offset-tagged replacement operations against the original line. A trimmed
// empty generation produces no operations, leaving the region untouched.
// All offsets share the original line's coordinate space.
func BuildReplacements(region types.MarkerRegion, generated, line string, delims Delimiters) []types.Replacement {
	text := strings.TrimSpace(generated)
	if text == "" {
		return nil
	}

	switch region.Kind {
	case types.KindFreeText:
		return []types.Replacement{{Start: region.Start, End: region.End, Text: text}}

	case types.KindInline:
		ops := []types.Replacement{{
			Start: region.Start,
			End:   region.End,
			Text:  delims.InlineOpen + text + delims.InlineClose,
		}}
		if despace := buildSemicolonDespace(line, region.End); despace != nil {
			ops = append(ops, *despace)
		}
		return ops

	case types.KindDisplay:
		return buildDisplayReplacements(region, text, line, delims)

	default:
		return nil
	}
}

// buildDisplayReplacements renders a display block: open delimiter, generated
// text and close delimiter each on their own line, with trailing punctuation
// pulled inside the block.
func buildDisplayReplacements(region types.MarkerRegion, text, line string, delims Delimiters) []types.Replacement {
	var ops []types.Replacement

	// Punctuation absorption: the next non-whitespace character after the
	// region, if it is sentence punctuation, moves inside the block so the
	// text after the block sits flush against it. A double semicolon is a
	// marker run, never punctuation.
	absorbed := false
	if p := nextNonSpace(line, region.End); p >= 0 && strings.IndexByte(punctuationChars, line[p]) >= 0 {
		if !(line[p] == ';' && p+1 < len(line) && line[p+1] == ';') {
			text += " " + string(line[p])
			delEnd := p + 1
			for delEnd < len(line) && isSpace(line[delEnd]) {
				delEnd++
			}
			// Deleting from the region's end also consumes the gap before
			// the punctuation, so text after the block sits flush.
			ops = append(ops, types.Replacement{Start: region.End, End: delEnd, Text: ""})
			absorbed = true
		}
	}

	block := delims.DisplayOpen + "\n" + text + "\n" + delims.DisplayClose + "\n"
	if hasTextBefore(line, region.Start) {
		// Display math starts a fresh line, separated by one blank line.
		block = "\n\n" + block
	}
	ops = append(ops, types.Replacement{Start: region.Start, End: region.End, Text: block})

	if !absorbed {
		if despace := buildSemicolonDespace(line, region.End); despace != nil {
			ops = append(ops, *despace)
		}
	}
	return ops
}

// buildSemicolonDespace deletes the whitespace between a region's end and a
// single trailing semicolon, so the user's literal punctuation hugs the
// converted text. The semicolon itself is kept. A run of two or more
// semicolons is a marker, not punctuation.
func buildSemicolonDespace(line string, end int) *types.Replacement {
	p := nextNonSpace(line, end)
	if p < 0 || p == end || line[p] != ';' {
		return nil
	}
	if p+1 < len(line) && line[p+1] == ';' {
		return nil
	}
	return &types.Replacement{Start: end, End: p, Text: ""}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t'
}

// nextNonSpace returns the offset of the first non-whitespace byte at or
// after from, or -1.
func nextNonSpace(line string, from int) int {
	for i := from; i < len(line); i++ {
		if !isSpace(line[i]) {
			return i
		}
	}
	return -1
}

// hasTextBefore reports whether any non-whitespace text precedes offset pos.
func hasTextBefore(line string, pos int) bool {
	return strings.TrimSpace(line[:pos]) != ""
}

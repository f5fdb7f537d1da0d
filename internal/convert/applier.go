package convert

import (
	"fmt"
	"sort"
	"strings"

	"github.com/EricWay1024/lazy-latex/internal/document"
	"github.com/EricWay1024/lazy-latex/internal/logger"
	"github.com/EricWay1024/lazy-latex/internal/types"
)

// ApplyReplacements rewrites a line by applying operations in strictly
// descending start order, so an operation never shifts the offsets of the
// ones still pending. The operation set must be pairwise non-overlapping
// against the original line.
func ApplyReplacements(line string, ops []types.Replacement) (string, error) {
	sorted := make([]types.Replacement, len(ops))
	copy(sorted, ops)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start > sorted[j].Start })

	for i, op := range sorted {
		if op.Start < 0 || op.End > len(line) || op.Start > op.End {
			return "", types.NewAppErrorWithDetails(types.ErrInternal,
				"replacement out of range",
				fmt.Sprintf("[%d, %d) against %d bytes", op.Start, op.End, len(line)), nil)
		}
		if i > 0 && op.End > sorted[i-1].Start {
			return "", types.NewAppErrorWithDetails(types.ErrInternal,
				"overlapping replacements",
				fmt.Sprintf("[%d, %d) and [%d, %d)", op.Start, op.End, sorted[i-1].Start, sorted[i-1].End), nil)
		}
	}

	for _, op := range sorted {
		line = line[:op.Start] + op.Text + line[op.End:]
	}
	return line, nil
}

// applyLineEdit applies the accumulated operations for one line to the
// buffer as a single atomic edit, optionally inserting a comment line with
// the verbatim original text above it.
//
// snapshotGen is the buffer generation captured when the line text was
// snapshotted. If the buffer changed since, the operations were computed
// against stale text and the edit is abandoned silently.
func applyLineEdit(buf document.Buffer, session *EditSession, lineNum int, originalLine string, ops []types.Replacement, snapshotGen int64, keepOriginal bool, kind types.DocumentKind) (bool, error) {
	if len(ops) == 0 {
		return false, nil
	}

	if buf.Generation() != snapshotGen {
		logger.Warn("buffer changed during generation, abandoning edit",
			logger.Int("line", lineNum))
		return false, nil
	}

	edited, err := ApplyReplacements(originalLine, ops)
	if err != nil {
		return false, err
	}

	newLines := strings.Split(edited, "\n")
	// A display block at end of line leaves one empty trailing segment;
	// keeping it would grow the document by a blank line per conversion.
	if len(newLines) > 1 && newLines[len(newLines)-1] == "" {
		newLines = newLines[:len(newLines)-1]
	}

	if keepOriginal && strings.TrimSpace(originalLine) != "" {
		comment := document.CommentLine(kind, originalLine)
		newLines = append([]string{comment}, newLines...)
	}

	release := session.BeginEdit()
	defer release()

	if err := buf.SpliceLines(lineNum, lineNum+1, newLines); err != nil {
		return false, err
	}

	logger.Info("line converted",
		logger.Int("line", lineNum),
		logger.Int("operations", len(ops)),
		logger.Int("resultLines", len(newLines)))
	return true, nil
}

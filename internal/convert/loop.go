package convert

import (
	"context"

	"github.com/EricWay1024/lazy-latex/internal/document"
	"github.com/EricWay1024/lazy-latex/internal/logger"
	"github.com/EricWay1024/lazy-latex/internal/scanner"
)

// ConvertDocument runs the whole-document convergence loop: scan lines top
// to bottom, process the first line carrying regions, and restart from the
// top after every edit, because an inserted display block shifts every
// subsequent line number. A line whose regions all failed generation is
// skipped for the rest of the pass so it cannot starve later lines.
//
// The loop stops when a full pass finds nothing to convert, or after the
// configured maximum number of passes — the safety bound against a backend
// that keeps re-emitting marker-like text. Returns whether at least one line
// was converted.
func (e *Engine) ConvertDocument(ctx context.Context, buf document.Buffer) (bool, error) {
	maxPasses := e.cfg.MaxPasses
	converted := false

	for pass := 1; pass <= maxPasses; pass++ {
		logger.Debug("convergence pass", logger.Int("pass", pass), logger.Int("lines", buf.LineCount()))

		edited := false
		// Each pass takes fresh line text; nothing is cached across edits.
		for lineNum := 0; lineNum < buf.LineCount(); lineNum++ {
			lineText, err := buf.Line(lineNum)
			if err != nil {
				return converted, err
			}
			if !scanner.HasMarkers(lineText) {
				continue
			}

			did, err := e.ConvertLine(ctx, buf, lineNum)
			if err != nil {
				return converted, err
			}
			if did {
				converted = true
				edited = true
				break
			}
			// No edit landed (generation failed or produced nothing);
			// keep scanning, line numbers have not shifted.
		}

		if !edited {
			logger.Info("document converged",
				logger.Int("passes", pass),
				logger.Bool("converted", converted))
			return converted, nil
		}
	}

	logger.Warn("pass limit reached before convergence",
		logger.Int("maxPasses", maxPasses))
	return converted, nil
}

package convert

import (
	"context"
	"strings"

	"github.com/EricWay1024/lazy-latex/internal/backend"
	"github.com/EricWay1024/lazy-latex/internal/logger"
	"github.com/EricWay1024/lazy-latex/internal/report"
	"github.com/EricWay1024/lazy-latex/internal/types"
)

// generatedRegion pairs a marker region with its generated text.
// Empty text means the region is left untouched.
type generatedRegion struct {
	region types.MarkerRegion
	text   string
}

// generateLine runs the backend requests for one line's regions.
//
// Math regions (inline and display) are batched into a single request whose
// result list is index-aligned with the region list; if that one call fails,
// generation is dropped for every math region on the line. Free-text regions
// are requested individually and fail independently. All requests are issued
// sequentially so error attribution stays line-accurate.
func (e *Engine) generateLine(ctx context.Context, regions []types.MarkerRegion, docContext, lineText string, lineNum int) []generatedRegion {
	results := make([]generatedRegion, len(regions))
	var mathIdx []int
	for i, r := range regions {
		results[i] = generatedRegion{region: r}
		if r.Kind == types.KindInline || r.Kind == types.KindDisplay {
			mathIdx = append(mathIdx, i)
		}
	}

	if len(mathIdx) > 0 {
		inners := make([]string, len(mathIdx))
		for j, i := range mathIdx {
			inners[j] = strings.TrimSpace(regions[i].Inner)
		}

		generated, err := backend.GenerateMathBatch(ctx, e.backend, e.kind, inners, docContext)
		if err != nil {
			// The whole batch is dropped together; free-text regions on the
			// line are still attempted below.
			logger.Error("math batch failed, skipping all math regions on line", err,
				logger.Int("line", lineNum),
				logger.Int("regions", len(mathIdx)))
			e.recordFailure(lineNum, report.ScopeMathBatch, len(mathIdx), err)
		} else {
			for j, i := range mathIdx {
				results[i].text = generated[j]
			}
		}
	}

	for i, r := range regions {
		if r.Kind != types.KindFreeText {
			continue
		}
		generated, err := backend.GenerateFreeText(ctx, e.backend, e.kind, r.Inner, docContext, lineText)
		if err != nil {
			// Isolated failure: siblings are unaffected.
			logger.Error("free-text generation failed, skipping region", err,
				logger.Int("line", lineNum),
				logger.Int("offset", r.Start))
			e.recordFailure(lineNum, report.ScopeFreeText, 1, err)
			continue
		}
		results[i].text = generated
	}

	return results
}

func (e *Engine) recordFailure(lineNum int, scope report.FailureScope, regions int, err error) {
	if e.recorder == nil {
		return
	}
	e.recorder.Record(e.docName, lineNum, scope, regions, err)
}

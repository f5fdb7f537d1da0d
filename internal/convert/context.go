package convert

import (
	"strings"

	"github.com/tiktoken-go/tokenizer"

	"github.com/EricWay1024/lazy-latex/internal/document"
	"github.com/EricWay1024/lazy-latex/internal/logger"
)

// DefaultContextTokenBudget caps the assembled prior-line context so a large
// document never blows the model window. The target line itself is exempt.
const DefaultContextTokenBudget = 2048

// ContextAssembler gathers bounded prior-line context for a target line.
// The assembled text is opaque to the rest of the pipeline; it is handed to
// the backend verbatim and never parsed.
type ContextAssembler struct {
	contextLines int
	tokenBudget  int
	codec        tokenizer.Codec
}

// NewContextAssembler creates an assembler that collects up to contextLines
// preceding lines, clamped to the default token budget.
func NewContextAssembler(contextLines int) *ContextAssembler {
	a := &ContextAssembler{
		contextLines: contextLines,
		tokenBudget:  DefaultContextTokenBudget,
	}

	codec, err := tokenizer.Get(tokenizer.Cl100kBase)
	if err != nil {
		// Without a codec the budget clamp degrades to line count only.
		logger.Warn("tokenizer unavailable, context clamped by line count only", logger.Err(err))
	} else {
		a.codec = codec
	}
	return a
}

// Assemble returns the prior-line context and the full text of the target
// line. Fewer lines are returned near the top of the document.
func (a *ContextAssembler) Assemble(buf document.Buffer, lineNum int) (docContext, lineText string, err error) {
	lineText, err = buf.Line(lineNum)
	if err != nil {
		return "", "", err
	}

	start := lineNum - a.contextLines
	if start < 0 {
		start = 0
	}

	var lines []string
	for i := start; i < lineNum; i++ {
		text, err := buf.Line(i)
		if err != nil {
			return "", "", err
		}
		lines = append(lines, text)
	}

	lines = a.clampToBudget(lines)
	return strings.Join(lines, "\n"), lineText, nil
}

// clampToBudget drops the oldest context lines until the joined text fits
// the token budget.
func (a *ContextAssembler) clampToBudget(lines []string) []string {
	if a.codec == nil || len(lines) == 0 {
		return lines
	}

	for len(lines) > 0 {
		_, toks, err := a.codec.Encode(strings.Join(lines, "\n"))
		if err != nil {
			logger.Warn("context token count failed", logger.Err(err))
			return lines
		}
		if len(toks) <= a.tokenBudget {
			return lines
		}
		lines = lines[1:]
	}
	return lines
}

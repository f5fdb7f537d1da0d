package backend

import (
	"context"
	"strings"

	"github.com/EricWay1024/lazy-latex/internal/logger"
	"github.com/EricWay1024/lazy-latex/internal/types"
)

// GenerateMathBatch issues one completion for an ordered list of math snippets
// and returns the index-aligned result list. A failed call or a malformed
// response drops the whole batch.
func GenerateMathBatch(ctx context.Context, b Backend, kind types.DocumentKind, inners []string, docContext string) ([]string, error) {
	logger.Debug("math batch request",
		logger.String("backend", b.Name()),
		logger.Int("snippets", len(inners)),
		logger.String("payload", encodeSnippets(inners)))

	raw, err := b.Complete(ctx, buildMathSystemPrompt(kind), buildMathUserPrompt(inners, docContext))
	if err != nil {
		return nil, err
	}

	results, err := parseMathResponse(raw, len(inners))
	if err != nil {
		logger.Error("math batch response rejected", err, logger.Int("responseLength", len(raw)))
		return nil, err
	}
	return results, nil
}

// GenerateFreeText issues one completion for a single free-text instruction
// region. Each call is independent of its siblings.
func GenerateFreeText(ctx context.Context, b Backend, kind types.DocumentKind, inner, docContext, lineText string) (string, error) {
	logger.Debug("free-text request",
		logger.String("backend", b.Name()),
		logger.Int("instructionLength", len(inner)))

	raw, err := b.Complete(ctx, buildFreeTextSystemPrompt(kind), buildFreeTextUserPrompt(inner, docContext, lineText))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(stripCodeFence(raw)), nil
}

// GenerateSelection converts arbitrary selected text into LaTeX math.
// Unlike the batch path, an empty generation is an explicit error here so the
// manual command can report it.
func GenerateSelection(ctx context.Context, b Backend, kind types.DocumentKind, text, docContext string) (string, error) {
	logger.Debug("selection request",
		logger.String("backend", b.Name()),
		logger.Int("selectionLength", len(text)))

	raw, err := b.Complete(ctx, buildSelectionSystemPrompt(kind), buildMathUserPrompt([]string{text}, docContext))
	if err != nil {
		return "", err
	}

	results, err := parseMathResponse(raw, 1)
	if err != nil {
		return "", err
	}
	out := strings.TrimSpace(results[0])
	if out == "" {
		return "", types.NewAppError(types.ErrEmptyResult, "generation produced no text for the selection", nil)
	}
	return out, nil
}

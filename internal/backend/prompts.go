package backend

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/EricWay1024/lazy-latex/internal/types"
)

// buildMathSystemPrompt creates the system prompt for the batched math call.
// The model is asked for a JSON array so the ordered result list stays
// index-aligned with the input snippet list.
func buildMathSystemPrompt(kind types.DocumentKind) string {
	doc := "a LaTeX document"
	if kind == types.DocMarkdown {
		doc = "a Markdown document"
	}
	return fmt.Sprintf(`You are a mathematical typesetting assistant working inside %s.
You receive informal descriptions of mathematical expressions and produce the corresponding LaTeX math.

CRITICAL RULES:
1. For each input snippet, output the LaTeX math code only - no delimiters like $, $$, \(, \[ and no surrounding prose.
2. Output a JSON array of strings, one element per input snippet, in the same order as the inputs.
3. Output ONLY the JSON array. Do not add explanations, notes, or code fences.
4. If a snippet is already valid LaTeX math, return it unchanged.
5. Use the surrounding document context to resolve notation (variable names, conventions) but never restate it.`, doc)
}

// buildMathUserPrompt lists the trimmed snippets plus the assembled context.
func buildMathUserPrompt(inners []string, context string) string {
	var sb strings.Builder
	sb.WriteString("Convert the following snippets to LaTeX math. Reply with a JSON array of ")
	fmt.Fprintf(&sb, "%d strings.\n\nSnippets:\n", len(inners))
	for i, inner := range inners {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, strings.TrimSpace(inner))
	}
	if context != "" {
		sb.WriteString("\nDocument context (for notation only, do not translate or repeat it):\n")
		sb.WriteString(context)
	}
	return sb.String()
}

// buildFreeTextSystemPrompt creates the system prompt for a free-text
// instruction region.
func buildFreeTextSystemPrompt(kind types.DocumentKind) string {
	doc := "LaTeX"
	if kind == types.DocMarkdown {
		doc = "Markdown"
	}
	return fmt.Sprintf(`You are a writing assistant working inside a %s document.
You receive an instruction and produce the %s source text it asks for.

CRITICAL RULES:
1. Output only the generated %s source - no explanations, no code fences.
2. The output replaces the instruction in place on its line, so produce text that reads naturally there.
3. Match the language and register of the surrounding document.`, doc, doc, doc)
}

// buildFreeTextUserPrompt carries the instruction, the full target line, and
// the assembled context.
func buildFreeTextUserPrompt(inner, context, lineText string) string {
	var sb strings.Builder
	sb.WriteString("Instruction:\n")
	sb.WriteString(strings.TrimSpace(inner))
	sb.WriteString("\n\nThe line the output will be placed on:\n")
	sb.WriteString(lineText)
	if context != "" {
		sb.WriteString("\n\nPreceding document context:\n")
		sb.WriteString(context)
	}
	return sb.String()
}

// buildSelectionSystemPrompt is used by the manual convert-selection command,
// which operates on arbitrary selected text rather than marker regions.
func buildSelectionSystemPrompt(kind types.DocumentKind) string {
	return buildMathSystemPrompt(kind) +
		"\nFor this request there is exactly one snippet; still reply with a JSON array of one string."
}

// stripCodeFence removes a surrounding markdown code fence if the model added
// one despite instructions.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// Drop a language tag such as "json" on the fence line.
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		first := strings.TrimSpace(s[:idx])
		if len(first) <= 10 && !strings.ContainsAny(first, "[]{}") {
			s = s[idx+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// parseMathResponse extracts the ordered string array from a math batch
// response. The response must contain a JSON array with exactly want
// elements; anything else is a malformed response shape and fails the whole
// batch.
func parseMathResponse(raw string, want int) ([]string, error) {
	cleaned := stripCodeFence(raw)

	// Models occasionally wrap the array in prose; cut to the outermost
	// bracket pair before parsing.
	start := strings.IndexByte(cleaned, '[')
	end := strings.LastIndexByte(cleaned, ']')
	if start < 0 || end <= start {
		return nil, types.NewAppErrorWithDetails(types.ErrBackend,
			"malformed batch response", "no JSON array found", nil)
	}
	cleaned = cleaned[start : end+1]

	parsed := gjson.Parse(cleaned)
	if !parsed.IsArray() {
		return nil, types.NewAppErrorWithDetails(types.ErrBackend,
			"malformed batch response", "payload is not a JSON array", nil)
	}

	var results []string
	for _, item := range parsed.Array() {
		results = append(results, item.String())
	}
	if len(results) != want {
		return nil, types.NewAppErrorWithDetails(types.ErrBackend,
			"malformed batch response",
			fmt.Sprintf("expected %d results, got %d", want, len(results)), nil)
	}
	return results, nil
}

// encodeSnippets renders the snippet list as JSON for logging.
func encodeSnippets(inners []string) string {
	data, err := json.Marshal(inners)
	if err != nil {
		return "[]"
	}
	return string(data)
}

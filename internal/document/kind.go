package document

import (
	"path/filepath"
	"strings"

	"github.com/EricWay1024/lazy-latex/internal/types"
)

// DetectKind classifies a document by its file extension.
func DetectKind(path string) types.DocumentKind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tex", ".latex", ".sty", ".cls":
		return types.DocLaTeX
	case ".md", ".markdown", ".mdown":
		return types.DocMarkdown
	default:
		return types.DocUnknown
	}
}

// CommentLine renders text as a whole-line comment in the given document
// kind: a delimiter comment for LaTeX, an HTML-style comment for Markdown.
func CommentLine(kind types.DocumentKind, text string) string {
	if kind == types.DocMarkdown {
		return "<!-- " + text + " -->"
	}
	return "% " + text
}

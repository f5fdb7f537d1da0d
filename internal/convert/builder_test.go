package convert

import (
	"strings"
	"testing"

	"github.com/EricWay1024/lazy-latex/internal/scanner"
	"github.com/EricWay1024/lazy-latex/internal/types"
)

func latexDelims() Delimiters {
	return ResolveDelimiters(types.DocLaTeX, types.InlineDollar, types.DisplayBracket)
}

// buildFor scans the line, asserts exactly one region, and builds
// replacements for it.
func buildFor(t *testing.T, line, generated string) []types.Replacement {
	t.Helper()
	regions := scanner.ScanLine(line)
	if len(regions) != 1 {
		t.Fatalf("expected one region in %q, got %d", line, len(regions))
	}
	return BuildReplacements(regions[0], generated, line, latexDelims())
}

func applyFor(t *testing.T, line, generated string) string {
	t.Helper()
	out, err := ApplyReplacements(line, buildFor(t, line, generated))
	if err != nil {
		t.Fatalf("ApplyReplacements() error = %v", err)
	}
	return out
}

func TestResolveDelimiters(t *testing.T) {
	tests := []struct {
		name    string
		kind    types.DocumentKind
		inline  types.InlineStyle
		display types.DisplayStyle
		want    Delimiters
	}{
		{
			name: "latex dollar and bracket",
			kind: types.DocLaTeX, inline: types.InlineDollar, display: types.DisplayBracket,
			want: Delimiters{"$", "$", "\\[", "\\]"},
		},
		{
			name: "latex paren and double dollar",
			kind: types.DocLaTeX, inline: types.InlineParen, display: types.DisplayDollar,
			want: Delimiters{"\\(", "\\)", "$$", "$$"},
		},
		{
			name: "markdown is fixed regardless of styles",
			kind: types.DocMarkdown, inline: types.InlineParen, display: types.DisplayDollar,
			want: Delimiters{"$", "$", "$$", "$$"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveDelimiters(tt.kind, tt.inline, tt.display); got != tt.want {
				t.Errorf("ResolveDelimiters() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestBuildInlineReplacement(t *testing.T) {
	got := applyFor(t, "let ;;x^2;;", "x^2")
	if got != "let $x^2$" {
		t.Errorf("inline result = %q, want %q", got, "let $x^2$")
	}
}

func TestBuildFreeTextReplacement(t *testing.T) {
	got := applyFor(t, "see ;;;;summarize;;;; here", "the summary")
	if got != "see the summary here" {
		t.Errorf("free text result = %q, want %q", got, "see the summary here")
	}
}

func TestEmptyGenerationSkipsRegion(t *testing.T) {
	if ops := buildFor(t, "let ;;x;;", "   "); ops != nil {
		t.Errorf("blank generation produced %d operations, want none", len(ops))
	}
}

func TestDisplayPlacement(t *testing.T) {
	t.Run("start of line gets no leading blank line", func(t *testing.T) {
		got := applyFor(t, ";;;x;;;", "x")
		want := "\\[\nx\n\\]\n"
		if got != want {
			t.Errorf("display result = %q, want %q", got, want)
		}
	})

	t.Run("whitespace prefix gets no leading blank line", func(t *testing.T) {
		got := applyFor(t, "  ;;;x;;;", "x")
		if strings.HasPrefix(got, "\n") {
			t.Errorf("display result starts with blank line: %q", got)
		}
	})

	t.Run("text prefix gets exactly one leading blank line", func(t *testing.T) {
		got := applyFor(t, "so ;;;x;;;", "x")
		want := "so \n\n\\[\nx\n\\]\n"
		if got != want {
			t.Errorf("display result = %q, want %q", got, want)
		}
	})
}

func TestPunctuationAbsorption(t *testing.T) {
	got := applyFor(t, ";;;x;;; .", "x")
	// The period moves inside the block with a preceding space and the
	// trailing " ." is removed from the line.
	want := "\\[\nx .\n\\]\n"
	if got != want {
		t.Errorf("absorption result = %q, want %q", got, want)
	}
}

func TestPunctuationAbsorptionLeavesTrailingTextFlush(t *testing.T) {
	got := applyFor(t, ";;;x;;;, and so on", "x")
	want := "\\[\nx ,\n\\]\nand so on"
	if got != want {
		t.Errorf("absorption result = %q, want %q", got, want)
	}
}

func TestDisplayAbsorbsLoneTrailingSemicolon(t *testing.T) {
	// After a display region a lone semicolon counts as sentence
	// punctuation and moves inside the block; only inline regions keep it
	// on the line (despaced). See TestTrailingSemicolonDespacing.
	got := applyFor(t, ";;;x;;; ;", "x")
	want := "\\[\nx ;\n\\]\n"
	if got != want {
		t.Errorf("display + lone semicolon = %q, want %q", got, want)
	}
}

func TestPunctuationAbsorptionIgnoresMarkerRuns(t *testing.T) {
	// The line has a display region followed by a stray double semicolon,
	// which is a marker run, not punctuation.
	line := ";;;x;;; ;;"
	regions := scanner.ScanLine(line)
	if len(regions) != 1 {
		t.Fatalf("expected one region, got %d", len(regions))
	}
	ops := BuildReplacements(regions[0], "x", line, latexDelims())
	for _, op := range ops {
		if op.Text == "" && op.Start >= regions[0].End {
			t.Errorf("marker run was absorbed or despaced: %+v", op)
		}
	}
}

func TestTrailingSemicolonDespacing(t *testing.T) {
	t.Run("inline", func(t *testing.T) {
		got := applyFor(t, "let ;;x;;  ;", "x")
		if got != "let $x$;" {
			t.Errorf("despaced result = %q, want %q", got, "let $x$;")
		}
	})

	t.Run("no despacing without whitespace gap", func(t *testing.T) {
		got := applyFor(t, "let ;;x;;", "x")
		if got != "let $x$" {
			t.Errorf("result = %q, want %q", got, "let $x$")
		}
	})

	t.Run("double semicolon is not punctuation", func(t *testing.T) {
		got := applyFor(t, ";;x;; ;;", "x")
		if got != "$x$ ;;" {
			t.Errorf("result = %q, want %q", got, "$x$ ;;")
		}
	})
}

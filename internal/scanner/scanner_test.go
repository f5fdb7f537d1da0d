package scanner

import (
	"testing"

	"github.com/EricWay1024/lazy-latex/internal/types"
)

func TestScanLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []types.MarkerRegion
	}{
		{
			name: "no markers",
			line: "a perfectly ordinary line",
			want: nil,
		},
		{
			name: "empty line",
			line: "",
			want: nil,
		},
		{
			name: "single inline region",
			line: "let ;;x^2;;",
			want: []types.MarkerRegion{
				{Kind: types.KindInline, Start: 4, End: 11, Inner: "x^2"},
			},
		},
		{
			name: "single display region",
			line: ";;;E = mc^2;;;",
			want: []types.MarkerRegion{
				{Kind: types.KindDisplay, Start: 0, End: 14, Inner: "E = mc^2"},
			},
		},
		{
			name: "free text region",
			line: ";;;;insert a table;;;;",
			want: []types.MarkerRegion{
				{Kind: types.KindFreeText, Start: 0, End: 22, Inner: "insert a table"},
			},
		},
		{
			name: "inner text is raw and untrimmed",
			line: ";;  x + y  ;;",
			want: []types.MarkerRegion{
				{Kind: types.KindInline, Start: 0, End: 13, Inner: "  x + y  "},
			},
		},
		{
			name: "multiple regions in order",
			line: ";;a;; then ;;;b;;; then ;;;;c;;;;",
			want: []types.MarkerRegion{
				{Kind: types.KindInline, Start: 0, End: 5, Inner: "a"},
				{Kind: types.KindDisplay, Start: 11, End: 18, Inner: "b"},
				{Kind: types.KindFreeText, Start: 24, End: 33, Inner: "c"},
			},
		},
		{
			name: "unterminated opener is plain text",
			line: "dangling ;;x^2",
			want: nil,
		},
		{
			name: "closer of different length does not match",
			line: ";;x^2;;;",
			want: nil,
		},
		{
			name: "single semicolon never opens",
			line: "a; b; c",
			want: nil,
		},
		{
			name: "run longer than four never opens",
			line: ";;;;;x;;;;;",
			want: nil,
		},
		{
			name: "long run skipped whole, later pair still matches",
			line: ";;;;; ;;x;;",
			want: []types.MarkerRegion{
				{Kind: types.KindInline, Start: 6, End: 11, Inner: "x"},
			},
		},
		{
			name: "scan resumes after closer, no overlap",
			line: ";;a;; ;;b;;",
			want: []types.MarkerRegion{
				{Kind: types.KindInline, Start: 0, End: 5, Inner: "a"},
				{Kind: types.KindInline, Start: 6, End: 11, Inner: "b"},
			},
		},
		{
			name: "greedy run measurement between candidate closers",
			line: ";;a;;;;b;;",
			want: []types.MarkerRegion{
				{Kind: types.KindInline, Start: 0, End: 10, Inner: "a;;;;b"},
			},
		},
		{
			name: "empty inner text",
			line: ";;;;",
			want: []types.MarkerRegion{
				{Kind: types.KindFreeText, Start: 0, End: 4, Inner: ""},
			},
		},
		{
			name: "unicode inner text preserved",
			line: ";;α + β;;",
			want: []types.MarkerRegion{
				{Kind: types.KindInline, Start: 0, End: 11, Inner: "α + β"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScanLine(tt.line)
			if len(got) != len(tt.want) {
				t.Fatalf("ScanLine() returned %d regions, want %d: %+v", len(got), len(tt.want), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("region %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestScanLineInnerMatchesSubstring(t *testing.T) {
	lines := []string{
		"let ;;x^2;; and ;;;y;;; end",
		";;a;;b;;c;;",
		"text ;;;;do something;;;; more",
	}

	for _, line := range lines {
		prevEnd := 0
		for _, r := range ScanLine(line) {
			run := r.Kind.RunLength()
			inner := line[r.Start+run : r.End-run]
			if inner != r.Inner {
				t.Errorf("line %q: Inner = %q, want substring %q", line, r.Inner, inner)
			}
			if r.Start < prevEnd {
				t.Errorf("line %q: region starting at %d overlaps previous end %d", line, r.Start, prevEnd)
			}
			prevEnd = r.End
		}
	}
}

func TestHasMarkers(t *testing.T) {
	if !HasMarkers(";;x;;") {
		t.Error("HasMarkers(\";;x;;\") = false, want true")
	}
	if HasMarkers("no markers here; just a semicolon") {
		t.Error("HasMarkers() = true for plain text")
	}
}

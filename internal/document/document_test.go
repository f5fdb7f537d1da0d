package document

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/EricWay1024/lazy-latex/internal/types"
)

func TestMemoryBufferSplice(t *testing.T) {
	tests := []struct {
		name       string
		start, end int
		repl       []string
		want       []string
		wantErr    bool
	}{
		{
			name:  "replace one line with one",
			start: 1, end: 2,
			repl: []string{"B"},
			want: []string{"a", "B", "c"},
		},
		{
			name:  "replace one line with several",
			start: 1, end: 2,
			repl: []string{"x", "y", "z"},
			want: []string{"a", "x", "y", "z", "c"},
		},
		{
			name:  "insert before line",
			start: 1, end: 1,
			repl: []string{"new"},
			want: []string{"a", "new", "b", "c"},
		},
		{
			name:  "delete range",
			start: 0, end: 2,
			repl: nil,
			want: []string{"c"},
		},
		{
			name:  "append at end",
			start: 3, end: 3,
			repl: []string{"d"},
			want: []string{"a", "b", "c", "d"},
		},
		{
			name:  "out of range",
			start: 2, end: 5,
			wantErr: true,
		},
		{
			name:  "inverted range",
			start: 2, end: 1,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := NewMemoryBuffer([]string{"a", "b", "c"})
			gen := buf.Generation()
			err := buf.SpliceLines(tt.start, tt.end, tt.repl)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SpliceLines() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if buf.Generation() != gen {
					t.Error("failed splice bumped the generation")
				}
				return
			}
			if got := buf.Snapshot(); strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("lines = %v, want %v", got, tt.want)
			}
			if buf.Generation() == gen {
				t.Error("successful splice did not bump the generation")
			}
		})
	}
}

func TestFileBufferFlushFailureKeepsOriginal(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "doc.tex")
	if err := os.WriteFile(path, []byte("one\n"), 0644); err != nil {
		t.Fatal(err)
	}

	buf, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}
	if err := buf.SpliceLines(0, 1, []string{"two"}); err != nil {
		t.Fatal(err)
	}

	// Point the buffer at an unwritable target. The original path stands
	// in for the backup so the failing step is the write itself.
	buf.backupPath = path
	buf.path = filepath.Join(tmpDir, "missing", "doc.tex")

	err = buf.Flush()
	if err == nil {
		t.Fatal("Flush() succeeded against an unwritable path")
	}
	var appErr *types.AppError
	if !errors.As(err, &appErr) || appErr.Code != types.ErrDocument {
		t.Errorf("Flush() error = %v, want document error", err)
	}
	if !buf.Dirty() {
		t.Error("failed flush marked the buffer clean")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "one\n" {
		t.Errorf("original file content = %q, want untouched", string(data))
	}
}

func TestFileBufferRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "doc.tex")
	if err := os.WriteFile(path, []byte("one\ntwo\nthree\n"), 0644); err != nil {
		t.Fatal(err)
	}

	buf, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}
	if buf.Kind() != types.DocLaTeX {
		t.Errorf("Kind() = %v, want %v", buf.Kind(), types.DocLaTeX)
	}
	if buf.LineCount() != 3 {
		t.Fatalf("LineCount() = %d, want 3", buf.LineCount())
	}
	if buf.Dirty() {
		t.Error("fresh buffer reported dirty")
	}

	if err := buf.SpliceLines(1, 2, []string{"TWO", "extra"}); err != nil {
		t.Fatalf("SpliceLines() error = %v", err)
	}
	if !buf.Dirty() {
		t.Error("edited buffer not dirty")
	}

	if err := buf.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	if buf.Dirty() {
		t.Error("flushed buffer still dirty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "one\nTWO\nextra\nthree\n" {
		t.Errorf("file content = %q", string(data))
	}

	// A backup of the original must exist.
	entries, _ := os.ReadDir(tmpDir)
	found := false
	for _, e := range entries {
		if strings.Contains(e.Name(), ".backup_") {
			found = true
		}
	}
	if !found {
		t.Error("no backup file created by first flush")
	}
}

func TestFileBufferUTF8BOM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.md")
	content := append([]byte{0xEF, 0xBB, 0xBF}, []byte("hello\nworld\n")...)
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatal(err)
	}

	buf, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}
	line, err := buf.Line(0)
	if err != nil || line != "hello" {
		t.Errorf("Line(0) = %q, %v; want %q", line, err, "hello")
	}
	if buf.Kind() != types.DocMarkdown {
		t.Errorf("Kind() = %v, want %v", buf.Kind(), types.DocMarkdown)
	}
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"a", 1},
		{"a\n", 1},
		{"a\nb", 2},
		{"a\r\nb\r\n", 2},
	}
	for _, tt := range tests {
		if got := splitLines(tt.in); len(got) != tt.want {
			t.Errorf("splitLines(%q) = %v (%d lines), want %d", tt.in, got, len(got), tt.want)
		}
	}
}

func TestDetectKind(t *testing.T) {
	tests := []struct {
		path string
		want types.DocumentKind
	}{
		{"paper.tex", types.DocLaTeX},
		{"notes.MD", types.DocMarkdown},
		{"style.sty", types.DocLaTeX},
		{"program.go", types.DocUnknown},
	}
	for _, tt := range tests {
		if got := DetectKind(tt.path); got != tt.want {
			t.Errorf("DetectKind(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestCommentLine(t *testing.T) {
	if got := CommentLine(types.DocLaTeX, "orig"); got != "% orig" {
		t.Errorf("CommentLine(latex) = %q", got)
	}
	if got := CommentLine(types.DocMarkdown, "orig"); got != "<!-- orig -->" {
		t.Errorf("CommentLine(markdown) = %q", got)
	}
}

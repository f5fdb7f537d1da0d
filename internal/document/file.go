package document

import (
	"bufio"
	"os"
	"strings"

	"github.com/EricWay1024/lazy-latex/internal/logger"
	"github.com/EricWay1024/lazy-latex/internal/types"
)

// FileBuffer is a Buffer loaded from a file on disk. Edits mutate the
// in-memory lines; Flush writes them back in one atomic operation, taking a
// timestamped backup before the first write and restoring it on failure.
type FileBuffer struct {
	*MemoryBuffer

	path       string
	kind       types.DocumentKind
	encoding   string
	backupPath string
	flushedGen int64
}

// OpenFile loads path into a FileBuffer, decoding its encoding to UTF-8.
func OpenFile(path string) (*FileBuffer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Error("failed to read document", err, logger.String("path", path))
		return nil, types.NewAppError(types.ErrDocument, "failed to read document", err)
	}

	text, enc, err := decodeToUTF8(data)
	if err != nil {
		return nil, err
	}

	lines := splitLines(text)
	kind := DetectKind(path)
	logger.Info("document opened",
		logger.String("path", path),
		logger.String("kind", string(kind)),
		logger.String("encoding", enc),
		logger.Int("lines", len(lines)))

	return &FileBuffer{
		MemoryBuffer: NewMemoryBuffer(lines),
		path:         path,
		kind:         kind,
		encoding:     enc,
	}, nil
}

// splitLines splits text into lines without trailing newlines. A trailing
// newline on the final line does not produce a phantom empty line.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.TrimSuffix(text, "\n")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// Path returns the file path backing this buffer.
func (b *FileBuffer) Path() string {
	return b.path
}

// Kind returns the detected document kind.
func (b *FileBuffer) Kind() types.DocumentKind {
	return b.kind
}

// Dirty reports whether the buffer has unflushed edits.
func (b *FileBuffer) Dirty() bool {
	return b.Generation() != b.flushedGen
}

// Flush writes the buffer back to its file. The write is all-or-nothing: a
// backup is taken before the first flush and restored if the write fails.
// Output is always UTF-8 with trailing newline, matching what was loaded.
func (b *FileBuffer) Flush() error {
	if !b.Dirty() {
		logger.Debug("flush skipped, buffer clean", logger.String("path", b.path))
		return nil
	}

	if b.backupPath == "" {
		backup, err := createBackup(b.path)
		if err != nil {
			return types.NewAppError(types.ErrDocument, "failed to back up document", err)
		}
		b.backupPath = backup
	}

	if err := b.writeAllLines(); err != nil {
		if restoreErr := restoreBackup(b.backupPath, b.path); restoreErr != nil {
			logger.Error("failed to restore backup", restoreErr, logger.String("path", b.path))
		}
		return types.NewAppError(types.ErrDocument, "failed to write document", err)
	}

	b.flushedGen = b.Generation()
	logger.Info("document flushed", logger.String("path", b.path), logger.Int("lines", b.LineCount()))
	return nil
}

func (b *FileBuffer) writeAllLines() (err error) {
	file, err := os.Create(b.path)
	if err != nil {
		return err
	}
	// A close failure is a failed write: the kernel may only surface a
	// write-back error here, and Flush relies on this error to restore
	// the backup.
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	writer := bufio.NewWriter(file)
	for _, line := range b.Snapshot() {
		if _, err := writer.WriteString(line + "\n"); err != nil {
			return err
		}
	}
	return writer.Flush()
}

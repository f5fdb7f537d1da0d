package document

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/EricWay1024/lazy-latex/internal/logger"
)

// createBackup copies the file at path to a timestamped sibling before the
// first flush touches it. Returns the backup path.
func createBackup(path string) (string, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return "", fmt.Errorf("file does not exist: %s", path)
	}

	backupPath := fmt.Sprintf("%s.backup_%s", path, time.Now().Format("20060102_150405"))
	if err := copyFile(path, backupPath); err != nil {
		logger.Error("failed to create backup", err, logger.String("path", path))
		return "", fmt.Errorf("failed to create backup: %w", err)
	}

	logger.Debug("backup created", logger.String("backupPath", backupPath))
	return backupPath, nil
}

// restoreBackup copies a backup over the original after a failed write.
func restoreBackup(backupPath, path string) error {
	logger.Warn("restoring backup", logger.String("backupPath", backupPath), logger.String("path", path))
	return copyFile(backupPath, path)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}

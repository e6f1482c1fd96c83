// Package archive keeps earlier generations of booklets around.
package archive

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ErrNotExist is returned when there is nothing to archive
var ErrNotExist = errors.New("directory does not exist")

const timestampFormat = "20060102-150405"

// ArchiveDir moves dir to <parent>/archive/<name>-<timestamp> and returns
// the new location
func ArchiveDir(dir string, now time.Time) (string, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return "", fmt.Errorf("%w: %s", ErrNotExist, dir)
	}
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("not a directory: %s", dir)
	}

	clean := filepath.Clean(dir)
	archiveDir := filepath.Join(filepath.Dir(clean), "archive")
	if err := os.MkdirAll(archiveDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	name := filepath.Base(clean)
	archivePath := filepath.Join(archiveDir, fmt.Sprintf("%s-%s", name, now.Format(timestampFormat)))

	// same second, add microseconds
	if _, err := os.Stat(archivePath); err == nil {
		archivePath = filepath.Join(archiveDir, fmt.Sprintf("%s-%s", name, now.Format(timestampFormat+".000000")))
	}

	if err := os.Rename(clean, archivePath); err != nil {
		return "", fmt.Errorf("failed to archive %s: %w", dir, err)
	}

	return archivePath, nil
}

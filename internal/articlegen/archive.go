package articlegen

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ArchiveDir is the subdirectory of a language directory holding
// superseded articles.
const ArchiveDir = "archive"

// protectedFile is never archived.
const protectedFile = "index.md"

// Archive moves every Markdown file directly inside dir, except index.md,
// into dir/archive. A name already taken in the archive gets a timestamp
// suffix. It returns the new paths in directory order.
func Archive(dir string, now time.Time) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}

	var moved []string
	archive := filepath.Join(dir, ArchiveDir)
	for _, entry := range entries {
		name := entry.Name()
		if !entry.Type().IsRegular() || filepath.Ext(name) != ".md" || name == protectedFile {
			continue
		}

		if err := os.MkdirAll(archive, 0755); err != nil {
			return moved, fmt.Errorf("creating archive directory: %w", err)
		}

		dst, err := archivePath(archive, name, now)
		if err != nil {
			return moved, err
		}
		if err := os.Rename(filepath.Join(dir, name), dst); err != nil {
			return moved, fmt.Errorf("archiving %s: %w", name, err)
		}
		moved = append(moved, dst)
	}
	return moved, nil
}

func archivePath(archive, name string, now time.Time) (string, error) {
	dst := filepath.Join(archive, name)
	_, err := os.Stat(dst)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return dst, nil
	case err != nil:
		return "", fmt.Errorf("checking %s: %w", dst, err)
	}

	stem := strings.TrimSuffix(name, filepath.Ext(name))
	stamp := now.Format("20060102T150405")
	for i := 0; ; i++ {
		candidate := fmt.Sprintf("%s.%s%s", stem, stamp, filepath.Ext(name))
		if i > 0 {
			candidate = fmt.Sprintf("%s.%s-%d%s", stem, stamp, i, filepath.Ext(name))
		}
		dst = filepath.Join(archive, candidate)
		_, err := os.Stat(dst)
		if errors.Is(err, fs.ErrNotExist) {
			return dst, nil
		}
		if err != nil {
			return "", fmt.Errorf("checking %s: %w", dst, err)
		}
	}
}

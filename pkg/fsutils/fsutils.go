package fsutils

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// WriteToFile writes content to a file, overwriting if it exists.
// Missing parent directories are created.
func WriteToFile(filePath string, content []byte) error {
	if dir := filepath.Dir(filePath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %q: %w", dir, err)
		}
	}
	return os.WriteFile(filePath, content, 0644) // Standard file permissions
}

// ReadFile reads the content of a file.
func ReadFile(filePath string) ([]byte, error) {
	return os.ReadFile(filePath)
}

// FileExists checks if a path exists and is a regular file (not a directory).
func FileExists(filePath string) bool {
	info, err := os.Stat(filePath)
	if err != nil {
		// Missing or unreadable paths both count as absent.
		return false
	}
	return !info.IsDir()
}

// ArchivePath joins slash-separated elements into a relative path for an
// archive entry. Absolute elements, backslashes and anything that would
// climb out of the archive root are rejected.
func ArchivePath(elems ...string) (string, error) {
	parts := make([]string, 0, len(elems))
	for _, e := range elems {
		if e == "" {
			continue
		}
		if strings.Contains(e, `\`) {
			return "", fmt.Errorf("path element %q contains a backslash", e)
		}
		if strings.HasPrefix(e, "/") {
			return "", fmt.Errorf("path element %q is absolute", e)
		}
		parts = append(parts, e)
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("empty archive path")
	}

	joined := path.Join(parts...)
	if joined == "." || joined == ".." || strings.HasPrefix(joined, "../") {
		return "", fmt.Errorf("archive path %q escapes the archive root", joined)
	}
	return joined, nil
}

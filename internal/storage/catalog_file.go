package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"ui-kit-catalog/internal/model"
	"ui-kit-catalog/pkg/fsutils"
)

// CatalogFile implements the TemplateStore interface over a single file
// holding an array of descriptors, JSON or YAML by extension.
type CatalogFile struct {
	// Path is the descriptor file.
	Path string
}

// NewCatalogFile creates a CatalogFile. It fails when the file is missing
// so misconfiguration shows up at startup rather than on first use.
func NewCatalogFile(path string) (*CatalogFile, error) {
	if path == "" {
		return nil, fmt.Errorf("catalog file path cannot be empty")
	}
	if !fsutils.FileExists(path) {
		return nil, fmt.Errorf("catalog file %s: %w", path, os.ErrNotExist)
	}
	return &CatalogFile{Path: path}, nil
}

// Location returns the file path.
func (c *CatalogFile) Location() string {
	return c.Path
}

// ReadAll loads and decodes every descriptor in the file.
func (c *CatalogFile) ReadAll() ([]model.Template, error) {
	data, err := fsutils.ReadFile(c.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("catalog file %s not found: %w", c.Path, err)
		}
		return nil, fmt.Errorf("failed to read catalog file %s: %w", c.Path, err)
	}

	var templates []model.Template
	switch strings.ToLower(filepath.Ext(c.Path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &templates)
	default:
		err = json.Unmarshal(data, &templates)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode catalog file %s: %w", c.Path, err)
	}

	for i, t := range templates {
		if t.Name == "" {
			return nil, fmt.Errorf("catalog file %s: entry %d has no name", c.Path, i)
		}
	}
	return templates, nil
}

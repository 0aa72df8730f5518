package storage

import "ui-kit-catalog/internal/model"

// TemplateStore defines read access to a set of template descriptors.
// This allows swapping implementations (e.g., a local file vs. the remote catalog) later.
type TemplateStore interface {
	// ReadAll retrieves every descriptor in stored order.
	ReadAll() ([]model.Template, error)

	// Location describes where the descriptors come from, for logs.
	Location() string
}

// Package storage defines the read-only content directory abstraction.
package storage

import "github.com/starford/folio/internal/models"

// Provider is the interface for content file access.
type Provider interface {
	// List returns the eligible markdown files directly under the content root,
	// in lexicographic filename order.
	List() ([]models.ContentFile, error)
	// Read returns the raw bytes of the file name (relative to the content root).
	Read(name string) ([]byte, error)
	// Root returns the absolute content directory.
	Root() string
}

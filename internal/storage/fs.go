package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/models"
)

const noteExt = ".md"

// FS implements Provider backed by the local file system.
type FS struct {
	root     string // absolute path to the content directory
	reserved string // file excluded from listing, e.g. README.md
}

// NewFS creates a new FS provider rooted at the given directory.
// The directory must already exist. reserved names a file that is never
// treated as a note.
func NewFS(root, reserved string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w: %w", apperr.ErrContentUnavailable, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: %w: root is not a directory: %s", apperr.ErrContentUnavailable, abs)
	}
	return &FS{root: abs, reserved: reserved}, nil
}

// Root returns the absolute content directory.
func (f *FS) Root() string { return f.root }

// safePath resolves a relative name against the content root and rejects
// any result that escapes it (directory traversal).
func (f *FS) safePath(rel string) (string, error) {
	if rel == "" {
		return "", fmt.Errorf("storage: empty path")
	}
	cleaned := filepath.Clean(rel)
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("storage: absolute paths not allowed: %s", rel)
	}
	abs := filepath.Join(f.root, cleaned)
	if !strings.HasPrefix(abs, f.root+string(os.PathSeparator)) {
		return "", fmt.Errorf("storage: path escapes content root: %s", rel)
	}
	return abs, nil
}

// Eligible reports whether a directory entry name is a note source file.
func (f *FS) Eligible(name string) bool {
	if strings.HasPrefix(name, ".") || name == f.reserved {
		return false
	}
	return strings.HasSuffix(name, noteExt) && len(name) > len(noteExt)
}

// List reads the content root one level deep. os.ReadDir sorts by filename,
// which makes enumeration order deterministic across platforms.
func (f *FS) List() ([]models.ContentFile, error) {
	entries, err := os.ReadDir(f.root)
	if err != nil {
		return nil, fmt.Errorf("storage: list: %w: %w", apperr.ErrContentUnavailable, err)
	}
	out := make([]models.ContentFile, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !f.Eligible(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			// Removed between ReadDir and Info.
			continue
		}
		out = append(out, models.ContentFile{
			Name:     e.Name(),
			Category: strings.TrimSuffix(e.Name(), noteExt),
			Size:     info.Size(),
			ModTime:  info.ModTime(),
		})
	}
	return out, nil
}

// Read returns the raw bytes of a content file.
func (f *FS) Read(name string) ([]byte, error) {
	abs, err := f.safePath(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", name, err)
	}
	return data, nil
}

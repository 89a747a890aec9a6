package keyrepo

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/allisson/dataprotect/internal/dataprotect/apperrors"
)

// FilesystemRepository stores one XML file per element under a directory,
// a concrete repository implementation this module ships standalone:
// durable Repository that doesn't require a database.
type FilesystemRepository struct {
	dir string
}

// NewFilesystemRepository returns a FilesystemRepository rooted at dir,
// creating the directory if it doesn't exist.
func NewFilesystemRepository(dir string) (*FilesystemRepository, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrRepository, "keyrepo: failed to create repository directory")
	}
	return &FilesystemRepository{dir: dir}, nil
}

// GetAllElements implements Repository: a full scan of every `*.xml` file
// in the directory.
func (r *FilesystemRepository) GetAllElements(_ context.Context) ([]Element, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrRepository, "keyrepo: failed to list repository directory")
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".xml") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	elements := make([]Element, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(r.dir, name))
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrRepository, "keyrepo: failed to read repository element")
		}
		elements = append(elements, Element{Bytes: data})
	}
	return elements, nil
}

// StoreElement implements Repository, writing element under a filename
// derived from friendlyName.
func (r *FilesystemRepository) StoreElement(_ context.Context, element Element, friendlyName string) error {
	name := sanitizeFilename(friendlyName) + ".xml"
	path := filepath.Join(r.dir, name)

	if err := os.WriteFile(path, element.Bytes, 0o600); err != nil {
		return apperrors.Wrap(apperrors.ErrRepository, "keyrepo: failed to write repository element")
	}
	return nil
}

func sanitizeFilename(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return fmt.Sprintf("element-%d", 0)
	}
	return b.String()
}

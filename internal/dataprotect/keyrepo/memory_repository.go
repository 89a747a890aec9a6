package keyrepo

import (
	"context"
	"sync"
)

// MemoryRepository is an in-process Repository, useful for tests and for
// processes that intentionally don't persist keys across restarts.
type MemoryRepository struct {
	mu       sync.Mutex
	elements []Element
}

// NewMemoryRepository returns an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

// GetAllElements implements Repository.
func (r *MemoryRepository) GetAllElements(_ context.Context) ([]Element, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Element, len(r.elements))
	copy(out, r.elements)
	return out, nil
}

// StoreElement implements Repository. friendlyName is ignored: there is no
// filesystem to name anything on.
func (r *MemoryRepository) StoreElement(_ context.Context, element Element, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.elements = append(r.elements, element)
	return nil
}

package catalog

import (
	"context"
	"sync"

	"github.com/Mariosyian/marketplace/internal/domain"
)

// MemoryStore implements Store with in-memory storage. Used when no Mongo
// URI is configured, and in tests.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]*domain.Item
	order []string // insertion order, for stable listings
}

// NewMemoryStore creates a store seeded with the given items.
func NewMemoryStore(seed []*domain.Item) *MemoryStore {
	s := &MemoryStore{
		items: make(map[string]*domain.Item, len(seed)),
		order: make([]string, 0, len(seed)),
	}
	for _, item := range seed {
		copied := *item
		s.items[item.ID] = &copied
		s.order = append(s.order, item.ID)
	}
	return s
}

func (s *MemoryStore) GetItem(_ context.Context, id string) (*domain.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[id]
	if !ok {
		return nil, ErrItemNotFound
	}
	copied := *item
	return &copied, nil
}

func (s *MemoryStore) ListItems(_ context.Context) ([]*domain.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Item, 0, len(s.order))
	for _, id := range s.order {
		copied := *s.items[id]
		result = append(result, &copied)
	}
	return result, nil
}

func (s *MemoryStore) DecrementQuantity(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok {
		return ErrItemNotFound
	}
	item.Quantity--
	return nil
}

// Package memory provides an in-process SlotStore.
package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/aretw0/disconnected/pkg/domain"
)

// Store implements ports.SlotStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]domain.SaveSlot
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]domain.SaveSlot),
	}
}

// Put stores a copy of the slot.
func (s *Store) Put(ctx context.Context, slot domain.SaveSlot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[slot.ID] = slot
	return nil
}

// Get retrieves a slot.
func (s *Store) Get(ctx context.Context, id string) (domain.SaveSlot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	slot, ok := s.data[id]
	if !ok {
		return domain.SaveSlot{}, domain.ErrSlotNotFound
	}
	return slot, nil
}

// Delete removes a slot.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	return nil
}

// List returns every slot, newest first.
func (s *Store) List(ctx context.Context) ([]domain.SaveSlot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	slots := make([]domain.SaveSlot, 0, len(s.data))
	for _, slot := range s.data {
		slots = append(slots, slot)
	}
	SortNewestFirst(slots)
	return slots, nil
}

// SortNewestFirst orders slots by descending timestamp, then by id.
func SortNewestFirst(slots []domain.SaveSlot) {
	slices.SortFunc(slots, func(a, b domain.SaveSlot) int {
		if c := cmp.Compare(b.Timestamp, a.Timestamp); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

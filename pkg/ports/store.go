package ports

import (
	"context"

	"github.com/aretw0/disconnected/pkg/domain"
)

// SlotStore persists save slots.
type SlotStore interface {
	// Put creates or replaces the slot with the same ID.
	Put(ctx context.Context, slot domain.SaveSlot) error

	// Get retrieves a slot.
	// Returns domain.ErrSlotNotFound if the slot does not exist.
	Get(ctx context.Context, id string) (domain.SaveSlot, error)

	// Delete removes a slot. Deleting a missing slot is not an error.
	Delete(ctx context.Context, id string) error

	// List returns every slot, newest Timestamp first.
	List(ctx context.Context) ([]domain.SaveSlot, error)
}

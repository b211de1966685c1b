package persistence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/disconnected/internal/logging"
	"github.com/aretw0/disconnected/pkg/domain"
	"github.com/aretw0/disconnected/pkg/ports"
	"github.com/aretw0/disconnected/pkg/state"
)

// Autosave slot identity.
const (
	AutosaveID   = "autosave"
	AutosaveName = "Auto Save"
)

// DefaultMaxSlots caps the slot set. One extra slot is tolerated so an
// autosave never evicts a manual save it races with.
const DefaultMaxSlots = 3

// Manager saves and loads the stores of one game through a SlotStore.
type Manager struct {
	store    ports.SlotStore
	st       *state.Context
	logger   *slog.Logger
	now      func() time.Time
	maxSlots int
}

// Option configures the Manager.
type Option func(*Manager)

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithClock overrides the wall clock used for slot timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// WithMaxSlots overrides DefaultMaxSlots.
func WithMaxSlots(n int) Option {
	return func(m *Manager) {
		m.maxSlots = n
	}
}

// NewManager binds store to the stores in st.
func NewManager(store ports.SlotStore, st *state.Context, opts ...Option) *Manager {
	m := &Manager{
		store:    store,
		st:       st,
		logger:   logging.NewNop(),
		now:      time.Now,
		maxSlots: DefaultMaxSlots,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Store returns the underlying slot store.
func (m *Manager) Store() ports.SlotStore {
	return m.store
}

// Save writes the current game into slotID. An empty name defaults to
// "Save <slotID>". The oldest slots are evicted once the set grows past
// the cap plus one.
func (m *Manager) Save(ctx context.Context, slotID, name string) (domain.SaveSlot, error) {
	if slotID == "" {
		return domain.SaveSlot{}, errors.New("slot id cannot be empty")
	}
	if name == "" {
		name = "Save " + slotID
	}
	data, err := Encode(m.st)
	if err != nil {
		return domain.SaveSlot{}, err
	}
	slot := domain.SaveSlot{
		ID:        slotID,
		Name:      name,
		Chapter:   m.st.Game.Chapter(),
		Timestamp: m.now().UnixMilli(),
		PlayTime:  int64(m.st.Game.PlayTime() / time.Second),
		Data:      string(data),
	}
	if err := m.store.Put(ctx, slot); err != nil {
		return domain.SaveSlot{}, fmt.Errorf("failed to save slot %s: %w", slotID, err)
	}
	m.logger.Debug("game saved", "slot", slotID, "chapter", slot.Chapter)

	if err := m.evict(ctx); err != nil {
		m.logger.Warn("slot eviction failed", "err", err)
	}
	return slot, nil
}

// Autosave writes the autosave slot.
func (m *Manager) Autosave(ctx context.Context) (domain.SaveSlot, error) {
	return m.Save(ctx, AutosaveID, AutosaveName)
}

// Load restores slotID into the stores. It reports false, leaving every
// store untouched, when the slot is missing (domain.ErrSlotNotFound) or its
// data is corrupt (domain.ErrCorruptSave).
func (m *Manager) Load(ctx context.Context, slotID string) (bool, error) {
	slot, err := m.store.Get(ctx, slotID)
	if err != nil {
		return false, err
	}
	if err := Restore(m.st, []byte(slot.Data)); err != nil {
		m.logger.Warn("refusing corrupt save", "slot", slotID, "err", err)
		return false, err
	}
	m.logger.Debug("game loaded", "slot", slotID, "chapter", slot.Chapter)
	return true, nil
}

// Delete removes slotID.
func (m *Manager) Delete(ctx context.Context, slotID string) error {
	return m.store.Delete(ctx, slotID)
}

// List returns every slot, newest first.
func (m *Manager) List(ctx context.Context) ([]domain.SaveSlot, error) {
	return m.store.List(ctx)
}

func (m *Manager) evict(ctx context.Context) error {
	slots, err := m.store.List(ctx)
	if err != nil {
		return err
	}
	for len(slots) > m.maxSlots+1 {
		oldest := slots[len(slots)-1]
		if err := m.store.Delete(ctx, oldest.ID); err != nil {
			return err
		}
		m.logger.Debug("slot evicted", "slot", oldest.ID)
		slots = slots[:len(slots)-1]
	}
	return nil
}

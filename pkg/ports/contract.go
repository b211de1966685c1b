package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/disconnected/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSlotStoreContract runs a suite of tests to verify that a SlotStore
// implementation adheres to the interface contract.
func RunSlotStoreContract(t *testing.T, store SlotStore) {
	ctx := context.Background()
	prefix := "contract-" + time.Now().Format("20060102150405")

	slot := func(id string, ts int64) domain.SaveSlot {
		return domain.SaveSlot{
			ID:        prefix + "-" + id,
			Name:      "Save " + id,
			Chapter:   2,
			Timestamp: ts,
			PlayTime:  754,
			Data:      `{"game":"{\"chapter\":2}"}`,
		}
	}

	t.Run("Put and Get", func(t *testing.T) {
		want := slot("1", 1_700_000_000_000)
		require.NoError(t, store.Put(ctx, want), "Put should not return error")
		t.Cleanup(func() { _ = store.Delete(ctx, want.ID) })

		got, err := store.Get(ctx, want.ID)
		require.NoError(t, err, "Get should not return error")
		assert.Equal(t, want, got)
	})

	t.Run("Get Non-Existent", func(t *testing.T) {
		_, err := store.Get(ctx, prefix+"-missing")
		assert.ErrorIs(t, err, domain.ErrSlotNotFound)
	})

	t.Run("Put Overwrites", func(t *testing.T) {
		first := slot("2", 1_700_000_000_000)
		require.NoError(t, store.Put(ctx, first))
		t.Cleanup(func() { _ = store.Delete(ctx, first.ID) })

		second := first
		second.Name = "renamed"
		second.Chapter = 3
		second.Timestamp++
		require.NoError(t, store.Put(ctx, second))

		got, err := store.Get(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, second, got)

		all, err := store.List(ctx)
		require.NoError(t, err)
		count := 0
		for _, s := range all {
			if s.ID == first.ID {
				count++
			}
		}
		assert.Equal(t, 1, count, "an overwritten slot is listed once")
	})

	t.Run("Delete", func(t *testing.T) {
		s := slot("3", 1_700_000_000_000)
		require.NoError(t, store.Put(ctx, s))

		require.NoError(t, store.Delete(ctx, s.ID), "Delete should not return error")
		_, err := store.Get(ctx, s.ID)
		assert.ErrorIs(t, err, domain.ErrSlotNotFound, "Get after Delete should return ErrSlotNotFound")

		assert.NoError(t, store.Delete(ctx, s.ID), "deleting twice is not an error")
	})

	t.Run("List Newest First", func(t *testing.T) {
		older := slot("old", 1_700_000_000_000)
		newest := slot("new", 1_700_000_300_000)
		middle := slot("mid", 1_700_000_100_000)
		for _, s := range []domain.SaveSlot{older, newest, middle} {
			require.NoError(t, store.Put(ctx, s))
		}
		t.Cleanup(func() {
			_ = store.Delete(ctx, older.ID)
			_ = store.Delete(ctx, newest.ID)
			_ = store.Delete(ctx, middle.ID)
		})

		all, err := store.List(ctx)
		require.NoError(t, err)

		var ids []string
		for _, s := range all {
			switch s.ID {
			case older.ID, newest.ID, middle.ID:
				ids = append(ids, s.ID)
				assert.Equal(t, older.Data, s.Data, "List returns full slots")
			}
		}
		assert.Equal(t, []string{newest.ID, middle.ID, older.ID}, ids)
	})
}

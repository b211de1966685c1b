package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/aretw0/disconnected/pkg/adapters/sqlite"
	"github.com/aretw0/disconnected/pkg/domain"
	"github.com/aretw0/disconnected/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTempStore(t *testing.T) (*sqlite.Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "saves.db")
	store, err := sqlite.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store, path
}

func TestSQLiteStore_Contract(t *testing.T) {
	store, _ := openTempStore(t)
	ports.RunSlotStoreContract(t, store)
}

func TestSQLiteStore_Reopen(t *testing.T) {
	store, path := openTempStore(t)
	ctx := context.Background()
	slot := domain.SaveSlot{ID: "1", Name: "Save 1", Chapter: 4, Timestamp: 10, PlayTime: 99, Data: "{}"}
	require.NoError(t, store.Put(ctx, slot))
	require.NoError(t, store.Close())

	reopened, err := sqlite.Open(path)
	require.NoError(t, err, "migrations are applied once")
	t.Cleanup(func() { _ = reopened.Close() })

	got, err := reopened.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, slot, got)
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := sqlite.Open("  ")
	assert.Error(t, err)
}

func TestSQLiteStore_RequiresID(t *testing.T) {
	store, _ := openTempStore(t)
	assert.Error(t, store.Put(context.Background(), domain.SaveSlot{}))
}

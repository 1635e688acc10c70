package badger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	storageconfig "github.com/weisyn/connector/internal/config/storage"
	interfaces "github.com/weisyn/connector/pkg/interfaces/infrastructure/storage"
)

func TestStoreRoundTripOnDisk(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := New(storageconfig.BadgerOptions{Path: dir, SyncWrites: true}, nil)
	require.NoError(t, err)

	require.NoError(t, store.Set(ctx, "connector:walletName", []byte(`"Backpack"`)))
	require.NoError(t, store.Close())

	// 重新打开后值仍在
	reopened, err := New(storageconfig.BadgerOptions{Path: dir}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	value, exists, err := reopened.Get(ctx, "connector:walletName")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, `"Backpack"`, string(value))
}

func TestStoreInMemory(t *testing.T) {
	ctx := context.Background()
	store, err := New(storageconfig.BadgerOptions{InMemory: true}, nil)
	require.NoError(t, err)

	_, exists, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, store.Set(ctx, "k", []byte("v")))
	require.NoError(t, store.Delete(ctx, "k"))
	_, exists, err = store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, store.Close())
	assert.False(t, store.IsAvailable())
	assert.ErrorIs(t, store.Set(ctx, "k", []byte("v")), interfaces.ErrUnavailable)
}

func TestStoreRequiresPath(t *testing.T) {
	_, err := New(storageconfig.BadgerOptions{}, nil)
	assert.Error(t, err)
}

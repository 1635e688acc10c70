package redis

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	storageconfig "github.com/weisyn/connector/internal/config/storage"
	interfaces "github.com/weisyn/connector/pkg/interfaces/infrastructure/storage"
)

// mockRedisClient mock Redis 客户端实现
type mockRedisClient struct {
	mu      sync.Mutex
	data    map[string][]byte
	pingErr error
	closed  bool
}

func newMockRedisClient() *mockRedisClient {
	return &mockRedisClient{data: make(map[string][]byte)}
}

func (m *mockRedisClient) Set(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *mockRedisClient) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.data[key]
	if !ok {
		return nil, errKeyNotFound
	}
	return value, nil
}

func (m *mockRedisClient) Del(ctx context.Context, keys ...string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, key := range keys {
		if _, ok := m.data[key]; ok {
			delete(m.data, key)
			n++
		}
	}
	return n, nil
}

func (m *mockRedisClient) Ping(ctx context.Context) error {
	return m.pingErr
}

func (m *mockRedisClient) Close() error {
	m.closed = true
	return nil
}

func TestStoreOperations(t *testing.T) {
	ctx := context.Background()
	client := newMockRedisClient()
	store := newWithClient(client, nil)

	_, exists, err := store.Get(ctx, "connector:walletName")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, store.Set(ctx, "connector:walletName", []byte(`"Phantom"`)))
	value, exists, err := store.Get(ctx, "connector:walletName")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, `"Phantom"`, string(value))

	require.NoError(t, store.Delete(ctx, "connector:walletName"))
	_, exists, err = store.Get(ctx, "connector:walletName")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestStoreAvailabilityFollowsPing(t *testing.T) {
	client := newMockRedisClient()
	store := newWithClient(client, nil)
	assert.True(t, store.IsAvailable())

	client.pingErr = errors.New("connection refused")
	assert.False(t, store.IsAvailable())
}

func TestStoreClose(t *testing.T) {
	ctx := context.Background()
	client := newMockRedisClient()
	store := newWithClient(client, nil)

	require.NoError(t, store.Close())
	require.NoError(t, store.Close())
	assert.True(t, client.closed)
	assert.False(t, store.IsAvailable())

	_, _, err := store.Get(ctx, "k")
	assert.ErrorIs(t, err, interfaces.ErrUnavailable)
}

func TestNewRequiresAddress(t *testing.T) {
	_, err := New(storageconfig.RedisOptions{}, nil)
	assert.Error(t, err)
}

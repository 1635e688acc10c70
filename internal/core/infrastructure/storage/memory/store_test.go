package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	storageconfig "github.com/weisyn/connector/internal/config/storage"
	"github.com/weisyn/connector/pkg/interfaces/infrastructure/log"
	storage "github.com/weisyn/connector/pkg/interfaces/infrastructure/storage"
)

// 测试日志实现，用于测试
type testLogger struct{}

func (l *testLogger) Debug(msg string)                          {}
func (l *testLogger) Debugf(format string, args ...interface{}) {}
func (l *testLogger) Info(msg string)                           {}
func (l *testLogger) Infof(format string, args ...interface{})  {}
func (l *testLogger) Warn(msg string)                           {}
func (l *testLogger) Warnf(format string, args ...interface{})  {}
func (l *testLogger) Error(msg string)                          {}
func (l *testLogger) Errorf(format string, args ...interface{}) {}
func (l *testLogger) Fatal(msg string)                          {}
func (l *testLogger) Fatalf(format string, args ...interface{}) {}
func (l *testLogger) With(args ...interface{}) log.Logger       { return l }
func (l *testLogger) Sync() error                               { return nil }
func (l *testLogger) GetZapLogger() *zap.Logger                 { return zap.NewNop() }

// setupTestStore 创建测试存储
func setupTestStore(t *testing.T) *Store {
	store, err := New(storageconfig.MemoryOptions{Shards: 4, MaxSizeMB: 1}, &testLogger{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// TestBasicOperations 测试基本操作
func TestBasicOperations(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	_, exists, err := store.Get(ctx, "walletName")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, store.Set(ctx, "walletName", []byte(`"Phantom"`)))

	value, exists, err := store.Get(ctx, "walletName")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, `"Phantom"`, string(value))

	require.NoError(t, store.Delete(ctx, "walletName"))
	require.NoError(t, store.Delete(ctx, "walletName"))

	_, exists, err = store.Get(ctx, "walletName")
	require.NoError(t, err)
	assert.False(t, exists)
}

// TestClosedStore 关闭后不可用
func TestClosedStore(t *testing.T) {
	store := setupTestStore(t)
	require.NoError(t, store.Close())
	require.NoError(t, store.Close())

	assert.False(t, store.IsAvailable())
	assert.ErrorIs(t, store.Set(context.Background(), "k", []byte("v")), storage.ErrUnavailable)
}

// Package redis 提供基于Redis的共享键值存储
//
// 多个连接器进程（例如同一用户的多个服务实例）共享上次使用的钱包记录时使用。
package redis

import (
	"context"
	"errors"
	"sync"

	storageconfig "github.com/weisyn/connector/internal/config/storage"
	logutil "github.com/weisyn/connector/internal/core/infrastructure/log"
	"github.com/weisyn/connector/pkg/interfaces/infrastructure/log"
	interfaces "github.com/weisyn/connector/pkg/interfaces/infrastructure/storage"
)

// redisClient Redis 客户端接口（用于依赖注入和测试）
//
// ⚠️ 包内私有接口；生产环境使用 go-redis，测试使用 mock。
type redisClient interface {
	Set(ctx context.Context, key string, value []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Del(ctx context.Context, keys ...string) (int64, error)
	Ping(ctx context.Context) error
	Close() error
}

// Store Redis 版本的 KVStore 实现
type Store struct {
	client redisClient
	logger log.Logger

	mu     sync.RWMutex
	closed bool
}

var _ interfaces.KVStore = (*Store)(nil)

// New 连接 Redis 并创建存储
func New(options storageconfig.RedisOptions, logger log.Logger) (*Store, error) {
	client, err := newGoRedisClient(options)
	if err != nil {
		return nil, err
	}
	store := newWithClient(client, logger)
	store.logger.Infof("Redis存储已连接 addr=%s db=%d", options.Addr, options.DB)
	return store, nil
}

// newWithClient 使用指定客户端创建存储（测试注入 mock）
func newWithClient(client redisClient, logger log.Logger) *Store {
	return &Store{
		client: client,
		logger: logutil.NewModuleLogger(logger, "storage"),
	}
}

// Get 获取值
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, false, interfaces.ErrUnavailable
	}
	value, err := s.client.Get(ctx, key)
	if errors.Is(err, errKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

// Set 写入值（不过期）
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return interfaces.ErrUnavailable
	}
	return s.client.Set(ctx, key, value)
}

// Delete 删除键
func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return interfaces.ErrUnavailable
	}
	_, err := s.client.Del(ctx, key)
	return err
}

// IsAvailable 未关闭且 Ping 成功
func (s *Store) IsAvailable() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return false
	}
	if err := s.client.Ping(context.Background()); err != nil {
		s.logger.Warnf("Redis不可用: %v", err)
		return false
	}
	return true
}

// Close 关闭连接
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.client.Close()
}

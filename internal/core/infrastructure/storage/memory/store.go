// Package memory 提供基于BigCache的内存键值存储
//
// 进程内存后端，重启后数据丢失；适合测试、演示以及不需要跨会话记忆的部署。
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/allegro/bigcache/v3"

	storageconfig "github.com/weisyn/connector/internal/config/storage"
	logutil "github.com/weisyn/connector/internal/core/infrastructure/log"
	"github.com/weisyn/connector/pkg/interfaces/infrastructure/log"
	storage "github.com/weisyn/connector/pkg/interfaces/infrastructure/storage"
)

// Store 基于BigCache的 KVStore 实现
type Store struct {
	cache  *bigcache.BigCache
	logger log.Logger
	mutex  sync.RWMutex
	closed bool
}

var _ storage.KVStore = (*Store)(nil)

// New 创建一个新的BigCache内存存储实例
func New(options storageconfig.MemoryOptions, logger log.Logger) (*Store, error) {
	// 连接器的持久化值不过期，生命周期窗口取一个足够长的值
	cfg := bigcache.DefaultConfig(24 * time.Hour * 365)
	cfg.CleanWindow = 0
	cfg.Verbose = false
	if options.Shards > 0 {
		cfg.Shards = options.Shards
	}
	if options.MaxSizeMB > 0 {
		cfg.HardMaxCacheSize = options.MaxSizeMB
	}
	cfg.MaxEntriesInWindow = 1024
	cfg.MaxEntrySize = 512

	cache, err := bigcache.New(context.Background(), cfg)
	if err != nil {
		return nil, fmt.Errorf("创建BigCache实例失败: %w", err)
	}

	return &Store{
		cache:  cache,
		logger: logutil.NewModuleLogger(logger, "storage"),
	}, nil
}

// Get 获取值
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if s.closed {
		return nil, false, storage.ErrUnavailable
	}

	value, err := s.cache.Get(key)
	if err != nil {
		if errors.Is(err, bigcache.ErrEntryNotFound) {
			return nil, false, nil
		}
		s.logger.Warnf("获取缓存键[%s]失败: %v", key, err)
		return nil, false, err
	}
	return value, true, nil
}

// Set 写入值
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if s.closed {
		return storage.ErrUnavailable
	}
	return s.cache.Set(key, value)
}

// Delete 删除键
func (s *Store) Delete(ctx context.Context, key string) error {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if s.closed {
		return storage.ErrUnavailable
	}
	if err := s.cache.Delete(key); err != nil && !errors.Is(err, bigcache.ErrEntryNotFound) {
		return err
	}
	return nil
}

// IsAvailable 未关闭即可用
func (s *Store) IsAvailable() bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return !s.closed
}

// Close 关闭缓存并释放资源
func (s *Store) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.closed {
		s.logger.Debug("内存存储已关闭，跳过重复关闭")
		return nil
	}
	s.closed = true
	return s.cache.Close()
}

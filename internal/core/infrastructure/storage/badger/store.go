// Package badger 提供基于BadgerDB的持久化键值存储
package badger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	badgerdb "github.com/dgraph-io/badger/v3"

	storageconfig "github.com/weisyn/connector/internal/config/storage"
	logutil "github.com/weisyn/connector/internal/core/infrastructure/log"
	"github.com/weisyn/connector/pkg/interfaces/infrastructure/log"
	interfaces "github.com/weisyn/connector/pkg/interfaces/infrastructure/storage"
)

// Store 基于BadgerDB的 KVStore 实现
type Store struct {
	db     *badgerdb.DB
	logger log.Logger

	mu     sync.RWMutex
	closed bool
}

var _ interfaces.KVStore = (*Store)(nil)

// New 打开BadgerDB
func New(options storageconfig.BadgerOptions, logger log.Logger) (*Store, error) {
	logger = logutil.NewModuleLogger(logger, "storage")

	var opts badgerdb.Options
	if options.InMemory {
		opts = badgerdb.DefaultOptions("").WithInMemory(true)
	} else {
		if options.Path == "" {
			return nil, fmt.Errorf("BadgerDB数据目录路径未配置")
		}
		if err := os.MkdirAll(options.Path, 0700); err != nil {
			return nil, fmt.Errorf("无法创建BadgerDB数据目录: %w", err)
		}
		opts = badgerdb.DefaultOptions(options.Path)
		opts.SyncWrites = options.SyncWrites
	}

	// 连接器只存少量小值，缓存与表尺寸取最小可用值
	opts.BlockCacheSize = 1 << 20
	opts.IndexCacheSize = 1 << 20
	opts.MemTableSize = 4 << 20
	opts.ValueLogFileSize = 16 << 20
	opts.NumMemtables = 1
	opts.NumCompactors = 2
	opts.Logger = newBadgerLogger(logger)

	db, err := badgerdb.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("无法打开BadgerDB: %w", err)
	}
	logger.Infof("BadgerDB已打开 path=%s inMemory=%v", options.Path, options.InMemory)

	return &Store{db: db, logger: logger}, nil
}

// Get 获取值
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, false, interfaces.ErrUnavailable
	}

	var value []byte
	err := s.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badgerdb.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

// Set 写入值
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return interfaces.ErrUnavailable
	}
	return s.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Set([]byte(key), value)
	})
}

// Delete 删除键
func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return interfaces.ErrUnavailable
	}
	return s.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Delete([]byte(key))
	})
}

// IsAvailable 未关闭即可用
func (s *Store) IsAvailable() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.closed
}

// Close 关闭数据库
// 写锁保证关闭时没有进行中的读写
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// badgerLogger 将BadgerDB日志转发到连接器日志
type badgerLogger struct {
	logger log.Logger
}

// newBadgerLogger 创建BadgerDB日志适配器
func newBadgerLogger(logger log.Logger) *badgerLogger {
	return &badgerLogger{logger: logger}
}

// Errorf 输出错误日志
func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Errorf("[BadgerDB] "+format, args...)
}

// Warningf 输出警告日志
func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warnf("[BadgerDB] "+format, args...)
}

// Infof BadgerDB 的 info 日志很密集，降为 debug
func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debugf("[BadgerDB] "+format, args...)
}

// Debugf 输出调试日志
func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debugf("[BadgerDB] "+format, args...)
}

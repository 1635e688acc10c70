// Package storage 提供连接器持久化后端工厂与类型化适配器
package storage

import (
	"fmt"

	storageconfig "github.com/weisyn/connector/internal/config/storage"
	"github.com/weisyn/connector/internal/core/infrastructure/storage/badger"
	"github.com/weisyn/connector/internal/core/infrastructure/storage/memory"
	"github.com/weisyn/connector/internal/core/infrastructure/storage/redis"
	"github.com/weisyn/connector/pkg/interfaces/infrastructure/log"
	interfaces "github.com/weisyn/connector/pkg/interfaces/infrastructure/storage"
)

// NewKVStore 按配置的后端创建键值存储
//
// 参数：
//   - options: 存储配置，nil 时使用内存后端默认值
//   - logger: 日志记录器（可为 nil）
func NewKVStore(options *storageconfig.StorageOptions, logger log.Logger) (interfaces.KVStore, error) {
	if options == nil {
		options = storageconfig.New(nil, "").GetOptions()
	}

	switch options.Backend {
	case storageconfig.BackendMemory, "":
		return memory.New(options.Memory, logger)
	case storageconfig.BackendBadger:
		return badger.New(options.Badger, logger)
	case storageconfig.BackendRedis:
		return redis.New(options.Redis, logger)
	case storageconfig.BackendDisabled:
		return NewDisabled(), nil
	default:
		return nil, fmt.Errorf("未知的存储后端: %s", options.Backend)
	}
}

// Keyspace 带公共前缀的键空间
type Keyspace struct {
	Store  interfaces.KVStore
	Prefix string
	Logger log.Logger
}

// Key 拼接前缀
func (k Keyspace) Key(name string) string {
	return k.Prefix + name
}

// NewAdapter 在键空间上创建逻辑键适配器
func NewAdapter[T any](ks Keyspace, name string) *JSONAdapter[T] {
	return NewJSONAdapter[T](ks.Store, ks.Key(name), ks.Logger)
}

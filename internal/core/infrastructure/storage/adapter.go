package storage

import (
	"context"
	"encoding/json"
	"time"

	logutil "github.com/weisyn/connector/internal/core/infrastructure/log"
	"github.com/weisyn/connector/pkg/interfaces/infrastructure/log"
	interfaces "github.com/weisyn/connector/pkg/interfaces/infrastructure/storage"
)

// adapterTimeout 单次后端读写上限
const adapterTimeout = 3 * time.Second

// JSONAdapter 把单个逻辑键映射到 KVStore 上的 JSON 值
//
// 写入即发即忘：不可用时跳过并记录日志，后端错误只记录不返回。
type JSONAdapter[T any] struct {
	store  interfaces.KVStore
	key    string
	logger log.Logger
}

var (
	_ interfaces.StorageAdapter[string] = (*JSONAdapter[string])(nil)
	_ interfaces.Clearer                = (*JSONAdapter[string])(nil)
	_ interfaces.AvailabilityChecker    = (*JSONAdapter[string])(nil)
)

// NewJSONAdapter 创建逻辑键适配器；key 为带前缀的完整键
func NewJSONAdapter[T any](store interfaces.KVStore, key string, logger log.Logger) *JSONAdapter[T] {
	if store == nil {
		store = NewDisabled()
	}
	return &JSONAdapter[T]{
		store:  store,
		key:    key,
		logger: logutil.NewModuleLogger(logger, "storage"),
	}
}

// Key 完整键名
func (a *JSONAdapter[T]) Key() string { return a.key }

// Get 读取值；不存在、后端错误或无法解码都返回 (零值, false)
func (a *JSONAdapter[T]) Get() (T, bool) {
	var value T

	ctx, cancel := context.WithTimeout(context.Background(), adapterTimeout)
	defer cancel()

	raw, exists, err := a.store.Get(ctx, a.key)
	if err != nil {
		a.logger.Warnf("读取持久化值失败 key=%s: %v", a.key, err)
		return value, false
	}
	if !exists {
		return value, false
	}
	if err := json.Unmarshal(raw, &value); err != nil {
		a.logger.Warnf("持久化值无法解码 key=%s: %v", a.key, err)
		return value, false
	}
	return value, true
}

// Set 写入值
func (a *JSONAdapter[T]) Set(value T) {
	if !a.store.IsAvailable() {
		a.logger.Debugf("存储不可用，跳过写入 key=%s", a.key)
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		a.logger.Warnf("持久化值无法编码 key=%s: %v", a.key, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), adapterTimeout)
	defer cancel()

	if err := a.store.Set(ctx, a.key, raw); err != nil {
		a.logger.Warnf("写入持久化值失败 key=%s: %v", a.key, err)
	}
}

// Clear 删除值
func (a *JSONAdapter[T]) Clear() {
	if !a.store.IsAvailable() {
		a.logger.Debugf("存储不可用，跳过清除 key=%s", a.key)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), adapterTimeout)
	defer cancel()

	if err := a.store.Delete(ctx, a.key); err != nil {
		a.logger.Warnf("清除持久化值失败 key=%s: %v", a.key, err)
	}
}

// IsAvailable 后端是否可写
func (a *JSONAdapter[T]) IsAvailable() bool {
	return a.store.IsAvailable()
}

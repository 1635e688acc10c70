// Package storage 提供连接器持久化接口定义
//
// 🧠 **持久化服务 (Persistence Service)**
//
// 连接器只持久化少量逻辑键（上次使用的钱包名、上次连接器记录、当前网络），
// 每个逻辑键同一时刻至多一个有效值：
// - KVStore：字节级键值存储，由 memory / badger / redis 后端实现
// - StorageAdapter[T]：单逻辑键的类型化视图，写入即发即忘
// - AvailabilityChecker / Clearer：可选能力，未实现视为总是可用 / 不支持清除
package storage

import (
	"context"
	"errors"
)

// ErrUnavailable 存储在当前环境被禁用（例如隐私模式）
var ErrUnavailable = errors.New("storage: unavailable")

// KVStore 字节级键值存储
type KVStore interface {
	// Get 获取值，返回值、是否存在及可能的错误
	Get(ctx context.Context, key string) (value []byte, exists bool, err error)

	// Set 写入值
	Set(ctx context.Context, key string, value []byte) error

	// Delete 删除键，键不存在不视为错误
	Delete(ctx context.Context, key string) error

	// IsAvailable 当前后端是否可写
	IsAvailable() bool

	// Close 释放后端资源
	Close() error
}

// StorageAdapter 单逻辑键的类型化存储
type StorageAdapter[T any] interface {
	// Get 读取当前值，不存在返回 (零值, false)
	Get() (T, bool)

	// Set 写入新值
	Set(value T)
}

// Clearer 可选：清除值
type Clearer interface {
	Clear()
}

// AvailabilityChecker 可选：可用性探测
type AvailabilityChecker interface {
	IsAvailable() bool
}

// IsAvailable 判断适配器是否可用，未实现 AvailabilityChecker 视为可用
func IsAvailable(adapter any) bool {
	if adapter == nil {
		return false
	}
	if c, ok := adapter.(AvailabilityChecker); ok {
		return c.IsAvailable()
	}
	return true
}

// Clear 清除适配器的值；未实现 Clearer 时写入零值
func Clear[T any](adapter StorageAdapter[T]) {
	if adapter == nil {
		return
	}
	if c, ok := adapter.(Clearer); ok {
		c.Clear()
		return
	}
	var zero T
	adapter.Set(zero)
}

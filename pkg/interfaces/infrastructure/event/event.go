// Package event 提供连接器的事件总线接口定义
//
// 🎯 **事件总线系统 (Event Bus System)**
//
// 连接器内部的三个写入方（检测器、连接管理器、网络管理器）通过本接口发布领域事件，
// 应用代码通过 On/Off 读取。实现需保证：
// - 投递顺序与发布顺序一致
// - 单个监听器 panic 不影响其他监听器
// - 监听器内部可以再次发布、订阅或退订而不会死锁
package event

import "github.com/weisyn/connector/pkg/types"

// 兼容别名
type EventType = types.EventType

// Listener 事件监听器
type Listener func(types.Event)

// Emitter 事件发布方
type Emitter interface {
	// Emit 发布事件，时间戳为空时自动填充
	Emit(event types.Event)
}

// EventBus 事件总线接口
type EventBus interface {
	Emitter

	// On 订阅全部事件，返回订阅ID
	On(listener Listener) types.SubscriptionID

	// Off 通过订阅ID取消订阅，未知ID忽略
	Off(id types.SubscriptionID)

	// Flush 阻塞直到所有已发布事件投递完成
	Flush()

	// History 返回最近 n 条事件（n<=0 返回全部保留的历史）
	History(n int) []types.Event

	// Close 停止分发，丢弃未投递事件
	Close()
}

// Package metrics 提供连接器运行指标的上报接口定义
//
// 📋 **指标接口层 (Metrics Interface Layer)**
//
// 接口定义与实现分离：接口在此定义，基于 Prometheus 的实现在
// internal/core/infrastructure/metrics。组件只依赖 Recorder，测试与库模式使用 Nop。
package metrics

// Recorder 连接器指标上报
type Recorder interface {
	// EventEmitted 记录一次事件发布
	EventEmitted(eventType string)

	// ListenerPanicked 记录一次监听器 panic
	ListenerPanicked(source string)

	// ConnectAttempt 记录一次连接尝试结果（outcome: success / failed / cancelled / busy）
	ConnectAttempt(wallet string, silent bool, outcome string)

	// AutoConnect 记录自动重连策略结果
	AutoConnect(strategy string, success bool)

	// WalletsDetected 记录当前发现的钱包数量
	WalletsDetected(count int)
}

// Nop 不做任何事的 Recorder
type Nop struct{}

func (Nop) EventEmitted(string)                 {}
func (Nop) ListenerPanicked(string)             {}
func (Nop) ConnectAttempt(string, bool, string) {}
func (Nop) AutoConnect(string, bool)            {}
func (Nop) WalletsDetected(int)                 {}

// OrNop 空 Recorder 回退为 Nop
func OrNop(r Recorder) Recorder {
	if r == nil {
		return Nop{}
	}
	return r
}

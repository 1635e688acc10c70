package state

import (
	"sync"
	"time"
)

// Scheduler 通知合并策略
//
// 同一时刻至多一个待执行的 flush；Schedule 取消旧的并重新排期。
type Scheduler interface {
	// Schedule 取消待执行的 flush 并重新排期
	Schedule(flush func())
	// Cancel 取消待执行的 flush，返回是否确有待执行项
	Cancel() bool
	// Pending 是否有待执行的 flush
	Pending() bool
}

// FrameScheduler 按固定延迟（约一帧）合并通知
type FrameScheduler struct {
	mu         sync.Mutex
	delay      time.Duration
	timer      *time.Timer
	generation uint64
}

// NewFrameScheduler 创建帧调度器，delay<=0 时使用16ms
func NewFrameScheduler(delay time.Duration) *FrameScheduler {
	if delay <= 0 {
		delay = 16 * time.Millisecond
	}
	return &FrameScheduler{delay: delay}
}

// Schedule 取消并重新排期
func (f *FrameScheduler) Schedule(flush func()) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.generation++
	gen := f.generation
	if f.timer != nil {
		f.timer.Stop()
	}
	f.timer = time.AfterFunc(f.delay, func() {
		f.mu.Lock()
		// 计时器停止失败时旧回调仍可能触发，以代数过滤
		if gen != f.generation {
			f.mu.Unlock()
			return
		}
		f.timer = nil
		f.mu.Unlock()
		flush()
	})
}

// Cancel 取消待执行的 flush
func (f *FrameScheduler) Cancel() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.generation++
	if f.timer == nil {
		return false
	}
	f.timer.Stop()
	f.timer = nil
	return true
}

// Pending 是否有待执行的 flush
func (f *FrameScheduler) Pending() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.timer != nil
}

// ImmediateScheduler 同步执行，不做合并；用于测试和非 UI 场景
type ImmediateScheduler struct{}

func (ImmediateScheduler) Schedule(flush func()) { flush() }
func (ImmediateScheduler) Cancel() bool          { return false }
func (ImmediateScheduler) Pending() bool         { return false }

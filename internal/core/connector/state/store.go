// Package state 提供连接器的单一状态根存储
//
// 🗂️ **状态存储 (State Store)**
//
// - 每次被接受的更新都生成新的状态对象，旧对象保持不变
// - 未变化的字段沿用旧引用（结构共享），UI 可按引用跳过重绘
// - 通知分两种：合并（Scheduler 排期）与立即（同步，并取消待执行的合并通知）
// - 监听器 panic 被捕获并记录，不影响其他监听器
package state

import (
	"sync"

	logutil "github.com/weisyn/connector/internal/core/infrastructure/log"
	"github.com/weisyn/connector/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/connector/pkg/types"
)

// Listener 状态监听器，收到通知时的最新快照
type Listener func(*types.ConnectorState)

type subscriber struct {
	id       uint64
	listener Listener
}

// Store 状态存储
type Store struct {
	mu        sync.RWMutex
	current   *types.ConnectorState
	listeners []subscriber
	nextID    uint64

	scheduler Scheduler
	logger    log.Logger
}

// New 创建状态存储；scheduler 为 nil 时使用 16ms 帧调度
func New(scheduler Scheduler, logger log.Logger) *Store {
	if scheduler == nil {
		scheduler = NewFrameScheduler(0)
	}
	return &Store{
		current: &types.ConnectorState{
			Wallets:  []types.WalletInfo{},
			Accounts: []types.AccountInfo{},
			Clusters: []types.Cluster{},
		},
		scheduler: scheduler,
		logger:    logutil.NewModuleLogger(logger, "state"),
	}
}

// Snapshot 当前状态；下一次被接受的更新之前返回同一指针
func (s *Store) Snapshot() *types.ConnectorState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// UpdateState 应用部分更新，返回是否有字段变化
//
// 无变化时不生成新状态也不排期通知。immediate 为 true 时取消待执行的
// 合并通知并同步通知监听器。
func (s *Store) UpdateState(patch Patch, immediate bool) bool {
	changed, _ := s.UpdateStateIf(patch, immediate, nil)
	return changed
}

// UpdateStateIf 仅当 guard 返回 true 时应用更新
//
// guard 与比较、替换在同一把锁内执行，调用方可借此把"检查代际再写入"
// 做成原子操作。guard 不得再访问 Store。返回 (是否变化, guard 是否通过)。
func (s *Store) UpdateStateIf(patch Patch, immediate bool, guard func() bool) (changed bool, ok bool) {
	s.mu.Lock()
	if guard != nil && !guard() {
		s.mu.Unlock()
		return false, false
	}
	next, changed := apply(s.current, patch)
	if changed {
		s.current = next
	}
	s.mu.Unlock()

	if !changed {
		return false, true
	}
	if immediate {
		s.scheduler.Cancel()
		s.notify()
	} else {
		s.scheduler.Schedule(s.notify)
	}
	return true, true
}

// Subscribe 订阅状态变化，返回取消函数
func (s *Store) Subscribe(listener Listener) func() {
	if listener == nil {
		return func() {}
	}
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, subscriber{id: id, listener: listener})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, sub := range s.listeners {
				if sub.id == id {
					s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
					break
				}
			}
		})
	}
}

// FlushPending 立即执行待执行的合并通知
func (s *Store) FlushPending() {
	if s.scheduler.Cancel() {
		s.notify()
	}
}

// Close 取消待执行的通知并移除全部监听器
func (s *Store) Close() {
	s.scheduler.Cancel()
	s.mu.Lock()
	s.listeners = nil
	s.mu.Unlock()
}

func (s *Store) notify() {
	s.mu.RLock()
	snapshot := s.current
	listeners := make([]subscriber, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.RUnlock()

	for _, sub := range listeners {
		s.invoke(sub, snapshot)
	}
}

func (s *Store) invoke(sub subscriber, snapshot *types.ConnectorState) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Errorf("状态监听器 panic id=%d: %v", sub.id, r)
		}
	}()
	sub.listener(snapshot)
}

// apply 生成新状态，未变化字段沿用旧引用
func apply(cur *types.ConnectorState, p Patch) (*types.ConnectorState, bool) {
	next := *cur
	changed := false

	if v, ok := p.Wallets.Get(); ok && !walletsEqual(cur.Wallets, v) {
		next.Wallets = v
		changed = true
	}
	if v, ok := p.SelectedWallet.Get(); ok && !sameWallet(cur.SelectedWallet, v) {
		next.SelectedWallet = v
		changed = true
	}
	if v, ok := p.Connected.Get(); ok && cur.Connected != v {
		next.Connected = v
		changed = true
	}
	if v, ok := p.Connecting.Get(); ok && cur.Connecting != v {
		next.Connecting = v
		changed = true
	}
	if v, ok := p.Accounts.Get(); ok && !accountsEqual(cur.Accounts, v) {
		next.Accounts = v
		changed = true
	}
	if v, ok := p.SelectedAccount.Get(); ok && cur.SelectedAccount != v {
		next.SelectedAccount = v
		changed = true
	}
	if v, ok := p.Cluster.Get(); ok && !clusterEqual(cur.Cluster, v) {
		next.Cluster = v
		changed = true
	}
	if v, ok := p.Clusters.Get(); ok && !clustersEqual(cur.Clusters, v) {
		next.Clusters = v
		changed = true
	}

	if !changed {
		return cur, false
	}
	return &next, true
}

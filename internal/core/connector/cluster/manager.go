// Package cluster 提供网络选择与交易跟踪
//
// 与连接管理器同构的小型状态机：可用网络列表与当前网络写入同一个状态根，
// 切换时持久化网络 ID 并发布 cluster:changed。Tracker 按网络记录应用提交的
// 交易签名及其状态，供界面展示。
package cluster

import (
	"strings"
	"sync"

	cerrors "github.com/weisyn/connector/internal/core/connector/errors"
	"github.com/weisyn/connector/internal/core/connector/state"
	logutil "github.com/weisyn/connector/internal/core/infrastructure/log"
	"github.com/weisyn/connector/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/connector/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/connector/pkg/interfaces/infrastructure/storage"
	"github.com/weisyn/connector/pkg/types"
)

// Manager 网络管理器
type Manager struct {
	store     *state.Store
	emitter   event.Emitter
	persisted storage.StorageAdapter[string]
	logger    log.Logger

	mu       sync.Mutex
	clusters []types.Cluster
	current  types.Cluster
}

// New 创建网络管理器
//
// 初始网络依次取持久化的 ID、defaultID、列表第一项；未知 ID 被忽略。
func New(clusters []types.Cluster, defaultID string, store *state.Store, emitter event.Emitter, persisted storage.StorageAdapter[string], logger log.Logger) (*Manager, error) {
	if len(clusters) == 0 {
		return nil, cerrors.New(cerrors.CodeMissingProvider, "no clusters configured")
	}
	m := &Manager{
		store:     store,
		emitter:   emitter,
		persisted: persisted,
		logger:    logutil.NewModuleLogger(logger, "cluster"),
		clusters:  append([]types.Cluster(nil), clusters...),
	}

	m.current = m.clusters[0]
	if c, ok := m.find(defaultID); ok {
		m.current = c
	}
	if persisted != nil {
		if id, ok := persisted.Get(); ok {
			if c, ok := m.find(id); ok {
				m.current = c
			} else {
				m.logger.Warnf("忽略未知的持久化网络 cluster=%s", id)
			}
		}
	}

	current := m.current
	store.UpdateState(state.Patch{
		Clusters: state.Set(append([]types.Cluster(nil), m.clusters...)),
		Cluster:  state.Set(&current),
	}, false)
	return m, nil
}

func (m *Manager) find(id string) (types.Cluster, bool) {
	for _, c := range m.clusters {
		if c.ID == id {
			return c, true
		}
	}
	return types.Cluster{}, false
}

// IDs 全部网络 ID
func (m *Manager) IDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.clusters))
	for _, c := range m.clusters {
		ids = append(ids, c.ID)
	}
	return ids
}

// Current 当前网络
func (m *Manager) Current() types.Cluster {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Clusters 可用网络
func (m *Manager) Clusters() []types.Cluster {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]types.Cluster(nil), m.clusters...)
}

// SetCluster 切换网络；未知 ID 返回列出全部可用 ID 的配置错误
func (m *Manager) SetCluster(id string) error {
	m.mu.Lock()
	next, ok := m.find(id)
	if !ok {
		ids := make([]string, 0, len(m.clusters))
		for _, c := range m.clusters {
			ids = append(ids, c.ID)
		}
		m.mu.Unlock()
		return cerrors.Newf(cerrors.CodeUnknownCluster, "unknown cluster %q, available clusters: %s", id, strings.Join(ids, ", ")).
			WithContext("cluster", id)
	}
	previous := m.current
	if previous.ID == next.ID {
		m.mu.Unlock()
		return nil
	}
	m.current = next
	m.mu.Unlock()

	m.store.UpdateState(state.Patch{Cluster: state.Set(&next)}, true)
	if m.persisted != nil && storage.IsAvailable(m.persisted) {
		m.persisted.Set(next.ID)
	}

	m.logger.Infof("网络已切换 cluster=%s previous=%s", next.ID, previous.ID)
	if m.emitter != nil {
		m.emitter.Emit(types.Event{Type: types.EventClusterChanged, Cluster: next.ID, PreviousCluster: previous.ID})
	}
	return nil
}

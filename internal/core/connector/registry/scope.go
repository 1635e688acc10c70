package registry

import (
	"sync"

	"github.com/weisyn/connector/pkg/wallet"
)

// GlobalScope 宿主全局命名空间（直接探测路径使用）
type GlobalScope interface {
	// Lookup 按键读取全局对象
	Lookup(name string) (*wallet.Object, bool)
	// Keys 全部全局键
	Keys() []string
}

// NoopScope 空命名空间
type NoopScope struct{}

func (NoopScope) Lookup(string) (*wallet.Object, bool) { return nil, false }
func (NoopScope) Keys() []string                       { return nil }

// MapScope 基于映射的命名空间，保持插入顺序
type MapScope struct {
	mu      sync.RWMutex
	objects map[string]*wallet.Object
	order   []string
}

// NewMapScope 创建命名空间
func NewMapScope() *MapScope {
	return &MapScope{objects: make(map[string]*wallet.Object)}
}

// Set 注入全局对象
func (s *MapScope) Set(name string, obj *wallet.Object) *MapScope {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.objects[name]; !exists {
		s.order = append(s.order, name)
	}
	s.objects[name] = obj
	return s
}

// Delete 移除全局对象
func (s *MapScope) Delete(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.objects[name]; !exists {
		return
	}
	delete(s.objects, name)
	for i, k := range s.order {
		if k == name {
			s.order = append(s.order[:i:i], s.order[i+1:]...)
			break
		}
	}
}

// Lookup 按键读取
func (s *MapScope) Lookup(name string) (*wallet.Object, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[name]
	return obj, ok && obj != nil
}

// Keys 全部键（插入顺序）
func (s *MapScope) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, len(s.order))
	copy(keys, s.order)
	return keys
}

// Package registry 提供钱包注册表与宿主全局命名空间的注入抽象
//
// 浏览器环境中二者由宿主提供；非浏览器环境使用 NoopRegistry / NoopScope，
// 测试与演示使用 Registry / MapScope。
package registry

import (
	"sync"

	"github.com/ethereum/go-ethereum/event"

	"github.com/weisyn/connector/pkg/wallet"
)

// EventType 注册表事件类型
type EventType int

const (
	// EventRegister 钱包注册
	EventRegister EventType = iota
	// EventUnregister 钱包注销
	EventUnregister
)

// String 事件名
func (t EventType) String() string {
	switch t {
	case EventRegister:
		return "register"
	case EventUnregister:
		return "unregister"
	default:
		return "unknown"
	}
}

// Event 注册表变更事件
type Event struct {
	Kind    EventType
	Wallets []wallet.Wallet
}

// WalletsRegistry 共享钱包注册表
type WalletsRegistry interface {
	// Get 当前已注册的全部钱包（注册顺序）
	Get() []wallet.Wallet
	// On 订阅注册/注销事件，返回取消函数
	On(kind EventType, callback func(wallets []wallet.Wallet)) (unsubscribe func())
}

// Availability 可选：注册表是否真实存在（非浏览器环境为 false）
type Availability interface {
	Available() bool
}

// IsAvailable 未实现 Availability 的注册表视为可用
func IsAvailable(r WalletsRegistry) bool {
	if r == nil {
		return false
	}
	if a, ok := r.(Availability); ok {
		return a.Available()
	}
	return true
}

// Registry 进程内注册表，事件通过 event.Feed 异步投递
type Registry struct {
	mu      sync.RWMutex
	wallets []wallet.Wallet

	feed  event.Feed
	scope event.SubscriptionScope
}

var _ WalletsRegistry = (*Registry)(nil)

// New 创建注册表
func New() *Registry {
	return &Registry{}
}

// Register 注册钱包，返回注销函数
func (r *Registry) Register(wallets ...wallet.Wallet) (unregister func()) {
	r.mu.Lock()
	r.wallets = append(r.wallets, wallets...)
	r.mu.Unlock()

	r.feed.Send(Event{Kind: EventRegister, Wallets: wallets})

	var once sync.Once
	return func() {
		once.Do(func() { r.unregister(wallets) })
	}
}

func (r *Registry) unregister(wallets []wallet.Wallet) {
	r.mu.Lock()
	kept := r.wallets[:0:0]
	for _, w := range r.wallets {
		if !contains(wallets, w) {
			kept = append(kept, w)
		}
	}
	r.wallets = kept
	r.mu.Unlock()

	r.feed.Send(Event{Kind: EventUnregister, Wallets: wallets})
}

func contains(list []wallet.Wallet, w wallet.Wallet) bool {
	for _, item := range list {
		if item == w {
			return true
		}
	}
	return false
}

// Get 当前已注册的钱包
func (r *Registry) Get() []wallet.Wallet {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]wallet.Wallet, len(r.wallets))
	copy(out, r.wallets)
	return out
}

// On 订阅事件；回调在独立 goroutine 中按事件顺序执行
func (r *Registry) On(kind EventType, callback func(wallets []wallet.Wallet)) func() {
	ch := make(chan Event, 16)
	sub := r.scope.Track(r.feed.Subscribe(ch))

	go func() {
		for {
			select {
			case ev := <-ch:
				if ev.Kind == kind {
					callback(ev.Wallets)
				}
			case <-sub.Err():
				return
			}
		}
	}()

	return sub.Unsubscribe
}

// Available 进程内注册表始终可用
func (r *Registry) Available() bool { return true }

// Close 取消全部订阅
func (r *Registry) Close() {
	r.scope.Close()
}

// NoopRegistry 非浏览器环境的空注册表
type NoopRegistry struct{}

var _ WalletsRegistry = NoopRegistry{}

func (NoopRegistry) Get() []wallet.Wallet                       { return nil }
func (NoopRegistry) On(EventType, func([]wallet.Wallet)) func() { return func() {} }
func (NoopRegistry) Available() bool                            { return false }

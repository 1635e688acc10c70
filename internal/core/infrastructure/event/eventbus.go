// 基于asaskevich/EventBus的连接器事件总线实现
//
// 每个监听器在底层总线上独占一个主题。asaskevich 的 Publish 在持有总线锁期间
// 同步执行处理函数，回调内的 Subscribe/Unsubscribe 会死锁，因此 On/Off 只登记
// 变更，由分发协程在两次 Publish 之间统一提交；事件从无界 FIFO 队列按序取出，
// 再按订阅顺序逐个主题发布。

package event

import (
	"sync"
	"sync/atomic"
	"time"

	evbus "github.com/asaskevich/EventBus"
	"github.com/google/uuid"

	eventconfig "github.com/weisyn/connector/internal/config/event"
	logutil "github.com/weisyn/connector/internal/core/infrastructure/log"
	"github.com/weisyn/connector/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/connector/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/connector/pkg/interfaces/infrastructure/metrics"
	"github.com/weisyn/connector/pkg/types"
)

// topicPrefix 监听器主题前缀
const topicPrefix = "connector:listener:"

// subscription 监听器登记
type subscription struct {
	id       types.SubscriptionID
	topic    string
	listener event.Listener
	handler  func(types.Event)
	active   atomic.Bool
}

// EventBus 连接器事件总线
type EventBus struct {
	bus     evbus.Bus
	config  *eventconfig.Config
	logger  log.Logger
	metrics metrics.Recorder
	now     func() time.Time

	// 监听器（按订阅顺序）
	listenersMu sync.RWMutex
	listeners   []*subscription
	changes     []*subscription // 待提交到底层总线的订阅变更

	// 已在底层总线注册的主题，仅分发协程访问
	attached map[types.SubscriptionID]*subscription

	// 待投递队列
	queueMu sync.Mutex
	cond    *sync.Cond
	queue   []types.Event
	pending int // 队列中 + 正在投递
	closed  bool
	warned  bool

	// 历史记录
	historyMu sync.RWMutex
	history   []types.Event
}

var _ event.EventBus = (*EventBus)(nil)

// New 创建事件总线并启动分发协程
func New(config *eventconfig.Config, logger log.Logger, recorder metrics.Recorder) *EventBus {
	if config == nil {
		config = eventconfig.New(nil)
	}
	eb := &EventBus{
		bus:     evbus.New(),
		config:  config,
		logger:  logutil.NewModuleLogger(logger, "event"),
		metrics: metrics.OrNop(recorder),
		now:     time.Now,

		attached: make(map[types.SubscriptionID]*subscription),
	}
	eb.cond = sync.NewCond(&eb.queueMu)
	go eb.dispatch()
	return eb
}

// Emit 发布事件
func (eb *EventBus) Emit(e types.Event) {
	e = e.Stamp(eb.now())
	eb.metrics.EventEmitted(string(e.Type))
	eb.record(e)

	if !eb.config.IsEnabled() {
		return
	}

	eb.queueMu.Lock()
	defer eb.queueMu.Unlock()
	if eb.closed {
		return
	}
	eb.queue = append(eb.queue, e)
	eb.pending++
	if limit := eb.config.GetQueueWarning(); len(eb.queue) > limit && !eb.warned {
		eb.warned = true
		eb.logger.Warnf("事件队列积压: %d 条待投递", len(eb.queue))
	} else if len(eb.queue) <= eb.config.GetQueueWarning()/2 {
		eb.warned = false
	}
	eb.cond.Broadcast()
}

// On 订阅全部事件
func (eb *EventBus) On(listener event.Listener) types.SubscriptionID {
	if listener == nil {
		return ""
	}
	id := types.SubscriptionID(uuid.NewString())
	sub := &subscription{
		id:       id,
		topic:    topicPrefix + string(id),
		listener: listener,
	}
	sub.handler = func(e types.Event) { eb.invoke(sub, e) }
	sub.active.Store(true)

	eb.listenersMu.Lock()
	eb.listeners = append(eb.listeners, sub)
	eb.changes = append(eb.changes, sub)
	eb.listenersMu.Unlock()
	return sub.id
}

// Off 取消订阅
func (eb *EventBus) Off(id types.SubscriptionID) {
	eb.listenersMu.Lock()
	defer eb.listenersMu.Unlock()
	for i, sub := range eb.listeners {
		if sub.id == id {
			sub.active.Store(false)
			eb.listeners = append(eb.listeners[:i:i], eb.listeners[i+1:]...)
			eb.changes = append(eb.changes, sub)
			return
		}
	}
}

// Flush 阻塞直到已发布事件全部投递
// 不得在监听器内部调用
func (eb *EventBus) Flush() {
	eb.queueMu.Lock()
	defer eb.queueMu.Unlock()
	for eb.pending > 0 && !eb.closed {
		eb.cond.Wait()
	}
}

// History 返回最近 n 条事件
func (eb *EventBus) History(n int) []types.Event {
	eb.historyMu.RLock()
	defer eb.historyMu.RUnlock()
	if n <= 0 || n > len(eb.history) {
		n = len(eb.history)
	}
	out := make([]types.Event, n)
	copy(out, eb.history[len(eb.history)-n:])
	return out
}

// ListenerCount 当前监听器数量
func (eb *EventBus) ListenerCount() int {
	eb.listenersMu.RLock()
	defer eb.listenersMu.RUnlock()
	return len(eb.listeners)
}

// Close 停止分发并丢弃未投递事件，可在监听器内部调用
func (eb *EventBus) Close() {
	eb.queueMu.Lock()
	defer eb.queueMu.Unlock()
	if eb.closed {
		return
	}
	eb.closed = true
	eb.pending -= len(eb.queue)
	eb.queue = nil
	eb.cond.Broadcast()
}

// dispatch 分发协程：按发布顺序逐条投递
// 退出时移除全部底层订阅，此时不处于 Publish 调用中
func (eb *EventBus) dispatch() {
	defer eb.detachAll()
	for {
		eb.queueMu.Lock()
		for len(eb.queue) == 0 && !eb.closed {
			eb.cond.Wait()
		}
		if eb.closed {
			eb.queueMu.Unlock()
			return
		}
		e := eb.queue[0]
		eb.queue[0] = types.Event{}
		eb.queue = eb.queue[1:]
		eb.queueMu.Unlock()

		eb.deliver(e)

		eb.queueMu.Lock()
		if !eb.closed {
			eb.pending--
		}
		eb.cond.Broadcast()
		eb.queueMu.Unlock()
	}
}

// deliver 提交订阅变更后按订阅顺序发布到各监听器主题
func (eb *EventBus) deliver(e types.Event) {
	eb.listenersMu.Lock()
	eb.applyChangesLocked()
	snapshot := make([]*subscription, len(eb.listeners))
	copy(snapshot, eb.listeners)
	eb.listenersMu.Unlock()

	for _, sub := range snapshot {
		// Off 在本轮投递中途生效
		if !sub.active.Load() {
			continue
		}
		eb.bus.Publish(sub.topic, e)
	}
}

// applyChangesLocked 把登记的订阅变更提交到底层总线
// 调用方持有 listenersMu，且不处于 Publish 调用中
func (eb *EventBus) applyChangesLocked() {
	for _, sub := range eb.changes {
		_, attached := eb.attached[sub.id]
		switch {
		case sub.active.Load() && !attached:
			if err := eb.bus.Subscribe(sub.topic, sub.handler); err != nil {
				eb.logger.Errorf("注册监听器失败: subscription=%s err=%v", sub.id, err)
				continue
			}
			eb.attached[sub.id] = sub
		case !sub.active.Load() && attached:
			eb.detach(sub)
		}
	}
	eb.changes = nil
}

// detach 移除单个监听器主题
func (eb *EventBus) detach(sub *subscription) {
	if err := eb.bus.Unsubscribe(sub.topic, sub.handler); err != nil {
		eb.logger.Debugf("取消监听器订阅失败: subscription=%s err=%v", sub.id, err)
	}
	delete(eb.attached, sub.id)
}

func (eb *EventBus) detachAll() {
	eb.listenersMu.Lock()
	defer eb.listenersMu.Unlock()
	eb.changes = nil
	for _, sub := range eb.attached {
		eb.detach(sub)
	}
}

// invoke 调用单个监听器，panic 被隔离
func (eb *EventBus) invoke(sub *subscription, e types.Event) {
	defer func() {
		if r := recover(); r != nil {
			eb.metrics.ListenerPanicked("event")
			eb.logger.Errorf("事件监听器异常: type=%s subscription=%s panic=%v", e.Type, sub.id, r)
		}
	}()
	sub.listener(e)
}

// record 追加历史记录
func (eb *EventBus) record(e types.Event) {
	limit := eb.config.GetHistorySize()
	if limit <= 0 {
		return
	}
	eb.historyMu.Lock()
	defer eb.historyMu.Unlock()
	eb.history = append(eb.history, e)
	if over := len(eb.history) - limit; over > 0 {
		eb.history = append(eb.history[:0:0], eb.history[over:]...)
	}
}

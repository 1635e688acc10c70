package event

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	eventconfig "github.com/weisyn/connector/internal/config/event"
	"github.com/weisyn/connector/pkg/types"
)

type panicCounter struct {
	mu     sync.Mutex
	emits  int
	panics int
}

func (p *panicCounter) EventEmitted(string) {
	p.mu.Lock()
	p.emits++
	p.mu.Unlock()
}
func (p *panicCounter) ListenerPanicked(string) {
	p.mu.Lock()
	p.panics++
	p.mu.Unlock()
}
func (p *panicCounter) ConnectAttempt(string, bool, string) {}
func (p *panicCounter) AutoConnect(string, bool)            {}
func (p *panicCounter) WalletsDetected(int)                 {}

func newTestBus(t *testing.T) *EventBus {
	t.Helper()
	bus := New(eventconfig.New(nil), nil, nil)
	t.Cleanup(bus.Close)
	return bus
}

// TestEmitOrderAndTimestamp 投递顺序与发布顺序一致，时间戳自动填充
func TestEmitOrderAndTimestamp(t *testing.T) {
	bus := newTestBus(t)

	var got []types.Event
	bus.On(func(e types.Event) { got = append(got, e) })

	bus.Emit(types.Event{Type: types.EventConnecting, Wallet: "A"})
	bus.Emit(types.Event{Type: types.EventWalletConnected, Wallet: "A", Account: "addr"})
	bus.Emit(types.Event{Type: types.EventWalletDisconnected, Timestamp: "fixed"})
	bus.Flush()

	require.Len(t, got, 3)
	assert.Equal(t, types.EventConnecting, got[0].Type)
	assert.Equal(t, types.EventWalletConnected, got[1].Type)
	assert.Equal(t, types.EventWalletDisconnected, got[2].Type)

	_, err := time.Parse(time.RFC3339Nano, got[0].Timestamp)
	assert.NoError(t, err)
	assert.Equal(t, "fixed", got[2].Timestamp)
}

// TestListenerPanicIsolated 单个监听器 panic 不影响后续监听器
func TestListenerPanicIsolated(t *testing.T) {
	counter := &panicCounter{}
	bus := New(eventconfig.New(nil), nil, counter)
	t.Cleanup(bus.Close)

	var after int
	bus.On(func(types.Event) { panic("boom") })
	bus.On(func(types.Event) { after++ })

	bus.Emit(types.Event{Type: types.EventError})
	bus.Emit(types.Event{Type: types.EventError})
	bus.Flush()

	assert.Equal(t, 2, after)
	counter.mu.Lock()
	defer counter.mu.Unlock()
	assert.Equal(t, 2, counter.panics)
	assert.Equal(t, 2, counter.emits)
}

// TestReentrantEmitAndOff 监听器内部再次发布与退订不会死锁
func TestReentrantEmitAndOff(t *testing.T) {
	bus := newTestBus(t)

	var seen []types.EventType
	var id types.SubscriptionID
	id = bus.On(func(e types.Event) {
		seen = append(seen, e.Type)
		if e.Type == types.EventConnecting {
			bus.Emit(types.Event{Type: types.EventWalletConnected})
			bus.Off(id)
			bus.On(func(types.Event) {})
		}
	})

	bus.Emit(types.Event{Type: types.EventConnecting})
	bus.Flush()

	assert.Equal(t, []types.EventType{types.EventConnecting}, seen)
	assert.Equal(t, 1, bus.ListenerCount())
}

// TestOffUnknownIgnored 未知订阅ID被忽略
func TestOffUnknownIgnored(t *testing.T) {
	bus := newTestBus(t)
	assert.NotPanics(t, func() { bus.Off("missing") })
	assert.Equal(t, types.SubscriptionID(""), bus.On(nil))
}

// TestHistoryBounded 历史记录按配置截断
func TestHistoryBounded(t *testing.T) {
	size := 2
	bus := New(eventconfig.New(&types.UserEventConfig{HistorySize: &size}), nil, nil)
	t.Cleanup(bus.Close)

	for i := 1; i <= 3; i++ {
		bus.Emit(types.Event{Type: types.EventWalletsDetected, Count: i})
	}

	history := bus.History(0)
	require.Len(t, history, 2)
	assert.Equal(t, 2, history[0].Count)
	assert.Equal(t, 3, history[1].Count)
	assert.Len(t, bus.History(1), 1)
}

// TestDisabledBusRecordsOnly 禁用时不投递但保留历史
func TestDisabledBusRecordsOnly(t *testing.T) {
	enabled := false
	bus := New(eventconfig.New(&types.UserEventConfig{Enabled: &enabled}), nil, nil)
	t.Cleanup(bus.Close)

	delivered := false
	bus.On(func(types.Event) { delivered = true })
	bus.Emit(types.Event{Type: types.EventError})
	bus.Flush()

	assert.False(t, delivered)
	assert.Len(t, bus.History(0), 1)
}

// TestCloseStopsDelivery 关闭后发布被丢弃
func TestCloseStopsDelivery(t *testing.T) {
	bus := New(eventconfig.New(nil), nil, nil)

	var count int
	bus.On(func(types.Event) { count++ })
	bus.Emit(types.Event{Type: types.EventError})
	bus.Flush()
	bus.Close()
	bus.Close()

	bus.Emit(types.Event{Type: types.EventError})
	bus.Flush()
	assert.Equal(t, 1, count)
}

// attachedCount 底层总线上已注册的监听器主题数
func (eb *EventBus) attachedCount() int {
	eb.listenersMu.RLock()
	defer eb.listenersMu.RUnlock()
	n := 0
	for _, sub := range eb.attached {
		if eb.bus.HasCallback(sub.topic) {
			n++
		}
	}
	return n
}

// TestListenersAttachToUnderlyingBus 每个监听器在底层总线独占主题，退订与关闭时移除
func TestListenersAttachToUnderlyingBus(t *testing.T) {
	bus := New(eventconfig.New(nil), nil, nil)

	var order []string
	first := bus.On(func(types.Event) { order = append(order, "first") })
	bus.On(func(types.Event) { order = append(order, "second") })

	bus.Emit(types.Event{Type: types.EventConnecting})
	bus.Flush()
	assert.Equal(t, []string{"first", "second"}, order)
	assert.Equal(t, 2, bus.attachedCount())

	bus.Off(first)
	bus.Emit(types.Event{Type: types.EventWalletConnected})
	bus.Flush()
	assert.Equal(t, []string{"first", "second", "second"}, order)
	assert.Equal(t, 1, bus.attachedCount())

	bus.Close()
	assert.Eventually(t, func() bool { return bus.attachedCount() == 0 }, time.Second, 5*time.Millisecond)
}

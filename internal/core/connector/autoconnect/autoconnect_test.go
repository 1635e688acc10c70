package autoconnect

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/connector/internal/core/connector/connection"
	"github.com/weisyn/connector/internal/core/connector/detector"
	"github.com/weisyn/connector/internal/core/connector/registry"
	"github.com/weisyn/connector/internal/core/connector/state"
	"github.com/weisyn/connector/internal/core/simwallet"
	"github.com/weisyn/connector/pkg/types"
	"github.com/weisyn/connector/pkg/wallet"
)

// memAdapter 内存中的单键存储
type memAdapter[T any] struct {
	mu    sync.Mutex
	value T
	set   bool
}

func (a *memAdapter[T]) Get() (T, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.value, a.set
}

func (a *memAdapter[T]) Set(v T) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.value, a.set = v, true
}

func (a *memAdapter[T]) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	var zero T
	a.value, a.set = zero, false
}

type fixture struct {
	store     *state.Store
	registry  *registry.Registry
	scope     *registry.MapScope
	detector  *detector.Detector
	manager   *connection.Manager
	name      *memAdapter[string]
	connector *memAdapter[types.StoredConnector]
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:     state.New(state.ImmediateScheduler{}, nil),
		registry:  registry.New(),
		scope:     registry.NewMapScope(),
		name:      &memAdapter[string]{},
		connector: &memAdapter[types.StoredConnector]{},
	}
	f.detector = detector.New(detector.Config{}, f.store, nil, f.registry, f.scope, nil, nil, nil)
	f.detector.Initialize()
	f.manager = connection.New(connection.Config{}, f.store, nil,
		connection.Persistence{WalletName: f.name, LastConnector: f.connector}, nil, nil)
	t.Cleanup(func() {
		f.manager.Close()
		f.detector.Destroy()
		f.registry.Close()
	})
	return f
}

func (f *fixture) autoConnector(cfg Config) *AutoConnector {
	cfg.Enabled = true
	return New(cfg, f.manager, f.detector, func() bool { return f.store.Snapshot().Connected },
		Persistence{WalletName: f.name, LastConnector: f.connector}, nil, nil)
}

func (f *fixture) remember(name string) {
	f.name.Set(name)
	f.connector.Set(types.StoredConnector{ID: connection.ConnectorIDPrefix + name, AutoConnect: true})
}

// register 注册钱包并等待发现完成
func (f *fixture) register(t *testing.T, w wallet.Wallet) {
	t.Helper()
	f.registry.Register(w)
	require.Eventually(t, func() bool {
		_, ok := f.detector.Find(w.Name())
		return ok
	}, time.Second, time.Millisecond)
}

func TestDisabled(t *testing.T) {
	f := newFixture(t)
	f.remember("Phantom")
	f.register(t, newSim(t, simwallet.Options{Authorized: true}))

	ac := New(Config{Enabled: false}, f.manager, f.detector, nil, Persistence{WalletName: f.name}, nil, nil)
	assert.False(t, ac.AttemptAutoConnect(context.Background()))
	assert.False(t, f.store.Snapshot().Connected)
}

func TestNothingStored(t *testing.T) {
	f := newFixture(t)
	sim := newSim(t, simwallet.Options{Authorized: true})
	f.register(t, sim)

	assert.False(t, f.autoConnector(Config{}).AttemptAutoConnect(context.Background()))
	assert.Equal(t, 0, sim.ConnectCalls())
}

func TestAlreadyConnected(t *testing.T) {
	f := newFixture(t)
	sim := newSim(t, simwallet.Options{})
	f.register(t, sim)
	require.NoError(t, f.manager.Connect(context.Background(), sim, "Phantom"))

	assert.True(t, f.autoConnector(Config{}).AttemptAutoConnect(context.Background()))
	assert.Equal(t, 1, sim.ConnectCalls())
}

func TestSilentReconnect(t *testing.T) {
	f := newFixture(t)
	sim := newSim(t, simwallet.Options{Authorized: true})
	f.register(t, sim)
	f.remember("Phantom")

	assert.True(t, f.autoConnector(Config{}).AttemptAutoConnect(context.Background()))
	assert.Equal(t, 1, sim.ConnectCalls())
	assert.Equal(t, 1, sim.SilentCalls())
	assert.Equal(t, sim.Address(0), f.store.Snapshot().SelectedAccount)
}

func TestSilentFailureNeverPrompts(t *testing.T) {
	f := newFixture(t)
	sim := newSim(t, simwallet.Options{})
	f.register(t, sim)
	f.remember("Phantom")

	assert.False(t, f.autoConnector(Config{}).AttemptAutoConnect(context.Background()))
	assert.Positive(t, sim.ConnectCalls())
	assert.Equal(t, sim.ConnectCalls(), sim.SilentCalls())
	assert.False(t, f.store.Snapshot().Connected)

	// 失败后清除保存的钱包名
	_, ok := f.name.Get()
	assert.False(t, ok)
}

func TestInteractiveFallback(t *testing.T) {
	f := newFixture(t)
	sim := newSim(t, simwallet.Options{})
	f.register(t, sim)
	f.remember("Phantom")

	assert.True(t, f.autoConnector(Config{AllowInteractiveFallback: true}).AttemptAutoConnect(context.Background()))
	assert.Equal(t, 2, sim.ConnectCalls())
	assert.Equal(t, 1, sim.SilentCalls())
}

func TestDirectConnect(t *testing.T) {
	f := newFixture(t)
	sim := newSim(t, simwallet.Options{Authorized: true})
	f.scope.Set("phantom", sim.LegacyObject(simwallet.ShapePublicKeyObject))
	f.name.Set("Phantom")

	assert.True(t, f.autoConnector(Config{}).AttemptAutoConnect(context.Background()))

	snap := f.store.Snapshot()
	assert.True(t, snap.Connected)
	assert.Equal(t, sim.Address(0), snap.SelectedAccount)
	_, isLegacy := snap.SelectedWallet.(*LegacyWallet)
	assert.True(t, isLegacy)

	// 包装后的钱包已发布到发现列表
	info, ok := f.detector.Find("Phantom")
	require.True(t, ok)
	assert.True(t, info.Connectable)
}

func TestStandardFallbackRetry(t *testing.T) {
	f := newFixture(t)
	f.name.Set("Phantom")
	sim := newSim(t, simwallet.Options{Authorized: true})

	time.AfterFunc(10*time.Millisecond, func() { f.registry.Register(sim) })

	assert.True(t, f.autoConnector(Config{RetryDelay: 100 * time.Millisecond}).AttemptAutoConnect(context.Background()))
	assert.True(t, f.store.Snapshot().Connected)
	assert.Equal(t, 1, sim.ConnectCalls())
}

func TestStandardFallbackGivesUp(t *testing.T) {
	f := newFixture(t)
	f.name.Set("Phantom")

	start := time.Now()
	assert.False(t, f.autoConnector(Config{RetryDelay: 20 * time.Millisecond}).AttemptAutoConnect(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)

	_, ok := f.name.Get()
	assert.False(t, ok)
}

func TestCancelledContext(t *testing.T) {
	f := newFixture(t)
	f.name.Set("Phantom")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.False(t, f.autoConnector(Config{RetryDelay: time.Hour}).AttemptAutoConnect(ctx))
}

// fakeDiscovery 可控的发现实现
type fakeDiscovery struct {
	count     atomic.Int32
	refreshes atomic.Int32
	panics    bool
}

func (d *fakeDiscovery) Find(string) (types.WalletInfo, bool) {
	if d.panics {
		panic("boom")
	}
	return types.WalletInfo{}, false
}
func (d *fakeDiscovery) DetectDirectWallet(string) *wallet.Object { return nil }
func (d *fakeDiscovery) Publish(wallet.Wallet)                    {}
func (d *fakeDiscovery) Refresh()                                 { d.refreshes.Add(1) }
func (d *fakeDiscovery) RegistryCount() int                       { return int(d.count.Load()) }

func TestRegistryRecheck(t *testing.T) {
	disc := &fakeDiscovery{}
	disc.count.Store(1)
	ac := New(Config{Enabled: true, RegistryRecheckDelay: 10 * time.Millisecond}, nil, disc, nil, Persistence{}, nil, nil)
	defer ac.Close()

	ac.scheduleRecheck(1)
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int32(0), disc.refreshes.Load())

	disc.count.Store(2)
	ac.scheduleRecheck(1)
	assert.Eventually(t, func() bool { return disc.refreshes.Load() == 1 }, time.Second, time.Millisecond)
}

func TestPanicRecovered(t *testing.T) {
	name := &memAdapter[string]{}
	name.Set("Phantom")
	ac := New(Config{Enabled: true}, nil, &fakeDiscovery{panics: true}, nil, Persistence{WalletName: name}, nil, nil)
	assert.False(t, ac.AttemptAutoConnect(context.Background()))
}

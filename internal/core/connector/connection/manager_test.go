package connection

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cerrors "github.com/weisyn/connector/internal/core/connector/errors"
	"github.com/weisyn/connector/internal/core/connector/state"
	"github.com/weisyn/connector/internal/core/simwallet"
	"github.com/weisyn/connector/pkg/types"
)

const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

type recordingEmitter struct {
	mu     sync.Mutex
	events []types.Event
}

func (r *recordingEmitter) Emit(e types.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingEmitter) kinds() []types.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]types.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

func (r *recordingEmitter) last(t types.EventType) (types.Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].Type == t {
			return r.events[i], true
		}
	}
	return types.Event{}, false
}

// memAdapter 内存中的单键存储
type memAdapter[T any] struct {
	mu        sync.Mutex
	value     T
	set       bool
	available bool
}

func newMemAdapter[T any]() *memAdapter[T] { return &memAdapter[T]{available: true} }

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

func (a *memAdapter[T]) IsAvailable() bool { return a.available }

type fixture struct {
	manager   *Manager
	store     *state.Store
	emitter   *recordingEmitter
	name      *memAdapter[string]
	connector *memAdapter[types.StoredConnector]
}

func newFixture(t *testing.T, cfg Config) *fixture {
	t.Helper()
	f := &fixture{
		store:     state.New(state.ImmediateScheduler{}, nil),
		emitter:   &recordingEmitter{},
		name:      newMemAdapter[string](),
		connector: newMemAdapter[types.StoredConnector](),
	}
	f.manager = New(cfg, f.store, f.emitter, Persistence{WalletName: f.name, LastConnector: f.connector}, nil, nil)
	t.Cleanup(f.manager.Close)
	return f
}

func newSim(t *testing.T, opts simwallet.Options) *simwallet.Wallet {
	t.Helper()
	if opts.Name == "" {
		opts.Name = "Phantom"
	}
	opts.Mnemonic = testMnemonic
	w, err := simwallet.New(opts)
	require.NoError(t, err)
	return w
}

// assertInvariant 连接时选中账户必在账户列表中；断开时两者都为空
func assertInvariant(t *testing.T, s *types.ConnectorState) {
	t.Helper()
	if s.Connected {
		require.NotEmpty(t, s.SelectedAccount)
		assert.True(t, containsAddress(s.Accounts, s.SelectedAccount))
	} else {
		assert.Empty(t, s.SelectedAccount)
		assert.Empty(t, s.Accounts)
	}
}

func TestConnectSingleAccount(t *testing.T) {
	f := newFixture(t, Config{})
	w := newSim(t, simwallet.Options{})

	require.NoError(t, f.manager.Connect(context.Background(), w, "Phantom"))

	snap := f.store.Snapshot()
	assert.True(t, snap.Connected)
	assert.False(t, snap.Connecting)
	assert.Equal(t, w.Address(0), snap.SelectedAccount)
	require.Len(t, snap.Accounts, 1)
	assert.Equal(t, w.Address(0), snap.Accounts[0].Address)
	assert.Same(t, w, snap.SelectedWallet)
	assertInvariant(t, snap)

	assert.Equal(t, []types.EventType{types.EventConnecting, types.EventWalletConnected}, f.emitter.kinds())
	ev, _ := f.emitter.last(types.EventWalletConnected)
	assert.Equal(t, "Phantom", ev.Wallet)
	assert.Equal(t, w.Address(0), ev.Account)

	name, ok := f.name.Get()
	require.True(t, ok)
	assert.Equal(t, "Phantom", name)
	record, ok := f.connector.Get()
	require.True(t, ok)
	assert.Equal(t, types.StoredConnector{ID: "wallet-standard:Phantom", AutoConnect: true}, record)
}

func TestConnectRejected(t *testing.T) {
	f := newFixture(t, Config{})
	w := newSim(t, simwallet.Options{Reject: true})

	err := f.manager.Connect(context.Background(), w, "Phantom")
	require.Error(t, err)
	assert.Equal(t, cerrors.CodeUserRejected, cerrors.CodeOf(err))

	snap := f.store.Snapshot()
	assert.False(t, snap.Connected)
	assert.False(t, snap.Connecting)
	assertInvariant(t, snap)
	assert.Equal(t, []types.EventType{types.EventConnecting, types.EventConnectionFailed, types.EventError}, f.emitter.kinds())
	ev, _ := f.emitter.last(types.EventError)
	assert.Equal(t, "connect", ev.Context)

	_, persisted := f.name.Get()
	assert.False(t, persisted)
}

func TestConnectWithoutConnectFeature(t *testing.T) {
	f := newFixture(t, Config{})
	err := f.manager.Connect(context.Background(), nil, "Ghost")
	assert.Equal(t, cerrors.CodeWalletNotFound, cerrors.CodeOf(err))
	assert.False(t, f.manager.Connecting())
}

func TestDisconnectCancelsPendingConnect(t *testing.T) {
	f := newFixture(t, Config{})
	w := newSim(t, simwallet.Options{Hang: true})

	errCh := make(chan error, 1)
	go func() { errCh <- f.manager.Connect(context.Background(), w, "Phantom") }()
	require.Eventually(t, func() bool { return w.ConnectCalls() == 1 }, time.Second, time.Millisecond)
	assert.True(t, f.store.Snapshot().Connecting)

	require.NoError(t, f.manager.Disconnect(context.Background()))

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, cerrors.ErrConnectionCancelled)
	case <-time.After(time.Second):
		t.Fatal("connect did not return after disconnect")
	}

	snap := f.store.Snapshot()
	assert.False(t, snap.Connected)
	assert.False(t, snap.Connecting)
	assertInvariant(t, snap)
	assert.NotContains(t, f.emitter.kinds(), types.EventConnectionFailed)
	assert.Contains(t, f.emitter.kinds(), types.EventWalletDisconnected)
}

func TestConcurrentConnectRejected(t *testing.T) {
	f := newFixture(t, Config{})
	w := newSim(t, simwallet.Options{Hang: true})

	go func() { _ = f.manager.Connect(context.Background(), w, "Phantom") }()
	require.Eventually(t, f.manager.Connecting, time.Second, time.Millisecond)

	err := f.manager.Connect(context.Background(), newSim(t, simwallet.Options{Name: "Solflare"}), "Solflare")
	assert.ErrorIs(t, err, cerrors.ErrConnectionInProgress)

	require.NoError(t, f.manager.Disconnect(context.Background()))
	assert.Eventually(t, func() bool { return !f.manager.Connecting() }, time.Second, time.Millisecond)
}

func TestDisconnect(t *testing.T) {
	f := newFixture(t, Config{})
	w := newSim(t, simwallet.Options{})
	require.NoError(t, f.manager.Connect(context.Background(), w, "Phantom"))

	require.NoError(t, f.manager.Disconnect(context.Background()))
	assert.Equal(t, 1, w.DisconnectCalls())
	assertInvariant(t, f.store.Snapshot())
	assert.Nil(t, f.store.Snapshot().SelectedWallet)

	_, ok := f.name.Get()
	assert.False(t, ok)
	_, ok = f.connector.Get()
	assert.False(t, ok)
	ev, ok := f.emitter.last(types.EventWalletDisconnected)
	require.True(t, ok)
	assert.Equal(t, "Phantom", ev.Wallet)
}

func TestDisconnectWhenIdleIsQuiet(t *testing.T) {
	f := newFixture(t, Config{})
	require.NoError(t, f.manager.Disconnect(context.Background()))
	assert.Empty(t, f.emitter.kinds())
}

func TestDisconnectErrorSwallowed(t *testing.T) {
	f := newFixture(t, Config{})
	w := newSim(t, simwallet.Options{FailDisconnect: true})
	require.NoError(t, f.manager.Connect(context.Background(), w, "Phantom"))

	assert.NoError(t, f.manager.Disconnect(context.Background()))
	assert.False(t, f.store.Snapshot().Connected)
}

func TestStorageUnavailableSkipsPersistence(t *testing.T) {
	f := newFixture(t, Config{})
	f.name.available = false
	f.connector.available = false

	require.NoError(t, f.manager.Connect(context.Background(), newSim(t, simwallet.Options{}), "Phantom"))
	_, ok := f.name.Get()
	assert.False(t, ok)
	_, ok = f.connector.Get()
	assert.False(t, ok)
}

func TestSelectAccount(t *testing.T) {
	f := newFixture(t, Config{})
	w := newSim(t, simwallet.Options{Accounts: 2})
	ctx := context.Background()

	assert.ErrorIs(t, f.manager.SelectAccount(ctx, w.Address(1)), cerrors.ErrWalletNotConnected)

	require.NoError(t, f.manager.Connect(ctx, w, "Phantom"))
	require.Len(t, f.store.Snapshot().Accounts, 2)

	require.NoError(t, f.manager.SelectAccount(ctx, w.Address(1)))
	assert.Equal(t, w.Address(1), f.store.Snapshot().SelectedAccount)
	ev, ok := f.emitter.last(types.EventAccountChanged)
	require.True(t, ok)
	assert.Equal(t, w.Address(1), ev.Account)

	err := f.manager.SelectAccount(ctx, "not-an-address")
	assert.Equal(t, cerrors.CodeInvalidAddress, cerrors.CodeOf(err))

	// 合法但钱包中不存在的地址
	other := newSim(t, simwallet.Options{Name: "Other", Accounts: 3})
	err = f.manager.SelectAccount(ctx, other.Address(2))
	assert.Equal(t, cerrors.CodeAccountNotAvailable, cerrors.CodeOf(err))
	assertInvariant(t, f.store.Snapshot())
}

func TestSelectAccountRefreshesSilently(t *testing.T) {
	f := newFixture(t, Config{PollMaxAttempts: 0})
	w := newSim(t, simwallet.Options{Accounts: 1, DisableEvents: true})
	ctx := context.Background()
	require.NoError(t, f.manager.Connect(ctx, w, "Phantom"))

	// 扩展内新增账户但没有通知
	require.NoError(t, w.Expose(false, 0, 2))
	require.NoError(t, f.manager.SelectAccount(ctx, w.Address(2)))

	snap := f.store.Snapshot()
	assert.Equal(t, w.Address(2), snap.SelectedAccount)
	assert.Len(t, snap.Accounts, 2)
	assert.Equal(t, 1, w.SilentCalls())
}

func TestAccountChangeEvent(t *testing.T) {
	f := newFixture(t, Config{})
	w := newSim(t, simwallet.Options{Accounts: 2})
	require.NoError(t, f.manager.Connect(context.Background(), w, "Phantom"))
	assert.Equal(t, 1, w.ListenerCount())

	require.NoError(t, w.SwitchAccount(1))
	snap := f.store.Snapshot()
	assert.Equal(t, w.Address(1), snap.SelectedAccount)
	require.Len(t, snap.Accounts, 1)
	ev, ok := f.emitter.last(types.EventAccountChanged)
	require.True(t, ok)
	assert.Equal(t, w.Address(1), ev.Account)

	require.NoError(t, f.manager.Disconnect(context.Background()))
	assert.Equal(t, 0, w.ListenerCount())
}

func TestWalletChangeEvent(t *testing.T) {
	f := newFixture(t, Config{})
	w := newSim(t, simwallet.Options{})
	require.NoError(t, f.manager.Connect(context.Background(), w, "Phantom"))
	before := f.store.Snapshot()

	w.SetChains("solana:devnet")
	ev, ok := f.emitter.last(types.EventWalletChanged)
	require.True(t, ok)
	assert.Equal(t, "Phantom", ev.Wallet)
	assert.Same(t, before, f.store.Snapshot())
}

func TestEmptyAccountsIgnoredByDefault(t *testing.T) {
	f := newFixture(t, Config{})
	w := newSim(t, simwallet.Options{})
	require.NoError(t, f.manager.Connect(context.Background(), w, "Phantom"))

	require.NoError(t, w.Expose(true))
	assert.True(t, f.store.Snapshot().Connected)
	assertInvariant(t, f.store.Snapshot())
}

func TestEmptyAccountsDisconnect(t *testing.T) {
	f := newFixture(t, Config{EmptyAccountsDisconnect: true})
	w := newSim(t, simwallet.Options{})
	require.NoError(t, f.manager.Connect(context.Background(), w, "Phantom"))

	require.NoError(t, w.Expose(true))
	assert.Eventually(t, func() bool { return !f.store.Snapshot().Connected }, time.Second, time.Millisecond)
	_, ok := f.emitter.last(types.EventWalletDisconnected)
	assert.True(t, ok)
}

func TestPollingFallback(t *testing.T) {
	f := newFixture(t, Config{
		PollInterval:    func(int) time.Duration { return 20 * time.Millisecond },
		PollMaxAttempts: 3,
	})
	w := newSim(t, simwallet.Options{Accounts: 2, DisableEvents: true})
	require.NoError(t, f.manager.Connect(context.Background(), w, "Phantom"))
	require.Equal(t, w.Address(0), f.store.Snapshot().SelectedAccount)

	require.NoError(t, w.Expose(false, 1))
	assert.Eventually(t, func() bool {
		return f.store.Snapshot().SelectedAccount == w.Address(1)
	}, time.Second, 2*time.Millisecond)

	// 达到上限后不再轮询
	assert.Eventually(t, func() bool {
		attempts, running := f.manager.Poller()
		return attempts == 3 && !running
	}, time.Second, 2*time.Millisecond)

	before := f.store.Snapshot()
	require.NoError(t, w.Expose(false, 0))
	time.Sleep(80 * time.Millisecond)
	assert.Same(t, before, f.store.Snapshot())
}

func TestReconnectWhileConnectedReplacesSubscription(t *testing.T) {
	f := newFixture(t, Config{})
	first := newSim(t, simwallet.Options{})
	second := newSim(t, simwallet.Options{Name: "Solflare"})
	ctx := context.Background()

	require.NoError(t, f.manager.Connect(ctx, first, "Phantom"))
	require.NoError(t, f.manager.Connect(ctx, second, "Solflare"))
	assert.Equal(t, 0, first.ListenerCount())
	assert.Equal(t, 1, second.ListenerCount())

	w, name := f.manager.Wallet()
	assert.Same(t, second, w)
	assert.Equal(t, "Solflare", name)
}

func TestSlowDisconnectKeepsNewerSession(t *testing.T) {
	f := newFixture(t, Config{DisconnectTimeout: time.Second})
	first := newSim(t, simwallet.Options{DisconnectDelay: 200 * time.Millisecond})
	second := newSim(t, simwallet.Options{Name: "Solflare", Accounts: 2})
	ctx := context.Background()
	require.NoError(t, f.manager.Connect(ctx, first, "Phantom"))

	done := make(chan error, 1)
	go func() { done <- f.manager.Disconnect(ctx) }()
	require.Eventually(t, func() bool { return first.DisconnectCalls() == 1 }, time.Second, time.Millisecond)

	require.NoError(t, f.manager.Connect(ctx, second, "Solflare"))
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("disconnect did not return")
	}

	snap := f.store.Snapshot()
	assert.True(t, snap.Connected)
	assert.Same(t, second, snap.SelectedWallet)
	assertInvariant(t, snap)
	name, ok := f.name.Get()
	require.True(t, ok)
	assert.Equal(t, "Solflare", name)
	assert.NotContains(t, f.emitter.kinds(), types.EventWalletDisconnected)

	// 新会话的账户订阅仍然有效
	require.NoError(t, second.SwitchAccount(1))
	snap = f.store.Snapshot()
	assert.True(t, snap.Connected)
	assert.Equal(t, second.Address(1), snap.SelectedAccount)
	assertInvariant(t, snap)
}

func TestConnectUnknownWalletKeepsSession(t *testing.T) {
	f := newFixture(t, Config{})
	w := newSim(t, simwallet.Options{})
	ctx := context.Background()
	require.NoError(t, f.manager.Connect(ctx, w, "Phantom"))
	before := f.store.Snapshot()

	err := f.manager.Connect(ctx, nil, "Nope")
	assert.Equal(t, cerrors.CodeWalletNotFound, cerrors.CodeOf(err))

	assert.Same(t, before, f.store.Snapshot())
	current, name := f.manager.Wallet()
	assert.Same(t, w, current)
	assert.Equal(t, "Phantom", name)
	assert.Equal(t, 1, w.ListenerCount())
	assert.Equal(t, 0, w.DisconnectCalls())
	persisted, ok := f.name.Get()
	require.True(t, ok)
	assert.Equal(t, "Phantom", persisted)
	ev, ok := f.emitter.last(types.EventConnectionFailed)
	require.True(t, ok)
	assert.Equal(t, "Nope", ev.Wallet)
}

func TestRejectedSwitchEndsPreviousSession(t *testing.T) {
	f := newFixture(t, Config{})
	first := newSim(t, simwallet.Options{})
	second := newSim(t, simwallet.Options{Name: "Solflare", Reject: true})
	ctx := context.Background()
	require.NoError(t, f.manager.Connect(ctx, first, "Phantom"))

	err := f.manager.Connect(ctx, second, "Solflare")
	assert.Equal(t, cerrors.CodeUserRejected, cerrors.CodeOf(err))

	snap := f.store.Snapshot()
	assert.False(t, snap.Connected)
	assert.False(t, snap.Connecting)
	assertInvariant(t, snap)

	current, name := f.manager.Wallet()
	assert.Nil(t, current)
	assert.Empty(t, name)
	assert.Equal(t, 0, first.ListenerCount())
	assert.Equal(t, 1, first.DisconnectCalls())
	_, ok := f.name.Get()
	assert.False(t, ok)
	_, ok = f.connector.Get()
	assert.False(t, ok)
}

func TestSwitchInProgressReportsDisconnected(t *testing.T) {
	f := newFixture(t, Config{})
	first := newSim(t, simwallet.Options{})
	second := newSim(t, simwallet.Options{Name: "Solflare", Hang: true})
	ctx := context.Background()
	require.NoError(t, f.manager.Connect(ctx, first, "Phantom"))

	errCh := make(chan error, 1)
	go func() { errCh <- f.manager.Connect(ctx, second, "Solflare") }()
	require.Eventually(t, func() bool { return second.ConnectCalls() == 1 }, time.Second, time.Millisecond)

	snap := f.store.Snapshot()
	assert.True(t, snap.Connecting)
	assert.False(t, snap.Connected)
	assert.Nil(t, snap.SelectedWallet)
	assertInvariant(t, snap)

	require.NoError(t, f.manager.Disconnect(ctx))
	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, cerrors.ErrConnectionCancelled)
	case <-time.After(time.Second):
		t.Fatal("connect did not return after disconnect")
	}
	assert.Equal(t, 1, first.DisconnectCalls())
}

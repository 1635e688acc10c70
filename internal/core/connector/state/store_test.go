package state

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/connector/pkg/types"
	"github.com/weisyn/connector/pkg/wallet"
)

func newTestWallet(name string) *wallet.Static {
	return wallet.NewStatic(name, "", []string{"solana:mainnet"}, nil)
}

func TestUpdateStateIsIdempotent(t *testing.T) {
	store := New(ImmediateScheduler{}, nil)
	var calls int32
	store.Subscribe(func(*types.ConnectorState) { atomic.AddInt32(&calls, 1) })

	accounts := []types.AccountInfo{{Address: "A"}}
	assert.True(t, store.UpdateState(Patch{Accounts: Set(accounts), Connected: Set(true)}, false))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	// 新切片但地址序列相同
	again := []types.AccountInfo{{Address: "A", Icon: "different"}}
	assert.False(t, store.UpdateState(Patch{Accounts: Set(again), Connected: Set(true)}, false))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestStructuralSharing(t *testing.T) {
	store := New(ImmediateScheduler{}, nil)
	w := newTestWallet("Phantom")

	store.UpdateState(Patch{
		Wallets:  Set([]types.WalletInfo{{Wallet: w, Installed: true, Connectable: true}}),
		Clusters: Set([]types.Cluster{{ID: "solana:mainnet"}}),
	}, true)
	before := store.Snapshot()

	require.True(t, store.UpdateState(Patch{Connecting: Set(true)}, true))
	after := store.Snapshot()

	assert.NotSame(t, before, after)
	assert.Same(t, &before.Wallets[0], &after.Wallets[0])
	assert.Same(t, &before.Clusters[0], &after.Clusters[0])
	assert.False(t, before.Connecting)
	assert.True(t, after.Connecting)
}

func TestSnapshotStableWithoutUpdates(t *testing.T) {
	store := New(ImmediateScheduler{}, nil)
	first := store.Snapshot()
	store.UpdateState(Patch{Connected: Set(false)}, false)
	assert.Same(t, first, store.Snapshot())
}

func TestWalletListEquality(t *testing.T) {
	store := New(ImmediateScheduler{}, nil)
	a := newTestWallet("A")
	b := newTestWallet("B")

	require.True(t, store.UpdateState(Patch{Wallets: Set([]types.WalletInfo{{Wallet: a, Installed: true}})}, false))
	assert.False(t, store.UpdateState(Patch{Wallets: Set([]types.WalletInfo{{Wallet: a, Installed: true}})}, false))
	assert.True(t, store.UpdateState(Patch{Wallets: Set([]types.WalletInfo{{Wallet: a, Installed: true, Connectable: true}})}, false))
	assert.True(t, store.UpdateState(Patch{Wallets: Set([]types.WalletInfo{{Wallet: b, Installed: true, Connectable: true}})}, false))
}

func TestClusterEquality(t *testing.T) {
	store := New(ImmediateScheduler{}, nil)
	require.True(t, store.UpdateState(Patch{Cluster: Set(&types.Cluster{ID: "solana:devnet", Label: "Devnet"})}, false))
	assert.False(t, store.UpdateState(Patch{Cluster: Set(&types.Cluster{ID: "solana:devnet", Label: "Devnet"})}, false))
	assert.True(t, store.UpdateState(Patch{Cluster: Set[*types.Cluster](nil)}, false))
}

func TestDebouncedNotificationsCoalesce(t *testing.T) {
	store := New(NewFrameScheduler(20*time.Millisecond), nil)
	var calls int32
	var last atomic.Value
	store.Subscribe(func(s *types.ConnectorState) {
		atomic.AddInt32(&calls, 1)
		last.Store(s.SelectedAccount)
	})

	for _, addr := range []string{"A", "B", "C"} {
		store.UpdateState(Patch{SelectedAccount: Set(addr)}, false)
	}
	// 快照立即可见
	assert.Equal(t, "C", store.Snapshot().SelectedAccount)

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&calls) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "C", last.Load())

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestImmediateCancelsPendingDebounce(t *testing.T) {
	scheduler := NewFrameScheduler(30 * time.Millisecond)
	store := New(scheduler, nil)
	var calls int32
	store.Subscribe(func(*types.ConnectorState) { atomic.AddInt32(&calls, 1) })

	store.UpdateState(Patch{Connecting: Set(true)}, false)
	assert.True(t, scheduler.Pending())

	store.UpdateState(Patch{Connecting: Set(false), Connected: Set(true)}, true)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.False(t, scheduler.Pending())

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestListenerPanicIsolated(t *testing.T) {
	store := New(ImmediateScheduler{}, nil)
	var called bool
	store.Subscribe(func(*types.ConnectorState) { panic("listener bug") })
	store.Subscribe(func(*types.ConnectorState) { called = true })

	assert.NotPanics(t, func() { store.UpdateState(Patch{Connected: Set(true)}, true) })
	assert.True(t, called)
}

func TestUnsubscribe(t *testing.T) {
	store := New(ImmediateScheduler{}, nil)
	var calls int32
	unsubscribe := store.Subscribe(func(*types.ConnectorState) { atomic.AddInt32(&calls, 1) })

	store.UpdateState(Patch{Connected: Set(true)}, true)
	unsubscribe()
	unsubscribe()
	store.UpdateState(Patch{Connected: Set(false)}, true)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestFlushPending(t *testing.T) {
	store := New(NewFrameScheduler(time.Hour), nil)
	var calls int32
	store.Subscribe(func(*types.ConnectorState) { atomic.AddInt32(&calls, 1) })

	store.UpdateState(Patch{SelectedAccount: Set("A")}, false)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
	store.FlushPending()
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	store.FlushPending()
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestDisconnectedPatch(t *testing.T) {
	store := New(ImmediateScheduler{}, nil)
	store.UpdateState(Patch{
		SelectedWallet:  Set[wallet.Wallet](newTestWallet("A")),
		Connected:       Set(true),
		Accounts:        Set([]types.AccountInfo{{Address: "A"}}),
		SelectedAccount: Set("A"),
	}, true)

	require.True(t, store.UpdateState(Disconnected(), true))
	snap := store.Snapshot()
	assert.Nil(t, snap.SelectedWallet)
	assert.False(t, snap.Connected)
	assert.Empty(t, snap.Accounts)
	assert.Empty(t, snap.SelectedAccount)
}

func TestUpdateStateIfGuard(t *testing.T) {
	store := New(ImmediateScheduler{}, nil)
	var calls int32
	store.Subscribe(func(*types.ConnectorState) { atomic.AddInt32(&calls, 1) })

	changed, ok := store.UpdateStateIf(Patch{Connected: Set(true)}, true, func() bool { return false })
	assert.False(t, changed)
	assert.False(t, ok)
	assert.False(t, store.Snapshot().Connected)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))

	changed, ok = store.UpdateStateIf(Patch{Connected: Set(true)}, true, func() bool { return true })
	assert.True(t, changed)
	assert.True(t, ok)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

// mapWallet 以 map 为底层类型的钱包，动态类型不可比较
type mapWallet map[string]string

func (w mapWallet) Version() string           { return "1.0.0" }
func (w mapWallet) Name() string              { return w["name"] }
func (w mapWallet) Icon() string              { return "" }
func (w mapWallet) Chains() []string          { return []string{"solana:mainnet"} }
func (w mapWallet) Features() wallet.Features { return nil }
func (w mapWallet) Accounts() []wallet.Account {
	return nil
}

// valueWallet 按值持有且含切片字段的钱包
type valueWallet struct {
	name   string
	chains []string
}

func (w valueWallet) Version() string            { return "1.0.0" }
func (w valueWallet) Name() string               { return w.name }
func (w valueWallet) Icon() string               { return "" }
func (w valueWallet) Chains() []string           { return w.chains }
func (w valueWallet) Features() wallet.Features  { return nil }
func (w valueWallet) Accounts() []wallet.Account { return nil }

func TestNonComparableWalletIdentity(t *testing.T) {
	store := New(ImmediateScheduler{}, nil)
	a := mapWallet{"name": "A"}
	b := mapWallet{"name": "A"}

	require.True(t, store.UpdateState(Patch{Wallets: Set([]types.WalletInfo{{Wallet: a, Installed: true}})}, false))
	assert.False(t, store.UpdateState(Patch{Wallets: Set([]types.WalletInfo{{Wallet: a, Installed: true}})}, false))
	assert.True(t, store.UpdateState(Patch{Wallets: Set([]types.WalletInfo{{Wallet: b, Installed: true}})}, false))

	assert.True(t, sameWallet(a, a))
	assert.False(t, sameWallet(a, b))

	v := valueWallet{name: "V", chains: []string{"solana:mainnet"}}
	assert.False(t, sameWallet(v, v))
	assert.True(t, sameWallet(&v, &v))
}

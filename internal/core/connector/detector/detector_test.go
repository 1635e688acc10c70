package detector

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/connector/internal/core/connector/registry"
	"github.com/weisyn/connector/internal/core/connector/state"
	"github.com/weisyn/connector/internal/core/simwallet"
	"github.com/weisyn/connector/pkg/types"
	"github.com/weisyn/connector/pkg/wallet"
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

func (r *recordingEmitter) count(t types.EventType) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Type == t {
			n++
		}
	}
	return n
}

// staticRegistry 不发事件的注册表，用于验证第二轮发现
type staticRegistry struct {
	mu      sync.Mutex
	wallets []wallet.Wallet
}

func (s *staticRegistry) Get() []wallet.Wallet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]wallet.Wallet(nil), s.wallets...)
}

func (s *staticRegistry) add(w wallet.Wallet) {
	s.mu.Lock()
	s.wallets = append(s.wallets, w)
	s.mu.Unlock()
}

func (s *staticRegistry) On(registry.EventType, func([]wallet.Wallet)) func() { return func() {} }
func (s *staticRegistry) Available() bool                                     { return true }

func newSim(t *testing.T, name string) *simwallet.Wallet {
	t.Helper()
	w, err := simwallet.New(simwallet.Options{Name: name, Mnemonic: testMnemonic})
	require.NoError(t, err)
	return w
}

func newDetector(cfg Config, reg registry.WalletsRegistry, scope registry.GlobalScope) (*Detector, *state.Store, *recordingEmitter) {
	store := state.New(state.ImmediateScheduler{}, nil)
	emitter := &recordingEmitter{}
	return New(cfg, store, emitter, reg, scope, nil, nil, nil), store, emitter
}

func TestInitializeDeduplicatesByName(t *testing.T) {
	reg := registry.New()
	defer reg.Close()
	first := newSim(t, "Phantom")
	reg.Register(first, newSim(t, "Phantom"), newSim(t, "Solflare"))

	d, store, emitter := newDetector(Config{}, reg, nil)
	defer d.Destroy()
	d.Initialize()

	wallets := store.Snapshot().Wallets
	require.Len(t, wallets, 2)
	assert.Same(t, first, wallets[0].Wallet)
	assert.True(t, wallets[0].Installed)
	assert.True(t, wallets[0].Connectable)
	assert.Equal(t, 1, emitter.count(types.EventWalletsDetected))

	// 幂等
	d.Initialize()
	assert.Equal(t, 1, emitter.count(types.EventWalletsDetected))
}

func TestInitializeWithoutRegistry(t *testing.T) {
	d, store, emitter := newDetector(Config{}, nil, nil)
	d.Initialize()
	assert.Empty(t, store.Snapshot().Wallets)
	assert.Equal(t, 0, emitter.count(types.EventWalletsDetected))
}

func TestRefreshOnRegister(t *testing.T) {
	reg := registry.New()
	defer reg.Close()
	d, store, emitter := newDetector(Config{}, reg, nil)
	defer d.Destroy()
	d.Initialize()
	assert.Equal(t, 0, emitter.count(types.EventWalletsDetected))

	unregister := reg.Register(newSim(t, "Backpack"))
	assert.Eventually(t, func() bool { return len(store.Snapshot().Wallets) == 1 }, time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool { return emitter.count(types.EventWalletsDetected) == 1 }, time.Second, 5*time.Millisecond)

	unregister()
	assert.Eventually(t, func() bool { return len(store.Snapshot().Wallets) == 0 }, time.Second, 5*time.Millisecond)
	// 数量变为零不发事件
	assert.Equal(t, 1, emitter.count(types.EventWalletsDetected))
}

func TestSameCountDoesNotEmitAgain(t *testing.T) {
	reg := &staticRegistry{}
	reg.add(newSim(t, "Phantom"))
	d, _, emitter := newDetector(Config{}, reg, nil)
	d.Initialize()
	d.Refresh()
	d.Refresh()
	assert.Equal(t, 1, emitter.count(types.EventWalletsDetected))
}

func TestVerificationAndExclusion(t *testing.T) {
	reg := &staticRegistry{}
	reg.add(newSim(t, "Phantom"))
	reg.add(wallet.NewStatic("Impostor", "", []string{"ethereum:1"}, nil))

	d, store, _ := newDetector(Config{}, reg, nil)
	d.Initialize()
	require.Len(t, store.Snapshot().Wallets, 2)

	good, ok := d.Verification("Phantom")
	require.True(t, ok)
	assert.True(t, good.Authentic)
	bad, ok := d.Verification("Impostor")
	require.True(t, ok)
	assert.False(t, bad.Authentic)

	info, ok := d.Find("Impostor")
	require.True(t, ok)
	assert.False(t, info.Connectable)

	strict, strictStore, _ := newDetector(Config{ExcludeUnverified: true}, reg, nil)
	strict.Initialize()
	require.Len(t, strictStore.Snapshot().Wallets, 1)
	assert.Equal(t, "Phantom", strictStore.Snapshot().Wallets[0].Name())
}

func TestSecondPass(t *testing.T) {
	reg := &staticRegistry{}
	reg.add(newSim(t, "Phantom"))
	d, store, _ := newDetector(Config{SecondPassDelay: 20 * time.Millisecond}, reg, nil)
	defer d.Destroy()
	d.Initialize()
	require.Len(t, store.Snapshot().Wallets, 1)

	reg.add(newSim(t, "Solflare"))
	assert.Eventually(t, func() bool { return len(store.Snapshot().Wallets) == 2 }, time.Second, 5*time.Millisecond)
}

func TestSecondPassSkippedWhenConnected(t *testing.T) {
	reg := &staticRegistry{}
	reg.add(newSim(t, "Phantom"))
	d, store, _ := newDetector(Config{SecondPassDelay: 20 * time.Millisecond}, reg, nil)
	defer d.Destroy()
	d.Initialize()
	store.UpdateState(state.Patch{Connected: state.Set(true)}, true)

	reg.add(newSim(t, "Solflare"))
	time.Sleep(60 * time.Millisecond)
	assert.Len(t, store.Snapshot().Wallets, 1)
}

func TestPublishKeepsRegistryPrecedence(t *testing.T) {
	reg := &staticRegistry{}
	standard := newSim(t, "Phantom")
	reg.add(standard)
	d, store, _ := newDetector(Config{}, reg, nil)
	d.Initialize()

	d.Publish(newSim(t, "Phantom"))
	d.Publish(newSim(t, "Glow"))
	wallets := store.Snapshot().Wallets
	require.Len(t, wallets, 2)
	assert.Same(t, standard, wallets[0].Wallet)
	assert.Equal(t, "Glow", wallets[1].Name())
}

func TestDestroyStopsRefresh(t *testing.T) {
	reg := registry.New()
	defer reg.Close()
	d, store, _ := newDetector(Config{}, reg, nil)
	d.Initialize()
	d.Destroy()
	d.Destroy()

	reg.Register(newSim(t, "Phantom"))
	time.Sleep(30 * time.Millisecond)
	assert.Empty(t, store.Snapshot().Wallets)
}

func TestDetectDirectWallet(t *testing.T) {
	sim := newSim(t, "Phantom")
	legacy := sim.LegacyObject(simwallet.ShapePublicKeyObject)

	t.Run("by name", func(t *testing.T) {
		scope := registry.NewMapScope().Set("Phantom", legacy)
		d, _, _ := newDetector(Config{}, nil, scope)
		assert.Same(t, legacy, d.DetectDirectWallet("Phantom"))
	})

	t.Run("legacy solana slot", func(t *testing.T) {
		scope := registry.NewMapScope().Set("solana", legacy)
		d, _, _ := newDetector(Config{}, nil, scope)
		assert.Same(t, legacy, d.DetectDirectWallet("Phantom"))
	})

	t.Run("nested solana object", func(t *testing.T) {
		outer := wallet.NewObject().Set("solana", legacy)
		scope := registry.NewMapScope().Set("phantom", outer)
		d, _, _ := newDetector(Config{}, nil, scope)
		assert.Same(t, legacy, d.DetectDirectWallet("Phantom"))
	})

	t.Run("case insensitive scan", func(t *testing.T) {
		scope := registry.NewMapScope().Set("myPHANTOMProvider", legacy)
		d, _, _ := newDetector(Config{}, nil, scope)
		assert.Same(t, legacy, d.DetectDirectWallet("phantom"))
	})

	t.Run("unrelated global rejected", func(t *testing.T) {
		other := newSim(t, "Solflare").LegacyObject(simwallet.ShapeBareKey)
		scope := registry.NewMapScope().Set("solana", other)
		d, _, _ := newDetector(Config{}, nil, scope)
		assert.Nil(t, d.DetectDirectWallet("Phantom"))
	})

	t.Run("no connect rejected", func(t *testing.T) {
		scope := registry.NewMapScope().Set("Phantom", wallet.NewObject().Set("isPhantom", true))
		d, _, _ := newDetector(Config{}, nil, scope)
		assert.Nil(t, d.DetectDirectWallet("Phantom"))
	})

	t.Run("malicious rejected", func(t *testing.T) {
		evil := newSim(t, "Phantom").LegacyObject(simwallet.ShapeBareKey)
		evil.Set("drainWallet", true)
		scope := registry.NewMapScope().Set("Phantom", evil)
		d, _, _ := newDetector(Config{}, nil, scope)
		assert.Nil(t, d.DetectDirectWallet("Phantom"))
	})

	t.Run("empty name", func(t *testing.T) {
		d, _, _ := newDetector(Config{}, nil, registry.NewMapScope().Set("", legacy))
		assert.Nil(t, d.DetectDirectWallet("  "))
	})
}

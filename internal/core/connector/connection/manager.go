// Package connection 提供钱包连接状态机
//
// 🔌 **连接管理 (Connection Manager)**
//
// 状态机：disconnected → connecting → {connected | disconnected(失败)}，
// connected → {disconnected | connecting(切换钱包)}。同一时刻只允许一个连接尝试；Disconnect 递增
// 连接代际并取消进行中的尝试，每次状态写入前都校验代际，过期的尝试以
// CONNECTION_CANCELLED 结束而不会覆盖断开后的状态。
//
// 钱包的 connect/disconnect 是不透明的第三方调用，可能永不返回，
// 因此总是放在独立 goroutine 中执行并与尝试的 context 竞争。
//
// 账户变化优先订阅 standard:events，不可用时退回按退避表轮询 accounts 字段。
package connection

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	cerrors "github.com/weisyn/connector/internal/core/connector/errors"
	"github.com/weisyn/connector/internal/core/connector/state"
	logutil "github.com/weisyn/connector/internal/core/infrastructure/log"
	"github.com/weisyn/connector/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/connector/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/connector/pkg/interfaces/infrastructure/metrics"
	"github.com/weisyn/connector/pkg/interfaces/infrastructure/storage"
	"github.com/weisyn/connector/pkg/types"
	"github.com/weisyn/connector/pkg/utils"
	"github.com/weisyn/connector/pkg/wallet"
)

// ConnectorIDPrefix 持久化连接器记录的 ID 前缀
const ConnectorIDPrefix = "wallet-standard:"

// 连接尝试结果（指标标签）
const (
	outcomeSuccess   = "success"
	outcomeFailed    = "failed"
	outcomeCancelled = "cancelled"
	outcomeBusy      = "busy"
)

// Config 连接参数
type Config struct {
	DisconnectTimeout       time.Duration
	EmptyAccountsDisconnect bool

	// PollInterval 第 attempt 次（从0开始）轮询前的等待
	PollInterval    func(attempt int) time.Duration
	PollMaxAttempts int
}

// Options 单次连接选项
type Options struct {
	// Silent 不弹窗，仅在钱包已有授权会话时成功
	Silent bool
}

// Persistence 连接相关的持久化键
type Persistence struct {
	WalletName    storage.StorageAdapter[string]
	LastConnector storage.StorageAdapter[types.StoredConnector]
}

// Manager 连接管理器
type Manager struct {
	cfg         Config
	store       *state.Store
	emitter     event.Emitter
	persistence Persistence
	logger      log.Logger
	metrics     metrics.Recorder

	generation atomic.Uint64

	mu          sync.Mutex
	attempt     uint64 // 进行中尝试的代际，0 表示没有
	cancel      context.CancelFunc
	wallet      wallet.Wallet
	walletName  string
	unsubscribe func()
	poller      *poller
}

// New 创建连接管理器
func New(cfg Config, store *state.Store, emitter event.Emitter, persistence Persistence, logger log.Logger, recorder metrics.Recorder) *Manager {
	if cfg.PollInterval == nil {
		cfg.PollInterval = func(int) time.Duration { return time.Second }
	}
	if cfg.DisconnectTimeout <= 0 {
		cfg.DisconnectTimeout = 3 * time.Second
	}
	return &Manager{
		cfg:         cfg,
		store:       store,
		emitter:     emitter,
		persistence: persistence,
		logger:      logutil.NewModuleLogger(logger, "connection"),
		metrics:     metrics.OrNop(recorder),
	}
}

// Wallet 当前会话钱包与名称
func (m *Manager) Wallet() (wallet.Wallet, string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.wallet, m.walletName
}

// Connecting 是否有进行中的连接尝试
func (m *Manager) Connecting() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.attempt != 0
}

// Connect 交互式连接（总是允许钱包弹出账户选择）
func (m *Manager) Connect(ctx context.Context, w wallet.Wallet, name string) error {
	return m.ConnectWith(ctx, w, name, Options{})
}

// ConnectWith 按选项连接钱包
//
// 目标钱包不存在或不可连接时直接返回错误，当前会话保持不变。
// 否则新尝试立即结束当前会话：状态进入 connecting（已断开），
// 切换到其他钱包时尽力调用旧钱包的 disconnect。
func (m *Manager) ConnectWith(ctx context.Context, w wallet.Wallet, name string, opts Options) error {
	if name == "" && w != nil {
		name = w.Name()
	}

	if w == nil {
		return m.reject(name, opts, cerrors.Newf(cerrors.CodeWalletNotFound, "wallet %q not found", name))
	}
	connect, ok := wallet.GetConnect(w)
	if !ok {
		return m.reject(name, opts, cerrors.Newf(cerrors.CodeWalletNotConnectable, "wallet %q does not expose %s", name, wallet.FeatureConnect))
	}

	m.mu.Lock()
	if m.attempt != 0 {
		m.mu.Unlock()
		m.metrics.ConnectAttempt(name, opts.Silent, outcomeBusy)
		return cerrors.ErrConnectionInProgress
	}
	gen := m.generation.Add(1)
	attemptCtx, cancel := context.WithCancel(ctx)
	m.attempt = gen
	m.cancel = cancel
	// 新尝试开始后旧会话的账户订阅失效
	m.stopWatchLocked()
	old, oldName := m.wallet, m.walletName
	m.wallet = nil
	m.walletName = ""
	m.mu.Unlock()

	defer func() {
		cancel()
		m.mu.Lock()
		if m.attempt == gen {
			m.attempt = 0
			m.cancel = nil
		}
		m.mu.Unlock()
	}()

	previous := m.store.Snapshot()
	seen := addressSet(mergeAccounts(w.Accounts()), previous.Accounts)

	m.logger.Debugf("开始连接 wallet=%s silent=%v", name, opts.Silent)
	m.emit(types.Event{Type: types.EventConnecting, Wallet: name})
	connecting := state.Disconnected()
	connecting.Connecting = state.Set(true)
	m.store.UpdateStateIf(connecting, true, m.current(gen))

	endsSession := old != nil
	if old != nil && oldName != name {
		m.disconnectWallet(attemptCtx, old, oldName)
		if m.generation.Load() != gen {
			return m.cancelled(name, opts)
		}
	}

	out, err := await(attemptCtx, func(ctx context.Context) (wallet.ConnectOutput, error) {
		return connect.Connect(ctx, wallet.ConnectInput{Silent: opts.Silent})
	})
	if m.generation.Load() != gen {
		return m.cancelled(name, opts)
	}
	if err != nil {
		return m.fail(gen, name, opts, err, endsSession)
	}

	accounts := mergeAccounts(out.Accounts, w.Accounts())
	if len(accounts) == 0 {
		return m.fail(gen, name, opts, cerrors.Newf(cerrors.CodeAccountNotAvailable, "wallet %q returned no accounts", name), endsSession)
	}
	selected := selectAccount(accounts, seen, previous.SelectedAccount)

	_, ok = m.store.UpdateStateIf(state.Patch{
		SelectedWallet:  state.Set(w),
		Connected:       state.Set(true),
		Connecting:      state.Set(false),
		Accounts:        state.Set(accounts),
		SelectedAccount: state.Set(selected),
	}, true, m.current(gen))
	if !ok {
		return m.cancelled(name, opts)
	}

	m.mu.Lock()
	m.wallet = w
	m.walletName = name
	m.mu.Unlock()

	m.persist(name)
	m.watch(gen, w)

	m.logger.Infof("钱包已连接 wallet=%s account=%s", name, selected)
	m.metrics.ConnectAttempt(name, opts.Silent, outcomeSuccess)
	m.emit(types.Event{Type: types.EventWalletConnected, Wallet: name, Account: selected})
	return nil
}

// Disconnect 断开当前会话
//
// 取消进行中的连接尝试，尽力调用钱包的 disconnect（错误忽略，等待受
// DisconnectTimeout 限制），重置状态并清除持久化的钱包名。
// 只有原本处于连接或连接中时才发布 wallet:disconnected。
// 等待钱包期间若已开始新的连接，新会话保持不变。
func (m *Manager) Disconnect(ctx context.Context) error {
	m.mu.Lock()
	gen := m.generation.Add(1)
	wasConnecting := m.attempt != 0
	if m.cancel != nil {
		m.cancel()
	}
	m.attempt = 0
	m.cancel = nil
	w, name := m.wallet, m.walletName
	m.wallet = nil
	m.walletName = ""
	m.stopWatchLocked()
	m.mu.Unlock()

	snapshot := m.store.Snapshot()
	active := w != nil || wasConnecting || snapshot.Connected || snapshot.Connecting

	if w != nil {
		m.disconnectWallet(ctx, w, name)
	}

	if _, ok := m.store.UpdateStateIf(state.Disconnected(), true, m.current(gen)); !ok {
		m.logger.Debugf("断开期间已开始新的连接，保留新会话 wallet=%s", name)
		return nil
	}
	m.clearPersisted()

	if active {
		m.logger.Infof("钱包已断开 wallet=%s", name)
		m.emit(types.Event{Type: types.EventWalletDisconnected, Wallet: name})
	}
	return nil
}

// disconnectWallet 尽力调用钱包的 disconnect，等待受 DisconnectTimeout 限制
func (m *Manager) disconnectWallet(ctx context.Context, w wallet.Wallet, name string) {
	disconnect, ok := wallet.GetDisconnect(w)
	if !ok {
		return
	}
	dctx, cancel := context.WithTimeout(ctx, m.cfg.DisconnectTimeout)
	defer cancel()
	_, err := await(dctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, disconnect.Disconnect(ctx)
	})
	if err != nil {
		m.logger.Warnf("钱包断开失败（已忽略） wallet=%s: %v", name, err)
	}
}

// SelectAccount 切换当前账户
//
// 地址不在已知账户中时尝试一次静默重连刷新账户列表。
func (m *Manager) SelectAccount(ctx context.Context, address string) error {
	m.mu.Lock()
	w, name := m.wallet, m.walletName
	m.mu.Unlock()
	gen := m.generation.Load()

	snapshot := m.store.Snapshot()
	if w == nil || !snapshot.Connected {
		return cerrors.ErrWalletNotConnected
	}
	if !utils.IsPlausibleAddress(address) {
		return cerrors.Newf(cerrors.CodeInvalidAddress, "invalid address %q", address)
	}

	accounts := snapshot.Accounts
	if !containsAddress(accounts, address) {
		refreshed, err := m.refreshAccounts(ctx, w)
		if err != nil {
			m.logger.Debugf("静默刷新账户失败 wallet=%s: %v", name, err)
		}
		if !containsAddress(refreshed, address) {
			return cerrors.Newf(cerrors.CodeAccountNotAvailable, "account %s is not available in wallet %q", address, name)
		}
		accounts = refreshed
	}

	_, ok := m.store.UpdateStateIf(state.Patch{
		Accounts:        state.Set(accounts),
		SelectedAccount: state.Set(address),
	}, true, m.current(gen))
	if !ok {
		return cerrors.ErrWalletNotConnected
	}
	m.emit(types.Event{Type: types.EventAccountChanged, Wallet: name, Account: address})
	return nil
}

// refreshAccounts 静默连接并合并钱包当前账户
func (m *Manager) refreshAccounts(ctx context.Context, w wallet.Wallet) ([]types.AccountInfo, error) {
	connect, ok := wallet.GetConnect(w)
	if !ok {
		return mergeAccounts(w.Accounts()), nil
	}
	out, err := await(ctx, func(ctx context.Context) (wallet.ConnectOutput, error) {
		return connect.Connect(ctx, wallet.ConnectInput{Silent: true})
	})
	if err != nil {
		return mergeAccounts(w.Accounts()), err
	}
	return mergeAccounts(out.Accounts, w.Accounts()), nil
}

// Close 取消进行中的尝试并停止账户订阅，不修改状态
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.generation.Add(1)
	if m.cancel != nil {
		m.cancel()
	}
	m.attempt = 0
	m.cancel = nil
	m.stopWatchLocked()
}

// current 返回检查代际未变化的 guard
func (m *Manager) current(gen uint64) func() bool {
	return func() bool { return m.generation.Load() == gen }
}

func (m *Manager) cancelled(name string, opts Options) error {
	m.logger.Debugf("连接尝试已被取消 wallet=%s", name)
	m.metrics.ConnectAttempt(name, opts.Silent, outcomeCancelled)
	return cerrors.ErrConnectionCancelled
}

// fail 连接失败：发布 connection:failed 与 error，重置为干净的断开状态
//
// endsSession 表示本次尝试替换了已有会话，此时一并清除持久化记录，
// 避免下次启动重连到已结束的会话。
func (m *Manager) fail(gen uint64, name string, opts Options, err error, endsSession bool) error {
	ce := classifyConnect(err, name)

	if _, ok := m.store.UpdateStateIf(state.Disconnected(), true, m.current(gen)); !ok {
		return m.cancelled(name, opts)
	}
	if endsSession {
		m.clearPersisted()
	}

	m.logger.Warnf("钱包连接失败 wallet=%s silent=%v: %v", name, opts.Silent, err)
	m.metrics.ConnectAttempt(name, opts.Silent, outcomeFailed)
	m.emit(types.Event{Type: types.EventConnectionFailed, Wallet: name, Error: ce})
	m.emit(types.Event{Type: types.EventError, Error: ce, Context: "connect"})
	return ce
}

// reject 目标不可连接，不触碰当前会话
func (m *Manager) reject(name string, opts Options, err error) error {
	ce := classifyConnect(err, name)
	m.logger.Warnf("钱包不可连接 wallet=%s: %v", name, err)
	m.metrics.ConnectAttempt(name, opts.Silent, outcomeFailed)
	m.emit(types.Event{Type: types.EventConnectionFailed, Wallet: name, Error: ce})
	m.emit(types.Event{Type: types.EventError, Error: ce, Context: "connect"})
	return ce
}

func classifyConnect(err error, name string) *cerrors.ConnectorError {
	ce := cerrors.Classify(err)
	if ce.Code == cerrors.CodeSigningFailed {
		ce = cerrors.Wrap(err, cerrors.CodeConnectionFailed, err.Error()).WithContext("wallet", name)
	}
	return ce
}

func (m *Manager) persist(name string) {
	if a := m.persistence.WalletName; a != nil && storage.IsAvailable(a) {
		a.Set(name)
	}
	if a := m.persistence.LastConnector; a != nil && storage.IsAvailable(a) {
		a.Set(types.StoredConnector{ID: ConnectorIDPrefix + name, AutoConnect: true})
	}
}

func (m *Manager) clearPersisted() {
	if a := m.persistence.WalletName; a != nil && storage.IsAvailable(a) {
		storage.Clear(a)
	}
	if a := m.persistence.LastConnector; a != nil && storage.IsAvailable(a) {
		storage.Clear(a)
	}
}

// watch 订阅账户变化，不支持事件时退回轮询
func (m *Manager) watch(gen uint64, w wallet.Wallet) {
	onAccounts := func(accounts []wallet.Account) { m.handleAccounts(gen, accounts) }

	if events, ok := wallet.GetEvents(w); ok {
		unsubscribe, err := subscribe(events, func(ev wallet.ChangeEvent) {
			if ev.HasAccounts {
				onAccounts(ev.Accounts)
			}
			if len(ev.Chains) > 0 || len(ev.Features) > 0 {
				m.handleWalletChange(gen)
			}
		})
		if err == nil {
			m.mu.Lock()
			if m.generation.Load() == gen {
				m.unsubscribe = unsubscribe
				m.mu.Unlock()
				return
			}
			m.mu.Unlock()
			unsubscribe()
			return
		}
		m.logger.Debugf("订阅账户事件失败，改用轮询: %v", err)
	}

	if m.cfg.PollMaxAttempts <= 0 {
		return
	}
	p := newPoller(w, m.cfg.PollInterval, m.cfg.PollMaxAttempts, func(accounts []wallet.Account) {
		if !sameAddresses(accounts, m.store.Snapshot().Accounts) {
			onAccounts(accounts)
		}
	})
	m.mu.Lock()
	if m.generation.Load() != gen {
		m.mu.Unlock()
		return
	}
	m.poller = p
	m.mu.Unlock()
	p.start()
}

// subscribe 包装第三方 On 调用，panic 视为订阅失败
func subscribe(events wallet.EventsFeature, listener func(wallet.ChangeEvent)) (unsubscribe func(), err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("events subscription panicked: %v", r)
		}
	}()
	unsubscribe, err = events.On(wallet.EventChange, listener)
	if err == nil && unsubscribe == nil {
		unsubscribe = func() {}
	}
	return unsubscribe, err
}

func (m *Manager) stopWatchLocked() {
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
	if m.poller != nil {
		m.poller.stop()
		m.poller = nil
	}
}

// handleAccounts 钱包上报的账户变化
func (m *Manager) handleAccounts(gen uint64, reported []wallet.Account) {
	if m.generation.Load() != gen {
		return
	}
	m.mu.Lock()
	name := m.walletName
	m.mu.Unlock()

	if len(reported) == 0 {
		if m.cfg.EmptyAccountsDisconnect {
			m.logger.Infof("钱包账户为空，视为断开 wallet=%s", name)
			_ = m.Disconnect(context.Background())
			return
		}
		m.logger.Debugf("钱包账户为空，保持当前状态 wallet=%s", name)
		return
	}

	accounts := mergeAccounts(reported)
	previous := m.store.Snapshot().SelectedAccount
	selected := keepOrFirst(accounts, previous)

	changed, ok := m.store.UpdateStateIf(state.Patch{
		Accounts:        state.Set(accounts),
		SelectedAccount: state.Set(selected),
	}, false, m.current(gen))
	if !ok || !changed {
		return
	}
	if selected != previous {
		m.logger.Debugf("账户变化 wallet=%s account=%s", name, selected)
		m.emit(types.Event{Type: types.EventAccountChanged, Wallet: name, Account: selected})
	}
}

// handleWalletChange 钱包声明的链或能力变化
func (m *Manager) handleWalletChange(gen uint64) {
	if m.generation.Load() != gen {
		return
	}
	m.mu.Lock()
	name := m.walletName
	m.mu.Unlock()
	m.logger.Debugf("钱包能力变化 wallet=%s", name)
	m.emit(types.Event{Type: types.EventWalletChanged, Wallet: name})
}

// Poller 当前轮询器的已执行次数与是否仍在运行（诊断用）
func (m *Manager) Poller() (attempts int, running bool) {
	m.mu.Lock()
	p := m.poller
	m.mu.Unlock()
	if p == nil {
		return 0, false
	}
	select {
	case <-p.Done():
		return p.Attempts(), false
	default:
		return p.Attempts(), true
	}
}

func (m *Manager) emit(e types.Event) {
	if m.emitter != nil {
		m.emitter.Emit(e)
	}
}

// await 在独立 goroutine 中执行钱包调用并与 ctx 竞争；钱包 panic 转为错误
func await[T any](ctx context.Context, fn func(context.Context) (T, error)) (T, error) {
	type result struct {
		value T
		err   error
	}
	ch := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- result{err: fmt.Errorf("wallet call panicked: %v", r)}
			}
		}()
		v, err := fn(ctx)
		ch <- result{value: v, err: err}
	}()

	select {
	case r := <-ch:
		return r.value, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Package connector 装配钱包连接器引擎
//
// 🔌 **连接器引擎 (Connector Engine)**
//
// Engine 把各子模块组装成一个对外整体：
// - 状态存储与事件总线：唯一状态根 + 领域事件流
// - 钱包发现：注册表 + 全局命名空间直接探测，附带真实性评分
// - 连接管理：会话状态机、账户订阅/轮询、持久化
// - 自动重连：启动时按三种策略尽力恢复会话
// - 网络管理与交易跟踪
//
// 构造只做装配，Start 才开始发现与自动重连；Destroy 释放全部订阅与定时器。
package connector

import (
	"context"
	"sync"

	connectorconfig "github.com/weisyn/connector/internal/config/connector"
	eventconfig "github.com/weisyn/connector/internal/config/event"
	"github.com/weisyn/connector/internal/core/connector/authenticity"
	"github.com/weisyn/connector/internal/core/connector/autoconnect"
	"github.com/weisyn/connector/internal/core/connector/cluster"
	"github.com/weisyn/connector/internal/core/connector/connection"
	"github.com/weisyn/connector/internal/core/connector/detector"
	cerrors "github.com/weisyn/connector/internal/core/connector/errors"
	"github.com/weisyn/connector/internal/core/connector/registry"
	"github.com/weisyn/connector/internal/core/connector/state"
	eventbus "github.com/weisyn/connector/internal/core/infrastructure/event"
	logutil "github.com/weisyn/connector/internal/core/infrastructure/log"
	"github.com/weisyn/connector/internal/core/infrastructure/storage"
	connectorIface "github.com/weisyn/connector/pkg/interfaces/connector"
	"github.com/weisyn/connector/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/connector/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/connector/pkg/interfaces/infrastructure/metrics"
	"github.com/weisyn/connector/pkg/types"
	"github.com/weisyn/connector/pkg/wallet"
)

var _ connectorIface.Engine = (*Engine)(nil)

// ErrDestroyed 引擎已销毁
var ErrDestroyed = connectorIface.ErrEngineDestroyed

// Dependencies 引擎依赖；除 Options 外均可为空
type Dependencies struct {
	Options *connectorconfig.ConnectorOptions

	// Keyspace 持久化键空间；Store 为空时使用内存后端
	Keyspace storage.Keyspace
	// EventBus 事件总线；为空时引擎自建并在 Destroy 时关闭
	EventBus event.EventBus
	// Registry 共享钱包注册表；为空时使用空实现
	Registry registry.WalletsRegistry
	// Scope 宿主全局命名空间；为空时使用空实现
	Scope registry.GlobalScope
	// Scheduler 状态通知合并策略；为空时按 NotifyDebounce 建帧调度
	Scheduler state.Scheduler

	Logger  log.Logger
	Metrics metrics.Recorder
}

// Engine 连接器引擎
type Engine struct {
	opts    *connectorconfig.ConnectorOptions
	logger  log.Logger
	metrics metrics.Recorder

	store       *state.Store
	bus         event.EventBus
	scorer      *authenticity.Scorer
	detector    *detector.Detector
	connections *connection.Manager
	auto        *autoconnect.AutoConnector
	clusters    *cluster.Manager
	tracker     *cluster.Tracker

	// 引擎自建、需要在 Destroy 时释放的资源
	closers []func()

	mu        sync.Mutex
	destroyed bool
}

// New 按配置装配引擎
func New(deps Dependencies) (*Engine, error) {
	opts := deps.Options
	if opts == nil {
		opts = connectorconfig.Default()
	}
	logger := logutil.NewModuleLogger(deps.Logger, "connector")
	recorder := metrics.OrNop(deps.Metrics)

	e := &Engine{opts: opts, logger: logger, metrics: recorder}

	keyspace := deps.Keyspace
	if keyspace.Store == nil {
		kv, err := storage.NewKVStore(nil, deps.Logger)
		if err != nil {
			return nil, err
		}
		keyspace = storage.Keyspace{Store: kv, Logger: deps.Logger}
		e.closers = append(e.closers, func() { _ = kv.Close() })
	}

	bus := deps.EventBus
	if bus == nil {
		owned := eventbus.New(eventconfig.New(nil), deps.Logger, recorder)
		bus = owned
		e.closers = append(e.closers, owned.Close)
	}
	e.bus = bus

	scheduler := deps.Scheduler
	if scheduler == nil {
		scheduler = state.NewFrameScheduler(opts.NotifyDebounce)
	}
	e.store = state.New(scheduler, deps.Logger)

	scoring := authenticity.DefaultConfig()
	scoring.Threshold = opts.Authenticity.Threshold
	scoring.MaliciousGate = opts.Authenticity.MaliciousGate
	scoring.ChainFamily = opts.ChainFamily
	e.scorer = authenticity.New(scoring)

	e.detector = detector.New(detector.Config{
		ChainFamily:       opts.ChainFamily,
		SecondPassDelay:   opts.SecondPassDelay,
		ExcludeUnverified: opts.ExcludeUnverified,
	}, e.store, bus, deps.Registry, deps.Scope, e.scorer, deps.Logger, recorder)

	walletName := storage.NewAdapter[string](keyspace, opts.StorageKeys.WalletName)
	lastConnector := storage.NewAdapter[types.StoredConnector](keyspace, opts.StorageKeys.Connector)
	clusterID := storage.NewAdapter[string](keyspace, opts.StorageKeys.Cluster)

	e.connections = connection.New(connection.Config{
		DisconnectTimeout:       opts.DisconnectTimeout,
		EmptyAccountsDisconnect: opts.EmptyAccountsDisconnect,
		PollInterval:            opts.PollInterval,
		PollMaxAttempts:         opts.Polling.MaxAttempts,
	}, e.store, bus, connection.Persistence{
		WalletName:    walletName,
		LastConnector: lastConnector,
	}, deps.Logger, recorder)

	e.auto = autoconnect.New(autoconnect.Config{
		Enabled:                  opts.AutoConnect.Enabled,
		AllowInteractiveFallback: opts.AutoConnect.AllowInteractiveFallback,
		RetryDelay:               opts.AutoConnect.RetryDelay,
		RegistryRecheckDelay:     opts.AutoConnect.RegistryRecheckDelay,
		Debug:                    opts.Debug,
	}, e.connections, e.detector, func() bool {
		return e.store.Snapshot().Connected
	}, autoconnect.Persistence{
		WalletName:    walletName,
		LastConnector: lastConnector,
	}, deps.Logger, recorder)

	clusters := make([]types.Cluster, 0, len(opts.Clusters))
	for _, c := range opts.Clusters {
		clusters = append(clusters, types.Cluster{ID: c.ID, Label: c.Label, Endpoint: c.Endpoint})
	}
	manager, err := cluster.New(clusters, opts.DefaultCluster, e.store, bus, clusterID, deps.Logger)
	if err != nil {
		e.release()
		return nil, err
	}
	e.clusters = manager
	e.tracker = cluster.NewTracker(cluster.DefaultTrackerLimit, bus)

	return e, nil
}

// Start 初始化钱包发现并执行一次自动重连
func (e *Engine) Start(ctx context.Context) bool {
	if e.isDestroyed() {
		return false
	}
	e.detector.Initialize()
	connected := e.auto.AttemptAutoConnect(ctx)
	e.logger.Infof("连接器已启动 wallets=%d connected=%v", len(e.detector.GetDetectedWallets()), connected)
	return connected
}

// Connect 按名称连接已发现的钱包
func (e *Engine) Connect(ctx context.Context, walletName string) error {
	if e.isDestroyed() {
		return ErrDestroyed
	}
	info, _ := e.detector.Find(walletName)
	return e.connections.Connect(ctx, info.Wallet, walletName)
}

// Disconnect 断开当前会话
func (e *Engine) Disconnect(ctx context.Context) error {
	if e.isDestroyed() {
		return ErrDestroyed
	}
	return e.connections.Disconnect(ctx)
}

// SelectAccount 切换当前账户
func (e *Engine) SelectAccount(ctx context.Context, address string) error {
	if e.isDestroyed() {
		return ErrDestroyed
	}
	return e.connections.SelectAccount(ctx, address)
}

// SetCluster 切换网络
func (e *Engine) SetCluster(id string) error {
	if e.isDestroyed() {
		return ErrDestroyed
	}
	return e.clusters.SetCluster(id)
}

// Cluster 当前网络
func (e *Engine) Cluster() types.Cluster { return e.clusters.Current() }

// Snapshot 当前状态根
func (e *Engine) Snapshot() *types.ConnectorState { return e.store.Snapshot() }

// Subscribe 订阅状态通知
func (e *Engine) Subscribe(listener connectorIface.StateListener) func() {
	if listener == nil {
		return func() {}
	}
	return e.store.Subscribe(state.Listener(listener))
}

// On 订阅领域事件
func (e *Engine) On(listener event.Listener) types.SubscriptionID { return e.bus.On(listener) }

// Off 取消事件订阅
func (e *Engine) Off(id types.SubscriptionID) { e.bus.Off(id) }

// Wallets 已发现的钱包
func (e *Engine) Wallets() []types.WalletInfo { return e.detector.GetDetectedWallets() }

// Verify 钱包的真实性评估结果
//
// 优先返回发现时保存的结果；钱包已发现但没有保存结果时现场评估。
func (e *Engine) Verify(name string) (types.WalletVerificationResult, bool) {
	if result, ok := e.detector.Verification(name); ok {
		return result, true
	}
	info, ok := e.detector.Find(name)
	if !ok {
		return types.WalletVerificationResult{}, false
	}
	return e.scorer.VerifyWallet(info.Wallet, name), true
}

// SignMessage 用当前账户对消息签名
func (e *Engine) SignMessage(ctx context.Context, message []byte) ([]byte, error) {
	if e.isDestroyed() {
		return nil, ErrDestroyed
	}
	w, name := e.connections.Wallet()
	snapshot := e.store.Snapshot()
	if w == nil || !snapshot.Connected {
		return nil, cerrors.ErrWalletNotConnected
	}
	signer, ok := wallet.GetSignMessage(w)
	if !ok {
		return nil, cerrors.Newf(cerrors.CodeFeatureUnsupported, "wallet %q does not support %s", name, wallet.FeatureSignMessage)
	}

	account := wallet.Account{Address: snapshot.SelectedAccount}
	for _, a := range snapshot.Accounts {
		if a.Address == snapshot.SelectedAccount {
			account = a.Raw
			account.Address = a.Address
			break
		}
	}
	outputs, err := signer.SignMessage(ctx, wallet.SignMessageInput{Account: account, Message: message})
	if err != nil {
		ce := cerrors.Classify(err)
		e.bus.Emit(types.Event{Type: types.EventError, Error: ce, Context: "signMessage"})
		return nil, ce
	}
	if len(outputs) == 0 || len(outputs[0].Signature) == 0 {
		return nil, cerrors.New(cerrors.CodeSigningFailed, "wallet returned no signature")
	}
	return outputs[0].Signature, nil
}

// TrackTransaction 在当前网络上跟踪交易签名
func (e *Engine) TrackTransaction(signature string) (types.TrackedTransaction, error) {
	return e.tracker.Track(signature, e.clusters.Current().ID)
}

// UpdateTransaction 更新交易状态
func (e *Engine) UpdateTransaction(signature string, status types.TransactionStatus) (types.TrackedTransaction, error) {
	return e.tracker.Update(signature, status)
}

// Transactions 跟踪中的交易
func (e *Engine) Transactions() []types.TrackedTransaction { return e.tracker.List() }

// Flush 投递全部已发布事件并执行待执行的状态通知
func (e *Engine) Flush() {
	e.store.FlushPending()
	e.bus.Flush()
}

// Connections 连接管理器（诊断与测试使用）
func (e *Engine) Connections() *connection.Manager { return e.connections }

// Destroy 释放全部订阅与定时器；不修改持久化的数据
func (e *Engine) Destroy() {
	e.mu.Lock()
	if e.destroyed {
		e.mu.Unlock()
		return
	}
	e.destroyed = true
	e.mu.Unlock()

	e.auto.Close()
	e.detector.Destroy()
	e.connections.Close()
	e.store.Close()
	e.release()
	e.logger.Info("连接器已销毁")
}

func (e *Engine) release() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i]()
	}
	e.closers = nil
}

func (e *Engine) isDestroyed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.destroyed
}

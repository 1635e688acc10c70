// Package autoconnect 提供启动时的自动重连
//
// ♻️ **自动重连 (Auto Connect)**
//
// 按顺序尝试三种策略，任一成功即结束：
// 1. 静默优先：根据上次的连接器记录静默连接，仅在显式允许时升级为交互式连接
// 2. 即时直连：在全局命名空间直接探测上次使用的钱包，包装旧式对象后立即发布并连接
// 3. 标准回退：钱包已在发现列表中则直接连接，否则等待一次后重试
//
// 自动重连是尽力而为的：任何失败都不会返回给调用方，只记录日志与指标。
package autoconnect

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/weisyn/connector/internal/core/connector/connection"
	logutil "github.com/weisyn/connector/internal/core/infrastructure/log"
	"github.com/weisyn/connector/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/connector/pkg/interfaces/infrastructure/metrics"
	"github.com/weisyn/connector/pkg/interfaces/infrastructure/storage"
	"github.com/weisyn/connector/pkg/types"
	"github.com/weisyn/connector/pkg/wallet"
)

// 策略名（日志与指标标签）
const (
	StrategySilent   = "silent"
	StrategyDirect   = "direct"
	StrategyStandard = "standard"
)

// Config 自动重连参数
type Config struct {
	Enabled                  bool
	AllowInteractiveFallback bool
	RetryDelay               time.Duration
	RegistryRecheckDelay     time.Duration
	Debug                    bool
}

// Connections 自动重连使用的连接入口
type Connections interface {
	ConnectWith(ctx context.Context, w wallet.Wallet, name string, opts connection.Options) error
}

// Discovery 自动重连使用的发现能力
type Discovery interface {
	Find(name string) (types.WalletInfo, bool)
	DetectDirectWallet(name string) *wallet.Object
	Publish(w wallet.Wallet)
	Refresh()
	RegistryCount() int
}

// Persistence 自动重连读取的持久化键
type Persistence struct {
	WalletName    storage.StorageAdapter[string]
	LastConnector storage.StorageAdapter[types.StoredConnector]
}

// AutoConnector 自动重连器
type AutoConnector struct {
	cfg         Config
	connections Connections
	discovery   Discovery
	connected   func() bool
	persistence Persistence
	logger      log.Logger
	metrics     metrics.Recorder

	mu      sync.Mutex
	recheck *time.Timer
}

// New 创建自动重连器；connected 报告当前是否已连接
func New(cfg Config, connections Connections, discovery Discovery, connected func() bool, persistence Persistence, logger log.Logger, recorder metrics.Recorder) *AutoConnector {
	if connected == nil {
		connected = func() bool { return false }
	}
	return &AutoConnector{
		cfg:         cfg,
		connections: connections,
		discovery:   discovery,
		connected:   connected,
		persistence: persistence,
		logger:      logutil.NewModuleLogger(logger, "autoconnect"),
		metrics:     metrics.OrNop(recorder),
	}
}

// AttemptAutoConnect 执行自动重连，返回结束时是否已连接
func (a *AutoConnector) AttemptAutoConnect(ctx context.Context) (connected bool) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Errorf("自动重连 panic: %v", r)
			connected = false
		}
	}()

	if !a.cfg.Enabled {
		return false
	}
	if a.connected() {
		return true
	}

	if a.trySilent(ctx) {
		return true
	}
	if ctx.Err() != nil {
		return false
	}

	name, ok := a.storedWalletName()
	if !ok {
		a.debugf("没有保存的钱包名，结束自动重连")
		return false
	}
	if a.tryDirect(ctx, name) {
		return true
	}
	if ctx.Err() != nil {
		return false
	}
	return a.tryStandard(ctx, name)
}

// trySilent 策略一：静默优先
func (a *AutoConnector) trySilent(ctx context.Context) bool {
	record, ok := load(a.persistence.LastConnector)
	if !ok || !record.AutoConnect || !strings.HasPrefix(record.ID, connection.ConnectorIDPrefix) {
		return false
	}
	name := strings.TrimPrefix(record.ID, connection.ConnectorIDPrefix)
	info, ok := a.discovery.Find(name)
	if !ok {
		a.debugf("上次使用的连接器尚未发现 connector=%s", record.ID)
		return false
	}

	err := a.connections.ConnectWith(ctx, info.Wallet, name, connection.Options{Silent: true})
	if err == nil {
		a.succeeded(StrategySilent, name)
		return true
	}
	a.debugf("静默重连失败 wallet=%s: %v", name, err)

	if !a.cfg.AllowInteractiveFallback || ctx.Err() != nil {
		a.metrics.AutoConnect(StrategySilent, false)
		return false
	}
	if err := a.connections.ConnectWith(ctx, info.Wallet, name, connection.Options{}); err != nil {
		a.debugf("交互式重连失败 wallet=%s: %v", name, err)
		a.metrics.AutoConnect(StrategySilent, false)
		return false
	}
	a.succeeded(StrategySilent, name)
	return true
}

// tryDirect 策略二：即时直连
func (a *AutoConnector) tryDirect(ctx context.Context, name string) bool {
	// 注册表已提供该钱包时交给标准回退
	if _, ok := a.discovery.Find(name); ok {
		return false
	}
	obj := a.discovery.DetectDirectWallet(name)
	if obj == nil {
		return false
	}

	legacy := NewLegacyWallet(name, obj)
	a.discovery.Publish(legacy)
	known := a.discovery.RegistryCount()

	err := a.connections.ConnectWith(ctx, legacy, name, connection.Options{Silent: !a.cfg.AllowInteractiveFallback})
	if err != nil {
		a.debugf("直连失败 wallet=%s: %v", name, err)
		a.metrics.AutoConnect(StrategyDirect, false)
		return false
	}
	a.succeeded(StrategyDirect, name)
	a.scheduleRecheck(known)
	return true
}

// scheduleRecheck 稍后复查注册表；报告的钱包变多时完整刷新以获取标准元数据
func (a *AutoConnector) scheduleRecheck(known int) {
	if a.cfg.RegistryRecheckDelay <= 0 {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.recheck != nil {
		a.recheck.Stop()
	}
	a.recheck = time.AfterFunc(a.cfg.RegistryRecheckDelay, func() {
		if count := a.discovery.RegistryCount(); count > known {
			a.logger.Debugf("注册表出现新钱包，刷新发现 before=%d after=%d", known, count)
			a.discovery.Refresh()
		}
	})
}

// tryStandard 策略三：标准回退，钱包未发现时等待一次后重试
func (a *AutoConnector) tryStandard(ctx context.Context, name string) bool {
	info, ok := a.discovery.Find(name)
	if !ok && a.cfg.RetryDelay > 0 {
		a.debugf("钱包尚未发现，%s 后重试 wallet=%s", a.cfg.RetryDelay, name)
		timer := time.NewTimer(a.cfg.RetryDelay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return false
		}
		info, ok = a.discovery.Find(name)
	}
	if !ok {
		a.debugf("钱包未发现，清除保存的钱包名 wallet=%s", name)
		a.forget()
		a.metrics.AutoConnect(StrategyStandard, false)
		return false
	}

	err := a.connections.ConnectWith(ctx, info.Wallet, name, connection.Options{Silent: !a.cfg.AllowInteractiveFallback})
	if err != nil {
		a.debugf("标准回退连接失败 wallet=%s: %v", name, err)
		a.forget()
		a.metrics.AutoConnect(StrategyStandard, false)
		return false
	}
	a.succeeded(StrategyStandard, name)
	return true
}

// Close 停止待执行的注册表复查
func (a *AutoConnector) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.recheck != nil {
		a.recheck.Stop()
		a.recheck = nil
	}
}

func (a *AutoConnector) storedWalletName() (string, bool) {
	name, ok := load(a.persistence.WalletName)
	if ok && name != "" {
		return name, true
	}
	// 只有连接器记录时从记录中取名称
	if record, ok := load(a.persistence.LastConnector); ok && strings.HasPrefix(record.ID, connection.ConnectorIDPrefix) {
		name = strings.TrimPrefix(record.ID, connection.ConnectorIDPrefix)
		return name, name != ""
	}
	return "", false
}

func (a *AutoConnector) forget() {
	if adapter := a.persistence.WalletName; adapter != nil && storage.IsAvailable(adapter) {
		storage.Clear(adapter)
	}
}

func (a *AutoConnector) succeeded(strategy, name string) {
	a.logger.Infof("自动重连成功 strategy=%s wallet=%s", strategy, name)
	a.metrics.AutoConnect(strategy, true)
}

// debugf 调试模式下记录策略失败原因
func (a *AutoConnector) debugf(format string, args ...interface{}) {
	if a.cfg.Debug {
		a.logger.Infof(format, args...)
		return
	}
	a.logger.Debugf(format, args...)
}

// load 读取适配器，nil 视为没有值
func load[T any](adapter storage.StorageAdapter[T]) (T, bool) {
	if adapter == nil {
		var zero T
		return zero, false
	}
	return adapter.Get()
}

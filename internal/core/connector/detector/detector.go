// Package detector 提供钱包发现
//
// 🔎 **钱包发现 (Wallet Detection)**
//
// 两条路径：
// - 注册表发现：读取共享注册表并订阅注册/注销事件，每次变化全量刷新状态中的钱包列表
// - 直接探测：在宿主全局命名空间中按名称查找旧式钱包对象，仅供自动重连快速路径使用
//
// 发现的每个钱包都经过真实性评分；结果按钱包名保存，可选剔除未通过的钱包。
package detector

import (
	"strings"
	"sync"
	"time"

	"github.com/weisyn/connector/internal/core/connector/authenticity"
	"github.com/weisyn/connector/internal/core/connector/registry"
	"github.com/weisyn/connector/internal/core/connector/state"
	logutil "github.com/weisyn/connector/internal/core/infrastructure/log"
	"github.com/weisyn/connector/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/connector/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/connector/pkg/interfaces/infrastructure/metrics"
	"github.com/weisyn/connector/pkg/types"
	"github.com/weisyn/connector/pkg/wallet"
)

// Config 发现参数
type Config struct {
	ChainFamily       string        // 目标链族前缀
	SecondPassDelay   time.Duration // 第二轮发现延迟，<=0 不执行
	ExcludeUnverified bool          // 剔除未通过真实性评估的钱包
}

// Detector 钱包发现器
type Detector struct {
	cfg      Config
	store    *state.Store
	emitter  event.Emitter
	registry registry.WalletsRegistry
	scope    registry.GlobalScope
	scorer   *authenticity.Scorer
	logger   log.Logger
	metrics  metrics.Recorder

	mu            sync.Mutex
	initialized   bool
	destroyed     bool
	unsubscribers []func()
	secondPass    *time.Timer
	lastCount     int
	verifications map[string]types.WalletVerificationResult
	published     []wallet.Wallet

	// 串行化刷新，注册表回调可能并发触发
	refreshMu sync.Mutex
}

// New 创建发现器；registry/scope 为 nil 时使用空实现
func New(
	cfg Config,
	store *state.Store,
	emitter event.Emitter,
	reg registry.WalletsRegistry,
	scope registry.GlobalScope,
	scorer *authenticity.Scorer,
	logger log.Logger,
	recorder metrics.Recorder,
) *Detector {
	if reg == nil {
		reg = registry.NoopRegistry{}
	}
	if scope == nil {
		scope = registry.NoopScope{}
	}
	if scorer == nil {
		scorer = authenticity.New(authenticity.DefaultConfig())
	}
	if cfg.ChainFamily == "" {
		cfg.ChainFamily = wallet.ChainFamily
	}
	return &Detector{
		cfg:           cfg,
		store:         store,
		emitter:       emitter,
		registry:      reg,
		scope:         scope,
		scorer:        scorer,
		logger:        logutil.NewModuleLogger(logger, "detector"),
		metrics:       metrics.OrNop(recorder),
		verifications: make(map[string]types.WalletVerificationResult),
	}
}

// Initialize 读取注册表并订阅变化；幂等，注册表不可用时不做任何事
func (d *Detector) Initialize() {
	d.mu.Lock()
	if d.initialized || d.destroyed {
		d.mu.Unlock()
		return
	}
	if !registry.IsAvailable(d.registry) {
		d.mu.Unlock()
		d.logger.Debug("钱包注册表不可用，跳过发现")
		return
	}
	d.initialized = true

	onChange := func([]wallet.Wallet) { d.Refresh() }
	d.unsubscribers = append(d.unsubscribers,
		d.registry.On(registry.EventRegister, onChange),
		d.registry.On(registry.EventUnregister, onChange),
	)
	if d.cfg.SecondPassDelay > 0 {
		d.secondPass = time.AfterFunc(d.cfg.SecondPassDelay, d.runSecondPass)
	}
	d.mu.Unlock()

	d.Refresh()
}

func (d *Detector) runSecondPass() {
	if d.store.Snapshot().Connected {
		d.logger.Debug("已连接，跳过第二轮发现")
		return
	}
	d.Refresh()
}

// Refresh 重新读取注册表并写入状态
//
// 按名称去重（先到者胜）；数量变化且非零时发布 wallets:detected。
func (d *Detector) Refresh() {
	d.refreshMu.Lock()
	defer d.refreshMu.Unlock()

	d.mu.Lock()
	if d.destroyed {
		d.mu.Unlock()
		return
	}
	published := append([]wallet.Wallet(nil), d.published...)
	d.mu.Unlock()

	candidates := append(d.registry.Get(), published...)
	seen := make(map[string]bool, len(candidates))
	infos := make([]types.WalletInfo, 0, len(candidates))
	verifications := make(map[string]types.WalletVerificationResult, len(candidates))

	for _, w := range candidates {
		if w == nil {
			continue
		}
		name := w.Name()
		if seen[name] {
			continue
		}
		seen[name] = true

		result := d.scorer.VerifyWallet(w, name)
		verifications[name] = result
		if !result.Authentic {
			d.logger.Warnf("钱包未通过真实性评估 wallet=%s confidence=%.2f reason=%s", name, result.Confidence, result.Reason)
			if d.cfg.ExcludeUnverified {
				continue
			}
		}

		infos = append(infos, types.WalletInfo{
			Wallet:      w,
			Installed:   true,
			Connectable: wallet.IsConnectable(w, d.cfg.ChainFamily),
		})
	}

	d.store.UpdateState(state.Patch{Wallets: state.Set(infos)}, false)
	d.metrics.WalletsDetected(len(infos))

	d.mu.Lock()
	d.verifications = verifications
	countChanged := len(infos) != d.lastCount
	d.lastCount = len(infos)
	d.mu.Unlock()

	if countChanged && len(infos) > 0 {
		d.logger.Debugf("发现钱包 count=%d", len(infos))
		if d.emitter != nil {
			d.emitter.Emit(types.Event{Type: types.EventWalletsDetected, Count: len(infos)})
		}
	}
}

// Publish 将注册表之外获得的钱包（如旧式钱包包装）加入列表
//
// 同名钱包出现在注册表中时以注册表为准。
func (d *Detector) Publish(w wallet.Wallet) {
	if w == nil {
		return
	}
	d.mu.Lock()
	for _, existing := range d.published {
		if existing.Name() == w.Name() {
			d.mu.Unlock()
			return
		}
	}
	d.published = append(d.published, w)
	d.mu.Unlock()

	d.Refresh()
}

// GetDetectedWallets 当前发现的钱包
func (d *Detector) GetDetectedWallets() []types.WalletInfo {
	return d.store.Snapshot().Wallets
}

// Find 按名称查找已发现的钱包
func (d *Detector) Find(name string) (types.WalletInfo, bool) {
	for _, info := range d.GetDetectedWallets() {
		if info.Name() == name {
			return info, true
		}
	}
	return types.WalletInfo{}, false
}

// Verification 钱包最近一次真实性评估结果
func (d *Detector) Verification(name string) (types.WalletVerificationResult, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	result, ok := d.verifications[name]
	return result, ok
}

// RegistryCount 注册表当前报告的钱包数量
func (d *Detector) RegistryCount() int {
	return len(d.registry.Get())
}

// Destroy 取消订阅并停止第二轮发现
func (d *Detector) Destroy() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.destroyed {
		return
	}
	d.destroyed = true
	for _, unsubscribe := range d.unsubscribers {
		unsubscribe()
	}
	d.unsubscribers = nil
	if d.secondPass != nil {
		d.secondPass.Stop()
		d.secondPass = nil
	}
}

// DetectDirectWallet 在全局命名空间中直接探测钱包对象
//
// 探测顺序：scope[name]、scope[name+"Wallet"]、scope["solana"]，
// 最后不区分大小写地扫描所有包含名称的键。候选对象（及其 solana 子对象）
// 必须通过名称校验并暴露 connect 能力，且恶意模式子评分高于闸值。
func (d *Detector) DetectDirectWallet(name string) *wallet.Object {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}

	tried := make(map[string]bool)
	for _, key := range []string{name, name + "Wallet", "solana"} {
		tried[key] = true
		if obj := d.probe(key, name); obj != nil {
			return obj
		}
	}

	lower := strings.ToLower(name)
	for _, key := range d.scope.Keys() {
		if tried[key] || !strings.Contains(strings.ToLower(key), lower) {
			continue
		}
		if obj := d.probe(key, name); obj != nil {
			return obj
		}
	}
	return nil
}

func (d *Detector) probe(key, name string) *wallet.Object {
	obj, ok := d.scope.Lookup(key)
	if !ok {
		return nil
	}
	candidates := []*wallet.Object{obj}
	if nested, ok := obj.Object("solana"); ok {
		candidates = append(candidates, nested)
	}
	for _, c := range candidates {
		if d.acceptCandidate(c, name) {
			d.logger.Debugf("直接探测命中 key=%s wallet=%s", key, name)
			return c
		}
	}
	return nil
}

func (d *Detector) acceptCandidate(obj *wallet.Object, name string) bool {
	if !matchesName(obj, name) || !exposesConnect(obj) {
		return false
	}
	result := d.scorer.Verify(obj, name)
	if d.scorer.IsMalicious(result) {
		d.logger.Warnf("拒绝可疑的全局钱包对象 wallet=%s warnings=%v", name, result.Warnings)
		return false
	}
	return true
}

// matchesName 名称字段包含期望名称，或带有 is<Name> / is<Name>Wallet 标志
func matchesName(obj *wallet.Object, name string) bool {
	lower := strings.ToLower(name)
	for _, field := range []string{"name", "walletName", "providerName"} {
		if v, ok := obj.String(field); ok && strings.Contains(strings.ToLower(v), lower) {
			return true
		}
	}
	return authenticity.HasIdentityFlag(obj, name)
}

// exposesConnect 标准 connect 能力或旧式 connect 方法
func exposesConnect(obj *wallet.Object) bool {
	if features, ok := obj.Features(); ok && features.Has(wallet.FeatureConnect) {
		return true
	}
	_, ok := obj.Method("connect")
	return ok
}

package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/weisyn/connector/internal/app"
	"github.com/weisyn/connector/internal/core/connector/registry"
	"github.com/weisyn/connector/internal/core/simwallet"
	connectorIface "github.com/weisyn/connector/pkg/interfaces/connector"
	"github.com/weisyn/connector/pkg/wallet"
)

// simHost 模拟的宿主环境：注册表中的标准钱包 + 全局命名空间中的旧式钱包
type simHost struct {
	registry *registry.Registry
	scope    *registry.MapScope
	wallets  map[string]*simwallet.Wallet
}

// newSimHost 创建模拟钱包
//
// Phantom 支持 change 事件；Solflare 不支持，连接器对其轮询账户；
// Backpack 只以旧式全局对象形态存在，仅能被直接探测发现。
func newSimHost(mnemonic string, withImpostor bool) (*simHost, error) {
	h := &simHost{
		registry: registry.New(),
		scope:    registry.NewMapScope(),
		wallets:  make(map[string]*simwallet.Wallet),
	}

	specs := []simwallet.Options{
		{Name: "Phantom", Accounts: 2},
		{Name: "Solflare", DisableEvents: true},
	}
	for _, opts := range specs {
		opts.Mnemonic = mnemonic
		w, err := simwallet.New(opts)
		if err != nil {
			h.Close()
			return nil, fmt.Errorf("创建模拟钱包 %s 失败: %w", opts.Name, err)
		}
		h.wallets[opts.Name] = w
		h.registry.Register(w)
	}

	backpack, err := simwallet.New(simwallet.Options{Name: "Backpack", Mnemonic: mnemonic, Authorized: true})
	if err != nil {
		h.Close()
		return nil, err
	}
	h.wallets["Backpack"] = backpack
	h.scope.Set("backpack", backpack.LegacyObject(simwallet.ShapePublicKeyObject))

	if withImpostor {
		h.registry.Register(newImpostor())
	}
	return h, nil
}

// Close 释放注册表
func (h *simHost) Close() {
	h.registry.Close()
}

// Options 把模拟环境注入应用
func (h *simHost) Options() []app.Option {
	return []app.Option{
		app.WithWalletRegistry(h.registry),
		app.WithGlobalScope(h.scope),
	}
}

// Wallet 按名称查找模拟钱包
func (h *simHost) Wallet(name string) (*simwallet.Wallet, bool) {
	w, ok := h.wallets[name]
	return w, ok
}

// bootstrap 读取全局标志并启动应用
func bootstrap(host *simHost, extra ...app.Option) (app.App, error) {
	opts := []app.Option{app.WithEnvironment(globalFlags.Environment)}
	if globalFlags.ConfigFile != "" {
		opts = append(opts, app.WithConfigFile(globalFlags.ConfigFile))
	}
	opts = append(opts, host.Options()...)
	opts = append(opts, extra...)
	return app.BootstrapApp(opts...)
}

// waitForWallets 等待后台发现完成
func waitForWallets(ctx context.Context, engine connectorIface.Engine, want int) error {
	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()
	for {
		if len(engine.Wallets()) >= want {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("等待钱包发现超时: 已发现 %d 个", len(engine.Wallets()))
		case <-ticker.C:
		}
	}
}

// impostor 仿冒钱包：名称可疑、缺少断开能力且不支持目标链
type impostor struct {
	*wallet.Static
}

func newImpostor() *impostor {
	i := &impostor{}
	i.Static = wallet.NewStatic("Phantom Wallet Pro", "", []string{"ethereum:1"}, wallet.Features{
		wallet.FeatureConnect: i,
	})
	return i
}

// Connect 总是失败
func (i *impostor) Connect(context.Context, wallet.ConnectInput) (wallet.ConnectOutput, error) {
	return wallet.ConnectOutput{}, errors.New("impostor wallet")
}

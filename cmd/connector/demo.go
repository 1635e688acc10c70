package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/weisyn/connector/internal/app"
	cerrors "github.com/weisyn/connector/internal/core/connector/errors"
	connectorIface "github.com/weisyn/connector/pkg/interfaces/connector"
	"github.com/weisyn/connector/pkg/types"
	"github.com/weisyn/connector/pkg/utils"
)

var demoFlags struct {
	wallet      string
	interactive bool
}

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "使用模拟钱包演示连接流程",
	Long: `在进程内创建模拟钱包并驱动连接器：

  发现钱包 → 真实性评估 → 连接 → 签名 → 扩展内切换账户 → 切换网络 → 断开

终端下默认进入交互菜单；非终端或 --interactive=false 时按脚本顺序执行。
使用持久化配置（dev 环境为 badger）再次运行时，会演示静默自动重连。`,
	RunE: runDemo,
}

func init() {
	demoCmd.Flags().StringVarP(&demoFlags.wallet, "wallet", "w", "Phantom", "脚本模式连接的钱包")
	demoCmd.Flags().BoolVarP(&demoFlags.interactive, "interactive", "i", true, "终端下使用交互菜单")
}

func runDemo(cmd *cobra.Command, _ []string) error {
	host, err := newSimHost(globalFlags.Mnemonic, false)
	if err != nil {
		return err
	}
	defer host.Close()

	pterm.DefaultHeader.WithFullWidth().Println("WES 钱包连接器演示")

	a, err := bootstrap(host, app.WithoutAPI())
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Stop(); err != nil {
			pterm.Warning.Printfln("停止应用失败: %v", err)
		}
	}()
	engine := a.Engine()

	id := engine.On(printEvent)
	defer engine.Off(id)

	ctx, cancel := context.WithTimeout(cmd.Context(), 3*time.Second)
	err = waitForWallets(ctx, engine, 2)
	cancel()
	if err != nil {
		return err
	}

	pterm.DefaultSection.Println("已发现的钱包")
	renderWallets(engine)

	// 后台自动重连可能仍在进行
	time.Sleep(100 * time.Millisecond)
	if snap := engine.Snapshot(); snap.Connected {
		pterm.Success.Printfln("已自动恢复上次会话: %s", snap.SelectedWallet.Name())
	}

	if demoFlags.interactive && term.IsTerminal(int(os.Stdin.Fd())) {
		return interactiveDemo(cmd.Context(), engine, host)
	}
	return scriptedDemo(cmd.Context(), engine, host)
}

// scriptedDemo 非交互脚本
func scriptedDemo(ctx context.Context, engine connectorIface.Engine, host *simHost) error {
	steps := []struct {
		title string
		run   func() error
	}{
		{"连接 " + demoFlags.wallet, func() error { return connectWithSpinner(ctx, engine, demoFlags.wallet) }},
		{"签名消息", func() error { return signMessage(ctx, engine, "Hello from WES connector") }},
		{"在钱包内切换账户", func() error { return switchInWallet(engine, host, 1) }},
		{"切换到 devnet", func() error { return engine.SetCluster("solana:devnet") }},
		{"跟踪交易", func() error { return trackDemoTransaction(engine) }},
	}

	for i, step := range steps {
		pterm.DefaultSection.Printfln("步骤 %d/%d: %s", i+1, len(steps), step.title)
		if err := step.run(); err != nil {
			pterm.Error.Println(cerrors.UserMessage(err))
			if globalFlags.Verbose {
				pterm.Println(pterm.Gray(err.Error()))
			}
			continue
		}
		renderState(engine.Snapshot())
	}

	pterm.Info.Println("保留会话以便下次启动时自动重连；使用交互模式可手动断开")
	return nil
}

// interactiveDemo 交互菜单
func interactiveDemo(ctx context.Context, engine connectorIface.Engine, host *simHost) error {
	const (
		optConnect    = "🔌 连接钱包"
		optAccount    = "👤 切换账户"
		optWalletSide = "🔁 在钱包内切换账户"
		optSign       = "✍️  签名消息"
		optCluster    = "🌐 切换网络"
		optTrack      = "🧾 跟踪交易"
		optState      = "📋 查看状态"
		optDisconnect = "⏏️  断开连接"
		optExit       = "🚪 退出"
	)

	for {
		pterm.Println()
		choice, err := pterm.DefaultInteractiveSelect.
			WithOptions([]string{optConnect, optAccount, optWalletSide, optSign, optCluster, optTrack, optState, optDisconnect, optExit}).
			Show("选择操作")
		if err != nil {
			return err
		}

		switch choice {
		case optConnect:
			names := make([]string, 0)
			for _, info := range engine.Wallets() {
				if info.Connectable {
					names = append(names, info.Name())
				}
			}
			name, err := pterm.DefaultInteractiveSelect.WithOptions(names).Show("选择钱包")
			if err == nil {
				err = connectWithSpinner(ctx, engine, name)
			}
			report(err)
		case optAccount:
			snap := engine.Snapshot()
			if len(snap.Accounts) == 0 {
				pterm.Warning.Println("当前没有可选账户")
				continue
			}
			addresses := make([]string, 0, len(snap.Accounts))
			for _, acc := range snap.Accounts {
				addresses = append(addresses, acc.Address)
			}
			address, err := pterm.DefaultInteractiveSelect.WithOptions(addresses).Show("选择账户")
			if err == nil {
				err = engine.SelectAccount(ctx, address)
			}
			report(err)
		case optWalletSide:
			report(switchInWallet(engine, host, 1))
		case optSign:
			message, err := pterm.DefaultInteractiveTextInput.Show("消息内容")
			if err == nil {
				err = signMessage(ctx, engine, message)
			}
			report(err)
		case optCluster:
			ids := make([]string, 0)
			for _, c := range engine.Snapshot().Clusters {
				ids = append(ids, c.ID)
			}
			id, err := pterm.DefaultInteractiveSelect.WithOptions(ids).Show("选择网络")
			if err == nil {
				err = engine.SetCluster(id)
			}
			report(err)
		case optTrack:
			report(trackDemoTransaction(engine))
		case optState:
			renderState(engine.Snapshot())
		case optDisconnect:
			report(engine.Disconnect(ctx))
		case optExit:
			return nil
		}
	}
}

func report(err error) {
	if err == nil {
		return
	}
	pterm.Error.Println(cerrors.UserMessage(err))
	if globalFlags.Verbose {
		pterm.Println(pterm.Gray(err.Error()))
	}
}

// connectWithSpinner 连接并显示等待钱包确认的进度
func connectWithSpinner(ctx context.Context, engine connectorIface.Engine, name string) error {
	spinner, _ := pterm.DefaultSpinner.Start(fmt.Sprintf("等待 %s 确认连接...", name))
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := engine.Connect(ctx, name); err != nil {
		if spinner != nil {
			spinner.Fail(fmt.Sprintf("连接 %s 失败", name))
		}
		return err
	}
	if spinner != nil {
		spinner.Success(fmt.Sprintf("已连接 %s: %s", name, utils.ShortAddress(engine.Snapshot().SelectedAccount)))
	}
	return nil
}

func signMessage(ctx context.Context, engine connectorIface.Engine, message string) error {
	signature, err := engine.SignMessage(ctx, []byte(message))
	if err != nil {
		return err
	}
	pterm.Success.Printfln("签名: %s", utils.EncodeSignature(signature))
	return nil
}

// switchInWallet 模拟用户在扩展内切换账户，连接器经事件或轮询感知
func switchInWallet(engine connectorIface.Engine, host *simHost, index int) error {
	snap := engine.Snapshot()
	if !snap.Connected || snap.SelectedWallet == nil {
		return cerrors.ErrWalletNotConnected
	}
	sim, ok := host.Wallet(snap.SelectedWallet.Name())
	if !ok {
		return errors.New("当前钱包不是模拟钱包")
	}
	if err := sim.SwitchAccount(index); err != nil {
		return err
	}

	want := sim.Address(index)
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if engine.Snapshot().SelectedAccount == want {
			return nil
		}
		time.Sleep(20 * time.Millisecond)
	}
	pterm.Warning.Println("连接器尚未感知账户变更（钱包不支持事件时依赖轮询）")
	return nil
}

// trackDemoTransaction 跟踪一笔模拟交易并推进到 finalized
func trackDemoTransaction(engine connectorIface.Engine) error {
	signature, err := engine.SignMessage(context.Background(), []byte(fmt.Sprintf("tx-%d", time.Now().UnixNano())))
	if err != nil {
		return err
	}
	sig := utils.EncodeSignature(signature)
	if _, err := engine.TrackTransaction(sig); err != nil {
		return err
	}
	for _, status := range []types.TransactionStatus{types.TransactionConfirmed, types.TransactionFinalized} {
		if _, err := engine.UpdateTransaction(sig, status); err != nil {
			return err
		}
	}
	pterm.Success.Printfln("交易 %s 已确认", utils.ShortAddress(sig))
	return nil
}

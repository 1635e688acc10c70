package main

import (
	"context"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/weisyn/connector/internal/app"
)

var verifyCmd = &cobra.Command{
	Use:   "verify [wallet]",
	Short: "评估已发现钱包的真实性",
	Long: `发现模拟宿主中的钱包（包含一个仿冒钱包），输出五项安全子评分、
置信度与警告。指定钱包名称时只输出该钱包。`,
	Args: cobra.MaximumNArgs(1),
	RunE: runVerify,
}

func runVerify(cmd *cobra.Command, args []string) error {
	host, err := newSimHost(globalFlags.Mnemonic, true)
	if err != nil {
		return err
	}
	defer host.Close()

	a, err := bootstrap(host, app.WithoutAPI())
	if err != nil {
		return err
	}
	defer func() { _ = a.Stop() }()
	engine := a.Engine()

	ctx, cancel := context.WithTimeout(cmd.Context(), 3*time.Second)
	err = waitForWallets(ctx, engine, 3)
	cancel()
	if err != nil {
		return err
	}

	if len(args) == 1 {
		result, ok := engine.Verify(args[0])
		if !ok {
			pterm.Error.Printfln("未发现钱包 %q", args[0])
			return nil
		}
		renderVerification(args[0], result)
		return nil
	}

	for _, info := range engine.Wallets() {
		if result, ok := engine.Verify(info.Name()); ok {
			renderVerification(info.Name(), result)
		}
	}
	return nil
}

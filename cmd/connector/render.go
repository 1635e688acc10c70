package main

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"

	connectorIface "github.com/weisyn/connector/pkg/interfaces/connector"
	"github.com/weisyn/connector/pkg/types"
	"github.com/weisyn/connector/pkg/utils"
)

// renderWallets 输出已发现钱包及其真实性评估
func renderWallets(engine connectorIface.Engine) {
	data := [][]string{{"钱包", "可连接", "真实性", "置信度", "链"}}
	for _, info := range engine.Wallets() {
		name := info.Name()
		authentic, confidence := pterm.Gray("-"), pterm.Gray("-")
		if result, ok := engine.Verify(name); ok {
			authentic = yesNo(result.Authentic)
			confidence = fmt.Sprintf("%.2f", result.Confidence)
		}
		data = append(data, []string{
			name,
			yesNo(info.Connectable),
			authentic,
			confidence,
			strings.Join(info.Wallet.Chains(), ","),
		})
	}
	_ = pterm.DefaultTable.WithHasHeader(true).WithData(data).Render()
}

// renderState 输出当前会话状态
func renderState(state *types.ConnectorState) {
	walletName := pterm.Gray("未连接")
	if state.SelectedWallet != nil {
		walletName = state.SelectedWallet.Name()
	}
	cluster := "-"
	if state.Cluster != nil {
		cluster = state.Cluster.ID
	}
	data := [][]string{
		{"钱包", walletName},
		{"已连接", yesNo(state.Connected)},
		{"当前账户", orDash(utils.ShortAddress(state.SelectedAccount))},
		{"账户数", fmt.Sprintf("%d", len(state.Accounts))},
		{"网络", cluster},
	}
	_ = pterm.DefaultTable.WithHasHeader(false).WithData(data).Render()
}

// renderVerification 输出单个钱包的评分明细
func renderVerification(name string, result types.WalletVerificationResult) {
	pterm.DefaultSection.Println(name)
	score := result.SecurityScore
	data := [][]string{
		{"子项", "得分"},
		{"标准合规", fmt.Sprintf("%.2f", score.StandardCompliance)},
		{"方法完整性", fmt.Sprintf("%.2f", score.MethodIntegrity)},
		{"链支持", fmt.Sprintf("%.2f", score.ChainSupport)},
		{"恶意模式", fmt.Sprintf("%.2f", score.MaliciousPatterns)},
		{"身份一致性", fmt.Sprintf("%.2f", score.IdentityConsistency)},
	}
	_ = pterm.DefaultTable.WithHasHeader(true).WithData(data).Render()

	if result.Authentic {
		pterm.Success.Printfln("可信 (置信度 %.2f)", result.Confidence)
	} else {
		pterm.Warning.Printfln("可疑 (置信度 %.2f): %s", result.Confidence, result.Reason)
	}
	for _, w := range result.Warnings {
		pterm.Println(pterm.Yellow("  ⚠ " + w))
	}
}

// printEvent 单行输出连接器事件
func printEvent(ev types.Event) {
	parts := []string{string(ev.Type)}
	if ev.Wallet != "" {
		parts = append(parts, "wallet="+ev.Wallet)
	}
	if ev.Account != "" {
		parts = append(parts, "account="+utils.ShortAddress(ev.Account))
	}
	if ev.Cluster != "" {
		parts = append(parts, "cluster="+ev.Cluster)
	}
	if ev.Count > 0 {
		parts = append(parts, fmt.Sprintf("count=%d", ev.Count))
	}
	if ev.ErrorMessage != "" {
		parts = append(parts, "error="+ev.ErrorMessage)
	}
	pterm.Println(pterm.Gray("  ↳ ") + pterm.LightBlue(strings.Join(parts, " ")))
}

func yesNo(b bool) string {
	if b {
		return pterm.Green("是")
	}
	return pterm.Red("否")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

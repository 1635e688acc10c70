package main

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/weisyn/connector/internal/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "启动连接器并暴露 HTTP/WebSocket API",
	Long: `以模拟钱包为宿主启动连接器，并按配置暴露 HTTP API：

  GET  /health            健康检查
  GET  /metrics           Prometheus 指标
  GET  /v1/state          当前会话状态
  POST /v1/connect        连接钱包
  GET  /v1/events         WebSocket 事件流

按 Ctrl+C 退出。`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	host, err := newSimHost(globalFlags.Mnemonic, false)
	if err != nil {
		return err
	}
	defer host.Close()

	a, err := bootstrap(host, app.WithAPI())
	if err != nil {
		return err
	}

	base := "http://" + a.APIAddr()
	pterm.DefaultBox.WithTitle("WES 钱包连接器").Println(fmt.Sprintf(
		"API:     %s/v1\n事件:    ws://%s/v1/events\n指标:    %s/metrics\n健康:    %s/health",
		base, a.APIAddr(), base, base,
	))
	pterm.Info.Println("按 Ctrl+C 停止")

	a.Wait()
	return a.Stop()
}

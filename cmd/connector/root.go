package main

import (
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// GlobalFlags 全局标志
type GlobalFlags struct {
	ConfigFile  string // 配置文件路径
	Environment string // 嵌入配置环境
	Mnemonic    string // 模拟钱包助记词
	Verbose     bool   // 详细输出
}

var globalFlags GlobalFlags

// rootCmd 根命令
var rootCmd = &cobra.Command{
	Use:   "connector",
	Short: "WES 钱包连接器",
	Long: `WES Connector - 浏览器钱包连接引擎的宿主程序

发现注入的钱包、评估其真实性，并管理连接会话：
- 连接/断开、账户切换与签名
- 启动时按上次会话静默重连
- 网络切换与交易状态跟踪

未指定 --config 时使用 --env 对应的内置配置。`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute 执行根命令
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&globalFlags.ConfigFile, "config", "c", "", "配置文件路径 (JSON)")
	rootCmd.PersistentFlags().StringVar(&globalFlags.Environment, "env", "dev", "内置配置环境: dev|test|prod")
	rootCmd.PersistentFlags().StringVar(&globalFlags.Mnemonic, "mnemonic", "", "模拟钱包助记词 (默认随机生成)")
	rootCmd.PersistentFlags().BoolVarP(&globalFlags.Verbose, "verbose", "v", false, "详细输出")

	rootCmd.AddCommand(demoCmd, serveCmd, verifyCmd, versionCmd)
}

package connector

import "time"

// 连接器默认配置值
const (
	// defaultChainFamily 目标链族
	defaultChainFamily = "solana:"

	// defaultDebug 调试模式下记录自动重连各策略的失败原因
	defaultDebug = false

	// defaultNotifyDebounce 状态通知合并窗口，约等于一帧
	defaultNotifyDebounce = 16 * time.Millisecond

	// defaultSecondPassDelay 第二轮发现的延迟，用于捕获晚注册的钱包
	defaultSecondPassDelay = time.Second

	// defaultDisconnectTimeout 调用钱包 disconnect 的最长等待
	defaultDisconnectTimeout = 3 * time.Second

	// defaultEmptyAccountsDisconnect 账户列表变空是否视为断开
	defaultEmptyAccountsDisconnect = false

	// defaultExcludeUnverified 是否从钱包列表中剔除未通过真实性评估的钱包
	defaultExcludeUnverified = false

	// === 账户轮询 ===

	// defaultPollMaxAttempts 最大轮询次数，超过后自动停止
	defaultPollMaxAttempts = 10

	// === 自动重连 ===

	defaultAutoConnectEnabled       = true
	defaultAllowInteractiveFallback = false
	defaultRetryDelay               = time.Second
	defaultRegistryRecheckDelay     = 500 * time.Millisecond

	// === 真实性评分 ===

	defaultAuthenticityThreshold = 0.6
	defaultMaliciousGate         = 0.5

	// === 持久化键名 ===

	defaultWalletNameKey = "walletName"
	defaultConnectorKey  = "lastConnector"
	defaultClusterKey    = "cluster"

	// defaultCluster 默认网络
	defaultCluster = "solana:mainnet"
)

// defaultPollIntervals 轮询退避表，次数超过表长时沿用最后一项
var defaultPollIntervals = []time.Duration{
	1 * time.Second,
	2 * time.Second,
	3 * time.Second,
	5 * time.Second,
	8 * time.Second,
	13 * time.Second,
}

// defaultClusters 内置网络
var defaultClusters = []ClusterOptions{
	{ID: "solana:mainnet", Label: "Mainnet", Endpoint: "https://api.mainnet-beta.solana.com"},
	{ID: "solana:devnet", Label: "Devnet", Endpoint: "https://api.devnet.solana.com"},
	{ID: "solana:testnet", Label: "Testnet", Endpoint: "https://api.testnet.solana.com"},
}

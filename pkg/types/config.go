// Package types provides configuration type definitions.
package types

// AppConfig 应用程序根配置
// 只包含JSON配置文件解析所需的结构，不包含任何内部字段
// 默认值和完整配置结构在 internal/config/*/defaults.go 和 internal/config/*/config.go 中定义
type AppConfig struct {
	// 应用程序基本信息
	AppName *string `json:"app_name,omitempty"` // 应用名称
	DataDir *string `json:"data_dir,omitempty"` // 数据目录路径

	// Environment 运行环境：dev | test | prod
	Environment *string `json:"environment,omitempty"`

	// 日志配置
	Log *UserLogConfig `json:"log,omitempty"`

	// 事件配置
	Event *UserEventConfig `json:"event,omitempty"`

	// 连接器配置
	Connector *UserConnectorConfig `json:"connector,omitempty"`

	// 存储配置
	Storage *UserStorageConfig `json:"storage,omitempty"`

	// API服务配置
	API *UserAPIConfig `json:"api,omitempty"`
}

// UserLogConfig 用户日志配置
// 只包含JSON配置文件中实际出现的字段
type UserLogConfig struct {
	Level    *string `json:"level,omitempty"`     // 日志级别：debug, info, warn, error, fatal
	FilePath *string `json:"file_path,omitempty"` // 日志文件路径
}

// UserEventConfig 用户事件配置
type UserEventConfig struct {
	Enabled      *bool `json:"enabled,omitempty"`
	HistorySize  *int  `json:"history_size,omitempty"`
	QueueWarning *int  `json:"queue_warning,omitempty"`
}

// UserConnectorConfig 用户连接器配置
// 时间字段使用 Go duration 字符串（如 "16ms"、"1s"）
type UserConnectorConfig struct {
	ChainFamily             *string                   `json:"chain_family,omitempty"`
	Debug                   *bool                     `json:"debug,omitempty"`
	NotifyDebounce          *string                   `json:"notify_debounce,omitempty"`
	SecondPassDelay         *string                   `json:"second_pass_delay,omitempty"`
	DisconnectTimeout       *string                   `json:"disconnect_timeout,omitempty"`
	EmptyAccountsDisconnect *bool                     `json:"empty_accounts_disconnect,omitempty"`
	ExcludeUnverified       *bool                     `json:"exclude_unverified,omitempty"`
	Polling                 *UserPollingConfig        `json:"polling,omitempty"`
	AutoConnect             *UserAutoConnectConfig    `json:"auto_connect,omitempty"`
	Authenticity            *UserAuthenticityConfig   `json:"authenticity,omitempty"`
	Clusters                []UserClusterConfig       `json:"clusters,omitempty"`
	DefaultCluster          *string                   `json:"default_cluster,omitempty"`
	StorageKeys             *UserConnectorStorageKeys `json:"storage_keys,omitempty"`
}

// UserPollingConfig 账户轮询配置
type UserPollingConfig struct {
	Intervals   []string `json:"intervals,omitempty"`
	MaxAttempts *int     `json:"max_attempts,omitempty"`
}

// UserAutoConnectConfig 自动重连配置
type UserAutoConnectConfig struct {
	Enabled                  *bool   `json:"enabled,omitempty"`
	AllowInteractiveFallback *bool   `json:"allow_interactive_fallback,omitempty"`
	RetryDelay               *string `json:"retry_delay,omitempty"`
	RegistryRecheckDelay     *string `json:"registry_recheck_delay,omitempty"`
}

// UserAuthenticityConfig 真实性评分配置
type UserAuthenticityConfig struct {
	Threshold     *float64 `json:"threshold,omitempty"`
	MaliciousGate *float64 `json:"malicious_gate,omitempty"`
}

// UserClusterConfig 网络配置
type UserClusterConfig struct {
	ID       string `json:"id"`
	Label    string `json:"label,omitempty"`
	Endpoint string `json:"endpoint,omitempty"`
}

// UserConnectorStorageKeys 持久化键名
type UserConnectorStorageKeys struct {
	WalletName *string `json:"wallet_name,omitempty"`
	Connector  *string `json:"connector,omitempty"`
	Cluster    *string `json:"cluster,omitempty"`
}

// UserStorageConfig 用户存储配置
type UserStorageConfig struct {
	Backend   *string           `json:"backend,omitempty"` // memory | badger | redis | disabled
	KeyPrefix *string           `json:"key_prefix,omitempty"`
	Badger    *UserBadgerConfig `json:"badger,omitempty"`
	Redis     *UserRedisConfig  `json:"redis,omitempty"`
}

// UserBadgerConfig BadgerDB 配置
type UserBadgerConfig struct {
	Path       *string `json:"path,omitempty"`
	InMemory   *bool   `json:"in_memory,omitempty"`
	SyncWrites *bool   `json:"sync_writes,omitempty"`
}

// UserRedisConfig Redis 配置
type UserRedisConfig struct {
	Addr     *string `json:"addr,omitempty"`
	Password *string `json:"password,omitempty"`
	DB       *int    `json:"db,omitempty"`
}

// UserAPIConfig 用户API配置
type UserAPIConfig struct {
	Enabled    *bool   `json:"enabled,omitempty"`
	ListenAddr *string `json:"listen_addr,omitempty"`
	EnableWS   *bool   `json:"enable_ws,omitempty"`
}

// Package connector 提供钱包连接器的运行参数配置
//
// 覆盖状态通知、钱包发现、连接超时、账户轮询、自动重连、真实性评分、
// 网络列表和持久化键名。用户配置中的时间字段为 Go duration 字符串，
// 解析失败的值被忽略并保留默认值。
package connector

import (
	"time"

	"github.com/weisyn/connector/pkg/types"
)

// ConnectorOptions 连接器配置选项
type ConnectorOptions struct {
	ChainFamily             string        `json:"chain_family"`
	Debug                   bool          `json:"debug"`
	NotifyDebounce          time.Duration `json:"notify_debounce"`
	SecondPassDelay         time.Duration `json:"second_pass_delay"`
	DisconnectTimeout       time.Duration `json:"disconnect_timeout"`
	EmptyAccountsDisconnect bool          `json:"empty_accounts_disconnect"`
	ExcludeUnverified       bool          `json:"exclude_unverified"`

	Polling      PollingOptions      `json:"polling"`
	AutoConnect  AutoConnectOptions  `json:"auto_connect"`
	Authenticity AuthenticityOptions `json:"authenticity"`

	Clusters       []ClusterOptions `json:"clusters"`
	DefaultCluster string           `json:"default_cluster"`

	StorageKeys StorageKeys `json:"storage_keys"`
}

// PollingOptions 账户轮询配置
type PollingOptions struct {
	Intervals   []time.Duration `json:"intervals"`
	MaxAttempts int             `json:"max_attempts"`
}

// AutoConnectOptions 自动重连配置
type AutoConnectOptions struct {
	Enabled                  bool          `json:"enabled"`
	AllowInteractiveFallback bool          `json:"allow_interactive_fallback"`
	RetryDelay               time.Duration `json:"retry_delay"`
	RegistryRecheckDelay     time.Duration `json:"registry_recheck_delay"`
}

// AuthenticityOptions 真实性评分阈值
type AuthenticityOptions struct {
	Threshold     float64 `json:"threshold"`
	MaliciousGate float64 `json:"malicious_gate"`
}

// ClusterOptions 网络定义
type ClusterOptions struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Endpoint string `json:"endpoint"`
}

// StorageKeys 持久化逻辑键
type StorageKeys struct {
	WalletName string `json:"wallet_name"`
	Connector  string `json:"connector"`
	Cluster    string `json:"cluster"`
}

// Config 连接器配置实现
type Config struct {
	options *ConnectorOptions
}

// New 创建连接器配置实现
func New(userConfig interface{}) *Config {
	options := createDefaultConnectorOptions()
	if cfg, ok := userConfig.(*types.UserConnectorConfig); ok && cfg != nil {
		applyUserConnectorConfig(options, cfg)
	}
	return &Config{options: options}
}

// Default 返回默认配置选项
func Default() *ConnectorOptions {
	return createDefaultConnectorOptions()
}

func createDefaultConnectorOptions() *ConnectorOptions {
	clusters := make([]ClusterOptions, len(defaultClusters))
	copy(clusters, defaultClusters)
	intervals := make([]time.Duration, len(defaultPollIntervals))
	copy(intervals, defaultPollIntervals)

	return &ConnectorOptions{
		ChainFamily:             defaultChainFamily,
		Debug:                   defaultDebug,
		NotifyDebounce:          defaultNotifyDebounce,
		SecondPassDelay:         defaultSecondPassDelay,
		DisconnectTimeout:       defaultDisconnectTimeout,
		EmptyAccountsDisconnect: defaultEmptyAccountsDisconnect,
		ExcludeUnverified:       defaultExcludeUnverified,
		Polling: PollingOptions{
			Intervals:   intervals,
			MaxAttempts: defaultPollMaxAttempts,
		},
		AutoConnect: AutoConnectOptions{
			Enabled:                  defaultAutoConnectEnabled,
			AllowInteractiveFallback: defaultAllowInteractiveFallback,
			RetryDelay:               defaultRetryDelay,
			RegistryRecheckDelay:     defaultRegistryRecheckDelay,
		},
		Authenticity: AuthenticityOptions{
			Threshold:     defaultAuthenticityThreshold,
			MaliciousGate: defaultMaliciousGate,
		},
		Clusters:       clusters,
		DefaultCluster: defaultCluster,
		StorageKeys: StorageKeys{
			WalletName: defaultWalletNameKey,
			Connector:  defaultConnectorKey,
			Cluster:    defaultClusterKey,
		},
	}
}

// applyUserConnectorConfig 应用用户配置覆盖默认值
func applyUserConnectorConfig(o *ConnectorOptions, cfg *types.UserConnectorConfig) {
	if cfg.ChainFamily != nil && *cfg.ChainFamily != "" {
		o.ChainFamily = *cfg.ChainFamily
	}
	if cfg.Debug != nil {
		o.Debug = *cfg.Debug
	}
	setDuration(&o.NotifyDebounce, cfg.NotifyDebounce)
	setDuration(&o.SecondPassDelay, cfg.SecondPassDelay)
	setDuration(&o.DisconnectTimeout, cfg.DisconnectTimeout)
	if cfg.EmptyAccountsDisconnect != nil {
		o.EmptyAccountsDisconnect = *cfg.EmptyAccountsDisconnect
	}
	if cfg.ExcludeUnverified != nil {
		o.ExcludeUnverified = *cfg.ExcludeUnverified
	}

	if p := cfg.Polling; p != nil {
		if len(p.Intervals) > 0 {
			var intervals []time.Duration
			for _, raw := range p.Intervals {
				if d, err := time.ParseDuration(raw); err == nil && d > 0 {
					intervals = append(intervals, d)
				}
			}
			if len(intervals) > 0 {
				o.Polling.Intervals = intervals
			}
		}
		if p.MaxAttempts != nil && *p.MaxAttempts >= 0 {
			o.Polling.MaxAttempts = *p.MaxAttempts
		}
	}

	if a := cfg.AutoConnect; a != nil {
		if a.Enabled != nil {
			o.AutoConnect.Enabled = *a.Enabled
		}
		if a.AllowInteractiveFallback != nil {
			o.AutoConnect.AllowInteractiveFallback = *a.AllowInteractiveFallback
		}
		setDuration(&o.AutoConnect.RetryDelay, a.RetryDelay)
		setDuration(&o.AutoConnect.RegistryRecheckDelay, a.RegistryRecheckDelay)
	}

	if a := cfg.Authenticity; a != nil {
		if a.Threshold != nil && *a.Threshold >= 0 && *a.Threshold <= 1 {
			o.Authenticity.Threshold = *a.Threshold
		}
		if a.MaliciousGate != nil && *a.MaliciousGate >= 0 && *a.MaliciousGate <= 1 {
			o.Authenticity.MaliciousGate = *a.MaliciousGate
		}
	}

	if len(cfg.Clusters) > 0 {
		clusters := make([]ClusterOptions, 0, len(cfg.Clusters))
		seen := make(map[string]bool, len(cfg.Clusters))
		for _, c := range cfg.Clusters {
			if c.ID == "" || seen[c.ID] {
				continue
			}
			seen[c.ID] = true
			label := c.Label
			if label == "" {
				label = c.ID
			}
			clusters = append(clusters, ClusterOptions{ID: c.ID, Label: label, Endpoint: c.Endpoint})
		}
		if len(clusters) > 0 {
			o.Clusters = clusters
			o.DefaultCluster = clusters[0].ID
		}
	}
	if cfg.DefaultCluster != nil && *cfg.DefaultCluster != "" {
		o.DefaultCluster = *cfg.DefaultCluster
	}

	if k := cfg.StorageKeys; k != nil {
		if k.WalletName != nil && *k.WalletName != "" {
			o.StorageKeys.WalletName = *k.WalletName
		}
		if k.Connector != nil && *k.Connector != "" {
			o.StorageKeys.Connector = *k.Connector
		}
		if k.Cluster != nil && *k.Cluster != "" {
			o.StorageKeys.Cluster = *k.Cluster
		}
	}
}

func setDuration(dst *time.Duration, raw *string) {
	if raw == nil {
		return
	}
	if d, err := time.ParseDuration(*raw); err == nil && d >= 0 {
		*dst = d
	}
}

// GetOptions 获取完整的连接器配置选项
func (c *Config) GetOptions() *ConnectorOptions {
	return c.options
}

// GetClusters 获取网络列表（转换为领域类型）
func (c *Config) GetClusters() []types.Cluster {
	out := make([]types.Cluster, 0, len(c.options.Clusters))
	for _, cl := range c.options.Clusters {
		out = append(out, types.Cluster{ID: cl.ID, Label: cl.Label, Endpoint: cl.Endpoint})
	}
	return out
}

// PollInterval 返回第 attempt 次（从0开始）轮询前的等待时间
func (o *ConnectorOptions) PollInterval(attempt int) time.Duration {
	table := o.Polling.Intervals
	if len(table) == 0 {
		return time.Second
	}
	if attempt < 0 {
		attempt = 0
	}
	if attempt >= len(table) {
		return table[len(table)-1]
	}
	return table[attempt]
}

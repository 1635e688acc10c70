package event

import configtypes "github.com/weisyn/connector/pkg/types"

// EventOptions 事件系统配置选项
type EventOptions struct {
	Enabled      bool `json:"enabled"`       // 是否启用事件投递
	HistorySize  int  `json:"history_size"`  // 事件历史保留条数
	QueueWarning int  `json:"queue_warning"` // 队列积压告警阈值
}

// Config 事件配置实现
type Config struct {
	options *EventOptions
}

// New 创建事件配置实现
func New(userConfig interface{}) *Config {
	// 1. 先创建完整的默认配置
	defaultOptions := createDefaultEventOptions()

	// 2. 应用用户配置
	if cfg, ok := userConfig.(*configtypes.UserEventConfig); ok && cfg != nil {
		if cfg.Enabled != nil {
			defaultOptions.Enabled = *cfg.Enabled
		}
		if cfg.HistorySize != nil && *cfg.HistorySize >= 0 {
			defaultOptions.HistorySize = *cfg.HistorySize
		}
		if cfg.QueueWarning != nil && *cfg.QueueWarning > 0 {
			defaultOptions.QueueWarning = *cfg.QueueWarning
		}
	}

	return &Config{
		options: defaultOptions,
	}
}

// createDefaultEventOptions 创建默认事件配置
func createDefaultEventOptions() *EventOptions {
	return &EventOptions{
		Enabled:      defaultEnabled,
		HistorySize:  defaultHistorySize,
		QueueWarning: defaultQueueWarning,
	}
}

// GetOptions 获取完整的事件配置选项
func (c *Config) GetOptions() *EventOptions {
	return c.options
}

// IsEnabled 是否启用事件投递
func (c *Config) IsEnabled() bool {
	return c.options.Enabled
}

// GetHistorySize 获取历史保留条数
func (c *Config) GetHistorySize() int {
	return c.options.HistorySize
}

// GetQueueWarning 获取队列积压告警阈值
func (c *Config) GetQueueWarning() int {
	return c.options.QueueWarning
}

// FromOptions 直接包装已有选项
func FromOptions(options *EventOptions) *Config {
	if options == nil {
		return New(nil)
	}
	return &Config{options: options}
}

package api

import (
	"time"

	"github.com/weisyn/connector/pkg/types"
)

// APIOptions API服务配置选项
type APIOptions struct {
	// 基础配置
	Enabled    bool   `json:"enabled"`     // 是否启用HTTP服务（总开关）
	ListenAddr string `json:"listen_addr"` // 监听地址 host:port

	// 超时配置
	ReadTimeout  time.Duration `json:"read_timeout"`  // 读取超时时间
	WriteTimeout time.Duration `json:"write_timeout"` // 写入超时时间

	// 写操作限流（按客户端IP）
	RateLimit RateLimitConfig `json:"rate_limit"`

	// WebSocket配置
	WebSocket WebSocketConfig `json:"websocket"`
}

// RateLimitConfig 写操作限流配置
type RateLimitConfig struct {
	PerSecond float64 `json:"per_second"` // 每秒令牌数，<=0 表示不限流
	Burst     int     `json:"burst"`      // 突发容量
}

// WebSocketConfig WebSocket配置
type WebSocketConfig struct {
	Enabled         bool `json:"enabled"`           // 是否启用 /v1/events
	ReadBufferSize  int  `json:"read_buffer_size"`  // 读缓冲区大小(字节)
	WriteBufferSize int  `json:"write_buffer_size"` // 写缓冲区大小(字节)
	SendQueue       int  `json:"send_queue"`        // 单连接待发送队列长度
}

// Config API配置实现
type Config struct {
	options *APIOptions
}

// New 创建API配置实现
func New(userConfig interface{}) *Config {
	options := createDefaultAPIOptions()

	if cfg, ok := userConfig.(*types.UserAPIConfig); ok && cfg != nil {
		if cfg.Enabled != nil {
			options.Enabled = *cfg.Enabled
		}
		if cfg.ListenAddr != nil && *cfg.ListenAddr != "" {
			options.ListenAddr = *cfg.ListenAddr
		}
		if cfg.EnableWS != nil {
			options.WebSocket.Enabled = *cfg.EnableWS
		}
	}

	return &Config{options: options}
}

func createDefaultAPIOptions() *APIOptions {
	return &APIOptions{
		Enabled:      defaultEnabled,
		ListenAddr:   defaultListenAddr,
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
		RateLimit: RateLimitConfig{
			PerSecond: defaultRateLimitPerSecond,
			Burst:     defaultRateLimitBurst,
		},
		WebSocket: WebSocketConfig{
			Enabled:         defaultEnableWebSocket,
			ReadBufferSize:  defaultWSBufferSize,
			WriteBufferSize: defaultWSBufferSize,
			SendQueue:       defaultWSSendQueue,
		},
	}
}

// GetOptions 获取完整的API配置选项
func (c *Config) GetOptions() *APIOptions {
	return c.options
}

package api

import "time"

// API服务默认配置值
const (
	// defaultEnabled 默认不启动HTTP控制面，库模式下连接器独立运行
	defaultEnabled = false

	// defaultListenAddr 仅监听本机
	defaultListenAddr = "127.0.0.1:8787"

	// defaultEnableWebSocket 默认开放 /v1/events 事件流
	defaultEnableWebSocket = true

	// defaultReadTimeout 请求读取超时
	defaultReadTimeout = 10 * time.Second

	// defaultWriteTimeout 响应写入超时
	defaultWriteTimeout = 30 * time.Second

	// defaultWSBufferSize WebSocket 读写缓冲区大小(字节)
	defaultWSBufferSize = 4096

	// defaultWSSendQueue 每个 WebSocket 连接的待发送事件队列长度
	defaultWSSendQueue = 64

	// defaultRateLimitPerSecond 写操作每秒令牌数
	defaultRateLimitPerSecond = 5.0

	// defaultRateLimitBurst 写操作突发容量
	defaultRateLimitBurst = 10
)

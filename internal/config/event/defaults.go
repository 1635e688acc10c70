package event

// 事件系统默认配置值
const (
	// defaultEnabled 默认启用事件系统
	// 关闭后 Emit 只计数不投递
	defaultEnabled = true

	// defaultHistorySize 保留最近事件条数，供 API 与 CLI 回放
	defaultHistorySize = 256

	// defaultQueueWarning 待投递队列超过该长度时记录警告
	defaultQueueWarning = 1024
)

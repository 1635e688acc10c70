// Package log 提供连接器的日志级别定义
//
// 📊 **日志级别管理 (Log Level Management)**
//
// 级别取值与配置文件 log.level 字段一致。
package log

// LogLevel 日志级别
type LogLevel string

const (
	DebugLevel LogLevel = "debug"
	InfoLevel  LogLevel = "info"
	WarnLevel  LogLevel = "warn"
	ErrorLevel LogLevel = "error"
	FatalLevel LogLevel = "fatal"
)

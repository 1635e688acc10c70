// Package config provides configuration provider interfaces.
package config

import (
	apiconfig "github.com/weisyn/connector/internal/config/api"
	connectorconfig "github.com/weisyn/connector/internal/config/connector"
	eventconfig "github.com/weisyn/connector/internal/config/event"
	logconfig "github.com/weisyn/connector/internal/config/log"
	storageconfig "github.com/weisyn/connector/internal/config/storage"
	"github.com/weisyn/connector/pkg/types"
)

// Provider 配置提供者接口
type Provider interface {
	// GetLog 获取日志配置
	GetLog() *logconfig.LogOptions

	// GetEvent 获取事件配置
	GetEvent() *eventconfig.EventOptions

	// GetConnector 获取连接器配置
	GetConnector() *connectorconfig.ConnectorOptions

	// GetStorage 获取持久化配置
	GetStorage() *storageconfig.StorageOptions

	// GetAPI 获取API服务配置
	GetAPI() *apiconfig.APIOptions

	// GetAppName 获取应用名称
	GetAppName() string

	// GetDataDir 获取数据目录
	GetDataDir() string

	// GetEnvironment 获取运行环境
	// 返回运行环境字符串：dev | test | prod
	// 未配置时默认为 "prod"（安全优先）
	GetEnvironment() string

	// GetAppConfig 获取原始用户配置
	GetAppConfig() *types.AppConfig
}

// AppOptions 应用配置选项（由启动入口注入）
type AppOptions interface {
	GetAppConfig() *types.AppConfig
}

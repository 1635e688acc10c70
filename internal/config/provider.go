package config

import (
	"github.com/weisyn/connector/internal/config/api"
	"github.com/weisyn/connector/internal/config/connector"
	"github.com/weisyn/connector/internal/config/event"
	"github.com/weisyn/connector/internal/config/log"
	"github.com/weisyn/connector/internal/config/storage"
	"github.com/weisyn/connector/pkg/interfaces/config"
	"github.com/weisyn/connector/pkg/types"
)

const (
	defaultAppName = "connector"
	defaultDataDir = "./data"
)

// Provider 实现配置提供者接口
type Provider struct {
	appConfig *types.AppConfig
}

// NewProvider 创建配置提供者
func NewProvider(appConfig *types.AppConfig) config.Provider {
	if appConfig == nil {
		appConfig = &types.AppConfig{}
	}
	return &Provider{
		appConfig: appConfig,
	}
}

// GetLog 获取日志配置
func (p *Provider) GetLog() *log.LogOptions {
	return log.New(p.appConfig.Log).GetOptions()
}

// GetEvent 获取事件配置
func (p *Provider) GetEvent() *event.EventOptions {
	return event.New(p.appConfig.Event).GetOptions()
}

// GetConnector 获取连接器配置
func (p *Provider) GetConnector() *connector.ConnectorOptions {
	return connector.New(p.appConfig.Connector).GetOptions()
}

// GetStorage 获取持久化配置
func (p *Provider) GetStorage() *storage.StorageOptions {
	return storage.New(p.appConfig.Storage, p.GetDataDir()).GetOptions()
}

// GetAPI 获取API服务配置
func (p *Provider) GetAPI() *api.APIOptions {
	return api.New(p.appConfig.API).GetOptions()
}

// GetAppName 获取应用名称
func (p *Provider) GetAppName() string {
	if p.appConfig.AppName != nil && *p.appConfig.AppName != "" {
		return *p.appConfig.AppName
	}
	return defaultAppName
}

// GetDataDir 获取数据目录
func (p *Provider) GetDataDir() string {
	if p.appConfig.DataDir != nil && *p.appConfig.DataDir != "" {
		return *p.appConfig.DataDir
	}
	return defaultDataDir
}

// GetEnvironment 获取运行环境
func (p *Provider) GetEnvironment() string {
	if p.appConfig.Environment != nil {
		switch *p.appConfig.Environment {
		case "dev", "test", "prod":
			return *p.appConfig.Environment
		}
	}
	return "prod"
}

// GetAppConfig 获取原始用户配置
func (p *Provider) GetAppConfig() *types.AppConfig {
	return p.appConfig
}

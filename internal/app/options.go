package app

import (
	"github.com/weisyn/connector/internal/core/connector/registry"
	"github.com/weisyn/connector/pkg/types"
)

// Option 应用程序选项函数类型
type Option func(*options)

// options 应用程序选项
type options struct {
	// 配置文件路径（为空时使用嵌入配置）
	configFilePath string

	// 嵌入的配置内容（优先级高于configFilePath）
	embeddedConfig []byte

	// 嵌入配置的环境：dev | test | prod
	environment string

	// 已解析的用户配置（优先级最高）
	appConfig *types.AppConfig

	// API支持开关，nil 表示以配置为准
	enableAPI *bool

	// 宿主环境：钱包注册表与全局命名空间
	registry registry.WalletsRegistry
	scope    registry.GlobalScope
}

// WithConfigFile 设置配置文件路径
func WithConfigFile(configPath string) Option {
	return func(o *options) {
		o.configFilePath = configPath
	}
}

// WithEmbeddedConfig 设置嵌入的配置内容（优先级高于WithConfigFile）
func WithEmbeddedConfig(configBytes []byte) Option {
	return func(o *options) {
		o.embeddedConfig = configBytes
	}
}

// WithEnvironment 选择嵌入配置的环境
func WithEnvironment(env string) Option {
	return func(o *options) {
		o.environment = env
	}
}

// WithAppConfig 直接使用已构造的配置
func WithAppConfig(cfg *types.AppConfig) Option {
	return func(o *options) {
		o.appConfig = cfg
	}
}

// WithAPI 启用API模块（覆盖配置）
func WithAPI() Option {
	return func(o *options) {
		enabled := true
		o.enableAPI = &enabled
	}
}

// WithoutAPI 禁用API模块（覆盖配置）
func WithoutAPI() Option {
	return func(o *options) {
		enabled := false
		o.enableAPI = &enabled
	}
}

// WithWalletRegistry 注入钱包注册表
func WithWalletRegistry(r registry.WalletsRegistry) Option {
	return func(o *options) {
		o.registry = r
	}
}

// WithGlobalScope 注入全局命名空间（旧式钱包直接探测）
func WithGlobalScope(s registry.GlobalScope) Option {
	return func(o *options) {
		o.scope = s
	}
}

// newOptions 创建选项
func newOptions(opts ...Option) *options {
	options := &options{}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

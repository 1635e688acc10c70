package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/weisyn/connector/internal/api"
	apihttp "github.com/weisyn/connector/internal/api/http"
	config "github.com/weisyn/connector/internal/config"
	"github.com/weisyn/connector/internal/core/connector"
	"github.com/weisyn/connector/internal/core/connector/registry"
	"github.com/weisyn/connector/internal/core/infrastructure/event"
	log "github.com/weisyn/connector/internal/core/infrastructure/log"
	"github.com/weisyn/connector/internal/core/infrastructure/metrics"
	"github.com/weisyn/connector/internal/core/infrastructure/storage"
	configiface "github.com/weisyn/connector/pkg/interfaces/config"
	"github.com/weisyn/connector/pkg/types"
)

// Bootstrap 应用引导程序
type Bootstrap struct {
	opts      *options
	appConfig *types.AppConfig
	fxApp     *fx.App

	engine *connector.Engine
	server *apihttp.Server
}

// NewBootstrap 创建引导程序，加载并校验配置
func NewBootstrap(opts *options) (*Bootstrap, error) {
	cfg, err := resolveConfig(opts)
	if err != nil {
		return nil, err
	}
	return &Bootstrap{opts: opts, appConfig: cfg}, nil
}

// resolveConfig 按优先级确定用户配置：显式配置 > 嵌入内容 > 配置文件/环境默认
func resolveConfig(opts *options) (*types.AppConfig, error) {
	var (
		cfg *types.AppConfig
		err error
	)
	switch {
	case opts.appConfig != nil:
		cfg = opts.appConfig
	case len(opts.embeddedConfig) > 0:
		cfg, err = config.ParseAppConfig(opts.embeddedConfig)
	default:
		cfg, err = config.LoadAppConfig(opts.configFilePath, opts.environment)
	}
	if err != nil {
		return nil, err
	}
	if err := config.ValidateAppConfig(cfg); err != nil {
		return nil, err
	}

	if opts.enableAPI != nil {
		if cfg.API == nil {
			cfg.API = &types.UserAPIConfig{}
		}
		enabled := *opts.enableAPI
		cfg.API.Enabled = &enabled
	}
	return cfg, nil
}

// SetupInfrastructureLayer 设置基础设施层模块
func (b *Bootstrap) SetupInfrastructureLayer() []fx.Option {
	return []fx.Option{
		fx.Provide(func() configiface.AppOptions { return config.NewAppOptions(b.appConfig) }),
		config.Module(),  // 1. 配置(不依赖其他)
		log.Module(),     // 2. 日志(依赖配置)
		metrics.Module(), // 3. 指标(独立注册表)
	}
}

// SetupCommunicationLayer 设置事件与存储层模块
func (b *Bootstrap) SetupCommunicationLayer() []fx.Option {
	return []fx.Option{
		event.Module(),   // 事件(依赖配置、日志、指标)
		storage.Module(), // 持久化(依赖配置、日志)
	}
}

// SetupBusinessLayer 设置连接器模块
func (b *Bootstrap) SetupBusinessLayer() []fx.Option {
	modules := []fx.Option{}
	if r := b.opts.registry; r != nil {
		modules = append(modules, fx.Provide(func() registry.WalletsRegistry { return r }))
	}
	if s := b.opts.scope; s != nil {
		modules = append(modules, fx.Provide(func() registry.GlobalScope { return s }))
	}
	return append(modules, connector.Module())
}

// SetupApplicationLayer 设置应用层模块
//
// HTTP 服务器总是被构造；是否监听由 api.enabled 决定。
func (b *Bootstrap) SetupApplicationLayer() []fx.Option {
	return []fx.Option{
		api.Module(),
	}
}

// SetupModules 按依赖顺序组装全部模块
func (b *Bootstrap) SetupModules() []fx.Option {
	var all []fx.Option
	all = append(all, b.SetupInfrastructureLayer()...)
	all = append(all, b.SetupCommunicationLayer()...)
	all = append(all, b.SetupBusinessLayer()...)
	all = append(all, b.SetupApplicationLayer()...)
	return all
}

// CreateFxApp 创建并配置fx应用
func (b *Bootstrap) CreateFxApp() error {
	b.fxApp = fx.New(
		fx.Options(b.SetupModules()...),

		// fx 事件日志降为 debug，避免淹没业务日志
		fx.WithLogger(func(zl *zap.Logger) fxevent.Logger {
			l := &fxevent.ZapLogger{Logger: zl.Named("fx")}
			l.UseLogLevel(zapcore.DebugLevel)
			return l
		}),

		fx.Populate(&b.engine, &b.server),
	)
	if err := b.fxApp.Err(); err != nil {
		return fmt.Errorf("装配应用失败: %w", err)
	}
	return nil
}

// StartApp 启动应用程序
func (b *Bootstrap) StartApp(ctx context.Context) error {
	if err := b.fxApp.Start(ctx); err != nil {
		return fmt.Errorf("启动应用失败: %w", err)
	}
	return nil
}

// StopApp 停止应用程序
func (b *Bootstrap) StopApp(ctx context.Context) error {
	if err := b.fxApp.Stop(ctx); err != nil {
		return fmt.Errorf("停止应用失败: %w", err)
	}
	return nil
}

// BootstrapApp 执行完整的引导过程并返回已启动的应用
func BootstrapApp(options ...Option) (App, error) {
	bootstrap, err := NewBootstrap(newOptions(options...))
	if err != nil {
		return nil, err
	}
	if err := bootstrap.CreateFxApp(); err != nil {
		return nil, err
	}

	startupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := bootstrap.StartApp(startupCtx); err != nil {
		return nil, err
	}

	return &internalApp{bootstrap: bootstrap}, nil
}

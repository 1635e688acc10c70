// Package log 提供日志管理功能
package log

import (
	"context"
	"fmt"

	logconfig "github.com/weisyn/connector/internal/config/log"
	"github.com/weisyn/connector/pkg/interfaces/config"
	logInterface "github.com/weisyn/connector/pkg/interfaces/infrastructure/log"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// ModuleParams 定义日志模块的依赖参数
type ModuleParams struct {
	fx.In

	Lifecycle fx.Lifecycle    // 生命周期
	Provider  config.Provider // 配置提供者
}

// ModuleOutput 定义日志模块的输出结构
type ModuleOutput struct {
	fx.Out

	Logger    logInterface.Logger // 日志记录器接口
	ZapLogger *zap.Logger         // zap.Logger 具体类型（供 fx 事件日志使用）
}

// Module 返回日志模块
func Module() fx.Option {
	return fx.Module("log",
		fx.Provide(ProvideServices),
	)
}

// ProvideServices 提供日志服务
// 根据配置初始化日志记录器并返回
func ProvideServices(params ModuleParams) (ModuleOutput, error) {
	userLogConfig := logconfig.NewFromProvider(params.Provider)

	logger, err := New(userLogConfig)
	if err != nil {
		return ModuleOutput{}, fmt.Errorf("根据用户配置创建日志记录器失败: %w", err)
	}

	// 设置为全局记录器，未注入日志的组件经 OrNop 沿用；应用停止时释放
	SetLogger(logger)
	params.Lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error {
			_ = logger.Sync()
			releaseLogger(logger)
			return nil
		},
	})

	return ModuleOutput{
		Logger:    logger,
		ZapLogger: logger.GetZapLogger(),
	}, nil
}

// NewModuleLogger 创建带 module 字段的 logger
//
// 参数：
//   - baseLogger: 基础 logger，nil 时返回丢弃输出的 logger
//   - module: 模块名称（如 "state", "detector", "connection" 等）
func NewModuleLogger(baseLogger logInterface.Logger, module string) logInterface.Logger {
	return OrNop(baseLogger).With("module", module)
}

// Package event 提供事件管理功能
package event

import (
	"context"

	"go.uber.org/fx"

	eventconfig "github.com/weisyn/connector/internal/config/event"
	"github.com/weisyn/connector/pkg/interfaces/config"
	eventInterface "github.com/weisyn/connector/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/connector/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/connector/pkg/interfaces/infrastructure/metrics"
)

// ModuleInput 事件模块输入依赖
type ModuleInput struct {
	fx.In

	Provider  config.Provider  // 配置提供者
	Logger    log.Logger       `optional:"true"` // 日志记录器（可选）
	Metrics   metrics.Recorder `optional:"true"` // 指标（可选）
	Lifecycle fx.Lifecycle     // 生命周期管理
}

// ModuleOutput 事件模块输出服务
type ModuleOutput struct {
	fx.Out

	EventBus eventInterface.EventBus // 事件总线
}

// Module 返回事件模块
func Module() fx.Option {
	return fx.Module("event",
		fx.Provide(
			func(input ModuleInput) ModuleOutput {
				cfg := eventconfig.New(nil)
				if opts := input.Provider.GetEvent(); opts != nil {
					cfg = eventconfig.FromOptions(opts)
				}
				bus := New(cfg, input.Logger, input.Metrics)

				input.Lifecycle.Append(fx.Hook{
					OnStop: func(context.Context) error {
						bus.Close()
						return nil
					},
				})

				return ModuleOutput{EventBus: bus}
			},
		),
	)
}

package connector

import (
	"context"

	"go.uber.org/fx"

	"github.com/weisyn/connector/internal/core/connector/registry"
	"github.com/weisyn/connector/internal/core/infrastructure/storage"
	"github.com/weisyn/connector/pkg/interfaces/config"
	connectorIface "github.com/weisyn/connector/pkg/interfaces/connector"
	"github.com/weisyn/connector/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/connector/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/connector/pkg/interfaces/infrastructure/metrics"
)

// ModuleInput 连接器模块输入依赖
type ModuleInput struct {
	fx.In

	// ========== 配置依赖 ==========
	Provider config.Provider

	// ========== 基础设施依赖 ==========
	Logger   log.Logger       `optional:"true"`
	Metrics  metrics.Recorder `optional:"true"`
	EventBus event.EventBus
	Keyspace storage.Keyspace

	// ========== 宿主环境（可选）==========
	Registry registry.WalletsRegistry `optional:"true"`
	Scope    registry.GlobalScope     `optional:"true"`

	Lifecycle fx.Lifecycle
}

// ModuleOutput 连接器模块输出
type ModuleOutput struct {
	fx.Out

	Engine    *Engine
	Interface connectorIface.Engine
}

// Module 返回连接器模块
//
// 应用启动后在后台执行发现与自动重连，停止时取消未完成的自动重连并销毁引擎。
func Module() fx.Option {
	return fx.Module("connector",
		fx.Provide(ProvideServices),
	)
}

// ProvideServices 装配引擎并挂接生命周期
func ProvideServices(input ModuleInput) (ModuleOutput, error) {
	engine, err := New(Dependencies{
		Options:  input.Provider.GetConnector(),
		Keyspace: input.Keyspace,
		EventBus: input.EventBus,
		Registry: input.Registry,
		Scope:    input.Scope,
		Logger:   input.Logger,
		Metrics:  input.Metrics,
	})
	if err != nil {
		return ModuleOutput{}, err
	}

	startCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	input.Lifecycle.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				engine.Start(startCtx)
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			select {
			case <-done:
			case <-ctx.Done():
			}
			engine.Destroy()
			return nil
		},
	})

	return ModuleOutput{Engine: engine, Interface: engine}, nil
}

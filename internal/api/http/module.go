package http

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/weisyn/connector/pkg/interfaces/config"
	connectorIface "github.com/weisyn/connector/pkg/interfaces/connector"
	"github.com/weisyn/connector/pkg/interfaces/infrastructure/log"
)

// ServerInput HTTP服务器依赖
type ServerInput struct {
	fx.In

	Lifecycle fx.Lifecycle
	Provider  config.Provider
	Logger    log.Logger
	Engine    connectorIface.Engine
	Registry  *prometheus.Registry `optional:"true"`
}

// Module 返回HTTP服务模块
//
// API 总开关关闭时仍提供 *Server（便于测试与诊断），但不挂接生命周期。
func Module() fx.Option {
	return fx.Module("http",
		fx.Provide(ProvideServer),
	)
}

// ProvideServer 创建服务器并在启用时挂接生命周期
func ProvideServer(input ServerInput) *Server {
	options := input.Provider.GetAPI()
	server := NewServer(options, input.Logger, input.Engine, input.Registry)

	if !options.Enabled {
		input.Logger.Info("HTTP API在配置中被禁用")
		return server
	}

	input.Lifecycle.Append(fx.Hook{
		OnStart: func(context.Context) error {
			return server.Start()
		},
		OnStop: func(ctx context.Context) error {
			return server.Stop(ctx)
		},
	})
	return server
}

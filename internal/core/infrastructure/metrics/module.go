package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	metricsInterface "github.com/weisyn/connector/pkg/interfaces/infrastructure/metrics"
)

// ModuleOutput 指标模块输出
type ModuleOutput struct {
	fx.Out

	Registry *prometheus.Registry
	Recorder metricsInterface.Recorder
}

// Module 返回 metrics 模块的 fx.Option
//
// 每个应用实例使用独立的注册表，/metrics 端点从该注册表导出。
func Module() fx.Option {
	return fx.Module("metrics",
		fx.Provide(func() ModuleOutput {
			registry := prometheus.NewRegistry()
			return ModuleOutput{
				Registry: registry,
				Recorder: NewCollector(registry),
			}
		}),
	)
}

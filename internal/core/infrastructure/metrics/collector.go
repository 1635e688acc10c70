// Package metrics 提供基于 Prometheus 的连接器指标收集
//
// 📋 **指标基础设施模块 (Metrics Infrastructure Module)**
//
// Collector 实现 pkg/interfaces/infrastructure/metrics.Recorder：
// - 事件发布计数（按事件类型）
// - 监听器 panic 计数（按来源：event / state）
// - 连接尝试结果（按钱包、是否静默、结果）
// - 自动重连策略结果
// - 当前发现的钱包数量
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	metricsInterface "github.com/weisyn/connector/pkg/interfaces/infrastructure/metrics"
)

const namespace = "connector"

// Collector Prometheus 指标收集器
type Collector struct {
	eventsEmitted   *prometheus.CounterVec
	listenerPanics  *prometheus.CounterVec
	connectAttempts *prometheus.CounterVec
	autoConnect     *prometheus.CounterVec
	walletsDetected prometheus.Gauge
}

var _ metricsInterface.Recorder = (*Collector)(nil)

// NewCollector 创建收集器；registerer 为 nil 时指标不注册到任何注册表
func NewCollector(registerer prometheus.Registerer) *Collector {
	factory := promauto.With(registerer)

	return &Collector{
		eventsEmitted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "events",
				Name:      "emitted_total",
				Help:      "Total number of connector events emitted",
			},
			[]string{"type"},
		),
		listenerPanics: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "listeners",
				Name:      "panics_total",
				Help:      "Total number of recovered listener panics",
			},
			[]string{"source"},
		),
		connectAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "connection",
				Name:      "attempts_total",
				Help:      "Wallet connect attempts by outcome",
			},
			[]string{"wallet", "silent", "outcome"},
		),
		autoConnect: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "autoconnect",
				Name:      "strategy_total",
				Help:      "Auto-connect strategy results",
			},
			[]string{"strategy", "success"},
		),
		walletsDetected: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "detector",
				Name:      "wallets",
				Help:      "Number of wallets currently detected",
			},
		),
	}
}

func (c *Collector) EventEmitted(eventType string) {
	c.eventsEmitted.WithLabelValues(eventType).Inc()
}

func (c *Collector) ListenerPanicked(source string) {
	c.listenerPanics.WithLabelValues(source).Inc()
}

func (c *Collector) ConnectAttempt(wallet string, silent bool, outcome string) {
	c.connectAttempts.WithLabelValues(wallet, strconv.FormatBool(silent), outcome).Inc()
}

func (c *Collector) AutoConnect(strategy string, success bool) {
	c.autoConnect.WithLabelValues(strategy, strconv.FormatBool(success)).Inc()
}

func (c *Collector) WalletsDetected(count int) {
	c.walletsDetected.Set(float64(count))
}

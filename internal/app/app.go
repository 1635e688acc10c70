// Package app 组装并运行连接器应用
//
// 🚀 **应用引导 (Bootstrap)**
//
// 按层加载 fx 模块：
// - 基础设施层：配置、日志、指标
// - 通信与数据层：事件总线、持久化
// - 业务层：连接器引擎（宿主可注入钱包注册表与全局命名空间）
// - 应用层：HTTP 控制面与事件流
package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	connectorIface "github.com/weisyn/connector/pkg/interfaces/connector"
)

// App 是连接器应用的对外接口
type App interface {
	// Engine 连接器引擎
	Engine() connectorIface.Engine

	// APIAddr HTTP 控制面实际监听地址；未启用时为空
	APIAddr() string

	// Stop 停止应用
	Stop() error

	// Wait 阻塞直到收到退出信号
	Wait()
}

// internalApp 应用的内部实现
type internalApp struct {
	bootstrap *Bootstrap
}

// Engine 连接器引擎
func (a *internalApp) Engine() connectorIface.Engine {
	return a.bootstrap.engine
}

// APIAddr HTTP 控制面地址
func (a *internalApp) APIAddr() string {
	if a.bootstrap.server == nil {
		return ""
	}
	return a.bootstrap.server.Addr()
}

// Stop 停止应用
func (a *internalApp) Stop() error {
	// 留出时间让 badger 完成同步
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return a.bootstrap.StopApp(ctx)
}

// Wait 等待应用收到退出信号
func (a *internalApp) Wait() {
	WaitForSignal()
}

// WaitForSignal 等待退出信号
func WaitForSignal() os.Signal {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)
	return <-signals
}

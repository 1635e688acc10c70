// Package api 组织连接器的对外服务
package api

import (
	"go.uber.org/fx"

	"github.com/weisyn/connector/internal/api/http"
)

// Module 返回API模块
//
// HTTP 控制面与 WebSocket 事件流都由 http 模块提供；
// 这里显式依赖 *http.Server，确保服务器被构造并挂接生命周期。
func Module() fx.Option {
	return fx.Module("api",
		http.Module(),
		fx.Invoke(func(*http.Server) {}),
	)
}

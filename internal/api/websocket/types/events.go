// Package types provides WebSocket event type definitions.
package types

import coretypes "github.com/weisyn/connector/pkg/types"

// EventMessage 推送给客户端的事件消息
type EventMessage struct {
	Subscription string          `json:"subscription"` // 订阅ID
	Result       coretypes.Event `json:"result"`       // 事件数据
}

// ControlMessage 客户端控制消息
//
// {"action":"filter","types":["wallet:connected"]} 重设事件过滤；types 为空表示接收全部。
type ControlMessage struct {
	Action string   `json:"action"`
	Types  []string `json:"types,omitempty"`
}

// ControlActionFilter 重设过滤
const ControlActionFilter = "filter"

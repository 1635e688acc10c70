// Package types provides event type definitions.
package types

import "time"

// EventType 事件类型
type EventType string

// 连接器领域事件
const (
	EventWalletsDetected    EventType = "wallets:detected"
	EventConnecting         EventType = "connecting"
	EventWalletConnected    EventType = "wallet:connected"
	EventWalletDisconnected EventType = "wallet:disconnected"
	EventConnectionFailed   EventType = "connection:failed"
	EventAccountChanged     EventType = "account:changed"
	EventWalletChanged      EventType = "wallet:changed"
	EventClusterChanged     EventType = "cluster:changed"
	EventError              EventType = "error"
	EventTransactionTracked EventType = "transaction:tracked"
	EventTransactionUpdated EventType = "transaction:updated"
)

// Event 连接器事件
//
// 字段按事件类型选择性填充，未使用的字段保持零值。
// Timestamp 为 ISO-8601 字符串，发布时若为空自动填充。
type Event struct {
	Type      EventType `json:"type"`
	Timestamp string    `json:"timestamp"`

	Count           int    `json:"count,omitempty"`            // wallets:detected
	Wallet          string `json:"wallet,omitempty"`           // connecting / wallet:connected / connection:failed / wallet:changed
	Account         string `json:"account,omitempty"`          // wallet:connected / account:changed
	Cluster         string `json:"cluster,omitempty"`          // cluster:changed / transaction:*
	PreviousCluster string `json:"previous_cluster,omitempty"` // cluster:changed
	Error           error  `json:"-"`                          // connection:failed / error
	ErrorMessage    string `json:"error,omitempty"`            // Error 的文本形式
	Context         string `json:"context,omitempty"`          // error
	Signature       string `json:"signature,omitempty"`        // transaction:*
	Status          string `json:"status,omitempty"`           // transaction:*
}

// Stamp 填充缺失的时间戳与错误文本
func (e Event) Stamp(now time.Time) Event {
	if e.Timestamp == "" {
		e.Timestamp = now.UTC().Format("2006-01-02T15:04:05.000Z07:00")
	}
	if e.Error != nil && e.ErrorMessage == "" {
		e.ErrorMessage = e.Error.Error()
	}
	return e
}

// SubscriptionID 订阅ID
type SubscriptionID string

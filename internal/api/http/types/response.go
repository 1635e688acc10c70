// Package types provides HTTP response type definitions.
package types

import "github.com/weisyn/connector/pkg/types"

// SuccessResponse 统一成功响应格式
type SuccessResponse struct {
	Data      interface{} `json:"data"`
	RequestID string      `json:"requestId,omitempty"`
	Timestamp string      `json:"timestamp,omitempty"`
}

// NewSuccessResponse 创建成功响应
func NewSuccessResponse(data interface{}) *SuccessResponse {
	return &SuccessResponse{
		Data: data,
	}
}

// WithRequestID 添加请求ID
func (r *SuccessResponse) WithRequestID(requestID string) *SuccessResponse {
	r.RequestID = requestID
	return r
}

// WithTimestamp 添加时间戳
func (r *SuccessResponse) WithTimestamp(timestamp string) *SuccessResponse {
	r.Timestamp = timestamp
	return r
}

// StateView 连接器状态的对外视图
//
// 状态根中的钱包对象不可序列化，这里只输出名称与元数据。
type StateView struct {
	Connected       bool                `json:"connected"`
	Connecting      bool                `json:"connecting"`
	Wallet          string              `json:"wallet,omitempty"`
	Accounts        []types.AccountInfo `json:"accounts"`
	SelectedAccount string              `json:"selectedAccount,omitempty"`
	Cluster         *types.Cluster      `json:"cluster,omitempty"`
	Clusters        []types.Cluster     `json:"clusters"`
	Wallets         []WalletView        `json:"wallets"`
}

// WalletView 已发现钱包的对外视图
type WalletView struct {
	Name        string   `json:"name"`
	Version     string   `json:"version,omitempty"`
	Icon        string   `json:"icon,omitempty"`
	Chains      []string `json:"chains"`
	Features    []string `json:"features"`
	Installed   bool     `json:"installed"`
	Connectable bool     `json:"connectable"`
}

// ConnectRequest POST /v1/connect
type ConnectRequest struct {
	Wallet string `json:"wallet" binding:"required"`
}

// AccountRequest POST /v1/account
type AccountRequest struct {
	Address string `json:"address" binding:"required"`
}

// ClusterRequest POST /v1/cluster
type ClusterRequest struct {
	Cluster string `json:"cluster" binding:"required"`
}

// SignMessageRequest POST /v1/sign
type SignMessageRequest struct {
	Message string `json:"message" binding:"required"` // UTF-8 文本
}

// SignMessageResponse 签名结果，签名为 base58
type SignMessageResponse struct {
	Account   string `json:"account"`
	Signature string `json:"signature"`
}

// TrackTransactionRequest POST /v1/transactions
type TrackTransactionRequest struct {
	Signature string `json:"signature" binding:"required"`
}

// UpdateTransactionRequest PUT /v1/transactions/:signature
type UpdateTransactionRequest struct {
	Status string `json:"status" binding:"required"`
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status     string `json:"status"` // healthy
	Version    string `json:"version"`
	APIVersion string `json:"api_version"`
	Uptime     string `json:"uptime"`
	Timestamp  string `json:"timestamp"`
	Connected  bool   `json:"connected"`
	Wallets    int    `json:"wallets"`
}

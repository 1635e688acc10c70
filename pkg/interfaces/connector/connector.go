// Package connector 定义钱包连接器对外暴露的引擎接口
//
// 🔌 **连接器引擎 (Connector Engine)**
//
// 应用只通过本接口与连接器交互：
// - 状态：Snapshot 读取当前状态根，Subscribe 订阅（合并后的）状态通知
// - 事件：On/Off 订阅领域事件流
// - 会话：Connect / Disconnect / SelectAccount / SignMessage
// - 网络：SetCluster，交易跟踪 TrackTransaction / UpdateTransaction
//
// 所有会等待钱包的操作都接受 context.Context；钱包调用可能永不返回，
// 调用方应设置超时或依赖 Disconnect 取消。
package connector

import (
	"context"
	"errors"

	"github.com/weisyn/connector/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/connector/pkg/types"
)

// ErrEngineDestroyed 引擎已销毁后的调用返回该错误
var ErrEngineDestroyed = errors.New("connector engine destroyed")

// StateListener 状态监听器
type StateListener func(*types.ConnectorState)

// Engine 连接器引擎
type Engine interface {
	// Start 初始化钱包发现并执行一次自动重连，返回结束时是否已连接
	Start(ctx context.Context) bool

	// Connect 按名称连接已发现的钱包
	Connect(ctx context.Context, walletName string) error

	// Disconnect 断开当前会话（幂等）
	Disconnect(ctx context.Context) error

	// SelectAccount 切换当前账户
	SelectAccount(ctx context.Context, address string) error

	// SetCluster 切换网络
	SetCluster(id string) error

	// Snapshot 当前状态根
	Snapshot() *types.ConnectorState

	// Subscribe 订阅状态通知，返回取消函数
	Subscribe(listener StateListener) func()

	// On 订阅领域事件
	On(listener event.Listener) types.SubscriptionID

	// Off 取消事件订阅
	Off(id types.SubscriptionID)

	// Wallets 已发现的钱包
	Wallets() []types.WalletInfo

	// Verify 钱包的真实性评估结果
	Verify(name string) (types.WalletVerificationResult, bool)

	// SignMessage 用当前账户对消息签名
	SignMessage(ctx context.Context, message []byte) ([]byte, error)

	// TrackTransaction 在当前网络上跟踪交易签名
	TrackTransaction(signature string) (types.TrackedTransaction, error)

	// UpdateTransaction 更新交易状态
	UpdateTransaction(signature string, status types.TransactionStatus) (types.TrackedTransaction, error)

	// Transactions 跟踪中的交易，最新的在前
	Transactions() []types.TrackedTransaction

	// Destroy 释放全部订阅与定时器；之后引擎不可再用
	Destroy()
}

// Package wallet 定义第三方钱包提供者的能力包契约
//
// 📋 **钱包能力包 (Wallet Capability Bag)**
//
// 浏览器扩展注入的钱包对象是不受信任的外部契约。本包把它建模为：
// - Wallet：只读元数据 + 以能力 ID 为键的 Features 映射
// - 能力访问器：GetConnect/GetDisconnect/... 返回 (能力, 是否存在)，从不假设存在
// - Object：全局命名空间中发现的动态属性包（直接探测路径使用）
// - DisplayWallet：图标覆盖装饰器，替代对第三方对象的代理包装
//
// 🎯 **设计原则**
// - 探测能力而不是假设形状
// - 钱包对象由扩展持有并修改，两次读取不保证一致
package wallet

import (
	"context"
	"strings"
)

// FeatureID 能力标识
type FeatureID string

// 已知能力标识
const (
	FeatureConnect                FeatureID = "standard:connect"
	FeatureDisconnect             FeatureID = "standard:disconnect"
	FeatureEvents                 FeatureID = "standard:events"
	FeatureSignMessage            FeatureID = "solana:signMessage"
	FeatureSignTransaction        FeatureID = "solana:signTransaction"
	FeatureSignAndSendTransaction FeatureID = "solana:signAndSendTransaction"
	FeatureSignIn                 FeatureID = "solana:signIn"
)

// ChainFamily 目标链族前缀
const ChainFamily = "solana:"

// EventChange 钱包变更事件名（standard:events）
const EventChange = "change"

// Features 能力映射，值为具体能力实现（ConnectFeature 等）
type Features map[FeatureID]any

// Has 判断能力是否存在
func (f Features) Has(id FeatureID) bool {
	if f == nil {
		return false
	}
	v, ok := f[id]
	return ok && v != nil
}

// IDs 返回全部能力标识
func (f Features) IDs() []FeatureID {
	ids := make([]FeatureID, 0, len(f))
	for id, v := range f {
		if v != nil {
			ids = append(ids, id)
		}
	}
	return ids
}

// Account 钱包上报的账户
type Account struct {
	Address   string      `json:"address"`
	PublicKey []byte      `json:"public_key,omitempty"`
	Chains    []string    `json:"chains,omitempty"`
	Features  []FeatureID `json:"features,omitempty"`
	Label     string      `json:"label,omitempty"`
	Icon      string      `json:"icon,omitempty"`
}

// Wallet 钱包能力包
type Wallet interface {
	// Version 钱包标准版本
	Version() string
	// Name 钱包名称（发现阶段的去重键）
	Name() string
	// Icon 图标（data URI）
	Icon() string
	// Chains 声明支持的链，如 "solana:mainnet"
	Chains() []string
	// Features 能力映射
	Features() Features
	// Accounts 钱包当前暴露的账户
	Accounts() []Account
}

// ConnectInput 连接参数
type ConnectInput struct {
	// Silent 为 true 时钱包不得弹窗，仅在已有授权会话时成功
	Silent bool
}

// ConnectOutput 连接结果
type ConnectOutput struct {
	Accounts []Account
}

// ConnectFeature standard:connect
type ConnectFeature interface {
	Connect(ctx context.Context, input ConnectInput) (ConnectOutput, error)
}

// DisconnectFeature standard:disconnect
type DisconnectFeature interface {
	Disconnect(ctx context.Context) error
}

// ChangeEvent standard:events 的 change 负载
type ChangeEvent struct {
	// HasAccounts 为 false 表示本次变更不涉及账户
	HasAccounts bool
	Accounts    []Account
	Chains      []string
	Features    Features
}

// EventsFeature standard:events
type EventsFeature interface {
	// On 订阅事件，返回取消函数；订阅失败返回错误
	On(event string, listener func(ChangeEvent)) (func(), error)
}

// SignMessageInput 消息签名参数
type SignMessageInput struct {
	Account Account
	Message []byte
}

// SignMessageOutput 消息签名结果
type SignMessageOutput struct {
	SignedMessage []byte
	Signature     []byte
}

// SignMessageFeature solana:signMessage
type SignMessageFeature interface {
	SignMessage(ctx context.Context, inputs ...SignMessageInput) ([]SignMessageOutput, error)
}

// SignTransactionInput 交易签名参数（交易字节由外部编码）
type SignTransactionInput struct {
	Account     Account
	Chain       string
	Transaction []byte
}

// SignTransactionFeature solana:signTransaction
type SignTransactionFeature interface {
	SignTransaction(ctx context.Context, inputs ...SignTransactionInput) ([][]byte, error)
}

// SignAndSendTransactionFeature solana:signAndSendTransaction
type SignAndSendTransactionFeature interface {
	SignAndSendTransaction(ctx context.Context, inputs ...SignTransactionInput) ([]string, error)
}

// SupportsChainFamily 判断钱包是否声明支持指定链族
func SupportsChainFamily(w Wallet, family string) bool {
	if w == nil {
		return false
	}
	for _, chain := range w.Chains() {
		if strings.HasPrefix(chain, family) {
			return true
		}
	}
	return false
}

// IsConnectable 钱包需同时暴露 connect/disconnect 且支持目标链族
func IsConnectable(w Wallet, family string) bool {
	if w == nil {
		return false
	}
	features := w.Features()
	return features.Has(FeatureConnect) && features.Has(FeatureDisconnect) && SupportsChainFamily(w, family)
}

// Package errors 提供连接器统一错误分类
//
// 📋 **错误分类 (Error Taxonomy)**
//
// | 类别          | 默认可恢复 | 典型场景                              |
// |---------------|-----------|---------------------------------------|
// | connection    | 是        | 钱包未找到/未连接、连接失败、账户不可用 |
// | validation    | 否        | 地址/交易/签名/格式错误               |
// | configuration | 否        | 缺少依赖、未知网络                    |
// | network       | 是        | RPC 错误、超时                        |
// | transaction   | 视错误码   | 用户拒绝、发送/模拟失败、签名失败       |
//
// 第三方钱包抛出的普通错误通过 Classify 按消息子串归类；
// UserMessage 将错误码翻译为简短的用户提示。
package errors

import (
	"errors"
	"fmt"
	"time"
)

// Kind 错误类别
type Kind string

const (
	KindConnection    Kind = "connection"
	KindValidation    Kind = "validation"
	KindConfiguration Kind = "configuration"
	KindNetwork       Kind = "network"
	KindTransaction   Kind = "transaction"
)

// Code 错误码
type Code string

// 连接类
const (
	CodeWalletNotFound       Code = "WALLET_NOT_FOUND"
	CodeWalletNotInstalled   Code = "WALLET_NOT_INSTALLED"
	CodeWalletNotConnected   Code = "WALLET_NOT_CONNECTED"
	CodeWalletNotConnectable Code = "WALLET_NOT_CONNECTABLE"
	CodeConnectionFailed     Code = "CONNECTION_FAILED"
	CodeDisconnectionFailed  Code = "DISCONNECTION_FAILED"
	CodeAccountNotAvailable  Code = "ACCOUNT_NOT_AVAILABLE"
	CodeConnectionInProgress Code = "CONNECTION_IN_PROGRESS"
	CodeConnectionCancelled  Code = "CONNECTION_CANCELLED"
)

// 校验类
const (
	CodeInvalidAddress     Code = "INVALID_ADDRESS"
	CodeInvalidTransaction Code = "INVALID_TRANSACTION"
	CodeInvalidSignature   Code = "INVALID_SIGNATURE"
	CodeInvalidFormat      Code = "INVALID_FORMAT"
)

// 配置类
const (
	CodeMissingProvider Code = "MISSING_PROVIDER"
	CodeUnknownCluster  Code = "UNKNOWN_CLUSTER"
)

// 网络类
const (
	CodeRPCError       Code = "RPC_ERROR"
	CodeNetworkTimeout Code = "NETWORK_TIMEOUT"
)

// 交易类
const (
	CodeUserRejected       Code = "USER_REJECTED"
	CodeSendFailed         Code = "SEND_FAILED"
	CodeSimulationFailed   Code = "SIMULATION_FAILED"
	CodeSigningFailed      Code = "SIGNING_FAILED"
	CodeTransactionExpired Code = "TRANSACTION_EXPIRED"
	CodeFeatureUnsupported Code = "FEATURE_NOT_SUPPORTED"
)

type codeInfo struct {
	kind        Kind
	recoverable bool
	userMessage string
}

var codeTable = map[Code]codeInfo{
	CodeWalletNotFound:       {KindConnection, true, "Wallet not found. Please make sure it is installed."},
	CodeWalletNotInstalled:   {KindConnection, true, "Wallet is not installed."},
	CodeWalletNotConnected:   {KindConnection, true, "Please connect your wallet first."},
	CodeWalletNotConnectable: {KindConnection, true, "This wallet does not support connecting to this app."},
	CodeConnectionFailed:     {KindConnection, true, "Could not connect to the wallet. Please try again."},
	CodeDisconnectionFailed:  {KindConnection, true, "Could not disconnect the wallet."},
	CodeAccountNotAvailable:  {KindConnection, true, "The selected account is not available in your wallet."},
	CodeConnectionInProgress: {KindConnection, true, "A connection request is already in progress."},
	CodeConnectionCancelled:  {KindConnection, true, "The connection request was cancelled."},

	CodeInvalidAddress:     {KindValidation, false, "The address is not valid."},
	CodeInvalidTransaction: {KindValidation, false, "The transaction is not valid."},
	CodeInvalidSignature:   {KindValidation, false, "The signature is not valid."},
	CodeInvalidFormat:      {KindValidation, false, "The data format is not valid."},

	CodeMissingProvider: {KindConfiguration, false, "The connector is not configured correctly."},
	CodeUnknownCluster:  {KindConfiguration, false, "The selected network is not available."},

	CodeRPCError:       {KindNetwork, true, "Network error. Please check your connection."},
	CodeNetworkTimeout: {KindNetwork, true, "The request timed out. Please try again."},

	CodeUserRejected:       {KindTransaction, true, "You rejected the request."},
	CodeSendFailed:         {KindTransaction, true, "The transaction could not be sent."},
	CodeSimulationFailed:   {KindTransaction, true, "The transaction simulation failed."},
	CodeSigningFailed:      {KindTransaction, false, "Signing failed."},
	CodeTransactionExpired: {KindTransaction, false, "The transaction has expired."},
	CodeFeatureUnsupported: {KindTransaction, false, "Your wallet does not support this operation."},
}

// genericUserMessage 无法翻译时的兜底提示
const genericUserMessage = "Something went wrong. Please try again."

// ConnectorError 连接器错误
type ConnectorError struct {
	Kind        Kind           // 错误类别
	Code        Code           // 错误码
	Message     string         // 错误消息
	Recoverable bool           // 是否可恢复
	Cause       error          // 原始错误
	Context     map[string]any // 上下文信息
	Timestamp   time.Time      // 发生时间
}

// New 创建错误，类别与可恢复性由错误码决定
func New(code Code, message string) *ConnectorError {
	info, ok := codeTable[code]
	if !ok {
		info = codeInfo{kind: KindTransaction}
	}
	return &ConnectorError{
		Kind:        info.kind,
		Code:        code,
		Message:     message,
		Recoverable: info.recoverable,
		Timestamp:   time.Now(),
	}
}

// Newf 创建格式化消息的错误
func Newf(code Code, format string, args ...any) *ConnectorError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap 包装原始错误
func Wrap(cause error, code Code, message string) *ConnectorError {
	e := New(code, message)
	e.Cause = cause
	return e
}

// WithContext 附加上下文并返回自身
func (e *ConnectorError) WithContext(key string, value any) *ConnectorError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// Error 实现error接口
func (e *ConnectorError) Error() string {
	if e.Cause != nil && e.Cause.Error() != e.Message {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Kind, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Kind, e.Code, e.Message)
}

// Unwrap 支持错误链
func (e *ConnectorError) Unwrap() error {
	return e.Cause
}

// Is 错误码相同即视为同一错误
func (e *ConnectorError) Is(target error) bool {
	var t *ConnectorError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// 常用哨兵错误，配合 errors.Is 使用
var (
	ErrConnectionInProgress = New(CodeConnectionInProgress, "another connection attempt is in progress")
	ErrConnectionCancelled  = New(CodeConnectionCancelled, "connection attempt cancelled by disconnect")
	ErrWalletNotConnected   = New(CodeWalletNotConnected, "wallet not connected")
)

// CodeOf 提取错误码，非连接器错误返回空
func CodeOf(err error) Code {
	var ce *ConnectorError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ""
}

// KindOf 提取错误类别，非连接器错误返回空
func KindOf(err error) Kind {
	var ce *ConnectorError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return ""
}

// UserMessage 将错误翻译为面向用户的简短提示
//
// 未知错误码回退到原始消息，再回退到通用道歉文本。
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var ce *ConnectorError
	if errors.As(err, &ce) {
		if info, ok := codeTable[ce.Code]; ok && info.userMessage != "" {
			return info.userMessage
		}
		if ce.Message != "" {
			return ce.Message
		}
		return genericUserMessage
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return genericUserMessage
}

// Package types provides HTTP error type definitions.
package types

// ErrorResponse 统一错误响应格式
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail 错误详情
type ErrorDetail struct {
	Code        string      `json:"code"`                // 错误码（连接器错误码或通用错误码）
	Kind        string      `json:"kind,omitempty"`      // 连接器错误类别
	Message     string      `json:"message"`             // 面向用户的提示
	Recoverable bool        `json:"recoverable"`         // 是否可重试
	Details     interface{} `json:"details,omitempty"`   // 详细信息
	RequestID   string      `json:"requestId,omitempty"` // 请求ID
	Timestamp   string      `json:"timestamp,omitempty"` // 时间戳
}

// 通用错误码（连接器错误码之外）
const (
	ErrInvalidArgument    = "INVALID_ARGUMENT"
	ErrNotFound           = "NOT_FOUND"
	ErrRateLimitExceeded  = "RATE_LIMIT_EXCEEDED"
	ErrInternal           = "INTERNAL"
	ErrServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// NewErrorResponse 创建错误响应
func NewErrorResponse(code, message string, details interface{}) *ErrorResponse {
	return &ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}

// WithKind 添加错误类别与可恢复性
func (e *ErrorResponse) WithKind(kind string, recoverable bool) *ErrorResponse {
	e.Error.Kind = kind
	e.Error.Recoverable = recoverable
	return e
}

// WithRequestID 添加请求ID
func (e *ErrorResponse) WithRequestID(requestID string) *ErrorResponse {
	e.Error.RequestID = requestID
	return e
}

// WithTimestamp 添加时间戳
func (e *ErrorResponse) WithTimestamp(timestamp string) *ErrorResponse {
	e.Error.Timestamp = timestamp
	return e
}

// Package handlers 实现连接器控制 API 的 HTTP 处理器
package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/weisyn/connector/internal/api/http/middleware"
	"github.com/weisyn/connector/internal/api/http/types"
	cerrors "github.com/weisyn/connector/internal/core/connector/errors"
	connectorIface "github.com/weisyn/connector/pkg/interfaces/connector"
)

// statusFor 将连接器错误映射为 HTTP 状态码
//
// 非连接器错误一律视为内部错误；钱包侧失败（RPC、签名等）映射为 502。
func statusFor(err error) int {
	if errors.Is(err, connectorIface.ErrEngineDestroyed) {
		return http.StatusServiceUnavailable
	}
	switch cerrors.CodeOf(err) {
	case "":
		return http.StatusInternalServerError
	case cerrors.CodeWalletNotFound, cerrors.CodeWalletNotInstalled:
		return http.StatusNotFound
	case cerrors.CodeConnectionInProgress, cerrors.CodeConnectionCancelled,
		cerrors.CodeWalletNotConnected, cerrors.CodeAccountNotAvailable:
		return http.StatusConflict
	case cerrors.CodeUserRejected:
		return http.StatusForbidden
	case cerrors.CodeNetworkTimeout:
		return http.StatusGatewayTimeout
	}
	switch cerrors.KindOf(err) {
	case cerrors.KindValidation, cerrors.KindConfiguration:
		return http.StatusBadRequest
	}
	return http.StatusBadGateway
}

// respondError 输出统一错误响应
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	code := string(cerrors.CodeOf(err))
	switch {
	case status == http.StatusServiceUnavailable:
		code = types.ErrServiceUnavailable
	case code == "":
		code = types.ErrInternal
	}

	resp := types.NewErrorResponse(code, cerrors.UserMessage(err), nil).
		WithRequestID(middleware.GetRequestID(c)).
		WithTimestamp(now())

	var ce *cerrors.ConnectorError
	if errors.As(err, &ce) {
		resp.WithKind(string(ce.Kind), ce.Recoverable)
		if ce.Message != "" {
			resp.Error.Details = gin.H{"detail": ce.Message}
		}
	}
	_ = c.Error(err)
	c.JSON(status, resp)
}

// respondBadRequest 请求参数错误
func respondBadRequest(c *gin.Context, message string, details interface{}) {
	c.JSON(http.StatusBadRequest, types.NewErrorResponse(types.ErrInvalidArgument, message, details).
		WithRequestID(middleware.GetRequestID(c)).
		WithTimestamp(now()))
}

// respondOK 输出统一成功响应
func respondOK(c *gin.Context, status int, data interface{}) {
	c.JSON(status, types.NewSuccessResponse(data).
		WithRequestID(middleware.GetRequestID(c)).
		WithTimestamp(now()))
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

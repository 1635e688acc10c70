package errors

import (
	"context"
	"errors"
	"strings"
)

// classifier 消息子串到错误码的映射，按顺序匹配
type classifier struct {
	code     Code
	patterns []string
}

var classifiers = []classifier{
	{CodeUserRejected, []string{"user rejected", "rejected the request", "user denied", "user cancelled", "user canceled", "declined"}},
	{CodeWalletNotInstalled, []string{"not installed", "not found", "no provider"}},
	{CodeWalletNotConnected, []string{"not connected"}},
	{CodeNetworkTimeout, []string{"timeout", "timed out", "deadline exceeded"}},
	{CodeRPCError, []string{"network", "fetch", "econnrefused", "connection refused"}},
	{CodeInvalidFormat, []string{"invalid"}},
}

// Classify 将任意错误归类为 ConnectorError
//
// 已是 ConnectorError 的直接返回；其他错误按消息子串（不区分大小写）归类，
// 无法归类的视为签名失败并保留原始消息。
func Classify(err error) *ConnectorError {
	if err == nil {
		return nil
	}
	var ce *ConnectorError
	if errors.As(err, &ce) {
		return ce
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return Wrap(err, CodeNetworkTimeout, err.Error())
	}

	msg := strings.ToLower(err.Error())
	for _, c := range classifiers {
		for _, p := range c.patterns {
			if strings.Contains(msg, p) {
				return Wrap(err, c.code, err.Error())
			}
		}
	}
	return Wrap(err, CodeSigningFailed, err.Error())
}

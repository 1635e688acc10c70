// Package version 连接器构建与协议版本信息
package version

import (
	"fmt"
	"strings"
	"time"

	"github.com/weisyn/connector/pkg/wallet"
)

// 构建时通过 ldflags 注入
var (
	Version   = "v0.0.1"
	Commit    = ""
	BuildTime = ""
)

// APIVersion HTTP/WebSocket 接口版本，同时作为路由前缀
const APIVersion = "v1"

// requiredFeatures 钱包可连接所需的最小能力集
var requiredFeatures = []wallet.FeatureID{
	wallet.FeatureConnect,
	wallet.FeatureDisconnect,
}

// Info 连接器版本描述
type Info struct {
	Version     string   `json:"version"`
	Commit      string   `json:"commit,omitempty"`
	BuildTime   string   `json:"build_time,omitempty"`
	APIVersion  string   `json:"api_version"`
	ChainFamily string   `json:"chain_family"`
	Features    []string `json:"required_features"`
}

// GetVersion 获取版本号
func GetVersion() string {
	return Version
}

// Get 返回当前构建的版本描述
func Get() Info {
	features := make([]string, 0, len(requiredFeatures))
	for _, f := range requiredFeatures {
		features = append(features, string(f))
	}
	return Info{
		Version:     Version,
		Commit:      Commit,
		BuildTime:   BuildTime,
		APIVersion:  APIVersion,
		ChainFamily: strings.TrimSuffix(wallet.ChainFamily, ":"),
		Features:    features,
	}
}

// GetFullVersion 多行版本信息，供 version 子命令输出
func GetFullVersion() string {
	info := Get()

	var b strings.Builder
	fmt.Fprintf(&b, "WES 钱包连接器 %s", info.Version)
	if info.Commit != "" {
		fmt.Fprintf(&b, " (%s)", shortCommit(info.Commit))
	}
	if info.BuildTime != "" {
		if t, err := time.Parse(time.RFC3339, info.BuildTime); err == nil {
			fmt.Fprintf(&b, "\n构建时间: %s", t.Format("2006-01-02 15:04:05 MST"))
		} else {
			fmt.Fprintf(&b, "\n构建时间: %s", info.BuildTime)
		}
	}
	fmt.Fprintf(&b, "\n接口版本: %s", info.APIVersion)
	fmt.Fprintf(&b, "\n链族: %s", info.ChainFamily)
	fmt.Fprintf(&b, "\n必需能力: %s", strings.Join(info.Features, ", "))
	return b.String()
}

func shortCommit(c string) string {
	if len(c) > 7 {
		return c[:7]
	}
	return c
}

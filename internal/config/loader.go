package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/weisyn/connector/configs"
	"github.com/weisyn/connector/pkg/interfaces/config"
	"github.com/weisyn/connector/pkg/types"
)

// LoadAppConfig 从JSON文件加载用户配置
// path 为空时使用嵌入的对应环境默认配置
func LoadAppConfig(path string, environment string) (*types.AppConfig, error) {
	var raw []byte
	if path == "" {
		raw = configs.ForEnvironment(environment)
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("读取配置文件失败 %s: %w", path, err)
		}
		raw = data
	}
	return ParseAppConfig(raw)
}

// ParseAppConfig 解析JSON配置
func ParseAppConfig(raw []byte) (*types.AppConfig, error) {
	cfg := &types.AppConfig{}
	if len(raw) == 0 {
		return cfg, nil
	}
	if err := json.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}
	return cfg, nil
}

// appOptions 包装已加载配置，供 fx 注入
type appOptions struct {
	cfg *types.AppConfig
}

func (o appOptions) GetAppConfig() *types.AppConfig { return o.cfg }

// NewAppOptions 把已加载的用户配置包装为 AppOptions
func NewAppOptions(cfg *types.AppConfig) config.AppOptions {
	return appOptions{cfg: cfg}
}

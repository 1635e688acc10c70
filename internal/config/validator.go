package config

import (
	"fmt"
	"net"
	"strings"
	"time"

	storageconfig "github.com/weisyn/connector/internal/config/storage"
	"github.com/weisyn/connector/pkg/types"
)

// ValidationError 配置验证错误
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("配置验证失败 [%s]: %s", e.Field, e.Message)
}

// ValidateAppConfig 验证用户配置
//
// 各配置子模块对非法值静默回退到默认值；启动入口应先调用本函数，
// 让写错的配置在启动时暴露出来，而不是悄悄生效为默认值。
//
// 检查项：
// - connector: 时间字符串可解析、评分阈值在 [0,1]、网络 ID 唯一且默认网络存在
// - storage: 后端名称合法，redis 后端需要地址
// - api: 监听地址为 host:port
func ValidateAppConfig(appConfig *types.AppConfig) error {
	if appConfig == nil {
		return nil
	}

	var errs []error
	add := func(field, format string, args ...interface{}) {
		errs = append(errs, &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if env := appConfig.Environment; env != nil {
		switch *env {
		case "dev", "test", "prod":
		default:
			add("environment", "未知运行环境 %q，可选 dev | test | prod", *env)
		}
	}

	if c := appConfig.Connector; c != nil {
		checkDuration := func(field string, raw *string) {
			if raw == nil {
				return
			}
			if d, err := time.ParseDuration(*raw); err != nil || d < 0 {
				add(field, "无效的时间 %q", *raw)
			}
		}
		checkDuration("connector.notify_debounce", c.NotifyDebounce)
		checkDuration("connector.second_pass_delay", c.SecondPassDelay)
		checkDuration("connector.disconnect_timeout", c.DisconnectTimeout)
		if p := c.Polling; p != nil {
			for i, raw := range p.Intervals {
				if d, err := time.ParseDuration(raw); err != nil || d <= 0 {
					add(fmt.Sprintf("connector.polling.intervals[%d]", i), "无效的轮询间隔 %q", raw)
				}
			}
			if p.MaxAttempts != nil && *p.MaxAttempts < 0 {
				add("connector.polling.max_attempts", "不能为负数")
			}
		}
		if a := c.AutoConnect; a != nil {
			checkDuration("connector.auto_connect.retry_delay", a.RetryDelay)
			checkDuration("connector.auto_connect.registry_recheck_delay", a.RegistryRecheckDelay)
		}
		if a := c.Authenticity; a != nil {
			if a.Threshold != nil && (*a.Threshold < 0 || *a.Threshold > 1) {
				add("connector.authenticity.threshold", "必须在 [0,1] 之间，当前 %v", *a.Threshold)
			}
			if a.MaliciousGate != nil && (*a.MaliciousGate < 0 || *a.MaliciousGate > 1) {
				add("connector.authenticity.malicious_gate", "必须在 [0,1] 之间，当前 %v", *a.MaliciousGate)
			}
		}
		if c.ChainFamily != nil && !strings.HasSuffix(*c.ChainFamily, ":") {
			add("connector.chain_family", "链族前缀需以 ':' 结尾，如 \"solana:\"")
		}

		ids := make(map[string]bool, len(c.Clusters))
		for i, cl := range c.Clusters {
			if cl.ID == "" {
				add(fmt.Sprintf("connector.clusters[%d].id", i), "网络ID不能为空")
				continue
			}
			if ids[cl.ID] {
				add(fmt.Sprintf("connector.clusters[%d].id", i), "重复的网络ID %q", cl.ID)
			}
			ids[cl.ID] = true
		}
		if c.DefaultCluster != nil && *c.DefaultCluster != "" && len(ids) > 0 && !ids[*c.DefaultCluster] {
			add("connector.default_cluster", "默认网络 %q 不在 clusters 中", *c.DefaultCluster)
		}
	}

	if s := appConfig.Storage; s != nil && s.Backend != nil {
		switch *s.Backend {
		case storageconfig.BackendMemory, storageconfig.BackendBadger, storageconfig.BackendDisabled:
		case storageconfig.BackendRedis:
			if s.Redis == nil || s.Redis.Addr == nil || *s.Redis.Addr == "" {
				add("storage.redis.addr", "redis 后端需要配置地址")
			}
		default:
			add("storage.backend", "未知存储后端 %q，可选 memory | badger | redis | disabled", *s.Backend)
		}
	}

	if a := appConfig.API; a != nil && a.ListenAddr != nil && *a.ListenAddr != "" {
		if _, _, err := net.SplitHostPort(*a.ListenAddr); err != nil {
			add("api.listen_addr", "无效的监听地址 %q: %v", *a.ListenAddr, err)
		}
	}

	if len(errs) > 0 {
		return &ValidationErrors{Errors: errs}
	}
	return nil
}

// ValidationErrors 多个验证错误
type ValidationErrors struct {
	Errors []error
}

func (e *ValidationErrors) Error() string {
	msg := "配置验证失败，发现以下问题：\n"
	for i, err := range e.Errors {
		msg += fmt.Sprintf("  %d. %s\n", i+1, err.Error())
	}
	return msg
}

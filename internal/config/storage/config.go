// Package storage 提供连接器持久化后端配置
package storage

import (
	"path/filepath"

	"github.com/weisyn/connector/pkg/types"
)

// 支持的后端
const (
	BackendMemory   = "memory"
	BackendBadger   = "badger"
	BackendRedis    = "redis"
	BackendDisabled = "disabled" // 隐私模式：IsAvailable() 为 false，写入被跳过
)

// StorageOptions 存储配置选项
type StorageOptions struct {
	Backend   string        `json:"backend"`
	KeyPrefix string        `json:"key_prefix"`
	Memory    MemoryOptions `json:"memory"`
	Badger    BadgerOptions `json:"badger"`
	Redis     RedisOptions  `json:"redis"`
}

// MemoryOptions bigcache 配置
type MemoryOptions struct {
	Shards    int `json:"shards"`
	MaxSizeMB int `json:"max_size_mb"`
}

// BadgerOptions BadgerDB 配置
type BadgerOptions struct {
	Path       string `json:"path"`
	InMemory   bool   `json:"in_memory"`
	SyncWrites bool   `json:"sync_writes"`
}

// RedisOptions Redis 配置
type RedisOptions struct {
	Addr     string `json:"addr"`
	Password string `json:"-"`
	DB       int    `json:"db"`
}

// Config 存储配置实现
type Config struct {
	options *StorageOptions
}

// New 创建存储配置；dataDir 用于解析 badger 相对路径
func New(userConfig interface{}, dataDir string) *Config {
	options := createDefaultStorageOptions()

	if cfg, ok := userConfig.(*types.UserStorageConfig); ok && cfg != nil {
		if cfg.Backend != nil && *cfg.Backend != "" {
			options.Backend = *cfg.Backend
		}
		if cfg.KeyPrefix != nil {
			options.KeyPrefix = *cfg.KeyPrefix
		}
		if b := cfg.Badger; b != nil {
			if b.Path != nil && *b.Path != "" {
				options.Badger.Path = *b.Path
			}
			if b.InMemory != nil {
				options.Badger.InMemory = *b.InMemory
			}
			if b.SyncWrites != nil {
				options.Badger.SyncWrites = *b.SyncWrites
			}
		}
		if r := cfg.Redis; r != nil {
			if r.Addr != nil && *r.Addr != "" {
				options.Redis.Addr = *r.Addr
			}
			if r.Password != nil {
				options.Redis.Password = *r.Password
			}
			if r.DB != nil {
				options.Redis.DB = *r.DB
			}
		}
	}

	if dataDir != "" && !filepath.IsAbs(options.Badger.Path) {
		options.Badger.Path = filepath.Join(dataDir, options.Badger.Path)
	}

	return &Config{options: options}
}

func createDefaultStorageOptions() *StorageOptions {
	return &StorageOptions{
		Backend:   defaultBackend,
		KeyPrefix: defaultKeyPrefix,
		Memory: MemoryOptions{
			Shards:    defaultMemoryShards,
			MaxSizeMB: defaultMemoryMaxSizeMB,
		},
		Badger: BadgerOptions{
			Path:       defaultBadgerPath,
			SyncWrites: defaultBadgerSyncWrites,
		},
		Redis: RedisOptions{
			Addr: defaultRedisAddr,
			DB:   defaultRedisDB,
		},
	}
}

// GetOptions 获取完整的存储配置选项
func (c *Config) GetOptions() *StorageOptions {
	return c.options
}

// GetBackend 获取后端名称
func (c *Config) GetBackend() string {
	return c.options.Backend
}

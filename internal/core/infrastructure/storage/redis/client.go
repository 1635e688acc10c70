package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	storageconfig "github.com/weisyn/connector/internal/config/storage"
)

// errKeyNotFound 键不存在
var errKeyNotFound = errors.New("key not found")

// goRedisClient go-redis 客户端实现
//
// go-redis 客户端本身是并发安全的，可以在多个 goroutine 中共享。
type goRedisClient struct {
	client *goredis.Client
}

var _ redisClient = (*goRedisClient)(nil)

// newGoRedisClient 创建 go-redis 客户端并测试连接
func newGoRedisClient(options storageconfig.RedisOptions) (redisClient, error) {
	if options.Addr == "" {
		return nil, fmt.Errorf("redis address cannot be empty")
	}

	client := goredis.NewClient(&goredis.Options{
		Addr:         options.Addr,
		Password:     options.Password,
		DB:           options.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &goRedisClient{client: client}, nil
}

// Set 设置键值对
func (c *goRedisClient) Set(ctx context.Context, key string, value []byte) error {
	return c.client.Set(ctx, key, value, 0).Err()
}

// Get 获取键对应的值
func (c *goRedisClient) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, errKeyNotFound
	}
	return value, err
}

// Del 删除键
func (c *goRedisClient) Del(ctx context.Context, keys ...string) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	return c.client.Del(ctx, keys...).Result()
}

// Ping 测试连接
func (c *goRedisClient) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close 关闭连接
func (c *goRedisClient) Close() error {
	return c.client.Close()
}

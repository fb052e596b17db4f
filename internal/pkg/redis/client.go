// internal/pkg/redis/client.go
package redis

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client 封装了 go-redis 的 UniversalClient。
// 传单机地址走普通客户端，传多个地址自动走集群模式。
type Client struct {
	rdb redis.UniversalClient
}

// NewClient 创建一个 Redis 客户端。addrs 格式为 "host1:port1,host2:port2"。
func NewClient(addrs string) (*Client, error) {
	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs: strings.Split(addrs, ","),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &Client{rdb: client}, nil
}

// SetIfAbsent 在 key 不存在时写入 value 并附带过期时间。
// 返回 true 表示写入成功（首次出现），false 表示 key 已存在。
func (c *Client) SetIfAbsent(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	return c.rdb.SetNX(ctx, key, value, ttl).Result()
}

// Get 读取 key 的值。key 不存在时返回 (nil, nil)。
func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return val, nil
}

// GetClient 暴露底层客户端，供需要 pipeline 等高级能力的调用方使用。
func (c *Client) GetClient() redis.UniversalClient {
	return c.rdb
}

// Close 关闭底层连接。
func (c *Client) Close() error {
	return c.rdb.Close()
}

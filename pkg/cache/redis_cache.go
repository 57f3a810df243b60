package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisCache Redis缓存实现
// 目前只承载通知未读数缓存，读写失败不影响主流程
type RedisCache struct {
	client *redis.Client
	prefix string
}

// Config Redis配置
type Config struct {
	Host     string
	Port     int
	Password string
	DB       int
	Prefix   string
}

// NewRedisCache 创建Redis缓存实例
func NewRedisCache(config *Config) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", config.Host, config.Port),
		Password: config.Password,
		DB:       config.DB,
	})

	prefix := config.Prefix
	if prefix == "" {
		prefix = "sinkrona:cache"
	}

	return &RedisCache{
		client: client,
		prefix: prefix,
	}
}

// Close 关闭Redis连接
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Ping 测试Redis连接
func (c *RedisCache) Ping() error {
	ctx := context.Background()
	return c.client.Ping(ctx).Err()
}

// GetClient 获取底层客户端
func (c *RedisCache) GetClient() *redis.Client {
	return c.client
}

func (c *RedisCache) unreadKey(userID uint) string {
	return fmt.Sprintf("%s:notifikasi:unread:%d", c.prefix, userID)
}

// GetUnreadCount 读取用户未读通知数缓存
// 第二个返回值表示缓存是否命中
func (c *RedisCache) GetUnreadCount(userID uint) (int64, bool) {
	ctx := context.Background()

	val, err := c.client.Get(ctx, c.unreadKey(userID)).Result()
	if err != nil {
		return 0, false
	}

	count, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false
	}
	return count, true
}

// SetUnreadCount 写入用户未读通知数缓存
func (c *RedisCache) SetUnreadCount(userID uint, count int64, ttl time.Duration) error {
	ctx := context.Background()
	return c.client.Set(ctx, c.unreadKey(userID), count, ttl).Err()
}

// InvalidateUnreadCount 通知增删改后失效缓存
func (c *RedisCache) InvalidateUnreadCount(userID uint) error {
	ctx := context.Background()
	return c.client.Del(ctx, c.unreadKey(userID)).Err()
}

// Package cache 提供基于键值存储的泛型缓存与文件列表缓存.
//
// 底层使用 sonic 序列化，支持 TTL.
//
// 基本用法:
//
//	c := cache.NewCache(kvClient, "docshelf:")
//
//	err := cache.Set(ctx, c, "stats", stats, time.Minute)
//	stats, err := cache.Get[Stats](ctx, c, "stats")
//
//	files, err := cache.GetOrSet(ctx, c, "files", func() ([]Record, error) {
//	    return store.Load(ctx)
//	}, time.Minute)
//
// 缓存未命中返回 kv.ErrKeyNotFound；groupcache 后端的值不可变，
// 需要失效的数据应使用 Listing 提供的版本化键.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"

	"github.com/yeisme/docshelf/pkg/internal/storage/kv"
	nlog "github.com/yeisme/docshelf/pkg/log"
)

// Cache 基于KV存储的缓存实现.
type Cache struct {
	kvStore kv.Store
	prefix  string
}

// NewCache 创建一个新的缓存实例，所有键自动加上 prefix.
func NewCache(kvStore kv.Store, prefix string) *Cache {
	return &Cache{
		kvStore: kvStore,
		prefix:  prefix,
	}
}

func (c *Cache) key(k string) string {
	return c.prefix + k
}

// Get 泛型获取缓存值.
func Get[T any](ctx context.Context, c *Cache, key string) (T, error) {
	var zero T

	data, err := c.kvStore.Get(ctx, c.key(key))
	if err != nil {
		return zero, err
	}

	var value T
	if err := sonic.Unmarshal(data, &value); err != nil {
		return zero, fmt.Errorf("failed to unmarshal cache value: %w", err)
	}

	return value, nil
}

// Set 泛型设置缓存值.
func Set[T any](ctx context.Context, c *Cache, key string, value T, ttl time.Duration) error {
	data, err := sonic.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}

	return c.kvStore.Set(ctx, c.key(key), data, ttl)
}

// Delete 删除缓存键.
func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.kvStore.Delete(ctx, c.key(key))
}

// GetOrSet 获取缓存值，如果不存在则调用 getter 并写回；写回失败只记录日志.
func GetOrSet[T any](ctx context.Context, c *Cache, key string, getter func() (T, error), ttl time.Duration) (T, error) {
	var zero T

	if value, err := Get[T](ctx, c, key); err == nil {
		return value, nil
	}

	value, err := getter()
	if err != nil {
		return zero, err
	}

	if setErr := Set(ctx, c, key, value, ttl); setErr != nil {
		nlog.Ctx(ctx).Warn().Err(setErr).Str("key", key).Msg("cache set failed")
	}

	return value, nil
}

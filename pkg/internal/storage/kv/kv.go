// Package kv 提供用于键值存储的接口和实现，为文件列表缓存提供后端.
package kv

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/yeisme/docshelf/pkg/configs"
)

// ErrKeyNotFound 键不存在或已过期.
var ErrKeyNotFound = errors.New("key not found")

// Client 包装 Store 并记录后端类型.
type Client struct {
	Store

	Type configs.KVType
}

// Store 定义键值存储接口.
type Store interface {
	// Get 获取键的值，不存在时返回 ErrKeyNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set 设置键的值，ttl <= 0 表示不过期.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete 删除键.
	Delete(ctx context.Context, key string) error
	// Close 关闭存储连接.
	Close() error
}

// Factory 定义创建 Store 的工厂函数类型.
type Factory func(ctx context.Context, cfg configs.KVConfig) (Store, error)

// factories 存储 KV 类型到工厂的映射.
var factories = make(map[configs.KVType]Factory)

// RegisterFactory 注册 KV 工厂函数.
func RegisterFactory(kvType configs.KVType, factory Factory) {
	factories[kvType] = factory
}

// GetRegisteredKVTypes 返回已注册的 KV 类型列表.
func GetRegisteredKVTypes() []configs.KVType {
	types := make([]configs.KVType, 0, len(factories))
	for kvType := range factories {
		types = append(types, kvType)
	}

	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	return types
}

// New 根据配置创建 KV 客户端.
func New(ctx context.Context, cfg configs.KVConfig) (*Client, error) {
	factory, exists := factories[cfg.Type]
	if !exists {
		return nil, fmt.Errorf("unsupported KV type: %s", cfg.Type)
	}

	store, err := factory(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return &Client{Store: store, Type: cfg.Type}, nil
}

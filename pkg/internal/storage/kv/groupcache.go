//go:build !no_groupcache

package kv

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/golang/groupcache"

	"github.com/yeisme/docshelf/pkg/configs"
)

// GroupcacheKV 基于 groupcache 的 KV 实现.
//
// groupcache 的缓存内容不可变：Delete 只删除本地源数据，已进入 group 的值直到被 LRU 淘汰前仍可读到，
// 因此调用方应使用带版本号的键，而不是依赖删除来失效.
type GroupcacheKV struct {
	group *groupcache.Group
	pool  *groupcache.HTTPPool
	mu    sync.RWMutex
	data  map[string][]byte
}

// NewGroupcacheKV 创建 Groupcache KV 实例；同名 group 只能创建一次.
func NewGroupcacheKV(_ context.Context, cfg configs.KVConfig) (Store, error) {
	gcCfg := cfg.Groupcache

	if groupcache.GetGroup(gcCfg.Name) != nil {
		return nil, fmt.Errorf("groupcache group %q already registered", gcCfg.Name)
	}

	kv := &GroupcacheKV{data: make(map[string][]byte)}
	kv.group = groupcache.NewGroup(gcCfg.Name, gcCfg.CacheBytes, groupcache.GetterFunc(kv.load))

	// 如果有对等节点，设置 HTTP 池，由 HTTP 服务挂载 Handler
	if len(gcCfg.Peers) > 0 {
		kv.pool = groupcache.NewHTTPPoolOpts(gcCfg.Self, &groupcache.HTTPPoolOptions{})
		kv.pool.Set(gcCfg.Peers...)
	}

	return kv, nil
}

// load 是 group 未命中时的数据源.
func (g *GroupcacheKV) load(_ context.Context, key string, dest groupcache.Sink) error {
	g.mu.RLock()
	value, ok := g.data[key]
	g.mu.RUnlock()

	if !ok {
		return ErrKeyNotFound
	}

	return dest.SetBytes(value)
}

// Get 获取键的值.
func (g *GroupcacheKV) Get(ctx context.Context, key string) ([]byte, error) {
	var data []byte

	if err := g.group.Get(ctx, key, groupcache.AllocatingByteSliceSink(&data)); err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return nil, ErrKeyNotFound
		}

		return nil, fmt.Errorf("failed to get key: %w", err)
	}

	val, expired, err := unwrapTTL(data, time.Now())
	if err != nil {
		return nil, err
	}

	if expired {
		return nil, ErrKeyNotFound
	}

	return val, nil
}

// Set 设置键的值.
func (g *GroupcacheKV) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	encoded, err := wrapTTL(value, ttl, time.Now())
	if err != nil {
		return err
	}

	cp := make([]byte, len(encoded))
	copy(cp, encoded)

	g.mu.Lock()
	g.data[key] = cp
	g.mu.Unlock()

	return nil
}

// Delete 删除本地源数据.
func (g *GroupcacheKV) Delete(_ context.Context, key string) error {
	g.mu.Lock()
	delete(g.data, key)
	g.mu.Unlock()

	return nil
}

// Handler 返回对等节点通信使用的 HTTP 处理器，未配置对等节点时为 nil.
func (g *GroupcacheKV) Handler() http.Handler {
	if g.pool == nil {
		return nil
	}

	return g.pool
}

// Close groupcache 没有显式的关闭方法.
func (g *GroupcacheKV) Close() error {
	return nil
}

func init() {
	RegisterFactory(configs.KVTypeGroupcache, NewGroupcacheKV)
}

package cache

import (
	"context"
	"strconv"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	nlog "github.com/yeisme/docshelf/pkg/log"
)

// Listing 缓存一份可整体失效的列表.
//
// 每次 Invalidate 推进代数，新的读取落到新键上；旧键由 TTL 回收.
// 并发未命中通过 singleflight 合并为一次加载.
// 默认代数只保存在进程内；多个实例共享 redis/nats 等可变后端时使用 SharedGeneration，
// 代数同时写入 KV，任一实例的失效对其他实例可见.
type Listing[T any] struct {
	cache  *Cache
	name   string
	ttl    time.Duration
	shared bool
	gen    atomic.Uint64
	group  singleflight.Group
}

// ListingOption 配置 Listing.
type ListingOption func(*listingOptions)

type listingOptions struct {
	shared bool
}

// SharedGeneration 把代数保存在 KV 中，groupcache 的值不可变，不应使用.
func SharedGeneration() ListingOption {
	return func(o *listingOptions) { o.shared = true }
}

// NewListing 创建列表缓存. 初始代数取当前时间，进程重启后不会命中旧值.
func NewListing[T any](c *Cache, name string, ttl time.Duration, opts ...ListingOption) *Listing[T] {
	var o listingOptions
	for _, opt := range opts {
		opt(&o)
	}

	l := &Listing[T]{cache: c, name: name, ttl: ttl, shared: o.shared}
	l.gen.Store(uint64(time.Now().UnixNano()))

	return l
}

func (l *Listing[T]) genKey() string {
	return l.name + ":gen"
}

func (l *Listing[T]) key(gen uint64) string {
	return l.name + ":v" + strconv.FormatUint(gen, 10)
}

// generation 返回当前代数；共享模式下 KV 中没有代数时写入本地值.
func (l *Listing[T]) generation(ctx context.Context) uint64 {
	if !l.shared {
		return l.gen.Load()
	}

	gen, err := Get[uint64](ctx, l.cache, l.genKey())
	if err == nil {
		l.gen.Store(gen)

		return gen
	}

	gen = l.gen.Load()
	if err := Set(ctx, l.cache, l.genKey(), gen, 0); err != nil {
		nlog.Ctx(ctx).Warn().Err(err).Str("listing", l.name).Msg("store listing generation failed")
	}

	return gen
}

// Get 返回缓存的列表，未命中时调用 load.
func (l *Listing[T]) Get(ctx context.Context, load func(context.Context) ([]T, error)) ([]T, error) {
	key := l.key(l.generation(ctx))

	v, err, _ := l.group.Do(key, func() (any, error) {
		return GetOrSet(ctx, l.cache, key, func() ([]T, error) {
			items, err := load(ctx)
			if items == nil && err == nil {
				items = []T{}
			}

			return items, err
		}, l.ttl)
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]T)

	return items, nil
}

// Invalidate 使当前列表失效.
func (l *Listing[T]) Invalidate(ctx context.Context) {
	cur := l.generation(ctx)
	next := max(uint64(time.Now().UnixNano()), cur+1)
	l.gen.Store(next)

	if l.shared {
		if err := Set(ctx, l.cache, l.genKey(), next, 0); err != nil {
			nlog.Ctx(ctx).Warn().Err(err).Str("listing", l.name).Msg("store listing generation failed")
		}
	}

	old := l.key(cur)
	l.group.Forget(old)
	// groupcache 等不可变后端删除会失败，忽略即可
	_ = l.cache.Delete(ctx, old)
}

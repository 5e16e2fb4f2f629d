package cache_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yeisme/docshelf/pkg/cache"
	"github.com/yeisme/docshelf/pkg/configs"
	"github.com/yeisme/docshelf/pkg/internal/storage/kv"
)

// TestUser 测试用的结构体.
type TestUser struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func newCache(t *testing.T) (*cache.Cache, *kv.MemoryKV) {
	t.Helper()

	store, err := kv.NewMemoryKV(context.Background(), configs.KVConfig{})
	if err != nil {
		t.Fatal(err)
	}

	mem := store.(*kv.MemoryKV)

	return cache.NewCache(mem, "test:"), mem
}

// TestCache_GetSet 测试 Get/Set 与前缀.
func TestCache_GetSet(t *testing.T) {
	c, mem := newCache(t)
	ctx := context.Background()

	if _, err := cache.Get[TestUser](ctx, c, "user:1"); !errors.Is(err, kv.ErrKeyNotFound) {
		t.Errorf("Get() miss error = %v, want ErrKeyNotFound", err)
	}

	user := TestUser{ID: 1, Name: "Alice"}
	if err := cache.Set(ctx, c, "user:1", user, 0); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	if _, err := mem.Get(ctx, "test:user:1"); err != nil {
		t.Errorf("prefixed key not stored: %v", err)
	}

	got, err := cache.Get[TestUser](ctx, c, "user:1")
	if err != nil || got != user {
		t.Errorf("Get() = %+v, %v", got, err)
	}

	if err := c.Delete(ctx, "user:1"); err != nil {
		t.Fatal(err)
	}

	if _, err := cache.Get[TestUser](ctx, c, "user:1"); err == nil {
		t.Error("expected miss after delete")
	}
}

// TestGetOrSet 测试命中后不再调用 getter.
func TestGetOrSet(t *testing.T) {
	c, _ := newCache(t)
	ctx := context.Background()

	calls := 0
	getter := func() (TestUser, error) {
		calls++

		return TestUser{ID: 5, Name: "Eve"}, nil
	}

	for range 2 {
		if _, err := cache.GetOrSet(ctx, c, "user:5", getter, time.Minute); err != nil {
			t.Fatal(err)
		}
	}

	if calls != 1 {
		t.Errorf("getter called %d times, want 1", calls)
	}

	_, err := cache.GetOrSet(ctx, c, "user:err", func() (TestUser, error) {
		return TestUser{}, errors.New("getter error")
	}, 0)
	if err == nil || err.Error() != "getter error" {
		t.Errorf("GetOrSet() error = %v", err)
	}
}

// TestListingInvalidate 测试失效后重新加载.
func TestListingInvalidate(t *testing.T) {
	c, _ := newCache(t)
	ctx := context.Background()
	listing := cache.NewListing[string](c, "files", time.Minute)

	var loads atomic.Int32

	items := []string{"a"}
	load := func(context.Context) ([]string, error) {
		loads.Add(1)

		return append([]string(nil), items...), nil
	}

	got, err := listing.Get(ctx, load)
	if err != nil || len(got) != 1 {
		t.Fatalf("Get() = %v, %v", got, err)
	}

	items = append(items, "b")

	if got, _ = listing.Get(ctx, load); len(got) != 1 {
		t.Errorf("cached Get() = %v, want stale single item", got)
	}

	listing.Invalidate(ctx)

	if got, _ = listing.Get(ctx, load); len(got) != 2 {
		t.Errorf("Get() after Invalidate = %v, want 2 items", got)
	}

	if loads.Load() != 2 {
		t.Errorf("loads = %d, want 2", loads.Load())
	}
}

// TestListingSharedGeneration 测试共享代数时一个实例的失效对另一个实例可见.
func TestListingSharedGeneration(t *testing.T) {
	c, _ := newCache(t)
	ctx := context.Background()

	a := cache.NewListing[string](c, "files", time.Minute, cache.SharedGeneration())
	b := cache.NewListing[string](c, "files", time.Minute, cache.SharedGeneration())

	items := []string{"a"}

	var loadsA, loadsB atomic.Int32

	loader := func(n *atomic.Int32) func(context.Context) ([]string, error) {
		return func(context.Context) ([]string, error) {
			n.Add(1)

			return append([]string(nil), items...), nil
		}
	}

	if got, err := a.Get(ctx, loader(&loadsA)); err != nil || len(got) != 1 {
		t.Fatalf("a.Get() = %v, %v", got, err)
	}

	if got, _ := b.Get(ctx, loader(&loadsB)); len(got) != 1 || loadsB.Load() != 0 {
		t.Errorf("b.Get() = %v, loads = %d; want the entry cached by a", got, loadsB.Load())
	}

	items = append(items, "b")
	a.Invalidate(ctx)

	if got, _ := b.Get(ctx, loader(&loadsB)); len(got) != 2 || loadsB.Load() != 1 {
		t.Errorf("b.Get() after a.Invalidate = %v, loads = %d", got, loadsB.Load())
	}
}

// TestListingEmpty 测试空列表缓存为 [] 而不是 nil.
func TestListingEmpty(t *testing.T) {
	c, _ := newCache(t)
	listing := cache.NewListing[string](c, "empty", time.Minute)

	got, err := listing.Get(context.Background(), func(context.Context) ([]string, error) { return nil, nil })
	if err != nil {
		t.Fatal(err)
	}

	if got == nil || len(got) != 0 {
		t.Errorf("Get() = %#v, want empty non-nil slice", got)
	}
}

// TestListingConcurrent 测试并发未命中.
func TestListingConcurrent(t *testing.T) {
	c, _ := newCache(t)
	listing := cache.NewListing[int](c, "concurrent", time.Minute)

	var wg sync.WaitGroup

	for range 20 {
		wg.Go(func() {
			got, err := listing.Get(context.Background(), func(context.Context) ([]int, error) {
				return []int{1, 2, 3}, nil
			})
			if err != nil || len(got) != 3 {
				t.Errorf("Get() = %v, %v", got, err)
			}
		})
	}

	wg.Wait()
}

package kv_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/yeisme/docshelf/pkg/configs"
	"github.com/yeisme/docshelf/pkg/internal/storage/kv"
)

func groupcacheConfig(name string) configs.KVConfig {
	return configs.KVConfig{
		Type: configs.KVTypeGroupcache,
		Groupcache: configs.GroupcacheKVConfig{
			Name:       name,
			CacheBytes: 8 << 20,
		},
	}
}

// TestStores 对进程内可用的后端执行相同的基本行为测试.
func TestStores(t *testing.T) {
	ctx := context.Background()

	cases := map[string]configs.KVConfig{
		"memory":     {Type: configs.KVTypeMemory},
		"groupcache": groupcacheConfig("test-stores"),
	}

	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			client, err := kv.New(ctx, cfg)
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			defer client.Close()

			if _, err := client.Get(ctx, "missing"); !errors.Is(err, kv.ErrKeyNotFound) {
				t.Errorf("Get(missing) error = %v, want ErrKeyNotFound", err)
			}

			if err := client.Set(ctx, "k1", []byte("v1"), 0); err != nil {
				t.Fatalf("Set() error = %v", err)
			}

			got, err := client.Get(ctx, "k1")
			if err != nil || string(got) != "v1" {
				t.Errorf("Get(k1) = %q, %v; want v1", got, err)
			}
		})
	}
}

// TestMemoryTTL 测试内存后端的过期.
func TestMemoryTTL(t *testing.T) {
	ctx := context.Background()

	store, err := kv.NewMemoryKV(ctx, configs.KVConfig{})
	if err != nil {
		t.Fatal(err)
	}

	if err := store.Set(ctx, "short", []byte("x"), 20*time.Millisecond); err != nil {
		t.Fatal(err)
	}

	if _, err := store.Get(ctx, "short"); err != nil {
		t.Fatalf("Get() before expiry error = %v", err)
	}

	time.Sleep(40 * time.Millisecond)

	if _, err := store.Get(ctx, "short"); !errors.Is(err, kv.ErrKeyNotFound) {
		t.Errorf("Get() after expiry error = %v, want ErrKeyNotFound", err)
	}

	if err := store.Set(ctx, "gone", []byte("x"), 0); err != nil {
		t.Fatal(err)
	}

	_ = store.Delete(ctx, "gone")

	if _, err := store.Get(ctx, "gone"); !errors.Is(err, kv.ErrKeyNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrKeyNotFound", err)
	}
}

// TestGroupcacheTTL 测试 groupcache 后端通过信封实现过期.
func TestGroupcacheTTL(t *testing.T) {
	ctx := context.Background()

	store, err := kv.NewGroupcacheKV(ctx, groupcacheConfig("test-ttl"))
	if err != nil {
		t.Fatal(err)
	}

	if err := store.Set(ctx, "k", []byte("v"), 20*time.Millisecond); err != nil {
		t.Fatal(err)
	}

	if got, err := store.Get(ctx, "k"); err != nil || string(got) != "v" {
		t.Fatalf("Get() = %q, %v", got, err)
	}

	time.Sleep(40 * time.Millisecond)

	if _, err := store.Get(ctx, "k"); !errors.Is(err, kv.ErrKeyNotFound) {
		t.Errorf("Get() after expiry error = %v, want ErrKeyNotFound", err)
	}

	if _, err := kv.NewGroupcacheKV(ctx, groupcacheConfig("test-ttl")); err == nil {
		t.Error("expected error for duplicate group name")
	}
}

// TestUnsupportedType 测试未知类型.
func TestUnsupportedType(t *testing.T) {
	if _, err := kv.New(context.Background(), configs.KVConfig{Type: "etcd"}); err == nil {
		t.Error("expected error for unsupported type")
	}
}

func BenchmarkMemoryKV(b *testing.B) {
	ctx := context.Background()

	store, err := kv.NewMemoryKV(ctx, configs.KVConfig{})
	if err != nil {
		b.Fatalf("create memory kv: %v", err)
	}

	value := make([]byte, 256)

	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			key := fmt.Sprintf("k:%d", i%1024)
			_ = store.Set(ctx, key, value, time.Minute)
			_, _ = store.Get(ctx, key)
			i++
		}
	})
}

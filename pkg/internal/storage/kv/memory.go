package kv

import (
	"context"
	"sync"
	"time"

	"github.com/yeisme/docshelf/pkg/configs"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryKV 进程内 KV 实现，过期键在读取时惰性删除.
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string]memoryEntry
	now  func() time.Time
}

// NewMemoryKV 创建内存 KV 实例.
func NewMemoryKV(_ context.Context, _ configs.KVConfig) (Store, error) {
	return &MemoryKV{data: make(map[string]memoryEntry), now: time.Now}, nil
}

// Get 获取键的值.
func (m *MemoryKV) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	e, ok := m.data[key]
	m.mu.RUnlock()

	if !ok {
		return nil, ErrKeyNotFound
	}

	if !e.expiresAt.IsZero() && !m.now().Before(e.expiresAt) {
		m.mu.Lock()
		if cur, still := m.data[key]; still && cur.expiresAt.Equal(e.expiresAt) {
			delete(m.data, key)
		}
		m.mu.Unlock()

		return nil, ErrKeyNotFound
	}

	// 返回副本
	out := make([]byte, len(e.value))
	copy(out, e.value)

	return out, nil
}

// Set 设置键的值.
func (m *MemoryKV) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	e := memoryEntry{value: make([]byte, len(value))}
	copy(e.value, value)

	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}

	m.mu.Lock()
	m.data[key] = e
	m.mu.Unlock()

	return nil
}

// Delete 删除键.
func (m *MemoryKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.data, key)
	m.mu.Unlock()

	return nil
}

// Len 返回当前条目数（包含尚未惰性删除的过期条目）.
func (m *MemoryKV) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.data)
}

// Close 内存实现无需操作.
func (m *MemoryKV) Close() error {
	return nil
}

func init() {
	RegisterFactory(configs.KVTypeMemory, NewMemoryKV)
}

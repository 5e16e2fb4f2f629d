//go:build !no_nats

package kv

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/yeisme/docshelf/pkg/configs"
)

// NATSKV 基于 NATS JetStream KV 的实现；bucket 不支持按键 TTL，使用信封惰性过期.
type NATSKV struct {
	kv   nats.KeyValue
	conn *nats.Conn
}

// NewNATSKV 创建 NATS KV 实例，bucket 不存在时自动创建.
func NewNATSKV(_ context.Context, cfg configs.KVConfig) (Store, error) {
	natsCfg := cfg.NATS

	opts := []nats.Option{nats.Name(configs.AppName + "-kv")}
	if natsCfg.User != "" {
		opts = append(opts, nats.UserInfo(natsCfg.User, natsCfg.Password))
	}

	nc, err := nats.Connect(natsCfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()

		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	kv, err := js.KeyValue(natsCfg.Bucket)
	if errors.Is(err, nats.ErrBucketNotFound) {
		kv, err = js.CreateKeyValue(&nats.KeyValueConfig{
			Bucket:      natsCfg.Bucket,
			Description: configs.AppName + " listing cache",
		})
	}

	if err != nil {
		nc.Close()

		return nil, fmt.Errorf("failed to create/get KV bucket: %w", err)
	}

	return &NATSKV{kv: kv, conn: nc}, nil
}

// natsKey NATS KV 的键不允许包含 ':' 等字符，统一替换为 '.'.
func natsKey(key string) string {
	return strings.NewReplacer(":", ".", " ", "_", "/", ".").Replace(key)
}

// Get 获取键的值.
func (n *NATSKV) Get(_ context.Context, key string) ([]byte, error) {
	entry, err := n.kv.Get(natsKey(key))
	if errors.Is(err, nats.ErrKeyNotFound) {
		return nil, ErrKeyNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get key: %w", err)
	}

	val, expired, err := unwrapTTL(entry.Value(), time.Now())
	if err != nil {
		return nil, err
	}

	if expired {
		_ = n.kv.Delete(natsKey(key))

		return nil, ErrKeyNotFound
	}

	return val, nil
}

// Set 设置键的值.
func (n *NATSKV) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	encoded, err := wrapTTL(value, ttl, time.Now())
	if err != nil {
		return err
	}

	if _, err := n.kv.Put(natsKey(key), encoded); err != nil {
		return fmt.Errorf("failed to set key: %w", err)
	}

	return nil
}

// Delete 删除键.
func (n *NATSKV) Delete(_ context.Context, key string) error {
	if err := n.kv.Delete(natsKey(key)); err != nil && !errors.Is(err, nats.ErrKeyNotFound) {
		return fmt.Errorf("failed to delete key: %w", err)
	}

	return nil
}

// Close 关闭 NATS 连接.
func (n *NATSKV) Close() error {
	n.conn.Close()

	return nil
}

func init() {
	RegisterFactory(configs.KVTypeNATS, NewNATSKV)
}

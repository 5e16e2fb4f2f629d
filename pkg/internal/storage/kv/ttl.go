package kv

import (
	"bytes"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
)

// ttlMagic 不支持按键过期的后端（NATS KV、groupcache）共用的 TTL 包装前缀.
var ttlMagic = []byte("DSTTL1:")

type ttlEnvelope struct {
	V []byte `json:"v"`
	E int64  `json:"e"` // 过期时间，unix 毫秒
}

// wrapTTL ttl > 0 时把值包装为带过期时间的信封，否则原样返回.
func wrapTTL(value []byte, ttl time.Duration, now time.Time) ([]byte, error) {
	if ttl <= 0 {
		return value, nil
	}

	b, err := sonic.Marshal(ttlEnvelope{V: value, E: now.Add(ttl).UnixMilli()})
	if err != nil {
		return nil, fmt.Errorf("marshal ttl envelope: %w", err)
	}

	return append(append([]byte{}, ttlMagic...), b...), nil
}

// unwrapTTL 解开信封并判断是否过期；未包装的值视为永不过期.
func unwrapTTL(b []byte, now time.Time) ([]byte, bool, error) {
	if !bytes.HasPrefix(b, ttlMagic) {
		return b, false, nil
	}

	var env ttlEnvelope
	if err := sonic.Unmarshal(b[len(ttlMagic):], &env); err != nil {
		return nil, false, fmt.Errorf("unmarshal ttl envelope: %w", err)
	}

	if env.E > 0 && now.UnixMilli() >= env.E {
		return nil, true, nil
	}

	return env.V, false, nil
}

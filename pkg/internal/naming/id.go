package naming

import (
	"crypto/rand"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid"
)

// IDSource 生成以时间戳为前缀、单调递增的 ULID.
// 同一毫秒内的连续调用也保证不重复.
type IDSource struct {
	mu      sync.Mutex
	now     func() time.Time
	entropy io.Reader
}

// NewIDSource 创建 ID 生成器，now 为 nil 时使用 time.Now.
func NewIDSource(now func() time.Time) *IDSource {
	if now == nil {
		now = time.Now
	}

	return &IDSource{
		now:     now,
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// New 返回新的 ID 字符串.
func (s *IDSource) New() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := ulid.New(ulid.Timestamp(s.now()), s.entropy)
	if err != nil {
		return "", err
	}

	return id.String(), nil
}

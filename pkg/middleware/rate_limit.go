package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/yeisme/docshelf/pkg/configs"
)

const (
	limiterIdleTTL     = 10 * time.Minute
	limiterSweepPeriod = time.Minute
)

type keyedLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterSet 按 key 维护令牌桶，闲置超过 limiterIdleTTL 的条目在访问时顺带清理.
type limiterSet struct {
	mu        sync.Mutex
	rps       rate.Limit
	burst     int
	items     map[string]*keyedLimiter
	lastSweep time.Time
}

func (s *limiterSet) get(key string, now time.Time) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	if now.Sub(s.lastSweep) > limiterSweepPeriod {
		for k, item := range s.items {
			if now.Sub(item.lastSeen) > limiterIdleTTL {
				delete(s.items, k)
			}
		}

		s.lastSweep = now
	}

	item, ok := s.items[key]
	if !ok {
		item = &keyedLimiter{limiter: rate.NewLimiter(s.rps, s.burst)}
		s.items[key] = item
	}

	item.lastSeen = now

	return item.limiter
}

// RateLimitMiddleware 返回一个基于配置的限流中间件，超限时返回 429.
func RateLimitMiddleware(cfg configs.RateLimitConfig) gin.HandlerFunc {
	if !cfg.Enabled || cfg.RPS <= 0 {
		return noop
	}

	// 选择 key 维度
	keyMode := strings.TrimSpace(cfg.Key)
	if keyMode == "" || strings.EqualFold(keyMode, "global") {
		limiter := rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Burst)

		return func(c *gin.Context) {
			if !limiter.Allow() {
				tooManyRequests(c)

				return
			}

			c.Next()
		}
	}

	set := &limiterSet{
		rps:   rate.Limit(cfg.RPS),
		burst: cfg.Burst,
		items: map[string]*keyedLimiter{},
	}

	header := ""
	if len(keyMode) > len("header:") && strings.EqualFold(keyMode[:len("header:")], "header:") {
		header = keyMode[len("header:"):]
	}

	return func(c *gin.Context) {
		var key string
		if header != "" {
			key = c.GetHeader(header)
		}

		if key == "" { // 默认与 fallback 都按客户端 IP
			key = clientIP(c)
		}

		if key == "" {
			key = "unknown"
		}

		if !set.get(key, time.Now()).Allow() {
			tooManyRequests(c)

			return
		}

		c.Next()
	}
}

func tooManyRequests(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
		"error": "Too many requests, please try again later",
		"code":  "rate_limited",
	})
}

func clientIP(c *gin.Context) string {
	ip := c.ClientIP()
	if ip == "" {
		// 进一步尝试从 RemoteAddr
		host, _, err := net.SplitHostPort(c.Request.RemoteAddr)
		if err == nil {
			ip = host
		} else {
			ip = c.Request.RemoteAddr
		}
	}

	return ip
}

package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/docshelf/pkg/metrics"
)

// PrometheusMiddleware Prometheus监控中间件，按路由模板而不是原始路径打标签.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := routeLabel(c)
		method := c.Request.Method

		metrics.RequestCounter.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.RequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

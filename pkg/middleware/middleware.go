// Package middleware 提供 gin 中间件：请求日志、指标、追踪、跨域、压缩、限流与熔断.
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// noop 未启用时使用的空中间件.
func noop(c *gin.Context) {
	c.Next()
}

// routeLabel 返回用于指标与 span 名称的路由模板，未匹配路由时返回固定值避免标签基数失控.
func routeLabel(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}

	return "unmatched"
}

// hasAnyPrefix 判断 path 是否以 prefixes 中任一前缀开头.
func hasAnyPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(path, p) {
			return true
		}
	}

	return false
}

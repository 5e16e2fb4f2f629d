package middleware

import (
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
)

// GzipMiddleware 压缩 JSON 响应，excluded 中的前缀（文件流）保持原样以免破坏 Range 与 Content-Length.
func GzipMiddleware(excluded ...string) gin.HandlerFunc {
	return gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths(excluded))
}

package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterMetricsRoute 注册 Prometheus 指标路由.
func RegisterMetricsRoute(r gin.IRouter, path string, handler http.Handler) {
	r.GET(path, gin.WrapH(handler))
}

package middleware

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yeisme/docshelf/pkg/configs"
)

var (
	corsAllowHeaders  = []string{"Origin", "Content-Type", "Authorization", "X-Requested-With", "Cache-Control", "Accept", "Range"}
	corsExposeHeaders = []string{"Content-Length", "Content-Range", "Content-Type", "Content-Disposition"}
)

// CORSMiddleware CORS中间件，允许前端预览器发起 Range 请求并读取 Content-Disposition.
func CORSMiddleware(cfg configs.CORSConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return noop
	}

	config := cors.DefaultConfig()
	config.AllowMethods = []string{
		http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions,
	}
	config.AllowHeaders = corsAllowHeaders
	config.ExposeHeaders = corsExposeHeaders
	config.AllowCredentials = cfg.AllowCredentials
	config.MaxAge = time.Duration(cfg.MaxAgeHours) * time.Hour

	if len(cfg.AllowOrigins) == 0 || (len(cfg.AllowOrigins) == 1 && cfg.AllowOrigins[0] == "*") {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = cfg.AllowOrigins
	}

	return cors.New(config)
}

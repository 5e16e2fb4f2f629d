// Package router 管理路由配置，只负责把路径和处理器绑定到 gin 引擎，
// 处理器的实现由 pkg/internal/handle 提供并注入进来.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// FileHandlers 文件接口处理器.
type FileHandlers interface {
	Upload(c *gin.Context)
	List(c *gin.Context)
	Delete(c *gin.Context)
	Serve(prefix string) gin.HandlerFunc
	Inspect(prefix string) gin.HandlerFunc
}

// MaintenanceHandlers 维护接口处理器.
type MaintenanceHandlers interface {
	Orphans(c *gin.Context)
	Jobs(c *gin.Context)
	Health(c *gin.Context)
}

// RegisterFilesRoutes 将文件接口绑定到 api 路由组（假定上层使用 e.Group("/api")）：
//
//	POST   /upload            -> Upload（uploadMW 在处理器之前执行）
//	GET    /files             -> List
//	DELETE /files/:id         -> Delete
//	GET    /file/*filename    -> Serve
//	GET    /inspect/*filename -> Inspect
func RegisterFilesRoutes(api *gin.RouterGroup, h FileHandlers, uploadMW ...gin.HandlerFunc) {
	api.POST("/upload", append(uploadMW, h.Upload)...)
	api.GET("/files", h.List)
	api.DELETE("/files/:id", h.Delete)

	serve := h.Serve(api.BasePath() + "/file")
	api.GET("/file/*filename", serve)
	api.HEAD("/file/*filename", serve)

	api.GET("/inspect/*filename", h.Inspect(api.BasePath()+"/inspect"))
}

// RegisterStaticRoute 注册上传目录的静态访问路由，规则与 /api/file 相同.
func RegisterStaticRoute(r gin.IRouter, publicPath string, h FileHandlers) {
	serve := h.Serve(publicPath)
	g := r.Group(publicPath)
	g.GET("/*filepath", serve)
	g.HEAD("/*filepath", serve)
}

// RegisterMaintenanceRoutes 注册维护与健康检查路由.
func RegisterMaintenanceRoutes(api *gin.RouterGroup, h MaintenanceHandlers, probe gin.HandlerFunc) {
	api.GET("/health", h.Health)

	if probe != nil {
		api.GET("/test-cors", probe)
		api.OPTIONS("/test-cors", func(c *gin.Context) { c.Status(http.StatusOK) })
	}

	m := api.Group("/maintenance")
	{
		m.GET("/orphans", h.Orphans)
		m.GET("/jobs", h.Jobs)
	}
}

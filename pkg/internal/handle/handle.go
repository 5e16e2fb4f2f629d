// Package handle 提供 HTTP 请求处理器的实现，负责参数解析与错误映射，业务逻辑在 service 包中.
package handle

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/docshelf/pkg/configs"
	"github.com/yeisme/docshelf/pkg/internal/model"
	"github.com/yeisme/docshelf/pkg/internal/service"
	"github.com/yeisme/docshelf/pkg/internal/types"
	"github.com/yeisme/docshelf/pkg/log"
	"github.com/yeisme/docshelf/pkg/scheduler"
)

// 错误响应中的 code.
const (
	CodeNotFound = "not_found"
	CodeInternal = "internal_error"
	CodeBadParam = "invalid_param"
)

// HealthChecker 返回各组件的健康状态，nil 表示正常.
type HealthChecker interface {
	Health(ctx context.Context) map[string]error
}

// Options 处理器依赖. Files 必填.
type Options struct {
	Files     *service.FileService
	Upload    configs.UploadConfig
	Scheduler *scheduler.Scheduler
	Health    HealthChecker
}

// Handlers 文件接口与维护接口的处理器集合.
type Handlers struct {
	files     *service.FileService
	upload    configs.UploadConfig
	scheduler *scheduler.Scheduler
	health    HealthChecker
}

// New 创建 Handlers.
func New(opts Options) *Handlers {
	return &Handlers{
		files:     opts.Files,
		upload:    opts.Upload,
		scheduler: opts.Scheduler,
		health:    opts.Health,
	}
}

func (h *Handlers) view(rec model.FileRecord) types.FileView {
	return types.NewFileView(rec, h.files.PublicURL(rec.StoredName))
}

// fail 把 service 错误映射为 {error, code} 响应. 500 时只返回 generic 消息.
func fail(c *gin.Context, err error, generic string) {
	var verr *service.ValidationError

	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: verr.Message, Code: verr.Code})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, types.ErrorResponse{Error: "File not found", Code: CodeNotFound})
	default:
		log.Ctx(c.Request.Context()).Error().Err(err).Str("path", c.Request.URL.Path).Msg(generic)
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: generic, Code: CodeInternal})
	}
}

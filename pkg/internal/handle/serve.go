package handle

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/docshelf/pkg/internal/naming"
	"github.com/yeisme/docshelf/pkg/internal/service"
)

// Serve 返回一个按前缀读取上传文件的处理器，/api/file 与 /uploads 共用.
// 文件名取自原始转义路径并只解码一次.
//
//	@Summary		读取文件
//	@Description	返回文件内容，Content-Type 由扩展名决定，禁止缓存，支持 Range.
//	@Tags			文件
//	@Produce		octet-stream
//	@Param			filename	path		string				true	"存储名"
//	@Success		200			{file}		file				"文件内容"
//	@Failure		404			{object}	types.ErrorResponse	"文件不存在"
//	@Router			/api/file/{filename} [get]
func (h *Handlers) Serve(prefix string) gin.HandlerFunc {
	prefix = strings.TrimRight(prefix, "/") + "/"

	return func(c *gin.Context) {
		name, ok := requestName(c, prefix)
		if !ok {
			fail(c, service.ErrNotFound, "Failed to read file")

			return
		}

		rf, err := h.files.Resolve(c.Request.Context(), name)
		if err != nil {
			fail(c, err, "Failed to read file")

			return
		}
		defer rf.Close()

		hdr := c.Writer.Header()
		hdr.Set("Cache-Control", "no-cache, no-store, must-revalidate")
		hdr.Set("Pragma", "no-cache")
		hdr.Set("Expires", "0")
		hdr.Set("Content-Type", rf.ContentType)
		hdr.Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", rf.Name))

		http.ServeContent(c.Writer, c.Request, rf.Name, rf.Info.ModTime(), rf.File)
	}
}

// Inspect 返回文件诊断信息.
//
//	@Summary		文件诊断
//	@Description	返回文件大小、文件头、嗅探类型与访问地址.
//	@Tags			维护
//	@Produce		json
//	@Param			filename	path		string				true	"存储名"
//	@Success		200			{object}	service.Inspection	"诊断信息"
//	@Failure		404			{object}	types.ErrorResponse	"文件不存在"
//	@Router			/api/inspect/{filename} [get]
func (h *Handlers) Inspect(prefix string) gin.HandlerFunc {
	prefix = strings.TrimRight(prefix, "/") + "/"

	return func(c *gin.Context) {
		name, ok := requestName(c, prefix)
		if !ok {
			fail(c, service.ErrNotFound, "Failed to inspect file")

			return
		}

		info, err := h.files.Inspect(c.Request.Context(), name)
		if err != nil {
			fail(c, err, "Failed to inspect file")

			return
		}

		c.JSON(http.StatusOK, info)
	}
}

// requestName 从原始转义路径中去掉路由前缀并解码一次.
func requestName(c *gin.Context, prefix string) (string, bool) {
	escaped, ok := strings.CutPrefix(c.Request.URL.EscapedPath(), prefix)
	if !ok {
		return "", false
	}

	name, err := naming.DecodeOnce(escaped)
	if err != nil {
		return "", false
	}

	return name, true
}

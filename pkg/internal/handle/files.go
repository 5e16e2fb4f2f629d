package handle

import (
	"errors"
	"mime"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/docshelf/pkg/internal/service"
	"github.com/yeisme/docshelf/pkg/internal/types"
	"github.com/yeisme/docshelf/pkg/log"
)

// Upload 处理文件上传.
//
//	@Summary		上传文件
//	@Description	multipart 表单字段 file，校验类型与大小后保存并写入清单.
//	@Tags			文件
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file	formData	file					true	"上传的文件"
//	@Success		201		{object}	types.UploadResponse	"上传成功"
//	@Failure		400		{object}	types.ErrorResponse		"校验失败"
//	@Failure		500		{object}	types.ErrorResponse		"服务器内部错误"
//	@Router			/api/upload [post]
func (h *Handlers) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.upload.RequestLimit())

	fh, err := c.FormFile(h.upload.FormField)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			fail(c, service.TooLarge(h.upload.MaxSizeMB), "Upload failed")

			return
		}

		log.Ctx(c.Request.Context()).Debug().Err(err).Msg("no file in upload request")
		fail(c, service.ErrNoFile, "Upload failed")

		return
	}

	f, err := fh.Open()
	if err != nil {
		fail(c, err, "Upload failed")

		return
	}
	defer f.Close()

	rec, err := h.files.Upload(c.Request.Context(), service.UploadInput{
		Filename:     originalName(fh),
		DeclaredType: fh.Header.Get("Content-Type"),
		Size:         fh.Size,
		Content:      f,
	})
	if err != nil {
		fail(c, err, "Upload failed")

		return
	}

	c.JSON(http.StatusCreated, types.UploadResponse{
		Message: "File uploaded successfully",
		File:    h.view(rec),
	})
}

// originalName 返回客户端提交的完整文件名.
// multipart 只保留 filename 的最后一段路径，这里从 Content-Disposition 重新解析.
func originalName(fh *multipart.FileHeader) string {
	_, params, err := mime.ParseMediaType(fh.Header.Get("Content-Disposition"))
	if err == nil && params["filename"] != "" {
		return params["filename"]
	}

	return fh.Filename
}

// List 返回清单中的全部文件.
//
//	@Summary		文件列表
//	@Description	按上传顺序返回全部文件，没有文件时返回空数组.
//	@Tags			文件
//	@Produce		json
//	@Success		200	{array}		types.FileView		"文件列表"
//	@Failure		500	{object}	types.ErrorResponse	"服务器内部错误"
//	@Router			/api/files [get]
func (h *Handlers) List(c *gin.Context) {
	records, err := h.files.List(c.Request.Context())
	if err != nil {
		fail(c, err, "Failed to read files")

		return
	}

	views := make([]types.FileView, 0, len(records))
	for _, rec := range records {
		views = append(views, h.view(rec))
	}

	c.JSON(http.StatusOK, views)
}

// Delete 删除文件记录与磁盘文件.
//
//	@Summary		删除文件
//	@Description	删除清单记录，磁盘文件尽力删除.
//	@Tags			文件
//	@Produce		json
//	@Param			id	path		string					true	"文件 ID"
//	@Success		200	{object}	types.DeleteResponse	"删除成功"
//	@Failure		404	{object}	types.ErrorResponse		"文件不存在"
//	@Failure		500	{object}	types.ErrorResponse		"服务器内部错误"
//	@Router			/api/files/{id} [delete]
func (h *Handlers) Delete(c *gin.Context) {
	var param types.FileIDParam
	if err := c.ShouldBindUri(&param); err != nil {
		fail(c, service.ErrNotFound, "Failed to delete file")

		return
	}

	rec, err := h.files.Delete(c.Request.Context(), param.ID)
	if err != nil {
		fail(c, err, "Failed to delete file")

		return
	}

	c.JSON(http.StatusOK, types.DeleteResponse{
		Message: "File deleted successfully",
		File:    h.view(rec),
	})
}

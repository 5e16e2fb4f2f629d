// Package types 定义 HTTP 接口的请求与响应结构.
package types

import (
	"time"

	"github.com/yeisme/docshelf/pkg/internal/model"
)

// FileView 对外返回的文件信息.
type FileView struct {
	ID           string    `json:"id"`
	OriginalName string    `json:"originalName"`
	StoredName   string    `json:"storedName"`
	MimeType     string    `json:"mimeType"`
	Size         int64     `json:"size"`
	UploadedAt   time.Time `json:"uploadedAt"`
	Checksum     string    `json:"checksum,omitempty"`
	RelativePath string    `json:"relativePath"` // 相对上传根目录的路径
	URL          string    `json:"url"`          // 静态访问地址
}

// NewFileView 根据记录与访问地址构造 FileView.
func NewFileView(rec model.FileRecord, url string) FileView {
	return FileView{
		ID:           rec.ID,
		OriginalName: rec.OriginalName,
		StoredName:   rec.StoredName,
		MimeType:     rec.MimeType,
		Size:         rec.Size,
		UploadedAt:   rec.UploadedAt,
		Checksum:     rec.Checksum,
		RelativePath: rec.RelativePath(),
		URL:          url,
	}
}

// UploadResponse 上传成功响应.
type UploadResponse struct {
	Message string   `json:"message"`
	File    FileView `json:"file"`
}

// DeleteResponse 删除成功响应.
type DeleteResponse struct {
	Message string   `json:"message"`
	File    FileView `json:"file"`
}

// ErrorResponse 所有失败响应的结构.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// FileIDParam 删除接口的路径参数.
type FileIDParam struct {
	ID string `uri:"id" rule:"required,max=64,safename"`
}

// Package model 定义持久化的数据模型.
package model

import (
	"time"
)

// FileRecord 一次成功上传在清单中的记录，创建后不再修改.
type FileRecord struct {
	// ID 上传时分配的 ULID，时间有序且在清单中唯一
	ID string `gorm:"primaryKey;size:26" json:"id"`
	// OriginalName 用户提交的原始文件名，仅用于展示，不参与任何文件系统访问
	OriginalName string `gorm:"size:1024" json:"originalName"`
	// StoredName 磁盘上的扁平文件名，不超过 naming.MaxStoredNameLen 字节
	StoredName string `gorm:"size:255;uniqueIndex" json:"storedName"`
	// MimeType 上传时客户端声明的类型，仅供参考
	MimeType   string    `gorm:"size:255"   json:"mimeType"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `gorm:"index"      json:"uploadedAt"`
	// Checksum 写入时计算的 xxhash64（十六进制）
	Checksum string `gorm:"size:16" json:"checksum,omitempty"`
}

// TableName 数据库表名.
func (FileRecord) TableName() string {
	return "file_records"
}

// RelativePath 相对于上传根目录的路径；目录结构是扁平的，因此就是存储名.
func (r FileRecord) RelativePath() string {
	return r.StoredName
}

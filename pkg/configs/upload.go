package configs

import (
	"mime"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultUploadDir         = "uploads"  // 上传根目录（扁平结构）
	DefaultUploadMaxSizeMB   = 50         // 单文件最大尺寸（MiB）
	DefaultUploadPublicPath  = "/uploads" // 静态访问前缀
	DefaultUploadFormField   = "file"     // multipart 字段名
	DefaultUploadAllowEmpty  = false      // 是否允许空文件
	DefaultUploadVerifySig   = false      // 是否校验内容签名
	DefaultOrphanGraceMinute = 10         // 孤儿文件清理宽限期（分钟）

	// MultipartSlackBytes 请求体上限在文件上限之外额外留给 multipart 边界与表单头的字节数.
	MultipartSlackBytes = 1 << 20
)

// DefaultAllowedTypes 默认允许上传的 MIME 类型.
var DefaultAllowedTypes = []string{
	"application/pdf",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"application/msword",
	"image/png",
	"image/jpeg",
	"image/jpg",
	"image/gif",
	"image/bmp",
	"image/webp",
}

// UploadConfig 上传相关配置.
type UploadConfig struct {
	Dir             string   `mapstructure:"dir"               rule:"required"`
	MaxSizeMB       int64    `mapstructure:"max_size_mb"       rule:"min=1"`
	AllowedTypes    []string `mapstructure:"allowed_types"     rule:"required,min=1"`
	PublicPath      string   `mapstructure:"public_path"       rule:"required,startswith=/"`
	FormField       string   `mapstructure:"form_field"        rule:"required"`
	AllowEmpty      bool     `mapstructure:"allow_empty"`
	VerifySignature bool     `mapstructure:"verify_signature"`
	OrphanGraceMin  int      `mapstructure:"orphan_grace_min"  rule:"min=0"`
}

// MaxBytes 返回单文件最大字节数.
func (c *UploadConfig) MaxBytes() int64 {
	return c.MaxSizeMB << 20
}

// RequestLimit 返回请求体允许的最大字节数.
func (c *UploadConfig) RequestLimit() int64 {
	return c.MaxBytes() + MultipartSlackBytes
}

// OrphanGrace 返回孤儿文件清理宽限期.
func (c *UploadConfig) OrphanGrace() time.Duration {
	return time.Duration(c.OrphanGraceMin) * time.Minute
}

// IsAllowed 判断声明的 MIME 类型是否在允许列表中，忽略参数与大小写.
func (c *UploadConfig) IsAllowed(declared string) bool {
	mt := NormalizeMediaType(declared)
	if mt == "" {
		return false
	}

	return slices.ContainsFunc(c.AllowedTypes, func(t string) bool {
		return strings.EqualFold(strings.TrimSpace(t), mt)
	})
}

// NormalizeMediaType 去掉参数并转为小写，例如 "Image/PNG; q=1" -> "image/png".
func NormalizeMediaType(declared string) string {
	declared = strings.TrimSpace(declared)
	if declared == "" {
		return ""
	}

	if mt, _, err := mime.ParseMediaType(declared); err == nil {
		return mt
	}

	if i := strings.IndexByte(declared, ';'); i >= 0 {
		declared = declared[:i]
	}

	return strings.ToLower(strings.TrimSpace(declared))
}

func (c *UploadConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("upload.dir", DefaultUploadDir)
	v.SetDefault("upload.max_size_mb", DefaultUploadMaxSizeMB)
	v.SetDefault("upload.allowed_types", DefaultAllowedTypes)
	v.SetDefault("upload.public_path", DefaultUploadPublicPath)
	v.SetDefault("upload.form_field", DefaultUploadFormField)
	v.SetDefault("upload.allow_empty", DefaultUploadAllowEmpty)
	v.SetDefault("upload.verify_signature", DefaultUploadVerifySig)
	v.SetDefault("upload.orphan_grace_min", DefaultOrphanGraceMinute)
}

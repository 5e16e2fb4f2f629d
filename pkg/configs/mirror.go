package configs

import (
	"fmt"

	"github.com/spf13/viper"
)

// MirrorConfig 上传目录的 S3 镜像配置.
type MirrorConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Prefix  string   `mapstructure:"prefix"` // 对象键前缀，例如 uploads/
	S3      S3Config `mapstructure:"s3"`
}

// S3Config MinIO S3存储配置.
type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"          rule:"required"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	BucketName      string `mapstructure:"bucket_name"       rule:"required"`
	Region          string `mapstructure:"region"`
}

const (
	DefaultS3Endpoint        = "localhost:9000" // 默认S3端点
	DefaultS3AccessKeyID     = "minioadmin"     // 默认访问密钥ID
	DefaultS3SecretAccessKey = "minioadmin"     // 默认秘密访问密钥
	DefaultS3UseSSL          = false            // 默认是否使用SSL
	DefaultS3BucketName      = "docshelf"       // 默认存储桶名称
	DefaultS3Region          = "us-east-1"      // 默认区域
)

// GetEndpointURL 获取完整的端点URL.
func (c *S3Config) GetEndpointURL() string {
	scheme := "http"
	if c.UseSSL {
		scheme = "https"
	}

	return fmt.Sprintf("%s://%s", scheme, c.Endpoint)
}

// ObjectKey 返回存储名对应的对象键.
func (c *MirrorConfig) ObjectKey(storedName string) string {
	return c.Prefix + storedName
}

// setDefaults 设置镜像配置的默认值.
func (c *MirrorConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("mirror.enabled", false)
	v.SetDefault("mirror.prefix", "uploads/")
	v.SetDefault("mirror.s3.endpoint", DefaultS3Endpoint)
	v.SetDefault("mirror.s3.access_key_id", DefaultS3AccessKeyID)
	v.SetDefault("mirror.s3.secret_access_key", DefaultS3SecretAccessKey)
	v.SetDefault("mirror.s3.use_ssl", DefaultS3UseSSL)
	v.SetDefault("mirror.s3.bucket_name", DefaultS3BucketName)
	v.SetDefault("mirror.s3.region", DefaultS3Region)
}

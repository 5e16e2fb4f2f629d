// Package s3 封装上传目录镜像使用的 MinIO 客户端.
package s3

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	minio "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/yeisme/docshelf/pkg/configs"
	nlog "github.com/yeisme/docshelf/pkg/log"
)

// Client 包装 MinIO 客户端并固定镜像 bucket.
type Client struct {
	*minio.Client

	bucket string
	region string
}

// New 初始化 MinIO 客户端，若 bucket 不存在则尝试创建.
func New(ctx context.Context, cfg configs.S3Config) (*Client, error) {
	endpoint := cfg.Endpoint
	// 允许传完整 schema endpoint（http:// 或 https://）
	if u, err := url.Parse(endpoint); err == nil && u.Host != "" {
		endpoint = u.Host
		if u.Scheme == "https" {
			cfg.UseSSL = true
		}
	}

	cli, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	cli.SetAppInfo(configs.AppName, configs.AppVersion)

	c := &Client{Client: cli, bucket: cfg.BucketName, region: cfg.Region}
	if err := c.ensureBucket(ctx); err != nil {
		return nil, err
	}

	nlog.Logger().Info().Str("endpoint", cfg.Endpoint).Str("bucket", cfg.BucketName).Msg("s3 connected")

	return c, nil
}

func (c *Client) ensureBucket(ctx context.Context) error {
	exists, err := c.BucketExists(ctx, c.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", c.bucket, err)
	}

	if exists {
		return nil
	}

	if err := c.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{Region: c.region}); err != nil {
		return fmt.Errorf("create bucket %s: %w", c.bucket, err)
	}

	nlog.Logger().Info().Str("bucket", c.bucket).Msg("bucket created")

	return nil
}

// Bucket 返回镜像 bucket 名称.
func (c *Client) Bucket() string {
	return c.bucket
}

// PutFile 把本地文件上传为对象.
func (c *Client) PutFile(ctx context.Context, key, path, contentType string) (int64, error) {
	info, err := c.FPutObject(ctx, c.bucket, key, path, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return 0, fmt.Errorf("put object %s: %w", key, err)
	}

	return info.Size, nil
}

// RemoveFile 删除对象，对象不存在视为成功.
func (c *Client) RemoveFile(ctx context.Context, key string) error {
	err := c.RemoveObject(ctx, c.bucket, key, minio.RemoveObjectOptions{})
	if err == nil {
		return nil
	}

	var resp minio.ErrorResponse
	if errors.As(err, &resp) && resp.StatusCode == http.StatusNotFound {
		return nil
	}

	return fmt.Errorf("remove object %s: %w", key, err)
}

// HealthCheck 通过检查 bucket 验证连接.
func (c *Client) HealthCheck(ctx context.Context) error {
	_, err := c.BucketExists(ctx, c.bucket)

	return err
}

// Close 关闭 S3 客户端连接（无实际操作，接口兼容）.
func (c *Client) Close() error {
	return nil
}

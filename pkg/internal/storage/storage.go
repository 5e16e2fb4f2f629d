// Package storage 聚合上传目录、清单后端、缓存 KV、消息队列与 S3 镜像等存储资源.
//
// Example:
//
//	mgr, err := storage.New(ctx, &cfg, storage.Options{})
//	if err != nil {
//		return err
//	}
//	defer mgr.Close()
//
//	store := mgr.Manifest
//	files, err := store.Load(ctx)
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/yeisme/docshelf/pkg/configs"
	"github.com/yeisme/docshelf/pkg/internal/manifest"
	dbc "github.com/yeisme/docshelf/pkg/internal/storage/db"
	"github.com/yeisme/docshelf/pkg/internal/storage/disk"
	kvc "github.com/yeisme/docshelf/pkg/internal/storage/kv"
	mqc "github.com/yeisme/docshelf/pkg/internal/storage/mq"
	s3c "github.com/yeisme/docshelf/pkg/internal/storage/s3"
	nlog "github.com/yeisme/docshelf/pkg/log"
	"github.com/yeisme/docshelf/pkg/queue"
)

// Manager 聚合所有存储资源. 可选资源未启用时为 nil.
type Manager struct {
	Disk     *disk.Store
	Manifest manifest.Store
	DB       *dbc.Client
	KV       *kvc.Client
	MQ       *mqc.Client
	S3       *s3c.Client
}

// Options 创建 Manager 的可选项.
type Options struct {
	// Registerer 非空时注册 MQ 指标
	Registerer prometheus.Registerer
}

// New 按配置初始化存储资源，失败时关闭已打开的资源.
func New(ctx context.Context, cfg *configs.AppConfig, opts Options) (m *Manager, err error) {
	m = &Manager{}

	defer func() {
		if err != nil {
			err = errors.Join(err, m.Close())
			m = nil
		}
	}()

	if m.Disk, err = disk.New(cfg.Upload.Dir); err != nil {
		return m, err
	}

	switch cfg.Manifest.Backend {
	case configs.ManifestBackendDB:
		m.DB, err = dbc.New(ctx, cfg.DB, dbc.Options{
			Metrics:         cfg.Metrics.Enabled,
			RefreshInterval: cfg.Metrics.CollectInterval,
			Debug:           cfg.Server.Debug,
		})
		if err != nil {
			return m, err
		}

		if m.Manifest, err = manifest.NewDBStore(ctx, m.DB.GetDB()); err != nil {
			return m, err
		}
	default:
		if m.Manifest, err = manifest.NewJSONStore(cfg.Manifest.Path); err != nil {
			return m, err
		}
	}

	if cfg.Cache.Enabled {
		if m.KV, err = kvc.New(ctx, cfg.KV); err != nil {
			return m, err
		}
	}

	if cfg.Events.Enabled {
		var reg prometheus.Registerer
		if cfg.Metrics.Enabled {
			reg = opts.Registerer
		}

		if m.MQ, err = mqc.New(ctx, cfg.MQ, mqc.Options{Registerer: reg, PoisonTopic: queue.TopicPoison}); err != nil {
			return m, err
		}
	}

	if cfg.Mirror.Enabled {
		if m.S3, err = s3c.New(ctx, cfg.Mirror.S3); err != nil {
			return m, err
		}
	}

	nlog.Logger().Info().
		Str("upload_dir", m.Disk.Root()).
		Str("manifest", string(cfg.Manifest.Backend)).
		Bool("cache", m.KV != nil).
		Bool("events", m.MQ != nil).
		Bool("mirror", m.S3 != nil).
		Msg("storage manager initialized")

	return m, nil
}

// Health 检查各资源状态，返回组件名到错误的映射（nil 表示健康）.
func (m *Manager) Health(ctx context.Context) map[string]error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res := map[string]error{}
	res["upload_dir"] = m.Disk.Ping()

	if _, err := m.Manifest.Load(ctx); err != nil {
		res["manifest"] = err
	} else {
		res["manifest"] = nil
	}

	if m.DB != nil {
		res["database"] = m.DB.Ping(ctx)
	}

	if m.S3 != nil {
		res["s3"] = m.S3.HealthCheck(ctx)
	}

	return res
}

// Close 关闭所有已打开的资源.
func (m *Manager) Close() error {
	var errs []error

	closeOne := func(name string, fn func() error) {
		if err := fn(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", name, err))
		}
	}

	if m.MQ != nil {
		closeOne("mq", m.MQ.Close)
	}

	if m.KV != nil {
		closeOne("kv", m.KV.Close)
	}

	if m.Manifest != nil {
		closeOne("manifest", m.Manifest.Close)
	}

	if m.DB != nil {
		closeOne("database", m.DB.Close)
	}

	if m.S3 != nil {
		closeOne("s3", m.S3.Close)
	}

	return errors.Join(errs...)
}

// Package mirror 订阅文件事件，把上传目录同步到 S3 存储桶.
//
// 镜像是最终一致的副本：本地上传目录始终是读取来源，镜像失败只影响副本.
package mirror

import (
	"context"
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/yeisme/docshelf/pkg/configs"
	"github.com/yeisme/docshelf/pkg/internal/model"
	"github.com/yeisme/docshelf/pkg/internal/service"
	"github.com/yeisme/docshelf/pkg/internal/storage/disk"
	"github.com/yeisme/docshelf/pkg/log"
	"github.com/yeisme/docshelf/pkg/queue"
)

// 处理器名称.
const (
	HandlerStored  = "mirror.file.stored"
	HandlerDeleted = "mirror.file.deleted"
)

// ObjectStore 镜像目标.
type ObjectStore interface {
	PutFile(ctx context.Context, key, path, contentType string) (int64, error)
	RemoveFile(ctx context.Context, key string) error
}

// Router 注册只消费的消息处理器.
type Router interface {
	AddHandler(name, topic string, h message.NoPublishHandlerFunc)
}

// Mirror 把 file.stored / file.deleted 事件应用到对象存储.
type Mirror struct {
	store ObjectStore
	disk  *disk.Store
	cfg   configs.MirrorConfig
}

// New 创建 Mirror.
func New(store ObjectStore, d *disk.Store, cfg configs.MirrorConfig) *Mirror {
	return &Mirror{store: store, disk: d, cfg: cfg}
}

// Register 在 Router 上注册两个处理器.
func (m *Mirror) Register(r Router) {
	r.AddHandler(HandlerStored, queue.TopicFileStored, m.HandleStored)
	r.AddHandler(HandlerDeleted, queue.TopicFileDeleted, m.HandleDeleted)
}

// HandleStored 上传本地文件. 本地文件已不存在时跳过.
func (m *Mirror) HandleStored(msg *message.Message) error {
	evt, err := queue.ParseFileStored(msg)
	if err != nil {
		// 无法解析的消息重试也不会成功
		log.Logger().Error().Err(err).Str("message_uuid", msg.UUID).Msg("drop malformed file.stored event")

		return nil
	}

	return m.PutFile(msg.Context(), evt.Payload.File.StoredName)
}

// HandleDeleted 删除对象.
func (m *Mirror) HandleDeleted(msg *message.Message) error {
	evt, err := queue.ParseFileDeleted(msg)
	if err != nil {
		log.Logger().Error().Err(err).Str("message_uuid", msg.UUID).Msg("drop malformed file.deleted event")

		return nil
	}

	if evt.Payload.File.StoredName == "" {
		log.Logger().Error().Str("message_uuid", msg.UUID).Msg("drop file.deleted event without stored name")

		return nil
	}

	return m.RemoveFile(msg.Context(), evt.Payload.File.StoredName)
}

// PutFile 把上传目录中的 storedName 上传为对象.
func (m *Mirror) PutFile(ctx context.Context, storedName string) error {
	l := log.Ctx(ctx).With().Str("stored_name", storedName).Logger()

	path, err := m.disk.Resolve(storedName)
	if err != nil {
		l.Warn().Err(err).Msg("skip mirroring invalid name")

		return nil
	}

	if !m.disk.Exists(storedName) {
		l.Info().Msg("skip mirroring, file no longer exists")

		return nil
	}

	key := m.cfg.ObjectKey(storedName)

	n, err := m.store.PutFile(ctx, key, path, service.ContentTypeFor(storedName))
	if err != nil {
		return fmt.Errorf("mirror put %s: %w", key, err)
	}

	l.Debug().Str("key", key).Int64("size", n).Msg("file mirrored")

	return nil
}

// RemoveFile 删除 storedName 对应的对象.
func (m *Mirror) RemoveFile(ctx context.Context, storedName string) error {
	if storedName == "" {
		return errors.New("mirror remove: empty stored name")
	}

	key := m.cfg.ObjectKey(storedName)

	if err := m.store.RemoveFile(ctx, key); err != nil {
		return fmt.Errorf("mirror remove %s: %w", key, err)
	}

	log.Ctx(ctx).Debug().Str("key", key).Msg("mirrored file removed")

	return nil
}

// Sync 把清单中的全部文件上传一次，返回成功上传的数量. 单个文件失败不会中断.
func (m *Mirror) Sync(ctx context.Context, records []model.FileRecord) (int, error) {
	var (
		done int
		errs []error
	)

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return done, err
		}

		if err := m.PutFile(ctx, rec.StoredName); err != nil {
			errs = append(errs, err)

			continue
		}

		done++
	}

	return done, errors.Join(errs...)
}

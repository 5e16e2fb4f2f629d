package service

import (
	"context"

	"github.com/yeisme/docshelf/pkg/configs"
	nlog "github.com/yeisme/docshelf/pkg/log"
	"github.com/yeisme/docshelf/pkg/queue"
	"github.com/yeisme/docshelf/pkg/tracing"
)

func (fs *FileService) headerOpts(ctx context.Context) []func(*queue.EventHeader) {
	opts := []func(*queue.EventHeader){queue.WithProducer(configs.AppName)}
	if id := tracing.TraceID(ctx); id != "" {
		opts = append(opts, queue.WithTraceID(id))
	}

	return opts
}

func (fs *FileService) enabled(topic bool) bool {
	return fs.publisher != nil && fs.events.Enabled && topic
}

func (fs *FileService) emitStored(ctx context.Context, p queue.FileStoredPayload) {
	if !fs.enabled(fs.events.File.Stored) {
		return
	}

	logPublishErr(ctx, queue.TopicFileStored, queue.PublishFileStored(ctx, fs.publisher, p, fs.headerOpts(ctx)...))
}

func (fs *FileService) emitDeleted(ctx context.Context, p queue.FileDeletedPayload) {
	if !fs.enabled(fs.events.File.Deleted) {
		return
	}

	logPublishErr(ctx, queue.TopicFileDeleted, queue.PublishFileDeleted(ctx, fs.publisher, p, fs.headerOpts(ctx)...))
}

func (fs *FileService) emitOrphaned(ctx context.Context, p queue.FileOrphanedPayload) {
	if !fs.enabled(fs.events.File.Orphaned) {
		return
	}

	logPublishErr(ctx, queue.TopicFileOrphaned, queue.PublishFileOrphaned(ctx, fs.publisher, p, fs.headerOpts(ctx)...))
}

// logPublishErr 事件发布失败只记录日志，不影响请求结果.
func logPublishErr(ctx context.Context, topic string, err error) {
	if err != nil {
		nlog.Ctx(ctx).Warn().Err(err).Str("topic", topic).Msg("publish event failed")
	}
}

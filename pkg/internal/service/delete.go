package service

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/yeisme/docshelf/pkg/internal/model"
	nlog "github.com/yeisme/docshelf/pkg/log"
	"github.com/yeisme/docshelf/pkg/metrics"
	"github.com/yeisme/docshelf/pkg/queue"
	"github.com/yeisme/docshelf/pkg/tracing"
)

// Delete 删除 id 对应的记录并尽力删除物理文件.
// 物理文件删除失败只记录日志，不影响清单删除.
func (fs *FileService) Delete(ctx context.Context, id string) (model.FileRecord, error) {
	ctx, span := tracing.StartSpan(ctx, "file.delete")
	defer span.End()

	span.SetAttributes(attribute.String("file.id", id))

	l := nlog.Ctx(ctx)

	rec, err := fs.store.Get(ctx, id)
	if err != nil {
		return deleteFailed(span, mapManifestErr("get record", err))
	}

	removed := true
	if err := fs.disk.Remove(rec.StoredName); err != nil {
		removed = false

		l.Warn().Err(err).Str("id", id).Str("stored_name", rec.StoredName).Msg("remove file failed, removing record anyway")
	}

	rec, err = fs.store.Remove(ctx, id)
	if err != nil {
		return deleteFailed(span, mapManifestErr("remove record", err))
	}

	metrics.DeletesTotal.WithLabelValues(metrics.ResultOK).Inc()
	metrics.ManifestRecords.Dec()

	fs.invalidate(ctx)
	fs.emitDeleted(ctx, queue.FileDeletedPayload{File: fileRef(rec), FileRemoved: removed})

	l.Info().Str("id", rec.ID).Str("stored_name", rec.StoredName).Bool("file_removed", removed).Msg("file deleted")

	return rec, nil
}

func deleteFailed(span trace.Span, err error) (model.FileRecord, error) {
	tracing.RecordError(span, err)

	result := metrics.ResultError
	if errors.Is(err, ErrNotFound) {
		result = metrics.ResultNotFound
	}

	metrics.DeletesTotal.WithLabelValues(result).Inc()

	return model.FileRecord{}, err
}

package service

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gabriel-vasile/mimetype"
	"go.opentelemetry.io/otel/attribute"

	"github.com/yeisme/docshelf/pkg/configs"
	"github.com/yeisme/docshelf/pkg/internal/model"
	"github.com/yeisme/docshelf/pkg/internal/storage/disk"
	nlog "github.com/yeisme/docshelf/pkg/log"
	"github.com/yeisme/docshelf/pkg/metrics"
	"github.com/yeisme/docshelf/pkg/queue"
	"github.com/yeisme/docshelf/pkg/tracing"
)

// sniffLen 签名检测读取的字节数.
const sniffLen = 3072

// UploadInput 一次上传的输入.
type UploadInput struct {
	// Filename 客户端提交的原始文件名
	Filename string
	// DeclaredType 客户端声明的 MIME 类型
	DeclaredType string
	// Size 声明的大小，未知时为 -1
	Size int64
	// Content 文件内容；nil 表示请求中没有文件
	Content io.Reader
}

// Upload 校验并保存上传的文件，成功后向清单追加一条记录.
//
// 校验全部通过之前不会触碰上传目录；文件先落盘再写清单，
// 清单写入失败时磁盘上的文件成为孤儿，由对账处理.
func (fs *FileService) Upload(ctx context.Context, in UploadInput) (model.FileRecord, error) {
	ctx, span := tracing.StartSpan(ctx, "file.upload")
	defer span.End()

	l := nlog.Ctx(ctx)

	rec, err := fs.save(ctx, in)
	if err != nil {
		tracing.RecordError(span, err)

		var verr *ValidationError
		if errors.As(err, &verr) {
			metrics.UploadsTotal.WithLabelValues(metrics.ResultRejected).Inc()
			l.Warn().Str("code", verr.Code).Str("file_name", in.Filename).Str("mime_type", in.DeclaredType).Msg("upload rejected")
		} else {
			metrics.UploadsTotal.WithLabelValues(metrics.ResultError).Inc()
		}

		return model.FileRecord{}, err
	}

	span.SetAttributes(
		attribute.String("file.id", rec.ID),
		attribute.String("file.stored_name", rec.StoredName),
		attribute.Int64("file.size", rec.Size),
	)

	metrics.UploadsTotal.WithLabelValues(metrics.ResultOK).Inc()
	metrics.UploadBytesTotal.Add(float64(rec.Size))
	metrics.ManifestRecords.Inc()

	fs.invalidate(ctx)
	fs.emitStored(ctx, queue.FileStoredPayload{File: fileRef(rec)})

	l.Info().
		Str("id", rec.ID).
		Str("original_name", rec.OriginalName).
		Str("stored_name", rec.StoredName).
		Int64("size", rec.Size).
		Msg("file uploaded")

	return rec, nil
}

func (fs *FileService) save(ctx context.Context, in UploadInput) (model.FileRecord, error) {
	content, declared, err := fs.validate(in)
	if err != nil {
		return model.FileRecord{}, err
	}

	stored := fs.names.StoredName(in.Filename)

	res, err := fs.disk.Save(content, stored, fs.upload.MaxBytes())
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.Is(err, disk.ErrTooLarge) || errors.As(err, &maxErr) {
			return model.FileRecord{}, TooLarge(fs.upload.MaxSizeMB)
		}

		// disk.ErrExists 也走这里：存储名碰撞时拒绝覆盖
		return model.FileRecord{}, &IOError{Op: "write file", Err: err}
	}

	if res.Size == 0 && !fs.upload.AllowEmpty {
		if rmErr := fs.disk.Remove(res.Name); rmErr != nil {
			nlog.Ctx(ctx).Error().Err(rmErr).Str("stored_name", res.Name).Bool("orphan", true).Msg("remove empty upload failed")
		}

		return model.FileRecord{}, ErrEmptyFile
	}

	id, err := fs.ids.New()
	if err != nil {
		return model.FileRecord{}, &IOError{Op: "generate id", Err: err}
	}

	rec := model.FileRecord{
		ID:           id,
		OriginalName: in.Filename,
		StoredName:   res.Name,
		MimeType:     declared,
		Size:         res.Size,
		UploadedAt:   fs.now().UTC(),
		Checksum:     res.Checksum,
	}

	if err := fs.store.Append(ctx, rec); err != nil {
		nlog.Ctx(ctx).Error().
			Err(err).
			Str("stored_name", res.Name).
			Bool("orphan", true).
			Msg("append manifest failed after file was written")

		return model.FileRecord{}, &IOError{Op: "append manifest", Err: err}
	}

	return rec, nil
}

// validate 按顺序执行无副作用的校验，返回用于写入的 reader 与规范化后的声明类型.
func (fs *FileService) validate(in UploadInput) (io.Reader, string, error) {
	if in.Content == nil || in.Filename == "" {
		return nil, "", ErrNoFile
	}

	if !fs.upload.IsAllowed(in.DeclaredType) {
		return nil, "", ErrUnsupportedType
	}

	declared := configs.NormalizeMediaType(in.DeclaredType)

	if in.Size > fs.upload.MaxBytes() {
		return nil, "", TooLarge(fs.upload.MaxSizeMB)
	}

	if in.Size == 0 && !fs.upload.AllowEmpty {
		return nil, "", ErrEmptyFile
	}

	if !fs.upload.VerifySignature {
		return in.Content, declared, nil
	}

	br := bufio.NewReaderSize(in.Content, sniffLen)

	head, err := br.Peek(sniffLen)
	if err != nil && !errors.Is(err, io.EOF) {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, "", TooLarge(fs.upload.MaxSizeMB)
		}

		return nil, "", &IOError{Op: "read upload", Err: err}
	}

	if len(head) > 0 && !signatureMatches(declared, mimetype.Detect(head)) {
		return nil, "", ErrSignatureMismatch
	}

	return br, declared, nil
}

// Package service 实现上传文件的业务逻辑：上传校验与落盘、列表、读取、删除与对账，不处理 HTTP 细节.
package service

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"github.com/yeisme/docshelf/pkg/cache"
	"github.com/yeisme/docshelf/pkg/configs"
	"github.com/yeisme/docshelf/pkg/internal/manifest"
	"github.com/yeisme/docshelf/pkg/internal/model"
	"github.com/yeisme/docshelf/pkg/internal/naming"
	"github.com/yeisme/docshelf/pkg/internal/storage/disk"
	"github.com/yeisme/docshelf/pkg/metrics"
	"github.com/yeisme/docshelf/pkg/queue"
)

// Options FileService 的依赖. Disk 与 Manifest 必填，其余可为 nil.
type Options struct {
	Disk     *disk.Store
	Manifest manifest.Store
	Upload   configs.UploadConfig
	Events   configs.EventsConfig
	// ManifestPath json 清单文件路径；位于上传目录内时对账会忽略它
	ManifestPath string
	// Publisher 事件发布者，nil 时不发布事件
	Publisher queue.Publisher
	// Listing 列表缓存，nil 时每次直接读取清单
	Listing *cache.Listing[model.FileRecord]
	Names   *naming.Generator
	IDs     *naming.IDSource
	Now     func() time.Time
}

// FileService 负责文件相关业务逻辑.
type FileService struct {
	disk      *disk.Store
	store     manifest.Store
	upload    configs.UploadConfig
	events    configs.EventsConfig
	publisher queue.Publisher
	listing   *cache.Listing[model.FileRecord]
	names     *naming.Generator
	ids       *naming.IDSource
	now       func() time.Time
	ignore    map[string]bool
}

// NewFileService 创建 FileService.
func NewFileService(opts Options) *FileService {
	if opts.Now == nil {
		opts.Now = time.Now
	}

	if opts.Names == nil {
		opts.Names = naming.NewGenerator(naming.WithClock(opts.Now))
	}

	if opts.IDs == nil {
		opts.IDs = naming.NewIDSource(opts.Now)
	}

	fs := &FileService{
		disk:      opts.Disk,
		store:     opts.Manifest,
		upload:    opts.Upload,
		events:    opts.Events,
		publisher: opts.Publisher,
		listing:   opts.Listing,
		names:     opts.Names,
		ids:       opts.IDs,
		now:       opts.Now,
		ignore:    map[string]bool{},
	}

	if opts.ManifestPath != "" {
		if abs, err := filepath.Abs(opts.ManifestPath); err == nil && filepath.Dir(abs) == opts.Disk.Root() {
			fs.ignore[filepath.Base(abs)] = true
		}
	}

	return fs
}

// Names 返回存储名生成器.
func (fs *FileService) Names() *naming.Generator {
	return fs.names
}

// List 按插入顺序返回全部记录，没有记录时返回空切片.
func (fs *FileService) List(ctx context.Context) ([]model.FileRecord, error) {
	var (
		records []model.FileRecord
		err     error
	)

	if fs.listing != nil {
		records, err = fs.listing.Get(ctx, fs.store.Load)
	} else {
		records, err = fs.store.Load(ctx)
	}

	if err != nil {
		return nil, &IOError{Op: "load manifest", Err: err}
	}

	if records == nil {
		records = []model.FileRecord{}
	}

	metrics.ManifestRecords.Set(float64(len(records)))

	return records, nil
}

// Get 按 id 返回记录.
func (fs *FileService) Get(ctx context.Context, id string) (model.FileRecord, error) {
	rec, err := fs.store.Get(ctx, id)
	if err != nil {
		return model.FileRecord{}, mapManifestErr("get record", err)
	}

	return rec, nil
}

func (fs *FileService) invalidate(ctx context.Context) {
	if fs.listing != nil {
		fs.listing.Invalidate(ctx)
	}
}

func mapManifestErr(op string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, manifest.ErrNotFound) {
		return ErrNotFound
	}

	return &IOError{Op: op, Err: err}
}

func fileRef(rec model.FileRecord) queue.FileRef {
	return queue.FileRef{
		ID:           rec.ID,
		StoredName:   rec.StoredName,
		OriginalName: rec.OriginalName,
		MimeType:     rec.MimeType,
		Size:         rec.Size,
		Checksum:     rec.Checksum,
	}
}

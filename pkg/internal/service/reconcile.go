package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/yeisme/docshelf/pkg/internal/model"
	nlog "github.com/yeisme/docshelf/pkg/log"
	"github.com/yeisme/docshelf/pkg/metrics"
	"github.com/yeisme/docshelf/pkg/queue"
	"github.com/yeisme/docshelf/pkg/tracing"
)

// ReconcileOptions 对账选项.
type ReconcileOptions struct {
	// Prune 删除超过 Grace 的孤儿文件
	Prune bool
	// Grace 孤儿文件的最小存在时间，<= 0 时使用 upload.orphan_grace_min
	Grace time.Duration
}

// OrphanFile 上传目录中没有清单记录的文件.
type OrphanFile struct {
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"modTime"`
	Pruned  bool      `json:"pruned"`
}

// ReconcileReport 对账结果.
type ReconcileReport struct {
	CheckedAt time.Time          `json:"checkedAt"`
	Records   int                `json:"records"`
	Files     int                `json:"files"`
	Orphans   []OrphanFile       `json:"orphans"`
	Missing   []model.FileRecord `json:"missing"`
	Pruned    int                `json:"pruned"`
}

// Reconcile 比较上传目录与清单，找出孤儿文件与文件缺失的记录.
func (fs *FileService) Reconcile(ctx context.Context, opts ReconcileOptions) (ReconcileReport, error) {
	ctx, span := tracing.StartSpan(ctx, "file.reconcile")
	defer span.End()

	l := nlog.Ctx(ctx)

	grace := opts.Grace
	if grace <= 0 {
		grace = fs.upload.OrphanGrace()
	}

	records, err := fs.store.Load(ctx)
	if err != nil {
		err = &IOError{Op: "load manifest", Err: err}
		tracing.RecordError(span, err)

		return ReconcileReport{}, err
	}

	entries, err := fs.disk.List()
	if err != nil {
		err = &IOError{Op: "list upload dir", Err: err}
		tracing.RecordError(span, err)

		return ReconcileReport{}, err
	}

	now := fs.now()
	report := ReconcileReport{
		CheckedAt: now.UTC(),
		Records:   len(records),
		Orphans:   []OrphanFile{},
		Missing:   []model.FileRecord{},
	}

	known := make(map[string]bool, len(records))
	for _, rec := range records {
		known[rec.StoredName] = true
	}

	onDisk := make(map[string]bool, len(entries))

	for _, e := range entries {
		if fs.ignore[e.Name] {
			continue
		}

		report.Files++
		onDisk[e.Name] = true

		if known[e.Name] {
			continue
		}

		orphan := OrphanFile{Name: e.Name, Size: e.Size, ModTime: e.ModTime.UTC()}

		if opts.Prune && now.Sub(e.ModTime) >= grace {
			if err := fs.disk.Remove(e.Name); err != nil {
				l.Warn().Err(err).Str("stored_name", e.Name).Msg("prune orphan failed")
			} else {
				orphan.Pruned = true
				report.Pruned++
			}
		}

		report.Orphans = append(report.Orphans, orphan)
		fs.emitOrphaned(ctx, queue.FileOrphanedPayload{
			File:    queue.FileRef{StoredName: e.Name, Size: e.Size},
			ModTime: orphan.ModTime,
			Pruned:  orphan.Pruned,
		})
	}

	for _, rec := range records {
		if !onDisk[rec.StoredName] {
			report.Missing = append(report.Missing, rec)
		}
	}

	metrics.OrphanFiles.Set(float64(len(report.Orphans) - report.Pruned))
	metrics.ManifestRecords.Set(float64(len(records)))

	span.SetAttributes(
		attribute.Int("reconcile.orphans", len(report.Orphans)),
		attribute.Int("reconcile.missing", len(report.Missing)),
		attribute.Int("reconcile.pruned", report.Pruned),
	)

	l.Info().
		Int("records", report.Records).
		Int("files", report.Files).
		Int("orphans", len(report.Orphans)).
		Int("missing", len(report.Missing)).
		Int("pruned", report.Pruned).
		Msg("reconcile finished")

	return report, nil
}

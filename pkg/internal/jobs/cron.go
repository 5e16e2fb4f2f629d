// Package jobs 负责注册与实现后台维护任务（基于 scheduler）.
package jobs

import (
	"context"
	"errors"

	"github.com/yeisme/docshelf/pkg/configs"
	"github.com/yeisme/docshelf/pkg/internal/service"
	"github.com/yeisme/docshelf/pkg/log"
	"github.com/yeisme/docshelf/pkg/scheduler"
)

// Reconciler 执行一次对账.
type Reconciler interface {
	Reconcile(ctx context.Context, opts service.ReconcileOptions) (service.ReconcileReport, error)
}

// RegisterCronJobs 按配置注册维护任务，当前只有孤儿文件对账.
func RegisterCronJobs(ctx context.Context, sched *scheduler.Scheduler, svc Reconciler, cfg *configs.AppConfig) error {
	if sched == nil {
		return errors.New("scheduler is nil")
	}

	if svc == nil {
		return errors.New("reconciler is nil")
	}

	rc := cfg.Scheduler.Jobs.Reconcile
	if !rc.Enabled {
		log.Logger().Info().Str("job", JobReconcile).Msg("job disabled")

		return nil
	}

	opts := service.ReconcileOptions{Prune: rc.Prune, Grace: cfg.Upload.OrphanGrace()}

	return sched.AddCron(ctx, JobReconcile, rc.Cron, func(ctx context.Context) error {
		return runReconcile(ctx, svc, opts)
	})
}

// ReloadCronJobs 移除已注册的维护任务后按新配置重新注册.
func ReloadCronJobs(ctx context.Context, sched *scheduler.Scheduler, svc Reconciler, cfg *configs.AppConfig) error {
	if sched == nil {
		return errors.New("scheduler is nil")
	}

	if _, err := sched.GetJobInfoByName(JobReconcile); err == nil {
		if err := sched.RemoveJobByName(JobReconcile); err != nil {
			return err
		}
	}

	return RegisterCronJobs(ctx, sched, svc, cfg)
}

// runReconcile 对账并记录结果.
func runReconcile(ctx context.Context, svc Reconciler, opts service.ReconcileOptions) error {
	l := log.Ctx(ctx).With().Str("job", JobReconcile).Logger()

	report, err := svc.Reconcile(ctx, opts)
	if err != nil {
		return err
	}

	event := l.Info()
	if len(report.Orphans) > report.Pruned || len(report.Missing) > 0 {
		event = l.Warn()
	}

	event.
		Int("records", report.Records).
		Int("files", report.Files).
		Int("orphans", len(report.Orphans)).
		Int("missing", len(report.Missing)).
		Int("pruned", report.Pruned).
		Bool("prune", opts.Prune).
		Msg("reconcile finished")

	return nil
}

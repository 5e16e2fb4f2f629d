package jobs_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/yeisme/docshelf/pkg/configs"
	"github.com/yeisme/docshelf/pkg/internal/jobs"
	"github.com/yeisme/docshelf/pkg/internal/service"
	nlog "github.com/yeisme/docshelf/pkg/log"
	"github.com/yeisme/docshelf/pkg/scheduler"
)

type fakeReconciler struct {
	mu    sync.Mutex
	calls []service.ReconcileOptions
}

func (f *fakeReconciler) Reconcile(_ context.Context, opts service.ReconcileOptions) (service.ReconcileReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, opts)

	return service.ReconcileReport{Orphans: []service.OrphanFile{{Name: "x.png"}}}, nil
}

func (f *fakeReconciler) Calls() []service.ReconcileOptions {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]service.ReconcileOptions(nil), f.calls...)
}

func newScheduler(t *testing.T) *scheduler.Scheduler {
	t.Helper()
	nlog.Use(zerolog.Nop())

	s, err := scheduler.NewScheduler()
	if err != nil {
		t.Fatal(err)
	}

	t.Cleanup(func() { _ = s.Shutdown() })

	return s
}

// TestRegisterReconcile 测试对账任务使用配置中的 prune 与宽限期.
func TestRegisterReconcile(t *testing.T) {
	s := newScheduler(t)
	rec := &fakeReconciler{}

	cfg := configs.Defaults()
	cfg.Scheduler.Jobs.Reconcile.Prune = true
	cfg.Upload.OrphanGraceMin = 5

	if err := jobs.RegisterCronJobs(context.Background(), s, rec, cfg); err != nil {
		t.Fatalf("RegisterCronJobs() error = %v", err)
	}

	s.Start()

	if err := s.RunNow(jobs.JobReconcile); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for len(rec.Calls()) == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	calls := rec.Calls()
	if len(calls) != 1 {
		t.Fatalf("calls = %d, want 1", len(calls))
	}

	if !calls[0].Prune || calls[0].Grace != 5*time.Minute {
		t.Errorf("options = %+v", calls[0])
	}
}

// TestRegisterDisabled 测试关闭的任务不会注册.
func TestRegisterDisabled(t *testing.T) {
	s := newScheduler(t)

	cfg := configs.Defaults()
	cfg.Scheduler.Jobs.Reconcile.Enabled = false

	if err := jobs.RegisterCronJobs(context.Background(), s, &fakeReconciler{}, cfg); err != nil {
		t.Fatal(err)
	}

	if infos := s.GetJobInfos(); len(infos) != 0 {
		t.Errorf("jobs = %+v", infos)
	}

	if err := jobs.RegisterCronJobs(context.Background(), nil, &fakeReconciler{}, cfg); err == nil {
		t.Error("expected error for nil scheduler")
	}
}

// TestReloadCronJobs 测试重新注册会替换 cron 表达式，关闭后任务被移除.
func TestReloadCronJobs(t *testing.T) {
	s := newScheduler(t)
	rec := &fakeReconciler{}
	cfg := configs.Defaults()

	if err := jobs.RegisterCronJobs(context.Background(), s, rec, cfg); err != nil {
		t.Fatal(err)
	}

	cfg.Scheduler.Jobs.Reconcile.Cron = "0 3 * * *"
	if err := jobs.ReloadCronJobs(context.Background(), s, rec, cfg); err != nil {
		t.Fatalf("ReloadCronJobs() error = %v", err)
	}

	info, err := s.GetJobInfoByName(jobs.JobReconcile)
	if err != nil {
		t.Fatal(err)
	}

	if info.CronExpr != "0 3 * * *" {
		t.Errorf("cron = %q", info.CronExpr)
	}

	cfg.Scheduler.Jobs.Reconcile.Enabled = false
	if err := jobs.ReloadCronJobs(context.Background(), s, rec, cfg); err != nil {
		t.Fatal(err)
	}

	if infos := s.GetJobInfos(); len(infos) != 0 {
		t.Errorf("jobs after disable = %+v", infos)
	}
}

// Package app 组装并运行 docshelf：存储资源、文件服务、后台任务、事件镜像与 HTTP 服务.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/yeisme/docshelf/pkg/api"
	"github.com/yeisme/docshelf/pkg/cache"
	"github.com/yeisme/docshelf/pkg/configs"
	"github.com/yeisme/docshelf/pkg/internal/handle"
	"github.com/yeisme/docshelf/pkg/internal/jobs"
	"github.com/yeisme/docshelf/pkg/internal/mirror"
	"github.com/yeisme/docshelf/pkg/internal/model"
	"github.com/yeisme/docshelf/pkg/internal/service"
	"github.com/yeisme/docshelf/pkg/internal/storage"
	"github.com/yeisme/docshelf/pkg/log"
	"github.com/yeisme/docshelf/pkg/metrics"
	"github.com/yeisme/docshelf/pkg/scheduler"
	"github.com/yeisme/docshelf/pkg/tracing"
)

// groupcachePath groupcache HTTPPool 的默认路径.
const groupcachePath = "/_groupcache/*path"

// App 持有一次运行所需的全部组件.
type App struct {
	cfg *configs.AppConfig

	Storage   *storage.Manager
	Files     *service.FileService
	Scheduler *scheduler.Scheduler
	Mirror    *mirror.Mirror
	Engine    *gin.Engine

	server *http.Server
}

// Core 不含 HTTP 与后台任务的最小组件集合，供命令行工具使用.
type Core struct {
	Storage *storage.Manager
	Files   *service.FileService
	Mirror  *mirror.Mirror
}

// Close 关闭存储资源.
func (c *Core) Close() error {
	return c.Storage.Close()
}

// NewCore 初始化存储与文件服务.
func NewCore(ctx context.Context, cfg *configs.AppConfig) (*Core, error) {
	mgr, err := storage.New(ctx, cfg, storage.Options{Registerer: metrics.Registerer()})
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	opts := service.Options{
		Disk:         mgr.Disk,
		Manifest:     mgr.Manifest,
		Upload:       cfg.Upload,
		Events:       cfg.Events,
		ManifestPath: cfg.Manifest.Path,
	}

	if mgr.KV != nil {
		var lopts []cache.ListingOption
		// 可被多个实例共享的后端才需要共享代数
		if mgr.KV.Type == configs.KVTypeRedis || mgr.KV.Type == configs.KVTypeNATS {
			lopts = append(lopts, cache.SharedGeneration())
		}

		opts.Listing = cache.NewListing[model.FileRecord](cache.NewCache(mgr.KV, cfg.Cache.Prefix), "files", cfg.Cache.TTL, lopts...)
	}

	// 避免把 nil *mq.Client 赋给接口
	if mgr.MQ != nil {
		opts.Publisher = mgr.MQ
	}

	core := &Core{Storage: mgr, Files: service.NewFileService(opts)}

	if mgr.S3 != nil {
		core.Mirror = mirror.New(mgr.S3, mgr.Disk, cfg.Mirror)
	}

	return core, nil
}

// New 按配置创建 App.
func New(ctx context.Context, cfg *configs.AppConfig) (a *App, err error) {
	if err := metrics.Init(cfg.Metrics); err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	if err := tracing.InitTracer(ctx, cfg.Tracing); err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	core, err := NewCore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	a = &App{cfg: cfg, Storage: core.Storage, Files: core.Files, Mirror: core.Mirror}

	defer func() {
		if err != nil {
			err = errors.Join(err, a.Close())
			a = nil
		}
	}()

	if cfg.Scheduler.Enabled {
		if a.Scheduler, err = scheduler.NewScheduler(); err != nil {
			return a, fmt.Errorf("init scheduler: %w", err)
		}

		if err = jobs.RegisterCronJobs(ctx, a.Scheduler, a.Files, cfg); err != nil {
			return a, fmt.Errorf("register jobs: %w", err)
		}

		if cfg.Scheduler.Reload {
			configs.OnChange(func(next *configs.AppConfig) {
				if err := jobs.ReloadCronJobs(ctx, a.Scheduler, a.Files, next); err != nil {
					log.Logger().Error().Err(err).Msg("reload jobs failed")
				}
			})
		}
	}

	if a.Mirror != nil {
		if a.Storage.MQ != nil {
			a.Mirror.Register(a.Storage.MQ)
		} else {
			log.Logger().Warn().Msg("mirror enabled but events are disabled, only manual sync is available")
		}
	}

	h := handle.New(handle.Options{
		Files:     a.Files,
		Upload:    cfg.Upload,
		Scheduler: a.Scheduler,
		Health:    a.Storage,
	})

	a.Engine = api.NewEngine(cfg, h)
	a.mountGroupcache()

	timeout := cfg.Server.GetTimeoutDuration()
	a.server = &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           a.Engine,
		ReadHeaderTimeout: timeout,
		ReadTimeout:       timeout,
		WriteTimeout:      timeout,
	}

	return a, nil
}

// mountGroupcache 配置了 groupcache 对等节点时挂载节点间通信处理器.
func (a *App) mountGroupcache() {
	if a.Storage.KV == nil {
		return
	}

	peer, ok := a.Storage.KV.Store.(interface{ Handler() http.Handler })
	if !ok || peer.Handler() == nil {
		return
	}

	a.Engine.Any(groupcachePath, gin.WrapH(peer.Handler()))
}

// Run 启动 HTTP 服务、事件订阅与定时任务，阻塞直到 ctx 结束或任一组件失败.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Logger().Info().Str("addr", a.server.Addr).Msg("http server listening")

		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}

		return nil
	})

	if a.Storage.MQ != nil {
		g.Go(func() error {
			return a.Storage.MQ.Run(ctx)
		})
	}

	if a.Scheduler != nil {
		a.Scheduler.Start()
	}

	g.Go(func() error {
		<-ctx.Done()

		return a.shutdown()
	})

	return g.Wait()
}

// shutdown 在超时内停止接受请求并停止后台任务.
func (a *App) shutdown() error {
	timeout := a.cfg.Server.GetShutdownTimeout()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	log.Logger().Info().Dur("timeout", timeout).Msg("shutting down")

	var errs []error

	if err := a.server.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}

	if a.Scheduler != nil {
		if err := a.Scheduler.Shutdown(); err != nil {
			errs = append(errs, fmt.Errorf("scheduler shutdown: %w", err))
		}
	}

	if err := tracing.ShutdownTracer(ctx); err != nil {
		errs = append(errs, fmt.Errorf("tracer shutdown: %w", err))
	}

	return errors.Join(errs...)
}

// Close 释放存储资源，应在 Run 返回后调用.
func (a *App) Close() error {
	var errs []error

	if a.Scheduler != nil {
		errs = append(errs, a.Scheduler.Shutdown())
	}

	if a.Storage != nil {
		errs = append(errs, a.Storage.Close())
	}

	return errors.Join(errs...)
}

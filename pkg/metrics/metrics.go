// Package metrics 提供 Prometheus 指标：HTTP 请求指标与上传/删除/对账等领域指标.
//
// Example:
//
//	if err := metrics.Init(cfg.Metrics); err != nil {
//		return err
//	}
//
//	metrics.UploadsTotal.WithLabelValues(metrics.ResultOK).Inc()
//	engine.GET(cfg.Metrics.Path, gin.WrapH(metrics.Handler()))
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yeisme/docshelf/pkg/configs"
)

// 结果标签取值.
const (
	ResultOK       = "ok"
	ResultRejected = "rejected"
	ResultError    = "error"
	ResultNotFound = "not_found"
)

// 全局指标变量.
var (
	// RequestCounter HTTP请求计数器.
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: configs.AppName,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// RequestDuration HTTP请求持续时间.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: configs.AppName,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// UploadsTotal 按结果统计的上传次数.
	UploadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: configs.AppName,
			Name:      "uploads_total",
			Help:      "Total number of upload attempts by result",
		},
		[]string{"result"},
	)

	// UploadBytesTotal 成功写入的字节数.
	UploadBytesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: configs.AppName,
			Name:      "upload_bytes_total",
			Help:      "Total number of bytes stored by successful uploads",
		},
	)

	// DeletesTotal 按结果统计的删除次数.
	DeletesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: configs.AppName,
			Name:      "deletes_total",
			Help:      "Total number of delete attempts by result",
		},
		[]string{"result"},
	)

	// OrphanFiles 最近一次对账发现的孤儿文件数.
	OrphanFiles = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: configs.AppName,
			Name:      "orphan_files",
			Help:      "Number of files in the upload directory without a manifest record",
		},
	)

	// ManifestRecords 清单记录数.
	ManifestRecords = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: configs.AppName,
			Name:      "manifest_records",
			Help:      "Number of records in the file manifest",
		},
	)

	// registry Prometheus注册表.
	registry = prometheus.NewRegistry()
	// registerer 在 registry 之上附加配置中的默认标签.
	registerer prometheus.Registerer = registry

	initOnce sync.Once
	initErr  error
)

// Init 注册指标（幂等）. 未启用时不注册任何内容.
func Init(config configs.MetricsConfig) error {
	if !config.Enabled {
		return nil
	}

	initOnce.Do(func() {
		if len(config.Labels) > 0 {
			registerer = prometheus.WrapRegistererWith(prometheus.Labels(config.Labels), registry)
		}

		// go/process 收集器由默认注册表提供
		if !config.RuntimeMetrics {
			prometheus.Unregister(collectors.NewGoCollector())
			prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		}

		for _, c := range []prometheus.Collector{
			RequestCounter, RequestDuration,
			UploadsTotal, UploadBytesTotal, DeletesTotal,
			OrphanFiles, ManifestRecords,
		} {
			if err := registerer.Register(c); err != nil {
				initErr = err

				return
			}
		}
	})

	return initErr
}

// Registerer 返回应用注册器，供 watermill 等组件注册自己的指标.
func Registerer() prometheus.Registerer {
	return registerer
}

// GetRegistry 获取Prometheus注册表.
func GetRegistry() *prometheus.Registry {
	return registry
}

// Handler 导出应用注册表与默认注册表（gorm 插件、运行时指标）.
func Handler() http.Handler {
	gatherers := prometheus.Gatherers{registry, prometheus.DefaultGatherer}

	return promhttp.HandlerFor(gatherers, promhttp.HandlerOpts{})
}

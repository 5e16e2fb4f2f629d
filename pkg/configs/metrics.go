package configs

import (
	"time"

	"github.com/spf13/viper"
)

// MetricsConfig Metrics相关配置.
type MetricsConfig struct {
	Enabled         bool              `mapstructure:"enabled"`                                       // 是否启用Metrics
	ServiceName     string            `mapstructure:"service_name"`                                  // 服务名称
	ServiceVersion  string            `mapstructure:"service_version"`                               // 服务版本
	Path            string            `mapstructure:"path"             rule:"required,startswith=/"` // 暴露路径
	CollectInterval time.Duration     `mapstructure:"collect_interval"`                              // gorm 连接池指标刷新间隔
	RuntimeMetrics  bool              `mapstructure:"runtime_metrics"`                               // 是否收集运行时指标
	Labels          map[string]string `mapstructure:"labels"`                                        // 默认标签
}

// setDefaults 设置Metrics配置的默认值.
func (c *MetricsConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.service_name", AppName)
	v.SetDefault("metrics.service_version", AppVersion)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("metrics.collect_interval", "15s")
	v.SetDefault("metrics.runtime_metrics", true)
	v.SetDefault("metrics.labels", map[string]string{
		"service": AppName,
	})
}

package configs

import "github.com/spf13/viper"

// SchedulerConfig 后台维护任务配置.
type SchedulerConfig struct {
	Enabled bool                `mapstructure:"enabled"`
	Reload  bool                `mapstructure:"reload"` // 配置变化时是否重新注册任务
	Jobs    SchedulerJobsConfig `mapstructure:"jobs"`
}

// SchedulerJobsConfig 各任务的 cron 表达式与开关.
type SchedulerJobsConfig struct {
	Reconcile ReconcileJobConfig `mapstructure:"reconcile"`
}

// ReconcileJobConfig 孤儿文件对账任务.
type ReconcileJobConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Cron    string `mapstructure:"cron"    rule:"required"`
	Prune   bool   `mapstructure:"prune"` // 是否删除超过宽限期的孤儿文件
}

func (c *SchedulerConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.reload", false)
	v.SetDefault("scheduler.jobs.reconcile.enabled", true)
	v.SetDefault("scheduler.jobs.reconcile.cron", "*/30 * * * *")
	v.SetDefault("scheduler.jobs.reconcile.prune", false)
}

package configs

import "github.com/spf13/viper"

// EventsConfig 控制事件发布的开关（全局与分主题）。
type EventsConfig struct {
	Enabled bool             `mapstructure:"enabled"` // 总开关
	File    FileEventsConfig `mapstructure:"file"`
}

// FileEventsConfig 针对上传文件的事件开关。
type FileEventsConfig struct {
	Stored   bool `mapstructure:"stored"`
	Deleted  bool `mapstructure:"deleted"`
	Orphaned bool `mapstructure:"orphaned"`
}

func (c *EventsConfig) setDefaults(v *viper.Viper) {
	// 总开关：默认启用事件系统
	v.SetDefault("events.enabled", true)

	v.SetDefault("events.file.stored", true)
	v.SetDefault("events.file.deleted", true)
	// 对账每次运行都可能产生，默认关闭
	v.SetDefault("events.file.orphaned", false)
}

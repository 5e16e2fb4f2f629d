package configs

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultPort            = 3001      // 监听端口
	DefaultHost            = "0.0.0.0" // 监听地址
	DefaultReloadConfig    = false     // 是否启用配置热重载
	DefaultDebug           = false     // 是否启用调试模式
	DefaultTimeout         = 30        // 请求读写超时时间，单位秒
	DefaultShutdownTimeout = 10        // 优雅关闭等待时间，单位秒
	DefaultCORSMaxAge      = 12        // 预检缓存时间，单位小时
)

// DefaultCORSOrigins 默认允许的前端来源（Angular 开发服务器）.
var DefaultCORSOrigins = []string{"http://localhost:4200", "http://127.0.0.1:4200"}

type (
	// ServerConfig 服务器配置.
	ServerConfig struct {
		Port            int        `mapstructure:"port"             rule:"min=1,max=65535"`
		Host            string     `mapstructure:"host"             rule:"omitempty,ip|hostname_rfc1123"`
		ReloadConfig    bool       `mapstructure:"reload_config"`
		Debug           bool       `mapstructure:"debug"`
		Timeout         int        `mapstructure:"timeout"          rule:"min=1,max=3600"`
		ShutdownTimeout int        `mapstructure:"shutdown_timeout" rule:"min=1,max=300"`
		CORS            CORSConfig `mapstructure:"cors"`
	}

	// CORSConfig 跨域配置.
	CORSConfig struct {
		Enabled          bool     `mapstructure:"enabled"`
		AllowOrigins     []string `mapstructure:"allow_origins"`
		AllowCredentials bool     `mapstructure:"allow_credentials"`
		MaxAgeHours      int      `mapstructure:"max_age_hours"     rule:"min=0"`
	}
)

// Addr 返回监听地址，例如 0.0.0.0:3001.
func (s *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// GetTimeoutDuration 返回超时时间作为time.Duration.
func (s *ServerConfig) GetTimeoutDuration() time.Duration {
	return time.Duration(s.Timeout) * time.Second
}

// GetShutdownTimeout 返回优雅关闭等待时间.
func (s *ServerConfig) GetShutdownTimeout() time.Duration {
	return time.Duration(s.ShutdownTimeout) * time.Second
}

// setDefaults 设置服务器配置的默认值.
func (s *ServerConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", DefaultPort)
	v.SetDefault("server.host", DefaultHost)
	v.SetDefault("server.reload_config", DefaultReloadConfig)
	v.SetDefault("server.debug", DefaultDebug)
	v.SetDefault("server.timeout", DefaultTimeout)
	v.SetDefault("server.shutdown_timeout", DefaultShutdownTimeout)

	v.SetDefault("server.cors.enabled", true)
	v.SetDefault("server.cors.allow_origins", DefaultCORSOrigins)
	v.SetDefault("server.cors.allow_credentials", false)
	v.SetDefault("server.cors.max_age_hours", DefaultCORSMaxAge)
}

// Package configs 管理应用程序配置，包括上传目录、清单存储、缓存、消息队列和镜像的配置信息.
// configs 包支持多种配置格式（YAML、JSON、TOML、dotenv）并启用热重载.
//
// Example:
//
//	err := configs.InitConfig("./")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	config := configs.GetConfig()
//	fmt.Println(config.Server.Port)
//
// Example accessing Upload config:
//
//	config := configs.GetConfig()
//	limit := config.Upload.MaxBytes()
//	fmt.Println("Max upload:", limit)
//
// Example accessing Manifest config:
//
//	config := configs.GetConfig()
//	fmt.Println("Manifest backend:", config.Manifest.Backend)
package configs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/yeisme/docshelf/pkg/rule"
)

// AppName 应用名称，用于日志、指标与对象存储 UA.
const AppName = "docshelf"

// AppVersion 应用版本.
var AppVersion = "0.1.0"

// EnvPrefix 环境变量前缀，例如 DOCSHELF_SERVER_PORT.
const EnvPrefix = "DOCSHELF"

type (
	// AppConfig 全局应用程序配置.
	AppConfig struct {
		Server         ServerConfig         `mapstructure:"server"`          // ServerConfig 监听地址、CORS 等
		Log            LogConfig            `mapstructure:"log"`             // LogConfig 日志相关配置
		Upload         UploadConfig         `mapstructure:"upload"`          // UploadConfig 上传目录与校验规则
		Manifest       ManifestConfig       `mapstructure:"manifest"`        // ManifestConfig 文件清单存储
		DB             DBConfig             `mapstructure:"database"`        // DBConfig 数据库清单后端
		Cache          CacheConfig          `mapstructure:"cache"`           // CacheConfig 列表缓存
		KV             KVConfig             `mapstructure:"kv"`              // KVConfig 缓存使用的键值存储
		MQ             MQConfig             `mapstructure:"mq"`              // MQConfig 消息队列配置
		Events         EventsConfig         `mapstructure:"events"`          // EventsConfig 事件开关
		Mirror         MirrorConfig         `mapstructure:"mirror"`          // MirrorConfig S3 镜像
		Metrics        MetricsConfig        `mapstructure:"metrics"`         // MetricsConfig 指标
		Tracing        TracingConfig        `mapstructure:"tracing"`         // TracingConfig 链路追踪
		RateLimit      RateLimitConfig      `mapstructure:"rate_limit"`      // RateLimitConfig 上传限流
		CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"` // CircuitBreakerConfig 熔断
		Scheduler      SchedulerConfig      `mapstructure:"scheduler"`       // SchedulerConfig 维护任务
	}
)

var (
	// globalConfig 全局配置实例.
	globalConfig AppConfig
	// appViper 全局 Viper 实例.
	appViper *viper.Viper
	// configMu 保护热重载时对 globalConfig 的写入.
	configMu sync.RWMutex
	// watchers 热重载成功后依次调用.
	watchers []func(*AppConfig)
)

// configExts 目录模式下按顺序探测的配置文件扩展名.
var configExts = []string{"yaml", "yml", "json", "toml", "env", "dotenv"}

// InitConfig 加载应用程序配置到全局实例，支持多种格式(yaml、json、toml、dotenv)并启用热重载.
// 找不到配置文件时使用默认值.
func InitConfig(path string) error {
	v, cfg, err := load(path)
	if err != nil {
		return err
	}

	configMu.Lock()
	appViper = v
	globalConfig = *cfg
	configMu.Unlock()

	reloadConfigs(v, cfg.Server.ReloadConfig)

	return nil
}

// Load 读取并校验配置，不修改全局状态.
func Load(path string) (*AppConfig, error) {
	_, cfg, err := load(path)

	return cfg, err
}

func load(path string) (*viper.Viper, *AppConfig, error) {
	v := viper.New()
	// 设置默认值
	setAllDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	hasFile := locateConfig(v, path)

	if hasFile {
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	return v, &cfg, nil
}

// locateConfig 设置配置文件位置，返回是否找到配置文件.
func locateConfig(v *viper.Viper, path string) bool {
	if path == "" {
		path = "."
	}

	// 是文件，使用SetConfigFile，Viper会自动检测类型
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		v.SetConfigFile(path)

		return true
	}

	for _, dir := range []string{path, filepath.Join(path, "configs")} {
		for _, ext := range configExts {
			cfg := filepath.Join(dir, "config."+ext)
			if _, err := os.Stat(cfg); err == nil {
				v.SetConfigFile(cfg)

				return true
			}
		}
	}

	return false
}

// Validate 校验配置字段.
func (c *AppConfig) Validate() error {
	if err := rule.ValidateStruct(c); err != nil {
		if fields := rule.Errors(err); len(fields) > 0 {
			return fmt.Errorf("invalid config: %s", fields)
		}

		return fmt.Errorf("invalid config: %w", err)
	}

	if c.Manifest.Backend == ManifestBackendDB && c.DB.Type == "" {
		return errors.New("invalid config: manifest backend db requires database.type")
	}

	return nil
}

// Defaults 返回只包含默认值的配置.
func Defaults() *AppConfig {
	v := viper.New()
	setAllDefaults(v)

	var cfg AppConfig
	_ = v.Unmarshal(&cfg)

	return &cfg
}

// setAllDefaults 设置所有配置的默认值.
func setAllDefaults(v *viper.Viper) {
	var (
		serverConfig   ServerConfig
		logConfig      LogConfig
		uploadConfig   UploadConfig
		manifestConfig ManifestConfig
		dbConfig       DBConfig
		cacheConfig    CacheConfig
		kvConfig       KVConfig
		mqConfig       MQConfig
		eventsConfig   EventsConfig
		mirrorConfig   MirrorConfig
		metricsConfig  MetricsConfig
		tracingConfig  TracingConfig
		rateConfig     RateLimitConfig
		cbConfig       CircuitBreakerConfig
		schedConfig    SchedulerConfig
	)

	serverConfig.setDefaults(v)
	logConfig.setDefaults(v)
	uploadConfig.setDefaults(v)
	manifestConfig.setDefaults(v)
	dbConfig.setDefaults(v)
	cacheConfig.setDefaults(v)
	kvConfig.setDefaults(v)
	mqConfig.setDefaults(v)
	eventsConfig.setDefaults(v)
	mirrorConfig.setDefaults(v)
	metricsConfig.setDefaults(v)
	tracingConfig.setDefaults(v)
	rateConfig.setDefaults(v)
	cbConfig.setDefaults(v)
	schedConfig.setDefaults(v)
}

func reloadConfigs(v *viper.Viper, isHotReload bool) {
	if !isHotReload || v.ConfigFileUsed() == "" {
		return
	}
	// 启用配置热重载
	v.OnConfigChange(func(e fsnotify.Event) {
		fmt.Fprintln(os.Stderr, "Config file changed:", e.Name)

		var cfg AppConfig
		if err := v.Unmarshal(&cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error reloading config: %v\n", err)

			return
		}

		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Rejected reloaded config: %v\n", err)

			return
		}

		configMu.Lock()
		globalConfig = cfg
		fns := append([]func(*AppConfig){}, watchers...)
		configMu.Unlock()

		for _, fn := range fns {
			fn(&cfg)
		}
	})
	v.WatchConfig()
}

// OnChange 注册热重载回调，只在新配置通过校验后调用.
func OnChange(fn func(*AppConfig)) {
	configMu.Lock()
	watchers = append(watchers, fn)
	configMu.Unlock()
}

// GetConfig 返回全局配置实例.
func GetConfig() *AppConfig {
	configMu.RLock()
	defer configMu.RUnlock()

	cfg := globalConfig

	return &cfg
}

// GetViper 返回全局 Viper 实例，未初始化时为 nil.
func GetViper() *viper.Viper {
	return appViper
}

package configs

import "github.com/spf13/viper"

// ManifestBackend 清单存储后端类型.
type ManifestBackend string

const (
	// ManifestBackendJSON 单个 JSON 数组文件.
	ManifestBackendJSON ManifestBackend = "json"
	// ManifestBackendDB 通过 gorm 存储在数据库表中.
	ManifestBackendDB ManifestBackend = "db"

	DefaultManifestPath = "files-list.json" // 默认清单文件路径
)

// ManifestConfig 文件清单配置.
type ManifestConfig struct {
	Backend ManifestBackend `mapstructure:"backend" rule:"oneof=json db"`
	Path    string          `mapstructure:"path"    rule:"required_if=Backend json"`
}

func (c *ManifestConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("manifest.backend", ManifestBackendJSON)
	v.SetDefault("manifest.path", DefaultManifestPath)
}

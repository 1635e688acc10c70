package configs

import _ "embed"

// EmbeddedConfigs 嵌入的配置文件内容
type EmbeddedConfigs struct {
	Development []byte
	Testing     []byte
	Production  []byte
}

// 嵌入所有环境的配置文件（在configs目录内直接引用）
//
//go:embed development/config.json
var developmentConfig []byte

//go:embed testing/config.json
var testingConfig []byte

//go:embed production/config.json
var productionConfig []byte

// GetEmbeddedConfigs 获取所有嵌入的配置
func GetEmbeddedConfigs() *EmbeddedConfigs {
	return &EmbeddedConfigs{
		Development: developmentConfig,
		Testing:     testingConfig,
		Production:  productionConfig,
	}
}

// ForEnvironment 按环境名返回嵌入配置：dev | test | prod（默认）
func ForEnvironment(env string) []byte {
	switch env {
	case "dev", "development":
		return developmentConfig
	case "test", "testing":
		return testingConfig
	default:
		return productionConfig
	}
}

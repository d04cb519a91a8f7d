// Package config provides configuration for components-na tools, loaded via
// Viper from a TOML file with COMPONENTS_-prefixed environment overrides.
package config

// Config is the full tool configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Models   ModelsConfig   `mapstructure:"models"`
	Specs    SpecsConfig    `mapstructure:"specs"`
	Log      LogConfig      `mapstructure:"log"`
}

// DatabaseConfig locates the SQLite database holding persisted relation maps.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// ModelsConfig locates model documents.
type ModelsConfig struct {
	Dir string `mapstructure:"dir"`
	// Watch enables fsnotify-based eviction of cached relation maps when a
	// model file changes on disk.
	Watch bool `mapstructure:"watch"`
}

// SpecsConfig locates specification documents.
type SpecsConfig struct {
	Dir string `mapstructure:"dir"`
}

// LogConfig controls logging output.
type LogConfig struct {
	JSON bool `mapstructure:"json"`
}

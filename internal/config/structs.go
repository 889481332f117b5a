package config

// Config represents the complete configuration for tokenprinter.
// It covers the convert, settings and serve commands and can be loaded from
// configuration files, environment variables and command-line flags.
type Config struct {
	// Global settings
	LogLevel     string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose      bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`
	SettingsFile string `mapstructure:"settings_file" yaml:"settings_file" json:"settings_file"`

	// Document layout
	Document DocumentConfig `mapstructure:"document" yaml:"document" json:"document"`

	// Conversion behaviour
	Conversion ConversionConfig `mapstructure:"conversion" yaml:"conversion" json:"conversion"`

	// Server configuration (for serve command)
	Server ServerConfig `mapstructure:"server" yaml:"server" json:"server"`
}

// DocumentConfig controls how pictures are encoded and laid out.
type DocumentConfig struct {
	JPEGQuality int    `mapstructure:"jpeg_quality" yaml:"jpeg_quality" json:"jpeg_quality"`
	PageSize    string `mapstructure:"page_size" yaml:"page_size" json:"page_size"`
}

// ConversionConfig contains conversion run settings.
type ConversionConfig struct {
	Prefetch bool `mapstructure:"prefetch" yaml:"prefetch" json:"prefetch"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host            string `mapstructure:"host" yaml:"host" json:"host"`
	Port            int    `mapstructure:"port" yaml:"port" json:"port"`
	CORSOrigin      string `mapstructure:"cors_origin" yaml:"cors_origin" json:"cors_origin"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout"`
}

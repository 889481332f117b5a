package config

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/MeKo-Tech/tokenprinter/internal/convert"
	"github.com/MeKo-Tech/tokenprinter/internal/docx"
	"github.com/MeKo-Tech/tokenprinter/internal/images"
	"github.com/MeKo-Tech/tokenprinter/internal/version"
)

var validLogLevels = []string{"debug", "info", "warn", "error"}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		Verbose:  false,
		Document: DocumentConfig{
			JPEGQuality: images.DefaultJPEGQuality,
			PageSize:    docx.Letter.Name,
		},
		Conversion: ConversionConfig{
			Prefetch: false,
		},
		Server: ServerConfig{
			Host:            "localhost",
			Port:            8080,
			CORSOrigin:      "",
			ShutdownTimeout: 10,
		},
	}
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	if !slices.Contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.LogLevel, strings.Join(validLogLevels, ", "))
	}

	if c.Document.JPEGQuality < 1 || c.Document.JPEGQuality > 100 {
		return fmt.Errorf("invalid jpeg quality: %d (must be between 1 and 100)", c.Document.JPEGQuality)
	}
	if _, err := docx.ParsePageSize(c.Document.PageSize); err != nil {
		return err
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be between 1 and 65535)", c.Server.Port)
	}
	if c.Server.ShutdownTimeout < 0 {
		return fmt.Errorf("invalid shutdown timeout: %d (must not be negative)", c.Server.ShutdownTimeout)
	}

	return nil
}

// SlogLevel maps LogLevel onto a slog level. Verbose forces debug.
func (c *Config) SlogLevel() slog.Level {
	if c.Verbose {
		return slog.LevelDebug
	}
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ToConvertOptions converts the config to converter options. Progress and
// logger are left for the caller. Documents name this build as their creator.
func (c *Config) ToConvertOptions() convert.Options {
	page, err := docx.ParsePageSize(c.Document.PageSize)
	if err != nil {
		page = docx.Letter
	}
	return convert.Options{
		JPEGQuality: c.Document.JPEGQuality,
		PageSize:    page,
		Prefetch:    c.Conversion.Prefetch,
		Creator:     "tokenprinter " + version.Version,
	}
}

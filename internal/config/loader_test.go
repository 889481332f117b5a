package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

func newTestLoader(t *testing.T) *Loader {
	t.Helper()
	return NewLoaderWithViper(viper.New())
}

// TestLoadWithNoConfigFile tests loading with no config file present.
func TestLoadWithNoConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	t.Chdir(tmpDir)
	t.Setenv("XDG_CONFIG_HOME", tmpDir)
	t.Setenv("HOME", tmpDir)

	cfg, err := newTestLoader(t).Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}

	if cfg.LogLevel != infoLevel {
		t.Errorf("Expected default log level '%s', got %s", infoLevel, cfg.LogLevel)
	}
	if cfg.Document.JPEGQuality != 75 {
		t.Errorf("Expected default jpeg quality 75, got %d", cfg.Document.JPEGQuality)
	}
}

// TestLoadWithValidYAMLFile tests loading from a valid YAML file.
func TestLoadWithValidYAMLFile(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "tokenprinter.yaml")
	content := `
log_level: debug
document:
  jpeg_quality: 90
  page_size: a4
conversion:
  prefetch: true
server:
  port: 9090
`
	if err := os.WriteFile(configFile, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := newTestLoader(t).LoadWithFile(configFile)
	if err != nil {
		t.Fatalf("LoadWithFile() unexpected error: %v", err)
	}

	if cfg.LogLevel != debugLevel {
		t.Errorf("Expected log level debug, got %s", cfg.LogLevel)
	}
	if cfg.Document.JPEGQuality != 90 {
		t.Errorf("Expected jpeg quality 90, got %d", cfg.Document.JPEGQuality)
	}
	if cfg.Document.PageSize != "a4" {
		t.Errorf("Expected page size a4, got %s", cfg.Document.PageSize)
	}
	if !cfg.Conversion.Prefetch {
		t.Error("Expected prefetch true")
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Expected port 9090, got %d", cfg.Server.Port)
	}
	// untouched keys keep defaults
	if cfg.Server.Host != "localhost" {
		t.Errorf("Expected default host, got %s", cfg.Server.Host)
	}
}

// TestLoadWithMissingFile tests that an explicit missing file is an error.
func TestLoadWithMissingFile(t *testing.T) {
	_, err := newTestLoader(t).LoadWithFile(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil || !strings.Contains(err.Error(), "does not exist") {
		t.Errorf("Expected missing file error, got %v", err)
	}
}

// TestLoadWithInvalidValues tests validation failures surface from Load.
func TestLoadWithInvalidValues(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "tokenprinter.yaml")
	if err := os.WriteFile(configFile, []byte("document:\n  jpeg_quality: 0\n"), 0o600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	loader := newTestLoader(t)
	if _, err := loader.LoadWithFile(configFile); err == nil {
		t.Error("Expected validation error")
	}
}

// TestEnvironmentOverride tests TOKENPRINTER_ environment variables.
func TestEnvironmentOverride(t *testing.T) {
	tmpDir := t.TempDir()
	t.Chdir(tmpDir)
	t.Setenv("XDG_CONFIG_HOME", tmpDir)
	t.Setenv("HOME", tmpDir)
	t.Setenv("TOKENPRINTER_LOG_LEVEL", "warn")
	t.Setenv("TOKENPRINTER_DOCUMENT_PAGE_SIZE", "a4")

	cfg, err := newTestLoader(t).Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("Expected log level warn, got %s", cfg.LogLevel)
	}
	if cfg.Document.PageSize != "a4" {
		t.Errorf("Expected page size a4, got %s", cfg.Document.PageSize)
	}
}

// TestGenerateDefaultConfigFile tests writing the default config.
func TestGenerateDefaultConfigFile(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "conf", "tokenprinter.yaml")

	if err := GenerateDefaultConfigFile(filename); err != nil {
		t.Fatalf("GenerateDefaultConfigFile() error: %v", err)
	}

	data, err := os.ReadFile(filename) //nolint:gosec // G304: test path
	if err != nil {
		t.Fatalf("Failed to read generated file: %v", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("Generated file is not valid YAML: %v", err)
	}
	if cfg != DefaultConfig() {
		t.Errorf("Generated config differs from defaults: %+v", cfg)
	}

	if err := GenerateDefaultConfigFile(filename); err == nil {
		t.Error("Expected error when file already exists")
	}

	loaded, err := newTestLoader(t).LoadWithFile(filename)
	if err != nil {
		t.Fatalf("Generated file should load: %v", err)
	}
	if loaded.Server.Port != 8080 {
		t.Errorf("Expected port 8080, got %d", loaded.Server.Port)
	}
}

// TestGetConfigSearchPaths tests the search path list.
func TestGetConfigSearchPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	paths := GetConfigSearchPaths()

	if paths[0] != "." {
		t.Errorf("Expected current dir first, got %s", paths[0])
	}
	if paths[1] != filepath.Join("/xdg", "tokenprinter") {
		t.Errorf("Expected XDG path second, got %s", paths[1])
	}
	if paths[len(paths)-1] != "/etc/tokenprinter" {
		t.Errorf("Expected /etc path last, got %s", paths[len(paths)-1])
	}
}

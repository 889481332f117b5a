package support

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// TestContext holds the state for integration tests.
type TestContext struct {
	// Command execution state
	LastCommand   string
	LastOutput    string
	LastError     error
	LastExitCode  int
	LastStartTime time.Time
	LastDuration  time.Duration

	// Test environment
	WorkingDir   string
	TempDir      string
	HomeDir      string
	SettingsFile string
	InputDir     string
	OutputDir    string
	EnvVars      []string

	// Server management
	HTTPTestServer *HTTPTestServerWrapper

	// HTTP response state
	LastHTTPStatusCode int
	LastHTTPResponse   string
	LastHTTPHeaders    map[string]string

	// WebSocket message types in arrival order
	LastWebSocketMessages []string
}

// NewTestContext creates a new test context.
func NewTestContext() (*TestContext, error) {
	workingDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	// Look for go.mod file to identify project root
	currentDir := workingDir
	for {
		if _, err := os.Stat(filepath.Join(currentDir, "go.mod")); err == nil {
			workingDir = currentDir
			break
		}
		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}

	tempDir, err := os.MkdirTemp("", "tokenprinter-test-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}

	ctx := &TestContext{
		WorkingDir:   workingDir,
		TempDir:      tempDir,
		HomeDir:      filepath.Join(tempDir, "home"),
		SettingsFile: filepath.Join(tempDir, "settings.json"),
		OutputDir:    filepath.Join(tempDir, "out"),
		EnvVars:      []string{},
	}
	if err := os.MkdirAll(ctx.HomeDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create home directory: %w", err)
	}
	if err := os.MkdirAll(ctx.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	// Keep user configuration out of the scenario.
	ctx.AddEnvVar("HOME", ctx.HomeDir)
	ctx.AddEnvVar("XDG_CONFIG_HOME", filepath.Join(ctx.HomeDir, ".config"))

	return ctx, nil
}

// Cleanup stops the test server and removes the scenario's temp directory.
func (testCtx *TestContext) Cleanup() error {
	var errors []error

	if err := testCtx.StopServer(); err != nil {
		errors = append(errors, fmt.Errorf("failed to stop server: %w", err))
	}

	if err := os.RemoveAll(testCtx.TempDir); err != nil && !os.IsNotExist(err) {
		errors = append(errors, fmt.Errorf("failed to remove temp directory %s: %w", testCtx.TempDir, err))
	}

	if len(errors) > 0 {
		return fmt.Errorf("cleanup errors: %v", errors)
	}
	return nil
}

// AddEnvVar adds an environment variable for command execution.
func (testCtx *TestContext) AddEnvVar(name, value string) {
	testCtx.EnvVars = append(testCtx.EnvVars, fmt.Sprintf("%s=%s", name, value))
}

// GetTempDir creates and returns a fresh directory inside the scenario temp dir.
func (testCtx *TestContext) GetTempDir(prefix string) (string, error) {
	dirPath := filepath.Join(testCtx.TempDir, fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano()))
	if err := os.MkdirAll(dirPath, 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", dirPath, err)
	}
	return dirPath, nil
}

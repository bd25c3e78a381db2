package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	ScratchDir string `toml:"scratch_dir"`
	LogDir     string `toml:"log_dir"`
	APIBind    string `toml:"api_bind"`
}

// Converter contains settings shared by the conversion strategies.
type Converter struct {
	// DefaultOpset is the interchange operator-set version used when a
	// request does not declare one.
	DefaultOpset int `toml:"default_opset"`
	// Workers sizes the conversion worker pool.
	Workers int `toml:"workers"`
	// MaxUploadMiB bounds the accepted artifact size.
	MaxUploadMiB int `toml:"max_upload_mib"`
	// TensorFlowCommand is the external saved-model converter invocation,
	// split on whitespace (e.g. "python3 -m tf2onnx.convert").
	TensorFlowCommand string `toml:"tensorflow_command"`
	// TensorFlowTimeout bounds the external converter in seconds.
	TensorFlowTimeout int `toml:"tensorflow_timeout"`
}

// Journal contains configuration for the optional conversion journal.
type Journal struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// API contains request handling limits for the HTTP surface.
type API struct {
	RateLimitRPS   float64 `toml:"rate_limit_rps"`
	RateLimitBurst int     `toml:"rate_limit_burst"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for the gateway.
type Config struct {
	Paths     Paths     `toml:"paths"`
	Converter Converter `toml:"converter"`
	Journal   Journal   `toml:"journal"`
	API       API       `toml:"api"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/onnxgate/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. Missing files are not
// an error; defaults apply.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err = os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("onnxgate.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the daemon needs at runtime.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.ScratchDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if c.Journal.Enabled && strings.TrimSpace(c.Journal.Path) != "" {
		if err := os.MkdirAll(filepath.Dir(c.Journal.Path), 0o755); err != nil {
			return fmt.Errorf("create journal directory: %w", err)
		}
	}
	return nil
}

// TensorFlowConverterArgv returns the external converter command split into
// argv form, or nil when no command is configured.
func (c *Config) TensorFlowConverterArgv() []string {
	fields := strings.Fields(c.Converter.TensorFlowCommand)
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// MaxUploadBytes returns the configured upload cap in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.Converter.MaxUploadMiB) << 20
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

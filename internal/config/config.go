// Package config loads and validates the TOML configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"clipstudio/internal/ports/adapters/gemini"
)

const (
	defaultDataDir = "~/.local/share/clipstudio"
	defaultBind    = "127.0.0.1:8000"
	defaultModel   = "gemini-pro"
)

// Paths contains the storage locations. Uploads, outputs and the database
// default to subpaths of data_dir.
type Paths struct {
	DataDir      string `toml:"data_dir"`
	UploadsDir   string `toml:"uploads_dir"`
	OutputsDir   string `toml:"outputs_dir"`
	DatabasePath string `toml:"database_path"`
}

// Server contains the HTTP listener configuration.
type Server struct {
	Bind string `toml:"bind"`
}

// FFmpeg contains the media tool configuration.
type FFmpeg struct {
	FFmpegPath  string `toml:"ffmpeg_path"`
	FFprobePath string `toml:"ffprobe_path"`
	WorkDir     string `toml:"work_dir"`
}

// AI contains the cut-profile generator configuration. Mock selects the
// canned generator and needs no credentials.
type AI struct {
	Mock         bool     `toml:"mock"`
	APIKey       string   `toml:"api_key"`
	Model        string   `toml:"model"`
	BaseURL      string   `toml:"base_url"`
	AllowedHosts []string `toml:"allowed_hosts"`
}

// Logging contains log output configuration.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Config encapsulates all configuration values.
type Config struct {
	Paths   Paths   `toml:"paths"`
	Server  Server  `toml:"server"`
	FFmpeg  FFmpeg  `toml:"ffmpeg"`
	AI      AI      `toml:"ai"`
	Logging Logging `toml:"logging"`
}

func Default() Config {
	return Config{
		Paths:  Paths{DataDir: defaultDataDir},
		Server: Server{Bind: defaultBind},
		FFmpeg: FFmpeg{FFmpegPath: "ffmpeg", FFprobePath: "ffprobe"},
		AI:     AI{Mock: true, Model: defaultModel},
		Logging: Logging{
			Level:  "info",
			Format: "text",
		},
	}
}

// DefaultConfigPath returns the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/clipstudio/config.toml")
}

// Load locates, parses and validates a configuration file. The returned
// config has all path fields expanded and the derived paths filled in.
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
		_, err = os.Stat(expanded)
		if err != nil {
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
	projectPath, err := filepath.Abs("clipstudio.toml")
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

func (c *Config) normalize() error {
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.UploadsDir) == "" {
		c.Paths.UploadsDir = filepath.Join(c.Paths.DataDir, "uploads")
	}
	if c.Paths.UploadsDir, err = expandPath(c.Paths.UploadsDir); err != nil {
		return fmt.Errorf("paths.uploads_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.OutputsDir) == "" {
		c.Paths.OutputsDir = filepath.Join(c.Paths.DataDir, "outputs")
	}
	if c.Paths.OutputsDir, err = expandPath(c.Paths.OutputsDir); err != nil {
		return fmt.Errorf("paths.outputs_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.DatabasePath) == "" {
		c.Paths.DatabasePath = filepath.Join(c.Paths.DataDir, "clipstudio.db")
	}
	if c.Paths.DatabasePath, err = expandPath(c.Paths.DatabasePath); err != nil {
		return fmt.Errorf("paths.database_path: %w", err)
	}

	c.Server.Bind = strings.TrimSpace(c.Server.Bind)
	if c.Server.Bind == "" {
		c.Server.Bind = defaultBind
	}

	c.FFmpeg.FFmpegPath = strings.TrimSpace(c.FFmpeg.FFmpegPath)
	if c.FFmpeg.FFmpegPath == "" {
		c.FFmpeg.FFmpegPath = "ffmpeg"
	}
	c.FFmpeg.FFprobePath = strings.TrimSpace(c.FFmpeg.FFprobePath)
	if c.FFmpeg.FFprobePath == "" {
		c.FFmpeg.FFprobePath = "ffprobe"
	}
	if strings.TrimSpace(c.FFmpeg.WorkDir) != "" {
		if c.FFmpeg.WorkDir, err = expandPath(c.FFmpeg.WorkDir); err != nil {
			return fmt.Errorf("ffmpeg.work_dir: %w", err)
		}
	}

	if c.AI.APIKey == "" {
		if value, ok := os.LookupEnv("GEMINI_API_KEY"); ok {
			c.AI.APIKey = strings.TrimSpace(value)
		}
	}
	c.AI.Model = strings.TrimSpace(c.AI.Model)
	if c.AI.Model == "" {
		c.AI.Model = defaultModel
	}
	c.AI.BaseURL = strings.TrimSpace(c.AI.BaseURL)
	return nil
}

// Validate checks the parts of the configuration whose failure should stop
// startup rather than surface per request.
func (c *Config) Validate() error {
	if c.AI.Mock {
		return nil
	}
	if c.AI.APIKey == "" {
		return errors.New("ai.api_key is required unless ai.mock is enabled (set it or GEMINI_API_KEY)")
	}
	return gemini.ValidateBaseURL(c.AI.BaseURL, c.AI.AllowedHosts)
}

// EnsureDirectories creates the storage directories.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.DataDir, c.Paths.UploadsDir, c.Paths.OutputsDir, filepath.Dir(c.Paths.DatabasePath)}
	if strings.TrimSpace(c.FFmpeg.WorkDir) != "" {
		dirs = append(dirs, c.FFmpeg.WorkDir)
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
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

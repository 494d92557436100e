// Package config provides configuration loading and structs for the docproc server and CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug   bool          `yaml:"debug"`
	Server  ServerConfig  `yaml:"server"`
	Staging StagingConfig `yaml:"staging"`
	OCR     OCRConfig     `yaml:"ocr"`
	PDF     PDFConfig     `yaml:"pdf"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port"`
	MaxUploadMB    int64         `yaml:"max_upload_mb"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// MaxUploadBytes returns the upload limit in bytes.
func (s ServerConfig) MaxUploadBytes() int64 {
	return s.MaxUploadMB << 20
}

// StagingConfig controls where and how uploads are written before extraction.
// A relative Directory is resolved against the config file's directory ("~/" against
// the home directory); DOCPROC_STAGING_DIR follows the same rule with the working
// directory as base.
type StagingConfig struct {
	Directory          string `yaml:"directory"`
	Naming             string `yaml:"naming"`
	RemoveAfterExtract bool   `yaml:"remove_after_extract"`
}

// OCRConfig selects and tunes the recognition engine.
type OCRConfig struct {
	Engine        string            `yaml:"engine"`
	Languages     []string          `yaml:"languages"`
	PageSegMode   int               `yaml:"psm"`
	DPI           int               `yaml:"dpi"`
	MinWidth      int               `yaml:"min_width"`
	MaxConcurrent int               `yaml:"max_concurrent"`
	TesseractPath string            `yaml:"tesseract_path"`
	Variables     map[string]string `yaml:"variables"`
}

// PDFConfig controls scanned PDF handling.
type PDFConfig struct {
	Rasterizer string `yaml:"rasterizer"`
	MaxPages   int    `yaml:"max_pages"`
	DPI        int    `yaml:"dpi"`
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)
	cfg.Staging.Directory = expandPath(cfg.Staging.Directory, filepath.Dir(path))
	return &cfg, nil
}

// LoadOrDefault is Load, except that a missing file yields the defaults with
// the staging directory resolved against the working directory.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	cfg = &Config{}
	ApplyDefaults(cfg)
	wd, wdErr := os.Getwd()
	if wdErr != nil {
		return nil, fmt.Errorf("failed to resolve working directory: %w", wdErr)
	}
	cfg.Staging.Directory = expandPath(cfg.Staging.Directory, wd)
	return cfg, nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "~/" are relative to the
// home directory; every other relative path is relative to baseDir.
func expandPath(path string, baseDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
		return path
	}
	return filepath.Join(baseDir, path)
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables that override the config file.
const (
	EnvPort       = "PORT"
	EnvStagingDir = "DOCPROC_STAGING_DIR"
	EnvOCREngine  = "DOCPROC_OCR_ENGINE"
	EnvDebug      = "DOCPROC_DEBUG"
)

// LoadDotEnv loads variables from the given .env files into the process
// environment without replacing variables that are already set. Missing files
// are skipped; with no arguments ".env" in the working directory is tried.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides cfg with the docproc environment variables. Unset or
// empty variables leave the file value in place.
func ApplyEnv(cfg *Config) error {
	if v := os.Getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			return fmt.Errorf("invalid %s %q", EnvPort, v)
		}
		cfg.Server.Port = port
	}
	if v := os.Getenv(EnvStagingDir); v != "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("resolve %s: %w", EnvStagingDir, err)
		}
		cfg.Staging.Directory = expandPath(v, wd)
	}
	if v := os.Getenv(EnvOCREngine); v != "" {
		cfg.OCR.Engine = v
	}
	if v := os.Getenv(EnvDebug); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvDebug, v, err)
		}
		cfg.Debug = debug
	}
	return nil
}

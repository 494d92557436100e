package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestApplyEnv(t *testing.T) {
	staging := t.TempDir()
	t.Setenv(EnvPort, "5050")
	t.Setenv(EnvStagingDir, staging)
	t.Setenv(EnvOCREngine, "tesseract-cli")
	t.Setenv(EnvDebug, "true")

	cfg := &Config{}
	ApplyDefaults(cfg)
	if err := ApplyEnv(cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != 5050 {
		t.Errorf("port = %d, want 5050", cfg.Server.Port)
	}
	if cfg.Staging.Directory != staging {
		t.Errorf("staging directory = %q, want %q", cfg.Staging.Directory, staging)
	}
	if cfg.OCR.Engine != "tesseract-cli" {
		t.Errorf("engine = %q", cfg.OCR.Engine)
	}
	if !cfg.Debug {
		t.Error("debug should be enabled")
	}
}

func TestApplyEnv_unsetLeavesValues(t *testing.T) {
	for _, k := range []string{EnvPort, EnvStagingDir, EnvOCREngine, EnvDebug} {
		t.Setenv(k, "")
	}
	cfg := &Config{Server: ServerConfig{Port: 9000}, OCR: OCRConfig{Engine: "noop"}}
	if err := ApplyEnv(cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != 9000 || cfg.OCR.Engine != "noop" {
		t.Errorf("values changed: %+v", cfg)
	}
}

func TestApplyEnv_invalid(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"port not a number", EnvPort, "http"},
		{"port out of range", EnvPort, "70000"},
		{"debug not a bool", EnvDebug, "sometimes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if err := ApplyEnv(&Config{}); err == nil {
				t.Errorf("ApplyEnv with %s=%q: expected error", tt.key, tt.value)
			}
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("PORT=4711\nDOCPROC_OCR_ENGINE=noop\n"), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvPort, "")
	os.Unsetenv(EnvPort)
	t.Setenv(EnvOCREngine, "tesseract")

	if err := LoadDotEnv(path); err != nil {
		t.Fatal(err)
	}
	if got := os.Getenv(EnvPort); got != "4711" {
		t.Errorf("PORT = %q, want 4711", got)
	}
	if got := os.Getenv(EnvOCREngine); got != "tesseract" {
		t.Errorf("existing variable replaced: %q", got)
	}
}

func TestLoadDotEnv_missingFileIsSkipped(t *testing.T) {
	if err := LoadDotEnv(filepath.Join(t.TempDir(), "nope.env")); err != nil {
		t.Errorf("LoadDotEnv: %v", err)
	}
}

func TestApplyEnv_relativeStagingDirUsesWorkingDir(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvStagingDir, "uploads")
	cfg := &Config{}
	if err := ApplyEnv(cfg); err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(wd, "uploads"); cfg.Staging.Directory != want {
		t.Errorf("staging directory = %q, want %q", cfg.Staging.Directory, want)
	}
}

package config

import "time"

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 4000
	}
	if cfg.Server.MaxUploadMB == 0 {
		cfg.Server.MaxUploadMB = 16
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = 60 * time.Second
	}
	if cfg.Server.AllowedOrigins == nil {
		cfg.Server.AllowedOrigins = []string{"*"}
	}
	if cfg.Staging.Directory == "" {
		cfg.Staging.Directory = "./uploads"
	}
	if cfg.Staging.Naming == "" {
		cfg.Staging.Naming = "overwrite"
	}
	if cfg.OCR.Engine == "" {
		cfg.OCR.Engine = "tesseract"
	}
	if len(cfg.OCR.Languages) == 0 {
		cfg.OCR.Languages = []string{"eng"}
	}
	if cfg.OCR.PageSegMode == 0 {
		cfg.OCR.PageSegMode = 3
	}
	if cfg.OCR.DPI == 0 {
		cfg.OCR.DPI = 300
	}
	if cfg.OCR.MaxConcurrent == 0 {
		cfg.OCR.MaxConcurrent = 2
	}
	if cfg.OCR.TesseractPath == "" {
		cfg.OCR.TesseractPath = "tesseract"
	}
	if cfg.PDF.Rasterizer == "" {
		cfg.PDF.Rasterizer = "pdftoppm"
	}
	if cfg.PDF.MaxPages == 0 {
		cfg.PDF.MaxPages = 10
	}
	if cfg.PDF.DPI == 0 {
		cfg.PDF.DPI = 300
	}
}

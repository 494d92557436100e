// Package main is the docproc CLI entry point.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/hyperjump/docproc/internal/cli"
	"github.com/hyperjump/docproc/internal/config"
	"github.com/hyperjump/docproc/internal/extract"
	"github.com/hyperjump/docproc/internal/models"
	"github.com/hyperjump/docproc/internal/ocr"
	"github.com/hyperjump/docproc/internal/pipeline"
	"github.com/hyperjump/docproc/internal/server"
	"github.com/hyperjump/docproc/internal/staging"
	"github.com/hyperjump/docproc/internal/validate"
	"github.com/hyperjump/docproc/pkg/utils"
	"go.uber.org/zap"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/docproc/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks for
// config.yaml in the current directory (for development). A missing default file
// is not an error: defaults are used and the returned path is empty.
// Variables from .env and the environment are applied last.
func loadConfig(path string) (*config.Config, string, error) {
	resolved := path
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				resolved = fallback
			}
		}
	}

	var (
		cfg *config.Config
		err error
	)
	if resolved == defaultConfigPath {
		cfg, err = config.LoadOrDefault(resolved)
		if _, statErr := os.Stat(resolved); statErr != nil {
			resolved = ""
		}
	} else {
		cfg, err = config.Load(resolved)
	}
	if err != nil {
		return nil, "", err
	}

	if err := config.LoadDotEnv(); err != nil {
		return nil, "", err
	}
	if err := config.ApplyEnv(cfg); err != nil {
		return nil, "", err
	}
	return cfg, resolved, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "extract":
		runExtract()
	case "status":
		runStatus()
	case "sweep":
		runSweep()
	case "version", "--version", "-v":
		fmt.Printf("docproc version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (pipeline transitions, engine output sizes)")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.String("staging_dir", cfg.Staging.Directory),
		zap.Bool("debug", debugMode),
	)

	c, err := buildComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}

	srv := server.NewServer(c.Pipeline, c.Stager, c.Extractor.EngineName(), &cfg.Server, logger)
	go func() {
		if err := serveError(srv.Start()); err != nil {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

// serveError filters the error a stopped server returns after Shutdown.
func serveError(err error) error {
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func printExtractUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: docproc extract [flags] <file>...\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
Files are processed one at a time. Without --server the pipeline runs in this
process using the configured engine and staging directory.

Examples:
  docproc extract receipt.png
  docproc extract --output json scan.pdf
  docproc extract --server http://localhost:4000 a.jpg b.jpg
`)
}

// flagsFirst moves any flags (and their values) that appear after the file
// arguments to the front so that flag.Parse() sees them. Go's flag package
// stops at the first non-flag argument, so "docproc extract a.png -output json"
// would otherwise leave -output unparsed.
func flagsFirst(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

func runExtract() {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "", "server URL (empty = run the pipeline locally)")
	outputFormat := fs.String("output", "text", "output format: text (numbered lines), json (API body), or raw (extracted text only)")
	debug := fs.Bool("debug", false, "enable debug logging")
	fs.Usage = func() { printExtractUsage(fs) }
	_ = fs.Parse(flagsFirst(os.Args[2:]))

	if fs.NArg() < 1 {
		printExtractUsage(fs)
		os.Exit(1)
	}
	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var process func(ctx context.Context, path string) (*models.DocumentResult, error)
	if *serverURL != "" {
		process = func(ctx context.Context, path string) (*models.DocumentResult, error) {
			return extractViaHTTP(ctx, *serverURL, path)
		}
	} else {
		cfg, _, err := loadConfig(*configPath)
		if err != nil {
			fmt.Printf("Failed to load config: %v\n", err)
			os.Exit(1)
		}
		logger, err := utils.NewCLILogger(cfg.Debug || *debug)
		if err != nil {
			fmt.Printf("Failed to create logger: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()
		c, err := buildComponents(cfg, logger)
		if err != nil {
			fmt.Printf("Failed to initialize components: %v\n", err)
			os.Exit(1)
		}
		process = func(ctx context.Context, path string) (*models.DocumentResult, error) {
			return extractLocal(ctx, c.Pipeline, path)
		}
	}

	failed := 0
	for _, path := range fs.Args() {
		result, err := process(ctx, path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			failed++
			continue
		}
		if err := cli.WriteDocumentResult(os.Stdout, path, result, format); err != nil {
			fmt.Fprintf(os.Stderr, "%s: write output: %v\n", path, err)
			failed++
		}
	}
	if failed > 0 {
		os.Exit(1)
	}
}

// extractLocal reads path and runs it through p under its base name.
func extractLocal(ctx context.Context, p *pipeline.Pipeline, path string) (*models.DocumentResult, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return p.Process(ctx, payload, filepath.Base(path))
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "", "server URL (empty = inspect the local staging directory)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	var status *models.Status
	if *serverURL != "" {
		status, err = statusViaHTTP(context.Background(), *serverURL)
		if err != nil {
			fmt.Printf("Status request failed: %v\n", err)
			os.Exit(1)
		}
	} else {
		cfg, _, err := loadConfig(*configPath)
		if err != nil {
			fmt.Printf("Failed to load config: %v\n", err)
			os.Exit(1)
		}
		status, err = localStatus(cfg)
		if err != nil {
			fmt.Printf("Status failed: %v\n", err)
			os.Exit(1)
		}
	}
	if err := cli.WriteStatus(os.Stdout, status, format); err != nil {
		fmt.Printf("Failed to write status: %v\n", err)
		os.Exit(1)
	}
}

// localStatus describes the configuration and staging directory without a running server.
func localStatus(cfg *config.Config) (*models.Status, error) {
	naming, err := staging.ParseNaming(cfg.Staging.Naming)
	if err != nil {
		return nil, err
	}
	stager := staging.NewStager(staging.Location(cfg.Staging.Directory), staging.WithNaming(naming))
	files, size, err := stager.Usage()
	if err != nil {
		return nil, err
	}
	return &models.Status{
		Engine:       cfg.OCR.Engine,
		AllowedTypes: validate.Allowed(),
		MaxUploadMB:  cfg.Server.MaxUploadMB,
		Staging: models.StagingStatus{
			Directory: cfg.Staging.Directory,
			Naming:    string(stager.Naming()),
			Files:     files,
			Bytes:     size,
		},
	}, nil
}

func runSweep() {
	fs := flag.NewFlagSet("sweep", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	olderThan := fs.Duration("older-than", 24*time.Hour, "remove staged files last modified before this age")
	_ = fs.Parse(os.Args[2:])

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewCLILogger(cfg.Debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	stager := staging.NewStager(staging.Location(cfg.Staging.Directory), staging.WithLogger(logger))
	removed, err := stager.Sweep(*olderThan)
	if err != nil {
		fmt.Printf("Sweep failed after removing %d files: %v\n", removed, err)
		os.Exit(1)
	}
	fmt.Printf("Removed %d staged files older than %s from %s\n", removed, *olderThan, cfg.Staging.Directory)
}

// components holds the wired pipeline and the parts other commands inspect.
type components struct {
	Stager    *staging.Stager
	Extractor *extract.Extractor
	Pipeline  *pipeline.Pipeline
}

// buildComponents creates the engine, stager, extractor and pipeline from cfg.
func buildComponents(cfg *config.Config, logger *zap.Logger) (*components, error) {
	naming, err := staging.ParseNaming(cfg.Staging.Naming)
	if err != nil {
		return nil, err
	}
	engine, err := ocr.NewEngine(cfg.OCR.Engine, ocr.Options{
		Languages:   cfg.OCR.Languages,
		PageSegMode: cfg.OCR.PageSegMode,
		DPI:         cfg.OCR.DPI,
		Variables:   cfg.OCR.Variables,
		BinaryPath:  cfg.OCR.TesseractPath,
	})
	if err != nil {
		return nil, fmt.Errorf("ocr engine: %w", err)
	}

	stager := staging.NewStager(
		staging.Location(cfg.Staging.Directory),
		staging.WithNaming(naming),
		staging.WithLogger(logger),
	)
	extractOpts := []extract.ExtractorOption{
		extract.WithMinWidth(cfg.OCR.MinWidth),
		extract.WithMaxPages(cfg.PDF.MaxPages),
		extract.WithConcurrency(cfg.OCR.MaxConcurrent),
		extract.WithLogger(logger),
	}
	if cfg.PDF.Rasterizer != "none" {
		extractOpts = append(extractOpts, extract.WithRasterizer(extract.NewPdftoppmRasterizer(cfg.PDF.Rasterizer, cfg.PDF.DPI)))
	}
	extractor := extract.NewExtractor(engine, extractOpts...)

	p := pipeline.New(stager, extractor,
		pipeline.WithRemoveAfterExtract(cfg.Staging.RemoveAfterExtract),
		pipeline.WithLogger(logger),
	)
	return &components{Stager: stager, Extractor: extractor, Pipeline: p}, nil
}

func printUsage() {
	fmt.Printf(`docproc - document text extraction service

Usage:
  docproc <command> [flags]

Commands:
  server     Start the HTTP API (POST /api/documents, GET /health, GET /api/status)
  extract    Extract text from one or more local files
  status     Show engine and staging directory status
  sweep      Remove old files from the staging directory
  version    Print version
  help       Show this help

Accepted file types: %s

Configuration is read from %s, or ./config.yaml when present.
PORT, DOCPROC_STAGING_DIR, DOCPROC_OCR_ENGINE and DOCPROC_DEBUG override it
(a .env file in the working directory is loaded first).
`, joinTypes(validate.Allowed()), defaultConfigPath)
}

func joinTypes(types []string) string {
	out := ""
	for i, t := range types {
		if i > 0 {
			out += ", "
		}
		out += "." + t
	}
	return out
}

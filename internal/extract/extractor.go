// Package extract runs text extraction over staged uploads: images go through
// the recognition engine, PDFs use their text layer or are rasterized first.
package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hyperjump/docproc/internal/models"
	"github.com/hyperjump/docproc/internal/ocr"
	"go.uber.org/zap"
)

// ErrExtractionFailed is wrapped by every error returned from Extract.
var ErrExtractionFailed = errors.New("extraction failed")

// ErrPDFUnsupported is returned for scanned PDFs when no rasterizer is configured.
var ErrPDFUnsupported = errors.New("pdf has no text layer and no rasterizer is configured")

const (
	defaultMaxPages    = 10
	defaultConcurrency = 2
)

var pdfMagic = []byte("%PDF-")

// Extractor turns a staged file into raw text.
type Extractor struct {
	engine      ocr.Engine
	rasterizer  Rasterizer
	minWidth    int
	maxPages    int
	concurrency int
	logger      *zap.Logger

	inspectPDF   func(content []byte) (*pdfInfo, error)
	pdfTextLayer func(content []byte) (string, error)
}

// ExtractorOption configures an Extractor.
type ExtractorOption func(*Extractor)

// WithRasterizer sets the rasterizer used for PDFs without a text layer.
func WithRasterizer(r Rasterizer) ExtractorOption {
	return func(e *Extractor) { e.rasterizer = r }
}

// WithMinWidth upscales images narrower than px before recognition. Zero disables scaling.
func WithMinWidth(px int) ExtractorOption {
	return func(e *Extractor) { e.minWidth = px }
}

// WithMaxPages caps how many PDF pages are rasterized.
func WithMaxPages(n int) ExtractorOption {
	return func(e *Extractor) {
		if n > 0 {
			e.maxPages = n
		}
	}
}

// WithConcurrency bounds how many PDF pages are recognized at once.
func WithConcurrency(n int) ExtractorOption {
	return func(e *Extractor) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) ExtractorOption {
	return func(e *Extractor) { e.logger = l }
}

// NewExtractor returns an Extractor that recognizes images with engine.
func NewExtractor(engine ocr.Engine, opts ...ExtractorOption) *Extractor {
	e := &Extractor{
		engine:       engine,
		maxPages:     defaultMaxPages,
		concurrency:  defaultConcurrency,
		logger:       zap.NewNop(),
		inspectPDF:   inspectPDF,
		pdfTextLayer: extractPDFText,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// EngineName returns the name of the recognition engine.
func (e *Extractor) EngineName() string {
	return e.engine.Name()
}

// Extract reads the staged file and returns the engine's text unmodified.
// Every failure, including a panic inside a decoder or engine, is returned as
// an error wrapping ErrExtractionFailed.
func (e *Extractor) Extract(ctx context.Context, staged *models.StagedFile) (result *models.ExtractionResult, err error) {
	if staged == nil {
		return nil, fmt.Errorf("%w: no staged file", ErrExtractionFailed)
	}
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("extraction panicked", zap.String("path", staged.Path), zap.Any("panic", r))
			result = nil
			err = fmt.Errorf("%w: %v", ErrExtractionFailed, r)
		}
	}()

	content, err := os.ReadFile(staged.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: read staged file: %w", ErrExtractionFailed, err)
	}
	if isPDF(staged.Name, content) {
		result, err = e.extractPDF(ctx, staged.Path, content)
	} else {
		result, err = e.extractImage(ctx, content)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExtractionFailed, err)
	}
	e.logger.Debug("extracted text",
		zap.String("name", staged.Name),
		zap.String("method", result.Method),
		zap.Int("pages", result.Pages),
		zap.Int("chars", len(result.RawText)),
	)
	return result, nil
}

func (e *Extractor) extractImage(ctx context.Context, content []byte) (*models.ExtractionResult, error) {
	img, err := prepareImage(content, e.minWidth)
	if err != nil {
		return nil, err
	}
	text, err := e.engine.Recognize(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("recognize: %w", err)
	}
	return &models.ExtractionResult{RawText: text, Method: models.MethodOCR, Pages: 1}, nil
}

func isPDF(name string, content []byte) bool {
	return bytes.HasPrefix(content, pdfMagic) || strings.EqualFold(filepath.Ext(name), ".pdf")
}

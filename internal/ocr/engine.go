// Package ocr defines the recognition engine capability used by the extractor
// and the engines that implement it.
//
// An Engine converts one encoded image (PNG or JPEG) into text. Engines are
// small on purpose so that Tesseract, a remote service, or a test double can
// stand behind the same contract.
package ocr

import (
	"context"
	"errors"
	"fmt"
)

// ErrEngineUnavailable is returned when an engine cannot run in this build or
// environment (for example Tesseract bindings built without cgo).
var ErrEngineUnavailable = errors.New("ocr engine unavailable")

// Engine recognizes text in an encoded image.
type Engine interface {
	Name() string
	// Recognize returns the engine's raw text for image, including any
	// whitespace and line breaks the engine produced.
	Recognize(ctx context.Context, image []byte) (string, error)
}

// EngineType names an Engine implementation.
type EngineType string

const (
	// EngineTesseract uses libtesseract through gosseract. Requires cgo.
	EngineTesseract EngineType = "tesseract"
	// EngineTesseractCLI runs the tesseract binary.
	EngineTesseractCLI EngineType = "tesseract-cli"
	// EngineNoop recognizes nothing; every image yields empty text.
	EngineNoop EngineType = "noop"
)

// Options configure Tesseract-backed engines.
type Options struct {
	// Languages are traineddata names such as "eng" or "deu".
	Languages []string
	// PageSegMode is the Tesseract PSM; zero keeps the engine default.
	PageSegMode int
	// DPI is passed as user_defined_dpi when positive.
	DPI int
	// Variables are extra Tesseract variables (e.g. tessedit_char_whitelist).
	Variables map[string]string
	// BinaryPath is the tesseract executable for EngineTesseractCLI.
	BinaryPath string
}

// NewEngine creates an engine of the given type.
// Supported types: "tesseract" (default), "tesseract-cli", "noop".
func NewEngine(engineType string, opts Options) (Engine, error) {
	switch EngineType(engineType) {
	case EngineTesseract, "":
		e, err := NewTesseractEngine(opts)
		if err != nil {
			return nil, err
		}
		return e, nil
	case EngineTesseractCLI:
		return NewCLIEngine(opts), nil
	case EngineNoop:
		return NoopEngine{}, nil
	default:
		return nil, fmt.Errorf("unknown ocr engine: %s (supported: tesseract, tesseract-cli, noop)", engineType)
	}
}

// NoopEngine returns empty text for every image.
type NoopEngine struct{}

// Name returns "noop".
func (NoopEngine) Name() string { return string(EngineNoop) }

// Recognize returns "" unless ctx is already done.
func (NoopEngine) Recognize(ctx context.Context, _ []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return "", nil
}

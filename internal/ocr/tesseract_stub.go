//go:build !cgo
// +build !cgo

package ocr

import (
	"context"
	"fmt"
)

// TesseractEngine stub type when built without CGO (see tesseract.go for the real implementation).
type TesseractEngine struct{}

// NewTesseractEngine returns an error when built without CGO; use the
// tesseract-cli engine instead.
func NewTesseractEngine(_ Options) (*TesseractEngine, error) {
	return nil, fmt.Errorf("%w: tesseract bindings require CGO; build with CGO_ENABLED=1 or use engine %q", ErrEngineUnavailable, EngineTesseractCLI)
}

// Name returns "tesseract".
func (e *TesseractEngine) Name() string { return string(EngineTesseract) }

// Recognize always fails in builds without CGO.
func (e *TesseractEngine) Recognize(_ context.Context, _ []byte) (string, error) {
	return "", ErrEngineUnavailable
}

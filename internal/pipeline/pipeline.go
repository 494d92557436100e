// Package pipeline runs one upload through validation, staging, extraction
// and post-processing, stopping at the first stage that fails.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/hyperjump/docproc/internal/models"
	"github.com/hyperjump/docproc/internal/postprocess"
	"github.com/hyperjump/docproc/internal/validate"
	"go.uber.org/zap"
)

// Stage names a pipeline state.
type Stage string

const (
	StageReceived  Stage = "received"
	StageValidated Stage = "validated"
	StageStaged    Stage = "staged"
	StageExtracted Stage = "extracted"
	StageCompleted Stage = "completed"
)

// Kind classifies a pipeline failure.
type Kind string

const (
	KindInvalidInput     Kind = "invalid_input"
	KindStagingFailed    Kind = "staging_failed"
	KindExtractionFailed Kind = "extraction_failed"
)

// Sentinels matched by errors.Is against *Error.
var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrStagingFailed    = errors.New("staging failed")
	ErrExtractionFailed = errors.New("extraction failed")
)

// Error is returned by Process. Stage is the state the pipeline halted at:
// Validated for rejected input, Staged for staging faults and Extracted for
// extraction faults.
type Error struct {
	Kind  Kind
	Stage Stage
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel for the error's Kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrInvalidInput:
		return e.Kind == KindInvalidInput
	case ErrStagingFailed:
		return e.Kind == KindStagingFailed
	case ErrExtractionFailed:
		return e.Kind == KindExtractionFailed
	}
	return false
}

// Stager writes a validated upload to the staging location.
type Stager interface {
	Stage(payload []byte, filename string) (*models.StagedFile, error)
	Remove(staged *models.StagedFile) error
}

// Extractor produces raw text from a staged file.
type Extractor interface {
	Extract(ctx context.Context, staged *models.StagedFile) (*models.ExtractionResult, error)
}

// Pipeline composes the stages for one request at a time; it holds no
// per-request state and is safe for concurrent use.
type Pipeline struct {
	stager             Stager
	extractor          Extractor
	removeAfterExtract bool
	logger             *zap.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithRemoveAfterExtract deletes the staged file once extraction has finished,
// whether it succeeded or not.
func WithRemoveAfterExtract(remove bool) Option {
	return func(p *Pipeline) { p.removeAfterExtract = remove }
}

// WithLogger sets a logger for stage transitions and failures.
func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// New returns a Pipeline over the given stages.
func New(stager Stager, extractor Extractor, opts ...Option) *Pipeline {
	p := &Pipeline{
		stager:    stager,
		extractor: extractor,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process runs payload through the pipeline exactly once. On failure the
// returned error is a *Error; nothing is retried.
func (p *Pipeline) Process(ctx context.Context, payload []byte, filename string) (*models.DocumentResult, error) {
	log := p.logger.With(zap.String("filename", filename))

	if _, err := validate.Validate(filename); err != nil {
		return nil, p.fail(log, KindInvalidInput, StageValidated, err)
	}
	log.Debug("pipeline transition", zap.String("stage", string(StageValidated)))

	staged, err := p.stager.Stage(payload, filename)
	if err != nil {
		return nil, p.fail(log, KindStagingFailed, StageStaged, err)
	}
	log.Debug("pipeline transition", zap.String("stage", string(StageStaged)), zap.String("staged", staged.Name))

	extracted, err := p.extractor.Extract(ctx, staged)
	if p.removeAfterExtract {
		if rmErr := p.stager.Remove(staged); rmErr != nil {
			log.Warn("remove staged file failed", zap.String("path", staged.Path), zap.Error(rmErr))
		}
	}
	if err != nil {
		return nil, p.fail(log, KindExtractionFailed, StageExtracted, err)
	}
	log.Debug("pipeline transition", zap.String("stage", string(StageExtracted)), zap.String("method", extracted.Method))

	result := postprocess.Postprocess(extracted.RawText)
	log.Debug("pipeline transition", zap.String("stage", string(StageCompleted)), zap.Int("lines", len(result.Lines)))
	return &result, nil
}

// ProcessRequest is Process for an UploadRequest.
func (p *Pipeline) ProcessRequest(ctx context.Context, req *models.UploadRequest) (*models.DocumentResult, error) {
	return p.Process(ctx, req.Payload, req.Filename)
}

func (p *Pipeline) fail(log *zap.Logger, kind Kind, stage Stage, err error) error {
	log.Warn("pipeline failed", zap.String("kind", string(kind)), zap.String("stage", string(stage)), zap.Error(err))
	return &Error{Kind: kind, Stage: stage, Err: err}
}

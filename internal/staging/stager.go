// Package staging writes validated uploads to the staging directory and manages
// the lifecycle of the files it holds.
package staging

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/hyperjump/docproc/internal/models"
	"go.uber.org/zap"
)

// ErrStagingFailed is wrapped by every error returned from Stage.
var ErrStagingFailed = errors.New("staging failed")

// Location is the directory uploads are staged in.
type Location string

// Path returns the location as a filesystem path.
func (l Location) Path() string { return string(l) }

// Naming selects how staged file names are derived from the sanitized name.
type Naming string

const (
	// NamingOverwrite stages as <sanitized>; a later upload with the same
	// sanitized name replaces the earlier file.
	NamingOverwrite Naming = "overwrite"
	// NamingUnique stages as <uuid>_<sanitized>.
	NamingUnique Naming = "unique"
	// NamingContent stages as <sha256 prefix>_<sanitized>; identical payloads
	// with the same name share one file.
	NamingContent Naming = "content"
)

// ParseNaming validates a naming policy string. Empty selects NamingOverwrite.
func ParseNaming(s string) (Naming, error) {
	switch Naming(s) {
	case "", NamingOverwrite:
		return NamingOverwrite, nil
	case NamingUnique, NamingContent:
		return Naming(s), nil
	default:
		return "", fmt.Errorf("unknown staging naming policy %q", s)
	}
}

// Stager writes payloads into a Location.
type Stager struct {
	location Location
	naming   Naming
	fileMode os.FileMode
	logger   *zap.Logger
}

// StagerOption configures a Stager.
type StagerOption func(*Stager)

// WithNaming sets the naming policy.
func WithNaming(n Naming) StagerOption {
	return func(s *Stager) { s.naming = n }
}

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) StagerOption {
	return func(s *Stager) { s.logger = l }
}

// NewStager returns a Stager for loc. The default policy is NamingOverwrite.
func NewStager(loc Location, opts ...StagerOption) *Stager {
	s := &Stager{
		location: loc,
		naming:   NamingOverwrite,
		fileMode: 0o644,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Location returns the staging directory.
func (s *Stager) Location() Location { return s.location }

// Naming returns the active naming policy.
func (s *Stager) Naming() Naming { return s.naming }

// Stage sanitizes filename, creates the staging directory if needed and writes
// payload to it. Under NamingOverwrite an existing file with the same staged
// name is replaced.
func (s *Stager) Stage(payload []byte, filename string) (*models.StagedFile, error) {
	name := s.stagedName(payload, SanitizeKeepExt(filename))
	dir := s.location.Path()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create staging directory: %w", ErrStagingFailed, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, payload, s.fileMode); err != nil {
		return nil, fmt.Errorf("%w: write %s: %w", ErrStagingFailed, name, err)
	}
	s.logger.Debug("staged upload",
		zap.String("filename", filename),
		zap.String("staged_name", name),
		zap.Int("bytes", len(payload)),
	)
	return &models.StagedFile{Name: name, Path: path}, nil
}

func (s *Stager) stagedName(payload []byte, sanitized string) string {
	switch s.naming {
	case NamingUnique:
		return uuid.New().String() + "_" + sanitized
	case NamingContent:
		sum := sha256.Sum256(payload)
		return hex.EncodeToString(sum[:8]) + "_" + sanitized
	default:
		return sanitized
	}
}

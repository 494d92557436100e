package staging

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/hyperjump/docproc/internal/models"
	"go.uber.org/zap"
)

// Remove deletes a staged file. A file that is already gone is not an error.
func (s *Stager) Remove(staged *models.StagedFile) error {
	if staged == nil {
		return nil
	}
	if err := os.Remove(staged.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove staged file: %w", err)
	}
	return nil
}

// Sweep removes regular files in the staging directory whose modification time
// is older than olderThan and returns how many were removed. A missing staging
// directory sweeps nothing.
func (s *Stager) Sweep(olderThan time.Duration) (int, error) {
	entries, err := os.ReadDir(s.location.Path())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("read staging directory: %w", err)
	}
	cutoff := time.Now().Add(-olderThan)
	removed := 0
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return removed, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.location.Path(), e.Name())); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return removed, fmt.Errorf("remove %s: %w", e.Name(), err)
		}
		removed++
		s.logger.Debug("swept staged file", zap.String("name", e.Name()), zap.Time("mod_time", info.ModTime()))
	}
	return removed, nil
}

// Usage returns the number of regular files in the staging directory and their
// total size. A missing directory reports zero.
func (s *Stager) Usage() (int, int64, error) {
	var files int
	var total int64
	err := filepath.WalkDir(s.location.Path(), func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return fs.SkipAll
			}
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		files++
		total += info.Size()
		return nil
	})
	if err != nil {
		return 0, 0, fmt.Errorf("staging usage: %w", err)
	}
	return files, total, nil
}

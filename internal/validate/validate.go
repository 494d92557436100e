// Package validate decides whether an uploaded filename names a supported document type.
package validate

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrRejected is wrapped by every rejection returned from Validate.
var ErrRejected = errors.New("file rejected")

var (
	// ErrEmptyFilename is returned when no filename was supplied.
	ErrEmptyFilename = fmt.Errorf("%w: empty filename", ErrRejected)
	// ErrNoExtension is returned when the filename has no "." separator.
	ErrNoExtension = fmt.Errorf("%w: missing extension", ErrRejected)
	// ErrDisallowedType is returned when the extension is not in the allow-list.
	ErrDisallowedType = fmt.Errorf("%w: disallowed file type", ErrRejected)
)

var allowed = map[string]struct{}{
	"png":  {},
	"jpg":  {},
	"jpeg": {},
	"pdf":  {},
}

// Validate returns the lower-cased extension of filename (without the dot) when
// it is in the allow-list, or an error wrapping ErrRejected.
func Validate(filename string) (string, error) {
	if strings.TrimSpace(filename) == "" {
		return "", ErrEmptyFilename
	}
	i := strings.LastIndexByte(filename, '.')
	if i < 0 {
		return "", ErrNoExtension
	}
	ext := strings.ToLower(filename[i+1:])
	if _, ok := allowed[ext]; !ok {
		return "", fmt.Errorf("%w: %q", ErrDisallowedType, ext)
	}
	return ext, nil
}

// IsPDF reports whether ext (as returned by Validate) names a PDF.
func IsPDF(ext string) bool {
	return ext == "pdf"
}

// Allowed returns the accepted extensions in sorted order.
func Allowed() []string {
	out := make([]string, 0, len(allowed))
	for ext := range allowed {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

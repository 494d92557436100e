// Package postprocess turns raw extracted text into a DocumentResult.
package postprocess

import (
	"strings"

	"github.com/hyperjump/docproc/internal/models"
)

// Postprocess splits raw on newlines and keeps every line that is not empty or
// whitespace-only. Kept lines are returned verbatim in their original order.
func Postprocess(raw string) models.DocumentResult {
	lines := make([]string, 0)
	for _, line := range strings.Split(raw, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return models.DocumentResult{Text: raw, Lines: lines}
}

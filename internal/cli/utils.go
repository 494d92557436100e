// Package cli provides output helpers for the docproc command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hyperjump/docproc/internal/models"
	"github.com/hyperjump/docproc/pkg/utils"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
	// OutputRaw prints only the extracted text, unmodified.
	OutputRaw OutputFormat = "raw"
)

// ParseOutputFormat validates a format flag value. Empty selects OutputText.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(strings.ToLower(s)) {
	case "", OutputText:
		return OutputText, nil
	case OutputJSON:
		return OutputJSON, nil
	case OutputRaw:
		return OutputRaw, nil
	}
	return "", fmt.Errorf("unknown output format %q (want text, json or raw)", s)
}

// WriteDocumentResult writes the extraction result for source to w.
// Use OutputJSON for the same body the HTTP API returns.
func WriteDocumentResult(w io.Writer, source string, result *models.DocumentResult, format OutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	case OutputRaw:
		_, err := io.WriteString(w, result.Text)
		return err
	default:
		writeDocumentResultText(w, source, result)
		return nil
	}
}

func writeDocumentResultText(w io.Writer, source string, result *models.DocumentResult) {
	fmt.Fprintf(w, "\n%s: %d lines\n", source, len(result.Lines))
	if len(result.Lines) == 0 {
		fmt.Fprintln(w, "(no text recognized)")
		return
	}
	fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
	width := len(fmt.Sprint(len(result.Lines)))
	for i, line := range result.Lines {
		fmt.Fprintf(w, "%*d  %s\n", width, i+1, line)
	}
	fmt.Fprintln(w)
}

// WriteStatus writes an instance status report to w.
func WriteStatus(w io.Writer, status *models.Status, format OutputFormat) error {
	if format == OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(status)
	}
	fmt.Fprintf(w, "Engine:         %s\n", status.Engine)
	fmt.Fprintf(w, "Allowed types:  %s\n", strings.Join(status.AllowedTypes, ", "))
	if status.MaxUploadMB > 0 {
		fmt.Fprintf(w, "Max upload:     %d MiB\n", status.MaxUploadMB)
	}
	if status.Staging.Directory != "" {
		fmt.Fprintf(w, "Staging dir:    %s\n", status.Staging.Directory)
	}
	fmt.Fprintf(w, "Naming policy:  %s\n", status.Staging.Naming)
	fmt.Fprintf(w, "Staged files:   %d (%s)\n", status.Staging.Files, utils.HumanBytes(status.Staging.Bytes))
	return nil
}

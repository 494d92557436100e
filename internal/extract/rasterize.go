package extract

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Rasterizer renders PDF pages to encoded images, first page first.
type Rasterizer interface {
	Rasterize(ctx context.Context, pdfPath string, maxPages int) ([][]byte, error)
}

// PdftoppmRasterizer renders pages to PNG with poppler's pdftoppm.
type PdftoppmRasterizer struct {
	Binary string
	DPI    int
}

// NewPdftoppmRasterizer returns a rasterizer using binary ("pdftoppm" when
// empty) at dpi (300 when not positive).
func NewPdftoppmRasterizer(binary string, dpi int) *PdftoppmRasterizer {
	if binary == "" {
		binary = "pdftoppm"
	}
	if dpi <= 0 {
		dpi = 300
	}
	return &PdftoppmRasterizer{Binary: binary, DPI: dpi}
}

// Rasterize renders up to maxPages pages (all when maxPages <= 0).
func (r *PdftoppmRasterizer) Rasterize(ctx context.Context, pdfPath string, maxPages int) ([][]byte, error) {
	dir, err := os.MkdirTemp("", "docproc-pdf-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	prefix := filepath.Join(dir, "page")
	cmd := exec.CommandContext(ctx, r.Binary, r.args(pdfPath, prefix, maxPages)...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("pdftoppm failed: %w: %s", err, strings.TrimSpace(string(out)))
	}

	matches, err := filepath.Glob(prefix + "-*.png")
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("pdftoppm produced no pages")
	}
	// pdftoppm zero-pads page numbers to a common width, so lexical order is page order.
	sort.Strings(matches)
	pages := make([][]byte, 0, len(matches))
	for _, m := range matches {
		data, err := os.ReadFile(m)
		if err != nil {
			return nil, fmt.Errorf("read rendered page: %w", err)
		}
		pages = append(pages, data)
	}
	return pages, nil
}

func (r *PdftoppmRasterizer) args(pdfPath, prefix string, maxPages int) []string {
	args := []string{"-png", "-r", strconv.Itoa(r.DPI)}
	if maxPages > 0 {
		args = append(args, "-f", "1", "-l", strconv.Itoa(maxPages))
	}
	return append(args, pdfPath, prefix)
}

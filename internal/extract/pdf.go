package extract

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/hyperjump/docproc/internal/models"
	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type pdfInfo struct {
	Pages     int
	HasImages bool
}

// extractPDF returns the PDF's text layer when it has one. Scanned PDFs are
// rasterized and every page is recognized; page texts are joined with "\n"
// in page order.
func (e *Extractor) extractPDF(ctx context.Context, path string, content []byte) (*models.ExtractionResult, error) {
	info, err := e.inspectPDF(content)
	if err != nil {
		return nil, err
	}

	text, err := e.pdfTextLayer(content)
	if err != nil {
		e.logger.Debug("pdf text layer unavailable", zap.String("path", path), zap.Error(err))
		text = ""
	}
	if strings.TrimSpace(text) != "" {
		return &models.ExtractionResult{RawText: text, Method: models.MethodPDFText, Pages: info.Pages}, nil
	}
	if !info.HasImages {
		return &models.ExtractionResult{RawText: "", Method: models.MethodPDFEmpty, Pages: info.Pages}, nil
	}
	if e.rasterizer == nil {
		return nil, ErrPDFUnsupported
	}

	pages, err := e.rasterizer.Rasterize(ctx, path, e.maxPages)
	if err != nil {
		return nil, fmt.Errorf("rasterize: %w", err)
	}
	texts := make([]string, len(pages))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, page := range pages {
		i, page := i, page
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					e.logger.Error("page recognition panicked", zap.String("path", path), zap.Int("page", i+1), zap.Any("panic", r))
					err = fmt.Errorf("recognize page %d: panic: %v", i+1, r)
				}
			}()
			t, err := e.engine.Recognize(gctx, page)
			if err != nil {
				return fmt.Errorf("recognize page %d: %w", i+1, err)
			}
			texts[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &models.ExtractionResult{
		RawText: strings.Join(texts, "\n"),
		Method:  models.MethodPDFOCR,
		Pages:   len(pages),
	}, nil
}

// inspectPDF validates content with pdfcpu and reports its page count and
// whether any page carries image XObjects.
func inspectPDF(content []byte) (*pdfInfo, error) {
	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(content), conf)
	if err != nil {
		return nil, fmt.Errorf("pdfcpu read: %w", err)
	}
	return &pdfInfo{Pages: ctx.PageCount, HasImages: hasImageStreams(ctx)}, nil
}

func hasImageStreams(ctx *model.Context) bool {
	if ctx.Optimize != nil {
		for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
			if len(pdfcpu.ImageObjNrs(ctx, pageNr)) > 0 {
				return true
			}
		}
	}
	for _, entry := range ctx.Table {
		if entry == nil || entry.Free || entry.Compressed {
			continue
		}
		sd, ok := entry.Object.(types.StreamDict)
		if !ok {
			continue
		}
		if subtype, found := sd.Find("Subtype"); found {
			if name, isName := subtype.(types.Name); isName && name == "Image" {
				return true
			}
		}
	}
	return false
}

// extractPDFText reads the text layer page by page.
func extractPDFText(content []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("open PDF: %w", err)
	}
	var buf bytes.Buffer
	numPages := r.NumPage()
	for i := 0; i < numPages; i++ {
		page := r.Page(i + 1)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("extract page %d: %w", i+1, err)
		}
		buf.WriteString(text)
		if i < numPages-1 {
			buf.WriteByte('\n')
		}
	}
	return buf.String(), nil
}

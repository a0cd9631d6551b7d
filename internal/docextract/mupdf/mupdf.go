// Package mupdf extracts positioned text with MuPDF through go-fitz. It needs
// cgo and is selected with PDF_EXTRACTOR=mupdf.
package mupdf

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gen2brain/go-fitz"

	"github.com/joseph-ayodele/blueprint-estimator/internal/common"
	"github.com/joseph-ayodele/blueprint-estimator/internal/docextract"
)

// Extractor implements docextract.Extractor with MuPDF.
type Extractor struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{logger: logger}
}

func (e *Extractor) Extract(ctx context.Context, data []byte, opts docextract.Options) ([]docextract.Page, error) {
	if err := docextract.CheckPDF(data); err != nil {
		return nil, err
	}

	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, common.Extraction("open pdf", err)
	}
	defer func() {
		if cerr := doc.Close(); cerr != nil {
			e.logger.Warn("docextract.mupdf.close_failed", "error", cerr)
		}
	}()

	n := doc.NumPage()
	if n == 0 {
		return nil, common.Extraction("pdf has no pages", nil)
	}
	if opts.MaxPages > 0 && n > opts.MaxPages {
		n = opts.MaxPages
	}

	pages := make([]docextract.Page, 0, n)
	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		markup, err := doc.HTML(i, false)
		if err != nil {
			return nil, common.Extraction(fmt.Sprintf("read page %d", i+1), err)
		}
		page, err := docextract.ParseStextHTML(strings.NewReader(markup), i+1)
		if err != nil {
			return nil, common.Extraction(fmt.Sprintf("parse page %d", i+1), err)
		}
		if page.Width == 0 {
			if b, berr := doc.Bound(i); berr == nil {
				page.Width, page.Height = float64(b.Dx()), float64(b.Dy())
			}
		}
		pages = append(pages, page)
	}

	e.logger.Debug("docextract.mupdf.ok", "pages", len(pages), "tokens", len(docextract.Flatten(pages)))
	return pages, nil
}

// Package docextract turns PDF bytes into positioned text tokens.
package docextract

import (
	"bytes"
	"context"
	"errors"
	"time"

	"github.com/joseph-ayodele/blueprint-estimator/internal/common"
	"github.com/joseph-ayodele/blueprint-estimator/internal/entity"
)

// Token is one run of text with its bounding box in page points, origin top-left.
type Token struct {
	Page   int     `json:"page"`
	Str    string  `json:"str"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Box returns the token's bounding box.
func (t Token) Box() entity.BoundingBox {
	return entity.BoundingBox{X1: t.X, Y1: t.Y, X2: t.X + t.Width, Y2: t.Y + t.Height}
}

// Page is one page of tokens in reading order.
type Page struct {
	Number  int     `json:"number"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Content []Token `json:"content"`
}

// Options tune an extraction run.
type Options struct {
	// MaxPages stops after this many pages; 0 means all.
	MaxPages int
}

// Extractor produces positioned tokens from a PDF document.
type Extractor interface {
	Extract(ctx context.Context, data []byte, opts Options) ([]Page, error)
}

// Flatten returns every token of every page, in page order.
func Flatten(pages []Page) []Token {
	n := 0
	for _, p := range pages {
		n += len(p.Content)
	}
	out := make([]Token, 0, n)
	for _, p := range pages {
		out = append(out, p.Content...)
	}
	return out
}

var pdfMagic = []byte("%PDF-")

// CheckPDF rejects input that is empty or does not carry a PDF header.
func CheckPDF(data []byte) error {
	if len(data) == 0 {
		return common.Extraction("document is empty", nil)
	}
	head := data
	if len(head) > 1024 {
		head = head[:1024]
	}
	if !bytes.Contains(head, pdfMagic) {
		return common.Extraction("document is not a PDF", nil)
	}
	return nil
}

type timeoutExtractor struct {
	next    Extractor
	timeout time.Duration
}

// WithTimeout bounds every extraction run of next. A run cut short reports an
// extraction error. d <= 0 returns next unchanged.
func WithTimeout(next Extractor, d time.Duration) Extractor {
	if d <= 0 {
		return next
	}
	return timeoutExtractor{next: next, timeout: d}
}

func (t timeoutExtractor) Extract(ctx context.Context, data []byte, opts Options) ([]Page, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	pages, err := t.next.Extract(ctx, data, opts)
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) && !errors.Is(err, common.ErrExtraction) {
		return nil, common.Extraction("extraction timed out after "+t.timeout.String(), err)
	}
	return pages, err
}

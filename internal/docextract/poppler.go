package docextract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/joseph-ayodele/blueprint-estimator/internal/common"
)

// PopplerConfig configures the pdftotext-backed extractor.
type PopplerConfig struct {
	Pdftotext string // binary name or path
	TempDir   string // where PDF bytes are staged; "" uses os.TempDir
}

// PopplerExtractor runs `pdftotext -bbox-layout` and reads one token per text line.
type PopplerExtractor struct {
	cfg    PopplerConfig
	runner Runner
	logger *slog.Logger
}

// NewPopplerExtractor builds an extractor. A nil runner uses ExecRunner.
func NewPopplerExtractor(cfg PopplerConfig, runner Runner, logger *slog.Logger) *PopplerExtractor {
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if runner == nil {
		runner = ExecRunner{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PopplerExtractor{cfg: cfg, runner: runner, logger: logger}
}

func (e *PopplerExtractor) Extract(ctx context.Context, data []byte, opts Options) ([]Page, error) {
	if err := CheckPDF(data); err != nil {
		return nil, err
	}

	if e.cfg.TempDir != "" {
		if err := os.MkdirAll(e.cfg.TempDir, 0o755); err != nil {
			return nil, common.Extraction("create staging dir", err)
		}
	}
	f, err := os.CreateTemp(e.cfg.TempDir, "blueprint-*.pdf")
	if err != nil {
		return nil, common.Extraction("stage pdf", err)
	}
	path := f.Name()
	defer func() {
		if rmErr := os.Remove(path); rmErr != nil {
			e.logger.Warn("docextract.poppler.cleanup_failed", "path", path, "error", rmErr)
		}
	}()
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return nil, common.Extraction("stage pdf", err)
	}
	if err := f.Close(); err != nil {
		return nil, common.Extraction("stage pdf", err)
	}

	// pdftotext -bbox-layout -enc UTF-8 [-l N] <path> -
	args := []string{"-bbox-layout", "-enc", "UTF-8"}
	if opts.MaxPages > 0 {
		args = append(args, "-l", strconv.Itoa(opts.MaxPages))
	}
	args = append(args, path, "-")

	out, errb, err := e.runner.Run(ctx, e.cfg.Pdftotext, e.logger, args...)
	if err != nil {
		msg := strings.TrimSpace(string(errb))
		if msg == "" {
			msg = "pdftotext failed"
		}
		return nil, common.Extraction(msg, err)
	}

	pages, err := ParseBBoxLayout(bytes.NewReader(out))
	if err != nil {
		return nil, common.Extraction("parse pdftotext output", err)
	}
	e.logger.Debug("docextract.poppler.ok", "pages", len(pages), "tokens", len(Flatten(pages)))
	return pages, nil
}

// ParseBBoxLayout reads pdftotext's -bbox-layout XHTML. Each <line> becomes a
// token whose text is its words joined by single spaces.
func ParseBBoxLayout(r io.Reader) ([]Page, error) {
	z := html.NewTokenizer(r)

	var (
		pages  []Page
		cur    *Page
		line   *Token
		words  []string
		inWord bool
		word   strings.Builder
	)

	for {
		switch z.Next() {
		case html.ErrorToken:
			if err := z.Err(); err != io.EOF {
				return nil, err
			}
			return pages, nil

		case html.StartTagToken:
			tok := z.Token()
			switch tok.Data {
			case "page":
				pages = append(pages, Page{
					Number: len(pages) + 1,
					Width:  attrFloat(tok, "width"),
					Height: attrFloat(tok, "height"),
				})
				cur = &pages[len(pages)-1]
			case "line":
				if cur == nil {
					return nil, fmt.Errorf("line outside page")
				}
				xMin, yMin := attrFloat(tok, "xmin"), attrFloat(tok, "ymin")
				line = &Token{
					Page:   cur.Number,
					X:      xMin,
					Y:      yMin,
					Width:  attrFloat(tok, "xmax") - xMin,
					Height: attrFloat(tok, "ymax") - yMin,
				}
				words = words[:0]
			case "word":
				inWord = true
				word.Reset()
			}

		case html.TextToken:
			if inWord {
				word.Write(z.Text())
			}

		case html.EndTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "word":
				inWord = false
				if w := strings.TrimSpace(word.String()); w != "" {
					words = append(words, w)
				}
			case "line":
				if line != nil && cur != nil && len(words) > 0 {
					line.Str = strings.Join(words, " ")
					cur.Content = append(cur.Content, *line)
				}
				line = nil
			case "page":
				cur = nil
			}
		}
	}
}

func attrFloat(tok html.Token, key string) float64 {
	for _, a := range tok.Attr {
		if a.Key == key {
			f, err := strconv.ParseFloat(strings.TrimSpace(a.Val), 64)
			if err != nil {
				return 0
			}
			return f
		}
	}
	return 0
}

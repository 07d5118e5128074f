package parser

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/dgallion1/pdfoutline/internal/model"
	"github.com/dgallion1/pdfoutline/internal/outline"
	"github.com/dgallion1/pdfoutline/internal/pdftext"
)

// PDFParser handles PDF files. Documents beyond MaxPages are rejected before
// the engine touches them.
type PDFParser struct {
	Engine   *outline.Engine
	MaxPages int
	Logger   *slog.Logger
}

func (p *PDFParser) Parse(ctx context.Context, r io.Reader, filename string) (*model.Outline, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}
	if len(data) == 0 {
		return nil, outline.ErrEmptyInput
	}
	if err := p.checkPages(data, filename); err != nil {
		return nil, err
	}

	engine := p.Engine
	if engine == nil {
		engine = outline.New(outline.Config{MaxPages: p.MaxPages, Logger: p.logger()})
	}
	return engine.ExtractBytes(ctx, data)
}

// checkPages applies the page ceiling using pdfcpu's page count. A document
// pdfcpu cannot count is left to the engine, which enforces the ceiling
// again and decides whether the file is readable at all.
func (p *PDFParser) checkPages(data []byte, filename string) error {
	if p.MaxPages <= 0 {
		return nil
	}
	n, err := pdftext.PageCount(data)
	if err != nil {
		p.logger().Warn("page count unavailable", "file", filename, "error", err)
		return nil
	}
	if n > p.MaxPages {
		return fmt.Errorf("%w: %d pages, limit %d", outline.ErrTooManyPages, n, p.MaxPages)
	}
	return nil
}

func (p *PDFParser) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}

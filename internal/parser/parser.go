package parser

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/dgallion1/pdfoutline/internal/model"
	"github.com/dgallion1/pdfoutline/internal/outline"
)

// Parser converts raw document bytes into an Outline.
type Parser interface {
	Parse(ctx context.Context, r io.Reader, filename string) (*model.Outline, error)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".pdf":      true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".docx":     true,
}

// Options configures the PDF path. Structured formats ignore it.
type Options struct {
	Engine   *outline.Engine
	MaxPages int
	Logger   *slog.Logger
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string, opts Options) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf":
		return &PDFParser{Engine: opts.Engine, MaxPages: opts.MaxPages, Logger: opts.Logger}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// collector gathers explicit heading markup into an outline. Levels below
// H3 are dropped. When titleFromH1 is set, the first H1 becomes the title
// instead of an outline entry.
type collector struct {
	out         model.Outline
	titleFromH1 bool
}

func (c *collector) add(level int, text string) {
	text = strings.Join(strings.Fields(text), " ")
	if text == "" || level < 1 {
		return
	}
	if level == 1 && c.titleFromH1 && c.out.Title == "" {
		c.out.Title = text
		return
	}
	if level > 3 {
		return
	}
	c.out.Headings = append(c.out.Headings, model.HeadingCandidate{
		Text:       text,
		Level:      model.LevelFromDepth(level),
		Page:       1,
		Confidence: 1,
	})
}

func (c *collector) outline() *model.Outline {
	o := c.out
	return &o
}

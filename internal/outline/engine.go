// Package outline is the extraction engine: PDF bytes in, title and heading
// hierarchy out. Every call is independent and safe to run concurrently.
package outline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dgallion1/pdfoutline/internal/heading"
	"github.com/dgallion1/pdfoutline/internal/layout"
	"github.com/dgallion1/pdfoutline/internal/model"
	"github.com/dgallion1/pdfoutline/internal/pdftext"
)

var (
	// ErrUnreadable means the document could not be opened or parsed at all.
	ErrUnreadable = errors.New("unreadable document")
	// ErrTooManyPages means the document exceeds the configured page ceiling.
	ErrTooManyPages = errors.New("document exceeds page limit")
	// ErrEmptyInput means no bytes were supplied.
	ErrEmptyInput = errors.New("empty input")
)

// DefaultMaxPages is the page ceiling applied when none is configured.
const DefaultMaxPages = 50

// Config tunes the engine.
type Config struct {
	MaxPages    int // <= 0 disables the ceiling
	MaxHeadings int // <= 0 uses heading.DefaultMaxHeadings
	LevelPolicy heading.LevelPolicy
	Logger      *slog.Logger
}

// Engine extracts outlines. It holds no per-document state.
type Engine struct {
	cfg    Config
	logger *slog.Logger
}

// New creates an Engine.
func New(cfg Config) *Engine {
	if cfg.MaxHeadings <= 0 {
		cfg.MaxHeadings = heading.DefaultMaxHeadings
	}
	if cfg.LevelPolicy == "" {
		cfg.LevelPolicy = heading.LevelPermit
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{cfg: cfg, logger: logger}
}

// Stats describes one extraction for logging and metrics.
type Stats struct {
	Pages         int
	Runs          int
	Lines         int
	FallbackPages int
	FailedPages   int
	Threshold     float64
	Duration      time.Duration
}

// ExtractFile reads path and extracts its outline.
func (e *Engine) ExtractFile(ctx context.Context, path string) (*model.Outline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	out, _, err := e.Extract(ctx, data)
	return out, err
}

// ExtractBytes extracts the outline of a PDF held in memory.
func (e *Engine) ExtractBytes(ctx context.Context, data []byte) (*model.Outline, error) {
	out, _, err := e.Extract(ctx, data)
	return out, err
}

// Extract is ExtractBytes plus run statistics. A document with no
// extractable text is not an error: it yields an empty outline.
func (e *Engine) Extract(ctx context.Context, data []byte) (out *model.Outline, st Stats, err error) {
	start := time.Now()
	if len(data) == 0 {
		return nil, st, ErrEmptyInput
	}
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("%w: %v", ErrUnreadable, r)
		}
	}()

	doc, err := pdftext.Open(data, e.logger)
	if err != nil {
		return nil, st, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	st.Pages = doc.NumPages()
	if e.cfg.MaxPages > 0 && st.Pages > e.cfg.MaxPages {
		return nil, st, fmt.Errorf("%w: %d pages, limit %d", ErrTooManyPages, st.Pages, e.cfg.MaxPages)
	}

	res, err := doc.Extract(ctx)
	if err != nil {
		return nil, st, err
	}
	st.Runs = len(res.Runs)
	st.FallbackPages = res.FallbackPages
	st.FailedPages = res.FailedPages

	out, lines, stats := e.Build(res.Runs, res.Pages)
	st.Lines = lines
	st.Threshold = stats.HeadingThreshold
	st.Duration = time.Since(start)

	e.logger.Debug("outline extracted",
		"pages", st.Pages,
		"runs", st.Runs,
		"lines", st.Lines,
		"headings", len(out.Headings),
		"fallback_pages", st.FallbackPages,
		"failed_pages", st.FailedPages,
		"threshold", st.Threshold,
		"duration_ms", st.Duration.Milliseconds(),
	)
	return out, st, nil
}

// Build runs line assembly, font statistics, title selection, classification
// and hierarchy assembly over extracted runs. It returns the outline, the
// number of lines, and the font statistics used.
func (e *Engine) Build(runs []model.TextRun, pages []model.PageBox) (*model.Outline, int, model.FontStats) {
	lines := layout.AssembleLines(runs)
	stats := layout.ComputeFontStats(lines)

	title := heading.SelectTitle(lines, pages, stats)
	skip := make(map[int]bool, len(title.Lines))
	for _, i := range title.Lines {
		skip[i] = true
	}

	cands := heading.ClassifyLines(lines, stats, skip)
	headings := heading.Assemble(cands, e.cfg.MaxHeadings, e.cfg.LevelPolicy)
	return &model.Outline{Title: title.Text, Headings: headings}, len(lines), stats
}

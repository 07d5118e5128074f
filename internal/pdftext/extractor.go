// Package pdftext pulls positioned, font-tagged text runs out of PDF content
// streams.
package pdftext

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/dgallion1/pdfoutline/internal/model"
	pdf "github.com/ledongthuc/pdf"
)

// Page size assumed when a page has no usable MediaBox (US Letter).
const (
	defaultWidth  = 612.0
	defaultHeight = 792.0
)

// Document is an opened PDF.
type Document struct {
	r      *pdf.Reader
	data   []byte
	logger *slog.Logger
}

// Result holds every run of a document plus the page geometry.
type Result struct {
	Runs  []model.TextRun
	Pages []model.PageBox

	// FallbackPages counts pages whose text came from the plain-text path
	// and therefore carries no font sizes.
	FallbackPages int
	// FailedPages counts pages whose content could not be interpreted.
	FailedPages int
}

// Open parses the cross-reference structure of a PDF held in memory.
func Open(data []byte, logger *slog.Logger) (doc *Document, err error) {
	if logger == nil {
		logger = slog.Default()
	}
	defer func() {
		if r := recover(); r != nil {
			doc, err = nil, fmt.Errorf("open pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	return &Document{r: r, data: data, logger: logger}, nil
}

// NumPages returns the page count declared by the page tree.
func (d *Document) NumPages() (n int) {
	defer func() {
		if r := recover(); r != nil {
			n = 0
		}
	}()
	return d.r.NumPage()
}

// Extract walks every page in order. A page that fails to parse contributes
// no runs; the remaining pages are still processed. When no page yields any
// run, the raw content streams are read again through pdfcpu for text
// without font metadata.
func (d *Document) Extract(ctx context.Context) (*Result, error) {
	res := &Result{}
	n := d.NumPages()
	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pr := d.Page(i)
		res.Pages = append(res.Pages, pr.Box)
		res.Runs = append(res.Runs, pr.Runs...)
		if pr.Failed {
			res.FailedPages++
		}
	}
	if len(res.Runs) > 0 {
		return res, nil
	}

	pages, err := plainPages(d.data)
	if err != nil {
		d.logger.Warn("plain-text fallback unavailable", "error", err)
		return res, nil
	}
	for i, lines := range pages {
		runs := plainRuns(i+1, lines)
		if len(runs) > 0 {
			res.FallbackPages++
			res.Runs = append(res.Runs, runs...)
		}
	}
	return res, nil
}

// PageResult is the output of a single page.
type PageResult struct {
	Box    model.PageBox
	Runs   []model.TextRun
	Failed bool
}

// Page extracts the runs of page n (1-based).
func (d *Document) Page(n int) (pr PageResult) {
	pr.Box = model.PageBox{Number: n, Width: defaultWidth, Height: defaultHeight}
	defer func() {
		if r := recover(); r != nil {
			d.logger.Warn("page content unreadable", "page", n, "error", fmt.Sprint(r))
			pr.Runs = nil
			pr.Failed = true
		}
	}()

	p := d.r.Page(n)
	if p.V.IsNull() {
		return pr
	}
	llx, lly, urx, ury := mediaBox(p.V)
	pr.Box.Width = urx - llx
	pr.Box.Height = ury - lly

	in := newInterp(n, llx, ury)
	if contents := p.V.Key("Contents"); !contents.IsNull() {
		in.run(contents, p.Resources())
	}
	pr.Runs = in.runs
	return pr
}

// plainRuns turns recovered text lines into runs of unknown size, 12pt apart.
func plainRuns(page int, lines []string) []model.TextRun {
	runs := make([]model.TextRun, 0, len(lines))
	for i, line := range lines {
		runs = append(runs, model.TextRun{
			Text:     line,
			FontSize: model.UnknownSize,
			Page:     page,
			Y:        float64(i+1) * 12,
		})
	}
	return runs
}

// mediaBox resolves the inherited MediaBox of a page.
func mediaBox(v pdf.Value) (llx, lly, urx, ury float64) {
	for depth := 0; !v.IsNull() && depth < 32; depth++ {
		mb := v.Key("MediaBox")
		if mb.Kind() == pdf.Array && mb.Len() == 4 {
			llx, lly = mb.Index(0).Float64(), mb.Index(1).Float64()
			urx, ury = mb.Index(2).Float64(), mb.Index(3).Float64()
			if llx > urx {
				llx, urx = urx, llx
			}
			if lly > ury {
				lly, ury = ury, lly
			}
			if urx > llx && ury > lly {
				return llx, lly, urx, ury
			}
		}
		v = v.Key("Parent")
	}
	return 0, 0, defaultWidth, defaultHeight
}

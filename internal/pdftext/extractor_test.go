package pdftext

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/dgallion1/pdfoutline/internal/model"
	"github.com/dgallion1/pdfoutline/internal/pdftest"
	pdf "github.com/ledongthuc/pdf"
)

func extract(t *testing.T, pages []pdftest.Page) *Result {
	t.Helper()
	doc, err := Open(pdftest.Build(pages), nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	res, err := doc.Extract(context.Background())
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	return res
}

func near(a, b float64) bool { return math.Abs(a-b) < 0.01 }

func TestExtract_PositionsAndStyle(t *testing.T) {
	res := extract(t, []pdftest.Page{{Texts: []pdftest.Text{
		{X: 72, Y: 100, Size: 24, Bold: true, S: "Introduction"},
		{X: 72, Y: 130, Size: 12, S: "Body text"},
	}}})

	if len(res.Runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(res.Runs))
	}
	h := res.Runs[0]
	if h.Text != "Introduction" {
		t.Errorf("expected text %q, got %q", "Introduction", h.Text)
	}
	if h.FontSize != 24 {
		t.Errorf("expected size 24, got %v", h.FontSize)
	}
	if !h.Bold || h.Font != "Helvetica-Bold" {
		t.Errorf("expected bold Helvetica-Bold, got bold=%v font=%q", h.Bold, h.Font)
	}
	if !near(h.X, 72) || !near(h.Y, 100) {
		t.Errorf("expected position (72,100), got (%v,%v)", h.X, h.Y)
	}
	if !near(h.W, 12*0.5*24) {
		t.Errorf("expected width 144, got %v", h.W)
	}
	if h.Page != 1 {
		t.Errorf("expected page 1, got %d", h.Page)
	}

	b := res.Runs[1]
	if b.Bold || b.FontSize != 12 || !near(b.Y, 130) {
		t.Errorf("unexpected body run: %+v", b)
	}

	if len(res.Pages) != 1 || res.Pages[0].Width != 612 || res.Pages[0].Height != 792 {
		t.Errorf("unexpected page boxes: %+v", res.Pages)
	}
}

func TestExtract_TJSpacing(t *testing.T) {
	res := extract(t, []pdftest.Page{{Content: "BT /F1 10 Tf 1 0 0 1 50 700 Tm [(Hello) -300 (World)] TJ ET\n" +
		"BT /F1 10 Tf 1 0 0 1 50 600 Tm [(Wor) -20 (ld)] TJ ET"}})

	if len(res.Runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(res.Runs))
	}
	if res.Runs[0].Text != "Hello World" {
		t.Errorf("expected %q, got %q", "Hello World", res.Runs[0].Text)
	}
	if res.Runs[1].Text != "World" {
		t.Errorf("expected %q, got %q", "World", res.Runs[1].Text)
	}
}

func TestExtract_CTMScalesSize(t *testing.T) {
	res := extract(t, []pdftest.Page{{Content: "q 2 0 0 2 0 0 cm BT /F1 10 Tf 1 0 0 1 36 300 Tm (Scaled) Tj ET Q"}})

	if len(res.Runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(res.Runs))
	}
	r := res.Runs[0]
	if r.FontSize != 20 {
		t.Errorf("expected effective size 20, got %v", r.FontSize)
	}
	if !near(r.X, 72) || !near(r.Y, 192) {
		t.Errorf("expected position (72,192), got (%v,%v)", r.X, r.Y)
	}
}

func TestExtract_LeadingMovesLines(t *testing.T) {
	res := extract(t, []pdftest.Page{{Content: "BT /F1 12 Tf 14 TL 72 700 Td (One) Tj T* (Two) Tj ET"}})

	if len(res.Runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(res.Runs))
	}
	if !near(res.Runs[0].Y, 92) || !near(res.Runs[1].Y, 106) {
		t.Errorf("expected baselines 92 and 106, got %v and %v", res.Runs[0].Y, res.Runs[1].Y)
	}
}

func TestExtract_CorruptPageSkipped(t *testing.T) {
	res := extract(t, []pdftest.Page{
		{Content: "BT /F1 12 Tf 72 700 Td (Broken) Tj ET\nend\n"},
		{Texts: []pdftest.Text{{X: 72, Y: 100, Size: 12, S: "Survivor"}}},
	})

	if res.FailedPages != 1 {
		t.Errorf("expected 1 failed page, got %d", res.FailedPages)
	}
	if len(res.Pages) != 2 {
		t.Errorf("expected 2 page boxes, got %d", len(res.Pages))
	}
	if len(res.Runs) != 1 || res.Runs[0].Text != "Survivor" || res.Runs[0].Page != 2 {
		t.Fatalf("expected only the page-2 run, got %+v", res.Runs)
	}
}

func TestExtract_FallbackWhenNoPageReadable(t *testing.T) {
	res := extract(t, []pdftest.Page{
		{Content: "BT /F1 12 Tf 72 700 Td (Broken Title) Tj 0 -14 Td (second line) Tj ET\nend\n"},
	})
	if res.FailedPages != 1 || res.FallbackPages != 1 {
		t.Fatalf("expected 1 failed and 1 fallback page, got %d and %d", res.FailedPages, res.FallbackPages)
	}
	if len(res.Runs) != 2 {
		t.Fatalf("expected 2 fallback runs, got %+v", res.Runs)
	}
	for i, want := range []string{"Broken Title", "second line"} {
		r := res.Runs[i]
		if r.Text != want || r.FontSize != model.UnknownSize || r.Page != 1 || r.Y != float64(i+1)*12 {
			t.Errorf("run %d: unexpected %+v", i, r)
		}
	}
}

func TestShowLines(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{"tj per line", "BT /F1 12 Tf 72 700 Td (One) Tj 0 -14 Td (Two) Tj ET", []string{"One", "Two"}},
		{"tj array", "BT [(Hel) -20 (lo) -400 ( World)] TJ ET", []string{"Hello World"}},
		{"quote operator", "BT (First) Tj (Next) ' ET", []string{"First", "Next"}},
		{"escapes", `BT (a \(b\) \\ c\101) Tj ET`, []string{`a (b) \ cA`}},
		{"nested parens", "BT (f(x) = y) Tj ET", []string{"f(x) = y"}},
		{"ignores other strings", "/P <</MCID 0>> BDC (tag) BMC BT (Body) Tj ET EMC", []string{"Body"}},
		{"comments", "% (hidden) Tj\nBT (shown) Tj ET", []string{"shown"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := showLines([]byte(tt.content))
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestExtract_EmptyPage(t *testing.T) {
	res := extract(t, []pdftest.Page{{Content: "q Q"}})
	if len(res.Runs) != 0 {
		t.Errorf("expected no runs, got %+v", res.Runs)
	}
	if len(res.Pages) != 1 {
		t.Errorf("expected 1 page box, got %d", len(res.Pages))
	}
}

func TestOpen_NotPDF(t *testing.T) {
	if _, err := Open([]byte("definitely not a pdf"), nil); err == nil {
		t.Fatal("expected error for non-PDF input")
	}
	if _, err := Open(nil, nil); err == nil {
		t.Fatal("expected error for empty input")
	}
}

func TestFontStyleFromName(t *testing.T) {
	tests := []struct {
		name         string
		bold, italic bool
	}{
		{"Helvetica", false, false},
		{"Arial-BoldMT", true, false},
		{"Times-Italic", false, true},
		{"Helvetica-BoldOblique", true, true},
		{"MyriadPro-Semibold", true, false},
	}
	for _, tt := range tests {
		bold, italic := fontStyle(tt.name, pdf.Value{})
		if bold != tt.bold || italic != tt.italic {
			t.Errorf("fontStyle(%q) = (%v,%v), want (%v,%v)", tt.name, bold, italic, tt.bold, tt.italic)
		}
	}
}

func TestBaseName(t *testing.T) {
	if got := baseName("ABCDEF+Arial-BoldMT"); got != "Arial-BoldMT" {
		t.Errorf("expected subset tag stripped, got %q", got)
	}
	if got := baseName("A+B"); got != "A+B" {
		t.Errorf("expected name unchanged, got %q", got)
	}
}

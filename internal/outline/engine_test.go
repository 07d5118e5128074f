package outline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dgallion1/pdfoutline/internal/model"
	"github.com/dgallion1/pdfoutline/internal/pdftest"
	"github.com/dgallion1/pdfoutline/internal/render"
)

func body(y float64, s string) pdftest.Text {
	return pdftest.Text{X: 72, Y: y, Size: 11, S: s}
}

// annualReport is a three-page document with a cover title and one numbered
// section.
func annualReport() []byte {
	return pdftest.Build([]pdftest.Page{
		{Texts: []pdftest.Text{
			pdftest.Centered(200, 24, true, "ANNUAL REPORT 2024"),
			body(320, "This document summarizes the results of the fiscal year for all divisions."),
		}},
		{Texts: []pdftest.Text{
			{X: 72, Y: 100, Size: 16, Bold: true, S: "1. Introduction"},
			body(140, "The company grew steadily during the year and expanded"),
			body(154, "into two new markets while keeping costs under control."),
			body(168, "Details for each division follow in the next pages."),
		}},
		{Texts: []pdftest.Text{
			body(100, "Revenue increased in every quarter compared with last year,"),
			body(114, "driven mainly by the services business and new contracts."),
		}},
	})
}

func TestExtract_AnnualReport(t *testing.T) {
	e := New(Config{MaxPages: DefaultMaxPages})
	out, st, err := e.Extract(context.Background(), annualReport())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out.Title != "ANNUAL REPORT 2024" {
		t.Errorf("expected title %q, got %q", "ANNUAL REPORT 2024", out.Title)
	}
	if len(out.Headings) != 1 {
		t.Fatalf("expected 1 heading, got %d: %+v", len(out.Headings), out.Headings)
	}
	h := out.Headings[0]
	if h.Text != "1. Introduction" || h.Level != model.H1 || h.Page != 2 {
		t.Errorf("unexpected heading: %+v", h)
	}
	if h.Confidence < 0 || h.Confidence > 1 {
		t.Errorf("confidence out of range: %v", h.Confidence)
	}
	if st.Pages != 3 || st.Threshold != 16 {
		t.Errorf("unexpected stats: %+v", st)
	}

	js, err := render.JSON(out)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(string(js), `"title": "ANNUAL REPORT 2024"`) ||
		!strings.Contains(string(js), `"level": "H1"`) ||
		!strings.Contains(string(js), `"text": "1. Introduction"`) ||
		!strings.Contains(string(js), `"page": 2`) {
		t.Errorf("unexpected json:\n%s", js)
	}
}

func TestExtract_ImageOnly(t *testing.T) {
	data := pdftest.Build([]pdftest.Page{
		{Content: "q 500 0 0 700 50 50 cm Q"},
		{Content: "q Q"},
	})
	out, err := New(Config{}).ExtractBytes(context.Background(), data)
	if err != nil {
		t.Fatalf("expected success for image-only document, got %v", err)
	}
	js, err := render.JSON(out)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if string(js) != "{\n  \"title\": \"\",\n  \"outline\": []\n}\n" {
		t.Errorf("unexpected json %q", js)
	}
}

func TestExtract_CorruptPageDoesNotFail(t *testing.T) {
	data := pdftest.Build([]pdftest.Page{
		{Texts: []pdftest.Text{pdftest.Centered(200, 24, true, "FIELD MANUAL")}},
		{Content: "BT /F1 12 Tf 72 700 Td (lost) Tj ET\nend\n"},
		{Texts: []pdftest.Text{
			{X: 72, Y: 100, Size: 16, Bold: true, S: "2.1 Setup"},
			body(140, "Unpack the device and connect it to power before use."),
		}},
	})
	out, st, err := New(Config{}).Extract(context.Background(), data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.FailedPages != 1 {
		t.Errorf("expected 1 failed page, got %d", st.FailedPages)
	}
	if out.Title != "FIELD MANUAL" {
		t.Errorf("expected title %q, got %q", "FIELD MANUAL", out.Title)
	}
	if len(out.Headings) != 1 || out.Headings[0].Level != model.H2 || out.Headings[0].Page != 3 {
		t.Errorf("unexpected headings: %+v", out.Headings)
	}
}

func TestExtract_HeadingUnderCoverTitle(t *testing.T) {
	data := pdftest.Build([]pdftest.Page{
		{Texts: []pdftest.Text{
			pdftest.Centered(192, 24, true, "FIELD MANUAL"),
			pdftest.Centered(292, 16, true, "1. Introduction"),
			body(330, "This manual describes how to install the unit safely."),
			body(344, "Read every section before the first use of the unit."),
			body(358, "Keep the manual with the unit for later reference."),
			body(372, "Contact support if any part is missing from the box."),
		}},
	})
	out, _, err := New(Config{}).Extract(context.Background(), data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Title != "FIELD MANUAL" {
		t.Errorf("expected title %q, got %q", "FIELD MANUAL", out.Title)
	}
	if len(out.Headings) != 1 || out.Headings[0].Text != "1. Introduction" ||
		out.Headings[0].Level != model.H1 || out.Headings[0].Page != 1 {
		t.Errorf("expected H1 %q on page 1, got %+v", "1. Introduction", out.Headings)
	}
}

func TestExtract_PlainTextFallback(t *testing.T) {
	data := pdftest.Build([]pdftest.Page{
		{Content: "BT /F2 24 Tf 1 0 0 1 200 600 Tm (FIELD NOTES) Tj ET\n" +
			"BT /F2 18 Tf 1 0 0 1 72 500 Tm (1. Introduction) Tj ET\nend\n"},
		{Content: "BT /F1 11 Tf 72 700 Td (Chapter 2 Methods) Tj ET\nend\n"},
	})
	out, st, err := New(Config{}).Extract(context.Background(), data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.FailedPages != 2 || st.FallbackPages != 2 {
		t.Fatalf("expected 2 failed and 2 fallback pages, got %+v", st)
	}
	if out.Title != "FIELD NOTES" {
		t.Errorf("expected title %q from fallback text, got %q", "FIELD NOTES", out.Title)
	}
	if len(out.Headings) != 0 {
		t.Errorf("lines without font sizes must not become headings, got %+v", out.Headings)
	}
}

func TestExtract_Errors(t *testing.T) {
	e := New(Config{MaxPages: 2})
	ctx := context.Background()

	if _, err := e.ExtractBytes(ctx, nil); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("expected ErrEmptyInput, got %v", err)
	}
	if _, err := e.ExtractBytes(ctx, []byte("this is not a pdf file")); !errors.Is(err, ErrUnreadable) {
		t.Errorf("expected ErrUnreadable, got %v", err)
	}
	if _, err := e.ExtractBytes(ctx, annualReport()); !errors.Is(err, ErrTooManyPages) {
		t.Errorf("expected ErrTooManyPages, got %v", err)
	}
}

func TestExtract_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New(Config{}).ExtractBytes(ctx, annualReport()); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestExtractFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.pdf")
	if err := os.WriteFile(path, annualReport(), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err := New(Config{}).ExtractFile(context.Background(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Title != "ANNUAL REPORT 2024" {
		t.Errorf("expected title, got %q", out.Title)
	}

	if _, err := New(Config{}).ExtractFile(context.Background(), filepath.Join(t.TempDir(), "missing.pdf")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestBuild_RunningHeaderCollapses(t *testing.T) {
	var runs []model.TextRun
	for p := 1; p <= 4; p++ {
		runs = append(runs,
			model.TextRun{Text: "QUARTERLY REVIEW", FontSize: 14, Page: p, X: 72, Y: 40, W: 112},
			model.TextRun{Text: "Plain body text on this page", FontSize: 10, Page: p, X: 72, Y: 120, W: 140},
			model.TextRun{Text: "More plain body text here", FontSize: 10, Page: p, X: 72, Y: 132, W: 125},
			model.TextRun{Text: "and a little more of it", FontSize: 10, Page: p, X: 72, Y: 144, W: 115},
			model.TextRun{Text: "before the page ends", FontSize: 10, Page: p, X: 72, Y: 156, W: 100},
		)
	}
	runs = append(runs, model.TextRun{Text: "COVER", FontSize: 30, Page: 1, X: 250, Y: 300, W: 75})

	out, _, _ := New(Config{}).Build(runs, nil)
	n := 0
	for _, h := range out.Headings {
		if h.Text == "QUARTERLY REVIEW" {
			n++
			if h.Page != 1 {
				t.Errorf("expected running header kept at page 1, got %d", h.Page)
			}
		}
	}
	if n != 1 {
		t.Errorf("expected running header once, got %d times: %+v", n, out.Headings)
	}
}

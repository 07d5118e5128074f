package parser

import (
	"context"
	"strings"
	"testing"

	"github.com/dgallion1/pdfoutline/internal/model"
)

func TestMarkdownParser_HeadingHierarchy(t *testing.T) {
	input := `# Title

Intro text.

## Section A

Section A content.

### Subsection A1

Subsection A1 content.

#### Too Deep

## Section B

Section B content.
`
	p := &MarkdownParser{}
	out, err := p.Parse(context.Background(), strings.NewReader(input), "doc.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out.Title != "Title" {
		t.Errorf("expected title %q, got %q", "Title", out.Title)
	}

	want := []struct {
		text  string
		level model.Level
	}{
		{"Section A", model.H2},
		{"Subsection A1", model.H3},
		{"Section B", model.H2},
	}
	if len(out.Headings) != len(want) {
		t.Fatalf("expected %d headings, got %d: %+v", len(want), len(out.Headings), out.Headings)
	}
	for i, w := range want {
		h := out.Headings[i]
		if h.Text != w.text || h.Level != w.level {
			t.Errorf("heading %d: expected %s %q, got %s %q", i, w.level, w.text, h.Level, h.Text)
		}
		if h.Page != 1 || h.Confidence != 1 {
			t.Errorf("heading %d: expected page 1 confidence 1, got %d %v", i, h.Page, h.Confidence)
		}
	}
}

func TestMarkdownParser_NoHeadings(t *testing.T) {
	input := `Just some plain text.

Another paragraph here.`

	p := &MarkdownParser{}
	out, err := p.Parse(context.Background(), strings.NewReader(input), "plain.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Title != "" || len(out.Headings) != 0 {
		t.Errorf("expected empty outline, got %+v", out)
	}
}

func TestMarkdownParser_InlineMarkup(t *testing.T) {
	input := "# The `outline` **Tool**\n\n## Using *emphasis* here\n\n# Second Part\n"

	p := &MarkdownParser{}
	out, err := p.Parse(context.Background(), strings.NewReader(input), "api.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Title != "The outline Tool" {
		t.Errorf("expected title %q, got %q", "The outline Tool", out.Title)
	}
	if len(out.Headings) != 2 {
		t.Fatalf("expected 2 headings, got %+v", out.Headings)
	}
	if out.Headings[0].Text != "Using emphasis here" {
		t.Errorf("expected %q, got %q", "Using emphasis here", out.Headings[0].Text)
	}
	if out.Headings[1].Text != "Second Part" || out.Headings[1].Level != model.H1 {
		t.Errorf("expected later H1 in outline, got %+v", out.Headings[1])
	}
}

func TestMarkdownParser_EmptyInput(t *testing.T) {
	p := &MarkdownParser{}
	out, err := p.Parse(context.Background(), strings.NewReader(""), "empty.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Headings) != 0 {
		t.Errorf("expected 0 headings for empty input, got %d", len(out.Headings))
	}
}

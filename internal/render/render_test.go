package render

import (
	"strings"
	"testing"

	"github.com/dgallion1/pdfoutline/internal/model"
	"gopkg.in/yaml.v3"
)

func sample() *model.Outline {
	return &model.Outline{
		Title: "ANNUAL REPORT 2024",
		Headings: []model.HeadingCandidate{
			{Text: "1. Introduction", Level: model.H1, Page: 2, Confidence: 0.95},
			{Text: "1.1 Scope & <Goals>", Level: model.H2, Page: 2, Confidence: 0.9},
			{Text: "Appendix A", Level: model.H1, Page: 9, Confidence: 0.85},
		},
	}
}

func TestJSON_Shape(t *testing.T) {
	out, err := JSON(sample())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `{
  "title": "ANNUAL REPORT 2024",
  "outline": [
    {
      "level": "H1",
      "text": "1. Introduction",
      "page": 2,
      "confidence": 0.95
    },
    {
      "level": "H2",
      "text": "1.1 Scope & <Goals>",
      "page": 2,
      "confidence": 0.9
    },
    {
      "level": "H1",
      "text": "Appendix A",
      "page": 9,
      "confidence": 0.85
    }
  ]
}
`
	if string(out) != want {
		t.Errorf("unexpected json:\n%s", out)
	}
	if err := Validate(out); err != nil {
		t.Errorf("expected valid document: %v", err)
	}
}

func TestJSON_Empty(t *testing.T) {
	for _, o := range []*model.Outline{nil, {}} {
		out, err := JSON(o)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := "{\n  \"title\": \"\",\n  \"outline\": []\n}\n"
		if string(out) != want {
			t.Errorf("expected %q, got %q", want, out)
		}
		if err := Validate(out); err != nil {
			t.Errorf("expected empty document to validate: %v", err)
		}
	}
}

func TestJSON_Deterministic(t *testing.T) {
	a, _ := JSON(sample())
	b, _ := JSON(sample())
	if string(a) != string(b) {
		t.Error("expected identical output for identical input")
	}
}

func TestValidate_Rejects(t *testing.T) {
	bad := []string{
		`{"title": "x"}`,
		`{"title": "x", "outline": [{"level": "H4", "text": "a", "page": 1, "confidence": 0.5}]}`,
		`{"title": "x", "outline": [{"level": "H1", "text": "a", "page": 0, "confidence": 0.5}]}`,
		`{"title": "x", "outline": [{"level": "H1", "text": "a", "page": 1, "confidence": 1.5}]}`,
		`not json`,
	}
	for _, doc := range bad {
		if err := Validate([]byte(doc)); err == nil {
			t.Errorf("expected validation error for %s", doc)
		}
	}
}

func TestYAML(t *testing.T) {
	out, err := YAML(sample())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var doc Document
	if err := yaml.Unmarshal(out, &doc); err != nil {
		t.Fatalf("yaml does not parse: %v", err)
	}
	if doc.Title != "ANNUAL REPORT 2024" || len(doc.Outline) != 3 || doc.Outline[2].Page != 9 {
		t.Errorf("unexpected yaml document: %+v", doc)
	}
}

func TestMarkdown(t *testing.T) {
	out := string(Markdown(sample()))
	if !strings.HasPrefix(out, "# ANNUAL REPORT 2024\n\n") {
		t.Errorf("expected title heading, got:\n%s", out)
	}
	if !strings.Contains(out, "- 1\\. Introduction (p. 2)\n  - 1\\.1 Scope & \\<Goals> (p. 2)\n- Appendix A (p. 9)\n") {
		t.Errorf("unexpected list:\n%s", out)
	}

	empty := string(Markdown(&model.Outline{}))
	if empty != "_No headings found._\n" {
		t.Errorf("unexpected empty markdown %q", empty)
	}
}

func TestHTML(t *testing.T) {
	out, err := HTML(sample())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s := string(out)
	for _, want := range []string{"<h1>ANNUAL REPORT 2024</h1>", "<li>1. Introduction (p. 2)", "<li>Appendix A (p. 9)</li>", "&lt;Goals&gt;"} {
		if !strings.Contains(s, want) {
			t.Errorf("expected %q in html:\n%s", want, s)
		}
	}
	if strings.Contains(s, "<ol>") {
		t.Errorf("numbered heading text must not become a list:\n%s", s)
	}
}

func TestParseFormat(t *testing.T) {
	tests := map[string]Format{"": FormatJSON, "JSON": FormatJSON, "yml": FormatYAML, "md": FormatMarkdown, "html": FormatHTML}
	for in, want := range tests {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("expected error for xml")
	}
	if FormatMarkdown.Ext() != ".md" || FormatJSON.Ext() != ".json" {
		t.Error("unexpected extensions")
	}
}

func TestRender_Dispatch(t *testing.T) {
	for _, f := range []Format{FormatJSON, FormatYAML, FormatMarkdown, FormatHTML} {
		out, err := Render(sample(), f)
		if err != nil || len(out) == 0 {
			t.Errorf("Render(%s): %v", f, err)
		}
	}
	if _, err := Render(sample(), Format("pdf")); err == nil {
		t.Error("expected error for unknown format")
	}
}

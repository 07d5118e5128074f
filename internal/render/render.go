// Package render serializes outlines. JSON is the canonical form; YAML,
// Markdown and HTML are conveniences for people.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dgallion1/pdfoutline/internal/model"
	"gopkg.in/yaml.v3"
)

// Format names an output encoding.
type Format string

const (
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// ParseFormat accepts a format name or a common alias.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "html", "htm":
		return FormatHTML, nil
	}
	return "", fmt.Errorf("unsupported output format %q", s)
}

// Ext is the file extension written for the format.
func (f Format) Ext() string {
	switch f {
	case FormatYAML:
		return ".yaml"
	case FormatMarkdown:
		return ".md"
	case FormatHTML:
		return ".html"
	default:
		return ".json"
	}
}

// ContentType is the HTTP media type for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatYAML:
		return "application/yaml"
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	case FormatHTML:
		return "text/html; charset=utf-8"
	default:
		return "application/json"
	}
}

// Document is the serialized shape of an outline.
type Document struct {
	Title   string  `json:"title" yaml:"title"`
	Outline []Entry `json:"outline" yaml:"outline"`
}

// Entry is one serialized heading.
type Entry struct {
	Level      string  `json:"level" yaml:"level"`
	Text       string  `json:"text" yaml:"text"`
	Page       int     `json:"page" yaml:"page"`
	Confidence float64 `json:"confidence" yaml:"confidence"`
}

// FromOutline converts an outline to its wire shape. A nil outline becomes
// the empty document; the outline array is never null.
func FromOutline(o *model.Outline) Document {
	doc := Document{Outline: []Entry{}}
	if o == nil {
		return doc
	}
	doc.Title = o.Title
	for _, h := range o.Headings {
		doc.Outline = append(doc.Outline, Entry{
			Level:      h.Level.String(),
			Text:       h.Text,
			Page:       h.Page,
			Confidence: model.Confidence(h.Confidence),
		})
	}
	return doc
}

// JSON renders the canonical form: two-space indent, no HTML escaping,
// trailing newline.
func JSON(o *model.Outline) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(FromOutline(o)); err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}
	return buf.Bytes(), nil
}

// YAML renders the outline as YAML.
func YAML(o *model.Outline) ([]byte, error) {
	out, err := yaml.Marshal(FromOutline(o))
	if err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	return out, nil
}

// Render encodes o in format f.
func Render(o *model.Outline, f Format) ([]byte, error) {
	switch f {
	case FormatJSON, "":
		return JSON(o)
	case FormatYAML:
		return YAML(o)
	case FormatMarkdown:
		return Markdown(o), nil
	case FormatHTML:
		return HTML(o)
	}
	return nil, fmt.Errorf("unsupported output format %q", f)
}

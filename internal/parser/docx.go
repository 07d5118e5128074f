package parser

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dgallion1/pdfoutline/internal/model"
	"github.com/fumiama/go-docx"
)

// DOCXParser handles .docx files. A paragraph in the Title style names the
// document; without one the first Heading 1 does.
type DOCXParser struct{}

func (p *DOCXParser) Parse(_ context.Context, r io.Reader, filename string) (*model.Outline, error) {
	// go-docx needs a ReadSeeker+size, so write to temp file.
	tmp, err := os.CreateTemp("", "pdfoutline-docx-*.docx")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	size, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("seek temp file: %w", err)
	}

	doc, err := docx.Parse(tmp, size)
	tmp.Close()
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	var paras []*docx.Paragraph
	for _, item := range doc.Document.Body.Items {
		if para, ok := item.(*docx.Paragraph); ok {
			paras = append(paras, para)
		}
	}

	c := &collector{}
	for _, para := range paras {
		if isTitleStyle(para) {
			c.out.Title = docxParagraphText(para)
			break
		}
	}
	c.titleFromH1 = c.out.Title == ""

	for _, para := range paras {
		if isTitleStyle(para) {
			continue
		}
		c.add(docxHeadingLevel(para), docxParagraphText(para))
	}
	return c.outline(), nil
}

func paragraphStyle(para *docx.Paragraph) string {
	if para.Properties == nil || para.Properties.Style == nil {
		return ""
	}
	return para.Properties.Style.Val
}

func isTitleStyle(para *docx.Paragraph) bool {
	return strings.EqualFold(paragraphStyle(para), "Title")
}

// docxHeadingLevel maps "Heading1" or "heading 1" style ids to a level.
func docxHeadingLevel(para *docx.Paragraph) int {
	style := strings.ToLower(strings.ReplaceAll(paragraphStyle(para), " ", ""))
	if !strings.HasPrefix(style, "heading") {
		return 0
	}
	switch strings.TrimPrefix(style, "heading") {
	case "1":
		return 1
	case "2":
		return 2
	case "3":
		return 3
	case "4", "5", "6", "7", "8", "9":
		return 4
	}
	return 0
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}

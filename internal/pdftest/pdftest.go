// Package pdftest writes small, valid PDF files for tests. Documents use the
// standard Helvetica faces so no font programs need to be embedded.
package pdftest

import (
	"bytes"
	"fmt"
	"strings"
)

// Page size used by every generated page (US Letter).
const (
	PageWidth  = 612.0
	PageHeight = 792.0
)

// Text is one string shown on a page. Y is measured from the top of the page
// to the baseline.
type Text struct {
	X, Y float64
	Size float64
	Bold bool
	S    string
}

// Page describes one page. When Content is set it is written verbatim as the
// content stream and Texts is ignored.
type Page struct {
	Texts   []Text
	Content string
}

// Centered returns a Text horizontally centered on the page, assuming the
// fixed half-em glyph advance the extractor uses for fonts without widths.
func Centered(y, size float64, bold bool, s string) Text {
	w := float64(len(s)) * size * 0.5
	return Text{X: (PageWidth - w) / 2, Y: y, Size: size, Bold: bold, S: s}
}

// Build renders the pages into a complete PDF file.
func Build(pages []Page) []byte {
	var objs []string
	objs = append(objs, "<< /Type /Catalog /Pages 2 0 R >>")

	const firstPageObj = 5
	var kids []string
	for i := range pages {
		kids = append(kids, fmt.Sprintf("%d 0 R", firstPageObj+2*i))
	}
	objs = append(objs, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d /MediaBox [0 0 %g %g] >>",
		strings.Join(kids, " "), len(pages), PageWidth, PageHeight))
	objs = append(objs, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")
	objs = append(objs, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica-Bold /Encoding /WinAnsiEncoding >>")

	for i, p := range pages {
		content := p.Content
		if content == "" {
			content = textContent(p.Texts)
		}
		objs = append(objs, fmt.Sprintf("<< /Type /Page /Parent 2 0 R /Resources << /Font << /F1 3 0 R /F2 4 0 R >> >> /Contents %d 0 R >>",
			firstPageObj+2*i+1))
		objs = append(objs, fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content))
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objs))
	for i, body := range objs {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objs)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, xref)
	return buf.Bytes()
}

func textContent(texts []Text) string {
	var sb strings.Builder
	for _, t := range texts {
		font := "F1"
		if t.Bold {
			font = "F2"
		}
		fmt.Fprintf(&sb, "BT /%s %g Tf 1 0 0 1 %g %g Tm (%s) Tj ET\n",
			font, t.Size, t.X, PageHeight-t.Y, Escape(t.S))
	}
	return sb.String()
}

// Escape quotes a string for use inside a PDF literal string.
func Escape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return r.Replace(s)
}

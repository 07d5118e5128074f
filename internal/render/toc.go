package render

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/dgallion1/pdfoutline/internal/doctree"
	"github.com/dgallion1/pdfoutline/internal/model"
	"github.com/yuin/goldmark"
)

var (
	mdEscaper = strings.NewReplacer(
		`\`, `\\`, "*", `\*`, "_", `\_`, "`", "\\`", "[", `\[`, "]", `\]`, "<", `\<`, "#", `\#`,
	)
	// Leading "1." or "-" would start a nested list.
	listMarker = regexp.MustCompile(`^(\d+)([.)])`)
)

func mdText(s string) string {
	s = mdEscaper.Replace(s)
	s = listMarker.ReplaceAllString(s, `$1\$2`)
	if strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		s = `\` + s
	}
	return s
}

// Markdown renders the outline as a nested list under the title.
func Markdown(o *model.Outline) []byte {
	tree := doctree.Build(o)
	var buf bytes.Buffer
	if tree.Title != "" {
		fmt.Fprintf(&buf, "# %s\n\n", mdText(tree.Title))
	}
	if tree.Count() == 0 {
		buf.WriteString("_No headings found._\n")
		return buf.Bytes()
	}
	tree.Walk(func(n *doctree.DocNode, depth int) {
		fmt.Fprintf(&buf, "%s- %s (p. %d)\n",
			strings.Repeat("  ", depth), mdText(n.Heading.Text), n.Heading.Page)
	})
	return buf.Bytes()
}

// HTML renders the Markdown form through goldmark.
func HTML(o *model.Outline) ([]byte, error) {
	var buf bytes.Buffer
	if err := goldmark.New().Convert(Markdown(o), &buf); err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}
	return buf.Bytes(), nil
}

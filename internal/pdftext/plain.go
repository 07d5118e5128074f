package pdftext

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

var pdfcpuInit sync.Once

// PageCount returns the number of pages pdfcpu finds in data.
func PageCount(data []byte) (n int, err error) {
	pdfcpuInit.Do(api.DisableConfigDir)
	defer func() {
		if r := recover(); r != nil {
			n, err = 0, fmt.Errorf("pdfcpu: %v", r)
		}
	}()
	n, err = api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		return 0, fmt.Errorf("pdfcpu page count: %w", err)
	}
	return n, nil
}

// plainPages reads every page's raw content stream through pdfcpu and
// returns the shown strings grouped into text lines, indexed by page - 1.
// No operator is interpreted beyond line breaks, so a stream the
// interpreter rejects can still yield text here.
func plainPages(data []byte) (pages [][]string, err error) {
	pdfcpuInit.Do(api.DisableConfigDir)
	defer func() {
		if r := recover(); r != nil {
			pages, err = nil, fmt.Errorf("pdfcpu: %v", r)
		}
	}()

	conf := pdfmodel.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return nil, fmt.Errorf("pdfcpu read: %w", err)
	}
	pages = make([][]string, ctx.PageCount)
	for i := 1; i <= ctx.PageCount; i++ {
		r, err := pdfcpu.ExtractPageContent(ctx, i)
		if err != nil || r == nil {
			continue
		}
		content, err := io.ReadAll(r)
		if err != nil {
			continue
		}
		pages[i-1] = showLines(content)
	}
	return pages, nil
}

// showLines collects the operands of Tj, TJ, ' and " into lines. Td, TD,
// T*, Tm and ET end a line; ' and " start one.
func showLines(content []byte) []string {
	var (
		lines   []string
		line    strings.Builder
		operand strings.Builder
	)
	flush := func() {
		if s := strings.Join(strings.Fields(line.String()), " "); s != "" {
			lines = append(lines, s)
		}
		line.Reset()
	}

	for i := 0; i < len(content); {
		c := content[i]
		switch {
		case c == '(':
			s, n := literalString(content[i:])
			operand.WriteString(s)
			i += n
		case c == '<':
			// Hex strings and dictionaries carry no recoverable text here.
			for i < len(content) && content[i] != '>' {
				i++
			}
			i++
		case c == '%':
			for i < len(content) && content[i] != '\n' && content[i] != '\r' {
				i++
			}
		case c == '/':
			i++
			for i < len(content) && isRegular(content[i]) {
				i++
			}
		case isRegular(c):
			j := i
			for j < len(content) && isRegular(content[j]) {
				j++
			}
			tok := string(content[i:j])
			i = j
			if isNumberToken(tok) {
				continue
			}
			switch tok {
			case "Tj", "TJ":
				line.WriteString(operand.String())
			case "'", `"`:
				flush()
				line.WriteString(operand.String())
			case "Td", "TD", "T*", "Tm", "ET":
				flush()
			}
			operand.Reset()
		default:
			i++
		}
	}
	flush()
	return lines
}

// literalString decodes a PDF literal string starting at b[0] == '(' and
// returns it with the number of bytes consumed. Bytes above 0x7f are read
// as Latin-1.
func literalString(b []byte) (string, int) {
	var sb strings.Builder
	depth := 0
	i := 0
	for ; i < len(b); i++ {
		c := b[i]
		switch c {
		case '(':
			depth++
			if depth == 1 {
				continue
			}
		case ')':
			depth--
			if depth == 0 {
				return sb.String(), i + 1
			}
		case '\\':
			if i+1 >= len(b) {
				continue
			}
			i++
			switch e := b[i]; e {
			case 'n', 'r', 't', 'f', 'b':
				sb.WriteByte(' ')
			case '\r', '\n':
				// line continuation
			default:
				if e >= '0' && e <= '7' {
					v := int(e - '0')
					for k := 0; k < 2 && i+1 < len(b) && b[i+1] >= '0' && b[i+1] <= '7'; k++ {
						i++
						v = v*8 + int(b[i]-'0')
					}
					sb.WriteRune(rune(v & 0xff))
				} else {
					sb.WriteRune(rune(e))
				}
			}
			continue
		}
		sb.WriteRune(rune(c))
	}
	return sb.String(), i
}

func isRegular(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', '\f', 0,
		'(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return false
	}
	return true
}

func isNumberToken(tok string) bool {
	switch tok[0] {
	case '+', '-', '.', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return true
	}
	return false
}

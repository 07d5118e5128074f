package pdftext

import (
	"strings"

	pdf "github.com/ledongthuc/pdf"
)

// FontDescriptor flag bits.
const (
	flagItalic    = 1 << 6
	flagForceBold = 1 << 18
)

var (
	boldTokens   = []string{"bold", "black", "heavy", "semibold", "demi"}
	italicTokens = []string{"italic", "oblique"}
)

// fontInfo caches what the interpreter needs from a font dictionary.
type fontInfo struct {
	font      pdf.Font
	enc       pdf.TextEncoding
	name      string
	composite bool
	bold      bool
	italic    bool
}

func newFontInfo(f pdf.Font) *fontInfo {
	fi := &fontInfo{
		font:      f,
		enc:       f.Encoder(),
		name:      baseName(f.BaseFont()),
		composite: f.V.Key("Subtype").Name() == "Type0",
	}
	desc := f.V.Key("FontDescriptor")
	if fi.composite {
		desc = f.V.Key("DescendantFonts").Index(0).Key("FontDescriptor")
	}
	fi.bold, fi.italic = fontStyle(fi.name, desc)
	return fi
}

// baseName strips a six-letter subset tag such as "ABCDEF+".
func baseName(name string) string {
	if i := strings.IndexByte(name, '+'); i == 6 {
		return name[i+1:]
	}
	return name
}

// fontStyle reads bold and italic from the descriptor, then from the name.
func fontStyle(name string, desc pdf.Value) (bold, italic bool) {
	flags := desc.Key("Flags").Int64()
	bold = flags&flagForceBold != 0 || desc.Key("FontWeight").Float64() >= 600
	italic = flags&flagItalic != 0 || desc.Key("ItalicAngle").Float64() != 0

	lower := strings.ToLower(name)
	if !bold {
		bold = containsAny(lower, boldTokens)
	}
	if !italic {
		italic = containsAny(lower, italicTokens)
	}
	return bold, italic
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

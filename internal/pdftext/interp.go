package pdftext

import (
	"strings"

	"github.com/dgallion1/pdfoutline/internal/model"
	pdf "github.com/ledongthuc/pdf"
)

const (
	// Glyph advance in thousandths of an em when a font carries no widths.
	fallbackWidth = 500.0
	// TJ adjustments (thousandths of an em) wider than this read as a space.
	spaceAdjust = 250.0
	// Nesting limit for form XObjects.
	maxFormDepth = 8
)

// graphicsState is the part of the PDF graphics state saved by q/Q that
// matters for text placement.
type graphicsState struct {
	ctm     Matrix
	font    string
	size    float64
	charSp  float64
	wordSp  float64
	hscale  float64
	leading float64
	rise    float64
}

// interp runs content-stream operators for one page.
type interp struct {
	page      int
	left, top float64

	res   pdf.Value
	fonts map[string]*fontInfo

	gs      graphicsState
	saved   []graphicsState
	tm, tlm Matrix
	depth   int

	runs []model.TextRun
}

func newInterp(page int, left, top float64) *interp {
	return &interp{
		page: page,
		left: left,
		top:  top,
		gs:   graphicsState{ctm: identity, hscale: 1},
		tm:   identity,
		tlm:  identity,
	}
}

// run interprets a content stream (or array of streams) against res.
func (in *interp) run(strm, res pdf.Value) {
	prevRes, prevFonts := in.res, in.fonts
	in.res, in.fonts = res, map[string]*fontInfo{}
	defer func() { in.res, in.fonts = prevRes, prevFonts }()

	pdf.Interpret(strm, func(stk *pdf.Stack, op string) {
		n := stk.Len()
		args := make([]pdf.Value, n)
		for i := n - 1; i >= 0; i-- {
			args[i] = stk.Pop()
		}
		in.do(op, args)
	})
}

func (in *interp) do(op string, args []pdf.Value) {
	switch op {
	case "q":
		in.saved = append(in.saved, in.gs)
	case "Q":
		if n := len(in.saved); n > 0 {
			in.gs = in.saved[n-1]
			in.saved = in.saved[:n-1]
		}
	case "cm":
		if len(args) == 6 {
			in.gs.ctm = matrixOf(args).Mult(in.gs.ctm)
		}
	case "BT":
		in.tm, in.tlm = identity, identity
	case "Tf":
		if len(args) == 2 {
			in.gs.font = args[0].Name()
			in.gs.size = args[1].Float64()
		}
	case "Tc":
		if len(args) == 1 {
			in.gs.charSp = args[0].Float64()
		}
	case "Tw":
		if len(args) == 1 {
			in.gs.wordSp = args[0].Float64()
		}
	case "Tz":
		if len(args) == 1 {
			in.gs.hscale = args[0].Float64() / 100
		}
	case "TL":
		if len(args) == 1 {
			in.gs.leading = args[0].Float64()
		}
	case "Ts":
		if len(args) == 1 {
			in.gs.rise = args[0].Float64()
		}
	case "Td":
		if len(args) == 2 {
			in.moveLine(args[0].Float64(), args[1].Float64())
		}
	case "TD":
		if len(args) == 2 {
			in.gs.leading = -args[1].Float64()
			in.moveLine(args[0].Float64(), args[1].Float64())
		}
	case "Tm":
		if len(args) == 6 {
			in.tm = matrixOf(args)
			in.tlm = in.tm
		}
	case "T*":
		in.moveLine(0, -in.gs.leading)
	case "Tj":
		if len(args) == 1 {
			in.show(args[0].RawString())
		}
	case "'":
		if len(args) == 1 {
			in.moveLine(0, -in.gs.leading)
			in.show(args[0].RawString())
		}
	case `"`:
		if len(args) == 3 {
			in.gs.wordSp = args[0].Float64()
			in.gs.charSp = args[1].Float64()
			in.moveLine(0, -in.gs.leading)
			in.show(args[2].RawString())
		}
	case "TJ":
		if len(args) == 1 {
			in.showArray(args[0])
		}
	case "Do":
		if len(args) == 1 {
			in.form(args[0].Name())
		}
	}
}

func matrixOf(args []pdf.Value) Matrix {
	var m Matrix
	for i := range m {
		m[i] = args[i].Float64()
	}
	return m
}

func (in *interp) moveLine(tx, ty float64) {
	in.tlm = translate(tx, ty).Mult(in.tlm)
	in.tm = in.tlm
}

// form descends into a form XObject, which carries its own matrix and
// resources.
func (in *interp) form(name string) {
	if in.depth >= maxFormDepth {
		return
	}
	xobj := in.res.Key("XObject").Key(name)
	if xobj.Kind() != pdf.Stream || xobj.Key("Subtype").Name() != "Form" {
		return
	}

	saved := in.gs
	tm, tlm := in.tm, in.tlm
	if m := xobj.Key("Matrix"); m.Kind() == pdf.Array && m.Len() == 6 {
		var fm Matrix
		for i := range fm {
			fm[i] = m.Index(i).Float64()
		}
		in.gs.ctm = fm.Mult(in.gs.ctm)
	}
	res := xobj.Key("Resources")
	if res.IsNull() {
		res = in.res
	}

	in.depth++
	in.run(xobj, res)
	in.depth--

	in.gs = saved
	in.tm, in.tlm = tm, tlm
}

// advance decodes raw and returns its horizontal displacement in unscaled
// text space.
func (in *interp) advance(fi *fontInfo, raw string) (string, float64) {
	text := fi.enc.Decode(raw)
	tfs, th := in.gs.size, in.gs.hscale
	var tx float64
	if fi.composite {
		for range text {
			tx += (fallbackWidth/1000*tfs + in.gs.charSp) * th
		}
		return text, tx
	}
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		w := fi.font.Width(int(c))
		if w <= 0 {
			w = fallbackWidth
		}
		adv := w/1000*tfs + in.gs.charSp
		if c == ' ' {
			adv += in.gs.wordSp
		}
		tx += adv * th
	}
	return text, tx
}

func (in *interp) show(raw string) {
	fi := in.currentFont()
	start := in.tm
	text, tx := in.advance(fi, raw)
	in.tm = translate(tx, 0).Mult(in.tm)
	in.emit(fi, text, start, tx)
}

// showArray handles TJ. The whole array becomes one run; large negative
// adjustments insert a space.
func (in *interp) showArray(arr pdf.Value) {
	if arr.Kind() != pdf.Array {
		return
	}
	fi := in.currentFont()
	start := in.tm
	var sb strings.Builder
	var total float64
	for i := 0; i < arr.Len(); i++ {
		el := arr.Index(i)
		switch el.Kind() {
		case pdf.String:
			text, tx := in.advance(fi, el.RawString())
			sb.WriteString(text)
			in.tm = translate(tx, 0).Mult(in.tm)
			total += tx
		case pdf.Integer, pdf.Real:
			num := el.Float64()
			tx := -num / 1000 * in.gs.size * in.gs.hscale
			in.tm = translate(tx, 0).Mult(in.tm)
			total += tx
			if num < -spaceAdjust && sb.Len() > 0 && !strings.HasSuffix(sb.String(), " ") {
				sb.WriteByte(' ')
			}
		}
	}
	in.emit(fi, sb.String(), start, total)
}

func (in *interp) emit(fi *fontInfo, text string, start Matrix, tx float64) {
	if strings.TrimSpace(text) == "" {
		return
	}
	trm := translate(0, in.gs.rise).Mult(start).Mult(in.gs.ctm)
	in.runs = append(in.runs, model.TextRun{
		Text:     text,
		FontSize: roundSize(in.gs.size * trm.vscale()),
		Font:     fi.name,
		Page:     in.page,
		X:        trm[4] - in.left,
		Y:        in.top - trm[5],
		W:        tx * trm.hscale(),
		Bold:     fi.bold,
		Italic:   fi.italic,
	})
}

func (in *interp) currentFont() *fontInfo {
	name := in.gs.font
	if fi, ok := in.fonts[name]; ok {
		return fi
	}
	fi := newFontInfo(pdf.Font{V: in.res.Key("Font").Key(name)})
	in.fonts[name] = fi
	return fi
}

// Package layout turns positioned text runs into reading-order lines and
// derives the document's font-size statistics.
package layout

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/pdfoutline/internal/model"
)

const (
	// Vertical tolerance as a fraction of the font size.
	bandTolerance = 0.5
	// Tolerance in points when neither run has a known size.
	unknownTolerance = 2.0
	// Horizontal gaps wider than this many ems start a new column segment.
	columnGap = 4.0
	// Gaps wider than this fraction of an em get a separating space.
	wordGap = 0.15
	// Advance assumed per rune when a run carries no width.
	emPerRune = 0.5
)

// AssembleLines merges runs into lines page by page. Output is ordered by
// page, then top to bottom, then left to right within a band.
func AssembleLines(runs []model.TextRun) []model.Line {
	byPage := map[int][]model.TextRun{}
	var pages []int
	for _, r := range runs {
		if _, ok := byPage[r.Page]; !ok {
			pages = append(pages, r.Page)
		}
		byPage[r.Page] = append(byPage[r.Page], r)
	}
	sort.Ints(pages)

	var lines []model.Line
	for _, p := range pages {
		lines = append(lines, pageLines(byPage[p])...)
	}
	return lines
}

type band struct {
	y    float64
	size float64
	runs []model.TextRun
}

func pageLines(runs []model.TextRun) []model.Line {
	sort.SliceStable(runs, func(i, j int) bool {
		if runs[i].Y != runs[j].Y {
			return runs[i].Y < runs[j].Y
		}
		return runs[i].X < runs[j].X
	})

	var bands []*band
	for _, r := range runs {
		if n := len(bands); n > 0 && sameBand(bands[n-1], r) {
			b := bands[n-1]
			b.runs = append(b.runs, r)
			b.size = math.Max(b.size, r.FontSize)
			continue
		}
		bands = append(bands, &band{y: r.Y, size: r.FontSize, runs: []model.TextRun{r}})
	}

	spacing := medianSpacing(bands)
	var lines []model.Line
	for i, b := range bands {
		before, after := math.Inf(1), math.Inf(1)
		if i > 0 {
			before = b.y - bands[i-1].y
		}
		if i < len(bands)-1 {
			after = bands[i+1].y - b.y
		}
		for _, l := range bandLines(b) {
			l.GapBefore, l.GapAfter, l.Spacing = before, after, spacing
			lines = append(lines, l)
		}
	}
	return lines
}

func sameBand(b *band, r model.TextRun) bool {
	tol := bandTolerance * math.Max(b.size, r.FontSize)
	if tol <= 0 {
		tol = unknownTolerance
	}
	return math.Abs(r.Y-b.y) <= tol
}

// bandLines splits a band at column gaps and joins each segment into a line.
func bandLines(b *band) []model.Line {
	runs := b.runs
	sort.SliceStable(runs, func(i, j int) bool { return runs[i].X < runs[j].X })

	var lines []model.Line
	start := 0
	for i := 1; i <= len(runs); i++ {
		if i < len(runs) && !columnBreak(runs[i-1], runs[i]) {
			continue
		}
		if l, ok := joinRuns(runs[start:i], b.y); ok {
			lines = append(lines, l)
		}
		start = i
	}
	return lines
}

func columnBreak(prev, next model.TextRun) bool {
	size := math.Max(prev.FontSize, next.FontSize)
	if size <= 0 {
		return false
	}
	return next.X-runEnd(prev) > columnGap*size
}

func runEnd(r model.TextRun) float64 {
	if r.W > 0 {
		return r.X + r.W
	}
	return r.X + float64(utf8.RuneCountInString(r.Text))*r.FontSize*emPerRune
}

func joinRuns(runs []model.TextRun, y float64) (model.Line, bool) {
	var sb strings.Builder
	l := model.Line{Page: runs[0].Page, X: runs[0].X, Y: y}
	end := runs[0].X
	for i, r := range runs {
		if i > 0 {
			prev := runs[i-1]
			size := math.Max(prev.FontSize, r.FontSize)
			if r.X-runEnd(prev) > wordGap*size && !strings.HasSuffix(prev.Text, " ") && !strings.HasPrefix(r.Text, " ") {
				sb.WriteByte(' ')
			}
		}
		sb.WriteString(r.Text)
		l.MaxFontSize = math.Max(l.MaxFontSize, r.FontSize)
		l.Bold = l.Bold || r.Bold
		end = math.Max(end, runEnd(r))
	}
	l.Text = strings.Join(strings.Fields(sb.String()), " ")
	l.Width = end - l.X
	return l, l.Text != ""
}

// medianSpacing is the median baseline distance between consecutive bands.
func medianSpacing(bands []*band) float64 {
	var d []float64
	for i := 1; i < len(bands); i++ {
		if gap := bands[i].y - bands[i-1].y; gap > 0 {
			d = append(d, gap)
		}
	}
	if len(d) == 0 {
		return 0
	}
	sort.Float64s(d)
	if len(d)%2 == 1 {
		return d[len(d)/2]
	}
	return (d[len(d)/2-1] + d[len(d)/2]) / 2
}

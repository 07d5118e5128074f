package heading

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/pdfoutline/internal/model"
)

const (
	titleWindow   = 20
	titleFloor    = 1.5
	titleMergeBar = 3.0
	titleMergeGap = 1.5 // baseline distance, in multiples of the larger size
	plainLeading  = 12.0
	minTitleRunes = 3
	maxTitleRunes = 200
	letterWidth   = 612.0
)

// Title is the selected title and the line indexes it came from.
type Title struct {
	Text  string
	Lines []int
}

type scored struct {
	idx   int
	pos   int
	text  string
	score float64
}

// SelectTitle scores the first lines of page 1 (or the first lines overall
// when page 1 is empty) and returns the best one. Two adjacent lines that
// both clear the merge bar, sit within one and a half line heights of each
// other and are not numbered or keyword headings form a two-line title. No
// candidate above the floor yields an empty title.
func SelectTitle(lines []model.Line, pages []model.PageBox, stats model.FontStats) Title {
	var idxs []int
	for i, l := range lines {
		if l.Page == 1 {
			idxs = append(idxs, i)
		}
	}
	if len(idxs) == 0 {
		for i := range lines {
			idxs = append(idxs, i)
		}
	}
	if len(idxs) > titleWindow {
		idxs = idxs[:titleWindow]
	}

	widths := map[int]float64{}
	for _, p := range pages {
		widths[p.Number] = p.Width
	}

	var cands []scored
	for pos, i := range idxs {
		l := lines[i]
		text := CleanText(l.Text)
		n := utf8.RuneCountInString(text)
		if n < minTitleRunes || n > maxTitleRunes {
			continue
		}
		w := widths[l.Page]
		if w <= 0 {
			w = letterWidth
		}
		cands = append(cands, scored{idx: i, pos: pos, text: text, score: titleScore(text, pos, l, w, stats)})
	}

	best := -1
	for i, c := range cands {
		if best < 0 || c.score > cands[best].score {
			best = i
		}
	}
	if best < 0 || cands[best].score < titleFloor {
		return Title{}
	}

	second := -1
	for i, c := range cands {
		if i == best {
			continue
		}
		if second < 0 || c.score > cands[second].score {
			second = i
		}
	}
	b := cands[best]
	if second >= 0 {
		s := cands[second]
		if abs(b.pos-s.pos) == 1 && b.score >= titleMergeBar && s.score >= titleMergeBar &&
			mergeable(b, s, lines) {
			first, next := b, s
			if s.pos < b.pos {
				first, next = s, b
			}
			return Title{Text: first.text + " " + next.text, Lines: []int{first.idx, next.idx}}
		}
	}
	return Title{Text: b.text, Lines: []int{b.idx}}
}

// mergeable reports whether two title lines read as one wrapped title
// rather than a title followed by a heading.
func mergeable(a, b scored, lines []model.Line) bool {
	la, lb := lines[a.idx], lines[b.idx]
	if la.Page != lb.Page {
		return false
	}
	size := math.Max(la.MaxFontSize, lb.MaxFontSize)
	if size <= 0 {
		size = plainLeading
	}
	if math.Abs(la.Y-lb.Y) > titleMergeGap*size {
		return false
	}
	for _, c := range []scored{a, b} {
		switch Classify(c.text, lines[c.idx]).Rule {
		case RuleNumbered, RuleKeyword:
			return false
		}
	}
	return true
}

func titleScore(text string, pos int, l model.Line, pageWidth float64, stats model.FontStats) float64 {
	var score float64
	if l.KnownSize() && stats.MaxSize > 0 {
		score += 3 * l.MaxFontSize / stats.MaxSize
	}
	if l.Width > 0 {
		half := pageWidth / 2
		mid := l.X + l.Width/2
		score += 2 * math.Max(0, 1-math.Abs(mid-half)/half)
	}
	score += 2 * titleCaseRatio(text)
	if hasTitleKeyword(text) {
		score += 1.5
	}
	if l.Bold {
		score += 0.5
	}
	score += 0.5 * float64(titleWindow-pos) / titleWindow

	if endsSentence(text) {
		score -= 2
	}
	if hasURL(text) {
		score -= 3
	}
	if isNumeric(text) || isDate(text) || strings.HasPrefix(strings.ToLower(text), "page ") {
		score -= 3
	}
	return score
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

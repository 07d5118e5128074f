// Package heading decides which lines of a document are headings, picks the
// title, and assembles the final outline.
package heading

import (
	"sort"
	"unicode/utf8"

	"github.com/dgallion1/pdfoutline/internal/model"
)

const (
	maxHeadingRunes = 100
	minStylistic    = 4
	// Extra vertical room (pt) a stylistic heading needs beyond line spacing.
	isolationSlack = 0.1
)

// Rule identifies which classification rule accepted a line.
type Rule int

const (
	RuleNone Rule = iota
	RuleNumbered
	RuleKeyword
	RuleStylistic
)

func (r Rule) String() string {
	switch r {
	case RuleNumbered:
		return "numbered"
	case RuleKeyword:
		return "keyword"
	case RuleStylistic:
		return "stylistic"
	default:
		return "none"
	}
}

// Classification is the result of running the rules on one line. Stylistic
// results carry no level until ranks across the document are known.
type Classification struct {
	Rule       Rule
	Level      model.Level
	Confidence float64
}

// Classify runs the numbered, keyword, and stylistic rules on a line in that
// order. text is the cleaned line text.
func Classify(text string, l model.Line) Classification {
	n := utf8.RuneCountInString(text)
	if n == 0 || n > maxHeadingRunes || isNumeric(text) || isDate(text) {
		return Classification{}
	}

	if depth, ok := numberedLevel(text); ok && !endsSentence(text) {
		conf := 0.9
		if l.Bold {
			conf += 0.05
		}
		return Classification{Rule: RuleNumbered, Level: model.LevelFromDepth(depth), Confidence: model.Confidence(conf)}
	}

	if isKeywordHeading(text) && !endsSentence(text) {
		return Classification{Rule: RuleKeyword, Level: model.H1, Confidence: 0.85}
	}

	if isStylistic(text, n, l) {
		conf := 0.6
		if l.Bold {
			conf += 0.1
		}
		if isUpper(text) {
			conf += 0.1
		}
		return Classification{Rule: RuleStylistic, Confidence: model.Confidence(conf)}
	}
	return Classification{}
}

func isStylistic(text string, runes int, l model.Line) bool {
	if runes < minStylistic || runes > maxHeadingRunes {
		return false
	}
	if endsSentence(text) || hasEmbeddedSentence(text) || hasURL(text) {
		return false
	}
	if !isUpper(text) && !isTitleCase(text) {
		return false
	}
	return isolated(l)
}

func isolated(l model.Line) bool {
	bar := l.Spacing + isolationSlack
	return l.GapBefore > bar && l.GapAfter > bar
}

// Eligible reports whether a line may be considered for heading promotion.
// Unknown sizes, sizes below the threshold, and cover-size lines on the first
// page are not.
func Eligible(l model.Line, stats model.FontStats) bool {
	if !l.KnownSize() || l.MaxFontSize < stats.HeadingThreshold {
		return false
	}
	if stats.DistinctSizes >= 2 && l.Page == 1 && l.MaxFontSize >= stats.MaxSize {
		return false
	}
	return true
}

// ClassifyLines returns heading candidates in line order. Lines whose index
// is in skip (the title) are never promoted.
func ClassifyLines(lines []model.Line, stats model.FontStats, skip map[int]bool) []model.HeadingCandidate {
	type pending struct {
		cand model.HeadingCandidate
		size float64
		rule Rule
	}
	var found []pending
	stylisticSizes := map[float64]bool{}

	for i, l := range lines {
		if skip[i] || !Eligible(l, stats) {
			continue
		}
		text := CleanText(l.Text)
		c := Classify(text, l)
		if c.Rule == RuleNone {
			continue
		}
		if c.Rule == RuleStylistic {
			stylisticSizes[l.MaxFontSize] = true
		}
		found = append(found, pending{
			cand: model.HeadingCandidate{
				Text:       text,
				Level:      c.Level,
				Page:       l.Page,
				Y:          l.Y,
				Confidence: c.Confidence,
			},
			size: l.MaxFontSize,
			rule: c.Rule,
		})
	}

	rank := sizeRanks(stylisticSizes)
	out := make([]model.HeadingCandidate, 0, len(found))
	for _, p := range found {
		if p.rule == RuleStylistic {
			p.cand.Level = model.LevelFromDepth(rank[p.size] + 1)
		}
		out = append(out, p.cand)
	}
	return out
}

// sizeRanks maps each size to its rank, largest first.
func sizeRanks(sizes map[float64]bool) map[float64]int {
	ordered := make([]float64, 0, len(sizes))
	for s := range sizes {
		ordered = append(ordered, s)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(ordered)))
	rank := make(map[float64]int, len(ordered))
	for i, s := range ordered {
		rank[s] = i
	}
	return rank
}

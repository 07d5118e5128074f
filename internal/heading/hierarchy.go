package heading

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dgallion1/pdfoutline/internal/model"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// DefaultMaxHeadings is the outline size cap.
const DefaultMaxHeadings = 50

// LevelPolicy controls whether a heading may skip levels.
type LevelPolicy string

const (
	// LevelPermit keeps levels as classified; an H3 may follow an H1.
	LevelPermit LevelPolicy = "permit"
	// LevelReparent lifts a heading deeper than its predecessor + 1.
	LevelReparent LevelPolicy = "reparent"
)

// ParseLevelPolicy accepts "permit", "reparent", or "" (permit).
func ParseLevelPolicy(s string) (LevelPolicy, error) {
	switch LevelPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", LevelPermit:
		return LevelPermit, nil
	case LevelReparent:
		return LevelReparent, nil
	}
	return "", fmt.Errorf("invalid level policy %q", s)
}

// Assemble sorts candidates by page and position, drops running headers,
// caps the list by confidence without reordering, and applies the level
// policy. maxHeadings <= 0 disables the cap.
func Assemble(cands []model.HeadingCandidate, maxHeadings int, policy LevelPolicy) []model.HeadingCandidate {
	sorted := append([]model.HeadingCandidate(nil), cands...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Page != sorted[j].Page {
			return sorted[i].Page < sorted[j].Page
		}
		return sorted[i].Y < sorted[j].Y
	})

	out := capByConfidence(dedupe(sorted), maxHeadings)
	if policy == LevelReparent {
		reparent(out)
	}
	return out
}

// dedupe drops a candidate whose text was last seen on the previous page.
// Runs over consecutive pages collapse onto the first; repeats on one page
// are kept.
func dedupe(cands []model.HeadingCandidate) []model.HeadingCandidate {
	lastPage := map[string]int{}
	out := make([]model.HeadingCandidate, 0, len(cands))
	for _, c := range cands {
		key := Normalize(c.Text)
		if p, ok := lastPage[key]; ok && c.Page-p == 1 {
			lastPage[key] = c.Page
			continue
		}
		lastPage[key] = c.Page
		out = append(out, c)
	}
	return out
}

func capByConfidence(cands []model.HeadingCandidate, limit int) []model.HeadingCandidate {
	if limit <= 0 || len(cands) <= limit {
		return cands
	}
	idx := make([]int, len(cands))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return cands[idx[a]].Confidence > cands[idx[b]].Confidence
	})
	keep := make([]bool, len(cands))
	for _, i := range idx[:limit] {
		keep[i] = true
	}
	out := make([]model.HeadingCandidate, 0, limit)
	for i, c := range cands {
		if keep[i] {
			out = append(out, c)
		}
	}
	return out
}

func reparent(cands []model.HeadingCandidate) {
	prev := model.LevelNone
	for i := range cands {
		if cands[i].Level > prev+1 {
			cands[i].Level = prev + 1
		}
		prev = cands[i].Level
	}
}

// Normalize folds text for duplicate detection: NFKC, case folding, and
// collapsed whitespace.
func Normalize(s string) string {
	s = norm.NFKC.String(s)
	s = cases.Fold().String(s)
	return strings.Join(strings.Fields(s), " ")
}

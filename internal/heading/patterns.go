package heading

import (
	"regexp"
	"strings"
	"unicode"
)

// Pattern tables. Compiled once at init and never modified.
var (
	// "1", "1.2", "1.2.3" with an optional trailing "." or ")".
	arabicPrefix = regexp.MustCompile(`^(\d{1,3}(?:\.\d{1,3})*)[.)]?\s+(\S.*)$`)
	// "A." or "b)".
	letterPrefix = regexp.MustCompile(`^([A-Za-z])[.)]\s+(\S.*)$`)
	// "IV." or "xii)".
	romanPrefix = regexp.MustCompile(`^([IVXLCDM]+|[ivxlcdm]+)[.)]\s+(\S.*)$`)

	keywordPrefix = regexp.MustCompile(`^(?i:chapter|appendix|section|part|annex)\s+[A-Z0-9][A-Za-z0-9.\-]*(?:[\s:.\-]|$)`)

	datePatterns = []*regexp.Regexp{
		regexp.MustCompile(`^\d{4}[-/.]\d{1,2}[-/.]\d{1,2}$`),
		regexp.MustCompile(`^\d{1,2}[-/.]\d{1,2}[-/.]\d{2,4}$`),
		regexp.MustCompile(`(?i)^(?:\d{1,2}(?:st|nd|rd|th)?\s+)?(?:jan|feb|mar|apr|may|jun|jul|aug|sep|sept|oct|nov|dec)[a-z]*\.?(?:\s+\d{1,2}(?:st|nd|rd|th)?)?,?\s+\d{2,4}$`),
		regexp.MustCompile(`^\d{1,2}\s+[A-Z]{3,}\s+\d{2,4}$`),
	}

	numericOnly = regexp.MustCompile(`^[\d\s.,:;/\-–—()%$€£+#]+$`)
	urlPattern  = regexp.MustCompile(`(?i)(?:https?://|www\.|\S+@\S+\.\S+)`)

	sentenceEnd      = regexp.MustCompile(`[.!?;]$`)
	embeddedSentence = regexp.MustCompile(`\p{Ll}{2,}[.!?]\s+\p{Lu}`)

	titleKeywords = regexp.MustCompile(`(?i)\b(?:report|guide|manual|handbook|study|analysis|overview|specification|standard|requirements|proposal|plan|strategy|framework|methodology|principles|guidelines|whitepaper|policy|thesis|foundation)s?\b`)

	dottedLeader = regexp.MustCompile(`\s*\.{3,}\s*\d*$`)
)

// Words that stay lower-case inside a title-cased heading.
var minorWords = map[string]bool{
	"a": true, "an": true, "the": true, "and": true, "or": true, "nor": true,
	"of": true, "for": true, "to": true, "in": true, "on": true, "at": true,
	"by": true, "with": true, "from": true, "as": true, "vs": true, "via": true,
}

// numberedLevel returns the depth implied by an enumeration prefix.
func numberedLevel(text string) (int, bool) {
	if m := arabicPrefix.FindStringSubmatch(text); m != nil && hasLetter(m[2]) {
		return strings.Count(m[1], ".") + 1, true
	}
	if m := romanPrefix.FindStringSubmatch(text); m != nil && hasLetter(m[2]) {
		return 1, true
	}
	if m := letterPrefix.FindStringSubmatch(text); m != nil && hasLetter(m[2]) {
		return 1, true
	}
	return 0, false
}

func isKeywordHeading(text string) bool { return keywordPrefix.MatchString(text) }

func isDate(text string) bool {
	for _, re := range datePatterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

func isNumeric(text string) bool { return numericOnly.MatchString(text) }

func hasURL(text string) bool { return urlPattern.MatchString(text) }

func endsSentence(text string) bool { return sentenceEnd.MatchString(text) }

func hasEmbeddedSentence(text string) bool { return embeddedSentence.MatchString(text) }

func hasTitleKeyword(text string) bool { return titleKeywords.MatchString(text) }

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

// isUpper reports whether s has letters and none of them are lower-case.
func isUpper(s string) bool {
	letters := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsLetter(r) {
			letters = true
		}
	}
	return letters
}

// words returns the whitespace-separated tokens of s that contain a letter.
func words(s string) []string {
	var out []string
	for _, w := range strings.Fields(s) {
		if hasLetter(w) {
			out = append(out, w)
		}
	}
	return out
}

func firstLetter(w string) rune {
	for _, r := range w {
		if unicode.IsLetter(r) {
			return r
		}
	}
	return 0
}

// isTitleCase reports whether every significant word starts upper-case.
func isTitleCase(s string) bool {
	ws := words(s)
	if len(ws) == 0 {
		return false
	}
	for i, w := range ws {
		if unicode.IsUpper(firstLetter(w)) {
			continue
		}
		if i > 0 && minorWords[strings.ToLower(strings.Trim(w, ",:;"))] {
			continue
		}
		return false
	}
	return true
}

// titleCaseRatio is the share of words that start upper-case.
func titleCaseRatio(s string) float64 {
	ws := words(s)
	if len(ws) == 0 {
		return 0
	}
	n := 0
	for _, w := range ws {
		if unicode.IsUpper(firstLetter(w)) {
			n++
		}
	}
	return float64(n) / float64(len(ws))
}

// CleanText collapses whitespace and strips trailing colons and dotted
// leaders with their page numbers.
func CleanText(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	s = dottedLeader.ReplaceAllString(s, "")
	s = strings.TrimSpace(strings.TrimRight(s, ":"))
	return s
}

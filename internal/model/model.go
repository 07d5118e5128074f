package model

import (
	"fmt"
	"math"
)

// UnknownSize marks a run or line whose font size could not be recovered
// (plain-text fallback). Such lines never become headings.
const UnknownSize = 0.0

// TextRun is one positioned, font-tagged fragment produced by a text-show
// operator. Y grows downward from the top of the page.
type TextRun struct {
	Text     string
	FontSize float64
	Font     string
	Page     int // 1-based
	X        float64
	Y        float64
	W        float64 // Advance width in points, 0 if unknown
	Bold     bool
	Italic   bool
}

// Line is one or more runs on the same page merged into a logical line.
type Line struct {
	Text        string
	MaxFontSize float64
	Page        int
	X           float64
	Y           float64
	Width       float64
	Bold        bool

	// Vertical context on the page, filled by the line assembler.
	GapBefore float64 // Baseline distance to the previous band, +Inf if none
	GapAfter  float64 // Baseline distance to the next band, +Inf if none
	Spacing   float64 // Median baseline distance on the page, 0 if unknown
}

// KnownSize reports whether the line carries real font-size metadata.
func (l Line) KnownSize() bool { return l.MaxFontSize > UnknownSize }

// PageBox is the visible size of a page in points.
type PageBox struct {
	Number int
	Width  float64
	Height float64
}

// FontStats summarizes the font sizes of one document.
type FontStats struct {
	BodySize         float64
	HeadingThreshold float64
	MaxSize          float64
	DistinctSizes    int
}

// Level is a heading depth. Only H1..H3 are produced.
type Level int

const (
	LevelNone Level = iota
	H1
	H2
	H3
)

// LevelFromDepth clamps a nesting depth (1-based) into H1..H3.
func LevelFromDepth(depth int) Level {
	switch {
	case depth <= 1:
		return H1
	case depth == 2:
		return H2
	default:
		return H3
	}
}

func (l Level) String() string {
	switch l {
	case H1, H2, H3:
		return fmt.Sprintf("H%d", int(l))
	default:
		return ""
	}
}

// ParseLevel accepts "H1".."H3" (case-insensitive).
func ParseLevel(s string) (Level, error) {
	switch s {
	case "H1", "h1":
		return H1, nil
	case "H2", "h2":
		return H2, nil
	case "H3", "h3":
		return H3, nil
	}
	return LevelNone, fmt.Errorf("invalid heading level %q", s)
}

// HeadingCandidate is a line the classifier accepted as a heading.
type HeadingCandidate struct {
	Text       string
	Level      Level
	Page       int
	Y          float64
	Confidence float64
}

// Outline is the final result for one document.
type Outline struct {
	Title    string
	Headings []HeadingCandidate
}

// Confidence caps c to [0,1] and rounds it to two decimals.
func Confidence(c float64) float64 {
	if c > 1 {
		c = 1
	}
	if c < 0 {
		c = 0
	}
	return math.Round(c*100) / 100
}

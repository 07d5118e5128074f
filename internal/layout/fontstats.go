package layout

import (
	"sort"
	"unicode/utf8"

	"github.com/dgallion1/pdfoutline/internal/model"
)

// ComputeFontStats derives body size and heading threshold from line sizes.
// Lines of unknown size are ignored. The threshold is the second-largest
// distinct size, or the only size when just one exists.
func ComputeFontStats(lines []model.Line) model.FontStats {
	weight := map[float64]int{}
	var order []float64
	for _, l := range lines {
		if !l.KnownSize() {
			continue
		}
		if _, ok := weight[l.MaxFontSize]; !ok {
			order = append(order, l.MaxFontSize)
		}
		weight[l.MaxFontSize] += utf8.RuneCountInString(l.Text)
	}
	if len(order) == 0 {
		return model.FontStats{}
	}

	var stats model.FontStats
	best := -1
	for _, s := range order {
		if weight[s] > best {
			best = weight[s]
			stats.BodySize = s
		}
	}

	distinct := append([]float64(nil), order...)
	sort.Sort(sort.Reverse(sort.Float64Slice(distinct)))
	stats.MaxSize = distinct[0]
	stats.DistinctSizes = len(distinct)
	stats.HeadingThreshold = distinct[0]
	if len(distinct) > 1 {
		stats.HeadingThreshold = distinct[1]
	}
	return stats
}

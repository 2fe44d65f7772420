package deck

import (
	"fmt"
	"strings"
	"unicode"
)

// Default bounds for automatic font shrinking.
const (
	DefaultMinFontSize = 8
	DefaultMaxFontSize = 72
	defaultFontSize    = 18
)

// FitReport describes whether text fits its shape at a given font size.
type FitReport struct {
	Fits              bool    `json:"fits"`
	FontSize          int     `json:"font_size"`
	LineCount         int     `json:"line_count"`
	RequiredHeight    float64 `json:"required_height"`  // inches
	AvailableHeight   float64 `json:"available_height"` // inches
	NeedsOptimization bool    `json:"needs_optimization"`
	RecommendedSize   int     `json:"recommended_size,omitempty"`
}

// FixReport summarizes an auto-fix pass over a slide.
type FixReport struct {
	ShapesAdjusted int      `json:"shapes_adjusted"`
	Adjustments    []string `json:"adjustments,omitempty"`
}

// EstimateFit reports whether text fits the shape at fontSize using a
// character-width heuristic (wide CJK glyphs count as a full em, Latin
// glyphs roughly half). When text is empty the shape's current text is used.
func EstimateFit(sh *Shape, text string, fontSize int) FitReport {
	if text == "" {
		text = sh.Text()
	}
	if fontSize <= 0 {
		fontSize = defaultFontSize
	}

	widthIn := ToInches(sh.Width)
	heightIn := ToInches(sh.Height)
	// Leave a little body-margin room on each side.
	usableWidthPt := (widthIn - 0.2) * 72
	if usableWidthPt < 1 {
		usableWidthPt = 1
	}

	lines := countLines(text, fontSize, usableWidthPt)
	lineHeightPt := float64(fontSize) * 1.25
	requiredIn := float64(lines) * lineHeightPt / 72

	report := FitReport{
		Fits:            requiredIn <= heightIn,
		FontSize:        fontSize,
		LineCount:       lines,
		RequiredHeight:  requiredIn,
		AvailableHeight: heightIn,
	}
	if !report.Fits {
		report.NeedsOptimization = true
		for size := fontSize - 1; size >= DefaultMinFontSize; size-- {
			l := countLines(text, size, usableWidthPt)
			if float64(l)*float64(size)*1.25/72 <= heightIn {
				report.RecommendedSize = size
				break
			}
		}
	}
	return report
}

func countLines(text string, fontSize int, usableWidthPt float64) int {
	lines := 0
	for _, para := range strings.Split(text, "\n") {
		widthPt := textWidthPt(para, fontSize)
		n := int(widthPt/usableWidthPt) + 1
		lines += n
	}
	if lines == 0 {
		lines = 1
	}
	return lines
}

func textWidthPt(s string, fontSize int) float64 {
	var w float64
	for _, r := range s {
		if isWide(r) {
			w += float64(fontSize)
		} else {
			w += float64(fontSize) * 0.55
		}
	}
	return w
}

func isWide(r rune) bool {
	return unicode.Is(unicode.Han, r) || unicode.Is(unicode.Hangul, r) ||
		unicode.Is(unicode.Hiragana, r) || unicode.Is(unicode.Katakana, r)
}

// AutoFixText shrinks the font of every overflowing text shape on the slide,
// bounded by minSize. Shapes already fitting are left alone.
func AutoFixText(s *Slide, minSize, maxSize int) FixReport {
	if minSize <= 0 {
		minSize = DefaultMinFontSize
	}
	if maxSize <= 0 {
		maxSize = DefaultMaxFontSize
	}
	var report FixReport
	for i, sh := range s.Shapes {
		if !sh.HasTextFrame() || sh.Text() == "" {
			continue
		}
		size := currentFontSize(sh)
		if size > maxSize {
			size = maxSize
		}
		if EstimateFit(sh, "", size).Fits {
			continue
		}
		for size > minSize && !EstimateFit(sh, "", size).Fits {
			size--
		}
		sh.Format(FormatOptions{FontSize: &size})
		report.ShapesAdjusted++
		report.Adjustments = append(report.Adjustments,
			fmt.Sprintf("shape %d: font size reduced to %dpt", i, size))
	}
	return report
}

// currentFontSize picks the largest explicit size in the frame, falling back
// to the model default.
func currentFontSize(sh *Shape) int {
	size := 0
	for _, para := range sh.Frame.Paragraphs {
		if para.FontSize != nil && *para.FontSize > size {
			size = *para.FontSize
		}
		for _, run := range para.Runs {
			if run.Props.Size != nil && *run.Props.Size > size {
				size = *run.Props.Size
			}
		}
	}
	if size == 0 {
		size = defaultFontSize
	}
	return size
}

// Package preview computes on-screen placement for resolved subtitle text.
// It owns no rendering; the GUI draws the blocks at the returned positions.
package preview

import (
	"strings"

	"dual-subtitle-burner/internal/domain"
)

// Point is a top-left position inside the viewport, in pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// MeasureFunc reports the pixel size of a text block rendered with the
// given style. The GUI supplies real font metrics; EstimateBlockSize is
// the fallback when none are available.
type MeasureFunc func(text string, style domain.Style) (width, height float64)

// Engine positions subtitle blocks inside a viewport. Each track's block
// is placed independently, so blocks may overlap when user-chosen margins
// are close; that is accepted behavior, not an error.
type Engine struct {
	measure MeasureFunc
}

// NewEngine builds a layout engine with the given measurer, falling back
// to the heuristic estimator when measure is nil.
func NewEngine(measure MeasureFunc) *Engine {
	if measure == nil {
		measure = EstimateBlockSize
	}
	return &Engine{measure: measure}
}

// Layout returns the top-left position for one subtitle block: centered
// horizontally, and raised from the bottom edge by the style's vertical
// margin plus twice the outline width so a thick outline is not clipped.
func (e *Engine) Layout(text string, style domain.Style, viewportWidth, viewportHeight float64) Point {
	width, height := e.measure(text, style)

	return Point{
		X: (viewportWidth - width) / 2,
		Y: viewportHeight - height - float64(style.VerticalMargin) - 2*style.EffectiveOutline(),
	}
}

// EstimateBlockSize approximates block dimensions from the font size: a
// line is FontSize*1.2 tall and the average glyph advance is FontSize*0.6.
// Good enough for a placeholder until the GUI reports measured metrics.
func EstimateBlockSize(text string, style domain.Style) (float64, float64) {
	if text == "" {
		return 0, 0
	}

	lines := strings.Split(text, "\n")
	longest := 0
	for _, line := range lines {
		if n := len([]rune(line)); n > longest {
			longest = n
		}
	}

	return float64(longest) * style.FontSize * 0.6, float64(len(lines)) * style.FontSize * 1.2
}

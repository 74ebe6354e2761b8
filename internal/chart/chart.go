// Package chart renders history buffers as unicode sparklines for the
// terminal monitor. Missing readings (NaN) show up as gaps rather than
// dragging the scale down.
package chart

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/twentefluids/dodecalog/internal/history"
)

var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

const (
	gapRune = '╌'
	minSpan = 0.5
)

var (
	lineStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("78"))
	gapStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("236"))
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("239"))
)

// Range returns the plotting bounds for a series, ignoring NaN points.
// The span is padded slightly and never collapses below minSpan, so a
// flat trace renders mid-band instead of jittering across the full height.
func Range(points []history.Point) (lo, hi float64) {
	lo = math.Inf(1)
	hi = math.Inf(-1)

	for _, p := range points {
		if math.IsNaN(p.Value) {
			continue
		}
		lo = math.Min(lo, p.Value)
		hi = math.Max(hi, p.Value)
	}

	if lo > hi {
		return 0, minSpan
	}

	if hi-lo < minSpan {
		mid := (lo + hi) / 2
		return mid - minSpan/2, mid + minSpan/2
	}

	pad := (hi - lo) * 0.05
	return lo - pad, hi + pad
}

// Sparkline renders the most recent points into a fixed-width run of
// block characters. The left side is padded with dashes until the
// buffer has filled; NaN points render as gaps.
func Sparkline(points []history.Point, width int, lo, hi float64) string {
	if width <= 0 {
		return ""
	}

	if len(points) == 0 {
		return gapStyle.Render(strings.Repeat(string(gapRune), width))
	}

	if len(points) > width {
		points = points[len(points)-width:]
	}

	span := hi - lo
	if span <= 0 {
		span = 1
	}

	var sb strings.Builder

	for i := len(points); i < width; i++ {
		sb.WriteString(gapStyle.Render(string(gapRune)))
	}

	for _, p := range points {
		if math.IsNaN(p.Value) {
			sb.WriteString(gapStyle.Render(string(gapRune)))
			continue
		}

		norm := (p.Value - lo) / span
		norm = math.Max(0, math.Min(1, norm))

		idx := int(norm * 7)
		if idx > 7 {
			idx = 7
		}

		sb.WriteString(lineStyle.Render(string(sparkBlocks[idx])))
	}

	return sb.String()
}

// Axis renders the "lo .. hi" annotation shown next to a sparkline.
func Axis(lo, hi float64, unit string) string {
	return dimStyle.Render(fmt.Sprintf("%.1f .. %.1f %s", lo, hi, unit))
}

// Value formats a current reading for the live readout. A NaN reading
// renders as a dash so a faulted probe is obvious at a glance.
func Value(v float64, format, unit string) string {
	if math.IsNaN(v) {
		return gapStyle.Render("  --  " + unit)
	}

	return fmt.Sprintf(format+" %s", v, unit)
}

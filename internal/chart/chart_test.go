package chart

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twentefluids/dodecalog/internal/history"
)

func points(values ...float64) []history.Point {
	pts := make([]history.Point, len(values))
	for i, v := range values {
		pts[i] = history.Point{Time: float64(i), Value: v}
	}

	return pts
}

func TestRangeIgnoresNaN(t *testing.T) {
	lo, hi := Range(points(20, math.NaN(), 25))

	assert.Less(t, lo, 20.0)
	assert.Greater(t, hi, 25.0)
}

func TestRangeFlatTrace(t *testing.T) {
	lo, hi := Range(points(21.5, 21.5, 21.5))

	assert.InDelta(t, minSpan, hi-lo, 1e-9)
	assert.Less(t, lo, 21.5)
	assert.Greater(t, hi, 21.5)
}

func TestRangeAllMissing(t *testing.T) {
	lo, hi := Range(points(math.NaN(), math.NaN()))

	assert.Equal(t, 0.0, lo)
	assert.Greater(t, hi, lo)
}

func TestSparklineRendersBlocks(t *testing.T) {
	out := Sparkline(points(20, 22, 24, 26, 28), 5, 20, 28)
	require.NotEmpty(t, out)

	assert.Contains(t, out, string(sparkBlocks[0]))
	assert.Contains(t, out, string(sparkBlocks[7]))
	assert.NotContains(t, out, string(gapRune))
}

func TestSparklineMissingReadingIsGap(t *testing.T) {
	out := Sparkline(points(20, math.NaN(), 24), 3, 20, 24)

	assert.Contains(t, out, string(gapRune))
}

func TestSparklinePadsUntilFull(t *testing.T) {
	out := Sparkline(points(20, 24), 10, 20, 24)

	assert.Equal(t, 8, strings.Count(out, string(gapRune)))
}

func TestSparklineEmpty(t *testing.T) {
	out := Sparkline(nil, 8, 0, 1)

	assert.Equal(t, 8, strings.Count(out, string(gapRune)))
}

func TestSparklineZeroWidth(t *testing.T) {
	assert.Empty(t, Sparkline(points(1, 2, 3), 0, 0, 3))
}

func TestValueMissing(t *testing.T) {
	assert.Contains(t, Value(math.NaN(), "%6.1f", "°C"), "--")
	assert.Contains(t, Value(21.4, "%6.1f", "°C"), "21.4")
}

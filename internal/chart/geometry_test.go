package chart

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSplitCrossing проверяет деление отрезка, пересекающего порог.
func TestSplitCrossing(t *testing.T) {
	pieces := Split(Sample{X: 0, Value: 40}, Sample{X: 10, Value: 90}, 70)
	require.Len(t, pieces, 2)

	assert.False(t, pieces[0].Above)
	assert.True(t, pieces[1].Above)
	assert.InDelta(t, 6.0, pieces[0].To.X, 1e-9)
	assert.Equal(t, pieces[0].To, pieces[1].From)
	assert.Equal(t, 70.0, pieces[0].To.Value)
}

// TestSplitNoCrossing проверяет отрезки по одну сторону порога.
func TestSplitNoCrossing(t *testing.T) {
	below := Split(Sample{X: 0, Value: 10}, Sample{X: 1, Value: 20}, 70)
	require.Len(t, below, 1)
	assert.False(t, below[0].Above)

	above := Split(Sample{X: 0, Value: 80}, Sample{X: 1, Value: 95}, 70)
	require.Len(t, above, 1)
	assert.True(t, above[0].Above)
}

// TestSplitBoundaryIsBelow проверяет, что значение на пороге не считается выше него.
func TestSplitBoundaryIsBelow(t *testing.T) {
	flat := Split(Sample{X: 0, Value: 70}, Sample{X: 1, Value: 70}, 70)
	require.Len(t, flat, 1)
	assert.False(t, flat[0].Above)

	down := Split(Sample{X: 0, Value: 70}, Sample{X: 1, Value: 30}, 70)
	require.Len(t, down, 1)
	assert.False(t, down[0].Above)

	up := Split(Sample{X: 0, Value: 70}, Sample{X: 1, Value: 90}, 70)
	require.Len(t, up, 1)
	assert.True(t, up[0].Above)
}

// TestSplitProperties проверяет, что точка пересечения лежит строго внутри отрезка
// и что части воспроизводят исходную прямую.
func TestSplitProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(3))

	for i := 0; i < 2000; i++ {
		threshold := rng.Float64()*100 + 1
		x1 := rng.Float64() * 500
		x2 := x1 + rng.Float64()*200 + 1
		low := threshold - rng.Float64()*threshold - 0.01
		high := threshold + rng.Float64()*100 + 0.01

		y1, y2 := low, high
		if rng.Intn(2) == 0 {
			y1, y2 = high, low
		}

		a, b := Sample{X: x1, Value: y1}, Sample{X: x2, Value: y2}
		x, ok := Crossing(a, b, threshold)
		require.True(t, ok)
		assert.Greater(t, x, x1)
		assert.Less(t, x, x2)

		pieces := Split(a, b, threshold)
		require.Len(t, pieces, 2)
		assert.NotEqual(t, pieces[0].Above, pieces[1].Above)
		assert.Equal(t, a, pieces[0].From)
		assert.Equal(t, b, pieces[1].To)

		slope := (y2 - y1) / (x2 - x1)
		onLine := y1 + slope*(pieces[0].To.X-x1)
		assert.InDelta(t, threshold, onLine, 1e-6)
	}
}

// TestNewScaleIncludesThreshold проверяет, что порог всегда внутри шкалы.
func TestNewScaleIncludesThreshold(t *testing.T) {
	scale := NewScale(DefaultViewport, []float64{10, 20}, 150, 25)
	assert.InDelta(t, 187.5, scale.Top, 1e-9)

	scale = NewScale(DefaultViewport, []float64{200, 20}, 150, 10)
	assert.InDelta(t, 220.0, scale.Top, 1e-9)

	scale = NewScale(DefaultViewport, nil, 0, 25)
	assert.Equal(t, 100.0, scale.Top)
}

// TestScaleMapping проверяет отображение на область графика.
func TestScaleMapping(t *testing.T) {
	scale := Scale{Viewport: DefaultViewport, Top: 100}

	assert.Equal(t, 50.0, scale.X(0, 7))
	assert.Equal(t, 760.0, scale.X(6, 7))
	assert.Equal(t, 405.0, scale.X(0, 1))
	assert.Equal(t, 260.0, scale.Y(0))
	assert.Equal(t, 20.0, scale.Y(100))
	assert.Equal(t, 140.0, scale.Y(50))
}

// TestBuildWeek проверяет раскладку недели трат относительно дневного лимита.
func TestBuildWeek(t *testing.T) {
	points := []Point{
		{Label: "Mon", Value: 45},
		{Label: "Tue", Value: 78},
		{Label: "Wed", Value: 32},
		{Label: "Thu", Value: 95},
		{Label: "Fri", Value: 42},
		{Label: "Sat", Value: 88},
		{Label: "Sun", Value: 55},
	}

	layout := Build(points, 70, Options{PadPercent: 15})
	require.Len(t, layout.Points, 7)
	assert.Len(t, layout.Segments, 12)
	assert.Len(t, layout.Areas, 12)
	assert.Len(t, layout.Ticks, 5)
	assert.Equal(t, 0.0, layout.Ticks[0].Value)
	assert.InDelta(t, layout.Top, layout.Ticks[4].Value, 1e-9)

	above := 0
	for i, segment := range layout.Segments {
		if segment.Above {
			above++
		}
		if i > 0 {
			assert.InDelta(t, layout.Segments[i-1].X2, segment.X1, 1e-9)
		}
	}
	assert.Equal(t, 6, above)

	for _, area := range layout.Areas {
		assert.Contains(t, area.Path, "M ")
		assert.Contains(t, area.Path, " Z")
	}
	assert.Greater(t, layout.ThresholdY, layout.Viewport.Padding.Top)
	assert.InDelta(t, 95*1.15, layout.Top, 1e-9)
}

// TestPolygonPathSkipsDuplicates проверяет схлопывание повторяющихся вершин.
func TestPolygonPathSkipsDuplicates(t *testing.T) {
	path := polygonPath([][2]float64{{0, 0}, {5, 10}, {5, 10}, {0, 10}})
	assert.Equal(t, "M 0 0 L 5 10 L 0 10 Z", path)
	assert.Equal(t, "", polygonPath(nil))
}

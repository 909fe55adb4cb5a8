// Package chart переводит ряды значений в координаты SVG и делит линию по порогу бюджета.
package chart

import (
	"math"
	"strconv"
	"strings"
)

const defaultTop = 100

type Padding struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

type Viewport struct {
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Padding Padding `json:"padding"`
}

// DefaultViewport размеры линейного графика дашборда.
var DefaultViewport = Viewport{
	Width:   800,
	Height:  300,
	Padding: Padding{Top: 20, Right: 40, Bottom: 40, Left: 50},
}

// Scale линейная шкала: значения [0, Top] на область графика внутри отступов.
type Scale struct {
	Viewport Viewport
	Top      float64
}

// NewScale строит шкалу, верх которой включает порог и максимум данных
// с запасом padPercent процентов.
func NewScale(viewport Viewport, values []float64, threshold, padPercent float64) Scale {
	maxValue := threshold
	for _, v := range values {
		maxValue = math.Max(maxValue, v)
	}

	top := maxValue * (1 + padPercent/100)
	if top <= 0 || math.IsNaN(top) || math.IsInf(top, 0) {
		top = defaultTop
	}

	return Scale{Viewport: viewport, Top: top}
}

// X возвращает абсциссу i-й из n равномерно распределенных точек.
func (s Scale) X(i, n int) float64 {
	width := s.Viewport.Width - s.Viewport.Padding.Left - s.Viewport.Padding.Right
	if n <= 1 {
		return s.Viewport.Padding.Left + width/2
	}
	return s.Viewport.Padding.Left + float64(i)/float64(n-1)*width
}

// Y возвращает ординату значения (ось направлена вниз).
func (s Scale) Y(value float64) float64 {
	height := s.Viewport.Height - s.Viewport.Padding.Top - s.Viewport.Padding.Bottom
	return s.Viewport.Padding.Top + (1-value/s.Top)*height
}

// Sample точка ряда: позиция по горизонтали и значение.
type Sample struct {
	X     float64
	Value float64
}

// Piece участок линии целиком по одну сторону порога.
// Значение ровно на пороге считается не выше порога.
type Piece struct {
	From  Sample
	To    Sample
	Above bool
}

// Crossing возвращает точку пересечения отрезка с порогом, если концы лежат по разные стороны.
func Crossing(a, b Sample, threshold float64) (float64, bool) {
	if (a.Value > threshold) == (b.Value > threshold) || a.X == b.X {
		return 0, false
	}

	slope := (b.Value - a.Value) / (b.X - a.X)
	return a.X + (threshold-a.Value)/slope, true
}

// Split делит отрезок в точке пересечения порога.
func Split(a, b Sample, threshold float64) []Piece {
	x, ok := Crossing(a, b, threshold)
	if !ok {
		return []Piece{{From: a, To: b, Above: a.Value > threshold}}
	}

	if x <= math.Min(a.X, b.X) || x >= math.Max(a.X, b.X) {
		// Один из концов лежит ровно на пороге, второй выше: весь отрезок выше.
		return []Piece{{From: a, To: b, Above: true}}
	}

	mid := Sample{X: x, Value: threshold}
	return []Piece{
		{From: a, To: mid, Above: a.Value > threshold},
		{From: mid, To: b, Above: b.Value > threshold},
	}
}

type Point struct {
	Label string
	Value float64
}

type Options struct {
	Viewport   Viewport
	PadPercent float64
	TickCount  int
}

type PlotPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Above bool    `json:"above"`
}

type Segment struct {
	X1    float64 `json:"x1"`
	Y1    float64 `json:"y1"`
	X2    float64 `json:"x2"`
	Y2    float64 `json:"y2"`
	Above bool    `json:"above"`
}

type Area struct {
	Path  string `json:"path"`
	Above bool   `json:"above"`
}

type Tick struct {
	Value float64 `json:"value"`
	Y     float64 `json:"y"`
}

type Layout struct {
	Viewport   Viewport    `json:"viewport"`
	Top        float64     `json:"top"`
	Threshold  float64     `json:"threshold"`
	ThresholdY float64     `json:"threshold_y"`
	Points     []PlotPoint `json:"points"`
	Segments   []Segment   `json:"segments"`
	Areas      []Area      `json:"areas"`
	Ticks      []Tick      `json:"ticks"`
}

// Build раскладывает ряд на координаты, отрезки по сторонам порога и заливки между линией и порогом.
func Build(points []Point, threshold float64, opts Options) Layout {
	if opts.Viewport.Width <= 0 || opts.Viewport.Height <= 0 {
		opts.Viewport = DefaultViewport
	}
	if opts.TickCount < 2 {
		opts.TickCount = 5
	}

	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.Value
	}

	scale := NewScale(opts.Viewport, values, threshold, opts.PadPercent)
	thresholdY := scale.Y(threshold)

	layout := Layout{
		Viewport:   opts.Viewport,
		Top:        scale.Top,
		Threshold:  threshold,
		ThresholdY: thresholdY,
		Points:     make([]PlotPoint, 0, len(points)),
		Segments:   make([]Segment, 0),
		Areas:      make([]Area, 0),
		Ticks:      Ticks(scale, opts.TickCount),
	}

	samples := make([]Sample, len(points))
	for i, p := range points {
		samples[i] = Sample{X: scale.X(i, len(points)), Value: p.Value}
		layout.Points = append(layout.Points, PlotPoint{
			Label: p.Label,
			Value: p.Value,
			X:     samples[i].X,
			Y:     scale.Y(p.Value),
			Above: p.Value > threshold,
		})
	}

	for i := 0; i+1 < len(samples); i++ {
		for _, piece := range Split(samples[i], samples[i+1], threshold) {
			x1, y1 := piece.From.X, scale.Y(piece.From.Value)
			x2, y2 := piece.To.X, scale.Y(piece.To.Value)

			layout.Segments = append(layout.Segments, Segment{X1: x1, Y1: y1, X2: x2, Y2: y2, Above: piece.Above})
			layout.Areas = append(layout.Areas, Area{
				Path:  polygonPath([][2]float64{{x1, y1}, {x2, y2}, {x2, thresholdY}, {x1, thresholdY}}),
				Above: piece.Above,
			})
		}
	}

	return layout
}

// Ticks возвращает count равномерных делений от 0 до верха шкалы.
func Ticks(scale Scale, count int) []Tick {
	if count < 2 {
		count = 2
	}

	ticks := make([]Tick, 0, count)
	for i := 0; i < count; i++ {
		value := scale.Top * float64(i) / float64(count-1)
		ticks = append(ticks, Tick{Value: value, Y: scale.Y(value)})
	}
	return ticks
}

// polygonPath строит замкнутый SVG-путь, пропуская повторяющиеся вершины.
func polygonPath(vertices [][2]float64) string {
	var b strings.Builder
	var prev [2]float64
	written := 0

	for _, v := range vertices {
		if written > 0 && v == prev {
			continue
		}
		if written == 0 {
			b.WriteString("M ")
		} else {
			b.WriteString(" L ")
		}
		b.WriteString(formatCoord(v[0]))
		b.WriteByte(' ')
		b.WriteString(formatCoord(v[1]))
		prev = v
		written++
	}

	if written > 0 {
		b.WriteString(" Z")
	}
	return b.String()
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}

package scope

import (
	"time"

	"github.com/chewxy/math32"

	"github.com/itohio/gobarscan/pkg/sample"
	"github.com/itohio/gobarscan/pkg/sensor"
)

const fullScale = float32(sensor.MaxValue)

// axes maps readings into plot coordinates.
type axes struct {
	yMin, yMax float32
	xMin, xMax time.Time
}

// plot is the drawable area inside the widget margins.
type plot struct {
	x, y, w, h float32
}

// X maps a timestamp to a horizontal position, clamped to the plot.
func (a axes) X(p plot, t time.Time) float32 {
	span := float32(a.xMax.Sub(a.xMin).Seconds())
	if span <= 0 {
		return p.x
	}
	f := float32(t.Sub(a.xMin).Seconds()) / span
	return p.x + clamp01(f)*p.w
}

// Y maps a level to a vertical position, clamped to the plot.
func (a axes) Y(p plot, level float32) float32 {
	span := a.yMax - a.yMin
	if span <= 0 {
		return p.y + p.h
	}
	f := (level - a.yMin) / span
	return p.y + p.h - clamp01(f)*p.h
}

func clamp01(f float32) float32 {
	return math32.Max(0, math32.Min(1, f))
}

// darkSpans returns the index ranges [start, end) of consecutive dark
// readings.
func darkSpans(samples []sample.Sample) [][2]int {
	var spans [][2]int
	start := -1
	for i := range samples {
		dark := samples[i].Color == sample.Dark
		switch {
		case dark && start < 0:
			start = i
		case !dark && start >= 0:
			spans = append(spans, [2]int{start, i})
			start = -1
		}
	}
	if start >= 0 {
		spans = append(spans, [2]int{start, len(samples)})
	}
	return spans
}

package scope

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/itohio/gobarscan/pkg/sample"
)

func TestAxes_Mapping(t *testing.T) {
	t0 := time.Unix(100, 0)
	a := axes{yMin: 0, yMax: 4000, xMin: t0, xMax: t0.Add(10 * time.Second)}
	p := plot{x: 10, y: 20, w: 100, h: 200}

	tests := []struct {
		name  string
		t     time.Time
		level float32
		wantX float32
		wantY float32
	}{
		{"origin", t0, 0, 10, 220},
		{"middle", t0.Add(5 * time.Second), 2000, 60, 120},
		{"top right", t0.Add(10 * time.Second), 4000, 110, 20},
		{"clamped", t0.Add(-time.Second), 5000, 10, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.wantX, a.X(p, tt.t), 1e-3)
			assert.InDelta(t, tt.wantY, a.Y(p, tt.level), 1e-3)
		})
	}
}

func TestAxes_Degenerate(t *testing.T) {
	t0 := time.Unix(100, 0)
	a := axes{xMin: t0, xMax: t0}
	p := plot{x: 5, y: 5, w: 50, h: 50}
	assert.Equal(t, float32(5), a.X(p, t0.Add(time.Second)))
	assert.Equal(t, float32(55), a.Y(p, 100))
}

func TestDarkSpans(t *testing.T) {
	colors := func(s string) []sample.Sample {
		out := make([]sample.Sample, len(s))
		for i, c := range s {
			if c == 'D' {
				out[i].Color = sample.Dark
			}
		}
		return out
	}

	tests := []struct {
		in   string
		want [][2]int
	}{
		{"", nil},
		{"LLL", nil},
		{"DDD", [][2]int{{0, 3}}},
		{"LDDLD", [][2]int{{1, 3}, {4, 5}}},
		{"DLLDDL", [][2]int{{0, 1}, {3, 5}}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, darkSpans(colors(tt.in)))
		})
	}
}

func TestFormatTime(t *testing.T) {
	assert.Equal(t, "-5.0s", formatTime(-5*time.Second))
	assert.Equal(t, "-0.50s", formatTime(-500*time.Millisecond))
	assert.Equal(t, "0.00s", formatTime(0))
}

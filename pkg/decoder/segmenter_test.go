package decoder

import (
	"testing"

	"github.com/itohio/gobarscan/pkg/sample"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegmenter_SameColorNoAction(t *testing.T) {
	clk := &SampleClock{}
	s := NewSegmenter(clk, DefaultUnitMicros)

	for range 10 {
		clk.Advance(5000)
		_, ok := s.Observe(sample.Light)
		assert.False(t, ok)
	}
	assert.Equal(t, Micros(0), s.Open().Start)
}

func TestSegmenter_FirstBlockMeasuredFromSessionStart(t *testing.T) {
	clk := &SampleClock{}
	clk.Set(1_000_000)
	s := NewSegmenter(clk, DefaultUnitMicros)
	require.Equal(t, Micros(1_000_000), s.SessionStart())

	clk.Advance(250_000)
	closed, ok := s.Observe(sample.Dark)
	require.True(t, ok)
	assert.Equal(t, sample.Light, closed.Color)
	assert.Equal(t, int64(25), closed.Units)
	assert.Equal(t, Micros(1_000_000), closed.Start)

	open := s.Open()
	assert.Equal(t, sample.Dark, open.Color)
	assert.Equal(t, Micros(1_250_000), open.Start)
}

func TestSegmenter_Transitions(t *testing.T) {
	clk := &SampleClock{}
	s := NewSegmenter(clk, DefaultUnitMicros)

	steps := []struct {
		advance Micros
		color   sample.Color
		closed  bool
		units   int64
	}{
		{advance: 40_000, color: sample.Dark, closed: true, units: 4},
		{advance: 60_000, color: sample.Dark, closed: false},
		{advance: 59_999, color: sample.Light, closed: true, units: 11}, // truncated
		{advance: 40_000, color: sample.Dark, closed: true, units: 4},
	}

	for i, st := range steps {
		clk.Advance(st.advance)
		b, ok := s.Observe(st.color)
		require.Equal(t, st.closed, ok, "step %d", i)
		if ok {
			assert.Equal(t, st.units, b.Units, "step %d", i)
		}
	}
}

func TestSegmenter_Restart(t *testing.T) {
	clk := &SampleClock{}
	s := NewSegmenter(clk, DefaultUnitMicros)

	clk.Advance(10_000)
	_, _ = s.Observe(sample.Dark)

	clk.Advance(500_000)
	s.Restart()
	assert.Equal(t, sample.Dark, s.Open().Color)
	assert.Equal(t, Micros(510_000), s.Open().Start)

	clk.Advance(30_000)
	b, ok := s.Observe(sample.Light)
	require.True(t, ok)
	assert.Equal(t, int64(3), b.Units)
}

func TestSegmenter_DefaultUnit(t *testing.T) {
	clk := &SampleClock{}
	s := NewSegmenter(clk, 0)

	clk.Advance(20_000)
	b, ok := s.Observe(sample.Dark)
	require.True(t, ok)
	assert.Equal(t, int64(2), b.Units)
}

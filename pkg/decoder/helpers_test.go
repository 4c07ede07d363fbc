package decoder

import (
	"testing"

	"github.com/itohio/gobarscan/pkg/code39"
	"github.com/itohio/gobarscan/pkg/sample"
	"github.com/stretchr/testify/require"
)

const (
	testInterval Micros = 50    // raw sample spacing
	testNarrow   Micros = 40000 // narrow element, 8 readings at the default window
	lightLevel          = 300
	darkLevel           = 3000
)

type segment struct {
	color  sample.Color
	micros Micros
}

// stripSegments lays out text as printed Code 39: light quiet zones on both
// sides and a narrow light gap between characters.
func stripSegments(t *testing.T, text string, narrow Micros, ratio int64) []segment {
	t.Helper()

	quiet := 10 * narrow
	segs := []segment{{sample.Light, quiet}}
	for i, c := range text {
		if i > 0 {
			segs = append(segs, segment{sample.Light, narrow})
		}
		p, ok := code39.Encode(c)
		require.True(t, ok, "cannot encode %q", c)
		for _, k := range p {
			d := narrow
			if k.Thick() {
				d = narrow * Micros(ratio)
			}
			color := sample.Light
			if k.Dark() {
				color = sample.Dark
			}
			segs = append(segs, segment{color, d})
		}
	}
	return append(segs, segment{sample.Light, quiet})
}

func feedSegments(d *Decoder, clk *SampleClock, segs []segment) {
	for _, s := range segs {
		level := uint16(lightLevel)
		if s.color == sample.Dark {
			level = darkLevel
		}
		for range s.micros / testInterval {
			clk.Advance(testInterval)
			d.Feed(level, false)
		}
	}
}

func drain(d *Decoder) []Signal {
	var out []Signal
	for {
		select {
		case s := <-d.Signals():
			out = append(out, s)
		default:
			return out
		}
	}
}

func chars(signals []Signal) string {
	var b []rune
	for _, s := range signals {
		if s.Expired {
			b = append(b, '!')
			continue
		}
		b = append(b, s.Char)
	}
	return string(b)
}

// fullRing builds a ring whose candidate window reproduces p with the given
// narrow and wide durations.
func fullRing(p code39.Pattern, narrow, wide int64) *BlockRing {
	r := &BlockRing{}
	r.Reset(Block{Color: sample.Light, Units: 50})
	for _, k := range p {
		b := Block{Color: sample.Light, Units: narrow}
		if k.Dark() {
			b.Color = sample.Dark
		}
		if k.Thick() {
			b.Units = wide
		}
		r.Append(b)
	}
	return r
}

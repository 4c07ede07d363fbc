package scanner

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/itohio/gobarscan/pkg/sample"
)

// DefaultCalibrationDepth is the number of recent accepted levels kept per
// color.
const DefaultCalibrationDepth = 512

// LevelStats summarizes the accepted levels of one color.
type LevelStats struct {
	N      int     `json:"n"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"`
}

// Calibration is a snapshot of the observed light and dark levels with
// suggested classifier thresholds. Suggestions are zero until both colors
// have been seen at least twice.
type Calibration struct {
	Light          LevelStats `json:"light"`
	Dark           LevelStats `json:"dark"`
	DarkThreshold  uint16     `json:"suggested_dark_threshold"`
	NoiseThreshold uint16     `json:"suggested_noise_threshold"`
}

// Calibrator collects accepted reading levels by color. It is not safe for
// concurrent use.
type Calibrator struct {
	depth int
	light levelRing
	dark  levelRing
}

// NewCalibrator creates a Calibrator keeping depth levels per color.
func NewCalibrator(depth int) *Calibrator {
	if depth <= 0 {
		depth = DefaultCalibrationDepth
	}
	return &Calibrator{
		depth: depth,
		light: newLevelRing(depth),
		dark:  newLevelRing(depth),
	}
}

// Add records a reading. Readings inside the noise band carry a stale level
// and are ignored.
func (c *Calibrator) Add(r sample.Reading) {
	if !r.Accepted {
		return
	}
	if r.Color == sample.Dark {
		c.dark.add(float64(r.Level))
		return
	}
	c.light.add(float64(r.Level))
}

// Reset forgets every level.
func (c *Calibrator) Reset() {
	c.light = newLevelRing(c.depth)
	c.dark = newLevelRing(c.depth)
}

// Snapshot computes the statistics.
func (c *Calibrator) Snapshot() Calibration {
	cal := Calibration{
		Light: c.light.stats(),
		Dark:  c.dark.stats(),
	}
	if cal.Light.N < 2 || cal.Dark.N < 2 || cal.Dark.Mean <= cal.Light.Mean {
		return cal
	}

	cal.DarkThreshold = uint16((cal.Light.Mean + cal.Dark.Mean) / 2)
	noise := 3 * math.Max(cal.Light.StdDev, cal.Dark.StdDev)
	cal.NoiseThreshold = uint16(math.Max(1, math.Ceil(noise)))
	return cal
}

type levelRing struct {
	values []float64
	next   int
	full   bool
}

func newLevelRing(n int) levelRing {
	return levelRing{values: make([]float64, n)}
}

func (r *levelRing) add(v float64) {
	r.values[r.next] = v
	r.next++
	if r.next == len(r.values) {
		r.next = 0
		r.full = true
	}
}

func (r *levelRing) stats() LevelStats {
	vals := r.values[:r.next]
	if r.full {
		vals = r.values
	}
	if len(vals) == 0 {
		return LevelStats{}
	}

	mean, std := stat.MeanStdDev(vals, nil)
	if len(vals) < 2 {
		std = 0
	}
	return LevelStats{N: len(vals), Mean: mean, StdDev: std}
}

package sample

const (
	// DefaultNoiseThreshold is the smallest change between consecutive
	// averages that is treated as a real change in surface.
	DefaultNoiseThreshold = 50
	// DefaultDarkThreshold is the level above which the surface is dark.
	DefaultDarkThreshold = 1000
)

// Classifier maps averaged levels to a surface color with hysteresis
// against the last accepted level.
type Classifier struct {
	noise uint16
	dark  uint16

	primed bool
	prev   uint16
	color  Color
}

// NewClassifier creates a Classifier with the given noise and dark thresholds.
func NewClassifier(noiseThreshold, darkThreshold uint16) Classifier {
	return Classifier{
		noise: noiseThreshold,
		dark:  darkThreshold,
	}
}

// Classify applies hysteresis to avg and returns the resulting Reading.
// auxDark is the optional digital line that forces dark when asserted.
func (c *Classifier) Classify(avg uint16, auxDark bool) Reading {
	if c.primed && absDiff(avg, c.prev) < c.noise {
		return Reading{Level: c.prev, Color: c.color, Accepted: false}
	}

	c.primed = true
	c.prev = avg
	if avg > c.dark || auxDark {
		c.color = Dark
	} else {
		c.color = Light
	}
	return Reading{Level: avg, Color: c.color, Accepted: true}
}

// Reset forgets the previous baseline.
func (c *Classifier) Reset() {
	c.primed = false
	c.prev = 0
	c.color = Light
}

// Baseline returns the last accepted level and whether one exists.
func (c *Classifier) Baseline() (uint16, bool) {
	return c.prev, c.primed
}

func absDiff(a, b uint16) uint16 {
	if a > b {
		return a - b
	}
	return b - a
}

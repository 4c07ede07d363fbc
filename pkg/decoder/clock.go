package decoder

import "time"

// Micros is a timestamp or duration in microseconds.
type Micros int64

// Clock supplies monotonic timestamps to the segmenter.
type Clock interface {
	Now() Micros
	Elapsed(from, to Micros) Micros
}

// MonotonicClock reports microseconds since it was created.
type MonotonicClock struct {
	start time.Time
}

// NewMonotonicClock creates a clock starting at zero now.
func NewMonotonicClock() *MonotonicClock {
	return &MonotonicClock{start: time.Now()}
}

// Now returns microseconds since the clock was created.
func (c *MonotonicClock) Now() Micros {
	return Micros(time.Since(c.start).Microseconds())
}

// Elapsed returns to - from.
func (c *MonotonicClock) Elapsed(from, to Micros) Micros {
	return to - from
}

// SampleClock reports the timestamp of the sample being processed. The
// caller sets it before each Feed so block timing follows the sampler's
// own timestamps rather than the host's scheduling.
type SampleClock struct {
	now Micros
}

// Now returns the last timestamp set.
func (c *SampleClock) Now() Micros {
	return c.now
}

// Elapsed returns to - from.
func (c *SampleClock) Elapsed(from, to Micros) Micros {
	return to - from
}

// Set moves the clock to t.
func (c *SampleClock) Set(t Micros) {
	c.now = t
}

// SetTime moves the clock to the wall time t.
func (c *SampleClock) SetTime(t time.Time) {
	c.now = Micros(t.UnixMicro())
}

// Advance moves the clock forward by d.
func (c *SampleClock) Advance(d Micros) {
	c.now += d
}

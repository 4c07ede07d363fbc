package decoder

import "github.com/itohio/gobarscan/pkg/sample"

// DefaultUnitMicros converts block durations to coarse units.
const DefaultUnitMicros Micros = 10000

// Segmenter tracks the block currently under the sensor and closes it on
// every color transition.
type Segmenter struct {
	clock Clock
	unit  Micros

	open    Block
	session Micros
}

// NewSegmenter creates a Segmenter. A non-positive unit falls back to
// DefaultUnitMicros.
func NewSegmenter(clock Clock, unit Micros) Segmenter {
	if unit <= 0 {
		unit = DefaultUnitMicros
	}
	s := Segmenter{clock: clock, unit: unit}
	s.Reset()
	return s
}

// Reset starts a new session over a light surface.
func (s *Segmenter) Reset() {
	now := s.clock.Now()
	s.session = now
	s.open = Block{Color: sample.Light, Start: now}
}

// Restart records a new session start without changing the open color.
// The open block is then measured from now.
func (s *Segmenter) Restart() {
	now := s.clock.Now()
	s.session = now
	s.open.Start = now
}

// Observe feeds the color of a new reading. On a transition it returns the
// block that just closed, with its duration filled in.
func (s *Segmenter) Observe(c sample.Color) (Block, bool) {
	if c == s.open.Color {
		return Block{}, false
	}

	now := s.clock.Now()
	closed := s.open
	closed.Units = int64(s.clock.Elapsed(closed.Start, now) / s.unit)
	s.open = Block{Color: c, Start: now}
	return closed, true
}

// Open returns the block currently under the sensor.
func (s *Segmenter) Open() Block {
	return s.open
}

// SessionStart returns the timestamp of the last Reset or Restart.
func (s *Segmenter) SessionStart() Micros {
	return s.session
}

// Package decoder turns a stream of raw photosensor values into Code 39
// characters.
//
// Decoder.Feed runs the whole producer pipeline synchronously: averaging,
// hysteresis, segmentation, the block ring and pattern matching. It does not
// block, log or allocate, so it can run from a sampling loop or an
// interrupt-driven goroutine. Matched characters leave through a bounded
// channel read by a single consumer.
package decoder

import (
	"sync/atomic"

	"github.com/itohio/gobarscan/pkg/sample"
)

const (
	// DefaultStaleReadings is the number of readings without a transition
	// after which a partial scan is discarded.
	DefaultStaleReadings = 400
	// DefaultQueueSize is the capacity of the signal channel.
	DefaultQueueSize = 16
)

// Options configures a Decoder.
type Options struct {
	WindowSize     int    // raw values per reading
	NoiseThreshold uint16 // hysteresis band
	DarkThreshold  uint16 // level above which the surface is dark
	UnitMicros     Micros // microseconds per duration unit
	StaleReadings  int    // 0 disables expiry
	QueueSize      int
}

// DefaultOptions returns the stock tuning for the reflective sensor.
func DefaultOptions() Options {
	return Options{
		WindowSize:     sample.DefaultWindowSize,
		NoiseThreshold: sample.DefaultNoiseThreshold,
		DarkThreshold:  sample.DefaultDarkThreshold,
		UnitMicros:     DefaultUnitMicros,
		StaleReadings:  DefaultStaleReadings,
		QueueSize:      DefaultQueueSize,
	}
}

// Signal is sent to the assembler for every matched character, or with
// Expired set when a stale partial scan was discarded.
type Signal struct {
	Char    rune
	Expired bool
	At      Micros
}

// Stats are running counters of the producer pipeline.
type Stats struct {
	Matched uint64
	Expired uint64
	Dropped uint64
}

// Decoder owns every piece of producer-side state.
type Decoder struct {
	clock Clock
	opts  Options

	averager   sample.Averager
	classifier sample.Classifier
	segmenter  Segmenter
	ring       BlockRing

	idle    int
	pending bool

	out         chan Signal
	lastMatched atomic.Int32
	matched     atomic.Uint64
	expired     atomic.Uint64
	dropped     atomic.Uint64
}

// New creates a Decoder that timestamps transitions with clock.
func New(clock Clock, opts Options) *Decoder {
	if opts.QueueSize <= 0 {
		opts.QueueSize = DefaultQueueSize
	}
	if opts.UnitMicros <= 0 {
		opts.UnitMicros = DefaultUnitMicros
	}

	d := &Decoder{
		clock:      clock,
		opts:       opts,
		averager:   sample.NewAverager(opts.WindowSize),
		classifier: sample.NewClassifier(opts.NoiseThreshold, opts.DarkThreshold),
		segmenter:  NewSegmenter(clock, opts.UnitMicros),
		out:        make(chan Signal, opts.QueueSize),
	}
	d.ring.Reset(Block{Color: sample.Light, Start: d.segmenter.SessionStart()})
	return d
}

// Signals returns the channel carrying matched characters.
func (d *Decoder) Signals() <-chan Signal {
	return d.out
}

// Close closes the signal channel. It must be called from the producer
// goroutine once no more Feed calls will be made.
func (d *Decoder) Close() {
	close(d.out)
}

// Feed processes one raw value. auxDark is the optional digital line. When
// the value completes an averaging window the classified reading is returned.
func (d *Decoder) Feed(v uint16, auxDark bool) (sample.Reading, bool) {
	avg, ok := d.averager.Add(v)
	if !ok {
		return sample.Reading{}, false
	}

	r := d.classifier.Classify(avg, auxDark)
	closed, changed := d.segmenter.Observe(r.Color)
	if !changed {
		d.tick()
		return r, true
	}

	d.idle = 0
	d.ring.Append(closed)
	if c, ok := Match(&d.ring); ok {
		d.segmenter.Restart()
		d.lastMatched.Store(int32(c))
		d.matched.Add(1)
		d.pending = true
		d.publish(Signal{Char: c, At: d.clock.Now()})
	}
	return r, true
}

// tick counts readings without a transition and discards a stale scan.
func (d *Decoder) tick() {
	if d.opts.StaleReadings <= 0 {
		return
	}
	d.idle++
	if d.idle < d.opts.StaleReadings {
		return
	}
	d.idle = 0
	if d.ring.Len() <= 1 && !d.pending {
		return
	}

	d.ring.Flush()
	d.segmenter.Restart()
	d.pending = false
	d.expired.Add(1)
	d.publish(Signal{Expired: true, At: d.clock.Now()})
}

func (d *Decoder) publish(s Signal) {
	select {
	case d.out <- s:
	default:
		d.dropped.Add(1)
	}
}

// Reset re-arms the pipeline as if freshly constructed. Counters and the
// last matched character are kept.
func (d *Decoder) Reset() {
	d.averager.Reset()
	d.classifier.Reset()
	d.segmenter.Reset()
	d.ring.Reset(Block{Color: sample.Light, Start: d.segmenter.SessionStart()})
	d.idle = 0
	d.pending = false
}

// LastMatched returns the most recently matched character. Safe to call
// from any goroutine.
func (d *Decoder) LastMatched() (rune, bool) {
	c := rune(d.lastMatched.Load())
	return c, c != 0
}

// Stats returns a snapshot of the running counters. Safe to call from any
// goroutine.
func (d *Decoder) Stats() Stats {
	return Stats{
		Matched: d.matched.Load(),
		Expired: d.expired.Load(),
		Dropped: d.dropped.Load(),
	}
}

// Options returns the effective options.
func (d *Decoder) Options() Options {
	return d.opts
}

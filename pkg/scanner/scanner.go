// Package scanner runs the decoding chain over a stream of raw samples:
// the producer pipeline on the calling goroutine and the barcode assembler
// on its own, joined by the decoder's signal channel.
package scanner

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/itohio/gobarscan/pkg/barcode"
	"github.com/itohio/gobarscan/pkg/config"
	"github.com/itohio/gobarscan/pkg/decoder"
	"github.com/itohio/gobarscan/pkg/sample"
	"github.com/itohio/gobarscan/pkg/sensor"
)

var _ barcode.Consumer = (*Scanner)(nil)

// Update is passed to OnUpdate callbacks.
type Update struct {
	Samples []sample.Sample // readings within the display window, oldest first
	Last    barcode.Decode
	HasLast bool
	Stats   decoder.Stats
}

// Scanner owns the reading history shown by the monitor and the most recent
// barcode. A Scanner may run several chains one after another.
type Scanner struct {
	cfg *config.Config
	log *zap.SugaredLogger

	// Reading history, removed by timestamp.
	samples []sample.Sample
	calib   *Calibrator
	mu      sync.RWMutex

	current atomic.Pointer[decoder.Decoder]
	latest  atomic.Pointer[barcode.Decode]

	callbacks []func(Update)
	handlers  []func(barcode.Decode)
	cbMu      sync.RWMutex

	windowDuration time.Duration

	// Set when the input channel closes, prevents further callbacks.
	shutdown bool
}

// New creates a Scanner.
func New(cfg *config.Config, log *zap.SugaredLogger) *Scanner {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Scanner{
		cfg:            cfg,
		log:            log,
		samples:        make([]sample.Sample, 0),
		calib:          NewCalibrator(DefaultCalibrationDepth),
		windowDuration: time.Duration(cfg.Display.WindowSeconds * float64(time.Second)),
	}
}

// ProcessSamples decodes input until it closes or ctx is done. It blocks
// until the assembler has consumed every signal.
func (s *Scanner) ProcessSamples(ctx context.Context, input <-chan sensor.RawSample) {
	s.mu.Lock()
	s.windowDuration = time.Duration(s.cfg.Display.WindowSeconds * float64(time.Second))
	s.mu.Unlock()

	clock := &decoder.SampleClock{}
	dec := decoder.New(clock, s.cfg.Decoder.Options())
	s.current.Store(dec)

	asm := barcode.NewAssembler(dec.Signals(), s.log.Named("assembler"))
	asm.OnDecode(s.handleDecode)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		// Run returns nil once the decoder closes its channel.
		_ = asm.Run(context.Background())
	}()

	s.log.Infow("scanner started", "window", dec.Options().WindowSize)

	func() {
		for {
			select {
			case <-ctx.Done():
				return
			case raw, ok := <-input:
				if !ok {
					return
				}
				clock.SetTime(raw.Timestamp)
				if r, ok := dec.Feed(raw.Value, raw.Dark); ok {
					s.processReading(sample.Sample{Timestamp: raw.Timestamp, Reading: r})
				}
			}
		}
	}()

	dec.Close()
	wg.Wait()

	s.mu.Lock()
	s.shutdown = true
	s.mu.Unlock()

	s.log.Infow("scanner stopped", "stats", dec.Stats())
}

// processReading appends a reading to the history and notifies callbacks.
func (s *Scanner) processReading(r sample.Sample) {
	s.mu.Lock()
	s.samples = append(s.samples, r)

	cutoff := r.Timestamp.Add(-s.windowDuration)
	cutoffIndex := 0
	for i := range s.samples {
		if s.samples[i].Timestamp.After(cutoff) {
			cutoffIndex = i
			break
		}
	}
	if cutoffIndex > 0 {
		s.samples = s.samples[cutoffIndex:]
	}

	s.calib.Add(r.Reading)
	shouldNotify := !s.shutdown
	s.mu.Unlock()

	if shouldNotify {
		s.notifyCallbacks()
	}
}

func (s *Scanner) handleDecode(d barcode.Decode) {
	s.latest.Store(&d)

	s.cbMu.RLock()
	handlers := make([]func(barcode.Decode), len(s.handlers))
	copy(handlers, s.handlers)
	s.cbMu.RUnlock()

	for _, h := range handlers {
		if h != nil {
			h(d)
		}
	}
}

// Samples returns a copy of the reading history.
func (s *Scanner) Samples() []sample.Sample {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]sample.Sample, len(s.samples))
	copy(result, s.samples)
	return result
}

// Calibration returns the level statistics gathered so far.
func (s *Scanner) Calibration() Calibration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.calib.Snapshot()
}

// LastDecoded returns the payload of the most recent barcode.
func (s *Scanner) LastDecoded() (rune, bool) {
	d := s.latest.Load()
	if d == nil {
		return 0, false
	}
	return d.Payload, true
}

// Last returns the most recent barcode.
func (s *Scanner) Last() (barcode.Decode, bool) {
	d := s.latest.Load()
	if d == nil {
		return barcode.Decode{}, false
	}
	return *d, true
}

// LastMatched returns the most recent character matched by the running
// chain, framed or not.
func (s *Scanner) LastMatched() (rune, bool) {
	dec := s.current.Load()
	if dec == nil {
		return 0, false
	}
	return dec.LastMatched()
}

// Stats returns the counters of the running chain.
func (s *Scanner) Stats() decoder.Stats {
	dec := s.current.Load()
	if dec == nil {
		return decoder.Stats{}
	}
	return dec.Stats()
}

// OnUpdate registers a callback invoked after every reading.
// The callback should copy data quickly and return as fast as possible.
func (s *Scanner) OnUpdate(callback func(Update)) {
	s.cbMu.Lock()
	defer s.cbMu.Unlock()
	s.callbacks = append(s.callbacks, callback)
}

// OnDecode registers a handler invoked for every assembled barcode.
func (s *Scanner) OnDecode(handler func(barcode.Decode)) {
	s.cbMu.Lock()
	defer s.cbMu.Unlock()
	s.handlers = append(s.handlers, handler)
}

// ResetShutdown re-enables callbacks and clears the history before a new
// chain is started.
func (s *Scanner) ResetShutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shutdown = false
	s.samples = s.samples[:0]
	s.calib.Reset()
}

// notifyCallbacks invokes all registered callbacks with a copy of the
// current state.
func (s *Scanner) notifyCallbacks() {
	s.cbMu.RLock()
	callbacks := make([]func(Update), len(s.callbacks))
	copy(callbacks, s.callbacks)
	s.cbMu.RUnlock()

	if len(callbacks) == 0 {
		return
	}

	u := Update{Samples: s.Samples(), Stats: s.Stats()}
	u.Last, u.HasLast = s.Last()

	for _, cb := range callbacks {
		if cb != nil {
			cb(u)
		}
	}
}

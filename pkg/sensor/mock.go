package sensor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/itohio/gobarscan/pkg/config"
)

// Mock replays a synthesized strip in a loop, as if the same barcode kept
// passing under the sensor.
type Mock struct {
	cfg *config.MockConfig
	log *zap.SugaredLogger

	samples   chan RawSample
	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
	connected bool

	strip  []RawSample
	cursor int
	next   time.Time
	passes int
}

// NewMock creates a simulated sensor. A nil cfg uses the default mock
// configuration.
func NewMock(cfg *config.MockConfig, log *zap.SugaredLogger) *Mock {
	if cfg == nil {
		def := config.Default().Mock
		cfg = &def
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Mock{
		cfg:     cfg,
		log:     log.With("device", "mock"),
		samples: make(chan RawSample, DefaultBufferSize),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Connect synthesizes the strip and starts streaming it.
func (m *Mock) Connect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.connected {
		return ErrAlreadyConnected
	}

	strip, err := Synthesize(m.cfg.Text, ParamsFromConfig(m.cfg))
	if err != nil {
		return fmt.Errorf("failed to synthesize strip %q: %w", m.cfg.Text, err)
	}
	if len(strip) == 0 {
		return fmt.Errorf("strip %q has no samples", m.cfg.Text)
	}

	m.strip = strip
	m.cursor = 0
	m.next = time.Now()
	m.connected = true
	m.log.Infow("connected", "text", m.cfg.Text, "samples", len(strip))

	go m.generateSamples()

	return nil
}

// Close stops the simulation and closes the samples channel.
func (m *Mock) Close() error {
	if !m.IsConnected() {
		return nil
	}

	// The generator may be blocked on a full channel while holding the
	// read lock.
	m.cancel()

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected {
		return nil
	}

	m.connected = false
	close(m.samples)
	m.log.Infow("disconnected", "passes", m.passes)

	return nil
}

// Samples returns the channel for reading samples.
func (m *Mock) Samples() <-chan RawSample {
	return m.samples
}

// IsConnected returns whether the device is currently connected.
func (m *Mock) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected
}

// generateSamples emits one batch per BatchPeriod, covering the same span
// of strip time.
func (m *Mock) generateSamples() {
	period := m.cfg.BatchPeriod
	if period <= 0 {
		period = 10 * time.Millisecond
	}
	batch := max(1, int(period/m.cfg.SampleInterval))

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			if !m.sendBatch(batch) {
				return
			}
		}
	}
}

// sendBatch sends n samples. It blocks on a full channel so the strip timing
// stays intact, and returns false once the device is closed.
func (m *Mock) sendBatch(n int) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for range n {
		if m.ctx.Err() != nil {
			return false
		}
		s := m.nextSample()
		select {
		case m.samples <- s:
		case <-m.ctx.Done():
			return false
		}
	}
	return true
}

// nextSample restamps the next strip sample onto the running timeline.
func (m *Mock) nextSample() RawSample {
	s := m.strip[m.cursor]
	s.Timestamp = m.next
	m.next = m.next.Add(m.cfg.SampleInterval)

	m.cursor++
	if m.cursor == len(m.strip) {
		m.cursor = 0
		m.passes++
	}
	return s
}

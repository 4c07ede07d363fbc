// Package barcode assembles matched characters into framed barcodes and
// exposes the most recent one to consumers.
package barcode

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/itohio/gobarscan/pkg/decoder"
)

var _ Consumer = (*Assembler)(nil)

// Decode is one assembled barcode.
type Decode struct {
	ID      string    `json:"id"`
	Payload rune      `json:"-"`
	Text    string    `json:"payload"`
	Frame   string    `json:"frame"`
	At      time.Time `json:"at"`
}

// Consumer reads the latest assembled barcode without blocking.
type Consumer interface {
	LastDecoded() (rune, bool)
	Last() (Decode, bool)
}

// Assembler reads decoder signals and recognizes "*X*" frames.
// Run must be the only reader of the signal channel.
type Assembler struct {
	signals <-chan decoder.Signal
	log     *zap.SugaredLogger
	now     func() time.Time

	window Window
	latest atomic.Pointer[Decode]
	frames atomic.Uint64

	handlers []func(Decode)
	hMu      sync.RWMutex
}

// NewAssembler creates an Assembler over signals.
func NewAssembler(signals <-chan decoder.Signal, log *zap.SugaredLogger) *Assembler {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Assembler{
		signals: signals,
		log:     log,
		now:     time.Now,
	}
}

// OnDecode registers a handler called from the Run goroutine for every
// assembled barcode. Handlers should return quickly.
func (a *Assembler) OnDecode(h func(Decode)) {
	a.hMu.Lock()
	defer a.hMu.Unlock()
	a.handlers = append(a.handlers, h)
}

// Run consumes signals until ctx is done or the channel is closed.
func (a *Assembler) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case s, ok := <-a.signals:
			if !ok {
				return nil
			}
			a.handle(s)
		}
	}
}

func (a *Assembler) handle(s decoder.Signal) {
	if s.Expired {
		if a.window != (Window{}) {
			a.log.Debugw("stale scan discarded", "window", a.window.String())
		}
		a.window.Clear()
		return
	}

	a.window.Push(s.Char)
	a.log.Debugw("character", "char", string(s.Char), "window", a.window.String())
	if !a.window.Valid() {
		return
	}

	d := Decode{
		ID:      uuid.NewString(),
		Payload: a.window[1],
		Text:    string(a.window[1]),
		Frame:   string(a.window[:]),
		At:      a.now(),
	}
	a.window.Clear()
	a.latest.Store(&d)
	a.frames.Add(1)
	a.log.Infow("barcode decoded", "payload", d.Text, "id", d.ID)

	a.hMu.RLock()
	handlers := make([]func(Decode), len(a.handlers))
	copy(handlers, a.handlers)
	a.hMu.RUnlock()

	for _, h := range handlers {
		if h != nil {
			h(d)
		}
	}
}

// LastDecoded returns the payload of the most recent barcode.
func (a *Assembler) LastDecoded() (rune, bool) {
	d := a.latest.Load()
	if d == nil {
		return 0, false
	}
	return d.Payload, true
}

// Last returns the most recent barcode.
func (a *Assembler) Last() (Decode, bool) {
	d := a.latest.Load()
	if d == nil {
		return Decode{}, false
	}
	return *d, true
}

// Frames returns the number of barcodes assembled so far.
func (a *Assembler) Frames() uint64 {
	return a.frames.Load()
}

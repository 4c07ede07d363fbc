// Package sensor provides the sources of raw photosensor samples: the
// serial link to the sampler firmware and a simulated strip.
package sensor

import (
	"errors"
	"time"
)

const (
	// DefaultBaudRate matches the sampler firmware.
	DefaultBaudRate = 921600
	// DefaultBufferSize is the default size for the samples channel buffer.
	DefaultBufferSize = 4096
	// MaxValue is the full scale of the 12-bit ADC.
	MaxValue = 4095
)

var (
	ErrAlreadyConnected = errors.New("already connected")
	ErrUnencodable      = errors.New("character cannot be encoded")
)

// RawSample is one photosensor conversion.
type RawSample struct {
	Timestamp time.Time
	Value     uint16 // 12-bit ADC reading (0-4095), higher is darker
	Dark      bool   // optional digital comparator line
}

// Device is a source of raw samples (real or simulated).
type Device interface {
	Connect() error
	Close() error
	Samples() <-chan RawSample
	IsConnected() bool
}

var (
	_ Device = (*Serial)(nil)
	_ Device = (*Mock)(nil)
)

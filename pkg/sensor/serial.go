package sensor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
	"go.uber.org/zap"
)

// Port describes a serial port.
type Port struct {
	Name        string
	Description string
}

// Serial reads raw samples from the sampler firmware.
type Serial struct {
	port     string
	baudRate int
	bufSize  int
	log      *zap.SugaredLogger

	conn      serial.Port
	samples   chan RawSample
	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
	connected bool
	dropped   int
}

// NewSerial creates a serial device. Zero baud rate or buffer size use the
// defaults.
func NewSerial(port string, baudRate, bufSize int, log *zap.SugaredLogger) *Serial {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	if bufSize == 0 {
		bufSize = DefaultBufferSize
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Serial{
		port:     port,
		baudRate: baudRate,
		bufSize:  bufSize,
		log:      log.With("port", port),
		samples:  make(chan RawSample, bufSize),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Ports lists the available serial ports. USB ports carry their product
// name and VID:PID in the description.
func Ports() ([]Port, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}

	result := make([]Port, 0, len(details))
	for _, d := range details {
		desc := d.Name
		if d.IsUSB {
			desc = fmt.Sprintf("%s (%s:%s %s)", d.Name, d.VID, d.PID, d.Product)
		}
		result = append(result, Port{Name: d.Name, Description: desc})
	}
	return result, nil
}

// Connect opens the port and starts reading samples.
func (d *Serial) Connect() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.connected {
		return ErrAlreadyConnected
	}

	port, err := serial.Open(d.port, &serial.Mode{BaudRate: d.baudRate})
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", d.port, err)
	}

	d.conn = port
	d.connected = true
	d.log.Infow("connected", "baud", d.baudRate)

	go d.readSamples(port)

	return nil
}

// Close stops reading and closes the samples channel.
func (d *Serial) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.connected {
		return nil
	}

	d.cancel()

	if d.conn != nil {
		if err := d.conn.Close(); err != nil {
			d.log.Warnw("error closing serial port", "error", err)
		}
		d.conn = nil
	}

	d.connected = false
	close(d.samples)
	d.log.Infow("disconnected", "dropped", d.dropped)

	return nil
}

// Samples returns the channel for reading samples.
func (d *Serial) Samples() <-chan RawSample {
	return d.samples
}

// IsConnected returns whether the device is currently connected.
func (d *Serial) IsConnected() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.connected
}

func (d *Serial) readSamples(r io.Reader) {
	defer func() {
		if rec := recover(); rec != nil {
			d.log.Errorw("panic in reader", "panic", rec)
		}
	}()

	if err := d.readLines(r); err != nil {
		d.log.Warnw("reader stopped", "error", err)
	}
}

// readLines parses lines from r until EOF, read error or cancellation.
// Sends happen under the read lock so Close cannot close the channel
// mid-send.
func (d *Serial) readLines(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		s, err := parseLine(line)
		if err != nil {
			d.log.Debugw("dropping line", "line", line, "error", err)
			continue
		}

		d.mu.RLock()
		if d.ctx.Err() != nil {
			d.mu.RUnlock()
			return nil
		}
		select {
		case d.samples <- s:
		default:
			d.dropped++
			if d.dropped%1000 == 1 {
				d.log.Warnw("samples channel full, dropping", "dropped", d.dropped)
			}
		}
		d.mu.RUnlock()
	}

	err := scanner.Err()
	if err == nil || errors.Is(err, io.EOF) || d.ctx.Err() != nil {
		return nil
	}
	return fmt.Errorf("error reading from serial port: %w", err)
}

// parseLine parses one firmware line.
// Format: unix_micros,value,digital
// Example: 1234567890123,2048,1
func parseLine(line string) (RawSample, error) {
	parts := strings.Split(line, ",")
	if len(parts) != 3 {
		return RawSample{}, fmt.Errorf("invalid line format: expected 3 comma-separated values, got %d", len(parts))
	}

	micros, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return RawSample{}, fmt.Errorf("invalid timestamp: %w", err)
	}

	value, err := strconv.ParseUint(parts[1], 10, 16)
	if err != nil {
		return RawSample{}, fmt.Errorf("invalid value: %w", err)
	}
	if value > MaxValue {
		return RawSample{}, fmt.Errorf("value out of range: %d (max %d)", value, MaxValue)
	}

	var dark bool
	switch parts[2] {
	case "0":
	case "1":
		dark = true
	default:
		return RawSample{}, fmt.Errorf("invalid digital state %q", parts[2])
	}

	return RawSample{
		Timestamp: time.UnixMicro(micros),
		Value:     uint16(value),
		Dark:      dark,
	}, nil
}

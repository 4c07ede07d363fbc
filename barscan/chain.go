package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/itohio/gobarscan/pkg/config"
	"github.com/itohio/gobarscan/pkg/scanner"
	"github.com/itohio/gobarscan/pkg/sensor"
)

// chain tracks a running device and scanner for graceful shutdown.
type chain struct {
	device sensor.Device
	cancel context.CancelFunc
	done   chan struct{} // closed when the scanner goroutine exits
}

func newDevice(cfg *config.Config, useMock bool, logger *zap.SugaredLogger) sensor.Device {
	if useMock {
		return sensor.NewMock(&cfg.Mock, logger.Named("mock"))
	}
	return sensor.NewSerial(cfg.Serial.Port, cfg.Serial.BaudRate, cfg.Serial.BufferSize, logger.Named("serial"))
}

// startChain connects the device and starts decoding its samples.
func startChain(cfg *config.Config, useMock bool, sc *scanner.Scanner, logger *zap.SugaredLogger) (*chain, error) {
	device := newDevice(cfg, useMock, logger)
	if err := device.Connect(); err != nil {
		if useMock {
			return nil, fmt.Errorf("failed to start simulated strip: %w", err)
		}
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Serial.Port, err)
	}

	sc.ResetShutdown()

	ctx, cancel := context.WithCancel(context.Background())
	c := &chain{
		device: device,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go func() {
		defer close(c.done)
		sc.ProcessSamples(ctx, device.Samples())
	}()

	return c, nil
}

// Close closes the device, which closes its samples channel, and waits for
// the scanner to drain.
func (c *chain) Close() {
	if c == nil {
		return
	}
	if err := c.device.Close(); err != nil {
		c.cancel()
	}
	<-c.done
	c.cancel()
}

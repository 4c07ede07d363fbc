// Package log holds the process-wide zap logger.
package log

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

var (
	mu    sync.RWMutex
	sugar *zap.SugaredLogger

	fallbackOnce sync.Once
	fallback     *zap.SugaredLogger
)

// Init builds the logger. Debug selects the development encoder and level.
func Init(debug bool) error {
	var (
		l   *zap.Logger
		err error
	)
	if debug {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		return fmt.Errorf("can't initialize zap logger: %w", err)
	}

	mu.Lock()
	sugar = l.Sugar()
	mu.Unlock()
	return nil
}

// GetSugaredLogger returns the process logger, falling back to a production
// logger when Init was never called.
func GetSugaredLogger() *zap.SugaredLogger {
	mu.RLock()
	s := sugar
	mu.RUnlock()
	if s != nil {
		return s
	}

	fallbackOnce.Do(func() {
		fallback = newFallback(zap.NewProduction).Sugar()
	})
	return fallback
}

// newFallback builds a logger with build, or a no-op logger if that fails.
func newFallback(build func(...zap.Option) (*zap.Logger, error)) *zap.Logger {
	l, err := build()
	if err != nil || l == nil {
		return zap.NewNop()
	}
	return l
}

// Named returns a child logger for a component.
func Named(name string) *zap.SugaredLogger {
	return GetSugaredLogger().Named(name)
}

// Sync flushes buffered entries.
func Sync() {
	_ = GetSugaredLogger().Sync()
}

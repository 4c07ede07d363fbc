package main

import (
	"time"

	"fyne.io/fyne/v2"

	"github.com/itohio/gobarscan/pkg/scanner"
)

// updateInterval throttles scope redraws to ~60 FPS.
const updateInterval = 16 * time.Millisecond

// updateScope forwards a scanner update to the scope widget on the main
// thread, dropping updates that arrive faster than updateInterval.
func updateScope(state *appState, u scanner.Update) {
	state.updateMu.Lock()
	now := time.Now()
	if now.Sub(state.lastUpdateTime) < updateInterval {
		state.updateMu.Unlock()
		return
	}
	state.lastUpdateTime = now
	state.updateMu.Unlock()

	fyne.Do(func() {
		state.scopeWidget.UpdateData(u.Samples, u.Last, u.HasLast)
	})
}

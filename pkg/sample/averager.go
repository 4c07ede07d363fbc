package sample

// DefaultWindowSize is the number of raw values averaged into one Reading.
const DefaultWindowSize = 100

// MaxWindowSize keeps the uint32 sum from overflowing at any uint16 value.
const MaxWindowSize = 65535

// Averager accumulates raw sensor values into a running sum and emits the
// integer mean once per fixed window.
type Averager struct {
	window uint32
	sum    uint32
	count  uint32
}

// NewAverager creates an Averager. A non-positive window disables averaging;
// windows above MaxWindowSize are clamped.
func NewAverager(window int) Averager {
	if window <= 0 {
		window = 1
	}
	if window > MaxWindowSize {
		window = MaxWindowSize
	}
	return Averager{window: uint32(window)}
}

// Add accumulates v. When the window is complete it returns the mean and
// true, and starts the next window from zero.
func (a *Averager) Add(v uint16) (uint16, bool) {
	a.sum += uint32(v)
	a.count++
	if a.count < a.window {
		return 0, false
	}

	avg := uint16(a.sum / a.count)
	a.sum = 0
	a.count = 0
	return avg, true
}

// Reset drops a partially accumulated window.
func (a *Averager) Reset() {
	a.sum = 0
	a.count = 0
}

// Window returns the configured window size.
func (a *Averager) Window() int {
	return int(a.window)
}

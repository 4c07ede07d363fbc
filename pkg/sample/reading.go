// Package sample turns raw photosensor values into denoised, two-level
// surface readings.
package sample

import "time"

// Color is the binary surface color under the sensor.
type Color uint8

const (
	Light Color = iota
	Dark
)

func (c Color) String() string {
	if c == Dark {
		return "dark"
	}
	return "light"
}

// Reading is one averaged intensity value with its derived color.
// Accepted is false when the value was treated as noise and the previous
// baseline was kept.
type Reading struct {
	Level    uint16
	Color    Color
	Accepted bool
}

// Sample is a Reading stamped with the time it was produced. The host keeps
// a window of these for display and calibration.
type Sample struct {
	Timestamp time.Time
	Reading
}

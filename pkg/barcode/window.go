package barcode

import "github.com/itohio/gobarscan/pkg/code39"

// Window is the three most recent matched characters, oldest first.
type Window [3]rune

// Push shifts c in from the right, evicting the oldest character.
func (w *Window) Push(c rune) {
	w[0], w[1], w[2] = w[1], w[2], c
}

// Valid reports whether the window holds a complete frame: a payload
// character between two sentinels.
func (w Window) Valid() bool {
	return w[0] == code39.Sentinel &&
		w[2] == code39.Sentinel &&
		w[1] != 0 && w[1] != code39.Sentinel
}

// Clear empties the window.
func (w *Window) Clear() {
	*w = Window{}
}

func (w Window) String() string {
	b := make([]rune, 0, len(w))
	for _, c := range w {
		if c == 0 {
			c = '_'
		}
		b = append(b, c)
	}
	return string(b)
}

// Package code39 holds the Code 39 element kinds and the character table
// used to match a window of nine classified bars and spaces.
package code39

import "fmt"

// Elements is the number of bars and spaces in one Code 39 character.
const Elements = 9

// Sentinel is the start/stop character framing every scan.
const Sentinel = '*'

// Kind is the classification of a single element.
type Kind uint8

const (
	Unclassified Kind = iota
	ThickDark
	ThinDark
	ThickLight
	ThinLight
)

// Digit renders a classified kind as '0'..'3'. Unclassified renders as '?'.
func (k Kind) Digit() byte {
	if k == Unclassified || k > ThinLight {
		return '?'
	}
	return '0' + byte(k-ThickDark)
}

// Dark reports whether the kind is a bar.
func (k Kind) Dark() bool {
	return k == ThickDark || k == ThinDark
}

// Thick reports whether the kind is a wide element.
func (k Kind) Thick() bool {
	return k == ThickDark || k == ThickLight
}

func (k Kind) String() string {
	switch k {
	case ThickDark:
		return "thick-dark"
	case ThinDark:
		return "thin-dark"
	case ThickLight:
		return "thick-light"
	case ThinLight:
		return "thin-light"
	default:
		return "unclassified"
	}
}

// KindFor combines thickness and color into a Kind.
func KindFor(dark, thick bool) Kind {
	switch {
	case dark && thick:
		return ThickDark
	case dark:
		return ThinDark
	case thick:
		return ThickLight
	default:
		return ThinLight
	}
}

// Pattern is the ordered sequence of nine element kinds of one character.
type Pattern [Elements]Kind

// String renders the pattern as nine digits, e.g. "121303031".
func (p Pattern) String() string {
	var b [Elements]byte
	for i, k := range p {
		b[i] = k.Digit()
	}
	return string(b[:])
}

// ParsePattern parses a nine-digit pattern string.
func ParsePattern(s string) (Pattern, error) {
	var p Pattern
	if len(s) != Elements {
		return p, fmt.Errorf("pattern %q: expected %d digits, got %d", s, Elements, len(s))
	}
	for i := range Elements {
		c := s[i]
		if c < '0' || c > '3' {
			return Pattern{}, fmt.Errorf("pattern %q: invalid digit %q at %d", s, c, i)
		}
		p[i] = ThickDark + Kind(c-'0')
	}
	return p, nil
}

// MustParsePattern is like ParsePattern but panics on error.
func MustParsePattern(s string) Pattern {
	p, err := ParsePattern(s)
	if err != nil {
		panic(err)
	}
	return p
}

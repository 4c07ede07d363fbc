package sensor

import (
	"fmt"
	"time"

	"github.com/chewxy/math32"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/itohio/gobarscan/pkg/code39"
	"github.com/itohio/gobarscan/pkg/config"
)

// StripParams describes how a printed strip looks to the sensor.
type StripParams struct {
	SampleInterval time.Duration
	Narrow         time.Duration
	WideRatio      float64
	Quiet          time.Duration // blank strip before and after the text, 10 narrow widths when zero
	Rise           time.Duration // first-order sensor response, 0 for ideal edges
	LightLevel     uint16
	DarkLevel      uint16
	NoiseLevel     float64 // standard deviation in ADC counts
	Digital        bool    // drive RawSample.Dark from the element color
	Start          time.Time
}

// ParamsFromConfig derives strip parameters from the mock configuration.
// The pause is split between the two quiet zones.
func ParamsFromConfig(cfg *config.MockConfig) StripParams {
	return StripParams{
		SampleInterval: cfg.SampleInterval,
		Narrow:         cfg.Narrow,
		WideRatio:      cfg.WideRatio,
		Quiet:          cfg.Pause / 2,
		Rise:           cfg.Rise,
		LightLevel:     cfg.LightLevel,
		DarkLevel:      cfg.DarkLevel,
		NoiseLevel:     cfg.NoiseLevel,
	}
}

// Element is one printed bar or space.
type Element struct {
	Dark     bool
	Duration time.Duration
}

// Layout renders text into elements: a quiet zone, each character's nine
// elements separated by a narrow space, and a closing quiet zone.
func Layout(text string, p StripParams) ([]Element, error) {
	quiet := p.Quiet
	if quiet <= 0 {
		quiet = 10 * p.Narrow
	}
	wide := time.Duration(float64(p.Narrow) * p.WideRatio)

	elems := make([]Element, 0, 2+len(text)*(code39.Elements+1))
	elems = append(elems, Element{Duration: quiet})
	for i, c := range text {
		pattern, ok := code39.Encode(c)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnencodable, c)
		}
		if i > 0 {
			elems = append(elems, Element{Duration: p.Narrow})
		}
		for _, k := range pattern {
			e := Element{Dark: k.Dark(), Duration: p.Narrow}
			if k.Thick() {
				e.Duration = wide
			}
			elems = append(elems, e)
		}
	}
	return append(elems, Element{Duration: quiet}), nil
}

// Synthesize renders text into raw samples spaced SampleInterval apart.
func Synthesize(text string, p StripParams) ([]RawSample, error) {
	if p.SampleInterval <= 0 {
		return nil, fmt.Errorf("invalid sample interval %s", p.SampleInterval)
	}

	elems, err := Layout(text, p)
	if err != nil {
		return nil, err
	}

	var total int
	for _, e := range elems {
		total += int(e.Duration / p.SampleInterval)
	}

	alpha := float32(1)
	if p.Rise > 0 {
		alpha = 1 - math32.Exp(-float32(p.SampleInterval)/float32(p.Rise))
	}
	var noise *distuv.Normal
	if p.NoiseLevel > 0 {
		noise = &distuv.Normal{Mu: 0, Sigma: p.NoiseLevel}
	}

	out := make([]RawSample, 0, total)
	level := float32(p.LightLevel)
	ts := p.Start
	for _, e := range elems {
		target := float32(p.LightLevel)
		if e.Dark {
			target = float32(p.DarkLevel)
		}
		for range int(e.Duration / p.SampleInterval) {
			level += (target - level) * alpha

			v := level
			if noise != nil {
				v += float32(noise.Rand())
			}
			out = append(out, RawSample{
				Timestamp: ts,
				Value:     clampADC(v),
				Dark:      p.Digital && e.Dark,
			})
			ts = ts.Add(p.SampleInterval)
		}
	}
	return out, nil
}

func clampADC(v float32) uint16 {
	v = math32.Round(v)
	switch {
	case v < 0:
		return 0
	case v > MaxValue:
		return MaxValue
	}
	return uint16(v)
}

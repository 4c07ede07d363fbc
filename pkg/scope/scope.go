package scope

import (
	"image/color"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"github.com/itohio/gobarscan/pkg/barcode"
	"github.com/itohio/gobarscan/pkg/config"
	"github.com/itohio/gobarscan/pkg/sample"
)

// ScopeWidget is a custom Fyne widget that plots averaged photosensor
// readings with their light/dark classification.
type ScopeWidget struct {
	widget.BaseWidget

	cfg *config.Config

	// Data (protected by mu)
	mu      sync.RWMutex
	samples []sample.Sample
	last    barcode.Decode
	hasLast bool

	// Display buffer (reused for downsampling)
	displaySamples []sample.Sample

	axes axes
}

// New creates a new ScopeWidget instance.
func New(cfg *config.Config) *ScopeWidget {
	s := &ScopeWidget{
		cfg:            cfg,
		displaySamples: make([]sample.Sample, 0, cfg.Display.MaxPoints),
	}
	s.axes = s.computeAxes()
	s.ExtendBaseWidget(s)
	s.Refresh()
	return s
}

// UpdateData replaces the plotted readings and the barcode label.
// This should be called on the main thread using fyne.Do().
func (s *ScopeWidget) UpdateData(samples []sample.Sample, last barcode.Decode, hasLast bool) {
	s.mu.Lock()
	s.displaySamples = sample.DownsampleSamples(s.displaySamples, samples, s.cfg.Display.MaxPoints)
	s.samples = samples
	s.last = last
	s.hasLast = hasLast
	s.axes = s.computeAxes()
	s.mu.Unlock()

	s.Refresh()
}

// computeAxes fits the time axis to the readings. The level axis always
// spans the ADC range so the threshold line stays put.
func (s *ScopeWidget) computeAxes() axes {
	window := time.Duration(s.cfg.Display.WindowSeconds * float64(time.Second))
	a := axes{yMin: 0, yMax: fullScale}

	if len(s.displaySamples) == 0 {
		a.xMin = time.Now()
		a.xMax = a.xMin.Add(window)
		return a
	}

	a.xMax = s.displaySamples[len(s.displaySamples)-1].Timestamp
	a.xMin = a.xMax.Add(-window)
	return a
}

// CreateRenderer creates the widget renderer.
func (s *ScopeWidget) CreateRenderer() fyne.WidgetRenderer {
	bg := canvas.NewRectangle(color.RGBA{R: 20, G: 20, B: 20, A: 255})
	return &scopeRenderer{
		scope:   s,
		bg:      bg,
		objects: []fyne.CanvasObject{bg},
	}
}

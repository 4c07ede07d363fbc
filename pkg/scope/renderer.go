package scope

import (
	"fmt"
	"image/color"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"

	"github.com/itohio/gobarscan/pkg/barcode"
	"github.com/itohio/gobarscan/pkg/sample"
)

var (
	gridColor      = color.RGBA{R: 40, G: 40, B: 40, A: 255}
	labelColor     = color.RGBA{R: 150, G: 150, B: 150, A: 255}
	levelColor     = color.RGBA{R: 255, G: 165, B: 0, A: 255}
	thresholdColor = color.RGBA{R: 220, G: 60, B: 60, A: 255}
	darkBlockColor = color.RGBA{R: 70, G: 70, B: 110, A: 120}
	barcodeColor   = color.RGBA{R: 100, G: 220, B: 120, A: 255}
)

const (
	marginLeft   = float32(60)
	marginRight  = float32(20)
	marginTop    = float32(20)
	marginBottom = float32(40)
)

// scopeRenderer renders the scope widget.
type scopeRenderer struct {
	scope *ScopeWidget

	bg      *canvas.Rectangle
	objects []fyne.CanvasObject

	lastSize fyne.Size
}

// MinSize returns the minimum size of the widget.
func (r *scopeRenderer) MinSize() fyne.Size {
	return fyne.NewSize(400, 300)
}

// Layout arranges the widget components.
func (r *scopeRenderer) Layout(size fyne.Size) {
	r.bg.Resize(size)

	if r.lastSize != size {
		r.lastSize = size
		r.scope.BaseWidget.Refresh()
	}
}

// Refresh rebuilds the canvas objects from the current data.
func (r *scopeRenderer) Refresh() {
	r.scope.mu.RLock()
	samples := r.scope.displaySamples
	last, hasLast := r.scope.last, r.scope.hasLast
	a := r.scope.axes
	dark := float32(r.scope.cfg.Decoder.DarkThreshold)
	noise := float32(r.scope.cfg.Decoder.NoiseThreshold)
	r.scope.mu.RUnlock()

	size := r.scope.Size()
	if size.Width == 0 || size.Height == 0 {
		return
	}

	r.objects = []fyne.CanvasObject{r.bg}
	p := plot{
		x: marginLeft,
		y: marginTop,
		w: size.Width - marginLeft - marginRight,
		h: size.Height - marginTop - marginBottom,
	}

	r.drawDarkBlocks(p, a, samples)
	r.drawGrid(p, a)
	r.drawThreshold(p, a, dark, noise)
	r.drawLevels(p, a, samples)
	r.drawBarcode(p, last, hasLast)
}

// drawGrid draws the oscilloscope-style grid.
func (r *scopeRenderer) drawGrid(p plot, a axes) {
	const numH, numV = 8, 10

	for i := range numH + 1 {
		y := p.y + float32(i)*p.h/numH
		r.add(hline(p, y, gridColor, 1))

		value := a.yMax - float32(i)*(a.yMax-a.yMin)/numH
		text := canvas.NewText(fmt.Sprintf("%.0f", value), labelColor)
		text.TextSize = 10
		text.Alignment = fyne.TextAlignTrailing
		text.Move(fyne.NewPos(p.x-5, y-6))
		r.add(text)
	}

	span := a.xMax.Sub(a.xMin)
	for i := range numV + 1 {
		x := p.x + float32(i)*p.w/numV
		line := canvas.NewLine(gridColor)
		line.Position1 = fyne.NewPos(x, p.y)
		line.Position2 = fyne.NewPos(x, p.y+p.h)
		line.StrokeWidth = 1
		r.add(line)

		offset := time.Duration(int64(span) * int64(i) / numV)
		text := canvas.NewText(formatTime(offset-span), labelColor)
		text.TextSize = 10
		text.Alignment = fyne.TextAlignCenter
		text.Move(fyne.NewPos(x-20, p.y+p.h+5))
		r.add(text)
	}
}

// drawDarkBlocks shades the time spans classified dark.
func (r *scopeRenderer) drawDarkBlocks(p plot, a axes, samples []sample.Sample) {
	for _, span := range darkSpans(samples) {
		x0 := a.X(p, samples[span[0]].Timestamp)
		x1 := p.x + p.w
		if span[1] < len(samples) {
			x1 = a.X(p, samples[span[1]].Timestamp)
		}
		rect := canvas.NewRectangle(darkBlockColor)
		rect.Move(fyne.NewPos(x0, p.y))
		rect.Resize(fyne.NewSize(x1-x0, p.h))
		r.add(rect)
	}
}

// drawThreshold draws the dark threshold with its hysteresis band.
func (r *scopeRenderer) drawThreshold(p plot, a axes, dark, noise float32) {
	r.add(hline(p, a.Y(p, dark), thresholdColor, 1.5))

	band := thresholdColor
	band.A = 80
	r.add(hline(p, a.Y(p, dark+noise), band, 1))
	r.add(hline(p, a.Y(p, dark-noise), band, 1))
}

// drawLevels draws the averaged reading curve.
func (r *scopeRenderer) drawLevels(p plot, a axes, samples []sample.Sample) {
	if len(samples) < 2 {
		return
	}

	prev := fyne.NewPos(a.X(p, samples[0].Timestamp), a.Y(p, float32(samples[0].Level)))
	for _, s := range samples[1:] {
		next := fyne.NewPos(a.X(p, s.Timestamp), a.Y(p, float32(s.Level)))
		line := canvas.NewLine(levelColor)
		line.Position1 = prev
		line.Position2 = next
		line.StrokeWidth = 1.5
		r.add(line)
		prev = next
	}
}

// drawBarcode labels the most recent decoded barcode.
func (r *scopeRenderer) drawBarcode(p plot, last barcode.Decode, ok bool) {
	label := "no barcode"
	if ok {
		label = fmt.Sprintf("%s  %s", last.Frame, last.At.Format(time.TimeOnly))
	}
	text := canvas.NewText(label, barcodeColor)
	text.TextSize = 16
	text.TextStyle = fyne.TextStyle{Monospace: true, Bold: ok}
	text.Move(fyne.NewPos(p.x+10, p.y+10))
	r.add(text)
}

func (r *scopeRenderer) add(o fyne.CanvasObject) {
	r.objects = append(r.objects, o)
}

func hline(p plot, y float32, c color.Color, width float32) *canvas.Line {
	line := canvas.NewLine(c)
	line.Position1 = fyne.NewPos(p.x, y)
	line.Position2 = fyne.NewPos(p.x+p.w, y)
	line.StrokeWidth = width
	return line
}

// Objects returns all canvas objects for rendering.
func (r *scopeRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

// Destroy cleans up resources.
func (r *scopeRenderer) Destroy() {}

func formatTime(d time.Duration) string {
	if d > -time.Second && d < time.Second {
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

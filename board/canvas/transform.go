package canvas

import (
	"math"

	"github.com/wricardo/whiteboard/board/protocol"
)

// Zoom limits and step factors
const (
	MinZoom = 0.2
	MaxZoom = 5.0

	// WheelStep is applied per wheel notch
	WheelStep = 1.1

	// ButtonStep is applied by the toolbar zoom buttons
	ButtonStep = 1.2
)

// Point is a screen- or canvas-space coordinate
type Point = protocol.Point

// Transform maps canvas space to screen space: screen = canvas*Zoom + Pan.
// The zero value is not usable; start from Identity.
type Transform struct {
	Pan  Point
	Zoom float64
}

// Identity returns the transform with no pan and unit zoom
func Identity() Transform {
	return Transform{Zoom: 1}
}

// ToCanvas converts a screen point into canvas space
func (t Transform) ToCanvas(screen Point) Point {
	return Point{
		X: (screen.X - t.Pan.X) / t.Zoom,
		Y: (screen.Y - t.Pan.Y) / t.Zoom,
	}
}

// ToScreen converts a canvas point into screen space
func (t Transform) ToScreen(c Point) Point {
	return Point{
		X: c.X*t.Zoom + t.Pan.X,
		Y: c.Y*t.Zoom + t.Pan.Y,
	}
}

// PanBy shifts the view by a screen-space delta
func (t *Transform) PanBy(dx, dy float64) {
	t.Pan.X += dx
	t.Pan.Y += dy
}

// ZoomBy multiplies the zoom factor, clamped to [MinZoom, MaxZoom]
func (t *Transform) ZoomBy(factor float64) {
	t.Zoom = clampZoom(t.Zoom * factor)
}

// Wheel applies one wheel event. Negative deltaY (scroll up) zooms in.
func (t *Transform) Wheel(deltaY float64) {
	switch {
	case deltaY < 0:
		t.ZoomBy(WheelStep)
	case deltaY > 0:
		t.ZoomBy(1 / WheelStep)
	}
}

// ZoomIn and ZoomOut mirror the toolbar buttons
func (t *Transform) ZoomIn()  { t.ZoomBy(ButtonStep) }
func (t *Transform) ZoomOut() { t.ZoomBy(1 / ButtonStep) }

// Apply adjusts the transform for a relayed Pan or Zoom event. It reports
// whether the event was a view event.
func (t *Transform) Apply(e protocol.Event) bool {
	switch ev := e.(type) {
	case protocol.Pan:
		t.PanBy(ev.DX, ev.DY)
		return true
	case protocol.Zoom:
		t.ZoomBy(ev.Factor)
		return true
	default:
		return false
	}
}

func clampZoom(z float64) float64 {
	if math.IsNaN(z) {
		return 1
	}
	if z < MinZoom {
		return MinZoom
	}
	if z > MaxZoom {
		return MaxZoom
	}
	return z
}

package canvas

import (
	"fmt"
	"math"

	"github.com/wricardo/whiteboard/board/protocol"
)

// Remote freehand samples have no width or color on the wire, so they are
// drawn as small fixed dots.
const (
	FreehandDotRadius = 2.0
	FreehandColor     = "#2563eb"
)

// FontFormat is the font string applied to text events, keyed by pixel size
const FontFormat = "%gpx 'Inter', -apple-system, system-ui, sans-serif"

// Renderer is the subset of a 2D canvas context the board draws with.
type Renderer interface {
	Save()
	Restore()
	Translate(x, y float64)
	Scale(x, y float64)

	SetStrokeStyle(color string)
	SetFillStyle(color string)
	SetLineWidth(width float64)
	SetLineCap(lineCap string)
	SetFont(font string)

	BeginPath()
	MoveTo(x, y float64)
	LineTo(x, y float64)
	Arc(x, y, radius, startAngle, endAngle float64)
	Stroke()
	Fill()
	StrokeRect(x, y, w, h float64)
	FillText(text string, x, y float64)
}

// Segment is a locally echoed piece of a freehand stroke in canvas space
type Segment struct {
	From  Point
	To    Point
	Color string
	Width float64
}

// Draw renders one event under the current transform. Geometry stays in
// canvas space; the transform is applied once around the whole operation.
// Pan and Zoom events draw nothing.
func Draw(r Renderer, t Transform, e protocol.Event) {
	switch e.(type) {
	case protocol.Pan, protocol.Zoom, nil:
		return
	}

	r.Save()
	r.Translate(t.Pan.X, t.Pan.Y)
	r.Scale(t.Zoom, t.Zoom)
	defer r.Restore()

	switch ev := e.(type) {
	case protocol.FreehandPoint:
		r.SetFillStyle(FreehandColor)
		r.BeginPath()
		r.Arc(ev.X, ev.Y, FreehandDotRadius, 0, 2*math.Pi)
		r.Fill()

	case protocol.Line:
		beginStroke(r, ev.Color, ev.Width)
		r.MoveTo(ev.From.X, ev.From.Y)
		r.LineTo(ev.To.X, ev.To.Y)
		r.Stroke()

	case protocol.Rect:
		beginStroke(r, ev.Color, ev.Width)
		r.StrokeRect(ev.From.X, ev.From.Y, ev.To.X-ev.From.X, ev.To.Y-ev.From.Y)

	case protocol.Circle:
		beginStroke(r, ev.Color, ev.Width)
		r.Arc(ev.Center.X, ev.Center.Y, ev.Radius, 0, 2*math.Pi)
		r.Stroke()

	case protocol.Text:
		r.SetFillStyle(ev.Color)
		r.SetFont(Font(ev.Size))
		r.FillText(ev.Text, ev.Pos.X, ev.Pos.Y)
	}
}

// DrawSegment renders a local freehand echo segment under the transform
func DrawSegment(r Renderer, t Transform, seg Segment) {
	r.Save()
	r.Translate(t.Pan.X, t.Pan.Y)
	r.Scale(t.Zoom, t.Zoom)
	beginStroke(r, seg.Color, seg.Width)
	r.MoveTo(seg.From.X, seg.From.Y)
	r.LineTo(seg.To.X, seg.To.Y)
	r.Stroke()
	r.Restore()
}

// Font returns the canvas font string for a text size in pixels
func Font(size float64) string {
	return fmt.Sprintf(FontFormat, size)
}

func beginStroke(r Renderer, color string, width float64) {
	r.BeginPath()
	r.SetStrokeStyle(color)
	r.SetLineWidth(width)
	r.SetLineCap("round")
}

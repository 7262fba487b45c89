package protocol

import (
	"encoding/json"
	"fmt"
)

// Kind is the wire tag of an event variant
type Kind string

const (
	KindFreehand Kind = "DrawFreehand"
	KindLine     Kind = "DrawLine"
	KindRect     Kind = "DrawRect"
	KindCircle   Kind = "DrawCircle"
	KindText     Kind = "AddText"
	KindPan      Kind = "Pan"
	KindZoom     Kind = "Zoom"
)

// Kinds lists every variant tag in declaration order.
var Kinds = []Kind{KindFreehand, KindLine, KindRect, KindCircle, KindText, KindPan, KindZoom}

// Event is one drawing or view operation. The variant set is closed.
type Event interface {
	Kind() Kind
	event()
}

// Point is a canvas-space coordinate. It encodes as [x, y].
type Point struct {
	X float64
	Y float64
}

// MarshalJSON encodes the point as a two-element array
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{p.X, p.Y})
}

// UnmarshalJSON decodes a two-element array
func (p *Point) UnmarshalJSON(data []byte) error {
	var xy []float64
	if err := json.Unmarshal(data, &xy); err != nil {
		return err
	}
	if len(xy) != 2 {
		return fmt.Errorf("point needs 2 coordinates, got %d", len(xy))
	}
	p.X, p.Y = xy[0], xy[1]
	return nil
}

// FreehandPoint is one sample of a freehand stroke
type FreehandPoint struct {
	X        float64
	Y        float64
	Dragging bool
}

// Line is a straight segment between two points
type Line struct {
	From  Point
	To    Point
	Color string
	Width float64
}

// Rect is an axis-aligned rectangle outline spanned by two corners
type Rect struct {
	From  Point
	To    Point
	Color string
	Width float64
}

// Circle is a circle outline
type Circle struct {
	Center Point
	Radius float64
	Color  string
	Width  float64
}

// Text places a string at a canvas position
type Text struct {
	Pos   Point
	Text  string
	Color string
	Size  float64
}

// Pan shifts the receiver's view by a screen-space delta
type Pan struct {
	DX float64
	DY float64
}

// Zoom multiplies the receiver's zoom factor
type Zoom struct {
	Factor float64
}

func (FreehandPoint) Kind() Kind { return KindFreehand }
func (Line) Kind() Kind          { return KindLine }
func (Rect) Kind() Kind          { return KindRect }
func (Circle) Kind() Kind        { return KindCircle }
func (Text) Kind() Kind          { return KindText }
func (Pan) Kind() Kind           { return KindPan }
func (Zoom) Kind() Kind          { return KindZoom }

func (FreehandPoint) event() {}
func (Line) event()          {}
func (Rect) event()          {}
func (Circle) event()        {}
func (Text) event()          {}
func (Pan) event()           {}
func (Zoom) event()          {}

package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var (
	ErrMalformed   = errors.New("malformed event")
	ErrUnknownType = errors.New("unknown event type")
)

var validate = validator.New()

// Wire shapes. Pointer fields let Decode tell a missing field from a zero value.

type envelope struct {
	Type *string `json:"type"`
}

type freehandWire struct {
	Type     Kind     `json:"type"`
	X        *float64 `json:"x" validate:"required"`
	Y        *float64 `json:"y" validate:"required"`
	Dragging *bool    `json:"dragging" validate:"required"`
}

type segmentWire struct {
	Type  Kind     `json:"type"`
	From  *Point   `json:"from" validate:"required"`
	To    *Point   `json:"to" validate:"required"`
	Color *string  `json:"color" validate:"required"`
	Width *float64 `json:"width" validate:"required"`
}

type circleWire struct {
	Type   Kind     `json:"type"`
	Center *Point   `json:"center" validate:"required"`
	Radius *float64 `json:"radius" validate:"required"`
	Color  *string  `json:"color" validate:"required"`
	Width  *float64 `json:"width" validate:"required"`
}

type textWire struct {
	Type  Kind     `json:"type"`
	Pos   *Point   `json:"pos" validate:"required"`
	Text  *string  `json:"text" validate:"required"`
	Color *string  `json:"color" validate:"required"`
	Size  *float64 `json:"size" validate:"required"`
}

type panWire struct {
	Type Kind     `json:"type"`
	DX   *float64 `json:"dx" validate:"required"`
	DY   *float64 `json:"dy" validate:"required"`
}

type zoomWire struct {
	Type   Kind     `json:"type"`
	Factor *float64 `json:"factor" validate:"required"`
}

// Encode serializes an event into a text frame
func Encode(e Event) ([]byte, error) {
	var wire interface{}

	switch ev := e.(type) {
	case FreehandPoint:
		wire = freehandWire{Type: KindFreehand, X: &ev.X, Y: &ev.Y, Dragging: &ev.Dragging}
	case Line:
		wire = segmentWire{Type: KindLine, From: &ev.From, To: &ev.To, Color: &ev.Color, Width: &ev.Width}
	case Rect:
		wire = segmentWire{Type: KindRect, From: &ev.From, To: &ev.To, Color: &ev.Color, Width: &ev.Width}
	case Circle:
		wire = circleWire{Type: KindCircle, Center: &ev.Center, Radius: &ev.Radius, Color: &ev.Color, Width: &ev.Width}
	case Text:
		wire = textWire{Type: KindText, Pos: &ev.Pos, Text: &ev.Text, Color: &ev.Color, Size: &ev.Size}
	case Pan:
		wire = panWire{Type: KindPan, DX: &ev.DX, DY: &ev.DY}
	case Zoom:
		wire = zoomWire{Type: KindZoom, Factor: &ev.Factor}
	case nil:
		return nil, errors.New("cannot encode nil event")
	default:
		return nil, fmt.Errorf("cannot encode event of type %T", e)
	}

	data, err := json.Marshal(wire)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", e.Kind(), err)
	}
	return data, nil
}

// Decode parses a text frame into an event
func Decode(data []byte) (Event, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if env.Type == nil {
		return nil, fmt.Errorf("%w: missing type", ErrMalformed)
	}

	switch Kind(*env.Type) {
	case KindFreehand:
		var w freehandWire
		if err := unmarshalWire(data, &w); err != nil {
			return nil, err
		}
		return FreehandPoint{X: *w.X, Y: *w.Y, Dragging: *w.Dragging}, nil

	case KindLine, KindRect:
		var w segmentWire
		if err := unmarshalWire(data, &w); err != nil {
			return nil, err
		}
		if Kind(*env.Type) == KindLine {
			return Line{From: *w.From, To: *w.To, Color: *w.Color, Width: *w.Width}, nil
		}
		return Rect{From: *w.From, To: *w.To, Color: *w.Color, Width: *w.Width}, nil

	case KindCircle:
		var w circleWire
		if err := unmarshalWire(data, &w); err != nil {
			return nil, err
		}
		return Circle{Center: *w.Center, Radius: *w.Radius, Color: *w.Color, Width: *w.Width}, nil

	case KindText:
		var w textWire
		if err := unmarshalWire(data, &w); err != nil {
			return nil, err
		}
		return Text{Pos: *w.Pos, Text: *w.Text, Color: *w.Color, Size: *w.Size}, nil

	case KindPan:
		var w panWire
		if err := unmarshalWire(data, &w); err != nil {
			return nil, err
		}
		return Pan{DX: *w.DX, DY: *w.DY}, nil

	case KindZoom:
		var w zoomWire
		if err := unmarshalWire(data, &w); err != nil {
			return nil, err
		}
		return Zoom{Factor: *w.Factor}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, *env.Type)
	}
}

func unmarshalWire(data []byte, wire interface{}) error {
	if err := json.Unmarshal(data, wire); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := validate.Struct(wire); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}

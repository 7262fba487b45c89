package session

import (
	"fmt"
	"strings"
)

// Tool is the drawing tool selected in the toolbar
type Tool string

const (
	Freehand Tool = "freehand"
	Line     Tool = "line"
	Rect     Tool = "rect"
	Circle   Tool = "circle"
	Text     Tool = "text"
	Pan      Tool = "pan"
	Zoom     Tool = "zoom"
)

// Tools lists the toolbar in display order
var Tools = []Tool{Freehand, Line, Rect, Circle, Text, Pan, Zoom}

const freehandCursor = `url('data:image/svg+xml;utf8,<svg xmlns="http://www.w3.org/2000/svg" width="24" height="24" viewBox="0 0 24 24"><circle cx="12" cy="12" r="2" fill="%23000"/></svg>') 12 12, auto`

// Cursor returns the CSS cursor shown over the canvas while the tool is active
func (t Tool) Cursor() string {
	switch t {
	case Freehand:
		return freehandCursor
	case Line, Rect, Circle:
		return "crosshair"
	case Text:
		return "text"
	case Pan:
		return "grab"
	case Zoom:
		return "zoom-in"
	default:
		return "default"
	}
}

// IsShape reports whether the tool emits a two-point shape on release
func (t Tool) IsShape() bool {
	return t == Line || t == Rect || t == Circle
}

// ParseTool resolves a tool name case-insensitively
func ParseTool(name string) (Tool, error) {
	candidate := Tool(strings.ToLower(strings.TrimSpace(name)))
	for _, t := range Tools {
		if t == candidate {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown tool %q", name)
}

// Style is the toolbar configuration applied to emitted events
type Style struct {
	Color    string
	Width    float64
	TextSize float64
}

// DefaultStyle matches the toolbar's initial state
func DefaultStyle() Style {
	return Style{
		Color:    "#2563eb",
		Width:    3,
		TextSize: 18,
	}
}

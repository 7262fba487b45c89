package session

import (
	"math"

	"github.com/wricardo/whiteboard/board/canvas"
	"github.com/wricardo/whiteboard/board/protocol"
)

// State is the phase of the active tool session
type State string

const (
	Idle             State = "idle"
	FreehandDragging State = "freehand_dragging"
	ShapeDragging    State = "shape_dragging"
	Panning          State = "panning"
	TextPrompting    State = "text_prompting"
)

// Output is the result of one pointer input: at most one event to send and
// an optional segment to draw locally right away.
type Output struct {
	Event   protocol.Event
	Segment *canvas.Segment
}

// Empty reports whether the input produced nothing
func (o Output) Empty() bool {
	return o.Event == nil && o.Segment == nil
}

// Machine turns raw pointer input into board events and applies relayed
// events to a renderer. It is not safe for concurrent use; a single
// goroutine owns it.
type Machine struct {
	tool      Tool
	style     Style
	transform canvas.Transform

	state State
	// anchor is in canvas space: shape start, last freehand point, text position
	anchor canvas.Point
	// dragAnchor is in screen space
	dragAnchor canvas.Point
}

// NewMachine creates an idle machine with an identity transform
func NewMachine(tool Tool, style Style) *Machine {
	return &Machine{
		tool:      tool,
		style:     style,
		transform: canvas.Identity(),
		state:     Idle,
	}
}

func (m *Machine) State() State         { return m.state }
func (m *Machine) Tool() Tool           { return m.tool }
func (m *Machine) Style() Style         { return m.style }
func (m *Machine) Anchor() canvas.Point { return m.anchor }

// Transform returns the current view transform
func (m *Machine) Transform() canvas.Transform { return m.transform }

// SetTransform replaces the view transform, clamping its zoom
func (m *Machine) SetTransform(t canvas.Transform) {
	zoom := t.Zoom
	t.Zoom = 1
	t.ZoomBy(zoom)
	m.transform = t
}

// SetTool switches tools and abandons any gesture in progress
func (m *Machine) SetTool(tool Tool) {
	m.tool = tool
	m.reset()
}

// SetStyle updates color, width and text size for future events
func (m *Machine) SetStyle(style Style) {
	m.style = style
}

// PointerDown starts a fresh session for the tool
func (m *Machine) PointerDown(tool Tool, screen canvas.Point) Output {
	m.tool = tool
	m.reset()

	p := m.transform.ToCanvas(screen)
	switch {
	case tool == Freehand:
		m.state = FreehandDragging
		m.anchor = p
	case tool.IsShape():
		m.state = ShapeDragging
		m.anchor = p
	case tool == Text:
		m.state = TextPrompting
		m.anchor = p
	case tool == Pan:
		m.state = Panning
		m.dragAnchor = screen
	}
	return Output{}
}

// PointerMove continues the active session. Only freehand strokes emit
// while moving.
func (m *Machine) PointerMove(tool Tool, screen canvas.Point) Output {
	if tool != m.tool {
		m.SetTool(tool)
		return Output{}
	}

	switch m.state {
	case FreehandDragging:
		p := m.transform.ToCanvas(screen)
		seg := &canvas.Segment{From: m.anchor, To: p, Color: m.style.Color, Width: m.style.Width}
		m.anchor = p
		return Output{
			Event:   protocol.FreehandPoint{X: p.X, Y: p.Y, Dragging: true},
			Segment: seg,
		}

	case Panning:
		m.transform.PanBy(screen.X-m.dragAnchor.X, screen.Y-m.dragAnchor.Y)
		m.dragAnchor = screen
	}
	return Output{}
}

// PointerUp ends the active session. Shape tools emit their event here.
func (m *Machine) PointerUp(tool Tool, screen canvas.Point) Output {
	if tool != m.tool {
		m.SetTool(tool)
		return Output{}
	}

	switch m.state {
	case ShapeDragging:
		e := m.shape(m.anchor, m.transform.ToCanvas(screen))
		m.reset()
		return Output{Event: e}

	case FreehandDragging, Panning:
		m.reset()
	}
	return Output{}
}

// Wheel zooms the local view. Zoom is never sent to peers.
func (m *Machine) Wheel(deltaY float64) {
	m.transform.Wheel(deltaY)
}

// CommitText finishes a text prompt. Empty text returns to idle without an
// event.
func (m *Machine) CommitText(text string) (protocol.Event, bool) {
	if m.state != TextPrompting {
		return nil, false
	}
	pos := m.anchor
	m.reset()

	if text == "" {
		return nil, false
	}
	return protocol.Text{Pos: pos, Text: text, Color: m.style.Color, Size: m.style.TextSize}, true
}

// CancelText abandons a text prompt
func (m *Machine) CancelText() {
	if m.state == TextPrompting {
		m.reset()
	}
}

// Apply handles one event from the relay. Pan and Zoom adjust the local
// view relative to its current value; everything else is drawn under the
// current transform.
func (m *Machine) Apply(r canvas.Renderer, e protocol.Event) {
	if m.transform.Apply(e) {
		return
	}
	canvas.Draw(r, m.transform, e)
}

func (m *Machine) shape(from, to canvas.Point) protocol.Event {
	switch m.tool {
	case Line:
		return protocol.Line{From: from, To: to, Color: m.style.Color, Width: m.style.Width}
	case Rect:
		return protocol.Rect{From: from, To: to, Color: m.style.Color, Width: m.style.Width}
	case Circle:
		return protocol.Circle{
			Center: from,
			Radius: math.Hypot(to.X-from.X, to.Y-from.Y),
			Color:  m.style.Color,
			Width:  m.style.Width,
		}
	}
	return nil
}

func (m *Machine) reset() {
	m.state = Idle
	m.anchor = canvas.Point{}
	m.dragAnchor = canvas.Point{}
}

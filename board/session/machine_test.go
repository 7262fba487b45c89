package session

import (
	"math"
	"testing"

	"github.com/wricardo/whiteboard/board/canvas"
	"github.com/wricardo/whiteboard/board/protocol"
)

func pt(x, y float64) canvas.Point { return canvas.Point{X: x, Y: y} }

func TestRectShapeCompletion(t *testing.T) {
	m := NewMachine(Rect, Style{Color: "#000000", Width: 2, TextSize: 18})

	if out := m.PointerDown(Rect, pt(10, 10)); !out.Empty() {
		t.Errorf("PointerDown should emit nothing, got %+v", out)
	}
	if m.State() != ShapeDragging {
		t.Fatalf("Expected ShapeDragging, got %s", m.State())
	}

	for _, p := range []canvas.Point{pt(20, 15), pt(35, 30), pt(49, 41)} {
		if out := m.PointerMove(Rect, p); !out.Empty() {
			t.Errorf("PointerMove should emit nothing while dragging a shape, got %+v", out)
		}
	}

	out := m.PointerUp(Rect, pt(50, 40))
	expected := protocol.Rect{From: pt(10, 10), To: pt(50, 40), Color: "#000000", Width: 2}
	if out.Event != expected {
		t.Errorf("Expected %#v, got %#v", expected, out.Event)
	}
	if out.Segment != nil {
		t.Error("Shape completion should not produce a local segment")
	}
	if m.State() != Idle {
		t.Errorf("Expected Idle after release, got %s", m.State())
	}
}

func TestShapeTools(t *testing.T) {
	style := Style{Color: "#dc2626", Width: 4, TextSize: 18}

	tests := []struct {
		name     string
		tool     Tool
		expected protocol.Event
	}{
		{
			name:     "line",
			tool:     Line,
			expected: protocol.Line{From: pt(0, 0), To: pt(3, 4), Color: "#dc2626", Width: 4},
		},
		{
			name:     "circle uses anchor as center",
			tool:     Circle,
			expected: protocol.Circle{Center: pt(0, 0), Radius: 5, Color: "#dc2626", Width: 4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMachine(tt.tool, style)
			m.PointerDown(tt.tool, pt(0, 0))
			out := m.PointerUp(tt.tool, pt(3, 4))
			if out.Event != tt.expected {
				t.Errorf("Expected %#v, got %#v", tt.expected, out.Event)
			}
		})
	}
}

func TestShapeUsesCanvasCoordinates(t *testing.T) {
	m := NewMachine(Line, DefaultStyle())
	m.SetTransform(canvas.Transform{Pan: pt(100, 100), Zoom: 2})

	m.PointerDown(Line, pt(120, 140))
	out := m.PointerUp(Line, pt(200, 100))

	line, ok := out.Event.(protocol.Line)
	if !ok {
		t.Fatalf("Expected Line, got %T", out.Event)
	}
	if line.From != pt(10, 20) || line.To != pt(50, 0) {
		t.Errorf("Expected (10,20)->(50,0), got %+v->%+v", line.From, line.To)
	}
}

func TestFreehandStroke(t *testing.T) {
	m := NewMachine(Freehand, DefaultStyle())

	if out := m.PointerDown(Freehand, pt(1, 1)); !out.Empty() {
		t.Errorf("PointerDown should not emit, got %+v", out)
	}

	out := m.PointerMove(Freehand, pt(4, 5))
	if out.Event != (protocol.FreehandPoint{X: 4, Y: 5, Dragging: true}) {
		t.Errorf("Unexpected event %#v", out.Event)
	}
	if out.Segment == nil {
		t.Fatal("Expected a local segment")
	}
	want := canvas.Segment{From: pt(1, 1), To: pt(4, 5), Color: "#2563eb", Width: 3}
	if *out.Segment != want {
		t.Errorf("Expected segment %+v, got %+v", want, *out.Segment)
	}

	out = m.PointerMove(Freehand, pt(6, 5))
	if out.Segment.From != pt(4, 5) {
		t.Errorf("Segment should start at the running anchor, got %+v", out.Segment.From)
	}

	if out := m.PointerUp(Freehand, pt(6, 5)); !out.Empty() {
		t.Errorf("PointerUp should emit nothing for freehand, got %+v", out)
	}
	if out := m.PointerMove(Freehand, pt(9, 9)); !out.Empty() {
		t.Errorf("Moves after release should emit nothing, got %+v", out)
	}
}

func TestPanning(t *testing.T) {
	m := NewMachine(Pan, DefaultStyle())

	m.PointerDown(Pan, pt(100, 100))
	if out := m.PointerMove(Pan, pt(110, 95)); !out.Empty() {
		t.Errorf("Panning should not emit, got %+v", out)
	}
	m.PointerMove(Pan, pt(130, 90))
	m.PointerUp(Pan, pt(130, 90))

	if got := m.Transform().Pan; got != pt(30, -10) {
		t.Errorf("Expected pan (30,-10), got %+v", got)
	}
	if m.State() != Idle {
		t.Errorf("Expected Idle, got %s", m.State())
	}
}

func TestWheelIsLocal(t *testing.T) {
	m := NewMachine(Zoom, DefaultStyle())

	for i := 0; i < 40; i++ {
		m.Wheel(-1)
	}
	if m.Transform().Zoom != canvas.MaxZoom {
		t.Errorf("Expected zoom %v, got %v", canvas.MaxZoom, m.Transform().Zoom)
	}

	m.SetTool(Freehand)
	m.Wheel(1)
	if math.Abs(m.Transform().Zoom-canvas.MaxZoom/1.1) > 1e-9 {
		t.Errorf("Wheel should apply regardless of tool, got %v", m.Transform().Zoom)
	}
}

func TestTextPrompt(t *testing.T) {
	t.Run("commit emits text", func(t *testing.T) {
		m := NewMachine(Text, DefaultStyle())
		m.PointerDown(Text, pt(5, 6))
		m.PointerUp(Text, pt(5, 6))

		if m.State() != TextPrompting {
			t.Fatalf("Expected TextPrompting, got %s", m.State())
		}

		e, ok := m.CommitText("hello")
		if !ok {
			t.Fatal("Expected an event")
		}
		expected := protocol.Text{Pos: pt(5, 6), Text: "hello", Color: "#2563eb", Size: 18}
		if e != expected {
			t.Errorf("Expected %#v, got %#v", expected, e)
		}
		if m.State() != Idle {
			t.Errorf("Expected Idle after commit, got %s", m.State())
		}
	})

	t.Run("empty commit emits nothing", func(t *testing.T) {
		m := NewMachine(Text, DefaultStyle())
		m.PointerDown(Text, pt(5, 6))
		if _, ok := m.CommitText(""); ok {
			t.Error("Empty text should not emit")
		}
		if m.State() != Idle {
			t.Errorf("Expected Idle, got %s", m.State())
		}
	})

	t.Run("cancel emits nothing", func(t *testing.T) {
		m := NewMachine(Text, DefaultStyle())
		m.PointerDown(Text, pt(5, 6))
		m.CancelText()
		if _, ok := m.CommitText("late"); ok {
			t.Error("Commit after cancel should not emit")
		}
	})

	t.Run("commit without prompt", func(t *testing.T) {
		m := NewMachine(Line, DefaultStyle())
		if _, ok := m.CommitText("x"); ok {
			t.Error("Commit without a prompt should not emit")
		}
	})
}

func TestToolSwitchClearsSession(t *testing.T) {
	m := NewMachine(Rect, DefaultStyle())
	m.PointerDown(Rect, pt(0, 0))

	if out := m.PointerUp(Line, pt(10, 10)); !out.Empty() {
		t.Errorf("Release under a different tool should emit nothing, got %+v", out)
	}
	if m.State() != Idle || m.Tool() != Line {
		t.Errorf("Expected Idle with Line, got %s with %s", m.State(), m.Tool())
	}

	m.PointerDown(Freehand, pt(0, 0))
	m.SetTool(Circle)
	if m.State() != Idle {
		t.Errorf("SetTool should clear the session, got %s", m.State())
	}
}

func TestApply(t *testing.T) {
	m := NewMachine(Freehand, DefaultStyle())
	rec := &canvas.Recorder{}

	m.Apply(rec, protocol.Pan{DX: 10, DY: 20})
	m.Apply(rec, protocol.Zoom{Factor: 2})
	if len(rec.Calls) != 0 {
		t.Errorf("View events should not draw, got %v", rec.Ops())
	}
	if m.Transform().Pan != pt(10, 20) || m.Transform().Zoom != 2 {
		t.Errorf("Unexpected transform %+v", m.Transform())
	}

	m.Apply(rec, protocol.Line{From: pt(0, 0), To: pt(1, 1), Color: "#000", Width: 1})
	if rec.Calls[1].String() != "Translate(10, 20)" || rec.Calls[2].String() != "Scale(2, 2)" {
		t.Errorf("Apply should draw under the current transform, got %v", rec.Calls[:3])
	}
}

func TestSetTransformClampsZoom(t *testing.T) {
	m := NewMachine(Pan, DefaultStyle())
	m.SetTransform(canvas.Transform{Pan: pt(1, 2), Zoom: 50})
	if m.Transform().Zoom != canvas.MaxZoom {
		t.Errorf("Expected zoom clamped to %v, got %v", canvas.MaxZoom, m.Transform().Zoom)
	}
}

func TestParseTool(t *testing.T) {
	for _, tool := range Tools {
		got, err := ParseTool(" " + string(tool) + " ")
		if err != nil || got != tool {
			t.Errorf("ParseTool(%q) = %q, %v", tool, got, err)
		}
	}
	if _, err := ParseTool("eraser"); err == nil {
		t.Error("Expected error for unknown tool")
	}
	if Pan.Cursor() != "grab" || Rect.Cursor() != "crosshair" {
		t.Error("Unexpected cursor names")
	}
}

package canvas

import (
	"math"
	"reflect"
	"testing"

	"github.com/wricardo/whiteboard/board/protocol"
)

func TestDrawCallSequences(t *testing.T) {
	tests := []struct {
		name  string
		event protocol.Event
		ops   []string
	}{
		{
			name:  "freehand",
			event: protocol.FreehandPoint{X: 1, Y: 2, Dragging: true},
			ops:   []string{"Save", "Translate", "Scale", "SetFillStyle", "BeginPath", "Arc", "Fill", "Restore"},
		},
		{
			name:  "line",
			event: protocol.Line{From: protocol.Point{X: 0, Y: 0}, To: protocol.Point{X: 5, Y: 5}, Color: "#000", Width: 2},
			ops:   []string{"Save", "Translate", "Scale", "BeginPath", "SetStrokeStyle", "SetLineWidth", "SetLineCap", "MoveTo", "LineTo", "Stroke", "Restore"},
		},
		{
			name:  "rect",
			event: protocol.Rect{From: protocol.Point{X: 10, Y: 10}, To: protocol.Point{X: 50, Y: 40}, Color: "#000", Width: 2},
			ops:   []string{"Save", "Translate", "Scale", "BeginPath", "SetStrokeStyle", "SetLineWidth", "SetLineCap", "StrokeRect", "Restore"},
		},
		{
			name:  "circle",
			event: protocol.Circle{Center: protocol.Point{X: 1, Y: 1}, Radius: 3, Color: "#000", Width: 1},
			ops:   []string{"Save", "Translate", "Scale", "BeginPath", "SetStrokeStyle", "SetLineWidth", "SetLineCap", "Arc", "Stroke", "Restore"},
		},
		{
			name:  "text",
			event: protocol.Text{Pos: protocol.Point{X: 1, Y: 1}, Text: "hi", Color: "#000", Size: 18},
			ops:   []string{"Save", "Translate", "Scale", "SetFillStyle", "SetFont", "FillText", "Restore"},
		},
		{
			name:  "pan draws nothing",
			event: protocol.Pan{DX: 1, DY: 1},
			ops:   []string{},
		},
		{
			name:  "zoom draws nothing",
			event: protocol.Zoom{Factor: 2},
			ops:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &Recorder{}
			Draw(rec, Identity(), tt.event)

			if got := rec.Ops(); !reflect.DeepEqual(got, tt.ops) {
				t.Errorf("Expected ops %v, got %v", tt.ops, got)
			}
		})
	}
}

func TestDrawAppliesCurrentTransform(t *testing.T) {
	rec := &Recorder{}
	tr := Transform{Pan: Point{X: 30, Y: -20}, Zoom: 2.5}

	Draw(rec, tr, protocol.Rect{From: protocol.Point{X: 10, Y: 10}, To: protocol.Point{X: 50, Y: 40}, Color: "#000000", Width: 2})

	if got := rec.Calls[1]; got.Op != "Translate" || got.Args[0] != 30.0 || got.Args[1] != -20.0 {
		t.Errorf("Expected Translate(30, -20), got %v", got)
	}
	if got := rec.Calls[2]; got.Op != "Scale" || got.Args[0] != 2.5 || got.Args[1] != 2.5 {
		t.Errorf("Expected Scale(2.5, 2.5), got %v", got)
	}

	// geometry stays in canvas space
	var rect Call
	for _, c := range rec.Calls {
		if c.Op == "StrokeRect" {
			rect = c
		}
	}
	want := []interface{}{10.0, 10.0, 40.0, 30.0}
	if !reflect.DeepEqual(rect.Args, want) {
		t.Errorf("Expected StrokeRect%v, got %v", want, rect)
	}
}

func TestDrawFreehandDot(t *testing.T) {
	rec := &Recorder{}
	Draw(rec, Identity(), protocol.FreehandPoint{X: 3, Y: 4})

	if got := rec.Calls[3]; got.Op != "SetFillStyle" || got.Args[0] != FreehandColor {
		t.Errorf("Expected fill %s, got %v", FreehandColor, got)
	}
	want := []interface{}{3.0, 4.0, FreehandDotRadius, 0.0, 2 * math.Pi}
	if got := rec.Calls[5]; !reflect.DeepEqual(got.Args, want) {
		t.Errorf("Expected Arc%v, got %v", want, got)
	}
}

func TestDrawTextFont(t *testing.T) {
	rec := &Recorder{}
	Draw(rec, Identity(), protocol.Text{Pos: protocol.Point{X: 1, Y: 2}, Text: "hello", Color: "#059669", Size: 18})

	expected := "18px 'Inter', -apple-system, system-ui, sans-serif"
	if got := rec.Calls[4]; got.Args[0] != expected {
		t.Errorf("Expected font %q, got %v", expected, got.Args[0])
	}
	if got := rec.Calls[5].String(); got != "FillText(hello, 1, 2)" {
		t.Errorf("Unexpected FillText call %s", got)
	}
}

func TestDrawSegment(t *testing.T) {
	rec := &Recorder{}
	var seen int
	rec.OnCall = func(Call) { seen++ }

	DrawSegment(rec, Transform{Pan: Point{X: 1, Y: 1}, Zoom: 2}, Segment{
		From:  Point{X: 0, Y: 0},
		To:    Point{X: 4, Y: 3},
		Color: "#2563eb",
		Width: 3,
	})

	expected := []string{"Save", "Translate", "Scale", "BeginPath", "SetStrokeStyle", "SetLineWidth", "SetLineCap", "MoveTo", "LineTo", "Stroke", "Restore"}
	if got := rec.Ops(); !reflect.DeepEqual(got, expected) {
		t.Errorf("Expected ops %v, got %v", expected, got)
	}
	if seen != len(expected) {
		t.Errorf("OnCall saw %d calls, expected %d", seen, len(expected))
	}

	rec.Reset()
	if len(rec.Calls) != 0 {
		t.Errorf("Reset should clear calls, got %d", len(rec.Calls))
	}
}

func TestRecorderStream(t *testing.T) {
	var ops []string
	rec := &Recorder{Stream: true, OnCall: func(c Call) { ops = append(ops, c.Op) }}

	Draw(rec, Identity(), protocol.Zoom{Factor: 2})
	Draw(rec, Identity(), protocol.Circle{Center: Point{X: 1, Y: 1}, Radius: 2, Color: "#000", Width: 1})

	if len(rec.Calls) != 0 {
		t.Errorf("Stream should not keep calls, got %d", len(rec.Calls))
	}
	if len(ops) == 0 || ops[len(ops)-1] != "Restore" {
		t.Errorf("Expected OnCall to see the circle, got %v", ops)
	}
}

package canvas

import (
	"fmt"
	"strings"
)

// Call is one recorded renderer invocation
type Call struct {
	Op   string
	Args []interface{}
}

func (c Call) String() string {
	if len(c.Args) == 0 {
		return c.Op + "()"
	}
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		parts[i] = fmt.Sprint(a)
	}
	return c.Op + "(" + strings.Join(parts, ", ") + ")"
}

// Recorder is a Renderer that keeps every call in order. An optional OnCall
// hook sees each call as it is recorded.
type Recorder struct {
	Calls  []Call
	OnCall func(Call)
	// Stream hands calls to OnCall without keeping them
	Stream bool
}

// Ops returns the recorded operation names
func (r *Recorder) Ops() []string {
	ops := make([]string, len(r.Calls))
	for i, c := range r.Calls {
		ops[i] = c.Op
	}
	return ops
}

// Reset drops all recorded calls
func (r *Recorder) Reset() {
	r.Calls = r.Calls[:0]
}

func (r *Recorder) record(op string, args ...interface{}) {
	c := Call{Op: op, Args: args}
	if !r.Stream {
		r.Calls = append(r.Calls, c)
	}
	if r.OnCall != nil {
		r.OnCall(c)
	}
}

func (r *Recorder) Save()                  { r.record("Save") }
func (r *Recorder) Restore()               { r.record("Restore") }
func (r *Recorder) Translate(x, y float64) { r.record("Translate", x, y) }
func (r *Recorder) Scale(x, y float64)     { r.record("Scale", x, y) }

func (r *Recorder) SetStrokeStyle(color string) { r.record("SetStrokeStyle", color) }
func (r *Recorder) SetFillStyle(color string)   { r.record("SetFillStyle", color) }
func (r *Recorder) SetLineWidth(width float64)  { r.record("SetLineWidth", width) }
func (r *Recorder) SetLineCap(lineCap string)   { r.record("SetLineCap", lineCap) }
func (r *Recorder) SetFont(font string)         { r.record("SetFont", font) }

func (r *Recorder) BeginPath()          { r.record("BeginPath") }
func (r *Recorder) MoveTo(x, y float64) { r.record("MoveTo", x, y) }
func (r *Recorder) LineTo(x, y float64) { r.record("LineTo", x, y) }
func (r *Recorder) Arc(x, y, radius, startAngle, endAngle float64) {
	r.record("Arc", x, y, radius, startAngle, endAngle)
}
func (r *Recorder) Stroke()                       { r.record("Stroke") }
func (r *Recorder) Fill()                         { r.record("Fill") }
func (r *Recorder) StrokeRect(x, y, w, h float64) { r.record("StrokeRect", x, y, w, h) }
func (r *Recorder) FillText(text string, x, y float64) {
	r.record("FillText", text, x, y)
}

var _ Renderer = (*Recorder)(nil)

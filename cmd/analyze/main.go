// Command analyze replays recorded whiteboard sessions and prints quick,
// human-readable facts about them: event counts, the canvas area the
// drawings cover, the colors used, the view a board ends up with after every
// pan and zoom, and how many renderer calls a full replay costs.
//
// Usage: analyze FILE...
package main

import (
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/wricardo/whiteboard/board/canvas"
	"github.com/wricardo/whiteboard/board/protocol"
	"github.com/wricardo/whiteboard/board/recording"
	"github.com/wricardo/whiteboard/board/session"
)

// Bounds is the canvas-space box covering every drawn element
type Bounds struct {
	MinX, MinY, MaxX, MaxY float64
	Empty                  bool
}

func newBounds() Bounds {
	return Bounds{MinX: math.Inf(1), MinY: math.Inf(1), MaxX: math.Inf(-1), MaxY: math.Inf(-1), Empty: true}
}

// Add grows the box to include p
func (b *Bounds) Add(p protocol.Point) {
	b.MinX = math.Min(b.MinX, p.X)
	b.MinY = math.Min(b.MinY, p.Y)
	b.MaxX = math.Max(b.MaxX, p.X)
	b.MaxY = math.Max(b.MaxY, p.Y)
	b.Empty = false
}

// Analysis summarizes one replayed recording
type Analysis struct {
	Frames    int
	Skipped   int
	Counts    map[protocol.Kind]int
	Colors    map[string]int
	Bounds    Bounds
	View      canvas.Transform
	DrawCalls int
}

// analyzeRecording replays frames one per line. Undecodable and over-long
// lines are skipped the same way a board skips them.
func analyzeRecording(r io.Reader) (Analysis, error) {
	a := Analysis{
		Counts: map[protocol.Kind]int{},
		Colors: map[string]int{},
		Bounds: newBounds(),
	}

	recorder := &canvas.Recorder{Stream: true, OnCall: func(canvas.Call) { a.DrawCalls++ }}
	machine := session.NewMachine(session.Freehand, session.DefaultStyle())

	scanner := recording.NewScanner(r)
	for scanner.Scan() {
		if scanner.LineErr() != nil {
			a.Skipped++
			continue
		}
		line := strings.TrimSpace(string(scanner.Bytes()))
		if line == "" {
			continue
		}

		e, err := protocol.Decode([]byte(line))
		if err != nil {
			a.Skipped++
			continue
		}

		a.Frames++
		a.Counts[e.Kind()]++
		measure(&a, e)
		machine.Apply(recorder, e)
	}
	if err := scanner.Err(); err != nil {
		return a, err
	}

	a.View = machine.Transform()
	return a, nil
}

func measure(a *Analysis, e protocol.Event) {
	switch ev := e.(type) {
	case protocol.FreehandPoint:
		a.Bounds.Add(protocol.Point{X: ev.X, Y: ev.Y})
		a.Colors[canvas.FreehandColor]++
	case protocol.Line:
		a.Bounds.Add(ev.From)
		a.Bounds.Add(ev.To)
		a.Colors[ev.Color]++
	case protocol.Rect:
		a.Bounds.Add(ev.From)
		a.Bounds.Add(ev.To)
		a.Colors[ev.Color]++
	case protocol.Circle:
		a.Bounds.Add(protocol.Point{X: ev.Center.X - ev.Radius, Y: ev.Center.Y - ev.Radius})
		a.Bounds.Add(protocol.Point{X: ev.Center.X + ev.Radius, Y: ev.Center.Y + ev.Radius})
		a.Colors[ev.Color]++
	case protocol.Text:
		a.Bounds.Add(ev.Pos)
		a.Colors[ev.Color]++
	}
}

func main() {
	files := os.Args[1:]
	if len(files) == 0 {
		fmt.Println("Usage: analyze FILE...")
		os.Exit(1)
	}

	for _, file := range files {
		fmt.Printf("\n=== Analyzing %s ===\n", file)
		printAnalysis(file)
	}
}

func printAnalysis(path string) {
	f, err := os.Open(path)
	if err != nil {
		fmt.Printf("Error reading file: %v\n", err)
		return
	}
	defer f.Close()

	a, err := analyzeRecording(f)
	if err != nil {
		fmt.Printf("Error reading recording: %v\n", err)
		return
	}

	fmt.Printf("Frames: %d\n", a.Frames)
	for _, k := range protocol.Kinds {
		if n := a.Counts[k]; n > 0 {
			fmt.Printf("  %-13s %d\n", k, n)
		}
	}

	if a.Bounds.Empty {
		fmt.Printf("Drawn area: nothing drawn\n")
	} else {
		fmt.Printf("Drawn area: (%g, %g) to (%g, %g), %g x %g\n",
			a.Bounds.MinX, a.Bounds.MinY, a.Bounds.MaxX, a.Bounds.MaxY,
			a.Bounds.MaxX-a.Bounds.MinX, a.Bounds.MaxY-a.Bounds.MinY)
	}

	colors := make([]string, 0, len(a.Colors))
	for c := range a.Colors {
		colors = append(colors, c)
	}
	sort.Slice(colors, func(i, j int) bool {
		if a.Colors[colors[i]] != a.Colors[colors[j]] {
			return a.Colors[colors[i]] > a.Colors[colors[j]]
		}
		return colors[i] < colors[j]
	})
	for _, c := range colors {
		fmt.Printf("  color %-10s %d\n", c, a.Colors[c])
	}

	fmt.Printf("Final view: pan (%g, %g), zoom %.3f\n", a.View.Pan.X, a.View.Pan.Y, a.View.Zoom)
	fmt.Printf("Replay cost: %d renderer calls\n", a.DrawCalls)

	if a.Skipped > 0 {
		fmt.Printf("⚠️  WARNING: %d lines could not be decoded and were skipped\n", a.Skipped)
	} else {
		fmt.Printf("✅ Every line decoded\n")
	}
}
